package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeValuePoint is one sample of a line series.
type TimeValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// OHLCPoint is one candle. Low <= min(Open, Close) and High >= max(Open, Close) are
// expected but never validated.
type OHLCPoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume *float64  `json:"volume,omitempty"`
}

// Finite reports whether the value can be placed on a scale.
func (p TimeValuePoint) Finite() bool {
	return !p.Date.IsZero() && IsFinite(p.Value)
}

// Finite reports whether all four prices can be placed on a scale.
func (p OHLCPoint) Finite() bool {
	return !p.Date.IsZero() && IsFinite(p.Open) && IsFinite(p.High) && IsFinite(p.Low) && IsFinite(p.Close)
}

// Up is true for rising candles; an unchanged candle counts as up.
func (p OHLCPoint) Up() bool {
	return p.Close >= p.Open
}

func (p OHLCPoint) VolumeValue() (float64, bool) {
	if p.Volume == nil || !IsFinite(*p.Volume) {
		return 0, false
	}
	return *p.Volume, true
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type wirePoint struct {
	Date  json.RawMessage `json:"date"`
	Value *float64        `json:"value"`
}

type wireCandle struct {
	Date   json.RawMessage `json:"date"`
	Open   *float64        `json:"open"`
	High   *float64        `json:"high"`
	Low    *float64        `json:"low"`
	Close  *float64        `json:"close"`
	Volume *float64        `json:"volume"`
}

// UnmarshalJSON accepts ISO-8601 or unix-millisecond dates; missing values become NaN.
func (p *TimeValuePoint) UnmarshalJSON(b []byte) error {
	var w wirePoint
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	date, err := ParseDate(w.Date)
	if err != nil {
		return err
	}
	p.Date = date
	p.Value = orNaN(w.Value)
	return nil
}

func (p *OHLCPoint) UnmarshalJSON(b []byte) error {
	var w wireCandle
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	date, err := ParseDate(w.Date)
	if err != nil {
		return err
	}
	p.Date = date
	p.Open = orNaN(w.Open)
	p.High = orNaN(w.High)
	p.Low = orNaN(w.Low)
	p.Close = orNaN(w.Close)
	p.Volume = w.Volume
	return nil
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate decodes a JSON date: a quoted ISO-8601 string or a unix timestamp in
// milliseconds. An empty or null date yields the zero time, which marks the sample missing.
func ParseDate(raw json.RawMessage) (time.Time, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	if s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %s: %w", s, err)
		}
		return ParseDateString(unquoted)
	}
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %s: %w", s, err)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func ParseDateString(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", s)
}

func dateOrNil(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func finiteOrNil(v float64) *float64 {
	if !IsFinite(v) {
		return nil
	}
	return &v
}

// MarshalJSON writes RFC 3339 dates and null for missing values, the inverse of UnmarshalJSON.
func (p TimeValuePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  *string  `json:"date"`
		Value *float64 `json:"value"`
	}{dateOrNil(p.Date), finiteOrNil(p.Value)})
}

func (p OHLCPoint) MarshalJSON() ([]byte, error) {
	var volume *float64
	if v, ok := p.VolumeValue(); ok {
		volume = &v
	}
	return json.Marshal(struct {
		Date   *string  `json:"date"`
		Open   *float64 `json:"open"`
		High   *float64 `json:"high"`
		Low    *float64 `json:"low"`
		Close  *float64 `json:"close"`
		Volume *float64 `json:"volume,omitempty"`
	}{dateOrNil(p.Date), finiteOrNil(p.Open), finiteOrNil(p.High), finiteOrNil(p.Low), finiteOrNil(p.Close), volume})
}
