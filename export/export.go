package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"tickchart/model"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case CSV, JSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == CSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

var (
	lineHeader   = []string{"date", "value"}
	candleHeader = []string{"date", "open", "high", "low", "close", "volume"}
)

// cell writes missing values as empty cells.
func cell(v float64) string {
	if !model.IsFinite(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func WriteLineCSV(w io.Writer, points []model.TimeValuePoint) error {
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{date(p.Date), cell(p.Value)}
	}
	return writeRows(w, lineHeader, rows)
}

func WriteCandleCSV(w io.Writer, points []model.OHLCPoint) error {
	rows := make([][]string, len(points))
	for i, p := range points {
		volume := ""
		if v, ok := p.VolumeValue(); ok {
			volume = cell(v)
		}
		rows[i] = []string{date(p.Date), cell(p.Open), cell(p.High), cell(p.Low), cell(p.Close), volume}
	}
	return writeRows(w, candleHeader, rows)
}

// Document is the JSON export of one symbol.
type Document struct {
	Symbol     string                 `json:"symbol"`
	ExportedAt time.Time              `json:"exportedAt"`
	Line       []model.TimeValuePoint `json:"line,omitempty"`
	Candles    []model.OHLCPoint      `json:"candles,omitempty"`
}

func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// Write exports doc in format. CSV carries the candles when present, else the line.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case CSV:
		if len(doc.Candles) > 0 {
			return WriteCandleCSV(w, doc.Candles)
		}
		return WriteLineCSV(w, doc.Line)
	case JSON:
		return WriteJSON(w, doc)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
