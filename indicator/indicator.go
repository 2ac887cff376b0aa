package indicator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/markcheno/go-talib"

	"tickchart/model"
)

type Kind string

const (
	SMA Kind = "sma"
	EMA Kind = "ema"
)

var (
	ErrUnknownKind   = errors.New("unknown indicator")
	ErrInvalidPeriod = errors.New("indicator period must be at least 1")
)

// Metric is one computed overlay series, aligned with the input samples.
type Metric struct {
	Name   string
	Color  string
	Values model.Series[float64]
	// Warmup is the number of leading samples without a value.
	Warmup int
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case SMA, EMA:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Compute runs the moving average over values. The first period-1 outputs, and every
// output whose window touches a missing value, are NaN.
func Compute(kind Kind, period int, values []float64) (model.Series[float64], error) {
	if kind != SMA && kind != EMA {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if period < 1 {
		return nil, ErrInvalidPeriod
	}
	out := make(model.Series[float64], len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) < period {
		return out, nil
	}

	// talib does not skip gaps, so NaN runs split the input into finite segments
	for _, seg := range finiteSegments(values) {
		if seg.end-seg.start < period {
			continue
		}
		var raw []float64
		if kind == SMA {
			raw = talib.Sma(values[seg.start:seg.end], period)
		} else {
			raw = talib.Ema(values[seg.start:seg.end], period)
		}
		for i := period - 1; i < len(raw); i++ {
			out[seg.start+i] = raw[i]
		}
	}
	return out, nil
}

// Overlay computes a named metric over the values of a line series.
func Overlay(kind Kind, period int, color string, points []model.TimeValuePoint) (Metric, error) {
	values, err := Compute(kind, period, model.Values(points))
	if err != nil {
		return Metric{}, err
	}
	return Metric{
		Name:   fmt.Sprintf("%s(%d)", strings.ToUpper(string(kind)), period),
		Color:  color,
		Values: values,
		Warmup: period - 1,
	}, nil
}

// Points pairs the metric values with the dates of the source samples.
func (m Metric) Points(source []model.TimeValuePoint) []model.TimeValuePoint {
	out := make([]model.TimeValuePoint, 0, len(source))
	for i, p := range source {
		if i >= len(m.Values) {
			break
		}
		out = append(out, model.TimeValuePoint{Date: p.Date, Value: m.Values[i]})
	}
	return out
}

type segment struct {
	start, end int
}

func finiteSegments(values []float64) []segment {
	var segs []segment
	start := -1
	for i, v := range values {
		finite := !math.IsNaN(v) && !math.IsInf(v, 0)
		switch {
		case finite && start < 0:
			start = i
		case !finite && start >= 0:
			segs = append(segs, segment{start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		segs = append(segs, segment{start: start, end: len(values)})
	}
	return segs
}
