package model

import (
	"math"
	"time"

	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
)

// Series is an ordered run of numeric samples. NaN entries are treated as missing.
type Series[T constraints.Float] []T

// Values returns the values of the series
func (s Series[T]) Values() []T {
	return s
}

// Length returns the number of values in the series
func (s Series[T]) Length() int {
	return len(s)
}

// Extent returns the smallest and largest finite values. ok is false when the series has
// none.
func (s Series[T]) Extent() (low, high T, ok bool) {
	for _, v := range s {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if !ok {
			low, high, ok = v, v, true
			continue
		}
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	return
}

// Values extracts the value column of a line series.
func Values(points []TimeValuePoint) Series[float64] {
	return lo.Map(points, func(p TimeValuePoint, _ int) float64 { return p.Value })
}

// Closes extracts the close column of a candle series.
func Closes(points []OHLCPoint) Series[float64] {
	return lo.Map(points, func(p OHLCPoint, _ int) float64 { return p.Close })
}

func Dates(points []TimeValuePoint) []time.Time {
	return lo.Map(points, func(p TimeValuePoint, _ int) time.Time { return p.Date })
}

func CandleDates(points []OHLCPoint) []time.Time {
	return lo.Map(points, func(p OHLCPoint, _ int) time.Time { return p.Date })
}

// FinitePoints drops samples that cannot be drawn.
func FinitePoints(points []TimeValuePoint) []TimeValuePoint {
	return lo.Filter(points, func(p TimeValuePoint, _ int) bool { return p.Finite() })
}

// FiniteCandles drops candles with a missing price.
func FiniteCandles(points []OHLCPoint) []OHLCPoint {
	return lo.Filter(points, func(p OHLCPoint, _ int) bool { return p.Finite() })
}

// PriceExtent spans the lows and highs of the candles.
func PriceExtent(points []OHLCPoint) (low, high float64, ok bool) {
	for _, p := range points {
		if !p.Finite() {
			continue
		}
		if !ok {
			low, high, ok = p.Low, p.High, true
			continue
		}
		low = math.Min(low, p.Low)
		high = math.Max(high, p.High)
	}
	return
}

// TimeExtent returns the earliest and latest non-zero dates.
func TimeExtent(dates []time.Time) (first, last time.Time, ok bool) {
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		if !ok {
			first, last, ok = d, d, true
			continue
		}
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return
}
