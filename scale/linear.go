package scale

import (
	"fmt"
	"math"
	"strings"
)

// Linear is a continuous value scale.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear builds a linear scale. A zero-width domain is widened by max(|v|*0.1, 1) on
// each side.
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	d0, d1 = widenValue(d0, d1)
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

func (s *Linear) Kind() Kind { return KindContinuous }

func (s *Linear) Map(v float64) float64 {
	return interpolate(v, s.d0, s.d1, s.r0, s.r1)
}

func (s *Linear) Invert(px float64) float64 {
	return interpolate(px, s.r0, s.r1, s.d0, s.d1)
}

func (s *Linear) Domain() (float64, float64) { return s.d0, s.d1 }
func (s *Linear) Range() (float64, float64) { return s.r0, s.r1 }

func (s *Linear) Rescale(_, invert func(float64) float64) Scale {
	return s.rescale(invert)
}

// RescaleLinear is Rescale without losing the concrete type.
func (s *Linear) RescaleLinear(invert func(float64) float64) *Linear {
	return s.rescale(invert)
}

func (s *Linear) rescale(invert func(float64) float64) *Linear {
	return &Linear{
		d0: s.Invert(invert(s.r0)),
		d1: s.Invert(invert(s.r1)),
		r0: s.r0,
		r1: s.r1,
	}
}

// Ticks returns roughly count evenly spaced round values inside the domain, stepping by
// 1, 2 or 5 times a power of ten.
func (s *Linear) Ticks(count int) []float64 {
	return niceTicks(s.d0, s.d1, count)
}

// TickFormat returns a formatter with just enough decimals to tell neighbouring ticks apart.
func (s *Linear) TickFormat(ticks []float64) func(float64) string {
	prec := precision(ticks)
	return func(v float64) string {
		return FormatValue(v, prec)
	}
}

func niceTicks(d0, d1 float64, count int) []float64 {
	if count < 1 {
		count = 1
	}
	low, high := math.Min(d0, d1), math.Max(d0, d1)
	if low == high || math.IsNaN(low) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return []float64{low}
	}

	raw := (high - low) / float64(count)
	power := math.Floor(math.Log10(raw))
	magnitude := math.Pow(10, power)
	var factor float64
	switch normalized := raw / magnitude; {
	case normalized >= math.Sqrt(50):
		factor = 10
	case normalized >= math.Sqrt(10):
		factor = 5
	case normalized >= math.Sqrt(2):
		factor = 2
	default:
		factor = 1
	}

	var ticks []float64
	if power < 0 {
		// dividing by the inverse step keeps 0.1-style steps exact
		inv := math.Pow(10, -power) / factor
		start, stop := math.Ceil(low*inv), math.Floor(high*inv)
		for i := start; i <= stop; i++ {
			ticks = append(ticks, i/inv)
		}
	} else {
		step := factor * magnitude
		start, stop := math.Ceil(low/step), math.Floor(high/step)
		for i := start; i <= stop; i++ {
			ticks = append(ticks, i*step)
		}
	}
	if d0 > d1 {
		for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
			ticks[i], ticks[j] = ticks[j], ticks[i]
		}
	}
	return ticks
}

func precision(values []float64) int {
	if len(values) <= 1 {
		return 2
	}
	minDiff := math.Inf(1)
	for i := 1; i < len(values); i++ {
		if diff := math.Abs(values[i] - values[i-1]); diff > 0 && diff < minDiff {
			minDiff = diff
		}
	}
	if math.IsInf(minDiff, 0) {
		return 2
	}
	p := int(math.Max(0, -math.Floor(math.Log10(minDiff)+1e-9)))
	if p > 8 {
		return 8
	}
	return p
}

// FormatValue prints v with at most prec decimals and no trailing zeros.
func FormatValue(v float64, prec int) string {
	formatted := fmt.Sprintf("%.*f", prec, v)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
	}
	if formatted == "" || formatted == "-" || formatted == "-0" {
		return "0"
	}
	return formatted
}
