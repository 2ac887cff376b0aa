package scale

import (
	"math"
)

// Kind tags the two scale variants.
type Kind int

const (
	KindContinuous Kind = iota
	KindBand
)

func (k Kind) String() string {
	switch k {
	case KindContinuous:
		return "continuous"
	case KindBand:
		return "band"
	}
	return "unknown"
}

// Scale maps a domain onto a pixel range. Scales are immutable; Rescale returns a new one.
type Scale interface {
	Kind() Kind
	Map(v float64) float64
	Invert(px float64) float64
	Domain() (d0, d1 float64)
	Range() (r0, r1 float64)
	// Rescale derives the live scale for a view transform. apply maps original pixels to
	// screen pixels and invert is its inverse. Continuous scales keep their range and
	// change their domain; band scales keep their keys and move their range.
	Rescale(apply, invert func(float64) float64) Scale
}

// Extent returns the min and max of the finite values.
func Extent(values []float64) (low, high float64, ok bool) {
	low, high = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		low = math.Min(low, v)
		high = math.Max(high, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return low, high, true
}

// widenValue pads a zero-width value domain so it maps onto a usable range.
func widenValue(d0, d1 float64) (float64, float64) {
	if d0 != d1 {
		return d0, d1
	}
	pad := math.Max(math.Abs(d0)*0.1, 1)
	return d0 - pad, d1 + pad
}

func interpolate(v, d0, d1, r0, r1 float64) float64 {
	if d1 == d0 {
		return r0
	}
	return r0 + (v-d0)/(d1-d0)*(r1-r0)
}
