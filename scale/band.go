package scale

import (
	"math"
	"time"
)

const DefaultBandPadding = 0.2

// BandScale splits a range into n equal slots, one per category. Bands are centred in
// their slot and padding is the fraction of the slot left empty.
type BandScale struct {
	n       int
	r0, r1  float64
	padding float64
	keys    []time.Time
}

func NewBand(n int, r0, r1, padding float64) *BandScale {
	if n < 0 {
		n = 0
	}
	if padding < 0 || padding >= 1 || math.IsNaN(padding) {
		padding = DefaultBandPadding
	}
	return &BandScale{n: n, r0: r0, r1: r1, padding: padding}
}

// NewTimeBand builds a band scale keyed by sample dates, one slot per key in order.
func NewTimeBand(keys []time.Time, r0, r1, padding float64) *BandScale {
	b := NewBand(len(keys), r0, r1, padding)
	b.keys = append([]time.Time(nil), keys...)
	return b
}

func (s *BandScale) Kind() Kind { return KindBand }

func (s *BandScale) Len() int { return s.n }

// Step is the slot width.
func (s *BandScale) Step() float64 {
	if s.n == 0 {
		return 0
	}
	return (s.r1 - s.r0) / float64(s.n)
}

func (s *BandScale) Bandwidth() float64 {
	return s.Step() * (1 - s.padding)
}

// Map returns the start of band i.
func (s *BandScale) Map(i float64) float64 {
	step := s.Step()
	return s.r0 + i*step + (step-s.Bandwidth())/2
}

// SlotStart returns the start of slot i, including its padding.
func (s *BandScale) SlotStart(i int) float64 {
	return s.r0 + float64(i)*s.Step()
}

func (s *BandScale) Center(i int) float64 {
	return s.r0 + (float64(i)+0.5)*s.Step()
}

// Invert returns the slot index under px, clamped to the valid indices.
func (s *BandScale) Invert(px float64) float64 {
	i, _ := s.Index(px)
	return float64(i)
}

// Index returns the slot under px. ok is false when px lies outside every slot; i is
// then the nearest slot.
func (s *BandScale) Index(px float64) (i int, ok bool) {
	if s.n == 0 || s.Step() == 0 {
		return 0, false
	}
	f := math.Floor((px - s.r0) / s.Step())
	switch {
	case math.IsNaN(f):
		return 0, false
	case f < 0:
		return 0, false
	case f >= float64(s.n):
		return s.n - 1, false
	}
	return int(f), true
}

// InvertTime returns the key of the slot under px. It returns the zero time for an
// unkeyed or empty scale.
func (s *BandScale) InvertTime(px float64) time.Time {
	if len(s.keys) == 0 {
		return time.Time{}
	}
	i, _ := s.Index(px)
	return s.keys[i]
}

func (s *BandScale) Key(i int) (time.Time, bool) {
	if i < 0 || i >= len(s.keys) {
		return time.Time{}, false
	}
	return s.keys[i], true
}

func (s *BandScale) Keys() []time.Time { return s.keys }

func (s *BandScale) Domain() (float64, float64) { return 0, float64(s.n) }
func (s *BandScale) Range() (float64, float64) { return s.r0, s.r1 }

func (s *BandScale) Rescale(apply, _ func(float64) float64) Scale {
	return s.rescale(apply)
}

// RescaleBand is Rescale without losing the concrete type.
func (s *BandScale) RescaleBand(apply func(float64) float64) *BandScale {
	return s.rescale(apply)
}

func (s *BandScale) rescale(apply func(float64) float64) *BandScale {
	return &BandScale{
		n:       s.n,
		r0:      apply(s.r0),
		r1:      apply(s.r1),
		padding: s.padding,
		keys:    s.keys,
	}
}
