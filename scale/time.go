package scale

import (
	"math"
	"time"
)

// DegenerateTimePad is added on each side of a zero-width time domain.
const DegenerateTimePad = 12 * time.Hour

// Time is a continuous scale over instants. Its numeric domain is unix milliseconds.
type Time struct {
	lin *Linear
}

func NewTime(t0, t1 time.Time, r0, r1 float64) *Time {
	if t0.Equal(t1) {
		t0, t1 = t0.Add(-DegenerateTimePad), t1.Add(DegenerateTimePad)
	}
	return &Time{lin: &Linear{d0: Millis(t0), d1: Millis(t1), r0: r0, r1: r1}}
}

// Millis converts an instant to the numeric domain of a Time scale.
func Millis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// FromMillis is the inverse of Millis, in UTC.
func FromMillis(ms float64) time.Time {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}
	}
	return time.UnixMilli(int64(math.Round(ms))).UTC()
}

func (s *Time) Kind() Kind { return KindContinuous }
func (s *Time) Map(ms float64) float64 { return s.lin.Map(ms) }
func (s *Time) Invert(px float64) float64 { return s.lin.Invert(px) }
func (s *Time) Domain() (float64, float64) { return s.lin.Domain() }
func (s *Time) Range() (float64, float64) { return s.lin.Range() }
func (s *Time) MapTime(t time.Time) float64 { return s.lin.Map(Millis(t)) }
func (s *Time) InvertTime(px float64) time.Time { return FromMillis(s.lin.Invert(px)) }
func (s *Time) Rescale(_, invert func(float64) float64) Scale { return &Time{lin: s.lin.rescale(invert)} }

func (s *Time) RescaleTime(invert func(float64) float64) *Time {
	return &Time{lin: s.lin.rescale(invert)}
}

// TimeDomain returns the domain as instants.
func (s *Time) TimeDomain() (time.Time, time.Time) {
	return FromMillis(s.lin.d0), FromMillis(s.lin.d1)
}

type timeInterval struct {
	step   time.Duration
	months int
	layout string
}

var timeIntervals = []timeInterval{
	{step: time.Second, layout: "15:04:05"},
	{step: 5 * time.Second, layout: "15:04:05"},
	{step: 15 * time.Second, layout: "15:04:05"},
	{step: 30 * time.Second, layout: "15:04:05"},
	{step: time.Minute, layout: "15:04"},
	{step: 5 * time.Minute, layout: "15:04"},
	{step: 15 * time.Minute, layout: "15:04"},
	{step: 30 * time.Minute, layout: "15:04"},
	{step: time.Hour, layout: "15:04"},
	{step: 3 * time.Hour, layout: "15:04"},
	{step: 6 * time.Hour, layout: "15:04"},
	{step: 12 * time.Hour, layout: "Jan 02 15:04"},
	{step: 24 * time.Hour, layout: "Jan 02"},
	{step: 2 * 24 * time.Hour, layout: "Jan 02"},
	{step: 7 * 24 * time.Hour, layout: "Jan 02"},
	{months: 1, layout: "Jan 2006"},
	{months: 3, layout: "Jan 2006"},
	{months: 12, layout: "2006"},
}

const approxMonth = 30 * 24 * time.Hour

func (iv timeInterval) approx() time.Duration {
	if iv.months > 0 {
		return time.Duration(iv.months) * approxMonth
	}
	return iv.step
}

func (s *Time) interval(count int) timeInterval {
	if count < 1 {
		count = 1
	}
	t0, t1 := s.TimeDomain()
	if t1.Before(t0) {
		t0, t1 = t1, t0
	}
	target := t1.Sub(t0) / time.Duration(count)
	for _, iv := range timeIntervals {
		if iv.approx() >= target {
			return iv
		}
	}
	last := timeIntervals[len(timeIntervals)-1]
	years := int(math.Ceil(float64(target) / float64(last.approx())))
	return timeInterval{months: 12 * years, layout: last.layout}
}

// TimeTicks returns roughly count instants on calendar-aligned boundaries (UTC) inside
// the domain.
func (s *Time) TimeTicks(count int) []time.Time {
	t0, t1 := s.TimeDomain()
	if t1.Before(t0) {
		t0, t1 = t1, t0
	}
	iv := s.interval(count)

	var ticks []time.Time
	if iv.months > 0 {
		y, m, _ := t0.Date()
		cur := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		if iv.months >= 12 {
			cur = time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		} else {
			// align to multiples of the month step within the year
			offset := (int(m) - 1) % iv.months
			cur = cur.AddDate(0, -offset, 0)
		}
		for ; !cur.After(t1); cur = cur.AddDate(0, iv.months, 0) {
			if !cur.Before(t0) {
				ticks = append(ticks, cur)
			}
		}
		return ticks
	}

	step := iv.step
	cur := t0.Truncate(step)
	if cur.Before(t0) {
		cur = cur.Add(step)
	}
	for ; !cur.After(t1); cur = cur.Add(step) {
		ticks = append(ticks, cur)
	}
	return ticks
}

// TickLayout is the time.Format layout that suits the tick interval for count ticks.
func (s *Time) TickLayout(count int) string {
	return s.interval(count).layout
}
