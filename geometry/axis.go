package geometry

import (
	"math"

	"tickchart/scale"
)

type Orientation int

const (
	Bottom Orientation = iota
	Left
)

type Tick struct {
	Pos   float64
	Label string
}

// Axis is a set of labelled tick positions along one plot edge.
type Axis struct {
	Orient   Orientation
	Ticks    []Tick
	Rotation float64
	Anchor   string
}

// LabelStyle carries the responsive label rules.
type LabelStyle struct {
	Count    int
	Rotation float64
	Anchor   string
}

func TimeAxis(s *scale.Time, style LabelStyle) Axis {
	layout := s.TickLayout(style.Count)
	axis := Axis{Orient: Bottom, Rotation: style.Rotation, Anchor: style.Anchor}
	for _, t := range s.TimeTicks(style.Count) {
		axis.Ticks = append(axis.Ticks, Tick{Pos: s.MapTime(t), Label: t.Format(layout)})
	}
	return axis
}

func ValueAxis(s *scale.Linear, count int) Axis {
	values := s.Ticks(count)
	format := s.TickFormat(values)
	axis := Axis{Orient: Left, Anchor: "end"}
	for _, v := range values {
		axis.Ticks = append(axis.Ticks, Tick{Pos: s.Map(v), Label: format(v)})
	}
	return axis
}

// BandAxis labels every k-th band key so that about style.Count labels are shown.
// Bands whose centre falls outside [r0, r1] of visible are skipped.
func BandAxis(s *scale.BandScale, style LabelStyle, layout string, visible [2]float64) Axis {
	axis := Axis{Orient: Bottom, Rotation: style.Rotation, Anchor: style.Anchor}
	keys := s.Keys()
	if len(keys) == 0 {
		return axis
	}

	first, last := 0, len(keys)-1
	for first < len(keys) && s.Center(first) < visible[0] {
		first++
	}
	for last >= 0 && s.Center(last) > visible[1] {
		last--
	}
	if first > last {
		return axis
	}
	count := style.Count
	if count < 1 {
		count = 1
	}
	every := int(math.Ceil(float64(last-first+1) / float64(count)))
	if every < 1 {
		every = 1
	}
	for i := first; i <= last; i += every {
		axis.Ticks = append(axis.Ticks, Tick{Pos: s.Center(i), Label: keys[i].Format(layout)})
	}
	return axis
}
