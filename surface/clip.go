package surface

import (
	"math"

	"tickchart/geometry"
)

// clipSegment clips a segment to r (Liang-Barsky). ok is false when nothing is left.
func clipSegment(s geometry.Segment, r geometry.Rect) (geometry.Segment, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := s.X2-s.X1, s.Y2-s.Y1
	edges := [4][2]float64{
		{-dx, s.X1 - r.X},
		{dx, r.X + r.W - s.X1},
		{-dy, s.Y1 - r.Y},
		{dy, r.Y + r.H - s.Y1},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return geometry.Segment{}, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return geometry.Segment{}, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return geometry.Segment{}, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return geometry.Segment{
		X1: s.X1 + t0*dx,
		Y1: s.Y1 + t0*dy,
		X2: s.X1 + t1*dx,
		Y2: s.Y1 + t1*dy,
	}, true
}

// clipPolyline splits a polyline into the runs that lie inside r.
func clipPolyline(points []geometry.Point, r geometry.Rect) [][]geometry.Point {
	if len(points) == 1 {
		if pointIn(points[0], r) {
			return [][]geometry.Point{points}
		}
		return nil
	}
	var runs [][]geometry.Point
	var run []geometry.Point
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		seg, ok := clipSegment(geometry.Segment{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}, r)
		if !ok {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		start := geometry.Point{X: seg.X1, Y: seg.Y1}
		end := geometry.Point{X: seg.X2, Y: seg.Y2}
		if len(run) == 0 || run[len(run)-1] != start {
			if len(run) > 0 {
				runs = append(runs, run)
			}
			run = []geometry.Point{start}
		}
		run = append(run, end)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

func clipRect(a, r geometry.Rect) (geometry.Rect, bool) {
	x0, y0 := math.Max(a.X, r.X), math.Max(a.Y, r.Y)
	x1, y1 := math.Min(a.X+a.W, r.X+r.W), math.Min(a.Y+a.H, r.Y+r.H)
	if x1 <= x0 || y1 <= y0 {
		return geometry.Rect{}, false
	}
	return geometry.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

func pointIn(p geometry.Point, r geometry.Rect) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}
