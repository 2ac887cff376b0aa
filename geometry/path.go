package geometry

import (
	"math"
	"strconv"
	"strings"

	"tickchart/model"
	"tickchart/scale"
)

type Point struct {
	X, Y float64
}

// Path is a polyline in plot pixels.
type Path struct {
	Points []Point
}

func (p Path) Empty() bool {
	return len(p.Points) == 0
}

// D renders the path as SVG path data.
func (p Path) D() string {
	var b strings.Builder
	for i, pt := range p.Points {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(formatCoord(pt.X))
		b.WriteByte(',')
		b.WriteString(formatCoord(pt.Y))
	}
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// LinePath joins the finite samples in input order. Samples with a missing date or a
// non-finite value are left out and the line continues with the next drawable sample.
func LinePath(points []model.TimeValuePoint, x scale.Scale, y scale.Scale) Path {
	path := Path{Points: make([]Point, 0, len(points))}
	for _, p := range points {
		if !p.Finite() {
			continue
		}
		px, py := x.Map(scale.Millis(p.Date)), y.Map(p.Value)
		if math.IsNaN(px) || math.IsNaN(py) {
			continue
		}
		path.Points = append(path.Points, Point{X: px, Y: py})
	}
	return path
}
