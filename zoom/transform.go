package zoom

import (
	"fmt"
	"math"

	"tickchart/scale"
)

// Transform is a view transform: screen = original*K + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var Identity = Transform{K: 1}

func (t Transform) ApplyX(x float64) float64 { return x*t.K + t.X }
func (t Transform) ApplyY(y float64) float64 { return y*t.K + t.Y }
func (t Transform) InvertX(x float64) float64 { return (x - t.X) / t.K }
func (t Transform) InvertY(y float64) float64 { return (y - t.Y) / t.K }

func (t Transform) Inverse() Transform {
	return Transform{K: 1 / t.K, X: -t.X / t.K, Y: -t.Y / t.K}
}

// Compose returns the transform that applies o first and then t.
func (t Transform) Compose(o Transform) Transform {
	return Transform{K: t.K * o.K, X: t.K*o.X + t.X, Y: t.K*o.Y + t.Y}
}

// Translate moves the view by (dx, dy) original pixels.
func (t Transform) Translate(dx, dy float64) Transform {
	if dx == 0 && dy == 0 {
		return t
	}
	return Transform{K: t.K, X: t.X + t.K*dx, Y: t.Y + t.K*dy}
}

// ScaleAbout changes the scale factor to k keeping the screen point (px, py) fixed.
func (t Transform) ScaleAbout(k, px, py float64) Transform {
	ox, oy := t.InvertX(px), t.InvertY(py)
	return Transform{K: k, X: px - ox*k, Y: py - oy*k}
}

func (t Transform) RescaleX(s scale.Scale) scale.Scale {
	return s.Rescale(t.ApplyX, t.InvertX)
}

func (t Transform) RescaleY(s scale.Scale) scale.Scale {
	return s.Rescale(t.ApplyY, t.InvertY)
}

func (t Transform) IsIdentity() bool {
	return t.K == 1 && t.X == 0 && t.Y == 0
}

// Approx reports whether both transforms agree within eps on every component.
func (t Transform) Approx(o Transform, eps float64) bool {
	return math.Abs(t.K-o.K) <= eps && math.Abs(t.X-o.X) <= eps && math.Abs(t.Y-o.Y) <= eps
}

func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}
