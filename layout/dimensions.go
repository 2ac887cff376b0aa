package layout

import "math"

// Margins are the pixel gaps between the viewport edge and the plot area.
type Margins struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Viewport is the pixel size of the chart's host container.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Dimensions is the drawable plot area inside the margins.
type Dimensions struct {
	ChartWidth  float64
	ChartHeight float64
}

var DefaultMargins = Margins{Top: 20, Right: 30, Bottom: 40, Left: 60}

// Calculate derives the plot area. Negative results are floored at 0.
func Calculate(v Viewport, m Margins) Dimensions {
	return Dimensions{
		ChartWidth:  math.Max(0, v.Width-m.Left-m.Right),
		ChartHeight: math.Max(0, v.Height-m.Top-m.Bottom),
	}
}

// Empty reports a plot with no drawable area.
func (d Dimensions) Empty() bool {
	return d.ChartWidth <= 0 || d.ChartHeight <= 0
}

func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}
