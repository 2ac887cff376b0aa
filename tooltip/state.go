package tooltip

import (
	"math"
	"time"
)

const (
	// Offset is the gap between the focused point and the box.
	Offset     = 12.0
	LineHeight = 16.0
	Padding    = 6.0
	// CharWidth approximates the advance of one label character.
	CharWidth = 7.0
)

// State is the tooltip of the latest pointer position.
type State struct {
	Visible  bool      `json:"visible"`
	PointerX float64   `json:"pointerX"`
	PointerY float64   `json:"pointerY"`
	Index    int       `json:"index"`
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	// ScreenX and ScreenY are the focused sample in plot pixels.
	ScreenX float64  `json:"screenX"`
	ScreenY float64  `json:"screenY"`
	Lines   []string `json:"lines,omitempty"`
}

// Hidden is the state after the pointer leaves the plot.
var Hidden = State{Index: -1}

type Box struct {
	X, Y, W, H float64
}

// Size estimates the box needed for the lines.
func Size(lines []string) (w, h float64) {
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	return float64(longest)*CharWidth + 2*Padding, float64(len(lines))*LineHeight + 2*Padding
}

// Position places a w×h box to the right of the point and flips it to the left when it
// would overflow the plot width. The box is kept inside the plot vertically.
func Position(pointX, pointY, w, h, plotWidth, plotHeight float64) Box {
	x := pointX + Offset
	if x+w > plotWidth {
		x = pointX - Offset - w
	}
	x = math.Max(0, x)
	y := pointY - h/2
	y = math.Max(0, math.Min(y, plotHeight-h))
	return Box{X: x, Y: y, W: w, H: h}
}
