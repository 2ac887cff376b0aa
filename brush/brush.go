package brush

import (
	"math"
	"time"
)

const (
	// LaneHeight is the height of the drag lane beneath the plot.
	LaneHeight = 30.0
	// MinSpan is the smallest drag, in pixels, that counts as a selection.
	MinSpan = 1.0
)

// Selection is the brushed pixel span, ordered and clamped to the lane.
type Selection struct {
	StartPixel float64 `json:"startPixel"`
	EndPixel   float64 `json:"endPixel"`
}

func (s Selection) Width() float64 {
	return s.EndPixel - s.StartPixel
}

// Range is the brushed date interval.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimeInverter converts a lane pixel back to a date.
type TimeInverter interface {
	InvertTime(px float64) time.Time
}

// Controller tracks one horizontal brush gesture. It is independent of the zoom state;
// the x-scale in effect when the drag ends is passed to End.
type Controller struct {
	width    float64
	onChange func(*Range)

	active    bool
	origin    float64
	selection *Selection
	previous  *Selection
	rng       *Range
}

// NewController creates a brush over a lane of the given width. onChange receives the new
// range, or nil when the selection is cleared.
func NewController(width float64, onChange func(*Range)) *Controller {
	return &Controller{width: width, onChange: onChange}
}

func (c *Controller) Active() bool { return c.active }

// Start begins a drag at px.
func (c *Controller) Start(px float64) {
	c.active = true
	c.previous = c.selection
	c.origin = c.clamp(px)
	c.selection = &Selection{StartPixel: c.origin, EndPixel: c.origin}
}

// Move extends the drag to px.
func (c *Controller) Move(px float64) {
	if !c.active {
		return
	}
	c.selection = c.span(px)
}

// End finishes the drag. Spans narrower than MinSpan clear the selection.
func (c *Controller) End(px float64, live TimeInverter) *Range {
	if !c.active {
		return c.rng
	}
	c.active = false
	sel := c.span(px)
	if sel.Width() < MinSpan || live == nil {
		c.selection = nil
		c.rng = nil
		c.notify()
		return nil
	}
	c.selection = sel
	c.rng = &Range{Start: live.InvertTime(sel.StartPixel), End: live.InvertTime(sel.EndPixel)}
	c.notify()
	return c.rng
}

// Cancel abandons an in-progress drag and keeps the previous selection.
func (c *Controller) Cancel() {
	if !c.active {
		return
	}
	c.active = false
	c.selection = c.previous
}

// Clear drops the selection. The callback only runs when there was one.
func (c *Controller) Clear() {
	c.active = false
	c.selection = nil
	c.previous = nil
	if c.rng == nil {
		return
	}
	c.rng = nil
	c.notify()
}

func (c *Controller) Selection() *Selection {
	if c.selection == nil {
		return nil
	}
	s := *c.selection
	return &s
}

func (c *Controller) Range() *Range {
	if c.rng == nil {
		return nil
	}
	r := *c.rng
	return &r
}

func (c *Controller) span(px float64) *Selection {
	end := c.clamp(px)
	return &Selection{StartPixel: math.Min(c.origin, end), EndPixel: math.Max(c.origin, end)}
}

func (c *Controller) clamp(px float64) float64 {
	if math.IsNaN(px) {
		return 0
	}
	return math.Max(0, math.Min(c.width, px))
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.Range())
	}
}
