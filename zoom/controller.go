package zoom

import (
	"math"
)

const (
	DefaultMinScale = 1.0
	DefaultMaxScale = 20.0
	// wheelRate converts a wheel delta into a log2 scale step.
	wheelRate = 0.002
)

type State int

const (
	Idle State = iota
	Zooming
)

func (s State) String() string {
	if s == Zooming {
		return "zooming"
	}
	return "idle"
}

type Options struct {
	MinScale float64
	MaxScale float64
	// Width and Height are the plot extent panning is constrained to.
	Width, Height float64
	ConstrainPan  bool
}

func (o Options) withDefaults() Options {
	if o.MinScale <= 0 {
		o.MinScale = DefaultMinScale
	}
	if o.MaxScale <= 0 {
		o.MaxScale = DefaultMaxScale
	}
	if o.MaxScale < o.MinScale {
		o.MaxScale = o.MinScale
	}
	return o
}

// Controller owns the transform of one render pass. Coordinates are plot pixels.
type Controller struct {
	opts      Options
	transform Transform
	state     State
	dragging  bool
	lastX     float64
	lastY     float64
	onChange  func(Transform)
}

// NewController starts at the identity transform. onChange runs after every update.
func NewController(opts Options, onChange func(Transform)) *Controller {
	return &Controller{
		opts:      opts.withDefaults(),
		transform: Identity,
		onChange:  onChange,
	}
}

func (c *Controller) Transform() Transform { return c.transform }
func (c *Controller) State() State { return c.state }
func (c *Controller) Dragging() bool { return c.dragging }

// Begin starts a pan gesture at (px, py).
func (c *Controller) Begin(px, py float64) {
	c.state = Zooming
	c.dragging = true
	c.lastX, c.lastY = px, py
}

// Pan moves the view by the drag delta since the previous pointer position.
func (c *Controller) Pan(px, py float64) {
	if !c.dragging {
		return
	}
	dx, dy := px-c.lastX, py-c.lastY
	c.lastX, c.lastY = px, py
	next := c.transform
	next.X += dx
	next.Y += dy
	c.update(next)
}

func (c *Controller) End() {
	c.dragging = false
	c.state = Idle
}

// Wheel zooms about the pointer. Positive deltaY zooms out.
func (c *Controller) Wheel(px, py, deltaY float64) {
	c.zoomBy(math.Pow(2, -deltaY*wheelRate), px, py)
}

// Pinch multiplies the scale factor by the gesture factor about the gesture centre.
func (c *Controller) Pinch(px, py, factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	c.zoomBy(factor, px, py)
}

func (c *Controller) zoomBy(factor, px, py float64) {
	c.state = Zooming
	k := c.clamp(c.transform.K * factor)
	c.update(c.transform.ScaleAbout(k, px, py))
	if !c.dragging {
		c.state = Idle
	}
}

// Reset returns to the identity transform.
func (c *Controller) Reset() {
	c.dragging = false
	c.state = Idle
	c.update(Identity)
}

// Set replaces the transform, applying the scale bounds and pan constraint.
func (c *Controller) Set(t Transform) {
	t.K = c.clamp(t.K)
	c.update(t)
}

func (c *Controller) clamp(k float64) float64 {
	return math.Max(c.opts.MinScale, math.Min(c.opts.MaxScale, k))
}

func (c *Controller) update(next Transform) {
	if c.opts.ConstrainPan {
		next = c.constrain(next)
	}
	if next == c.transform {
		return
	}
	c.transform = next
	if c.onChange != nil {
		c.onChange(next)
	}
}

// constrain keeps the plot extent covered by the transformed content.
func (c *Controller) constrain(t Transform) Transform {
	dx0 := t.InvertX(0)
	dx1 := t.InvertX(c.opts.Width) - c.opts.Width
	dy0 := t.InvertY(0)
	dy1 := t.InvertY(c.opts.Height) - c.opts.Height
	return t.Translate(constrainAxis(dx0, dx1), constrainAxis(dy0, dy1))
}

func constrainAxis(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if v := math.Min(0, d0); v != 0 {
		return v
	}
	return math.Max(0, d1)
}
