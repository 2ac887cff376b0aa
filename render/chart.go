package render

import (
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tickchart/brush"
	"tickchart/geometry"
	"tickchart/host"
	"tickchart/layout"
	"tickchart/surface"
	"tickchart/tooltip"
	"tickchart/utils/log"
	"tickchart/zoom"
)

const (
	LayerPlaceholder = "placeholder"
	LayerGrid        = "grid"
	LayerVolume      = "volume"
	LayerSeries      = "series"
	LayerCandles     = "candles"
	LayerIndicator   = "indicator"
	LayerAxis        = "axis"
	LayerBrush       = "brush"
	LayerHit         = "hit"
	LayerTooltip     = "tooltip"
)

var layerZ = map[string]int{
	LayerGrid:        0,
	LayerVolume:      1,
	LayerSeries:      2,
	LayerCandles:     2,
	LayerIndicator:   3,
	LayerAxis:        4,
	LayerBrush:       5,
	LayerHit:         6,
	LayerTooltip:     7,
	LayerPlaceholder: 8,
}

const (
	// brushGap leaves room for the x-axis labels above the brush lane.
	brushGap   = 28.0
	tickSize   = 6.0
	axisColor  = "#9ca3af"
	gridColor  = "#e5e7eb"
	labelColor = "#374151"
	// edgeSlack admits ticks that land a hair outside the plot through rounding.
	edgeSlack = 0.5
)

const PlaceholderText = "No data available"

// kind is the chart-type specific half of a render pass.
type kind interface {
	// drawable returns the number of samples that survive filtering.
	drawable() int
	// build creates the original scales, then draws through redraw.
	build(p *pass)
	// redraw derives the live scales from p.transform and rebuilds series and axes.
	redraw(p *pass)
	locate(p *pass, x, y float64) (tooltip.State, bool)
	timeInverter() brush.TimeInverter
	tooltipLines() int
}

// pass is everything one render pass acquires. It is dropped wholesale on teardown.
type pass struct {
	scope     *host.Scope
	rules     layout.Rules
	plot      geometry.Rect // surface pixels
	lane      geometry.Rect // surface pixels
	transform zoom.Transform
	zoom      *zoom.Controller
	brush     *brush.Controller
	selection *surface.Node
	tip       tipNodes
}

type tipNodes struct {
	focusX *surface.Node
	focusY *surface.Node
	marker *surface.Node
	box    *surface.Node
	lines  []*surface.Node
}

func (t tipNodes) all() []*surface.Node {
	if t.box == nil {
		return nil
	}
	return append([]*surface.Node{t.focusX, t.focusY, t.marker, t.box}, t.lines...)
}

func (p *pass) local(e host.Event) (float64, float64) {
	return e.X - p.plot.X, e.Y - p.plot.Y
}

// chart is the lifecycle shared by every chart type: it owns the surface, the layout
// manager and the current pass.
type chart struct {
	id     string
	log    *logrus.Entry
	target *host.Target
	surf   *surface.Surface
	cfg    Config
	opts   options
	rules  layout.Rules
	layout *layout.Manager
	kind   kind
	pass   *pass
	tip    tooltip.State
	passes int
	closed bool
}

func newChart(component string, target *host.Target, surf *surface.Surface, clock host.Clock, cfg Config, k kind) *chart {
	if surf == nil {
		surf = surface.New(0, 0)
	}
	c := &chart{
		id:     uuid.NewString(),
		target: target,
		surf:   surf,
		cfg:    cfg,
		opts:   cfg.resolve(),
		kind:   k,
		tip:    tooltip.Hidden,
	}
	c.log = log.Component(component).WithField("chart", c.id)
	c.rules = layout.Responsive(c.opts.viewport(), c.opts.Margins)
	c.layout = layout.NewManager(target, clock, c.opts.Margins, c.onLayout)
	return c
}

func (c *chart) ID() string { return c.id }

func (c *chart) Surface() *surface.Surface { return c.surf }

// Rules returns the layout rules of the current pass.
func (c *chart) Rules() layout.Rules { return c.rules }

// Passes counts the render passes run so far, skipped ones included.
func (c *chart) Passes() int { return c.passes }

// Tooltip returns the state for the latest pointer position.
func (c *chart) Tooltip() tooltip.State { return c.tip }

// Selection returns the brushed range, or nil.
func (c *chart) Selection() *brush.Range {
	if c.pass == nil || c.pass.brush == nil {
		return nil
	}
	return c.pass.brush.Range()
}

func (c *chart) Transform() zoom.Transform {
	if c.pass == nil {
		return zoom.Identity
	}
	return c.pass.transform
}

// SetConfig replaces the options and re-renders. A changed width or height replaces the
// observed container size.
func (c *chart) SetConfig(cfg Config) {
	if c.closed {
		return
	}
	prev := c.opts
	c.cfg = cfg
	c.opts = cfg.resolve()
	viewport := c.rules.Observed
	if c.opts.Width != prev.Width || c.opts.Height != prev.Height {
		viewport = c.opts.viewport()
	}
	c.layout.SetBase(c.opts.Margins)
	c.rules = layout.Responsive(viewport, c.opts.Margins)
	c.render()
}

// Resize applies a container size immediately, bypassing the resize debounce.
func (c *chart) Resize(width, height float64) {
	if c.closed {
		return
	}
	c.layout.Commit(layout.Viewport{Width: width, Height: height})
}

func (c *chart) ResetZoom() {
	if c.pass != nil && c.pass.zoom != nil {
		c.pass.zoom.Reset()
	}
}

// Close tears down the current pass and detaches from the host. The surface is left empty.
func (c *chart) Close() {
	if c.closed {
		return
	}
	c.teardown()
	c.layout.Close()
	c.closed = true
	c.log.Debug("chart closed")
}

func (c *chart) onLayout(r layout.Rules) {
	if c.closed {
		return
	}
	c.rules = r
	c.log.Debugf("layout committed: %vx%v mobile=%v", r.Viewport.Width, r.Viewport.Height, r.Mobile)
	c.render()
}

func (c *chart) teardown() {
	if c.pass != nil {
		c.pass.scope.Close()
		c.pass = nil
	}
	c.surf.Clear()
	c.tip = tooltip.Hidden
}

func (c *chart) render() {
	if c.closed {
		return
	}
	c.teardown()
	c.passes++

	r := c.rules
	p := &pass{scope: &host.Scope{}, rules: r, transform: zoom.Identity}
	c.pass = p
	c.surf.Resize(r.Viewport.Width, r.Viewport.Height)

	dims := r.Dimensions
	if c.opts.EnableBrush {
		dims.ChartHeight = math.Max(0, dims.ChartHeight-brushGap-brush.LaneHeight)
	}
	if dims.Empty() {
		c.log.Debugf("render pass %d skipped: plot area is %vx%v", c.passes, dims.ChartWidth, dims.ChartHeight)
		return
	}
	p.plot = geometry.Rect{X: r.Margins.Left, Y: r.Margins.Top, W: dims.ChartWidth, H: dims.ChartHeight}
	p.lane = geometry.Rect{X: p.plot.X, Y: p.plot.Y + p.plot.H + brushGap, W: p.plot.W, H: brush.LaneHeight}

	if c.kind.drawable() == 0 {
		c.placeholder(p)
		return
	}
	c.kind.build(p)
	c.buildTooltip(p)
	c.buildBrush(p)
	c.attach(p)
}

func (c *chart) placeholder(p *pass) {
	style := surface.Style{Fill: labelColor, FontSize: 14, Anchor: "middle"}
	c.addPlot(p, surface.TextNode(LayerPlaceholder, p.plot.W/2, p.plot.H/2, PlaceholderText, style), false)
}

// addPlot places a node given in plot pixels onto the surface.
func (c *chart) addPlot(p *pass, n *surface.Node, clip bool) *surface.Node {
	n.Offset = geometry.Point{X: p.plot.X, Y: p.plot.Y}
	if clip {
		n.Clip = &geometry.Rect{W: p.plot.W, H: p.plot.H}
	}
	n.Z = layerZ[n.Layer]
	return c.surf.Add(n)
}

func hidden(n *surface.Node) *surface.Node {
	n.Hidden = true
	return n
}

func (c *chart) drawAxes(p *pass, x, y geometry.Axis) {
	c.surf.RemoveLayer(LayerAxis)
	c.surf.RemoveLayer(LayerGrid)

	w, h := p.plot.W, p.plot.H
	axisStyle := surface.Style{Stroke: axisColor, StrokeWidth: 1}
	gridStyle := surface.Style{Stroke: gridColor, StrokeWidth: 1}
	c.addPlot(p, surface.LineNode(LayerAxis, geometry.Segment{Y1: h, X2: w, Y2: h}, axisStyle), false)
	c.addPlot(p, surface.LineNode(LayerAxis, geometry.Segment{Y2: h}, axisStyle), false)

	for _, t := range x.Ticks {
		if t.Pos < -edgeSlack || t.Pos > w+edgeSlack {
			continue
		}
		c.addPlot(p, surface.LineNode(LayerAxis, geometry.Segment{X1: t.Pos, Y1: h, X2: t.Pos, Y2: h + tickSize}, axisStyle), false)
		style := surface.Style{Fill: labelColor, FontSize: 10, Rotation: x.Rotation, Anchor: x.Anchor}
		c.addPlot(p, surface.TextNode(LayerAxis, t.Pos, h+tickSize+12, t.Label, style), false)
	}
	for _, t := range y.Ticks {
		if t.Pos < -edgeSlack || t.Pos > h+edgeSlack {
			continue
		}
		c.addPlot(p, surface.LineNode(LayerAxis, geometry.Segment{X1: -tickSize, Y1: t.Pos, Y2: t.Pos}, axisStyle), false)
		style := surface.Style{Fill: labelColor, FontSize: 10, Anchor: "end"}
		c.addPlot(p, surface.TextNode(LayerAxis, -tickSize-3, t.Pos+4, t.Label, style), false)
		c.addPlot(p, surface.LineNode(LayerGrid, geometry.Segment{Y1: t.Pos, X2: w, Y2: t.Pos}, gridStyle), false)
	}
}

func (c *chart) buildTooltip(p *pass) {
	if !c.opts.EnableTooltip {
		return
	}
	dash := surface.Style{Stroke: axisColor, StrokeWidth: 1, Dash: []float64{4, 4}}
	p.tip.focusX = c.addPlot(p, hidden(surface.LineNode(LayerTooltip, geometry.Segment{}, dash)), false)
	p.tip.focusY = c.addPlot(p, hidden(surface.LineNode(LayerTooltip, geometry.Segment{}, dash)), false)
	p.tip.marker = c.addPlot(p, hidden(surface.CircleNode(LayerTooltip, 0, 0, 4,
		surface.Style{Fill: c.opts.LineColor, Stroke: "#ffffff", StrokeWidth: 1})), false)
	p.tip.box = c.addPlot(p, hidden(surface.RectNode(LayerTooltip, geometry.Rect{},
		surface.Style{Fill: "#ffffff", Stroke: "#d1d5db", StrokeWidth: 1})), false)
	for i := 0; i < c.kind.tooltipLines(); i++ {
		text := surface.TextNode(LayerTooltip, 0, 0, "", surface.Style{Fill: labelColor, FontSize: 11})
		p.tip.lines = append(p.tip.lines, c.addPlot(p, hidden(text), false))
	}
}

func (c *chart) showTooltip(p *pass, lx, ly float64) {
	st, ok := c.kind.locate(p, lx, ly)
	if !ok {
		c.hideTooltip(p)
		return
	}
	st.Visible = true
	st.PointerX, st.PointerY = lx, ly
	c.tip = st

	t := p.tip
	if t.box == nil {
		return
	}
	t.focusX.Line = geometry.Segment{X1: st.ScreenX, X2: st.ScreenX, Y2: p.plot.H}
	t.focusY.Line = geometry.Segment{Y1: st.ScreenY, X2: p.plot.W, Y2: st.ScreenY}
	t.marker.Center = geometry.Point{X: st.ScreenX, Y: st.ScreenY}

	w, h := tooltip.Size(st.Lines)
	box := tooltip.Position(st.ScreenX, st.ScreenY, w, h, p.plot.W, p.plot.H)
	t.box.Rect = geometry.Rect{X: box.X, Y: box.Y, W: box.W, H: box.H}
	for i, n := range t.lines {
		n.Text = ""
		if i < len(st.Lines) {
			n.Text = st.Lines[i]
		}
		n.Center = geometry.Point{
			X: box.X + tooltip.Padding,
			Y: box.Y + tooltip.Padding + float64(i+1)*tooltip.LineHeight - 4,
		}
	}
	for _, n := range t.all() {
		n.Show()
	}
}

func (c *chart) hideTooltip(p *pass) {
	c.tip = tooltip.Hidden
	for _, n := range p.tip.all() {
		n.Hide()
	}
}

func (c *chart) buildBrush(p *pass) {
	if !c.opts.EnableBrush {
		return
	}
	p.brush = brush.NewController(p.plot.W, c.onBrush)
	laneTop := p.lane.Y - p.plot.Y
	c.addPlot(p, surface.RectNode(LayerBrush, geometry.Rect{Y: laneTop, W: p.plot.W, H: brush.LaneHeight},
		surface.Style{Fill: "#f3f4f6", Stroke: gridColor, StrokeWidth: 1}), false)
	p.selection = c.addPlot(p, hidden(surface.RectNode(LayerBrush, geometry.Rect{},
		surface.Style{Fill: withAlpha(c.opts.LineColor, "33"), Stroke: c.opts.LineColor, StrokeWidth: 1})), false)
}

func (c *chart) drawSelection(p *pass) {
	if p.selection == nil {
		return
	}
	sel := p.brush.Selection()
	if sel == nil {
		p.selection.Hide()
		return
	}
	p.selection.Rect = geometry.Rect{X: sel.StartPixel, Y: p.lane.Y - p.plot.Y, W: sel.Width(), H: brush.LaneHeight}
	p.selection.Show()
}

func (c *chart) onBrush(r *brush.Range) {
	if r == nil {
		c.log.Debug("brush selection cleared")
	} else {
		c.log.Debugf("brush selection %s - %s", r.Start.Format(dateTimeLayout), r.End.Format(dateTimeLayout))
	}
	if c.cfg.OnBrushSelection != nil {
		c.cfg.OnBrushSelection(r)
	}
}

// attach creates the zoom controller and registers the pass listeners.
func (c *chart) attach(p *pass) {
	if c.opts.EnableZoom {
		p.zoom = zoom.NewController(zoom.Options{
			MinScale:     c.opts.MinScale,
			MaxScale:     c.opts.MaxScale,
			Width:        p.plot.W,
			Height:       p.plot.H,
			ConstrainPan: true,
		}, func(t zoom.Transform) {
			p.transform = t
			c.kind.redraw(p)
			if c.tip.Visible {
				c.showTooltip(p, c.tip.PointerX, c.tip.PointerY)
			}
		})
	}
	if c.target == nil || !(c.opts.EnableZoom || c.opts.EnableTooltip || c.opts.EnableBrush) {
		return
	}

	s := p.scope
	s.Listen(c.target, host.PointerDown, func(e host.Event) { c.pointerDown(p, e) })
	s.Listen(c.target, host.PointerMove, func(e host.Event) { c.pointerMove(p, e) })
	s.Listen(c.target, host.PointerUp, func(e host.Event) { c.pointerUp(p, e) })
	s.Listen(c.target, host.PointerLeave, func(e host.Event) { c.pointerLeave(p) })
	if p.zoom != nil {
		s.Listen(c.target, host.Wheel, func(e host.Event) {
			if p.plot.Contains(e.X, e.Y) {
				lx, ly := p.local(e)
				p.zoom.Wheel(lx, ly, e.DeltaY)
			}
		})
		s.Listen(c.target, host.Pinch, func(e host.Event) {
			if p.plot.Contains(e.X, e.Y) {
				lx, ly := p.local(e)
				p.zoom.Pinch(lx, ly, e.Scale)
			}
		})
	}
}

func (c *chart) pointerDown(p *pass, e host.Event) {
	lx, ly := p.local(e)
	switch {
	case p.brush != nil && p.lane.Contains(e.X, e.Y):
		p.brush.Start(lx)
		c.drawSelection(p)
	case p.zoom != nil && p.plot.Contains(e.X, e.Y):
		p.zoom.Begin(lx, ly)
	}
}

func (c *chart) pointerMove(p *pass, e host.Event) {
	lx, ly := p.local(e)
	if p.brush != nil && p.brush.Active() {
		p.brush.Move(lx)
		c.drawSelection(p)
		return
	}
	if p.zoom != nil && p.zoom.Dragging() {
		p.zoom.Pan(lx, ly)
	}
	if !c.opts.EnableTooltip {
		return
	}
	if p.plot.Contains(e.X, e.Y) {
		c.showTooltip(p, lx, ly)
	} else {
		c.hideTooltip(p)
	}
}

func (c *chart) pointerUp(p *pass, e host.Event) {
	lx, _ := p.local(e)
	if p.brush != nil && p.brush.Active() {
		p.brush.End(lx, c.kind.timeInverter())
		c.drawSelection(p)
	}
	if p.zoom != nil {
		p.zoom.End()
	}
}

func (c *chart) pointerLeave(p *pass) {
	c.hideTooltip(p)
	if p.brush != nil {
		p.brush.Cancel()
		c.drawSelection(p)
	}
	if p.zoom != nil {
		p.zoom.End()
	}
}

// withAlpha appends an alpha channel to a #rrggbb color.
func withAlpha(color, alpha string) string {
	if len(color) == 7 && color[0] == '#' {
		return color + alpha
	}
	return color
}
