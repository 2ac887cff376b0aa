package layout

import (
	"math"
	"time"

	"tickchart/host"
)

const (
	MobileBreakpoint = 768
	MobileMaxHeight  = 300
	ResizeQuiescence = 150 * time.Millisecond

	desktopTicks = 8
	mobileTicks  = 4
)

var MobileMargins = Margins{Top: 10, Right: 15, Bottom: 40, Left: 45}

// Rules are the layout decisions that depend on the container width.
type Rules struct {
	// Observed is the container size as reported; Viewport is what gets drawn.
	Observed      Viewport
	Viewport      Viewport
	Margins       Margins
	Dimensions    Dimensions
	TickCount     int
	LabelRotation float64 // degrees
	LabelAnchor   string
	Mobile        bool
}

// Responsive applies the breakpoint rules to an observed container size. base is the
// caller's margin set used at desktop widths.
func Responsive(observed Viewport, base Margins) Rules {
	r := Rules{
		Observed:    observed,
		Viewport:    observed,
		Margins:     base,
		TickCount:   desktopTicks,
		LabelAnchor: "middle",
	}
	if observed.Width < MobileBreakpoint {
		r.Mobile = true
		r.Margins = MobileMargins
		r.Viewport.Height = math.Min(observed.Height, MobileMaxHeight)
		r.TickCount = mobileTicks
		r.LabelRotation = -45
		r.LabelAnchor = "end"
	}
	r.Dimensions = Calculate(r.Viewport, r.Margins)
	return r
}

// Manager watches a container's size and commits debounced layout changes.
type Manager struct {
	base      Margins
	debouncer *host.Debouncer
	onLayout  func(Rules)
	observed  Viewport
	current   Rules
	committed bool
	detach    func()
}

// NewManager subscribes to resize events on target. onLayout runs once per settled
// resize burst with the rules derived from the last observed size.
func NewManager(target *host.Target, clock host.Clock, base Margins, onLayout func(Rules)) *Manager {
	m := &Manager{
		base:      base,
		debouncer: host.NewDebouncer(clock, ResizeQuiescence),
		onLayout:  onLayout,
	}
	if target != nil {
		m.detach = target.On(host.Resize, func(e host.Event) {
			m.Observe(Viewport{Width: e.Width, Height: e.Height})
		})
	}
	return m
}

// Observe records a container size and restarts the quiescence window.
func (m *Manager) Observe(v Viewport) {
	m.debouncer.Trigger(func() {
		m.Commit(v)
	})
}

// Commit applies a size immediately, bypassing the debounce.
func (m *Manager) Commit(v Viewport) {
	m.debouncer.Cancel()
	m.observed = v
	m.current = Responsive(v, m.base)
	m.committed = true
	if m.onLayout != nil {
		m.onLayout(m.current)
	}
}

// SetBase swaps the desktop margins without triggering a layout.
func (m *Manager) SetBase(base Margins) {
	m.base = base
	if m.committed {
		m.current = Responsive(m.observed, base)
	}
}

// Current returns the last committed rules.
func (m *Manager) Current() (Rules, bool) {
	return m.current, m.committed
}

func (m *Manager) Pending() bool {
	return m.debouncer.Pending()
}

// Close detaches the resize listener and cancels any pending commit.
func (m *Manager) Close() {
	m.debouncer.Cancel()
	if m.detach != nil {
		m.detach()
		m.detach = nil
	}
}
