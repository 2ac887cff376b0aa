package host

import "time"

// Scope collects release functions for everything a render pass acquires. Close runs them
// in reverse order, once.
type Scope struct {
	releases []func()
	closed   bool
}

// Add registers a release function. Adding to a closed scope releases immediately.
func (s *Scope) Add(release func()) {
	if release == nil {
		return
	}
	if s.closed {
		release()
		return
	}
	s.releases = append(s.releases, release)
}

// Listen attaches a listener to the target and schedules its removal.
func (s *Scope) Listen(t *Target, typ EventType, fn Listener) {
	s.Add(t.On(typ, fn))
}

func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

func (s *Scope) Len() int {
	return len(s.releases)
}

// Debouncer runs the last scheduled callback once the delay passes without a newer one.
// It owns at most one pending timer.
type Debouncer struct {
	clock Clock
	delay time.Duration
	timer Timer
}

func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger replaces any pending callback with fn.
func (d *Debouncer) Trigger(fn func()) {
	d.Cancel()
	var t Timer
	t = d.clock.AfterFunc(d.delay, func() {
		if d.timer == t {
			d.timer = nil
		}
		fn()
	})
	d.timer = t
}

// Cancel stops the pending callback, if any.
func (d *Debouncer) Cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) Pending() bool {
	return d.timer != nil
}
