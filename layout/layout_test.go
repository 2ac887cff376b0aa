package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tickchart/host"
)

func TestCalculate(t *testing.T) {
	d := Calculate(Viewport{Width: 800, Height: 400}, DefaultMargins)
	require.Equal(t, 710.0, d.ChartWidth)
	require.Equal(t, 340.0, d.ChartHeight)
	require.False(t, d.Empty())
}

func TestCalculate_FloorsAtZero(t *testing.T) {
	d := Calculate(Viewport{Width: 50, Height: 0}, DefaultMargins)
	require.Zero(t, d.ChartWidth)
	require.Zero(t, d.ChartHeight)
	require.True(t, d.Empty())
}

func TestResponsive_Desktop(t *testing.T) {
	base := Margins{Top: 5, Right: 5, Bottom: 30, Left: 50}
	r := Responsive(Viewport{Width: 1024, Height: 500}, base)
	require.False(t, r.Mobile)
	require.Equal(t, base, r.Margins)
	require.Equal(t, 500.0, r.Viewport.Height)
	require.Equal(t, desktopTicks, r.TickCount)
	require.Zero(t, r.LabelRotation)
	require.Equal(t, "middle", r.LabelAnchor)
	require.Equal(t, 969.0, r.Dimensions.ChartWidth)
}

func TestResponsive_Mobile(t *testing.T) {
	r := Responsive(Viewport{Width: 767, Height: 600}, DefaultMargins)
	require.True(t, r.Mobile)
	require.Equal(t, MobileMargins, r.Margins)
	require.Equal(t, float64(MobileMaxHeight), r.Viewport.Height)
	require.Equal(t, mobileTicks, r.TickCount)
	require.Equal(t, -45.0, r.LabelRotation)
	require.Equal(t, "end", r.LabelAnchor)
	require.Equal(t, 767.0-45-15, r.Dimensions.ChartWidth)
}

func TestManager_DebouncesResizeBurst(t *testing.T) {
	clock := host.NewManualClock(time.Unix(0, 0))
	target := host.NewTarget()
	var commits []Rules
	m := NewManager(target, clock, DefaultMargins, func(r Rules) { commits = append(commits, r) })

	for w := 900.0; w < 1000; w += 10 {
		target.Dispatch(host.Event{Type: host.Resize, Width: w, Height: 400})
		clock.Advance(20 * time.Millisecond)
	}
	require.Empty(t, commits)

	clock.Advance(ResizeQuiescence)
	require.Len(t, commits, 1)
	require.Equal(t, 990.0, commits[0].Viewport.Width)

	current, ok := m.Current()
	require.True(t, ok)
	require.Equal(t, commits[0], current)
}

func TestManager_CloseCancelsPending(t *testing.T) {
	clock := host.NewManualClock(time.Unix(0, 0))
	target := host.NewTarget()
	calls := 0
	m := NewManager(target, clock, DefaultMargins, func(Rules) { calls++ })

	target.Dispatch(host.Event{Type: host.Resize, Width: 500, Height: 300})
	require.True(t, m.Pending())
	m.Close()

	require.Zero(t, target.ListenerCount())
	require.Zero(t, clock.Pending())
	clock.Advance(time.Second)
	require.Zero(t, calls)
}

func TestManager_CommitIsImmediate(t *testing.T) {
	clock := host.NewManualClock(time.Unix(0, 0))
	calls := 0
	m := NewManager(nil, clock, DefaultMargins, func(Rules) { calls++ })
	m.Observe(Viewport{Width: 100, Height: 100})
	m.Commit(Viewport{Width: 800, Height: 400})
	require.Equal(t, 1, calls)
	clock.Advance(time.Second)
	require.Equal(t, 1, calls)

	m.SetBase(Margins{})
	current, _ := m.Current()
	require.Equal(t, 800.0, current.Dimensions.ChartWidth)
}
