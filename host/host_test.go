package host

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_OnDispatchRemove(t *testing.T) {
	target := NewTarget()
	var got []string

	removeA := target.On(PointerMove, func(e Event) { got = append(got, "a") })
	target.On(PointerMove, func(e Event) { got = append(got, "b") })
	target.On(Wheel, func(e Event) { got = append(got, "wheel") })

	target.Dispatch(Event{Type: PointerMove})
	require.Equal(t, []string{"a", "b"}, got)
	require.Equal(t, 3, target.ListenerCount())
	require.Equal(t, []EventType{PointerMove, Wheel}, target.Types())

	removeA()
	removeA()
	got = nil
	target.Dispatch(Event{Type: PointerMove})
	require.Equal(t, []string{"b"}, got)
	require.Equal(t, 2, target.ListenerCount())
}

func TestTarget_ListenerRemovesItself(t *testing.T) {
	target := NewTarget()
	calls := 0
	var remove func()
	remove = target.On(PointerUp, func(e Event) {
		calls++
		remove()
	})
	target.Dispatch(Event{Type: PointerUp})
	target.Dispatch(Event{Type: PointerUp})
	require.Equal(t, 1, calls)
	require.Empty(t, target.Types())
}

func TestScope_ClosesInReverseOnce(t *testing.T) {
	var order []int
	s := &Scope{}
	s.Add(func() { order = append(order, 1) })
	s.Add(func() { order = append(order, 2) })
	s.Add(nil)
	require.Equal(t, 2, s.Len())

	s.Close()
	s.Close()
	require.Equal(t, []int{2, 1}, order)

	s.Add(func() { order = append(order, 3) })
	require.Equal(t, []int{2, 1, 3}, order)
}

func TestScope_ListenDetachesOnClose(t *testing.T) {
	target := NewTarget()
	s := &Scope{}
	s.Listen(target, Resize, func(Event) {})
	s.Listen(target, PointerLeave, func(Event) {})
	require.Equal(t, 2, target.ListenerCount())
	s.Close()
	require.Zero(t, target.ListenerCount())
}

func TestManualClock_FiresInOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var fired []string
	clock.AfterFunc(20*time.Millisecond, func() { fired = append(fired, "late") })
	clock.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "early") })
	stopped := clock.AfterFunc(15*time.Millisecond, func() { fired = append(fired, "stopped") })
	require.True(t, stopped.Stop())
	require.False(t, stopped.Stop())

	clock.Advance(5 * time.Millisecond)
	require.Empty(t, fired)
	clock.Advance(20 * time.Millisecond)
	require.Equal(t, []string{"early", "late"}, fired)
	require.Zero(t, clock.Pending())
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	d := NewDebouncer(clock, 150*time.Millisecond)
	var runs []int

	for i := 1; i <= 5; i++ {
		i := i
		d.Trigger(func() { runs = append(runs, i) })
		clock.Advance(30 * time.Millisecond)
	}
	require.Empty(t, runs)
	require.True(t, d.Pending())

	clock.Advance(150 * time.Millisecond)
	require.Equal(t, []int{5}, runs)
	require.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	d := NewDebouncer(clock, 150*time.Millisecond)
	ran := false
	d.Trigger(func() { ran = true })
	d.Cancel()
	clock.Advance(time.Second)
	assert.False(t, ran)
	assert.Zero(t, clock.Pending())
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	loop := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	var seen []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, loop.Post(func() { seen = append(seen, i) }))
	}
	require.NoError(t, loop.Call(func() {}))
	require.Equal(t, []int{0, 1, 2, 3, 4}, seen)

	loop.Stop()
	<-loop.Done()
	require.False(t, loop.Post(func() {}))
	require.ErrorIs(t, loop.Call(func() {}), ErrLoopStopped)
}

func TestLoopClock_StopBeforeFire(t *testing.T) {
	loop := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	clock := NewLoopClock(loop)
	var fired int32
	timer := clock.AfterFunc(time.Hour, func() { atomic.AddInt32(&fired, 1) })
	require.True(t, timer.Stop())

	done := make(chan struct{})
	clock.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer callback never ran on the loop")
	}
	require.Zero(t, atomic.LoadInt32(&fired))
}
