package host

import (
	"github.com/StudioSol/set"
)

type EventType string

const (
	PointerDown  EventType = "pointerdown"
	PointerMove  EventType = "pointermove"
	PointerUp    EventType = "pointerup"
	PointerLeave EventType = "pointerleave"
	Wheel        EventType = "wheel"
	Pinch        EventType = "pinch"
	Resize       EventType = "resize"
)

// Event is a host input event. Coordinates are container pixels.
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	DeltaY float64   `json:"deltaY,omitempty"`
	Scale  float64   `json:"scale,omitempty"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
}

type Listener func(Event)

type listenerEntry struct {
	id uint64
	fn Listener
}

// Target is the event source of one chart container. It is not safe for concurrent use;
// dispatch happens on the owning Loop.
type Target struct {
	listeners map[EventType][]listenerEntry
	types     *set.LinkedHashSetString
	nextID    uint64
}

func NewTarget() *Target {
	return &Target{
		listeners: make(map[EventType][]listenerEntry),
		types:     set.NewLinkedHashSetString(),
	}
}

// On registers fn and returns the function that removes it again.
func (t *Target) On(typ EventType, fn Listener) (remove func()) {
	t.nextID++
	id := t.nextID
	t.listeners[typ] = append(t.listeners[typ], listenerEntry{id: id, fn: fn})
	t.types.Add(string(typ))

	var removed bool
	return func() {
		if removed {
			return
		}
		removed = true
		t.off(typ, id)
	}
}

func (t *Target) off(typ EventType, id uint64) {
	entries := t.listeners[typ]
	for i, e := range entries {
		if e.id == id {
			entries = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(t.listeners, typ)
		t.types.Remove(string(typ))
		return
	}
	t.listeners[typ] = entries
}

// Dispatch calls every listener for the event type in registration order. The listener
// list is snapshotted first so a listener may remove itself.
func (t *Target) Dispatch(e Event) {
	entries := append([]listenerEntry(nil), t.listeners[e.Type]...)
	for _, entry := range entries {
		entry.fn(e)
	}
}

// ListenerCount returns the number of attached listeners over all event types.
func (t *Target) ListenerCount() int {
	n := 0
	for _, entries := range t.listeners {
		n += len(entries)
	}
	return n
}

// Types lists the event types that currently have listeners, in first-registration order.
func (t *Target) Types() []EventType {
	var out []EventType
	for typ := range t.types.Iter() {
		out = append(out, EventType(typ))
	}
	return out
}
