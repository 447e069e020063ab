package sim

import (
	"container/heap"

	"github.com/mlange-42/ark/ecs"
)

// EventKind discriminates scheduled events.
type EventKind uint8

const (
	EventArrival EventKind = iota + 1
	EventPhaseTransition
	EventMitosis
	EventDenouement
	EventEconomyTick
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "arrival"
	case EventPhaseTransition:
		return "phase_transition"
	case EventMitosis:
		return "mitosis"
	case EventDenouement:
		return "denouement"
	case EventEconomyTick:
		return "economy_tick"
	default:
		return "unknown"
	}
}

// Event is one scheduled occurrence. Subject is the zero Entity for the
// global kinds (arrival, economy tick). Epoch guards life-cycle events
// against firing after their symbiont aborted or relocated; a mismatch with
// the symbiont's current cycle epoch makes the event stale.
type Event struct {
	Time    float64
	Kind    EventKind
	Subject ecs.Entity
	Epoch   uint32

	seq uint64 // insertion order, breaks time ties deterministically
}

// eventQueue is a min-heap ordered by (time, insertion order).
type eventQueue struct {
	items   []Event
	nextSeq uint64
}

func newEventQueue() *eventQueue {
	return &eventQueue{}
}

// Push schedules an event.
func (q *eventQueue) Push(ev Event) {
	ev.seq = q.nextSeq
	q.nextSeq++
	heap.Push((*eventHeap)(q), ev)
}

// Peek returns the earliest event without removing it.
func (q *eventQueue) Peek() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	return q.items[0], true
}

// Pop removes and returns the earliest event.
func (q *eventQueue) Pop() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	ev := heap.Pop((*eventHeap)(q)).(Event)
	return ev, true
}

// Len returns the number of pending events.
func (q *eventQueue) Len() int {
	return len(q.items)
}

// eventHeap adapts eventQueue to container/heap.
type eventHeap eventQueue

func (h *eventHeap) Len() int { return len(h.items) }

func (h *eventHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.seq < b.seq
}

func (h *eventHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *eventHeap) Push(x any) {
	h.items = append(h.items, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := h.items
	n := len(old)
	ev := old[n-1]
	h.items = old[:n-1]
	return ev
}
