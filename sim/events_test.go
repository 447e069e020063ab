package sim

import "testing"

func TestEventQueueOrdering(t *testing.T) {
	q := newEventQueue()
	q.Push(Event{Time: 3.0, Kind: EventDenouement})
	q.Push(Event{Time: 1.0, Kind: EventArrival})
	q.Push(Event{Time: 2.0, Kind: EventMitosis})

	wantKinds := []EventKind{EventArrival, EventMitosis, EventDenouement}
	wantTimes := []float64{1.0, 2.0, 3.0}
	for i := range wantKinds {
		ev, ok := q.Pop()
		if !ok {
			t.Fatalf("pop %d: queue empty", i)
		}
		if ev.Kind != wantKinds[i] || ev.Time != wantTimes[i] {
			t.Errorf("pop %d: got (%v, %v), want (%v, %v)", i, ev.Kind, ev.Time, wantKinds[i], wantTimes[i])
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("queue not empty after draining")
	}
}

func TestEventQueueTieBreakByInsertion(t *testing.T) {
	q := newEventQueue()
	kinds := []EventKind{EventArrival, EventPhaseTransition, EventMitosis, EventDenouement, EventEconomyTick}
	for _, k := range kinds {
		q.Push(Event{Time: 5.0, Kind: k})
	}

	for i, want := range kinds {
		ev, _ := q.Pop()
		if ev.Kind != want {
			t.Errorf("pop %d: got %v, want %v (insertion order must break ties)", i, ev.Kind, want)
		}
	}
}

func TestEventQueuePeek(t *testing.T) {
	q := newEventQueue()
	if _, ok := q.Peek(); ok {
		t.Error("peek on empty queue reported an event")
	}

	q.Push(Event{Time: 2.0, Kind: EventEconomyTick})
	q.Push(Event{Time: 1.0, Kind: EventArrival})

	ev, ok := q.Peek()
	if !ok || ev.Time != 1.0 {
		t.Errorf("peek = (%v, %v), want earliest event at t=1", ev.Time, ok)
	}
	if q.Len() != 2 {
		t.Errorf("peek consumed an event: len = %d", q.Len())
	}
}

func TestEventQueueInterleavedPushPop(t *testing.T) {
	q := newEventQueue()
	q.Push(Event{Time: 10})
	q.Push(Event{Time: 4})

	ev, _ := q.Pop()
	if ev.Time != 4 {
		t.Fatalf("first pop at t=%v, want 4", ev.Time)
	}

	q.Push(Event{Time: 6})
	q.Push(Event{Time: 12})

	var got []float64
	for q.Len() > 0 {
		ev, _ := q.Pop()
		got = append(got, ev.Time)
	}
	want := []float64{6, 10, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("drain order = %v, want %v", got, want)
		}
	}
}
