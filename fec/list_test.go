package fec

import "testing"

func TestListPriorityInsertOrder(t *testing.T) {
	l := NewList()
	low := NewSignalItem(&fakeOccupant{id: 1, priority: 0}, 0, "s")
	mid := NewSignalItem(&fakeOccupant{id: 2, priority: 5}, 0, "s")
	high := NewSignalItem(&fakeOccupant{id: 3, priority: 10}, 0, "s")

	l.Insert(low)
	l.Insert(high)
	l.Insert(mid)

	items := l.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// high (10) should end up ahead of mid (5), which should end up ahead of
	// low (0): high, mid, low.
	if items[0] != high || items[1] != mid || items[2] != low {
		t.Fatalf("unexpected priority order: %v %v %v", items[0], items[1], items[2])
	}
}

func TestListInsertSamePriorityKeepsInsertionOrder(t *testing.T) {
	l := NewList()
	first := NewSignalItem(&fakeOccupant{id: 1, priority: 5}, 0, "s")
	second := NewSignalItem(&fakeOccupant{id: 2, priority: 5}, 0, "s")
	l.Insert(first)
	l.Insert(second)
	items := l.Items()
	if items[0] != first || items[1] != second {
		t.Fatalf("expected insertion order preserved among equal priorities")
	}
}

func TestListRemove(t *testing.T) {
	l := NewList()
	it := NewSignalItem(&fakeOccupant{id: 1}, 0, "s")
	l.Insert(it)
	l.Remove(it)
	if l.Len() != 0 {
		t.Fatalf("expected list empty after remove, got %d", l.Len())
	}
	// Remove again should be a no-op, not a panic.
	l.Remove(it)
}

func TestListNextDueTime(t *testing.T) {
	l := NewList()
	l.Insert(NewDelayItem(&fakeOccupant{id: 1}, 0, 20, "", false, nil))
	l.Insert(NewDelayItem(&fakeOccupant{id: 2}, 0, 5, "", false, nil))
	l.Insert(NewSignalItem(&fakeOccupant{id: 3}, 0, "s"))

	due, ok := l.NextDueTime()
	if !ok {
		t.Fatalf("expected a next due time")
	}
	if due != 5 {
		t.Fatalf("expected next due time 5, got %v", due)
	}
}

func TestListNextDueTimeNoneWhenOnlySignalWaits(t *testing.T) {
	l := NewList()
	l.Insert(NewSignalItem(&fakeOccupant{id: 1}, 0, "s"))
	_, ok := l.NextDueTime()
	if ok {
		t.Fatalf("expected no next due time among signal-wait-only items")
	}
}

func TestListScanDispatchesAllReadyAndRestartsFromFront(t *testing.T) {
	l := NewList()
	a := NewDelayItem(&fakeOccupant{id: 1}, 0, 10, "", false, nil)
	b := NewDelayItem(&fakeOccupant{id: 2}, 0, 10, "", false, nil)
	c := NewDelayItem(&fakeOccupant{id: 3}, 0, 20, "", false, nil)
	l.Insert(a)
	l.Insert(b)
	l.Insert(c)

	var dispatched []*Item
	count := l.Scan(10, func(it *Item) {
		dispatched = append(dispatched, it)
	})
	if count != 2 {
		t.Fatalf("expected 2 dispatched at clock=10, got %d", count)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 item left in list, got %d", l.Len())
	}
}

func TestListForceReadySignalWait(t *testing.T) {
	l := NewList()
	it := NewSignalItem(&fakeOccupant{id: 1}, 0, "go")
	l.Insert(it)
	n := l.ForceReady("go", 1)
	if n != 1 {
		t.Fatalf("expected 1 force-readied, got %d", n)
	}
	if !it.Forced() {
		t.Fatalf("expected item to be marked forced")
	}
}

func TestListForceReadyInterruptibleDelay(t *testing.T) {
	l := NewList()
	it := NewDelayItem(&fakeOccupant{id: 1}, 0, 100, "interrupt", true, nil)
	l.Insert(it)
	n := l.ForceReady("interrupt", 1)
	if n != 1 {
		t.Fatalf("expected 1 force-readied, got %d", n)
	}
	if !it.Ready(0) {
		t.Fatalf("expected interrupted delay to be ready before its due time")
	}
}

func TestListForceReadyRespectsMax(t *testing.T) {
	l := NewList()
	l.Insert(NewSignalItem(&fakeOccupant{id: 1}, 0, "go"))
	l.Insert(NewSignalItem(&fakeOccupant{id: 2}, 0, "go"))
	l.Insert(NewSignalItem(&fakeOccupant{id: 3}, 0, "go"))
	n := l.ForceReady("go", 2)
	if n != 2 {
		t.Fatalf("expected 2 force-readied, got %d", n)
	}
}
