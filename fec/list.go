package fec

import (
	"container/list"

	"github.com/more-infra/desim"
)

// List is the future-event container: every currently suspended Item,
// ordered by priority then by insertion order within equal priority.
type List struct {
	l *list.List
}

// NewList creates an empty List.
func NewList() *List {
	return &List{l: list.New()}
}

// Len returns the number of items currently in the List.
func (fl *List) Len() int { return fl.l.Len() }

// Insert places it ahead of the longest trailing run of strictly-lower-
// priority items: walking from the back, it is inserted immediately after
// the first item (from the back) whose priority is not strictly lower than
// it. An empty List, or a List made entirely of strictly-lower-priority
// items, gets it at the front.
func (fl *List) Insert(it *Item) {
	priority := it.occupant.Priority()
	for e := fl.l.Back(); e != nil; e = e.Prev() {
		other := e.Value.(*Item)
		if other.occupant.Priority() >= priority {
			it.elem = fl.l.InsertAfter(it, e)
			return
		}
	}
	it.elem = fl.l.PushFront(it)
}

// Remove takes it out of the List. It is a no-op if it is not in any List.
func (fl *List) Remove(it *Item) {
	if it.elem == nil {
		return
	}
	fl.l.Remove(it.elem)
	it.elem = nil
}

// NextDueTime returns the smallest due time among timed-delay items, and
// whether any timed-delay item exists at all.
func (fl *List) NextDueTime() (desim.Time, bool) {
	var (
		min   desim.Time
		found bool
	)
	for e := fl.l.Front(); e != nil; e = e.Next() {
		it := e.Value.(*Item)
		if it.mode == ModeTimedDelay && it.hasDue {
			if !found || it.due < min {
				min = it.due
				found = true
			}
		}
	}
	return min, found
}

// Scan repeatedly walks the List from the front, removing and dispatching
// the first ready item it finds, and restarting from the front each time,
// until a full pass finds nothing ready. It returns the number of items
// dispatched.
func (fl *List) Scan(clock desim.Time, dispatch func(*Item)) int {
	count := 0
	for {
		dispatched := false
		for e := fl.l.Front(); e != nil; e = e.Next() {
			it := e.Value.(*Item)
			if it.Ready(clock) {
				fl.l.Remove(e)
				it.elem = nil
				dispatch(it)
				count++
				dispatched = true
				break
			}
		}
		if !dispatched {
			return count
		}
	}
}

// ForceReady walks the List in order and sets the ready flag on up to max
// items whose signal (a signal-wait item's own signal, or an interruptible
// delay's interrupt signal) equals s. It returns the count force-readied.
func (fl *List) ForceReady(s desim.Signal, max int) int {
	count := 0
	for e := fl.l.Front(); e != nil && count < max; e = e.Next() {
		it := e.Value.(*Item)
		if it.forced {
			continue
		}
		if it.mode == ModeSignalWait && it.signal == s {
			it.forced = true
			count++
			continue
		}
		if it.mode == ModeTimedDelay && it.hasInterrupt && it.interruptSignal == s {
			it.forced = true
			count++
		}
	}
	return count
}

// Items returns a snapshot of every item currently in the List, front to
// back.
func (fl *List) Items() []*Item {
	out := make([]*Item, 0, fl.l.Len())
	for e := fl.l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Item))
	}
	return out
}
