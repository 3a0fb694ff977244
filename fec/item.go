// Package fec implements the future-event container a Simulation uses to
// hold every suspended Entity: entities delaying, waiting for queue
// admission, or waiting on a signal.
package fec

import (
	"container/list"

	"github.com/more-infra/desim"
	"github.com/more-infra/desim/resource"
)

// Mode identifies what an Item is waiting for.
type Mode int

const (
	// ModeTimedDelay items become ready at a due simulated time, or earlier
	// if an interrupt signal force-readies them.
	ModeTimedDelay Mode = iota
	// ModeQueueAdmission items become ready when their Queue can admit them.
	ModeQueueAdmission
	// ModeSignalWait items become ready only when force-readied by a
	// matching SendSignal call.
	ModeSignalWait
)

// Item is one suspended Entity's place in the FEC.
type Item struct {
	occupant  resource.Occupant
	mode      Mode
	createdAt desim.Time

	due    desim.Time
	hasDue bool

	interruptSignal desim.Signal
	hasInterrupt    bool

	queue *resource.Queue
	units int

	signal desim.Signal

	path []*resource.Queue

	forced   bool
	resumeCh chan desim.Time
	elem     *list.Element
}

// NewDelayItem creates a timed-delay Item due at due. If hasInterrupt, the
// item also becomes ready early when SendSignal is called with a signal
// equal to interruptSignal.
func NewDelayItem(occ resource.Occupant, createdAt, due desim.Time, interruptSignal desim.Signal, hasInterrupt bool, path []*resource.Queue) *Item {
	return &Item{
		occupant:        occ,
		mode:            ModeTimedDelay,
		createdAt:       createdAt,
		due:             due,
		hasDue:          true,
		interruptSignal: interruptSignal,
		hasInterrupt:    hasInterrupt,
		path:            path,
		resumeCh:        make(chan desim.Time, 1),
	}
}

// NewQueueItem creates a queue-admission Item waiting for q to admit units.
func NewQueueItem(occ resource.Occupant, createdAt desim.Time, q *resource.Queue, units int) *Item {
	return &Item{
		occupant:  occ,
		mode:      ModeQueueAdmission,
		createdAt: createdAt,
		queue:     q,
		units:     units,
		resumeCh:  make(chan desim.Time, 1),
	}
}

// NewSignalItem creates a signal-wait Item, ready only once force-readied by
// a matching SendSignal.
func NewSignalItem(occ resource.Occupant, createdAt desim.Time, s desim.Signal) *Item {
	return &Item{
		occupant:  occ,
		mode:      ModeSignalWait,
		createdAt: createdAt,
		signal:    s,
		resumeCh:  make(chan desim.Time, 1),
	}
}

func (it *Item) Occupant() resource.Occupant { return it.occupant }
func (it *Item) Mode() Mode                  { return it.mode }
func (it *Item) CreatedAt() desim.Time       { return it.createdAt }
func (it *Item) Due() (desim.Time, bool)     { return it.due, it.hasDue }
func (it *Item) Queue() *resource.Queue      { return it.queue }
func (it *Item) Units() int                  { return it.units }
func (it *Item) Signal() desim.Signal        { return it.signal }
func (it *Item) Path() []*resource.Queue     { return it.path }
func (it *Item) Forced() bool                { return it.forced }

// Ready applies the four-step readiness rule: force-readied items are ready
// unconditionally; queue-admission items are ready iff the queue can admit;
// timed-delay items are ready iff clock has reached due; anything else is
// not ready.
func (it *Item) Ready(clock desim.Time) bool {
	if it.forced {
		return true
	}
	if it.mode == ModeQueueAdmission {
		return it.queue.CanAdmit(it.units)
	}
	if it.hasDue {
		return clock >= it.due
	}
	return false
}

// Resume hands the elapsed simulated time to whoever is blocked in Wait.
func (it *Item) Resume(elapsed desim.Time) {
	it.resumeCh <- elapsed
}

// Wait blocks until Resume is called and returns the elapsed time it was
// given.
func (it *Item) Wait() desim.Time {
	return <-it.resumeCh
}
