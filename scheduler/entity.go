// Package scheduler implements the Simulation: the future-event-driven
// clock, and the Entity scripts that run on it as suspendable goroutines.
package scheduler

import (
	"strings"

	"github.com/more-infra/desim"
	"github.com/more-infra/desim/element"
	"github.com/more-infra/desim/resource"
)

// Script is the function body of an Entity: the sequence of suspending and
// synchronous primitives, exposed through Activation, that make up its
// behavior in simulated time.
type Script func(a *Activation) error

// Entity is one script running in simulated time. It is constructed
// detached from any Simulation and joins one when Activate is called.
type Entity struct {
	*element.Element

	priority int
	script   Script

	sim    *Simulation
	queues map[*resource.Queue]struct{}

	suspended chan struct{}
	done      chan struct{}
	err       error
}

// EntityOption configures an Entity at construction.
type EntityOption func(*Entity)

// WithPriority sets the priority used to order an Entity ahead of
// lower-priority entities suspended at the same simulated time. Higher
// values win; the default is 0.
func WithPriority(p int) EntityOption {
	return func(e *Entity) { e.priority = p }
}

// NewEntity constructs a detached Entity running script.
func NewEntity(script Script, options ...EntityOption) *Entity {
	e := &Entity{
		script:    script,
		queues:    make(map[*resource.Queue]struct{}),
		suspended: make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// ID implements resource.Occupant.
func (e *Entity) ID() uint64 { return e.Element.UId() }

// Priority implements resource.Occupant.
func (e *Entity) Priority() int { return e.priority }

// Done is closed when the Entity's script has returned.
func (e *Entity) Done() <-chan struct{} { return e.done }

// Err returns the Entity's terminal error, once Done is closed. A script
// that returns without releasing every queue it occupies has its returned
// error replaced with ErrTypeEntityDisposedWhileHoldingQueues.
func (e *Entity) Err() error { return e.err }

// Simulation returns the Simulation the Entity is currently active in, or
// nil if it is detached or has finished.
func (e *Entity) Simulation() *Simulation { return e.sim }

// QueueNames returns the names of every queue the Entity currently
// occupies, for debugging a stuck entity or rendering the queues field of
// ErrTypeEntityDisposedWhileHoldingQueues.
func (e *Entity) QueueNames() []string {
	names := make([]string, 0, len(e.queues))
	for q := range e.queues {
		names = append(names, q.Name())
	}
	return names
}

func (e *Entity) suspend() {
	e.suspended <- struct{}{}
}

func (e *Entity) run() {
	a := &Activation{entity: e, sim: e.sim}
	err := e.script(a)
	e.finish(err)
}

func (e *Entity) finish(scriptErr error) {
	var final error
	if len(e.queues) > 0 {
		final = desim.NewErrorWithType(desim.ErrTypeEntityDisposedWhileHoldingQueues, desim.ErrEntityDisposedWhileHoldingQueues).
			WithField("entity", e.ID()).
			WithField("queues", strings.Join(e.QueueNames(), ","))
	} else {
		final = scriptErr
	}
	e.err = final
	sim := e.sim
	e.Element.Leave()
	e.sim = nil
	close(e.done)
	sim.noteFinish(final)
	close(e.suspended)
}
