package scheduler

import (
	"github.com/more-infra/desim"
	"github.com/more-infra/desim/fec"
	"github.com/more-infra/desim/resource"
)

// Activation is the surface a Script uses to act in simulated time. It is
// only ever valid for the duration of the Script call it was handed to.
type Activation struct {
	entity *Entity
	sim    *Simulation
}

// Now returns the Simulation's current simulated time.
func (a *Activation) Now() desim.Time { return a.sim.clock }

// Entity returns the Entity this Activation belongs to.
func (a *Activation) Entity() *Entity { return a.entity }

// Simulation returns the Simulation this Activation is running in.
func (a *Activation) Simulation() *Simulation { return a.sim }

type delayConfig struct {
	interruptSignal desim.Signal
	hasInterrupt    bool
	path            []*resource.Queue
}

// DelayOption configures a call to Delay.
type DelayOption func(*delayConfig)

// WithInterruptSignal makes the delay also ready early if SendSignal is
// called with an equal signal, before the delay's due time arrives.
func WithInterruptSignal(s desim.Signal) DelayOption {
	return func(c *delayConfig) {
		c.interruptSignal = s
		c.hasInterrupt = true
	}
}

// WithAnimationPath attaches an opaque queue path to the delay, for an
// animation layer built on top of this package to read back through
// AnimationPosition. The core never interprets it itself, beyond validating
// it names at least two queues.
func WithAnimationPath(path ...*resource.Queue) DelayOption {
	return func(c *delayConfig) { c.path = path }
}

// Delay suspends the entity for d simulated time units, or until
// force-readied early by a matching SendSignal if WithInterruptSignal was
// given. It returns the simulated time actually elapsed, which equals d
// unless an interrupt fired first.
func (a *Activation) Delay(d desim.Time, opts ...DelayOption) (desim.Time, *desim.Error) {
	if d < 0 {
		return 0, desim.NewErrorWithType(desim.ErrTypeInvalidArgument, desim.ErrNegativeDelay).
			WithField("delay", d)
	}
	cfg := delayConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.path != nil && len(cfg.path) < 2 {
		return 0, desim.NewErrorWithType(desim.ErrTypeInvalidArgument, desim.ErrPathTooShort).
			WithField("path_length", len(cfg.path))
	}
	now := a.sim.clock
	it := fec.NewDelayItem(a.entity, now, now+d, cfg.interruptSignal, cfg.hasInterrupt, cfg.path)
	a.sim.fec.Insert(it)
	a.entity.suspend()
	return it.Wait(), nil
}

// EnterQueue suspends the entity until q can admit units (default 1), then
// admits it. It returns the simulated time spent waiting. It fails
// immediately, without suspending, with ErrTypeDuplicateMembership if the
// entity already occupies q.
func (a *Activation) EnterQueue(q *resource.Queue, units ...int) (desim.Time, *desim.Error) {
	if _, ok := a.entity.queues[q]; ok {
		return 0, desim.NewErrorWithType(desim.ErrTypeDuplicateMembership, desim.ErrDuplicateMembership).
			WithField("queue", q.Name()).WithField("entity", a.entity.ID())
	}
	n := 1
	if len(units) != 0 {
		n = units[0]
	}
	now := a.sim.clock
	it := fec.NewQueueItem(a.entity, now, q, n)
	a.sim.fec.Insert(it)
	a.entity.suspend()
	return it.Wait(), nil
}

// EnterQueueImmediately admits the entity into q for units (default 1)
// without suspending. It fails with ErrTypeCapacityExceeded if q cannot
// admit right now, or ErrTypeDuplicateMembership if the entity already
// occupies q.
func (a *Activation) EnterQueueImmediately(q *resource.Queue, units ...int) *desim.Error {
	if _, ok := a.entity.queues[q]; ok {
		return desim.NewErrorWithType(desim.ErrTypeDuplicateMembership, desim.ErrDuplicateMembership).
			WithField("queue", q.Name()).WithField("entity", a.entity.ID())
	}
	n := 1
	if len(units) != 0 {
		n = units[0]
	}
	if !q.CanAdmit(n) {
		return desim.NewErrorWithType(desim.ErrTypeCapacityExceeded, desim.ErrCapacityExceeded).
			WithField("queue", q.Name())
	}
	if err := a.sim.registry.Admit(q, a.entity, n, a.sim.clock); err != nil {
		return err
	}
	a.entity.queues[q] = struct{}{}
	return nil
}

// LeaveQueue releases the entity's occupancy of q without suspending. It
// fails with ErrTypeNotAMember if the entity does not occupy q.
func (a *Activation) LeaveQueue(q *resource.Queue) *desim.Error {
	if _, ok := a.entity.queues[q]; !ok {
		return desim.NewErrorWithType(desim.ErrTypeNotAMember, desim.ErrNotAMember).
			WithField("queue", q.Name()).WithField("entity", a.entity.ID())
	}
	if err := a.sim.registry.Release(q, a.entity, a.sim.clock); err != nil {
		return err
	}
	delete(a.entity.queues, q)
	return nil
}

// WaitSignal suspends the entity until a SendSignal call force-readies it
// with an equal signal, and returns the simulated time spent waiting.
func (a *Activation) WaitSignal(s desim.Signal) desim.Time {
	now := a.sim.clock
	it := fec.NewSignalItem(a.entity, now, s)
	a.sim.fec.Insert(it)
	a.entity.suspend()
	return it.Wait()
}

// SendSignal force-readies up to max (default: unlimited) FEC items whose
// signal equals s: entities in WaitSignal, and delays suspended with a
// matching WithInterruptSignal. It returns the count force-readied.
func (a *Activation) SendSignal(s desim.Signal, max ...int) int {
	n := -1
	if len(max) != 0 {
		n = max[0]
	}
	if n < 0 {
		n = int(^uint(0) >> 1)
	}
	return a.sim.fec.ForceReady(s, n)
}
