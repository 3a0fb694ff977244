package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/more-infra/desim"
	"github.com/more-infra/desim/element"
	"github.com/more-infra/desim/event"
	"github.com/more-infra/desim/fec"
	"github.com/more-infra/desim/mcontext"
	"github.com/more-infra/desim/observer"
	"github.com/more-infra/desim/resource"
	"github.com/more-infra/desim/status"
)

// Event categories a Simulation pushes to its observers. The core never
// interprets these itself; they exist for a host to render progress,
// animate, or log.
const (
	EventStarting      = "starting"
	EventStarted       = "started"
	EventFinishing     = "finishing"
	EventFinished      = "finished"
	EventStateChanging = "state-changing"
	EventStateChanged  = "state-changed"
	EventTimeChanging  = "time-changing"
	EventTimeChanged   = "time-changed"
)

// Hooks are synchronous callbacks a host can install to run application
// code at the same points the starting/started/finishing/finished events
// are pushed to observers. Starting is the usual place to construct initial
// Entities and Queues.
type Hooks struct {
	Starting  func(*Simulation)
	Started   func(*Simulation)
	Finishing func(*Simulation)
	Finished  func(*Simulation)
}

// YieldFunc schedules fn to run later via some host mechanism and returns
// immediately, letting the goroutine driving Start unwind instead of
// recursing. See ReactorYield for an adapter built on reactor.Reactor.
type YieldFunc func(fn func())

// Simulation is the future-event-driven clock: it owns the FEC, the Queue
// registry, and every active Entity, and exclusively drives simulated time
// forward by repeatedly dispatching ready items and advancing the clock to
// the next one due.
type Simulation struct {
	cycle     *status.Cycle
	clock     desim.Time
	fec       *fec.List
	registry  *resource.Registry
	entities  *element.Manager
	observers *observer.Manager

	hooks  Hooks
	option simOption

	yield     YieldFunc
	lastYield time.Time

	stopRequested int32
	stopCtx       context.Context
	stopCancel    context.CancelFunc

	firstErr *desim.Error
}

type simOption struct {
	endTime       *desim.Time
	maxTimeStep   *desim.Time
	frameDelay    time.Duration
	yieldInterval time.Duration
	hostCtx       context.Context
}

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithEndTime stops the run once the clock reaches t.
func WithEndTime(t desim.Time) Option {
	return func(s *Simulation) { s.option.endTime = &t }
}

// WithMaxTimeStep caps how far a single advance can move the clock, even if
// the next due item is further out. It is useful for host-paced animation.
func WithMaxTimeStep(t desim.Time) Option {
	return func(s *Simulation) { s.option.maxTimeStep = &t }
}

// WithFrameDelay paces each clock advance with a real-time sleep, bounded by
// the host context and by Stop.
func WithFrameDelay(d time.Duration) Option {
	return func(s *Simulation) { s.option.frameDelay = d }
}

// WithYieldInterval sets how much wall-clock time Start runs before handing
// control back through YieldFunc. The default is 150ms.
func WithYieldInterval(d time.Duration) Option {
	return func(s *Simulation) { s.option.yieldInterval = d }
}

// WithYield installs the cooperative yield mechanism. Without one, Start
// runs synchronously to completion (or Pause) on the calling goroutine.
func WithYield(fn YieldFunc) Option {
	return func(s *Simulation) { s.yield = fn }
}

// WithHostContext supplies a context that, when canceled, interrupts a
// pending frame-delay pace the way Stop does.
func WithHostContext(c context.Context) Option {
	return func(s *Simulation) { s.option.hostCtx = c }
}

// WithHooks installs the synchronous lifecycle callbacks.
func WithHooks(h Hooks) Option {
	return func(s *Simulation) { s.hooks = h }
}

// NewSimulation constructs a Simulation, Paused, with an empty FEC and
// registry.
func NewSimulation(options ...Option) *Simulation {
	s := &Simulation{
		cycle:     status.NewCycle(),
		fec:       fec.NewList(),
		registry:  resource.NewRegistry(),
		entities:  element.NewManager(),
		observers: observer.NewManager(),
		option: simOption{
			yieldInterval: 150 * time.Millisecond,
			hostCtx:       context.Background(),
		},
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Now returns the current simulated time.
func (s *Simulation) Now() desim.Time { return s.clock }

// State returns the Simulation's lifecycle state.
func (s *Simulation) State() status.CycleState { return s.cycle.State() }

// Queues returns every Queue registered with this Simulation.
func (s *Simulation) Queues() []*resource.Queue { return s.registry.Queues() }

// Queue returns a registered Queue with the given exact name. When several
// registered Queues share the name, which one is returned is not defined.
func (s *Simulation) Queue(name string) (*resource.Queue, bool) { return s.registry.Get(name) }

// FindQueues returns every registered Queue whose name matches pattern.
func (s *Simulation) FindQueues(pattern string) []*resource.Queue {
	return s.registry.FindMatching(pattern)
}

// Observe returns a new Observer subscribed to this Simulation's lifecycle
// and clock events.
func (s *Simulation) Observe() *observer.Observer { return s.observers.Add() }

// Activate attaches e to this Simulation and runs its script until it first
// suspends or returns. It fails with ErrTypeAlreadyActive if e already has a
// Simulation attached.
func (s *Simulation) Activate(e *Entity) *desim.Error {
	if e.sim != nil {
		return desim.NewErrorWithType(desim.ErrTypeAlreadyActive, desim.ErrAlreadyActive).
			WithField("entity", e.ID())
	}
	e.Element = s.entities.NewElement()
	e.sim = s
	s.entities.Join(e)
	go e.run()
	<-e.suspended
	return nil
}

// Start begins (or resumes) stepping the Simulation, blocking the calling
// goroutine until it reaches Finished or Paused, unless a YieldFunc is
// installed, in which case Start may return early having scheduled its own
// continuation.
//
// If reset is true, or the FEC is currently empty, it first wipes every
// registered Queue's state, empties the FEC, resets the clock to zero, and
// runs the starting/started hooks and events; this is the point at which a
// host's starting hook should construct initial Entities and Queues.
func (s *Simulation) Start(reset bool) *desim.Error {
	if s.cycle.State() == status.Running {
		return nil
	}
	if reset || s.fec.Len() == 0 {
		s.registry.ResetAll()
		s.fec = fec.NewList()
		s.clock = 0
		if s.hooks.Starting != nil {
			s.hooks.Starting(s)
		}
		s.emit(EventStarting, nil)
		if s.hooks.Started != nil {
			s.hooks.Started(s)
		}
		s.emit(EventStarted, nil)
	}
	s.cycle.Start()
	atomic.StoreInt32(&s.stopRequested, 0)
	s.stopCtx, s.stopCancel = context.WithCancel(context.Background())
	s.lastYield = time.Now()
	s.step()
	if s.firstErr != nil {
		err := s.firstErr
		s.firstErr = nil
		return err
	}
	return nil
}

// Stop requests the Simulation pause at its next safe point: after the
// current FEC scan finishes and the clock has advanced, but before the next
// scan begins. It never interrupts a dispatch in progress.
func (s *Simulation) Stop() {
	atomic.StoreInt32(&s.stopRequested, 1)
	if s.stopCancel != nil {
		s.stopCancel()
	}
}

func (s *Simulation) step() {
	for {
		dispatched := s.fec.Scan(s.clock, s.dispatch)
		if dispatched > 0 {
			continue
		}
		nextTime, hasNext := s.fec.NextDueTime()
		if !hasNext {
			s.finishRun()
			return
		}
		if s.option.maxTimeStep != nil && nextTime > s.clock+*s.option.maxTimeStep {
			nextTime = s.clock + *s.option.maxTimeStep
		}
		if s.option.endTime != nil && nextTime >= *s.option.endTime {
			if s.clock < *s.option.endTime {
				s.setClock(*s.option.endTime)
			}
			s.finishRun()
			return
		}
		s.setClock(nextTime)
		if s.option.frameDelay > 0 {
			s.pace()
		}
		if atomic.LoadInt32(&s.stopRequested) == 1 {
			s.transitionTo(status.Paused)
			return
		}
		if time.Since(s.lastYield) >= s.option.yieldInterval {
			s.lastYield = time.Now()
			if s.yield != nil {
				s.yield(s.step)
				return
			}
		}
	}
}

func (s *Simulation) dispatch(it *fec.Item) {
	elapsed := s.clock - it.CreatedAt()
	e := it.Occupant().(*Entity)
	if it.Mode() == fec.ModeQueueAdmission {
		if err := s.registry.Admit(it.Queue(), it.Occupant(), it.Units(), s.clock); err != nil {
			s.noteFinish(err)
			return
		}
		e.queues[it.Queue()] = struct{}{}
	}
	it.Resume(elapsed)
	<-e.suspended
}

func (s *Simulation) setClock(t desim.Time) {
	s.emit(EventTimeChanging, t)
	s.clock = t
	s.emit(EventTimeChanged, t)
}

func (s *Simulation) transitionTo(target status.CycleState) {
	s.emit(EventStateChanging, target)
	switch target {
	case status.Paused:
		s.cycle.Pause()
	case status.Finished:
		s.cycle.Finish()
	}
	s.emit(EventStateChanged, target)
}

func (s *Simulation) finishRun() {
	if s.hooks.Finishing != nil {
		s.hooks.Finishing(s)
	}
	s.emit(EventFinishing, nil)
	s.transitionTo(status.Finished)
	if s.hooks.Finished != nil {
		s.hooks.Finished(s)
	}
	s.emit(EventFinished, nil)
}

func (s *Simulation) pace() {
	timer := time.NewTimer(s.option.frameDelay)
	defer timer.Stop()
	mc := mcontext.NewMultipleContext(s.option.hostCtx, s.stopCtx)
	mc.Listen()
	defer mc.Dispose()
	select {
	case <-timer.C:
	case <-mc.Done():
	}
}

func (s *Simulation) emit(category string, content interface{}) {
	s.observers.Push(event.NewEvent(category).WithContent(content))
}

// noteFinish records the first fatal error surfaced by an Entity's script
// return, and requests Stop so the run reaches a safe point instead of
// continuing to dispatch against a Simulation a host no longer trusts.
func (s *Simulation) noteFinish(err error) {
	if err == nil || s.firstErr != nil {
		return
	}
	if de, ok := err.(*desim.Error); ok {
		s.firstErr = de
	} else {
		s.firstErr = desim.WrapError(err)
	}
	s.Stop()
}
