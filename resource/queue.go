package resource

import (
	"github.com/more-infra/desim"
	"github.com/more-infra/desim/element"
	"github.com/more-infra/desim/kv"
	"github.com/more-infra/desim/tally"
)

// Queue is a capacity-gated place entities occupy while they wait for or
// hold a resource. It is constructed empty, detached from any Simulation;
// it becomes bound to whichever Simulation's Registry first admits into it,
// and admission from a different Simulation afterward fails.
type Queue struct {
	*element.Element

	name     string
	capacity *int

	unitsInUse int
	occupants  map[uint64]*occupancy
	lastChange desim.Time
	totalIn    uint64

	grossPopulation *tally.Tally
	netPopulation   *tally.Tally
	grossDwell      *tally.Tally
	netDwell        *tally.Tally

	boundRegistry *Registry
}

type occupancy struct {
	occupant Occupant
	units    int
	entered  desim.Time
}

// Option configures a Queue at construction.
type Option func(*Queue)

// WithCapacity bounds the Queue to n units of concurrent occupancy. Without
// it the Queue is unbounded: CanAdmit always succeeds.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		c := n
		q.capacity = &c
	}
}

// NewQueue constructs an empty, unregistered Queue. name need not be unique;
// it is the identity a reporting layer uses, via Registry.FindMatching, to
// group queues for summary.
func NewQueue(name string, options ...Option) *Queue {
	q := &Queue{
		name:            name,
		occupants:       make(map[uint64]*occupancy),
		grossPopulation: tally.New(),
		netPopulation:   tally.New(),
		grossDwell:      tally.New(),
		netDwell:        tally.New(),
	}
	for _, o := range options {
		o(q)
	}
	return q
}

// Name returns the Queue's name.
func (q *Queue) Name() string { return q.name }

// Capacity returns the configured capacity and true, or (0, false) when the
// Queue is unbounded.
func (q *Queue) Capacity() (int, bool) {
	if q.capacity == nil {
		return 0, false
	}
	return *q.capacity, true
}

// UnitsInUse returns the units currently occupied.
func (q *Queue) UnitsInUse() int { return q.unitsInUse }

// TotalIn returns the number of admissions ever recorded.
func (q *Queue) TotalIn() uint64 { return q.totalIn }

// LastChange returns the simulated time of the most recent admit or release.
func (q *Queue) LastChange() desim.Time { return q.lastChange }

// CanAdmit reports whether units additional units could be admitted right
// now. An unbounded Queue can always admit.
func (q *Queue) CanAdmit(units int) bool {
	if q.capacity == nil {
		return true
	}
	return q.unitsInUse+units <= *q.capacity
}

// Utilization returns the queue's mean net population divided by capacity
// and true, or (0, false) if the Queue is unbounded. It is a derived
// convenience over the existing tallies, not a separate stat-collection
// path.
func (q *Queue) Utilization() (float64, bool) {
	if q.capacity == nil {
		return 0, false
	}
	return q.netPopulation.Mean() / float64(*q.capacity), true
}

// GrossPopulation tallies units_in_use over time, sampled on every admit and
// release regardless of whether the queue was empty beforehand.
func (q *Queue) GrossPopulation() *tally.Tally { return q.grossPopulation }

// NetPopulation is GrossPopulation restricted to periods where the queue was
// not empty.
func (q *Queue) NetPopulation() *tally.Tally { return q.netPopulation }

// GrossDwell tallies the duration every occupant spends in the queue.
func (q *Queue) GrossDwell() *tally.Tally { return q.grossDwell }

// NetDwell is GrossDwell restricted to strictly-positive durations.
func (q *Queue) NetDwell() *tally.Tally { return q.netDwell }

// admit records occ's admission for units at time now. It is only ever
// called through Registry.Admit, which enforces the Simulation binding.
func (q *Queue) admit(occ Occupant, units int, now desim.Time) *desim.Error {
	if _, exists := q.occupants[occ.ID()]; exists {
		return desim.NewErrorWithType(desim.ErrTypeDuplicateMembership, desim.ErrDuplicateMembership).
			WithField("queue", q.name).WithField("occupant", occ.ID())
	}
	if !q.CanAdmit(units) {
		return desim.NewErrorWithType(desim.ErrTypeInvariantViolated, desim.ErrInvariantViolated).
			WithMessage("admit called without available capacity").
			WithField("queue", q.name)
	}
	delta := now - q.lastChange
	if delta < 0 {
		return desim.NewErrorWithType(desim.ErrTypeInvariantViolated, desim.ErrInvariantViolated).
			WithMessage("admit observed time moving backward").
			WithField("queue", q.name)
	}
	weight := float64(delta)
	q.grossPopulation.Add(float64(q.unitsInUse), weight)
	if q.unitsInUse > 0 {
		q.netPopulation.Add(float64(q.unitsInUse), weight)
	}
	q.occupants[occ.ID()] = &occupancy{occupant: occ, units: units, entered: now}
	q.unitsInUse += units
	q.lastChange = now
	q.totalIn++
	return nil
}

// release removes occ's occupancy at time now. It is only ever called
// through Registry.Release.
func (q *Queue) release(occ Occupant, now desim.Time) *desim.Error {
	rec, ok := q.occupants[occ.ID()]
	if !ok {
		return desim.NewErrorWithType(desim.ErrTypeNotAMember, desim.ErrNotAMember).
			WithField("queue", q.name).WithField("occupant", occ.ID())
	}
	delta := now - q.lastChange
	if delta < 0 {
		return desim.NewErrorWithType(desim.ErrTypeInvariantViolated, desim.ErrInvariantViolated).
			WithMessage("release observed time moving backward").
			WithField("queue", q.name)
	}
	weight := float64(delta)
	q.grossPopulation.Add(float64(q.unitsInUse), weight)
	if q.unitsInUse > 0 {
		q.netPopulation.Add(float64(q.unitsInUse), weight)
	}
	dwell := now - rec.entered
	if dwell < 0 {
		return desim.NewErrorWithType(desim.ErrTypeInvariantViolated, desim.ErrInvariantViolated).
			WithMessage("release computed negative dwell").
			WithField("queue", q.name)
	}
	q.grossDwell.Add(float64(dwell), 1)
	if dwell > 0 {
		q.netDwell.Add(float64(dwell), 1)
	}
	delete(q.occupants, occ.ID())
	q.unitsInUse -= rec.units
	q.lastChange = now
	return nil
}

// Reset wipes all occupancy, tallies, counters and the Simulation binding.
// The next admission rebinds the Queue, to the same or a different Registry.
func (q *Queue) Reset() {
	q.occupants = make(map[uint64]*occupancy)
	q.unitsInUse = 0
	q.lastChange = 0
	q.totalIn = 0
	q.grossPopulation.Reset()
	q.netPopulation.Reset()
	q.grossDwell.Reset()
	q.netDwell.Reset()
	q.boundRegistry = nil
}

// Stats is the flattened snapshot of a Queue's identity and counters, used
// by ToMap.
type Stats struct {
	Name       string `kv:"name"`
	Capacity   *int   `kv:"capacity,omitempty"`
	UnitsInUse int    `kv:"units_in_use"`
	TotalIn    uint64 `kv:"total_in"`
}

// Stats returns a snapshot of the Queue's identity and counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Name:       q.name,
		Capacity:   q.capacity,
		UnitsInUse: q.unitsInUse,
		TotalIn:    q.totalIn,
	}
}

// ToMap flattens the Queue's stats and its four tallies through a kv.Mapper,
// the shape used for reporting.
func (q *Queue) ToMap() map[string]interface{} {
	m := kv.NewMapper().ObjectToMap(q.Stats())
	m["gross_population"] = q.grossPopulation.ToMap()
	m["net_population"] = q.netPopulation.ToMap()
	m["gross_dwell"] = q.grossDwell.ToMap()
	m["net_dwell"] = q.netDwell.ToMap()
	return m
}
