package desim

// Time represents virtual simulation time. It carries no unit of its own;
// scripts and Tallies agree on a unit by convention, the way the scheduler
// package's tests use whole numbers for delays and dwell times.
type Time float64

// Sampler is the opaque random-variable contract scripts and generators
// consume. The engine never inspects the distribution behind a Sampler, only
// calls Sample() for the next draw.
type Sampler interface {
	Sample() float64
}

// Signal identifies a wakeup channel entities can wait on and send on. It
// carries no structure of its own; scripts agree on a vocabulary of signals
// by convention, comparing them with ==.
type Signal string
