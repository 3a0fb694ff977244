package status

import "sync"

// CycleState is one of a Cycle's three states.
type CycleState int

const (
	Paused CycleState = iota
	Running
	Finished
)

func (s CycleState) String() string {
	switch s {
	case Paused:
		return "paused"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Cycle is a restartable {Paused, Running, Finished} state machine. Unlike
// Controller, which is one-shot and cannot restart once Stopped, a Cycle can
// go back to Running from either Paused or Finished, the way a simulation
// can be resumed or rerun.
type Cycle struct {
	mu    sync.Mutex
	state CycleState
}

// NewCycle creates a Cycle in the Paused state.
func NewCycle() *Cycle {
	return &Cycle{state: Paused}
}

// Start transitions Paused or Finished to Running. It returns false if the
// Cycle is already Running.
func (c *Cycle) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		return false
	}
	c.state = Running
	return true
}

// Pause transitions Running to Paused. It returns false if the Cycle is not
// Running.
func (c *Cycle) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		return false
	}
	c.state = Paused
	return true
}

// Finish transitions Running to Finished. It returns false if the Cycle is
// not Running.
func (c *Cycle) Finish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		return false
	}
	c.state = Finished
	return true
}

// State returns the current state.
func (c *Cycle) State() CycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Is reports whether the current state equals s.
func (c *Cycle) Is(s CycleState) bool {
	return c.State() == s
}
