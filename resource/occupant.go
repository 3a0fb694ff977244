// Package resource implements Queues, the capacity-gated places entities
// occupy while they wait or hold a resource, and the Registry a Simulation
// uses to look Queues up by name or pattern.
package resource

// Occupant is anything a Queue can admit. Entity is the only implementation
// in normal use; the interface exists so this package never has to import
// the scheduler package that defines Entity.
type Occupant interface {
	ID() uint64
	Priority() int
}
