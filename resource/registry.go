package resource

import (
	"github.com/more-infra/desim"
	"github.com/more-infra/desim/element"
	"github.com/more-infra/desim/values"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry is the set of Queues bound to one Simulation. A Queue is not
// added to a Registry at construction; it joins on its first admission,
// which is also the moment its Simulation binding is established.
type Registry struct {
	mgr   *element.Manager
	cache *lru.Cache[string, *Queue]
}

// RegistryOption configures a Registry at construction.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	cacheCapacity int
}

// WithLookupCacheCapacity sets the size of the exact-name lookup cache used
// by Get. The default is 256.
func WithLookupCacheCapacity(n int) RegistryOption {
	return func(c *registryConfig) { c.cacheCapacity = n }
}

// NewRegistry creates an empty Registry.
func NewRegistry(options ...RegistryOption) *Registry {
	cfg := registryConfig{cacheCapacity: 256}
	for _, o := range options {
		o(&cfg)
	}
	cache, err := lru.New[string, *Queue](cfg.cacheCapacity)
	if err != nil {
		panic(err)
	}
	return &Registry{
		mgr:   element.NewManager(),
		cache: cache,
	}
}

// Admit admits occ into q for units at time now, on behalf of r's owning
// Simulation. The first call for a given Queue binds it to r; a later call
// from a different Registry fails with ErrTypeCrossSimulation.
func (r *Registry) Admit(q *Queue, occ Occupant, units int, now desim.Time) *desim.Error {
	if q.boundRegistry == nil {
		q.boundRegistry = r
		r.register(q)
	} else if q.boundRegistry != r {
		return desim.NewErrorWithType(desim.ErrTypeCrossSimulation, desim.ErrCrossSimulation).
			WithField("queue", q.name)
	}
	return q.admit(occ, units, now)
}

// Release releases occ from q at time now.
func (r *Registry) Release(q *Queue, occ Occupant, now desim.Time) *desim.Error {
	return q.release(occ, now)
}

func (r *Registry) register(q *Queue) {
	if q.Element != nil {
		return
	}
	q.Element = r.mgr.NewElement()
	q.Element.SetIndex("name", q.name)
	r.mgr.Join(q)
	r.cache.Remove(q.name)
}

// Get returns a registered Queue with the given exact name. When several
// registered Queues share the name, which one is returned is not defined.
func (r *Registry) Get(name string) (*Queue, bool) {
	if q, ok := r.cache.Get(name); ok {
		return q, true
	}
	matches := r.mgr.Search("name", name)
	if len(matches) == 0 {
		return nil, false
	}
	q := matches[0].(*Queue)
	r.cache.Add(name, q)
	return q, true
}

// FindMatching returns every registered Queue whose name matches pattern.
// pattern follows values.Matcher's syntax: a plain string, a /regex/, or a
// %wildcard%.
func (r *Registry) FindMatching(pattern string) []*Queue {
	m := values.NewMatcher()
	if err := m.Append(pattern); err != nil {
		return nil
	}
	var out []*Queue
	for _, e := range r.mgr.Snapshot() {
		q := e.(*Queue)
		if m.Match(q.name) {
			out = append(out, q)
		}
	}
	return out
}

// Queues returns every Queue registered with r.
func (r *Registry) Queues() []*Queue {
	snap := r.mgr.Snapshot()
	out := make([]*Queue, 0, len(snap))
	for _, e := range snap {
		out = append(out, e.(*Queue))
	}
	return out
}

// ResetAll wipes the state of every registered Queue, the way Simulation's
// Start(reset) does at the beginning of a fresh run.
func (r *Registry) ResetAll() {
	for _, e := range r.mgr.Snapshot() {
		e.(*Queue).Reset()
	}
}
