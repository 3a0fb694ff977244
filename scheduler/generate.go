package scheduler

import "github.com/more-infra/desim"

type generateConfig struct {
	max       *int
	startTime *desim.Time
	endTime   *desim.Time
}

// GenerateOption configures a call to GenerateEntities.
type GenerateOption func(*generateConfig)

// WithGenerateMax stops generation after n entities have been activated.
func WithGenerateMax(n int) GenerateOption {
	return func(c *generateConfig) { c.max = &n }
}

// WithGenerateStartTime delays the first activation until t, instead of the
// default half-interval warm-up delay.
func WithGenerateStartTime(t desim.Time) GenerateOption {
	return func(c *generateConfig) { c.startTime = &t }
}

// WithGenerateEndTime stops generation once the clock reaches t.
func WithGenerateEndTime(t desim.Time) GenerateOption {
	return func(c *generateConfig) { c.endTime = &t }
}

// GenerateEntities activates an internal generator Entity whose script
// repeatedly constructs an Entity with factory and activates it, delaying
// by one sampled inter-arrival between arrivals.
//
// If startTime is given, the generator delays until it before its first
// arrival. Otherwise, if interArrival is non-nil, it applies a half-interval
// warm-up delay (half of one sampled inter-arrival) before the first
// arrival. Generation stops once max entities have been activated, once the
// clock reaches endTime, or — when interArrival is nil — after the single
// entity it generates.
func (s *Simulation) GenerateEntities(factory func() *Entity, interArrival desim.Sampler, options ...GenerateOption) *desim.Error {
	cfg := generateConfig{}
	for _, o := range options {
		o(&cfg)
	}
	gen := NewEntity(func(a *Activation) error {
		switch {
		case cfg.startTime != nil:
			if _, err := a.Delay(*cfg.startTime - a.Now()); err != nil {
				return err
			}
		case interArrival != nil:
			if _, err := a.Delay(desim.Time(interArrival.Sample()) / 2); err != nil {
				return err
			}
		}
		count := 0
		for {
			if cfg.max != nil && count >= *cfg.max {
				return nil
			}
			if cfg.endTime != nil && a.Now() >= *cfg.endTime {
				return nil
			}
			e := factory()
			if err := a.sim.Activate(e); err != nil {
				return err
			}
			count++
			if interArrival == nil {
				return nil
			}
			if _, err := a.Delay(desim.Time(interArrival.Sample())); err != nil {
				return err
			}
		}
	})
	return s.Activate(gen)
}
