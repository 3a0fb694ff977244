// Package tally implements weighted running statistics for queue population
// and dwell-time reporting, with an optional dense histogram.
package tally

import (
	"math"

	"github.com/more-infra/desim"
	"github.com/more-infra/desim/kv"
)

// Tally collects weighted observations and exposes the statistics computed
// from them. Its methods are not thread-safe; callers on the simulation's
// single logical execution context already serialize access.
type Tally struct {
	count          float64
	sum            float64
	sum2           float64
	min            float64
	max            float64
	hasObservation bool

	hist *histogram
}

// Option configures a Tally at construction.
type Option func(*Tally)

// WithHistogram enables a histogram binned by floor(value/binSize).
func WithHistogram(binSize float64) Option {
	return func(t *Tally) {
		t.hist = newHistogram(binSize)
	}
}

// WithHistogramClamp clamps observed values to [min, max] before binning.
// It implies WithHistogram(1) if no bin size has been set yet.
func WithHistogramClamp(min, max float64) Option {
	return func(t *Tally) {
		if t.hist == nil {
			t.hist = newHistogram(1)
		}
		t.hist.clampMin = &min
		t.hist.clampMax = &max
	}
}

// New creates an empty Tally.
func New(options ...Option) *Tally {
	t := &Tally{}
	for _, op := range options {
		op(t)
	}
	return t
}

// Add records a weighted observation. weight defaults to 1 when omitted.
// A negative weight fails with desim.ErrTypeInvalidArgument.
func (t *Tally) Add(value float64, weight ...float64) *desim.Error {
	w := 1.0
	if len(weight) != 0 {
		w = weight[0]
	}
	if w < 0 {
		return desim.NewErrorWithType(desim.ErrTypeInvalidArgument, desim.ErrNegativeWeight).
			WithField("weight", w)
	}
	if !t.hasObservation {
		t.min = value
		t.max = value
		t.hasObservation = true
	} else {
		if value < t.min {
			t.min = value
		}
		if value > t.max {
			t.max = value
		}
	}
	t.count += w
	t.sum += value * w
	t.sum2 += value * value * w
	if t.hist != nil {
		t.hist.add(value, w)
	}
	return nil
}

// Count returns the sum of recorded weights.
func (t *Tally) Count() float64 { return t.count }

// Min returns the smallest observed value, or 0 if nothing was recorded.
func (t *Tally) Min() float64 { return t.min }

// Max returns the largest observed value, or 0 if nothing was recorded.
func (t *Tally) Max() float64 { return t.max }

// Mean returns the weighted mean, or 0 if no weight has been recorded.
func (t *Tally) Mean() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / t.count
}

// Variance returns the weighted population variance.
func (t *Tally) Variance() float64 {
	if t.count == 0 {
		return 0
	}
	v := t.sum2/t.count - (t.sum/t.count)*(t.sum/t.count)
	return math.Max(0, v)
}

// StdDev returns the square root of Variance.
func (t *Tally) StdDev() float64 {
	return math.Sqrt(t.Variance())
}

// Reset clears all recorded observations, including the histogram.
func (t *Tally) Reset() {
	t.count = 0
	t.sum = 0
	t.sum2 = 0
	t.min = 0
	t.max = 0
	t.hasObservation = false
	if t.hist != nil {
		t.hist.reset()
	}
}

// Bin is one dense, range-ordered bucket of a Tally's histogram.
type Bin struct {
	Low   float64
	High  float64
	Count float64
}

// Histogram returns the dense, gap-filled histogram ordered from the lowest
// occupied bin to the highest, or nil if no histogram was configured.
func (t *Tally) Histogram() []Bin {
	if t.hist == nil {
		return nil
	}
	return t.hist.dense()
}

// Stats is the flattened snapshot of a Tally's statistics, used by ToMap.
type Stats struct {
	Count    float64 `kv:"count"`
	Min      float64 `kv:"min"`
	Max      float64 `kv:"max"`
	Mean     float64 `kv:"mean"`
	Variance float64 `kv:"variance"`
	StdDev   float64 `kv:"stdev"`
}

// Stats returns a snapshot of the Tally's current statistics.
func (t *Tally) Stats() Stats {
	return Stats{
		Count:    t.Count(),
		Min:      t.Min(),
		Max:      t.Max(),
		Mean:     t.Mean(),
		Variance: t.Variance(),
		StdDev:   t.StdDev(),
	}
}

// ToMap flattens Stats through a kv.Mapper, the shape used by the reporting
// layer built on this package.
func (t *Tally) ToMap() map[string]interface{} {
	return kv.NewMapper().ObjectToMap(t.Stats())
}
