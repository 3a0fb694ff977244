package scheduler

import (
	"context"

	"github.com/more-infra/desim/reactor"
)

// ReactorYield adapts a reactor.Reactor into a YieldFunc: instead of
// recursing on the goroutine that called Start, it pushes the continuation
// onto the Reactor's single-goroutine queue, letting a host time-slice
// several Simulations (or other cooperative work) on one goroutine. The
// Reactor must already be started.
func ReactorYield(r *reactor.Reactor) YieldFunc {
	return func(fn func()) {
		_ = r.Push(func(context.Context) {
			fn()
		})
	}
}
