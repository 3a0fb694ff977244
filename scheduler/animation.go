package scheduler

import (
	"github.com/more-infra/desim"
	"github.com/more-infra/desim/resource"
)

// AnimationPosition is the polymorphic hook an animation layer built on top
// of this package may implement to read an Entity's position along the
// queue path given to a delay through WithAnimationPath. The core never
// calls it; rendering is out of scope here.
type AnimationPosition interface {
	AnimationPosition(path []*resource.Queue, start, end desim.Time, now desim.Time) (position, angle float64, ok bool)
}
