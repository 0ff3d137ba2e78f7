package clock

import (
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("clock",
	fx.Provide(NewSystem),
)

// Clock abstracts wall time so quotation codes and dates can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type system struct{}

func NewSystem() Clock {
	return system{}
}

func (system) Now() time.Time {
	return time.Now()
}
