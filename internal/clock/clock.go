package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock returns the current time. Services take it instead of calling time.Now so tests can pin it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// New returns the wall clock in UTC.
func New() Clock { return systemClock{} }

var Module = fx.Module("clock", fx.Provide(New))
