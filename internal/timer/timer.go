// Package timer fires a callback at a fixed period.
package timer

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPeriod is the blink period.
const DefaultPeriod = time.Second

var ErrPeriod = errors.New("timer: period must be positive")

// Every calls fire with the tick time once per period until ctx is done.
// A tick that arrives while fire is still running is dropped, not queued.
func Every(ctx context.Context, clock clockwork.Clock, period time.Duration, fire func(time.Time)) error {
	if period <= 0 {
		return ErrPeriod
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ticker := clock.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case t := <-ticker.Chan():
			fire(t)
		case <-ctx.Done():
			return nil
		}
	}
}
