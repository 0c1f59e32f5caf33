package demo

import (
	"context"
	"sync/atomic"

	"github.com/coreman2200/funtimes-glimmer/internal/dispatch"
	"github.com/rs/zerolog"
)

// ButtonLogger reports presses and releases. The counters may be read from
// any goroutine.
type ButtonLogger struct {
	log zerolog.Logger

	presses, releases atomic.Int64
}

func NewButtonLogger(log zerolog.Logger) *ButtonLogger {
	return &ButtonLogger{log: log}
}

func (b *ButtonLogger) Start(context.Context) error { return nil }

func (b *ButtonLogger) Handle(_ context.Context, ev dispatch.Event) error {
	if ev.Kind != dispatch.ButtonEdge {
		return nil
	}
	if ev.Rising() {
		b.presses.Add(1)
		b.log.Info().Str("pin", ev.Source).Time("at", ev.Time).Msg("button pressed")
	} else {
		b.releases.Add(1)
		b.log.Info().Str("pin", ev.Source).Time("at", ev.Time).Msg("button released")
	}
	return nil
}

// Counts returns presses and releases seen so far.
func (b *ButtonLogger) Counts() (presses, releases int) {
	return int(b.presses.Load()), int(b.releases.Load())
}

func (b *ButtonLogger) Stop() error { return nil }
