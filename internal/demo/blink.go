package demo

import (
	"context"

	"github.com/coreman2200/funtimes-glimmer/internal/dispatch"
	"github.com/rs/zerolog"
)

// Blinker toggles a plain LED on every timer tick.
type Blinker struct {
	out PinWriter
	pin string
	log zerolog.Logger

	on bool
}

func NewBlinker(out PinWriter, pin string, log zerolog.Logger) *Blinker {
	return &Blinker{out: out, pin: pin, log: log}
}

func (b *Blinker) Start(context.Context) error {
	b.on = false
	return b.out.Write(b.pin, false)
}

func (b *Blinker) Handle(_ context.Context, ev dispatch.Event) error {
	if ev.Kind != dispatch.TimerTick {
		return nil
	}
	b.on = !b.on
	if err := b.out.Write(b.pin, b.on); err != nil {
		return err
	}
	state := "OFF"
	if b.on {
		state = "ON"
	}
	b.log.Info().Str("pin", b.pin).Bool("on", b.on).Msg("LED is " + state)
	return nil
}

// On reports the level last written.
func (b *Blinker) On() bool { return b.on }

func (b *Blinker) Stop() error {
	b.on = false
	return b.out.Write(b.pin, false)
}
