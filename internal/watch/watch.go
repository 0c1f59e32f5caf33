// Package watch turns GPIO edges into debounced events.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

type Edge int

const (
	Rising Edge = iota + 1
	Falling
	Both
)

func (e Edge) String() string {
	switch e {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	case Both:
		return "both"
	}
	return fmt.Sprintf("Edge(%d)", int(e))
}

func ParseEdge(s string) (Edge, error) {
	switch s {
	case "rising":
		return Rising, nil
	case "falling":
		return Falling, nil
	case "both":
		return Both, nil
	}
	return 0, fmt.Errorf("watch: unknown edge %q", s)
}

func (e Edge) matches(got Edge) bool {
	return e == Both || e == got
}

// DefaultPoll bounds how long Run takes to notice a cancelled context.
const DefaultPoll = 100 * time.Millisecond

type Options struct {
	Edge     Edge
	Repeat   bool
	Debounce time.Duration
	// Poll is the WaitForEdge timeout between context checks.
	Poll time.Duration
	// Clock stamps edges; the real clock when nil.
	Clock clockwork.Clock
}

// Event is one recognized edge.
type Event struct {
	Pin   string
	Edge  Edge
	Level bool
	Time  time.Time
}

type Watcher struct {
	pin   gpio.PinIn
	opts  Options
	deb   Debouncer
	clock clockwork.Clock
	log   zerolog.Logger
}

// Arm enables edge detection on p, keeping its current pull. Edges that
// happen before Run starts are dropped by the pin driver.
func Arm(p gpio.PinIn, opts Options, log zerolog.Logger) (*Watcher, error) {
	if opts.Edge == 0 {
		opts.Edge = Rising
	}
	if opts.Poll <= 0 {
		opts.Poll = DefaultPoll
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if err := p.In(p.Pull(), gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("watch: arm %s: %w", p.Name(), err)
	}
	return &Watcher{
		pin:   p,
		opts:  opts,
		deb:   Debouncer{Window: opts.Debounce},
		clock: opts.Clock,
		log:   log.With().Str("pin", p.Name()).Stringer("edge", opts.Edge).Logger(),
	}, nil
}

// Run blocks, calling fire for every recognized edge, until ctx is done or,
// without Repeat, after the first one. fire runs on Run's goroutine.
func (w *Watcher) Run(ctx context.Context, fire func(Event)) error {
	defer func() {
		if err := w.pin.In(w.pin.Pull(), gpio.NoEdge); err != nil {
			w.log.Warn().Err(err).Msg("disarm failed")
		}
	}()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if !w.pin.WaitForEdge(w.opts.Poll) {
			continue
		}
		now := w.clock.Now()
		level := bool(w.pin.Read())
		edge := Falling
		if level {
			edge = Rising
		}
		if !w.opts.Edge.matches(edge) {
			continue
		}
		if !w.deb.Accept(now) {
			w.log.Trace().Time("at", now).Msg("bounce ignored")
			continue
		}
		fire(Event{Pin: w.pin.Name(), Edge: edge, Level: level, Time: now})
		if !w.opts.Repeat {
			return nil
		}
	}
}
