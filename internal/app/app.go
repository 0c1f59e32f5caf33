// Package app wires pins, the LED writer, watchers and timers to the demo
// controllers and runs them until the context ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-glimmer/internal/config"
	"github.com/coreman2200/funtimes-glimmer/internal/demo"
	"github.com/coreman2200/funtimes-glimmer/internal/dispatch"
	"github.com/coreman2200/funtimes-glimmer/internal/led"
	"github.com/coreman2200/funtimes-glimmer/internal/pins"
	"github.com/coreman2200/funtimes-glimmer/internal/timer"
	"github.com/coreman2200/funtimes-glimmer/internal/watch"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
)

type Options struct {
	Pins *pins.Registry
	// Emitter carries strip frames; only the pixel and cycle demos need it.
	Emitter led.Emitter
	Clock   clockwork.Clock
	Log     zerolog.Logger
	// Poll bounds how quickly button watchers notice shutdown.
	Poll time.Duration
	// Started, if set, is called with the running demo once every producer
	// is running.
	Started func(demo.Controller)
}

type producer func(ctx context.Context) error

type runner struct {
	cfg  *config.Config
	o    Options
	loop *dispatch.Loop
}

// Run configures the hardware for cfg.Demo, starts it, and blocks until ctx
// is done. On the way out the demo turns its outputs off.
func Run(ctx context.Context, cfg *config.Config, o Options) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.Pins == nil {
		return errors.New("app: no pin registry")
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	r := &runner{cfg: cfg, o: o, loop: dispatch.NewLoop(0, o.Log)}

	ctrl, producers, err := r.build()
	if err != nil {
		return err
	}
	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("app: start %s: %w", cfg.Demo, err)
	}
	o.Log.Info().Str("demo", cfg.Demo).Str("driver", cfg.Driver).Msg("demo running")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errc := make(chan error, len(producers)+1)
	for _, p := range append(producers, r.loop.Run) {
		wg.Add(1)
		go func(p producer) {
			defer wg.Done()
			if err := p(ctx); err != nil {
				errc <- err
				cancel()
			}
		}(p)
	}
	if o.Started != nil {
		o.Started(ctrl)
	}

	<-ctx.Done()
	wg.Wait()
	close(errc)

	var errs []error
	for err := range errc {
		errs = append(errs, err)
	}
	if err := ctrl.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("app: stop %s: %w", cfg.Demo, err))
	}
	return errors.Join(errs...)
}

func (r *runner) build() (demo.Controller, []producer, error) {
	log := r.o.Log.With().Str("demo", r.cfg.Demo).Logger()

	switch r.cfg.Demo {
	case config.DemoBlink:
		if err := r.o.Pins.Configure(r.cfg.LED.Pin, pins.Output); err != nil {
			return nil, nil, err
		}
		b := demo.NewBlinker(r.o.Pins, r.cfg.LED.Pin, log)
		r.loop.Subscribe(dispatch.TimerTick, "blink", b)
		return b, []producer{r.ticker()}, nil

	case config.DemoPixel:
		strip, err := r.strip()
		if err != nil {
			return nil, nil, err
		}
		c, err := r.cfg.PixelColor()
		if err != nil {
			return nil, nil, err
		}
		return demo.NewPixel(strip, c, log), nil, nil

	case config.DemoButton:
		w, err := r.button(watch.Both)
		if err != nil {
			return nil, nil, err
		}
		b := demo.NewButtonLogger(log)
		r.loop.Subscribe(dispatch.ButtonEdge, "button", b)
		return b, []producer{w}, nil

	case config.DemoCycle:
		strip, err := r.strip()
		if err != nil {
			return nil, nil, err
		}
		palette, err := r.cfg.PaletteColors()
		if err != nil {
			return nil, nil, err
		}
		c, err := demo.NewCycler(strip, palette, log)
		if err != nil {
			return nil, nil, err
		}
		w, err := r.button(watch.Rising)
		if err != nil {
			return nil, nil, err
		}
		r.loop.Subscribe(dispatch.ButtonEdge, "cycle", c)
		return c, []producer{w}, nil
	}
	return nil, nil, fmt.Errorf("app: unknown demo %q", r.cfg.Demo)
}

func (r *runner) ticker() producer {
	return func(ctx context.Context) error {
		return timer.Every(ctx, r.o.Clock, r.cfg.Period(), func(t time.Time) {
			r.loop.Post(dispatch.Event{Kind: dispatch.TimerTick, Source: r.cfg.LED.Pin, Time: t})
		})
	}
}

func (r *runner) strip() (*led.Strip, error) {
	if r.o.Emitter == nil {
		return nil, errors.New("app: no LED emitter")
	}
	if r.cfg.Driver == config.DriverStream {
		if err := r.o.Pins.Configure(r.cfg.Strip.Pin, pins.Output); err != nil {
			return nil, err
		}
	}
	w := led.NewWriter(r.o.Emitter, r.o.Log)
	return led.NewStrip(w, r.cfg.Strip.Pin, r.cfg.Strip.Count), nil
}

// button arms the button pin. press is the logical edge wanted: Rising means
// "pressed", whatever the pull.
func (r *runner) button(press watch.Edge) (producer, error) {
	mode, err := pins.ParseMode(r.cfg.Button.Pull)
	if err != nil {
		return nil, err
	}
	if err := r.o.Pins.Configure(r.cfg.Button.Pin, mode); err != nil {
		return nil, err
	}
	in, err := r.o.Pins.Input(r.cfg.Button.Pin)
	if err != nil {
		return nil, err
	}

	activeLow := mode == pins.InputPullUp
	edge := press
	if activeLow {
		switch press {
		case watch.Rising:
			edge = watch.Falling
		case watch.Falling:
			edge = watch.Rising
		}
	}
	w, err := watch.Arm(in, watch.Options{
		Edge:     edge,
		Repeat:   true,
		Debounce: r.cfg.Debounce(),
		Poll:     r.o.Poll,
		Clock:    r.o.Clock,
	}, r.o.Log)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		return w.Run(ctx, func(e watch.Event) {
			r.loop.Post(dispatch.Event{
				Kind:   dispatch.ButtonEdge,
				Source: e.Pin,
				Level:  e.Level != activeLow,
				Time:   e.Time,
			})
		})
	}, nil
}

// NewEmitter builds the strip sink cfg.Driver asks for.
func NewEmitter(cfg *config.Config, reg *pins.Registry) (led.Emitter, error) {
	rate := physic.Frequency(cfg.Strip.BitRateK) * physic.KiloHertz
	switch cfg.Driver {
	case config.DriverStream:
		return led.NewStreamEmitter(reg, rate, cfg.Latch()), nil
	case config.DriverSPI:
		if rate != led.DefaultBitRate {
			return nil, fmt.Errorf("app: spi driver runs at %s only, not %s", led.DefaultBitRate, rate)
		}
		return led.OpenSPIEmitter(cfg.SPI.Dev, cfg.Strip.Count)
	case config.DriverConsole, config.DriverSim:
		return led.NewConsoleEmitter(cfg.Strip.Count), nil
	}
	return nil, fmt.Errorf("app: unknown driver %q", cfg.Driver)
}
