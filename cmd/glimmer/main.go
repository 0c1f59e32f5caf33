package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-glimmer/internal/app"
	"github.com/coreman2200/funtimes-glimmer/internal/config"
	"github.com/coreman2200/funtimes-glimmer/internal/pins"
	"github.com/coreman2200/funtimes-glimmer/internal/sim"
)

func main() {
	// ---- Flags (only flags given on the command line override config.yaml) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		demoName   = flag.String("demo", "", "demo: blink | pixel | button | cycle")
		driver     = flag.String("driver", "", "strip driver: stream | spi | console | sim")
		ledPin     = flag.String("led", "", "blink LED pin")
		periodMs   = flag.Int("period-ms", 0, "blink period (ms)")
		stripPin   = flag.String("strip", "", "LED strip data pin")
		count      = flag.Int("count", 0, "LEDs on the strip")
		color      = flag.String("color", "", "pixel demo color, #rrggbb or r,g,b")
		buttonPin  = flag.String("button", "", "button pin")
		pull       = flag.String("pull", "", "button pull: pulldown | pullup")
		debounceMs = flag.Int("debounce-ms", -1, "button debounce window (ms)")
		spiDev     = flag.String("spi", "", "SPI port for driver=spi")
		level      = flag.String("log-level", "", "debug | info | warn | error")
		saveTo     = flag.String("save-config", "", "write the effective config here and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override := func(name string, dst *string, v string) {
		if set[name] {
			*dst = v
		}
	}
	override("demo", &cfg.Demo, *demoName)
	override("driver", &cfg.Driver, *driver)
	override("led", &cfg.LED.Pin, *ledPin)
	override("strip", &cfg.Strip.Pin, *stripPin)
	override("color", &cfg.Strip.Color, *color)
	override("button", &cfg.Button.Pin, *buttonPin)
	override("pull", &cfg.Button.Pull, *pull)
	override("spi", &cfg.SPI.Dev, *spiDev)
	override("log-level", &cfg.LogLevel, *level)
	if set["period-ms"] {
		cfg.LED.PeriodMs = *periodMs
	}
	if set["count"] {
		cfg.Strip.Count = *count
	}
	if set["debounce-ms"] {
		cfg.Button.DebounceMs = *debounceMs
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *saveTo != "" {
		if err := config.Save(*saveTo, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *saveTo).Msg("save config")
		}
		log.Info().Str("path", *saveTo).Msg("config written")
		return
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Str("demo", cfg.Demo).Msg("demo failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Board ----
	var lookup pins.Lookup
	var board *sim.Board
	if cfg.Driver == config.DriverSim {
		board = sim.NewBoard(log.Logger)
		lookup = board.Lookup
	} else if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	reg := pins.NewRegistry(lookup, log.Logger)
	defer func() {
		if err := reg.Close(); err != nil {
			log.Warn().Err(err).Msg("release pins")
		}
	}()

	em, err := app.NewEmitter(cfg, reg)
	if err != nil {
		return err
	}
	defer em.Close()

	if board != nil && (cfg.Demo == config.DemoButton || cfg.Demo == config.DemoCycle) {
		log.Info().Str("pin", cfg.Button.Pin).Msg("press enter to press the button")
		go func() {
			if err := board.Keyboard(ctx, os.Stdin, cfg.Button.Pin); err != nil {
				log.Warn().Err(err).Msg("keyboard input stopped")
			}
		}()
	}

	// ---- Graceful shutdown ----
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		s := <-ch
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	}()

	return app.Run(ctx, cfg, app.Options{Pins: reg, Emitter: em, Log: log.Logger})
}
