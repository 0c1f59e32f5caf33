package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/coreman2200/funtimes-glimmer/internal/led"
	"github.com/coreman2200/funtimes-glimmer/internal/timer"
	"github.com/coreman2200/funtimes-glimmer/internal/watch"
	"github.com/coreman2200/funtimes-glimmer/model"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

const (
	DemoBlink  = "blink"
	DemoPixel  = "pixel"
	DemoButton = "button"
	DemoCycle  = "cycle"
)

const (
	DriverStream  = "stream"
	DriverSPI     = "spi"
	DriverConsole = "console"
	DriverSim     = "sim"
)

type LED struct {
	Pin      string `yaml:"pin"`       // e.g. GPIO2
	PeriodMs int    `yaml:"period_ms"` // blink period
}

type Strip struct {
	Pin      string   `yaml:"pin"`   // data pin, or SPI port name for driver=spi
	Count    int      `yaml:"count"` // LEDs physically wired
	Color    string   `yaml:"color"` // pixel demo, "#rrggbb" or "r,g,b"
	Palette  []string `yaml:"palette,omitempty"`
	BitRateK int      `yaml:"bit_rate_khz"` // 800 for WS2812
	LatchUs  int      `yaml:"latch_us"`
}

type Button struct {
	Pin        string `yaml:"pin"`
	Pull       string `yaml:"pull"` // "pulldown" | "pullup"
	DebounceMs int    `yaml:"debounce_ms"`
}

type SPI struct {
	Dev string `yaml:"dev"` // spireg name; "" picks the first port
}

type Config struct {
	Demo     string `yaml:"demo"`   // blink | pixel | button | cycle
	Driver   string `yaml:"driver"` // stream | spi | console | sim
	LogLevel string `yaml:"log_level"`

	LED    LED    `yaml:"led"`
	Strip  Strip  `yaml:"strip"`
	Button Button `yaml:"button"`
	SPI    SPI    `yaml:"spi,omitempty"`
}

// Default matches the usual dev-board wiring.
func Default() *Config {
	return &Config{
		Demo:     DemoCycle,
		Driver:   DriverSim,
		LogLevel: "info",
		LED:      LED{Pin: "GPIO2", PeriodMs: int(timer.DefaultPeriod / time.Millisecond)},
		Strip: Strip{
			Pin:      "GPIO12",
			Count:    1,
			Color:    "20,10,30",
			Palette:  []string{"25,0,0", "0,25,0", "0,0,25", "25,25,25"},
			BitRateK: int(led.DefaultBitRate / physic.KiloHertz),
			LatchUs:  int(led.DefaultLatch / time.Microsecond),
		},
		Button: Button{Pin: "GPIO0", Pull: "pulldown", DebounceMs: int(watch.DefaultDebounce / time.Millisecond)},
	}
}

// Load reads path over the defaults, so a file only needs what it changes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Demo {
	case DemoBlink, DemoPixel, DemoButton, DemoCycle:
	default:
		errs = append(errs, fmt.Errorf("unknown demo %q", c.Demo))
	}
	switch c.Driver {
	case DriverStream, DriverSPI, DriverConsole, DriverSim:
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q", c.Driver))
	}
	if c.Strip.Count < 0 {
		errs = append(errs, fmt.Errorf("strip.count %d is negative", c.Strip.Count))
	}
	if c.LED.PeriodMs <= 0 {
		errs = append(errs, fmt.Errorf("led.period_ms must be positive"))
	}
	if c.Button.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("button.debounce_ms is negative"))
	}
	if c.Button.Pull != "pulldown" && c.Button.Pull != "pullup" {
		errs = append(errs, fmt.Errorf("button.pull %q is neither pulldown nor pullup", c.Button.Pull))
	}
	if _, err := c.PixelColor(); err != nil {
		errs = append(errs, err)
	}
	if p, err := c.PaletteColors(); err != nil {
		errs = append(errs, err)
	} else if len(p) == 0 {
		errs = append(errs, errors.New("strip.palette is empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) Period() time.Duration {
	return time.Duration(c.LED.PeriodMs) * time.Millisecond
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Button.DebounceMs) * time.Millisecond
}

func (c *Config) Latch() time.Duration {
	return time.Duration(c.Strip.LatchUs) * time.Microsecond
}

func (c *Config) PixelColor() (model.Color, error) {
	return model.ParseColor(c.Strip.Color)
}

func (c *Config) PaletteColors() ([]model.Color, error) {
	out := make([]model.Color, 0, len(c.Strip.Palette))
	for _, s := range c.Strip.Palette {
		col, err := model.ParseColor(s)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}
