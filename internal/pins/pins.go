// Package pins claims and configures GPIO pins by name on top of periph's
// gpio registry.
package pins

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Mode is the electrical configuration a pin is claimed with.
type Mode int

const (
	Unconfigured Mode = iota
	Output
	InputPullDown
	InputPullUp
)

func (m Mode) String() string {
	switch m {
	case Output:
		return "output"
	case InputPullDown:
		return "input_pulldown"
	case InputPullUp:
		return "input_pullup"
	}
	return "unconfigured"
}

// ParseMode maps the names used in config files to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "output":
		return Output, nil
	case "input_pulldown", "pulldown":
		return InputPullDown, nil
	case "input_pullup", "pullup":
		return InputPullUp, nil
	}
	return Unconfigured, fmt.Errorf("pins: unknown mode %q", s)
}

func (m Mode) pull() gpio.Pull {
	switch m {
	case InputPullDown:
		return gpio.PullDown
	case InputPullUp:
		return gpio.PullUp
	}
	return gpio.PullNoChange
}

var (
	ErrUnknownPin = errors.New("no such pin")
	ErrClaimed    = errors.New("pin already claimed")
	ErrNotOutput  = errors.New("pin not configured for output")
	ErrNotInput   = errors.New("pin not configured for input")
	ErrBadMode    = errors.New("unsupported pin mode")
)

// ConfigError reports a pin that could not be configured.
type ConfigError struct {
	Pin  string
	Mode Mode
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pins: configure %s as %s: %v", e.Pin, e.Mode, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Lookup resolves a pin name to a pin, or nil when the host has none.
type Lookup func(name string) gpio.PinIO

type claim struct {
	pin  gpio.PinIO
	mode Mode
}

// Registry tracks which pins this process has claimed and how.
type Registry struct {
	lookup Lookup
	log    zerolog.Logger

	mu     sync.Mutex
	claims map[string]claim
}

// NewRegistry uses gpioreg.ByName when lookup is nil.
func NewRegistry(lookup Lookup, log zerolog.Logger) *Registry {
	if lookup == nil {
		lookup = gpioreg.ByName
	}
	return &Registry{
		lookup: lookup,
		log:    log,
		claims: make(map[string]claim),
	}
}

// Configure claims name and applies mode. Output pins start Low.
func (r *Registry) Configure(name string, mode Mode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.claims[name]; ok {
		return &ConfigError{Pin: name, Mode: mode, Err: ErrClaimed}
	}
	p := r.lookup(name)
	if p == nil {
		return &ConfigError{Pin: name, Mode: mode, Err: ErrUnknownPin}
	}

	var err error
	switch mode {
	case Output:
		err = p.Out(gpio.Low)
	case InputPullDown, InputPullUp:
		err = p.In(mode.pull(), gpio.NoEdge)
	default:
		err = ErrBadMode
	}
	if err != nil {
		return &ConfigError{Pin: name, Mode: mode, Err: err}
	}

	r.claims[name] = claim{pin: p, mode: mode}
	r.log.Debug().Str("pin", name).Stringer("mode", mode).Msg("pin configured")
	return nil
}

// Release drops a claim; the pin is halted.
func (r *Registry) Release(name string) error {
	r.mu.Lock()
	c, ok := r.claims[name]
	delete(r.claims, name)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return c.pin.Halt()
}

// Mode reports how name is claimed.
func (r *Registry) Mode(name string) Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claims[name].mode
}

// Output returns the pin behind name if it was claimed as Output.
func (r *Registry) Output(name string) (gpio.PinIO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[name]
	if !ok || c.mode != Output {
		return nil, fmt.Errorf("%s: %w", name, ErrNotOutput)
	}
	return c.pin, nil
}

// Input returns the pin behind name if it was claimed as an input.
func (r *Registry) Input(name string) (gpio.PinIO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[name]
	if !ok || (c.mode != InputPullDown && c.mode != InputPullUp) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotInput)
	}
	return c.pin, nil
}

// Write drives an output pin.
func (r *Registry) Write(name string, level bool) error {
	p, err := r.Output(name)
	if err != nil {
		return err
	}
	if err := p.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Read samples any claimed pin.
func (r *Registry) Read(name string) (bool, error) {
	r.mu.Lock()
	c, ok := r.claims[name]
	r.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%s: %w", name, ErrUnknownPin)
	}
	return bool(c.pin.Read()), nil
}

// Close halts and releases every claimed pin.
func (r *Registry) Close() error {
	r.mu.Lock()
	names := make([]string, 0, len(r.claims))
	for n := range r.claims {
		names = append(names, n)
	}
	r.mu.Unlock()

	var errs []error
	for _, n := range names {
		if err := r.Release(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
