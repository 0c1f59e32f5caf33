// Package sim provides a fake board so the demos run on a machine with no
// GPIO header: pins are periph gpiotest pins created on first use and the
// button is pressed from the keyboard.
package sim

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type Board struct {
	mu   sync.Mutex
	pins map[string]*gpiotest.Pin
	log  zerolog.Logger
}

func NewBoard(log zerolog.Logger) *Board {
	return &Board{pins: make(map[string]*gpiotest.Pin), log: log}
}

// Lookup satisfies pins.Lookup. Every name exists.
func (b *Board) Lookup(name string) gpio.PinIO {
	return b.Pin(name)
}

func (b *Board) Pin(name string) *gpiotest.Pin {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pins[name]
	if !ok {
		p = &gpiotest.Pin{N: name, Num: len(b.pins), EdgesChan: make(chan gpio.Level, 16)}
		b.pins[name] = p
	}
	return p
}

// Press fakes a full press and release of the button on name.
func (b *Board) Press(name string) {
	p := b.Pin(name)
	p.EdgesChan <- gpio.High
	p.EdgesChan <- gpio.Low
}

// Keyboard presses the button on name for every line read from r, until r
// is exhausted or ctx is done.
func (b *Board) Keyboard(ctx context.Context, r io.Reader, name string) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		b.log.Debug().Str("pin", name).Msg("simulated press")
		b.Press(name)
	}
	return s.Err()
}
