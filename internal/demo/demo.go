// Package demo holds the controllers behind each demo. Every controller owns
// its state and is driven by the dispatch loop, so a controller is only ever
// touched from one goroutine.
package demo

import (
	"context"

	"github.com/coreman2200/funtimes-glimmer/internal/dispatch"
	"github.com/coreman2200/funtimes-glimmer/model"
)

// Controller is a demo: Start runs once before any event is dispatched.
type Controller interface {
	dispatch.Handler
	Start(ctx context.Context) error
	// Stop leaves the hardware dark.
	Stop() error
}

// PinWriter drives a digital output.
type PinWriter interface {
	Write(pin string, level bool) error
}

// Display is a fixed-length LED strip.
type Display interface {
	Frame() model.Frame
	Show(f model.Frame) error
}

// showFirst lights LED 0 with c and leaves the rest off.
func showFirst(d Display, c model.Color) error {
	f := d.Frame()
	if f.Len() == 0 {
		return d.Show(f)
	}
	if err := f.Set(0, c); err != nil {
		return err
	}
	return d.Show(f)
}
