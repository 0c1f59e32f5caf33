package led

import (
	"image"

	"github.com/coreman2200/funtimes-glimmer/model"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/screen1d"
)

// ConsoleEmitter paints the strip on the terminal, for hosts without a
// strip attached.
type ConsoleEmitter struct {
	drawer display.Drawer
}

func NewConsoleEmitter(pixels int) *ConsoleEmitter {
	return &ConsoleEmitter{drawer: screen1d.New(&screen1d.Opts{X: pixels})}
}

// NewDrawerEmitter wraps any display.Drawer, e.g. an nrzled.Dev.
func NewDrawerEmitter(d display.Drawer) *ConsoleEmitter {
	return &ConsoleEmitter{drawer: d}
}

func (c *ConsoleEmitter) Emit(pin string, b []byte) error {
	f := model.NewFrame(len(b) / 3)
	for i := 0; i < f.Len(); i++ {
		_ = f.Set(i, model.RGB(b[3*i], b[3*i+1], b[3*i+2]))
	}
	return c.drawer.Draw(c.drawer.Bounds(), f.Image(), image.Point{})
}

func (c *ConsoleEmitter) Close() error {
	return c.drawer.Halt()
}
