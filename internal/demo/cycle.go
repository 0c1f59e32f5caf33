package demo

import (
	"context"
	"errors"

	"github.com/coreman2200/funtimes-glimmer/internal/dispatch"
	"github.com/coreman2200/funtimes-glimmer/model"
	"github.com/rs/zerolog"
)

// DefaultPalette is red, green, blue, white at a dim level.
var DefaultPalette = []model.Color{
	model.RGB(25, 0, 0),
	model.RGB(0, 25, 0),
	model.RGB(0, 0, 25),
	model.RGB(25, 25, 25),
}

var ErrEmptyPalette = errors.New("demo: palette is empty")

// Cycler advances through a palette on every button press.
type Cycler struct {
	strip   Display
	palette []model.Color
	log     zerolog.Logger

	index int
}

func NewCycler(strip Display, palette []model.Color, log zerolog.Logger) (*Cycler, error) {
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	return &Cycler{
		strip:   strip,
		palette: append([]model.Color{}, palette...),
		log:     log,
	}, nil
}

func (c *Cycler) Start(context.Context) error {
	c.index = 0
	return c.show()
}

func (c *Cycler) Handle(_ context.Context, ev dispatch.Event) error {
	if !ev.Rising() {
		return nil
	}
	c.index = (c.index + 1) % len(c.palette)
	return c.show()
}

func (c *Cycler) show() error {
	col := c.palette[c.index]
	if err := showFirst(c.strip, col); err != nil {
		return err
	}
	c.log.Info().Int("index", c.index).Stringer("color", col).Msg("changed color")
	return nil
}

// Index is the palette entry currently shown.
func (c *Cycler) Index() int { return c.index }

func (c *Cycler) Stop() error {
	return c.strip.Show(c.strip.Frame())
}
