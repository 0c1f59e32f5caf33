package demo

import (
	"context"

	"github.com/coreman2200/funtimes-glimmer/internal/dispatch"
	"github.com/coreman2200/funtimes-glimmer/model"
	"github.com/rs/zerolog"
)

// DefaultPixel is the color the single-pixel demo shows.
var DefaultPixel = model.RGB(20, 10, 30)

// Pixel shows one fixed color on the first LED and then idles.
type Pixel struct {
	strip Display
	color model.Color
	log   zerolog.Logger
}

func NewPixel(strip Display, c model.Color, log zerolog.Logger) *Pixel {
	return &Pixel{strip: strip, color: c, log: log}
}

func (p *Pixel) Start(context.Context) error {
	if err := showFirst(p.strip, p.color); err != nil {
		return err
	}
	p.log.Info().Stringer("color", p.color).Msg("pixel set")
	return nil
}

func (p *Pixel) Handle(context.Context, dispatch.Event) error { return nil }

func (p *Pixel) Stop() error {
	return p.strip.Show(p.strip.Frame())
}
