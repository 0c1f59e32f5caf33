package led

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
)

// SPIEmitter drives the strip through periph's nrzled over a SPI port. The
// pin identity passed to Emit is only used for error messages; the data line
// is the port's MOSI.
//
// nrzled runs the port at 2.5MHz, three SPI bits per data bit, so the strip
// always sees the 800kHz WS2812 rate. It also sends each pixel as G,R,B;
// Emit pre-swaps so the wire carries the frame's R,G,B unchanged.
type SPIEmitter struct {
	port   spi.Port
	dev    *nrzled.Dev
	pixels int
}

// OpenSPIEmitter opens the named SPI port ("" picks the first one).
func OpenSPIEmitter(name string, pixels int) (*SPIEmitter, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("led: open spi %q: %w", name, err)
	}
	e, err := NewSPIEmitter(p, pixels)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return e, nil
}

// SPIPortFreq is the only port speed nrzled accepts.
const SPIPortFreq = 2500 * physic.KiloHertz

func NewSPIEmitter(p spi.Port, pixels int) (*SPIEmitter, error) {
	opts := nrzled.Opts{
		NumPixels: pixels,
		Channels:  3,
		Freq:      SPIPortFreq,
	}
	d, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		return nil, fmt.Errorf("led: nrzled: %w", err)
	}
	return &SPIEmitter{port: p, dev: d, pixels: pixels}, nil
}

func (s *SPIEmitter) String() string {
	return s.dev.String()
}

func (s *SPIEmitter) Emit(pin string, b []byte) error {
	if len(b)%3 != 0 || len(b) > 3*s.pixels {
		return fmt.Errorf("led: %d bytes do not fit %d pixels on %s", len(b), s.pixels, pin)
	}
	grb := make([]byte, len(b))
	for i := 0; i < len(b); i += 3 {
		grb[i], grb[i+1], grb[i+2] = b[i+1], b[i], b[i+2]
	}
	if _, err := s.dev.Write(grb); err != nil {
		return err
	}
	return nil
}

func (s *SPIEmitter) Close() error {
	err := s.dev.Halt()
	if c, ok := s.port.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
