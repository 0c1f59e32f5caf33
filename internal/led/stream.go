package led

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiostream"
	"periph.io/x/conn/v3/physic"
)

var errClosed = errors.New("led: emitter closed")

// DefaultBitRate is the WS2812 data rate.
const DefaultBitRate = 800 * physic.KiloHertz

// DefaultLatch is the low time that makes the strip latch a frame.
const DefaultLatch = 300 * time.Microsecond

// OutputPins hands out pins already claimed for output.
type OutputPins interface {
	Output(name string) (gpio.PinIO, error)
}

// StreamEmitter NRZ-encodes bytes itself and streams them on a GPIO pin that
// supports gpiostream.PinOut.
type StreamEmitter struct {
	pins    OutputPins
	bitRate physic.Frequency
	latch   time.Duration
	closed  bool
}

// NewStreamEmitter falls back to DefaultBitRate and DefaultLatch for zero
// values.
func NewStreamEmitter(p OutputPins, bitRate physic.Frequency, latch time.Duration) *StreamEmitter {
	if bitRate == 0 {
		bitRate = DefaultBitRate
	}
	if latch <= 0 {
		latch = DefaultLatch
	}
	return &StreamEmitter{pins: p, bitRate: bitRate, latch: latch}
}

func (s *StreamEmitter) Emit(pin string, b []byte) error {
	if s.closed {
		return errClosed
	}
	p, err := s.pins.Output(pin)
	if err != nil {
		return err
	}
	out, ok := streamer(p)
	if !ok {
		return fmt.Errorf("led: pin %s must implement gpiostream.PinOut", pin)
	}
	return out.StreamOut(Encode(b, s.bitRate, s.latch))
}

func (s *StreamEmitter) Close() error {
	s.closed = true
	return nil
}

func streamer(p gpio.PinIO) (gpiostream.PinOut, bool) {
	if out, ok := p.(gpiostream.PinOut); ok {
		return out, true
	}
	if r, ok := p.(gpio.RealPin); ok {
		out, ok := r.Real().(gpiostream.PinOut)
		return out, ok
	}
	return nil, false
}

// nrz expands each byte, MSB first, to 3 stream bits per data bit:
// 1 -> 110 (high longer), 0 -> 100 (high shorter). 8*3 = 24 bits = 3 bytes.
var nrz = func() (lut [256][3]byte) {
	for v := 0; v < 256; v++ {
		out := uint32(0)
		for i := 7; i >= 0; i-- {
			var tri uint32 = 0b100
			if (v>>i)&1 == 1 {
				tri = 0b110
			}
			out = (out << 3) | tri
		}
		lut[v][0] = byte(out >> 16)
		lut[v][1] = byte(out >> 8)
		lut[v][2] = byte(out)
	}
	return lut
}()

// Encode builds the MSB-first bit stream for b at 3x bitRate, followed by
// enough zero bytes to hold the line low for latch.
func Encode(b []byte, bitRate physic.Frequency, latch time.Duration) *gpiostream.BitStream {
	freq := 3 * bitRate
	tail := latchBytes(freq, latch)
	bits := make([]byte, 3*len(b)+tail)
	for i, v := range b {
		copy(bits[3*i:3*i+3], nrz[v][:])
	}
	return &gpiostream.BitStream{Bits: bits, Freq: freq, LSBF: false}
}

func latchBytes(freq physic.Frequency, latch time.Duration) int {
	period := freq.Period()
	if period <= 0 {
		return 0
	}
	bitsLow := (latch + period - 1) / period
	return int((bitsLow + 7) / 8)
}

// Decode reverses Encode's NRZ expansion for the first n data bytes.
func Decode(s *gpiostream.BitStream, n int) ([]byte, error) {
	if len(s.Bits) < 3*n {
		return nil, fmt.Errorf("led: stream holds %d bytes, need %d", len(s.Bits), 3*n)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		word := uint32(s.Bits[3*i])<<16 | uint32(s.Bits[3*i+1])<<8 | uint32(s.Bits[3*i+2])
		var v byte
		for j := 7; j >= 0; j-- {
			switch (word >> (3 * uint(j))) & 0b111 {
			case 0b110:
				v = v<<1 | 1
			case 0b100:
				v = v << 1
			default:
				return nil, fmt.Errorf("led: byte %d: invalid symbol", i)
			}
		}
		out[i] = v
	}
	return out, nil
}
