package led

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-glimmer/model"
	"github.com/rs/zerolog"
)

// Emitter abstracts a one-wire LED output sink.
type Emitter interface {
	// Emit transmits b on pin as one uninterrupted burst. len(b) is 3*N.
	Emit(pin string, b []byte) error
	// Close releases resources.
	Close() error
}

var ErrFrameLength = errors.New("led: frame length does not match strip")

// WriteError reports a frame that could not be transmitted. The strip's
// displayed state is unspecified afterwards.
type WriteError struct {
	Pin string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("led: write %s: %v", e.Pin, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer serializes frames and hands them to an Emitter. It keeps no state
// between writes.
type Writer struct {
	em  Emitter
	log zerolog.Logger
}

func NewWriter(em Emitter, log zerolog.Logger) *Writer {
	return &Writer{em: em, log: log}
}

// Write transmits frame on pin: exactly 3*frame.Len() bytes, R,G,B per LED,
// LED 0 first, in a single Emit call. It must not be called concurrently for
// the same pin.
func (w *Writer) Write(pin string, frame model.Frame) error {
	b := frame.Serialize()
	if err := w.em.Emit(pin, b); err != nil {
		return &WriteError{Pin: pin, Err: err}
	}
	w.log.Trace().Str("pin", pin).Int("leds", frame.Len()).Hex("bytes", b).Msg("frame written")
	return nil
}

// Strip binds a pin and a fixed LED count to a Writer.
type Strip struct {
	pin string
	n   int
	w   *Writer
}

func NewStrip(w *Writer, pin string, n int) *Strip {
	if n < 0 {
		n = 0
	}
	return &Strip{pin: pin, n: n, w: w}
}

func (s *Strip) Pin() string { return s.pin }
func (s *Strip) Len() int    { return s.n }

// Frame returns an all-off frame sized for this strip.
func (s *Strip) Frame() model.Frame {
	return model.NewFrame(s.n)
}

// Show writes f; a frame of the wrong length is a caller error and is never
// truncated or padded.
func (s *Strip) Show(f model.Frame) error {
	if f.Len() != s.n {
		return fmt.Errorf("%w: got %d, strip %s has %d", ErrFrameLength, f.Len(), s.pin, s.n)
	}
	return s.w.Write(s.pin, f)
}

// Clear turns every LED off.
func (s *Strip) Clear() error {
	return s.Show(s.Frame())
}
