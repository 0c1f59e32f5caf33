package model

import (
	"errors"
	"fmt"
	"image"
)

var ErrIndex = errors.New("model: led index out of range")

// Frame is the complete, ordered set of LED colors for one display update.
// Index 0 is the first LED in the physical chain. The length is fixed when
// the frame is created.
type Frame struct {
	pixels []Color
}

// NewFrame returns an all-off frame of n LEDs. Negative n yields an empty
// frame.
func NewFrame(n int) Frame {
	if n < 0 {
		n = 0
	}
	return Frame{pixels: make([]Color, n)}
}

// FrameOf builds a frame holding exactly the given colors, in order.
func FrameOf(cs ...Color) Frame {
	f := NewFrame(len(cs))
	copy(f.pixels, cs)
	return f
}

func (f Frame) Len() int {
	return len(f.pixels)
}

func (f Frame) At(i int) Color {
	return f.pixels[i]
}

func (f Frame) Set(i int, c Color) error {
	if i < 0 || i >= len(f.pixels) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndex, i, len(f.pixels))
	}
	f.pixels[i] = c
	return nil
}

func (f Frame) Fill(c Color) {
	for i := range f.pixels {
		f.pixels[i] = c
	}
}

// Clone returns a frame with its own backing storage.
func (f Frame) Clone() Frame {
	return FrameOf(f.pixels...)
}

// Serialize lays the frame out as 3*Len() bytes, R,G,B per LED, LED 0
// first.
func (f Frame) Serialize() []byte {
	buf := make([]byte, 0, 3*len(f.pixels))
	for _, c := range f.pixels {
		buf = append(buf, c.R(), c.G(), c.B())
	}
	return buf
}

// Image renders the frame as a Len() x 1 strip.
func (f Frame) Image() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, len(f.pixels), 1))
	for x := 0; x < im.Rect.Max.X; x++ {
		im.SetNRGBA(x, 0, f.pixels[x].NRGBA())
	}
	return im
}
