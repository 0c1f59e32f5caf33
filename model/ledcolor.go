package model

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// ChannelMax is the largest intensity a single channel can carry.
const ChannelMax = 0xFF

var ErrChannelRange = errors.New("model: color channel out of range [0,255]")

// Color is a packed 0xRRGGBB intensity triple. There is no alpha and no
// gamma correction; what is stored is what goes on the wire.
type Color uint32

// RGB builds a Color from channels that are already 8 bits wide.
func RGB(r, g, b uint8) Color {
	var c Color
	c.SetR(r)
	c.SetG(g)
	c.SetB(b)
	return c
}

// NewColor rejects any channel outside [0,255].
func NewColor(r, g, b int) (Color, error) {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > ChannelMax {
			return 0, fmt.Errorf("%w: (%d,%d,%d)", ErrChannelRange, r, g, b)
		}
	}
	return RGB(uint8(r), uint8(g), uint8(b)), nil
}

// Clamp saturates each channel into [0,255].
func Clamp(r, g, b int) Color {
	return RGB(clamp(r), clamp(g), clamp(b))
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > ChannelMax:
		return ChannelMax
	}
	return uint8(v)
}

// ParseColor accepts "#rrggbb" or "r,g,b" (decimal, each in [0,255]).
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return 0, fmt.Errorf("model: bad hex color %q", s)
		}
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("model: bad hex color %q: %w", s, err)
		}
		return Color(v), nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, fmt.Errorf("model: color %q is neither #rrggbb nor r,g,b", s)
	}
	var ch [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("model: bad channel %q in %q: %w", p, s, err)
		}
		ch[i] = v
	}
	return NewColor(ch[0], ch[1], ch[2])
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

func (c *Color) SetR(r uint8) {
	*c = Color(setcolor(uint32(*c), r, RED_OFFSET))
}
func (c *Color) SetG(g uint8) {
	*c = Color(setcolor(uint32(*c), g, GREEN_OFFSET))
}
func (c *Color) SetB(b uint8) {
	*c = Color(setcolor(uint32(*c), b, BLUE_OFFSET))
}

func (c Color) R() uint8 {
	return getcolor(uint32(c), RED_OFFSET)
}
func (c Color) G() uint8 {
	return getcolor(uint32(c), GREEN_OFFSET)
}
func (c Color) B() uint8 {
	return getcolor(uint32(c), BLUE_OFFSET)
}

// NRGBA is the fully opaque equivalent, for display.Drawer sinks.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: 255}
}

// Serialize returns the channels in wire order: R, G, B.
func (c Color) Serialize() []byte {
	return []byte{c.R(), c.G(), c.B()}
}

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}
