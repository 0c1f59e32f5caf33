package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coreman2200/funtimes-glimmer/internal/dispatch"
	"github.com/coreman2200/funtimes-glimmer/internal/led"
	"github.com/coreman2200/funtimes-glimmer/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type levels struct {
	writes []bool
	err    error
}

func (l *levels) Write(pin string, level bool) error {
	if l.err != nil {
		return l.err
	}
	l.writes = append(l.writes, level)
	return nil
}

func newStrip(n int) (*led.Strip, *led.Recorder) {
	rec := &led.Recorder{}
	return led.NewStrip(led.NewWriter(rec, zerolog.Nop()), "D12", n), rec
}

var (
	tick    = dispatch.Event{Kind: dispatch.TimerTick}
	press   = dispatch.Event{Kind: dispatch.ButtonEdge, Source: "D0", Level: true}
	release = dispatch.Event{Kind: dispatch.ButtonEdge, Source: "D0", Level: false}
)

func TestBlinkerToggles(t *testing.T) {
	ctx := context.Background()
	out := &levels{}
	b := NewBlinker(out, "GPIO2", zerolog.Nop())

	require.NoError(t, b.Start(ctx))
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Handle(ctx, tick))
	}
	require.NoError(t, b.Handle(ctx, press), "button events are not for the blinker")
	assert.Equal(t, []bool{false, true, false, true, false}, out.writes)
	assert.False(t, b.On())

	require.NoError(t, b.Handle(ctx, tick))
	assert.True(t, b.On())
	require.NoError(t, b.Stop())
	assert.False(t, out.writes[len(out.writes)-1])
}

func TestBlinkerWriteError(t *testing.T) {
	b := NewBlinker(&levels{err: errors.New("not output")}, "GPIO2", zerolog.Nop())
	assert.Error(t, b.Handle(context.Background(), tick))
}

func TestPixelShowsColorOnFirstLed(t *testing.T) {
	strip, rec := newStrip(1)
	p := NewPixel(strip, DefaultPixel, zerolog.Nop())
	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Handle(context.Background(), press))

	b := rec.Bursts()
	require.Len(t, b, 1)
	assert.Equal(t, []byte{20, 10, 30}, b[0].Bytes)

	require.NoError(t, p.Stop())
	last, _ := rec.Last()
	assert.Equal(t, []byte{0, 0, 0}, last.Bytes)
}

func TestPixelOnLongerStrip(t *testing.T) {
	strip, rec := newStrip(3)
	require.NoError(t, NewPixel(strip, model.RGB(1, 2, 3), zerolog.Nop()).Start(context.Background()))
	last, _ := rec.Last()
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0, 0}, last.Bytes)
}

func TestPixelOnEmptyStrip(t *testing.T) {
	strip, rec := newStrip(0)
	require.NoError(t, NewPixel(strip, DefaultPixel, zerolog.Nop()).Start(context.Background()))
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Empty(t, last.Bytes)
}

func TestButtonLoggerCounts(t *testing.T) {
	ctx := context.Background()
	b := NewButtonLogger(zerolog.Nop())
	require.NoError(t, b.Start(ctx))
	for _, ev := range []dispatch.Event{press, release, press, tick, release, press} {
		require.NoError(t, b.Handle(ctx, ev))
	}
	p, r := b.Counts()
	assert.Equal(t, 3, p)
	assert.Equal(t, 2, r)
	assert.NoError(t, b.Stop())
}

func TestCyclerWrapsThroughPalette(t *testing.T) {
	ctx := context.Background()
	strip, rec := newStrip(1)
	c, err := NewCycler(strip, DefaultPalette, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, c.Start(ctx))
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Handle(ctx, press))
		require.NoError(t, c.Handle(ctx, release), "releases do not advance")
	}
	require.NoError(t, c.Handle(ctx, dispatch.Event{Kind: dispatch.TimerTick, Level: true}))

	var got [][]byte
	for _, b := range rec.Bursts() {
		got = append(got, b.Bytes)
	}
	assert.Equal(t, [][]byte{
		{25, 0, 0},
		{0, 25, 0},
		{0, 0, 25},
		{25, 25, 25},
		{25, 0, 0},
		{0, 25, 0},
	}, got)
	assert.Equal(t, 1, c.Index())

	require.NoError(t, c.Stop())
	last, _ := rec.Last()
	assert.Equal(t, []byte{0, 0, 0}, last.Bytes)
}

func TestCyclerRejectsEmptyPalette(t *testing.T) {
	strip, _ := newStrip(1)
	_, err := NewCycler(strip, nil, zerolog.Nop())
	assert.ErrorIs(t, err, ErrEmptyPalette)
}

func TestCyclerSurfacesWriteError(t *testing.T) {
	rec := &led.Recorder{Err: errors.New("pin not output")}
	strip := led.NewStrip(led.NewWriter(rec, zerolog.Nop()), "D12", 1)
	c, err := NewCycler(strip, DefaultPalette, zerolog.Nop())
	require.NoError(t, err)

	var we *led.WriteError
	assert.ErrorAs(t, c.Start(context.Background()), &we)
}

func TestControllersDriveFromLoop(t *testing.T) {
	strip, rec := newStrip(1)
	c, err := NewCycler(strip, DefaultPalette, zerolog.Nop())
	require.NoError(t, err)

	l := dispatch.NewLoop(0, zerolog.Nop())
	l.Subscribe(dispatch.ButtonEdge, "cycle", c)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	require.NoError(t, c.Start(ctx))
	go func() { done <- l.Run(ctx) }()

	l.Post(press)
	l.Post(release)
	l.Post(press)

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.Bursts()) < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	require.NoError(t, <-done)

	last, _ := rec.Last()
	assert.Equal(t, []byte{0, 0, 25}, last.Bytes)
}

var _ Controller = (*Blinker)(nil)
var _ Controller = (*Pixel)(nil)
var _ Controller = (*ButtonLogger)(nil)
var _ Controller = (*Cycler)(nil)
