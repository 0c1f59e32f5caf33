package pins

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func fakeBoard(ps ...*gpiotest.Pin) Lookup {
	m := map[string]gpio.PinIO{}
	for _, p := range ps {
		m[p.N] = p
	}
	return func(name string) gpio.PinIO {
		if p, ok := m[name]; ok {
			return p
		}
		return nil
	}
}

func TestConfigureOutputStartsLow(t *testing.T) {
	led := &gpiotest.Pin{N: "GPIO2", Num: 2, L: gpio.High}
	r := NewRegistry(fakeBoard(led), zerolog.Nop())

	require.NoError(t, r.Configure("GPIO2", Output))
	assert.Equal(t, gpio.Low, led.Read())
	assert.Equal(t, Output, r.Mode("GPIO2"))

	require.NoError(t, r.Write("GPIO2", true))
	assert.Equal(t, gpio.High, led.Read())
	on, err := r.Read("GPIO2")
	require.NoError(t, err)
	assert.True(t, on)
}

func TestConfigureInputPulls(t *testing.T) {
	down := &gpiotest.Pin{N: "GPIO0", L: gpio.High}
	up := &gpiotest.Pin{N: "GPIO1"}
	r := NewRegistry(fakeBoard(down, up), zerolog.Nop())

	require.NoError(t, r.Configure("GPIO0", InputPullDown))
	require.NoError(t, r.Configure("GPIO1", InputPullUp))
	assert.Equal(t, gpio.PullDown, down.Pull())
	assert.Equal(t, gpio.Low, down.Read())
	assert.Equal(t, gpio.PullUp, up.Pull())
	assert.Equal(t, gpio.High, up.Read())

	_, err := r.Input("GPIO0")
	assert.NoError(t, err)
	_, err = r.Output("GPIO0")
	assert.ErrorIs(t, err, ErrNotOutput)
}

func TestConfigErrors(t *testing.T) {
	r := NewRegistry(fakeBoard(&gpiotest.Pin{N: "GPIO2"}), zerolog.Nop())

	err := r.Configure("GPIO99", Output)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "GPIO99", ce.Pin)
	assert.ErrorIs(t, err, ErrUnknownPin)

	require.NoError(t, r.Configure("GPIO2", Output))
	err = r.Configure("GPIO2", InputPullDown)
	assert.ErrorIs(t, err, ErrClaimed)
	assert.Contains(t, err.Error(), "GPIO2")

	require.NoError(t, r.Release("GPIO2"))
	assert.NoError(t, r.Configure("GPIO2", InputPullDown))

	assert.ErrorIs(t, r.Configure("GPIO2", Mode(42)), ErrClaimed)
}

func TestBadModeIsNotClaimed(t *testing.T) {
	r := NewRegistry(fakeBoard(&gpiotest.Pin{N: "GPIO5"}), zerolog.Nop())
	assert.ErrorIs(t, r.Configure("GPIO5", Unconfigured), ErrBadMode)
	assert.NoError(t, r.Configure("GPIO5", Output))
}

func TestWriteRequiresOutput(t *testing.T) {
	r := NewRegistry(fakeBoard(&gpiotest.Pin{N: "GPIO0"}), zerolog.Nop())
	assert.ErrorIs(t, r.Write("GPIO0", true), ErrNotOutput)

	require.NoError(t, r.Configure("GPIO0", InputPullDown))
	assert.ErrorIs(t, r.Write("GPIO0", true), ErrNotOutput)

	_, err := r.Read("nope")
	assert.ErrorIs(t, err, ErrUnknownPin)
}

func TestCloseReleasesAll(t *testing.T) {
	r := NewRegistry(fakeBoard(&gpiotest.Pin{N: "A"}, &gpiotest.Pin{N: "B"}), zerolog.Nop())
	require.NoError(t, r.Configure("A", Output))
	require.NoError(t, r.Configure("B", InputPullUp))
	require.NoError(t, r.Close())
	assert.Equal(t, Unconfigured, r.Mode("A"))
	assert.NoError(t, r.Configure("A", Output))
}

func TestDefaultLookupUsesGpioreg(t *testing.T) {
	p := &gpiotest.Pin{N: "PINS_TEST_LED", Num: -1}
	require.NoError(t, gpioreg.Register(p))
	defer func() { _ = gpioreg.Unregister(p.N) }()

	r := NewRegistry(nil, zerolog.Nop())
	require.NoError(t, r.Configure("PINS_TEST_LED", Output))
	assert.ErrorIs(t, r.Configure("PINS_TEST_MISSING", Output), ErrUnknownPin)
}

func TestParseMode(t *testing.T) {
	for s, want := range map[string]Mode{
		"output":         Output,
		"input_pulldown": InputPullDown,
		"pulldown":       InputPullDown,
		"input_pullup":   InputPullUp,
	} {
		got, err := ParseMode(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got)
		if s != "pulldown" {
			assert.Equal(t, s, got.String())
		}
	}
	_, err := ParseMode("analog")
	assert.Error(t, err)
}
