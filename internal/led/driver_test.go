package led

import (
	"errors"
	"testing"

	"github.com/coreman2200/funtimes-glimmer/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteScenarios(t *testing.T) {
	tests := []struct {
		name  string
		frame model.Frame
		want  []byte
	}{
		{"single red", model.FrameOf(model.RGB(25, 0, 0)), []byte{25, 0, 0}},
		{"green then blue", model.FrameOf(model.RGB(0, 25, 0), model.RGB(0, 0, 25)), []byte{0, 25, 0, 0, 0, 25}},
		{"empty", model.NewFrame(0), []byte{}},
		{"clamped", model.FrameOf(model.Clamp(300, -4, 128)), []byte{255, 0, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			w := NewWriter(rec, zerolog.Nop())
			require.NoError(t, w.Write("D12", tt.frame))

			bursts := rec.Bursts()
			require.Len(t, bursts, 1, "one uninterrupted burst per write")
			assert.Equal(t, "D12", bursts[0].Pin)
			assert.Equal(t, tt.want, bursts[0].Bytes)
			assert.Len(t, bursts[0].Bytes, 3*tt.frame.Len())
		})
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	rec := &Recorder{}
	w := NewWriter(rec, zerolog.Nop())
	f := model.FrameOf(model.RGB(20, 10, 30), model.RGB(1, 2, 3), model.RGB(255, 0, 255))

	require.NoError(t, w.Write("D12", f))
	require.NoError(t, w.Write("D12", f))

	b := rec.Bursts()
	require.Len(t, b, 2)
	assert.Equal(t, b[0].Bytes, b[1].Bytes)
	assert.Equal(t, []byte{20, 10, 30, 1, 2, 3, 255, 0, 255}, b[1].Bytes)
}

func TestWriteError(t *testing.T) {
	boom := errors.New("no such pin")
	w := NewWriter(&Recorder{Err: boom}, zerolog.Nop())

	err := w.Write("D99", model.FrameOf(model.RGB(1, 1, 1)))
	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "D99", we.Pin)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "D99")
}

func TestStripRejectsMismatchedFrame(t *testing.T) {
	rec := &Recorder{}
	s := NewStrip(NewWriter(rec, zerolog.Nop()), "D12", 2)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "D12", s.Pin())

	assert.ErrorIs(t, s.Show(model.NewFrame(1)), ErrFrameLength)
	assert.ErrorIs(t, s.Show(model.NewFrame(3)), ErrFrameLength)
	assert.Empty(t, rec.Bursts(), "nothing is transmitted for a caller error")

	f := s.Frame()
	require.NoError(t, f.Set(1, model.RGB(9, 8, 7)))
	require.NoError(t, s.Show(f))
	require.NoError(t, s.Clear())

	b := rec.Bursts()
	require.Len(t, b, 2)
	assert.Equal(t, []byte{0, 0, 0, 9, 8, 7}, b[0].Bytes)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, b[1].Bytes)
}

func TestRecorderClosed(t *testing.T) {
	rec := &Recorder{}
	_, ok := rec.Last()
	assert.False(t, ok)
	require.NoError(t, rec.Emit("p", []byte{1, 2, 3}))
	last, ok := rec.Last()
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, last.Bytes)

	require.NoError(t, rec.Close())
	assert.Error(t, rec.Emit("p", nil))
}
