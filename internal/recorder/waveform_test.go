package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveformFixedLengthRolling(t *testing.T) {
	w := NewWaveform(4)
	require.Equal(t, []float64{0, 0, 0, 0}, w.Bars())

	w.Push(0.1)
	w.Push(0.2)
	assert.Equal(t, []float64{0, 0, 0.1, 0.2}, w.Bars())
	assert.Equal(t, 4, w.Len())

	// Pushing past capacity drops exactly one oldest sample per push.
	w.Push(0.3)
	w.Push(0.4)
	w.Push(0.5)
	assert.Equal(t, []float64{0.2, 0.3, 0.4, 0.5}, w.Bars())
	assert.Equal(t, 4, w.Len())
}

func TestWaveformNonPositiveLength(t *testing.T) {
	for _, n := range []int{0, -3} {
		w := NewWaveform(n)
		require.Equal(t, 1, w.Len(), "n=%d", n)
		w.Push(0.4)
		assert.Equal(t, []float64{0.4}, w.Bars())
	}
}

func TestBarsReturnsCopy(t *testing.T) {
	w := NewWaveform(2)
	w.Push(0.5)
	bars := w.Bars()
	bars[0] = 99
	assert.Equal(t, []float64{0, 0.5}, w.Bars())
}

func TestNormalizeClampsToUnitRange(t *testing.T) {
	cases := []struct {
		db   float64
		want float64
	}{
		{-60, 0},
		{-90, 0},   // below floor clamps
		{0, 1},
		{12, 1},    // above ceiling clamps
		{-30, 0.5},
		{-15, 0.75},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Normalize(tc.db, -60, 0), 1e-9, "db=%v", tc.db)
	}
}

func TestNormalizeDegenerateRange(t *testing.T) {
	assert.Equal(t, 0.0, Normalize(-10, 0, 0))
	assert.Equal(t, 0.0, Normalize(-10, 10, -10))
}

func TestDownsampleExactLength(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(i) / 100
	}

	out := Downsample(samples, 48)
	assert.Len(t, out, 48)

	// Averages must be monotonically non-decreasing for a ramp input.
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], out[i-1])
	}
}

func TestDownsampleFewerSamplesThanBars(t *testing.T) {
	out := Downsample([]float64{0.25, 0.75}, 6)
	assert.Len(t, out, 6)

	out = Downsample(nil, 6)
	assert.Equal(t, make([]float64, 6), out)
}
