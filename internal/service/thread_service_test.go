package service

import (
	"strings"
	"testing"

	"github.com/edudash/edudash-backend/internal/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWaveform(t *testing.T) {
	svc := &ThreadService{recCfg: recorder.DefaultConfig()}

	// 96 meter samples at -30 dBFS sit exactly halfway between the meter
	// floor (-60) and ceiling (0).
	samples := make([]float64, 96)
	for i := range samples {
		samples[i] = -30
	}

	bars := svc.buildWaveform(samples)
	require.Len(t, bars, svc.recCfg.WaveformLen)
	for _, b := range bars {
		assert.InDelta(t, 0.5, b, 1e-9)
	}
}

func TestBuildWaveformClampsOutOfRange(t *testing.T) {
	svc := &ThreadService{recCfg: recorder.DefaultConfig()}

	bars := svc.buildWaveform([]float64{-120, 6})
	require.Len(t, bars, svc.recCfg.WaveformLen)
	assert.Equal(t, 0.0, bars[0])
	assert.Equal(t, 1.0, bars[len(bars)-1])
}

func TestBuildWaveformShortClip(t *testing.T) {
	svc := &ThreadService{recCfg: recorder.DefaultConfig()}

	// Fewer samples than bars: the waveform still comes out at the
	// configured length so clients can render a fixed-width strip.
	bars := svc.buildWaveform([]float64{-10, -20, -30})
	assert.Len(t, bars, svc.recCfg.WaveformLen)
}

func TestTruncatePreview(t *testing.T) {
	assert.Equal(t, "short message", truncatePreview("short message", 120))

	long := strings.Repeat("a", 200)
	got := truncatePreview(long, 120)
	runes := []rune(got)
	assert.Len(t, runes, 120)
	assert.Equal(t, '…', runes[len(runes)-1])

	// Multi-byte content truncates on rune boundaries, not bytes.
	emoji := strings.Repeat("привет ", 30)
	got = truncatePreview(emoji, 50)
	assert.Len(t, []rune(got), 50)
}
