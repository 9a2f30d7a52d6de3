package recorder

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCapturer counts starts/stops and serves a constant meter level.
type fakeCapturer struct {
	mu       sync.Mutex
	starts   int
	stops    int
	startErr error
}

func (f *fakeCapturer) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return f.startErr
}

func (f *fakeCapturer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeCapturer) Meter() float64 { return -20 }

func (f *fakeCapturer) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.TickInterval = time.Millisecond
	cfg.PollInterval = time.Millisecond
	return cfg
}

func TestDriverFullSendCycle(t *testing.T) {
	fake := &fakeCapturer{}
	var emitted []Recording
	var mu sync.Mutex

	d := NewDriver(fastConfig(), fake, func(r Recording) {
		mu.Lock()
		emitted = append(emitted, r)
		mu.Unlock()
	})

	d.Dispatch(PressIn{})
	d.Dispatch(Permission{Granted: true})
	require.True(t, d.TimersRunning())

	// Let the real timers accumulate past the minimum duration.
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.m.Duration() >= DefaultConfig().MinDuration
	}, 5*time.Second, 5*time.Millisecond)

	d.Dispatch(Release{})

	assert.False(t, d.TimersRunning(), "timers must be released on send")
	phase, outcome := d.Snapshot()
	assert.Equal(t, PhaseIdle, phase)
	assert.Equal(t, OutcomeSent, outcome)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, emitted, 1)
	assert.GreaterOrEqual(t, emitted[0].Duration, DefaultConfig().MinDuration)

	starts, stops := fake.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)
}

func TestDriverCaptureStartFailureResets(t *testing.T) {
	fake := &fakeCapturer{startErr: errors.New("mic busy")}
	d := NewDriver(fastConfig(), fake, nil)

	d.Dispatch(PressIn{})
	d.Dispatch(Permission{Granted: true})

	phase, _ := d.Snapshot()
	assert.Equal(t, PhaseIdle, phase)
	assert.False(t, d.TimersRunning())
	assert.Error(t, d.Err())
}

func TestDriverPreviewPlaybackAdvances(t *testing.T) {
	fake := &fakeCapturer{}
	d := NewDriver(fastConfig(), fake, nil)

	d.Dispatch(PressIn{})
	d.Dispatch(Permission{Granted: true})
	d.Dispatch(Move{DX: 0, DY: -100})

	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.m.Duration() >= DefaultConfig().MinDuration
	}, 5*time.Second, 5*time.Millisecond)

	d.Dispatch(StopTapped{})
	phase, _ := d.Snapshot()
	require.Equal(t, PhasePreview, phase)
	require.False(t, d.TimersRunning())

	d.Dispatch(PlayTapped{})
	require.True(t, d.PlayTickerRunning())

	// The playback clock moves the position without any manual ticks.
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.m.Position() > 0
	}, 5*time.Second, 5*time.Millisecond)

	d.Dispatch(PauseTapped{})
	assert.False(t, d.PlayTickerRunning())

	// Reaching the end of the take releases the clock by itself.
	d.Dispatch(PlayTapped{})
	require.Eventually(t, func() bool {
		return !d.PlayTickerRunning()
	}, 5*time.Second, 5*time.Millisecond)

	d.mu.Lock()
	pos, elapsed := d.m.Position(), d.m.Duration()
	d.mu.Unlock()
	assert.Equal(t, elapsed, pos)
}

func TestDriverCloseStopsPlayback(t *testing.T) {
	fake := &fakeCapturer{}
	d := NewDriver(fastConfig(), fake, nil)

	d.Dispatch(PressIn{})
	d.Dispatch(Permission{Granted: true})
	d.Dispatch(Move{DX: 0, DY: -100})

	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.m.Duration() >= DefaultConfig().MinDuration
	}, 5*time.Second, 5*time.Millisecond)

	d.Dispatch(StopTapped{})
	d.Dispatch(PlayTapped{})
	require.True(t, d.PlayTickerRunning())

	d.Close()

	assert.False(t, d.PlayTickerRunning())
	assert.False(t, d.TimersRunning())
}

func TestDriverCloseReleasesTimers(t *testing.T) {
	fake := &fakeCapturer{}
	d := NewDriver(fastConfig(), fake, nil)

	d.Dispatch(PressIn{})
	d.Dispatch(Permission{Granted: true})
	require.True(t, d.TimersRunning())

	d.Close()

	assert.False(t, d.TimersRunning())
	phase, _ := d.Snapshot()
	assert.Equal(t, PhaseIdle, phase)
}
