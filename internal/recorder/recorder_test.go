package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	return New(DefaultConfig())
}

// press drives the machine from Idle into Recording.
func press(t *testing.T, m *Machine) {
	t.Helper()
	effects := m.Apply(PressIn{})
	require.Equal(t, []Effect{EffectRequestPermission}, effects)
	effects = m.Apply(Permission{Granted: true})
	require.Equal(t, []Effect{EffectStartCapture, EffectStartTimers}, effects)
	require.Equal(t, PhaseRecording, m.Phase())
}

func tick(m *Machine, d time.Duration) {
	m.Apply(Tick{Delta: d})
}

func TestPermissionDeniedStaysIdle(t *testing.T) {
	m := newTestMachine(t)
	m.Apply(PressIn{})
	effects := m.Apply(Permission{Granted: false})

	assert.Empty(t, effects)
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.False(t, m.TimersHeld())
}

func TestReleaseBeforeMinDurationIsCancelled(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, 200*time.Millisecond)

	effects := m.Apply(Release{})

	assert.Equal(t, []Effect{EffectStopCapture, EffectStopTimers}, effects)
	assert.Equal(t, OutcomeCancelledTooShort, m.Outcome())
	assert.Equal(t, PhaseIdle, m.Phase())
	_, ok := m.Take()
	assert.False(t, ok, "too-short take must not be emitted")
}

func TestReleaseAfterMinDurationSends(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, 2*time.Second)

	effects := m.Apply(Release{})

	assert.Equal(t, []Effect{EffectStopCapture, EffectStopTimers, EffectEmit}, effects)
	assert.Equal(t, OutcomeSent, m.Outcome())

	rec, ok := m.Take()
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, rec.Duration)
	assert.Len(t, rec.Waveform, DefaultConfig().WaveformLen)
}

func TestDragLeftPastThresholdCancels(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, 2*time.Second)
	m.Apply(Move{DX: -120, DY: 0}) // threshold is 80

	effects := m.Apply(Release{})

	assert.Equal(t, []Effect{EffectStopCapture, EffectStopTimers}, effects)
	assert.Equal(t, OutcomeCancelled, m.Outcome())
	_, ok := m.Take()
	assert.False(t, ok)
}

func TestCancelLatchBeatsVerticalMovement(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, time.Second)

	// Cross cancel first, then drag far past the lock threshold.
	m.Apply(Move{DX: -90, DY: 0})
	m.Apply(Move{DX: -90, DY: -200})

	assert.Equal(t, PhaseRecording, m.Phase(), "cancel latch must block locking")

	m.Apply(Release{})
	assert.Equal(t, OutcomeCancelled, m.Outcome())
}

func TestDragUpLocksExactlyOnce(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, time.Second)

	m.Apply(Move{DX: 0, DY: -70}) // threshold is 60
	require.Equal(t, PhaseLocked, m.Phase())

	// Gesture input is disengaged after locking.
	m.Apply(Move{DX: -500, DY: 0})
	m.Apply(Release{})
	assert.Equal(t, PhaseLocked, m.Phase())

	// Recording continues hands-free: timers still held, ticks still count.
	assert.True(t, m.TimersHeld())
	tick(m, time.Second)
	assert.Equal(t, 2*time.Second, m.Duration())
}

func TestLockedStopOpensPreviewThenSend(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, time.Second)
	m.Apply(Move{DX: 0, DY: -70})
	tick(m, 500*time.Millisecond)

	effects := m.Apply(StopTapped{})
	assert.Equal(t, []Effect{EffectStopCapture, EffectStopTimers}, effects)
	require.Equal(t, PhasePreview, m.Phase())

	effects = m.Apply(SendTapped{})
	assert.Equal(t, []Effect{EffectEmit}, effects)
	assert.Equal(t, OutcomeSent, m.Outcome())

	rec, ok := m.Take()
	require.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, rec.Duration)
}

func TestLockedDiscardEmitsNothing(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, time.Second)
	m.Apply(Move{DX: 0, DY: -70})

	effects := m.Apply(DiscardTapped{})

	assert.Equal(t, []Effect{EffectStopCapture, EffectStopTimers}, effects)
	assert.Equal(t, OutcomeDiscarded, m.Outcome())
	assert.Equal(t, PhaseIdle, m.Phase())
	_, ok := m.Take()
	assert.False(t, ok)
}

func TestLockedStopUnderMinDurationCancels(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, 300*time.Millisecond)
	m.Apply(Move{DX: 0, DY: -70})

	m.Apply(StopTapped{})

	assert.Equal(t, OutcomeCancelledTooShort, m.Outcome())
	assert.Equal(t, PhaseIdle, m.Phase())
}

func TestPreviewPlaybackAndSeek(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, 4*time.Second)
	m.Apply(Move{DX: 0, DY: -70})
	m.Apply(StopTapped{})
	require.Equal(t, PhasePreview, m.Phase())

	effects := m.Apply(PlayTapped{})
	assert.Equal(t, []Effect{EffectStartPlayTicker}, effects)
	assert.True(t, m.Playing())

	// A second tap while playing is a no-op, not a second ticker.
	assert.Empty(t, m.Apply(PlayTapped{}))

	tick(m, time.Second)
	assert.Equal(t, time.Second, m.Position())

	m.Apply(Seek{Fraction: 0.5})
	assert.Equal(t, 2*time.Second, m.Position())

	effects = m.Apply(PauseTapped{})
	assert.Equal(t, []Effect{EffectStopPlayTicker}, effects)
	assert.False(t, m.Playing())
	assert.Empty(t, m.Apply(PauseTapped{}))

	// Playback stops at the end of the take and releases its clock.
	m.Apply(PlayTapped{})
	effects = m.Apply(Tick{Delta: 10 * time.Second})
	assert.Equal(t, []Effect{EffectStopPlayTicker}, effects)
	assert.Equal(t, 4*time.Second, m.Position())
	assert.False(t, m.Playing())

	// Replaying after hitting the end restarts from the top.
	m.Apply(PlayTapped{})
	assert.Equal(t, time.Duration(0), m.Position())
	assert.True(t, m.Playing())
}

func TestPreviewExitStopsPlayback(t *testing.T) {
	openPreview := func() *Machine {
		m := newTestMachine(t)
		press(t, m)
		tick(m, 4*time.Second)
		m.Apply(Move{DX: 0, DY: -70})
		m.Apply(StopTapped{})
		require.Equal(t, PhasePreview, m.Phase())
		m.Apply(PlayTapped{})
		require.True(t, m.Playing())
		return m
	}

	m := openPreview()
	effects := m.Apply(SendTapped{})
	assert.Equal(t, []Effect{EffectStopPlayTicker, EffectEmit}, effects)
	assert.False(t, m.Playing())

	m = openPreview()
	effects = m.Apply(DiscardTapped{})
	assert.Equal(t, []Effect{EffectStopPlayTicker}, effects)
	assert.False(t, m.Playing())
	assert.Equal(t, OutcomeDiscarded, m.Outcome())
}

func TestFailDuringRecordingResetsToIdle(t *testing.T) {
	m := newTestMachine(t)
	press(t, m)
	tick(m, time.Second)

	effects := m.Apply(Fail{})

	assert.Contains(t, effects, EffectStopTimers)
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.False(t, m.TimersHeld())
}

// Every Recording entry must pair with exactly one timer release on every
// exit transition, verified across 100 start/stop cycles of mixed outcomes.
func TestNoTimerLeaksAcross100Cycles(t *testing.T) {
	m := newTestMachine(t)
	starts, stops := 0, 0

	count := func(effects []Effect) {
		for _, e := range effects {
			switch e {
			case EffectStartTimers:
				starts++
			case EffectStopTimers:
				stops++
			}
		}
	}

	for i := 0; i < 100; i++ {
		count(m.Apply(PressIn{}))
		count(m.Apply(Permission{Granted: true}))
		count(m.Apply(Tick{Delta: time.Second}))

		switch i % 5 {
		case 0: // plain send
			count(m.Apply(Release{}))
		case 1: // slide to cancel
			count(m.Apply(Move{DX: -200, DY: 0}))
			count(m.Apply(Release{}))
		case 2: // lock then discard
			count(m.Apply(Move{DX: 0, DY: -100}))
			count(m.Apply(DiscardTapped{}))
		case 3: // lock, preview, send
			count(m.Apply(Move{DX: 0, DY: -100}))
			count(m.Apply(StopTapped{}))
			count(m.Apply(SendTapped{}))
		case 4: // capture failure
			count(m.Apply(Fail{}))
		}

		require.Equal(t, PhaseIdle, m.Phase(), "cycle %d must end Idle", i)
		require.False(t, m.TimersHeld(), "cycle %d leaked timers", i)
		m.Take() // drain any emission
	}

	assert.Equal(t, 100, starts)
	assert.Equal(t, 100, stops)
}

// For all gesture traces, a release before the minimum duration yields a
// cancelled outcome, including traces that crossed the lock threshold late.
func TestShortTakesAlwaysCancelled(t *testing.T) {
	traces := [][]Event{
		{Release{}},
		{Move{DX: -10, DY: -10}, Release{}},
		{Move{DX: 30, DY: 0}, Move{DX: 10, DY: -20}, Release{}},
	}

	for _, trace := range traces {
		m := newTestMachine(t)
		press(t, m)
		tick(m, 100*time.Millisecond)
		for _, ev := range trace {
			m.Apply(ev)
		}
		assert.Equal(t, OutcomeCancelledTooShort, m.Outcome())
		_, ok := m.Take()
		assert.False(t, ok)
	}
}
