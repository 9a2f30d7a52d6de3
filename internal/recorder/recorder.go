// Package recorder implements the voice-message recorder interaction as a
// state machine: press-and-hold to record, slide left to cancel, slide up to
// lock hands-free, preview with play/pause/seek after a locked stop.
//
// The machine is a pure reducer. Callers feed it Events and execute the
// returned Effects (start/stop audio capture, start/stop the duration and
// metering timers, emit the finished recording). Keeping side effects out of
// the reducer makes every gesture trace replayable in tests.
package recorder

import "time"

// Phase is the tagged state of the machine. Invalid flag combinations such
// as "locked but not recording" are unrepresentable.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseArming: press received, waiting on the microphone permission
	// prompt. Denial returns to Idle without any recording UI.
	PhaseArming
	PhaseRecording
	PhaseLocked
	PhasePreview
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseArming:
		return "arming"
	case PhaseRecording:
		return "recording"
	case PhaseLocked:
		return "locked"
	case PhasePreview:
		return "preview"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a completed gesture.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSent
	OutcomeCancelled
	// OutcomeCancelledTooShort discards the take like OutcomeCancelled but
	// lets callers distinguish the accidental-tap debounce from an explicit
	// slide-to-cancel.
	OutcomeCancelledTooShort
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeSent:
		return "sent"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeCancelledTooShort:
		return "cancelled_too_short"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Config holds the gesture thresholds and metering parameters.
type Config struct {
	// MinDuration filters accidental taps: any take shorter than this is
	// treated as cancelled regardless of gesture outcome.
	MinDuration time.Duration
	// CancelThreshold is the leftward drag distance (points) that arms
	// slide-to-cancel.
	CancelThreshold float64
	// LockThreshold is the upward drag distance (points) that locks the
	// recording hands-free.
	LockThreshold float64
	// WaveformLen is the fixed bar count of the rolling amplitude buffer.
	WaveformLen int
	// MeterFloorDB/MeterCeilingDB bound the decibel range normalized to
	// [0,1] for bar heights.
	MeterFloorDB   float64
	MeterCeilingDB float64
	// PollInterval is the amplitude sampling cadence.
	PollInterval time.Duration
	// TickInterval is the duration-timer cadence.
	TickInterval time.Duration
}

// DefaultConfig mirrors the tuning of the mobile recorder widget.
func DefaultConfig() Config {
	return Config{
		MinDuration:     500 * time.Millisecond,
		CancelThreshold: 80,
		LockThreshold:   60,
		WaveformLen:     48,
		MeterFloorDB:    -60,
		MeterCeilingDB:  0,
		PollInterval:    100 * time.Millisecond,
		TickInterval:    50 * time.Millisecond,
	}
}

// ─── Events ─────────────────────────────────────────────────────────────────

// Event is a gesture, timer or platform input fed to the reducer.
type Event interface{ isEvent() }

// PressIn starts the gesture from Idle.
type PressIn struct{}

// Permission reports the microphone permission prompt result.
type Permission struct{ Granted bool }

// Move reports the current drag offset from the press origin in screen
// coordinates: left is negative DX, up is negative DY.
type Move struct{ DX, DY float64 }

// Release ends the press while unlocked.
type Release struct{}

// Tick advances the duration timer by Delta.
type Tick struct{ Delta time.Duration }

// Sample reports one metering poll in decibels.
type Sample struct{ DB float64 }

// StopTapped stops a locked recording and opens the preview.
type StopTapped struct{}

// SendTapped emits the previewed recording.
type SendTapped struct{}

// DiscardTapped discards a locked recording or a preview.
type DiscardTapped struct{}

// PlayTapped / PauseTapped / Seek drive preview playback.
type PlayTapped struct{}
type PauseTapped struct{}

// Seek positions preview playback by tap position, as a fraction of the
// recording duration in [0,1].
type Seek struct{ Fraction float64 }

// Fail reports a recorder start/stop error; the machine resets to Idle and
// the caller is expected to log the cause. Retry is manual: the user must
// re-initiate the gesture.
type Fail struct{}

func (PressIn) isEvent()       {}
func (Permission) isEvent()    {}
func (Move) isEvent()          {}
func (Release) isEvent()       {}
func (Tick) isEvent()          {}
func (Sample) isEvent()        {}
func (StopTapped) isEvent()    {}
func (SendTapped) isEvent()    {}
func (DiscardTapped) isEvent() {}
func (PlayTapped) isEvent()    {}
func (PauseTapped) isEvent()   {}
func (Seek) isEvent()          {}
func (Fail) isEvent()          {}

// ─── Effects ────────────────────────────────────────────────────────────────

// Effect instructs the driver to perform a side effect. StartTimers and
// StopTimers are always emitted in pairs across a Recording lifetime so the
// duration and metering timers cannot leak.
type Effect int

const (
	EffectRequestPermission Effect = iota
	EffectStartCapture
	EffectStopCapture
	EffectStartTimers
	EffectStopTimers
	// EffectStartPlayTicker/EffectStopPlayTicker scope the preview playback
	// clock, paired the same way as the recording timers.
	EffectStartPlayTicker
	EffectStopPlayTicker
	EffectEmit
)

func (e Effect) String() string {
	switch e {
	case EffectRequestPermission:
		return "request_permission"
	case EffectStartCapture:
		return "start_capture"
	case EffectStopCapture:
		return "stop_capture"
	case EffectStartTimers:
		return "start_timers"
	case EffectStopTimers:
		return "stop_timers"
	case EffectStartPlayTicker:
		return "start_play_ticker"
	case EffectStopPlayTicker:
		return "stop_play_ticker"
	case EffectEmit:
		return "emit"
	default:
		return "unknown"
	}
}

// Recording is the emitted result of a sent take.
type Recording struct {
	Duration time.Duration
	Waveform []float64
}

// ─── Machine ────────────────────────────────────────────────────────────────

// Machine is the recorder reducer. Not safe for concurrent use; drive it
// from a single goroutine (the Driver serializes access).
type Machine struct {
	cfg Config

	phase       Phase
	elapsed     time.Duration
	cancelArmed bool
	waveform    *Waveform
	outcome     Outcome
	emitted     *Recording

	// preview playback position
	playing  bool
	position time.Duration

	timersHeld bool
}

// New creates a Machine in PhaseIdle.
func New(cfg Config) *Machine {
	if cfg.WaveformLen <= 0 {
		cfg.WaveformLen = DefaultConfig().WaveformLen
	}
	return &Machine{
		cfg:      cfg,
		phase:    PhaseIdle,
		waveform: NewWaveform(cfg.WaveformLen),
	}
}

// Phase returns the current state tag.
func (m *Machine) Phase() Phase { return m.phase }

// Outcome returns the result of the last completed gesture.
func (m *Machine) Outcome() Outcome { return m.outcome }

// Duration returns the elapsed recording time.
func (m *Machine) Duration() time.Duration { return m.elapsed }

// Bars returns a copy of the current waveform buffer.
func (m *Machine) Bars() []float64 { return m.waveform.Bars() }

// Playing reports preview playback state.
func (m *Machine) Playing() bool { return m.playing }

// Position returns the preview playback position.
func (m *Machine) Position() time.Duration { return m.position }

// TimersHeld reports whether the timer resource is currently acquired.
// Exposed for leak assertions.
func (m *Machine) TimersHeld() bool { return m.timersHeld }

// Take returns the emitted recording of the last sent take, if any, and
// clears it.
func (m *Machine) Take() (Recording, bool) {
	if m.emitted == nil {
		return Recording{}, false
	}
	rec := *m.emitted
	m.emitted = nil
	return rec, true
}

// Apply is the single reducer: it advances the machine by one event and
// returns the effects the driver must execute, in order.
func (m *Machine) Apply(ev Event) []Effect {
	switch m.phase {
	case PhaseIdle:
		return m.applyIdle(ev)
	case PhaseArming:
		return m.applyArming(ev)
	case PhaseRecording:
		return m.applyRecording(ev)
	case PhaseLocked:
		return m.applyLocked(ev)
	case PhasePreview:
		return m.applyPreview(ev)
	}
	return nil
}

func (m *Machine) applyIdle(ev Event) []Effect {
	if _, ok := ev.(PressIn); ok {
		m.phase = PhaseArming
		return []Effect{EffectRequestPermission}
	}
	return nil
}

func (m *Machine) applyArming(ev Event) []Effect {
	switch e := ev.(type) {
	case Permission:
		if !e.Granted {
			m.phase = PhaseIdle
			return nil
		}
		m.beginRecording()
		return []Effect{EffectStartCapture, EffectStartTimers}
	case Release:
		// Finger lifted before the prompt resolved.
		m.phase = PhaseIdle
		return nil
	case Fail:
		m.phase = PhaseIdle
		return nil
	}
	return nil
}

func (m *Machine) applyRecording(ev Event) []Effect {
	switch e := ev.(type) {
	case Tick:
		m.elapsed += e.Delta
		return nil
	case Sample:
		m.waveform.Push(Normalize(e.DB, m.cfg.MeterFloorDB, m.cfg.MeterCeilingDB))
		return nil
	case Move:
		// Slide-to-cancel latches: once armed, vertical movement no longer
		// matters and the lock cannot engage.
		if e.DX <= -m.cfg.CancelThreshold {
			m.cancelArmed = true
			return nil
		}
		if !m.cancelArmed && e.DY <= -m.cfg.LockThreshold {
			m.phase = PhaseLocked
			return nil
		}
		return nil
	case Release:
		return m.finishUnlocked()
	case Fail:
		return m.reset()
	}
	return nil
}

func (m *Machine) applyLocked(ev Event) []Effect {
	switch e := ev.(type) {
	case Tick:
		m.elapsed += e.Delta
		return nil
	case Sample:
		m.waveform.Push(Normalize(e.DB, m.cfg.MeterFloorDB, m.cfg.MeterCeilingDB))
		return nil
	case StopTapped:
		if m.elapsed < m.cfg.MinDuration {
			m.outcome = OutcomeCancelledTooShort
			return m.reset()
		}
		m.phase = PhasePreview
		m.playing = false
		m.position = 0
		m.timersHeld = false
		return []Effect{EffectStopCapture, EffectStopTimers}
	case DiscardTapped:
		m.outcome = OutcomeDiscarded
		return m.reset()
	case Fail:
		return m.reset()
	}
	// Gesture input (Move, Release, PressIn) is disengaged after locking.
	return nil
}

func (m *Machine) applyPreview(ev Event) []Effect {
	switch e := ev.(type) {
	case PlayTapped:
		if m.playing {
			return nil
		}
		// Play from the top when the last run hit the end.
		if m.position >= m.elapsed {
			m.position = 0
		}
		m.playing = true
		return []Effect{EffectStartPlayTicker}
	case PauseTapped:
		if !m.playing {
			return nil
		}
		m.playing = false
		return []Effect{EffectStopPlayTicker}
	case Seek:
		frac := e.Fraction
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		m.position = time.Duration(float64(m.elapsed) * frac)
		return nil
	case Tick:
		if !m.playing {
			return nil
		}
		m.position += e.Delta
		if m.position >= m.elapsed {
			m.position = m.elapsed
			m.playing = false
			return []Effect{EffectStopPlayTicker}
		}
		return nil
	case SendTapped:
		m.outcome = OutcomeSent
		m.emitted = &Recording{Duration: m.elapsed, Waveform: m.waveform.Bars()}
		m.phase = PhaseIdle
		return m.leavePreview(EffectEmit)
	case DiscardTapped:
		m.outcome = OutcomeDiscarded
		m.phase = PhaseIdle
		return m.leavePreview()
	}
	return nil
}

// leavePreview stops the playback clock if it is running, then appends the
// caller's effects.
func (m *Machine) leavePreview(next ...Effect) []Effect {
	var effects []Effect
	if m.playing {
		m.playing = false
		effects = append(effects, EffectStopPlayTicker)
	}
	return append(effects, next...)
}

// finishUnlocked resolves an unlocked release: cancel if the slide latched,
// debounce if below the minimum duration, otherwise emit immediately.
func (m *Machine) finishUnlocked() []Effect {
	effects := []Effect{EffectStopCapture, EffectStopTimers}
	m.timersHeld = false

	switch {
	case m.cancelArmed:
		m.outcome = OutcomeCancelled
	case m.elapsed < m.cfg.MinDuration:
		m.outcome = OutcomeCancelledTooShort
	default:
		m.outcome = OutcomeSent
		m.emitted = &Recording{Duration: m.elapsed, Waveform: m.waveform.Bars()}
		effects = append(effects, EffectEmit)
	}

	m.phase = PhaseIdle
	m.cancelArmed = false
	return effects
}

// beginRecording resets per-take state and acquires the timer resource.
func (m *Machine) beginRecording() {
	m.phase = PhaseRecording
	m.elapsed = 0
	m.cancelArmed = false
	m.outcome = OutcomeNone
	m.emitted = nil
	m.waveform = NewWaveform(m.cfg.WaveformLen)
	m.timersHeld = true
}

// reset stops capture and timers and returns to Idle. Outcome must be set by
// the caller before resetting (Fail paths leave it as-is).
func (m *Machine) reset() []Effect {
	m.phase = PhaseIdle
	m.cancelArmed = false
	if m.timersHeld {
		m.timersHeld = false
		return []Effect{EffectStopCapture, EffectStopTimers}
	}
	return []Effect{EffectStopCapture}
}
