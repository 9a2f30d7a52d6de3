package recorder

import (
	"sync"
	"time"
)

// Capturer abstracts the platform audio recorder. Meter is polled on the
// metering cadence and returns the current input level in decibels.
type Capturer interface {
	Start() error
	Stop() error
	Meter() float64
}

// Emitter receives finished recordings.
type Emitter func(Recording)

// Driver runs a Machine against real timers and a Capturer. The two
// repeating timers (duration tick, amplitude poll) are scoped to the
// recording: acquired on EffectStartTimers and released on EffectStopTimers,
// on every exit path including Close.
type Driver struct {
	mu    sync.Mutex
	m     *Machine
	audio Capturer
	emit  Emitter

	tick   *time.Ticker
	poll   *time.Ticker
	stopCh chan struct{}

	playTick *time.Ticker
	playStop chan struct{}

	failed error
}

// NewDriver wires a Machine to a Capturer and an emit callback.
func NewDriver(cfg Config, audio Capturer, emit Emitter) *Driver {
	return &Driver{m: New(cfg), audio: audio, emit: emit}
}

// Dispatch feeds one event through the reducer and executes its effects.
func (d *Driver) Dispatch(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apply(ev)
}

// Machine exposes the underlying reducer for state inspection.
func (d *Driver) Machine() *Machine {
	return d.m
}

// Snapshot returns the current phase and outcome under the driver lock.
func (d *Driver) Snapshot() (Phase, Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.m.Phase(), d.m.Outcome()
}

// Close releases any held timers and stops capture. Safe to call on unmount
// regardless of phase.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.m.Phase() == PhaseRecording || d.m.Phase() == PhaseLocked {
		d.apply(Fail{})
	}
	if d.m.Phase() == PhasePreview && d.m.Playing() {
		d.apply(PauseTapped{})
	}
}

// apply must be called with d.mu held.
func (d *Driver) apply(ev Event) {
	for _, eff := range d.m.Apply(ev) {
		switch eff {
		case EffectRequestPermission:
			// Permission is asynchronous on every platform; the embedder
			// resolves it by dispatching Permission{Granted}.
		case EffectStartCapture:
			if err := d.audio.Start(); err != nil {
				d.failed = err
				d.apply(Fail{})
				return // remaining effects belong to the aborted take
			}
		case EffectStopCapture:
			if err := d.audio.Stop(); err != nil {
				d.failed = err
			}
		case EffectStartTimers:
			d.startTimers()
		case EffectStopTimers:
			d.stopTimers()
		case EffectStartPlayTicker:
			d.startPlayTicker()
		case EffectStopPlayTicker:
			d.stopPlayTicker()
		case EffectEmit:
			if rec, ok := d.m.Take(); ok && d.emit != nil {
				d.emit(rec)
			}
		}
	}
}

// Err returns the last capture error, if any.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed
}

func (d *Driver) startTimers() {
	if d.stopCh != nil {
		return // already held; StartTimers is never doubled by the reducer
	}
	cfg := d.m.cfg
	d.tick = time.NewTicker(cfg.TickInterval)
	d.poll = time.NewTicker(cfg.PollInterval)
	d.stopCh = make(chan struct{})

	go func(tick, poll *time.Ticker, stop chan struct{}) {
		last := time.Now()
		for {
			select {
			case now := <-tick.C:
				d.Dispatch(Tick{Delta: now.Sub(last)})
				last = now
			case <-poll.C:
				d.Dispatch(Sample{DB: d.audio.Meter()})
			case <-stop:
				return
			}
		}
	}(d.tick, d.poll, d.stopCh)
}

func (d *Driver) stopTimers() {
	if d.stopCh == nil {
		return
	}
	d.tick.Stop()
	d.poll.Stop()
	close(d.stopCh)
	d.tick, d.poll, d.stopCh = nil, nil, nil
}

func (d *Driver) startPlayTicker() {
	if d.playStop != nil {
		return
	}
	d.playTick = time.NewTicker(d.m.cfg.TickInterval)
	d.playStop = make(chan struct{})

	go func(tick *time.Ticker, stop chan struct{}) {
		last := time.Now()
		for {
			select {
			case now := <-tick.C:
				d.Dispatch(Tick{Delta: now.Sub(last)})
				last = now
			case <-stop:
				return
			}
		}
	}(d.playTick, d.playStop)
}

func (d *Driver) stopPlayTicker() {
	if d.playStop == nil {
		return
	}
	d.playTick.Stop()
	close(d.playStop)
	d.playTick, d.playStop = nil, nil
}

// TimersRunning reports whether the timer goroutine is live. Exposed for
// leak tests.
func (d *Driver) TimersRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopCh != nil
}

// PlayTickerRunning reports whether the preview playback clock is live.
// Exposed for leak tests.
func (d *Driver) PlayTickerRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playStop != nil
}
