package recorder

// Waveform is a fixed-length rolling buffer of normalized amplitudes in
// [0,1]. Pushing drops exactly the oldest sample; the buffer length never
// changes, so bar animations always have a stable column count.
type Waveform struct {
	bars []float64
}

// NewWaveform creates a zero-filled buffer of n bars. A non-positive n is
// clamped to one bar so Push always has a slot to land in.
func NewWaveform(n int) *Waveform {
	if n < 1 {
		n = 1
	}
	return &Waveform{bars: make([]float64, n)}
}

// Push appends the newest sample and drops the oldest.
func (w *Waveform) Push(v float64) {
	copy(w.bars, w.bars[1:])
	w.bars[len(w.bars)-1] = v
}

// Len returns the fixed bar count.
func (w *Waveform) Len() int { return len(w.bars) }

// Bars returns a copy of the buffer, oldest first.
func (w *Waveform) Bars() []float64 {
	out := make([]float64, len(w.bars))
	copy(out, w.bars)
	return out
}

// Normalize maps a decibel reading from [floor, ceiling] to [0,1], clamped.
func Normalize(db, floor, ceiling float64) float64 {
	if ceiling <= floor {
		return 0
	}
	v := (db - floor) / (ceiling - floor)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Downsample reduces an arbitrary-length amplitude trace to exactly n bars
// by averaging each bucket. Used server-side to store a stable waveform for
// voice messages regardless of how many metering samples the client took.
func Downsample(samples []float64, n int) []float64 {
	out := make([]float64, n)
	if len(samples) == 0 || n == 0 {
		return out
	}
	for i := 0; i < n; i++ {
		lo := i * len(samples) / n
		hi := (i + 1) * len(samples) / n
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(samples) {
			hi = len(samples)
		}
		var sum float64
		for _, s := range samples[lo:hi] {
			sum += s
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
