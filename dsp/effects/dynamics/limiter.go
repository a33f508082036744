package dynamics

import (
	"math"

	"github.com/cwbudde/algo-fuzz/dsp/core"
)

// Limiter defaults and parameter ranges.
const (
	// DefaultLimiterThresholdDB and DefaultLimiterReleaseMs configure a new
	// limiter: a 0 dBFS ceiling and a 50 ms release.
	DefaultLimiterThresholdDB = 0.0
	DefaultLimiterReleaseMs   = 50.0

	// MinLimiterThresholdDB and MaxLimiterThresholdDB bound SetThreshold;
	// MinLimiterReleaseMs and MaxLimiterReleaseMs bound SetRelease.
	MinLimiterThresholdDB = -24.0
	MaxLimiterThresholdDB = 0.0
	MinLimiterReleaseMs   = 1.0
	MaxLimiterReleaseMs   = 5000.0
)

// LimiterMetrics holds metering information for the limiter.
type LimiterMetrics struct {
	InputPeak     float64 // Maximum input level since last reset
	OutputPeak    float64 // Maximum output level since last reset
	GainReduction float64 // Minimum gain (maximum attenuation) since last reset
}

// Limiter is a channel-linked brickwall peak limiter.
//
// The detector envelope jumps to any new peak instantly and decays with the
// release time constant. Whenever the envelope exceeds the threshold the
// gain threshold/envelope (computed in the log2 domain) is applied to all
// channels, and a final clamp guarantees that no output sample exceeds the
// threshold magnitude.
type Limiter struct {
	sampleRate  float64
	thresholdDB float64
	releaseMs   float64

	threshold     float64
	thresholdLog2 float64
	releaseCoeff  float64

	envelope float64
	gain     float64

	metrics LimiterMetrics
}

// NewLimiter creates a limiter with a 0 dBFS ceiling and 50 ms release.
func NewLimiter(sampleRate float64) (*Limiter, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	l := &Limiter{
		sampleRate:  sampleRate,
		thresholdDB: DefaultLimiterThresholdDB,
		releaseMs:   DefaultLimiterReleaseMs,
	}
	l.updateThreshold()
	l.updateRelease()
	l.Reset()

	return l, nil
}

// SetSampleRate updates the sample rate and recalculates the release.
func (l *Limiter) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}

	l.sampleRate = sampleRate
	l.updateRelease()

	return nil
}

// SetThreshold sets the ceiling in dBFS, clamped to [-24, 0].
func (l *Limiter) SetThreshold(dB float64) {
	l.thresholdDB = core.Clamp(dB, MinLimiterThresholdDB, MaxLimiterThresholdDB)
	l.updateThreshold()
}

// SetRelease sets the release time in ms, clamped to [1, 5000].
func (l *Limiter) SetRelease(ms float64) {
	l.releaseMs = core.Clamp(ms, MinLimiterReleaseMs, MaxLimiterReleaseMs)
	l.updateRelease()
}

// Threshold returns the ceiling in dBFS.
func (l *Limiter) Threshold() float64 { return l.thresholdDB }

// Release returns the release time in milliseconds.
func (l *Limiter) Release() float64 { return l.releaseMs }

// GainReduction returns the most recent applied gain (1 = no reduction).
func (l *Limiter) GainReduction() float64 { return l.gain }

// ProcessInPlace limits buf in place.
func (l *Limiter) ProcessInPlace(buf [][]float64) {
	chs := len(buf)
	n := core.NumFrames(buf)
	ceiling := l.threshold

	for i := range n {
		peak := linkedPeak(buf, chs, i)
		if !core.IsFinite(peak) {
			peak = ceiling
		}

		l.envelope = math.Max(peak, l.envelope*l.releaseCoeff)
		l.gain = l.computeGain(l.envelope)

		for ch := range chs {
			y := buf[ch][i] * l.gain
			if math.IsNaN(y) {
				y = 0
			}
			buf[ch][i] = min(max(y, -ceiling), ceiling)
		}

		l.updateMetrics(peak, peak*l.gain)
	}

	l.envelope = core.FlushDenormals(l.envelope)
}

func (l *Limiter) computeGain(level float64) float64 {
	if level <= l.threshold {
		return 1
	}

	return mathPower2(l.thresholdLog2 - mathLog2(level))
}

func (l *Limiter) updateMetrics(in, out float64) {
	l.metrics.InputPeak = math.Max(l.metrics.InputPeak, in)
	l.metrics.OutputPeak = math.Max(l.metrics.OutputPeak, math.Min(out, l.threshold))
	l.metrics.GainReduction = math.Min(l.metrics.GainReduction, l.gain)
}

// Reset clears the envelope and metrics.
func (l *Limiter) Reset() {
	l.envelope = 0
	l.gain = 1
	l.ResetMetrics()
}

// GetMetrics returns current metering values.
func (l *Limiter) GetMetrics() LimiterMetrics { return l.metrics }

// ResetMetrics clears metering state.
func (l *Limiter) ResetMetrics() {
	l.metrics = LimiterMetrics{GainReduction: 1}
}

func (l *Limiter) updateThreshold() {
	l.threshold = dbToLinear(l.thresholdDB)
	l.thresholdLog2 = l.thresholdDB * log2Of10Div20
}

func (l *Limiter) updateRelease() {
	l.releaseCoeff = core.TimeConstantCoef(l.releaseMs, l.sampleRate)
}
