package tpt

import (
	"math"

	"github.com/cwbudde/algo-fuzz/dsp/core"
)

// Type selects the filter response.
type Type int

const (
	// Lowpass passes frequencies below the cutoff.
	Lowpass Type = iota
	// Highpass passes frequencies above the cutoff.
	Highpass
	// Allpass keeps magnitude and shifts phase by 90 degrees at the cutoff.
	Allpass
)

const (
	minCutoff       = 1.0
	maxCutoffRatio  = 0.49
	defaultCutoffHz = 1000.0
)

// gainFor returns the TPT integrator gain G = g/(1+g), g = tan(pi*fc/fs).
// The cutoff is clamped to [1 Hz, 0.49*sampleRate].
func gainFor(cutoff, sampleRate float64) (float64, float64) {
	if sampleRate <= 0 {
		return cutoff, 0
	}

	cutoff = core.Clamp(cutoff, minCutoff, maxCutoffRatio*sampleRate)
	g := math.Tan(math.Pi * cutoff / sampleRate)

	return cutoff, g / (1 + g)
}

// tick runs one TPT step on state s and returns the lowpass output.
func tick(x, gain float64, s *float64) float64 {
	v := gain * (x - *s)
	y := v + *s
	*s = y + v

	return y
}

func shape(typ Type, x, lp float64) float64 {
	switch typ {
	case Highpass:
		return x - lp
	case Allpass:
		return 2*lp - x
	default:
		return lp
	}
}

// Filter is a single-channel first-order TPT filter.
type Filter struct {
	typ        Type
	sampleRate float64
	cutoff     float64
	gain       float64
	s          float64
}

// New creates a filter. Invalid sample rates leave the filter muted until
// SetSampleRate is called with a positive rate.
func New(typ Type, sampleRate, cutoff float64) *Filter {
	f := &Filter{}
	f.Prepare(typ, sampleRate, cutoff)
	return f
}

// Prepare reconfigures the filter and clears its state.
func (f *Filter) Prepare(typ Type, sampleRate, cutoff float64) {
	f.typ = typ
	f.sampleRate = sampleRate
	f.cutoff, f.gain = gainFor(cutoff, sampleRate)
	f.s = 0
}

// SetCutoff updates the cutoff frequency in Hz; state is kept.
func (f *Filter) SetCutoff(cutoff float64) {
	if cutoff == f.cutoff {
		return
	}
	f.cutoff, f.gain = gainFor(cutoff, f.sampleRate)
}

// SetSampleRate re-derives the coefficient for a new rate and clears state.
func (f *Filter) SetSampleRate(sampleRate float64) {
	f.Prepare(f.typ, sampleRate, f.cutoff)
}

// Cutoff returns the effective (clamped) cutoff frequency.
func (f *Filter) Cutoff() float64 { return f.cutoff }

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	return shape(f.typ, x, tick(x, f.gain, &f.s))
}

// ProcessBlock filters buf in place.
func (f *Filter) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = shape(f.typ, x, tick(x, f.gain, &f.s))
	}
	f.s = core.FlushDenormals(f.s)
}

// Reset clears the filter state.
func (f *Filter) Reset() { f.s = 0 }

// Multi is a first-order TPT filter with one coefficient shared by up to
// core.MaxChannels independent channel states.
type Multi struct {
	typ        Type
	sampleRate float64
	cutoff     float64
	gain       float64
	s          [core.MaxChannels]float64
}

// NewMulti creates a multichannel filter.
func NewMulti(typ Type, sampleRate, cutoff float64) *Multi {
	m := &Multi{}
	m.Prepare(typ, sampleRate, cutoff)
	return m
}

// Prepare reconfigures the filter and clears all channel states.
func (m *Multi) Prepare(typ Type, sampleRate, cutoff float64) {
	m.typ = typ
	m.sampleRate = sampleRate
	m.cutoff, m.gain = gainFor(cutoff, sampleRate)
	m.Reset()
}

// SetCutoff updates the shared cutoff frequency in Hz; states are kept.
func (m *Multi) SetCutoff(cutoff float64) {
	if cutoff == m.cutoff {
		return
	}
	m.cutoff, m.gain = gainFor(cutoff, m.sampleRate)
}

// Cutoff returns the effective (clamped) cutoff frequency.
func (m *Multi) Cutoff() float64 { return m.cutoff }

// ProcessSample filters one sample of channel ch. Channels outside
// [0, core.MaxChannels) pass through unchanged.
func (m *Multi) ProcessSample(ch int, x float64) float64 {
	if ch < 0 || ch >= core.MaxChannels {
		return x
	}
	return shape(m.typ, x, tick(x, m.gain, &m.s[ch]))
}

// FlushDenormals zeroes channel states that have decayed into the
// denormal range.
func (m *Multi) FlushDenormals() {
	for i := range m.s {
		m.s[i] = core.FlushDenormals(m.s[i])
	}
}

// Reset clears all channel states.
func (m *Multi) Reset() {
	m.s = [core.MaxChannels]float64{}
}
