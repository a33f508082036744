package fuzz

import (
	"math"

	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/dsp/filter/tpt"
)

const (
	sagThresholdScale = 0.3
	sagThresholdFloor = 0.001
	sagMakeupScale    = 0.5
)

// ChannelState is the per-channel memory of the waveshaper: the tightness
// highpass, the slew lowpass and the envelope used by the touch-sensitive
// circuits. The zero value is unusable until Prepare is called.
type ChannelState struct {
	tightness tpt.Filter
	slew      tpt.Filter
	envelope  float64
}

// Prepare configures the filters for sampleRate (the oversampled rate) and
// clears all state.
func (s *ChannelState) Prepare(sampleRate float64) {
	s.tightness.Prepare(tpt.Highpass, sampleRate, MinTightnessHz)
	s.slew.Prepare(tpt.Lowpass, sampleRate, slewCutoffMax)
	s.envelope = 0
}

// Reset clears filter memory and the envelope, keeping the configuration.
func (s *ChannelState) Reset() {
	s.tightness.Reset()
	s.slew.Reset()
	s.envelope = 0
}

// SetTightnessCutoff sets the pre-drive highpass cutoff in Hz.
func (s *ChannelState) SetTightnessCutoff(hz float64) {
	s.tightness.SetCutoff(hz)
}

// TightnessCutoff returns the effective highpass cutoff.
func (s *ChannelState) TightnessCutoff() float64 { return s.tightness.Cutoff() }

// SlewCutoff returns the cutoff of the slew lowpass as last set.
func (s *ChannelState) SlewCutoff() float64 { return s.slew.Cutoff() }

// Envelope returns the envelope follower value.
func (s *ChannelState) Envelope() float64 { return s.envelope }

func (s *ChannelState) follow(level float64) float64 {
	coeff := envelopeRelease
	if level > s.envelope {
		coeff = envelopeAttack
	}
	s.envelope += coeff * (level - s.envelope)

	return s.envelope
}

// ProcessSample runs one oversampled sample through the waveshaper:
// tightness highpass, drive gain, slew lowpass, clipping circuit and sag.
// drive is the mapped gain (see MapDrive) and sag is normalized to [0, 1].
// Output compensation is left to the caller.
//
// Non-finite input is treated as silence and non-finite results are
// replaced with 0, so the filter state always stays finite.
func ProcessSample(x, drive float64, c Circuit, sag float64, st *ChannelState) float64 {
	if !core.IsFinite(x) {
		x = 0
	}

	x = st.tightness.ProcessSample(x)

	st.slew.SetCutoff(SlewCutoff(drive))
	slewed := st.slew.ProcessSample(x * drive)

	y := applySag(clip(c, slewed, x, st), sag)
	if !core.IsFinite(y) {
		return 0
	}

	return y
}

// applySag attenuates quadratically below a sag-dependent threshold and
// applies a linear makeup gain.
func applySag(y, sag float64) float64 {
	if sag <= 0 {
		return y
	}

	threshold := sagThresholdScale * sag
	if a := math.Abs(y); a < threshold {
		r := a / math.Max(threshold, sagThresholdFloor)
		y *= r * r
	}

	return y * (1 + sag*sagMakeupScale)
}
