package fuzz

import (
	"math"

	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/dsp/filter/biquad"
	"github.com/cwbudde/algo-fuzz/dsp/filter/design"
	"github.com/cwbudde/algo-fuzz/dsp/filter/tpt"
	"github.com/cwbudde/algo-fuzz/dsp/smooth"
)

const (
	toneRampSeconds    = 0.005
	presenceEpsilon    = 1e-6
	defaultToneControl = 0.5
)

// Tone is the base-rate post stage: a smoothed lowpass sweep applied per
// sample, then a presence high shelf and a 20 Hz DC blocker applied per
// block.
type Tone struct {
	sampleRate float64
	channels   int

	lp     tpt.Multi
	chains [core.MaxChannels]*biquad.Chain // shelf, DC blocker

	tone         smooth.Value
	presence     smooth.Value
	toneTarget   float64
	presTarget   float64
	shelfValue   float64
	shelfCurrent bool
}

// NewTone returns a tone stage with tone and presence at their neutral
// defaults. Prepare must be called before Apply.
func NewTone() *Tone {
	return &Tone{toneTarget: defaultToneControl, presTarget: defaultToneControl}
}

// Prepare configures the stage for sampleRate and channels and clears all
// filter memory. The smoothed controls snap to their targets.
func (t *Tone) Prepare(sampleRate float64, channels int) {
	t.sampleRate = sampleRate
	t.channels = max(0, min(channels, core.MaxChannels))

	t.lp.Prepare(tpt.Lowpass, sampleRate, ToneCutoff(t.toneTarget))

	dc := design.FirstOrderHighpass(DCBlockerHz, sampleRate)
	shelf := t.shelfCoefficients(t.presTarget)
	for ch := range t.chains {
		t.chains[ch] = biquad.NewChain([]biquad.Coefficients{shelf, dc})
	}
	t.shelfValue = t.presTarget
	t.shelfCurrent = true

	t.tone.Reset(sampleRate, toneRampSeconds)
	t.presence.Reset(sampleRate, toneRampSeconds)
	t.tone.SetCurrentAndTarget(t.toneTarget)
	t.presence.SetCurrentAndTarget(t.presTarget)
}

// Reset clears all filter memory and snaps the controls to their targets.
func (t *Tone) Reset() {
	t.lp.Reset()
	for _, c := range t.chains {
		if c != nil {
			c.Reset()
		}
	}
	t.tone.SetCurrentAndTarget(t.toneTarget)
	t.presence.SetCurrentAndTarget(t.presTarget)
}

// SetTone sets the normalized tone control, clamped to [0, 1].
func (t *Tone) SetTone(v float64) {
	t.toneTarget = core.Clamp(v, 0, 1)
	t.tone.SetTarget(t.toneTarget)
}

// SetPresence sets the normalized presence control, clamped to [0, 1].
func (t *Tone) SetPresence(v float64) {
	t.presTarget = core.Clamp(v, 0, 1)
	t.presence.SetTarget(t.presTarget)
}

// ToneValue returns the tone target.
func (t *Tone) ToneValue() float64 { return t.toneTarget }

// PresenceValue returns the presence target.
func (t *Tone) PresenceValue() float64 { return t.presTarget }

// Cutoff returns the current lowpass cutoff in Hz.
func (t *Tone) Cutoff() float64 { return t.lp.Cutoff() }

// Apply filters buf in place. Channels beyond the prepared count are left
// untouched.
func (t *Tone) Apply(buf [][]float64) {
	if t.sampleRate <= 0 {
		return
	}

	chs := min(len(buf), t.channels)
	n := core.NumFrames(buf[:chs])
	if n == 0 {
		return
	}

	for i := range n {
		t.lp.SetCutoff(ToneCutoff(t.tone.Next()))
		t.presence.Next()

		for ch := range chs {
			buf[ch][i] = t.lp.ProcessSample(ch, buf[ch][i])
		}
	}
	t.lp.FlushDenormals()

	t.updateShelf(t.presence.Current())

	for ch := range chs {
		t.chains[ch].ProcessBlock(buf[ch][:n])
	}
}

// updateShelf redesigns the presence shelf when the smoothed presence moved
// by more than presenceEpsilon since the last design. Filter state is kept.
func (t *Tone) updateShelf(p float64) {
	if t.shelfCurrent && math.Abs(p-t.shelfValue) <= presenceEpsilon {
		return
	}

	c := t.shelfCoefficients(p)
	for _, chain := range t.chains {
		chain.SetSectionCoefficients(0, c)
	}
	t.shelfValue = p
	t.shelfCurrent = true
}

func (t *Tone) shelfCoefficients(p float64) biquad.Coefficients {
	c := design.HighShelf(PresenceFreqHz, PresenceGainDB(p), PresenceQ, t.sampleRate)
	if c == (biquad.Coefficients{}) {
		// Corner at or above Nyquist.
		return biquad.Passthrough()
	}
	return c
}
