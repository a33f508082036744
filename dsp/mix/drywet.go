package mix

import (
	"fmt"

	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/dsp/delay"
	"github.com/cwbudde/algo-fuzz/dsp/smooth"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// DefaultMixRamp is the ramp time of mix changes in seconds.
	DefaultMixRamp = 0.05
	// DefaultMaxLatency is the largest compensated latency in samples.
	DefaultMaxLatency = 64
)

// DryWet blends a delayed dry signal with a processed (wet) signal using a
// linear rule: out = (1-mix)*dry + mix*wet.
type DryWet struct {
	channels int
	maxBlock int
	frames   int

	lines   []*delay.Line
	dry     [][]float64
	dryGain []float64
	wetGain []float64
	scratch []float64

	mix     float64
	latency float64
	maxLat  float64

	dryVol smooth.Value
	wetVol smooth.Value
}

// NewDryWet creates a mixer for the given layout. maxLatency bounds the
// compensated latency in samples.
func NewDryWet(sampleRate float64, channels, maxBlock, maxLatency int) (*DryWet, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("mix: sample rate must be positive: %f", sampleRate)
	}
	if channels < 1 || channels > core.MaxChannels {
		return nil, fmt.Errorf("mix: channels must be in [1, %d]: %d", core.MaxChannels, channels)
	}
	if maxBlock < 1 {
		return nil, fmt.Errorf("mix: block size must be positive: %d", maxBlock)
	}
	if maxLatency < 0 {
		return nil, fmt.Errorf("mix: max latency must be >= 0: %d", maxLatency)
	}

	m := &DryWet{
		channels: channels,
		maxBlock: maxBlock,
		lines:    make([]*delay.Line, channels),
		dry:      core.AllocChannels(channels, maxBlock),
		dryGain:  make([]float64, maxBlock),
		wetGain:  make([]float64, maxBlock),
		scratch:  make([]float64, maxBlock),
		mix:      1,
	}

	for ch := range m.lines {
		line, err := delay.New(maxLatency + 4)
		if err != nil {
			return nil, err
		}
		m.lines[ch] = line
	}
	m.maxLat = m.lines[0].MaxDelay()

	m.dryVol.Reset(sampleRate, DefaultMixRamp)
	m.wetVol.Reset(sampleRate, DefaultMixRamp)
	m.dryVol.SetCurrentAndTarget(0)
	m.wetVol.SetCurrentAndTarget(1)

	return m, nil
}

// SetMix sets the wet proportion in [0, 1] (clamped).
func (m *DryWet) SetMix(p float64) {
	m.mix = core.Clamp(p, 0, 1)
	m.dryVol.SetTarget(1 - m.mix)
	m.wetVol.SetTarget(m.mix)
}

// Mix returns the configured wet proportion.
func (m *DryWet) Mix() float64 { return m.mix }

// SetWetLatency sets the delay applied to the dry path in samples,
// clamped to the mixer's capacity.
func (m *DryWet) SetWetLatency(samples float64) {
	m.latency = core.Clamp(samples, 0, m.maxLat)
}

// WetLatency returns the applied dry-path delay in samples.
func (m *DryWet) WetLatency() float64 { return m.latency }

// PushDry captures the dry signal of the next block. At most MaxBlock
// frames are captured.
func (m *DryWet) PushDry(buf [][]float64) {
	chs := min(len(buf), m.channels)
	n := min(core.NumFrames(buf), m.maxBlock)
	if chs == 0 {
		n = 0
	}
	m.frames = n

	for ch := range chs {
		line := m.lines[ch]
		dst := m.dry[ch]
		for i, x := range buf[ch][:n] {
			line.Write(x)
			dst[i] = line.ReadFractional(m.latency)
		}
	}
}

// MixWet blends the wet signal in buf with the dry signal captured by the
// preceding PushDry.
func (m *DryWet) MixWet(buf [][]float64) {
	n := min(m.frames, core.NumFrames(buf))
	chs := min(len(buf), m.channels)
	if n == 0 || chs == 0 {
		return
	}

	dryGain := m.dryGain[:n]
	wetGain := m.wetGain[:n]
	for i := range n {
		dryGain[i] = m.dryVol.Next()
		wetGain[i] = m.wetVol.Next()
	}

	scratch := m.scratch[:n]
	for ch := range chs {
		wet := buf[ch][:n]
		vecmath.MulBlockInPlace(wet, wetGain)
		vecmath.MulBlock(scratch, m.dry[ch][:n], dryGain)
		vecmath.AddBlockInPlace(wet, scratch)
	}
}

// Reset clears the delay lines and snaps the mix ramp to its target.
func (m *DryWet) Reset() {
	for _, line := range m.lines {
		line.Reset()
	}
	core.ZeroChannels(m.dry)
	m.dryVol.SetCurrentAndTarget(1 - m.mix)
	m.wetVol.SetCurrentAndTarget(m.mix)
}
