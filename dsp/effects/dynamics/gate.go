package dynamics

import (
	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/dsp/filter/tpt"
	"github.com/cwbudde/algo-fuzz/dsp/smooth"
)

const (
	// Default gate parameters
	DefaultGateThresholdDB  = -40.0
	DefaultGateAttackMs     = 1.0
	DefaultGateReleaseMs    = 80.0
	DefaultGateHysteresisDB = 4.0
	DefaultGateSidechainHz  = 150.0
	DefaultGateRangeDB      = -60.0
	DefaultGateRatio        = 1.0

	// Gate parameter ranges; setters clamp into them.
	MinGateThresholdDB  = -60.0
	MaxGateThresholdDB  = -10.0
	MinGateAttackMs     = 0.1
	MaxGateAttackMs     = 100.0
	MinGateReleaseMs    = 1.0
	MaxGateReleaseMs    = 2000.0
	MinGateHysteresisDB = 0.0
	MaxGateHysteresisDB = 12.0
	MinGateSidechainHz  = 20.0
	MaxGateSidechainHz  = 2000.0
	MinGateRangeDB      = -120.0
	MaxGateRangeDB      = -6.0
	MinGateRatio        = 0.0
	MaxGateRatio        = 1.0

	gateGainRampSeconds = 0.001
)

// GateMetrics holds metering information for visualization and analysis.
type GateMetrics struct {
	Opens   int     // Closed->Open transitions since last reset
	Closes  int     // Open->Closed transitions since last reset
	MinGain float64 // Lowest applied gain since last reset
}

// Gate is a two-state (Closed/Open) noise gate with hysteresis.
//
// Detection runs on a highpass-filtered copy of each channel; the audio
// path itself is not filtered. A one-pole envelope with separate attack and
// release coefficients tracks the loudest channel. The gate opens when the
// envelope reaches the open threshold and closes when it falls below the
// close threshold (open minus hysteresis). The applied gain ramps towards 1
// when open and towards 10^(range*ratio/20) when closed.
//
// All setters clamp to the documented ranges and are real-time safe.
// The gate is not safe for concurrent use.
type Gate struct {
	sampleRate float64
	channels   int
	enabled    bool

	thresholdDB  float64
	attackMs     float64
	releaseMs    float64
	hysteresisDB float64
	sidechainHz  float64
	rangeDB      float64
	ratio        float64

	// Computed coefficients
	attackCoeff  float64
	releaseCoeff float64
	openLin      float64
	closeLin     float64
	closedGain   float64

	// Detector state
	envelope float64
	open     bool

	sidechain tpt.Multi
	gain      smooth.Value

	metrics GateMetrics
}

// NewGate creates a disabled gate with default parameters for up to
// channels channels (at most core.MaxChannels are linked).
func NewGate(sampleRate float64, channels int) (*Gate, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	g := &Gate{
		sampleRate:   sampleRate,
		channels:     max(1, min(channels, core.MaxChannels)),
		thresholdDB:  DefaultGateThresholdDB,
		attackMs:     DefaultGateAttackMs,
		releaseMs:    DefaultGateReleaseMs,
		hysteresisDB: DefaultGateHysteresisDB,
		sidechainHz:  DefaultGateSidechainHz,
		rangeDB:      DefaultGateRangeDB,
		ratio:        DefaultGateRatio,
	}

	g.sidechain.Prepare(tpt.Highpass, sampleRate, g.sidechainHz)
	g.gain.Reset(sampleRate, gateGainRampSeconds)
	g.updateTimeConstants()
	g.updateThresholds()
	g.updateClosedGain()
	g.Reset()

	return g, nil
}

// SetSampleRate re-derives all rate-dependent coefficients and resets state.
func (g *Gate) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}

	g.sampleRate = sampleRate
	g.sidechain.Prepare(tpt.Highpass, sampleRate, g.sidechainHz)
	g.gain.Reset(sampleRate, gateGainRampSeconds)
	g.updateTimeConstants()
	g.Reset()

	return nil
}

// SetEnabled turns the gate on or off. Disabling forces the Closed state,
// clears the envelope and snaps the gain to unity.
func (g *Gate) SetEnabled(enabled bool) {
	if enabled == g.enabled {
		return
	}

	g.enabled = enabled
	if !enabled {
		g.open = false
		g.envelope = 0
		g.gain.SetCurrentAndTarget(1)
	}
}

// SetThreshold sets the open threshold in dB, clamped to [-60, -10].
func (g *Gate) SetThreshold(dB float64) {
	g.thresholdDB = core.Clamp(dB, MinGateThresholdDB, MaxGateThresholdDB)
	g.updateThresholds()
}

// SetAttack sets the envelope attack time in ms, clamped to [0.1, 100].
func (g *Gate) SetAttack(ms float64) {
	g.attackMs = core.Clamp(ms, MinGateAttackMs, MaxGateAttackMs)
	g.updateTimeConstants()
}

// SetRelease sets the envelope release time in ms, clamped to [1, 2000].
func (g *Gate) SetRelease(ms float64) {
	g.releaseMs = core.Clamp(ms, MinGateReleaseMs, MaxGateReleaseMs)
	g.updateTimeConstants()
}

// SetHysteresis sets the distance between open and close threshold in dB,
// clamped to [0, 12].
func (g *Gate) SetHysteresis(dB float64) {
	g.hysteresisDB = core.Clamp(dB, MinGateHysteresisDB, MaxGateHysteresisDB)
	g.updateThresholds()
}

// SetSidechainCutoff sets the detector highpass cutoff in Hz, clamped to
// [20, 2000].
func (g *Gate) SetSidechainCutoff(hz float64) {
	g.sidechainHz = core.Clamp(hz, MinGateSidechainHz, MaxGateSidechainHz)
	g.sidechain.SetCutoff(g.sidechainHz)
}

// SetRange sets the closed-state attenuation in dB, clamped to [-120, -6].
func (g *Gate) SetRange(dB float64) {
	g.rangeDB = core.Clamp(dB, MinGateRangeDB, MaxGateRangeDB)
	g.updateClosedGain()
}

// SetRatio scales the range attenuation, clamped to [0, 1]. 0 disables
// attenuation, 1 applies the full range.
func (g *Gate) SetRatio(ratio float64) {
	g.ratio = core.Clamp(ratio, MinGateRatio, MaxGateRatio)
	g.updateClosedGain()
}

// Enabled reports whether the gate processes audio.
func (g *Gate) Enabled() bool { return g.enabled }

// Threshold returns the open threshold in dB.
func (g *Gate) Threshold() float64 { return g.thresholdDB }

// CloseThreshold returns the close threshold in dB.
func (g *Gate) CloseThreshold() float64 { return g.thresholdDB - g.hysteresisDB }

// Attack returns the attack time in milliseconds.
func (g *Gate) Attack() float64 { return g.attackMs }

// Release returns the release time in milliseconds.
func (g *Gate) Release() float64 { return g.releaseMs }

// Hysteresis returns the hysteresis in dB.
func (g *Gate) Hysteresis() float64 { return g.hysteresisDB }

// SidechainCutoff returns the detector highpass cutoff in Hz.
func (g *Gate) SidechainCutoff() float64 { return g.sidechainHz }

// Range returns the closed-state attenuation in dB.
func (g *Gate) Range() float64 { return g.rangeDB }

// Ratio returns the range scaling factor.
func (g *Gate) Ratio() float64 { return g.ratio }

// SampleRate returns the sample rate in Hz.
func (g *Gate) SampleRate() float64 { return g.sampleRate }

// IsOpen reports whether the gate is in the Open state.
func (g *Gate) IsOpen() bool { return g.open }

// Envelope returns the detector envelope (linear).
func (g *Gate) Envelope() float64 { return g.envelope }

// CurrentGain returns the most recently applied gain.
func (g *Gate) CurrentGain() float64 { return g.gain.Current() }

// ClosedGain returns the gain the gate settles to when closed.
func (g *Gate) ClosedGain() float64 { return g.closedGain }

// AttackCoeff returns exp(-1/(sampleRate*attack)).
func (g *Gate) AttackCoeff() float64 { return g.attackCoeff }

// ReleaseCoeff returns exp(-1/(sampleRate*release)).
func (g *Gate) ReleaseCoeff() float64 { return g.releaseCoeff }

// ProcessInPlace gates buf in place. Disabled gates leave buf untouched.
func (g *Gate) ProcessInPlace(buf [][]float64) {
	if !g.enabled {
		return
	}

	chs := min(len(buf), g.channels)
	n := core.NumFrames(buf[:chs])

	for i := range n {
		peak := 0.0
		for ch := range chs {
			s := g.sidechain.ProcessSample(ch, buf[ch][i])
			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}

		gain := g.step(peak)
		for ch := range chs {
			buf[ch][i] *= gain
		}
	}

	g.sidechain.FlushDenormals()
	g.envelope = core.FlushDenormals(g.envelope)
}

// step advances the detector by one sample and returns the gain to apply.
func (g *Gate) step(peak float64) float64 {
	coeff := g.releaseCoeff
	if peak > g.envelope {
		coeff = g.attackCoeff
	}
	g.envelope = coeff*g.envelope + (1-coeff)*peak

	switch {
	case !g.open && g.envelope >= g.openLin:
		g.open = true
		g.metrics.Opens++
	case g.open && g.envelope < g.closeLin:
		g.open = false
		g.metrics.Closes++
	}

	if g.open {
		g.gain.SetTarget(1)
	} else {
		g.gain.SetTarget(g.closedGain)
	}

	gain := g.gain.Next()
	if gain < g.metrics.MinGain {
		g.metrics.MinGain = gain
	}

	return gain
}

// Reset returns the gate to Closed with an empty envelope and unity gain.
func (g *Gate) Reset() {
	g.open = false
	g.envelope = 0
	g.sidechain.Reset()
	g.gain.SetCurrentAndTarget(1)
	g.ResetMetrics()
}

// GetMetrics returns current metering values.
func (g *Gate) GetMetrics() GateMetrics { return g.metrics }

// ResetMetrics clears metering state.
func (g *Gate) ResetMetrics() {
	g.metrics = GateMetrics{MinGain: 1}
}

func (g *Gate) updateTimeConstants() {
	g.attackCoeff = core.TimeConstantCoef(g.attackMs, g.sampleRate)
	g.releaseCoeff = core.TimeConstantCoef(g.releaseMs, g.sampleRate)
}

func (g *Gate) updateThresholds() {
	g.openLin = dbToLinear(g.thresholdDB)
	g.closeLin = dbToLinear(g.thresholdDB - g.hysteresisDB)
}

func (g *Gate) updateClosedGain() {
	g.closedGain = dbToLinear(g.rangeDB * g.ratio)
}
