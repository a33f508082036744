package fuzz

import (
	"fmt"

	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/dsp/effects/dynamics"
	"github.com/cwbudde/algo-fuzz/dsp/resample"
	"github.com/cwbudde/algo-fuzz/dsp/smooth"
)

// Normalized control values of a new engine.
const (
	DefaultDrive     = 0.5
	DefaultTightness = 0.0
	DefaultSag       = 0.0
	DefaultTone      = 0.5
	DefaultPresence  = 0.5

	driveRampSeconds     = 0.010
	tightnessRampSeconds = 0.005
	sagRampSeconds       = 0.005
)

// GateReader exposes the state and settings of the engine's noise gate
// without its setters. Use the Engine gate setters to change it.
type GateReader interface {
	Enabled() bool
	IsOpen() bool
	Envelope() float64
	CurrentGain() float64
	ClosedGain() float64
	Threshold() float64
	CloseThreshold() float64
	Attack() float64
	Release() float64
	Hysteresis() float64
	SidechainCutoff() float64
	Range() float64
	Ratio() float64
	GetMetrics() dynamics.GateMetrics
}

// Engine sequences gate, oversampling, waveshaper and tone stage for one
// multichannel stream and owns all of their state.
type Engine struct {
	cfg      core.ProcessorConfig
	prepared bool

	gate   *dynamics.Gate
	bank   *resample.Bank
	tone   *Tone
	states [core.MaxChannels]ChannelState
	chunk  [core.MaxChannels][]float64

	drive     float64
	tightness float64
	sag       float64
	circuit   Circuit
	osIndex   int

	driveSmooth     smooth.Value
	tightnessSmooth smooth.Value
	sagSmooth       smooth.Value
}

// NewEngine returns an unprepared engine with default controls, the
// Silicon circuit, the gate disabled and 2x oversampling selected.
func NewEngine() *Engine {
	gate, err := dynamics.NewGate(core.DefaultProcessorConfig().SampleRate, core.MaxChannels)
	if err != nil {
		panic(err) // default rate is valid
	}

	return &Engine{
		gate:      gate,
		tone:      NewTone(),
		drive:     DefaultDrive,
		tightness: DefaultTightness,
		sag:       DefaultSag,
		circuit:   Silicon,
	}
}

// Prepare allocates every oversampling variant and configures all stages
// for cfg. It is the only method that allocates.
func (e *Engine) Prepare(cfg core.ProcessorConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("fuzz: %w", err)
	}

	bank, err := resample.NewBank(cfg.Channels, cfg.BlockSize)
	if err != nil {
		return fmt.Errorf("fuzz: %w", err)
	}
	bank.Select(e.osIndex)

	if err := e.gate.SetSampleRate(cfg.SampleRate); err != nil {
		return fmt.Errorf("fuzz: %w", err)
	}

	e.cfg = cfg
	e.bank = bank
	e.tone.Prepare(cfg.SampleRate, cfg.Channels)
	e.applyOversampledRate()
	e.prepared = true

	return nil
}

// Prepared reports whether Prepare succeeded.
func (e *Engine) Prepared() bool { return e.prepared }

// Config returns the configuration passed to Prepare.
func (e *Engine) Config() core.ProcessorConfig { return e.cfg }

// applyOversampledRate re-derives everything that runs at the oversampled
// rate: the control smoothers and the per-channel waveshaper filters.
func (e *Engine) applyOversampledRate() {
	rate := e.OversampledRate()

	e.driveSmooth.Reset(rate, driveRampSeconds)
	e.tightnessSmooth.Reset(rate, tightnessRampSeconds)
	e.sagSmooth.Reset(rate, sagRampSeconds)
	e.driveSmooth.SetCurrentAndTarget(e.drive)
	e.tightnessSmooth.SetCurrentAndTarget(e.tightness)
	e.sagSmooth.SetCurrentAndTarget(e.sag)

	for ch := range e.states {
		e.states[ch].Prepare(rate)
	}
}

// Reset clears all filter memory, resets the gate to Closed and snaps the
// smoothed controls to their targets.
func (e *Engine) Reset() {
	if e.bank != nil {
		e.bank.Reset()
	}
	for ch := range e.states {
		e.states[ch].Reset()
	}
	e.gate.Reset()
	e.tone.Reset()

	e.driveSmooth.SetCurrentAndTarget(e.drive)
	e.tightnessSmooth.SetCurrentAndTarget(e.tightness)
	e.sagSmooth.SetCurrentAndTarget(e.sag)
}

// Process runs the fuzz chain over buf in place. At most the prepared
// number of channels is processed; blocks longer than the prepared block
// size are processed in chunks. NaN and infinite input samples are
// replaced with 0. Unprepared engines leave buf untouched.
func (e *Engine) Process(buf [][]float64) {
	if !e.prepared {
		return
	}

	chs := min(len(buf), e.cfg.Channels)
	n := core.NumFrames(buf[:chs])
	bs := e.cfg.BlockSize

	for off := 0; off < n; off += bs {
		end := min(off+bs, n)
		for ch := range chs {
			e.chunk[ch] = buf[ch][off:end]
		}
		e.processBlock(e.chunk[:chs])
	}
}

func (e *Engine) processBlock(buf [][]float64) {
	core.SanitizeChannels(buf)
	e.gate.ProcessInPlace(buf)

	up := e.bank.Up(buf)

	e.driveSmooth.SetTarget(e.drive)
	e.tightnessSmooth.SetTarget(e.tightness)
	e.sagSmooth.SetTarget(e.sag)

	circuit := e.circuit
	for ch, data := range up {
		st := &e.states[ch]
		for i, x := range data {
			var drive, tightness, sag float64
			// Channel 0 advances the shared ramps; the others read the
			// value channel 0 left behind.
			if ch == 0 {
				drive = e.driveSmooth.Next()
				tightness = e.tightnessSmooth.Next()
				sag = e.sagSmooth.Next()
			} else {
				drive = e.driveSmooth.Current()
				tightness = e.tightnessSmooth.Current()
				sag = e.sagSmooth.Current()
			}

			st.SetTightnessCutoff(TightnessCutoff(tightness))
			data[i] = ProcessSample(x, MapDrive(drive), circuit, sag, st) * OutputCompensation
		}
	}

	e.bank.Down(buf)
	e.tone.Apply(buf)
}

// Latency returns the active oversampler's round-trip delay in base-rate
// samples, or 0 before Prepare.
func (e *Engine) Latency() float64 {
	if e.bank == nil {
		return 0
	}
	return e.bank.Latency()
}

// LatencyAt returns the latency the engine would report with the given
// oversampling index selected, or 0 before Prepare.
func (e *Engine) LatencyAt(index int) float64 {
	if e.bank == nil {
		return 0
	}
	return e.bank.At(index).Latency()
}

// SetOversampling selects the oversampling factor by index into
// resample.Factors (clamped). On a change the previous oversampler's memory
// is cleared and all oversampled-rate state is re-derived. It reports
// whether the selection changed.
func (e *Engine) SetOversampling(index int) bool {
	index = resample.ClampIndex(index)
	if index == e.osIndex {
		return false
	}

	e.osIndex = index
	if e.bank != nil {
		e.bank.Select(index)
		e.applyOversampledRate()
	}

	return true
}

// OversamplingIndex returns the selected index into resample.Factors.
func (e *Engine) OversamplingIndex() int { return e.osIndex }

// OversamplingFactor returns the selected oversampling factor.
func (e *Engine) OversamplingFactor() int { return resample.Factors[e.osIndex] }

// OversampledRate returns the rate the waveshaper runs at.
func (e *Engine) OversampledRate() float64 {
	return e.cfg.SampleRate * float64(e.OversamplingFactor())
}

// SetDrive sets the normalized drive, clamped to [0, 1].
func (e *Engine) SetDrive(v float64) { e.drive = core.Clamp(v, 0, 1) }

// SetTightness sets the normalized tightness, clamped to [0, 1].
func (e *Engine) SetTightness(v float64) { e.tightness = core.Clamp(v, 0, 1) }

// SetSag sets the normalized sag amount, clamped to [0, 1].
func (e *Engine) SetSag(v float64) { e.sag = core.Clamp(v, 0, 1) }

// SetCircuit selects the clipping circuit. Unknown values select Silicon.
func (e *Engine) SetCircuit(c Circuit) { e.circuit = c.orDefault() }

// SetTone sets the normalized tone control, clamped to [0, 1].
func (e *Engine) SetTone(v float64) { e.tone.SetTone(v) }

// SetPresence sets the normalized presence control, clamped to [0, 1].
func (e *Engine) SetPresence(v float64) { e.tone.SetPresence(v) }

// Drive returns the normalized drive target.
func (e *Engine) Drive() float64 { return e.drive }

// Tightness returns the normalized tightness target.
func (e *Engine) Tightness() float64 { return e.tightness }

// Sag returns the normalized sag target.
func (e *Engine) Sag() float64 { return e.sag }

// Circuit returns the selected clipping circuit.
func (e *Engine) Circuit() Circuit { return e.circuit }

// Tone returns the normalized tone target.
func (e *Engine) Tone() float64 { return e.tone.ToneValue() }

// Presence returns the normalized presence target.
func (e *Engine) Presence() float64 { return e.tone.PresenceValue() }

// Gate returns a read-only view of the noise gate.
func (e *Engine) Gate() GateReader { return e.gate }

// Gate setters forward to the noise gate, which clamps each value.

func (e *Engine) SetGateEnabled(on bool)            { e.gate.SetEnabled(on) }
func (e *Engine) SetGateThreshold(dB float64)       { e.gate.SetThreshold(dB) }
func (e *Engine) SetGateAttack(ms float64)          { e.gate.SetAttack(ms) }
func (e *Engine) SetGateRelease(ms float64)         { e.gate.SetRelease(ms) }
func (e *Engine) SetGateHysteresis(dB float64)      { e.gate.SetHysteresis(dB) }
func (e *Engine) SetGateSidechainCutoff(hz float64) { e.gate.SetSidechainCutoff(hz) }
func (e *Engine) SetGateRange(dB float64)           { e.gate.SetRange(dB) }
func (e *Engine) SetGateRatio(ratio float64)        { e.gate.SetRatio(ratio) }
