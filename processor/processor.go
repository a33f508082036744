package processor

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/dsp/effects/dynamics"
	"github.com/cwbudde/algo-fuzz/dsp/effects/fuzz"
	"github.com/cwbudde/algo-fuzz/dsp/mix"
	"github.com/cwbudde/algo-fuzz/dsp/smooth"
	"github.com/cwbudde/algo-vecmath"
)

const gainRampSeconds = 0.005

var (
	// ErrNotPrepared is returned by operations that need a prepared processor.
	ErrNotPrepared = errors.New("processor: not prepared")
	// ErrUnsupportedLayout is returned by Prepare for layouts other than
	// mono and stereo.
	ErrUnsupportedLayout = errors.New("processor: unsupported channel layout")
)

// Meters holds levels of the most recent block.
type Meters struct {
	InputPeak     float64 // Peak of the block before input gain
	OutputPeak    float64 // Peak of the block after the limiter
	GainReduction float64 // Limiter gain at the end of the block (1 = none)
	GateOpen      bool
}

// Processor runs the complete fuzz pipeline on blocks of audio:
// input gain, dry capture, fuzz engine, latency-compensated dry/wet mix,
// output gain and a brickwall limiter at 0 dBFS.
//
// Prepare, Release and OnLatencyChange belong to the host's control
// thread and must not run concurrently with Process. Control values are
// exchanged through Params, which is safe from any goroutine, and Meters
// may be read while Process runs.
type Processor struct {
	params *Params
	ready  atomic.Bool

	cfg     core.ProcessorConfig
	engine  *fuzz.Engine
	mixer   *mix.DryWet
	limiter *dynamics.Limiter

	inGain  smooth.Value
	outGain smooth.Value
	gains   []float64
	chunk   [core.MaxChannels][]float64

	applied   Values
	latency   float64
	onLatency func(int)

	inPeak    atomic.Uint64
	outPeak   atomic.Uint64
	reduction atomic.Uint64
	gateOpen  atomic.Bool
}

// New returns an unprepared processor reading params. A nil params gets
// a fresh default set.
func New(params *Params) *Processor {
	if params == nil {
		params = NewParams()
	}
	p := &Processor{params: params}
	p.reduction.Store(math.Float64bits(1))
	return p
}

// Params returns the control values the processor reads.
func (p *Processor) Params() *Params { return p.params }

// Prepare allocates all processing state for the given stream format.
// Only mono and stereo layouts are accepted. Process emits silence until
// Prepare succeeds.
func (p *Processor) Prepare(sampleRate float64, maxBlock, channels int) error {
	p.ready.Store(false)

	if channels != 1 && channels != 2 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, channels)
	}

	cfg := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: maxBlock, Channels: channels}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("processor: %w", err)
	}

	v := p.params.Snapshot()

	engine := fuzz.NewEngine()
	p.engine = engine
	p.configureEngine(v, true)
	if err := engine.Prepare(cfg); err != nil {
		return fmt.Errorf("processor: %w", err)
	}

	mixer, err := mix.NewDryWet(sampleRate, channels, maxBlock, mix.DefaultMaxLatency)
	if err != nil {
		return fmt.Errorf("processor: %w", err)
	}
	limiter, err := dynamics.NewLimiter(sampleRate)
	if err != nil {
		return fmt.Errorf("processor: %w", err)
	}

	p.cfg = cfg
	p.mixer = mixer
	p.limiter = limiter
	p.gains = make([]float64, maxBlock)

	p.inGain.Reset(sampleRate, gainRampSeconds)
	p.outGain.Reset(sampleRate, gainRampSeconds)
	p.inGain.SetCurrentAndTarget(core.DBToLinear(v[InputGain]))
	p.outGain.SetCurrentAndTarget(core.DBToLinear(v[OutputGain]))
	p.mixer.SetMix(v[Mix])
	p.mixer.Reset()
	p.applied = v

	p.storeMeters(0, 0)
	p.announceLatency()
	p.ready.Store(true)

	return nil
}

// Release stops processing. Process emits silence until the next Prepare.
func (p *Processor) Release() {
	p.ready.Store(false)
}

// Prepared reports whether Process runs the pipeline.
func (p *Processor) Prepared() bool { return p.ready.Load() }

// Reset clears all processing state of a prepared processor.
func (p *Processor) Reset() error {
	if !p.ready.Load() {
		return ErrNotPrepared
	}
	p.engine.Reset()
	p.mixer.Reset()
	p.limiter.Reset()
	p.inGain.SetCurrentAndTarget(p.inGain.Target())
	p.outGain.SetCurrentAndTarget(p.outGain.Target())
	return nil
}

// OnLatencyChange registers fn to receive the reported latency in whole
// samples. It is called from Prepare and, when the oversampling rate
// changes, from Process before the block is processed.
func (p *Processor) OnLatencyChange(fn func(samples int)) {
	p.onLatency = fn
}

// Latency returns the processing latency in whole base-rate samples, as
// reported to the host.
func (p *Processor) Latency() int {
	return int(math.Round(p.latency))
}

// LatencySamples returns the exact fractional latency the dry path is
// delayed by.
func (p *Processor) LatencySamples() float64 { return p.latency }

// Config returns the prepared stream format.
func (p *Processor) Config() core.ProcessorConfig { return p.cfg }

// Engine exposes the fuzz engine for inspection. Control changes must go
// through Params; direct engine setters are overwritten on the next block.
func (p *Processor) Engine() *fuzz.Engine { return p.engine }

// Meters returns the levels of the most recent block.
func (p *Processor) Meters() Meters {
	return Meters{
		InputPeak:     math.Float64frombits(p.inPeak.Load()),
		OutputPeak:    math.Float64frombits(p.outPeak.Load()),
		GainReduction: math.Float64frombits(p.reduction.Load()),
		GateOpen:      p.gateOpen.Load(),
	}
}

// Process runs the pipeline over buf in place. Non-finite input samples
// are replaced with silence before any filter sees them. Channels beyond
// the prepared layout are cleared, and an unprepared processor clears all
// of buf. Blocks longer than the prepared maximum are processed in chunks.
func (p *Processor) Process(buf [][]float64) {
	if !p.ready.Load() {
		core.ZeroChannels(buf)
		return
	}

	p.applyParams(p.params.Snapshot())

	chs := min(len(buf), p.cfg.Channels)
	n := core.NumFrames(buf[:chs])
	for ch := range chs {
		core.Sanitize(buf[ch][:n])
	}
	inPeak := peak(buf[:chs], n)

	for off := 0; off < n; off += p.cfg.BlockSize {
		end := min(off+p.cfg.BlockSize, n)
		chunk := p.chunk[:chs]
		for ch := range chunk {
			chunk[ch] = buf[ch][off:end]
		}
		p.processChunk(chunk)
	}
	for ch := range p.chunk {
		p.chunk[ch] = nil
	}

	for ch := chs; ch < len(buf); ch++ {
		core.Zero(buf[ch])
	}

	p.storeMeters(inPeak, peak(buf[:chs], n))
}

func (p *Processor) processChunk(buf [][]float64) {
	applyGain(&p.inGain, buf, p.gains)
	p.mixer.PushDry(buf)
	p.engine.Process(buf)
	p.mixer.MixWet(buf)
	applyGain(&p.outGain, buf, p.gains)
	p.limiter.ProcessInPlace(buf)
}

// applyParams forwards changed control values to the pipeline stages.
func (p *Processor) applyParams(v Values) {
	p.configureEngine(v, false)
	if v[Oversampling] != p.applied[Oversampling] {
		if p.engine.SetOversampling(v.Int(Oversampling)) {
			p.announceLatency()
		}
	}
	if v[InputGain] != p.applied[InputGain] {
		p.inGain.SetTarget(core.DBToLinear(v[InputGain]))
	}
	if v[OutputGain] != p.applied[OutputGain] {
		p.outGain.SetTarget(core.DBToLinear(v[OutputGain]))
	}
	if v[Mix] != p.applied[Mix] {
		p.mixer.SetMix(v[Mix])
	}
	p.applied = v
}

// configureEngine sets engine controls that differ from the last applied
// values, or all of them when force is set.
func (p *Processor) configureEngine(v Values, force bool) {
	e := p.engine
	changed := func(id ID) bool { return force || v[id] != p.applied[id] }

	if changed(Drive) {
		e.SetDrive(v[Drive])
	}
	if changed(Circuit) {
		e.SetCircuit(fuzz.Circuit(v.Int(Circuit)))
	}
	if changed(Tightness) {
		e.SetTightness(v[Tightness])
	}
	if changed(Sag) {
		e.SetSag(v[Sag])
	}
	if changed(Tone) {
		e.SetTone(v[Tone])
	}
	if changed(Presence) {
		e.SetPresence(v[Presence])
	}
	if force {
		e.SetOversampling(v.Int(Oversampling))
	}
	if changed(GateEnabled) {
		e.SetGateEnabled(v.Bool(GateEnabled))
	}
	if changed(GateThreshold) {
		e.SetGateThreshold(v[GateThreshold])
	}
	if changed(GateAttack) {
		e.SetGateAttack(v[GateAttack])
	}
	if changed(GateRelease) {
		e.SetGateRelease(v[GateRelease])
	}
	if changed(GateHysteresis) {
		e.SetGateHysteresis(v[GateHysteresis])
	}
	if changed(GateSidechain) {
		e.SetGateSidechainCutoff(v[GateSidechain])
	}
	if changed(GateRange) {
		e.SetGateRange(v[GateRange])
	}
	if changed(GateRatio) {
		e.SetGateRatio(v[GateRatio])
	}
}

// announceLatency aligns the dry path with the engine latency and tells
// the host.
func (p *Processor) announceLatency() {
	p.latency = p.engine.Latency()
	if p.mixer != nil {
		p.mixer.SetWetLatency(p.latency)
	}
	if p.onLatency != nil {
		p.onLatency(p.Latency())
	}
}

func (p *Processor) storeMeters(inPeak, outPeak float64) {
	p.inPeak.Store(math.Float64bits(inPeak))
	p.outPeak.Store(math.Float64bits(outPeak))
	gr := 1.0
	if p.limiter != nil {
		gr = p.limiter.GainReduction()
	}
	p.reduction.Store(math.Float64bits(gr))
	p.gateOpen.Store(p.engine != nil && p.engine.Gate().IsOpen())
}

// applyGain multiplies buf by the smoothed gain, sample by sample while
// the gain ramps and with a single scale afterwards.
func applyGain(g *smooth.Value, buf [][]float64, scratch []float64) {
	n := core.NumFrames(buf)
	if n == 0 {
		return
	}

	if !g.IsSmoothing() {
		gain := g.Current()
		if gain == 1 {
			return
		}
		for ch := range buf {
			vecmath.ScaleBlock(buf[ch][:n], buf[ch][:n], gain)
		}
		return
	}

	gains := scratch[:n]
	for i := range gains {
		gains[i] = g.Next()
	}
	for ch := range buf {
		vecmath.MulBlockInPlace(buf[ch][:n], gains)
	}
}

func peak(buf [][]float64, n int) float64 {
	var m float64
	for _, ch := range buf {
		for _, x := range ch[:n] {
			if a := math.Abs(x); a > m {
				m = a
			}
		}
	}
	return m
}
