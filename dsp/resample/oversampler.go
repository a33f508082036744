package resample

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-fuzz/dsp/filter/halfband"
)

var (
	// ErrInvalidStages indicates an unsupported number of 2x stages.
	ErrInvalidStages = errors.New("resample: invalid stage count")
	// ErrInvalidLayout indicates an invalid channel count or block size.
	ErrInvalidLayout = errors.New("resample: invalid channel layout")
)

// MaxStages is the largest supported number of cascaded 2x stages.
const MaxStages = 3

type config struct {
	firstStage halfband.Preset
	laterStage halfband.Preset
}

// Option configures an Oversampler.
type Option func(*config)

// WithFirstStagePreset selects the design of the stage adjacent to the base
// rate. Default is halfband.PresetSteep.
func WithFirstStagePreset(p halfband.Preset) Option {
	return func(cfg *config) { cfg.firstStage = p }
}

// WithLaterStagePreset selects the design of all stages after the first.
// Default is halfband.PresetFast.
func WithLaterStagePreset(p halfband.Preset) Option {
	return func(cfg *config) { cfg.laterStage = p }
}

// Oversampler converts planar multichannel blocks to 2^stages times the
// base rate and back.
type Oversampler struct {
	stages   int
	factor   int
	channels int
	maxBlock int

	up   [][]*halfband.Upsampler   // [channel][stage]
	down [][]*halfband.Downsampler // [channel][stage]

	bufs    [][][]float64 // [stage][channel], stage s holds maxBlock*2^(s+1)
	view    [][]float64
	frames  int
	latency float64
}

// NewOversampler creates an oversampler with the given number of 2x stages.
func NewOversampler(stages, channels, maxBlock int, opts ...Option) (*Oversampler, error) {
	if stages < 1 || stages > MaxStages {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStages, stages)
	}
	if channels < 1 || maxBlock < 1 {
		return nil, fmt.Errorf("%w: channels=%d maxBlock=%d", ErrInvalidLayout, channels, maxBlock)
	}

	cfg := config{firstStage: halfband.PresetSteep, laterStage: halfband.PresetFast}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	coeffs := make([][]float64, stages)
	for s := range coeffs {
		preset := cfg.laterStage
		if s == 0 {
			preset = cfg.firstStage
		}

		c, err := halfband.DesignPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("resample: stage %d: %w", s, err)
		}
		coeffs[s] = c
	}

	o := &Oversampler{
		stages:   stages,
		factor:   1 << stages,
		channels: channels,
		maxBlock: maxBlock,
		up:       make([][]*halfband.Upsampler, channels),
		down:     make([][]*halfband.Downsampler, channels),
		bufs:     make([][][]float64, stages),
		view:     make([][]float64, channels),
	}

	for ch := range channels {
		o.up[ch] = make([]*halfband.Upsampler, stages)
		o.down[ch] = make([]*halfband.Downsampler, stages)
		for s := range stages {
			u, err := halfband.NewUpsampler(coeffs[s])
			if err != nil {
				return nil, err
			}
			d, err := halfband.NewDownsampler(coeffs[s])
			if err != nil {
				return nil, err
			}
			o.up[ch][s] = u
			o.down[ch][s] = d
		}
	}

	for s := range stages {
		o.bufs[s] = make([][]float64, channels)
		for ch := range channels {
			o.bufs[s][ch] = make([]float64, maxBlock<<(s+1))
		}
	}

	o.latency = o.computeLatency()

	return o, nil
}

// computeLatency sums the up and down delays of each stage, each scaled
// from its own rate back to the base rate.
func (o *Oversampler) computeLatency() float64 {
	total := 0.0
	for s := range o.stages {
		stageDelay := o.up[0][s].GroupDelay() + o.down[0][s].GroupDelay()
		total += stageDelay / float64(int(1)<<(s+1))
	}
	return total
}

// Up oversamples in and returns views of the internal high-rate buffers,
// one per processed channel. At most Channels() channels and MaxBlock()
// frames are processed; the views stay valid until the next call to Up.
func (o *Oversampler) Up(in [][]float64) [][]float64 {
	chs := min(len(in), o.channels)
	n := o.maxBlock
	for ch := range chs {
		n = min(n, len(in[ch]))
	}
	if chs == 0 {
		n = 0
	}
	o.frames = n

	for ch := range chs {
		src := in[ch][:n]
		for s := range o.stages {
			dst := o.bufs[s][ch][:len(src)*2]
			// dst is sliced to exactly 2*len(src); the length error cannot occur.
			_ = o.up[ch][s].ProcessBlock(dst, src)
			src = dst
		}
		o.view[ch] = src
	}

	return o.view[:chs]
}

// Down decimates the high-rate buffers filled by the preceding Up (and
// modified in place by the caller) back into out.
func (o *Oversampler) Down(out [][]float64) {
	chs := min(len(out), o.channels)
	n := o.frames

	for ch := range chs {
		if len(out[ch]) < n {
			continue
		}
		for s := o.stages - 1; s >= 0; s-- {
			src := o.bufs[s][ch][:n<<(s+1)]
			var dst []float64
			if s == 0 {
				dst = out[ch][:n]
			} else {
				dst = o.bufs[s-1][ch][:n<<s]
			}
			// src holds exactly 2*len(dst) samples; the length error cannot occur.
			_ = o.down[ch][s].ProcessBlock(dst, src)
		}
	}
}

// Reset clears all filter memory.
func (o *Oversampler) Reset() {
	for ch := range o.channels {
		for s := range o.stages {
			o.up[ch][s].Reset()
			o.down[ch][s].Reset()
		}
	}
}

// Latency returns the round-trip group delay in base-rate samples.
func (o *Oversampler) Latency() float64 { return o.latency }

// Factor returns the oversampling factor 2^stages.
func (o *Oversampler) Factor() int { return o.factor }

// Channels returns the number of channels the oversampler keeps state for.
func (o *Oversampler) Channels() int { return o.channels }

// MaxBlock returns the maximum number of base-rate frames per call.
func (o *Oversampler) MaxBlock() int { return o.maxBlock }
