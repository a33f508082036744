// Package thd measures harmonic distortion of a rendered test tone.
package thd

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fuzz/dsp/window"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
)

// ErrEmptySignal is returned when there is nothing to analyze.
var ErrEmptySignal = errors.New("thd: empty signal")

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// FFTSize is rounded up to a power of two; 0 uses the signal length.
	FFTSize int
	// FundamentalFreq pins the fundamental; 0 searches the strongest bin
	// inside the analysis range.
	FundamentalFreq float64
	RangeLowerFreq  float64
	RangeUpperFreq  float64
	// WindowType selects the analysis window; the zero value is Hann.
	WindowType window.Type
	// CaptureBins is the number of bins on each side of a peak summed into
	// its level. 0 uses the window's main-lobe half width.
	CaptureBins int
	// MaxHarmonics limits the harmonics evaluated; 0 means all in range.
	MaxHarmonics int
}

// Result holds harmonic levels relative to the fundamental. THD, OddHD and
// EvenHD are root-sum-square ratios.
type Result struct {
	FundamentalFreq  float64
	FundamentalLevel float64
	THD              float64
	OddHD            float64
	EvenHD           float64
	// Harmonics[i] is the level of harmonic i+2 relative to the fundamental.
	Harmonics []float64
}

// THDdB returns THD in dB, -Inf for a pure tone.
func (r Result) THDdB() float64 { return ratioToDB(r.THD) }

// Harmonic returns the relative level of harmonic k (k >= 2), or 0 when it
// was not evaluated.
func (r Result) Harmonic(k int) float64 {
	if k < 2 || k-2 >= len(r.Harmonics) {
		return 0
	}
	return r.Harmonics[k-2]
}

// Analyzer owns an FFT plan, an analysis window and scratch buffers for
// one FFT size so repeated analyses do not allocate per call beyond the result.
type Analyzer struct {
	cfg    Config
	size   int
	plan   *algofft.Plan[complex128]
	window []float64
	frame  []float64
	in     []complex128
	out    []complex128
	power  []float64
}

// NewAnalyzer prepares an analyzer for signals of up to cfg.FFTSize samples.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.FFTSize <= 1 {
		return nil, fmt.Errorf("thd: fft size must be > 1: %d", cfg.FFTSize)
	}
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("thd: sample rate must be positive and finite: %f", cfg.SampleRate)
	}

	cfg = normalizeConfig(cfg)
	size := nextPowerOf2(cfg.FFTSize)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("thd: %w", err)
	}

	return &Analyzer{
		cfg:   cfg,
		size:  size,
		plan:  plan,
		frame: make([]float64, size),
		in:    make([]complex128, size),
		out:   make([]complex128, size),
		power: make([]float64, size/2+1),
	}, nil
}

// Analyze is a one-shot analysis of signal.
func Analyze(signal []float64, cfg Config) (Result, error) {
	if len(signal) == 0 {
		return Result{}, ErrEmptySignal
	}
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = len(signal)
	}

	a, err := NewAnalyzer(cfg)
	if err != nil {
		return Result{}, err
	}

	return a.Analyze(signal)
}

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// Analyze windows the first Size() samples of signal (zero-padded when
// shorter), transforms them and evaluates the harmonic series.
func (a *Analyzer) Analyze(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, ErrEmptySignal
	}

	n := min(len(signal), a.size)
	if len(a.window) != n {
		a.window = window.Generate(a.cfg.WindowType, n)
	}

	clear(a.frame)
	vecmath.MulBlock(a.frame[:n], signal[:n], a.window)

	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return Result{}, fmt.Errorf("thd: %w", err)
	}

	for i := range a.power {
		re, im := real(a.out[i]), imag(a.out[i])
		a.power[i] = re*re + im*im
	}

	return a.evaluate(a.power), nil
}

// evaluate computes the harmonic series from a one-sided power spectrum.
func (a *Analyzer) evaluate(power []float64) Result {
	cfg := a.cfg
	maxBin := len(power) - 1
	binHz := cfg.SampleRate / float64(a.size)

	lower := clampInt(int(math.Round(cfg.RangeLowerFreq/binHz)), 1, maxBin)
	upper := clampInt(int(math.Round(cfg.RangeUpperFreq/binHz)), lower, maxBin)

	fund := lower
	if cfg.FundamentalFreq > 0 {
		fund = clampInt(int(math.Round(cfg.FundamentalFreq/binHz)), lower, upper)
	} else {
		for i := lower + 1; i <= upper; i++ {
			if power[i] > power[fund] {
				fund = i
			}
		}
	}

	capture := cfg.CaptureBins
	if capture == 0 {
		capture = window.Info(cfg.WindowType).FirstMinimumBins
	}
	capture = min(capture, fund/2)

	fundLevel := bandLevel(power, fund, capture)
	res := Result{FundamentalFreq: float64(fund) * binHz, FundamentalLevel: fundLevel}
	if fundLevel <= 0 {
		return res
	}

	var total, odd, even float64
	for k := 2; k*fund <= upper; k++ {
		if cfg.MaxHarmonics > 0 && k-1 > cfg.MaxHarmonics {
			break
		}

		rel := bandLevel(power, k*fund, capture) / fundLevel
		res.Harmonics = append(res.Harmonics, rel)

		total += rel * rel
		if k%2 == 0 {
			even += rel * rel
		} else {
			odd += rel * rel
		}
	}

	res.THD = math.Sqrt(total)
	res.OddHD = math.Sqrt(odd)
	res.EvenHD = math.Sqrt(even)

	return res
}

// bandLevel returns the amplitude collected in bins [bin-capture, bin+capture].
func bandLevel(power []float64, bin, capture int) float64 {
	lo := max(bin-capture, 0)
	hi := min(bin+capture, len(power)-1)

	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += power[i]
	}

	return math.Sqrt(sum)
}

func normalizeConfig(cfg Config) Config {
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}
	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = math.Min(defaultRangeUpperHz, cfg.SampleRate/2)
	}
	if cfg.RangeUpperFreq < cfg.RangeLowerFreq {
		cfg.RangeUpperFreq = cfg.RangeLowerFreq
	}
	cfg.CaptureBins = max(cfg.CaptureBins, 0)
	cfg.MaxHarmonics = max(cfg.MaxHarmonics, 0)

	return cfg
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

func clampInt(val, lo, hi int) int {
	return max(lo, min(val, hi))
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
