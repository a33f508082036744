// Package window generates cosine-sum analysis windows for spectral
// measurements.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeHann Type = iota
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
	TypeRectangular
)

// Metadata holds spectral properties of a window type.
type Metadata struct {
	Name string
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
	// CoherentGain is the mean of the window.
	CoherentGain float64
	// FirstMinimumBins is the main-lobe half width in bins.
	FirstMinimumBins int
}

type entry struct {
	meta   Metadata
	coeffs []float64
}

var table = map[Type]entry{
	TypeHann:                {Metadata{"Hann", 1.5, 0.5, 2}, []float64{0.5, -0.5}},
	TypeHamming:             {Metadata{"Hamming", 1.3628, 0.54, 2}, []float64{0.54, -0.46}},
	TypeBlackman:            {Metadata{"Blackman", 1.7268, 0.42, 3}, []float64{0.42, -0.5, 0.08}},
	TypeBlackmanHarris4Term: {Metadata{"Blackman-Harris", 2.0044, 0.35875, 4}, []float64{0.35875, -0.48829, 0.14128, -0.01168}},
	TypeFlatTop:             {Metadata{"Flat top", 3.7702, 0.21557895, 5}, []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}},
	TypeRectangular:         {Metadata{"Rectangular", 1, 1, 1}, []float64{1}},
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic generates the DFT-even (periodic) form used for overlapping
// frames instead of the symmetric form.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns length coefficients of window t. Unknown types yield a
// rectangular window; a non-positive length yields nil.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e, ok := table[t]
	if !ok {
		e = table[TypeRectangular]
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = cosineSum(samplePosition(i, length, cfg.periodic), e.coeffs)
	}

	return out
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// Info returns static metadata for a window type.
func Info(t Type) Metadata {
	return table[t].meta
}

// String returns the window name.
func (t Type) String() string {
	if e, ok := table[t]; ok {
		return e.meta.Name
	}
	return "Unknown"
}

func cosineSum(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
