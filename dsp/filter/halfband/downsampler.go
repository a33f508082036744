package halfband

import "fmt"

// Downsampler halves the sample rate of a single channel.
type Downsampler struct {
	coeffs []float64
	p0, p1 allpassPath
}

// NewDownsampler creates a downsampler from explicit allpass coefficients.
func NewDownsampler(coeffs []float64) (*Downsampler, error) {
	if err := validateCoefficients(coeffs); err != nil {
		return nil, err
	}

	d := &Downsampler{coeffs: append([]float64(nil), coeffs...)}
	d.p0, d.p1 = splitPaths(d.coeffs)

	return d, nil
}

// NewDownsamplerPreset creates a downsampler using a preset profile.
func NewDownsamplerPreset(preset Preset) (*Downsampler, error) {
	coeffs, err := DesignPreset(preset)
	if err != nil {
		return nil, err
	}

	return NewDownsampler(coeffs)
}

// ProcessSample consumes two consecutive high-rate samples and returns one
// low-rate sample.
func (d *Downsampler) ProcessSample(first, second float64) float64 {
	return 0.5 * (d.p0.process(second) + d.p1.process(first))
}

// ProcessBlock decimates src into dst. src must hold 2*len(dst) samples.
func (d *Downsampler) ProcessBlock(dst, src []float64) error {
	if len(src) < 2*len(dst) {
		return fmt.Errorf("halfband: downsampler src length %d < %d", len(src), 2*len(dst))
	}

	for i := range dst {
		dst[i] = 0.5 * (d.p0.process(src[2*i+1]) + d.p1.process(src[2*i]))
	}

	d.p0.flushDenormals()
	d.p1.flushDenormals()

	return nil
}

// Reset clears the filter memory.
func (d *Downsampler) Reset() {
	d.p0.reset()
	d.p1.reset()
}

// GroupDelay returns the DC group delay in high-rate samples, measured
// from the first sample of each input pair.
func (d *Downsampler) GroupDelay() float64 {
	return filterDelay(&d.p0, &d.p1) - 1
}
