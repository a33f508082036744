package halfband

import "fmt"

// Upsampler doubles the sample rate of a single channel.
type Upsampler struct {
	coeffs []float64
	p0, p1 allpassPath
}

// NewUpsampler creates an upsampler from explicit allpass coefficients.
func NewUpsampler(coeffs []float64) (*Upsampler, error) {
	if err := validateCoefficients(coeffs); err != nil {
		return nil, err
	}

	u := &Upsampler{coeffs: append([]float64(nil), coeffs...)}
	u.p0, u.p1 = splitPaths(u.coeffs)

	return u, nil
}

// NewUpsamplerPreset creates an upsampler using a preset profile.
func NewUpsamplerPreset(preset Preset) (*Upsampler, error) {
	coeffs, err := DesignPreset(preset)
	if err != nil {
		return nil, err
	}

	return NewUpsampler(coeffs)
}

// ProcessSample consumes one low-rate sample and returns the two
// corresponding high-rate samples in time order.
func (u *Upsampler) ProcessSample(x float64) (first, second float64) {
	return u.p0.process(x), u.p1.process(x)
}

// ProcessBlock upsamples src into dst, which must hold 2*len(src) samples.
func (u *Upsampler) ProcessBlock(dst, src []float64) error {
	if len(dst) < 2*len(src) {
		return fmt.Errorf("halfband: upsampler dst length %d < %d", len(dst), 2*len(src))
	}

	for i, x := range src {
		dst[2*i] = u.p0.process(x)
		dst[2*i+1] = u.p1.process(x)
	}

	u.p0.flushDenormals()
	u.p1.flushDenormals()

	return nil
}

// Reset clears the filter memory.
func (u *Upsampler) Reset() {
	u.p0.reset()
	u.p1.reset()
}

// Coefficients returns a copy of the allpass coefficients.
func (u *Upsampler) Coefficients() []float64 {
	return append([]float64(nil), u.coeffs...)
}

// GroupDelay returns the DC group delay in high-rate samples.
func (u *Upsampler) GroupDelay() float64 {
	return filterDelay(&u.p0, &u.p1)
}
