package halfband

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoefficients is returned when allpass coefficients would make
// the filter unstable.
var ErrInvalidCoefficients = errors.New("halfband: invalid coefficients")

// DesignCoefficients computes polyphase allpass coefficients for the given
// number of coefficients and normalized transition bandwidth (relative to
// the high sample rate). The returned coefficients are ascending in [0, 1).
func DesignCoefficients(numberOfCoeffs int, transition float64) ([]float64, error) {
	if err := validateDesignParams(numberOfCoeffs, transition); err != nil {
		return nil, err
	}

	k, q := transitionParam(transition)
	order := numberOfCoeffs*2 + 1

	coeffs := make([]float64, numberOfCoeffs)
	for i := range numberOfCoeffs {
		coeffs[i] = coefficient(i, k, q, order)
	}

	return coeffs, nil
}

// Attenuation computes the stopband attenuation in dB reached by the given
// coefficient count and transition bandwidth.
func Attenuation(numberOfCoeffs int, transition float64) (float64, error) {
	if err := validateDesignParams(numberOfCoeffs, transition); err != nil {
		return 0, err
	}

	_, q := transitionParam(transition)
	order := numberOfCoeffs*2 + 1

	v := 4 * math.Exp(float64(order)*0.5*math.Log(q))
	return -10 * math.Log10(v/(1+v)), nil
}

func validateDesignParams(numberOfCoeffs int, transition float64) error {
	if numberOfCoeffs < 1 {
		return fmt.Errorf("halfband: number of coefficients must be >= 1: %d", numberOfCoeffs)
	}
	if math.IsNaN(transition) || transition <= 0 || transition >= 0.5 {
		return fmt.Errorf("halfband: transition must be in (0, 0.5): %g", transition)
	}

	return nil
}

func validateCoefficients(coeffs []float64) error {
	if len(coeffs) < 1 {
		return fmt.Errorf("%w: empty set", ErrInvalidCoefficients)
	}

	for i, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) || math.Abs(c) >= 1 {
			return fmt.Errorf("%w: coefficient[%d] = %g", ErrInvalidCoefficients, i, c)
		}
	}

	return nil
}

func transitionParam(transition float64) (k, q float64) {
	k = math.Pow(math.Tan((1-transition*2)*math.Pi*0.25), 2)
	kksqrt := math.Pow(1-k*k, 0.25)
	e := 0.5 * (1 - kksqrt) / (1 + kksqrt)
	e4 := e * e * e * e
	q = e * (1 + e4*(2+e4*(15+150*e4)))

	return k, q
}

func coefficient(index int, k, q float64, order int) float64 {
	c := float64(index + 1)
	num := thetaNum(q, order, c) * math.Pow(q, 0.25)
	den := thetaDen(q, order, c) + 0.5
	ww := (num * num) / (den * den)

	r := math.Sqrt((1-ww*k)*(1-ww/k)) / (1 + ww)
	return (1 - r) / (1 + r)
}

// thetaNum and thetaDen evaluate the Jacobi theta series of the elliptic
// design until the terms vanish.
func thetaNum(q float64, order int, c float64) float64 {
	result := 0.0
	sign := 1.0
	for i := 0; ; i++ {
		term := math.Pow(q, float64(i*(i+1))) * math.Sin(float64(i*2+1)*c*math.Pi/float64(order)) * sign
		result += term
		sign = -sign
		if math.Abs(term) <= 1e-100 {
			return result
		}
	}
}

func thetaDen(q float64, order int, c float64) float64 {
	result := 0.0
	sign := -1.0
	for i := 1; ; i++ {
		term := math.Pow(q, float64(i*i)) * math.Cos(2*float64(i)*c*math.Pi/float64(order)) * sign
		result += term
		sign = -sign
		if math.Abs(term) <= 1e-100 {
			return result
		}
	}
}
