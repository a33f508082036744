package halfband

// allpassPath is a cascade of first-order allpass sections
// y = c*(x - y1) + x1 evaluated at the low rate.
type allpassPath struct {
	coeffs []float64
	x      []float64
	y      []float64
}

func newAllpassPath(coeffs []float64) allpassPath {
	return allpassPath{
		coeffs: coeffs,
		x:      make([]float64, len(coeffs)),
		y:      make([]float64, len(coeffs)),
	}
}

func (p *allpassPath) process(in float64) float64 {
	for i, c := range p.coeffs {
		out := (in-p.y[i])*c + p.x[i]
		p.x[i] = in
		p.y[i] = out
		in = out
	}

	return in
}

func (p *allpassPath) reset() {
	clear(p.x)
	clear(p.y)
}

func (p *allpassPath) flushDenormals() {
	for i := range p.y {
		if v := p.y[i]; v > -1e-30 && v < 1e-30 {
			p.y[i] = 0
		}
		if v := p.x[i]; v > -1e-30 && v < 1e-30 {
			p.x[i] = 0
		}
	}
}

// delay returns the DC group delay of the path in high-rate samples.
// A first-order allpass at the low rate delays DC by (1-c)/(1+c) samples.
func (p *allpassPath) delay() float64 {
	d := 0.0
	for _, c := range p.coeffs {
		d += 2 * (1 - c) / (1 + c)
	}
	return d
}

// splitPaths distributes coefficients onto the two polyphase branches.
func splitPaths(coeffs []float64) (allpassPath, allpassPath) {
	var even, odd []float64
	for i, c := range coeffs {
		if i%2 == 0 {
			even = append(even, c)
		} else {
			odd = append(odd, c)
		}
	}

	return newAllpassPath(even), newAllpassPath(odd)
}

// filterDelay is the DC group delay of H(z) in high-rate samples: the
// average of both branch delays, where the odd branch carries the extra
// z^-1.
func filterDelay(p0, p1 *allpassPath) float64 {
	return 0.5 * (p0.delay() + p1.delay() + 1)
}
