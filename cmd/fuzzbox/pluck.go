package main

import (
	"math/rand"
)

// pluck is a Karplus-Strong string re-plucked at a fixed interval.
type pluck struct {
	line     []float64
	pos      int
	interval int
	left     int
	level    float64
	damping  float64
	rng      *rand.Rand
}

func newPluck(rate, hz, perMinute, level float64, seed int64) *pluck {
	period := max(2, int(rate/max(hz, 1)))
	interval := max(1, int(rate*60/max(perMinute, 1)))
	return &pluck{
		line:     make([]float64, period),
		interval: interval,
		level:    level,
		damping:  0.996,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Render writes the next len(out) samples.
func (p *pluck) Render(out []float64) {
	n := len(p.line)
	for i := range out {
		if p.left <= 0 {
			p.excite()
			p.left = p.interval
		}
		p.left--

		cur := p.line[p.pos]
		next := p.line[(p.pos+1)%n]
		p.line[p.pos] = p.damping * 0.5 * (cur + next)
		p.pos = (p.pos + 1) % n
		out[i] = cur
	}
}

func (p *pluck) excite() {
	for i := range p.line {
		p.line[i] = p.level * (2*p.rng.Float64() - 1)
	}
}
