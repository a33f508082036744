package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fuzz/dsp/interp"
)

// Line is a circular delay line. Read(0) returns the most recently written
// sample.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the interpolation used by ReadFractional.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) { d.mode = mode }
}

// New returns a delay line of fixed size.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	d := &Line{buffer: make([]float64, size), mode: interp.Hermite}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the largest fractional delay ReadFractional supports.
func (d *Line) MaxDelay() float64 {
	return float64(max(len(d.buffer)-3, 0))
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
	d.buffer[d.writePos] = sample
}

// Read reads the sample written delay writes ago. Delays are wrapped into
// the buffer length.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := (d.writePos - delay%size + size) % size
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay clamped to [0, MaxDelay].
func (d *Line) ReadFractional(delay float64) float64 {
	if delay < 0 || math.IsNaN(delay) {
		delay = 0
	}
	if maxDelay := d.MaxDelay(); delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)

	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	if d.mode == interp.Linear {
		return interp.Linear2(t, x0, x1)
	}

	xm1 := d.Read(max(0, p-1))
	x2 := d.Read(p + 2)
	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
