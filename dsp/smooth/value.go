package smooth

import "math"

// Value is a linearly ramped control value.
//
// The zero value has a ramp length of zero steps, so targets take effect
// immediately until Reset is called with a positive ramp time.
type Value struct {
	current   float64
	target    float64
	step      float64
	steps     int
	countdown int
}

// New returns a Value that starts at initial with the given ramp.
func New(initial, sampleRate, rampSeconds float64) *Value {
	v := &Value{}
	v.SetCurrentAndTarget(initial)
	v.Reset(sampleRate, rampSeconds)
	return v
}

// Reset derives the ramp length from sampleRate and rampSeconds and snaps
// the current value to the target.
func (v *Value) Reset(sampleRate, rampSeconds float64) {
	steps := 0
	if sampleRate > 0 && rampSeconds > 0 {
		steps = int(math.Floor(rampSeconds * sampleRate))
	}
	v.steps = steps
	v.SetCurrentAndTarget(v.target)
}

// SetCurrentAndTarget jumps to value without ramping.
func (v *Value) SetCurrentAndTarget(value float64) {
	v.current = value
	v.target = value
	v.step = 0
	v.countdown = 0
}

// SetTarget starts a new ramp from the current value towards target.
// Setting the same target again does not restart the ramp.
func (v *Value) SetTarget(target float64) {
	if target == v.target {
		return
	}

	if v.steps <= 0 {
		v.SetCurrentAndTarget(target)
		return
	}

	v.target = target
	v.countdown = v.steps
	v.step = (v.target - v.current) / float64(v.countdown)
}

// Next advances the ramp by one step and returns the new current value.
func (v *Value) Next() float64 {
	if v.countdown <= 0 {
		return v.target
	}

	v.countdown--
	if v.countdown > 0 {
		v.current += v.step
	} else {
		v.current = v.target
	}

	return v.current
}

// Skip advances the ramp by n steps and returns the new current value.
func (v *Value) Skip(n int) float64 {
	if n <= 0 {
		return v.current
	}

	if n >= v.countdown {
		v.countdown = 0
		v.current = v.target
		return v.target
	}

	v.current += v.step * float64(n)
	v.countdown -= n
	return v.current
}

// Current returns the value without advancing the ramp.
func (v *Value) Current() float64 { return v.current }

// Target returns the value the ramp is heading towards.
func (v *Value) Target() float64 { return v.target }

// IsSmoothing reports whether a ramp is still in progress.
func (v *Value) IsSmoothing() bool { return v.countdown > 0 }

// RampSteps returns the number of steps a full ramp takes.
func (v *Value) RampSteps() int { return v.steps }
