package fuzz

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownCircuit is returned by ParseCircuit for names that match no
// clipping circuit.
var ErrUnknownCircuit = errors.New("fuzz: unknown circuit")

// Circuit selects the clipping transfer function.
type Circuit int

const (
	// Silicon hard-clips at ±0.6.
	Silicon Circuit = iota
	// Germanium soft-clips a signal biased by the input envelope.
	Germanium
	// LED hard-clips at ±1.7.
	LED
	// MOSFET saturates with tanh.
	MOSFET
	// Asymmetric clips at +0.6/-0.3 and adds a small envelope bias.
	Asymmetric
	// OpAmp is a cubic soft clip.
	OpAmp
	// Foldback folds everything beyond ±1 back into range.
	Foldback
	// Rectifier is a half-wave rectifier rescaled to [-1, 1].
	Rectifier

	numCircuits
)

const (
	siliconThreshold = 0.6
	ledThreshold     = 1.7
	asymPositive     = 0.6
	asymNegative     = 0.3

	germaniumBias  = 0.8
	asymmetricBias = 0.15

	envelopeAttack  = 0.01
	envelopeRelease = 0.001
)

var circuitNames = [numCircuits]string{
	"Silicon", "Germanium", "LED", "MOSFET",
	"Asymmetric", "Op-amp", "Foldback", "Rectifier",
}

// Circuits returns all clipping circuits in selector order.
func Circuits() []Circuit {
	out := make([]Circuit, numCircuits)
	for i := range out {
		out[i] = Circuit(i)
	}
	return out
}

// Valid reports whether c names a known circuit.
func (c Circuit) Valid() bool { return c >= 0 && c < numCircuits }

// String returns the display name of the circuit.
func (c Circuit) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Circuit(%d)", int(c))
	}
	return circuitNames[c]
}

// orDefault maps unknown circuits to Silicon.
func (c Circuit) orDefault() Circuit {
	if !c.Valid() {
		return Silicon
	}
	return c
}

// ParseCircuit resolves a circuit by display name (case-insensitive,
// punctuation ignored, so "opamp" and "Op-amp" both work) or by selector
// index.
func ParseCircuit(s string) (Circuit, error) {
	key := normalizeName(s)
	for i, name := range circuitNames {
		if normalizeName(name) == key {
			return Circuit(i), nil
		}
	}

	if idx, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && Circuit(idx).Valid() {
		return Circuit(idx), nil
	}

	return Silicon, fmt.Errorf("%w: %q", ErrUnknownCircuit, s)
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// clip applies the transfer function of c to the slewed sample. x is the
// filtered, undriven input that feeds the envelope of the touch-sensitive
// circuits.
func clip(c Circuit, slewed, x float64, st *ChannelState) float64 {
	switch c {
	case Germanium:
		env := st.follow(math.Abs(x))
		b := slewed + env*germaniumBias
		return b / (1 + math.Abs(b))
	case LED:
		return hardClip(slewed, ledThreshold)
	case MOSFET:
		return math.Tanh(slewed)
	case Asymmetric:
		env := st.follow(math.Abs(x))
		var y float64
		if slewed > 0 {
			y = math.Min(slewed, asymPositive) / asymPositive
		} else {
			y = math.Max(slewed, -asymNegative) / asymNegative
		}
		return clamp1(y + env*asymmetricBias)
	case OpAmp:
		s := clamp1(slewed)
		return 1.5 * (s - s*s*s/3)
	case Foldback:
		return fold(slewed)
	case Rectifier:
		return clamp1(math.Max(slewed, 0)*2 - 1)
	default:
		return hardClip(slewed, siliconThreshold)
	}
}

func hardClip(x, threshold float64) float64 {
	return math.Max(-threshold, math.Min(threshold, x)) / threshold
}

func clamp1(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

// fold reflects x at ±1 until it lies in [-1, 1], in closed form: the
// result is a triangle wave of period 4 in x.
func fold(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}

	t := math.Mod(x+1, 4)
	if t < 0 {
		t += 4
	}
	if t < 2 {
		return t - 1
	}
	return 3 - t
}
