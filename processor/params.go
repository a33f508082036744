package processor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/dsp/effects/dynamics"
	"github.com/cwbudde/algo-fuzz/dsp/effects/fuzz"
)

// ID identifies a control value.
type ID int

const (
	Drive ID = iota
	Circuit
	Tightness
	Sag
	Tone
	Presence
	InputGain
	OutputGain
	Mix
	GateEnabled
	GateThreshold
	Oversampling
	GateAttack
	GateRelease
	GateHysteresis
	GateSidechain
	GateRange
	GateRatio

	NumParams
)

// Spec describes the range, default and display of one control value.
// Specs with Choices are discrete: values are rounded to the nearest index.
type Spec struct {
	ID      ID
	Key     string
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	Choices []string
}

var specs = [NumParams]Spec{
	{ID: Drive, Key: "drive", Name: "Drive", Min: 0, Max: 1, Default: fuzz.DefaultDrive},
	{ID: Circuit, Key: "circuit", Name: "Circuit", Min: 0, Max: 7, Default: 0, Choices: circuitChoices()},
	{ID: Tightness, Key: "tightness", Name: "Tightness", Min: 0, Max: 1, Default: fuzz.DefaultTightness},
	{ID: Sag, Key: "sag", Name: "Sag", Min: 0, Max: 1, Default: fuzz.DefaultSag},
	{ID: Tone, Key: "tone", Name: "Tone", Min: 0, Max: 1, Default: fuzz.DefaultTone},
	{ID: Presence, Key: "presence", Name: "Presence", Min: 0, Max: 1, Default: fuzz.DefaultPresence},
	{ID: InputGain, Key: "input_gain", Name: "Input Gain", Unit: "dB", Min: -24, Max: 24, Default: 0},
	{ID: OutputGain, Key: "output_gain", Name: "Output Gain", Unit: "dB", Min: -48, Max: 12, Default: 0},
	{ID: Mix, Key: "mix", Name: "Mix", Min: 0, Max: 1, Default: 1},
	{ID: GateEnabled, Key: "gate", Name: "Gate", Min: 0, Max: 1, Default: 0, Choices: []string{"off", "on"}},
	{
		ID: GateThreshold, Key: "gate_threshold", Name: "Gate Threshold", Unit: "dB",
		Min: dynamics.MinGateThresholdDB, Max: dynamics.MaxGateThresholdDB, Default: dynamics.DefaultGateThresholdDB,
	},
	{ID: Oversampling, Key: "oversampling", Name: "Oversampling", Min: 0, Max: 2, Default: 0, Choices: []string{"2x", "4x", "8x"}},
	{
		ID: GateAttack, Key: "gate_attack", Name: "Gate Attack", Unit: "ms",
		Min: dynamics.MinGateAttackMs, Max: dynamics.MaxGateAttackMs, Default: dynamics.DefaultGateAttackMs,
	},
	{
		ID: GateRelease, Key: "gate_release", Name: "Gate Release", Unit: "ms",
		Min: dynamics.MinGateReleaseMs, Max: dynamics.MaxGateReleaseMs, Default: dynamics.DefaultGateReleaseMs,
	},
	{
		ID: GateHysteresis, Key: "gate_hysteresis", Name: "Gate Hysteresis", Unit: "dB",
		Min: dynamics.MinGateHysteresisDB, Max: dynamics.MaxGateHysteresisDB, Default: dynamics.DefaultGateHysteresisDB,
	},
	{
		ID: GateSidechain, Key: "gate_sidechain", Name: "Gate Sidechain HPF", Unit: "Hz",
		Min: dynamics.MinGateSidechainHz, Max: dynamics.MaxGateSidechainHz, Default: dynamics.DefaultGateSidechainHz,
	},
	{
		ID: GateRange, Key: "gate_range", Name: "Gate Range", Unit: "dB",
		Min: dynamics.MinGateRangeDB, Max: dynamics.MaxGateRangeDB, Default: dynamics.DefaultGateRangeDB,
	},
	{
		ID: GateRatio, Key: "gate_ratio", Name: "Gate Ratio",
		Min: dynamics.MinGateRatio, Max: dynamics.MaxGateRatio, Default: dynamics.DefaultGateRatio,
	},
}

func circuitChoices() []string {
	cs := fuzz.Circuits()
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.String()
	}
	return names
}

// Specs returns a copy of the control value table in ID order.
func Specs() []Spec {
	out := make([]Spec, NumParams)
	copy(out, specs[:])
	return out
}

// SpecFor returns the spec of id.
func SpecFor(id ID) (Spec, bool) {
	if !id.valid() {
		return Spec{}, false
	}
	return specs[id], true
}

// Lookup finds a spec by key or display name, ignoring case, spaces,
// dashes and underscores.
func Lookup(key string) (Spec, bool) {
	want := normalizeKey(key)
	for _, s := range specs {
		if normalizeKey(s.Key) == want || normalizeKey(s.Name) == want {
			return s, true
		}
	}
	return Spec{}, false
}

func normalizeKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

func (id ID) valid() bool { return id >= 0 && id < NumParams }

func (id ID) String() string {
	if !id.valid() {
		return "ID(" + strconv.Itoa(int(id)) + ")"
	}
	return specs[id].Key
}

// Discrete reports whether the value selects one of Choices.
func (s Spec) Discrete() bool { return len(s.Choices) > 0 }

// Clamp limits v to the spec range. Discrete values are rounded and NaN
// maps to the default.
func (s Spec) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return s.Default
	}
	v = core.Clamp(v, s.Min, s.Max)
	if s.Discrete() {
		v = math.Round(v)
	}
	return v
}

// Format renders v for display.
func (s Spec) Format(v float64) string {
	v = s.Clamp(v)
	if s.Discrete() {
		return s.Choices[int(v-s.Min)]
	}
	if s.Unit == "" {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + s.Unit
}

// Parse reads a value written as a number, a choice name, or on/off for
// switches. The result is clamped.
func (s Spec) Parse(text string) (float64, error) {
	t := strings.TrimSpace(text)
	if s.Discrete() {
		for i, c := range s.Choices {
			if normalizeKey(c) == normalizeKey(t) {
				return s.Min + float64(i), nil
			}
		}
		switch strings.ToLower(t) {
		case "true", "yes":
			if len(s.Choices) == 2 {
				return s.Max, nil
			}
		case "false", "no":
			if len(s.Choices) == 2 {
				return s.Min, nil
			}
		}
	}

	t = strings.TrimSpace(strings.TrimSuffix(t, s.Unit))
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("processor: invalid value %q for %s", text, s.Key)
	}
	return s.Clamp(v), nil
}

// Values is a copy of all control values taken at one point in time.
type Values [NumParams]float64

// Bool reports whether a switch value is on.
func (v Values) Bool(id ID) bool { return v[id] >= 0.5 }

// Int returns a discrete value as an index.
func (v Values) Int(id ID) int { return int(math.Round(v[id])) }

// DefaultValues returns the default of every control value.
func DefaultValues() Values {
	var v Values
	for i, s := range specs {
		v[i] = s.Default
	}
	return v
}

// Params holds the control values shared between a control thread and
// the audio thread. Each value is stored in its own atomic word, so
// writers and the audio thread never block each other. Values written
// from one thread become visible to the next Process call.
type Params struct {
	values [NumParams]atomic.Uint64
}

// NewParams returns control values initialized to their defaults.
func NewParams() *Params {
	p := &Params{}
	p.Reset()
	return p
}

// Reset restores every default.
func (p *Params) Reset() {
	for i, s := range specs {
		p.values[i].Store(math.Float64bits(s.Default))
	}
}

// Set stores a clamped value. Unknown IDs are ignored.
func (p *Params) Set(id ID, v float64) {
	if !id.valid() {
		return
	}
	p.values[id].Store(math.Float64bits(specs[id].Clamp(v)))
}

// Get loads a value, clamped again on read.
func (p *Params) Get(id ID) float64 {
	if !id.valid() {
		return 0
	}
	return specs[id].Clamp(math.Float64frombits(p.values[id].Load()))
}

// Snapshot loads all values.
func (p *Params) Snapshot() Values {
	var v Values
	for i := range v {
		v[i] = p.Get(ID(i))
	}
	return v
}

// SetText parses text for the value named key and stores it.
func (p *Params) SetText(key, text string) error {
	s, ok := Lookup(key)
	if !ok {
		return fmt.Errorf("processor: unknown parameter %q", key)
	}
	v, err := s.Parse(text)
	if err != nil {
		return err
	}
	p.Set(s.ID, v)
	return nil
}
