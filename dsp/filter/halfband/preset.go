package halfband

import "fmt"

// Preset selects a coefficient-count/transition design profile.
type Preset int

const (
	// PresetSteep has a narrow transition band and high image rejection.
	// It is used for the first 2x stage, which sits closest to the audio band.
	PresetSteep Preset = iota
	// PresetFast is cheaper and suits later stages whose transition band
	// lies far above the audio band.
	PresetFast
	// PresetLight is the cheapest profile.
	PresetLight
)

func (p Preset) String() string {
	switch p {
	case PresetSteep:
		return "steep"
	case PresetFast:
		return "fast"
	case PresetLight:
		return "light"
	default:
		return "unknown"
	}
}

// PresetConfig returns coefficient count and transition bandwidth for a preset.
func PresetConfig(preset Preset) (numberOfCoeffs int, transition float64, err error) {
	switch preset {
	case PresetSteep:
		return 12, 0.06, nil
	case PresetFast:
		return 8, 0.1, nil
	case PresetLight:
		return 4, 0.2, nil
	default:
		return 0, 0, fmt.Errorf("halfband: invalid preset: %d", preset)
	}
}

// DesignPreset designs coefficients for a preset profile.
func DesignPreset(preset Preset) ([]float64, error) {
	n, tr, err := PresetConfig(preset)
	if err != nil {
		return nil, err
	}

	return DesignCoefficients(n, tr)
}
