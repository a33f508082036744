package fuzz

import "github.com/cwbudde/algo-fuzz/dsp/core"

const (
	// DriveMin and DriveMax bound the mapped drive gain.
	DriveMin = 1.0
	DriveMax = 40.0

	// OutputCompensation scales the waveshaper output back towards unity.
	OutputCompensation = 0.30

	// MinTightnessHz and MaxTightnessHz bound the pre-drive highpass cutoff.
	MinTightnessHz = 20.0
	MaxTightnessHz = 800.0

	// MinToneHz and MaxToneHz bound the tone lowpass cutoff.
	MinToneHz = 2000.0
	MaxToneHz = 20000.0

	// PresenceRangeDB is the shelf gain at either end of the presence
	// control.
	PresenceRangeDB = 6.0

	// PresenceFreqHz and PresenceQ shape the presence high shelf.
	PresenceFreqHz = 4000.0
	PresenceQ      = 0.707

	// DCBlockerHz is the cutoff of the output DC blocker.
	DCBlockerHz = 20.0

	slewCutoffMax   = 3000.0
	slewCutoffFloor = 1500.0
)

// MapDrive maps a normalized drive control to a gain in [DriveMin, DriveMax].
func MapDrive(d float64) float64 {
	return DriveMin + core.Clamp(d, 0, 1)*(DriveMax-DriveMin)
}

// TightnessCutoff maps a normalized tightness control to the pre-drive
// highpass cutoff.
func TightnessCutoff(t float64) float64 {
	return MinTightnessHz + core.Clamp(t, 0, 1)*(MaxTightnessHz-MinTightnessHz)
}

// ToneCutoff maps a normalized tone control to the tone lowpass cutoff.
func ToneCutoff(t float64) float64 {
	return MinToneHz + core.Clamp(t, 0, 1)*(MaxToneHz-MinToneHz)
}

// PresenceGainDB maps a normalized presence control to the shelf gain:
// 0 -> -6 dB, 0.5 -> 0 dB, 1 -> +6 dB.
func PresenceGainDB(p float64) float64 {
	return (core.Clamp(p, 0, 1) - 0.5) * 2 * PresenceRangeDB
}

// SlewCutoff returns the slew lowpass cutoff for a mapped drive gain. The
// cutoff falls with drive and never goes below 1.5 kHz.
func SlewCutoff(drive float64) float64 {
	return max(slewCutoffFloor, slewCutoffMax*(1-(drive-1)/78))
}
