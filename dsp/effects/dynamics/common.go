package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fuzz/dsp/core"
)

// log2Of10Div20 converts dB to log2 amplitude: log2(10)/20.
const log2Of10Div20 = 0.166096404744368117393515971474

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

func dbToLinear(db float64) float64 {
	return mathPower10(db / 20)
}

// linkedPeak returns max |buf[ch][i]| over the first chs channels.
func linkedPeak(buf [][]float64, chs, i int) float64 {
	peak := 0.0
	for ch := range chs {
		peak = math.Max(peak, math.Abs(buf[ch][i]))
	}
	return peak
}
