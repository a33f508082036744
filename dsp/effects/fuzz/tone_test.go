package fuzz

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fuzz/internal/testutil"
)

func renderTone(tone, presence, freq float64) float64 {
	const sr = 48000.0

	tn := NewTone()
	tn.SetTone(tone)
	tn.SetPresence(presence)
	tn.Prepare(sr, 1)

	buf := testutil.DeterministicSine(freq, sr, 0.5, 24000)
	tn.Apply([][]float64{buf})

	return testutil.RMS(buf[12000:]) / (0.5 / math.Sqrt2)
}

func TestToneNeutralPassesMidrange(t *testing.T) {
	if g := renderTone(1, 0.5, 1000); math.Abs(g-1) > 0.01 {
		t.Fatalf("gain at 1 kHz = %v, want about 1", g)
	}
}

func TestToneLowpassSweep(t *testing.T) {
	dark := renderTone(0, 0.5, 8000)
	bright := renderTone(1, 0.5, 8000)

	if dark > 0.5*bright {
		t.Fatalf("8 kHz gain dark = %v, bright = %v; want dark well below bright", dark, bright)
	}
}

func TestPresenceShelf(t *testing.T) {
	flat := renderTone(1, 0.5, 12000)
	boost := renderTone(1, 1, 12000)
	cut := renderTone(1, 0, 12000)

	if r := boost / flat; r < 1.6 || r > 2.05 {
		t.Fatalf("presence boost ratio at 12 kHz = %v, want about +6 dB", r)
	}
	if r := cut / flat; r < 0.48 || r > 0.63 {
		t.Fatalf("presence cut ratio at 12 kHz = %v, want about -6 dB", r)
	}

	// Presence barely touches the low end.
	if r := renderTone(1, 1, 200) / renderTone(1, 0.5, 200); math.Abs(r-1) > 0.05 {
		t.Fatalf("presence ratio at 200 Hz = %v, want about 1", r)
	}
}

func TestToneBlocksDC(t *testing.T) {
	tn := NewTone()
	tn.Prepare(48000, 2)

	left := testutil.DC(1, 48000)
	right := testutil.DC(-0.5, 48000)
	tn.Apply([][]float64{left, right})

	if math.Abs(left[len(left)-1]) > 1e-3 || math.Abs(right[len(right)-1]) > 1e-3 {
		t.Fatalf("DC not removed: %v, %v", left[len(left)-1], right[len(right)-1])
	}
}

func TestToneSmoothsCutoff(t *testing.T) {
	tn := NewTone()
	tn.SetTone(1)
	tn.Prepare(48000, 1)

	if got := tn.Cutoff(); got != MaxToneHz {
		t.Fatalf("Cutoff = %v, want %v", got, MaxToneHz)
	}

	tn.SetTone(0)
	tn.Apply([][]float64{make([]float64, 48)})

	if got := tn.Cutoff(); got <= MinToneHz || got >= MaxToneHz {
		t.Fatalf("Cutoff mid-ramp = %v, want strictly between %v and %v", got, MinToneHz, MaxToneHz)
	}

	tn.Apply([][]float64{make([]float64, 480)})
	if got := tn.Cutoff(); got != MinToneHz {
		t.Fatalf("Cutoff after ramp = %v, want %v", got, MinToneHz)
	}
}

func TestToneClampsControls(t *testing.T) {
	tn := NewTone()
	tn.SetTone(3)
	tn.SetPresence(-1)

	if tn.ToneValue() != 1 || tn.PresenceValue() != 0 {
		t.Fatalf("tone=%v presence=%v, want 1 and 0", tn.ToneValue(), tn.PresenceValue())
	}
}

func TestToneResetRestoresTargets(t *testing.T) {
	tn := NewTone()
	tn.Prepare(48000, 1)
	tn.SetTone(0.2)
	tn.Apply([][]float64{make([]float64, 8)})
	tn.Reset()

	tn.Apply([][]float64{make([]float64, 1)})
	if got := tn.Cutoff(); math.Abs(got-ToneCutoff(0.2)) > 1e-9 {
		t.Fatalf("Cutoff after Reset = %v, want %v", got, ToneCutoff(0.2))
	}
}
