package resample

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-fuzz/dsp/core"
)

func roundTrip(t *testing.T, o *Oversampler, in []float64, block int) []float64 {
	t.Helper()

	out := make([]float64, len(in))
	for start := 0; start < len(in); start += block {
		end := min(start+block, len(in))
		wide := o.Up([][]float64{in[start:end]})
		if len(wide) != 1 || len(wide[0]) != (end-start)*o.Factor() {
			t.Fatalf("Up returned %d channels of %d samples", len(wide), len(wide[0]))
		}
		o.Down([][]float64{out[start:end]})
	}
	return out
}

func TestNewOversamplerValidation(t *testing.T) {
	if _, err := NewOversampler(0, 2, 64); !errors.Is(err, ErrInvalidStages) {
		t.Fatalf("stages=0 error = %v, want ErrInvalidStages", err)
	}
	if _, err := NewOversampler(MaxStages+1, 2, 64); !errors.Is(err, ErrInvalidStages) {
		t.Fatalf("stages=4 error = %v, want ErrInvalidStages", err)
	}
	if _, err := NewOversampler(1, 0, 64); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("channels=0 error = %v, want ErrInvalidLayout", err)
	}
}

func TestLatencyGrowsWithFactor(t *testing.T) {
	// Reference values of the default stage designs.
	want := []float64{5.2143, 7.1263, 8.0822}

	for i, w := range want {
		o, err := NewOversampler(i+1, 1, 64)
		if err != nil {
			t.Fatalf("NewOversampler: %v", err)
		}
		if o.Factor() != Factors[i] {
			t.Fatalf("Factor() = %d, want %d", o.Factor(), Factors[i])
		}
		if math.Abs(o.Latency()-w) > 1e-3 {
			t.Fatalf("factor %d: Latency() = %v, want %v", o.Factor(), o.Latency(), w)
		}
	}
}

func TestRoundTripSineMatchesReportedLatency(t *testing.T) {
	for stages := 1; stages <= MaxStages; stages++ {
		o, err := NewOversampler(stages, 1, 128)
		if err != nil {
			t.Fatalf("NewOversampler: %v", err)
		}

		const n = 4000
		w := 2 * math.Pi * 50 / 48000
		in := make([]float64, n)
		for i := range in {
			in[i] = math.Sin(w * float64(i))
		}

		out := roundTrip(t, o, in, 100)
		lat := o.Latency()
		for i := n / 2; i < n; i++ {
			want := math.Sin(w * (float64(i) - lat))
			if diff := math.Abs(out[i] - want); diff > 1e-5 {
				t.Fatalf("stages=%d sample %d: diff %v exceeds tolerance", stages, i, diff)
			}
		}
	}
}

func TestZeroRoundTripIsZero(t *testing.T) {
	o, _ := NewOversampler(3, 2, 64)
	in := make([]float64, 64)

	for range 4 {
		o.Up([][]float64{in, in})
		out := [][]float64{make([]float64, 64), make([]float64, 64)}
		o.Down(out)
		for ch := range out {
			for i, v := range out[ch] {
				if v != 0 {
					t.Fatalf("ch %d sample %d = %v, want 0", ch, i, v)
				}
			}
		}
	}
}

func TestImpulseRingingDecays(t *testing.T) {
	for stages := 1; stages <= MaxStages; stages++ {
		o, _ := NewOversampler(stages, 1, 256)
		in := make([]float64, 2048)
		in[0] = 1

		out := roundTrip(t, o, in, 256)
		for i := 1024; i < len(out); i++ {
			if math.Abs(out[i]) > 1e-6 {
				t.Fatalf("stages=%d: residual %v at %d", stages, out[i], i)
			}
		}
	}
}

func TestUpClampsToMaxBlockAndChannels(t *testing.T) {
	o, _ := NewOversampler(1, 1, 16)
	in := [][]float64{make([]float64, 32), make([]float64, 32)}

	wide := o.Up(in)
	if len(wide) != 1 {
		t.Fatalf("channels = %d, want 1", len(wide))
	}
	if len(wide[0]) != 32 {
		t.Fatalf("frames = %d, want 32 (16 * 2)", len(wide[0]))
	}
}

func TestUpDownDoesNotAllocate(t *testing.T) {
	o, _ := NewOversampler(3, 2, 128)
	buf := core.AllocChannels(2, 128)

	allocs := testing.AllocsPerRun(100, func() {
		o.Up(buf)
		o.Down(buf)
	})
	if allocs != 0 {
		t.Fatalf("allocs per run = %v, want 0", allocs)
	}
}
