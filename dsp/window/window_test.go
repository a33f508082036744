package window

import (
	"math"
	"testing"
)

func TestGenerateSymmetric(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris4Term, TypeFlatTop, TypeRectangular} {
		w := Generate(typ, 65)
		for i := range w {
			if math.Abs(w[i]-w[len(w)-1-i]) > 1e-12 {
				t.Fatalf("%v: w[%d] = %v, w[%d] = %v", typ, i, w[i], len(w)-1-i, w[len(w)-1-i])
			}
		}
		if peak := w[32]; math.Abs(peak-1) > 1e-3 {
			t.Fatalf("%v: center = %v, want 1", typ, peak)
		}
	}
}

func TestCoherentGainMatchesMean(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris4Term, TypeFlatTop} {
		w := Generate(typ, 4096, WithPeriodic())
		var sum float64
		for _, x := range w {
			sum += x
		}
		if got, want := sum/float64(len(w)), Info(typ).CoherentGain; math.Abs(got-want) > 1e-6 {
			t.Fatalf("%v: mean = %v, want %v", typ, got, want)
		}
	}
}

func TestENBW(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris4Term, TypeFlatTop} {
		w := Generate(typ, 4096, WithPeriodic())
		var sum, sq float64
		for _, x := range w {
			sum += x
			sq += x * x
		}
		if got, want := float64(len(w))*sq/(sum*sum), Info(typ).ENBW; math.Abs(got-want) > 1e-3 {
			t.Fatalf("%v: ENBW = %v, want %v", typ, got, want)
		}
	}
}

func TestGenerateEdgeCases(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("Generate(0) = %v, want nil", w)
	}
	if w := Generate(TypeHann, 1); len(w) != 1 || w[0] != 0 {
		t.Fatalf("Generate(1) = %v", w)
	}
	if w := Generate(Type(99), 3); w[0] != 1 || w[1] != 1 || w[2] != 1 {
		t.Fatalf("unknown type = %v, want rectangular", w)
	}
	if got := Type(99).String(); got != "Unknown" {
		t.Fatalf("String() = %q", got)
	}
}

func TestApply(t *testing.T) {
	buf := []float64{2, 2, 2, 2, 2}
	Apply(TypeHann, buf)
	want := []float64{0, 1, 2, 1, 0}
	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}
