package interp

import (
	"math"
	"testing"
)

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	for _, tt := range []float64{0, 0.25, 0.5, 0.75, 1} {
		got := Hermite4(tt, -1, 0, 1, 2)
		if math.Abs(got-tt) > 1e-12 {
			t.Fatalf("Hermite4(%v) = %v, want %v", tt, got, tt)
		}
	}
}

func TestHermite4Endpoints(t *testing.T) {
	if got := Hermite4(0, 3, 5, -2, 7); got != 5 {
		t.Fatalf("Hermite4(0) = %v, want x0", got)
	}
	if got := Hermite4(1, 3, 5, -2, 7); math.Abs(got+2) > 1e-12 {
		t.Fatalf("Hermite4(1) = %v, want x1", got)
	}
}

func TestLinear2(t *testing.T) {
	if got := Linear2(0.25, 2, 4); got != 2.5 {
		t.Fatalf("Linear2 = %v, want 2.5", got)
	}
}
