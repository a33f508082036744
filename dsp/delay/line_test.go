package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fuzz/dsp/interp"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}
}

func TestReadIntegerDelay(t *testing.T) {
	d, _ := New(8)
	for i := 1; i <= 5; i++ {
		d.Write(float64(i))
	}

	for delay, want := range []float64{5, 4, 3, 2, 1, 0} {
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d) = %v, want %v", delay, got, want)
		}
	}
}

func TestReadFractionalOnRamp(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Hermite, interp.Linear} {
		d, _ := New(16, WithMode(mode))
		for i := range 16 {
			d.Write(float64(i))
		}

		// Newest sample is 15; a 2.5 sample delay lands on 12.5.
		if got := d.ReadFractional(2.5); math.Abs(got-12.5) > 1e-12 {
			t.Fatalf("mode %d: ReadFractional(2.5) = %v, want 12.5", mode, got)
		}
	}
}

func TestReadFractionalClamps(t *testing.T) {
	d, _ := New(8)
	for i := range 8 {
		d.Write(float64(i))
	}

	if got := d.ReadFractional(-1); got != 7 {
		t.Fatalf("ReadFractional(-1) = %v, want newest sample 7", got)
	}
	if got, want := d.ReadFractional(100), d.ReadFractional(d.MaxDelay()); got != want {
		t.Fatalf("ReadFractional(100) = %v, want %v", got, want)
	}
}

func TestFractionalDelayOfSine(t *testing.T) {
	d, _ := New(64)
	w := 2 * math.Pi * 200 / 48000
	const delay = 5.21

	for n := range 2000 {
		d.Write(math.Sin(w * float64(n)))
		if n < 64 {
			continue
		}
		want := math.Sin(w * (float64(n) - delay))
		if got := d.ReadFractional(delay); math.Abs(got-want) > 1e-5 {
			t.Fatalf("n=%d: got %v, want %v", n, got, want)
		}
	}
}

func TestReset(t *testing.T) {
	d, _ := New(4)
	d.Write(1)
	d.Reset()
	for i := range 4 {
		if d.Read(i) != 0 {
			t.Fatalf("Read(%d) after Reset = %v, want 0", i, d.Read(i))
		}
	}
}
