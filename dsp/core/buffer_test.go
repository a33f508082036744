package core

import (
	"math"
	"testing"
)

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}
}

func TestCopyInto(t *testing.T) {
	dst := make([]float64, 2)

	n := CopyInto(dst, []float64{1, 2, 3})
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}

	if dst[0] != 1 || dst[1] != 2 {
		t.Fatalf("unexpected dst: %#v", dst)
	}
}

func TestZeroChannels(t *testing.T) {
	buf := [][]float64{{1, 2}, {3, 4, 5}}
	ZeroChannels(buf)

	for ch := range buf {
		for i, v := range buf[ch] {
			if v != 0 {
				t.Fatalf("buf[%d][%d] = %v, want 0", ch, i, v)
			}
		}
	}
}

func TestSanitize(t *testing.T) {
	buf := [][]float64{{1, math.NaN(), -2}, {math.Inf(1), 0.5, math.Inf(-1)}}
	if !SanitizeChannels(buf) {
		t.Fatal("SanitizeChannels() = false, want true")
	}

	want := [][]float64{{1, 0, -2}, {0, 0.5, 0}}
	for ch := range buf {
		for i, v := range buf[ch] {
			if v != want[ch][i] {
				t.Fatalf("buf[%d][%d] = %v, want %v", ch, i, v, want[ch][i])
			}
		}
	}

	if Sanitize([]float64{1, 2}) {
		t.Fatal("Sanitize() = true for finite input")
	}
}

func TestNumFrames(t *testing.T) {
	tests := []struct {
		name string
		buf  [][]float64
		want int
	}{
		{name: "empty", buf: nil, want: 0},
		{name: "mono", buf: [][]float64{make([]float64, 5)}, want: 5},
		{name: "ragged", buf: [][]float64{make([]float64, 5), make([]float64, 3)}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NumFrames(tt.buf); got != tt.want {
				t.Fatalf("NumFrames() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAllocChannelsIsolated(t *testing.T) {
	buf := AllocChannels(2, 4)
	if len(buf) != 2 || len(buf[0]) != 4 || len(buf[1]) != 4 {
		t.Fatalf("unexpected shape: %d x %d", len(buf), len(buf[0]))
	}

	buf[0] = append(buf[0], 9)
	if buf[1][0] != 0 {
		t.Fatalf("append to channel 0 leaked into channel 1: %v", buf[1][0])
	}
}
