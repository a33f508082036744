package dynamics

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fuzz/internal/testutil"
)

func TestNewGate(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		wantErr    bool
	}{
		{"valid 44100", 44100, false},
		{"valid 48000", 48000, false},
		{"valid 192000", 192000, false},
		{"invalid zero", 0, true},
		{"invalid negative", -1, true},
		{"invalid NaN", math.NaN(), true},
		{"invalid +Inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGate(tt.sampleRate, 2)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && g == nil {
				t.Fatal("NewGate() returned nil without error")
			}
		})
	}
}

func TestGateDefaults(t *testing.T) {
	g, err := NewGate(48000, 2)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"Threshold", g.Threshold(), DefaultGateThresholdDB},
		{"Attack", g.Attack(), DefaultGateAttackMs},
		{"Release", g.Release(), DefaultGateReleaseMs},
		{"Hysteresis", g.Hysteresis(), DefaultGateHysteresisDB},
		{"SidechainCutoff", g.SidechainCutoff(), DefaultGateSidechainHz},
		{"Range", g.Range(), DefaultGateRangeDB},
		{"Ratio", g.Ratio(), DefaultGateRatio},
		{"CloseThreshold", g.CloseThreshold(), DefaultGateThresholdDB - DefaultGateHysteresisDB},
		{"CurrentGain", g.CurrentGain(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if g.Enabled() {
		t.Fatal("new gate should be disabled")
	}

	if g.IsOpen() {
		t.Fatal("new gate should be closed")
	}
}

func TestGateSettersClamp(t *testing.T) {
	g, _ := NewGate(48000, 2)

	tests := []struct {
		name string
		set  func(float64)
		get  func() float64
		in   float64
		want float64
	}{
		{"threshold low", g.SetThreshold, g.Threshold, -100, MinGateThresholdDB},
		{"threshold high", g.SetThreshold, g.Threshold, 0, MaxGateThresholdDB},
		{"threshold NaN", g.SetThreshold, g.Threshold, math.NaN(), MinGateThresholdDB},
		{"attack low", g.SetAttack, g.Attack, 0, MinGateAttackMs},
		{"attack high", g.SetAttack, g.Attack, 1000, MaxGateAttackMs},
		{"release low", g.SetRelease, g.Release, 0, MinGateReleaseMs},
		{"release high", g.SetRelease, g.Release, 1e6, MaxGateReleaseMs},
		{"hysteresis negative", g.SetHysteresis, g.Hysteresis, -3, MinGateHysteresisDB},
		{"hysteresis high", g.SetHysteresis, g.Hysteresis, 20, MaxGateHysteresisDB},
		{"sidechain low", g.SetSidechainCutoff, g.SidechainCutoff, 1, MinGateSidechainHz},
		{"sidechain high", g.SetSidechainCutoff, g.SidechainCutoff, 20000, MaxGateSidechainHz},
		{"range low", g.SetRange, g.Range, -200, MinGateRangeDB},
		{"range high", g.SetRange, g.Range, 0, MaxGateRangeDB},
		{"ratio low", g.SetRatio, g.Ratio, -1, MinGateRatio},
		{"ratio high", g.SetRatio, g.Ratio, 2, MaxGateRatio},
		{"in range", g.SetRelease, g.Release, 250, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set(tt.in)
			if got := tt.get(); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGateClosedGain(t *testing.T) {
	tests := []struct {
		rangeDB float64
		ratio   float64
		want    float64
	}{
		{-60, 1, 0.001},
		{-60, 0.5, math.Pow(10, -30.0/20)},
		{-60, 0, 1},
		{-120, 1, 1e-6},
	}

	for _, tt := range tests {
		g, _ := NewGate(48000, 1)
		g.SetRange(tt.rangeDB)
		g.SetRatio(tt.ratio)

		if got := g.ClosedGain(); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("ClosedGain(range=%v, ratio=%v) = %v, want %v", tt.rangeDB, tt.ratio, got, tt.want)
		}
	}
}

// The detector must never open below the open threshold and never close
// above the close threshold.
func TestGateHysteresis(t *testing.T) {
	g, _ := NewGate(48000, 1)
	g.SetEnabled(true)

	openLin := math.Pow(10, g.Threshold()/20)
	closeLin := math.Pow(10, g.CloseThreshold()/20)
	between := math.Sqrt(openLin * closeLin)

	for range 48000 {
		g.step(between)
		if g.IsOpen() {
			t.Fatalf("gate opened at envelope %v below open threshold %v", g.Envelope(), openLin)
		}
	}

	for range 4800 {
		g.step(10 * openLin)
	}

	if !g.IsOpen() {
		t.Fatal("gate did not open on a loud signal")
	}

	for range 48000 {
		g.step(between)
		if !g.IsOpen() {
			t.Fatalf("gate closed at envelope %v above close threshold %v", g.Envelope(), closeLin)
		}
	}

	closed := false
	for range 48000 {
		prev := g.Envelope()
		g.step(closeLin / 2)
		if !g.IsOpen() {
			if g.Envelope() >= closeLin {
				t.Fatalf("gate closed at envelope %v, close threshold %v", g.Envelope(), closeLin)
			}
			if prev < closeLin {
				t.Fatalf("gate closed late: previous envelope %v already below %v", prev, closeLin)
			}
			closed = true
			break
		}
	}

	if !closed {
		t.Fatal("gate never closed")
	}
}

func TestGateOpensWithinAttack(t *testing.T) {
	const sr = 48000.0

	g, _ := NewGate(sr, 1)
	g.SetEnabled(true)

	in := testutil.DeterministicSine(1000, sr, 0.1, 4800)
	attackSamples := int(math.Ceil(g.Attack() / 1000 * sr))

	for i := range in {
		g.ProcessInPlace([][]float64{in[i : i+1]})
		if g.IsOpen() {
			if i > attackSamples+1 {
				t.Fatalf("gate opened after %d samples, want <= %d", i, attackSamples+1)
			}
			return
		}
	}

	t.Fatal("gate never opened")
}

func TestGateClosesAfterRelease(t *testing.T) {
	const sr = 48000.0

	g, _ := NewGate(sr, 1)
	g.SetEnabled(true)

	loud := testutil.DeterministicSine(1000, sr, 0.1, 9600)
	g.ProcessInPlace([][]float64{loud})

	if !g.IsOpen() {
		t.Fatal("gate not open after loud signal")
	}

	env0 := g.Envelope()
	closeLin := math.Pow(10, g.CloseThreshold()/20)
	predicted := math.Log(closeLin/env0) / math.Log(g.ReleaseCoeff())
	releaseSamples := g.Release() / 1000 * sr

	silence := make([]float64, 4*int(predicted))
	for i := range silence {
		g.ProcessInPlace([][]float64{silence[i : i+1]})
		if g.IsOpen() {
			continue
		}

		if float64(i) < releaseSamples {
			t.Fatalf("gate closed after %d samples, before release time %v", i, releaseSamples)
		}

		if math.Abs(float64(i)-predicted) > 0.02*predicted {
			t.Fatalf("gate closed after %d samples, want about %.0f", i, predicted)
		}
		return
	}

	t.Fatal("gate never closed")
}

func TestGateConvergesToClosedGain(t *testing.T) {
	g, _ := NewGate(48000, 2)
	g.SetEnabled(true)
	g.SetRange(-40)

	buf := [][]float64{make([]float64, 256), make([]float64, 256)}
	g.ProcessInPlace(buf)

	want := g.ClosedGain()
	if got := g.CurrentGain(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("CurrentGain = %v, want %v", got, want)
	}

	// Further silence keeps the gain where it is.
	g.ProcessInPlace(buf)
	if got := g.CurrentGain(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("CurrentGain after second block = %v, want %v", got, want)
	}

	if m := g.GetMetrics(); m.Opens != 0 {
		t.Fatalf("Opens = %d, want 0", m.Opens)
	}
}

func TestGateDisableResets(t *testing.T) {
	g, _ := NewGate(48000, 1)
	g.SetEnabled(true)
	g.ProcessInPlace([][]float64{testutil.DeterministicSine(1000, 48000, 0.5, 2048)})

	if !g.IsOpen() {
		t.Fatal("gate should be open")
	}

	g.SetEnabled(false)

	if g.IsOpen() || g.Envelope() != 0 || g.CurrentGain() != 1 {
		t.Fatalf("disabled gate: open=%v env=%v gain=%v", g.IsOpen(), g.Envelope(), g.CurrentGain())
	}

	in := testutil.DeterministicNoise(3, 0.001, 512)
	buf := append([]float64(nil), in...)
	g.ProcessInPlace([][]float64{buf})
	testutil.RequireSliceNearlyEqual(t, buf, in, 0)
}

func TestGateLinksChannels(t *testing.T) {
	g, _ := NewGate(48000, 2)
	g.SetEnabled(true)

	left := testutil.DeterministicSine(1000, 48000, 0.5, 2048)
	right := testutil.DeterministicSine(1000, 48000, 1e-4, 2048)
	rightIn := append([]float64(nil), right...)

	g.ProcessInPlace([][]float64{left, right})

	if !g.IsOpen() {
		t.Fatal("loud left channel should open the gate")
	}

	for i := 1024; i < len(right); i++ {
		if right[i] != rightIn[i] {
			t.Fatalf("right[%d] = %v, want %v (open gate is unity)", i, right[i], rightIn[i])
		}
	}
}

func TestGateSilenceStaysFinite(t *testing.T) {
	g, _ := NewGate(48000, 1)
	g.SetEnabled(true)

	buf := make([]float64, 48000)
	g.ProcessInPlace([][]float64{buf})
	testutil.RequireFinite(t, buf)

	if g.Envelope() != 0 {
		t.Fatalf("Envelope = %v, want 0 after silence", g.Envelope())
	}
}
