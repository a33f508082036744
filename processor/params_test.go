package processor

import (
	"math"
	"sync"
	"testing"
)

func TestSpecsRangesAndDefaults(t *testing.T) {
	tests := []struct {
		id       ID
		min, max float64
		def      float64
	}{
		{Drive, 0, 1, 0.5},
		{Circuit, 0, 7, 0},
		{Tightness, 0, 1, 0},
		{Sag, 0, 1, 0},
		{Tone, 0, 1, 0.5},
		{Presence, 0, 1, 0.5},
		{InputGain, -24, 24, 0},
		{OutputGain, -48, 12, 0},
		{Mix, 0, 1, 1},
		{GateEnabled, 0, 1, 0},
		{GateThreshold, -60, -10, -40},
		{Oversampling, 0, 2, 0},
		{GateAttack, 0.1, 100, 1},
		{GateRelease, 1, 2000, 80},
		{GateHysteresis, 0, 12, 4},
		{GateSidechain, 20, 2000, 150},
		{GateRange, -120, -6, -60},
		{GateRatio, 0, 1, 1},
	}

	if len(tests) != int(NumParams) {
		t.Fatalf("table covers %d of %d parameters", len(tests), NumParams)
	}

	for _, tt := range tests {
		s, ok := SpecFor(tt.id)
		if !ok {
			t.Fatalf("SpecFor(%v) not found", tt.id)
		}
		if s.ID != tt.id || s.Min != tt.min || s.Max != tt.max || s.Default != tt.def {
			t.Fatalf("%s: got [%v, %v] default %v, want [%v, %v] default %v",
				s.Key, s.Min, s.Max, s.Default, tt.min, tt.max, tt.def)
		}
	}
}

func TestSpecsReturnsCopy(t *testing.T) {
	a := Specs()
	a[Drive].Max = 99
	if s, _ := SpecFor(Drive); s.Max != 1 {
		t.Fatalf("Specs() exposed the table: Drive max = %v", s.Max)
	}
}

func TestParamsClampOnWrite(t *testing.T) {
	tests := []struct {
		name string
		id   ID
		in   float64
		want float64
	}{
		{"drive above", Drive, 2, 1},
		{"drive below", Drive, -1, 0},
		{"circuit rounds", Circuit, 3.6, 4},
		{"circuit above", Circuit, 42, 7},
		{"oversampling", Oversampling, 1.2, 1},
		{"input gain", InputGain, 100, 24},
		{"output gain", OutputGain, -100, -48},
		{"gate threshold", GateThreshold, -100, -60},
		{"gate switch", GateEnabled, 0.7, 1},
		{"nan takes default", Tone, math.NaN(), 0.5},
		{"inf clamps", Mix, math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams()
			p.Set(tt.id, tt.in)
			if got := p.Get(tt.id); got != tt.want {
				t.Fatalf("Get(%v) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestParamsClampOnRead(t *testing.T) {
	p := NewParams()
	p.values[Drive].Store(math.Float64bits(5))
	p.values[Circuit].Store(math.Float64bits(-3))

	if got := p.Get(Drive); got != 1 {
		t.Fatalf("Get(Drive) = %v, want 1", got)
	}
	v := p.Snapshot()
	if v[Circuit] != 0 {
		t.Fatalf("Snapshot()[Circuit] = %v, want 0", v[Circuit])
	}
}

func TestParamsUnknownIDIgnored(t *testing.T) {
	p := NewParams()
	p.Set(NumParams, 1)
	p.Set(-1, 1)
	if got := p.Get(NumParams); got != 0 {
		t.Fatalf("Get(NumParams) = %v, want 0", got)
	}
	if p.Snapshot() != DefaultValues() {
		t.Fatal("unknown IDs changed stored values")
	}
	if _, ok := SpecFor(NumParams); ok {
		t.Fatal("SpecFor(NumParams) succeeded")
	}
}

func TestParamsReset(t *testing.T) {
	p := NewParams()
	p.Set(Drive, 0.9)
	p.Set(GateEnabled, 1)
	p.Reset()
	if p.Snapshot() != DefaultValues() {
		t.Fatalf("Reset() left %v", p.Snapshot())
	}
}

func TestValuesAccessors(t *testing.T) {
	v := DefaultValues()
	v[GateEnabled] = 1
	v[Oversampling] = 2
	if !v.Bool(GateEnabled) || v.Int(Oversampling) != 2 || v.Bool(Sag) {
		t.Fatalf("accessors: gate=%v os=%d sag=%v", v.Bool(GateEnabled), v.Int(Oversampling), v.Bool(Sag))
	}
}

func TestSetText(t *testing.T) {
	tests := []struct {
		key, text string
		id        ID
		want      float64
	}{
		{"drive", "0.25", Drive, 0.25},
		{"Drive", "3", Drive, 1},
		{"Input Gain", "-6 dB", InputGain, -6},
		{"input-gain", "+3", InputGain, 3},
		{"circuit", "germanium", Circuit, 1},
		{"circuit", "Op-amp", Circuit, 5},
		{"circuit", "3", Circuit, 3},
		{"gate", "on", GateEnabled, 1},
		{"gate", "true", GateEnabled, 1},
		{"gate", "off", GateEnabled, 0},
		{"oversampling", "8x", Oversampling, 2},
		{"gate_release", "250ms", GateRelease, 250},
		{"gate sidechain hpf", "300", GateSidechain, 300},
	}

	for _, tt := range tests {
		p := NewParams()
		if err := p.SetText(tt.key, tt.text); err != nil {
			t.Fatalf("SetText(%q, %q) error = %v", tt.key, tt.text, err)
		}
		if got := p.Get(tt.id); got != tt.want {
			t.Fatalf("SetText(%q, %q): Get = %v, want %v", tt.key, tt.text, got, tt.want)
		}
	}
}

func TestSetTextErrors(t *testing.T) {
	p := NewParams()
	if err := p.SetText("volume", "1"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if err := p.SetText("mix", "lots"); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
	if err := p.SetText("circuit", "tube"); err == nil {
		t.Fatal("expected error for unknown circuit name")
	}
	if p.Snapshot() != DefaultValues() {
		t.Fatal("failed SetText changed stored values")
	}
}

func TestSpecFormat(t *testing.T) {
	tests := []struct {
		id   ID
		v    float64
		want string
	}{
		{Circuit, 5, "Op-amp"},
		{Circuit, 99, "Rectifier"},
		{GateEnabled, 1, "on"},
		{Oversampling, 1, "4x"},
		{GateThreshold, -40, "-40.0 dB"},
		{Drive, 0.5, "0.50"},
	}

	for _, tt := range tests {
		s, _ := SpecFor(tt.id)
		if got := s.Format(tt.v); got != tt.want {
			t.Fatalf("%s.Format(%v) = %q, want %q", s.Key, tt.v, got, tt.want)
		}
	}
}

func TestIDString(t *testing.T) {
	if Drive.String() != "drive" || GateRatio.String() != "gate_ratio" {
		t.Fatalf("String() = %q, %q", Drive.String(), GateRatio.String())
	}
	if got := ID(99).String(); got != "ID(99)" {
		t.Fatalf("ID(99).String() = %q", got)
	}
}

func TestParamsConcurrentAccess(t *testing.T) {
	p := NewParams()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			p.Set(Drive, float64(i%11)/10)
		}
	}()
	go func() {
		defer wg.Done()
		for range 1000 {
			if v := p.Get(Drive); v < 0 || v > 1 {
				t.Errorf("Get(Drive) = %v out of range", v)
				return
			}
		}
	}()
	wg.Wait()
}
