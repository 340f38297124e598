package audio

import (
	"math"
	"testing"
)

func TestSynthesizeCurve_Endpoints(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		end    float64
		points int
		fadeIn bool
	}{
		{"fade-out full range", 1, GainFloor, 512, false},
		{"fade-in full range", GainFloor, 1, 512, true},
		{"fade-out partial", 0.8, 0.2, 64, false},
		{"fade-in partial", 0.2, 0.8, 64, true},
		{"minimum points", 1, GainFloor, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curve, err := SynthesizeCurve(tt.start, tt.end, tt.points, tt.fadeIn)
			if err != nil {
				t.Fatalf("SynthesizeCurve returned error: %v", err)
			}
			if len(curve) != tt.points {
				t.Errorf("len = %d, want %d", len(curve), tt.points)
			}
			if curve[0] != tt.start {
				t.Errorf("first sample = %v, want %v", curve[0], tt.start)
			}
			if curve[len(curve)-1] != tt.end {
				t.Errorf("last sample = %v, want %v", curve[len(curve)-1], tt.end)
			}
		})
	}
}

func TestSynthesizeCurve_FullFadeBounds(t *testing.T) {
	curve, err := SynthesizeCurve(1, 0.0001, 512, false)
	if err != nil {
		t.Fatalf("SynthesizeCurve returned error: %v", err)
	}
	if curve[0] != 1 {
		t.Errorf("curve[0] = %v, want 1", curve[0])
	}
	if curve[511] != 0.0001 {
		t.Errorf("curve[511] = %v, want 0.0001", curve[511])
	}
}

func TestSynthesizeCurve_Monotonic(t *testing.T) {
	fadeOut, err := SynthesizeCurve(1, GainFloor, 512, false)
	if err != nil {
		t.Fatalf("SynthesizeCurve returned error: %v", err)
	}
	for i := 1; i < len(fadeOut); i++ {
		if fadeOut[i] > fadeOut[i-1] {
			t.Fatalf("fade-out increases at %d: %v -> %v", i, fadeOut[i-1], fadeOut[i])
		}
	}

	fadeIn, err := SynthesizeCurve(GainFloor, 1, 512, true)
	if err != nil {
		t.Fatalf("SynthesizeCurve returned error: %v", err)
	}
	for i := 1; i < len(fadeIn); i++ {
		if fadeIn[i] < fadeIn[i-1] {
			t.Fatalf("fade-in decreases at %d: %v -> %v", i, fadeIn[i-1], fadeIn[i])
		}
	}
}

func TestSynthesizeCurve_FloorClamp(t *testing.T) {
	curve, err := SynthesizeCurve(1, 0, 16, false)
	if err != nil {
		t.Fatalf("SynthesizeCurve returned error: %v", err)
	}
	for i, v := range curve {
		if v < GainFloor {
			t.Errorf("sample %d = %v below floor %v", i, v, GainFloor)
		}
	}
}

func TestSynthesizeCurve_TooFewPoints(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if _, err := SynthesizeCurve(1, GainFloor, n, false); err == nil {
			t.Errorf("SynthesizeCurve with %d points should fail", n)
		}
	}
}

func TestEaseProgress(t *testing.T) {
	tests := []struct {
		t    float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
	}

	for _, tt := range tests {
		got := EaseProgress(tt.t)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EaseProgress(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestMicroRamp(t *testing.T) {
	if got := MicroRamp(0); got != GainFloor {
		t.Errorf("MicroRamp(0) = %v, want %v", got, GainFloor)
	}
	if got := MicroRamp(1); got != 1 {
		t.Errorf("MicroRamp(1) = %v, want 1", got)
	}

	// Exponential approach: strictly increasing across the ramp
	prev := MicroRamp(0)
	for t2 := 0.05; t2 <= 1; t2 += 0.05 {
		cur := MicroRamp(t2)
		if cur <= prev {
			t.Fatalf("MicroRamp not increasing at %v: %v <= %v", t2, cur, prev)
		}
		prev = cur
	}
}
