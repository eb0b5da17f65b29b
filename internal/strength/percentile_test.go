package strength

import (
	"errors"
	"math"
	"testing"
)

func TestThreshold_EmptySample(t *testing.T) {
	_, err := Threshold(80, nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestThreshold_SingleElement(t *testing.T) {
	for _, p := range []float64{0, 20, 40, 80, 100} {
		got, err := Threshold(p, []float64{42.5})
		if err != nil {
			t.Fatalf("p=%v: unexpected error %v", p, err)
		}
		if got != 42.5 {
			t.Errorf("p=%v: got %v, want 42.5", p, got)
		}
	}
}

func TestThreshold_Interpolation(t *testing.T) {
	sample := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"p0 is minimum", 0, 10},
		{"p100 is maximum", 100, 50},
		{"p50 lands on rank", 50, 30},
		{"p25 on a rank boundary", 25, 20},
		{"p80 interpolates", 80, 42}, // pos 3.2 -> 40 + 0.2*10
		{"p20 interpolates", 20, 18}, // pos 0.8 -> 10 + 0.8*10
		{"p40 interpolates", 40, 26}, // pos 1.6 -> 20 + 0.6*10
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Threshold(tt.p, sample)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Threshold(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestThreshold_Monotonic(t *testing.T) {
	sample := []float64{1, 3, 7, 7, 12, 40, 41, 90}

	prev := -1.0
	for p := 0.0; p <= 100; p += 2.5 {
		got, err := Threshold(p, sample)
		if err != nil {
			t.Fatalf("p=%v: %v", p, err)
		}
		if got < prev {
			t.Fatalf("Threshold not monotonic: p=%v gave %v after %v", p, got, prev)
		}
		prev = got
	}
}

func TestThreshold_TwoElements(t *testing.T) {
	sample := []float64{100, 200}

	got, err := Threshold(80, sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// pos = 0.8 -> 100 + 0.8*100
	if math.Abs(got-180) > 1e-9 {
		t.Errorf("got %v, want 180", got)
	}
}
