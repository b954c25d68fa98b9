// SPDX-License-Identifier: MIT

package metabodecon

import (
	"math"
	"testing"
)

func TestIdentitySmootherPassesThrough(t *testing.T) {
	y := []float64{1, 5, 2, 8, 3}
	out, err := Identity{}.Smooth(y)
	if err != nil {
		t.Fatalf("Smooth returned error: %v", err)
	}
	for i := range y {
		if out[i] != y[i] {
			t.Errorf("out[%d] = %g, want %g", i, out[i], y[i])
		}
	}
}

func TestMovingAverageValidation(t *testing.T) {
	tests := []struct {
		name string
		m    MovingAverage
		ok   bool
	}{
		{"valid", MovingAverage{Window: 5, Iterations: 2}, true},
		{"even window", MovingAverage{Window: 4, Iterations: 1}, false},
		{"zero window", MovingAverage{Window: 0, Iterations: 1}, false},
		{"negative iterations", MovingAverage{Window: 3, Iterations: -1}, false},
		{"too many iterations", MovingAverage{Window: 3, Iterations: maxSmoothingIterations + 1}, false},
		{"zero iterations is identity", MovingAverage{Window: 3, Iterations: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.Smooth([]float64{1, 2, 3, 4, 5})
			if tt.ok && err != nil {
				t.Errorf("Smooth returned error: %v", err)
			}
			if !tt.ok {
				assertKind(t, err, InvalidSmoothingSettings)
			}
		})
	}
}

func TestMovingAveragePreservesLength(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5, 6, 7}
	out, err := MovingAverage{Window: 3, Iterations: 3}.Smooth(y)
	if err != nil {
		t.Fatalf("Smooth returned error: %v", err)
	}
	if len(out) != len(y) {
		t.Errorf("len(out) = %d, want %d", len(out), len(y))
	}
}

func TestMovingAverageFlattensConstantSignal(t *testing.T) {
	y := make([]float64, 10)
	for i := range y {
		y[i] = 7
	}
	out, err := MovingAverage{Window: 3, Iterations: 5}.Smooth(y)
	if err != nil {
		t.Fatalf("Smooth returned error: %v", err)
	}
	for i, v := range out {
		if math.Abs(v-7) > 1e-9 {
			t.Errorf("out[%d] = %g, want 7 (constant signal)", i, v)
		}
	}
}

func TestReflectBoundary(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{-1, 5, 0},
		{-2, 5, 1},
		{5, 5, 4},
		{6, 5, 3},
		{2, 5, 2},
		{0, 1, 0},
	}
	for _, tt := range tests {
		if got := reflect(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
