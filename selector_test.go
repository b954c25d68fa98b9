// SPDX-License-Identifier: MIT

package metabodecon

import "testing"

func TestDetectorOnlySelectorPassesAllThroughIgnoreFilter(t *testing.T) {
	triplets := []PeakTriplet{{L: 0, C: 1, R: 2}, {L: 3, C: 4, R: 5}}
	x := []float64{0, 1, 2, 3, 4, 5}
	y := make([]float64, 6)
	d2 := make([]float64, 6)

	sel := DetectorOnlySelector{}
	kept, err := sel.Select(y, d2, triplets, 0, 5, IgnoreRegions{}, x)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(kept) != 2 {
		t.Errorf("len(kept) = %d, want 2", len(kept))
	}
}

func TestDetectorOnlySelectorHonorsIgnoreRegions(t *testing.T) {
	triplets := []PeakTriplet{{L: 0, C: 1, R: 2}, {L: 3, C: 4, R: 5}}
	x := []float64{0, 1, 2, 3, 4, 5}
	y := make([]float64, 6)
	d2 := make([]float64, 6)

	ir, err := NewIgnoreRegions([][2]float64{{3.5, 4.5}})
	if err != nil {
		t.Fatalf("NewIgnoreRegions returned error: %v", err)
	}
	sel := DetectorOnlySelector{}
	kept, err := sel.Select(y, d2, triplets, 0, 5, ir, x)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(kept) != 1 || kept[0].C != 1 {
		t.Errorf("kept = %v, want only the triplet whose apex is outside the ignore region", kept)
	}
}

func TestDetectorOnlySelectorReportsEmptySelection(t *testing.T) {
	_, err := DetectorOnlySelector{}.Select(nil, nil, nil, 0, -1, IgnoreRegions{}, nil)
	assertKind(t, err, NoPeaksDetected)
}

func TestNoiseScoreSelectorValidation(t *testing.T) {
	tests := []struct {
		name string
		s    NoiseScoreSelector
		ok   bool
	}{
		{"positive threshold", NoiseScoreSelector{Threshold: 6.4}, true},
		{"zero threshold", NoiseScoreSelector{Threshold: 0}, false},
		{"negative threshold", NoiseScoreSelector{Threshold: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.validate()
			if tt.ok && err != nil {
				t.Errorf("validate() returned error: %v", err)
			}
			if !tt.ok {
				assertKind(t, err, InvalidSelectionSettings)
			}
		})
	}
}

func TestNoiseScoreSelectorKeepsTallPeakOverNoise(t *testing.T) {
	n := 41
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		d := float64(i-20) / 2
		y[i] = 100 / (1 + d*d)
	}
	d2 := secondDifference(y)
	candidates := detectPeaks(y, d2, 0, n-1)
	if len(candidates) == 0 {
		t.Fatalf("detector found no candidates to feed the selector")
	}

	sel := NoiseScoreSelector{Threshold: DefaultNoiseScoreThreshold}
	kept, err := sel.Select(y, d2, candidates, 0, n-1, IgnoreRegions{}, x)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("len(kept) = %d, want 1", len(kept))
	}
}

func TestNoiseScoreSelectorRejectsFlatNoise(t *testing.T) {
	n := 41
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = 1
	}
	// The signal is perfectly flat, so the detector itself finds nothing
	// and the selector must classify that as NoPeaksDetected rather than
	// EmptySignalRegion.
	d2 := secondDifference(y)
	candidates := detectPeaks(y, d2, 0, n-1)

	sel := NoiseScoreSelector{Threshold: DefaultNoiseScoreThreshold}
	_, err := sel.Select(y, d2, candidates, 0, n-1, IgnoreRegions{}, x)
	assertKind(t, err, NoPeaksDetected)
}

func TestMedianOf(t *testing.T) {
	tests := []struct {
		name string
		v    []float64
		want float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"single", []float64{7}, 7},
		{"odd repeated", []float64{5, 5, 5, 1, 9}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := medianOf(tt.v); got != tt.want {
				t.Errorf("medianOf(%v) = %g, want %g", tt.v, got, tt.want)
			}
		})
	}
}
