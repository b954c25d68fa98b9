// SPDX-License-Identifier: MIT

package metabodecon

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
)

func syntheticSpectrum(t *testing.T, peaks []Lorentzian, n int, noise []float64) *Spectrum {
	t.Helper()
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i) * 0.1
		for _, p := range peaks {
			y[i] += p.Eval(x[i])
		}
		if noise != nil {
			y[i] += noise[i]
		}
	}
	s, err := NewSpectrum(x, y, x[0], x[n-1])
	if err != nil {
		t.Fatalf("NewSpectrum returned error: %v", err)
	}
	return s
}

func TestDeconvoluteSpectrumSinglePeak(t *testing.T) {
	target := Lorentzian{ScaleFactor: 50, HalfWidth: 0.3, MaximumPos: 5}
	s := syntheticSpectrum(t, []Lorentzian{target}, 200, nil)

	// The fitter works on the smoothed intensities while MSE is taken
	// against the raw ones, so a near-exact reconstruction needs the
	// identity smoother.
	d := NewDeconvoluter().WithSmoother(Identity{})
	result, err := d.DeconvoluteSpectrum(s)
	if err != nil {
		t.Fatalf("DeconvoluteSpectrum returned error: %v", err)
	}
	if len(result.Lorentzians) != 1 {
		t.Fatalf("got %d Lorentzians, want 1", len(result.Lorentzians))
	}
	if math.Abs(result.Lorentzians[0].MaximumPos-target.MaximumPos) > 0.2 {
		t.Errorf("MaximumPos = %g, want close to %g", result.Lorentzians[0].MaximumPos, target.MaximumPos)
	}
	if result.MSE > 1 {
		t.Errorf("MSE = %g, want small for a clean single-peak fit", result.MSE)
	}
}

func TestDeconvoluteSpectrumTwoSeparatedPeaks(t *testing.T) {
	peaks := []Lorentzian{
		{ScaleFactor: 40, HalfWidth: 0.3, MaximumPos: 3},
		{ScaleFactor: 60, HalfWidth: 0.4, MaximumPos: 12},
	}
	s := syntheticSpectrum(t, peaks, 300, nil)

	d := NewDeconvoluter()
	result, err := d.DeconvoluteSpectrum(s)
	if err != nil {
		t.Fatalf("DeconvoluteSpectrum returned error: %v", err)
	}
	if len(result.Lorentzians) != 2 {
		t.Fatalf("got %d Lorentzians, want 2", len(result.Lorentzians))
	}
}

func TestDeconvoluteSpectrumWithIgnoreRegion(t *testing.T) {
	peaks := []Lorentzian{
		{ScaleFactor: 40, HalfWidth: 0.3, MaximumPos: 3},
		{ScaleFactor: 60, HalfWidth: 0.4, MaximumPos: 12},
	}
	s := syntheticSpectrum(t, peaks, 300, nil)

	d := NewDeconvoluter()
	d, err := d.WithIgnoreRegions([][2]float64{{11, 13}})
	if err != nil {
		t.Fatalf("WithIgnoreRegions returned error: %v", err)
	}
	result, err := d.DeconvoluteSpectrum(s)
	if err != nil {
		t.Fatalf("DeconvoluteSpectrum returned error: %v", err)
	}
	if len(result.Lorentzians) != 1 {
		t.Fatalf("got %d Lorentzians, want 1 (second peak is in the ignore region)", len(result.Lorentzians))
	}
}

func TestDeconvoluteSpectrumEmptySignalRegionErrors(t *testing.T) {
	target := Lorentzian{ScaleFactor: 50, HalfWidth: 0.3, MaximumPos: 5}
	x := make([]float64, 200)
	y := make([]float64, 200)
	for i := range x {
		x[i] = float64(i) * 0.1
		y[i] = target.Eval(x[i])
	}
	// Signal region away from the only peak.
	s, err := NewSpectrum(x, y, 15, 18)
	if err != nil {
		t.Fatalf("NewSpectrum returned error: %v", err)
	}

	d := NewDeconvoluter()
	_, err = d.DeconvoluteSpectrum(s)
	if err == nil {
		t.Fatalf("expected an error deconvoluting a signal region with no peak")
	}
}

func TestDeconvoluteSpectraPreservesOrder(t *testing.T) {
	peakA := Lorentzian{ScaleFactor: 50, HalfWidth: 0.3, MaximumPos: 4}
	peakB := Lorentzian{ScaleFactor: 30, HalfWidth: 0.5, MaximumPos: 9}
	sa := syntheticSpectrum(t, []Lorentzian{peakA}, 200, nil)
	sb := syntheticSpectrum(t, []Lorentzian{peakB}, 200, nil)

	d := NewDeconvoluter()
	results, err := d.DeconvoluteSpectra([]*Spectrum{sa, sb})
	if err != nil {
		t.Fatalf("DeconvoluteSpectra returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if math.Abs(results[0].Lorentzians[0].MaximumPos-peakA.MaximumPos) > 0.2 {
		t.Errorf("results[0] MaximumPos = %g, want close to %g", results[0].Lorentzians[0].MaximumPos, peakA.MaximumPos)
	}
	if math.Abs(results[1].Lorentzians[0].MaximumPos-peakB.MaximumPos) > 0.2 {
		t.Errorf("results[1] MaximumPos = %g, want close to %g", results[1].Lorentzians[0].MaximumPos, peakB.MaximumPos)
	}
}

func TestDeconvoluteSpectraParallelMatchesSequential(t *testing.T) {
	var spectra []*Spectrum
	var peaks []float64 = []float64{2, 5, 9, 14, 21}
	for _, pos := range peaks {
		spectra = append(spectra, syntheticSpectrum(t, []Lorentzian{{ScaleFactor: 40, HalfWidth: 0.3, MaximumPos: pos}}, 250, nil))
	}

	d := NewDeconvoluter().WithThreads(3)
	seq, err := d.DeconvoluteSpectra(spectra)
	if err != nil {
		t.Fatalf("DeconvoluteSpectra returned error: %v", err)
	}
	par, err := d.DeconvoluteSpectraParallel(spectra)
	if err != nil {
		t.Fatalf("DeconvoluteSpectraParallel returned error: %v", err)
	}
	if len(seq) != len(par) {
		t.Fatalf("len(seq)=%d len(par)=%d", len(seq), len(par))
	}
	for i := range seq {
		if math.Abs(seq[i].MSE-par[i].MSE) > 1e-9 {
			t.Errorf("result[%d]: sequential MSE=%g parallel MSE=%g", i, seq[i].MSE, par[i].MSE)
		}
	}
}

func TestWithLoggerNilDisablesLogging(t *testing.T) {
	d := NewDeconvoluter().WithLogger(nil)
	if d.logger() == nil {
		t.Fatalf("logger() returned nil; a silent logger should still be usable")
	}
}

func TestWithLoggerCustom(t *testing.T) {
	custom := logrus.New()
	d := NewDeconvoluter().WithLogger(custom)
	if d.logger() != custom {
		t.Errorf("logger() did not return the configured logger")
	}
}
