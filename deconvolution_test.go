// SPDX-License-Identifier: MIT

package metabodecon

import (
	"math"
	"testing"
)

func TestDeconvolutionSuperposition(t *testing.T) {
	d := &Deconvolution{Lorentzians: []Lorentzian{
		{ScaleFactor: 1, HalfWidth: 1, MaximumPos: 0},
		{ScaleFactor: 2, HalfWidth: 1, MaximumPos: 5},
	}}
	got := d.Superposition(0)
	want := d.Lorentzians[0].Eval(0) + d.Lorentzians[1].Eval(0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Superposition(0) = %g, want %g", got, want)
	}
}

func TestDeconvolutionSuperpositionVecMatchesScalar(t *testing.T) {
	d := &Deconvolution{Lorentzians: []Lorentzian{
		{ScaleFactor: 3, HalfWidth: 0.7, MaximumPos: 2},
		{ScaleFactor: 1, HalfWidth: 2, MaximumPos: 8},
	}}
	x := make([]float64, 50)
	for i := range x {
		x[i] = float64(i) * 0.2
	}
	vec := d.SuperpositionVec(x)
	for i, xi := range x {
		want := d.Superposition(xi)
		if vec[i] != want {
			t.Errorf("SuperpositionVec[%d] = %g, want %g", i, vec[i], want)
		}
	}
}

func TestDeconvolutionSuperpositionVecParallelMatchesSequential(t *testing.T) {
	d := &Deconvolution{Lorentzians: []Lorentzian{
		{ScaleFactor: 3, HalfWidth: 0.7, MaximumPos: 2},
		{ScaleFactor: 1, HalfWidth: 2, MaximumPos: 8},
		{ScaleFactor: 5, HalfWidth: 1, MaximumPos: 15},
	}}
	x := make([]float64, 237) // deliberately not a multiple of common thread counts
	for i := range x {
		x[i] = float64(i) * 0.1
	}
	seq := d.SuperpositionVec(x)
	for _, threads := range []int{1, 2, 3, 4, 8} {
		par := d.SuperpositionVecParallel(x, threads)
		for i := range x {
			if par[i] != seq[i] {
				t.Errorf("threads=%d: SuperpositionVecParallel[%d] = %g, want %g", threads, i, par[i], seq[i])
			}
		}
	}
}

func TestDeconvolutionIntegral(t *testing.T) {
	d := &Deconvolution{Lorentzians: []Lorentzian{
		{ScaleFactor: 2, HalfWidth: 1, MaximumPos: 0},
	}}
	got := d.Integral(0)
	want := 2 * math.Pi
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Integral(0) = %g, want %g", got, want)
	}
}
