// SPDX-License-Identifier: MIT

package metabodecon

import (
	"math"
	"testing"
)

func TestStubAlignerAlwaysFails(t *testing.T) {
	_, err := StubAligner{}.Align(&Deconvolution{}, &Deconvolution{}, []float64{0, 1, 2})
	assertKind(t, err, InvalidAlignmentStrategy)
}

func TestCrossCorrelationAlignerRejectsShortAxis(t *testing.T) {
	_, err := CrossCorrelationAligner{}.Align(&Deconvolution{}, &Deconvolution{}, []float64{0})
	assertKind(t, err, UnexpectedError)
}

func TestCrossCorrelationAlignerFindsKnownShift(t *testing.T) {
	n := 256
	step := 0.05
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = float64(i) * step
	}

	reference := &Deconvolution{Lorentzians: []Lorentzian{
		{ScaleFactor: 10, HalfWidth: 0.2, MaximumPos: 5},
	}}
	shiftSamples := 4
	target := &Deconvolution{Lorentzians: []Lorentzian{
		{ScaleFactor: 10, HalfWidth: 0.2, MaximumPos: 5 + float64(shiftSamples)*step},
	}}

	shift, err := CrossCorrelationAligner{}.Align(reference, target, axis)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	want := float64(shiftSamples) * step
	if math.Abs(math.Abs(shift)-math.Abs(want)) > step*1.5 {
		t.Errorf("shift = %g, want close to ±%g", shift, want)
	}
}
