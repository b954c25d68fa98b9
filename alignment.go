// SPDX-License-Identifier: MIT

package metabodecon

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Aligner aligns a Deconvolution against a reference, returning the
// shift (in chemical-shift axis units) that best lines up the two.
//
// Alignment across multiple deconvolutions is declared but unfinished
// upstream in the reference implementation; implementations here range
// from a spec-mandated stub to a best-effort FFT cross-correlation.
type Aligner interface {
	Align(reference, target *Deconvolution, axis []float64) (float64, error)
}

// StubAligner always fails with InvalidAlignmentStrategy, as permitted
// by the spec's Open Question on alignment: rather than guess at
// unfinished upstream semantics, callers that need alignment must opt
// into CrossCorrelationAligner explicitly.
type StubAligner struct{}

func (StubAligner) Align(reference, target *Deconvolution, axis []float64) (float64, error) {
	return 0, newErr(InvalidAlignmentStrategy, "alignment", "no alignment strategy configured")
}

// CrossCorrelationAligner estimates the shift between two
// Deconvolutions by FFT cross-correlation of their superpositions
// evaluated on a shared dense axis. It is a limited, best-effort
// implementation: it finds a single global shift and does not attempt
// the per-feature assignment the reference implementation's unfinished
// alignment module hints at (its directory structure carries separate
// "assignment", "feature", and "solving" concerns that this does not
// reproduce).
type CrossCorrelationAligner struct{}

func (CrossCorrelationAligner) Align(reference, target *Deconvolution, axis []float64) (float64, error) {
	if len(axis) < 2 {
		return 0, newErr(UnexpectedError, "alignment", "axis must contain at least 2 samples")
	}

	refY := reference.SuperpositionVec(axis)
	targetY := target.SuperpositionVec(axis)

	refSpec := fft.FFTReal(refY)
	targetSpec := fft.FFTReal(targetY)

	n := len(axis)
	cross := make([]complex128, n)
	for i := range cross {
		cross[i] = refSpec[i] * cmplx.Conj(targetSpec[i])
	}
	corr := fft.IFFT(cross)

	bestLag := 0
	bestMag := real(corr[0])
	for lag, v := range corr {
		mag := real(v)
		if mag > bestMag {
			bestMag = mag
			bestLag = lag
		}
	}
	// FFT cross-correlation lags wrap around; fold the upper half into
	// negative shifts.
	if bestLag > n/2 {
		bestLag -= n
	}

	step := math.Abs(axis[1] - axis[0])
	return float64(bestLag) * step, nil
}
