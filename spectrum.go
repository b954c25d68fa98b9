// SPDX-License-Identifier: MIT

package metabodecon

import (
	"fmt"
	"math"
)

// relativeSpacingTolerance bounds how much an interior sample spacing may
// deviate from the axis's nominal step before the spectrum is rejected as
// non-uniformly spaced.
const relativeSpacingTolerance = 1e-3

// Metadata carries optional provenance for a Spectrum. Readers populate
// it; spectra built directly from slices leave it zero-valued.
type Metadata struct {
	Nucleus           string
	CarrierFrequency  float64 // MHz
	ReferenceCompound string
	Solvent           string
}

// Spectrum is an immutable, validated 1D NMR spectrum: a monotonic
// chemical-shift axis, the sampled intensities on that axis, and the
// signal region boundaries a caller declared when constructing it.
//
// A Spectrum is a value. Nothing mutates it after NewSpectrum returns.
type Spectrum struct {
	x        []float64
	y        []float64
	a, b     float64
	iL, iR   int
	metadata Metadata
}

// NewSpectrum validates and constructs a Spectrum from a chemical-shift
// axis x, intensities y, and signal boundaries (a, b).
func NewSpectrum(x, y []float64, a, b float64) (*Spectrum, error) {
	return newSpectrum(x, y, a, b, Metadata{})
}

// NewSpectrumWithMetadata is NewSpectrum plus reader-supplied metadata.
func NewSpectrumWithMetadata(x, y []float64, a, b float64, meta Metadata) (*Spectrum, error) {
	return newSpectrum(x, y, a, b, meta)
}

func newSpectrum(x, y []float64, a, b float64, meta Metadata) (*Spectrum, error) {
	const stage = "spectrum"

	if len(x) == 0 || len(y) == 0 {
		return nil, newErr(EmptyData, stage,
			fmt.Sprintf("chemical shifts has %d elements, intensities has %d elements", len(x), len(y)))
	}
	if len(x) != len(y) {
		return nil, newErr(DataLengthMismatch, stage,
			fmt.Sprintf("chemical shifts has %d elements, intensities has %d elements", len(x), len(y)))
	}
	if len(x) < 2 {
		return nil, newErr(EmptyData, stage, "spectrum must contain at least 2 samples")
	}

	n := len(x)
	dx := (x[n-1] - x[0]) / float64(n-1)
	if !isFinite(dx) || dx == 0 {
		return nil, newErr(NonUniformSpacing, stage, "axis endpoints coincide or are non-finite")
	}
	for i := 1; i < n; i++ {
		step := x[i] - x[i-1]
		if !isFinite(step) {
			return nil, newErr(NonUniformSpacing, stage,
				fmt.Sprintf("value at index %d is not finite", i))
		}
		if math.Abs(step-dx) > relativeSpacingTolerance*math.Abs(dx) {
			return nil, newErr(NonUniformSpacing, stage,
				fmt.Sprintf("spacing at index %d deviates from nominal step", i))
		}
	}

	for i, v := range y {
		if !isFinite(v) {
			return nil, newErr(InvalidIntensities, stage,
				fmt.Sprintf("value at index %d is not finite", i))
		}
	}

	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	xMin, xMax := x[0], x[n-1]
	if xMin > xMax {
		xMin, xMax = xMax, xMin
	}
	if !isFinite(lo) || !isFinite(hi) || lo >= hi || hi < xMin || lo > xMax {
		return nil, newErr(InvalidSignalBoundaries, stage,
			fmt.Sprintf("boundaries (%g, %g) do not intersect axis range (%g, %g)", a, b, xMin, xMax))
	}

	iL := closestIndex(x, lo)
	iR := closestIndex(x, hi)
	if iL > iR {
		iL, iR = iR, iL
	}

	xCopy := append([]float64(nil), x...)
	yCopy := append([]float64(nil), y...)

	return &Spectrum{
		x: xCopy, y: yCopy,
		a: lo, b: hi,
		iL: iL, iR: iR,
		metadata: meta,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// closestIndex returns the index of the sample in x closest to target,
// clamped to [0, len(x)-1]. x is assumed monotonic (increasing or
// decreasing).
func closestIndex(x []float64, target float64) int {
	n := len(x)
	increasing := x[n-1] >= x[0]

	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi) / 2
		v := x[mid]
		var less bool
		if increasing {
			less = v < target
		} else {
			less = v > target
		}
		if less {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo > 0 {
		if math.Abs(x[lo-1]-target) < math.Abs(x[lo]-target) {
			return lo - 1
		}
	}
	return lo
}

// ChemicalShifts returns the chemical-shift axis.
func (s *Spectrum) ChemicalShifts() []float64 { return s.x }

// Intensities returns the sampled intensities.
func (s *Spectrum) Intensities() []float64 { return s.y }

// Len returns the number of samples.
func (s *Spectrum) Len() int { return len(s.x) }

// SignalBoundaries returns the (a, b) axis interval declared at
// construction, sorted ascending.
func (s *Spectrum) SignalBoundaries() (float64, float64) { return s.a, s.b }

// SignalRegion returns the index range [iL, iR] corresponding to the
// declared signal boundaries.
func (s *Spectrum) SignalRegion() (int, int) { return s.iL, s.iR }

// Metadata returns the optional reader-supplied metadata.
func (s *Spectrum) Metadata() Metadata { return s.metadata }

// Step returns the nominal spacing between consecutive axis samples.
func (s *Spectrum) Step() float64 {
	n := len(s.x)
	return (s.x[n-1] - s.x[0]) / float64(n-1)
}
