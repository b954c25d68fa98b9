// SPDX-License-Identifier: MIT

package metabodecon

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// madToSigma converts a median absolute deviation to a normal-consistent
// standard deviation estimate.
const madToSigma = 1.4826

// sigmaFloor prevents division by zero when the smoothed second
// difference is exactly flat inside the signal region.
const sigmaFloor = 1e-12

// DefaultNoiseScoreThreshold is the noise-score threshold inherited from
// the reference implementation.
const DefaultNoiseScoreThreshold = 6.4

// Selector filters candidate peak triplets, discarding those
// indistinguishable from noise.
type Selector interface {
	Select(y, d2 []float64, candidates []PeakTriplet, iL, iR int, ignore IgnoreRegions, x []float64) ([]PeakTriplet, error)
	validate() error
}

// DetectorOnlySelector passes every candidate through, subject only to
// the ignore-region filter.
type DetectorOnlySelector struct{}

func (DetectorOnlySelector) validate() error { return nil }

func (DetectorOnlySelector) Select(y, d2 []float64, candidates []PeakTriplet, iL, iR int, ignore IgnoreRegions, x []float64) ([]PeakTriplet, error) {
	kept := filterIgnored(candidates, ignore, x)
	if len(kept) == 0 {
		return nil, classifyEmptySelection(candidates, iL, iR)
	}
	return kept, nil
}

// NoiseScoreSelector keeps candidates whose noise score
//
//	s = (y[c] - (y[l]+y[r])/2) / sigma
//
// meets or exceeds Threshold, where sigma is the MAD-based robust noise
// estimate of the second difference over the signal region.
type NoiseScoreSelector struct {
	Threshold float64
}

func (s NoiseScoreSelector) validate() error {
	if !isFinite(s.Threshold) || s.Threshold <= 0 {
		return newErr(InvalidSelectionSettings, "selection",
			fmt.Sprintf("threshold must be positive and finite, got %g", s.Threshold))
	}
	return nil
}

func (s NoiseScoreSelector) Select(y, d2 []float64, candidates []PeakTriplet, iL, iR int, ignore IgnoreRegions, x []float64) ([]PeakTriplet, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	sigma := robustSigma(d2, iL, iR)

	var scored []PeakTriplet
	for _, t := range candidates {
		score := (y[t.C] - (y[t.L]+y[t.R])/2) / sigma
		if score >= s.Threshold {
			scored = append(scored, t)
		}
	}

	kept := filterIgnored(scored, ignore, x)
	if len(kept) == 0 {
		return nil, classifyEmptySelection(candidates, iL, iR)
	}
	return kept, nil
}

// robustSigma estimates baseline noise as 1.4826 * MAD(d2) over the
// signal region, floored away from zero.
func robustSigma(d2 []float64, iL, iR int) float64 {
	window := append([]float64(nil), d2[iL:iR+1]...)
	median := medianOf(window)

	deviations := make([]float64, len(window))
	for i, v := range window {
		deviations[i] = math.Abs(v - median)
	}
	mad := medianOf(deviations)

	sigma := madToSigma * mad
	if sigma < sigmaFloor {
		sigma = sigmaFloor
	}
	return sigma
}

func medianOf(v []float64) float64 {
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// filterIgnored drops peaks whose apex lies within the ignore-region
// union, in original axis units.
func filterIgnored(candidates []PeakTriplet, ignore IgnoreRegions, x []float64) []PeakTriplet {
	if len(ignore.Intervals()) == 0 {
		return candidates
	}
	kept := make([]PeakTriplet, 0, len(candidates))
	for _, t := range candidates {
		if !ignore.Contains(x[t.C]) {
			kept = append(kept, t)
		}
	}
	return kept
}

// classifyEmptySelection decides which "no peaks survived" error to
// report: NoPeaksDetected if the signal region is empty or the detector
// found no candidates, EmptySignalRegion if candidates existed but none
// survived selection.
func classifyEmptySelection(candidates []PeakTriplet, iL, iR int) error {
	if iL > iR || len(candidates) == 0 {
		return newErr(NoPeaksDetected, "selection", "")
	}
	return newErr(EmptySignalRegion, "selection", "")
}
