// SPDX-License-Identifier: MIT

package metabodecon

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// OptimizationResult is the outcome of OptimizeSettings: the best
// smoother/selector configuration found and the MSE it achieved against
// the reference spectrum.
type OptimizationResult struct {
	Smoother  MovingAverage
	Threshold float64
	MSE       float64
}

// windowGrid is the set of MovingAverage window sizes considered by
// OptimizeSettings.
var windowGrid = []int{3, 5, 7, 9, 11}

// iterationGrid is the set of MovingAverage iteration counts considered
// by OptimizeSettings.
var iterationGrid = []int{1, 2, 3, 5}

// OptimizeSettings grid-searches MovingAverage window/iterations and, at
// each grid point, refines the noise-score threshold continuously with
// gonum's optimize.Minimize (mirroring the Problem/Minimize pattern used
// for recalibration-parameter fitting elsewhere in this ecosystem),
// minimizing reconstruction MSE against reference. It returns the best
// configuration found.
//
// This is explicitly an optional, best-effort helper: the reference
// implementation's equivalent method never specified its objective in
// enough detail to pin down a single correct answer, so this grid
// search is one reasonable interpretation, not a contract.
func (d *Deconvoluter) OptimizeSettings(reference *Spectrum) (OptimizationResult, error) {
	best := OptimizationResult{MSE: math.Inf(1)}

	for _, window := range windowGrid {
		for _, iterations := range iterationGrid {
			smoother := MovingAverage{Window: window, Iterations: iterations}

			problem := optimize.Problem{
				Func: func(p []float64) float64 {
					threshold := p[0]
					if threshold <= 0 {
						return math.Inf(1)
					}
					trial := &Deconvoluter{
						smoother: smoother,
						selector: NoiseScoreSelector{Threshold: threshold},
						fitter:   d.fitter,
						ignore:   d.ignore,
						threads:  d.threads,
						log:      d.log,
					}
					dec, err := trial.DeconvoluteSpectrum(reference)
					if err != nil {
						return math.Inf(1)
					}
					return dec.MSE
				},
			}

			result, err := optimize.Minimize(problem, []float64{DefaultNoiseScoreThreshold}, nil, nil)
			if err != nil || result == nil {
				continue
			}
			if result.F < best.MSE {
				best = OptimizationResult{
					Smoother:  smoother,
					Threshold: result.X[0],
					MSE:       result.F,
				}
			}
		}
	}

	if math.IsInf(best.MSE, 1) {
		return best, newErr(NoPeaksDetected, "optimize_settings", "no grid point produced a valid deconvolution")
	}
	return best, nil
}
