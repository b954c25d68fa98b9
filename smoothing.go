// SPDX-License-Identifier: MIT

package metabodecon

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// maxSmoothingIterations bounds MovingAverage.Iterations.
const maxSmoothingIterations = 1000

// Smoother denoises a raw intensity sequence into one of identical
// length. The only recognized variants are Identity and MovingAverage;
// this is the complete set.
type Smoother interface {
	Smooth(y []float64) ([]float64, error)
	validate() error
}

// Identity returns the input unchanged.
type Identity struct{}

func (Identity) Smooth(y []float64) ([]float64, error) {
	out := make([]float64, len(y))
	copy(out, y)
	return out, nil
}

func (Identity) validate() error { return nil }

// MovingAverage smooths by repeatedly applying a centered moving average
// of odd Window size over Iterations passes. Edge samples use a
// symmetric reflection boundary so the output keeps the input's length.
// Iterations == 0 is the identity.
type MovingAverage struct {
	Window     int
	Iterations int
}

func (m MovingAverage) validate() error {
	const stage = "smoothing"
	if m.Window < 1 || m.Window%2 == 0 {
		return newErr(InvalidSmoothingSettings, stage,
			fmt.Sprintf("window must be odd and >= 1, got %d", m.Window))
	}
	if m.Iterations < 0 || m.Iterations > maxSmoothingIterations {
		return newErr(InvalidSmoothingSettings, stage,
			fmt.Sprintf("iterations must be in [0, %d], got %d", maxSmoothingIterations, m.Iterations))
	}
	return nil
}

func (m MovingAverage) Smooth(y []float64) ([]float64, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	out := make([]float64, len(y))
	copy(out, y)
	if m.Iterations == 0 || m.Window == 1 {
		return out, nil
	}

	half := m.Window / 2
	buf := make([]float64, len(y))
	window := make([]float64, m.Window)

	for iter := 0; iter < m.Iterations; iter++ {
		for i := range out {
			for k := -half; k <= half; k++ {
				window[k+half] = out[reflect(i+k, len(out))]
			}
			buf[i] = floats.Sum(window) / float64(m.Window)
		}
		copy(out, buf)
	}
	return out, nil
}

// reflect maps an out-of-range index back into [0, n) using symmetric
// reflection at the boundaries, so edge samples of a moving average see
// a mirrored continuation of the sequence rather than running short.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}
