// SPDX-License-Identifier: MIT

package metabodecon

import "runtime"

// Deconvolution is the result of deconvoluting a Spectrum: an ordered
// list of Lorentzians (by MaximumPos ascending) and the mean squared
// error of their reconstruction against the measured intensities.
type Deconvolution struct {
	Lorentzians []Lorentzian
	MSE         float64
}

// Superposition evaluates the sum of all components at x.
func (d *Deconvolution) Superposition(x float64) float64 {
	var sum float64
	for _, l := range d.Lorentzians {
		sum += l.Eval(x)
	}
	return sum
}

// SuperpositionVec evaluates the superposition at every point of x, in
// order. It is equivalent to mapping Superposition over x.
func (d *Deconvolution) SuperpositionVec(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = d.Superposition(xi)
	}
	return out
}

// SuperpositionVecParallel is SuperpositionVec computed on threads
// goroutines (runtime.NumCPU() when threads <= 0), splitting x into
// contiguous chunks. Results are bit-identical to SuperpositionVec for
// a fixed chunk layout.
func (d *Deconvolution) SuperpositionVecParallel(x []float64, threads int) []float64 {
	out := make([]float64, len(x))
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads > len(x) {
		threads = len(x)
	}
	if threads <= 1 {
		return d.SuperpositionVec(x)
	}

	chunk := (len(x) + threads - 1) / threads
	done := make(chan struct{}, threads)
	for t := 0; t < threads; t++ {
		start := t * chunk
		end := start + chunk
		if start >= len(x) {
			done <- struct{}{}
			continue
		}
		if end > len(x) {
			end = len(x)
		}
		go func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = d.Superposition(x[i])
			}
			done <- struct{}{}
		}(start, end)
	}
	for t := 0; t < threads; t++ {
		<-done
	}
	return out
}

// Integral returns the analytical integral of component k.
func (d *Deconvolution) Integral(k int) float64 {
	return d.Lorentzians[k].Integral()
}
