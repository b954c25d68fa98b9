// SPDX-License-Identifier: MIT

package metabodecon

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultFittingIterations is the refinement iteration count inherited
// from the reference implementation.
const DefaultFittingIterations = 10

// MaxFittingIterations bounds Fitter.Iterations.
const MaxFittingIterations = 100

// degenerateDeterminant is the threshold below which the 3x3 fit system
// is treated as singular and the triplet is rejected.
const degenerateDeterminant = 1e-20

// Fitter converts selected peak triplets into Lorentzian parameters by
// closed-form solution of a 3-point system, optionally refined over a
// number of iterations against the residual.
type Fitter struct {
	Iterations int
}

func (f Fitter) validate() error {
	if f.Iterations < 0 || f.Iterations > MaxFittingIterations {
		return newErr(InvalidFittingSettings, "fitting",
			fmt.Sprintf("iterations must be in [0, %d], got %d", MaxFittingIterations, f.Iterations))
	}
	return nil
}

// Fit solves each peak triplet in peaks against the smoothed intensities
// y on axis x, then optionally refines the fit over f.Iterations passes
// against the residual. Triplets that yield a degenerate system are
// silently dropped. Output is sorted by MaximumPos ascending, ties
// broken by original triplet order.
func (f Fitter) Fit(x, y []float64, peaks []PeakTriplet) ([]Lorentzian, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	type fitted struct {
		triplet PeakTriplet
		lor     Lorentzian
		ok      bool
	}

	results := make([]fitted, len(peaks))
	for i, t := range peaks {
		lor, ok := fitTriplet(x, y, t)
		results[i] = fitted{triplet: t, lor: lor, ok: ok}
	}

	for iter := 0; iter < f.Iterations; iter++ {
		superposed := make([]float64, len(x))
		for i, xi := range x {
			var sum float64
			for _, r := range results {
				if r.ok {
					sum += r.lor.Eval(xi)
				}
			}
			superposed[i] = sum
		}
		residual := make([]float64, len(y))
		for i := range y {
			residual[i] = y[i] - superposed[i]
		}

		next := make([]fitted, len(results))
		for i, r := range results {
			if !r.ok {
				next[i] = r
				continue
			}
			adjusted := make([]float64, len(y))
			copy(adjusted, residual)
			for _, idx := range []int{r.triplet.L, r.triplet.C, r.triplet.R} {
				adjusted[idx] += r.lor.Eval(x[idx])
			}
			lor, ok := fitTriplet(x, adjusted, r.triplet)
			if ok {
				next[i] = fitted{triplet: r.triplet, lor: lor, ok: true}
			} else {
				next[i] = r // keep prior fit if refinement step degenerates
			}
		}
		results = next
	}

	out := make([]Lorentzian, 0, len(results))
	for _, r := range results {
		if r.ok {
			out = append(out, r.lor)
		}
	}

	sortLorentziansByMaxPos(out)
	return out, nil
}

// fitTriplet solves the 3x3 linear system
//
//	x_i^2 * u1 - 2*x_i*u2 + u3 = 1/y_i   for i in {l, c, r}
//
// for u = (1/A, M/A, (M^2+B)/A), recovers A = sf, M = maxp,
// B = hw^2, and rejects the triplet if the system is near-singular or
// the recovered half-width is not a positive finite number.
func fitTriplet(x, y []float64, t PeakTriplet) (Lorentzian, bool) {
	idx := [3]int{t.L, t.C, t.R}

	a := mat.NewDense(3, 3, nil)
	b := mat.NewVecDense(3, nil)
	for row, i := range idx {
		xi := x[i]
		yi := y[i]
		if yi == 0 || !isFinite(yi) {
			return Lorentzian{}, false
		}
		a.SetRow(row, []float64{xi * xi, -2 * xi, 1})
		b.SetVec(row, 1/yi)
	}

	var lu mat.LU
	lu.Factorize(a)

	det := lu.Det()
	if !isFinite(det) || math.Abs(det) < degenerateDeterminant {
		return Lorentzian{}, false
	}

	var u mat.VecDense
	if err := lu.SolveVecTo(&u, false, b); err != nil {
		return Lorentzian{}, false
	}

	u1, u2, u3 := u.AtVec(0), u.AtVec(1), u.AtVec(2)
	if u1 == 0 || !isFinite(u1) {
		return Lorentzian{}, false
	}

	A := 1 / u1
	M := u2 * A
	B := u3*A - M*M

	if !isFinite(B) || B <= 0 {
		return Lorentzian{}, false
	}

	// lorentzianFromLinearParams takes sf*hw, not sf.
	lor := lorentzianFromLinearParams(A*math.Sqrt(B), M, B)
	if !isFinite(lor.HalfWidth) || !isFinite(lor.ScaleFactor) || lor.HalfWidth <= 0 {
		return Lorentzian{}, false
	}
	return lor, true
}

func sortLorentziansByMaxPos(l []Lorentzian) {
	// Insertion sort: stable, and the expected peak counts (tens, not
	// thousands) make its simplicity preferable to importing sort for
	// a few dozen elements with a custom Less.
	for i := 1; i < len(l); i++ {
		j := i
		for j > 0 && l[j].MaximumPos < l[j-1].MaximumPos {
			l[j], l[j-1] = l[j-1], l[j]
			j--
		}
	}
}
