// SPDX-License-Identifier: MIT

package metabodecon

import "math"

// Lorentzian is a single resonance line shape
//
//	L(x) = sf / ((x - maxp)^2 + hw^2)
//
// parameterized by a scale factor sf, a half-width-at-half-maximum hw,
// and a center position maxp on the chemical-shift axis.
type Lorentzian struct {
	ScaleFactor   float64
	HalfWidth     float64
	MaximumPos    float64
}

// Eval evaluates the Lorentzian at x.
func (l Lorentzian) Eval(x float64) float64 {
	d := x - l.MaximumPos
	return l.ScaleFactor / (d*d + l.HalfWidth*l.HalfWidth)
}

// Integral returns the analytical integral of the Lorentzian over all
// of ℝ: sf * π / hw.
func (l Lorentzian) Integral() float64 {
	return l.ScaleFactor * math.Pi / l.HalfWidth
}

func lorentzianFromLinearParams(a, m, b float64) Lorentzian {
	hw := math.Sqrt(b)
	return Lorentzian{
		ScaleFactor: a / hw,
		HalfWidth:   hw,
		MaximumPos:  m,
	}
}
