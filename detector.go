// SPDX-License-Identifier: MIT

package metabodecon

// PeakTriplet identifies a candidate peak by three indices into the
// smoothed intensity sequence: the left inflection, the apex, and the
// right inflection.
type PeakTriplet struct {
	L, C, R int
}

// secondDifference computes d2[i] = y[i-1] - 2y[i] + y[i+1] for the
// inner points of y. d2[0] and d2[len(y)-1] are left as zero and are
// never consulted by detectPeaks (the boundary scan only looks at
// indices 1..len(y)-2).
func secondDifference(y []float64) []float64 {
	d2 := make([]float64, len(y))
	for i := 1; i < len(y)-1; i++ {
		d2[i] = y[i-1] - 2*y[i] + y[i+1]
	}
	return d2
}

// detectPeaks scans the curvature of the smoothed intensities y within
// the signal region [iL, iR] and emits candidate peak triplets in
// ascending apex order. A peak is a contiguous run of strictly negative
// d2 flanked by non-negative d2 on both sides; l is the last
// non-negative index before the run, r is the first non-negative index
// after it, and the apex c is the index of maximum y within the run
// (smallest index on ties). Peaks that would straddle the signal region
// boundary are dropped.
func detectPeaks(y []float64, d2 []float64, iL, iR int) []PeakTriplet {
	n := len(y)
	var triplets []PeakTriplet

	i := 1
	for i < n-1 {
		if d2[i] >= 0 {
			i++
			continue
		}
		// Start of a negative run.
		l := i - 1
		runStart := i
		for i < n-1 && d2[i] < 0 {
			i++
		}
		runEnd := i - 1
		foundRightFlank := i < n-1 // d2[i] >= 0 genuinely, not just end-of-array
		r := i

		if !foundRightFlank || l < iL || r > iR {
			continue
		}

		c := runStart
		best := y[runStart]
		for j := runStart + 1; j <= runEnd; j++ {
			if y[j] > best {
				best = y[j]
				c = j
			}
		}
		triplets = append(triplets, PeakTriplet{L: l, C: c, R: r})
	}

	return triplets
}
