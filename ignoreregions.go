// SPDX-License-Identifier: MIT

package metabodecon

import (
	"fmt"
	"sort"
)

// IgnoreRegions is a normalized, disjoint, sorted set of axis intervals.
// Peaks whose apex falls inside the union are discarded by the selector,
// and samples inside it are excluded from MSE accounting.
type IgnoreRegions struct {
	intervals [][2]float64
}

// NewIgnoreRegions validates and normalizes raw (lo, hi) intervals into
// a disjoint, sorted IgnoreRegions set. Overlapping or adjacent input
// intervals are merged.
func NewIgnoreRegions(raw [][2]float64) (IgnoreRegions, error) {
	const stage = "ignore_regions"

	intervals := make([][2]float64, 0, len(raw))
	for _, iv := range raw {
		lo, hi := iv[0], iv[1]
		if !isFinite(lo) || !isFinite(hi) || lo >= hi {
			return IgnoreRegions{}, newErr(InvalidIgnoreRegion, stage,
				fmt.Sprintf("region (%g, %g) is degenerate or non-finite", lo, hi))
		}
		intervals = append(intervals, [2]float64{lo, hi})
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i][0] < intervals[j][0] })

	merged := make([][2]float64, 0, len(intervals))
	for _, iv := range intervals {
		if len(merged) > 0 && iv[0] <= merged[len(merged)-1][1] {
			if iv[1] > merged[len(merged)-1][1] {
				merged[len(merged)-1][1] = iv[1]
			}
			continue
		}
		merged = append(merged, iv)
	}

	return IgnoreRegions{intervals: merged}, nil
}

// Contains reports whether x falls within any ignored interval.
func (r IgnoreRegions) Contains(x float64) bool {
	intervals := r.intervals
	lo, hi := 0, len(intervals)
	for lo < hi {
		mid := (lo + hi) / 2
		if intervals[mid][1] <= x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(intervals) {
		return false
	}
	return intervals[lo][0] <= x && x < intervals[lo][1]
}

// Intervals returns the normalized, disjoint, sorted intervals.
func (r IgnoreRegions) Intervals() [][2]float64 { return r.intervals }

// CoversRange reports whether the ignored union fully covers [lo, hi].
func (r IgnoreRegions) CoversRange(lo, hi float64) bool {
	cursor := lo
	for _, iv := range r.intervals {
		if iv[0] > cursor {
			return false
		}
		if iv[1] > cursor {
			cursor = iv[1]
		}
		if cursor >= hi {
			return true
		}
	}
	return cursor >= hi
}
