// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package layout holds the pure column layout and virtualization math:
// width parsing, cumulative offsets, and the visible-window computation
// used by the column virtualization plugin and the grid host.
package layout

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultColumnWidth is the pixel fallback for absent or unparsable
// column widths.
const DefaultColumnWidth = 100.0

// ParseWidth converts a declared column width into a finite non-negative
// pixel number. Accepted forms are a bare number ("120", "90.5") and a
// px-suffixed number ("120px"). Absent or unparsable values fall back to
// DefaultColumnWidth.
func ParseWidth(width string) float64 {
	s := strings.TrimSpace(width)
	if s == "" {
		return DefaultColumnWidth
	}
	s = strings.TrimSuffix(s, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return DefaultColumnWidth
	}
	return f
}

// Offsets returns each column's cumulative left pixel offset: the sum of
// all preceding widths. The first column's offset is 0.
func Offsets(widths []float64) []float64 {
	offsets := make([]float64, len(widths))
	var left float64
	for i, w := range widths {
		offsets[i] = left
		left += w
	}
	return offsets
}

// TotalWidth returns the sum of all column widths.
func TotalWidth(widths []float64) float64 {
	var total float64
	for _, w := range widths {
		total += w
	}
	return total
}

// ShouldVirtualize is the pure boolean gate deciding whether column
// virtualization is active: false when auto-enable is off, otherwise
// true iff the column count exceeds the threshold.
func ShouldVirtualize(columnCount, threshold int, autoEnable bool) bool {
	if !autoEnable {
		return false
	}
	return columnCount > threshold
}

// Range is an inclusive visible column index range.
type Range struct {
	Start, End int
}

// Indices returns the explicit list of column indices in the range.
func (r Range) Indices() []int {
	if r.End < r.Start {
		return nil
	}
	out := make([]int, 0, r.End-r.Start+1)
	for i := r.Start; i <= r.End; i++ {
		out = append(out, i)
	}
	return out
}

// VisibleRange computes the inclusive [start, end] column window for the
// given horizontal scroll position and viewport width, expanded by
// overscan columns on both sides (clamped to the column bounds).
//
// The start boundary is found by binary search over the offsets: the
// first column whose right edge exceeds scrollLeft. The end boundary is
// a linear scan forward from there, since it is typically close to the
// start; only the start benefits from a logarithmic lookup on large
// column counts as it is recomputed on every scroll tick.
func VisibleRange(scrollLeft, viewportWidth float64, offsets, widths []float64, overscan int) Range {
	n := len(offsets)
	if n == 0 || len(widths) != n {
		return Range{Start: 0, End: -1}
	}

	// First column whose right edge (offset+width) exceeds scrollLeft.
	start := sort.Search(n, func(i int) bool {
		return offsets[i]+widths[i] > scrollLeft
	})
	if start == n {
		start = n - 1
	}

	// Last column whose left offset is still inside the viewport.
	rightEdge := scrollLeft + viewportWidth
	end := start
	for end+1 < n && offsets[end+1] < rightEdge {
		end++
	}

	start -= overscan
	if start < 0 {
		start = 0
	}
	end += overscan
	if end > n-1 {
		end = n - 1
	}
	return Range{Start: start, End: end}
}
