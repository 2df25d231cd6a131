package math

import (
	"slices"
	"sort"
)

// Point represents a 2D point for interpolation
type Point struct {
	X, Y float64
}

// LinearInterpolator implements piecewise linear interpolation over a fixed table.
// Queries outside the table clamp to the nearest end value instead of extrapolating.
type LinearInterpolator struct {
	points []Point
}

// NewLinearInterpolator creates a new linear interpolator. Points are sorted by X; the
// table must not be empty.
func NewLinearInterpolator(points []Point) *LinearInterpolator {
	if len(points) == 0 {
		panic("math: linear interpolator needs at least one point")
	}
	sorted := slices.Clone(points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	return &LinearInterpolator{points: sorted}
}

// At performs linear interpolation at x
func (li *LinearInterpolator) At(x float64) float64 {
	n := len(li.points)
	if x <= li.points[0].X {
		return li.points[0].Y
	}
	if x >= li.points[n-1].X {
		return li.points[n-1].Y
	}

	// First point strictly to the right of x; x lies in [points[i-1].X, points[i].X).
	i := sort.Search(n, func(k int) bool { return li.points[k].X > x })
	x1, y1 := li.points[i-1].X, li.points[i-1].Y
	x2, y2 := li.points[i].X, li.points[i].Y
	if x2 == x1 {
		return y1
	}
	return y1 + (y2-y1)*(x-x1)/(x2-x1)
}
