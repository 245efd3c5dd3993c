package cluster

import "math"

// Knee locates the elbow of a convex decreasing curve by the maximum distance
// from the chord joining its endpoints. It returns the x value at the elbow
// and false when the curve is too short or has no interior bend.
func Knee(xs []float64, ys []float64) (float64, bool) {
	if len(xs) < 3 || len(xs) != len(ys) {
		return 0, false
	}

	x0, y0 := xs[0], ys[0]
	x1, y1 := xs[len(xs)-1], ys[len(ys)-1]
	norm := math.Hypot(x1-x0, y1-y0)
	if norm == 0 {
		return 0, false
	}

	best, bestDist := 0, 0.0
	for i := 1; i < len(xs)-1; i++ {
		// Perpendicular distance from (xs[i], ys[i]) to the chord.
		d := math.Abs((y1-y0)*xs[i]-(x1-x0)*ys[i]+x1*y0-y1*x0) / norm
		if d > bestDist {
			best, bestDist = i, d
		}
	}

	if bestDist == 0 {
		return 0, false
	}
	return xs[best], true
}
