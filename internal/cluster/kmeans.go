// Package cluster fits the per-(platform,region) centroid models and picks the
// cluster count from the dispersion curve.
package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const (
	maxIterations = 100
	tolerance     = 1e-6
)

// KMeans is a fitted centroid model. Fields are exported for gob encoding.
type KMeans struct {
	K         int
	Centroids [][]float64
}

// FitKMeans runs k-means++ initialization followed by Lloyd iterations. The
// seed fixes initialization, so a given (points, k, seed) triple always yields
// the same model.
func FitKMeans(points [][]float64, k int, seed int64) *KMeans {
	if k > len(points) {
		k = len(points)
	}
	rng := rand.New(rand.NewSource(seed))

	centroids := plusPlusInit(points, k, rng)

	assignments := make([]int, len(points))
	for iter := 0; iter < maxIterations; iter++ {
		for i, p := range points {
			assignments[i] = nearest(p, centroids)
		}

		moved := 0.0
		for c := range centroids {
			mean := clusterMean(points, assignments, c)
			if mean == nil {
				// Empty cluster: reseed on the point farthest from its
				// centroid so every cluster keeps at least one member.
				far := farthestPoint(points, assignments, centroids)
				mean = append([]float64(nil), points[far]...)
				assignments[far] = c
			}
			moved += floats.Distance(centroids[c], mean, 2)
			centroids[c] = mean
		}

		if moved < tolerance {
			break
		}
	}

	return &KMeans{K: k, Centroids: centroids}
}

// Nearest returns the index of the closest centroid by Euclidean distance.
func (m *KMeans) Nearest(x []float64) int {
	return nearest(x, m.Centroids)
}

// Assign labels every point with its nearest centroid.
func (m *KMeans) Assign(points [][]float64) []int {
	labels := make([]int, len(points))
	for i, p := range points {
		labels[i] = nearest(p, m.Centroids)
	}
	return labels
}

func plusPlusInit(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), points[rng.Intn(len(points))]...))

	dists := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := floats.Distance(p, centroids[nearest(p, centroids)], 2)
			dists[i] = d * d
			total += dists[i]
		}

		if total == 0 {
			// All remaining points coincide with a centroid; duplicate one.
			centroids = append(centroids, append([]float64(nil), points[rng.Intn(len(points))]...))
			continue
		}

		target := rng.Float64() * total
		acc := 0.0
		chosen := len(points) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), points[chosen]...))
	}

	return centroids
}

func nearest(x []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(x, centroid, 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func clusterMean(points [][]float64, assignments []int, c int) []float64 {
	var mean []float64
	count := 0
	for i, p := range points {
		if assignments[i] != c {
			continue
		}
		if mean == nil {
			mean = make([]float64, len(p))
		}
		floats.Add(mean, p)
		count++
	}
	if mean == nil {
		return nil
	}
	floats.Scale(1/float64(count), mean)
	return mean
}

func farthestPoint(points [][]float64, assignments []int, centroids [][]float64) int {
	far, farDist := 0, -1.0
	for i, p := range points {
		if d := floats.Distance(p, centroids[assignments[i]], 2); d > farDist {
			far, farDist = i, d
		}
	}
	return far
}
