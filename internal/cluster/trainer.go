package cluster

import (
	"errors"
	"math"
)

var ErrEmptyCorpus = errors.New("cluster: no documents to fit")

const (
	// DefaultSeed fixes every stochastic step of training so retraining on the
	// same corpus reproduces the same model.
	DefaultSeed = 50

	maxCandidateClusters = 10

	// Used when the dispersion curve has no detectable elbow.
	fallbackClusters = 3
)

// Model is the result of fitting a corpus: the centroid model, the cluster
// label of every input document, and the dispersion curve the cluster count
// was chosen from.
type Model struct {
	KMeans     *KMeans
	Labels     []int
	Dispersion []float64
}

type Trainer struct {
	Seed int64
}

func NewTrainer() *Trainer {
	return &Trainer{Seed: DefaultSeed}
}

// Fit sweeps candidate cluster counts from 1 to min(10, n), scores each by
// within-cluster dispersion under cosine distance, and keeps the model at the
// elbow of the dispersion curve.
func (t *Trainer) Fit(points [][]float64) (*Model, error) {
	if len(points) == 0 {
		return nil, ErrEmptyCorpus
	}

	maxK := min(maxCandidateClusters, len(points))
	candidates := make([]*KMeans, 0, maxK)
	xs := make([]float64, 0, maxK)
	dispersion := make([]float64, 0, maxK)
	for k := 1; k <= maxK; k++ {
		m := FitKMeans(points, k, t.Seed)
		candidates = append(candidates, m)
		xs = append(xs, float64(k))
		dispersion = append(dispersion, wcss(points, m))
	}

	chosen := fallbackClusters
	if elbow, ok := Knee(xs, dispersion); ok {
		chosen = int(elbow)
	}
	if chosen > maxK {
		chosen = maxK
	}

	best := candidates[chosen-1]
	return &Model{
		KMeans:     best,
		Labels:     best.Assign(points),
		Dispersion: dispersion,
	}, nil
}

// wcss sums the squared cosine distance from each point to its nearest
// centroid.
func wcss(points [][]float64, m *KMeans) float64 {
	total := 0.0
	for _, p := range points {
		nearest := math.Inf(1)
		for _, c := range m.Centroids {
			if d := CosineDistance(p, c); d < nearest {
				nearest = d
			}
		}
		total += nearest * nearest
	}
	return total
}
