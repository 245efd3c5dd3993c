package ensemble

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

const knnNeighbors = 5

// KNN memorizes the training set and classifies by majority label among the
// k nearest points in Euclidean distance.
type KNN struct {
	K        int
	Features [][]float64
	Labels   []int
	Classes  int
}

var (
	_ Classifier       = (*KNN)(nil)
	_ ConfidenceScorer = (*KNN)(nil)
)

func NewKNN() *KNN {
	return &KNN{K: knnNeighbors}
}

func (k *KNN) Name() string { return "KNN" }

func (k *KNN) Fit(features [][]float64, labels []int) {
	k.Features = features
	k.Labels = labels
	k.Classes = numClasses(labels)
}

func (k *KNN) Predict(x []float64) int {
	label, _ := k.PredictConfidence(x)
	return label
}

// PredictConfidence reports the fraction of neighbors carrying the winning
// label.
func (k *KNN) PredictConfidence(x []float64) (int, float64) {
	type neighbor struct {
		dist  float64
		label int
	}
	neighbors := make([]neighbor, len(k.Features))
	for i, p := range k.Features {
		neighbors[i] = neighbor{dist: floats.Distance(x, p, 2), label: k.Labels[i]}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })

	kk := min(k.K, len(neighbors))
	votes := make([]float64, k.Classes)
	for _, n := range neighbors[:kk] {
		votes[n.label]++
	}
	best := argmax(votes)
	return best, votes[best] / float64(kk)
}
