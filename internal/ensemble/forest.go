package ensemble

import (
	"math"
	"math/rand"
)

const (
	forestTrees    = 50
	forestMaxDepth = 8
)

// RandomForest bags CART trees over bootstrap resamples, each tree splitting
// on a sqrt(d) feature subset.
type RandomForest struct {
	Trees   []*TreeNode
	Classes int
	Seed    int64
}

var (
	_ Classifier       = (*RandomForest)(nil)
	_ ConfidenceScorer = (*RandomForest)(nil)
)

func NewRandomForest() *RandomForest {
	return &RandomForest{Seed: defaultSeed}
}

func (f *RandomForest) Name() string { return "RandomForest" }

func (f *RandomForest) Fit(features [][]float64, labels []int) {
	f.Classes = numClasses(labels)
	f.Trees = make([]*TreeNode, 0, forestTrees)

	rng := rand.New(rand.NewSource(f.Seed))
	maxFeatures := int(math.Sqrt(float64(len(features[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	for t := 0; t < forestTrees; t++ {
		sampleX := make([][]float64, len(features))
		sampleY := make([]int, len(labels))
		for i := range features {
			j := rng.Intn(len(features))
			sampleX[i] = features[j]
			sampleY[i] = labels[j]
		}
		f.Trees = append(f.Trees, buildTree(sampleX, sampleY, f.Classes, 0, treeConfig{
			maxDepth:    forestMaxDepth,
			minSamples:  2,
			maxFeatures: maxFeatures,
			rng:         rng,
		}))
	}
}

func (f *RandomForest) Predict(x []float64) int {
	label, _ := f.PredictConfidence(x)
	return label
}

// PredictConfidence reports the fraction of trees voting for the winner.
func (f *RandomForest) PredictConfidence(x []float64) (int, float64) {
	votes := make([]float64, f.Classes)
	for _, tree := range f.Trees {
		counts := tree.classCounts(x)
		votes[argmax(counts)]++
	}
	best := argmax(votes)
	return best, votes[best] / float64(len(f.Trees))
}
