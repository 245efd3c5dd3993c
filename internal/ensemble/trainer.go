package ensemble

import (
	"errors"
	"math/rand"
)

var ErrNoTrainingData = errors.New("ensemble: no training data")

// defaultSeed matches the clustering seed so a full training run is
// reproducible end to end.
const defaultSeed = 50

// Result is a trained roster with its holdout accuracies.
type Result struct {
	Roster []Classifier

	// Scores maps classifier name to holdout accuracy.
	Scores map[string]float64

	// Best is the name of the highest-scoring classifier. Ties go to the
	// earlier roster position.
	Best string
}

// Train fits the full roster on an 80/20 shuffled holdout split and scores
// each classifier on the held-out fifth. The returned classifiers are the
// ones fitted on the training split; they are what gets persisted and served.
func Train(features [][]float64, labels []int, seed int64) (*Result, error) {
	if len(features) == 0 || len(features) != len(labels) {
		return nil, ErrNoTrainingData
	}

	trainX, trainY, testX, testY := holdoutSplit(features, labels, seed)

	res := &Result{
		Roster: NewRoster(),
		Scores: make(map[string]float64),
	}

	if numClasses(trainY) < 2 {
		// A single observed class leaves nothing to separate. Keep the
		// constant prediction and report it as perfect on this corpus.
		for _, c := range res.Roster {
			res.Scores[c.Name()] = 1.0
		}
		res.Best = res.Roster[0].Name()
		constant := 0
		if len(trainY) > 0 {
			constant = trainY[0]
		}
		for i := range res.Roster {
			res.Roster[i] = &Constant{Label: constant, Alias: res.Roster[i].Name()}
		}
		return res, nil
	}

	bestScore := -1.0
	for _, c := range res.Roster {
		c.Fit(trainX, trainY)
		score := accuracy(c, testX, testY)
		res.Scores[c.Name()] = score
		if score > bestScore {
			res.Best = c.Name()
			bestScore = score
		}
	}

	return res, nil
}

// holdoutSplit shuffles indices with the given seed and holds out a fifth of
// the data, at least one point. A single point trains and tests on itself.
func holdoutSplit(features [][]float64, labels []int, seed int64) ([][]float64, []int, [][]float64, []int) {
	n := len(features)
	if n == 1 {
		return features, labels, features, labels
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rand.New(rand.NewSource(seed)).Shuffle(n, func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})

	testSize := max(n/5, 1)
	var trainX, testX [][]float64
	var trainY, testY []int
	for i, j := range idx {
		if i < testSize {
			testX = append(testX, features[j])
			testY = append(testY, labels[j])
		} else {
			trainX = append(trainX, features[j])
			trainY = append(trainY, labels[j])
		}
	}
	return trainX, trainY, testX, testY
}

func accuracy(c Classifier, features [][]float64, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	correct := 0
	for i, x := range features {
		if c.Predict(x) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}

// Constant stands in for a roster member when the corpus collapses to one
// cluster.
type Constant struct {
	Label int
	Alias string
}

var _ Classifier = (*Constant)(nil)

func (c *Constant) Name() string           { return c.Alias }
func (c *Constant) Fit([][]float64, []int) {}
func (c *Constant) Predict([]float64) int  { return c.Label }

func numClasses(labels []int) int {
	max := -1
	for _, l := range labels {
		if l > max {
			max = l
		}
	}
	return max + 1
}

func argmax(v []float64) int {
	best := 0
	for i, x := range v {
		if x > v[best] {
			best = i
		}
	}
	return best
}
