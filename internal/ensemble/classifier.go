// Package ensemble trains a fixed roster of classifiers over embedded
// documents and routes predictions through a majority vote.
package ensemble

// Classifier learns a mapping from feature vectors to integer class labels.
// Implementations must have exported state so a fitted model survives gob
// encoding.
type Classifier interface {
	Name() string
	Fit(features [][]float64, labels []int)
	Predict(x []float64) int
}

// ConfidenceScorer is implemented by classifiers that can attach a calibrated
// probability to a prediction. Voting never requires it.
type ConfidenceScorer interface {
	PredictConfidence(x []float64) (label int, confidence float64)
}

// NewRoster returns the classifiers trained for every model, in a fixed order
// so reports and stored artifacts stay comparable across runs.
func NewRoster() []Classifier {
	return []Classifier{
		NewRandomForest(),
		NewLinearSVM(),
		NewLogisticRegression(),
		NewKNN(),
		NewGradientBoosting(),
	}
}
