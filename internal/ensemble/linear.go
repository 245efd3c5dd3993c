package ensemble

import "math"

const (
	gdEpochs       = 200
	gdLearningRate = 0.1
	gdL2           = 1e-4
)

// LogisticRegression is a multinomial softmax classifier trained by batch
// gradient descent with L2 regularization.
type LogisticRegression struct {
	Weights [][]float64 // [class][feature]
	Bias    []float64
	Classes int
}

var (
	_ Classifier       = (*LogisticRegression)(nil)
	_ ConfidenceScorer = (*LogisticRegression)(nil)
)

func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{}
}

func (lr *LogisticRegression) Name() string { return "LogisticRegression" }

func (lr *LogisticRegression) Fit(features [][]float64, labels []int) {
	lr.Classes = numClasses(labels)
	dims := len(features[0])
	lr.Weights = make([][]float64, lr.Classes)
	for c := range lr.Weights {
		lr.Weights[c] = make([]float64, dims)
	}
	lr.Bias = make([]float64, lr.Classes)

	n := float64(len(features))
	gradW := make([][]float64, lr.Classes)
	for c := range gradW {
		gradW[c] = make([]float64, dims)
	}
	gradB := make([]float64, lr.Classes)

	for epoch := 0; epoch < gdEpochs; epoch++ {
		for c := range gradW {
			for d := range gradW[c] {
				gradW[c][d] = 0
			}
			gradB[c] = 0
		}

		for i, x := range features {
			probs := lr.probabilities(x)
			for c := 0; c < lr.Classes; c++ {
				delta := probs[c]
				if c == labels[i] {
					delta -= 1
				}
				for d, v := range x {
					gradW[c][d] += delta * v
				}
				gradB[c] += delta
			}
		}

		for c := 0; c < lr.Classes; c++ {
			for d := range lr.Weights[c] {
				lr.Weights[c][d] -= gdLearningRate * (gradW[c][d]/n + gdL2*lr.Weights[c][d])
			}
			lr.Bias[c] -= gdLearningRate * gradB[c] / n
		}
	}
}

func (lr *LogisticRegression) Predict(x []float64) int {
	label, _ := lr.PredictConfidence(x)
	return label
}

// PredictConfidence returns the softmax probability of the winning class.
func (lr *LogisticRegression) PredictConfidence(x []float64) (int, float64) {
	probs := lr.probabilities(x)
	best := argmax(probs)
	return best, probs[best]
}

func (lr *LogisticRegression) probabilities(x []float64) []float64 {
	scores := make([]float64, lr.Classes)
	for c := 0; c < lr.Classes; c++ {
		s := lr.Bias[c]
		for d, v := range x {
			s += lr.Weights[c][d] * v
		}
		scores[c] = s
	}
	return softmax(scores)
}

// LinearSVM trains one-vs-rest hinge-loss separators by subgradient descent.
// Margins are not calibrated probabilities, so it deliberately does not
// implement ConfidenceScorer.
type LinearSVM struct {
	Weights [][]float64
	Bias    []float64
	Classes int
}

var _ Classifier = (*LinearSVM)(nil)

func NewLinearSVM() *LinearSVM {
	return &LinearSVM{}
}

func (s *LinearSVM) Name() string { return "SVM" }

func (s *LinearSVM) Fit(features [][]float64, labels []int) {
	s.Classes = numClasses(labels)
	dims := len(features[0])
	s.Weights = make([][]float64, s.Classes)
	s.Bias = make([]float64, s.Classes)

	for c := 0; c < s.Classes; c++ {
		w := make([]float64, dims)
		b := 0.0
		for epoch := 0; epoch < gdEpochs; epoch++ {
			lr := gdLearningRate / (1 + 0.01*float64(epoch))
			for i, x := range features {
				y := -1.0
				if labels[i] == c {
					y = 1.0
				}
				score := b
				for d, v := range x {
					score += w[d] * v
				}
				if y*score < 1 {
					for d, v := range x {
						w[d] += lr * (y*v - gdL2*w[d])
					}
					b += lr * y
				} else {
					for d := range w {
						w[d] -= lr * gdL2 * w[d]
					}
				}
			}
		}
		s.Weights[c] = w
		s.Bias[c] = b
	}
}

func (s *LinearSVM) Predict(x []float64) int {
	best, bestScore := 0, math.Inf(-1)
	for c := 0; c < s.Classes; c++ {
		score := s.Bias[c]
		for d, v := range x {
			score += s.Weights[c][d] * v
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

func softmax(scores []float64) []float64 {
	max := scores[argmax(scores)]
	sum := 0.0
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
