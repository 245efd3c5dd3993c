package ensemble

import "math"

const (
	boostRounds       = 50
	boostLearningRate = 0.1
)

// Stump is a depth-one regression tree used as the boosting weak learner.
type Stump struct {
	Feature    int
	Threshold  float64
	LeftValue  float64
	RightValue float64
}

func (s *Stump) value(x []float64) float64 {
	if x[s.Feature] <= s.Threshold {
		return s.LeftValue
	}
	return s.RightValue
}

// GradientBoosting fits one-vs-rest stump ensembles on the logistic loss,
// with Newton-step leaf values.
type GradientBoosting struct {
	Stumps  [][]*Stump // [class][round]
	Base    []float64  // initial log-odds per class
	Classes int
}

var (
	_ Classifier       = (*GradientBoosting)(nil)
	_ ConfidenceScorer = (*GradientBoosting)(nil)
)

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{}
}

func (g *GradientBoosting) Name() string { return "GradientBoosting" }

func (g *GradientBoosting) Fit(features [][]float64, labels []int) {
	g.Classes = numClasses(labels)
	g.Stumps = make([][]*Stump, g.Classes)
	g.Base = make([]float64, g.Classes)

	n := float64(len(labels))
	for c := 0; c < g.Classes; c++ {
		pos := 0.0
		for _, l := range labels {
			if l == c {
				pos++
			}
		}
		p := clampProb(pos / n)
		g.Base[c] = math.Log(p / (1 - p))

		scores := make([]float64, len(features))
		for i := range scores {
			scores[i] = g.Base[c]
		}

		for round := 0; round < boostRounds; round++ {
			// Pseudo-residuals of the logistic loss.
			grads := make([]float64, len(features))
			hess := make([]float64, len(features))
			for i := range features {
				p := sigmoid(scores[i])
				y := 0.0
				if labels[i] == c {
					y = 1.0
				}
				grads[i] = y - p
				hess[i] = p * (1 - p)
			}

			stump := fitStump(features, grads, hess)
			if stump == nil {
				break
			}
			g.Stumps[c] = append(g.Stumps[c], stump)
			for i, x := range features {
				scores[i] += boostLearningRate * stump.value(x)
			}
		}
	}
}

func (g *GradientBoosting) Predict(x []float64) int {
	label, _ := g.PredictConfidence(x)
	return label
}

// PredictConfidence normalizes the per-class sigmoid scores into a
// distribution and reports the winner's share.
func (g *GradientBoosting) PredictConfidence(x []float64) (int, float64) {
	scores := make([]float64, g.Classes)
	for c := 0; c < g.Classes; c++ {
		s := g.Base[c]
		for _, stump := range g.Stumps[c] {
			s += boostLearningRate * stump.value(x)
		}
		scores[c] = sigmoid(s)
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	best := argmax(scores)
	if total == 0 {
		return best, 1 / float64(g.Classes)
	}
	return best, scores[best] / total
}

// fitStump picks the split minimizing the squared-error fit to the gradients,
// then sets leaf values by a Newton step (sum g / sum h).
func fitStump(features [][]float64, grads, hess []float64) *Stump {
	dims := len(features[0])
	var best *Stump
	bestGain := 0.0

	totalG, totalH := 0.0, 0.0
	for i := range grads {
		totalG += grads[i]
		totalH += hess[i]
	}

	for f := 0; f < dims; f++ {
		for _, th := range splitCandidates(features, f) {
			leftG, leftH := 0.0, 0.0
			nLeft := 0
			for i, x := range features {
				if x[f] <= th {
					leftG += grads[i]
					leftH += hess[i]
					nLeft++
				}
			}
			if nLeft == 0 || nLeft == len(features) {
				continue
			}
			rightG, rightH := totalG-leftG, totalH-leftH

			gain := gainTerm(leftG, leftH) + gainTerm(rightG, rightH) - gainTerm(totalG, totalH)
			if gain > bestGain {
				bestGain = gain
				best = &Stump{
					Feature:    f,
					Threshold:  th,
					LeftValue:  newtonLeaf(leftG, leftH),
					RightValue: newtonLeaf(rightG, rightH),
				}
			}
		}
	}
	return best
}

func gainTerm(g, h float64) float64 {
	if h == 0 {
		return 0
	}
	return g * g / h
}

func newtonLeaf(g, h float64) float64 {
	if h == 0 {
		return 0
	}
	return g / h
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clampProb(p float64) float64 {
	const eps = 1e-6
	return math.Min(math.Max(p, eps), 1-eps)
}
