package ensemble_test

import (
	"math/rand"
	"testing"

	"jobmatch-backend/internal/ensemble"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBlobs builds a linearly separable binary dataset.
func twoBlobs(n int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(3))
	features := make([][]float64, 0, n)
	labels := make([]int, 0, n)
	for i := 0; i < n; i++ {
		label := i % 2
		base := -2.0
		if label == 1 {
			base = 2.0
		}
		features = append(features, []float64{
			base + rng.NormFloat64()*0.3,
			base + rng.NormFloat64()*0.3,
		})
		labels = append(labels, label)
	}
	return features, labels
}

func TestRosterOrder(t *testing.T) {
	roster := ensemble.NewRoster()
	names := make([]string, len(roster))
	for i, c := range roster {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{
		"RandomForest", "SVM", "LogisticRegression", "KNN", "GradientBoosting",
	}, names)
}

func TestEachClassifierLearnsSeparableData(t *testing.T) {
	features, labels := twoBlobs(60)

	for _, c := range ensemble.NewRoster() {
		c := c
		t.Run(c.Name(), func(t *testing.T) {
			c.Fit(features, labels)
			correct := 0
			for i, x := range features {
				if c.Predict(x) == labels[i] {
					correct++
				}
			}
			assert.GreaterOrEqual(t, float64(correct)/float64(len(labels)), 0.9)
		})
	}
}

func TestConfidenceScorers(t *testing.T) {
	features, labels := twoBlobs(40)

	for _, c := range ensemble.NewRoster() {
		scorer, ok := c.(ensemble.ConfidenceScorer)
		if c.Name() == "SVM" {
			assert.False(t, ok, "hinge margins are not probabilities")
			continue
		}
		require.True(t, ok, c.Name())

		c.Fit(features, labels)
		label, conf := scorer.PredictConfidence(features[0])
		assert.Equal(t, c.Predict(features[0]), label, c.Name())
		assert.Greater(t, conf, 0.0, c.Name())
		assert.LessOrEqual(t, conf, 1.0, c.Name())
	}
}

func TestTrainScoresEveryClassifier(t *testing.T) {
	features, labels := twoBlobs(50)

	res, err := ensemble.Train(features, labels, 50)
	require.NoError(t, err)

	assert.Len(t, res.Scores, 5)
	for name, score := range res.Scores {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 1.0, name)
	}
	assert.Contains(t, res.Scores, res.Best)
	assert.Len(t, res.Roster, 5)
}

func TestTrainDeterministic(t *testing.T) {
	features, labels := twoBlobs(50)

	a, err := ensemble.Train(features, labels, 50)
	require.NoError(t, err)
	b, err := ensemble.Train(features, labels, 50)
	require.NoError(t, err)

	assert.Equal(t, a.Scores, b.Scores)
	assert.Equal(t, a.Best, b.Best)
}

func TestTrainEmptyInput(t *testing.T) {
	_, err := ensemble.Train(nil, nil, 50)
	assert.ErrorIs(t, err, ensemble.ErrNoTrainingData)
}

func TestTrainSingleClass(t *testing.T) {
	features := [][]float64{{1, 1}, {1.1, 0.9}, {0.9, 1.2}}
	labels := []int{0, 0, 0}

	res, err := ensemble.Train(features, labels, 50)
	require.NoError(t, err)

	for name, score := range res.Scores {
		assert.Equal(t, 1.0, score, name)
	}
	for _, c := range res.Roster {
		assert.Equal(t, 0, c.Predict([]float64{5, 5}))
	}
}

func TestTrainSinglePoint(t *testing.T) {
	res, err := ensemble.Train([][]float64{{1, 2}}, []int{0}, 50)
	require.NoError(t, err)
	assert.Len(t, res.Scores, 5)
}

func TestMajorityVote(t *testing.T) {
	assert.Equal(t, 1, ensemble.MajorityVote([]int{0, 0, 1, 1, 1}))
	assert.Equal(t, 2, ensemble.MajorityVote([]int{2, 2, 2, 0, 1}))

	// ties go to the label that reached the winning count first
	assert.Equal(t, 0, ensemble.MajorityVote([]int{0, 1, 0, 1}))
	assert.Equal(t, 3, ensemble.MajorityVote([]int{3}))
}
