package ensemble

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a decision tree. Leaves carry a class distribution;
// internal nodes split on Feature at Threshold.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode

	// Leaf-only: votes per class, indexed by label.
	Counts []float64
}

func (n *TreeNode) isLeaf() bool { return n.Left == nil }

type treeConfig struct {
	maxDepth    int
	minSamples  int
	maxFeatures int // 0 means use all features
	rng         *rand.Rand
}

// buildTree grows a CART tree greedily by Gini impurity.
func buildTree(features [][]float64, labels []int, classes int, depth int, cfg treeConfig) *TreeNode {
	counts := classCounts(labels, classes)
	if depth >= cfg.maxDepth || len(labels) < cfg.minSamples || pure(counts) {
		return &TreeNode{Counts: counts}
	}

	feature, threshold, ok := bestSplit(features, labels, classes, cfg)
	if !ok {
		return &TreeNode{Counts: counts}
	}

	leftX, leftY, rightX, rightY := partition(features, labels, feature, threshold)
	if len(leftY) == 0 || len(rightY) == 0 {
		return &TreeNode{Counts: counts}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(leftX, leftY, classes, depth+1, cfg),
		Right:     buildTree(rightX, rightY, classes, depth+1, cfg),
	}
}

func (n *TreeNode) classCounts(x []float64) []float64 {
	node := n
	for !node.isLeaf() {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Counts
}

func bestSplit(features [][]float64, labels []int, classes int, cfg treeConfig) (int, float64, bool) {
	dims := len(features[0])
	candidates := make([]int, dims)
	for i := range candidates {
		candidates[i] = i
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < dims {
		cfg.rng.Shuffle(dims, func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:cfg.maxFeatures]
	}

	bestFeature, bestThreshold := -1, 0.0
	bestScore := math.Inf(1)
	for _, f := range candidates {
		thresholds := splitCandidates(features, f)
		for _, th := range thresholds {
			score, ok := weightedGini(features, labels, classes, f, th)
			if ok && score < bestScore {
				bestFeature, bestThreshold, bestScore = f, th, score
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// splitCandidates returns midpoints between distinct sorted values, capped to
// keep tree growth tractable on dense embeddings.
func splitCandidates(features [][]float64, f int) []float64 {
	const maxThresholds = 16

	values := make([]float64, len(features))
	for i, x := range features {
		values[i] = x[f]
	}
	sort.Float64s(values)

	var out []float64
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			out = append(out, (values[i]+values[i-1])/2)
		}
	}
	if len(out) > maxThresholds {
		step := len(out) / maxThresholds
		thinned := make([]float64, 0, maxThresholds)
		for i := 0; i < len(out); i += step {
			thinned = append(thinned, out[i])
		}
		out = thinned
	}
	return out
}

func weightedGini(features [][]float64, labels []int, classes, f int, th float64) (float64, bool) {
	left := make([]float64, classes)
	right := make([]float64, classes)
	nLeft, nRight := 0, 0
	for i, x := range features {
		if x[f] <= th {
			left[labels[i]]++
			nLeft++
		} else {
			right[labels[i]]++
			nRight++
		}
	}
	if nLeft == 0 || nRight == 0 {
		return 0, false
	}
	n := float64(nLeft + nRight)
	return float64(nLeft)/n*gini(left, nLeft) + float64(nRight)/n*gini(right, nRight), true
}

func gini(counts []float64, n int) float64 {
	g := 1.0
	for _, c := range counts {
		p := c / float64(n)
		g -= p * p
	}
	return g
}

func partition(features [][]float64, labels []int, f int, th float64) ([][]float64, []int, [][]float64, []int) {
	var leftX, rightX [][]float64
	var leftY, rightY []int
	for i, x := range features {
		if x[f] <= th {
			leftX = append(leftX, x)
			leftY = append(leftY, labels[i])
		} else {
			rightX = append(rightX, x)
			rightY = append(rightY, labels[i])
		}
	}
	return leftX, leftY, rightX, rightY
}

func classCounts(labels []int, classes int) []float64 {
	counts := make([]float64, classes)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

func pure(counts []float64) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}
