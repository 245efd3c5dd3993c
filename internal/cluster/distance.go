package cluster

import "gonum.org/v1/gonum/floats"

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is zero.
func CosineSimilarity(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// CosineDistance is 1 - CosineSimilarity.
func CosineDistance(a, b []float64) float64 {
	return 1 - CosineSimilarity(a, b)
}
