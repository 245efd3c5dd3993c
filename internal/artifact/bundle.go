// Package artifact persists trained models in the object store and moves them
// live through a stage-then-promote handoff.
package artifact

import (
	"jobmatch-backend/internal/cluster"
	"jobmatch-backend/internal/corpus"
	"jobmatch-backend/internal/ensemble"
)

// File names inside a model directory.
const (
	clusterModelFile = "cluster_model.gob"
	centroidsFile    = "centroids.gob"
	embeddingsFile   = "embeddings.gob"
	labelsFile       = "labels.gob"
	corpusFile       = "corpus.csv"
)

func classifierFile(name string) string {
	return "classifier_" + name + ".gob"
}

// Bundle is everything inference needs for one (platform, region) pair.
type Bundle struct {
	Cluster     *cluster.KMeans
	Embeddings  [][]float64
	Labels      []int
	Postings    []corpus.Posting
	Classifiers []ensemble.Classifier
}
