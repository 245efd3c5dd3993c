// Package training rebuilds the per-(platform,region) models from the scraped
// corpora and promotes them into serving.
package training

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"jobmatch-backend/internal/artifact"
	"jobmatch-backend/internal/cluster"
	"jobmatch-backend/internal/corpus"
	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/ensemble"
	"jobmatch-backend/internal/textnorm"
)

// Pair names one dataset to train.
type Pair struct {
	Platform string
	Region   string
}

func (p Pair) String() string { return p.Platform + "/" + p.Region }

// PairResult summarizes one completed training run.
type PairResult struct {
	Platform       string             `json:"platform"`
	Region         string             `json:"region"`
	Documents      int                `json:"documents"`
	ClusterCount   int                `json:"cluster_count"`
	BestClassifier string             `json:"best_classifier"`
	Scores         map[string]float64 `json:"scores"`
	Promotion      artifact.PromoteResult
}

// ScoresJSON renders the per-classifier accuracies for storage.
func (r *PairResult) ScoresJSON() []byte {
	data, err := json.Marshal(r.Scores)
	if err != nil {
		return []byte("{}")
	}
	return data
}

type Pipeline struct {
	corpora    *corpus.Loader
	embedder   embedding.Embedder
	artifacts  *artifact.Store
	normalizer *textnorm.Normalizer
	logger     *slog.Logger
}

func NewPipeline(corpora *corpus.Loader, embedder embedding.Embedder, artifacts *artifact.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		corpora:    corpora,
		embedder:   embedder,
		artifacts:  artifacts,
		normalizer: textnorm.New(),
		logger:     logger,
	}
}

// RunPair trains one dataset end to end: load, clean, embed, cluster, fit the
// classifier roster, stage, promote. A partial promote fails the run so a
// half-updated model is never reported healthy.
func (p *Pipeline) RunPair(ctx context.Context, pair Pair) (*PairResult, error) {
	postings, err := p.corpora.Load(ctx, pair.Platform, pair.Region)
	if err != nil {
		return nil, err
	}

	// Postings without a summary cannot be embedded and are dropped up front.
	kept := postings[:0]
	var texts []string
	for _, posting := range postings {
		cleaned := posting.CleanedSummary
		if cleaned == "" {
			cleaned = p.normalizer.Clean(posting.Summary)
		}
		if cleaned == "" {
			continue
		}
		posting.CleanedSummary = cleaned
		kept = append(kept, posting)
		texts = append(texts, cleaned)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("train %s: %w", pair, cluster.ErrEmptyCorpus)
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", pair, err)
	}

	model, err := cluster.NewTrainer().Fit(embeddings)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", pair, err)
	}
	p.logger.Info("corpus clustered", "pair", pair.String(),
		"documents", len(kept), "clusters", model.KMeans.K)

	fitted, err := ensemble.Train(embeddings, model.Labels, cluster.DefaultSeed)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", pair, err)
	}
	for name, score := range fitted.Scores {
		p.logger.Info("classifier scored", "pair", pair.String(), "classifier", name, "accuracy", score)
	}

	bundle := &artifact.Bundle{
		Cluster:     model.KMeans,
		Embeddings:  embeddings,
		Labels:      model.Labels,
		Postings:    kept,
		Classifiers: fitted.Roster,
	}
	if err := p.artifacts.Stage(ctx, pair.Platform, pair.Region, bundle); err != nil {
		return nil, fmt.Errorf("train %s: %w", pair, err)
	}

	promotion, err := p.artifacts.Promote(ctx, pair.Platform, pair.Region)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", pair, err)
	}
	if !promotion.Ok() {
		return nil, fmt.Errorf("train %s: promote left %d file(s) staged: %v",
			pair, len(promotion.Failed), promotion.Failed)
	}

	return &PairResult{
		Platform:       pair.Platform,
		Region:         pair.Region,
		Documents:      len(kept),
		ClusterCount:   model.KMeans.K,
		BestClassifier: fitted.Best,
		Scores:         fitted.Scores,
		Promotion:      promotion,
	}, nil
}

// RunAll trains every pair, isolating failures so one bad dataset does not
// block the rest. It returns the successful results and the errors keyed by
// pair.
func (p *Pipeline) RunAll(ctx context.Context, pairs []Pair) ([]*PairResult, map[string]error) {
	var results []*PairResult
	failures := make(map[string]error)
	for _, pair := range pairs {
		if ctx.Err() != nil {
			failures[pair.String()] = ctx.Err()
			continue
		}
		res, err := p.RunPair(ctx, pair)
		if err != nil {
			p.logger.Error("training failed", "pair", pair.String(), "error", err)
			failures[pair.String()] = err
			continue
		}
		results = append(results, res)
	}
	return results, failures
}
