// Package inference serves match requests against the promoted models.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"jobmatch-backend/internal/artifact"
	"jobmatch-backend/internal/cluster"
	"jobmatch-backend/internal/corpus"
	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/enrich"
	"jobmatch-backend/internal/ensemble"
	"jobmatch-backend/internal/textnorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyQuery            = errors.New("inference: empty query text")
	ErrInvalidEducationLevel = errors.New("inference: unrecognized education level")
)

const (
	// Postings considered before user filters apply.
	preFilterLimit = 20

	// Postings returned when filters eliminate everything.
	fallbackLimit = 10
)

// Request is one match query. Text is the CV or profile text to match;
// Filename, when set, identifies an upload for dedup purposes. Region selects
// the model bundle; RegionFilter, when set, additionally restricts results to
// postings carrying that exact region tag (a country bundle holds postings
// tagged by sub-region).
type Request struct {
	UserId         uuid.UUID
	Platform       string
	Region         string
	Text           string
	Filename       string
	EducationLevel string
	RegionFilter   string
}

// RankedJob is one posting scored against the query.
type RankedJob struct {
	Url             string             `json:"url"`
	Company         string             `json:"company"`
	Title           string             `json:"title"`
	Location        string             `json:"location"`
	Region          string             `json:"region,omitempty"`
	Level           string             `json:"level"`
	PublicationDate string             `json:"publication_date"`
	Summary         string             `json:"summary"`
	SummaryFr       string             `json:"summary_fr,omitempty"`
	Similarity      float64            `json:"similarity"`
	Enrichment      *enrich.Enrichment `json:"enrichment,omitempty"`
}

// Response is the served result of one match run.
type Response struct {
	Cluster     int                `json:"cluster"`
	Votes       map[string]int     `json:"votes"`
	Confidences map[string]float64 `json:"confidences"`
	Jobs        []RankedJob        `json:"jobs"`

	// FilteredOut reports that user filters removed every candidate and the
	// jobs are the unfiltered best matches instead.
	FilteredOut bool `json:"filtered_out"`

	// Persisted is false when this exact request was already recorded.
	Persisted bool `json:"persisted"`
}

// Engine wires the model bundle, embedding provider, and enrichment together.
type Engine struct {
	artifacts  *artifact.Store
	embedder   embedding.Embedder
	normalizer *textnorm.Normalizer
	enricher   *enrich.Orchestrator
	db         *gorm.DB
	logger     *slog.Logger
}

func NewEngine(artifacts *artifact.Store, embedder embedding.Embedder, enricher *enrich.Orchestrator, db *gorm.DB, logger *slog.Logger) *Engine {
	return &Engine{
		artifacts:  artifacts,
		embedder:   embedder,
		normalizer: textnorm.New(),
		enricher:   enricher,
		db:         db,
		logger:     logger,
	}
}

// Match runs the full pipeline: embed the query, vote a cluster, rank that
// cluster's postings by similarity, apply user filters, enrich, and record
// the run.
func (e *Engine) Match(ctx context.Context, req Request) (*Response, error) {
	if req.Text == "" {
		return nil, ErrEmptyQuery
	}
	if req.EducationLevel != "" && !ValidEducationLevel(req.EducationLevel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEducationLevel, req.EducationLevel)
	}

	bundle, err := e.artifacts.Load(ctx, req.Platform, req.Region)
	if err != nil {
		return nil, err
	}

	cleaned := e.normalizer.Clean(req.Text)
	if cleaned == "" {
		return nil, ErrEmptyQuery
	}
	vectors, err := e.embedder.Embed(ctx, []string{cleaned})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for query", embedding.ErrProvider)
	}
	query := vectors[0]

	votes := make(map[string]int, len(bundle.Classifiers))
	confidences := make(map[string]float64)
	ballots := make([]int, 0, len(bundle.Classifiers))
	for _, c := range bundle.Classifiers {
		label := c.Predict(query)
		votes[c.Name()] = label
		ballots = append(ballots, label)
		if scorer, ok := c.(ensemble.ConfidenceScorer); ok {
			_, conf := scorer.PredictConfidence(query)
			confidences[c.Name()] = conf
		}
	}
	clusterLabel := ensemble.MajorityVote(ballots)

	ranked := rankCluster(query, bundle, clusterLabel)
	if len(ranked) > preFilterLimit {
		ranked = ranked[:preFilterLimit]
	}

	jobs := ranked
	filteredOut := false
	if req.EducationLevel != "" || req.RegionFilter != "" {
		filtered := make([]RankedJob, 0, len(ranked))
		for _, job := range ranked {
			if req.EducationLevel != "" && !EligibleByLevel(req.EducationLevel, job.Level) {
				continue
			}
			if req.RegionFilter != "" && !EligibleByRegion(req.RegionFilter, job.Region) {
				continue
			}
			filtered = append(filtered, job)
		}
		if len(filtered) == 0 {
			// Filters removed everything; fall back to the best unfiltered
			// matches rather than serving an empty page.
			filteredOut = true
			jobs = ranked
			if len(jobs) > fallbackLimit {
				jobs = jobs[:fallbackLimit]
			}
		} else {
			jobs = filtered
		}
	}

	e.enrichJobs(ctx, req.Text, jobs)

	res := &Response{
		Cluster:     clusterLabel,
		Votes:       votes,
		Confidences: confidences,
		Jobs:        jobs,
		FilteredOut: filteredOut,
		Persisted:   true,
	}

	if err := e.persist(ctx, req, res); err != nil {
		if errors.Is(err, database.ErrDuplicatePrediction) {
			e.logger.Info("duplicate match request, not recording",
				"user", req.UserId, "platform", req.Platform, "region", req.Region)
			res.Persisted = false
		} else {
			return nil, err
		}
	}
	return res, nil
}

// rankCluster scores the postings assigned to the chosen cluster by cosine
// similarity to the query, highest first. Scores are scaled to 0..100 and
// rounded to two decimals, matching how they are displayed.
func rankCluster(query []float64, bundle *artifact.Bundle, clusterLabel int) []RankedJob {
	var jobs []RankedJob
	for i, label := range bundle.Labels {
		if label != clusterLabel || i >= len(bundle.Postings) {
			continue
		}
		sim := cluster.CosineSimilarity(query, bundle.Embeddings[i])
		jobs = append(jobs, toRankedJob(bundle.Postings[i], math.Round(sim*100*100)/100))
	}
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Similarity > jobs[j].Similarity })
	return jobs
}

func toRankedJob(p corpus.Posting, similarity float64) RankedJob {
	return RankedJob{
		Url:             p.Url,
		Company:         p.Company,
		Title:           p.Title,
		Location:        p.Location,
		Region:          p.Region,
		Level:           p.Level,
		PublicationDate: p.PublicationDate,
		Summary:         p.Summary,
		SummaryFr:       p.SummaryFr,
		Similarity:      similarity,
	}
}

// enrichJobs attaches generated content to each job. Enrichment is best
// effort; a provider outage leaves the matches unenriched instead of failing
// the request.
func (e *Engine) enrichJobs(ctx context.Context, profile string, jobs []RankedJob) {
	if e.enricher == nil || len(jobs) == 0 {
		return
	}

	tasks := make([]enrich.Job, len(jobs))
	for i, job := range jobs {
		tasks[i] = enrich.Job{Index: i, Summary: job.Summary}
	}
	enrichments, err := e.enricher.EnrichAll(ctx, profile, tasks)
	if err != nil {
		e.logger.Warn("enrichment aborted", "error", err)
		return
	}
	for i := range jobs {
		enrichment := enrichments[i]
		jobs[i].Enrichment = &enrichment
	}
}

func (e *Engine) persist(ctx context.Context, req Request, res *Response) error {
	if e.db == nil || req.UserId == uuid.Nil {
		return nil
	}

	content := req.Filename
	if content == "" {
		content = req.Text
	}
	hash := database.PredictionContentHash(content)

	jobsJSON, err := json.Marshal(res.Jobs)
	if err != nil {
		return fmt.Errorf("marshal ranked jobs: %w", err)
	}
	return database.AddPredictionResult(ctx, e.db, req.UserId, req.Platform, req.Region, hash, res.Cluster, jobsJSON)
}
