package enrich

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Enrichment is the generated content for one matched posting. A section is
// zero-valued when its generation failed; one bad completion never blocks the
// others.
type Enrichment struct {
	CoverLetter    BilingualText `json:"cover_letter"`
	MissingSkills  BilingualText `json:"missing_skills"`
	MatchingSkills BilingualText `json:"matching_skills"`
}

const defaultConcurrency = 8

// Orchestrator fans enrichment generations out over a bounded worker group.
type Orchestrator struct {
	generator   Generator
	logger      *slog.Logger
	concurrency int
}

func NewOrchestrator(generator Generator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		generator:   generator,
		logger:      logger,
		concurrency: defaultConcurrency,
	}
}

// Job pairs a posting summary with its index in the caller's result slice.
type Job struct {
	Index   int
	Summary string
}

// EnrichAll generates the three sections for every job. Each generation runs
// as its own task so a provider failure degrades one field, not the batch.
// Only context cancellation aborts the group.
func (o *Orchestrator) EnrichAll(ctx context.Context, profile string, jobs []Job) ([]Enrichment, error) {
	results := make([]Enrichment, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, job := range jobs {
		i, job := i, job
		targets := []struct {
			name   string
			prompt string
			dest   *BilingualText
		}{
			{"cover_letter", coverLetterPrompt(profile, job.Summary), &results[i].CoverLetter},
			{"missing_skills", missingSkillsPrompt(profile, job.Summary), &results[i].MissingSkills},
			{"matching_skills", matchingSkillsPrompt(profile, job.Summary), &results[i].MatchingSkills},
		}
		for _, target := range targets {
			target := target
			g.Go(func() error {
				text, err := o.generator.Generate(ctx, target.prompt)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					o.logger.Warn("enrichment generation failed",
						"section", target.name, "job", job.Index, "error", err)
					return nil
				}
				*target.dest = ParseBilingual(text)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
