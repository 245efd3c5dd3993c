package api

import (
	"errors"
	"log/slog"
	"net/http"

	"jobmatch-backend/internal/artifact"
	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/enrich"
	"jobmatch-backend/internal/inference"
	"jobmatch-backend/pkg/api"

	"github.com/google/uuid"
)

func (s *BackendService) Match(r *http.Request) (any, error) {
	req, err := ParseRequest[api.MatchRequest](r)
	if err != nil {
		return nil, err
	}

	if req.Platform == "" || req.Region == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "platform and region are required")
	}
	if !s.knownPlatform(req.Platform) {
		return nil, CodedErrorf(http.StatusBadRequest, "unknown platform '%s'", req.Platform)
	}
	if !s.knownRegion(req.Region) {
		return nil, CodedErrorf(http.StatusBadRequest, "unknown region '%s'", req.Region)
	}

	ctx := r.Context()

	userId := uuid.Nil
	if req.Email != "" {
		user, err := database.GetOrCreateUser(ctx, s.db, req.Email)
		if err != nil {
			slog.Error("error resolving user for match", "error", err)
			return nil, CodedErrorf(http.StatusInternalServerError, "failed to resolve user")
		}
		userId = user.Id
	}

	res, err := s.engine.Match(ctx, inference.Request{
		UserId:         userId,
		Platform:       req.Platform,
		Region:         req.Region,
		Text:           req.Text,
		Filename:       req.Filename,
		EducationLevel: req.EducationLevel,
		RegionFilter:   req.RegionFilter,
	})
	if err != nil {
		switch {
		case errors.Is(err, inference.ErrEmptyQuery), errors.Is(err, inference.ErrInvalidEducationLevel):
			return nil, CodedError(http.StatusBadRequest, err)
		case errors.Is(err, artifact.ErrArtifactNotFound):
			return nil, CodedErrorf(http.StatusNotFound, "no trained model for %s/%s", req.Platform, req.Region)
		case errors.Is(err, embedding.ErrProvider):
			slog.Error("embedding provider failure during match", "error", err)
			return nil, CodedErrorf(http.StatusBadGateway, "embedding provider unavailable")
		default:
			slog.Error("match failed", "error", err)
			return nil, CodedErrorf(http.StatusInternalServerError, "match failed")
		}
	}

	return toMatchResponse(res), nil
}

func toMatchResponse(res *inference.Response) api.MatchResponse {
	jobs := make([]api.MatchedJob, len(res.Jobs))
	for i, job := range res.Jobs {
		jobs[i] = api.MatchedJob{
			Url:             job.Url,
			Company:         job.Company,
			Title:           job.Title,
			Location:        job.Location,
			Region:          job.Region,
			Level:           job.Level,
			PublicationDate: job.PublicationDate,
			Summary:         job.Summary,
			SummaryFr:       job.SummaryFr,
			Similarity:      job.Similarity,
			Enrichment:      toEnrichment(job.Enrichment),
		}
	}
	return api.MatchResponse{
		Cluster:     res.Cluster,
		Votes:       res.Votes,
		Confidences: res.Confidences,
		Jobs:        jobs,
		FilteredOut: res.FilteredOut,
		Persisted:   res.Persisted,
	}
}

func toEnrichment(e *enrich.Enrichment) *api.JobEnrichment {
	if e == nil {
		return nil
	}
	return &api.JobEnrichment{
		CoverLetter:    api.BilingualText{English: e.CoverLetter.English, French: e.CoverLetter.French},
		MissingSkills:  api.BilingualText{English: e.MissingSkills.English, French: e.MissingSkills.French},
		MatchingSkills: api.BilingualText{English: e.MatchingSkills.English, French: e.MatchingSkills.French},
	}
}
