package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/messaging"
	"jobmatch-backend/pkg/api"

	"gorm.io/gorm"
)

func (s *BackendService) SubmitTrainingJob(r *http.Request) (any, error) {
	req, err := ParseRequest[api.TrainRequest](r)
	if err != nil {
		return nil, err
	}
	if !s.knownPlatform(req.Platform) {
		return nil, CodedErrorf(http.StatusBadRequest, "unknown platform '%s'", req.Platform)
	}
	if !s.knownRegion(req.Region) {
		return nil, CodedErrorf(http.StatusBadRequest, "unknown region '%s'", req.Region)
	}

	ctx := r.Context()

	run, err := database.CreateTrainingRun(ctx, s.db, req.Platform, req.Region)
	if err != nil {
		slog.Error("error creating training run", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to create training run")
	}

	payload := messaging.TrainTaskPayload{
		RunId:    run.Id,
		Platform: req.Platform,
		Region:   req.Region,
	}
	if err := s.publisher.PublishTrainTask(ctx, payload); err != nil {
		slog.Error("error publishing training task", "run_id", run.Id, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to queue training task")
	}

	slog.Info("submitted training job", "run_id", run.Id, "platform", req.Platform, "region", req.Region)
	return api.TrainSubmitResponse{Message: "Training job submitted", RunId: run.Id}, nil
}

func (s *BackendService) GetTrainingRun(r *http.Request) (any, error) {
	runId, err := URLParamUUID(r, "run_id")
	if err != nil {
		return nil, err
	}

	run, err := database.GetTrainingRun(r.Context(), s.db, runId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "training run not found")
		}
		slog.Error("error getting training run", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving training run")
	}

	res := api.TrainingRunResponse{
		Id:           run.Id,
		Platform:     run.Platform,
		Region:       run.Region,
		Status:       run.Status,
		Error:        run.Error,
		CreationTime: run.CreationTime,
	}
	res.Clusters = run.Clusters
	res.BestClassifier = run.BestClassifier
	if len(run.Scores) > 0 {
		if err := json.Unmarshal(run.Scores, &res.Scores); err != nil {
			slog.Warn("training run has unreadable scores", "run_id", run.Id, "error", err)
		}
	}
	if run.CompletionTime.Valid {
		t := run.CompletionTime.Time
		res.CompletionTime = &t
	}
	return res, nil
}
