package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/email"
	"jobmatch-backend/internal/training"

	"gorm.io/gorm"
)

// TrainingWorker consumes train tasks and drives the training pipeline,
// keeping the TrainingRun row in step with the job.
type TrainingWorker struct {
	db       *gorm.DB
	pipeline *training.Pipeline
	mailer   email.Mailer
	reportTo string
	logger   *slog.Logger
}

// NewTrainingWorker builds a worker. mailer may be nil; reportTo is the
// address training reports go to when a mailer is configured.
func NewTrainingWorker(db *gorm.DB, pipeline *training.Pipeline, mailer email.Mailer, reportTo string, logger *slog.Logger) *TrainingWorker {
	return &TrainingWorker{
		db:       db,
		pipeline: pipeline,
		mailer:   mailer,
		reportTo: reportTo,
		logger:   logger,
	}
}

// Run consumes tasks until the channel closes or the context is cancelled.
func (w *TrainingWorker) Run(ctx context.Context, receiver Receiver) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-receiver.Tasks():
			if !ok {
				return
			}
			w.handle(ctx, task)
		}
	}
}

func (w *TrainingWorker) handle(ctx context.Context, task Task) {
	var payload TrainTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		w.logger.Error("malformed train task payload", "error", err)
		if err := task.Reject(); err != nil {
			w.logger.Error("error rejecting task", "error", err)
		}
		return
	}

	w.logger.Info("training task received", "run_id", payload.RunId,
		"platform", payload.Platform, "region", payload.Region)

	if err := database.UpdateTrainingRunStatus(ctx, w.db, payload.RunId, database.TrainingRunning, nil); err != nil {
		w.logger.Error("could not mark run as training", "run_id", payload.RunId, "error", err)
	}

	res, err := w.pipeline.RunPair(ctx, training.Pair{Platform: payload.Platform, Region: payload.Region})
	if err != nil {
		w.logger.Error("training task failed", "run_id", payload.RunId, "error", err)
		if dbErr := database.UpdateTrainingRunStatus(ctx, w.db, payload.RunId, database.TrainingFailed, map[string]any{
			"error": err.Error(),
		}); dbErr != nil {
			w.logger.Error("could not mark run as failed", "run_id", payload.RunId, "error", dbErr)
		}
		if err := task.Nack(); err != nil {
			w.logger.Error("error nacking task", "error", err)
		}
		return
	}

	if err := database.UpdateTrainingRunStatus(ctx, w.db, payload.RunId, database.TrainingComplete, map[string]any{
		"clusters":        res.ClusterCount,
		"best_classifier": res.BestClassifier,
		"scores":          res.ScoresJSON(),
	}); err != nil {
		w.logger.Error("could not mark run as trained", "run_id", payload.RunId, "error", err)
	}

	w.logger.Info("training task complete", "run_id", payload.RunId,
		"documents", res.Documents, "clusters", res.ClusterCount, "best", res.BestClassifier)

	if w.mailer != nil && w.reportTo != "" {
		subject, body := email.TrainingReportBody(res.Platform, res.Region, res.ClusterCount, res.BestClassifier, res.Scores)
		if err := w.mailer.Send(ctx, w.reportTo, subject, body); err != nil {
			w.logger.Warn("could not send training report", "error", err)
		}
	}

	if err := task.Ack(); err != nil {
		w.logger.Error("error acking task", "error", err)
	}
}
