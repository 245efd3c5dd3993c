// Package messaging queues training jobs between the API and the workers.
package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TrainingQueue   = "training_queue"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// TrainTaskPayload asks a worker to retrain one dataset. RunId points at the
// TrainingRun row tracking the job.
type TrainTaskPayload struct {
	RunId    uuid.UUID
	Platform string
	Region   string
}

type Publisher interface {
	PublishTrainTask(ctx context.Context, payload TrainTaskPayload) error

	Close()
}

type Receiver interface {
	Tasks() <-chan Task

	Close()
}
