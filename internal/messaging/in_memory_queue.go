package messaging

import (
	"context"
	"encoding/json"
)

type inMemoryTask struct {
	queue   string
	payload []byte
}

func (t *inMemoryTask) Type() string {
	return t.queue
}

func (t *inMemoryTask) Payload() []byte {
	return t.payload
}

func (t *inMemoryTask) Ack() error {
	return nil
}

func (t *inMemoryTask) Nack() error {
	return nil
}

func (t *inMemoryTask) Reject() error {
	return nil
}

// InMemoryQueue is the single-process stand-in for RabbitMQ, used in local
// development and tests.
type InMemoryQueue struct {
	tasks chan Task
}

var (
	_ Publisher = (*InMemoryQueue)(nil)
	_ Receiver  = (*InMemoryQueue)(nil)
)

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		tasks: make(chan Task, 100),
	}
}

func (q *InMemoryQueue) PublishTrainTask(ctx context.Context, payload TrainTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q.tasks <- &inMemoryTask{queue: TrainingQueue, payload: data}
	return nil
}

func (q *InMemoryQueue) Tasks() <-chan Task {
	return q.tasks
}

func (q *InMemoryQueue) Close() {
	if q.tasks != nil {
		close(q.tasks)
		q.tasks = nil
	}
}
