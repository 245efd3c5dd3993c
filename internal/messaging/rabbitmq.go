package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// brokerSession is one live connection and channel pair with the training
// queue declared. Both ends of the queue build on it.
type brokerSession struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func dialBroker(url string) (*brokerSession, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxConnectRetry; attempt++ {
		conn, err := amqp.Dial(url)
		if err != nil {
			lastErr = err
			slog.Warn("rabbitmq dial failed", "attempt", attempt, "max_attempts", MaxConnectRetry, "error", err)
			time.Sleep(RetryDelay)
			continue
		}

		channel, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open rabbitmq channel: %w", err)
		}
		if _, err := channel.QueueDeclare(TrainingQueue, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", TrainingQueue, err)
		}

		slog.Info("connected to rabbitmq", "queue", TrainingQueue)
		return &brokerSession{conn: conn, channel: channel}, nil
	}
	return nil, fmt.Errorf("rabbitmq unreachable after %d attempts: %w", MaxConnectRetry, lastErr)
}

func (s *brokerSession) closed() bool {
	return s == nil || s.channel == nil || s.channel.IsClosed()
}

type RabbitMQPublisher struct {
	mu      sync.RWMutex
	session *brokerSession
	url     string
	once    sync.Once
}

var _ Publisher = (*RabbitMQPublisher)(nil)

func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	session, err := dialBroker(url)
	if err != nil {
		return nil, err
	}
	p := &RabbitMQPublisher{session: session, url: url}
	go p.watch(session)
	return p, nil
}

// watch blocks until the channel dies, then redials under the write lock so
// publishes wait instead of hitting a dead channel.
func (p *RabbitMQPublisher) watch(session *brokerSession) {
	err, ok := <-session.channel.NotifyClose(make(chan *amqp.Error))
	if !ok { // graceful close
		return
	}
	slog.Warn("rabbitmq connection lost, reconnecting", "error", err)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	for {
		next, dialErr := dialBroker(p.url)
		if dialErr == nil {
			p.session = next
			go p.watch(next)
			slog.Info("rabbitmq publisher reconnected")
			return
		}
		time.Sleep(RetryDelay * 10)
	}
}

func (p *RabbitMQPublisher) PublishTrainTask(ctx context.Context, payload TrainTaskPayload) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.session.closed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal train task payload: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if err := p.session.channel.PublishWithContext(ctx, "", TrainingQueue, false, false, msg); err != nil {
		return fmt.Errorf("publish train task: %w", err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() {
	p.once.Do(func() {
		p.mu.RLock()
		defer p.mu.RUnlock()
		if p.session == nil {
			return
		}
		if err := p.session.conn.Close(); err != nil {
			slog.Error("error closing rabbitmq connection", "error", err)
		}
	})
}

type brokerDelivery struct {
	d amqp.Delivery
}

func (t brokerDelivery) Type() string    { return t.d.RoutingKey }
func (t brokerDelivery) Payload() []byte { return t.d.Body }
func (t brokerDelivery) Ack() error      { return t.d.Ack(false) }
func (t brokerDelivery) Nack() error     { return t.d.Nack(false, false) }
func (t brokerDelivery) Reject() error   { return t.d.Reject(false) }

type RabbitMQReceiver struct {
	tasks chan Task
	url   string
	stop  chan struct{}
}

var _ Receiver = (*RabbitMQReceiver)(nil)

func NewRabbitMQReceiver(url string) (*RabbitMQReceiver, error) {
	r := &RabbitMQReceiver{
		tasks: make(chan Task),
		url:   url,
		stop:  make(chan struct{}),
	}
	if err := r.start(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQReceiver) start() error {
	session, err := dialBroker(r.url)
	if err != nil {
		return err
	}

	// One training job at a time per worker instance.
	if err := session.channel.Qos(1, 0, false); err != nil {
		session.conn.Close()
		return fmt.Errorf("set channel qos: %w", err)
	}

	deliveries, err := session.channel.Consume(TrainingQueue, "", false, false, false, false, nil)
	if err != nil {
		session.conn.Close()
		return fmt.Errorf("consume queue %s: %w", TrainingQueue, err)
	}

	go func() {
		for d := range deliveries {
			r.tasks <- brokerDelivery{d: d}
		}
	}()
	go r.watch(session)
	return nil
}

func (r *RabbitMQReceiver) watch(session *brokerSession) {
	select {
	case err, ok := <-session.channel.NotifyClose(make(chan *amqp.Error)):
		if !ok { // graceful close
			return
		}
		slog.Warn("rabbitmq connection lost, restarting consumer", "error", err)
		for {
			if r.start() == nil {
				slog.Info("rabbitmq consumer restarted")
				return
			}
			time.Sleep(RetryDelay * 10)
		}
	case <-r.stop:
		if err := session.conn.Close(); err != nil {
			slog.Error("error closing rabbitmq connection", "error", err)
		}
	}
}

func (r *RabbitMQReceiver) Tasks() <-chan Task {
	return r.tasks
}

func (r *RabbitMQReceiver) Close() {
	close(r.stop)
}
