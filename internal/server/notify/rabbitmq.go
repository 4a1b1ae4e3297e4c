package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/messagely/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Close() error
}

// dialAMQP is a seam for tests.
var dialAMQP = func(url string) (io.Closer, amqpChannel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// RabbitMQ publishes jobs to a durable queue (as a Sender) and consumes them
// in the notifier process.
type RabbitMQ struct {
	conn   io.Closer
	ch     amqpChannel
	queue  string
	logger logging.Logger
}

// NewRabbitMQ connects, opens a channel and declares the queue.
func NewRabbitMQ(url, queue string, logger logging.Logger) (*RabbitMQ, error) {
	conn, ch, err := dialAMQP(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	return &RabbitMQ{conn: conn, ch: ch, queue: queue, logger: logger.With("module", "rabbitmq", "queue", queue)}, nil
}

// Send publishes job as a persistent JSON message.
func (r *RabbitMQ) Send(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return Permanent(fmt.Errorf("failed to marshal job: %w", err))
	}

	err = r.ch.PublishWithContext(ctx, "", r.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}
	return nil
}

// Consume feeds queued jobs to handle until ctx is done or the broker
// closes the delivery channel. Successful jobs are acked, failed ones are
// requeued, malformed payloads are rejected without requeue.
func (r *RabbitMQ) Consume(ctx context.Context, prefetch int, handle func(context.Context, Job) error) error {
	if prefetch > 0 {
		if err := r.ch.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("failed to set qos: %w", err)
		}
	}

	deliveries, err := r.ch.Consume(r.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	r.logger.Info(ctx, "consumer registered")

	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			r.dispatch(ctx, d, handle)
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *RabbitMQ) dispatch(ctx context.Context, d amqp.Delivery, handle func(context.Context, Job) error) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		r.logger.Error(ctx, "malformed job", "error", err, "body", string(d.Body))
		if err := d.Nack(false, false); err != nil {
			r.logger.Error(ctx, "nack failed", "error", err)
		}
		return
	}

	if err := handle(ctx, job); err != nil {
		r.logger.Warn(ctx, "job not handled, requeueing", "job_id", job.ID, "error", err)
		if err := d.Nack(false, true); err != nil {
			r.logger.Error(ctx, "nack failed", "error", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		r.logger.Error(ctx, "ack failed", "job_id", job.ID, "error", err)
	}
}

func (r *RabbitMQ) Close() error {
	return errors.Join(r.ch.Close(), r.conn.Close())
}
