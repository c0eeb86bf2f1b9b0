package rabbitMQ

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ds124wfegd/eventmarket/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

var (
	ErrClosed = errors.New("queue is closed")
	// ErrRedeliver marks handler errors after which the message must go back
	// to the queue instead of being dropped.
	ErrRedeliver = errors.New("message should be redelivered")
)

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// Queue is a durable work queue whose messages can be held back for a while
// before they become visible to consumers.
type Queue interface {
	PublishWithDelay(ctx context.Context, message interface{}, delay time.Duration) error
	Consume(ctx context.Context, handler func(ctx context.Context, message []byte) error) error
	Close() error
}

type DelayQueue struct {
	url  string
	name string

	mu      sync.Mutex // guards everything below; amqp channels are not safe for concurrent publishing
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
	// delay holding queues already declared on channel, keyed by ttl in ms
	declared map[int64]string
}

func NewDelayQueue(cfg *config.RabbitConfig) (*DelayQueue, error) {
	q := &DelayQueue{url: cfg.URL, name: cfg.QueueName}

	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.ensureChannel(); err != nil {
		return nil, err
	}
	return q, nil
}

// ensureChannel redials the broker and reopens the publishing channel when
// either was closed. Caller holds q.mu.
func (q *DelayQueue) ensureChannel() error {
	if q.closed {
		return ErrClosed
	}

	if q.conn == nil || q.conn.IsClosed() {
		conn, err := amqp.Dial(q.url)
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		q.conn = conn
		q.channel = nil
	}

	if q.channel != nil && !q.channel.IsClosed() {
		return nil
	}

	channel, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		q.name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-queue-mode": "lazy"},
	)
	if err != nil {
		channel.Close()
		return fmt.Errorf("failed to declare queue %s: %w", q.name, err)
	}

	q.channel = channel
	q.declared = make(map[int64]string)
	return nil
}

// holdingQueue returns the queue that parks messages for ttl ms and then
// dead-letters them into the main queue. Caller holds q.mu.
func (q *DelayQueue) holdingQueue(ttl int64) (string, error) {
	if name, ok := q.declared[ttl]; ok {
		return name, nil
	}

	name := fmt.Sprintf("%s.delay.%d", q.name, ttl)
	_, err := q.channel.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-message-ttl":             ttl,
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": q.name,
			"x-expires":                 ttl + time.Minute.Milliseconds(),
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to declare delayed queue %s: %w", name, err)
	}

	q.declared[ttl] = name
	return name, nil
}

// PublishWithDelay encodes message as JSON. A non-positive delay publishes
// straight to the main queue.
func (q *DelayQueue) PublishWithDelay(ctx context.Context, message interface{}, delay time.Duration) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.ensureChannel(); err != nil {
		return err
	}

	routingKey := q.name
	if ttl := delay.Milliseconds(); ttl > 0 {
		if routingKey, err = q.holdingQueue(ttl); err != nil {
			return err
		}
	}

	err = q.channel.PublishWithContext(ctx, "", routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// subscribe opens a dedicated consumer channel on the current connection.
func (q *DelayQueue) subscribe(ctx context.Context) (*amqp.Channel, <-chan amqp.Delivery, error) {
	q.mu.Lock()
	err := q.ensureChannel()
	conn := q.conn
	q.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}

	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := channel.ConsumeWithContext(ctx, q.name, "", false, false, false, false, nil)
	if err != nil {
		channel.Close()
		return nil, nil, fmt.Errorf("failed to consume messages: %w", err)
	}
	return channel, deliveries, nil
}

// Consume delivers messages to handler one at a time. A handler error drops
// the message unless it wraps ErrRedeliver. When the broker connection is
// lost the consumer reconnects with backoff until ctx is cancelled or the
// queue is closed.
func (q *DelayQueue) Consume(ctx context.Context, handler func(ctx context.Context, message []byte) error) error {
	channel, deliveries, err := q.subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			q.drain(ctx, deliveries, handler)
			channel.Close()

			if ctx.Err() != nil {
				return
			}
			logrus.WithField("queue", q.name).Warn("RabbitMQ delivery channel closed, reconnecting")

			channel, deliveries, err = q.resubscribe(ctx)
			if err != nil {
				logrus.WithError(err).WithField("queue", q.name).Info("Consumer stopped")
				return
			}
			logrus.WithField("queue", q.name).Info("Consumer reconnected")
		}
	}()

	return nil
}

func (q *DelayQueue) resubscribe(ctx context.Context) (*amqp.Channel, <-chan amqp.Delivery, error) {
	delay := minReconnectDelay
	for {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(delay):
		}

		channel, deliveries, err := q.subscribe(ctx)
		if err == nil {
			return channel, deliveries, nil
		}
		if errors.Is(err, ErrClosed) {
			return nil, nil, err
		}

		logrus.WithError(err).WithField("retry_in", delay).Warn("Failed to reconnect to RabbitMQ")
		delay = nextReconnectDelay(delay)
	}
}

func nextReconnectDelay(d time.Duration) time.Duration {
	if d < minReconnectDelay {
		return minReconnectDelay
	}
	return min(2*d, maxReconnectDelay)
}

// drain handles deliveries until the channel closes or ctx is cancelled.
func (q *DelayQueue) drain(ctx context.Context, deliveries <-chan amqp.Delivery, handler func(ctx context.Context, message []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			if err := handler(ctx, delivery.Body); err != nil {
				redeliver := errors.Is(err, ErrRedeliver)
				logrus.WithError(err).WithFields(logrus.Fields{"queue": q.name, "redeliver": redeliver}).
					Error("Failed to process message")
				delivery.Nack(false, redeliver)
				continue
			}
			delivery.Ack(false)
		}
	}
}

func (q *DelayQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true

	var errs []error
	if q.channel != nil && !q.channel.IsClosed() {
		errs = append(errs, q.channel.Close())
	}
	if q.conn != nil && !q.conn.IsClosed() {
		errs = append(errs, q.conn.Close())
	}
	return errors.Join(errs...)
}

// HealthCheck verifies the connection can still open a channel.
func (q *DelayQueue) HealthCheck(ctx context.Context) error {
	q.mu.Lock()
	conn := q.conn
	q.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("RabbitMQ connection is closed")
	}

	probe, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("RabbitMQ health check failed: %w", err)
	}
	return probe.Close()
}
