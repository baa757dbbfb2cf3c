package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends expiry notifications as persistent JSON messages.
// amqp channels are not safe for concurrent use, so publishes are serialized.
type Publisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	ch         Channel
	exchange   string
	routingKey string
	logger     logger.Interface
}

// NewPublisher wraps an already configured channel. conn may be nil when the caller owns it.
func NewPublisher(conn *amqp.Connection, ch Channel, exchange, routingKey string, logger logger.Interface) *Publisher {
	return &Publisher{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

// Dial connects, declares the topology and returns a ready publisher.
func Dial(url, exchange, routingKey, queue string, retries int, delay time.Duration, logger logger.Interface) (*Publisher, error) {
	conn, err := Connect(url, retries, delay)
	if err != nil {
		return nil, err
	}

	ch, err := SetupChannel(conn, exchange, []QueueConfig{{QueueName: queue, RoutingKey: routingKey}})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Infow("rabbitmq publisher ready", "exchange", exchange, "routing_key", routingKey, "queue", queue)
	return NewPublisher(conn, ch, exchange, routingKey, logger), nil
}

func (p *Publisher) Publish(ctx context.Context, n notification.BucketExpiryNotification) error {
	const op = "rabbitmq.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("%d-%d", n.BucketInstanceID, n.TemplateID),
			Timestamp:    n.NotificationTime,
			Headers:      amqp.Table{"username": n.Username},
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.logger.Debugw("expiry notification published", "username", n.Username, "bucket_instance_id", n.BucketInstanceID)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
