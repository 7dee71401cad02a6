package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends booking events to a durable queue on the default
// exchange. Each Publish dials the broker; booking writes are rare
// compared to reads so a pooled channel is not worth the reconnect logic.
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger
}

func NewPublisher(url, queue string, log *zap.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, queue: queue, log: log}
}

// Publish marshals ev and publishes it as a persistent message. Errors are
// logged and returned; callers decide whether to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	err := p.publish(ctx, ev)
	if err != nil {
		p.log.Warn("publish booking event failed",
			zap.String("kind", string(ev.Kind)),
			zap.Uint64("booking_id", ev.BookingID),
			zap.Error(err))
	}
	return err
}

func (p *Publisher) publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(ev.Kind),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
