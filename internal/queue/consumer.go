package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer drains the booking event queue into an append-only audit log.
type Consumer struct {
	URL   string
	Queue string
	Out   io.Writer
	Log   *zap.Logger
}

// Run connects, consumes and reconnects with backoff until ctx is done.
// Malformed messages are rejected without requeue so they cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
	if c.Queue == "" {
		c.Queue = DefaultQueue
	}
	if c.Log == nil {
		c.Log = zap.NewNop()
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("booking consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("booking consumer: loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("booking consumer: set qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.Log.Error("booking consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handle writes one audit line per event.
func (c *Consumer) handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Kind == "" || ev.BookingID == 0 {
		return errors.New("event without kind or booking id")
	}
	line := fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | type=%s | reference_id=%d | status=%s | payment=%s | qty=%d | total=%d cents | code=%s\n",
		ev.OccurredAt, ev.Kind, ev.BookingID, ev.UserID, ev.BookingType, ev.ReferenceID,
		ev.Status, ev.PaymentStatus, ev.Quantity, ev.TotalAmountCents, ev.ConfirmationCode)
	if _, err := io.WriteString(c.Out, line); err != nil {
		return fmt.Errorf("write audit line: %w", err)
	}
	c.logger().Debug("booking event recorded", zap.String("kind", string(ev.Kind)), zap.Uint64("booking_id", ev.BookingID))
	return nil
}
