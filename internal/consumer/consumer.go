package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

const (
	EventCheckoutCompleted = "checkout.completed"
	EventUserSignedOut     = "user.signed_out"
)

// SessionResetter is the slice of the session service the consumer needs.
type SessionResetter interface {
	CompleteCheckout(ctx context.Context, userID string) error
	ResetSession(ctx context.Context, userID string) error
}

// Consumer drains checkout and sign-out events and applies them to live
// sessions: a completed checkout empties the user's cart, a sign-out resets
// the whole session.
type Consumer struct {
	service SessionResetter
	reader  *kafka.Reader
}

func New(service SessionResetter, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-outbox",
		GroupID:  "cart-session-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{service: service, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			fmt.Printf("error reading message: %v\n", err)
			continue
		}
		if errApply := c.Apply(ctx, m.Value); errApply != nil {
			fmt.Printf("error applying event: %v\n", errApply)
		}
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		fmt.Printf("error closing reader: %v\n", err)
	}
}

type event struct {
	EventType string `json:"event_type"`
	UserID    string `json:"user_id"`
}

// Apply dispatches a single raw event payload. Unknown event types are
// skipped, not errors: the topic carries more than this service consumes.
func (c *Consumer) Apply(ctx context.Context, payload []byte) error {
	var e event
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("error parsing event: %w", err)
	}
	if e.UserID == "" {
		return fmt.Errorf("missing or invalid user_id")
	}

	switch e.EventType {
	case EventCheckoutCompleted:
		return c.service.CompleteCheckout(ctx, e.UserID)
	case EventUserSignedOut:
		return c.service.ResetSession(ctx, e.UserID)
	default:
		return nil
	}
}
