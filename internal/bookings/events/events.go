package events

import (
	"context"
	"time"

	"roombook/pkg/model"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// Event is a committed change to the ledger.
type Event struct {
	Type       string         `json:"event_type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Booking    *model.Booking `json:"booking"`
}

// Publisher delivers ledger events. Implementations are called after the
// change is committed, outside every ledger lock.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
