package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	BookingCreated  Type = "booking.created"
	BookingCanceled Type = "booking.canceled"
	PaymentApproved Type = "payment.approved"
	PaymentDeclined Type = "payment.declined"
)

const SchemaVersion = "1"

// Event is the payload of every booking and payment notification. Fields not
// relevant to a given type are left empty.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	BookingID  string          `json:"booking_id"`
	GuestID    string          `json:"guest_id,omitempty"`
	PropertyID string          `json:"property_id,omitempty"`
	PaymentID  string          `json:"payment_id,omitempty"`
	CheckIn    string          `json:"check_in,omitempty"`
	CheckOut   string          `json:"check_out,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func New(eventType Type, bookingID string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		BookingID:  bookingID,
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers events after the owning transaction committed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type noopPublisher struct{}

// NewNoopPublisher is used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}
