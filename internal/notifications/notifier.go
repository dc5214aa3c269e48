package notifications

import (
	"context"
	"fmt"

	"vizin/internal/events"
	"vizin/pkg/logger"
)

type Notification struct {
	RecipientID string
	EventID     string
	Subject     string
	Body        string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type logNotifier struct {
	log *logger.Logger
}

// NewLogNotifier writes notifications to the log instead of delivering them.
func NewLogNotifier(log *logger.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(ctx context.Context, msg Notification) error {
	n.log.WithContext(ctx).Info("Guest notification",
		"recipient_id", msg.RecipientID,
		"event_id", msg.EventID,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// Compose builds the guest facing message for an event. ok is false for
// events that do not notify anyone.
func Compose(e events.Event) (Notification, bool) {
	if e.GuestID == "" {
		return Notification{}, false
	}

	n := Notification{RecipientID: e.GuestID, EventID: e.ID}
	stay := fmt.Sprintf("%s to %s", e.CheckIn, e.CheckOut)

	switch e.Type {
	case events.BookingCreated:
		n.Subject = "Booking received"
		n.Body = fmt.Sprintf("Your booking %s for %s is awaiting payment of %s.", e.BookingID, stay, e.Amount.StringFixed(2))
	case events.BookingCanceled:
		n.Subject = "Booking canceled"
		n.Body = fmt.Sprintf("Your booking %s for %s was canceled.", e.BookingID, stay)
	case events.PaymentApproved:
		n.Subject = "Booking confirmed"
		n.Body = fmt.Sprintf("Payment of %s was approved. Booking %s for %s is confirmed.", e.Amount.StringFixed(2), e.BookingID, stay)
	case events.PaymentDeclined:
		n.Subject = "Payment declined"
		n.Body = fmt.Sprintf("Payment of %s for booking %s was declined. You can try again with another card.", e.Amount.StringFixed(2), e.BookingID)
	default:
		return Notification{}, false
	}
	return n, true
}
