package notifications

import (
	"context"
	"fmt"

	"vizin/internal/events"
	"vizin/pkg/kafka"
	"vizin/pkg/logger"
)

type Handler struct {
	notifier Notifier
	log      *logger.Logger
}

func NewHandler(notifier Notifier, log *logger.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		log:      log,
	}
}

// Handle is the consumer's MessageHandler. Undecodable payloads are permanent
// failures and go straight to the DLQ; notifier errors are retried.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.Event
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode event", err)
	}
	if event.ID == "" {
		event.ID = msg.GetEventID()
	}
	if event.Type == "" {
		event.Type = events.Type(msg.GetEventType())
	}

	n, ok := Compose(event)
	if !ok {
		h.log.Debug("Event ignored", "event_type", event.Type, "event_id", event.ID)
		return nil
	}

	if err := h.notifier.Notify(ctx, n); err != nil {
		return kafka.NewTransientError(fmt.Sprintf("failed to notify %s", n.RecipientID), err)
	}
	return nil
}
