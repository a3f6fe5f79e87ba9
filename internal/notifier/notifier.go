// Package notifier turns booking lifecycle events into admin-facing
// notifications. Delivery is currently the structured log stream; the
// handler shape leaves room for an email or webhook sender.
package notifier

import (
	"context"
	"fmt"

	"gleam/pkg/kafka"
	"gleam/pkg/logger"
	"gleam/pkg/model"
)

type Service struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Service {
	return &Service{log: log}
}

// Handle processes one booking event. Undecodable payloads are skipped, not
// retried: redelivery cannot fix them.
func (s *Service) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		s.log.Warn("Skipping undecodable booking event",
			"event_id", msg.GetEventID(),
			"error", err,
		)
		return nil
	}

	summary, err := Summarize(&event)
	if err != nil {
		s.log.Warn("Skipping booking event with unknown type",
			"event_id", msg.GetEventID(),
			"event_type", event.EventType,
		)
		return nil
	}

	s.log.Info("Booking notification",
		"event_id", msg.GetEventID(),
		"event_type", event.EventType,
		"booking_id", event.BookingID,
		"summary", summary,
	)
	return nil
}

// Summarize renders the one-line admin notification for an event.
func Summarize(event *model.BookingEvent) (string, error) {
	window := fmt.Sprintf("%s %s - %s", event.Date, event.StartTime, event.EndTime)
	switch event.EventType {
	case model.EventBookingCreated:
		return fmt.Sprintf("New booking request from %s (%s) for %s: %s",
			event.ClientName, event.ClientEmail, event.ServiceType, window), nil
	case model.EventBookingConfirmed:
		return fmt.Sprintf("Booking for %s confirmed: %s", event.ClientName, window), nil
	case model.EventBookingCancelled:
		return fmt.Sprintf("Booking for %s cancelled: %s", event.ClientName, window), nil
	default:
		return "", fmt.Errorf("unknown event type %q", event.EventType)
	}
}
