package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload published to the booking-events topic after a
// booking changes state. Publication is best-effort and never fails the
// request that produced it.
type BookingEvent struct {
	EventType   string    `json:"event_type"`
	BookingID   string    `json:"booking_id"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	ServiceType string    `json:"service_type"`
	OccurredAt  time.Time `json:"occurred_at"`
}
