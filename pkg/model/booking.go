package model

import "time"

type BookingStatus string

const (
	StatusPendingConfirmation BookingStatus = "pending_confirmation"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusCancelled           BookingStatus = "cancelled"
)

// Booking is a client appointment. StartTime and EndTime bound the service
// only; conflict checks extend EndTime by the buffer. Cancelled bookings are
// retained with status "cancelled" and excluded from every conflict check
// and listing.
type Booking struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty"`
	Date        string        `json:"date" bson:"date"`
	StartTime   string        `json:"startTime" bson:"startTime"`
	EndTime     string        `json:"endTime" bson:"endTime"`
	ClientName  string        `json:"clientName" bson:"clientName"`
	ClientEmail string        `json:"clientEmail" bson:"clientEmail"`
	ClientPhone string        `json:"clientPhone" bson:"clientPhone"`
	ServiceType string        `json:"serviceType" bson:"serviceType"`
	Notes       string        `json:"notes,omitempty" bson:"notes"`
	Status      BookingStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}

// BookingRequest is the validated shape of a client booking submission.
// Everything beyond date and startTime is opaque to the scheduling logic.
type BookingRequest struct {
	Date        string `json:"date" validate:"required,dateiso"`
	StartTime   string `json:"startTime" validate:"required,clock12"`
	ClientName  string `json:"clientName" validate:"required,min=2,max=100"`
	ClientEmail string `json:"clientEmail" validate:"required,email"`
	ClientPhone string `json:"clientPhone" validate:"required,min=7,max=20"`
	ServiceType string `json:"serviceType" validate:"required,min=2,max=100"`
	Notes       string `json:"notes" validate:"omitempty,max=1000"`
}

const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
)

// BookingAction is the admin PATCH body.
type BookingAction struct {
	Action string `json:"action" validate:"required,oneof=confirm cancel"`
}
