package model

// TimeSlot is one half-hour mark of the admin's working-hour grid.
// Field names are camelCase in BSON because this service took over the
// original site's collections unchanged.
type TimeSlot struct {
	ID        string `json:"id" bson:"id" validate:"required"`
	Time      string `json:"time" bson:"time" validate:"required,clock12"`
	Available bool   `json:"available" bson:"available"`
}

// DayAvailability is a full day's slot grid. At most one document exists per
// date; the admin replaces it wholesale, the booking flow never touches it.
type DayAvailability struct {
	ID      string     `json:"-" bson:"_id,omitempty"`
	Date    string     `json:"date" bson:"date" validate:"required,dateiso"`
	DayName string     `json:"dayName" bson:"dayName" validate:"required"`
	Slots   []TimeSlot `json:"slots" bson:"slots" validate:"required,dive"`
}

// BookableSlot is one derived 2-hour service offering. The display range ends
// at the service end; the trailing buffer is never shown to clients.
type BookableSlot struct {
	StartTime   string `json:"startTime"`
	DisplayTime string `json:"displayTime"`
}

// AnnotatedSlot is a TimeSlot overlaid with the status of whichever booking
// occupies it, for the admin dashboard. Empty status means not booked.
type AnnotatedSlot struct {
	TimeSlot      `bson:",inline"`
	BookingStatus BookingStatus `json:"bookingStatus,omitempty" bson:"-"`
}

// AnnotatedDayAvailability mirrors DayAvailability with per-slot booking
// status. Read-side only.
type AnnotatedDayAvailability struct {
	Date    string          `json:"date"`
	DayName string          `json:"dayName"`
	Slots   []AnnotatedSlot `json:"slots"`
}
