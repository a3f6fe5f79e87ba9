package model

import "time"

// BookingLock is an advisory lock document guarding booking admission for one
// (date, startTime) slot. The unique _id makes concurrent admissions for the
// same slot collide at insert; a TTL index on expires_at reaps stale locks.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
