package integrationtests

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"gleam/pkg/model"
	"gleam/test/integration/testutil"
)

const bookingDay = "2099-05-12"

func TestBookingFlow(t *testing.T) {
	testutil.RequireIntegration(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	admin := env.AdminLogin(t, client)
	testutil.SeedDay(t, admin, bookingDay, "Tuesday",
		testutil.GridSlots(testutil.MorningGrid()))

	var bookingID string

	t.Run("admission creates a pending booking", func(t *testing.T) {
		resp := client.POST(t, "/bookings", testutil.BookingPayload(bookingDay, "08:00 AM"))
		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var created struct {
			BookingID string `json:"bookingId"`
		}
		if err := resp.DecodeJSON(&created); err != nil {
			t.Fatalf("failed to decode create response: %v", err)
		}
		if created.BookingID == "" {
			t.Fatal("expected a booking id")
		}
		bookingID = created.BookingID

		booking := findBooking(t, admin, bookingID)
		if booking.Status != model.StatusPendingConfirmation {
			t.Fatalf("expected status %q, got %q", model.StatusPendingConfirmation, booking.Status)
		}
		if booking.EndTime != "10:00 AM" {
			t.Fatalf("expected end time 10:00 AM, got %q", booking.EndTime)
		}
	})

	t.Run("slot lock is released after admission", func(t *testing.T) {
		if n := mongo.CountDocuments(t, testutil.BookingLocksCollection, nil); n != 0 {
			t.Fatalf("expected no leftover slot locks, got %d", n)
		}
	})

	t.Run("booking blanks the day's slots", func(t *testing.T) {
		resp := client.GET(t, "/bookable-slots?date="+bookingDay)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var slots []model.BookableSlot
		if err := resp.DecodeJSON(&slots); err != nil {
			t.Fatalf("failed to decode slots: %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("expected no slots while the booking is active, got %v", slots)
		}
	})

	t.Run("overlapping submissions are rejected", func(t *testing.T) {
		for _, start := range []string{"08:00 AM", "09:30 AM"} {
			resp := client.POST(t, "/bookings", testutil.BookingPayload(bookingDay, start))
			testutil.AssertStatusCode(t, resp, http.StatusConflict)
		}
		if n := mongo.CountDocuments(t, testutil.BookingsCollection, bson.M{"date": bookingDay}); n != 1 {
			t.Fatalf("expected 1 booking, got %d", n)
		}
	})

	t.Run("unknown date is rejected before conflict checks", func(t *testing.T) {
		resp := client.POST(t, "/bookings", testutil.BookingPayload("2099-07-01", "08:00 AM"))
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("invalid submission is rejected", func(t *testing.T) {
		payload := testutil.BookingPayload(bookingDay, "08:00 AM")
		payload["clientEmail"] = "not-an-email"
		resp := client.POST(t, "/bookings", payload)
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("confirm moves pending to confirmed exactly once", func(t *testing.T) {
		resp := admin.PATCH(t, "/bookings/"+bookingID, map[string]string{"action": "confirm"})
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var booking model.Booking
		if err := resp.DecodeJSON(&booking); err != nil {
			t.Fatalf("failed to decode booking: %v", err)
		}
		if booking.Status != model.StatusConfirmed {
			t.Fatalf("expected status %q, got %q", model.StatusConfirmed, booking.Status)
		}

		resp = admin.PATCH(t, "/bookings/"+bookingID, map[string]string{"action": "confirm"})
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
	})

	t.Run("cancel frees the slots", func(t *testing.T) {
		resp := admin.PATCH(t, "/bookings/"+bookingID, map[string]string{"action": "cancel"})
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		slotsResp := client.GET(t, "/bookable-slots?date="+bookingDay)
		testutil.AssertStatusCode(t, slotsResp, http.StatusOK)

		var slots []model.BookableSlot
		if err := slotsResp.DecodeJSON(&slots); err != nil {
			t.Fatalf("failed to decode slots: %v", err)
		}
		if len(slots) != 2 {
			t.Fatalf("expected slots to reopen after cancel, got %v", slots)
		}

		// The record survives as an audit trail.
		if n := mongo.CountDocuments(t, testutil.BookingsCollection, bson.M{"status": "cancelled"}); n != 1 {
			t.Fatalf("expected 1 cancelled booking, got %d", n)
		}
	})

	t.Run("cancel is not repeatable", func(t *testing.T) {
		resp := admin.PATCH(t, "/bookings/"+bookingID, map[string]string{"action": "cancel"})
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
	})

	t.Run("transition targets must exist and parse", func(t *testing.T) {
		resp := admin.PATCH(t, "/bookings/ffffffffffffffffffffffff", map[string]string{"action": "confirm"})
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)

		resp = admin.PATCH(t, "/bookings/not-a-hex-id", map[string]string{"action": "confirm"})
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

		resp = admin.PATCH(t, "/bookings/"+bookingID, map[string]string{"action": "reschedule"})
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("listing and transitions require admin token", func(t *testing.T) {
		resp := client.GET(t, "/bookings")
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)

		resp = client.PATCH(t, "/bookings/"+bookingID, map[string]string{"action": "cancel"})
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func findBooking(t *testing.T, admin *testutil.Client, id string) *model.Booking {
	t.Helper()

	resp := admin.GET(t, "/bookings")
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var bookings []model.Booking
	if err := resp.DecodeJSON(&bookings); err != nil {
		t.Fatalf("failed to decode bookings: %v", err)
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i]
		}
	}
	t.Fatalf("booking %s not found in upcoming list", id)
	return nil
}
