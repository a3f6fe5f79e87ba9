package testutil

import (
	"fmt"
	"net/http"
	"testing"
)

// AdminLogin exchanges the env-provided credentials for a session token and
// returns an authenticated client.
func (e *TestEnv) AdminLogin(t *testing.T, client *Client) *Client {
	t.Helper()

	if e.AdminPassword == "" {
		t.Fatal("ADMIN_PASSWORD must be set for integration tests")
	}

	resp := client.POST(t, "/admin/login", map[string]string{
		"username": e.AdminUsername,
		"password": e.AdminPassword,
	})
	AssertStatusCode(t, resp, http.StatusOK)

	var login struct {
		Token string `json:"token"`
	}
	if err := resp.DecodeJSON(&login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login returned an empty token")
	}

	return client.WithToken(login.Token)
}

// GridSlots builds an availability grid of half-hour marks. times holds
// 12-hour clock strings in order; closed marks the indexes to flag
// unavailable.
func GridSlots(times []string, closed ...int) []map[string]any {
	unavailable := make(map[int]bool, len(closed))
	for _, i := range closed {
		unavailable[i] = true
	}

	slots := make([]map[string]any, 0, len(times))
	for i, tm := range times {
		slots = append(slots, map[string]any{
			"id":        fmt.Sprintf("slot-%d", i+1),
			"time":      tm,
			"available": !unavailable[i],
		})
	}
	return slots
}

// MorningGrid is 08:00 through 11:30, enough for two bookable windows.
func MorningGrid() []string {
	return []string{
		"08:00 AM", "08:30 AM", "09:00 AM", "09:30 AM",
		"10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	}
}

// SeedDay publishes a day's grid through the admin endpoint.
func SeedDay(t *testing.T, admin *Client, date, dayName string, slots []map[string]any) {
	t.Helper()

	resp := admin.POST(t, "/availability", map[string]any{
		"date":    date,
		"dayName": dayName,
		"slots":   slots,
	})
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		t.Fatalf("failed to seed availability for %s: status %d, body %s", date, resp.StatusCode, string(resp.Body))
	}
}

// BookingPayload is a valid booking submission for the given slot.
func BookingPayload(date, startTime string) map[string]any {
	return map[string]any{
		"date":        date,
		"startTime":   startTime,
		"clientName":  "Dana Levi",
		"clientEmail": "dana@example.com",
		"clientPhone": "+972501234567",
		"serviceType": "Full exterior and interior",
		"notes":       "White SUV, parked out front",
	}
}
