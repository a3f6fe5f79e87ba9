package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	availabilityerrors "gleam/internal/availability/errors"
	"gleam/internal/availability/validator"
	"gleam/pkg/config"
	mongotx "gleam/pkg/db/mongo"
	apperrors "gleam/pkg/errors"
	"gleam/pkg/logger"
	"gleam/pkg/model"
)

// Mock repository for testing
type mockAvailabilityRepository struct {
	findByDateFunc   func(ctx context.Context, date string) (*model.DayAvailability, error)
	findAllFunc      func(ctx context.Context) ([]*model.DayAvailability, error)
	findFromDateFunc func(ctx context.Context, date string) ([]*model.DayAvailability, error)
	upsertFunc       func(ctx context.Context, day *model.DayAvailability) (bool, error)
}

func (m *mockAvailabilityRepository) FindByDate(ctx context.Context, date string) (*model.DayAvailability, error) {
	if m.findByDateFunc != nil {
		return m.findByDateFunc(ctx, date)
	}
	return nil, nil
}

func (m *mockAvailabilityRepository) FindAll(ctx context.Context) ([]*model.DayAvailability, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []*model.DayAvailability{}, nil
}

func (m *mockAvailabilityRepository) FindFromDate(ctx context.Context, date string) ([]*model.DayAvailability, error) {
	if m.findFromDateFunc != nil {
		return m.findFromDateFunc(ctx, date)
	}
	return []*model.DayAvailability{}, nil
}

func (m *mockAvailabilityRepository) Upsert(ctx context.Context, day *model.DayAvailability) (bool, error) {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, day)
	}
	return false, nil
}

func (m *mockAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type mockBookingSource struct {
	findActiveByDateFunc func(ctx context.Context, date string) ([]model.Booking, error)
}

func (m *mockBookingSource) FindActiveByDate(ctx context.Context, date string) ([]model.Booking, error) {
	if m.findActiveByDateFunc != nil {
		return m.findActiveByDateFunc(ctx, date)
	}
	return []model.Booking{}, nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "info",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockAvailabilityRepository, bookings *mockBookingSource) *availabilityService {
	cfg := testConfig()
	return &availabilityService{
		repo:      repo,
		bookings:  bookings,
		validator: validator.NewAvailabilityValidator(cfg.Log),
		cfg:       cfg,
		now:       func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) },
	}
}

func morningGrid(date string) *model.DayAvailability {
	times := []string{"08:00 AM", "08:30 AM", "09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM"}
	slots := make([]model.TimeSlot, 0, len(times))
	for i, tm := range times {
		slots = append(slots, model.TimeSlot{ID: string(rune('a' + i)), Time: tm, Available: true})
	}
	return &model.DayAvailability{Date: date, DayName: "Wednesday", Slots: slots}
}

func TestUpsert_CreateAndUpdate(t *testing.T) {
	tests := []struct {
		name        string
		repoCreated bool
		wantCreated bool
	}{
		{"new date", true, true},
		{"existing date", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored *model.DayAvailability
			repo := &mockAvailabilityRepository{
				upsertFunc: func(ctx context.Context, day *model.DayAvailability) (bool, error) {
					stored = day
					return tt.repoCreated, nil
				},
			}
			svc := newTestService(repo, &mockBookingSource{})

			day := morningGrid("2024-01-10")
			created, err := svc.Upsert(context.Background(), day)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created != tt.wantCreated {
				t.Errorf("expected created=%v, got %v", tt.wantCreated, created)
			}
			if stored == nil || stored.Date != "2024-01-10" {
				t.Errorf("expected repo to receive the day, got %+v", stored)
			}
		})
	}
}

func TestUpsert_ValidationFailure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.DayAvailability)
	}{
		{"bad date", func(d *model.DayAvailability) { d.Date = "10/01/2024" }},
		{"bad slot time", func(d *model.DayAvailability) { d.Slots[0].Time = "8 o'clock" }},
		{"duplicate slot id", func(d *model.DayAvailability) { d.Slots[1].ID = d.Slots[0].ID }},
		{"no slots", func(d *model.DayAvailability) { d.Slots = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repoCalled := false
			repo := &mockAvailabilityRepository{
				upsertFunc: func(ctx context.Context, day *model.DayAvailability) (bool, error) {
					repoCalled = true
					return false, nil
				},
			}
			svc := newTestService(repo, &mockBookingSource{})

			day := morningGrid("2024-01-10")
			tt.mutate(day)

			_, err := svc.Upsert(context.Background(), day)
			if err == nil {
				t.Fatal("expected validation error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.StatusCode() != 400 {
				t.Errorf("expected 400 AppError, got %v", err)
			}
			if repoCalled {
				t.Error("repository must not be called on validation failure")
			}
		})
	}
}

func TestGetBookableSlots_DerivesFromGridAndBookings(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findByDateFunc: func(ctx context.Context, date string) (*model.DayAvailability, error) {
			return morningGrid(date), nil
		},
	}
	bookings := &mockBookingSource{}
	svc := newTestService(repo, bookings)

	slots, err := svc.GetBookableSlots(context.Background(), "2024-01-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d: %+v", len(slots), slots)
	}
	if slots[0].StartTime != "08:00 AM" || slots[1].StartTime != "08:30 AM" {
		t.Errorf("unexpected starts: %+v", slots)
	}

	// An existing booking occupying the morning blanks the output.
	bookings.findActiveByDateFunc = func(ctx context.Context, date string) ([]model.Booking, error) {
		return []model.Booking{{
			ID: "b1", Date: date, StartTime: "08:00 AM", EndTime: "10:00 AM",
			Status: model.StatusPendingConfirmation,
		}}, nil
	}
	slots, err = svc.GetBookableSlots(context.Background(), "2024-01-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %+v", slots)
	}
}

func TestGetBookableSlots_UnknownDateIsEmptyNotError(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findByDateFunc: func(ctx context.Context, date string) (*model.DayAvailability, error) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, date)
		},
	}
	svc := newTestService(repo, &mockBookingSource{})

	slots, err := svc.GetBookableSlots(context.Background(), "2030-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", slots)
	}
}

func TestGetBookableDates_FiltersUndersizedAndBookedDays(t *testing.T) {
	short := &model.DayAvailability{
		Date: "2024-01-11", DayName: "Thursday",
		Slots: morningGrid("2024-01-11").Slots[:3],
	}
	closed := morningGrid("2024-01-12")
	for i := range closed.Slots {
		closed.Slots[i].Available = false
	}
	open := morningGrid("2024-01-13")
	booked := morningGrid("2024-01-14")

	var capturedFrom string
	repo := &mockAvailabilityRepository{
		findFromDateFunc: func(ctx context.Context, date string) ([]*model.DayAvailability, error) {
			capturedFrom = date
			return []*model.DayAvailability{short, closed, open, booked}, nil
		},
	}
	bookings := &mockBookingSource{
		findActiveByDateFunc: func(ctx context.Context, date string) ([]model.Booking, error) {
			if date == "2024-01-14" {
				return []model.Booking{{
					ID: "b1", Date: date, StartTime: "08:00 AM", EndTime: "10:00 AM",
					Status: model.StatusConfirmed,
				}}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo, bookings)

	days, err := svc.GetBookableDates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedFrom != "2024-01-10" {
		t.Errorf("expected from-date 2024-01-10 via injected clock, got %s", capturedFrom)
	}
	if len(days) != 1 || days[0].Date != "2024-01-13" {
		t.Errorf("expected only 2024-01-13, got %+v", days)
	}
}

func TestGetAnnotated_OverlaysBookingStatus(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findFromDateFunc: func(ctx context.Context, date string) ([]*model.DayAvailability, error) {
			return []*model.DayAvailability{morningGrid("2024-01-10")}, nil
		},
	}
	bookings := &mockBookingSource{
		findActiveByDateFunc: func(ctx context.Context, date string) ([]model.Booking, error) {
			return []model.Booking{{
				ID: "b1", Date: date, StartTime: "08:00 AM", EndTime: "10:00 AM",
				Status: model.StatusConfirmed,
			}}, nil
		},
	}
	svc := newTestService(repo, bookings)

	days, err := svc.GetAnnotated(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}

	// 08:00 through 10:00 fall inside the occupied window, 10:30 does not.
	for i, want := range []model.BookingStatus{
		model.StatusConfirmed, model.StatusConfirmed, model.StatusConfirmed,
		model.StatusConfirmed, model.StatusConfirmed, "",
	} {
		if got := days[0].Slots[i].BookingStatus; got != want {
			t.Errorf("slot %d: expected status %q, got %q", i, want, got)
		}
	}
}
