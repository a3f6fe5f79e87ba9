package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	availabilityerrors "gleam/internal/availability/errors"
	bookingserrors "gleam/internal/bookings/errors"
	"gleam/internal/bookings/validator"
	"gleam/pkg/config"
	mongotx "gleam/pkg/db/mongo"
	apperrors "gleam/pkg/errors"
	"gleam/pkg/kafka"
	"gleam/pkg/logger"
	"gleam/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Mock repositories for testing
type mockBookingRepository struct {
	createFunc             func(ctx context.Context, b *model.Booking) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Booking, error)
	findActiveByDateFunc   func(ctx context.Context, date string) ([]model.Booking, error)
	findActiveFromDateFunc func(ctx context.Context, date string) ([]*model.Booking, error)
	updateStatusFunc       func(ctx context.Context, id string, status model.BookingStatus) error
}

func (m *mockBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, b)
	}
	b.ID = "generated-id"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
}

func (m *mockBookingRepository) FindActiveByDate(ctx context.Context, date string) ([]model.Booking, error) {
	if m.findActiveByDateFunc != nil {
		return m.findActiveByDateFunc(ctx, date)
	}
	return []model.Booking{}, nil
}

func (m *mockBookingRepository) FindActiveFromDate(ctx context.Context, date string) ([]*model.Booking, error) {
	if m.findActiveFromDateFunc != nil {
		return m.findActiveFromDateFunc(ctx, date)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	deleted    []string
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockAvailabilitySource struct {
	findByDateFunc func(ctx context.Context, date string) (*model.DayAvailability, error)
}

func (m *mockAvailabilitySource) FindByDate(ctx context.Context, date string) (*model.DayAvailability, error) {
	if m.findByDateFunc != nil {
		return m.findByDateFunc(ctx, date)
	}
	return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, date)
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "info",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		ServiceName:  "test",
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
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

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		Date:        "2024-01-10",
		StartTime:   "08:00 AM",
		ClientName:  "Alex Client",
		ClientEmail: "alex@example.com",
		ClientPhone: "+15550001111",
		ServiceType: "Full detail",
	}
}

type serviceFixture struct {
	svc      *bookingService
	repo     *mockBookingRepository
	locks    *mockLockRepository
	avail    *mockAvailabilitySource
	producer *mockPublisher
}

func newFixture() *serviceFixture {
	cfg := testConfig()
	f := &serviceFixture{
		repo:  &mockBookingRepository{},
		locks: &mockLockRepository{},
		avail: &mockAvailabilitySource{
			findByDateFunc: func(ctx context.Context, date string) (*model.DayAvailability, error) {
				return morningGrid(date), nil
			},
		},
		producer: &mockPublisher{},
	}
	f.svc = &bookingService{
		repo:         f.repo,
		lockRepo:     f.locks,
		availability: f.avail,
		validator:    validator.NewBookingValidator(cfg.Log),
		events:       f.producer,
		cfg:          cfg,
		now:          func() time.Time { return time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC) },
	}
	return f
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.StatusCode()
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()

	var inserted *model.Booking
	f.repo.createFunc = func(ctx context.Context, b *model.Booking) error {
		b.ID = "abc123"
		inserted = b
		return nil
	}

	booking, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.ID != "abc123" {
		t.Errorf("expected generated id, got %q", booking.ID)
	}
	if inserted.Status != model.StatusPendingConfirmation {
		t.Errorf("expected pending_confirmation, got %s", inserted.Status)
	}
	if inserted.EndTime != "10:00 AM" {
		t.Errorf("expected end time 10:00 AM, got %s", inserted.EndTime)
	}
	if len(f.locks.deleted) != 1 || f.locks.deleted[0] != "booking_lock_2024-01-10_480" {
		t.Errorf("expected slot lock released, got %v", f.locks.deleted)
	}
	if len(f.producer.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.producer.published))
	}
	var event model.BookingEvent
	if err := f.producer.published[0].DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.EventType != model.EventBookingCreated || event.BookingID != "abc123" {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestCreate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.BookingRequest)
	}{
		{"no date", func(r *model.BookingRequest) { r.Date = "" }},
		{"no start time", func(r *model.BookingRequest) { r.StartTime = "" }},
		{"no name", func(r *model.BookingRequest) { r.ClientName = "" }},
		{"bad email", func(r *model.BookingRequest) { r.ClientEmail = "not-an-email" }},
		{"no phone", func(r *model.BookingRequest) { r.ClientPhone = "" }},
		{"no service type", func(r *model.BookingRequest) { r.ServiceType = "" }},
		{"24h start time", func(r *model.BookingRequest) { r.StartTime = "14:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			lockTaken := false
			f.locks.createFunc = func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
				lockTaken = true
				return lock, nil
			}

			req := validRequest()
			tt.mutate(req)

			_, err := f.svc.Create(context.Background(), req)
			if got := statusOf(t, err); got != 400 {
				t.Errorf("expected 400, got %d", got)
			}
			if lockTaken {
				t.Error("lock must not be taken on validation failure")
			}
		})
	}
}

func TestCreate_NoAvailabilityDocument(t *testing.T) {
	f := newFixture()
	f.avail.findByDateFunc = nil // default returns ErrNotFound

	_, err := f.svc.Create(context.Background(), validRequest())
	if got := statusOf(t, err); got != 404 {
		t.Errorf("expected 404, got %d", got)
	}
}

func TestCreate_BlockNotAdminAvailable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.DayAvailability)
	}{
		{"mark closed", func(d *model.DayAvailability) { d.Slots[2].Available = false }},
		{"mark missing", func(d *model.DayAvailability) { d.Slots = append(d.Slots[:2], d.Slots[3:]...) }},
		{"grid too short", func(d *model.DayAvailability) { d.Slots = d.Slots[:4] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			day := morningGrid("2024-01-10")
			tt.mutate(day)
			f.avail.findByDateFunc = func(ctx context.Context, date string) (*model.DayAvailability, error) {
				return day, nil
			}

			_, err := f.svc.Create(context.Background(), validRequest())
			if got := statusOf(t, err); got != 409 {
				t.Errorf("expected 409, got %d", got)
			}
		})
	}
}

func TestCreate_OverlapWithExistingBooking(t *testing.T) {
	f := newFixture()
	f.repo.findActiveByDateFunc = func(ctx context.Context, date string) ([]model.Booking, error) {
		return []model.Booking{{
			ID: "b1", Date: date, StartTime: "08:30 AM", EndTime: "10:30 AM",
			Status: model.StatusConfirmed,
		}}, nil
	}
	inserted := false
	f.repo.createFunc = func(ctx context.Context, b *model.Booking) error {
		inserted = true
		return nil
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	if got := statusOf(t, err); got != 409 {
		t.Errorf("expected 409, got %d", got)
	}
	if inserted {
		t.Error("no insert may happen on conflict")
	}
	if len(f.locks.deleted) != 1 {
		t.Errorf("lock must be released after a rejected admission, got %v", f.locks.deleted)
	}
}

func TestCreate_SlotLockHeld(t *testing.T) {
	f := newFixture()
	f.locks.createFunc = func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{
			{Code: 11000},
		}}
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	if got := statusOf(t, err); got != 409 {
		t.Errorf("expected 409 while lock held, got %d", got)
	}
}

func TestCreate_PublishFailureDoesNotFailAdmission(t *testing.T) {
	f := newFixture()
	f.producer.err = fmt.Errorf("broker unreachable")

	booking, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking == nil || booking.Status != model.StatusPendingConfirmation {
		t.Errorf("expected created booking, got %+v", booking)
	}
}

func TestConfirm_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		current    model.BookingStatus
		wantStatus int
	}{
		{"from pending", model.StatusPendingConfirmation, 0},
		{"already confirmed", model.StatusConfirmed, 409},
		{"already cancelled", model.StatusCancelled, 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
				return &model.Booking{ID: id, Status: tt.current}, nil
			}

			booking, err := f.svc.Confirm(context.Background(), "abc123")
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if booking.Status != model.StatusConfirmed {
					t.Errorf("expected confirmed, got %s", booking.Status)
				}
				if len(f.producer.published) != 1 {
					t.Errorf("expected confirmation event, got %d", len(f.producer.published))
				}
				return
			}
			if got := statusOf(t, err); got != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, got)
			}
		})
	}
}

func TestCancel_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		current    model.BookingStatus
		wantStatus int
	}{
		{"from pending", model.StatusPendingConfirmation, 0},
		{"from confirmed", model.StatusConfirmed, 0},
		{"already cancelled", model.StatusCancelled, 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
				return &model.Booking{ID: id, Status: tt.current}, nil
			}

			booking, err := f.svc.Cancel(context.Background(), "abc123")
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if booking.Status != model.StatusCancelled {
					t.Errorf("expected cancelled, got %s", booking.Status)
				}
				return
			}
			if got := statusOf(t, err); got != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, got)
			}
		})
	}
}

func TestCancel_MissingBooking(t *testing.T) {
	f := newFixture()
	// default findByID returns ErrNotFound
	_, err := f.svc.Cancel(context.Background(), "missing")
	if got := statusOf(t, err); got != 404 {
		t.Errorf("expected 404, got %d", got)
	}
}

func TestTransition_InvalidID(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	_, err := f.svc.Confirm(context.Background(), "not-a-hex-id")
	if got := statusOf(t, err); got != 400 {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestGetUpcoming_SortsByDateThenClockTime(t *testing.T) {
	f := newFixture()
	f.repo.findActiveFromDateFunc = func(ctx context.Context, date string) ([]*model.Booking, error) {
		if date != "2024-01-09" {
			t.Errorf("expected from-date 2024-01-09 via injected clock, got %s", date)
		}
		return []*model.Booking{
			{ID: "b1", Date: "2024-01-10", StartTime: "01:00 PM"},
			{ID: "b2", Date: "2024-01-10", StartTime: "08:00 AM"},
			{ID: "b3", Date: "2024-01-09", StartTime: "10:30 AM"},
		}, nil
	}

	bookings, err := f.svc.GetUpcoming(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"b3", "b2", "b1"}
	if len(bookings) != len(wantOrder) {
		t.Fatalf("expected %d bookings, got %d", len(wantOrder), len(bookings))
	}
	for i, want := range wantOrder {
		if bookings[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, bookings[i].ID)
		}
	}
}
