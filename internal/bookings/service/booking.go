package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	availabilityerrors "gleam/internal/availability/errors"
	bookingserrors "gleam/internal/bookings/errors"
	"gleam/internal/bookings/repository"
	"gleam/internal/bookings/validator"
	"gleam/internal/scheduling"
	"gleam/pkg/clock"
	"gleam/pkg/config"
	apperrors "gleam/pkg/errors"
	"gleam/pkg/kafka"
	"gleam/pkg/model"
	"gleam/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

const lockTTL = 10 * time.Second

// AvailabilitySource supplies the admin grid of a given date. Satisfied by
// the availability repository.
type AvailabilitySource interface {
	FindByDate(ctx context.Context, date string) (*model.DayAvailability, error)
}

// EventPublisher publishes booking lifecycle events. May be nil when the
// event pipeline is disabled.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetUpcoming(ctx context.Context) ([]*model.Booking, error)
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	lockRepo     repository.BookingLockRepository
	availability AvailabilitySource
	validator    *validator.BookingValidator
	events       EventPublisher
	cfg          *config.Config
	now          func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	availability AvailabilitySource,
	validator *validator.BookingValidator,
	events EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		lockRepo:     lockRepo,
		availability: availability,
		validator:    validator,
		events:       events,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Create admits a client booking. Checks run in a fixed order: input shape,
// availability document existence, admin-opened block, overlap against
// existing bookings. The last two repeat inside a transaction under an
// advisory slot lock, so two concurrent requests for overlapping windows
// cannot both insert. The insert is the final step; nothing is written when
// any check fails.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "date", req.Date, "error", err)
		return nil, apperrors.InvalidInput("Booking validation failed").WithDetails(map[string]any{
			"error": err.Error(),
		})
	}

	day, err := s.availability.FindByDate(ctx, req.Date)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Availability for requested date")
		}
		return nil, apperrors.Internal("Failed to load availability", err)
	}

	open, err := scheduling.HasOpenBlock(day.Slots, req.StartTime)
	if err != nil {
		return nil, apperrors.Internal("Failed to check availability block", err)
	}
	if !open {
		return nil, apperrors.Conflict("Requested time is not available")
	}

	lockID, err := s.acquireSlotLock(ctx, req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	endTime, err := scheduling.ServiceEnd(req.StartTime)
	if err != nil {
		return nil, apperrors.Internal("Failed to compute booking end time", err)
	}

	booking := &model.Booking{
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     endTime,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		ServiceType: req.ServiceType,
		Notes:       req.Notes,
		Status:      model.StatusPendingConfirmation,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Fresh reads under the lock: both admission rules re-run against
		// current data before the insert.
		day, err := s.availability.FindByDate(sessCtx, req.Date)
		if err != nil {
			if errors.Is(err, availabilityerrors.ErrNotFound) {
				return apperrors.NotFound("Availability for requested date")
			}
			return apperrors.Internal("Failed to load availability", err)
		}
		open, err := scheduling.HasOpenBlock(day.Slots, req.StartTime)
		if err != nil {
			return apperrors.Internal("Failed to check availability block", err)
		}
		if !open {
			return apperrors.Conflict("Requested time is not available")
		}

		existing, err := s.repo.FindActiveByDate(sessCtx, req.Date)
		if err != nil {
			return apperrors.Internal("Failed to load existing bookings", err)
		}
		conflict, err := scheduling.ConflictsWithBookings(req.StartTime, existing)
		if err != nil {
			return apperrors.Internal("Failed to check booking conflicts", err)
		}
		if conflict {
			return apperrors.Conflict("Requested time conflicts with an existing booking")
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "date", req.Date, "start_time", req.StartTime, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"date", booking.Date,
		"start_time", booking.StartTime,
	)
	s.publishEvent(ctx, model.EventBookingCreated, booking)
	return booking, nil
}

// GetUpcoming lists non-cancelled bookings from today on, ordered by date
// then start time.
func (s *bookingService) GetUpcoming(ctx context.Context) ([]*model.Booking, error) {
	today := s.now().Format("2006-01-02")
	bookings, err := s.repo.FindActiveFromDate(ctx, today)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	// 12-hour strings do not sort lexicographically, so order within each
	// date here.
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		mi, errI := clock.ToMinutes(bookings[i].StartTime)
		mj, errJ := clock.ToMinutes(bookings[j].StartTime)
		if errI != nil || errJ != nil {
			return false
		}
		return mi < mj
	})
	return bookings, nil
}

// Confirm moves a booking from pending_confirmation to confirmed. Any other
// source state is a conflict; confirmation is not idempotent.
func (s *bookingService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.StatusConfirmed, func(current model.BookingStatus) error {
		if current != model.StatusPendingConfirmation {
			return apperrors.Conflict(fmt.Sprintf("Cannot confirm booking in status %q", current))
		}
		return nil
	}, model.EventBookingConfirmed)
}

// Cancel moves a pending or confirmed booking to cancelled. The record is
// retained; cancelling twice is a conflict.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.StatusCancelled, func(current model.BookingStatus) error {
		if current == model.StatusCancelled {
			return apperrors.Conflict("Booking is already cancelled")
		}
		return nil
	}, model.EventBookingCancelled)
}

func (s *bookingService) transition(
	ctx context.Context,
	id string,
	target model.BookingStatus,
	allowed func(model.BookingStatus) error,
	eventType string,
) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking ID format")
			}
			return apperrors.Internal("Failed to load booking", err)
		}

		if err := allowed(existing.Status); err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(sessCtx, id, target); err != nil {
			return apperrors.Internal("Failed to update booking status", err)
		}
		existing.Status = target
		booking = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking status changed", "id", id, "status", target)
	s.publishEvent(ctx, eventType, booking)
	return booking, nil
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.StartTime = sanitizer.TrimAndNormalize(req.StartTime)
	req.ClientName = sanitizer.NormalizeName(req.ClientName)
	req.ClientEmail = sanitizer.NormalizeEmail(req.ClientEmail)
	req.ClientPhone = sanitizer.NormalizePhone(req.ClientPhone)
	req.ServiceType = sanitizer.TrimAndNormalize(req.ServiceType)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
}

// acquireSlotLock inserts the advisory lock document for the slot. A
// duplicate key means another admission for the same slot holds it.
func (s *bookingService) acquireSlotLock(ctx context.Context, date, startTime string) (string, error) {
	startMinutes, err := clock.ToMinutes(startTime)
	if err != nil {
		return "", apperrors.Internal("Failed to compute lock key", err)
	}
	lockID := fmt.Sprintf("booking_lock_%s_%d", date, startMinutes)

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(lockTTL),
	}
	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another booking for this slot is in progress")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}
	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

// publishEvent emits a lifecycle event. Best-effort: a publish failure is
// logged, never surfaced to the caller.
func (s *bookingService) publishEvent(ctx context.Context, eventType string, b *model.Booking) {
	if s.events == nil || b == nil {
		return
	}

	event := model.BookingEvent{
		EventType:   eventType,
		BookingID:   b.ID,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		ClientName:  b.ClientName,
		ClientEmail: b.ClientEmail,
		ServiceType: b.ServiceType,
		OccurredAt:  s.now(),
	}

	msg, err := kafka.NewMessage().
		WithKey(b.ID).
		WithEventType(eventType).
		WithSource(s.cfg.ServiceName).
		WithValue(event).
		Build()
	if err != nil {
		s.cfg.Log.Warn("Failed to build booking event", "id", b.ID, "event", eventType, "error", err)
		return
	}

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "id", b.ID, "event", eventType, "error", err)
	}
}
