package service

import (
	"context"
	"errors"
	"time"

	availabilityerrors "gleam/internal/availability/errors"
	"gleam/internal/availability/repository"
	"gleam/internal/availability/validator"
	"gleam/internal/scheduling"
	"gleam/pkg/config"
	apperrors "gleam/pkg/errors"
	"gleam/pkg/model"
	"gleam/pkg/sanitizer"
)

// BookingSource supplies the non-cancelled bookings of a given date.
// Satisfied by the bookings repository.
type BookingSource interface {
	FindActiveByDate(ctx context.Context, date string) ([]model.Booking, error)
}

type AvailabilityService interface {
	Upsert(ctx context.Context, day *model.DayAvailability) (bool, error)
	GetAll(ctx context.Context) ([]*model.DayAvailability, error)
	GetBookableDates(ctx context.Context) ([]*model.DayAvailability, error)
	GetBookableSlots(ctx context.Context, date string) ([]model.BookableSlot, error)
	GetAnnotated(ctx context.Context) ([]model.AnnotatedDayAvailability, error)
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	bookings  BookingSource
	validator *validator.AvailabilityValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	bookings BookingSource,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Upsert replaces the day's grid wholesale. Returns true when the date had
// no document before.
func (s *availabilityService) Upsert(ctx context.Context, day *model.DayAvailability) (bool, error) {
	day.Date = sanitizer.TrimAndNormalize(day.Date)
	day.DayName = sanitizer.TrimAndNormalize(day.DayName)
	for i := range day.Slots {
		day.Slots[i].Time = sanitizer.TrimAndNormalize(day.Slots[i].Time)
	}

	if err := s.validator.Validate(day); err != nil {
		s.cfg.Log.Warn("Availability validation failed", "date", day.Date, "error", err)
		return false, apperrors.InvalidInput("Availability validation failed").WithDetails(map[string]any{
			"error": err.Error(),
		})
	}

	created, err := s.repo.Upsert(ctx, day)
	if err != nil {
		s.cfg.Log.Error("Failed to upsert availability", "date", day.Date, "error", err)
		return false, apperrors.Internal("Failed to save availability", err)
	}

	s.cfg.Log.Info("Availability saved", "date", day.Date, "slots", len(day.Slots), "created", created)
	return created, nil
}

func (s *availabilityService) GetAll(ctx context.Context) ([]*model.DayAvailability, error) {
	days, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list availabilities", "error", err)
		return nil, apperrors.Internal("Failed to list availabilities", err)
	}
	return days, nil
}

// GetBookableDates returns upcoming days that still yield at least one
// derivable slot once existing bookings are accounted for.
func (s *availabilityService) GetBookableDates(ctx context.Context) ([]*model.DayAvailability, error) {
	today := s.today()
	days, err := s.repo.FindFromDate(ctx, today)
	if err != nil {
		s.cfg.Log.Error("Failed to list upcoming availabilities", "error", err)
		return nil, apperrors.Internal("Failed to list bookable dates", err)
	}

	result := make([]*model.DayAvailability, 0, len(days))
	for _, day := range days {
		if !anyAvailable(day.Slots) {
			continue
		}
		slots, err := s.deriveForDate(ctx, day)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			result = append(result, day)
		}
	}
	return result, nil
}

// GetBookableSlots derives the offerable start times for one date. A date
// the admin never configured yields an empty list, not an error.
func (s *availabilityService) GetBookableSlots(ctx context.Context, date string) ([]model.BookableSlot, error) {
	day, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return []model.BookableSlot{}, nil
		}
		s.cfg.Log.Error("Failed to load availability", "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load availability", err)
	}
	return s.deriveForDate(ctx, day)
}

func (s *availabilityService) deriveForDate(ctx context.Context, day *model.DayAvailability) ([]model.BookableSlot, error) {
	bookings, err := s.bookings.FindActiveByDate(ctx, day.Date)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for derivation", "date", day.Date, "error", err)
		return nil, apperrors.Internal("Failed to load bookings", err)
	}

	slots, err := scheduling.DeriveBookableSlots(day.Slots, bookings)
	if err != nil {
		s.cfg.Log.Error("Slot derivation failed", "date", day.Date, "error", err)
		return nil, apperrors.Internal("Slot derivation failed", err)
	}
	return slots, nil
}

// GetAnnotated overlays each upcoming half-hour mark with the status of
// whichever booking occupies it, for the admin dashboard.
func (s *availabilityService) GetAnnotated(ctx context.Context) ([]model.AnnotatedDayAvailability, error) {
	days, err := s.repo.FindFromDate(ctx, s.today())
	if err != nil {
		s.cfg.Log.Error("Failed to list upcoming availabilities", "error", err)
		return nil, apperrors.Internal("Failed to list availabilities", err)
	}

	result := make([]model.AnnotatedDayAvailability, 0, len(days))
	for _, day := range days {
		bookings, err := s.bookings.FindActiveByDate(ctx, day.Date)
		if err != nil {
			s.cfg.Log.Error("Failed to load bookings for annotation", "date", day.Date, "error", err)
			return nil, apperrors.Internal("Failed to load bookings", err)
		}

		annotated := model.AnnotatedDayAvailability{
			Date:    day.Date,
			DayName: day.DayName,
			Slots:   make([]model.AnnotatedSlot, 0, len(day.Slots)),
		}
		for _, slot := range day.Slots {
			status, booked, err := scheduling.SlotStatus(slot.Time, bookings)
			if err != nil {
				s.cfg.Log.Error("Slot status lookup failed", "date", day.Date, "slot", slot.Time, "error", err)
				return nil, apperrors.Internal("Slot status lookup failed", err)
			}
			entry := model.AnnotatedSlot{TimeSlot: slot}
			if booked {
				entry.BookingStatus = status
			}
			annotated.Slots = append(annotated.Slots, entry)
		}
		result = append(result, annotated)
	}
	return result, nil
}

func anyAvailable(slots []model.TimeSlot) bool {
	for i := range slots {
		if slots[i].Available {
			return true
		}
	}
	return false
}

func (s *availabilityService) today() string {
	return s.now().Format("2006-01-02")
}
