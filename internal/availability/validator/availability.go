package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gleam/pkg/clock"
	"gleam/pkg/logger"
	"gleam/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AvailabilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock12", ValidateClock12); err != nil {
		log.Fatal("Failed to register 'clock12' validator", "error", err)
	}
	if err := v.RegisterValidation("dateiso", ValidateDateISO); err != nil {
		log.Fatal("Failed to register 'dateiso' validator", "error", err)
	}

	return &AvailabilityValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateClock12 accepts 12-hour wall-clock values like "08:30 AM".
func ValidateClock12(fl validator.FieldLevel) bool {
	return clock.Valid(strings.TrimSpace(fl.Field().String()))
}

// ValidateDateISO accepts calendar dates in YYYY-MM-DD form.
func ValidateDateISO(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if len(value) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func (v *AvailabilityValidator) Validate(day *model.DayAvailability) error {
	if err := v.validate.Struct(day); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// Slot IDs must be unique within the day so the admin grid can
	// address each mark.
	seen := make(map[string]struct{}, len(day.Slots))
	for _, slot := range day.Slots {
		if _, dup := seen[slot.ID]; dup {
			return ValidationErrors{{
				Field:   "slots",
				Message: fmt.Sprintf("duplicate slot id %q", slot.ID),
			}}
		}
		seen[slot.ID] = struct{}{}
	}

	return nil
}

func (v *AvailabilityValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "clock12":
			message = fmt.Sprintf("%s must be a 12-hour time like \"08:30 AM\"", err.Field())
		case "dateiso":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD form", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
