package validator

import (
	"errors"
	"fmt"
	"strings"

	availabilityvalidator "gleam/internal/availability/validator"
	"gleam/pkg/logger"
	"gleam/pkg/model"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock12", availabilityvalidator.ValidateClock12); err != nil {
		log.Fatal("Failed to register 'clock12' validator", "error", err)
	}
	if err := v.RegisterValidation("dateiso", availabilityvalidator.ValidateDateISO); err != nil {
		log.Fatal("Failed to register 'dateiso' validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	return v.translate(v.validate.Struct(req))
}

func (v *BookingValidator) ValidateAction(action *model.BookingAction) error {
	return v.translate(v.validate.Struct(action))
}

func (v *BookingValidator) translate(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var messages []string
	for _, fe := range validationErrs {
		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "clock12":
			message = fmt.Sprintf("%s must be a 12-hour time like \"08:30 AM\"", fe.Field())
		case "dateiso":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD form", fe.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
		default:
			message = fe.Error()
		}
		messages = append(messages, message)
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}
