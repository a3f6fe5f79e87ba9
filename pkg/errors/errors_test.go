package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "missing fields", http.StatusBadRequest)

	if err.Code != CodeInvalidInput {
		t.Errorf("expected code %s, got %s", CodeInvalidInput, err.Code)
	}
	if err.Message != "missing fields" {
		t.Errorf("expected message 'missing fields', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"not found", NotFound("Booking"), http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "abc"), http.StatusNotFound},
		{"invalid input", InvalidInput("missing date"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("Unauthorized"), http.StatusUnauthorized},
		{"conflict", Conflict("slot already booked"), http.StatusConflict},
		{"internal", Internal("boom", errors.New("x")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.status {
				t.Errorf("StatusCode() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("already confirmed")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("AsAppError should return the same *AppError unchanged")
	}

	plain := errors.New("driver timeout")
	coerced := AsAppError(plain)
	if coerced.Code != CodeInternal {
		t.Errorf("expected plain errors to coerce to %s, got %s", CodeInternal, coerced.Code)
	}
	if coerced.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", coerced.HTTPStatus)
	}
	if !errors.Is(coerced, plain) {
		t.Errorf("coerced error should wrap the original")
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := InvalidInput("validation failed").WithDetails(map[string]any{
		"missing": []string{"clientEmail", "clientPhone"},
	})

	missing, ok := err.Details["missing"].([]string)
	if !ok || len(missing) != 2 {
		t.Errorf("expected missing field list in details, got %v", err.Details)
	}
}
