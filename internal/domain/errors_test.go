package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrSessionNotFound,
			expected: "Session not found or expired",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	if got := appErr.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	if got := ErrNoResult.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("decode failed")
	wrapped := ErrInvalidImage.WithError(underlying)

	if wrapped == ErrInvalidImage {
		t.Fatal("WithError() must return a new value")
	}
	if wrapped.Code != ErrInvalidImage.Code || wrapped.StatusCode != ErrInvalidImage.StatusCode {
		t.Errorf("WithError() = %+v, want code/status copied", wrapped)
	}
	if ErrInvalidImage.Err != nil {
		t.Error("WithError() must not mutate the pre-declared error")
	}
	if !errors.Is(wrapped, underlying) {
		t.Error("errors.Is(wrapped, underlying) = false, want true")
	}
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same value", ErrMissingUsername, ErrMissingUsername, true},
		{"wrapped copy", ErrNoFrameAvailable.WithError(errors.New("x")), ErrNoFrameAvailable, true},
		{"fmt wrapped", fmt.Errorf("analyze: %w", ErrSessionNotFound), ErrSessionNotFound, true},
		{"different code", ErrMissingUsername, ErrNoFrameAvailable, false},
		{"plain error", errors.New("boom"), ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorTaxonomyStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{ErrMissingUsername, 422},
		{ErrNoFrameAvailable, 409},
		{ErrSessionNotFound, 404},
		{ErrRateLimitExceeded, 429},
		{ErrProviderUnavailable, 502},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if tt.err.StatusCode != tt.want {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.want)
			}
		})
	}
}
