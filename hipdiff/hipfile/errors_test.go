package hipfile

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *FormatError
		wantStr string
	}{
		{
			name: "basic error",
			err: &FormatError{
				Code:    "TEST_ERROR",
				Message: "test message",
			},
			wantStr: "[TEST_ERROR] test message",
		},
		{
			name: "error with cause",
			err: &FormatError{
				Code:    "TEST_ERROR",
				Message: "test message",
				Cause:   errors.New("underlying error"),
			},
			wantStr: "[TEST_ERROR] test message: underlying error",
		},
		{
			name: "error with details",
			err: &FormatError{
				Code:    "TEST_ERROR",
				Message: "test message",
				Details: map[string]interface{}{"tag": "AHDR"},
			},
			wantStr: "details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.Contains(got, tt.wantStr) {
				t.Errorf("Error() = %q, want to contain %q", got, tt.wantStr)
			}
		})
	}
}

func TestFormatError_WithCause(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrTruncatedRead.WithCause(cause)

	if err.Cause != cause {
		t.Errorf("WithCause() cause = %v, want %v", err.Cause, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("WithCause() should allow errors.Is to work")
	}
}

func TestFormatError_WithDetail(t *testing.T) {
	err := ErrStructural.WithDetail("tag", "PACK").WithDetail("offset", int64(42))

	if err.Details["tag"] != "PACK" {
		t.Errorf("WithDetail() tag = %v, want PACK", err.Details["tag"])
	}
	if err.Details["offset"] != int64(42) {
		t.Errorf("WithDetail() offset = %v, want 42", err.Details["offset"])
	}

	// The sentinel must stay untouched.
	if len(ErrStructural.Details) != 0 {
		t.Errorf("sentinel details mutated: %v", ErrStructural.Details)
	}
}

func TestFormatError_WithMessage(t *testing.T) {
	err := ErrStructural.WithMessage("custom message")

	if err.Message != "custom message" {
		t.Errorf("WithMessage() message = %q, want 'custom message'", err.Message)
	}
	if err.Code != "STRUCTURAL" {
		t.Errorf("WithMessage() code = %q, want STRUCTURAL", err.Code)
	}
}

func TestIsFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "FormatError",
			err:  ErrCountMismatch,
			want: true,
		},
		{
			name: "FormatError with cause",
			err:  ErrTruncatedRead.WithCause(errors.New("test")),
			want: true,
		},
		{
			name: "standard error",
			err:  errors.New("test"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFormatError(tt.err); got != tt.want {
				t.Errorf("IsFormatError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "FormatError",
			err:  ErrBounds,
			want: "BOUNDS",
		},
		{
			name: "FormatError with modifications",
			err:  ErrDepthOverflow.WithDetail("depth", 8),
			want: "DEPTH_OVERFLOW",
		},
		{
			name: "standard error",
			err:  errors.New("test"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.want {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}
