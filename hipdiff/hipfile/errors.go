package hipfile

import "fmt"

// Error values for HIP load failures. All of them abort the enclosing
// load; no partial Archive is ever returned.
var (
	// ErrStructural is returned for malformed chunk structure: a missing
	// identification chunk, a child chunk extending past its parent, or a
	// declared length inconsistent with the stream size.
	ErrStructural = &FormatError{Code: "STRUCTURAL", Message: "malformed chunk structure"}

	// ErrDepthOverflow is returned when chunk nesting exceeds MaxStackDepth.
	ErrDepthOverflow = &FormatError{Code: "DEPTH_OVERFLOW", Message: "chunk nesting too deep"}

	// ErrTruncatedRead is returned when the stream ends in the middle of a
	// field.
	ErrTruncatedRead = &FormatError{Code: "TRUNCATED_READ", Message: "stream ended mid-field"}

	// ErrCountMismatch is returned when a header-declared record count
	// disagrees with the number of records actually parsed.
	ErrCountMismatch = &FormatError{Code: "COUNT_MISMATCH", Message: "declared count disagrees with parsed records"}

	// ErrBounds is returned when an asset's declared offset/size falls
	// outside the packed data buffer.
	ErrBounds = &FormatError{Code: "BOUNDS", Message: "asset data outside packed buffer"}
)

// FormatError represents a structured HIP load failure.
type FormatError struct {
	Code    string                 // Error code for programmatic handling
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context (chunk tag, depth, offset)
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *FormatError) Unwrap() error {
	return e.Cause
}

// WithCause adds a cause to the error
func (e *FormatError) WithCause(cause error) *FormatError {
	return &FormatError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *FormatError) WithDetail(key string, value interface{}) *FormatError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &FormatError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *FormatError) WithMessage(message string) *FormatError {
	return &FormatError{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// IsFormatError checks if an error is a FormatError
func IsFormatError(err error) bool {
	_, ok := err.(*FormatError)
	return ok
}

// GetErrorCode extracts the error code from a FormatError
func GetErrorCode(err error) string {
	if formatErr, ok := err.(*FormatError); ok {
		return formatErr.Code
	}
	return ""
}
