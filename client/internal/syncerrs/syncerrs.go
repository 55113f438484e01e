// Package syncerrs classifies remote-gateway failures so the sync loop can
// pick a retry policy per error instead of treating every failure the same.
package syncerrs

import "fmt"

// Category determines how the sync loop reacts to a failure.
type Category int

const (
	// Recoverable errors are retried with exponential backoff.
	// Examples: 5xx responses, network timeouts, connection failures.
	Recoverable Category = iota

	// Irrecoverable errors fail the pass immediately without retry.
	// Examples: 401 Unauthorized, 403 Forbidden, 400 Bad Request.
	Irrecoverable
)

func (c Category) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps an error with categorization metadata.
type ClassifiedError struct {
	Category   Category
	StatusCode int    // HTTP status code (0 for non-HTTP errors)
	Body       string // Response body for debugging
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// IsIrrecoverable reports whether the error must not be retried.
func IsIrrecoverable(err error) bool {
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.Category == Irrecoverable
	}
	return false
}

// NewHTTPError creates a classified error for a non-success response.
// 4xx (except 408 and 429) is irrecoverable; everything else is worth a retry.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	category := Recoverable
	if statusCode >= 400 && statusCode < 500 && statusCode != 408 && statusCode != 429 {
		category = Irrecoverable
	}
	return &ClassifiedError{
		Category:   category,
		StatusCode: statusCode,
		Body:       body,
		Underlying: fmt.Errorf("%s failed: HTTP %d", operation, statusCode),
	}
}

// NewNetworkError creates a classified error for a transport-level failure.
// Network errors are always recoverable since they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}
