package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrUnknownProvider indicates the requested provider is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnavailable indicates the generation server could not be reached or
	// failed internally.
	ErrUnavailable = errors.New("generation service unavailable")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest indicates the server rejected the request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrDecode indicates the server's response could not be understood.
	ErrDecode = errors.New("malformed response")
)

// Error wraps provider errors with context.
// Err is the classified sentinel; Cause is the provider's own error.
type Error struct {
	Provider  string // Provider name ("ollama")
	Op        string // Operation that failed ("complete", "stream")
	Err       error  // Sentinel classification
	Cause     error  // Underlying provider error, may be nil
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Op
	if e.Provider != "" {
		msg = e.Provider + " " + e.Op
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", msg, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns both the sentinel and the cause for errors.Is/As support.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// NewError creates a new provider error.
func NewError(provider, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  provider,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// WithCause returns the error with its underlying cause attached.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// IsRetryable checks if an error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}
