package generate

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrModelRequired is wrapped by the RequestError returned when no model is given.
var ErrModelRequired = errors.New("model is required")

// RequestError reports that the HTTP call could not be completed or returned
// a non-2xx status.
type RequestError struct {
	Op         string // "buffered", "single", "streaming"
	URL        string
	StatusCode int    // 0 when no response was received
	Body       string // server error message for non-2xx responses
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	prefix := "generate " + e.Op
	if e.URL != "" {
		prefix += " " + e.URL
	}
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s: status %d: %s", prefix, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: status %d", prefix, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure is likely transient: the server was
// unreachable, rate limited the call, or failed internally.
func (e *RequestError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return e.Err != nil && !errors.Is(e.Err, ErrModelRequired)
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= 500
	}
}

// DecodeError reports a line or body that is not a valid JSON object.
type DecodeError struct {
	Line int    // 1-based line of a streamed body; 0 for a non-streamed body
	Data []byte // offending input, truncated
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("decode line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("decode response body: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SchemaError reports a decoded object without an expected member.
type SchemaError struct {
	Field       string
	Line        int    // 0 when unknown
	ServerError string // the object's "error" member, if it had one
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("missing %q field", e.Field)
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.ServerError != "" {
		msg += ": server error: " + e.ServerError
	}
	return msg
}

// IsRequestError reports whether err is or wraps a *RequestError.
func IsRequestError(err error) bool {
	var target *RequestError
	return errors.As(err, &target)
}

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsSchemaError reports whether err is or wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

const maxErrorData = 512

func truncateData(data []byte) []byte {
	if len(data) > maxErrorData {
		data = data[:maxErrorData]
	}
	return append([]byte(nil), data...)
}
