package spanz

import (
	"errors"
	"fmt"
)

// StatusCarrier is implemented by errors that expose an error category
// and numeric code. Span.LogStatus records both as log fields.
type StatusCarrier interface {
	error
	ErrorCategory() string
	ErrorCode() int64
}

// Status is a categorized failure value. A nil *Status is the ok status.
type Status struct {
	Category string
	Code     int64
	Message  string
	Cause    error
}

var _ StatusCarrier = (*Status)(nil)

// NewStatus returns a failed status.
func NewStatus(category string, code int64, message string) *Status {
	return &Status{Category: category, Code: code, Message: message}
}

// Newf returns a failed status with a formatted message.
func Newf(category string, code int64, format string, args ...any) *Status {
	return NewStatus(category, code, fmt.Sprintf(format, args...))
}

func (s *Status) Error() string {
	if s == nil {
		return "<ok>"
	}
	if s.Cause != nil {
		return fmt.Sprintf("%s(%d): %s: %v", s.Category, s.Code, s.Message, s.Cause)
	}
	return fmt.Sprintf("%s(%d): %s", s.Category, s.Code, s.Message)
}

func (s *Status) Unwrap() error { return s.Cause }

// ErrorCategory returns the status namespace.
func (s *Status) ErrorCategory() string { return s.Category }

// ErrorCode returns the status code.
func (s *Status) ErrorCode() int64 { return s.Code }

// statusFields extracts category, code and message from err.
// Errors that carry no category report an empty category.
func statusFields(err error) (category string, code int64, message string) {
	var carrier StatusCarrier
	if errors.As(err, &carrier) {
		category = carrier.ErrorCategory()
		code = carrier.ErrorCode()
		var st *Status
		if errors.As(err, &st) && st != nil {
			return category, code, st.Message
		}
	}
	return category, code, err.Error()
}

// isOK reports whether err is the ok status, including a nil *Status
// stored in an error interface.
func isOK(err error) bool {
	if err == nil {
		return true
	}
	st, ok := err.(*Status)
	return ok && st == nil
}
