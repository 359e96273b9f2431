package spanz

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Sentinel errors returned or raised by the tracing engine.
var (
	ErrTracingInvariant  = errors.New("tracing invariant violated")
	ErrRecorderNotClosed = errors.New("recorder not closed")
	ErrMissingTag        = errors.New("missing tag")
	ErrMissingLog        = errors.New("missing log")
	ErrMissingField      = errors.New("missing field")
	ErrWrongType         = errors.New("attr type mismatch")
	ErrParse             = errors.New("attr parse error")
	ErrInvalidSpanset    = errors.New("invalid spanset")
)

// ViolationError is the panic value raised when a caller breaks the
// span or context usage contract, for example by mutating a closed span
// or popping an empty context stack.
type ViolationError struct {
	Op      string
	Message string
	TraceID TraceID
	SpanID  SpanID
}

func (e *ViolationError) Error() string {
	if e.SpanID.IsValid() {
		return fmt.Sprintf("%s: %s (trace=%s span=%s)", e.Op, e.Message, e.TraceID, e.SpanID)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap lets errors.Is match ErrTracingInvariant on a recovered violation.
func (*ViolationError) Unwrap() error { return ErrTracingInvariant }

// violation logs the broken contract and panics with a *ViolationError.
func violation(logger *zap.Logger, metrics *Metrics, v *ViolationError) {
	metrics.incViolation(v.Op)
	if logger != nil {
		logger.Error("tracing contract violation",
			zap.String("op", v.Op),
			zap.String("trace_id", v.TraceID.String()),
			zap.String("span_id", v.SpanID.String()),
			zap.String("reason", v.Message),
		)
	}
	panic(v)
}

// invariantf builds a returned error wrapping ErrTracingInvariant.
func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTracingInvariant, fmt.Sprintf(format, args...))
}
