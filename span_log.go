package spanz

import (
	"fmt"
	"time"
)

// SpanLog is a handle to one log entry of a span. Fields share the
// span's lock and cannot be added once the span is closed.
type SpanLog struct {
	span  *Span
	entry *logEntry
}

// Timestamp returns the time the entry was logged at.
func (l *SpanLog) Timestamp() time.Time { return l.entry.ts }

// Severity returns the entry's severity.
func (l *SpanLog) Severity() LogSeverity { return l.entry.severity }

// PutField stores value under key and returns l for chaining.
func (l *SpanLog) PutField(key AttrKey, value Value) *SpanLog {
	if !value.IsValid() {
		l.span.violate("PutField", fmt.Sprintf("invalid value for field %s", key))
		return l
	}
	l.span.mutate("PutField", func(*spanData) { l.entry.fields[key] = value })
	return l
}

// HasField reports whether the log carries a field under key.
func (l *SpanLog) HasField(key AttrKey) (ok bool) {
	l.span.read(func(*spanData) { _, ok = l.entry.fields[key] })
	return ok
}

// GetField returns the value under key, or an invalid Value if absent.
func (l *SpanLog) GetField(key AttrKey) (v Value) {
	l.span.read(func(*spanData) { v = l.entry.fields[key] })
	return v
}

// NumFields returns the number of fields on the log.
func (l *SpanLog) NumFields() (n int) {
	l.span.read(func(*spanData) { n = len(l.entry.fields) })
	return n
}

// PutFieldAttr stores a typed field.
func PutFieldAttr[T any](l *SpanLog, attr Attr[T], v T) *SpanLog {
	return l.PutField(attr.Key(), attr.Value(v))
}

// GetFieldAttr reads a typed field.
func GetFieldAttr[T any](l *SpanLog, attr Attr[T]) (T, error) {
	v := l.GetField(attr.Key())
	if !v.IsValid() {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrMissingField, attr.Key())
	}
	return attr.FromValue(v)
}
