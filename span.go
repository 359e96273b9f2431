package spanz

import (
	"fmt"
	"runtime"
	"time"

	"github.com/zoobzio/clockz"
)

// Span is the handle application code holds for one span record.
// Safe for concurrent use by multiple goroutines.
//
// Mutating a closed span is a contract violation and panics with a
// *ViolationError. When the last reference to an open span is dropped,
// the span is closed on the caller's behalf.
type Span struct {
	rec      *spanRecord
	recorder *Recorder
}

// spanCleanup is the state needed to close an abandoned record.
type spanCleanup struct {
	rec   *spanRecord
	clock clockz.Clock
}

func newSpan(r *Recorder, rec *spanRecord) *Span {
	s := &Span{rec: rec, recorder: r}
	runtime.AddCleanup(s, func(c spanCleanup) {
		c.rec.mu.Lock()
		c.rec.closeLocked(c.clock.Now())
		c.rec.mu.Unlock()
	}, spanCleanup{rec: rec, clock: r.tracer.clock})
	return s
}

// TraceID returns the trace the span belongs to.
func (s *Span) TraceID() TraceID { return s.recorder.traceID }

// SpanID returns the span's id.
func (s *Span) SpanID() SpanID { return s.rec.id }

// ParentID returns the parent's id, zero for a root span.
func (s *Span) ParentID() SpanID { return s.rec.parentID }

// Index returns the span's position in its trace.
func (s *Span) Index() uint32 { return s.rec.index }

// Recorder returns the recorder that owns the span.
func (s *Span) Recorder() *Recorder { return s.recorder }

func (s *Span) now() time.Time { return s.recorder.tracer.now() }

func (s *Span) violate(op, msg string) {
	violation(s.recorder.tracer.logger, s.recorder.tracer.metrics, &ViolationError{
		Op:      op,
		Message: msg,
		TraceID: s.recorder.traceID,
		SpanID:  s.rec.id,
	})
}

// mutate runs fn under the record lock, raising a violation if the span
// is already complete. The lock is released before panicking.
func (s *Span) mutate(op string, fn func(d *spanData)) {
	s.rec.mu.Lock()
	if s.rec.complete {
		s.rec.mu.Unlock()
		s.violate(op, "span is closed")
		return
	}
	fn(&s.rec.spanData)
	s.rec.mu.Unlock()
}

func (s *Span) read(fn func(d *spanData)) {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	fn(&s.rec.spanData)
}

// SetOperationName sets the span name.
func (s *Span) SetOperationName(name string) {
	s.mutate("SetOperationName", func(d *spanData) { d.operationName = name })
}

// OperationName returns the span name.
func (s *Span) OperationName() (name string) {
	s.read(func(d *spanData) { name = d.operationName })
	return name
}

// SetPropagation sets whether a failure of this span counts against its parent.
func (s *Span) SetPropagation(p FailurePropagation) {
	s.mutate("SetPropagation", func(d *spanData) { d.propagation = p })
}

// Propagation returns the span's failure propagation mode.
func (s *Span) Propagation() (p FailurePropagation) {
	s.read(func(d *spanData) { p = d.propagation })
	return p
}

// SetCollection sets how failures of child spans fail this span.
func (s *Span) SetCollection(c FailureCollection) {
	s.mutate("SetCollection", func(d *spanData) { d.collection = c })
}

// Collection returns the span's failure collection mode.
func (s *Span) Collection() (c FailureCollection) {
	s.read(func(d *spanData) { c = d.collection })
	return c
}

// SetFailed sets or clears the failure flag.
func (s *Span) SetFailed(failed bool) {
	s.mutate("SetFailed", func(d *spanData) { d.failed = failed })
}

// IsFailed reports the failure flag as recorded so far. Propagation from
// children is applied only when the trace is encoded.
func (s *Span) IsFailed() (failed bool) {
	s.read(func(d *spanData) { failed = d.failed })
	return failed
}

// SetStartTime moves the start time earlier; a later time is ignored.
func (s *Span) SetStartTime(t time.Time) {
	ms := t.UnixMilli()
	s.mutate("SetStartTime", func(d *spanData) {
		if d.startMillis == unsetTime || ms < d.startMillis {
			d.startMillis = ms
		}
	})
}

// StartTime returns the start time, or the zero time if unset.
func (s *Span) StartTime() (t time.Time) {
	s.read(func(d *spanData) { t = millisToTime(d.startMillis) })
	return t
}

// SetEndTime moves the end time later; an earlier time is ignored.
func (s *Span) SetEndTime(t time.Time) {
	ms := t.UnixMilli()
	s.mutate("SetEndTime", func(d *spanData) {
		if d.endMillis == unsetTime || ms > d.endMillis {
			d.endMillis = ms
		}
	})
}

// EndTime returns the end time, or the zero time if unset.
func (s *Span) EndTime() (t time.Time) {
	s.read(func(d *spanData) { t = millisToTime(d.endMillis) })
	return t
}

// AddToActiveDuration adds dur to the accumulated active time.
func (s *Span) AddToActiveDuration(dur time.Duration) {
	s.mutate("AddToActiveDuration", func(d *spanData) { d.activeDuration += dur })
}

// SetActiveDuration overwrites the accumulated active time.
func (s *Span) SetActiveDuration(dur time.Duration) {
	s.mutate("SetActiveDuration", func(d *spanData) { d.activeDuration = dur })
}

// ActiveDuration returns the accumulated active time. A running
// activation period is not included until Deactivate.
func (s *Span) ActiveDuration() (dur time.Duration) {
	s.read(func(d *spanData) { dur = d.activeDuration })
	return dur
}

// Activate starts an activation period. The first activation also sets
// the start time. Calling it on an active or closed span does nothing.
func (s *Span) Activate() {
	now := s.now()
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	if !s.rec.complete {
		s.rec.activateLocked(now)
	}
}

// Deactivate ends the current activation period. Calling it on an
// inactive or closed span does nothing.
func (s *Span) Deactivate() {
	now := s.now()
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	if !s.rec.complete {
		s.rec.deactivateLocked(now)
	}
}

// IsActive reports whether an activation period is running.
func (s *Span) IsActive() (active bool) {
	s.read(func(d *spanData) { active = d.isActive() })
	return active
}

// PutTag stores value under key, replacing any previous value.
func (s *Span) PutTag(key AttrKey, value Value) {
	if !value.IsValid() {
		s.violate("PutTag", fmt.Sprintf("invalid value for tag %s", key))
		return
	}
	s.mutate("PutTag", func(d *spanData) { d.tags[key] = value })
}

// HasTag reports whether a tag is stored under key.
func (s *Span) HasTag(key AttrKey) (ok bool) {
	s.read(func(d *spanData) { _, ok = d.tags[key] })
	return ok
}

// GetTag returns the value under key, or an invalid Value if absent.
func (s *Span) GetTag(key AttrKey) (v Value) {
	s.read(func(d *spanData) { v = d.tags[key] })
	return v
}

// NumTags returns the number of tags on the span.
func (s *Span) NumTags() (n int) {
	s.read(func(d *spanData) { n = len(d.tags) })
	return n
}

// AppendLog adds a log entry at ts. Error and Fatal severities mark the
// span failed.
func (s *Span) AppendLog(ts time.Time, severity LogSeverity) *SpanLog {
	var entry *logEntry
	s.mutate("AppendLog", func(*spanData) { entry = s.rec.appendLogLocked(ts, severity) })
	return &SpanLog{span: s, entry: entry}
}

// NumLogs returns the number of log entries on the span.
func (s *Span) NumLogs() (n int) {
	s.read(func(d *spanData) { n = len(d.logs) })
	return n
}

// Log returns the i-th log entry, or nil if out of range.
func (s *Span) Log(i int) *SpanLog {
	var entry *logEntry
	s.read(func(d *spanData) {
		if i >= 0 && i < len(d.logs) {
			entry = d.logs[i]
		}
	})
	if entry == nil {
		return nil
	}
	return &SpanLog{span: s, entry: entry}
}

// LogMessage appends a log carrying message. An empty message adds no field.
func (s *Span) LogMessage(message string, severity LogSeverity) *SpanLog {
	return s.LogMessageAt(message, s.now(), severity)
}

// LogMessageAt is LogMessage with an explicit timestamp.
func (s *Span) LogMessageAt(message string, ts time.Time, severity LogSeverity) *SpanLog {
	var entry *logEntry
	s.mutate("LogMessage", func(*spanData) {
		entry = s.rec.appendLogLocked(ts, severity)
		if message != "" {
			entry.fields[OpentracingMessage.Key()] = OpentracingMessage.Value(message)
		}
	})
	return &SpanLog{span: s, entry: entry}
}

// LogError appends an Error log with a formatted message and marks the span failed.
func (s *Span) LogError(format string, args ...any) *SpanLog {
	return s.LogMessage(fmt.Sprintf(format, args...), SeverityError)
}

// LogWarn appends a Warn log with a formatted message.
func (s *Span) LogWarn(format string, args ...any) *SpanLog {
	return s.LogMessage(fmt.Sprintf(format, args...), SeverityWarn)
}

// LogInfo appends an Info log with a formatted message.
func (s *Span) LogInfo(format string, args ...any) *SpanLog {
	return s.LogMessage(fmt.Sprintf(format, args...), SeverityInfo)
}

// LogStatus appends a log describing err. Errors that implement
// StatusCarrier with a non-empty category also record the category and
// code.
func (s *Span) LogStatus(err error, severity LogSeverity) *SpanLog {
	return s.LogStatusAt(err, s.now(), severity)
}

// LogStatusAt is LogStatus with an explicit timestamp.
func (s *Span) LogStatusAt(err error, ts time.Time, severity LogSeverity) *SpanLog {
	var category, message string
	var code int64
	if !isOK(err) {
		category, code, message = statusFields(err)
	}
	var entry *logEntry
	s.mutate("LogStatus", func(*spanData) {
		entry = s.rec.appendLogLocked(ts, severity)
		putStatusFields(entry.fields, category, code, message)
	})
	return &SpanLog{span: s, entry: entry}
}

// CheckStatus logs err when it is a failure and returns it unchanged.
func (s *Span) CheckStatus(err error, severity LogSeverity) error {
	if !isOK(err) {
		s.LogStatus(err, severity)
	}
	return err
}

// CheckResult logs err when it is a failure and returns value and err unchanged.
func CheckResult[T any](s *Span, value T, err error, severity LogSeverity) (T, error) {
	return value, s.CheckStatus(err, severity)
}

// MakeSpan creates a child span under s.
func (s *Span) MakeSpan(propagation FailurePropagation, collection FailureCollection) *Span {
	s.rec.mu.Lock()
	complete := s.rec.complete
	s.rec.mu.Unlock()
	if complete {
		s.violate("MakeSpan", "span is closed")
	}
	return s.recorder.makeChild(s.rec, propagation, collection)
}

// MakeChild creates a child that neither propagates nor collects failures.
func (s *Span) MakeChild() *Span {
	return s.MakeSpan(NoPropagation, IgnoresPropagation)
}

// IsOpen reports whether the span has not been closed.
func (s *Span) IsOpen() (open bool) {
	s.read(func(d *spanData) { open = !d.complete })
	return open
}

// Close deactivates the span, stamps its end time and completes it.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Span) Close() {
	now := s.now()
	s.rec.mu.Lock()
	closed := s.rec.closeLocked(now)
	s.rec.mu.Unlock()
	if closed {
		s.recorder.tracer.metrics.incSpanClosed()
	}
}

// CloseWithStatus marks the span failed, tags it with an error event,
// logs err at severity and closes it. It returns err unchanged.
func (s *Span) CloseWithStatus(err error, severity LogSeverity) error {
	category, code, message := "", int64(0), ""
	if !isOK(err) {
		category, code, message = statusFields(err)
	}
	now := s.now()
	s.mutate("CloseWithStatus", func(d *spanData) {
		d.failed = true
		d.tags[OpentracingEvent.Key()] = OpentracingEvent.Value("error")
		entry := s.rec.appendLogLocked(now, severity)
		putStatusFields(entry.fields, category, code, message)
		s.rec.closeLocked(now)
	})
	s.recorder.tracer.metrics.incSpanClosed()
	return err
}

func putStatusFields(fields AttrMap, category string, code int64, message string) {
	if category != "" {
		fields[ErrorCategoryName.Key()] = ErrorCategoryName.Value(category)
		fields[ErrorCode.Key()] = ErrorCode.Value(code)
	}
	if message != "" {
		fields[OpentracingMessage.Key()] = OpentracingMessage.Value(message)
	}
}

// PutTagAttr stores a typed tag.
func PutTagAttr[T any](s *Span, attr Attr[T], v T) {
	s.PutTag(attr.Key(), attr.Value(v))
}

// GetTagAttr reads a typed tag.
func GetTagAttr[T any](s *Span, attr Attr[T]) (T, error) {
	v := s.GetTag(attr.Key())
	if !v.IsValid() {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrMissingTag, attr.Key())
	}
	return attr.FromValue(v)
}
