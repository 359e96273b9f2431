package spanz

import (
	"fmt"
	"time"
)

// SpanWalker navigates one span of a spanset. The zero SpanWalker is
// invalid; every accessor on an invalid walker returns a zero value.
type SpanWalker struct {
	r     *SpansetReader
	index uint32
}

// IsValid reports whether the walker points at a span.
func (w SpanWalker) IsValid() bool {
	return w.r.IsValid() && w.index != InvalidIndex && int(w.index) < w.r.NumSpans()
}

// Index returns the span's position in the spanset.
func (w SpanWalker) Index() uint32 {
	if !w.IsValid() {
		return InvalidIndex
	}
	return w.index
}

// ID returns the span id.
func (w SpanWalker) ID() SpanID {
	if !w.IsValid() {
		return 0
	}
	return SpanID(w.r.span(w.index).SpanID())
}

// OperationName returns the span name.
func (w SpanWalker) OperationName() string {
	if !w.IsValid() {
		return ""
	}
	return string(w.r.span(w.index).OperationName())
}

// StartTime returns the first activation time, or the zero time if the
// span never started.
func (w SpanWalker) StartTime() time.Time {
	if !w.IsValid() {
		return time.Time{}
	}
	return millisToTime(w.r.span(w.index).StartMillis())
}

// EndTime returns the recorded end time, or the zero time if unset.
func (w SpanWalker) EndTime() time.Time {
	if !w.IsValid() {
		return time.Time{}
	}
	return millisToTime(w.r.span(w.index).EndMillis())
}

// ActiveDuration returns the total time the span was active.
func (w SpanWalker) ActiveDuration() time.Duration {
	if !w.IsValid() {
		return 0
	}
	return time.Duration(w.r.span(w.index).ActiveDurationNanos())
}

// IsFailed reports the failure flag after propagation.
func (w SpanWalker) IsFailed() bool {
	return w.IsValid() && w.r.span(w.index).Failed()
}

// HasParent reports whether the span has a parent in the spanset.
func (w SpanWalker) HasParent() bool {
	return w.IsValid() && w.r.span(w.index).ParentIndex() != InvalidIndex
}

// Parent returns the parent walker, invalid for a root.
func (w SpanWalker) Parent() SpanWalker {
	if !w.HasParent() {
		return SpanWalker{index: InvalidIndex}
	}
	return w.r.Span(w.r.span(w.index).ParentIndex())
}

// ParentID returns the parent's span id, zero for a root.
func (w SpanWalker) ParentID() SpanID {
	if !w.IsValid() {
		return 0
	}
	return SpanID(w.r.span(w.index).ParentID())
}

// NumChildren returns the number of direct children.
func (w SpanWalker) NumChildren() int {
	if !w.IsValid() {
		return 0
	}
	return w.r.span(w.index).ChildrenLength()
}

// Child returns the i-th child in creation order.
func (w SpanWalker) Child(i int) SpanWalker {
	if i < 0 || i >= w.NumChildren() {
		return SpanWalker{index: InvalidIndex}
	}
	return w.r.Span(w.r.span(w.index).Children(i))
}

// SpanAtOffset returns a walker for any span of the same spanset.
func (w SpanWalker) SpanAtOffset(offset uint32) SpanWalker {
	if !w.r.IsValid() {
		return SpanWalker{index: InvalidIndex}
	}
	return w.r.Span(offset)
}

// NumTags returns the number of tags on the span.
func (w SpanWalker) NumTags() int {
	if !w.IsValid() {
		return 0
	}
	return w.r.span(w.index).TagsLength()
}

// HasTag reports whether the span carries a tag under key.
func (w SpanWalker) HasTag(key AttrKey) bool {
	return w.findTag(key) != InvalidIndex
}

// Tag returns the value stored under key.
func (w SpanWalker) Tag(key AttrKey) (Value, error) {
	index := w.findTag(key)
	if index == InvalidIndex {
		return Value{}, fmt.Errorf("%w: %s", ErrMissingTag, key)
	}
	_, v, err := w.r.Attribute(index)
	return v, err
}

// TagAt returns the i-th tag of the span.
func (w SpanWalker) TagAt(i int) (AttrKey, Value, error) {
	if i < 0 || i >= w.NumTags() {
		return AttrKey{}, Value{}, fmt.Errorf("%w: tag %d out of range", ErrMissingTag, i)
	}
	return w.r.Attribute(w.r.span(w.index).Tags(i))
}

func (w SpanWalker) findTag(key AttrKey) uint32 {
	if !w.IsValid() {
		return InvalidIndex
	}
	span := w.r.span(w.index)
	return w.r.findAttr(key, span.TagsLength(), span.Tags)
}

// NumLogs returns the number of logs on the span.
func (w SpanWalker) NumLogs() int {
	if !w.IsValid() {
		return 0
	}
	return w.r.span(w.index).LogsLength()
}

// Log returns the i-th log of the span, invalid if out of range.
func (w SpanWalker) Log(i int) LogWalker {
	if i < 0 || i >= w.NumLogs() {
		return LogWalker{index: InvalidIndex}
	}
	return LogWalker{r: w.r, index: w.r.span(w.index).Logs(i)}
}

// LogWalker reads one log entry.
type LogWalker struct {
	r     *SpansetReader
	index uint32
}

// IsValid reports whether the walker points at a log.
func (w LogWalker) IsValid() bool {
	return w.r.IsValid() && w.index != InvalidIndex && int(w.index) < w.r.NumLogs()
}

// Timestamp returns the log time.
func (w LogWalker) Timestamp() time.Time {
	if !w.IsValid() {
		return time.Time{}
	}
	return time.UnixMilli(int64(w.r.log(w.index).LogTs()))
}

// Severity returns the log severity.
func (w LogWalker) Severity() LogSeverity {
	if !w.IsValid() {
		return SeverityFatal
	}
	return LogSeverity(w.r.log(w.index).LogSeverity())
}

// NumFields returns the number of fields on the log.
func (w LogWalker) NumFields() int {
	if !w.IsValid() {
		return 0
	}
	return w.r.log(w.index).LogFieldsLength()
}

// HasField reports whether the log carries a field under key.
func (w LogWalker) HasField(key AttrKey) bool {
	return w.findField(key) != InvalidIndex
}

// Field returns the value stored under key.
func (w LogWalker) Field(key AttrKey) (Value, error) {
	index := w.findField(key)
	if index == InvalidIndex {
		return Value{}, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	_, v, err := w.r.Attribute(index)
	return v, err
}

func (w LogWalker) findField(key AttrKey) uint32 {
	if !w.IsValid() {
		return InvalidIndex
	}
	log := w.r.log(w.index)
	return w.r.findAttr(key, log.LogFieldsLength(), log.LogFields)
}

// RootWalker iterates the spans without a parent.
type RootWalker struct {
	r *SpansetReader
}

// NumRoots returns the number of root spans.
func (w RootWalker) NumRoots() int { return w.r.NumRoots() }

// Root returns the i-th root span.
func (w RootWalker) Root(i int) SpanWalker {
	index := w.r.Root(i)
	if index == InvalidIndex {
		return SpanWalker{index: InvalidIndex}
	}
	return w.r.Span(index)
}

// ErrorWalker iterates the spans marked failed.
type ErrorWalker struct {
	r *SpansetReader
}

// NumErrors returns the number of failed spans.
func (w ErrorWalker) NumErrors() int { return w.r.NumErrors() }

// Error returns the i-th failed span.
func (w ErrorWalker) Error(i int) SpanWalker {
	index := w.r.Error(i)
	if index == InvalidIndex {
		return SpanWalker{index: InvalidIndex}
	}
	return w.r.Span(index)
}

func millisToTime(ms int64) time.Time {
	if ms < 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
