package spanz

import "time"

// ScopeManager is an explicit span stack over one recorder, for code
// that passes its tracing state around instead of using a Registry.
// Not safe for concurrent use.
type ScopeManager struct {
	recorder *Recorder
	stack    []*Span
}

// NewScopeManager creates a manager recording into r.
func NewScopeManager(r *Recorder) *ScopeManager {
	return &ScopeManager{recorder: r}
}

// MakeSpan creates a child of the top span, or a root, and pushes it.
func (m *ScopeManager) MakeSpan(propagation FailurePropagation, collection FailureCollection) *Span {
	var span *Span
	if top := m.PeekSpan(); top != nil {
		span = top.MakeSpan(propagation, collection)
	} else {
		span = m.recorder.MakeSpan(propagation, collection)
	}
	m.PushSpan(span)
	return span
}

// PushSpan makes span the current span of the stack.
func (m *ScopeManager) PushSpan(span *Span) {
	m.stack = append(m.stack, span)
}

// PopSpan removes and returns the top span.
func (m *ScopeManager) PopSpan() *Span {
	if len(m.stack) == 0 {
		m.recorder.violate("PopSpan", "scope stack is empty", 0)
	}
	span := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return span
}

// PopSpanAndCheck pops the top span after checking it has spanID.
func (m *ScopeManager) PopSpanAndCheck(spanID SpanID) *Span {
	if top := m.PeekSpan(); top == nil || top.SpanID() != spanID {
		m.recorder.violate("PopSpanAndCheck", "unexpected span on top of scope stack", spanID)
	}
	return m.PopSpan()
}

// PeekSpan returns the top span, or nil when the stack is empty.
func (m *ScopeManager) PeekSpan() *Span {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// StackSize returns the number of pushed spans.
func (m *ScopeManager) StackSize() int { return len(m.stack) }

// Close closes every span left on the stack, innermost first.
func (m *ScopeManager) Close() {
	for len(m.stack) > 0 {
		m.PopSpan().Close()
	}
}

// Enter pushes a new span with its start time stamped now. End pops it,
// adds the elapsed time to its active duration and closes it.
func (m *ScopeManager) Enter(operationName string,
	propagation FailurePropagation, collection FailureCollection) *EnterScope {
	span := m.MakeSpan(propagation, collection)
	start := m.recorder.tracer.now()
	span.SetStartTime(start)
	if operationName != "" {
		span.SetOperationName(operationName)
	}
	return &EnterScope{manager: m, span: span, start: start}
}

// EnterScope is a span pushed by ScopeManager.Enter.
type EnterScope struct {
	start   time.Time
	manager *ScopeManager
	span    *Span
}

// Span returns the scope's span.
func (e *EnterScope) Span() *Span { return e.span }

// End pops the span, which must be on top of the stack, and closes it.
func (e *EnterScope) End() {
	e.manager.PopSpanAndCheck(e.span.SpanID())
	if !e.span.IsOpen() {
		return
	}
	end := e.manager.recorder.tracer.now()
	e.span.SetEndTime(end)
	e.span.AddToActiveDuration(end.Sub(e.start))
	e.span.Close()
}
