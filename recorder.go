package spanz

import (
	"sync"

	"go.uber.org/zap"
)

// Recorder owns the span tree of one trace. Spans are appended while
// the recorder is open; Close freezes it and ToSpanset encodes it.
// Safe for concurrent use by multiple goroutines.
type Recorder struct {
	tracer  *Tracer
	state   *spansetState
	spanset *Spanset
	traceID TraceID
	mu      sync.Mutex
	closed  bool
}

func newRecorder(t *Tracer, traceID TraceID) *Recorder {
	return &Recorder{
		tracer:  t,
		traceID: traceID,
		state:   newSpansetState(traceID),
	}
}

// TraceID returns the id shared by every span of the trace.
func (r *Recorder) TraceID() TraceID { return r.traceID }

// Tracer returns the tracer that created the recorder.
func (r *Recorder) Tracer() *Tracer { return r.tracer }

// NumSpans returns the number of spans appended so far.
func (r *Recorder) NumSpans() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.state.size())
}

// MakeSpan appends a new root span.
func (r *Recorder) MakeSpan(propagation FailurePropagation, collection FailureCollection) *Span {
	id := r.tracer.generateSpanID()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.violate("MakeSpan", "recorder is closed", 0)
	}
	rec := r.state.appendRoot(id, propagation, collection)
	r.mu.Unlock()

	r.tracer.metrics.incSpanCreated()
	return newSpan(r, rec)
}

// makeChild appends a span under parent. The caller must not hold the
// parent's lock.
func (r *Recorder) makeChild(parent *spanRecord, propagation FailurePropagation, collection FailureCollection) *Span {
	id := r.tracer.generateSpanID()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.violate("MakeSpan", "recorder is closed", parent.id)
	}
	rec, err := r.state.appendChild(id, parent.index, parent.id, propagation, collection)
	r.mu.Unlock()
	if err != nil {
		r.violate("MakeSpan", err.Error(), parent.id)
	}

	r.tracer.metrics.incSpanCreated()
	return newSpan(r, rec)
}

// Close freezes the span tree. Further span creation is a violation.
// Safe to call multiple times.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// IsClosed reports whether Close has been called.
func (r *Recorder) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// ToSpanset propagates failures and encodes the trace. The recorder
// must be closed. The first call encodes and notifies the tracer's
// handlers; later calls return the same spanset.
func (r *Recorder) ToSpanset() (*Spanset, error) {
	r.mu.Lock()
	if !r.closed {
		r.mu.Unlock()
		return nil, ErrRecorderNotClosed
	}
	if r.spanset != nil {
		spanset := r.spanset
		r.mu.Unlock()
		return spanset, nil
	}
	spanset, stats := r.state.toSpanset()
	r.spanset = spanset
	r.mu.Unlock()

	r.tracer.metrics.observeSpanset(stats)
	r.tracer.logger.Debug("spanset written",
		zap.String("trace_id", r.traceID.String()),
		zap.Int("spans", stats.spans),
		zap.Int("failed", stats.failed),
		zap.Int("bytes", stats.bytes),
	)
	r.tracer.executeHandlers(spanset)
	return spanset, nil
}

// Finish closes the recorder and returns its spanset.
func (r *Recorder) Finish() (*Spanset, error) {
	r.Close()
	return r.ToSpanset()
}

func (r *Recorder) violate(op, msg string, spanID SpanID) {
	violation(r.tracer.logger, r.tracer.metrics, &ViolationError{
		Op:      op,
		Message: msg,
		TraceID: r.traceID,
		SpanID:  spanID,
	})
}
