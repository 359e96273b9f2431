package spanz

// spansetState is the append-only span list of one trace. Indices are
// dense and a child's parent always precedes it. It is not safe for
// concurrent use; the owning Recorder serializes access.
type spansetState struct {
	records []*spanRecord
	traceID TraceID
}

func newSpansetState(traceID TraceID) *spansetState {
	return &spansetState{traceID: traceID}
}

func (s *spansetState) size() uint32 { return uint32(len(s.records)) }

// appendRoot adds a span with no parent.
func (s *spansetState) appendRoot(id SpanID, propagation FailurePropagation, collection FailureCollection) *spanRecord {
	rec := newSpanRecord(s.size(), id, InvalidIndex, 0, propagation, collection)
	s.records = append(s.records, rec)
	return rec
}

// appendChild adds a span under parentIndex and links it into the
// parent's child list. The parent must already exist.
func (s *spansetState) appendChild(id SpanID, parentIndex uint32, parentID SpanID,
	propagation FailurePropagation, collection FailureCollection) (*spanRecord, error) {
	index := s.size()
	if parentIndex >= index {
		return nil, invariantf("parent index %d is not before child index %d", parentIndex, index)
	}
	if !parentID.IsValid() {
		return nil, invariantf("child of span %d has no parent id", parentIndex)
	}
	rec := newSpanRecord(index, id, parentIndex, parentID, propagation, collection)
	s.records = append(s.records, rec)

	parent := s.records[parentIndex]
	parent.mu.Lock()
	parent.children = append(parent.children, index)
	parent.mu.Unlock()
	return rec, nil
}

func (s *spansetState) record(index uint32) *spanRecord {
	if index >= s.size() {
		return nil
	}
	return s.records[index]
}

// snapshot copies every record in index order.
func (s *spansetState) snapshot() []spanData {
	out := make([]spanData, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.snapshot()
	}
	return out
}

// toSpanset propagates failures over a snapshot and encodes it.
func (s *spansetState) toSpanset() (*Spanset, writeStats) {
	spans := s.snapshot()
	evaluateFailurePropagation(spans)
	buf, stats := writeSpanset(s.traceID, spans)
	return &Spanset{buf: buf}, stats
}

// evaluateFailurePropagation folds child failures into parents that
// collect them. Each tree is walked post-order with an explicit stack,
// seeded from every root so independent subtrees are all evaluated.
func evaluateFailurePropagation(spans []spanData) {
	if len(spans) == 0 {
		return
	}
	seen := make([]bool, len(spans))
	stack := make([]uint32, 0, len(spans))

	for i := range spans {
		if !spans[i].isRoot() {
			continue
		}
		stack = append(stack, uint32(i))
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if !seen[top] {
				seen[top] = true
				for _, child := range spans[top].children {
					if !seen[child] {
						stack = append(stack, child)
					}
				}
				continue
			}
			stack = stack[:len(stack)-1]
			collectFailures(spans, top)
		}
	}
}

func collectFailures(spans []spanData, index uint32) {
	span := &spans[index]
	if span.collection == IgnoresPropagation {
		return
	}
	failures := 0
	for _, child := range span.children {
		c := &spans[child]
		if c.failed && c.propagation == PropagatesToParent {
			failures++
		}
	}
	switch span.collection {
	case AllChildrenFailed:
		// Vacuously true for a leaf.
		if failures == len(span.children) {
			span.failed = true
		}
	case AnyChildFailed:
		if failures > 0 {
			span.failed = true
		}
	}
}
