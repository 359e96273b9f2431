package spanz

import (
	"sync"
	"time"
)

// unsetTime marks start, end and activation times that were never set.
const unsetTime int64 = -1

// logEntry is one timestamped log on a span.
type logEntry struct {
	ts       time.Time
	fields   AttrMap
	severity LogSeverity
}

// spanData is the plain state of one span. Snapshots taken for
// serialization are spanData values detached from their record.
type spanData struct {
	tags           AttrMap
	operationName  string
	children       []uint32
	logs           []*logEntry
	id             SpanID
	parentID       SpanID
	startMillis    int64
	endMillis      int64
	activeNanos    int64
	activeDuration time.Duration
	index          uint32
	parentIndex    uint32
	propagation    FailurePropagation
	collection     FailureCollection
	failed         bool
	complete       bool
}

func (d *spanData) isRoot() bool { return !d.parentID.IsValid() }

func (d *spanData) isActive() bool { return d.activeNanos != unsetTime }

// spanRecord guards one span's state. Every access goes through mu.
type spanRecord struct {
	mu sync.Mutex
	spanData
}

func newSpanRecord(index uint32, id SpanID, parentIndex uint32, parentID SpanID,
	propagation FailurePropagation, collection FailureCollection) *spanRecord {
	return &spanRecord{spanData: spanData{
		index:       index,
		id:          id,
		parentIndex: parentIndex,
		parentID:    parentID,
		startMillis: unsetTime,
		endMillis:   unsetTime,
		activeNanos: unsetTime,
		propagation: propagation,
		collection:  collection,
		tags:        make(AttrMap),
	}}
}

// activateLocked starts an activation period. Caller holds mu.
func (r *spanRecord) activateLocked(now time.Time) {
	if r.startMillis == unsetTime {
		r.startMillis = now.UnixMilli()
	}
	if !r.isActive() {
		r.activeNanos = now.UnixNano()
	}
}

// deactivateLocked ends the current activation period, if any. An end
// time that was already recorded moves forward to now. Caller holds mu.
func (r *spanRecord) deactivateLocked(now time.Time) {
	if !r.isActive() {
		return
	}
	r.activeDuration += time.Duration(now.UnixNano() - r.activeNanos)
	r.activeNanos = unsetTime
	if r.endMillis != unsetTime {
		r.endMillis = now.UnixMilli()
	}
}

// closeLocked deactivates, stamps the end time and completes the record.
// It reports whether this call completed the record. Caller holds mu.
func (r *spanRecord) closeLocked(now time.Time) bool {
	if r.complete {
		return false
	}
	r.deactivateLocked(now)
	if r.startMillis == unsetTime {
		r.startMillis = now.UnixMilli()
	}
	r.endMillis = now.UnixMilli()
	r.complete = true
	return true
}

func (r *spanRecord) appendLogLocked(ts time.Time, severity LogSeverity) *logEntry {
	entry := &logEntry{ts: ts, severity: severity, fields: make(AttrMap)}
	r.logs = append(r.logs, entry)
	if severity.failing() {
		r.failed = true
	}
	return entry
}

// snapshot copies the record so it can be read without the lock.
func (r *spanRecord) snapshot() spanData {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.spanData
	out.tags = r.tags.clone()
	out.children = append([]uint32(nil), r.children...)
	out.logs = make([]*logEntry, len(r.logs))
	for i, l := range r.logs {
		out.logs[i] = &logEntry{ts: l.ts, severity: l.severity, fields: l.fields.clone()}
	}
	return out
}
