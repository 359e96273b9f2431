// Package spanz provides an embedded, process-local tracing engine that
// records hierarchical spans and serializes each finished trace into an
// immutable binary spanset.
//
// spanz never talks to the network. A trace is built in memory, closed,
// encoded into one contiguous buffer, and read back through zero-copy
// walkers.
//
// Core Components:
//   - Tracer: Factory for recorders; owns the clock, ids, logger and hooks.
//   - Recorder: Owns the span tree of one trace.
//   - Span: Concurrency-safe handle to one span record.
//   - Registry / TraceContext: Goroutine-owned stack of open spans.
//   - Spanset: Encoded trace with Roots, Errors and walkers.
//
// Basic Usage:
//
//	tracer := spanz.New()
//	defer tracer.Close()
//
//	recorder := tracer.NewRecorder()
//	root := recorder.MakeSpan(spanz.NoPropagation, spanz.AnyChildFailed)
//	root.SetOperationName("handle-request")
//	root.Activate()
//
//	child := root.MakeSpan(spanz.PropagatesToParent, spanz.IgnoresPropagation)
//	child.CheckStatus(doWork(), spanz.SeverityError)
//	child.Close()
//	root.Close()
//
//	spanset, err := recorder.Finish()
//
// Context Stacks:
//
// A Registry holds named trace contexts for one goroutine. Carry it with
// WithRegistry and fetch it with RegistryFromContext; registries are not
// safe for concurrent use.
//
//	reg := spanz.NewRegistry(tracer)
//	tc, _ := reg.MakeContextAndSwitch("")
//	scope := reg.Leaf("load-config", "", spanz.PropagatesToParent, spanz.IgnoresPropagation)
//	defer scope.End()
//
// Contract Violations:
//
// Mutating a closed span or mis-ordering a context stack panics with a
// *ViolationError after logging it. These are programming errors.
package spanz

// InvalidIndex marks an absent span, parent or attribute index.
const InvalidIndex uint32 = 0xFFFFFFFF

// FailurePropagation controls whether a failed span counts toward its
// parent's failure evaluation.
type FailurePropagation uint8

const (
	NoPropagation FailurePropagation = iota
	PropagatesToParent
)

func (p FailurePropagation) String() string {
	if p == PropagatesToParent {
		return "PropagatesToParent"
	}
	return "NoPropagation"
}

// FailureCollection controls how a span aggregates failures propagated
// by its children.
type FailureCollection uint8

const (
	IgnoresPropagation FailureCollection = iota
	AnyChildFailed
	AllChildrenFailed
)

func (c FailureCollection) String() string {
	switch c {
	case AnyChildFailed:
		return "AnyChildFailed"
	case AllChildrenFailed:
		return "AllChildrenFailed"
	default:
		return "IgnoresPropagation"
	}
}

// LogSeverity ranks span log entries. Error and Fatal mark the span failed.
type LogSeverity uint8

const (
	SeverityFatal LogSeverity = iota
	SeverityError
	SeverityWarn
	SeverityInfo
	SeverityVerbose
	SeverityVeryVerbose
)

var severityNames = [...]string{"Fatal", "Error", "Warn", "Info", "Verbose", "VeryVerbose"}

func (s LogSeverity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "Unknown"
}

// failing reports whether a log of this severity marks its span failed.
func (s LogSeverity) failing() bool {
	return s == SeverityFatal || s == SeverityError
}

// SpansetVersion is the ABI tag carried in an encoded spanset.
type SpansetVersion uint8

const (
	SpansetVersionUnknown SpansetVersion = iota
	SpansetVersion1
)
