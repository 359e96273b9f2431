package spanz

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireViolation asserts fn panics with a *ViolationError for op.
func requireViolation(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a violation panic")
		v, ok := r.(*ViolationError)
		require.True(t, ok, "panic value %T is not a *ViolationError", r)
		assert.Equal(t, op, v.Op)
		assert.ErrorIs(t, v, ErrTracingInvariant)
	}()
	fn()
}

func TestSpanIdentity(t *testing.T) {
	tracer, _ := newTestTracer(t)
	r := tracer.NewRecorder()

	root := r.MakeSpan(NoPropagation, AnyChildFailed)
	child := root.MakeSpan(PropagatesToParent, IgnoresPropagation)

	assert.True(t, root.SpanID().IsValid())
	assert.Zero(t, root.ParentID())
	assert.Equal(t, uint32(0), root.Index())
	assert.Equal(t, root.SpanID(), child.ParentID())
	assert.Equal(t, uint32(1), child.Index())
	assert.Equal(t, r.TraceID(), child.TraceID())
	assert.Same(t, r, child.Recorder())
	assert.Equal(t, 2, r.NumSpans())

	assert.Equal(t, AnyChildFailed, root.Collection())
	assert.Equal(t, PropagatesToParent, child.Propagation())
	child.SetPropagation(NoPropagation)
	child.SetCollection(AllChildrenFailed)
	assert.Equal(t, NoPropagation, child.Propagation())
	assert.Equal(t, AllChildrenFailed, child.Collection())
}

func TestSpanActivation(t *testing.T) {
	t.Run("first activation sets start", func(t *testing.T) {
		tracer, clock := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		assert.True(t, span.StartTime().IsZero())
		span.Activate()
		assert.True(t, span.IsActive())
		assert.Equal(t, testEpoch.UnixMilli(), span.StartTime().UnixMilli())

		clock.Advance(time.Second)
		span.Deactivate()
		span.Activate()
		assert.Equal(t, testEpoch.UnixMilli(), span.StartTime().UnixMilli(), "start is not moved")
	})

	t.Run("active duration accumulates across periods", func(t *testing.T) {
		tracer, clock := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		span.Activate()
		clock.Advance(100 * time.Millisecond)
		span.Deactivate()
		clock.Advance(time.Second) // Inactive time is not counted.
		span.Activate()
		clock.Advance(50 * time.Millisecond)
		span.Deactivate()

		assert.False(t, span.IsActive())
		assert.Equal(t, 150*time.Millisecond, span.ActiveDuration())
	})

	t.Run("activate and deactivate are idempotent", func(t *testing.T) {
		tracer, clock := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		span.Activate()
		clock.Advance(10 * time.Millisecond)
		span.Activate()
		clock.Advance(10 * time.Millisecond)
		span.Deactivate()
		span.Deactivate()

		assert.Equal(t, 20*time.Millisecond, span.ActiveDuration())
	})

	t.Run("deactivate refreshes a recorded end time", func(t *testing.T) {
		tracer, clock := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		span.Activate()
		clock.Advance(time.Second)
		span.Deactivate()
		assert.True(t, span.EndTime().IsZero(), "end stays unset until recorded")

		span.SetEndTime(clock.Now())
		span.Activate()
		clock.Advance(time.Second)
		span.Deactivate()
		assert.Equal(t, clock.Now().UnixMilli(), span.EndTime().UnixMilli())
	})

	t.Run("closed span ignores activation", func(t *testing.T) {
		tracer, clock := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)
		span.Close()

		require.NotPanics(t, span.Activate)
		clock.Advance(time.Second)
		require.NotPanics(t, span.Deactivate)
		assert.False(t, span.IsActive())
		assert.Zero(t, span.ActiveDuration())
	})
}

func TestSpanTimeBounds(t *testing.T) {
	tracer, _ := newTestTracer(t)
	span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

	span.SetStartTime(testEpoch)
	span.SetStartTime(testEpoch.Add(time.Second))
	assert.Equal(t, testEpoch.UnixMilli(), span.StartTime().UnixMilli(), "start only moves earlier")
	span.SetStartTime(testEpoch.Add(-time.Second))
	assert.Equal(t, testEpoch.Add(-time.Second).UnixMilli(), span.StartTime().UnixMilli())

	span.SetEndTime(testEpoch.Add(time.Minute))
	span.SetEndTime(testEpoch)
	assert.Equal(t, testEpoch.Add(time.Minute).UnixMilli(), span.EndTime().UnixMilli(), "end only moves later")

	span.AddToActiveDuration(time.Second)
	span.AddToActiveDuration(time.Second)
	assert.Equal(t, 2*time.Second, span.ActiveDuration())
	span.SetActiveDuration(time.Millisecond)
	assert.Equal(t, time.Millisecond, span.ActiveDuration())
}

func TestSpanClose(t *testing.T) {
	t.Run("stamps end and completes", func(t *testing.T) {
		tracer, clock := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		span.Activate()
		clock.Advance(250 * time.Millisecond)
		span.Close()

		assert.False(t, span.IsOpen())
		assert.False(t, span.IsActive())
		assert.Equal(t, 250*time.Millisecond, span.ActiveDuration())
		assert.Equal(t, clock.Now().UnixMilli(), span.EndTime().UnixMilli())
	})

	t.Run("sets start when never activated", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)
		span.Close()
		assert.Equal(t, testEpoch.UnixMilli(), span.StartTime().UnixMilli())
	})

	t.Run("repeated close is a no-op", func(t *testing.T) {
		tracer, clock := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)
		span.Close()
		end := span.EndTime()
		clock.Advance(time.Second)
		require.NotPanics(t, span.Close)
		assert.Equal(t, end, span.EndTime())
	})
}

func TestSpanClosedMutationViolations(t *testing.T) {
	tracer, _ := newTestTracer(t)
	r := tracer.NewRecorder()
	span := r.MakeSpan(NoPropagation, IgnoresPropagation)
	log := span.LogInfo("before close")
	span.Close()

	cases := []struct {
		op string
		fn func()
	}{
		{"SetOperationName", func() { span.SetOperationName("x") }},
		{"SetPropagation", func() { span.SetPropagation(PropagatesToParent) }},
		{"SetCollection", func() { span.SetCollection(AnyChildFailed) }},
		{"SetFailed", func() { span.SetFailed(true) }},
		{"SetStartTime", func() { span.SetStartTime(testEpoch) }},
		{"SetEndTime", func() { span.SetEndTime(testEpoch) }},
		{"AddToActiveDuration", func() { span.AddToActiveDuration(time.Second) }},
		{"SetActiveDuration", func() { span.SetActiveDuration(time.Second) }},
		{"PutTag", func() { span.PutTag(OpentracingComponent.Key(), StringValue("db")) }},
		{"AppendLog", func() { span.AppendLog(testEpoch, SeverityInfo) }},
		{"LogMessage", func() { span.LogInfo("after close") }},
		{"LogStatus", func() { span.LogStatus(errors.New("late"), SeverityWarn) }},
		{"PutField", func() { log.PutField(OpentracingStack.Key(), StringValue("trace")) }},
		{"MakeSpan", func() { span.MakeChild() }},
		{"CloseWithStatus", func() { _ = span.CloseWithStatus(errors.New("late"), SeverityError) }},
	}
	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			requireViolation(t, tc.op, tc.fn)
		})
	}

	t.Run("reads still work", func(t *testing.T) {
		assert.NotPanics(t, func() {
			_ = span.OperationName()
			_ = span.NumTags()
			_ = span.NumLogs()
			_ = log.NumFields()
		})
	})
}

func TestSpanInvalidValueViolations(t *testing.T) {
	tracer, _ := newTestTracer(t)
	span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

	requireViolation(t, "PutTag", func() { span.PutTag(OpentracingComponent.Key(), Value{}) })
	log := span.LogInfo("entry")
	requireViolation(t, "PutField", func() { log.PutField(OpentracingStack.Key(), Value{}) })
	assert.Zero(t, span.NumTags())
}

func TestSpanTags(t *testing.T) {
	tracer, _ := newTestTracer(t)
	span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

	key := AttrKey{Namespace: "app", ID: 7}
	assert.False(t, span.HasTag(key))
	assert.False(t, span.GetTag(key).IsValid())

	span.PutTag(key, Int64Value(1))
	span.PutTag(key, Int64Value(2))
	assert.True(t, span.HasTag(key))
	assert.Equal(t, int64(2), span.GetTag(key).Int64(), "last write wins")
	assert.Equal(t, 1, span.NumTags())

	t.Run("typed helpers", func(t *testing.T) {
		PutTagAttr(span, OpentracingComponent, "postgres")
		got, err := GetTagAttr(span, OpentracingComponent)
		require.NoError(t, err)
		assert.Equal(t, "postgres", got)

		_, err = GetTagAttr(span, OpentracingError)
		assert.ErrorIs(t, err, ErrMissingTag)

		span.PutTag(OpentracingError.Key(), StringValue("not a bool"))
		_, err = GetTagAttr(span, OpentracingError)
		assert.ErrorIs(t, err, ErrWrongType)
	})
}

func TestSpanLogs(t *testing.T) {
	t.Run("explicit timestamp and fields", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		ts := testEpoch.Add(-time.Hour)
		log := span.AppendLog(ts, SeverityVerbose).
			PutField(OpentracingEvent.Key(), StringValue("retry")).
			PutField(AttrKey{Namespace: "app", ID: 1}, UInt8Value(3))

		assert.Equal(t, ts, log.Timestamp())
		assert.Equal(t, SeverityVerbose, log.Severity())
		assert.Equal(t, 2, log.NumFields())
		assert.True(t, log.HasField(OpentracingEvent.Key()))
		assert.Equal(t, uint8(3), log.GetField(AttrKey{Namespace: "app", ID: 1}).UInt8())
		assert.False(t, span.IsFailed())

		PutFieldAttr(log, OpentracingStack, "frame")
		stack, err := GetFieldAttr(log, OpentracingStack)
		require.NoError(t, err)
		assert.Equal(t, "frame", stack)
		_, err = GetFieldAttr(log, OpentracingErrorKind)
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("messages use the clock", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		log := span.LogWarn("cache miss for %s", "user:1")
		assert.True(t, testEpoch.Equal(log.Timestamp()))
		assert.Equal(t, "cache miss for user:1", log.GetField(OpentracingMessage.Key()).Str())

		empty := span.LogMessage("", SeverityInfo)
		assert.Zero(t, empty.NumFields())
		assert.Equal(t, 2, span.NumLogs())
		assert.Equal(t, SeverityWarn, span.Log(0).Severity())
		assert.Nil(t, span.Log(5))
	})

	for _, sev := range []LogSeverity{SeverityError, SeverityFatal} {
		t.Run(fmt.Sprintf("%s marks failed", sev), func(t *testing.T) {
			tracer, _ := newTestTracer(t)
			span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)
			span.AppendLog(testEpoch, sev)
			assert.True(t, span.IsFailed())
		})
	}
}

func TestSpanStatus(t *testing.T) {
	t.Run("ok status logs nothing", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		assert.NoError(t, span.CheckStatus(nil, SeverityError))
		var ok *Status
		assert.Equal(t, error(ok), span.CheckStatus(ok, SeverityError))
		assert.Zero(t, span.NumLogs())
		assert.False(t, span.IsFailed())
	})

	t.Run("categorized failure", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		st := Newf("storage", 28, "disk %s full", "/var")
		err := span.CheckStatus(st, SeverityError)
		assert.Same(t, st, err)
		require.Equal(t, 1, span.NumLogs())
		assert.True(t, span.IsFailed())

		log := span.Log(0)
		assert.Equal(t, "storage", log.GetField(ErrorCategoryName.Key()).Str())
		assert.Equal(t, int64(28), log.GetField(ErrorCode.Key()).Int64())
		assert.Equal(t, "disk /var full", log.GetField(OpentracingMessage.Key()).Str())
	})

	t.Run("wrapped status keeps its category", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		err := fmt.Errorf("loading: %w", NewStatus("io", 5, "eof"))
		span.LogStatus(err, SeverityWarn)
		log := span.Log(0)
		assert.Equal(t, "io", log.GetField(ErrorCategoryName.Key()).Str())
		assert.Equal(t, "eof", log.GetField(OpentracingMessage.Key()).Str())
		assert.False(t, span.IsFailed(), "warn does not fail the span")
	})

	t.Run("plain error has message only", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		span.LogStatus(errors.New("timeout"), SeverityInfo)
		log := span.Log(0)
		assert.False(t, log.HasField(ErrorCategoryName.Key()))
		assert.Equal(t, "timeout", log.GetField(OpentracingMessage.Key()).Str())
	})

	t.Run("check result", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		v, err := CheckResult(span, 42, nil, SeverityError)
		assert.Equal(t, 42, v)
		assert.NoError(t, err)

		_, err = CheckResult(span, 0, errors.New("bad"), SeverityError)
		assert.Error(t, err)
		assert.True(t, span.IsFailed())
	})

	t.Run("close with status", func(t *testing.T) {
		tracer, _ := newTestTracer(t)
		span := tracer.NewRecorder().MakeSpan(NoPropagation, IgnoresPropagation)

		st := NewStatus("rpc", 14, "unavailable")
		assert.Same(t, st, span.CloseWithStatus(st, SeverityWarn))
		assert.False(t, span.IsOpen())
		assert.True(t, span.IsFailed())
		assert.Equal(t, "error", span.GetTag(OpentracingEvent.Key()).Str())
		assert.Equal(t, int64(14), span.Log(0).GetField(ErrorCode.Key()).Int64())
	})
}

func TestSpanConcurrentMutation(t *testing.T) {
	tracer, _ := newTestTracer(t)
	r := tracer.NewRecorder()
	root := r.MakeSpan(NoPropagation, AnyChildFailed)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			root.PutTag(AttrKey{Namespace: "worker", ID: uint32(i)}, Int64Value(int64(i)))
			root.LogInfo("worker %d", i)
			child := root.MakeChild()
			child.Activate()
			child.Close()
		}(i)
	}
	wg.Wait()
	root.Close()

	assert.Equal(t, workers, root.NumTags())
	assert.Equal(t, workers, root.NumLogs())
	assert.Equal(t, workers+1, r.NumSpans())

	spanset := finish(t, r)
	assert.Equal(t, workers, spanset.Span(0).NumChildren())
}

func TestSpanForceClosedWhenUnreachable(t *testing.T) {
	tracer, _ := newTestTracer(t)
	r := tracer.NewRecorder()

	func() {
		span := r.MakeSpan(NoPropagation, IgnoresPropagation)
		span.SetOperationName("leaked")
	}()

	rec := r.state.record(0)
	require.Eventually(t, func() bool {
		runtime.GC()
		return rec.snapshot().complete
	}, 2*time.Second, 10*time.Millisecond, "unreachable span was not closed")

	s := finish(t, r)
	assert.False(t, s.Span(0).EndTime().IsZero())
}
