package spanz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryContexts(t *testing.T) {
	tracer, _ := newTestTracer(t)
	reg := NewRegistry(tracer)

	t.Run("make and switch", func(t *testing.T) {
		a, err := reg.MakeContext("a")
		require.NoError(t, err)
		assert.Equal(t, "a", a.Name())
		assert.Nil(t, reg.CurrentContext(), "making a context does not switch")

		b, err := reg.MakeContextAndSwitch("b")
		require.NoError(t, err)
		assert.Same(t, b, reg.CurrentContext())
		assert.True(t, b.IsActive())
		assert.NotEqual(t, a.TraceID(), b.TraceID())

		got, err := reg.SwitchCurrent("a")
		require.NoError(t, err)
		assert.Same(t, a, got)
		assert.False(t, b.IsActive())
		assert.True(t, a.IsActive())
		assert.Same(t, a, reg.GetContext("a"))
		assert.Equal(t, 2, reg.NumContexts())
	})

	t.Run("generated names", func(t *testing.T) {
		tc, err := reg.MakeContext("")
		require.NoError(t, err)
		assert.Len(t, tc.Name(), 36)
		assert.Same(t, tc, reg.GetContext(tc.Name()))
	})

	t.Run("misuse returns invariant errors", func(t *testing.T) {
		_, err := reg.MakeContext("a")
		assert.ErrorIs(t, err, ErrTracingInvariant)
		_, err = reg.SwitchCurrent("missing")
		assert.ErrorIs(t, err, ErrTracingInvariant)
		_, err = reg.FinishContext("missing")
		assert.True(t, IsInvariantError(err))
	})

	t.Run("clear current", func(t *testing.T) {
		cur := reg.CurrentContext()
		require.NotNil(t, cur)
		reg.ClearCurrent()
		assert.Nil(t, reg.CurrentContext())
		assert.False(t, cur.IsActive())
		reg.ClearCurrent()
	})
}

func TestTraceContextStack(t *testing.T) {
	tracer, clock := newTestTracer(t)
	reg := NewRegistry(tracer)
	tc, err := reg.MakeContextAndSwitch("req")
	require.NoError(t, err)

	assert.True(t, tc.IsEmpty())
	root := tc.PushSpan(NoPropagation, AnyChildFailed)
	child := tc.PushSpan(PropagatesToParent, IgnoresPropagation)

	assert.Equal(t, 2, tc.NumSpans())
	assert.Equal(t, root.SpanID(), child.ParentID())
	assert.Same(t, child, tc.PeekSpan())
	assert.Same(t, root, tc.GetSpan(0))
	assert.Nil(t, tc.GetSpan(2))

	t.Run("context activation drives its spans", func(t *testing.T) {
		tc.Deactivate()
		assert.False(t, tc.IsActive())
		tc.Activate()
		assert.True(t, root.IsActive())
		assert.True(t, child.IsActive())

		clock.Advance(10 * time.Millisecond)
		_, err := reg.MakeContextAndSwitch("other")
		require.NoError(t, err)
		assert.False(t, root.IsActive())
		assert.False(t, child.IsActive())
		assert.Equal(t, 10*time.Millisecond, child.ActiveDuration())

		_, err = reg.SwitchCurrent("req")
		require.NoError(t, err)
		assert.True(t, child.IsActive())
	})

	t.Run("checked pop", func(t *testing.T) {
		requireViolation(t, "PeekSpanAndCheck", func() { tc.PeekSpanAndCheck(root.SpanID()) })
		assert.Same(t, child, tc.PopSpanAndCheck(child.SpanID()))
		assert.Same(t, root, tc.PopSpan())
		assert.True(t, tc.IsEmpty())
	})

	t.Run("empty stack violations", func(t *testing.T) {
		requireViolation(t, "PeekSpan", func() { tc.PeekSpan() })
		requireViolation(t, "PeekSpan", func() { tc.PopSpan() })
	})
}

func TestRegistryFinishContext(t *testing.T) {
	tracer, _ := newTestTracer(t)
	reg := NewRegistry(tracer)
	tc, err := reg.MakeContextAndSwitch("job")
	require.NoError(t, err)

	root := tc.PushSpan(NoPropagation, AnyChildFailed)
	child := tc.PushSpan(PropagatesToParent, IgnoresPropagation)
	child.LogError("disk full")

	spanset, err := reg.FinishContext("job")
	require.NoError(t, err)

	assert.False(t, root.IsOpen(), "open spans are closed")
	assert.False(t, child.IsOpen())
	assert.Nil(t, reg.CurrentContext())
	assert.Nil(t, reg.GetContext("job"))
	assert.Equal(t, tc.TraceID(), spanset.TraceID())
	assert.Equal(t, 2, spanset.NumSpans())
	assert.True(t, spanset.Span(0).IsFailed())
	assert.True(t, tc.Recorder().IsClosed())
}

func TestRegistryCarriedByContext(t *testing.T) {
	tracer, _ := newTestTracer(t)
	reg := NewRegistry(tracer)

	ctx := WithRegistry(context.Background(), reg)
	assert.Same(t, reg, RegistryFromContext(ctx))
	assert.Nil(t, RegistryFromContext(context.Background()))
	assert.Nil(t, RegistryFromContext(nil)) //nolint:staticcheck // nil context is handled
}

func TestLeafScope(t *testing.T) {
	tracer, clock := newTestTracer(t)
	reg := NewRegistry(tracer)
	tc, err := reg.MakeContextAndSwitch("req")
	require.NoError(t, err)

	outer := reg.Leaf("handle", "", NoPropagation, AnyChildFailed)
	require.True(t, outer.IsValid())
	require.NoError(t, outer.Err())
	assert.Same(t, tc, outer.Context())
	assert.True(t, outer.Span().IsActive())

	func() {
		inner := reg.Leaf("query", "req", PropagatesToParent, IgnoresPropagation)
		defer inner.End()

		assert.Equal(t, outer.Span().SpanID(), inner.Span().ParentID())
		inner.PutTag(OpentracingComponent.Key(), StringValue("postgres"))
		inner.SetOperationName("query users")
		clock.Advance(15 * time.Millisecond)
		_ = inner.CheckStatus(NewStatus("db", 1, "deadlock"), SeverityError)
	}()

	assert.Equal(t, 1, tc.NumSpans(), "inner scope popped")
	outer.End()
	assert.True(t, tc.IsEmpty())

	spanset, err := reg.FinishContext("req")
	require.NoError(t, err)
	query := spanset.Span(1)
	assert.Equal(t, "query users", query.OperationName())
	assert.Equal(t, 15*time.Millisecond, query.ActiveDuration())
	assert.True(t, query.HasTag(OpentracingComponent.Key()))
	assert.True(t, spanset.Span(0).IsFailed())
}

func TestCurrentAndExitScopes(t *testing.T) {
	tracer, clock := newTestTracer(t)
	reg := NewRegistry(tracer)
	tc, err := reg.MakeContextAndSwitch("req")
	require.NoError(t, err)

	span := tc.PushSpan(NoPropagation, IgnoresPropagation)
	tc.Deactivate()

	t.Run("current scope deactivates on end", func(t *testing.T) {
		scope := reg.Current("")
		require.True(t, scope.IsValid())
		assert.True(t, span.IsActive())
		clock.Advance(time.Millisecond)
		scope.End()
		assert.False(t, span.IsActive())
		assert.True(t, span.IsOpen())
		assert.Equal(t, 1, tc.NumSpans())
	})

	t.Run("exit scope closes and pops", func(t *testing.T) {
		scope := reg.Exit("req")
		require.True(t, scope.IsValid())
		scope.LogMessage("leaving", SeverityInfo)
		scope.End()
		assert.False(t, span.IsOpen())
		assert.True(t, tc.IsEmpty())
	})

	t.Run("empty stack yields an invalid scope", func(t *testing.T) {
		scope := reg.Current("")
		assert.False(t, scope.IsValid())
		assert.ErrorIs(t, scope.Err(), ErrTracingInvariant)
		assert.NotPanics(t, func() {
			scope.SetFailed(true)
			scope.PutTag(OpentracingComponent.Key(), StringValue("x"))
			assert.Nil(t, scope.LogMessage("x", SeverityInfo))
			assert.Nil(t, scope.AppendLog(testEpoch, SeverityInfo))
			assert.Nil(t, scope.LogStatus(errors.New("x"), SeverityInfo))
			scope.End()
		})
		assert.False(t, reg.Exit("").IsValid())
	})
}

func TestScopeResolutionErrors(t *testing.T) {
	tracer, _ := newTestTracer(t)
	reg := NewRegistry(tracer)

	scope := reg.Leaf("op", "", NoPropagation, IgnoresPropagation)
	assert.False(t, scope.IsValid())
	assert.ErrorIs(t, scope.Err(), ErrTracingInvariant, "no current context")

	scope = reg.Leaf("op", "missing", NoPropagation, IgnoresPropagation)
	assert.ErrorIs(t, scope.Err(), ErrTracingInvariant)

	err := errors.New("passthrough")
	assert.Same(t, err, scope.CheckStatus(err, SeverityError))

	scope = LeafFromContext(context.Background(), "op", NoPropagation, IgnoresPropagation)
	assert.ErrorIs(t, scope.Err(), ErrTracingInvariant)
}

func TestScopeEndAfterSwitch(t *testing.T) {
	tracer, _ := newTestTracer(t)
	reg := NewRegistry(tracer)
	ctx := WithRegistry(context.Background(), reg)
	_, err := reg.MakeContextAndSwitch("a")
	require.NoError(t, err)

	scope := LeafFromContext(ctx, "work", NoPropagation, IgnoresPropagation)
	require.True(t, scope.IsValid())

	_, err = reg.MakeContextAndSwitch("b")
	require.NoError(t, err)
	scope.End()
	assert.True(t, scope.Span().IsOpen(), "end is ignored once its context is no longer current")

	_, err = reg.SwitchCurrent("a")
	require.NoError(t, err)
	scope.End()
	assert.False(t, scope.Span().IsOpen())
}
