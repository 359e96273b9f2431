package spanz

import (
	"context"
	"errors"
	"time"
)

type scopeKind uint8

const (
	leafScope scopeKind = iota
	currentScope
	exitScope
)

// Scope binds a span of a trace context to a block of code. Scopes are
// created by Registry.Leaf, Registry.Current and Registry.Exit and ended
// with End, typically deferred.
//
// A scope whose context could not be resolved is invalid: Err reports
// why, and every method is a no-op.
type Scope struct {
	registry *Registry
	context  *TraceContext
	span     *Span
	err      error
	kind     scopeKind
}

// resolve finds the scope's context: the named one, made current, or
// the current one when name is empty.
func (g *Registry) resolve(name string) (*TraceContext, error) {
	if name != "" {
		return g.SwitchCurrent(name)
	}
	if g.current == nil {
		return nil, invariantf("missing current context")
	}
	return g.current, nil
}

// Leaf pushes a new span onto the context's stack and activates it.
// End closes and pops it.
func (g *Registry) Leaf(operationName, contextName string,
	propagation FailurePropagation, collection FailureCollection) *Scope {
	s := &Scope{registry: g, kind: leafScope}
	s.context, s.err = g.resolve(contextName)
	if s.err != nil {
		return s
	}
	s.context.Activate()
	s.span = s.context.PushSpan(propagation, collection)
	s.span.SetOperationName(operationName)
	s.span.Activate()
	return s
}

// Current activates the span already on top of the context's stack.
// End deactivates it.
func (g *Registry) Current(contextName string) *Scope {
	return g.peekScope(contextName, currentScope)
}

// Exit activates the span on top of the context's stack. End closes
// and pops it.
func (g *Registry) Exit(contextName string) *Scope {
	return g.peekScope(contextName, exitScope)
}

func (g *Registry) peekScope(contextName string, kind scopeKind) *Scope {
	s := &Scope{registry: g, kind: kind}
	s.context, s.err = g.resolve(contextName)
	if s.err != nil {
		return s
	}
	s.context.Activate()
	s.span = s.context.top()
	if s.span == nil {
		s.err = invariantf("context %s has no open span", s.context.name)
		return s
	}
	s.span.Activate()
	return s
}

// LeafFromContext opens a leaf scope in the current context of the
// registry carried by ctx.
func LeafFromContext(ctx context.Context, operationName string,
	propagation FailurePropagation, collection FailureCollection) *Scope {
	reg := RegistryFromContext(ctx)
	if reg == nil {
		return &Scope{err: invariantf("no registry in context")}
	}
	return reg.Leaf(operationName, "", propagation, collection)
}

// End finishes the scope. It acts only while the scope's context is
// still current and its span is still on top of the stack.
func (s *Scope) End() {
	if s.span == nil || s.registry.current != s.context {
		return
	}
	if top := s.context.top(); top == nil || top.SpanID() != s.span.SpanID() {
		return
	}
	switch s.kind {
	case currentScope:
		s.span.Deactivate()
	default:
		s.span.Close()
		s.context.PopSpan()
	}
}

// IsValid reports whether the scope holds a span.
func (s *Scope) IsValid() bool { return s.span != nil }

// Err returns why the scope is invalid, or nil.
func (s *Scope) Err() error { return s.err }

// Span returns the scope's span, or nil.
func (s *Scope) Span() *Span { return s.span }

// Context returns the scope's trace context, or nil.
func (s *Scope) Context() *TraceContext { return s.context }

// SetOperationName renames the scope's span, if any.
func (s *Scope) SetOperationName(name string) {
	if s.span != nil {
		s.span.SetOperationName(name)
	}
}

// SetPropagation forwards to the scope's span, if any.
func (s *Scope) SetPropagation(p FailurePropagation) {
	if s.span != nil {
		s.span.SetPropagation(p)
	}
}

// SetCollection forwards to the scope's span, if any.
func (s *Scope) SetCollection(c FailureCollection) {
	if s.span != nil {
		s.span.SetCollection(c)
	}
}

// SetFailed forwards to the scope's span, if any.
func (s *Scope) SetFailed(failed bool) {
	if s.span != nil {
		s.span.SetFailed(failed)
	}
}

// PutTag tags the scope's span, if any.
func (s *Scope) PutTag(key AttrKey, value Value) {
	if s.span != nil {
		s.span.PutTag(key, value)
	}
}

// AppendLog appends a log to the scope's span. It returns nil without a span.
func (s *Scope) AppendLog(ts time.Time, severity LogSeverity) *SpanLog {
	if s.span == nil {
		return nil
	}
	return s.span.AppendLog(ts, severity)
}

// LogMessage logs a message on the scope's span. It returns nil without a span.
func (s *Scope) LogMessage(message string, severity LogSeverity) *SpanLog {
	if s.span == nil {
		return nil
	}
	return s.span.LogMessage(message, severity)
}

// LogStatus logs err on the scope's span. It returns nil without a span.
func (s *Scope) LogStatus(err error, severity LogSeverity) *SpanLog {
	if s.span == nil {
		return nil
	}
	return s.span.LogStatus(err, severity)
}

// CheckStatus logs err on the scope's span when it is a failure and
// returns it unchanged.
func (s *Scope) CheckStatus(err error, severity LogSeverity) error {
	if s.span == nil {
		return err
	}
	return s.span.CheckStatus(err, severity)
}

// IsInvariantError reports whether err is a tracing contract failure.
func IsInvariantError(err error) bool {
	return errors.Is(err, ErrTracingInvariant)
}
