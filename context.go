package spanz

import (
	"context"

	"github.com/google/uuid"
)

// registryKeyType is a private type for context keys to avoid collisions.
type registryKeyType string

const (
	registryKey registryKeyType = "spanz.registry"
)

// Registry holds the named trace contexts of one goroutine and tracks
// which of them is current. It is not safe for concurrent use: give each
// goroutine its own registry and carry it with WithRegistry.
type Registry struct {
	tracer   *Tracer
	contexts map[string]*TraceContext
	current  *TraceContext
}

// NewRegistry creates an empty registry whose contexts record with t.
func NewRegistry(t *Tracer) *Registry {
	return &Registry{
		tracer:   t,
		contexts: make(map[string]*TraceContext),
	}
}

// WithRegistry returns a context carrying reg.
func WithRegistry(ctx context.Context, reg *Registry) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, registryKey, reg)
}

// RegistryFromContext extracts the registry from ctx.
// Returns nil if no registry is present.
func RegistryFromContext(ctx context.Context) *Registry {
	if ctx == nil {
		return nil
	}
	if reg, ok := ctx.Value(registryKey).(*Registry); ok {
		return reg
	}
	return nil
}

// CurrentContext returns the current trace context, or nil.
func (g *Registry) CurrentContext() *TraceContext { return g.current }

// GetContext returns the named context, or nil.
func (g *Registry) GetContext(name string) *TraceContext { return g.contexts[name] }

// NumContexts returns the number of registered contexts.
func (g *Registry) NumContexts() int { return len(g.contexts) }

// SwitchCurrent makes the named context current. The previous current
// context is deactivated and the named one activated.
func (g *Registry) SwitchCurrent(name string) (*TraceContext, error) {
	if g.current != nil && g.current.name == name {
		return g.current, nil
	}
	next, ok := g.contexts[name]
	if !ok {
		return nil, invariantf("missing trace context %s", name)
	}
	if g.current != nil {
		g.current.Deactivate()
	}
	next.Activate()
	g.current = next
	return next, nil
}

// ClearCurrent deactivates the current context and leaves none current.
func (g *Registry) ClearCurrent() {
	if g.current == nil {
		return
	}
	g.current.Deactivate()
	g.current = nil
}

// MakeContext registers a new context with a fresh recorder. An empty
// name is replaced with a random UUID.
func (g *Registry) MakeContext(name string) (*TraceContext, error) {
	if name == "" {
		name = uuid.NewString()
	}
	if _, exists := g.contexts[name]; exists {
		return nil, invariantf("trace context %s already exists", name)
	}
	tc := &TraceContext{name: name, recorder: g.tracer.NewRecorder()}
	g.contexts[name] = tc
	return tc, nil
}

// MakeContextAndSwitch registers a new context and makes it current.
func (g *Registry) MakeContextAndSwitch(name string) (*TraceContext, error) {
	tc, err := g.MakeContext(name)
	if err != nil {
		return nil, err
	}
	return g.SwitchCurrent(tc.name)
}

// FinishContext removes the named context, closes any spans left on its
// stack, and returns its spanset. The context cannot be used afterwards.
func (g *Registry) FinishContext(name string) (*Spanset, error) {
	tc, ok := g.contexts[name]
	if !ok {
		return nil, invariantf("missing trace context %s", name)
	}
	delete(g.contexts, name)
	if g.current == tc {
		g.ClearCurrent()
	}
	for !tc.IsEmpty() {
		tc.PopSpan().Close()
	}
	return tc.Finish()
}

// TraceContext is a stack of open spans sharing one recorder. The top of
// the stack is the innermost span.
type TraceContext struct {
	recorder *Recorder
	name     string
	stack    []*Span
	active   bool
}

// Name returns the context name.
func (c *TraceContext) Name() string { return c.name }

// TraceID returns the trace id of the context's recorder.
func (c *TraceContext) TraceID() TraceID { return c.recorder.TraceID() }

// Recorder returns the recorder backing the context.
func (c *TraceContext) Recorder() *Recorder { return c.recorder }

// IsActive reports whether the context is active.
func (c *TraceContext) IsActive() bool { return c.active }

// Activate activates every span on the stack, outermost first.
func (c *TraceContext) Activate() {
	if c.active {
		return
	}
	for _, span := range c.stack {
		span.Activate()
	}
	c.active = true
}

// Deactivate deactivates every span on the stack, innermost first.
func (c *TraceContext) Deactivate() {
	if !c.active {
		return
	}
	for i := len(c.stack) - 1; i >= 0; i-- {
		c.stack[i].Deactivate()
	}
	c.active = false
}

// PushSpan creates a child of the top span, or a root if the stack is
// empty, and pushes it.
func (c *TraceContext) PushSpan(propagation FailurePropagation, collection FailureCollection) *Span {
	var span *Span
	if n := len(c.stack); n > 0 {
		span = c.stack[n-1].MakeSpan(propagation, collection)
	} else {
		span = c.recorder.MakeSpan(propagation, collection)
	}
	c.stack = append(c.stack, span)
	return span
}

// PopSpan removes and returns the top span.
func (c *TraceContext) PopSpan() *Span {
	span := c.PeekSpan()
	c.stack = c.stack[:len(c.stack)-1]
	return span
}

// PopSpanAndCheck pops the top span after checking it has spanID.
func (c *TraceContext) PopSpanAndCheck(spanID SpanID) *Span {
	span := c.PeekSpanAndCheck(spanID)
	c.stack = c.stack[:len(c.stack)-1]
	return span
}

// PeekSpan returns the top span.
func (c *TraceContext) PeekSpan() *Span {
	if len(c.stack) == 0 {
		c.recorder.violate("PeekSpan", "scope stack is empty", 0)
	}
	return c.stack[len(c.stack)-1]
}

// PeekSpanAndCheck returns the top span after checking it has spanID.
func (c *TraceContext) PeekSpanAndCheck(spanID SpanID) *Span {
	span := c.PeekSpan()
	if span.SpanID() != spanID {
		c.recorder.violate("PeekSpanAndCheck", "unexpected span on top of scope stack", spanID)
	}
	return span
}

// top returns the top span, or nil if the stack is empty.
func (c *TraceContext) top() *Span {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// IsEmpty reports whether no span is on the stack.
func (c *TraceContext) IsEmpty() bool { return len(c.stack) == 0 }

// GetSpan returns the span at stack position index, or nil.
func (c *TraceContext) GetSpan(index int) *Span {
	if index < 0 || index >= len(c.stack) {
		return nil
	}
	return c.stack[index]
}

// NumSpans returns the depth of the span stack.
func (c *TraceContext) NumSpans() int { return len(c.stack) }

// Finish closes the recorder and returns its spanset.
func (c *TraceContext) Finish() (*Spanset, error) {
	return c.recorder.Finish()
}
