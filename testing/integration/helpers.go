package integration

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/zoobzio/spanz"
)

// MockCollector wraps a real collector attached to a tracer.
// Collection is synchronous so assertions need no sleeps.
//
//nolint:govet // Field alignment optimized for test helper readability
type MockCollector struct {
	exported []*spanz.Spanset
	*spanz.Collector
	t  *testing.T
	mu sync.Mutex
}

// NewMockCollector creates a collector that receives every spanset of tracer.
func NewMockCollector(t *testing.T, tracer *spanz.Tracer, bufferSize int) *MockCollector {
	t.Helper()
	collector := spanz.NewCollector(bufferSize)
	collector.SetSyncMode(true)
	collector.Attach(tracer)
	t.Cleanup(collector.Close)
	return &MockCollector{Collector: collector, t: t}
}

// Export returns buffered spansets and clears the buffer.
func (m *MockCollector) Export() []*spanz.Spanset {
	m.mu.Lock()
	defer m.mu.Unlock()

	spansets := m.Collector.Export()
	m.exported = append(m.exported, spansets...)
	return spansets
}

// GetAll returns every spanset seen so far.
func (m *MockCollector) GetAll() []*spanz.Spanset {
	m.Export()

	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*spanz.Spanset, len(m.exported))
	copy(all, m.exported)
	return all
}

// WaitForSpansets waits for expected spansets with timeout.
func (m *MockCollector) WaitForSpansets(expected int, timeout time.Duration) []*spanz.Spanset {
	m.t.Helper()
	var all []*spanz.Spanset
	require.Eventually(m.t, func() bool {
		all = m.GetAll()
		return len(all) >= expected
	}, timeout, 5*time.Millisecond, "expected %d spansets", expected)
	return all
}

// AssertSpansetCount verifies the exact number of spansets received.
func (m *MockCollector) AssertSpansetCount(expected int) {
	m.t.Helper()
	require.Len(m.t, m.GetAll(), expected)
}

// FindSpan returns the first span named name across every spanset.
func (m *MockCollector) FindSpan(name string) spanz.SpanWalker {
	m.t.Helper()
	for _, s := range m.GetAll() {
		if w, ok := FindSpan(s, name); ok {
			return w
		}
	}
	m.t.Errorf("span named %q not found", name)
	return spanz.SpanWalker{}
}

// FindSpan returns the first span of s named name.
func FindSpan(s *spanz.Spanset, name string) (spanz.SpanWalker, bool) {
	for i := 0; i < s.NumSpans(); i++ {
		w := s.Span(uint32(i))
		if w.OperationName() == name {
			return w, true
		}
	}
	return spanz.SpanWalker{}, false
}

// SpanNames lists every operation name of s in index order.
func SpanNames(s *spanz.Spanset) []string {
	names := make([]string, 0, s.NumSpans())
	for i := 0; i < s.NumSpans(); i++ {
		names = append(names, s.Span(uint32(i)).OperationName())
	}
	return names
}

// AssertParentChild verifies child's parent is named parentName.
func AssertParentChild(t *testing.T, s *spanz.Spanset, parentName, childName string) {
	t.Helper()
	child, ok := FindSpan(s, childName)
	require.True(t, ok, "child %q not found", childName)
	require.True(t, child.HasParent(), "%q has no parent", childName)
	require.Equal(t, parentName, child.Parent().OperationName())
}

// FailedNames lists the operation names the spanset reports as failed.
func FailedNames(s *spanz.Spanset) []string {
	errs := s.Errors()
	names := make([]string, 0, errs.NumErrors())
	for i := 0; i < errs.NumErrors(); i++ {
		names = append(names, errs.Error(i).OperationName())
	}
	return names
}

// FakeClock is the part of the clockz fake the scenarios drive.
type FakeClock interface {
	clockz.Clock
	Advance(d time.Duration)
}

// NewTestTracer returns a tracer on a fake clock, closed at cleanup.
func NewTestTracer(t *testing.T) (*spanz.Tracer, FakeClock) {
	t.Helper()
	clock := clockz.NewFakeClockAt(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	tracer := spanz.New().WithClock(clock)
	t.Cleanup(tracer.Close)
	return tracer, clock
}
