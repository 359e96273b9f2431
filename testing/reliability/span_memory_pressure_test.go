package reliability

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/spanz"
)

// Memory pressure tests grow tags and logs and check encoded spansets
// stay intact and heap use stays bounded.

func TestSpanMemoryPressure(t *testing.T) {
	config := requireLevel(t)

	t.Run("tag_expansion", func(t *testing.T) { testTagExpansion(t, config) })
	t.Run("concurrent_tags", func(t *testing.T) { testConcurrentTags(t, config) })
	t.Run("heap_bound", func(t *testing.T) { testHeapBound(t, config) })
}

// testTagExpansion writes progressively larger tag sets.
func testTagExpansion(t *testing.T, config ReliabilityConfig) {
	tracer := spanz.New()
	defer tracer.Close()

	phases := []int{10, 100, 1000}
	if config.isStress() {
		phases = append(phases, 20000)
	}
	for _, n := range phases {
		t.Run(fmt.Sprintf("tags_%d", n), func(t *testing.T) {
			r := tracer.NewRecorder()
			span := r.MakeSpan(spanz.NoPropagation, spanz.IgnoresPropagation)
			for i := 0; i < n; i++ {
				span.PutTag(spanz.AttrKey{Namespace: fmt.Sprintf("ns%d", i%7), ID: uint32(i)},
					spanz.StringValue(strings.Repeat("x", i%64)))
			}
			spanset, err := r.Finish()
			require.NoError(t, err)

			w := spanset.Span(0)
			require.Equal(t, n, w.NumTags())
			lastKey := spanz.AttrKey{Namespace: fmt.Sprintf("ns%d", (n-1)%7), ID: uint32(n - 1)}
			v, err := w.Tag(lastKey)
			require.NoError(t, err)
			assert.Equal(t, strings.Repeat("x", (n-1)%64), v.Str())
			assert.LessOrEqual(t, spanset.Reader().NumNamespaces(), 7)
		})
	}
}

// testConcurrentTags mutates one span's tags and logs from many goroutines.
func testConcurrentTags(t *testing.T, config ReliabilityConfig) {
	tracer := spanz.New()
	defer tracer.Close()
	r := tracer.NewRecorder()
	span := r.MakeSpan(spanz.NoPropagation, spanz.IgnoresPropagation)

	workers := config.scale(8, config.MaxGoroutines)
	perWorker := config.scale(100, 1000)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				span.PutTag(spanz.AttrKey{Namespace: "worker", ID: uint32(w*perWorker + i)}, spanz.Int64Value(int64(i)))
				if i%10 == 0 {
					span.LogInfo("worker %d step %d", w, i)
				}
			}
		}(w)
	}
	wg.Wait()

	spanset, err := r.Finish()
	require.NoError(t, err)
	w := spanset.Span(0)
	assert.Equal(t, workers*perWorker, w.NumTags())
	assert.Equal(t, workers*perWorker/10, w.NumLogs())
}

// testHeapBound drops many spansets and checks the heap returns close to
// its starting size.
func testHeapBound(t *testing.T, config ReliabilityConfig) {
	tracer := spanz.New()
	defer tracer.Close()

	var start runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&start)

	traces := config.scale(2000, 50000)
	for i := 0; i < traces; i++ {
		r := tracer.NewRecorder()
		root := r.MakeSpan(spanz.NoPropagation, spanz.AnyChildFailed)
		for c := 0; c < 8; c++ {
			child := root.MakeChild()
			child.PutTag(spanz.AttrKey{Namespace: "load", ID: uint32(c)}, spanz.UInt64Value(uint64(i)))
			child.LogInfo("child %d", c)
		}
		_, err := r.Finish()
		require.NoError(t, err)
	}

	var end runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&end)

	growthMB := (int64(end.HeapAlloc) - int64(start.HeapAlloc)) / (1 << 20)
	t.Logf("heap growth %d MB over %d traces", growthMB, traces)
	assert.Less(t, growthMB, int64(config.MaxMemoryMB))
}
