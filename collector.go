package spanz

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// closeTimeout bounds how long Close waits for the drain loop.
const closeTimeout = 100 * time.Millisecond

// Collector buffers produced spansets for batch export.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field alignment optimized for readability over memory efficiency
type Collector struct {
	spansets     []*Spanset
	spansetsCh   chan *Spanset
	stopCh       chan struct{}
	done         chan struct{}
	clock        clockz.Clock
	logger       *zap.Logger
	metrics      *Metrics
	droppedCount atomic.Int64
	mu           sync.Mutex
	sendMu       sync.RWMutex // Held by senders across the closed check and send.
	closeOnce    sync.Once
	closed       atomic.Bool
	syncMode     atomic.Bool // Bypass channel for synchronous collection.
}

// NewCollector creates a new collector with the specified buffer size.
func NewCollector(bufferSize int) *Collector {
	c := &Collector{
		spansets:   make([]*Spanset, 0, 8), // Start with small capacity.
		spansetsCh: make(chan *Spanset, bufferSize),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		clock:      clockz.RealClock,
		logger:     zap.NewNop(),
	}
	go c.start()
	return c
}

// NewCollectorFromConfig creates a collector sized and wired like t.
func NewCollectorFromConfig(cfg *Config, t *Tracer) *Collector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := NewCollector(cfg.CollectorBuffer)
	if t != nil {
		c.clock = t.clock
		c.logger = t.logger
		c.metrics = t.metrics
	}
	return c
}

// Attach delivers every spanset produced by t to the collector.
// It returns the handler id for Tracer.RemoveHandler.
func (c *Collector) Attach(t *Tracer) uint64 {
	return t.OnSpansetComplete(c.Collect)
}

// start runs the collector's main loop, receiving spansets from the channel.
func (c *Collector) start() {
	defer close(c.done)

	for {
		select {
		case <-c.stopCh:
			// Drain remaining spansets before shutdown.
			for {
				select {
				case s := <-c.spansetsCh:
					c.buffer(s)
				default:
					return // Clean shutdown.
				}
			}
		case s := <-c.spansetsCh:
			c.buffer(s)
		}
	}
}

// Close shuts down the collector gracefully. Buffered spansets remain
// available through Export.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		// Once the write lock is held no sender is between its closed check
		// and its send, so everything queued is seen by the drain.
		c.sendMu.Lock()
		c.closed.Store(true)
		c.sendMu.Unlock()
		close(c.stopCh)
		select {
		case <-c.done:
			// Clean shutdown completed.
		case <-c.clock.After(closeTimeout):
			c.logger.Warn("collector drain timed out", zap.Duration("timeout", closeTimeout))
		}
	})
}

// Collect attempts to buffer a spanset with backpressure protection.
// If the internal channel is full, the spanset is dropped and the drop
// counter is incremented. In sync mode, spansets are buffered directly.
func (c *Collector) Collect(spanset *Spanset) {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()

	if spanset == nil || c.closed.Load() {
		c.drop(spanset)
		return
	}

	if c.syncMode.Load() {
		c.buffer(spanset)
		return
	}

	select {
	case c.spansetsCh <- spanset:
		// Successfully queued.
	default:
		// Channel full - drop spanset to prevent blocking.
		c.drop(spanset)
	}
}

func (c *Collector) drop(spanset *Spanset) {
	c.droppedCount.Add(1)
	c.metrics.incDropped("collector_buffer")
	if spanset != nil {
		c.logger.Warn("collector full, spanset dropped",
			zap.String("trace_id", spanset.TraceID().String()))
	}
}

// buffer appends a spanset, growing the buffer geometrically.
func (c *Collector) buffer(spanset *Spanset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.spansets) >= cap(c.spansets) {
		currentCap := cap(c.spansets)
		var newCap int
		if currentCap < 1024 {
			// Double capacity for small buffers.
			newCap = currentCap * 2
		} else {
			// Grow by 50% for large buffers to avoid excessive memory usage.
			newCap = currentCap + currentCap/2
		}
		if newCap < 32 {
			newCap = 32
		}
		grown := make([]*Spanset, len(c.spansets), newCap)
		copy(grown, c.spansets)
		c.spansets = grown
	}
	c.spansets = append(c.spansets, spanset)
}

// Export returns all buffered spansets and clears the internal buffer.
// Spansets are immutable, so the returned slice shares them.
func (c *Collector) Export() []*Spanset {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.spansets) == 0 {
		return nil
	}

	result := make([]*Spanset, len(c.spansets))
	copy(result, c.spansets)

	// Only shrink if buffer is very oversized to avoid allocation churn.
	if cap(c.spansets) > 256 && len(c.spansets) < cap(c.spansets)/8 {
		newCap := cap(c.spansets) / 4
		if newCap < 32 {
			newCap = 32
		}
		c.spansets = make([]*Spanset, 0, newCap)
	} else {
		clear(c.spansets)
		c.spansets = c.spansets[:0]
	}

	return result
}

// Count returns the current number of buffered spansets.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spansets)
}

// DroppedCount returns the total number of spansets dropped.
func (c *Collector) DroppedCount() int64 {
	return c.droppedCount.Load()
}

// SetSyncMode enables synchronous collection for testing.
// When enabled, spansets are buffered directly without using the channel.
func (c *Collector) SetSyncMode(sync bool) {
	c.syncMode.Store(sync)
}

// Reset clears all buffered spansets and resets the drop counter.
// Does not affect the running goroutine - use Close for that.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.spansets)
	c.spansets = c.spansets[:0]
	c.droppedCount.Store(0)
}
