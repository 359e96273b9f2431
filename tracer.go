package spanz

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// SpansetHandler is called once per recorder when its spanset is first produced.
type SpansetHandler func(spanset *Spanset)

type handlerEntry struct {
	handler SpansetHandler
	id      uint64
	async   bool
}

// Tracer creates recorders and owns what they share: the clock, span id
// generation, logging, metrics and completion handlers.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field order optimized for functionality over memory
type Tracer struct {
	handlers        []handlerEntry
	panicHook       func(handlerID uint64, r interface{})
	workers         *workerPool
	spanIDPool      *IDPool[SpanID]
	clock           clockz.Clock
	logger          *zap.Logger
	metrics         *Metrics
	ids             *idGenerator
	handlersLock    sync.RWMutex
	idPoolOnce      sync.Once
	idPoolSize      int
	nextID          atomic.Uint64
	droppedSpansets atomic.Uint64
}

// New creates a new tracer.
// Uses the real clock and a no-op logger.
func New() *Tracer {
	return &Tracer{
		handlers:   make([]handlerEntry, 0),
		clock:      clockz.RealClock,
		logger:     zap.NewNop(),
		ids:        defaultIDs,
		idPoolSize: DefaultConfig().idPoolSize(),
	}
}

// NewFromConfig builds a tracer with the logger, metrics, id pool and
// worker pool described by cfg.
func NewFromConfig(cfg *Config) (*Tracer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	t := New()
	t.logger = newLoggerOrNop(cfg.Logging)
	t.idPoolSize = cfg.idPoolSize()
	if cfg.Metrics {
		t.metrics = NewMetrics(prometheus.DefaultRegisterer)
	}
	if cfg.AsyncWorkers > 0 && cfg.AsyncQueueSize > 0 {
		if err := t.EnableWorkerPool(cfg.AsyncWorkers, cfg.AsyncQueueSize); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// derive copies the tracer's settings, leaving handlers and pools behind.
func (t *Tracer) derive() *Tracer {
	return &Tracer{
		handlers:   make([]handlerEntry, 0),
		clock:      t.clock,
		logger:     t.logger,
		metrics:    t.metrics,
		ids:        t.ids,
		idPoolSize: t.idPoolSize,
	}
}

// WithClock returns a new tracer with the specified clock.
// Enables clock injection for deterministic testing.
func (t *Tracer) WithClock(clock clockz.Clock) *Tracer {
	d := t.derive()
	d.clock = clock
	return d
}

// WithLogger returns a new tracer that logs to logger.
func (t *Tracer) WithLogger(logger *zap.Logger) *Tracer {
	d := t.derive()
	if logger == nil {
		logger = zap.NewNop()
	}
	d.logger = logger
	return d
}

// WithMetrics returns a new tracer that records to m.
func (t *Tracer) WithMetrics(m *Metrics) *Tracer {
	d := t.derive()
	d.metrics = m
	return d
}

// Logger returns the tracer's logger.
func (t *Tracer) Logger() *zap.Logger { return t.logger }

// Clock returns the tracer's clock.
func (t *Tracer) Clock() clockz.Clock { return t.clock }

func (t *Tracer) now() time.Time { return t.clock.Now() }

// ensureIDPool initializes the span id pool if not already created.
func (t *Tracer) ensureIDPool() {
	t.idPoolOnce.Do(func() {
		t.spanIDPool = NewIDPool(t.idPoolSize, func() SpanID {
			return t.ids.spanID(t.clock.Now())
		})
	})
}

// generateSpanID returns a fresh span id from the pool.
func (t *Tracer) generateSpanID() SpanID {
	t.ensureIDPool()
	return t.spanIDPool.Get()
}

// NewRecorder starts a trace with a fresh trace id.
func (t *Tracer) NewRecorder() *Recorder {
	return newRecorder(t, t.ids.traceID(t.now()))
}

// NewRecorderWithID starts a trace that continues traceID.
func (t *Tracer) NewRecorderWithID(traceID TraceID) *Recorder {
	if !traceID.IsValid() {
		traceID = t.ids.traceID(t.now())
	}
	return newRecorder(t, traceID)
}

// OnSpansetComplete registers a synchronous handler called when spansets are produced.
func (t *Tracer) OnSpansetComplete(handler SpansetHandler) uint64 {
	return t.registerHandler(handler, false)
}

// OnSpansetCompleteAsync registers an asynchronous handler called when spansets are produced.
func (t *Tracer) OnSpansetCompleteAsync(handler SpansetHandler) uint64 {
	return t.registerHandler(handler, true)
}

func (t *Tracer) registerHandler(handler SpansetHandler, async bool) uint64 {
	if handler == nil {
		return 0
	}

	id := t.nextID.Add(1)

	t.handlersLock.Lock()
	defer t.handlersLock.Unlock()

	t.handlers = append(t.handlers, handlerEntry{
		id:      id,
		handler: handler,
		async:   async,
	})

	return id
}

// RemoveHandler removes a handler by ID.
func (t *Tracer) RemoveHandler(id uint64) {
	t.handlersLock.Lock()
	defer t.handlersLock.Unlock()

	// Preserve order
	for i, h := range t.handlers {
		if h.id == id {
			copy(t.handlers[i:], t.handlers[i+1:])
			t.handlers = t.handlers[:len(t.handlers)-1]
			return
		}
	}
}

// SetPanicHook sets a function to be called when a handler panics.
func (t *Tracer) SetPanicHook(hook func(handlerID uint64, r interface{})) {
	t.panicHook = hook
}

// executeHandlers calls all registered handlers with the produced spanset.
// Async handlers are queued under the read lock so Close never races a
// submission to the pool it is shutting down.
func (t *Tracer) executeHandlers(spanset *Spanset) {
	t.handlersLock.RLock()
	if len(t.handlers) == 0 {
		t.handlersLock.RUnlock()
		return
	}

	inline := make([]handlerEntry, 0, len(t.handlers))
	for _, h := range t.handlers {
		if !h.async {
			inline = append(inline, h)
			continue
		}
		entry := h
		if t.workers == nil {
			go t.safeCall(entry, spanset)
			continue
		}
		if !t.workers.submit(func() { t.safeCall(entry, spanset) }) {
			t.metrics.incDropped("worker_queue")
			t.logger.Warn("async handler queue full, spanset dropped",
				zap.Uint64("handler_id", entry.id),
				zap.String("trace_id", spanset.TraceID().String()),
			)
		}
	}
	t.handlersLock.RUnlock()

	for _, h := range inline {
		t.safeCall(h, spanset)
	}
}

func (t *Tracer) safeCall(entry handlerEntry, spanset *Spanset) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("spanset handler panicked",
				zap.Uint64("handler_id", entry.id),
				zap.Any("panic", r),
			)
			if t.panicHook != nil {
				t.panicHook(entry.id, r)
			}
		}
	}()
	entry.handler(spanset)
}

// EnableWorkerPool creates a bounded worker pool for async handlers.
func (t *Tracer) EnableWorkerPool(workers, queueSize int) error {
	t.handlersLock.Lock()
	defer t.handlersLock.Unlock()

	if t.workers != nil {
		return errors.New("worker pool already enabled")
	}
	if workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if queueSize <= 0 {
		return errors.New("queueSize must be > 0")
	}

	t.workers = &workerPool{
		tasks:   make(chan func(), queueSize),
		stop:    make(chan struct{}),
		dropped: &t.droppedSpansets,
	}

	t.workers.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go t.workers.run()
	}

	return nil
}

// DroppedSpansets returns the number of spansets dropped due to a full worker queue.
func (t *Tracer) DroppedSpansets() uint64 {
	return t.droppedSpansets.Load()
}

// Close shuts down the tracer gracefully and cleans up resources.
// Recorders created by the tracer keep working; their spansets are no
// longer delivered to handlers.
func (t *Tracer) Close() {
	// Stop new handler executions and detach the pool
	t.handlersLock.Lock()
	t.handlers = nil
	workers := t.workers
	t.workers = nil
	t.handlersLock.Unlock()

	// Run queued async tasks and wait for them
	if workers != nil {
		workers.shutdown()
	}

	if t.spanIDPool != nil {
		t.spanIDPool.Close()
	}
	_ = t.logger.Sync()
}

// workerPool manages a fixed number of workers for processing async handlers.
//
//nolint:govet // Field order optimized for functionality over memory
type workerPool struct {
	tasks   chan func()
	stop    chan struct{}
	dropped *atomic.Uint64
	wg      sync.WaitGroup
}

func (w *workerPool) run() {
	defer w.wg.Done()
	for {
		select {
		case task := <-w.tasks:
			task()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

// drain runs tasks still queued at shutdown.
func (w *workerPool) drain() {
	for {
		select {
		case task := <-w.tasks:
			task()
		default:
			return
		}
	}
}

// submit enqueues task, reporting false when the queue is full.
func (w *workerPool) submit(task func()) bool {
	select {
	case w.tasks <- task:
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

func (w *workerPool) shutdown() {
	close(w.stop)
	w.wg.Wait()
}
