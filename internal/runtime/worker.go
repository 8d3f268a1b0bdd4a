package runtime

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/nodegraph/internal/compiler"
	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/observability"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/google/uuid"
)

var (
	// ErrWorkerStopped is returned by Submit after Stop.
	ErrWorkerStopped = errors.New("worker stopped")
	// ErrQueueFull is returned by Submit when every queue slot holds a job
	// for another document layer. The job is dropped.
	ErrQueueFull = errors.New("evaluation queue full")
)

// Job asks for one network to be flattened, evaluated and thumbnailed.
type Job struct {
	Document uuid.UUID
	Layer    []uint64
	// Generation is the network generation at dispatch time.
	Generation uint64
	// Network must be a private copy; the worker reads it concurrently with edits.
	Network *domain.NodeNetwork
}

func (j Job) scope() string {
	return ports.ThumbnailKey{Document: j.Document, Layer: j.Layer}.Scope()
}

// Completion reports the outcome of a job.
type Completion struct {
	Job    Job
	Result *Result
	Err    error
	// Stale is set when the network changed while the job ran. The result is
	// discarded and no thumbnails are written.
	Stale bool
}

// Worker evaluates jobs on a pool of goroutines, off the edit path.
type Worker struct {
	catalog  compiler.Catalog
	executor *Executor
	store    ports.ThumbnailStore
	logger   *slog.Logger
	metrics  *observability.Metrics
	size     int
	queue    int
	onDone   func(Completion)

	// ready carries the scopes that have a pending job.
	ready chan string
	wg    sync.WaitGroup

	// mu guards current and pending, and makes the stale check and the
	// thumbnail write of a job atomic with respect to Advance.
	mu      sync.Mutex
	current map[string]uint64
	pending map[string]Job

	stateMu sync.RWMutex
	started bool
	stopped bool
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithPoolSize sets the number of evaluation goroutines.
func WithPoolSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.size = n
		}
	}
}

// WithQueueSize sets how many document layers may have a job waiting.
func WithQueueSize(n int) WorkerOption {
	return func(w *Worker) {
		if n >= 0 {
			w.queue = n
		}
	}
}

// WithStore sets where thumbnails of fresh results are written.
func WithStore(store ports.ThumbnailStore) WorkerOption {
	return func(w *Worker) {
		w.store = store
	}
}

// WithExecutor replaces the default executor.
func WithExecutor(e *Executor) WorkerOption {
	return func(w *Worker) {
		w.executor = e
	}
}

// WithWorkerLogger configures a logger for the Worker.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithWorkerMetrics counts stale results and written thumbnails.
func WithWorkerMetrics(m *observability.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

// OnComplete registers a callback invoked from the pool goroutines after
// every job, fresh or stale.
func OnComplete(fn func(Completion)) WorkerOption {
	return func(w *Worker) {
		w.onDone = fn
	}
}

// NewWorker creates a Worker. Call Start before submitting jobs.
func NewWorker(catalog compiler.Catalog, opts ...WorkerOption) *Worker {
	w := &Worker{
		catalog: catalog,
		logger:  logging.NewNop(),
		size:    2,
		queue:   16,
		current: make(map[string]uint64),
		pending: make(map[string]Job),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.executor == nil {
		w.executor = NewExecutor(WithLogger(w.logger), WithMetrics(w.metrics))
	}
	w.ready = make(chan string, w.queue)
	return w
}

// Start launches the pool. Workers exit when ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	for i := 0; i < w.size; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case scope, ok := <-w.ready:
					if !ok {
						return
					}
					if job, ok := w.take(scope); ok {
						w.process(ctx, job)
					}
				}
			}
		}()
	}
}

// Stop closes the queue and waits for running jobs to finish.
func (w *Worker) Stop() {
	w.stateMu.Lock()
	if w.stopped {
		w.stateMu.Unlock()
		return
	}
	w.stopped = true
	close(w.ready)
	w.stateMu.Unlock()
	w.wg.Wait()
}

// Submit queues job without blocking. A job still waiting for the same
// document layer is replaced when job is newer, so at most one job per layer
// is pending. ErrQueueFull is returned when no slot is free.
func (w *Worker) Submit(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	if w.stopped {
		return ErrWorkerStopped
	}

	scope := job.scope()
	w.mu.Lock()
	defer w.mu.Unlock()
	if job.Generation > w.current[scope] {
		w.current[scope] = job.Generation
	}
	if queued, ok := w.pending[scope]; ok {
		if job.Generation >= queued.Generation {
			w.pending[scope] = job
		}
		w.metrics.SkippedJob(observability.ReasonCoalesced)
		return nil
	}

	select {
	case w.ready <- scope:
		w.pending[scope] = job
		return nil
	default:
		w.metrics.SkippedJob(observability.ReasonQueueFull)
		w.logger.Warn("dropping evaluation", "document", job.Document, "generation", job.Generation)
		return ErrQueueFull
	}
}

// take removes and returns the pending job of scope.
func (w *Worker) take(scope string) (Job, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	job, ok := w.pending[scope]
	delete(w.pending, scope)
	return job, ok
}

// Advance records that the document layer reached generation and drops its
// cached thumbnails. Jobs started at an older generation become stale.
func (w *Worker) Advance(ctx context.Context, document uuid.UUID, layer []uint64, generation uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	scope := Job{Document: document, Layer: layer}.scope()
	if generation > w.current[scope] {
		w.current[scope] = generation
	}
	if w.store == nil {
		return nil
	}
	return w.store.Invalidate(ctx, document, slices.Clone(layer))
}

// Generation returns the latest generation seen for a document layer.
func (w *Worker) Generation(document uuid.UUID, layer []uint64) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current[Job{Document: document, Layer: layer}.scope()]
}

func (w *Worker) process(ctx context.Context, job Job) {
	done := func(c Completion) {
		if w.onDone != nil {
			w.onDone(c)
		}
	}
	logger := w.logger.With("document", job.Document, "generation", job.Generation)

	if w.isStale(job) {
		w.discard(logger, job)
		done(Completion{Job: job, Stale: true})
		return
	}

	proto, err := compiler.Compile(ctx, job.Network, w.catalog, compiler.WithLogger(w.logger))
	if err != nil {
		logger.Warn("failed to flatten network", "error", err)
		done(Completion{Job: job, Err: err})
		return
	}
	res, evalErr := w.executor.Evaluate(ctx, proto)
	if res == nil {
		done(Completion{Job: job, Err: evalErr})
		return
	}

	// Nodes that evaluated still get thumbnails when an output failed.
	stale, err := w.commit(ctx, job, res)
	if stale {
		w.discard(logger, job)
		done(Completion{Job: job, Stale: true})
		return
	}
	if err != nil {
		logger.Warn("failed to write thumbnails", "error", err)
	}
	done(Completion{Job: job, Result: res, Err: errors.Join(evalErr, err)})
}

func (w *Worker) isStale(job Job) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return job.Generation != w.current[job.scope()]
}

// commit writes thumbnails unless the job went stale.
func (w *Worker) commit(ctx context.Context, job Job, res *Result) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if job.Generation != w.current[job.scope()] {
		return true, nil
	}
	if w.store == nil {
		return false, nil
	}
	n, err := WriteThumbnails(ctx, w.store, job.Document, job.Layer, res)
	w.metrics.ThumbnailsWritten(n)
	return false, err
}

func (w *Worker) discard(logger *slog.Logger, job Job) {
	w.metrics.StaleResult()
	logger.Debug("discarding stale result", "current", w.Generation(job.Document, job.Layer))
}
