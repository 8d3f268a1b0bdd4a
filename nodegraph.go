package nodegraph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/nodegraph/internal/compiler"
	"github.com/aretw0/nodegraph/internal/editor"
	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/internal/runtime"
	"github.com/aretw0/nodegraph/internal/validator"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/observability"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/google/uuid"
)

type (
	// Request is an edit command.
	Request = editor.Request
	// Response is a message from the editor to the host.
	Response = editor.Response
	// Snapshot is the UI view of the active network.
	Snapshot = editor.Snapshot
	// Result is the outcome of an evaluation.
	Result = runtime.Result
)

// Document is an editable, evaluable node network.
// Its methods are safe for concurrent use.
type Document struct {
	id      uuid.UUID
	name    string
	layer   []uint64
	catalog *registry.Registry
	logger  *slog.Logger
	metrics *observability.Metrics
	store   ports.ThumbnailStore
	worker  *runtime.Worker
	ids     ports.IDGenerator
	inputs  []domain.TaggedValue

	mu         sync.Mutex
	network    *domain.NodeNetwork
	dispatcher *editor.Dispatcher
	executor   *runtime.Executor
}

// Option configures a Document.
type Option func(*Document)

// WithID sets the document id used to key thumbnails and jobs.
func WithID(id uuid.UUID) Option {
	return func(d *Document) {
		d.id = id
	}
}

// WithName sets a descriptive name, added to every log line.
func WithName(name string) Option {
	return func(d *Document) {
		d.name = name
	}
}

// WithLayer sets the layer path the network belongs to.
func WithLayer(path []uint64) Option {
	return func(d *Document) {
		d.layer = slices.Clone(path)
	}
}

// WithCatalog sets the node type catalog. Defaults to registry.Builtin().
func WithCatalog(r *registry.Registry) Option {
	return func(d *Document) {
		d.catalog = r
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// WithMetrics records edit and evaluation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Document) {
		d.metrics = m
	}
}

// WithThumbnails caches node thumbnails in store.
func WithThumbnails(store ports.ThumbnailStore) Option {
	return func(d *Document) {
		d.store = store
	}
}

// WithWorker hands rerender requests to a background worker. The caller owns
// the worker and must start and stop it.
func WithWorker(w *runtime.Worker) Option {
	return func(d *Document) {
		d.worker = w
	}
}

// WithIDGenerator sets the source of ids for created and pasted nodes.
func WithIDGenerator(ids ports.IDGenerator) Option {
	return func(d *Document) {
		d.ids = ids
	}
}

// WithInputs feeds the boundary inputs of the root network.
func WithInputs(values ...domain.TaggedValue) Option {
	return func(d *Document) {
		d.inputs = values
	}
}

// New wraps network in a Document. The document takes ownership of network.
func New(network *domain.NodeNetwork, opts ...Option) *Document {
	d := &Document{id: uuid.New(), network: network}
	for _, opt := range opts {
		opt(d)
	}
	if d.network == nil {
		d.network = domain.NewNetwork()
	}
	if d.catalog == nil {
		d.catalog = registry.Builtin()
	}
	if d.logger == nil {
		d.logger = logging.NewNop()
	}
	if d.name != "" {
		d.logger = d.logger.With("document", d.name)
	}

	handlerOpts := []editor.Option{
		editor.WithLogger(d.logger),
		editor.WithMetrics(d.metrics),
		editor.WithLayerPath(d.layer),
	}
	if d.ids != nil {
		handlerOpts = append(handlerOpts, editor.WithIDGenerator(d.ids))
	}
	if d.store != nil {
		handlerOpts = append(handlerOpts, editor.WithThumbnails(d.store, d.id))
	}
	d.dispatcher = editor.NewDispatcher(editor.NewHandler(d.catalog, handlerOpts...))
	d.executor = runtime.NewExecutor(runtime.WithLogger(d.logger), runtime.WithMetrics(d.metrics))
	return d
}

// Open loads the named document through loader.
func Open(ctx context.Context, loader ports.DocumentLoader, name string, opts ...Option) (*Document, error) {
	network, err := loader.LoadDocument(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return New(network, append([]Option{WithName(name)}, opts...)...), nil
}

// ID returns the document id.
func (d *Document) ID() uuid.UUID { return d.id }

// Name returns the document name, if any.
func (d *Document) Name() string { return d.name }

// Catalog returns the node type catalog.
func (d *Document) Catalog() *registry.Registry { return d.catalog }

// Generation returns the generation of the root network.
func (d *Document) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.network.Generation
}

// Network returns a deep copy of the root network.
func (d *Document) Network() *domain.NodeNetwork {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.network.Clone()
}

// Dispatch applies reqs and their follow-ups. Rejected requests do not stop
// the queue; their errors are joined in the result. A rerender is handed to
// the worker after the document is unlocked, so a busy worker never delays
// the next edit.
func (d *Document) Dispatch(ctx context.Context, reqs ...Request) ([]Response, error) {
	d.mu.Lock()
	responses, err := d.dispatcher.Dispatch(ctx, d.network, reqs...)

	var latest uint64
	rerender := false
	for _, r := range responses {
		if rr, ok := r.(editor.Rerender); ok {
			rerender = true
			latest = max(latest, rr.Generation)
		}
	}
	var job *runtime.Job
	if rerender && d.worker != nil {
		job = &runtime.Job{Document: d.id, Layer: slices.Clone(d.layer), Generation: latest, Network: d.network.Clone()}
	}
	d.mu.Unlock()

	if job != nil {
		d.schedule(ctx, *job)
	}
	return responses, err
}

// schedule queues a background evaluation. The worker keeps the newest job
// per document layer, so out-of-order calls are harmless.
func (d *Document) schedule(ctx context.Context, job runtime.Job) {
	if err := d.worker.Advance(ctx, job.Document, job.Layer, job.Generation); err != nil {
		d.logger.Warn("failed to invalidate thumbnails", "error", err)
	}
	if err := d.worker.Submit(ctx, job); err != nil {
		d.logger.Warn("failed to schedule evaluation", "generation", job.Generation, "error", err)
	}
}

// Flatten lowers the root network to a proto network.
func (d *Document) Flatten(ctx context.Context) (*compiler.ProtoNetwork, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flatten(ctx)
}

func (d *Document) flatten(ctx context.Context) (*compiler.ProtoNetwork, error) {
	return compiler.Compile(ctx, d.network, d.catalog,
		compiler.WithLogger(d.logger),
		compiler.WithInputs(d.inputs...),
	)
}

// Evaluate flattens and runs the root network synchronously. With a
// thumbnail store configured, thumbnails of every intermediate are written.
// When the primary output fails, the partial Result is returned with the error.
func (d *Document) Evaluate(ctx context.Context) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	proto, err := d.flatten(ctx)
	if err != nil {
		return nil, err
	}
	res, evalErr := d.executor.Evaluate(ctx, proto)
	if res == nil {
		return nil, evalErr
	}
	if d.store != nil {
		n, err := runtime.WriteThumbnails(ctx, d.store, d.id, d.layer, res)
		d.metrics.ThumbnailsWritten(n)
		if err != nil {
			d.logger.Warn("failed to write thumbnails", "error", err)
		}
	}
	return res, evalErr
}

// Snapshot describes the active network for the UI.
func (d *Document) Snapshot(ctx context.Context) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatcher.Handler().Snapshot(ctx, d.network)
}

// Validate checks the root network and everything nested in it.
func (d *Document) Validate() validator.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return validator.Validate(d.network, d.catalog)
}

// Breadcrumb returns the names of the networks leading to the active one.
func (d *Document) Breadcrumb() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatcher.Handler().Breadcrumb(d.network)
}

// Selection returns the selected nodes of the active network.
func (d *Document) Selection() []domain.NodeID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.dispatcher.Handler().Selected)
}

// SelectionActions describes the hide and preview buttons for the selection.
func (d *Document) SelectionActions() editor.SelectionActions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatcher.Handler().SelectionActions(d.network)
}

// DecodeRequest parses a request envelope such as
// {"request": "DeleteNode", "params": {"id": 3}}.
func DecodeRequest(data []byte) (Request, error) {
	return editor.DecodeRequest(data)
}

// Describe returns a one-line summary of a value.
func Describe(v domain.TaggedValue) string {
	return runtime.Describe(v)
}
