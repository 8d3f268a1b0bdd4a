package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/nodegraph/pkg/adapters/memory"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/observability"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *observability.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func numberNetwork(t *testing.T, r *registry.Registry, v float64) *domain.NodeNetwork {
	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeNumber, lit(domain.Number(v)))
	n.Outputs = []domain.NodeOutput{{Node: 1}}
	return n
}

func waitCompletion(t *testing.T, ch <-chan Completion) Completion {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job")
		return Completion{}
	}
}

func TestWorker_WritesFreshResults(t *testing.T) {
	r := registry.Builtin()
	store := memory.NewStore()
	metrics := observability.NewMetrics()
	done := make(chan Completion, 1)

	w := NewWorker(r, WithStore(store), WithWorkerMetrics(metrics), OnComplete(func(c Completion) { done <- c }))
	w.Start(context.Background())
	defer w.Stop()

	doc := uuid.New()
	require.NoError(t, w.Submit(context.Background(), Job{Document: doc, Generation: 1, Network: numberNetwork(t, r, 4)}))

	c := waitCompletion(t, done)
	require.NoError(t, c.Err)
	assert.False(t, c.Stale)
	assert.Equal(t, domain.Number(4), c.Result.Output)

	svg, err := store.Load(context.Background(), ports.ThumbnailKey{Document: doc, Node: []domain.NodeID{1}})
	require.NoError(t, err)
	assert.Contains(t, svg, ">4</text>")
	assert.Equal(t, 1.0, counterValue(t, metrics, "nodegraph_thumbnails_written_total"))
}

func TestWorker_DiscardsStaleResults(t *testing.T) {
	r := registry.Builtin()
	store := memory.NewStore()
	metrics := observability.NewMetrics()
	done := make(chan Completion, 1)

	w := NewWorker(r, WithStore(store), WithWorkerMetrics(metrics), OnComplete(func(c Completion) { done <- c }))
	doc := uuid.New()

	// Queue before starting so the edit lands while the job is pending.
	require.NoError(t, w.Submit(context.Background(), Job{Document: doc, Generation: 1, Network: numberNetwork(t, r, 4)}))
	require.NoError(t, w.Advance(context.Background(), doc, nil, 2))
	w.Start(context.Background())
	defer w.Stop()

	c := waitCompletion(t, done)
	assert.True(t, c.Stale)
	assert.Nil(t, c.Result)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 1.0, counterValue(t, metrics, "nodegraph_stale_results_total"))
	assert.Equal(t, uint64(2), w.Generation(doc, nil))
}

func TestWorker_ReportsEvaluationErrors(t *testing.T) {
	r := registry.Builtin()
	done := make(chan Completion, 1)
	w := NewWorker(r, OnComplete(func(c Completion) { done <- c }))
	w.Start(context.Background())
	defer w.Stop()

	n := domain.NewNetwork()
	n.Nodes[1] = node(t, r, registry.TypeExposure, lit(domain.Number(1)))
	n.Outputs = []domain.NodeOutput{{Node: 1}}
	require.NoError(t, w.Submit(context.Background(), Job{Document: uuid.New(), Generation: 1, Network: n}))

	c := waitCompletion(t, done)
	assert.ErrorIs(t, c.Err, domain.ErrTypeMismatch)
	require.NotNil(t, c.Result, "a failed output still completes the job")
	assert.Len(t, c.Result.Failures, 1)
}

func TestWorker_SubmitNeverBlocks(t *testing.T) {
	r := registry.Builtin()
	metrics := observability.NewMetrics()
	done := make(chan Completion, 4)
	w := NewWorker(r, WithQueueSize(1), WithWorkerMetrics(metrics), OnComplete(func(c Completion) { done <- c }))
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	// Nothing drains the queue until Start.
	require.NoError(t, w.Submit(ctx, Job{Document: a, Generation: 1, Network: numberNetwork(t, r, 1)}))
	require.NoError(t, w.Submit(ctx, Job{Document: a, Generation: 3, Network: numberNetwork(t, r, 3)}))
	require.NoError(t, w.Submit(ctx, Job{Document: a, Generation: 2, Network: numberNetwork(t, r, 2)}))
	assert.ErrorIs(t, w.Submit(ctx, Job{Document: b, Generation: 1, Network: numberNetwork(t, r, 5)}), ErrQueueFull)

	w.Start(ctx)
	defer w.Stop()

	c := waitCompletion(t, done)
	assert.Equal(t, a, c.Job.Document)
	assert.Equal(t, uint64(3), c.Job.Generation, "the newest waiting job wins")
	assert.Equal(t, domain.Number(3), c.Result.Output)
	select {
	case extra := <-done:
		t.Fatalf("unexpected job for generation %d", extra.Job.Generation)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 3.0, counterValue(t, metrics, "nodegraph_skipped_jobs_total"))
}

func TestWorker_SubmitAfterStop(t *testing.T) {
	w := NewWorker(registry.Builtin())
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	err := w.Submit(context.Background(), Job{Document: uuid.New()})
	assert.ErrorIs(t, err, ErrWorkerStopped)
}
