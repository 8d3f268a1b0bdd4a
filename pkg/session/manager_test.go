package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/nodegraph"
	"github.com/aretw0/nodegraph/internal/editor"
	"github.com/aretw0/nodegraph/pkg/adapters/memory"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(t *testing.T) *domain.NodeNetwork {
	t.Helper()
	r := registry.Builtin()
	n := domain.NewNetwork()
	num, err := r.NewNode(registry.TypeNumber, domain.IVec2{})
	require.NoError(t, err)
	n.Nodes[1] = num
	n.Outputs = []domain.NodeOutput{{Node: 1}}
	return n
}

func TestManager_OpensOnce(t *testing.T) {
	var opened atomic.Int32
	loader := memory.NewLoader(map[string]*domain.NodeNetwork{"a": counter(t)})
	open := FromLoader(loader)
	mgr := NewManager(func(ctx context.Context, name string) (*nodegraph.Document, error) {
		opened.Add(1)
		return open(ctx, name)
	})
	ctx := context.Background()

	_, err := mgr.Dispatch(ctx, "a", editor.SetInputValue{Node: 1, Index: 0, Value: domain.Number(9)})
	require.NoError(t, err)
	res, err := mgr.Evaluate(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(9), res.Output)
	assert.Equal(t, int32(1), opened.Load())
	assert.Equal(t, []string{"a"}, mgr.List())

	require.NoError(t, mgr.Close(ctx, "a"))
	assert.Empty(t, mgr.List())

	_, err = mgr.Evaluate(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nil)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_ = mgr.WithLock(ctx, fmt.Sprintf("doc-%d", i), func(context.Context) error { return nil })
	}
	assert.Empty(t, mgr.locks, "locks must be released once unused")
}

func TestManager_SerializesPerDocument(t *testing.T) {
	mgr := NewManager(nil)
	ctx := context.Background()

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.WithLock(ctx, "shared", func(context.Context) error {
				now := active.Add(1)
				if now > peak.Load() {
					peak.Store(now)
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), peak.Load())
}

type recordingLocker struct {
	mu   sync.Mutex
	keys []string
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return func(context.Context) error { return nil }, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(nil, WithLocker(locker))

	require.NoError(t, mgr.WithLock(context.Background(), "a", func(context.Context) error { return nil }))
	assert.Equal(t, []string{"document:a"}, locker.keys)
}
