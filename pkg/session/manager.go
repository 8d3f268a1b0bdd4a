package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/nodegraph"
	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/pkg/ports"
)

// OpenFunc opens the named document. It is called once per document.
type OpenFunc func(ctx context.Context, name string) (*nodegraph.Document, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates document access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	open OpenFunc

	mu    sync.Mutex
	locks map[string]*lockEntry
	docs  map[string]*nodegraph.Document

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock outlives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager opening documents with open.
func NewManager(open OpenFunc, opts ...Option) *Manager {
	m := &Manager{
		open:    open,
		locks:   make(map[string]*lockEntry),
		docs:    make(map[string]*nodegraph.Document),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromLoader returns an OpenFunc reading documents through loader.
func FromLoader(loader ports.DocumentLoader, opts ...nodegraph.Option) OpenFunc {
	return func(ctx context.Context, name string) (*nodegraph.Document, error) {
		return nodegraph.Open(ctx, loader, name, opts...)
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(name) after unlocking.
func (m *Manager) acquire(name string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		entry = &lockEntry{}
		m.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, name)
	}
}

// WithLock executes fn while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, name string, fn func(context.Context) error) error {
	entry := m.acquire(name)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(name)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, "document:"+name, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"document", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// WithDocument runs fn on the named document under its lock, opening it first
// if needed.
func (m *Manager) WithDocument(ctx context.Context, name string, fn func(context.Context, *nodegraph.Document) error) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		m.mu.Lock()
		doc, ok := m.docs[name]
		m.mu.Unlock()

		if !ok {
			var err error
			doc, err = m.open(ctx, name)
			if err != nil {
				return err
			}
			m.mu.Lock()
			m.docs[name] = doc
			m.mu.Unlock()
			m.logger.Debug("document opened", "document", name, "id", doc.ID())
		}
		return fn(ctx, doc)
	})
}

// Dispatch applies edit requests to the named document.
func (m *Manager) Dispatch(ctx context.Context, name string, reqs ...nodegraph.Request) ([]nodegraph.Response, error) {
	var responses []nodegraph.Response
	err := m.WithDocument(ctx, name, func(ctx context.Context, doc *nodegraph.Document) error {
		var err error
		responses, err = doc.Dispatch(ctx, reqs...)
		return err
	})
	return responses, err
}

// Evaluate runs the named document.
func (m *Manager) Evaluate(ctx context.Context, name string) (*nodegraph.Result, error) {
	var res *nodegraph.Result
	err := m.WithDocument(ctx, name, func(ctx context.Context, doc *nodegraph.Document) error {
		var err error
		res, err = doc.Evaluate(ctx)
		return err
	})
	return res, err
}

// Close forgets the named document. Unsaved edits are lost.
func (m *Manager) Close(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.docs, name)
		return nil
	})
}

// List returns the names of the open documents.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
