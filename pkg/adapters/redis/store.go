package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.ThumbnailStore using Redis.
// Each thumbnail is a string key; a set per document layer indexes the keys
// so a layer can be invalidated in one round trip.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL expires thumbnails after ttl. Zero keeps them until invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix namespaces every key written by the Store.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "nodegraph:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(key ports.ThumbnailKey) string {
	return s.prefix + "thumb:" + key.String()
}

func (s *Store) index(scope string) string {
	return s.prefix + "thumbs:" + scope
}

// Save stores the thumbnail and records it in the layer index.
func (s *Store) Save(ctx context.Context, key ports.ThumbnailKey, svg string) error {
	k, idx := s.key(key), s.index(key.Scope())
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, k, svg, s.ttl)
		pipe.SAdd(ctx, idx, k)
		if s.ttl > 0 {
			pipe.Expire(ctx, idx, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save thumbnail %s: %w", key, err)
	}
	return nil
}

// Load retrieves a thumbnail.
func (s *Store) Load(ctx context.Context, key ports.ThumbnailKey) (string, error) {
	svg, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, backend.Nil) {
		return "", ports.ErrThumbnailNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load thumbnail %s: %w", key, err)
	}
	return svg, nil
}

// Invalidate deletes every thumbnail indexed under the document layer.
func (s *Store) Invalidate(ctx context.Context, document uuid.UUID, layer []uint64) error {
	idx := s.index(ports.ThumbnailKey{Document: document, Layer: layer}.Scope())
	keys, err := s.client.SMembers(ctx, idx).Result()
	if err != nil {
		return fmt.Errorf("failed to list thumbnails: %w", err)
	}
	if err := s.client.Del(ctx, append(keys, idx)...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate thumbnails: %w", err)
	}
	return nil
}
