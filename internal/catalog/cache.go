package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"finitefield.org/collectibles-web/internal/platform/observability"
)

// DefaultLookupTTL bounds how long category and brand lookups are reused.
const DefaultLookupTTL = 5 * time.Minute

const (
	categoriesKey = "catalog:lookup:categories"
	brandsKey     = "catalog:lookup:brands"
)

// ErrCacheMiss is returned by LookupStore implementations when no fresh entry exists.
var ErrCacheMiss = errors.New("catalog: cache miss")

// LookupStore persists encoded lookup lists for a bounded time.
type LookupStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// RedisStore keeps entries in Redis so several storefront instances share one lookup copy.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("catalog: redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("catalog: redis del: %w", err)
	}
	return nil
}

// CachedLookups decorates a Service so category and brand lookups are served from a store.
// Product reads pass straight through.
type CachedLookups struct {
	Service
	store LookupStore
	ttl   time.Duration
}

// NewCachedLookups wraps next. A non-positive ttl falls back to DefaultLookupTTL.
func NewCachedLookups(next Service, store LookupStore, ttl time.Duration) *CachedLookups {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &CachedLookups{Service: next, store: store, ttl: ttl}
}

// ListCategories returns cached categories, loading them on a miss.
func (c *CachedLookups) ListCategories(ctx context.Context) ([]Category, error) {
	return cachedLookup(ctx, c.store, categoriesKey, c.ttl, c.Service.ListCategories)
}

// ListBrands returns cached brands, loading them on a miss.
func (c *CachedLookups) ListBrands(ctx context.Context) ([]Brand, error) {
	return cachedLookup(ctx, c.store, brandsKey, c.ttl, c.Service.ListBrands)
}

// Invalidate drops both lookup entries.
func (c *CachedLookups) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, categoriesKey, brandsKey)
}

func cachedLookup[T any](ctx context.Context, store LookupStore, key string, ttl time.Duration, load func(context.Context) ([]T, error)) ([]T, error) {
	logger := observability.FromContext(ctx)

	raw, err := store.Get(ctx, key)
	switch {
	case err == nil:
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		logger.Warn("discarding undecodable lookup cache entry", zap.String("key", key))
	case !errors.Is(err, ErrCacheMiss):
		logger.Warn("lookup cache read failed", zap.String("key", key), zap.Error(err))
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(items); err == nil {
		if err := store.Set(ctx, key, encoded, ttl); err != nil {
			logger.Warn("lookup cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}
