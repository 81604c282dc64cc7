// internal/adapters/redis_adapter/cached_client.go
package redis_a

import (
	"context"
	"log/slog"
	"time"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/ports"
	"github.com/ammerola/resell-dashboard/internal/observability"
)

// CachedClient is a read-through list cache in front of a ResourceClient.
// Any successful mutation drops the cached list. Redis failures degrade to
// calling the wrapped client directly.
type CachedClient[T domain.Resource] struct {
	next    ports.ResourceClient[T]
	cache   ports.CacheRepository
	key     string
	ttl     time.Duration
	kind    domain.ResourceKind
	metrics *observability.Metrics
	logger  *slog.Logger
}

var _ ports.ResourceClient[domain.Supplier] = (*CachedClient[domain.Supplier])(nil)

func NewCachedClient[T domain.Resource](next ports.ResourceClient[T], cache ports.CacheRepository, kind domain.ResourceKind, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedClient[T] {
	return &CachedClient[T]{
		next:    next,
		cache:   cache,
		key:     ListKey(kind),
		ttl:     ttl,
		kind:    kind,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "list_cache"), slog.String("resource", string(kind))),
	}
}

// ListKey is the cache key holding the list of kind.
func ListKey(kind domain.ResourceKind) string {
	return BuildKey(PrefixList, string(kind))
}

func (c *CachedClient[T]) List(ctx context.Context) ([]T, error) {
	var (
		items    []T
		fetched  bool
		fetchErr error
	)

	err := c.cache.GetOrSet(ctx, c.key, &items, func() (interface{}, error) {
		fetched = true
		list, err := c.next.List(ctx)
		fetchErr = err
		return list, err
	}, c.ttl)

	switch {
	case fetchErr != nil:
		return nil, fetchErr
	case err != nil && !fetched:
		c.logger.WarnContext(ctx, "list cache unavailable, reading through",
			slog.String("error", err.Error()))
		return c.next.List(ctx)
	case err != nil:
		return nil, err
	}

	c.metrics.RecordListCache(string(c.kind), !fetched)
	return items, nil
}

func (c *CachedClient[T]) Create(ctx context.Context, draft T) (T, error) {
	created, err := c.next.Create(ctx, draft)
	if err == nil {
		c.Invalidate(ctx)
	}
	return created, err
}

func (c *CachedClient[T]) Update(ctx context.Context, id int64, patch map[string]any) (T, error) {
	updated, err := c.next.Update(ctx, id, patch)
	if err == nil {
		c.Invalidate(ctx)
	}
	return updated, err
}

func (c *CachedClient[T]) Delete(ctx context.Context, id int64) error {
	err := c.next.Delete(ctx, id)
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}

// Invalidate drops the cached list. Failures are logged only.
func (c *CachedClient[T]) Invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, c.key); err != nil {
		c.logger.WarnContext(ctx, "failed to invalidate list cache",
			slog.String("error", err.Error()))
	}
}

// Freshness returns how long the cached list has left, or ErrCacheMiss.
func (c *CachedClient[T]) Freshness(ctx context.Context) (time.Duration, error) {
	ttl, err := c.cache.TTL(ctx, c.key)
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, ErrCacheMiss
	}
	return ttl, nil
}

// InvalidateAll drops every cached list.
func InvalidateAll(ctx context.Context, cache ports.CacheRepository) error {
	return cache.DeletePattern(ctx, BuildKey(PrefixList, "*"))
}
