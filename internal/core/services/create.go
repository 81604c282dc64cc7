// internal/core/services/create.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/pkg/logger"
)

// CreateCoordinator makes create submissions idempotent per key, so a
// double-submitted form produces one remote create and one collection entry.
type CreateCoordinator[T domain.Resource] struct {
	cache  *collection.Cache[T]
	logger *slog.Logger

	mu        sync.Mutex
	processed map[string]T
	inFlight  map[string]struct{}
}

func NewCreateCoordinator[T domain.Resource](cache *collection.Cache[T], logger *slog.Logger) *CreateCoordinator[T] {
	return &CreateCoordinator[T]{
		cache:     cache,
		logger:    logger.With(slog.String("service", "create"), slog.String("resource", string(cache.Kind()))),
		processed: make(map[string]T),
		inFlight:  make(map[string]struct{}),
	}
}

// NewKey returns a fresh idempotency key, one per opened form.
func NewKey() string {
	return uuid.NewString()
}

// Submit creates draft under key. A key that already succeeded returns the
// stored resource without a remote call; a key still in flight is rejected
// with domain.ErrDuplicateSubmit. A failed submission releases its key.
func (c *CreateCoordinator[T]) Submit(ctx context.Context, key string, draft T) (T, error) {
	var zero T
	if key == "" {
		key = NewKey()
	}

	c.mu.Lock()
	if created, ok := c.processed[key]; ok {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "replaying processed submission",
			slog.String("idempotency_key", key),
			slog.Int64("id", created.ResourceID()))
		return created, nil
	}
	if _, busy := c.inFlight[key]; busy {
		c.mu.Unlock()
		return zero, fmt.Errorf("submit %s: %w", key, domain.ErrDuplicateSubmit)
	}
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()

	ctx = logger.WithIdempotencyKey(ctx, key)
	created, err := c.cache.Create(ctx, draft)

	c.mu.Lock()
	delete(c.inFlight, key)
	if err == nil {
		c.processed[key] = created
	}
	c.mu.Unlock()

	if err != nil {
		return zero, err
	}
	return created, nil
}

// Processed reports whether key has already produced a resource.
func (c *CreateCoordinator[T]) Processed(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.processed[key]
	return ok
}
