// internal/core/services/bulk.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/selection"
)

// BulkState is the confirmation state of a bulk delete.
type BulkState int

const (
	BulkIdle BulkState = iota
	BulkConfirming
	BulkDeleting
)

func (s BulkState) String() string {
	switch s {
	case BulkConfirming:
		return "confirming"
	case BulkDeleting:
		return "deleting"
	default:
		return "idle"
	}
}

// BulkCoordinator drives the confirm-then-delete flow for a set of selected
// resources. Only one bulk delete runs at a time.
type BulkCoordinator[T domain.Resource] struct {
	cache     *collection.Cache[T]
	selection *selection.Selection
	logger    *slog.Logger

	mu      sync.Mutex
	state   BulkState
	pending []int64
}

// NewBulkCoordinator creates a coordinator in the idle state.
func NewBulkCoordinator[T domain.Resource](cache *collection.Cache[T], sel *selection.Selection, logger *slog.Logger) *BulkCoordinator[T] {
	return &BulkCoordinator[T]{
		cache:     cache,
		selection: sel,
		logger:    logger.With(slog.String("service", "bulk"), slog.String("resource", string(cache.Kind()))),
	}
}

// Request enters the confirming state for ids and returns the resources they
// name, for the confirmation prompt. Ids unknown to the cache are kept in the
// request but have no entry in the returned slice. A request already awaiting
// confirmation must be confirmed or cancelled first.
func (b *BulkCoordinator[T]) Request(ids []int64) ([]T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	unique, err := b.admit(ids)
	if err != nil {
		return nil, err
	}

	b.state = BulkConfirming
	b.pending = unique
	return b.cache.Find(unique), nil
}

// admit dedupes ids for a new request. Only an idle coordinator admits one.
// b.mu must be held.
func (b *BulkCoordinator[T]) admit(ids []int64) ([]int64, error) {
	if b.state != BulkIdle {
		return nil, domain.ErrBulkInProgress
	}

	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, domain.ErrNothingSelected
	}
	return unique, nil
}

// Cancel abandons a pending confirmation. It does nothing while deleting.
func (b *BulkCoordinator[T]) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BulkConfirming {
		b.state = BulkIdle
		b.pending = nil
	}
}

// Confirm deletes the requested ids.
func (b *BulkCoordinator[T]) Confirm(ctx context.Context) (collection.BulkResult, error) {
	b.mu.Lock()
	switch b.state {
	case BulkDeleting:
		b.mu.Unlock()
		return collection.BulkResult{}, domain.ErrBulkInProgress
	case BulkIdle:
		b.mu.Unlock()
		return collection.BulkResult{}, domain.ErrNotConfirming
	}
	ids := b.pending
	b.state = BulkDeleting
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "bulk delete confirmed", slog.Int("count", len(ids)))
	return b.run(ctx, ids)
}

// BulkDelete deletes ids without a confirmation step. It goes from idle
// straight to deleting, so no other request can slip in between.
func (b *BulkCoordinator[T]) BulkDelete(ctx context.Context, ids []int64) (collection.BulkResult, error) {
	b.mu.Lock()
	unique, err := b.admit(ids)
	if err != nil {
		b.mu.Unlock()
		return collection.BulkResult{}, err
	}
	b.state = BulkDeleting
	b.pending = unique
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "bulk delete started", slog.Int("count", len(unique)))
	return b.run(ctx, unique)
}

// run deletes ids in the deleting state. Whatever the outcome, the
// coordinator returns to idle and the selection is cleared.
func (b *BulkCoordinator[T]) run(ctx context.Context, ids []int64) (collection.BulkResult, error) {
	result, err := b.cache.RemoveMany(ctx, ids)

	b.mu.Lock()
	b.state = BulkIdle
	b.pending = nil
	b.mu.Unlock()
	b.selection.Clear()

	if err != nil {
		return result, fmt.Errorf("bulk delete: %w", err)
	}
	return result, nil
}

func (b *BulkCoordinator[T]) IsDeleting() bool {
	return b.State() == BulkDeleting
}

func (b *BulkCoordinator[T]) State() BulkState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// PendingIDs returns the ids awaiting confirmation or being deleted.
func (b *BulkCoordinator[T]) PendingIDs() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.pending)
}
