// internal/core/collection/cache.go
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/ports"
	"github.com/ammerola/resell-dashboard/internal/observability"
	"github.com/ammerola/resell-dashboard/internal/pkg/logger"
)

// Policy decides what a bulk delete restores when some deletes fail.
type Policy string

const (
	// PolicyPerItem restores only the resources whose delete failed.
	PolicyPerItem Policy = "per_item"
	// PolicyAllOrNothing restores every resource removed by the call.
	PolicyAllOrNothing Policy = "all_or_nothing"

	DefaultConcurrency = 4
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyPerItem, "":
		return PolicyPerItem, nil
	case PolicyAllOrNothing:
		return PolicyAllOrNothing, nil
	default:
		return "", fmt.Errorf("unknown bulk delete policy %q", s)
	}
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	policy      Policy
	concurrency int
	notifier    ports.Notifier
	metrics     *observability.Metrics
	now         func() time.Time
}

func WithPolicy(p Policy) Option { return func(o *options) { o.policy = p } }

// WithConcurrency bounds the number of deletes a bulk delete issues at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithNotifier(n ports.Notifier) Option { return func(o *options) { o.notifier = n } }

func WithMetrics(m *observability.Metrics) Option { return func(o *options) { o.metrics = m } }

// State is a point-in-time copy of the observable cache fields.
type State[T domain.Resource] struct {
	Items   []T
	Loading bool
	Err     error
}

// BulkResult reports the per-item outcome of RemoveMany.
type BulkResult struct {
	Deleted []int64
	Failed  map[int64]error
	// Skipped ids already had a delete in flight and were not sent again.
	Skipped []int64
	// RolledBack ids were restored to the collection.
	RolledBack []int64
}

// Cache is the in-memory mirror of one remote resource collection.
// All state changes go through mu; remote calls are made without holding it.
type Cache[T domain.Resource] struct {
	kind   domain.ResourceKind
	client ports.ResourceClient[T]
	logger *slog.Logger
	opts   options

	mu      sync.Mutex
	items   []T
	loading bool
	err     error
	pending map[int64]struct{}
	loadSeq uint64
}

// New creates an empty Cache for kind backed by client.
func New[T domain.Resource](kind domain.ResourceKind, client ports.ResourceClient[T], logger *slog.Logger, opts ...Option) *Cache[T] {
	o := options{
		policy:      PolicyPerItem,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[T]{
		kind:    kind,
		client:  client,
		logger:  logger.With(slog.String("component", "collection"), slog.String("resource", string(kind))),
		opts:    o,
		pending: make(map[int64]struct{}),
	}
}

// Kind returns the resource kind this cache mirrors.
func (c *Cache[T]) Kind() domain.ResourceKind { return c.kind }

// Items returns a copy of the cached resources.
func (c *Cache[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *Cache[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last recorded error, or nil.
func (c *Cache[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Cache[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T]{
		Items:   append([]T(nil), c.items...),
		Loading: c.loading,
		Err:     c.err,
	}
}

// Find returns the cached resources for ids, in the order given. Unknown ids are skipped.
func (c *Cache[T]) Find(ids []int64) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := make([]T, 0, len(ids))
	for _, id := range ids {
		if i := c.indexOf(id); i >= 0 {
			found = append(found, c.items[i])
		}
	}
	return found
}

// Load replaces the collection with the server's list. On failure the last
// good items are kept and a fetch error is recorded.
func (c *Cache[T]) Load(ctx context.Context) error {
	ctx = logger.WithOperation(ctx, string(c.kind), "load")
	c.mu.Lock()
	c.loading = true
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "loading collection")
	items, err := c.client.List(ctx)

	c.opts.metrics.RecordOperation(string(c.kind), "load", err)

	c.mu.Lock()
	if seq != c.loadSeq {
		// A newer load started while this one was in flight; it settles the state.
		c.mu.Unlock()
		if err != nil {
			return &domain.OpError{Kind: domain.OpFetch, Resource: c.kind, Err: err}
		}
		return nil
	}
	c.loading = false

	if err != nil {
		opErr := &domain.OpError{Kind: domain.OpFetch, Resource: c.kind, Err: err}
		c.err = opErr
		c.mu.Unlock()
		c.logger.ErrorContext(ctx, "failed to load collection", slog.String("error", err.Error()))
		c.notify(domain.LevelError, "Failed to load", opErr)
		return opErr
	}
	defer c.mu.Unlock()

	fresh := make([]T, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		id := item.ResourceID()
		if _, busy := c.pending[id]; busy {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, item)
	}

	c.items = fresh
	c.err = nil
	c.opts.metrics.SetCollectionSize(string(c.kind), len(c.items))
	c.logger.InfoContext(ctx, "collection loaded", slog.Int("count", len(c.items)))
	return nil
}

// Add appends a server-confirmed resource. An entry with the same id is replaced in place.
func (c *Cache[T]) Add(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(item.ResourceID()); i >= 0 {
		c.items[i] = item
	} else {
		c.items = append(c.items, item)
	}
	c.err = nil
	c.opts.metrics.SetCollectionSize(string(c.kind), len(c.items))
}

// Update replaces the entry with the same id. It is a no-op when no entry matches.
func (c *Cache[T]) Update(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(item.ResourceID()); i >= 0 {
		c.items[i] = item
	}
	c.err = nil
}

// Create sends draft to the server and adds the confirmed resource.
func (c *Cache[T]) Create(ctx context.Context, draft T) (T, error) {
	ctx = logger.WithOperation(ctx, string(c.kind), "create")
	created, err := c.client.Create(ctx, draft)
	c.opts.metrics.RecordOperation(string(c.kind), "create", err)
	if err != nil {
		return created, c.recordMutationError(ctx, 0, err)
	}

	c.Add(created)
	c.logger.InfoContext(ctx, "resource created", slog.Int64("id", created.ResourceID()))
	c.notify(domain.LevelSuccess, "Created", nil)
	return created, nil
}

// Save applies patch to resource id on the server and updates the cached entry.
func (c *Cache[T]) Save(ctx context.Context, id int64, patch map[string]any) (T, error) {
	ctx = logger.WithOperation(ctx, string(c.kind), "update")
	updated, err := c.client.Update(ctx, id, patch)
	c.opts.metrics.RecordOperation(string(c.kind), "update", err)
	if err != nil {
		return updated, c.recordMutationError(ctx, id, err)
	}

	c.Update(updated)
	c.logger.InfoContext(ctx, "resource updated", slog.Int64("id", id))
	c.notify(domain.LevelSuccess, "Updated", nil)
	return updated, nil
}

func (c *Cache[T]) recordMutationError(ctx context.Context, id int64, err error) error {
	opErr := &domain.OpError{Kind: domain.OpMutation, Resource: c.kind, ID: id, Err: err}

	c.mu.Lock()
	c.err = opErr
	c.mu.Unlock()

	c.logger.WarnContext(ctx, "mutation rejected", slog.Int64("id", id), slog.String("error", err.Error()))
	c.notify(domain.LevelError, "Save failed", opErr)
	return opErr
}

// Remove optimistically drops id, deletes it remotely and restores it at its
// original position if the delete fails. A second Remove for an id whose delete
// is still in flight returns domain.ErrDeleteInFlight without a remote call.
func (c *Cache[T]) Remove(ctx context.Context, id int64) error {
	ctx = logger.WithOperation(ctx, string(c.kind), "delete")
	c.mu.Lock()
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return fmt.Errorf("remove %s %d: %w", c.kind, id, domain.ErrDeleteInFlight)
	}
	c.pending[id] = struct{}{}
	removed, idx, present := c.take(id)
	c.mu.Unlock()

	err := c.client.Delete(ctx, id)
	c.opts.metrics.RecordOperation(string(c.kind), "delete", err)

	c.mu.Lock()
	delete(c.pending, id)

	if err != nil {
		if present {
			c.restore(removed, idx)
			c.opts.metrics.RecordRollback(string(c.kind), "delete", 1)
		}
		opErr := &domain.OpError{Kind: domain.OpDelete, Resource: c.kind, ID: id, Err: err}
		c.err = opErr
		c.mu.Unlock()

		c.logger.ErrorContext(ctx, "delete failed, rolled back",
			slog.Int64("id", id),
			slog.Int("index", idx),
			slog.String("error", err.Error()))
		c.notify(domain.LevelError, "Delete failed", opErr)
		return opErr
	}

	c.err = nil
	c.opts.metrics.SetCollectionSize(string(c.kind), len(c.items))
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "resource deleted", slog.Int64("id", id))
	c.notify(domain.LevelSuccess, "Deleted", nil)
	return nil
}

type removal[T domain.Resource] struct {
	id      int64
	item    T
	index   int
	present bool
}

// RemoveMany deletes ids with at most one remote delete per id, running up to
// the configured concurrency at once. What is restored on failure depends on
// the cache Policy. Any failure is returned as an *domain.OpError wrapping a
// *domain.BulkDeleteError and recorded as the last error.
func (c *Cache[T]) RemoveMany(ctx context.Context, ids []int64) (BulkResult, error) {
	ctx = logger.WithOperation(ctx, string(c.kind), "bulk_delete")
	result := BulkResult{Failed: map[int64]error{}}

	c.mu.Lock()
	var batch []removal[T]
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, busy := c.pending[id]; busy {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		c.pending[id] = struct{}{}
		batch = append(batch, removal[T]{id: id, index: c.indexOf(id)})
	}
	// Remove from the highest index down so the recorded indexes stay valid.
	order := make([]int, len(batch))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return batch[order[a]].index > batch[order[b]].index })
	for _, i := range order {
		if batch[i].index < 0 {
			continue
		}
		batch[i].item = c.items[batch[i].index]
		batch[i].present = true
		c.items = append(c.items[:batch[i].index], c.items[batch[i].index+1:]...)
	}
	c.mu.Unlock()

	if len(batch) == 0 {
		return result, nil
	}

	c.logger.InfoContext(ctx, "bulk delete started",
		slog.Int("count", len(batch)),
		slog.String("policy", string(c.opts.policy)))

	errs := make([]error, len(batch))
	var g errgroup.Group
	g.SetLimit(c.opts.concurrency)
	for i := range batch {
		g.Go(func() error {
			errs[i] = c.client.Delete(ctx, batch[i].id)
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	var restore []removal[T]
	for i, r := range batch {
		delete(c.pending, r.id)
		if errs[i] != nil {
			result.Failed[r.id] = errs[i]
			c.logger.WarnContext(ctx, "bulk delete item failed",
				slog.Int64("id", r.id),
				slog.String("error", errs[i].Error()))
		} else {
			result.Deleted = append(result.Deleted, r.id)
		}
		if !r.present {
			continue
		}
		if errs[i] != nil || c.opts.policy == PolicyAllOrNothing {
			restore = append(restore, r)
		}
	}

	if len(result.Failed) == 0 {
		c.err = nil
		c.opts.metrics.RecordOperation(string(c.kind), "bulk_delete", nil)
		c.opts.metrics.RecordBulkDelete(string(c.kind), len(result.Deleted), 0, len(result.Skipped))
		c.opts.metrics.SetCollectionSize(string(c.kind), len(c.items))
		c.mu.Unlock()

		c.logger.InfoContext(ctx, "bulk delete completed", slog.Int("deleted", len(result.Deleted)))
		c.notify(domain.LevelSuccess, "Deleted", nil)
		return result, nil
	}

	// Reinsert in ascending original index so earlier entries land first.
	sort.Slice(restore, func(a, b int) bool { return restore[a].index < restore[b].index })
	for _, r := range restore {
		c.restore(r.item, r.index)
		result.RolledBack = append(result.RolledBack, r.id)
	}

	bulkErr := &domain.BulkDeleteError{Failed: result.Failed, RolledBack: result.RolledBack}
	opErr := &domain.OpError{Kind: domain.OpBulkDelete, Resource: c.kind, Err: bulkErr}
	c.err = opErr

	c.opts.metrics.RecordOperation(string(c.kind), "bulk_delete", opErr)
	c.opts.metrics.RecordBulkDelete(string(c.kind), len(result.Deleted), len(result.Failed), len(result.Skipped))
	c.opts.metrics.RecordRollback(string(c.kind), "bulk_delete", len(result.RolledBack))
	c.opts.metrics.SetCollectionSize(string(c.kind), len(c.items))
	c.mu.Unlock()

	c.logger.ErrorContext(ctx, "bulk delete failed",
		slog.Int("failed", len(result.Failed)),
		slog.Int("deleted", len(result.Deleted)),
		slog.Int("rolled_back", len(result.RolledBack)))
	c.notify(domain.LevelError, "Bulk delete failed", opErr)
	return result, opErr
}

// take removes id from items. Callers hold mu.
func (c *Cache[T]) take(id int64) (T, int, bool) {
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, -1, false
	}
	item := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return item, i, true
}

// restore reinserts item at index, clamped to the current length. Callers hold mu.
func (c *Cache[T]) restore(item T, index int) {
	if c.indexOf(item.ResourceID()) >= 0 {
		return
	}
	if index > len(c.items) {
		index = len(c.items)
	}
	c.items = append(c.items, item)
	copy(c.items[index+1:], c.items[index:])
	c.items[index] = item
}

func (c *Cache[T]) indexOf(id int64) int {
	for i, item := range c.items {
		if item.ResourceID() == id {
			return i
		}
	}
	return -1
}

func (c *Cache[T]) notify(level domain.NotificationLevel, title string, err error) {
	if c.opts.notifier == nil {
		return
	}
	msg := fmt.Sprintf("%s updated", c.kind)
	if err != nil {
		msg = domain.UserMessage(err)
	}
	c.opts.notifier.Publish(domain.Notification{
		Level:    level,
		Title:    title,
		Message:  msg,
		Resource: c.kind,
		Time:     c.opts.now(),
	})
}
