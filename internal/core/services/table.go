// internal/core/services/table.go
package services

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/selection"
	"github.com/ammerola/resell-dashboard/internal/core/view"
)

// Table composes a collection cache with the view state, row selection and
// the bulk/create coordinators of one dashboard table.
type Table[T domain.Resource] struct {
	cache     *collection.Cache[T]
	selection *selection.Selection
	bulk      *BulkCoordinator[T]
	creator   *CreateCoordinator[T]
	pageSize  int
	logger    *slog.Logger

	mu      sync.Mutex
	state   view.State
	visible []int64
}

// NewTable creates a table over cache. A pageSize of zero or less uses view.PageSize.
func NewTable[T domain.Resource](cache *collection.Cache[T], pageSize int, logger *slog.Logger) *Table[T] {
	if pageSize <= 0 {
		pageSize = view.PageSize
	}
	sel := selection.New()
	t := &Table[T]{
		cache:     cache,
		selection: sel,
		bulk:      NewBulkCoordinator(cache, sel, logger),
		creator:   NewCreateCoordinator(cache, logger),
		pageSize:  pageSize,
		logger:    logger.With(slog.String("service", "table"), slog.String("resource", string(cache.Kind()))),
		state:     view.DefaultState(),
	}
	t.projectLocked(true)
	return t
}

func (t *Table[T]) Cache() *collection.Cache[T]     { return t.cache }
func (t *Table[T]) Selection() *selection.Selection { return t.selection }
func (t *Table[T]) Bulk() *BulkCoordinator[T]       { return t.bulk }
func (t *Table[T]) Creator() *CreateCoordinator[T]  { return t.creator }
func (t *Table[T]) PageSize() int                   { return t.pageSize }

func (t *Table[T]) State() view.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Table[T]) SetCategory(category string) {
	t.setState(func(s view.State) view.State { return s.WithCategory(category) })
}

func (t *Table[T]) SetSearch(term string) {
	t.setState(func(s view.State) view.State { return s.WithSearch(term) })
}

func (t *Table[T]) SetShowAll(showAll bool) {
	t.setState(func(s view.State) view.State { return s.WithShowAll(showAll) })
}

func (t *Table[T]) SetPage(page int) {
	t.setState(func(s view.State) view.State { return s.WithPage(page) })
}

// setState applies a view change. Any change clears the selection and scopes
// it to the rows of the new view.
func (t *Table[T]) setState(fn func(view.State) view.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = fn(t.state)
	t.projectLocked(true)
}

// View projects the current items through the view state. When the visible
// rows differ from the previous projection the selection is rescoped to them.
func (t *Table[T]) View() view.Result[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.projectLocked(false)
}

// projectLocked projects the current state and rescopes the selection when
// the visible ids changed, or always when rescope is set. t.mu must be held.
func (t *Table[T]) projectLocked(rescope bool) view.Result[T] {
	result := view.ProjectPage(t.cache.Items(), t.state, t.pageSize)
	ids := result.IDs()
	if rescope || !slices.Equal(ids, t.visible) {
		t.visible = ids
		t.selection.Scope(ids)
	}
	return result
}

// SelectAll checks every row of the current view.
func (t *Table[T]) SelectAll(checked bool) {
	t.View()
	t.selection.SelectAll(checked)
}

func (t *Table[T]) Refresh(ctx context.Context) error {
	err := t.cache.Load(ctx)
	t.clampPage()
	return err
}

func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	err := t.cache.Remove(ctx, id)
	t.clampPage()
	return err
}

func (t *Table[T]) BulkDelete(ctx context.Context, ids []int64) (collection.BulkResult, error) {
	result, err := t.bulk.BulkDelete(ctx, ids)
	t.clampPage()
	return result, err
}

// ConfirmBulkDelete runs a bulk delete previously staged with Bulk().Request.
func (t *Table[T]) ConfirmBulkDelete(ctx context.Context) (collection.BulkResult, error) {
	result, err := t.bulk.Confirm(ctx)
	t.clampPage()
	return result, err
}

// DeleteSelected bulk deletes the checked rows.
func (t *Table[T]) DeleteSelected(ctx context.Context) (collection.BulkResult, error) {
	return t.BulkDelete(ctx, t.selection.Selected())
}

func (t *Table[T]) Create(ctx context.Context, key string, draft T) (T, error) {
	return t.creator.Submit(ctx, key, draft)
}

// Save updates id remotely. The page is clamped since the change can move the
// row out of the current filter.
func (t *Table[T]) Save(ctx context.Context, id int64, patch map[string]any) (T, error) {
	updated, err := t.cache.Save(ctx, id, patch)
	t.clampPage()
	return updated, err
}

// clampPage keeps the page inside the shrunk or grown collection and rescopes
// the selection to whatever is now visible.
func (t *Table[T]) clampPage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := view.ProjectPage(t.cache.Items(), t.state, t.pageSize)
	page := view.ClampPage(t.state.Page, result.TotalPages)
	if page != t.state.Page {
		t.logger.Debug("page clamped", slog.Int("from", t.state.Page), slog.Int("to", page))
		t.state.Page = page
		t.projectLocked(true)
		return
	}
	t.projectLocked(false)
}
