// internal/core/view/projection.go
package view

import (
	"sort"
	"strings"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
)

const (
	// PageSize is the number of rows on a dashboard page.
	PageSize = 5
	// AllCategories is the category tab that matches every resource.
	AllCategories = "all"
)

// State is the user's current view over a collection.
type State struct {
	ActiveCategory string `json:"active_category"`
	SearchTerm     string `json:"search_term"`
	Page           int    `json:"page"`
	ShowAll        bool   `json:"show_all"`
}

// DefaultState is the view a dashboard opens with.
func DefaultState() State {
	return State{ActiveCategory: AllCategories, Page: 1}
}

// WithCategory switches the category tab and returns to the first page.
func (s State) WithCategory(category string) State {
	if category == "" {
		category = AllCategories
	}
	s.ActiveCategory = category
	s.Page = 1
	return s
}

// WithSearch changes the search term and returns to the first page.
func (s State) WithSearch(term string) State {
	s.SearchTerm = term
	s.Page = 1
	return s
}

// WithShowAll toggles pagination off or on and returns to the first page.
func (s State) WithShowAll(showAll bool) State {
	s.ShowAll = showAll
	s.Page = 1
	return s
}

// WithPage moves to page, never below 1.
func (s State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// Result is a projected page.
type Result[T domain.Resource] struct {
	Rows       []T
	TotalPages int
	// TotalCount is the number of resources matching the filters.
	TotalCount int
}

// IDs returns the ids of the visible rows.
func (r Result[T]) IDs() []int64 {
	ids := make([]int64, len(r.Rows))
	for i, row := range r.Rows {
		ids[i] = row.ResourceID()
	}
	return ids
}

// Project filters, searches and paginates items with the default page size.
func Project[T domain.Resource](items []T, state State) Result[T] {
	return ProjectPage(items, state, PageSize)
}

// ProjectPage is Project with an explicit page size. It never modifies items
// and does not clamp the page; an out-of-range page yields no rows.
func ProjectPage[T domain.Resource](items []T, state State, pageSize int) Result[T] {
	if pageSize <= 0 {
		pageSize = PageSize
	}

	filtered := Filter(items, state.ActiveCategory, state.SearchTerm)
	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	if state.ShowAll {
		return Result[T]{Rows: filtered, TotalPages: totalPages, TotalCount: total}
	}

	page := state.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return Result[T]{Rows: []T{}, TotalPages: totalPages, TotalCount: total}
	}
	end := min(start+pageSize, total)

	return Result[T]{Rows: filtered[start:end], TotalPages: totalPages, TotalCount: total}
}

// Filter returns a new slice of the items in category whose search fields
// contain term, ignoring case. The term is matched as typed, spaces included.
func Filter[T domain.Resource](items []T, category, term string) []T {
	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !matchesCategory(item, category) {
			continue
		}
		if needle != "" && !matchesSearch(item, needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesCategory[T domain.Resource](item T, category string) bool {
	if category == "" || category == AllCategories {
		return true
	}
	c, ok := item.ResourceCategory()
	return ok && c == category
}

func matchesSearch[T domain.Resource](item T, needle string) bool {
	for _, field := range item.SearchFields() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// ClampPage keeps page inside [1, totalPages].
func ClampPage(page, totalPages int) int {
	return max(1, min(page, max(1, totalPages)))
}

// Categories lists the distinct categories present in items, sorted, for tab rendering.
func Categories[T domain.Resource](items []T) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		if c, ok := item.ResourceCategory(); ok {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
