// internal/core/selection/selection.go
package selection

import (
	"slices"
	"sync"
)

// Selection tracks the checked rows of the visible page. It only ever holds
// ids that are on the page most recently passed to Scope.
type Selection struct {
	mu       sync.Mutex
	visible  []int64
	selected map[int64]struct{}
}

func New() *Selection {
	return &Selection{selected: make(map[int64]struct{})}
}

// Scope sets the visible page ids and clears the selection.
func (s *Selection) Scope(visibleIDs []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = append([]int64(nil), visibleIDs...)
	clear(s.selected)
}

// SelectAll checks or unchecks every visible row.
func (s *Selection) SelectAll(checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selected)
	if !checked {
		return
	}
	for _, id := range s.visible {
		s.selected[id] = struct{}{}
	}
}

// Toggle checks or unchecks one row. Ids not on the visible page are ignored.
func (s *Selection) Toggle(id int64, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.visible, id) {
		return
	}
	if checked {
		s.selected[id] = struct{}{}
	} else {
		delete(s.selected, id)
	}
}

func (s *Selection) IsAllSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visible) > 0 && len(s.selected) == len(s.visible)
}

// IsIndeterminate reports a partial selection, for the header checkbox.
func (s *Selection) IsIndeterminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected) > 0 && len(s.selected) < len(s.visible)
}

// Selected returns the checked ids in page order.
func (s *Selection) Selected() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.selected))
	for _, id := range s.visible {
		if _, ok := s.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selected)
}
