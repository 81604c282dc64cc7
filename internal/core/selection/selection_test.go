package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ammerola/resell-dashboard/internal/core/selection"
	"github.com/ammerola/resell-dashboard/internal/core/view"
	"github.com/ammerola/resell-dashboard/test/helpers"
)

func TestSelection_SelectAllOnPage(t *testing.T) {
	items := helpers.CreateTestInventoryItems(12)
	page := view.Project(items, view.DefaultState())

	sel := selection.New()
	sel.Scope(page.IDs())
	sel.SelectAll(true)

	assert.Equal(t, 5, sel.Len())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, sel.Selected())
	assert.True(t, sel.IsAllSelected())
	assert.False(t, sel.IsIndeterminate())

	sel.SelectAll(false)
	assert.Zero(t, sel.Len())
	assert.False(t, sel.IsAllSelected())
}

func TestSelection_Toggle(t *testing.T) {
	tests := []struct {
		name              string
		toggles           map[int64]bool
		wantSelected      []int64
		wantAll           bool
		wantIndeterminate bool
	}{
		{
			name:              "partial_selection",
			toggles:           map[int64]bool{2: true},
			wantSelected:      []int64{2},
			wantIndeterminate: true,
		},
		{
			name:         "every_row_checked",
			toggles:      map[int64]bool{1: true, 2: true, 3: true},
			wantSelected: []int64{1, 2, 3},
			wantAll:      true,
		},
		{
			name:         "ids_off_page_ignored",
			toggles:      map[int64]bool{9: true},
			wantSelected: []int64{},
		},
		{
			name:         "uncheck",
			toggles:      map[int64]bool{1: false},
			wantSelected: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := selection.New()
			sel.Scope([]int64{1, 2, 3})
			for id, checked := range tt.toggles {
				sel.Toggle(id, checked)
			}

			assert.Equal(t, tt.wantSelected, sel.Selected())
			assert.Equal(t, tt.wantAll, sel.IsAllSelected())
			assert.Equal(t, tt.wantIndeterminate, sel.IsIndeterminate())
		})
	}
}

func TestSelection_ScopeClears(t *testing.T) {
	sel := selection.New()
	sel.Scope([]int64{1, 2})
	sel.SelectAll(true)

	sel.Scope([]int64{1, 2})

	assert.Zero(t, sel.Len())
}

func TestSelection_EmptyPage(t *testing.T) {
	sel := selection.New()
	sel.Scope(nil)
	sel.SelectAll(true)

	assert.False(t, sel.IsAllSelected())
	assert.False(t, sel.IsIndeterminate())
}
