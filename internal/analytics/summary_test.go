package analytics_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/resell-dashboard/internal/analytics"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/test/helpers"
)

func item(id int64, category *domain.ItemCategory, qty int, price string, supplier *int64) domain.InventoryItem {
	return *helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.ID = id
		i.Category = category
		i.Quantity = qty
		i.UnitPrice = decimal.RequireFromString(price)
		i.ReorderLevel = 3
		i.SupplierID = supplier
	})
}

func ptr(v int64) *int64 { return &v }

func TestSummarizeInventory(t *testing.T) {
	tools := domain.CategoryPtr(domain.CategoryTools)
	toys := domain.CategoryPtr(domain.CategoryToys)
	items := []domain.InventoryItem{
		item(1, tools, 10, "2.50", ptr(1)),
		item(2, tools, 2, "10.00", ptr(1)),
		item(3, toys, 0, "99.00", ptr(2)),
		item(4, nil, 4, "1.25", nil),
	}

	summary := analytics.SummarizeInventory(items)

	assert.Equal(t, 4, summary.TotalItems)
	assert.Equal(t, 16, summary.TotalUnits)
	assert.Equal(t, "50", summary.StockValue.String())
	assert.Equal(t, []int64{2}, summary.LowStock)
	assert.Equal(t, []int64{3}, summary.OutOfStock)

	require.Len(t, summary.ByCategory, 3)
	assert.Equal(t, "tools", summary.ByCategory[0].Category)
	assert.Equal(t, "45", summary.ByCategory[0].StockValue.String())
	assert.Equal(t, 12, summary.ByCategory[0].Units)
	assert.Equal(t, analytics.Uncategorized, summary.ByCategory[1].Category)
	assert.Equal(t, "toys", summary.ByCategory[2].Category)
}

func TestSummarizeInventory_Empty(t *testing.T) {
	summary := analytics.SummarizeInventory(nil)

	assert.Zero(t, summary.TotalItems)
	assert.True(t, summary.StockValue.IsZero())
	assert.Empty(t, summary.ByCategory)
	assert.NotNil(t, summary.LowStock)
}

func TestSummarizeSuppliers(t *testing.T) {
	suppliers := helpers.CreateTestSuppliers(3)
	items := []domain.InventoryItem{
		item(1, nil, 10, "2.00", ptr(2)),
		item(2, nil, 1, "5.00", ptr(2)),
		item(3, nil, 1, "1.00", ptr(1)),
		item(4, nil, 1, "1.00", ptr(42)),
		item(5, nil, 1, "1.00", nil),
	}

	summary := analytics.SummarizeSuppliers(suppliers, items)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Active)
	assert.Equal(t, 1, summary.Inactive)
	assert.Equal(t, map[string]int{"Electronics": 2, "Packaging": 1}, summary.ByCategory)
	assert.Equal(t, 1, summary.Unlinked)

	require.Len(t, summary.Load, 3)
	assert.Equal(t, int64(2), summary.Load[0].SupplierID)
	assert.Equal(t, 2, summary.Load[0].Items)
	assert.Equal(t, "25", summary.Load[0].StockValue.String())
	assert.Equal(t, int64(1), summary.Load[1].SupplierID)
	assert.Equal(t, int64(3), summary.Load[2].SupplierID)
	assert.Zero(t, summary.Load[2].Items)
}
