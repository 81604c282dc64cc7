// internal/analytics/summary.go
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
)

// Uncategorized labels items whose category is unset.
const Uncategorized = "uncategorized"

// CategoryTotal aggregates the items of one category.
type CategoryTotal struct {
	Category   string          `json:"category"`
	Items      int             `json:"items"`
	Units      int             `json:"units"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// InventorySummary is the data behind the inventory overview cards and charts.
type InventorySummary struct {
	TotalItems int             `json:"total_items"`
	TotalUnits int             `json:"total_units"`
	StockValue decimal.Decimal `json:"stock_value"`
	LowStock   []int64         `json:"low_stock"`
	OutOfStock []int64         `json:"out_of_stock"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// SupplierLoad is how much stock one supplier provides.
type SupplierLoad struct {
	SupplierID int64           `json:"supplier_id"`
	Name       string          `json:"name"`
	Active     bool            `json:"active"`
	Items      int             `json:"items"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// SupplierSummary is the data behind the supplier overview.
type SupplierSummary struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Inactive   int            `json:"inactive"`
	ByCategory map[string]int `json:"by_category"`
	Load       []SupplierLoad `json:"load"`
	// Unlinked counts items whose supplier id matches no known supplier.
	Unlinked int `json:"unlinked"`
}

// SummarizeInventory totals items. Categories are sorted by stock value, highest first.
func SummarizeInventory(items []domain.InventoryItem) InventorySummary {
	summary := InventorySummary{
		StockValue: decimal.Zero,
		LowStock:   []int64{},
		OutOfStock: []int64{},
	}
	byCategory := map[string]*CategoryTotal{}

	for _, item := range items {
		value := item.StockValue()
		summary.TotalItems++
		summary.TotalUnits += item.Quantity
		summary.StockValue = summary.StockValue.Add(value)

		if item.Quantity == 0 {
			summary.OutOfStock = append(summary.OutOfStock, item.ID)
		} else if item.IsLowStock() {
			summary.LowStock = append(summary.LowStock, item.ID)
		}

		category, ok := item.ResourceCategory()
		if !ok {
			category = Uncategorized
		}
		total, exists := byCategory[category]
		if !exists {
			total = &CategoryTotal{Category: category, StockValue: decimal.Zero}
			byCategory[category] = total
		}
		total.Items++
		total.Units += item.Quantity
		total.StockValue = total.StockValue.Add(value)
	}

	summary.ByCategory = make([]CategoryTotal, 0, len(byCategory))
	for _, total := range byCategory {
		summary.ByCategory = append(summary.ByCategory, *total)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if c := a.StockValue.Cmp(b.StockValue); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})

	return summary
}

// SummarizeSuppliers counts suppliers and attributes items to them. Load is
// sorted by stock value, highest first, and includes suppliers with no items.
func SummarizeSuppliers(suppliers []domain.Supplier, items []domain.InventoryItem) SupplierSummary {
	summary := SupplierSummary{ByCategory: map[string]int{}}
	load := make(map[int64]*SupplierLoad, len(suppliers))

	for _, s := range suppliers {
		summary.Total++
		if s.IsActive {
			summary.Active++
		} else {
			summary.Inactive++
		}
		category, ok := s.ResourceCategory()
		if !ok {
			category = Uncategorized
		}
		summary.ByCategory[category]++
		load[s.ID] = &SupplierLoad{SupplierID: s.ID, Name: s.Name, Active: s.IsActive, StockValue: decimal.Zero}
	}

	for _, item := range items {
		if item.SupplierID == nil {
			continue
		}
		l, ok := load[*item.SupplierID]
		if !ok {
			summary.Unlinked++
			continue
		}
		l.Items++
		l.StockValue = l.StockValue.Add(item.StockValue())
	}

	summary.Load = make([]SupplierLoad, 0, len(load))
	for _, l := range load {
		summary.Load = append(summary.Load, *l)
	}
	sort.Slice(summary.Load, func(i, j int) bool {
		a, b := summary.Load[i], summary.Load[j]
		if c := a.StockValue.Cmp(b.StockValue); c != 0 {
			return c > 0
		}
		return a.SupplierID < b.SupplierID
	})

	return summary
}
