// internal/core/domain/inventory.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ItemCategory represents item categories
type ItemCategory string

// Category constants
const (
	CategoryElectronics ItemCategory = "electronics"
	CategoryFurniture   ItemCategory = "furniture"
	CategoryClothing    ItemCategory = "clothing"
	CategoryTools       ItemCategory = "tools"
	CategoryToys        ItemCategory = "toys"
	CategoryOffice      ItemCategory = "office"
	CategoryOther       ItemCategory = "other"
)

// InventoryItem represents a single stocked product
type InventoryItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	Category     *ItemCategory   `json:"category,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ReorderLevel int             `json:"reorder_level"`
	SupplierID   *int64          `json:"supplier_id,omitempty"`
	Location     string          `json:"location,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

var _ Resource = InventoryItem{}

func (i InventoryItem) ResourceID() int64 { return i.ID }

func (i InventoryItem) ResourceCategory() (string, bool) {
	if i.Category == nil {
		return "", false
	}
	return string(*i.Category), true
}

func (i InventoryItem) SearchFields() []string {
	return []string{i.Name, i.Description, i.SKU}
}

// Validate performs domain validation on the inventory item
func (i *InventoryItem) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if i.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("unit_price cannot be negative")
	}
	if i.ReorderLevel < 0 {
		return fmt.Errorf("reorder_level cannot be negative")
	}
	return nil
}

// IsLowStock reports whether the quantity on hand is at or below the reorder level.
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

// StockValue is quantity times unit price.
func (i InventoryItem) StockValue() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CategoryPtr is a helper for building items with an optional category.
func CategoryPtr(c ItemCategory) *ItemCategory {
	return &c
}
