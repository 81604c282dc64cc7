// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
)

// memoryClient is an in-process ResourceClient for benchmarks
type memoryClient[T domain.Resource] struct {
	mu    sync.Mutex
	items []T
}

func newMemoryClient[T domain.Resource](items []T) *memoryClient[T] {
	return &memoryClient[T]{items: items}
}

func (m *memoryClient[T]) List(context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memoryClient[T]) Create(_ context.Context, draft T) (T, error) {
	return draft, nil
}

func (m *memoryClient[T]) Update(_ context.Context, id int64, _ map[string]any) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ResourceID() == id {
			return item, nil
		}
	}
	var zero T
	return zero, &domain.ValidationError{StatusCode: 404, Message: "not found"}
}

func (m *memoryClient[T]) Delete(context.Context, int64) error {
	return nil
}

var benchCategories = []domain.ItemCategory{
	domain.CategoryElectronics,
	domain.CategoryFurniture,
	domain.CategoryClothing,
	domain.CategoryTools,
	domain.CategoryToys,
	domain.CategoryOffice,
}

// createLargeInventory builds n items spread over the benchmark categories
func createLargeInventory(n int) []domain.InventoryItem {
	items := make([]domain.InventoryItem, n)
	for i := range items {
		supplierID := int64(i%50 + 1)
		items[i] = domain.InventoryItem{
			ID:           int64(i + 1),
			Name:         fmt.Sprintf("Bench Item %d", i+1),
			Description:  fmt.Sprintf("Lot %d, shelf %c", i/100, 'A'+rune(i%26)),
			SKU:          fmt.Sprintf("BN-%06d", i+1),
			Category:     domain.CategoryPtr(benchCategories[i%len(benchCategories)]),
			Quantity:     i % 40,
			UnitPrice:    decimal.NewFromFloat(float64(5 + i%200)).Add(decimal.New(99, -2)),
			ReorderLevel: 5,
			SupplierID:   &supplierID,
		}
	}
	return items
}

func createSuppliers(n int) []domain.Supplier {
	suppliers := make([]domain.Supplier, n)
	for i := range suppliers {
		suppliers[i] = domain.Supplier{
			ID:       int64(i + 1),
			Name:     fmt.Sprintf("Bench Supplier %d", i+1),
			Category: string(benchCategories[i%len(benchCategories)]),
			IsActive: i%4 != 0,
		}
	}
	return suppliers
}
