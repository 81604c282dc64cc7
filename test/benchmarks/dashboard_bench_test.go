package benchmarks

import (
	"context"
	"io"
	"testing"

	"github.com/ammerola/resell-dashboard/internal/analytics"
	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/view"
	"github.com/ammerola/resell-dashboard/internal/export"
	"github.com/ammerola/resell-dashboard/test/helpers"
)

func BenchmarkProjection(b *testing.B) {
	items := createLargeInventory(10000)

	b.Run("Page", func(b *testing.B) {
		state := view.DefaultState().WithPage(40)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = view.ProjectPage(items, state, view.PageSize)
		}
	})

	b.Run("Category", func(b *testing.B) {
		state := view.DefaultState().WithCategory(string(domain.CategoryTools))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = view.ProjectPage(items, state, view.PageSize)
		}
	})

	b.Run("Search", func(b *testing.B) {
		state := view.DefaultState().WithSearch("SHELF q")
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = view.ProjectPage(items, state, view.PageSize)
		}
	})

	b.Run("ShowAll", func(b *testing.B) {
		state := view.DefaultState().WithShowAll(true)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = view.ProjectPage(items, state, view.PageSize)
		}
	})
}

func BenchmarkCollection(b *testing.B) {
	ctx := context.Background()
	items := createLargeInventory(1000)

	b.Run("Load", func(b *testing.B) {
		cache := collection.New[domain.InventoryItem](domain.KindInventory, newMemoryClient(items), helpers.TestLogger())
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = cache.Load(ctx)
		}
	})

	b.Run("RemoveMany", func(b *testing.B) {
		ids := make([]int64, 100)
		for i := range ids {
			ids[i] = int64(i*10 + 1)
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			b.StopTimer()
			cache := collection.New[domain.InventoryItem](domain.KindInventory, newMemoryClient(items), helpers.TestLogger(),
				collection.WithConcurrency(8))
			_ = cache.Load(ctx)
			b.StartTimer()

			_, _ = cache.RemoveMany(ctx, ids)
		}
	})
}

func BenchmarkAnalytics(b *testing.B) {
	items := createLargeInventory(10000)
	suppliers := createSuppliers(50)

	b.Run("Inventory", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = analytics.SummarizeInventory(items)
		}
	})

	b.Run("Suppliers", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = analytics.SummarizeSuppliers(suppliers, items)
		}
	})
}

func BenchmarkExport(b *testing.B) {
	items := createLargeInventory(1000)
	columns := export.InventoryColumns()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = export.WriteXLSX(io.Discard, "Inventory", items, columns)
	}
}
