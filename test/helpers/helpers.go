// test/helpers/test_helpers.go
package helpers

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/pkg/config"
)

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-dashboard",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		API: config.APIConfig{
			BaseURL:       "http://localhost:3000/api",
			InventoryPath: "inventory",
			SuppliersPath: "suppliers",
			LoginPath:     "auth/login",
			CSRFPath:      "csrf-token",
			CSRFHeader:    "X-CSRF-Token",
			Timeout:       5 * time.Second,
			RateLimit:     100,
			RateBurst:     10,
			RetryMax:      2,
		},
		Dashboard: config.DashboardConfig{
			PageSize:        5,
			BulkPolicy:      "per_item",
			BulkConcurrency: 4,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Minute,
			PoolSize: 10,
		},
		Storage: config.StorageConfig{
			Provider: "local",
			LocalDir: os.TempDir(),
		},
		Secrets: config.SecretsConfig{
			Provider: "env",
		},
	}
}

// CreateTestInventoryItem creates a test inventory item
func CreateTestInventoryItem(overrides ...func(*domain.InventoryItem)) *domain.InventoryItem {
	supplierID := int64(1)
	item := &domain.InventoryItem{
		ID:           1,
		Name:         "Test Blender",
		Description:  "Countertop blender, 1.5L glass jar",
		SKU:          "BL-001",
		Category:     domain.CategoryPtr(domain.CategoryElectronics),
		Quantity:     10,
		UnitPrice:    decimal.NewFromFloat(49.99),
		ReorderLevel: 3,
		SupplierID:   &supplierID,
		Location:     "A-01",
		CreatedAt:    time.Now().AddDate(0, -1, 0),
		UpdatedAt:    time.Now(),
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestInventoryItems creates multiple test inventory items with ids 1..count
func CreateTestInventoryItems(count int) []domain.InventoryItem {
	items := make([]domain.InventoryItem, count)

	categories := []domain.ItemCategory{
		domain.CategoryElectronics,
		domain.CategoryFurniture,
		domain.CategoryTools,
	}

	for i := 0; i < count; i++ {
		items[i] = *CreateTestInventoryItem(func(item *domain.InventoryItem) {
			item.ID = int64(i + 1)
			item.Name = fmt.Sprintf("Test Item %d", i+1)
			item.SKU = fmt.Sprintf("SKU-%03d", i+1)
			item.Category = domain.CategoryPtr(categories[i%len(categories)])
			item.Quantity = i
			item.UnitPrice = decimal.NewFromFloat(float64(10 + (i * 5)))
		})
	}

	return items
}

// CreateTestSupplier creates a test supplier
func CreateTestSupplier(overrides ...func(*domain.Supplier)) *domain.Supplier {
	s := &domain.Supplier{
		ID:            1,
		Name:          "Acme Wholesale",
		Category:      "Electronics",
		ContactPerson: "Dana Reyes",
		Email:         "orders@acme.example",
		Phone:         "+1 555 0100",
		Address:       "1 Industrial Way",
		IsActive:      true,
		CreatedAt:     time.Now().AddDate(0, -2, 0),
		UpdatedAt:     time.Now(),
	}

	for _, override := range overrides {
		override(s)
	}

	return s
}

// CreateTestSuppliers creates multiple test suppliers with ids 1..count
func CreateTestSuppliers(count int) []domain.Supplier {
	suppliers := make([]domain.Supplier, count)
	categories := []string{"Electronics", "Packaging"}

	for i := 0; i < count; i++ {
		suppliers[i] = *CreateTestSupplier(func(s *domain.Supplier) {
			s.ID = int64(i + 1)
			s.Name = fmt.Sprintf("Supplier %d", i+1)
			s.Email = fmt.Sprintf("supplier%d@example.com", i+1)
			s.Category = categories[i%len(categories)]
			s.IsActive = i%3 != 0
		})
	}

	return suppliers
}

// IDs returns the resource ids in order.
func IDs[T domain.Resource](items []T) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ResourceID()
	}
	return ids
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

