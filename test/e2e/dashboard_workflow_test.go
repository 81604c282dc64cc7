//go:build e2e
// +build e2e

package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ammerola/resell-dashboard/internal/adapters/api"
	redis_a "github.com/ammerola/resell-dashboard/internal/adapters/redis_adapter"
	"github.com/ammerola/resell-dashboard/internal/analytics"
	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/services"
	"github.com/ammerola/resell-dashboard/internal/export"
	"github.com/ammerola/resell-dashboard/internal/notify"
	"github.com/ammerola/resell-dashboard/test/helpers"
)

// DashboardE2ESuite drives the inventory and supplier tables through the
// REST adapter and the Redis list cache against an in-memory backend.
type DashboardE2ESuite struct {
	suite.Suite

	backend   *backend
	testRedis *helpers.TestRedis
	listCache *redis_a.Cache
	bus       *notify.Bus
	toasts    []domain.Notification
	toastsMu  sync.Mutex

	inventory *services.Table[domain.InventoryItem]
	suppliers *services.Table[domain.Supplier]
}

func (s *DashboardE2ESuite) SetupTest() {
	s.backend = newBackend()
	s.T().Cleanup(s.backend.server.Close)

	s.testRedis = helpers.SetupTestRedis(s.T())
	s.listCache = redis_a.NewCache(s.testRedis.Client, time.Minute, helpers.TestLogger())

	s.toasts = nil
	s.bus = notify.NewBus()
	s.bus.Subscribe(func(n domain.Notification) {
		s.toastsMu.Lock()
		s.toasts = append(s.toasts, n)
		s.toastsMu.Unlock()
	})

	cfg := helpers.LoadTestConfig()
	cfg.API.BaseURL = s.backend.server.URL + "/api"
	cfg.API.Username = "ops"
	cfg.API.Password = "secret"

	session, err := api.NewSession(cfg, api.NewTransport(cfg.API, nil, helpers.TestLogger()), helpers.TestLogger())
	s.Require().NoError(err)
	s.Require().NoError(session.Login(context.Background()))

	s.inventory = newTable[domain.InventoryItem](s, session, domain.KindInventory, "inventory")
	s.suppliers = newTable[domain.Supplier](s, session, domain.KindSuppliers, "suppliers")
}

func newTable[T domain.Resource](s *DashboardE2ESuite, session *api.Session, kind domain.ResourceKind, path string) *services.Table[T] {
	client := redis_a.NewCachedClient[T](
		api.NewResourceClient[T](session, kind, path, helpers.TestLogger(), api.WithRetryMax(0)),
		s.listCache, kind, time.Minute, nil, helpers.TestLogger())
	cache := collection.New[T](kind, client, helpers.TestLogger(), collection.WithNotifier(s.bus))
	return services.NewTable(cache, 5, helpers.TestLogger())
}

func (s *DashboardE2ESuite) TestCompleteDashboardWorkflow() {
	ctx := context.Background()

	// 1. Load both tables; the second refresh is served from Redis
	s.Require().NoError(s.inventory.Refresh(ctx))
	s.Require().NoError(s.suppliers.Refresh(ctx))
	s.Require().NoError(s.inventory.Refresh(ctx))
	s.Equal(int32(1), s.backend.lists.Load())
	s.True(s.testRedis.Server.Exists(redis_a.ListKey(domain.KindInventory)))

	// 2. Page through and filter
	s.inventory.SetPage(2)
	page := s.inventory.View()
	s.Equal([]int64{6, 7}, page.IDs())
	s.Equal(2, page.TotalPages)

	s.inventory.SetCategory(string(domain.CategoryTools))
	s.Equal([]int64{3, 6}, s.inventory.View().IDs())
	s.inventory.SetCategory("")

	// 3. Create a supplier with an idempotency key
	key := services.NewKey()
	created, err := s.suppliers.Create(ctx, key, domain.Supplier{Name: "Harbor Freight", Category: "Tools", IsActive: true})
	s.Require().NoError(err)
	s.Equal(int64(100), created.ID)
	s.Equal([]string{key}, s.backend.createKeys)
	s.Len(s.suppliers.Cache().Items(), 4)
	s.False(s.testRedis.Server.Exists(redis_a.ListKey(domain.KindSuppliers)))

	// 4. Update an item in place
	updated, err := s.inventory.Save(ctx, 3, map[string]any{"quantity": 0})
	s.Require().NoError(err)
	s.Equal(0, updated.Quantity)
	s.Equal(0, s.inventory.Cache().Find([]int64{3})[0].Quantity)

	// 5. Delete the whole second page; the view falls back to page 1
	s.inventory.SetPage(2)
	s.inventory.SelectAll(true)
	s.Equal([]int64{6, 7}, s.inventory.Selection().Selected())

	result, err := s.inventory.DeleteSelected(ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]int64{6, 7}, result.Deleted)
	s.Equal(1, s.inventory.State().Page)
	s.Equal(0, s.inventory.Selection().Len())
	s.Equal([]int64{1, 2, 3, 4, 5}, helpers.IDs(s.inventory.Cache().Items()))

	// 6. Summaries and export read the cached rows
	summary := analytics.SummarizeInventory(s.inventory.Cache().Items())
	s.Equal(5, summary.TotalItems)
	s.Contains(summary.OutOfStock, int64(3))

	data, err := export.Bytes("Inventory", s.inventory.Cache().Items(), export.InventoryColumns())
	s.Require().NoError(err)
	s.NotEmpty(data)

	// 7. A fresh load after the mutations comes from the backend again
	s.Require().NoError(s.inventory.Refresh(ctx))
	s.Equal(int32(2), s.backend.lists.Load())
	s.Equal([]int64{1, 2, 3, 4, 5}, helpers.IDs(s.inventory.Cache().Items()))
}

func (s *DashboardE2ESuite) TestBulkDeletePartialFailure() {
	ctx := context.Background()
	s.backend.failDelete(2)

	s.Require().NoError(s.inventory.Refresh(ctx))

	result, err := s.inventory.BulkDelete(ctx, []int64{1, 2, 3})
	s.Require().Error(err)

	var bulkErr *domain.BulkDeleteError
	s.Require().ErrorAs(err, &bulkErr)
	s.Equal([]int64{2}, bulkErr.FailedIDs())
	s.ElementsMatch([]int64{1, 3}, result.Deleted)
	s.Equal([]int64{2, 4, 5, 6, 7}, helpers.IDs(s.inventory.Cache().Items()))
	s.Equal(services.BulkIdle, s.inventory.Bulk().State())

	s.toastsMu.Lock()
	defer s.toastsMu.Unlock()
	s.Require().NotEmpty(s.toasts)
	s.Equal(domain.LevelError, s.toasts[len(s.toasts)-1].Level)
}

func (s *DashboardE2ESuite) TestRejectedTokenIsReprimed() {
	ctx := context.Background()
	s.Require().NoError(s.inventory.Refresh(ctx))
	s.backend.rejectNextToken.Store(true)

	err := s.inventory.Delete(ctx, 1)
	s.Require().Error(err)
	s.Equal("invalid anti-forgery token", domain.UserMessage(err))
	s.Equal([]int64{1, 2, 3, 4, 5}, s.inventory.View().IDs())

	s.Require().NoError(s.inventory.Delete(ctx, 1))
	s.Equal(int32(2), s.backend.csrfCalls.Load())
}

func (s *DashboardE2ESuite) TestConcurrentDeletes() {
	ctx := context.Background()
	s.Require().NoError(s.inventory.Refresh(ctx))

	var wg sync.WaitGroup
	for id := int64(1); id <= 7; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.inventory.Delete(ctx, id))
		}()
	}
	wg.Wait()

	s.Empty(s.inventory.Cache().Items())
	s.Len(s.backend.deletedIDs(), 7)
	s.Equal(1, s.inventory.State().Page)
}

// backend is an in-memory dashboard API.
type backend struct {
	server *httptest.Server

	lists           atomic.Int32
	csrfCalls       atomic.Int32
	rejectNextToken atomic.Bool

	mu         sync.Mutex
	items      []domain.InventoryItem
	suppliers  []domain.Supplier
	failing    map[int64]bool
	deleted    []int64
	createKeys []string
}

func newBackend() *backend {
	b := &backend{
		items:     helpers.CreateTestInventoryItems(7),
		suppliers: helpers.CreateTestSuppliers(3),
		failing:   map[int64]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "e2e", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/csrf-token", func(w http.ResponseWriter, r *http.Request) {
		n := b.csrfCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"csrfToken": fmt.Sprintf("tok-%d", n)})
	})
	mux.HandleFunc("GET /api/inventory", func(w http.ResponseWriter, r *http.Request) {
		b.lists.Add(1)
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"items": b.items})
	})
	mux.HandleFunc("GET /api/suppliers", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.suppliers)
	})
	mux.HandleFunc("POST /api/suppliers", func(w http.ResponseWriter, r *http.Request) {
		var draft domain.Supplier
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		draft.ID = int64(100 + len(b.createKeys))
		b.createKeys = append(b.createKeys, r.Header.Get(api.HeaderIdempotencyKey))
		b.suppliers = append(b.suppliers, draft)
		writeJSON(w, http.StatusCreated, draft)
	})
	mux.HandleFunc("PUT /api/inventory/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var patch map[string]any
		_ = json.NewDecoder(r.Body).Decode(&patch)

		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.items {
			if b.items[i].ID == id {
				if q, ok := patch["quantity"].(float64); ok {
					b.items[i].Quantity = int(q)
				}
				writeJSON(w, http.StatusOK, map[string]any{"data": b.items[i]})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "item not found"})
	})
	mux.HandleFunc("DELETE /api/inventory/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if b.rejectNextToken.CompareAndSwap(true, false) {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "invalid anti-forgery token"})
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failing[id] {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
			return
		}
		b.deleted = append(b.deleted, id)
		b.items = slices.DeleteFunc(b.items, func(i domain.InventoryItem) bool { return i.ID == id })
		w.WriteHeader(http.StatusNoContent)
	})

	b.server = httptest.NewServer(mux)
	return b
}

func (b *backend) failDelete(id int64) {
	b.mu.Lock()
	b.failing[id] = true
	b.mu.Unlock()
}

func (b *backend) deletedIDs() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.deleted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDashboardE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(DashboardE2ESuite))
}
