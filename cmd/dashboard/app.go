// cmd/dashboard/app.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/resell-dashboard/internal/adapters/api"
	redis_a "github.com/ammerola/resell-dashboard/internal/adapters/redis_adapter"
	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/ports"
	"github.com/ammerola/resell-dashboard/internal/core/services"
	"github.com/ammerola/resell-dashboard/internal/notify"
	"github.com/ammerola/resell-dashboard/internal/observability"
	"github.com/ammerola/resell-dashboard/internal/pkg/config"
	"github.com/ammerola/resell-dashboard/internal/pkg/logger"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	bus     *notify.Bus
	session *api.Session

	redisClient *redis.Client
	listCache   *redis_a.Cache

	unsubscribe []func()
}

func (a *app) init(ctx context.Context, toasts io.Writer) error {
	// Bootstrap logger until the configured one is known
	bootLogger := logger.SetupLogger("info", "text")

	cfg, err := config.Load(bootLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	a.logger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger
	a.logger.Debug("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("api", cfg.API.BaseURL),
		slog.Int("page_size", cfg.Dashboard.PageSize),
	)

	secrets, err := config.NewSecretsManager(ctx, cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize secrets manager: %w", err)
	}
	if err := config.ResolveCredentials(ctx, cfg, secrets); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		a.metrics = observability.InitMetrics(cfg.Metrics.Namespace)
	}

	a.bus = notify.NewBus()
	a.unsubscribe = append(a.unsubscribe, a.bus.Subscribe(toastPrinter(toasts)))

	session, err := api.NewSession(cfg, api.NewTransport(cfg.API, a.metrics, a.logger), a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize api session: %w", err)
	}
	if err := session.Login(ctx); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	a.session = session

	if cfg.Redis.Enabled {
		a.connectRedis(ctx)
	}

	return nil
}

// connectRedis enables the shared list cache. An unreachable Redis only
// disables it; the dashboard keeps working against the API.
func (a *app) connectRedis(ctx context.Context) {
	a.logger.Debug("connecting to Redis", slog.String("address", a.cfg.GetRedisAddress()))

	client := redis_a.NewClient(a.cfg.Redis)
	cache := redis_a.NewCache(client, a.cfg.Redis.TTL, a.logger)
	if err := cache.Ping(ctx); err != nil {
		a.logger.Warn("redis unavailable, list cache disabled",
			slog.String("address", a.cfg.GetRedisAddress()),
			slog.String("error", err.Error()))
		client.Close()
		return
	}

	a.redisClient = client
	a.listCache = cache
}

func (a *app) close() {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("failed to close Redis client", slog.String("error", err.Error()))
		}
		a.redisClient = nil
	}
}

func (a *app) inventoryTable(opts ...collection.Option) *services.Table[domain.InventoryItem] {
	return newTable[domain.InventoryItem](a, domain.KindInventory, a.cfg.API.InventoryPath, opts...)
}

func (a *app) supplierTable(opts ...collection.Option) *services.Table[domain.Supplier] {
	return newTable[domain.Supplier](a, domain.KindSuppliers, a.cfg.API.SuppliersPath, opts...)
}

// newTable wires one resource: API client, optional list cache, collection
// cache and the table services on top. opts are applied after the configured
// defaults.
func newTable[T domain.Resource](a *app, kind domain.ResourceKind, path string, opts ...collection.Option) *services.Table[T] {
	var client ports.ResourceClient[T] = api.NewResourceClient[T](a.session, kind, path, a.logger,
		api.WithRetryMax(a.cfg.API.RetryMax))
	if a.listCache != nil {
		client = redis_a.NewCachedClient[T](client, a.listCache, kind, a.cfg.Redis.TTL, a.metrics, a.logger)
	}

	// Validated by config.Load
	policy, _ := collection.ParsePolicy(a.cfg.Dashboard.BulkPolicy)

	cacheOpts := append([]collection.Option{
		collection.WithPolicy(policy),
		collection.WithConcurrency(a.cfg.Dashboard.BulkConcurrency),
		collection.WithNotifier(a.bus),
		collection.WithMetrics(a.metrics),
	}, opts...)

	cache := collection.New[T](kind, client, a.logger, cacheOpts...)
	return services.NewTable(cache, a.cfg.Dashboard.PageSize, a.logger)
}

// toastPrinter renders notifications the way the dashboard shows toasts.
func toastPrinter(w io.Writer) notify.Handler {
	return func(n domain.Notification) {
		if n.Message == "" {
			fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Title)
			return
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", n.Level, n.Title, n.Message)
	}
}
