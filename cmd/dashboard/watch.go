// cmd/dashboard/watch.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ammerola/resell-dashboard/internal/notify"
)

const metricsShutdownTimeout = 5 * time.Second

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload both collections periodically and serve metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.unsubscribe = append(a.unsubscribe, a.bus.Subscribe(notify.LogSubscriber(a.logger)))

			g, ctx := errgroup.WithContext(cmd.Context())
			if a.cfg.Metrics.Enabled {
				g.Go(func() error { return serveMetrics(ctx, a.cfg.Metrics.Addr, a.logger) })
			}
			g.Go(func() error {
				poll(ctx, a, interval)
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "reload interval")
	return cmd
}

// poll reloads both collections until ctx is done. Load failures are reported
// through notifications and do not stop the loop.
func poll(ctx context.Context, a *app, interval time.Duration) {
	inventory := a.inventoryTable()
	suppliers := a.supplierTable()

	ticker := time.NewTicker(max(interval, time.Second))
	defer ticker.Stop()

	for {
		start := time.Now()
		invErr := inventory.Refresh(ctx)
		supErr := suppliers.Refresh(ctx)
		if invErr == nil && supErr == nil {
			a.logger.Info("collections reloaded",
				slog.Int("inventory", len(inventory.Cache().Items())),
				slog.Int("suppliers", len(suppliers.Cache().Items())),
				slog.Duration("duration", time.Since(start)),
			)
		}

		select {
		case <-ctx.Done():
			a.logger.Info("watch stopped")
			return
		case <-ticker.C:
		}
	}
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", slog.String("address", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down metrics server", slog.String("error", err.Error()))
			server.Close()
		}
		return nil
	}
}
