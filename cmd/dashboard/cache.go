// cmd/dashboard/cache.go
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ammerola/resell-dashboard/internal/adapters/api"
	redis_a "github.com/ammerola/resell-dashboard/internal/adapters/redis_adapter"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
)

var errListCacheDisabled = errors.New("list cache is disabled (set REDIS_ENABLED=true)")

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the shared list cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show how long each cached list stays fresh",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if a.listCache == nil {
					return errListCacheDisabled
				}
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				lists := []struct {
					kind      domain.ResourceKind
					freshness func(context.Context) (time.Duration, error)
				}{
					{domain.KindInventory, freshness[domain.InventoryItem](a, domain.KindInventory, a.cfg.API.InventoryPath)},
					{domain.KindSuppliers, freshness[domain.Supplier](a, domain.KindSuppliers, a.cfg.API.SuppliersPath)},
				}
				for _, list := range lists {
					left, err := list.freshness(ctx)
					switch {
					case errors.Is(err, redis_a.ErrCacheMiss):
						fmt.Fprintf(out, "%s: not cached\n", list.kind)
					case err != nil:
						return err
					default:
						fmt.Fprintf(out, "%s: fresh for %s\n", list.kind, left.Round(time.Second))
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Drop every cached list",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if a.listCache == nil {
					return errListCacheDisabled
				}
				if err := redis_a.InvalidateAll(cmd.Context(), a.listCache); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "List cache cleared.")
				return nil
			},
		},
	)
	return cmd
}

func freshness[T domain.Resource](a *app, kind domain.ResourceKind, path string) func(context.Context) (time.Duration, error) {
	client := redis_a.NewCachedClient[T](api.NewResourceClient[T](a.session, kind, path, a.logger),
		a.listCache, kind, a.cfg.Redis.TTL, a.metrics, a.logger)
	return client.Freshness
}
