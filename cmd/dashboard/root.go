// cmd/dashboard/root.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/export"
)

// skipBootstrap marks commands that run without configuration or a backend session.
const skipBootstrap = "skip-bootstrap"

// newRootCmd builds the command tree. The caller closes the returned app once
// the command has run.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Inventory and supplier dashboard",
		Long:          "Browse, filter, page through and manage inventory items and suppliers held by the resell backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipBootstrap] == "true" {
				return nil
			}
			return a.init(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json, text, pretty")
	flags.Int("page-size", 0, "rows per page")

	// Config reads these keys through viper, so a set flag wins over the environment.
	for key, name := range map[string]string{
		"CONFIG_FILE":         "config",
		"LOG_LEVEL":           "log-level",
		"LOG_FORMAT":          "log-format",
		"DASHBOARD_PAGE_SIZE": "page-size",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	cmd.AddCommand(
		newResourceCmd(a, resourceDef[domain.InventoryItem]{
			use:     "items",
			aliases: []string{"inventory"},
			kind:    domain.KindInventory,
			sheet:   "Inventory",
			columns: export.InventoryColumns(),
			table:   a.inventoryTable,
		}),
		newResourceCmd(a, resourceDef[domain.Supplier]{
			use:     "suppliers",
			kind:    domain.KindSuppliers,
			sheet:   "Suppliers",
			columns: export.SupplierColumns(),
			table:   a.supplierTable,
		}),
		newStatsCmd(a),
		newWatchCmd(a),
		newCacheCmd(a),
		newVersionCmd(),
	)

	return cmd, a
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Annotations: map[string]string{skipBootstrap: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dashboard %s (built %s, %s)\n", Version, BuildTime, GoVersion)
		},
	}
}
