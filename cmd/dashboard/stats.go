// cmd/dashboard/stats.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ammerola/resell-dashboard/internal/analytics"
)

type statsReport struct {
	Inventory analytics.InventorySummary `json:"inventory"`
	Suppliers analytics.SupplierSummary  `json:"suppliers"`
}

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stock and supplier coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inventory := a.inventoryTable()
			suppliers := a.supplierTable()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return inventory.Refresh(ctx) })
			g.Go(func() error { return suppliers.Refresh(ctx) })
			if err := g.Wait(); err != nil {
				return err
			}

			items := inventory.Cache().Items()
			report := statsReport{
				Inventory: analytics.SummarizeInventory(items),
				Suppliers: analytics.SummarizeSuppliers(suppliers.Cache().Items(), items),
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printStats(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func printStats(w io.Writer, r statsReport) error {
	inv := r.Inventory
	fmt.Fprintf(w, "Inventory: %d items, %d units, stock value %s\n", inv.TotalItems, inv.TotalUnits, inv.StockValue.StringFixed(2))
	fmt.Fprintf(w, "Low stock: %d, out of stock: %d\n\n", len(inv.LowStock), len(inv.OutOfStock))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tITEMS\tUNITS\tVALUE")
	for _, c := range inv.ByCategory {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", c.Category, c.Items, c.Units, c.StockValue.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sup := r.Suppliers
	fmt.Fprintf(w, "\nSuppliers: %d (%d active, %d inactive), %d items without a known supplier\n\n",
		sup.Total, sup.Active, sup.Inactive, sup.Unlinked)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUPPLIER\tACTIVE\tITEMS\tVALUE")
	for _, l := range sup.Load {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.Name, formatValue(l.Active), l.Items, l.StockValue.StringFixed(2))
	}
	return tw.Flush()
}
