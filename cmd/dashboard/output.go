// cmd/dashboard/output.go
package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/view"
	"github.com/ammerola/resell-dashboard/internal/export"
)

// printRows renders rows as an aligned table using the export column set.
func printRows[T domain.Resource](w io.Writer, rows []T, columns []export.Column[T]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = strings.ToUpper(col.Header)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			cells[i] = formatValue(col.Value(row))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.StringFixed(2)
	case time.Time:
		if val.IsZero() {
			return "-"
		}
		return val.Local().Format("2006-01-02 15:04")
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case string:
		if val == "" {
			return "-"
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

func printFooter[T domain.Resource](w io.Writer, state view.State, result view.Result[T]) {
	if state.ShowAll {
		fmt.Fprintf(w, "\n%d matching, all shown\n", result.TotalCount)
		return
	}
	fmt.Fprintf(w, "\npage %d of %d, %d matching\n", state.Page, max(1, result.TotalPages), result.TotalCount)
}

func printBulkResult(w io.Writer, result collection.BulkResult) {
	fmt.Fprintf(w, "Deleted %d", len(result.Deleted))
	if n := len(result.Failed); n > 0 {
		fmt.Fprintf(w, ", failed %d", n)
	}
	if n := len(result.Skipped); n > 0 {
		fmt.Fprintf(w, ", skipped %d already in flight", n)
	}
	if n := len(result.RolledBack); n > 0 {
		fmt.Fprintf(w, ", restored %d", n)
	}
	fmt.Fprintln(w)
}
