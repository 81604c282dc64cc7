// cmd/dashboard/resource.go
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ammerola/resell-dashboard/internal/adapters/storage"
	"github.com/ammerola/resell-dashboard/internal/core/collection"
	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/services"
	"github.com/ammerola/resell-dashboard/internal/core/view"
	"github.com/ammerola/resell-dashboard/internal/export"
)

// resourceDef describes one dashboard table.
type resourceDef[T domain.Resource] struct {
	use     string
	aliases []string
	kind    domain.ResourceKind
	sheet   string
	columns []export.Column[T]
	table   func(opts ...collection.Option) *services.Table[T]
}

func newResourceCmd[T domain.Resource](a *app, res resourceDef[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     res.use,
		Aliases: res.aliases,
		Short:   fmt.Sprintf("Manage %s", res.kind),
	}

	cmd.AddCommand(
		newListCmd(res),
		newDeleteCmd(res),
		newBulkDeleteCmd(res),
		newSelectPageCmd(res),
		newCreateCmd(res),
		newUpdateCmd(res),
		newExportCmd(a, res),
	)
	return cmd
}

// viewFlags are the filter and paging flags shared by list, select-page and export.
type viewFlags struct {
	category string
	search   string
	page     int
	showAll  bool
}

func (f *viewFlags) register(cmd *cobra.Command, paging bool) {
	cmd.Flags().StringVar(&f.category, "category", view.AllCategories, "category tab")
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive search term")
	if paging {
		cmd.Flags().IntVar(&f.page, "page", 1, "page number")
		cmd.Flags().BoolVar(&f.showAll, "all", false, "show every matching row on one page")
	}
}

func (f viewFlags) apply(t interface {
	SetCategory(string)
	SetSearch(string)
	SetShowAll(bool)
	SetPage(int)
}) {
	t.SetCategory(f.category)
	t.SetSearch(f.search)
	t.SetShowAll(f.showAll)
	t.SetPage(f.page)
}

func newListCmd[T domain.Resource](res resourceDef[T]) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s through the current view", res.kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := res.table()
			if err := t.Refresh(cmd.Context()); err != nil {
				return err
			}
			flags.apply(t)

			result := t.View()
			out := cmd.OutOrStdout()
			if err := printRows(out, result.Rows, res.columns); err != nil {
				return err
			}
			printFooter(out, t.State(), result)
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newDeleteCmd[T domain.Resource](res resourceDef[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: fmt.Sprintf("Delete one of the %s", res.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			t := res.table()
			if err := t.Refresh(cmd.Context()); err != nil {
				return err
			}
			return t.Delete(cmd.Context(), ids[0])
		},
	}
}

// bulkFlags configure the confirmation step of a bulk delete.
type bulkFlags struct {
	yes    bool
	policy string
}

func (f *bulkFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&f.policy, "policy", "", "failure policy: per_item or all_or_nothing (default from config)")
}

func (f bulkFlags) options() ([]collection.Option, error) {
	if f.policy == "" {
		return nil, nil
	}
	policy, err := collection.ParsePolicy(f.policy)
	if err != nil {
		return nil, err
	}
	return []collection.Option{collection.WithPolicy(policy)}, nil
}

func newBulkDeleteCmd[T domain.Resource](res resourceDef[T]) *cobra.Command {
	var flags bulkFlags

	cmd := &cobra.Command{
		Use:   "bulk-delete ID...",
		Short: fmt.Sprintf("Delete several %s after confirmation", res.kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}

			t := res.table(opts...)
			if err := t.Refresh(cmd.Context()); err != nil {
				return err
			}
			return confirmBulkDelete(cmd, res, t, ids, flags.yes)
		},
	}
	flags.register(cmd)
	return cmd
}

func newSelectPageCmd[T domain.Resource](res resourceDef[T]) *cobra.Command {
	var (
		filters viewFlags
		flags   bulkFlags
	)

	cmd := &cobra.Command{
		Use:   "select-page",
		Short: fmt.Sprintf("Select every %s row on a page and bulk delete it", res.kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			t := res.table(opts...)
			if err := t.Refresh(cmd.Context()); err != nil {
				return err
			}
			filters.apply(t)
			t.SelectAll(true)

			return confirmBulkDelete(cmd, res, t, t.Selection().Selected(), flags.yes)
		},
	}
	filters.register(cmd, true)
	flags.register(cmd)
	return cmd
}

// confirmBulkDelete walks the bulk coordinator through request, confirmation
// and execution.
func confirmBulkDelete[T domain.Resource](cmd *cobra.Command, res resourceDef[T], t *services.Table[T], ids []int64, yes bool) error {
	bulk := t.Bulk()

	rows, err := bulk.Request(ids)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "About to delete %d %s:\n", len(bulk.PendingIDs()), res.kind)
	if err := printRows(out, rows, res.columns); err != nil {
		bulk.Cancel()
		return err
	}

	if !yes {
		ok, err := promptYes(cmd.InOrStdin(), out, "Delete these rows? [y/N] ")
		if err != nil || !ok {
			bulk.Cancel()
			fmt.Fprintln(out, "Cancelled.")
			return err
		}
	}

	result, err := t.ConfirmBulkDelete(cmd.Context())
	printBulkResult(out, result)
	return err
}

func newCreateCmd[T domain.Resource](res resourceDef[T]) *cobra.Command {
	var file, key string

	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create one of the %s from a JSON draft", res.kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := readDraft[T](cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if key == "" {
				key = services.NewKey()
			}

			t := res.table()
			created, err := t.Create(cmd.Context(), key, draft)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Retry with --key %s to avoid a duplicate.\n", key)
				return err
			}
			return printRows(cmd.OutOrStdout(), []T{created}, res.columns)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON draft file, - for stdin")
	cmd.Flags().StringVar(&key, "key", "", "idempotency key of the submission (generated when empty)")
	return cmd
}

func newUpdateCmd[T domain.Resource](res resourceDef[T]) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: fmt.Sprintf("Update fields of one of the %s", res.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			patch, err := parsePatch(sets)
			if err != nil {
				return err
			}

			t := res.table()
			if err := t.Refresh(cmd.Context()); err != nil {
				return err
			}
			updated, err := t.Save(cmd.Context(), ids[0], patch)
			if err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), []T{updated}, res.columns)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value, repeatable; values are parsed as JSON when possible")
	cmd.MarkFlagRequired("set")
	return cmd
}

func newExportCmd[T domain.Resource](a *app, res resourceDef[T]) *cobra.Command {
	var (
		flags  viewFlags
		out    string
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: fmt.Sprintf("Export every %s row matching the filters to Excel", res.kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			t := res.table()
			if err := t.Refresh(ctx); err != nil {
				return err
			}
			flags.showAll = true
			flags.page = 1
			flags.apply(t)
			rows := t.View().Rows

			data, err := export.Bytes(res.sheet, rows, res.columns)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(w, "Exported %d %s to %s\n", len(rows), res.kind, out)
			}

			if !upload {
				return nil
			}

			store, err := storage.New(ctx, a.cfg.Storage, a.logger)
			if err != nil {
				return fmt.Errorf("failed to initialize export storage: %w", err)
			}
			key := storage.ExportKey(res.kind, time.Now())
			if _, err := store.Upload(ctx, key, bytes.NewReader(data), export.ContentType); err != nil {
				return err
			}
			link, err := store.GetPresignedURL(ctx, key, a.cfg.Storage.PresignExpiry)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Uploaded %d %s to %s\n%s\n", len(rows), res.kind, key, link)
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the workbook to this file")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the workbook to export storage and print a download link")
	cmd.MarkFlagsOneRequired("out", "upload")
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parsePatch turns field=value pairs into an update body. A value that is
// valid JSON keeps its JSON type; anything else is sent as a string.
func parsePatch(sets []string) (map[string]any, error) {
	patch := make(map[string]any, len(sets))
	for _, set := range sets {
		field, raw, ok := strings.Cut(set, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q, want field=value", set)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		patch[field] = value
	}
	return patch, nil
}

// readDraft decodes a draft from file, or from stdin when file is "-".
func readDraft[T domain.Resource](stdin io.Reader, file string) (T, error) {
	var draft T

	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return draft, fmt.Errorf("failed to open draft: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&draft); err != nil {
		return draft, fmt.Errorf("failed to decode draft: %w", err)
	}
	if v, ok := any(&draft).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return draft, &domain.ValidationError{Message: err.Error()}
		}
	}
	return draft, nil
}

func promptYes(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
