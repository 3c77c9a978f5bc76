package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/store"
)

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit   int
		batchID string
	)

	cmd := &cobra.Command{
		Use:   "view <table>",
		Short: "Show the raw rows of a table",
		Long: `Show the raw rows of a table: ingredients, recipe, starters,
publish_notes or formulas.

Example:
  sakemonkey view starters --batch B-12
  sakemonkey view formulas --limit 20 --format json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: store.ViewNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			tbl, err := a.store.View(cmd.Context(), args[0], brew.NormalizeKey(batchID), limit)
			if errors.Is(err, store.ErrUnknownTable) {
				return a.out.Fail(usageError("%v", err))
			}
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(tbl, func(w io.Writer) {
				if len(tbl.Rows) == 0 {
					fmt.Fprintf(w, "No rows in %s.\n", tbl.Name)
					return
				}
				rows := make([][]string, len(tbl.Rows))
				for i, row := range tbl.Rows {
					cells := make([]string, len(tbl.Columns))
					for j, col := range tbl.Columns {
						cells[j] = formatCell(row[col])
					}
					rows[i] = cells
				}
				table(w, tbl.Columns, rows)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to show (0 for all)")
	cmd.Flags().StringVar(&batchID, "batch", "", "only rows of this batch")

	return cmd
}

func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return "-"
	case float64:
		return formatNumber(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case string:
		if c == "" {
			return "-"
		}
		return c
	default:
		return fmt.Sprint(c)
	}
}
