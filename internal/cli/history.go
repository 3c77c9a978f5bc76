package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit   int
		batchID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded gravity and dilution calculations",
		Long: `Show recorded gravity and dilution calculations, newest first.

Example:
  sakemonkey history --batch B-12 --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return rootOpts.formatter(cmd).Fail(usageError("--limit must not be negative"))
			}
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			calcs, err := a.store.ListCalculations(cmd.Context(), brew.NormalizeKey(batchID), limit)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(calcs, func(w io.Writer) {
				if len(calcs) == 0 {
					fmt.Fprintln(w, "No calculations recorded.")
					return
				}
				rows := make([][]string, len(calcs))
				for i, c := range calcs {
					rows[i] = []string{
						c.CreatedAt.UTC().Format(time.DateTime),
						string(c.Kind),
						optText(c.BatchID),
						calculationSummary(c),
					}
				}
				table(w, []string{"TIME", "KIND", "BATCH", "RESULT"}, rows)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum calculations to show (0 for all)")
	cmd.Flags().StringVar(&batchID, "batch", "", "only calculations for this batch")

	return cmd
}

func calculationSummary(c brew.Calculation) string {
	if c.Kind == brew.CalculationDilution {
		return fmt.Sprintf("%s: add %s L to %s L", optText(c.TargetProfile), optNumber(c.WaterToAddL), optNumber(c.CurrentVolumeL))
	}
	return fmt.Sprintf("SG %s ABV %s SMV %s", optNumber(c.CorrectedGravity), optNumber(c.CalculatedABV), optNumber(c.CalculatedSMV))
}
