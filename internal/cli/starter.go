package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/store"
)

// NewStarterCommand creates the starter command group.
func NewStarterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "starter",
		Short: "Manage shubo starters",
	}
	cmd.AddCommand(newStarterAddCommand(rootOpts))
	cmd.AddCommand(newStarterListCommand(rootOpts))
	return cmd
}

func newStarterAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		st    brew.Starter
		flags *recordFlags
	)

	cmd := &cobra.Command{
		Use:   "add [code]",
		Short: "Create or update a starter",
		Long: `Create or update a shubo starter. Codes are written "s<number>"; a bare
number is accepted. Without a code the next free one is used.

Saving a starter that belongs to a batch recomputes that recipe's kake, koji
and water totals.

Example:
  sakemonkey starter add --batch-id B-12 --kake-g 100 --koji-g 60 --water-ml 300
  sakemonkey starter add 64 --temp 18`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			if len(args) == 1 {
				code := brew.FormatStarterCode(brew.NormalizeKey(args[0]))
				existing, err := a.store.GetStarter(cmd.Context(), code)
				switch {
				case err == nil:
					st = existing
				case !errors.Is(err, store.ErrNotFound):
					return a.out.Fail(err)
				}
				st.Batch = code
			}
			if err := flags.apply(); err != nil {
				return a.out.Fail(err)
			}

			res, err := a.svc.SaveStarter(cmd.Context(), st)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Starter %s %s.\n", res.Record.Batch, res.Action())
				if res.Record.BatchID != nil {
					fmt.Fprintf(w, "Recipe %s totals refreshed.\n", *res.Record.BatchID)
				}
			})
		},
	}

	flags = newRecordFlags(cmd)
	flags.date("date", "starter date (default: today)", &st.Date)
	flags.text("batch-id", "recipe this starter belongs to", &st.BatchID)
	flags.text("kake", "kake rice ingredient id", &st.Kake)
	flags.text("koji", "koji rice ingredient id", &st.Koji)
	flags.text("yeast", "yeast ingredient id", &st.Yeast)
	flags.text("water", "water ingredient id", &st.WaterType)
	flags.float("kake-g", "kake in g", &st.AmtKakeG)
	flags.float("koji-g", "koji in g", &st.AmtKojiG)
	flags.float("water-ml", "water in mL", &st.AmtWaterML)
	flags.float("lactic-acid", "lactic acid in g", &st.LacticAcidG)
	flags.float("mgso4", "MgSO4 in g", &st.MgSO4G)
	flags.float("kcl", "KCl in g", &st.KClG)
	flags.float("temp", "starter temperature in °C", &st.TempC)

	return cmd
}

func newStarterListCommand(rootOpts *RootOptions) *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List starters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			starters, err := a.store.ListStarters(cmd.Context(), brew.NormalizeKey(batchID))
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(starters, func(w io.Writer) {
				if len(starters) == 0 {
					fmt.Fprintln(w, "No starters.")
					return
				}
				rows := make([][]string, len(starters))
				for i, s := range starters {
					rows[i] = []string{s.Batch, optText(s.BatchID), optDate(s.Date), optNumber(s.AmtKakeG), optNumber(s.AmtKojiG), optNumber(s.AmtWaterML), optText(s.Yeast)}
				}
				table(w, []string{"CODE", "BATCH", "DATE", "KAKE G", "KOJI G", "WATER ML", "YEAST"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "only starters of this batch")

	return cmd
}
