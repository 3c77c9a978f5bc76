package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/tracker"
)

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		in    tracker.PublishInput
		flags *recordFlags
	)

	cmd := &cobra.Command{
		Use:   "publish <batch-id>",
		Short: "Write publish notes for a batch",
		Long: `Build the publish notes for a batch from its recipe. Pouch date, style
and water come from the recipe unless overridden. Batch size is total water
plus final water addition plus the finishing volume, in litres.

Example:
  sakemonkey publish B-12 --finishing-ml 150 --description "Bright, dry finish"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			in.BatchID = args[0]
			if err := flags.apply(); err != nil {
				return a.out.Fail(err)
			}
			res, err := a.svc.Publish(cmd.Context(), in)
			if err != nil {
				return a.out.Fail(err)
			}
			n := res.Record
			return a.out.Render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Publish notes for %s %s.\n", n.BatchID, res.Action())
				fields(w,
					[2]string{"Pouched", optDate(n.PouchDate)},
					[2]string{"Style", optStyle(n.Style)},
					[2]string{"Water", optText(n.Water)},
					[2]string{"Rice", optText(n.Rice)},
					[2]string{"ABV", optNumber(n.ABV)},
					[2]string{"SMV", optNumber(n.SMV)},
					[2]string{"Batch size L", optNumber(n.BatchSizeL)},
					[2]string{"Description", optText(n.Description)},
				)
			})
		},
	}

	flags = newRecordFlags(cmd)
	flags.date("pouch-date", "pouch date (default: from the recipe)", &in.PouchDate)
	flags.text("style", "style (default: from the recipe)", &in.Style)
	flags.text("water", "water ingredient id (default: from the recipe)", &in.Water)
	flags.float("finishing-ml", "finishing volume in mL", &in.FinishingVolumeML)
	flags.text("description", "tasting description", &in.Description)

	return cmd
}
