package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/tracker"
)

// DiluteOptions holds flags for the dilute command.
type DiluteOptions struct {
	*RootOptions
	VolumeL float64
	Brix    float64
	SG      float64
	Target  string
	BatchID string
}

// NewDiluteCommand creates the dilute command.
func NewDiluteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiluteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dilute",
		Short: "Plan a water addition to reach a target profile",
		Long: `Compute how much water brings the tank to a target profile's brix and
estimate the resulting gravity. When --batch names a recipe, omitted --brix
and --sg default to the recipe's ferment finish values. The plan is appended
to the calculation history.

Example:
  sakemonkey dilute --volume 20 --brix 13.5 --sg 0.998 --target Pure
  sakemonkey dilute --volume 20 --batch B-12 --target Mixer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDilute(opts, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.VolumeL, "volume", 0, "current volume in litres (required)")
	cmd.Flags().Float64Var(&opts.Brix, "brix", 0, "current °Brix (default: recipe ferment finish brix)")
	cmd.Flags().Float64Var(&opts.SG, "sg", 0, "current specific gravity (default: recipe ferment finish gravity)")
	cmd.Flags().StringVar(&opts.Target, "target", "Pure", "target profile name")
	cmd.Flags().StringVar(&opts.BatchID, "batch", "", "batch to read ferment finish values from")
	_ = cmd.MarkFlagRequired("volume")

	return cmd
}

func runDilute(opts *DiluteOptions, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return opts.formatter(cmd).Fail(err)
	}
	defer a.close()

	req := tracker.DilutionRequest{
		BatchID: opts.BatchID,
		VolumeL: opts.VolumeL,
		Target:  opts.Target,
	}
	if cmd.Flags().Changed("brix") {
		req.Brix = brew.Float(opts.Brix)
	}
	if cmd.Flags().Changed("sg") {
		req.SG = brew.Float(opts.SG)
	}

	result, err := a.svc.Dilute(cmd.Context(), req)
	if err != nil {
		return a.out.Fail(err)
	}
	return a.out.Render(result, func(w io.Writer) { printDilution(w, result) })
}

func printDilution(w io.Writer, r tracker.DilutionResult) {
	d := r.Dilution
	if r.BrixFromRecipe {
		fmt.Fprintf(w, "Using ferment finish brix from %s\n", optText(r.Calculation.BatchID))
	}
	if r.SGFromRecipe {
		fmt.Fprintf(w, "Using ferment finish gravity from %s\n", optText(r.Calculation.BatchID))
	}
	fields(w,
		[2]string{"Target", fmt.Sprintf("%s (%s °Bx, SG %s)", d.Target.Name, formatNumber(d.Target.Brix), formatNumber(d.Target.SG))},
		[2]string{"Water to add", formatNumber(d.WaterToAddL) + " L"},
		[2]string{"Final volume", formatNumber(d.FinalVolumeL) + " L"},
		[2]string{"Final brix", formatNumber(d.FinalBrix)},
		[2]string{"Estimated SG", formatNumber(d.EstimatedSG)},
	)
	if d.NoOp {
		fmt.Fprintln(w, "Already at or below the target brix; no water needed.")
	}
	if d.GravityOff {
		fmt.Fprintf(w, "Warning: estimated gravity %s misses target %s\n", formatNumber(d.EstimatedSG), formatNumber(d.Target.SG))
	}
	if r.Calculation.ID != "" {
		fmt.Fprintf(w, "Recorded: %s\n", r.Calculation.ID)
	}
}
