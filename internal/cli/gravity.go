package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/formula"
	"github.com/sakemonkey/sakemonkey/internal/tracker"
)

// GravityOptions holds flags for the gravity command.
type GravityOptions struct {
	*RootOptions
	TempC            float64
	SG               float64
	Brix             float64
	CalibrationTempC float64
	BatchID          string
	DryRun           bool
}

// NewGravityCommand creates the gravity command.
func NewGravityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GravityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gravity",
		Short: "Correct a hydrometer reading and derive ABV and SMV",
		Long: `Correct a hydrometer reading for temperature and derive SMV and, when
--brix is given, ABV. The result is appended to the calculation history
unless --dry-run is set.

Example:
  sakemonkey gravity --temp 25 --sg 1.050
  sakemonkey gravity --temp 20 --sg 0.998 --brix 8 --batch B-12
  sakemonkey gravity --temp 15 --sg 1.000 --calibration 15.6 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGravity(opts, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.TempC, "temp", 0, "measured temperature in °C (required)")
	cmd.Flags().Float64Var(&opts.SG, "sg", 0, "measured specific gravity (required)")
	cmd.Flags().Float64Var(&opts.Brix, "brix", 0, "measured °Brix (enables ABV)")
	cmd.Flags().Float64Var(&opts.CalibrationTempC, "calibration", formula.DefaultCalibrationTempC, "hydrometer calibration temperature in °C")
	cmd.Flags().StringVar(&opts.BatchID, "batch", "", "batch the reading belongs to")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "evaluate without recording history")
	_ = cmd.MarkFlagRequired("temp")
	_ = cmd.MarkFlagRequired("sg")

	return cmd
}

func runGravity(opts *GravityOptions, cmd *cobra.Command) error {
	m := formula.Measurement{
		MeasuredTempC:    opts.TempC,
		MeasuredSG:       opts.SG,
		CalibrationTempC: brew.Float(opts.CalibrationTempC),
	}
	if cmd.Flags().Changed("brix") {
		m.MeasuredBrix = brew.Float(opts.Brix)
	}

	if opts.DryRun {
		eval, _, _, err := opts.evaluator(cmd)
		out := opts.formatter(cmd)
		if err != nil {
			return out.Fail(err)
		}
		reading, err := eval.Evaluate(m.WithDefaults())
		if err != nil {
			return out.Fail(err)
		}
		result := tracker.GravityResult{Reading: reading.Rounded()}
		return out.Render(result, func(w io.Writer) { printReading(w, result) })
	}

	a, err := opts.openApp(cmd)
	if err != nil {
		return opts.formatter(cmd).Fail(err)
	}
	defer a.close()

	result, err := a.svc.CorrectReading(cmd.Context(), m, brew.NormalizeKey(opts.BatchID))
	if err != nil {
		return a.out.Fail(err)
	}
	return a.out.Render(result, func(w io.Writer) { printReading(w, result) })
}

func printReading(w io.Writer, r tracker.GravityResult) {
	fmt.Fprintf(w, "Corrected gravity: %s\n", formatNumber(r.Reading.CorrectedSG))
	if r.Reading.ABV != nil {
		fmt.Fprintf(w, "ABV: %s%%\n", formatNumber(*r.Reading.ABV))
	} else {
		fmt.Fprintln(w, "ABV: (needs --brix)")
	}
	fmt.Fprintf(w, "SMV: %s\n", formatNumber(r.Reading.SMV))
	if r.Calculation.ID != "" {
		fmt.Fprintf(w, "Recorded: %s\n", r.Calculation.ID)
	}
}
