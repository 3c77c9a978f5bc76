package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/store"
	"github.com/sakemonkey/sakemonkey/internal/tracker"
)

// NewRecipeCommand creates the recipe command group.
func NewRecipeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Manage batch recipes",
	}
	cmd.AddCommand(newRecipeAddCommand(rootOpts))
	cmd.AddCommand(newRecipeShowCommand(rootOpts))
	cmd.AddCommand(newRecipeListCommand(rootOpts))
	cmd.AddCommand(newRecipeSummaryCommand(rootOpts))
	return cmd
}

func newRecipeAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		in    tracker.RecipeInput
		file  string
		flags *recordFlags
	)

	cmd := &cobra.Command{
		Use:   "add <batch-id>",
		Short: "Create or update a recipe",
		Long: `Create or update a recipe. An existing recipe is loaded first and only
the given flags (or fields in --file) change it.

When the final measured temperature and gravity are set, the final gravity,
SMV and (with --final-brix) ABV are derived. A recipe without a starter gets
a default shubo starter under the next free code.

Example:
  sakemonkey recipe add B-12 --start-date 2024-03-01 --style pure \
    --kake Yamada-60 --koji Koji-Omachi --yeast K9 --water Spring
  sakemonkey recipe add B-12 --final-temp 20 --final-sg 0.998 --final-brix 8
  sakemonkey recipe add B-13 --file b13.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			existing, err := a.store.GetRecipe(cmd.Context(), brew.NormalizeKey(args[0]))
			switch {
			case err == nil:
				in.Recipe = existing
			case !errors.Is(err, store.ErrNotFound):
				return a.out.Fail(err)
			}
			if file != "" {
				if err := decodeYAMLFile(file, &in); err != nil {
					return a.out.Fail(usageError("--file: %v", err))
				}
			}
			in.BatchID = args[0]
			if err := flags.apply(); err != nil {
				return a.out.Fail(err)
			}

			res, err := a.svc.SaveRecipe(cmd.Context(), in)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Recipe %s %s.\n", res.Record.BatchID, res.Action())
				if res.Record.FinalGravity != nil {
					fields(w,
						[2]string{"Final gravity", optNumber(res.Record.FinalGravity)},
						[2]string{"ABV", optNumber(res.Record.ABV)},
						[2]string{"SMV", optNumber(res.Record.SMV)},
					)
				}
				if res.Starter != nil {
					fmt.Fprintf(w, "Created default shubo starter %s.\n", res.Starter.Batch)
				}
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML file with recipe fields")
	r := &in.Recipe
	flags = newRecordFlags(cmd)
	flags.date("start-date", "fermentation start", &r.StartDate)
	flags.date("pouch-date", "date the batch was pouched", &r.PouchDate)
	flags.integer("batch", "batch number (default: digits in the batch id)", &r.Batch)
	flags.text("style", "style: pure, rustic, rustic_experimental or custom", &r.Style)
	flags.text("kake", "kake rice ingredient id", &r.Kake)
	flags.text("koji", "koji rice ingredient id", &r.Koji)
	flags.text("yeast", "yeast ingredient id", &r.Yeast)
	flags.text("starter", "starter code (default: create a shubo starter)", &r.Starter)
	flags.text("water", "water ingredient id", &r.WaterType)
	flags.float("total-kake", "total kake in g", &r.TotalKakeG)
	flags.float("total-koji", "total koji in g", &r.TotalKojiG)
	flags.float("total-water", "total water in mL", &r.TotalWaterML)
	flags.float("ferment-temp", "ferment temperature in °C (default 6)", &r.FermentTempC)
	flags.text("addition1-notes", "first addition notes", &r.Addition1Notes)
	flags.text("addition2-notes", "second addition notes", &r.Addition2Notes)
	flags.text("addition3-notes", "third addition notes", &r.Addition3Notes)
	flags.float("ferment-finish-gravity", "gravity at the end of fermentation", &r.FermentFinishGravity)
	flags.float("ferment-finish-brix", "°Brix at the end of fermentation", &r.FermentFinishBrix)
	flags.float("final-temp", "final measured temperature in °C", &r.FinalMeasuredTempC)
	flags.float("final-sg", "final measured gravity", &r.FinalMeasuredGravity)
	flags.float("final-brix", "final measured °Brix", &r.FinalMeasuredBrix)
	flags.float("calibration", "hydrometer calibration temperature in °C (default 20)", &in.CalibrationTempC)
	flags.float("final-water", "final water addition in mL", &r.FinalWaterAdditionML)
	flags.boolean("clarified", "batch was clarified", &r.Clarified)
	flags.boolean("pasteurized", "batch was pasteurized", &r.Pasteurized)
	flags.text("pasteurization-notes", "pasteurization notes", &r.PasteurizationNotes)
	flags.text("finishing-additions", "finishing additions", &r.FinishingAdditions)

	return cmd
}

// decodeYAMLFile decodes path into v, rejecting unknown keys.
func decodeYAMLFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

func newRecipeShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show one recipe with its starters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			batchID := brew.NormalizeKey(args[0])
			r, err := a.store.GetRecipe(cmd.Context(), batchID)
			if err != nil {
				return a.out.Fail(fmt.Errorf("recipe %s: %w", batchID, err))
			}
			starters, err := a.store.ListStarters(cmd.Context(), batchID)
			if err != nil {
				return a.out.Fail(err)
			}
			detail := RecipeDetail{Recipe: r, Starters: starters}
			return a.out.Render(detail, func(w io.Writer) { printRecipe(w, detail) })
		},
	}
}

// RecipeDetail is a recipe plus the starters built for it.
type RecipeDetail struct {
	Recipe   brew.Recipe    `json:"recipe" yaml:"recipe"`
	Starters []brew.Starter `json:"starters" yaml:"starters"`
}

func printRecipe(w io.Writer, d RecipeDetail) {
	r := d.Recipe
	fields(w,
		[2]string{"Batch", r.BatchID},
		[2]string{"Number", optInt(r.Batch)},
		[2]string{"Style", optStyle(r.Style)},
		[2]string{"Started", optDate(r.StartDate)},
		[2]string{"Pouched", optDate(r.PouchDate)},
		[2]string{"Kake", optText(r.Kake)},
		[2]string{"Koji", optText(r.Koji)},
		[2]string{"Yeast", optText(r.Yeast)},
		[2]string{"Water", optText(r.WaterType)},
		[2]string{"Starter", optText(r.Starter)},
		[2]string{"Totals (kake g / koji g / water mL)",
			optNumber(r.TotalKakeG) + " / " + optNumber(r.TotalKojiG) + " / " + optNumber(r.TotalWaterML)},
		[2]string{"Ferment temp", optNumber(r.FermentTempC)},
		[2]string{"Ferment finish (SG / Brix)", optNumber(r.FermentFinishGravity) + " / " + optNumber(r.FermentFinishBrix)},
		[2]string{"Final measured (°C / SG / Brix)",
			optNumber(r.FinalMeasuredTempC) + " / " + optNumber(r.FinalMeasuredGravity) + " / " + optNumber(r.FinalMeasuredBrix)},
		[2]string{"Final gravity", optNumber(r.FinalGravity)},
		[2]string{"ABV", optNumber(r.ABV)},
		[2]string{"SMV", optNumber(r.SMV)},
		[2]string{"Final water addition mL", optNumber(r.FinalWaterAdditionML)},
		[2]string{"Clarified", fmt.Sprint(r.Clarified)},
		[2]string{"Pasteurized", fmt.Sprint(r.Pasteurized)},
	)
	for i, notes := range []*string{r.Addition1Notes, r.Addition2Notes, r.Addition3Notes} {
		if notes != nil {
			fmt.Fprintf(w, "Addition %d: %s\n", i+1, *notes)
		}
	}
	if r.PasteurizationNotes != nil {
		fmt.Fprintf(w, "Pasteurization: %s\n", *r.PasteurizationNotes)
	}
	if r.FinishingAdditions != nil {
		fmt.Fprintf(w, "Finishing additions: %s\n", *r.FinishingAdditions)
	}
	if len(d.Starters) > 0 {
		fmt.Fprintln(w, "Starters:")
		for _, st := range d.Starters {
			fmt.Fprintf(w, "  %s\n", st.Label())
		}
	}
}

func newRecipeListCommand(rootOpts *RootOptions) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			var recipes []brew.Recipe
			if style != "" {
				if known := brew.NormalizeStyle(style); known != "" {
					style = string(known)
				}
				recipes, err = a.store.SearchRecipesByStyle(cmd.Context(), style)
			} else {
				recipes, err = a.store.ListRecipes(cmd.Context())
			}
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(recipes, func(w io.Writer) {
				if len(recipes) == 0 {
					fmt.Fprintln(w, "No recipes.")
					return
				}
				rows := make([][]string, len(recipes))
				for i, r := range recipes {
					rows[i] = []string{r.BatchID, optInt(r.Batch), optStyle(r.Style), optDate(r.StartDate), optText(r.Starter), optNumber(r.ABV), optNumber(r.SMV)}
				}
				table(w, []string{"BATCH", "NO", "STYLE", "STARTED", "STARTER", "ABV", "SMV"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&style, "style", "", "only recipes of this style")

	return cmd
}

func newRecipeSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Overview of every batch with its published size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			rows, err := a.store.RecipeSummary(cmd.Context())
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(rows, func(w io.Writer) {
				if len(rows) == 0 {
					fmt.Fprintln(w, "No recipes.")
					return
				}
				out := make([][]string, len(rows))
				for i, s := range rows {
					out[i] = []string{s.BatchID, optInt(s.Batch), optStyle(s.Style), optDate(s.StartDate), optDate(s.PouchDate), optNumber(s.ABV), optNumber(s.SMV), optNumber(s.BatchSizeL)}
				}
				table(w, []string{"BATCH", "NO", "STYLE", "STARTED", "POUCHED", "ABV", "SMV", "SIZE L"}, out)
			})
		},
	}
}
