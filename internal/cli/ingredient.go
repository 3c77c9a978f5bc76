package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// NewIngredientCommand creates the ingredient command group.
func NewIngredientCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredient",
		Short: "Manage rice, koji, yeast and water lots",
	}
	cmd.AddCommand(newIngredientAddCommand(rootOpts))
	cmd.AddCommand(newIngredientListCommand(rootOpts))
	return cmd
}

func newIngredientAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		ing   brew.Ingredient
		typ   string
		flags *recordFlags
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Create or update an ingredient",
		Long: `Create or update an ingredient lot. Types: rice, kake_rice, koji_rice,
yeast, water.

Example:
  sakemonkey ingredient add Yamada-60 --type kake_rice --description "Yamada Nishiki 60%"
  sakemonkey ingredient add K9 --type yeast --acc-date 2024-01-15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			if existing, err := a.store.GetIngredient(cmd.Context(), brew.NormalizeKey(args[0])); err == nil {
				if !cmd.Flags().Changed("type") {
					typ = string(existing.Type)
				}
				ing = existing
			}
			ing.ID = args[0]
			ing.Type = brew.IngredientType(typ)
			if err := flags.apply(); err != nil {
				return a.out.Fail(err)
			}

			saved, err := a.svc.SaveIngredient(cmd.Context(), ing)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(saved, func(w io.Writer) {
				fmt.Fprintf(w, "Ingredient %s %s.\n", saved.Record.Label(), saved.Action())
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "ingredient type (required for new ingredients)")
	flags = newRecordFlags(cmd)
	flags.date("acc-date", "date the lot was acquired", &ing.AccDate)
	flags.text("source", "supplier or origin", &ing.Source)
	flags.text("description", "free-text description", &ing.Description)

	return cmd
}

func newIngredientListCommand(rootOpts *RootOptions) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingredients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(err)
			}
			defer a.close()

			var filter []brew.IngredientType
			for _, t := range types {
				parsed, err := brew.ParseIngredientType(t)
				if err != nil {
					return a.out.Fail(usageError("--type: %v", err))
				}
				filter = append(filter, parsed)
			}
			ings, err := a.store.ListIngredients(cmd.Context(), filter...)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(ings, func(w io.Writer) { printIngredients(w, ings) })
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "only these types (repeatable)")

	return cmd
}

func printIngredients(w io.Writer, ings []brew.Ingredient) {
	if len(ings) == 0 {
		fmt.Fprintln(w, "No ingredients.")
		return
	}
	rows := make([][]string, len(ings))
	for i, ing := range ings {
		rows[i] = []string{ing.ID, string(ing.Type), optDate(ing.AccDate), optText(ing.Source), optText(ing.Description)}
	}
	table(w, []string{"ID", "TYPE", "ACQUIRED", "SOURCE", "DESCRIPTION"}, rows)
}
