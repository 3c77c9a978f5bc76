package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/dataset"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Continue bool
}

// ImportResult is the outcome of an import.
type ImportResult struct {
	File    string         `json:"file" yaml:"file"`
	Records int            `json:"records" yaml:"records"`
	Report  dataset.Report `json:"report" yaml:"report"`
	Errors  []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import ingredients, starters, recipes and publish notes from YAML",
		Long: `Import a YAML dataset with ingredients, starters, recipes and
publish_notes lists. The whole file is checked against the dataset schema
before anything is written; records then go through the same validation and
derivation as the add commands.

By default the import stops at the first rejected record. With --continue
every record is tried and all rejections are reported.

Exit codes:
  0 - Everything imported
  1 - Schema errors or rejected records
  2 - Command error (file unreadable, database error)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Continue, "continue", false, "keep importing after a rejected record")

	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions, path string) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return opts.formatter(cmd).Fail(err)
	}
	defer a.close()

	ds, errs := dataset.LoadFile(path)
	if len(errs) > 0 {
		return a.out.Fail(errors.Join(errs...))
	}
	a.logger.Debug("dataset loaded", "file", path, "records", ds.Len())

	mode := dataset.FailFast
	if opts.Continue {
		mode = dataset.CollectAll
	}
	rep, errs := dataset.Import(cmd.Context(), a.svc, ds, mode, a.logger)
	if len(errs) > 0 && !opts.Continue {
		return a.out.Fail(errs[0])
	}

	result := ImportResult{File: path, Records: ds.Len(), Report: rep}
	for _, e := range errs {
		result.Errors = append(result.Errors, e.Error())
	}
	if err := a.out.Render(result, func(w io.Writer) { printImportResult(w, result) }); err != nil {
		return err
	}
	if len(errs) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d record(s) rejected", len(errs)))
	}
	return nil
}

func printImportResult(w io.Writer, r ImportResult) {
	fmt.Fprintf(w, "Imported %s (%d records)\n", r.File, r.Records)
	counts := []struct {
		name string
		c    dataset.Counts
	}{
		{"ingredients", r.Report.Ingredients},
		{"starters", r.Report.Starters},
		{"recipes", r.Report.Recipes},
		{"publish_notes", r.Report.PublishNotes},
	}
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.name, fmt.Sprint(c.c.Created), fmt.Sprint(c.c.Updated), fmt.Sprint(c.c.Failed)}
	}
	table(w, []string{"SECTION", "CREATED", "UPDATED", "FAILED"}, rows)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
