package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/sheets"
)

// SyncOptions holds flags shared by the sync subcommands.
type SyncOptions struct {
	*RootOptions
	SpreadsheetID string
	Credentials   string
}

// NewSyncCommand creates the sync command group.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the batch log with Google Sheets",
		Long: `Synchronize the batch log with a Google spreadsheet.

Credentials are a service account key file, taken from --credentials, the
sheets.credentials config key, GOOGLE_APPLICATION_CREDENTIALS or
./service_account.json, in that order. Share the spreadsheet with the
service account's e-mail address.`,
	}

	cmd.PersistentFlags().StringVar(&opts.SpreadsheetID, "spreadsheet", "", "spreadsheet id (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Credentials, "credentials", "", "service account key file (overrides config)")

	cmd.AddCommand(newSyncPullCommand(opts))
	cmd.AddCommand(newSyncPushCommand(opts))
	cmd.AddCommand(newSyncStatusCommand(opts))

	return cmd
}

func newSyncPullCommand(opts *SyncOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Merge spreadsheet rows into the local database",
		Long: `Read the Ingredients, Recipe, Starters and PublishNotes sheets and merge
their rows into the local database. Non-empty cells overwrite local values;
empty cells keep them. A sheet that fails is reported and the others still
sync.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runSync(cmd, func(s *sheets.Syncer) (sheets.Report, error) {
				return s.Pull(cmd.Context())
			})
		},
	}
}

func newSyncPushCommand(opts *SyncOptions) *cobra.Command {
	var push sheets.PushOptions

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Write local rows to the spreadsheet",
		Long: `Append local rows whose key is not yet in the spreadsheet. An empty sheet
gets a header row. The calculation history goes to the Formulas sheet.

With --replace every sheet is cleared and rewritten from the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runSync(cmd, func(s *sheets.Syncer) (sheets.Report, error) {
				return s.Push(cmd.Context(), push)
			})
		},
	}

	cmd.Flags().BoolVar(&push.Replace, "replace", false, "clear each sheet and rewrite all rows")

	return cmd
}

func newSyncStatusCommand(opts *SyncOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check access and count the rows of each sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runSync(cmd, func(s *sheets.Syncer) (sheets.Report, error) {
				return s.Status(cmd.Context())
			})
		},
	}
}

// runSync opens the database and the spreadsheet, runs op and prints its
// report. Any failed sheet exits 1.
func (o *SyncOptions) runSync(cmd *cobra.Command, op func(*sheets.Syncer) (sheets.Report, error)) error {
	a, err := o.openApp(cmd)
	if err != nil {
		return o.formatter(cmd).Fail(err)
	}
	defer a.close()

	client, err := o.sheetsClient(cmd, a)
	if err != nil {
		return a.out.Fail(err)
	}

	syncer := sheets.NewSyncer(client, a.store, a.cfg.Sheets.Names, a.logger)
	rep, err := op(syncer)
	if err != nil {
		return a.out.Fail(err)
	}
	if err := a.out.Render(rep, func(w io.Writer) { printSyncReport(w, rep) }); err != nil {
		return err
	}
	if rep.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d sheet(s) failed", rep.Failed))
	}
	return nil
}

func (o *SyncOptions) sheetsClient(cmd *cobra.Command, a *app) (sheets.Client, error) {
	if o.SheetsClient != nil {
		return o.SheetsClient, nil
	}
	id := a.cfg.Sheets.SpreadsheetID
	if o.SpreadsheetID != "" {
		id = o.SpreadsheetID
	}
	if id == "" {
		return nil, usageError("no spreadsheet: set sheets.spreadsheet_id or pass --spreadsheet")
	}
	creds := a.cfg.Sheets.Credentials
	if o.Credentials != "" {
		creds = o.Credentials
	}
	a.logger.Debug("connecting to spreadsheet", "spreadsheet_id", id)
	return sheets.NewGoogleClient(cmd.Context(), id, creds)
}

func printSyncReport(w io.Writer, rep sheets.Report) {
	fmt.Fprintf(w, "Spreadsheet: %s\n", rep.Spreadsheet)
	rows := make([][]string, len(rep.Tables))
	for i, t := range rep.Tables {
		status := "ok"
		if t.Error != "" {
			status = "failed: " + t.Error
		} else if len(t.Skipped) > 0 {
			status = fmt.Sprintf("%d row(s) skipped", len(t.Skipped))
		}
		rows[i] = []string{t.Sheet, fmt.Sprint(t.Rows), fmt.Sprint(t.Created), fmt.Sprint(t.Updated), fmt.Sprint(t.Appended), status}
	}
	table(w, []string{"SHEET", "ROWS", "CREATED", "UPDATED", "APPENDED", "STATUS"}, rows)
	for _, t := range rep.Tables {
		for _, s := range t.Skipped {
			fmt.Fprintf(w, "  %s row %d: %s\n", t.Sheet, s.Row, s.Reason)
		}
	}
}
