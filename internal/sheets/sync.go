package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// SheetNames maps tables to sheet (tab) names.
type SheetNames struct {
	Ingredients  string `mapstructure:"ingredients" json:"ingredients" yaml:"ingredients"`
	Starters     string `mapstructure:"starters" json:"starters" yaml:"starters"`
	Recipe       string `mapstructure:"recipe" json:"recipe" yaml:"recipe"`
	PublishNotes string `mapstructure:"publish_notes" json:"publish_notes" yaml:"publish_notes"`
	Formulas     string `mapstructure:"formulas" json:"formulas" yaml:"formulas"`
}

// DefaultSheetNames returns the tab names of the original spreadsheet.
func DefaultSheetNames() SheetNames {
	return SheetNames{
		Ingredients:  "Ingredients",
		Starters:     "Starters",
		Recipe:       "Recipe",
		PublishNotes: "PublishNotes",
		Formulas:     "Formulas",
	}
}

// Store is the persistence Pull and Push need. *store.Store satisfies it.
type Store interface {
	MergeIngredient(ctx context.Context, ing brew.Ingredient) (bool, error)
	MergeStarter(ctx context.Context, st brew.Starter) (bool, error)
	MergeRecipe(ctx context.Context, r brew.Recipe) (bool, error)
	MergePublishNote(ctx context.Context, n brew.PublishNote) (bool, error)
	ListIngredients(ctx context.Context, types ...brew.IngredientType) ([]brew.Ingredient, error)
	ListStarters(ctx context.Context, batchID string) ([]brew.Starter, error)
	ListRecipes(ctx context.Context) ([]brew.Recipe, error)
	ListPublishNotes(ctx context.Context) ([]brew.PublishNote, error)
	ListCalculations(ctx context.Context, batchID string, limit int) ([]brew.Calculation, error)
}

// Syncer moves rows between a Store and a spreadsheet.
type Syncer struct {
	client Client
	store  Store
	names  SheetNames
	logger *slog.Logger
}

// NewSyncer creates a Syncer. Empty sheet names fall back to the defaults.
func NewSyncer(client Client, st Store, names SheetNames, logger *slog.Logger) *Syncer {
	def := DefaultSheetNames()
	orDefault(&names.Ingredients, def.Ingredients)
	orDefault(&names.Starters, def.Starters)
	orDefault(&names.Recipe, def.Recipe)
	orDefault(&names.PublishNotes, def.PublishNotes)
	orDefault(&names.Formulas, def.Formulas)
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{client: client, store: st, names: names, logger: logger}
}

func orDefault(name *string, fallback string) {
	if *name == "" {
		*name = fallback
	}
}

// TableReport counts what happened to one sheet.
type TableReport struct {
	Sheet    string     `json:"sheet" yaml:"sheet"`
	Rows     int        `json:"rows" yaml:"rows"`
	Created  int        `json:"created" yaml:"created"`
	Updated  int        `json:"updated" yaml:"updated"`
	Appended int        `json:"appended" yaml:"appended"`
	Skipped  []RowError `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Error    string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the outcome of a Pull or Push.
type Report struct {
	Spreadsheet string        `json:"spreadsheet" yaml:"spreadsheet"`
	Tables      []TableReport `json:"tables" yaml:"tables"`
	Failed      int           `json:"failed" yaml:"failed"`
}

func (r *Report) add(tr TableReport, err error) {
	if err != nil {
		tr.Error = err.Error()
		r.Failed++
	}
	r.Tables = append(r.Tables, tr)
}

// Pull reads every table sheet and merges its rows into the store.
// Ingredients come first so later rows can reference them. A failing sheet
// is reported and the remaining sheets still sync.
func (s *Syncer) Pull(ctx context.Context) (Report, error) {
	title, err := s.client.Verify(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Spreadsheet: title}
	rep.add(pullTable(ctx, s, s.names.Ingredients, ingredientTable, s.store.MergeIngredient))
	rep.add(pullTable(ctx, s, s.names.Recipe, recipeTable, s.store.MergeRecipe))
	rep.add(pullTable(ctx, s, s.names.Starters, starterTable, s.store.MergeStarter))
	rep.add(pullTable(ctx, s, s.names.PublishNotes, publishNoteTable, s.store.MergePublishNote))
	return rep, nil
}

func pullTable[T any](ctx context.Context, s *Syncer, sheet string, t table[T], merge func(context.Context, T) (bool, error)) (TableReport, error) {
	tr := TableReport{Sheet: sheet}
	values, err := s.client.ReadRange(ctx, sheetRange(sheet, "A:ZZ"))
	if err != nil {
		s.logger.Error("pull failed", "sheet", sheet, "error", err)
		return tr, err
	}
	records, skipped, err := t.Decode(values)
	if err != nil {
		s.logger.Error("pull failed", "sheet", sheet, "error", err)
		return tr, err
	}
	tr.Rows = len(records)
	tr.Skipped = skipped
	for _, rowErr := range skipped {
		s.logger.Warn("row skipped", "sheet", sheet, "row", rowErr.Row, "reason", rowErr.Reason)
	}
	for _, rec := range records {
		created, err := merge(ctx, rec)
		if err != nil {
			s.logger.Error("pull failed", "sheet", sheet, "error", err)
			return tr, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if created {
			tr.Created++
		} else {
			tr.Updated++
		}
	}
	s.logger.Info("sheet pulled", "sheet", sheet, "created", tr.Created, "updated", tr.Updated, "skipped", len(skipped))
	return tr, nil
}

// PushOptions controls Push.
type PushOptions struct {
	// Replace clears each sheet and rewrites every row instead of
	// appending rows whose key is missing.
	Replace bool
}

// Push writes local rows to the spreadsheet, including the calculation
// history on the formulas sheet.
func (s *Syncer) Push(ctx context.Context, opts PushOptions) (Report, error) {
	title, err := s.client.Verify(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Spreadsheet: title}

	ings, err := s.store.ListIngredients(ctx)
	if err != nil {
		return rep, err
	}
	rep.add(pushTable(ctx, s, s.names.Ingredients, ingredientTable, ings, opts))

	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		return rep, err
	}
	rep.add(pushTable(ctx, s, s.names.Recipe, recipeTable, recipes, opts))

	starters, err := s.store.ListStarters(ctx, "")
	if err != nil {
		return rep, err
	}
	rep.add(pushTable(ctx, s, s.names.Starters, starterTable, starters, opts))

	notes, err := s.store.ListPublishNotes(ctx)
	if err != nil {
		return rep, err
	}
	rep.add(pushTable(ctx, s, s.names.PublishNotes, publishNoteTable, notes, opts))

	calcs, err := s.store.ListCalculations(ctx, "", 0)
	if err != nil {
		return rep, err
	}
	// Oldest first so the sheet reads chronologically.
	for i, j := 0, len(calcs)-1; i < j; i, j = i+1, j-1 {
		calcs[i], calcs[j] = calcs[j], calcs[i]
	}
	rep.add(pushTable(ctx, s, s.names.Formulas, calculationTable, calcs, opts))

	return rep, nil
}

func pushTable[T any](ctx context.Context, s *Syncer, sheet string, t table[T], records []T, opts PushOptions) (TableReport, error) {
	tr := TableReport{Sheet: sheet, Rows: len(records)}
	fail := func(err error) (TableReport, error) {
		s.logger.Error("push failed", "sheet", sheet, "error", err)
		return tr, err
	}

	if opts.Replace {
		if err := s.client.ClearRange(ctx, sheetRange(sheet, "")); err != nil {
			return fail(err)
		}
		rows := append([][]string{t.Headers()}, t.Encode(records)...)
		if err := s.client.WriteRange(ctx, sheetRange(sheet, "A1"), rows); err != nil {
			return fail(err)
		}
		tr.Appended = len(records)
		s.logger.Info("sheet replaced", "sheet", sheet, "rows", len(records))
		return tr, nil
	}

	existing, err := s.client.ReadRange(ctx, sheetRange(sheet, "A:ZZ"))
	if err != nil {
		return fail(err)
	}
	if len(existing) == 0 {
		rows := append([][]string{t.Headers()}, t.Encode(records)...)
		if err := s.client.WriteRange(ctx, sheetRange(sheet, "A1"), rows); err != nil {
			return fail(err)
		}
		tr.Appended = len(records)
		s.logger.Info("sheet initialized", "sheet", sheet, "rows", len(records))
		return tr, nil
	}

	keyIdx := t.KeyIndex(existing[0])
	if keyIdx < 0 {
		return fail(fmt.Errorf("sheet %s: no %q column in header", sheet, t.columns[0].header))
	}
	present := make(map[string]bool, len(existing))
	for _, row := range existing[1:] {
		if keyIdx < len(row) {
			present[brew.NormalizeKey(row[keyIdx])] = true
		}
	}
	var missing []T
	for i := range records {
		if !present[t.key(&records[i])] {
			missing = append(missing, records[i])
		}
	}
	if len(missing) > 0 {
		if err := s.client.AppendRows(ctx, sheetRange(sheet, "A1"), alignRows(t, existing[0], missing)); err != nil {
			return fail(err)
		}
	}
	tr.Appended = len(missing)
	s.logger.Info("sheet pushed", "sheet", sheet, "appended", len(missing))
	return tr, nil
}

// alignRows encodes records in the column order of an existing header.
// Headers the table does not know get empty cells.
func alignRows[T any](t table[T], header []string, records []T) [][]string {
	rows := make([][]string, len(records))
	for i := range records {
		row := make([]string, len(header))
		for j, h := range header {
			for _, c := range t.columns {
				if c.matches(h) {
					row[j] = c.format(&records[i])
					break
				}
			}
		}
		rows[i] = row
	}
	return rows
}

// Status reports the row count of each configured sheet.
func (s *Syncer) Status(ctx context.Context) (Report, error) {
	title, err := s.client.Verify(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Spreadsheet: title}
	for _, sheet := range []string{
		s.names.Ingredients, s.names.Recipe, s.names.Starters, s.names.PublishNotes, s.names.Formulas,
	} {
		n, err := s.client.RowCount(ctx, sheet)
		tr := TableReport{Sheet: sheet}
		if n > 0 {
			tr.Rows = n - 1
		}
		rep.add(tr, err)
	}
	return rep, nil
}
