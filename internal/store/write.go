package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

var (
	ingredientColumns = []string{
		"ingredient_id", "ingredient_type", "acc_date", "source", "description",
	}
	recipeColumns = []string{
		"batch_id", "start_date", "pouch_date", "batch", "style",
		"kake", "koji", "yeast", "starter", "water_type",
		"total_kake_g", "total_koji_g", "total_water_ml", "ferment_temp_c",
		"addition1_notes", "addition2_notes", "addition3_notes",
		"ferment_finish_gravity", "ferment_finish_brix",
		"final_measured_temp_c", "final_measured_gravity", "final_measured_brix",
		"final_gravity", "abv", "smv", "final_water_addition_ml",
		"clarified", "pasteurized", "pasteurization_notes", "finishing_additions",
	}
	starterColumns = []string{
		"starter_batch", "date", "batch_id", "amt_kake_g", "amt_koji_g", "amt_water_ml",
		"water_type", "kake", "koji", "yeast", "lactic_acid_g", "mgso4_g", "kcl_g", "temp_c",
	}
	publishNoteColumns = []string{
		"batch_id", "pouch_date", "style", "water", "abv", "smv", "batch_size_l", "rice", "description",
	}
	calculationColumns = []string{
		"id", "kind", "batch_id", "calibrated_temp_c", "measured_temp_c", "measured_sg",
		"measured_brix", "corrected_gravity", "calculated_abv", "calculated_smv",
		"target_profile", "current_volume_l", "water_to_add_l", "created_at",
	}
)

// upsertSQL builds an INSERT ... ON CONFLICT(key) DO UPDATE statement.
// With merge set, a NULL incoming value keeps the stored one.
func upsertSQL(table, key string, cols []string, merge bool) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	var sets []string
	for _, c := range cols {
		if c == key {
			continue
		}
		if merge {
			sets = append(sets, fmt.Sprintf("%s = COALESCE(excluded.%s, %s)", c, c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), placeholders, key, strings.Join(sets, ", "),
	)
}

// upsert writes one row inside a transaction and reports whether the key
// was new.
func (s *Store) upsert(ctx context.Context, table, key string, cols []string, merge bool, args []any) (created bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if created, err = upsertTx(ctx, tx, table, key, cols, merge, args); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func upsertTx(ctx context.Context, tx *sql.Tx, table, key string, cols []string, merge bool, args []any) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", table, key), args[0],
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertSQL(table, key, cols, merge), args...); err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return !exists, nil
}

// PutIngredient inserts or fully replaces an ingredient.
// Returns true when the ingredient did not exist before.
func (s *Store) PutIngredient(ctx context.Context, ing brew.Ingredient) (bool, error) {
	created, err := s.upsert(ctx, "ingredients", "ingredient_id", ingredientColumns, false, ingredientArgs(ing))
	if err != nil {
		return false, fmt.Errorf("put ingredient %q: %w", ing.ID, err)
	}
	return created, nil
}

// MergeIngredient inserts an ingredient or fills in its non-null fields.
func (s *Store) MergeIngredient(ctx context.Context, ing brew.Ingredient) (bool, error) {
	created, err := s.upsert(ctx, "ingredients", "ingredient_id", ingredientColumns, true, ingredientArgs(ing))
	if err != nil {
		return false, fmt.Errorf("merge ingredient %q: %w", ing.ID, err)
	}
	return created, nil
}

// ingredientArgs passes a blank type as NULL so a merge keeps the stored
// type and an insert fails the NOT NULL constraint.
func ingredientArgs(ing brew.Ingredient) []any {
	var typ any
	if ing.Type != "" {
		typ = string(ing.Type)
	}
	return []any{ing.ID, typ, ing.AccDate, ing.Source, ing.Description}
}

// PutRecipe inserts or fully replaces a recipe.
func (s *Store) PutRecipe(ctx context.Context, r brew.Recipe) (bool, error) {
	created, err := s.upsert(ctx, "recipe", "batch_id", recipeColumns, false, recipeArgs(r))
	if err != nil {
		return false, fmt.Errorf("put recipe %q: %w", r.BatchID, err)
	}
	return created, nil
}

// PutRecipeWithStarter writes a recipe and a starter in one transaction, so
// the recipe is never stored referencing a starter that failed to save.
// The bool reports whether the recipe was new.
func (s *Store) PutRecipeWithStarter(ctx context.Context, r brew.Recipe, st brew.Starter) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("put recipe %q: begin tx: %w", r.BatchID, err)
	}
	defer tx.Rollback()

	if _, err := upsertTx(ctx, tx, "starters", "starter_batch", starterColumns, false, starterArgs(st)); err != nil {
		return false, fmt.Errorf("put recipe %q: starter %q: %w", r.BatchID, st.Batch, err)
	}
	created, err := upsertTx(ctx, tx, "recipe", "batch_id", recipeColumns, false, recipeArgs(r))
	if err != nil {
		return false, fmt.Errorf("put recipe %q: %w", r.BatchID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("put recipe %q: commit: %w", r.BatchID, err)
	}
	return created, nil
}

// MergeRecipe inserts a recipe or fills in its non-null fields.
// Clarified and Pasteurized are never null and always overwrite.
func (s *Store) MergeRecipe(ctx context.Context, r brew.Recipe) (bool, error) {
	created, err := s.upsert(ctx, "recipe", "batch_id", recipeColumns, true, recipeArgs(r))
	if err != nil {
		return false, fmt.Errorf("merge recipe %q: %w", r.BatchID, err)
	}
	return created, nil
}

func recipeArgs(r brew.Recipe) []any {
	return []any{
		r.BatchID, r.StartDate, r.PouchDate, r.Batch, r.Style,
		r.Kake, r.Koji, r.Yeast, r.Starter, r.WaterType,
		r.TotalKakeG, r.TotalKojiG, r.TotalWaterML, r.FermentTempC,
		r.Addition1Notes, r.Addition2Notes, r.Addition3Notes,
		r.FermentFinishGravity, r.FermentFinishBrix,
		r.FinalMeasuredTempC, r.FinalMeasuredGravity, r.FinalMeasuredBrix,
		r.FinalGravity, r.ABV, r.SMV, r.FinalWaterAdditionML,
		r.Clarified, r.Pasteurized, r.PasteurizationNotes, r.FinishingAdditions,
	}
}

// PutStarter inserts or fully replaces a starter.
func (s *Store) PutStarter(ctx context.Context, st brew.Starter) (bool, error) {
	created, err := s.upsert(ctx, "starters", "starter_batch", starterColumns, false, starterArgs(st))
	if err != nil {
		return false, fmt.Errorf("put starter %q: %w", st.Batch, err)
	}
	return created, nil
}

// MergeStarter inserts a starter or fills in its non-null fields.
func (s *Store) MergeStarter(ctx context.Context, st brew.Starter) (bool, error) {
	created, err := s.upsert(ctx, "starters", "starter_batch", starterColumns, true, starterArgs(st))
	if err != nil {
		return false, fmt.Errorf("merge starter %q: %w", st.Batch, err)
	}
	return created, nil
}

func starterArgs(st brew.Starter) []any {
	return []any{
		st.Batch, st.Date, st.BatchID, st.AmtKakeG, st.AmtKojiG, st.AmtWaterML,
		st.WaterType, st.Kake, st.Koji, st.Yeast, st.LacticAcidG, st.MgSO4G, st.KClG, st.TempC,
	}
}

// PutPublishNote inserts or fully replaces publish notes for a batch.
func (s *Store) PutPublishNote(ctx context.Context, n brew.PublishNote) (bool, error) {
	created, err := s.upsert(ctx, "publish_notes", "batch_id", publishNoteColumns, false, publishNoteArgs(n))
	if err != nil {
		return false, fmt.Errorf("put publish note %q: %w", n.BatchID, err)
	}
	return created, nil
}

// MergePublishNote inserts publish notes or fills in their non-null fields.
func (s *Store) MergePublishNote(ctx context.Context, n brew.PublishNote) (bool, error) {
	created, err := s.upsert(ctx, "publish_notes", "batch_id", publishNoteColumns, true, publishNoteArgs(n))
	if err != nil {
		return false, fmt.Errorf("merge publish note %q: %w", n.BatchID, err)
	}
	return created, nil
}

func publishNoteArgs(n brew.PublishNote) []any {
	return []any{
		n.BatchID, n.PouchDate, n.Style, n.Water, n.ABV, n.SMV, n.BatchSizeL, n.Rice, n.Description,
	}
}

// WriteCalculation appends a calculation history row.
// Uses ON CONFLICT(id) DO NOTHING - rewriting the same ID is a no-op.
func (s *Store) WriteCalculation(ctx context.Context, c brew.Calculation) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(calculationColumns)), ", ")
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO formulas (%s) VALUES (%s) ON CONFLICT(id) DO NOTHING",
		strings.Join(calculationColumns, ", "), placeholders,
	),
		c.ID, string(c.Kind), c.BatchID, c.CalibratedTempC, c.MeasuredTempC, c.MeasuredSG,
		c.MeasuredBrix, c.CorrectedGravity, c.CalculatedABV, c.CalculatedSMV,
		c.TargetProfile, c.CurrentVolumeL, c.WaterToAddL, formatTimestamp(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("write calculation: %w", err)
	}
	return nil
}

// RefreshRecipeTotals sums kake, koji and water over the batch's starters
// into the recipe. A total stays unchanged when no starter has a value for
// it. Returns ErrNotFound when the recipe does not exist.
func (s *Store) RefreshRecipeTotals(ctx context.Context, batchID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recipe SET
			total_kake_g   = COALESCE((SELECT SUM(amt_kake_g)   FROM starters WHERE batch_id = ?1), total_kake_g),
			total_koji_g   = COALESCE((SELECT SUM(amt_koji_g)   FROM starters WHERE batch_id = ?1), total_koji_g),
			total_water_ml = COALESCE((SELECT SUM(amt_water_ml) FROM starters WHERE batch_id = ?1), total_water_ml)
		WHERE batch_id = ?1
	`, batchID)
	if err != nil {
		return fmt.Errorf("refresh recipe totals %q: %w", batchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("refresh recipe totals %q: rows affected: %w", batchID, err)
	}
	if n == 0 {
		return fmt.Errorf("refresh recipe totals %q: %w", batchID, ErrNotFound)
	}
	return nil
}

// timestampLayout is fixed-width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
