package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryList runs query and scans every row with scan.
// Returns an empty slice (not nil) when there are no rows.
func queryList[T any](ctx context.Context, db *sql.DB, what string, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}

// queryOne scans a single row, mapping sql.ErrNoRows to ErrNotFound.
func queryOne[T any](ctx context.Context, db *sql.DB, what string, scan func(rowScanner) (T, error), query string, args ...any) (T, error) {
	v, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read %s: %w", what, err)
	}
	return v, nil
}

func selectFrom(table string, cols []string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
}

// GetIngredient retrieves an ingredient by ID.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetIngredient(ctx context.Context, id string) (brew.Ingredient, error) {
	return queryOne(ctx, s.db, fmt.Sprintf("ingredient %q", id), scanIngredient,
		selectFrom("ingredients", ingredientColumns)+" WHERE ingredient_id = ?", id)
}

// ListIngredients returns ingredients of the given types, or all ingredients
// when no type is given, ordered by ID.
func (s *Store) ListIngredients(ctx context.Context, types ...brew.IngredientType) ([]brew.Ingredient, error) {
	query := selectFrom("ingredients", ingredientColumns)
	var args []any
	if len(types) > 0 {
		query += " WHERE ingredient_type IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(types)), ", ") + ")"
		for _, t := range types {
			args = append(args, string(t))
		}
	}
	query += " ORDER BY ingredient_id COLLATE BINARY ASC"
	return queryList(ctx, s.db, "ingredients", scanIngredient, query, args...)
}

func scanIngredient(row rowScanner) (brew.Ingredient, error) {
	var ing brew.Ingredient
	var typ string
	err := row.Scan(&ing.ID, &typ, &ing.AccDate, &ing.Source, &ing.Description)
	ing.Type = brew.IngredientType(typ)
	return ing, err
}

// GetRecipe retrieves a recipe by batch ID.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetRecipe(ctx context.Context, batchID string) (brew.Recipe, error) {
	return queryOne(ctx, s.db, fmt.Sprintf("recipe %q", batchID), scanRecipe,
		selectFrom("recipe", recipeColumns)+" WHERE batch_id = ?", batchID)
}

// ListRecipes returns every recipe ordered by batch ID.
func (s *Store) ListRecipes(ctx context.Context) ([]brew.Recipe, error) {
	return queryList(ctx, s.db, "recipes", scanRecipe,
		selectFrom("recipe", recipeColumns)+" ORDER BY batch_id COLLATE BINARY ASC")
}

// SearchRecipesByStyle returns recipes whose style matches, ignoring case.
func (s *Store) SearchRecipesByStyle(ctx context.Context, style string) ([]brew.Recipe, error) {
	return queryList(ctx, s.db, "recipes", scanRecipe,
		selectFrom("recipe", recipeColumns)+
			" WHERE style = ? COLLATE NOCASE ORDER BY batch_id COLLATE BINARY ASC", style)
}

// RecipeSummary returns one overview row per recipe with the published
// batch size when available, ordered by batch number then batch ID.
func (s *Store) RecipeSummary(ctx context.Context) ([]brew.RecipeSummary, error) {
	return queryList(ctx, s.db, "recipe summary", func(row rowScanner) (brew.RecipeSummary, error) {
		var rs brew.RecipeSummary
		err := row.Scan(&rs.BatchID, &rs.Batch, &rs.Style, &rs.StartDate, &rs.PouchDate,
			&rs.ABV, &rs.SMV, &rs.BatchSizeL)
		return rs, err
	}, `
		SELECT r.batch_id, r.batch, r.style, r.start_date, r.pouch_date, r.abv, r.smv, p.batch_size_l
		FROM recipe r
		LEFT JOIN publish_notes p ON p.batch_id = r.batch_id
		ORDER BY r.batch IS NULL, r.batch ASC, r.batch_id COLLATE BINARY ASC
	`)
}

func scanRecipe(row rowScanner) (brew.Recipe, error) {
	var r brew.Recipe
	err := row.Scan(
		&r.BatchID, &r.StartDate, &r.PouchDate, &r.Batch, &r.Style,
		&r.Kake, &r.Koji, &r.Yeast, &r.Starter, &r.WaterType,
		&r.TotalKakeG, &r.TotalKojiG, &r.TotalWaterML, &r.FermentTempC,
		&r.Addition1Notes, &r.Addition2Notes, &r.Addition3Notes,
		&r.FermentFinishGravity, &r.FermentFinishBrix,
		&r.FinalMeasuredTempC, &r.FinalMeasuredGravity, &r.FinalMeasuredBrix,
		&r.FinalGravity, &r.ABV, &r.SMV, &r.FinalWaterAdditionML,
		&r.Clarified, &r.Pasteurized, &r.PasteurizationNotes, &r.FinishingAdditions,
	)
	return r, err
}

// GetStarter retrieves a starter by code.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetStarter(ctx context.Context, code string) (brew.Starter, error) {
	return queryOne(ctx, s.db, fmt.Sprintf("starter %q", code), scanStarter,
		selectFrom("starters", starterColumns)+" WHERE starter_batch = ?", code)
}

// ListStarters returns the starters for batchID, or every starter when
// batchID is empty, ordered by starter code.
func (s *Store) ListStarters(ctx context.Context, batchID string) ([]brew.Starter, error) {
	query := selectFrom("starters", starterColumns)
	var args []any
	if batchID != "" {
		query += " WHERE batch_id = ?"
		args = append(args, batchID)
	}
	query += " ORDER BY starter_batch COLLATE BINARY ASC"
	return queryList(ctx, s.db, "starters", scanStarter, query, args...)
}

// StarterCodes returns every starter code in the store.
func (s *Store) StarterCodes(ctx context.Context) ([]string, error) {
	return queryList(ctx, s.db, "starter codes", func(row rowScanner) (string, error) {
		var code string
		err := row.Scan(&code)
		return code, err
	}, "SELECT starter_batch FROM starters ORDER BY starter_batch COLLATE BINARY ASC")
}

func scanStarter(row rowScanner) (brew.Starter, error) {
	var st brew.Starter
	err := row.Scan(
		&st.Batch, &st.Date, &st.BatchID, &st.AmtKakeG, &st.AmtKojiG, &st.AmtWaterML,
		&st.WaterType, &st.Kake, &st.Koji, &st.Yeast, &st.LacticAcidG, &st.MgSO4G, &st.KClG, &st.TempC,
	)
	return st, err
}

// GetPublishNote retrieves publish notes by batch ID.
// Returns ErrNotFound if they do not exist.
func (s *Store) GetPublishNote(ctx context.Context, batchID string) (brew.PublishNote, error) {
	return queryOne(ctx, s.db, fmt.Sprintf("publish note %q", batchID), scanPublishNote,
		selectFrom("publish_notes", publishNoteColumns)+" WHERE batch_id = ?", batchID)
}

// ListPublishNotes returns every publish note ordered by batch ID.
func (s *Store) ListPublishNotes(ctx context.Context) ([]brew.PublishNote, error) {
	return queryList(ctx, s.db, "publish notes", scanPublishNote,
		selectFrom("publish_notes", publishNoteColumns)+" ORDER BY batch_id COLLATE BINARY ASC")
}

func scanPublishNote(row rowScanner) (brew.PublishNote, error) {
	var n brew.PublishNote
	err := row.Scan(&n.BatchID, &n.PouchDate, &n.Style, &n.Water, &n.ABV, &n.SMV,
		&n.BatchSizeL, &n.Rice, &n.Description)
	return n, err
}

// ListCalculations returns calculation history, newest first. batchID
// filters when non-empty; limit <= 0 means no limit.
func (s *Store) ListCalculations(ctx context.Context, batchID string, limit int) ([]brew.Calculation, error) {
	query := selectFrom("formulas", calculationColumns)
	var args []any
	if batchID != "" {
		query += " WHERE batch_id = ?"
		args = append(args, batchID)
	}
	query += " ORDER BY created_at DESC, id COLLATE BINARY DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return queryList(ctx, s.db, "calculations", scanCalculation, query, args...)
}

func scanCalculation(row rowScanner) (brew.Calculation, error) {
	var c brew.Calculation
	var kind, createdAt string
	err := row.Scan(
		&c.ID, &kind, &c.BatchID, &c.CalibratedTempC, &c.MeasuredTempC, &c.MeasuredSG,
		&c.MeasuredBrix, &c.CorrectedGravity, &c.CalculatedABV, &c.CalculatedSMV,
		&c.TargetProfile, &c.CurrentVolumeL, &c.WaterToAddL, &createdAt,
	)
	if err != nil {
		return c, err
	}
	c.Kind = brew.CalculationKind(kind)
	c.CreatedAt, err = parseTimestamp(createdAt)
	return c, err
}
