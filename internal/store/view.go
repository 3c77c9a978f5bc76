package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTable is returned by View for a table name it does not know.
var ErrUnknownTable = errors.New("unknown table")

// Table is a raw table read for display. Cells hold string, float64,
// int64 or nil.
type Table struct {
	Name    string           `json:"table" yaml:"table"`
	Columns []string         `json:"columns" yaml:"columns"`
	Rows    []map[string]any `json:"rows" yaml:"rows"`
}

type viewDef struct {
	table   string
	columns []string
	order   string
	// batchColumn is empty when the table cannot be filtered by batch.
	batchColumn string
}

var views = map[string]viewDef{
	"ingredients":   {"ingredients", ingredientColumns, "ingredient_id COLLATE BINARY ASC", ""},
	"recipe":        {"recipe", recipeColumns, "batch_id COLLATE BINARY ASC", "batch_id"},
	"starters":      {"starters", starterColumns, "starter_batch COLLATE BINARY ASC", "batch_id"},
	"publish_notes": {"publish_notes", publishNoteColumns, "batch_id COLLATE BINARY ASC", "batch_id"},
	"formulas":      {"formulas", calculationColumns, "created_at DESC, id COLLATE BINARY DESC", "batch_id"},
}

// ViewNames lists the names View accepts.
func ViewNames() []string {
	return []string{"ingredients", "recipe", "starters", "publish_notes", "formulas"}
}

// View reads up to limit rows of a table in key order (formulas newest
// first). batchID filters tables that carry a batch; limit <= 0 means no
// limit. "recipes" is accepted for the recipe table.
func (s *Store) View(ctx context.Context, name, batchID string, limit int) (Table, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "recipes" {
		name = "recipe"
	}
	def, ok := views[name]
	if !ok {
		return Table{}, fmt.Errorf("%w %q (want one of %s)", ErrUnknownTable, name, strings.Join(ViewNames(), ", "))
	}

	query := selectFrom(def.table, def.columns)
	var args []any
	if batchID != "" {
		if def.batchColumn == "" {
			return Table{}, fmt.Errorf("table %s has no batch column", def.table)
		}
		query += " WHERE " + def.batchColumn + " = ?"
		args = append(args, batchID)
	}
	query += " ORDER BY " + def.order
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Table{}, fmt.Errorf("view %s: %w", def.table, err)
	}
	defer rows.Close()

	t := Table{Name: def.table, Columns: def.columns, Rows: []map[string]any{}}
	for rows.Next() {
		cells := make([]any, len(def.columns))
		ptrs := make([]any, len(cells))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Table{}, fmt.Errorf("view %s: %w", def.table, err)
		}
		row := make(map[string]any, len(cells))
		for i, c := range cells {
			if b, ok := c.([]byte); ok {
				c = string(b)
			}
			row[def.columns[i]] = c
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Table{}, fmt.Errorf("view %s: %w", def.table, err)
	}
	return t, nil
}
