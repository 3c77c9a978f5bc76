package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecipe creates a recipe with the fields most tests read back.
func createTestRecipe(batchID string, batch int, style string) brew.Recipe {
	start := brew.NewDate(2024, time.March, batch)
	return brew.Recipe{
		BatchID:      batchID,
		StartDate:    &start,
		Batch:        brew.Int(batch),
		Style:        brew.String(style),
		Kake:         brew.String("Yamada-60"),
		FermentTempC: brew.Float(6),
	}
}

// createTestStarter creates a starter with kake, koji and water amounts.
func createTestStarter(code, batchID string, kake, koji, water float64) brew.Starter {
	return brew.Starter{
		Batch:      code,
		BatchID:    brew.String(batchID),
		AmtKakeG:   brew.Float(kake),
		AmtKojiG:   brew.Float(koji),
		AmtWaterML: brew.Float(water),
	}
}
