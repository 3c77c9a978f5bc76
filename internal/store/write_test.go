package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

func TestPutIngredient_CreateThenUpdate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ing := brew.Ingredient{
		ID:          "Yamada-60",
		Type:        brew.IngredientKakeRice,
		Source:      brew.String("Hyogo"),
		Description: brew.String("Yamada Nishiki 60%"),
	}
	created, err := s.PutIngredient(ctx, ing)
	require.NoError(t, err)
	assert.True(t, created)

	ing.Source = nil
	created, err = s.PutIngredient(ctx, ing)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := s.GetIngredient(ctx, "Yamada-60")
	require.NoError(t, err)
	assert.Nil(t, got.Source, "put replaces every column")
	assert.Equal(t, "Yamada Nishiki 60%", *got.Description)
}

func TestMergeIngredient_KeepsStoredValuesForNulls(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	acc := brew.NewDate(2024, time.January, 5)
	_, err := s.PutIngredient(ctx, brew.Ingredient{
		ID: "Kyokai-9", Type: brew.IngredientYeast, AccDate: &acc, Source: brew.String("BSJ"),
	})
	require.NoError(t, err)

	created, err := s.MergeIngredient(ctx, brew.Ingredient{
		ID: "Kyokai-9", Type: brew.IngredientYeast, Description: brew.String("Association #9"),
	})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := s.GetIngredient(ctx, "Kyokai-9")
	require.NoError(t, err)
	require.NotNil(t, got.AccDate)
	assert.Equal(t, "2024-01-05", got.AccDate.String())
	assert.Equal(t, "BSJ", *got.Source)
	assert.Equal(t, "Association #9", *got.Description)
}

func TestPutRecipe_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := createTestRecipe("B-12", 12, "pure")
	r.FinalGravity = brew.Float(0.9985)
	r.ABV = brew.Float(16.2)
	r.SMV = brew.Float(2.2)
	r.Clarified = true
	r.Addition2Notes = brew.String("naka day 2")

	created, err := s.PutRecipe(ctx, r)
	require.NoError(t, err)
	assert.True(t, created)

	got, err := s.GetRecipe(ctx, "B-12")
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestMergeRecipe_FillsBlanksOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.PutRecipe(ctx, createTestRecipe("B-1", 1, "rustic"))
	require.NoError(t, err)

	_, err = s.MergeRecipe(ctx, brew.Recipe{BatchID: "B-1", ABV: brew.Float(15.1)})
	require.NoError(t, err)

	got, err := s.GetRecipe(ctx, "B-1")
	require.NoError(t, err)
	assert.Equal(t, "rustic", *got.Style)
	assert.Equal(t, 1, *got.Batch)
	assert.Equal(t, 15.1, *got.ABV)
}

func TestPutStarter_AndRefreshRecipeTotals(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := createTestRecipe("B-7", 7, "pure")
	r.TotalWaterML = brew.Float(999)
	_, err := s.PutRecipe(ctx, r)
	require.NoError(t, err)

	_, err = s.PutStarter(ctx, createTestStarter("s10", "B-7", 100, 250, 300))
	require.NoError(t, err)
	_, err = s.PutStarter(ctx, createTestStarter("s11", "B-7", 50, 0, 200))
	require.NoError(t, err)
	// Other batch, not counted.
	_, err = s.PutStarter(ctx, createTestStarter("s12", "B-8", 1000, 1000, 1000))
	require.NoError(t, err)

	require.NoError(t, s.RefreshRecipeTotals(ctx, "B-7"))

	got, err := s.GetRecipe(ctx, "B-7")
	require.NoError(t, err)
	assert.Equal(t, 150.0, *got.TotalKakeG)
	assert.Equal(t, 250.0, *got.TotalKojiG)
	assert.Equal(t, 500.0, *got.TotalWaterML)
}

func TestPutRecipeWithStarter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := createTestRecipe("B-4", 4, "pure")
	r.Starter = brew.String("s4")
	created, err := s.PutRecipeWithStarter(ctx, r, createTestStarter("s4", "B-4", 0, 250, 250))
	require.NoError(t, err)
	assert.True(t, created)

	got, err := s.GetRecipe(ctx, "B-4")
	require.NoError(t, err)
	assert.Equal(t, "s4", *got.Starter)
	st, err := s.GetStarter(ctx, "s4")
	require.NoError(t, err)
	assert.Equal(t, "B-4", *st.BatchID)

	created, err = s.PutRecipeWithStarter(ctx, r, createTestStarter("s4", "B-4", 0, 250, 250))
	require.NoError(t, err)
	assert.False(t, created)
}

func TestPutRecipeWithStarter_FailureWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{"starter rejected", "starters"},
		{"recipe rejected", "recipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			ctx := context.Background()
			_, err := s.db.Exec(`CREATE TRIGGER reject BEFORE INSERT ON ` + tt.table +
				` BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
			require.NoError(t, err)

			r := createTestRecipe("B-5", 5, "pure")
			r.Starter = brew.String("s5")
			_, err = s.PutRecipeWithStarter(ctx, r, createTestStarter("s5", "B-5", 0, 250, 250))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "rejected")

			_, err = s.GetRecipe(ctx, "B-5")
			assert.True(t, errors.Is(err, ErrNotFound))
			_, err = s.GetStarter(ctx, "s5")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestRefreshRecipeTotals_NoStartersKeepsTotals(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := createTestRecipe("B-2", 2, "pure")
	r.TotalKakeG = brew.Float(1200)
	_, err := s.PutRecipe(ctx, r)
	require.NoError(t, err)

	require.NoError(t, s.RefreshRecipeTotals(ctx, "B-2"))

	got, err := s.GetRecipe(ctx, "B-2")
	require.NoError(t, err)
	assert.Equal(t, 1200.0, *got.TotalKakeG)
	assert.Nil(t, got.TotalKojiG)
}

func TestRefreshRecipeTotals_MissingRecipe(t *testing.T) {
	s := createTestStore(t)

	err := s.RefreshRecipeTotals(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestPutPublishNote_CreateThenUpdate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	n := brew.PublishNote{BatchID: "B-3", Style: brew.String("pure"), BatchSizeL: brew.Float(12.5)}
	created, err := s.PutPublishNote(ctx, n)
	require.NoError(t, err)
	assert.True(t, created)

	n.Description = brew.String("Dry and bright")
	created, err = s.PutPublishNote(ctx, n)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := s.GetPublishNote(ctx, "B-3")
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestWriteCalculation_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c := brew.Calculation{
		ID:               "calc-1",
		Kind:             brew.CalculationGravity,
		MeasuredSG:       brew.Float(1.05),
		CorrectedGravity: brew.Float(1.0512),
		CreatedAt:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.WriteCalculation(ctx, c))
	require.NoError(t, s.WriteCalculation(ctx, c))

	all, err := s.ListCalculations(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, c, all[0])
}

func TestUpsertSQL(t *testing.T) {
	got := upsertSQL("t", "k", []string{"k", "a"}, false)
	assert.Equal(t, "INSERT INTO t (k, a) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET a = excluded.a", got)

	got = upsertSQL("t", "k", []string{"k", "a"}, true)
	assert.Equal(t, "INSERT INTO t (k, a) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET a = COALESCE(excluded.a, a)", got)
}
