package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/formula"
	"github.com/sakemonkey/sakemonkey/internal/store"
	"github.com/sakemonkey/sakemonkey/internal/testutil"
)

var epoch = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := New(st,
		WithIDGenerator(testutil.NewSequenceIDs("calc")),
		WithClock(testutil.NewStepClock(epoch, time.Second)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, st
}

// seedIngredients adds one ingredient per role.
func seedIngredients(t *testing.T, svc *Service) {
	t.Helper()
	for _, ing := range []brew.Ingredient{
		{ID: "Yamada-60", Type: brew.IngredientKakeRice, Description: brew.String("Yamada Nishiki 60%")},
		{ID: "Koji-Omachi", Type: brew.IngredientKojiRice, Source: brew.String("Okayama")},
		{ID: "K9", Type: brew.IngredientYeast},
		{ID: "Spring", Type: brew.IngredientWater},
		{ID: "Tap", Type: brew.IngredientWater},
	} {
		_, err := svc.SaveIngredient(context.Background(), ing)
		require.NoError(t, err)
	}
}

func TestSaveIngredient_NormalizesAndReportsAction(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveIngredient(ctx, brew.Ingredient{
		ID: "  Omachi ", Type: "Rice", Source: brew.String("  "), Description: brew.String(" Okayama "),
	})
	require.NoError(t, err)
	assert.Equal(t, "created", saved.Action())
	assert.Equal(t, "Omachi", saved.Record.ID)
	assert.Equal(t, brew.IngredientRice, saved.Record.Type)
	assert.Nil(t, saved.Record.Source)

	saved, err = svc.SaveIngredient(ctx, saved.Record)
	require.NoError(t, err)
	assert.Equal(t, "updated", saved.Action())

	got, err := st.GetIngredient(ctx, "Omachi")
	require.NoError(t, err)
	assert.Equal(t, "Okayama", *got.Description)
}

func TestSaveIngredient_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveIngredient(ctx, brew.Ingredient{Type: brew.IngredientRice})
	assert.True(t, IsValidationError(err))

	_, err = svc.SaveIngredient(ctx, brew.Ingredient{ID: "x", Type: "sugar"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ErrCodeInvalidValue, ve.Code)
	assert.Equal(t, "ingredient_type", ve.Field)
}

func TestSaveRecipe_DefaultsAndDerivedValues(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedIngredients(t, svc)

	res, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{
		BatchID:              "BATCH-007",
		Style:                brew.String("Rustic Experimental"),
		Kake:                 brew.String("Yamada-60"),
		Koji:                 brew.String("Koji-Omachi"),
		Yeast:                brew.String("K9"),
		WaterType:            brew.String("Spring"),
		FinalMeasuredTempC:   brew.Float(25),
		FinalMeasuredGravity: brew.Float(1.050),
		FinalMeasuredBrix:    brew.Float(8),
		// Derived columns are recomputed, not taken from input.
		ABV: brew.Float(99),
	}})
	require.NoError(t, err)
	assert.True(t, res.Created)

	r := res.Record
	assert.Equal(t, 7, *r.Batch)
	assert.Equal(t, DefaultFermentTempC, *r.FermentTempC)
	assert.Equal(t, "rustic_experimental", *r.Style)
	assert.Equal(t, 1.0512, *r.FinalGravity)

	reading, err := formula.Default().Evaluate(formula.Measurement{
		MeasuredTempC: 25, MeasuredSG: 1.050, MeasuredBrix: brew.Float(8),
	})
	require.NoError(t, err)
	assert.Equal(t, formula.RoundMetric(reading.SMV), *r.SMV)
	assert.Equal(t, formula.RoundMetric(*reading.ABV), *r.ABV)

	got, err := st.GetRecipe(ctx, "BATCH-007")
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestSaveRecipe_CustomCalibrationTemp(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.SaveRecipe(context.Background(), RecipeInput{
		Recipe: brew.Recipe{
			BatchID:              "B-1",
			FinalMeasuredTempC:   brew.Float(15),
			FinalMeasuredGravity: brew.Float(0.998),
		},
		CalibrationTempC: brew.Float(15),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.998, *res.Record.FinalGravity)
	assert.Nil(t, res.Record.ABV, "no brix, no ABV")
	assert.NotNil(t, res.Record.SMV)
}

func TestSaveRecipe_ZeroCalibrationTempIsKept(t *testing.T) {
	svc, _ := newTestService(t)

	reading := brew.Recipe{
		FinalMeasuredTempC:   brew.Float(10),
		FinalMeasuredGravity: brew.Float(1.010),
	}

	reading.BatchID = "B-0"
	res, err := svc.SaveRecipe(context.Background(), RecipeInput{Recipe: reading, CalibrationTempC: brew.Float(0)})
	require.NoError(t, err)
	assert.Equal(t, 1.0104, *res.Record.FinalGravity)

	reading.BatchID = "B-20"
	res, err = svc.SaveRecipe(context.Background(), RecipeInput{Recipe: reading})
	require.NoError(t, err)
	assert.Equal(t, 1.0085, *res.Record.FinalGravity, "absent calibration defaults to 20C")
}

func TestSaveRecipe_IncompleteMeasurementsClearDerived(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.SaveRecipe(context.Background(), RecipeInput{Recipe: brew.Recipe{
		BatchID:            "B-2",
		FinalMeasuredTempC: brew.Float(20),
		FinalGravity:       brew.Float(1.0),
		SMV:                brew.Float(3),
	}})
	require.NoError(t, err)
	assert.Nil(t, res.Record.FinalGravity)
	assert.Nil(t, res.Record.SMV)
}

func TestSaveRecipe_InvalidReadingAbortsSave(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{
		BatchID:              "B-3",
		FinalMeasuredTempC:   brew.Float(80),
		FinalMeasuredGravity: brew.Float(1.0),
	}})
	require.Error(t, err)
	assert.True(t, formula.IsInvalidInput(err))

	_, err = st.GetRecipe(ctx, "B-3")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	codes, err := st.StarterCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes, "no starter created for an aborted save")
}

func TestSaveRecipe_CreatesShuboStarterWithNextCode(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedIngredients(t, svc)

	for _, code := range []string{"s9", "s10"} {
		_, err := st.PutStarter(ctx, brew.Starter{Batch: code})
		require.NoError(t, err)
	}

	start := brew.NewDate(2024, time.February, 3)
	res, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{
		BatchID:   "B-11",
		StartDate: &start,
		Koji:      brew.String("Koji-Omachi"),
		WaterType: brew.String("Spring"),
	}})
	require.NoError(t, err)
	require.NotNil(t, res.Starter)
	assert.Equal(t, "s11", res.Starter.Batch)
	assert.Equal(t, "s11", *res.Record.Starter)

	shubo, err := st.GetStarter(ctx, "s11")
	require.NoError(t, err)
	assert.Equal(t, "B-11", *shubo.BatchID)
	assert.Equal(t, "2024-02-03", shubo.Date.String())
	assert.Equal(t, brew.ShuboKojiG, *shubo.AmtKojiG)
	assert.Equal(t, brew.ShuboWaterML, *shubo.AmtWaterML)
	assert.Equal(t, brew.ShuboLacticAcidG, *shubo.LacticAcidG)
	assert.Equal(t, brew.ShuboTempC, *shubo.TempC)
	assert.Equal(t, "Spring", *shubo.WaterType)
}

func TestSaveRecipe_StarterFailureLeavesNoRecipe(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	_, err := st.DB().Exec(`CREATE TRIGGER reject_starter BEFORE INSERT ON starters
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	require.NoError(t, err)

	_, err = svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: "B-6"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = st.GetRecipe(ctx, "B-6")
	assert.True(t, errors.Is(err, store.ErrNotFound), "recipe must not reference a missing starter")
}

func TestSaveRecipe_ExistingStarterReference(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := st.PutStarter(ctx, brew.Starter{Batch: "s64"})
	require.NoError(t, err)

	res, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: "B-64", Starter: brew.String("64")}})
	require.NoError(t, err)
	assert.Nil(t, res.Starter)
	assert.Equal(t, "s64", *res.Record.Starter)

	_, err = svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: "B-65", Starter: brew.String("s65")}})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ErrCodeUnknownReference, ve.Code)
}

func TestSaveRecipe_IngredientRoles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedIngredients(t, svc)

	_, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: "B-1", Kake: brew.String("Koji-Omachi")}})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ErrCodeWrongType, ve.Code)
	assert.Equal(t, "kake", ve.Field)

	_, err = svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: "B-1", Yeast: brew.String("K7")}})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ErrCodeUnknownReference, ve.Code)

	_, err = svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: " "}})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ErrCodeMissingField, ve.Code)
}

func TestSaveStarter_FormatsCodeAndRefreshesTotals(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: "B-5"}})
	require.NoError(t, err) // creates s1 with 250 g koji / 250 mL

	saved, err := svc.SaveStarter(ctx, brew.Starter{
		Batch: "2", BatchID: brew.String("B-5"),
		AmtKakeG: brew.Float(100), AmtKojiG: brew.Float(50), AmtWaterML: brew.Float(150),
	})
	require.NoError(t, err)
	assert.Equal(t, "s2", saved.Record.Batch)
	assert.True(t, saved.Created)
	assert.Equal(t, "2024-04-01", saved.Record.Date.String(), "date defaults to today")

	r, err := st.GetRecipe(ctx, "B-5")
	require.NoError(t, err)
	assert.Equal(t, 100.0, *r.TotalKakeG)
	assert.Equal(t, 300.0, *r.TotalKojiG)
	assert.Equal(t, 400.0, *r.TotalWaterML)
}

func TestSaveStarter_BlankCodeAndOrphanBatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveStarter(ctx, brew.Starter{BatchID: brew.String("no-recipe")})
	require.NoError(t, err, "missing recipe only skips the totals refresh")
	assert.Equal(t, "s1", saved.Record.Batch)
}

func TestPublish_FromRecipe(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedIngredients(t, svc)

	pouch := brew.NewDate(2024, time.May, 20)
	_, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{
		BatchID:              "B-9",
		PouchDate:            &pouch,
		Style:                brew.String("pure"),
		Kake:                 brew.String("Yamada-60"),
		WaterType:            brew.String("Spring"),
		TotalWaterML:         brew.Float(15000),
		FinalWaterAdditionML: brew.Float(2500),
		FinalMeasuredTempC:   brew.Float(20),
		FinalMeasuredGravity: brew.Float(0.998),
		FinalMeasuredBrix:    brew.Float(8),
	}})
	require.NoError(t, err)

	saved, err := svc.Publish(ctx, PublishInput{
		BatchID:           "B-9",
		Style:             brew.String("Rustic"),
		FinishingVolumeML: brew.Float(255),
		Description:       brew.String("Dry, bright"),
	})
	require.NoError(t, err)
	n := saved.Record
	assert.Equal(t, "rustic", *n.Style)
	assert.Equal(t, "Spring", *n.Water)
	assert.Equal(t, 17.76, *n.BatchSizeL)
	assert.Equal(t, "Yamada-60 - Yamada Nishiki 60%", *n.Rice)
	assert.Equal(t, "2024-05-20", n.PouchDate.String())
	assert.Equal(t, 12.2, *n.ABV)
	assert.Equal(t, 2.9, *n.SMV)

	got, err := st.GetPublishNote(ctx, "B-9")
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestPublish_OverridesAndErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedIngredients(t, svc)

	_, err := svc.Publish(ctx, PublishInput{BatchID: "missing"})
	assert.True(t, IsValidationError(err))

	_, err = svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: "B-1", Style: brew.String("Nigori")}})
	require.NoError(t, err)

	saved, err := svc.Publish(ctx, PublishInput{BatchID: "B-1", Water: brew.String("Tap")})
	require.NoError(t, err)
	assert.Equal(t, "Nigori", *saved.Record.Style, "custom styles pass through")
	assert.Equal(t, "Tap", *saved.Record.Water)
	assert.Nil(t, saved.Record.BatchSizeL)
	assert.Nil(t, saved.Record.Rice)

	_, err = svc.Publish(ctx, PublishInput{BatchID: "B-1", Water: brew.String("K9")})
	assert.True(t, IsValidationError(err))
}

func TestRiceDescription(t *testing.T) {
	assert.Equal(t, "R - Okayama", RiceDescription(brew.Ingredient{ID: "R", Source: brew.String("Okayama")}))
	assert.Equal(t, "R - Ingredient", RiceDescription(brew.Ingredient{ID: "R"}))
}

func TestCorrectReading_RecordsHistory(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	res, err := svc.CorrectReading(ctx, formula.Measurement{
		MeasuredTempC: 25, MeasuredSG: 1.050, MeasuredBrix: brew.Float(8),
	}, "B-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0512, res.Reading.CorrectedSG)
	assert.Equal(t, "calc-001", res.Calculation.ID)
	assert.Equal(t, 20.0, *res.Calculation.CalibratedTempC)
	assert.True(t, res.Calculation.CreatedAt.Equal(epoch))

	history, err := st.ListCalculations(ctx, "B-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, res.Calculation, history[0])
}

func TestCorrectReading_InvalidInputWritesNothing(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.CorrectReading(ctx, formula.Measurement{MeasuredTempC: 20, MeasuredSG: 0}, "")
	assert.True(t, formula.IsInvalidInput(err))

	history, err := st.ListCalculations(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDilute_UsesRecipeFermentFinish(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{
		BatchID:              "B-4",
		FermentFinishBrix:    brew.Float(16),
		FermentFinishGravity: brew.Float(1.01),
	}})
	require.NoError(t, err)

	res, err := svc.Dilute(ctx, DilutionRequest{BatchID: "B-4", VolumeL: 10, Target: "pure"})
	require.NoError(t, err)
	assert.True(t, res.BrixFromRecipe)
	assert.True(t, res.SGFromRecipe)
	assert.Equal(t, 4.55, res.Dilution.WaterToAddL)
	assert.Equal(t, "Pure", *res.Calculation.TargetProfile)

	history, err := st.ListCalculations(ctx, "B-4", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, brew.CalculationDilution, history[0].Kind)
	assert.Equal(t, 4.55, *history[0].WaterToAddL)
}

func TestDilute_ExplicitValuesWin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveRecipe(ctx, RecipeInput{Recipe: brew.Recipe{BatchID: "B-4", FermentFinishBrix: brew.Float(16)}})
	require.NoError(t, err)

	res, err := svc.Dilute(ctx, DilutionRequest{
		BatchID: "B-4", VolumeL: 10, Brix: brew.Float(10), SG: brew.Float(1.0), Target: "Mixer",
	})
	require.NoError(t, err)
	assert.False(t, res.BrixFromRecipe)
	assert.True(t, res.Dilution.NoOp)
	assert.Equal(t, 0.0, res.Dilution.WaterToAddL)
}

func TestDilute_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Dilute(ctx, DilutionRequest{VolumeL: 10, Brix: brew.Float(16), SG: brew.Float(1), Target: "sweet"})
	assert.True(t, IsValidationError(err))

	_, err = svc.Dilute(ctx, DilutionRequest{BatchID: "nope", VolumeL: 10, SG: brew.Float(1), Target: "Pure"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "current_brix", ve.Field)

	_, err = svc.Dilute(ctx, DilutionRequest{VolumeL: 0, Brix: brew.Float(16), SG: brew.Float(1), Target: "Pure"})
	assert.True(t, formula.IsInvalidInput(err))
}

func TestDilute_CustomTargets(t *testing.T) {
	svc, _ := newTestService(t)
	svc = New(svc.store, WithTargets([]formula.DilutionTarget{{Name: "Table", Brix: 8, SG: 1.0}}),
		WithIDGenerator(testutil.NewSequenceIDs("x")))

	res, err := svc.Dilute(context.Background(), DilutionRequest{VolumeL: 8, Brix: brew.Float(16), SG: brew.Float(1.0), Target: "table"})
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Dilution.WaterToAddL)
	assert.Equal(t, "x-001", res.Calculation.ID)
}

func TestRefreshTotals(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := st.PutRecipe(ctx, brew.Recipe{BatchID: "B-3"})
	require.NoError(t, err)
	_, err = st.PutStarter(ctx, brew.Starter{Batch: "s1", BatchID: brew.String("B-3"), AmtKojiG: brew.Float(250)})
	require.NoError(t, err)

	require.NoError(t, svc.RefreshTotals(ctx, " B-3 "))
	r, err := st.GetRecipe(ctx, "B-3")
	require.NoError(t, err)
	assert.Equal(t, 250.0, *r.TotalKojiG)

	var verr *ValidationError
	require.ErrorAs(t, svc.RefreshTotals(ctx, "B-404"), &verr)
	assert.Equal(t, ErrCodeUnknownReference, verr.Code)
	require.ErrorAs(t, svc.RefreshTotals(ctx, ""), &verr)
	assert.Equal(t, ErrCodeMissingField, verr.Code)
}
