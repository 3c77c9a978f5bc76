package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/formula"
	"github.com/sakemonkey/sakemonkey/internal/store"
)

// DefaultFermentTempC is used when a recipe gives no ferment temperature.
const DefaultFermentTempC = 6.0

// RecipeInput is a recipe as entered. FinalGravity, ABV and SMV are ignored
// and recomputed from the final measurements.
type RecipeInput struct {
	brew.Recipe `yaml:",inline"`

	// CalibrationTempC is the hydrometer calibration temperature for the
	// final measurement. Defaults to formula.DefaultCalibrationTempC.
	CalibrationTempC *float64 `json:"calibration_temp_c,omitempty" yaml:"calibration_temp_c,omitempty"`
}

// RecipeResult is a saved recipe plus the starter created for it, if any.
type RecipeResult struct {
	Saved[brew.Recipe] `yaml:",inline"`

	// Starter is the default shubo starter created because the recipe
	// referenced none.
	Starter *brew.Starter `json:"starter,omitempty" yaml:"starter,omitempty"`
}

// SaveRecipe validates, derives and upserts a recipe.
//
// When both final measured temperature and gravity are present the final
// gravity, SMV and (with brix) ABV are computed; an out-of-range reading
// aborts the save with formula.ErrInvalidInput. When no starter is
// referenced a default shubo starter is created under the next free code.
func (s *Service) SaveRecipe(ctx context.Context, in RecipeInput) (RecipeResult, error) {
	r := in.Recipe
	r.BatchID = brew.NormalizeKey(r.BatchID)
	if r.BatchID == "" {
		return RecipeResult{}, missing("batch_id")
	}

	if r.Batch == nil {
		if n, ok := brew.BatchNumberFromID(r.BatchID); ok {
			r.Batch = &n
		}
	}
	if r.FermentTempC == nil {
		r.FermentTempC = brew.Float(DefaultFermentTempC)
	}
	r.Style = normalizeStyle(r.Style)

	var err error
	refs := []struct {
		field string
		role  brew.Role
		id    **string
	}{
		{"kake", brew.RoleKake, &r.Kake},
		{"koji", brew.RoleKoji, &r.Koji},
		{"yeast", brew.RoleYeast, &r.Yeast},
		{"water_type", brew.RoleWater, &r.WaterType},
	}
	for _, ref := range refs {
		if *ref.id, err = s.resolveIngredient(ctx, ref.field, ref.role, *ref.id); err != nil {
			return RecipeResult{}, err
		}
	}

	for _, notes := range []**string{
		&r.Addition1Notes, &r.Addition2Notes, &r.Addition3Notes,
		&r.PasteurizationNotes, &r.FinishingAdditions,
	} {
		*notes = brew.OptionalText(brew.Text(*notes))
	}

	if err := s.deriveFinals(&r, in.CalibrationTempC); err != nil {
		return RecipeResult{}, fmt.Errorf("save recipe %q: %w", r.BatchID, err)
	}

	var shubo *brew.Starter
	if code := brew.Text(r.Starter); code != "" {
		code = brew.FormatStarterCode(code)
		if _, err := s.store.GetStarter(ctx, code); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return RecipeResult{}, unknownRef("starter", "starter %s does not exist", code)
			}
			return RecipeResult{}, fmt.Errorf("save recipe %q: %w", r.BatchID, err)
		}
		r.Starter = &code
	} else {
		codes, err := s.store.StarterCodes(ctx)
		if err != nil {
			return RecipeResult{}, fmt.Errorf("save recipe %q: %w", r.BatchID, err)
		}
		date := s.today()
		if r.StartDate != nil {
			date = *r.StartDate
		}
		st := brew.NewShuboStarter(brew.NextStarterCode(codes), r.BatchID, date, r.Kake, r.Koji, r.Yeast, r.WaterType)
		r.Starter = brew.String(st.Batch)
		shubo = &st
	}

	var created bool
	if shubo != nil {
		created, err = s.store.PutRecipeWithStarter(ctx, r, *shubo)
	} else {
		created, err = s.store.PutRecipe(ctx, r)
	}
	if err != nil {
		return RecipeResult{}, fmt.Errorf("save recipe: %w", err)
	}
	s.logger.Info("recipe saved", "batch_id", r.BatchID, "created", created)
	if shubo != nil {
		s.logger.Info("default shubo starter created", "starter", shubo.Batch, "batch_id", r.BatchID)
	}

	return RecipeResult{Saved: Saved[brew.Recipe]{Record: r, Created: created}, Starter: shubo}, nil
}

// deriveFinals fills FinalGravity, ABV and SMV from the final measurements,
// clearing them when the measurements are incomplete.
func (s *Service) deriveFinals(r *brew.Recipe, calibrationTempC *float64) error {
	r.FinalGravity, r.ABV, r.SMV = nil, nil, nil
	if r.FinalMeasuredTempC == nil || r.FinalMeasuredGravity == nil {
		return nil
	}
	m := formula.Measurement{
		MeasuredTempC:    *r.FinalMeasuredTempC,
		MeasuredSG:       *r.FinalMeasuredGravity,
		MeasuredBrix:     r.FinalMeasuredBrix,
		CalibrationTempC: calibrationTempC,
	}
	reading, err := s.eval.Evaluate(m)
	if err != nil {
		return err
	}
	reading = reading.Rounded()
	r.FinalGravity = brew.Float(reading.CorrectedSG)
	r.SMV = brew.Float(reading.SMV)
	r.ABV = reading.ABV
	return nil
}

// resolveIngredient checks that id names an ingredient whose type can fill
// role. A blank id resolves to nil.
func (s *Service) resolveIngredient(ctx context.Context, field string, role brew.Role, id *string) (*string, error) {
	key := brew.NormalizeKey(brew.Text(id))
	if key == "" {
		return nil, nil
	}
	ing, err := s.store.GetIngredient(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, unknownRef(field, "ingredient %q does not exist", key)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", field, err)
	}
	if !role.Accepts(ing.Type) {
		return nil, &ValidationError{
			Code:    ErrCodeWrongType,
			Field:   field,
			Message: fmt.Sprintf("ingredient %q is %s, want one of %v", key, ing.Type, role.Types()),
		}
	}
	return &key, nil
}

// normalizeStyle maps known style names to their canonical form and keeps
// custom styles as typed.
func normalizeStyle(style *string) *string {
	text := brew.OptionalText(brew.Text(style))
	if text == nil {
		return nil
	}
	if known := brew.NormalizeStyle(*text); known != "" {
		return brew.String(string(known))
	}
	return text
}
