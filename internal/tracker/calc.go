package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/formula"
	"github.com/sakemonkey/sakemonkey/internal/store"
)

// GravityResult is a corrected reading at persisted precision and the
// history row written for it.
type GravityResult struct {
	Reading     formula.Reading  `json:"reading" yaml:"reading"`
	Calculation brew.Calculation `json:"calculation" yaml:"calculation"`
}

// CorrectReading evaluates m and appends the result to the calculation
// history, tagged with batchID when non-empty.
func (s *Service) CorrectReading(ctx context.Context, m formula.Measurement, batchID string) (GravityResult, error) {
	m = m.WithDefaults()
	reading, err := s.eval.Evaluate(m)
	if err != nil {
		return GravityResult{}, err
	}
	reading = reading.Rounded()

	calc := s.newCalculation(brew.CalculationGravity, batchID)
	calc.CalibratedTempC = brew.Float(*m.CalibrationTempC)
	calc.MeasuredTempC = brew.Float(m.MeasuredTempC)
	calc.MeasuredSG = brew.Float(m.MeasuredSG)
	calc.MeasuredBrix = m.MeasuredBrix
	calc.CorrectedGravity = brew.Float(reading.CorrectedSG)
	calc.CalculatedABV = reading.ABV
	calc.CalculatedSMV = brew.Float(reading.SMV)

	if err := s.store.WriteCalculation(ctx, calc); err != nil {
		return GravityResult{}, fmt.Errorf("record gravity: %w", err)
	}
	s.logger.Debug("gravity recorded", "id", calc.ID, "corrected_sg", reading.CorrectedSG)
	return GravityResult{Reading: reading, Calculation: calc}, nil
}

// DilutionRequest asks how much water brings a batch to a target profile.
// Brix and SG fall back to the recipe's ferment finish values when BatchID
// names a recipe.
type DilutionRequest struct {
	BatchID string   `json:"batch_id,omitempty" yaml:"batch_id,omitempty"`
	VolumeL float64  `json:"current_volume_l" yaml:"current_volume_l"`
	Brix    *float64 `json:"current_brix,omitempty" yaml:"current_brix,omitempty"`
	SG      *float64 `json:"current_sg,omitempty" yaml:"current_sg,omitempty"`
	Target  string   `json:"target" yaml:"target"`
}

// DilutionResult is a dilution plan at persisted precision and the history
// row written for it.
type DilutionResult struct {
	Dilution    formula.Dilution `json:"dilution" yaml:"dilution"`
	Calculation brew.Calculation `json:"calculation" yaml:"calculation"`

	// BrixFromRecipe and SGFromRecipe report values taken from the recipe.
	BrixFromRecipe bool `json:"brix_from_recipe" yaml:"brix_from_recipe"`
	SGFromRecipe   bool `json:"sg_from_recipe" yaml:"sg_from_recipe"`
}

// Dilute computes a dilution plan and appends it to the calculation history.
func (s *Service) Dilute(ctx context.Context, req DilutionRequest) (DilutionResult, error) {
	target, err := formula.LookupTarget(req.Target, s.targets...)
	if err != nil {
		return DilutionResult{}, &ValidationError{Code: ErrCodeInvalidValue, Field: "target", Message: err.Error()}
	}

	var res DilutionResult
	batchID := brew.NormalizeKey(req.BatchID)
	brix, sg := req.Brix, req.SG
	if batchID != "" && (brix == nil || sg == nil) {
		r, err := s.store.GetRecipe(ctx, batchID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.logger.Warn("recipe not found; using given values only", "batch_id", batchID)
		case err != nil:
			return DilutionResult{}, fmt.Errorf("dilute %s: %w", batchID, err)
		default:
			if brix == nil && r.FermentFinishBrix != nil {
				brix, res.BrixFromRecipe = r.FermentFinishBrix, true
				s.logger.Info("using ferment finish brix from recipe", "batch_id", batchID, "brix", *brix)
			}
			if sg == nil && r.FermentFinishGravity != nil {
				sg, res.SGFromRecipe = r.FermentFinishGravity, true
				s.logger.Info("using ferment finish gravity from recipe", "batch_id", batchID, "sg", *sg)
			}
		}
	}
	if brix == nil {
		return DilutionResult{}, missing("current_brix")
	}
	if sg == nil {
		return DilutionResult{}, missing("current_sg")
	}

	d, err := s.eval.CalculateDilution(req.VolumeL, *brix, *sg, target)
	if err != nil {
		return DilutionResult{}, err
	}
	res.Dilution = d.Rounded()

	calc := s.newCalculation(brew.CalculationDilution, batchID)
	calc.MeasuredBrix = brix
	calc.MeasuredSG = sg
	calc.TargetProfile = brew.String(target.Name)
	calc.CurrentVolumeL = brew.Float(req.VolumeL)
	calc.WaterToAddL = brew.Float(res.Dilution.WaterToAddL)
	if err := s.store.WriteCalculation(ctx, calc); err != nil {
		return DilutionResult{}, fmt.Errorf("record dilution: %w", err)
	}
	res.Calculation = calc

	if d.GravityOff {
		s.logger.Warn("estimated gravity misses target",
			"target", target.Name, "estimated_sg", res.Dilution.EstimatedSG, "target_sg", target.SG)
	}
	return res, nil
}

func (s *Service) newCalculation(kind brew.CalculationKind, batchID string) brew.Calculation {
	c := brew.Calculation{
		ID:        s.ids.Generate(),
		Kind:      kind,
		CreatedAt: s.clock.Now().UTC(),
	}
	if id := brew.NormalizeKey(batchID); id != "" {
		c.BatchID = &id
	}
	return c
}
