package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/formula"
	"github.com/sakemonkey/sakemonkey/internal/store"
)

// PublishInput describes the public notes for a finished batch. Unset
// fields fall back to the recipe.
type PublishInput struct {
	BatchID   string     `json:"batch_id" yaml:"batch_id"`
	PouchDate *brew.Date `json:"pouch_date,omitempty" yaml:"pouch_date,omitempty"`

	// Style overrides the recipe style.
	Style *string `json:"style,omitempty" yaml:"style,omitempty"`

	// Water overrides the recipe water; it must name a water ingredient.
	Water *string `json:"water,omitempty" yaml:"water,omitempty"`

	// FinishingVolumeML is liquid added at finishing, counted in the batch size.
	FinishingVolumeML *float64 `json:"finishing_volume_ml,omitempty" yaml:"finishing_volume_ml,omitempty"`

	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Publish builds and upserts publish notes from the batch's recipe.
func (s *Service) Publish(ctx context.Context, in PublishInput) (Saved[brew.PublishNote], error) {
	batchID := brew.NormalizeKey(in.BatchID)
	if batchID == "" {
		return Saved[brew.PublishNote]{}, missing("batch_id")
	}
	r, err := s.store.GetRecipe(ctx, batchID)
	if errors.Is(err, store.ErrNotFound) {
		return Saved[brew.PublishNote]{}, unknownRef("batch_id", "recipe %s not found; create the recipe before publishing notes", batchID)
	}
	if err != nil {
		return Saved[brew.PublishNote]{}, fmt.Errorf("publish %s: %w", batchID, err)
	}

	note := brew.PublishNote{
		BatchID:     batchID,
		PouchDate:   r.PouchDate,
		Style:       normalizeStyle(r.Style),
		Water:       r.WaterType,
		ABV:         r.ABV,
		SMV:         r.SMV,
		BatchSizeL:  BatchSizeL(r, in.FinishingVolumeML),
		Description: brew.OptionalText(brew.Text(in.Description)),
	}
	if in.PouchDate != nil {
		note.PouchDate = in.PouchDate
	}
	if style := normalizeStyle(in.Style); style != nil {
		note.Style = style
	}
	if water, err := s.resolveIngredient(ctx, "water", brew.RoleWater, in.Water); err != nil {
		return Saved[brew.PublishNote]{}, err
	} else if water != nil {
		note.Water = water
	}

	if r.Kake != nil {
		rice, err := s.store.GetIngredient(ctx, *r.Kake)
		switch {
		case err == nil:
			note.Rice = brew.String(RiceDescription(rice))
		case !errors.Is(err, store.ErrNotFound):
			return Saved[brew.PublishNote]{}, fmt.Errorf("publish %s: %w", batchID, err)
		}
	}

	created, err := s.store.PutPublishNote(ctx, note)
	if err != nil {
		return Saved[brew.PublishNote]{}, fmt.Errorf("publish: %w", err)
	}
	s.logger.Info("publish notes saved", "batch_id", batchID, "created", created)
	return Saved[brew.PublishNote]{Record: note, Created: created}, nil
}

// BatchSizeL is (total water + final water addition + finishing volume) in
// litres at 2 dp, or nil when the sum is zero.
func BatchSizeL(r brew.Recipe, finishingVolumeML *float64) *float64 {
	total := deref(r.TotalWaterML) + deref(r.FinalWaterAdditionML) + deref(finishingVolumeML)
	if total == 0 {
		return nil
	}
	return brew.Float(formula.RoundVolume(total / 1000))
}

// RiceDescription renders the kake rice as "ID - descriptor", preferring
// the description over the source.
func RiceDescription(ing brew.Ingredient) string {
	descriptor := brew.Text(ing.Description)
	if descriptor == "" {
		descriptor = brew.Text(ing.Source)
	}
	if descriptor == "" {
		descriptor = "Ingredient"
	}
	return ing.ID + " - " + descriptor
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
