package tracker

import (
	"context"
	"fmt"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// SaveIngredient validates and upserts an ingredient.
func (s *Service) SaveIngredient(ctx context.Context, ing brew.Ingredient) (Saved[brew.Ingredient], error) {
	ing.ID = brew.NormalizeKey(ing.ID)
	if ing.ID == "" {
		return Saved[brew.Ingredient]{}, missing("ingredient_id")
	}
	typ, err := brew.ParseIngredientType(string(ing.Type))
	if err != nil {
		return Saved[brew.Ingredient]{}, &ValidationError{
			Code: ErrCodeInvalidValue, Field: "ingredient_type", Message: err.Error(),
		}
	}
	ing.Type = typ
	ing.Source = brew.OptionalText(brew.Text(ing.Source))
	ing.Description = brew.OptionalText(brew.Text(ing.Description))

	created, err := s.store.PutIngredient(ctx, ing)
	if err != nil {
		return Saved[brew.Ingredient]{}, fmt.Errorf("save ingredient: %w", err)
	}
	s.logger.Info("ingredient saved", "id", ing.ID, "type", ing.Type, "created", created)
	return Saved[brew.Ingredient]{Record: ing, Created: created}, nil
}

// Saved is a record as written plus whether it was new.
type Saved[T any] struct {
	Record  T    `json:"record" yaml:"record"`
	Created bool `json:"created" yaml:"created"`
}

// Action renders Created as "created" or "updated".
func (s Saved[T]) Action() string {
	if s.Created {
		return "created"
	}
	return "updated"
}
