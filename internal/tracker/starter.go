package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/store"
)

// SaveStarter formats the starter code, upserts the starter and refreshes
// the totals of the recipe it belongs to. A blank code takes the next free
// one.
func (s *Service) SaveStarter(ctx context.Context, st brew.Starter) (Saved[brew.Starter], error) {
	if brew.NormalizeKey(st.Batch) == "" {
		codes, err := s.store.StarterCodes(ctx)
		if err != nil {
			return Saved[brew.Starter]{}, fmt.Errorf("save starter: %w", err)
		}
		st.Batch = brew.NextStarterCode(codes)
	} else {
		st.Batch = brew.FormatStarterCode(brew.NormalizeKey(st.Batch))
	}
	if st.Date == nil {
		today := s.today()
		st.Date = &today
	}
	if id := brew.NormalizeKey(brew.Text(st.BatchID)); id != "" {
		st.BatchID = &id
	} else {
		st.BatchID = nil
	}

	var err error
	refs := []struct {
		field string
		role  brew.Role
		id    **string
	}{
		{"kake", brew.RoleKake, &st.Kake},
		{"koji", brew.RoleKoji, &st.Koji},
		{"yeast", brew.RoleYeast, &st.Yeast},
		{"water_type", brew.RoleWater, &st.WaterType},
	}
	for _, ref := range refs {
		if *ref.id, err = s.resolveIngredient(ctx, ref.field, ref.role, *ref.id); err != nil {
			return Saved[brew.Starter]{}, err
		}
	}

	created, err := s.store.PutStarter(ctx, st)
	if err != nil {
		return Saved[brew.Starter]{}, fmt.Errorf("save starter: %w", err)
	}
	s.logger.Info("starter saved", "starter", st.Batch, "created", created)

	if st.BatchID != nil {
		err := s.store.RefreshRecipeTotals(ctx, *st.BatchID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.logger.Warn("no recipe for starter; totals not updated", "batch_id", *st.BatchID)
		case err != nil:
			return Saved[brew.Starter]{}, fmt.Errorf("save starter %s: %w", st.Batch, err)
		default:
			s.logger.Debug("recipe totals refreshed", "batch_id", *st.BatchID)
		}
	}
	return Saved[brew.Starter]{Record: st, Created: created}, nil
}

// RefreshTotals recomputes a recipe's kake, koji and water totals from its
// starters. It returns an UNKNOWN_REFERENCE error when the recipe does not
// exist.
func (s *Service) RefreshTotals(ctx context.Context, batchID string) error {
	batchID = brew.NormalizeKey(batchID)
	if batchID == "" {
		return missing("batch_id")
	}
	err := s.store.RefreshRecipeTotals(ctx, batchID)
	if errors.Is(err, store.ErrNotFound) {
		return unknownRef("batch_id", "recipe %s not found", batchID)
	}
	if err != nil {
		return fmt.Errorf("refresh totals %s: %w", batchID, err)
	}
	return nil
}
