package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/tracker"
)

// Mode controls how Import handles a record the tracker rejects.
type Mode int

const (
	// FailFast stops at the first rejected record.
	FailFast Mode = iota
	// CollectAll keeps going and returns every rejection.
	CollectAll
)

// Service is the tracker surface Import writes through.
type Service interface {
	SaveIngredient(ctx context.Context, ing brew.Ingredient) (tracker.Saved[brew.Ingredient], error)
	SaveStarter(ctx context.Context, st brew.Starter) (tracker.Saved[brew.Starter], error)
	SaveRecipe(ctx context.Context, in tracker.RecipeInput) (tracker.RecipeResult, error)
	RefreshTotals(ctx context.Context, batchID string) error
	Publish(ctx context.Context, in tracker.PublishInput) (tracker.Saved[brew.PublishNote], error)
}

// Counts tallies one record kind.
type Counts struct {
	Created int `json:"created" yaml:"created"`
	Updated int `json:"updated" yaml:"updated"`
	Failed  int `json:"failed" yaml:"failed"`
}

func (c *Counts) add(created bool) {
	if created {
		c.Created++
	} else {
		c.Updated++
	}
}

// Report is the outcome of an Import.
type Report struct {
	Ingredients  Counts `json:"ingredients" yaml:"ingredients"`
	Starters     Counts `json:"starters" yaml:"starters"`
	Recipes      Counts `json:"recipes" yaml:"recipes"`
	PublishNotes Counts `json:"publish_notes" yaml:"publish_notes"`
}

// RecordError is a record the tracker rejected.
type RecordError struct {
	Section string
	Index   int
	Key     string
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s[%d] %s: %v", e.Section, e.Index, e.Key, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Import writes ds through svc: ingredients, starters and recipes, then the
// starter totals of every recipe, then publish notes so batch sizes see
// those totals.
func Import(ctx context.Context, svc Service, ds Dataset, mode Mode, logger *slog.Logger) (Report, []error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		rep  Report
		errs []error
	)
	// fail records err and reports whether Import should stop.
	fail := func(counts *Counts, section string, i int, key string, err error) bool {
		counts.Failed++
		errs = append(errs, &RecordError{Section: section, Index: i, Key: key, Err: err})
		logger.Warn("record rejected", "section", section, "index", i, "key", key, "error", err)
		return mode == FailFast
	}

	for i, ing := range ds.Ingredients {
		saved, err := svc.SaveIngredient(ctx, ing)
		if err != nil {
			if fail(&rep.Ingredients, "ingredients", i, ing.ID, err) {
				return rep, errs
			}
			continue
		}
		rep.Ingredients.add(saved.Created)
	}

	for i, st := range ds.Starters {
		saved, err := svc.SaveStarter(ctx, st)
		if err != nil {
			if fail(&rep.Starters, "starters", i, st.Batch, err) {
				return rep, errs
			}
			continue
		}
		rep.Starters.add(saved.Created)
	}

	withStarters := map[string]bool{}
	for _, st := range ds.Starters {
		if id := brew.NormalizeKey(brew.Text(st.BatchID)); id != "" {
			withStarters[id] = true
		}
	}
	for i, in := range ds.Recipes {
		res, err := svc.SaveRecipe(ctx, in)
		if err != nil {
			if fail(&rep.Recipes, "recipes", i, in.BatchID, err) {
				return rep, errs
			}
			continue
		}
		rep.Recipes.add(res.Created)
		if withStarters[res.Record.BatchID] {
			if err := svc.RefreshTotals(ctx, res.Record.BatchID); err != nil {
				if fail(&rep.Recipes, "recipes", i, in.BatchID, err) {
					return rep, errs
				}
			}
		}
	}

	for i, in := range ds.PublishNotes {
		saved, err := svc.Publish(ctx, in)
		if err != nil {
			if fail(&rep.PublishNotes, "publish_notes", i, in.BatchID, err) {
				return rep, errs
			}
			continue
		}
		rep.PublishNotes.add(saved.Created)
	}

	logger.Info("dataset imported",
		"ingredients", rep.Ingredients.Created+rep.Ingredients.Updated,
		"starters", rep.Starters.Created+rep.Starters.Updated,
		"recipes", rep.Recipes.Created+rep.Recipes.Updated,
		"publish_notes", rep.PublishNotes.Created+rep.PublishNotes.Updated,
		"rejected", len(errs))
	return rep, errs
}
