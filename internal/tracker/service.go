package tracker

import (
	"context"
	"log/slog"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/formula"
)

// Store is the persistence the tracker needs. *store.Store satisfies it.
type Store interface {
	PutIngredient(ctx context.Context, ing brew.Ingredient) (bool, error)
	GetIngredient(ctx context.Context, id string) (brew.Ingredient, error)
	PutRecipe(ctx context.Context, r brew.Recipe) (bool, error)
	GetRecipe(ctx context.Context, batchID string) (brew.Recipe, error)
	PutRecipeWithStarter(ctx context.Context, r brew.Recipe, st brew.Starter) (bool, error)
	PutStarter(ctx context.Context, st brew.Starter) (bool, error)
	GetStarter(ctx context.Context, code string) (brew.Starter, error)
	StarterCodes(ctx context.Context) ([]string, error)
	RefreshRecipeTotals(ctx context.Context, batchID string) error
	PutPublishNote(ctx context.Context, n brew.PublishNote) (bool, error)
	WriteCalculation(ctx context.Context, c brew.Calculation) error
}

// Service runs the batch workflow.
type Service struct {
	store   Store
	eval    *formula.Evaluator
	targets []formula.DilutionTarget
	ids     IDGenerator
	clock   Clock
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEvaluator sets the formula evaluator. Defaults to formula.Default().
func WithEvaluator(e *formula.Evaluator) Option {
	return func(s *Service) { s.eval = e }
}

// WithTargets sets the dilution targets available to Dilute. Defaults to
// formula.Presets().
func WithTargets(targets []formula.DilutionTarget) Option {
	return func(s *Service) { s.targets = targets }
}

// WithIDGenerator sets the history ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithClock sets the clock used for timestamps and default dates.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service over st.
func New(st Store, opts ...Option) *Service {
	s := &Service{
		store:   st,
		eval:    formula.Default(),
		targets: formula.Presets(),
		ids:     UUIDv7Generator{},
		clock:   SystemClock{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluator returns the evaluator the service computes with.
func (s *Service) Evaluator() *formula.Evaluator { return s.eval }

// Targets returns the configured dilution targets.
func (s *Service) Targets() []formula.DilutionTarget { return s.targets }

func (s *Service) today() brew.Date {
	y, m, d := s.clock.Now().Date()
	return brew.NewDate(y, m, d)
}
