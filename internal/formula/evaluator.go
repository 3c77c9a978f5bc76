package formula

import (
	"fmt"
	"math"
)

// DefaultCalibrationTempC is the hydrometer calibration temperature assumed
// when none is given.
const DefaultCalibrationTempC = 20.0

// DefaultGravityTolerance is the allowed difference between the estimated
// post-dilution gravity and the target gravity before a dilution is flagged.
const DefaultGravityTolerance = 0.002

// Limits is the plausible temperature range for readings, inclusive.
type Limits struct {
	MinTempC float64 `json:"min_temp_c" yaml:"min_temp_c"`
	MaxTempC float64 `json:"max_temp_c" yaml:"max_temp_c"`
}

// DefaultLimits returns the 0-40 °C range.
func DefaultLimits() Limits {
	return Limits{MinTempC: 0, MaxTempC: 40}
}

// Validate checks the range itself.
func (l Limits) Validate() error {
	if math.IsNaN(l.MinTempC) || math.IsNaN(l.MaxTempC) ||
		math.IsInf(l.MinTempC, 0) || math.IsInf(l.MaxTempC, 0) {
		return fmt.Errorf("temperature limits must be finite (got %v..%v)", l.MinTempC, l.MaxTempC)
	}
	if l.MinTempC >= l.MaxTempC {
		return fmt.Errorf("temperature limits: min %v must be below max %v", l.MinTempC, l.MaxTempC)
	}
	return nil
}

func (l Limits) check(field string, tempC float64) error {
	if err := requireFinite(field, tempC); err != nil {
		return err
	}
	if tempC < l.MinTempC || tempC > l.MaxTempC {
		return invalid(field, tempC,
			fmt.Sprintf("outside plausible range %v..%v °C", l.MinTempC, l.MaxTempC))
	}
	return nil
}

// Evaluator applies the formulas with a configured temperature range and
// dilution gravity tolerance. The zero value is not usable; use NewEvaluator
// or Default.
type Evaluator struct {
	limits    Limits
	tolerance float64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithGravityTolerance overrides DefaultGravityTolerance.
func WithGravityTolerance(tol float64) Option {
	return func(e *Evaluator) {
		e.tolerance = tol
	}
}

// NewEvaluator builds an Evaluator for the given temperature limits.
func NewEvaluator(limits Limits, opts ...Option) (*Evaluator, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	e := &Evaluator{limits: limits, tolerance: DefaultGravityTolerance}
	for _, opt := range opts {
		opt(e)
	}
	if math.IsNaN(e.tolerance) || e.tolerance < 0 {
		return nil, fmt.Errorf("gravity tolerance must be >= 0 (got %v)", e.tolerance)
	}
	return e, nil
}

var defaultEvaluator = &Evaluator{limits: DefaultLimits(), tolerance: DefaultGravityTolerance}

// Default returns an Evaluator with DefaultLimits and DefaultGravityTolerance.
func Default() *Evaluator {
	return defaultEvaluator
}

// Limits returns the configured temperature range.
func (e *Evaluator) Limits() Limits {
	return e.limits
}

// GravityTolerance returns the configured dilution gravity tolerance.
func (e *Evaluator) GravityTolerance() float64 {
	return e.tolerance
}
