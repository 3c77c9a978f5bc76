// Package formula implements the brewing calculations used by sakemonkey.
//
// Every function here is a pure conversion from raw hydrometer and
// refractometer readings to derived metrics:
//   - CorrectGravity: temperature-corrected specific gravity
//   - CalculateABV: alcohol by volume from corrected gravity and %Brix
//   - CalculateSMV: sake meter value from corrected gravity
//   - CalculateDilution: water needed to reach a target profile
//
// The package holds no state. An Evaluator only carries the configured
// temperature limits and the gravity tolerance for dilution checks, so a
// single Evaluator may be shared between goroutines.
//
// All invalid inputs are reported as ErrInvalidInput (see InputError). The
// results are left unrounded; Round* helpers apply the precision used for
// persisted columns.
package formula
