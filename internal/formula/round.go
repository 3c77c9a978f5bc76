package formula

import (
	"math"

	"github.com/shopspring/decimal"
)

// Decimal places used for stored values.
const (
	GravityPlaces = 4
	MetricPlaces  = 1
	VolumePlaces  = 2
)

// Round rounds v to places decimal places, half away from zero, using the
// shortest decimal representation of v so 2.675 rounds to 2.68.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// RoundGravity rounds a specific gravity to GravityPlaces.
func RoundGravity(v float64) float64 { return Round(v, GravityPlaces) }

// RoundMetric rounds ABV or SMV to MetricPlaces.
func RoundMetric(v float64) float64 { return Round(v, MetricPlaces) }

// RoundVolume rounds litres (and brix estimates) to VolumePlaces.
func RoundVolume(v float64) float64 { return Round(v, VolumePlaces) }
