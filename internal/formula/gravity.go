package formula

// Measurement is a raw hydrometer/refractometer reading.
type Measurement struct {
	MeasuredTempC    float64  `json:"measured_temp_c" yaml:"measured_temp_c"`
	MeasuredSG       float64  `json:"measured_sg" yaml:"measured_sg"`
	MeasuredBrix     *float64 `json:"measured_brix,omitempty" yaml:"measured_brix,omitempty"`
	CalibrationTempC *float64 `json:"calibration_temp_c,omitempty" yaml:"calibration_temp_c,omitempty"`
}

// WithDefaults sets CalibrationTempC to DefaultCalibrationTempC when it is
// absent. An explicit 0 °C is kept.
func (m Measurement) WithDefaults() Measurement {
	if m.CalibrationTempC == nil {
		c := DefaultCalibrationTempC
		m.CalibrationTempC = &c
	}
	return m
}

// Reading holds the metrics derived from a Measurement.
// ABV is nil when the measurement carried no %Brix.
type Reading struct {
	CorrectedSG float64  `json:"corrected_sg" yaml:"corrected_sg"`
	ABV         *float64 `json:"abv,omitempty" yaml:"abv,omitempty"`
	SMV         float64  `json:"smv" yaml:"smv"`
}

// Rounded returns r at persisted precision.
func (r Reading) Rounded() Reading {
	out := Reading{
		CorrectedSG: RoundGravity(r.CorrectedSG),
		SMV:         RoundMetric(r.SMV),
	}
	if r.ABV != nil {
		abv := RoundMetric(*r.ABV)
		out.ABV = &abv
	}
	return out
}

// CorrectGravity converts a gravity read at measuredTempC to the hydrometer's
// calibration temperature:
//
//	corrected = measuredSG * (Density(measuredTempC) / Density(calibrationTempC))
//
// When both temperatures are equal measuredSG is returned unchanged.
func (e *Evaluator) CorrectGravity(measuredSG, measuredTempC, calibrationTempC float64) (float64, error) {
	if err := requirePositive("measured_sg", measuredSG); err != nil {
		return 0, err
	}
	if err := e.limits.check("measured_temp_c", measuredTempC); err != nil {
		return 0, err
	}
	if err := e.limits.check("calibration_temp_c", calibrationTempC); err != nil {
		return 0, err
	}
	if measuredTempC == calibrationTempC {
		return measuredSG, nil
	}
	// Multiply before dividing; grouping the density ratio first can move
	// the result by an ulp.
	return measuredSG * Density(measuredTempC) / Density(calibrationTempC), nil
}

// CorrectGravity uses the Default evaluator.
func CorrectGravity(measuredSG, measuredTempC, calibrationTempC float64) (float64, error) {
	return defaultEvaluator.CorrectGravity(measuredSG, measuredTempC, calibrationTempC)
}

// CalculateABV estimates alcohol by volume from final gravity and %Brix:
//
//	1.646*brix - 2.703*(145 - 145/finalGravity) - 1.794
func CalculateABV(finalGravity, brix float64) (float64, error) {
	if err := requirePositive("final_gravity", finalGravity); err != nil {
		return 0, err
	}
	if err := requireFinite("brix", brix); err != nil {
		return 0, err
	}
	sugar := float64(1.646 * brix)
	gravity := float64(2.703 * (145 - 145/finalGravity))
	return sugar - gravity - 1.794, nil
}

// CalculateSMV returns the sake meter value: 1443/finalGravity - 1443.
func CalculateSMV(finalGravity float64) (float64, error) {
	if err := requirePositive("final_gravity", finalGravity); err != nil {
		return 0, err
	}
	return 1443/finalGravity - 1443, nil
}

// Evaluate corrects the measured gravity and derives SMV and, when brix is
// present, ABV from the corrected value.
func (e *Evaluator) Evaluate(m Measurement) (Reading, error) {
	m = m.WithDefaults()
	corrected, err := e.CorrectGravity(m.MeasuredSG, m.MeasuredTempC, *m.CalibrationTempC)
	if err != nil {
		return Reading{}, err
	}
	smv, err := CalculateSMV(corrected)
	if err != nil {
		return Reading{}, err
	}
	r := Reading{CorrectedSG: corrected, SMV: smv}
	if m.MeasuredBrix != nil {
		abv, err := CalculateABV(corrected, *m.MeasuredBrix)
		if err != nil {
			return Reading{}, err
		}
		r.ABV = &abv
	}
	return r, nil
}
