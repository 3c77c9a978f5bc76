package formula

import (
	"fmt"
	"math"
	"strings"
)

// WaterSG is the specific gravity assumed for dilution water.
const WaterSG = 1.000

// DilutionTarget is a named brix/gravity profile to dilute toward.
type DilutionTarget struct {
	Name string  `json:"name" yaml:"name" mapstructure:"name"`
	Brix float64 `json:"brix" yaml:"brix" mapstructure:"brix"`
	SG   float64 `json:"sg" yaml:"sg" mapstructure:"sg"`
}

// Preset dilution targets.
var (
	Pure  = DilutionTarget{Name: "Pure", Brix: 11.0, SG: 1.005}
	Mixer = DilutionTarget{Name: "Mixer", Brix: 12.0, SG: 0.995}
)

// Presets returns the built-in targets in display order.
func Presets() []DilutionTarget {
	return []DilutionTarget{Pure, Mixer}
}

// LookupTarget finds a target by name, ignoring case, among targets or the
// presets when targets is empty.
func LookupTarget(name string, targets ...DilutionTarget) (DilutionTarget, error) {
	if len(targets) == 0 {
		targets = Presets()
	}
	for _, t := range targets {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return DilutionTarget{}, fmt.Errorf("unknown target profile %q (have %s)", name, strings.Join(names, ", "))
}

// Dilution is the recommended water addition for a batch.
type Dilution struct {
	Target       DilutionTarget `json:"target" yaml:"target"`
	WaterToAddL  float64        `json:"water_to_add_l" yaml:"water_to_add_l"`
	FinalVolumeL float64        `json:"final_volume_l" yaml:"final_volume_l"`
	FinalBrix    float64        `json:"final_brix" yaml:"final_brix"`
	EstimatedSG  float64        `json:"estimated_sg" yaml:"estimated_sg"`

	// NoOp is set when the batch is already at or below the target brix.
	NoOp bool `json:"no_op" yaml:"no_op"`

	// GravityOff is set when EstimatedSG misses the target gravity by more
	// than the evaluator tolerance. Brix drives the volume; gravity is only
	// checked.
	GravityOff bool `json:"gravity_off" yaml:"gravity_off"`
}

// Rounded returns d at persisted precision.
func (d Dilution) Rounded() Dilution {
	d.WaterToAddL = RoundVolume(d.WaterToAddL)
	d.FinalVolumeL = RoundVolume(d.FinalVolumeL)
	d.FinalBrix = RoundVolume(d.FinalBrix)
	d.EstimatedSG = RoundGravity(d.EstimatedSG)
	return d
}

// CalculateDilution returns the water to add to volumeL of batch at the
// given brix and gravity so the brix reaches target.Brix:
//
//	water = volumeL * (brix/target.Brix - 1), clamped to >= 0
func (e *Evaluator) CalculateDilution(volumeL, brix, sg float64, target DilutionTarget) (Dilution, error) {
	if err := requirePositive("current_volume_l", volumeL); err != nil {
		return Dilution{}, err
	}
	if err := requireFinite("current_brix", brix); err != nil {
		return Dilution{}, err
	}
	if err := requirePositive("current_sg", sg); err != nil {
		return Dilution{}, err
	}
	if err := requirePositive("target_brix", target.Brix); err != nil {
		return Dilution{}, err
	}
	if err := requirePositive("target_sg", target.SG); err != nil {
		return Dilution{}, err
	}

	d := Dilution{Target: target}
	water := volumeL * (brix/target.Brix - 1)
	if water <= 0 {
		water = 0
		d.NoOp = true
	}
	d.WaterToAddL = water
	d.FinalVolumeL = volumeL + water
	d.FinalBrix = brix * volumeL / d.FinalVolumeL
	d.EstimatedSG = (sg*volumeL + WaterSG*water) / d.FinalVolumeL
	d.GravityOff = math.Abs(d.EstimatedSG-target.SG) > e.tolerance
	return d, nil
}

// CalculateDilution uses the Default evaluator.
func CalculateDilution(volumeL, brix, sg float64, target DilutionTarget) (Dilution, error) {
	return defaultEvaluator.CalculateDilution(volumeL, brix, sg, target)
}
