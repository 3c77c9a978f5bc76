package brew

import (
	"fmt"
	"strings"
	"time"
)

// IngredientType categorizes an ingredient.
type IngredientType string

const (
	IngredientRice     IngredientType = "rice"
	IngredientKakeRice IngredientType = "kake_rice"
	IngredientKojiRice IngredientType = "koji_rice"
	IngredientYeast    IngredientType = "yeast"
	IngredientWater    IngredientType = "water"
)

// IngredientTypes lists every valid IngredientType.
var IngredientTypes = []IngredientType{
	IngredientRice, IngredientKakeRice, IngredientKojiRice, IngredientYeast, IngredientWater,
}

// ParseIngredientType validates s as an IngredientType.
func ParseIngredientType(s string) (IngredientType, error) {
	key := IngredientType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range IngredientTypes {
		if t == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown ingredient type %q", s)
}

// Role is the slot an ingredient fills in a recipe or starter.
type Role string

const (
	RoleKake  Role = "kake"
	RoleKoji  Role = "koji"
	RoleYeast Role = "yeast"
	RoleWater Role = "water"
)

// roleTypes lists the ingredient types accepted for each role.
var roleTypes = map[Role][]IngredientType{
	RoleKake:  {IngredientRice, IngredientKakeRice},
	RoleKoji:  {IngredientRice, IngredientKojiRice},
	RoleYeast: {IngredientYeast},
	RoleWater: {IngredientWater},
}

// Accepts reports whether an ingredient of type t may fill role r.
func (r Role) Accepts(t IngredientType) bool {
	for _, allowed := range roleTypes[r] {
		if allowed == t {
			return true
		}
	}
	return false
}

// Types returns the ingredient types accepted for r.
func (r Role) Types() []IngredientType {
	return roleTypes[r]
}

// Ingredient is a rice, koji, yeast or water lot.
type Ingredient struct {
	ID          string         `json:"ingredient_id" yaml:"ingredient_id"`
	Type        IngredientType `json:"ingredient_type" yaml:"ingredient_type"`
	AccDate     *Date          `json:"acc_date,omitempty" yaml:"acc_date,omitempty"`
	Source      *string        `json:"source,omitempty" yaml:"source,omitempty"`
	Description *string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// Label is the one-line description shown in listings:
// "Prop_sake9 (yeast) - Kyokai #9".
func (i Ingredient) Label() string {
	name := i.ID
	if name == "" {
		name = Text(i.Source)
	}
	if name == "" {
		name = Text(i.Description)
	}
	label := fmt.Sprintf("%s (%s)", name, i.Type)
	if i.Description != nil && name != *i.Description {
		label += " - " + *i.Description
	}
	return label
}

// Starter is a shubo (yeast starter) batch, identified by a code like "s64".
type Starter struct {
	Batch       string   `json:"starter_batch" yaml:"starter_batch"`
	Date        *Date    `json:"date,omitempty" yaml:"date,omitempty"`
	BatchID     *string  `json:"batch_id,omitempty" yaml:"batch_id,omitempty"`
	AmtKakeG    *float64 `json:"amt_kake_g,omitempty" yaml:"amt_kake_g,omitempty"`
	AmtKojiG    *float64 `json:"amt_koji_g,omitempty" yaml:"amt_koji_g,omitempty"`
	AmtWaterML  *float64 `json:"amt_water_ml,omitempty" yaml:"amt_water_ml,omitempty"`
	WaterType   *string  `json:"water_type,omitempty" yaml:"water_type,omitempty"`
	Kake        *string  `json:"kake,omitempty" yaml:"kake,omitempty"`
	Koji        *string  `json:"koji,omitempty" yaml:"koji,omitempty"`
	Yeast       *string  `json:"yeast,omitempty" yaml:"yeast,omitempty"`
	LacticAcidG *float64 `json:"lactic_acid_g,omitempty" yaml:"lactic_acid_g,omitempty"`
	MgSO4G      *float64 `json:"mgso4_g,omitempty" yaml:"mgso4_g,omitempty"`
	KClG        *float64 `json:"kcl_g,omitempty" yaml:"kcl_g,omitempty"`
	TempC       *float64 `json:"temp_c,omitempty" yaml:"temp_c,omitempty"`
}

// Label is the one-line description shown in listings.
func (s Starter) Label() string {
	batch := "unassigned"
	if s.BatchID != nil {
		batch = *s.BatchID
	}
	date := "no date"
	if s.Date != nil {
		date = s.Date.String()
	}
	return fmt.Sprintf("%s | BatchID %s | %s", FormatStarterCode(s.Batch), batch, date)
}

// Recipe is the main batch record, keyed by BatchID.
//
// FinalGravity, ABV and SMV are derived from the final measurements and are
// not meant to be set directly.
type Recipe struct {
	BatchID              string   `json:"batch_id" yaml:"batch_id"`
	StartDate            *Date    `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	PouchDate            *Date    `json:"pouch_date,omitempty" yaml:"pouch_date,omitempty"`
	Batch                *int     `json:"batch,omitempty" yaml:"batch,omitempty"`
	Style                *string  `json:"style,omitempty" yaml:"style,omitempty"`
	Kake                 *string  `json:"kake,omitempty" yaml:"kake,omitempty"`
	Koji                 *string  `json:"koji,omitempty" yaml:"koji,omitempty"`
	Yeast                *string  `json:"yeast,omitempty" yaml:"yeast,omitempty"`
	Starter              *string  `json:"starter,omitempty" yaml:"starter,omitempty"`
	WaterType            *string  `json:"water_type,omitempty" yaml:"water_type,omitempty"`
	TotalKakeG           *float64 `json:"total_kake_g,omitempty" yaml:"total_kake_g,omitempty"`
	TotalKojiG           *float64 `json:"total_koji_g,omitempty" yaml:"total_koji_g,omitempty"`
	TotalWaterML         *float64 `json:"total_water_ml,omitempty" yaml:"total_water_ml,omitempty"`
	FermentTempC         *float64 `json:"ferment_temp_c,omitempty" yaml:"ferment_temp_c,omitempty"`
	Addition1Notes       *string  `json:"addition1_notes,omitempty" yaml:"addition1_notes,omitempty"`
	Addition2Notes       *string  `json:"addition2_notes,omitempty" yaml:"addition2_notes,omitempty"`
	Addition3Notes       *string  `json:"addition3_notes,omitempty" yaml:"addition3_notes,omitempty"`
	FermentFinishGravity *float64 `json:"ferment_finish_gravity,omitempty" yaml:"ferment_finish_gravity,omitempty"`
	FermentFinishBrix    *float64 `json:"ferment_finish_brix,omitempty" yaml:"ferment_finish_brix,omitempty"`
	FinalMeasuredTempC   *float64 `json:"final_measured_temp_c,omitempty" yaml:"final_measured_temp_c,omitempty"`
	FinalMeasuredGravity *float64 `json:"final_measured_gravity,omitempty" yaml:"final_measured_gravity,omitempty"`
	FinalMeasuredBrix    *float64 `json:"final_measured_brix,omitempty" yaml:"final_measured_brix,omitempty"`
	FinalGravity         *float64 `json:"final_gravity,omitempty" yaml:"final_gravity,omitempty"`
	ABV                  *float64 `json:"abv,omitempty" yaml:"abv,omitempty"`
	SMV                  *float64 `json:"smv,omitempty" yaml:"smv,omitempty"`
	FinalWaterAdditionML *float64 `json:"final_water_addition_ml,omitempty" yaml:"final_water_addition_ml,omitempty"`
	Clarified            bool     `json:"clarified" yaml:"clarified"`
	Pasteurized          bool     `json:"pasteurized" yaml:"pasteurized"`
	PasteurizationNotes  *string  `json:"pasteurization_notes,omitempty" yaml:"pasteurization_notes,omitempty"`
	FinishingAdditions   *string  `json:"finishing_additions,omitempty" yaml:"finishing_additions,omitempty"`
}

// RecipeSummary is one row of the batch overview.
type RecipeSummary struct {
	BatchID    string   `json:"batch_id" yaml:"batch_id"`
	Batch      *int     `json:"batch,omitempty" yaml:"batch,omitempty"`
	Style      *string  `json:"style,omitempty" yaml:"style,omitempty"`
	StartDate  *Date    `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	PouchDate  *Date    `json:"pouch_date,omitempty" yaml:"pouch_date,omitempty"`
	ABV        *float64 `json:"abv,omitempty" yaml:"abv,omitempty"`
	SMV        *float64 `json:"smv,omitempty" yaml:"smv,omitempty"`
	BatchSizeL *float64 `json:"batch_size_l,omitempty" yaml:"batch_size_l,omitempty"`
}

// PublishNote is the public-facing description of a finished batch.
type PublishNote struct {
	BatchID     string   `json:"batch_id" yaml:"batch_id"`
	PouchDate   *Date    `json:"pouch_date,omitempty" yaml:"pouch_date,omitempty"`
	Style       *string  `json:"style,omitempty" yaml:"style,omitempty"`
	Water       *string  `json:"water,omitempty" yaml:"water,omitempty"`
	ABV         *float64 `json:"abv,omitempty" yaml:"abv,omitempty"`
	SMV         *float64 `json:"smv,omitempty" yaml:"smv,omitempty"`
	BatchSizeL  *float64 `json:"batch_size_l,omitempty" yaml:"batch_size_l,omitempty"`
	Rice        *string  `json:"rice,omitempty" yaml:"rice,omitempty"`
	Description *string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// CalculationKind tells gravity readings from dilution plans in the history.
type CalculationKind string

const (
	CalculationGravity  CalculationKind = "gravity"
	CalculationDilution CalculationKind = "dilution"
)

// Calculation is one entry of the calculation history. Values are stored at
// persisted precision.
type Calculation struct {
	ID               string          `json:"id" yaml:"id"`
	Kind             CalculationKind `json:"kind" yaml:"kind"`
	BatchID          *string         `json:"batch_id,omitempty" yaml:"batch_id,omitempty"`
	CalibratedTempC  *float64        `json:"calibrated_temp_c,omitempty" yaml:"calibrated_temp_c,omitempty"`
	MeasuredTempC    *float64        `json:"measured_temp_c,omitempty" yaml:"measured_temp_c,omitempty"`
	MeasuredSG       *float64        `json:"measured_sg,omitempty" yaml:"measured_sg,omitempty"`
	MeasuredBrix     *float64        `json:"measured_brix,omitempty" yaml:"measured_brix,omitempty"`
	CorrectedGravity *float64        `json:"corrected_gravity,omitempty" yaml:"corrected_gravity,omitempty"`
	CalculatedABV    *float64        `json:"calculated_abv,omitempty" yaml:"calculated_abv,omitempty"`
	CalculatedSMV    *float64        `json:"calculated_smv,omitempty" yaml:"calculated_smv,omitempty"`
	TargetProfile    *string         `json:"target_profile,omitempty" yaml:"target_profile,omitempty"`
	CurrentVolumeL   *float64        `json:"current_volume_l,omitempty" yaml:"current_volume_l,omitempty"`
	WaterToAddL      *float64        `json:"water_to_add_l,omitempty" yaml:"water_to_add_l,omitempty"`
	CreatedAt        time.Time       `json:"created_at" yaml:"created_at"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }
