package sheets

import (
	"strings"
	"time"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// Headers follow the spreadsheet the tool was first used with; aliases
// accept the snake_case column names of the database.

var ingredientTable = table[brew.Ingredient]{
	name: "ingredients",
	columns: []column[brew.Ingredient]{
		keyCol("ID", []string{"ingredient_id", "ingredientID"}, func(r *brew.Ingredient) *string { return &r.ID }),
		{
			header:  "ingredient_type",
			aliases: []string{"type"},
			format:  func(r *brew.Ingredient) string { return string(r.Type) },
			parse: func(r *brew.Ingredient, cell string) error {
				if strings.TrimSpace(cell) == "" {
					return nil
				}
				t, err := brew.ParseIngredientType(cell)
				r.Type = t
				return err
			},
		},
		dateCol("acc_date", nil, func(r *brew.Ingredient) **brew.Date { return &r.AccDate }),
		textCol("source", nil, func(r *brew.Ingredient) **string { return &r.Source }),
		textCol("description", nil, func(r *brew.Ingredient) **string { return &r.Description }),
	},
}

var starterTable = table[brew.Starter]{
	name: "starters",
	columns: []column[brew.Starter]{
		{
			header:  "StarterBatch",
			aliases: []string{"starter_batch"},
			format:  func(r *brew.Starter) string { return r.Batch },
			parse: func(r *brew.Starter, cell string) error {
				if code := brew.NormalizeKey(cell); code != "" {
					r.Batch = brew.FormatStarterCode(code)
				}
				return nil
			},
		},
		dateCol("Date", nil, func(r *brew.Starter) **brew.Date { return &r.Date }),
		textCol("BatchID", []string{"batch_id"}, func(r *brew.Starter) **string { return &r.BatchID }),
		floatCol("Amt_Kake", []string{"amt_kake_g"}, func(r *brew.Starter) **float64 { return &r.AmtKakeG }),
		floatCol("Amt_Koji", []string{"amt_koji_g"}, func(r *brew.Starter) **float64 { return &r.AmtKojiG }),
		floatCol("Amt_water", []string{"amt_water_ml"}, func(r *brew.Starter) **float64 { return &r.AmtWaterML }),
		textCol("water_type", nil, func(r *brew.Starter) **string { return &r.WaterType }),
		textCol("Kake", nil, func(r *brew.Starter) **string { return &r.Kake }),
		textCol("Koji", nil, func(r *brew.Starter) **string { return &r.Koji }),
		textCol("yeast", nil, func(r *brew.Starter) **string { return &r.Yeast }),
		floatCol("lactic_acid", []string{"lactic_acid_g"}, func(r *brew.Starter) **float64 { return &r.LacticAcidG }),
		floatCol("MgSO4", []string{"mgso4_g"}, func(r *brew.Starter) **float64 { return &r.MgSO4G }),
		floatCol("KCl", []string{"kcl_g"}, func(r *brew.Starter) **float64 { return &r.KClG }),
		floatCol("temp_C", nil, func(r *brew.Starter) **float64 { return &r.TempC }),
	},
}

var recipeTable = table[brew.Recipe]{
	name: "recipe",
	columns: []column[brew.Recipe]{
		keyCol("batchID", []string{"batch_id"}, func(r *brew.Recipe) *string { return &r.BatchID }),
		dateCol("start_date", nil, func(r *brew.Recipe) **brew.Date { return &r.StartDate }),
		dateCol("pouch_date", nil, func(r *brew.Recipe) **brew.Date { return &r.PouchDate }),
		intCol("batch", nil, func(r *brew.Recipe) **int { return &r.Batch }),
		textCol("style", nil, func(r *brew.Recipe) **string { return &r.Style }),
		textCol("kake", nil, func(r *brew.Recipe) **string { return &r.Kake }),
		textCol("koji", nil, func(r *brew.Recipe) **string { return &r.Koji }),
		textCol("yeast", nil, func(r *brew.Recipe) **string { return &r.Yeast }),
		textCol("starter", nil, func(r *brew.Recipe) **string { return &r.Starter }),
		textCol("water_type", nil, func(r *brew.Recipe) **string { return &r.WaterType }),
		floatCol("total_kake_g", nil, func(r *brew.Recipe) **float64 { return &r.TotalKakeG }),
		floatCol("total_koji_g", nil, func(r *brew.Recipe) **float64 { return &r.TotalKojiG }),
		floatCol("total_water_mL", nil, func(r *brew.Recipe) **float64 { return &r.TotalWaterML }),
		floatCol("ferment_temp_C", nil, func(r *brew.Recipe) **float64 { return &r.FermentTempC }),
		textCol("Addition1_Notes", nil, func(r *brew.Recipe) **string { return &r.Addition1Notes }),
		textCol("Addition2_Notes", nil, func(r *brew.Recipe) **string { return &r.Addition2Notes }),
		textCol("Addition3_Notes", nil, func(r *brew.Recipe) **string { return &r.Addition3Notes }),
		floatCol("ferment_finish_gravity", nil, func(r *brew.Recipe) **float64 { return &r.FermentFinishGravity }),
		floatCol("ferment_finish_brix", nil, func(r *brew.Recipe) **float64 { return &r.FermentFinishBrix }),
		floatCol("final_measured_temp_C", nil, func(r *brew.Recipe) **float64 { return &r.FinalMeasuredTempC }),
		floatCol("final_measured_gravity", nil, func(r *brew.Recipe) **float64 { return &r.FinalMeasuredGravity }),
		floatCol("final_measured_Brix_%", []string{"final_measured_brix_pct"}, func(r *brew.Recipe) **float64 { return &r.FinalMeasuredBrix }),
		floatCol("final_gravity", nil, func(r *brew.Recipe) **float64 { return &r.FinalGravity }),
		floatCol("ABV_%", []string{"abv_pct"}, func(r *brew.Recipe) **float64 { return &r.ABV }),
		floatCol("SMV", nil, func(r *brew.Recipe) **float64 { return &r.SMV }),
		floatCol("final_water_addition_mL", nil, func(r *brew.Recipe) **float64 { return &r.FinalWaterAdditionML }),
		boolCol("clarified", nil, func(r *brew.Recipe) *bool { return &r.Clarified }),
		boolCol("pasteurized", nil, func(r *brew.Recipe) *bool { return &r.Pasteurized }),
		textCol("pasteurization_notes", nil, func(r *brew.Recipe) **string { return &r.PasteurizationNotes }),
		textCol("finishing_additions", nil, func(r *brew.Recipe) **string { return &r.FinishingAdditions }),
	},
}

var publishNoteTable = table[brew.PublishNote]{
	name: "publish_notes",
	columns: []column[brew.PublishNote]{
		keyCol("BatchID", []string{"batch_id"}, func(r *brew.PublishNote) *string { return &r.BatchID }),
		dateCol("Pouch_Date", nil, func(r *brew.PublishNote) **brew.Date { return &r.PouchDate }),
		textCol("Style", nil, func(r *brew.PublishNote) **string { return &r.Style }),
		textCol("Water", nil, func(r *brew.PublishNote) **string { return &r.Water }),
		floatCol("ABV", nil, func(r *brew.PublishNote) **float64 { return &r.ABV }),
		floatCol("SMV", nil, func(r *brew.PublishNote) **float64 { return &r.SMV }),
		floatCol("Batch_Size_L", nil, func(r *brew.PublishNote) **float64 { return &r.BatchSizeL }),
		textCol("Rice", nil, func(r *brew.PublishNote) **string { return &r.Rice }),
		textCol("Description", nil, func(r *brew.PublishNote) **string { return &r.Description }),
	},
}

var calculationTable = table[brew.Calculation]{
	name: "formulas",
	columns: []column[brew.Calculation]{
		keyCol("id", nil, func(r *brew.Calculation) *string { return &r.ID }),
		{
			header: "created_at",
			format: func(r *brew.Calculation) string { return r.CreatedAt.UTC().Format(time.RFC3339) },
			parse: func(r *brew.Calculation, cell string) (err error) {
				if strings.TrimSpace(cell) != "" {
					r.CreatedAt, err = time.Parse(time.RFC3339, strings.TrimSpace(cell))
				}
				return err
			},
		},
		{
			header: "kind",
			format: func(r *brew.Calculation) string { return string(r.Kind) },
			parse: func(r *brew.Calculation, cell string) error {
				r.Kind = brew.CalculationKind(strings.TrimSpace(cell))
				return nil
			},
		},
		textCol("batch_id", nil, func(r *brew.Calculation) **string { return &r.BatchID }),
		floatCol("calibrated_temp_c", nil, func(r *brew.Calculation) **float64 { return &r.CalibratedTempC }),
		floatCol("measured_temp_c", nil, func(r *brew.Calculation) **float64 { return &r.MeasuredTempC }),
		floatCol("measured_sg", nil, func(r *brew.Calculation) **float64 { return &r.MeasuredSG }),
		floatCol("measured_brix", nil, func(r *brew.Calculation) **float64 { return &r.MeasuredBrix }),
		floatCol("corrected_gravity", nil, func(r *brew.Calculation) **float64 { return &r.CorrectedGravity }),
		floatCol("calculated_abv", nil, func(r *brew.Calculation) **float64 { return &r.CalculatedABV }),
		floatCol("calculated_smv", nil, func(r *brew.Calculation) **float64 { return &r.CalculatedSMV }),
		textCol("target_profile", nil, func(r *brew.Calculation) **string { return &r.TargetProfile }),
		floatCol("current_volume_l", nil, func(r *brew.Calculation) **float64 { return &r.CurrentVolumeL }),
		floatCol("water_to_add_l", nil, func(r *brew.Calculation) **float64 { return &r.WaterToAddL }),
	},
}
