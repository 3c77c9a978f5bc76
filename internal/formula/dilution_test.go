package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDilution_Pure(t *testing.T) {
	d, err := CalculateDilution(10, 16, 1.01, Pure)
	require.NoError(t, err)

	assert.InDelta(t, 10*(16.0/11.0-1), d.WaterToAddL, 1e-12)
	assert.Equal(t, 4.55, d.Rounded().WaterToAddL)
	assert.InDelta(t, 14.545454545, d.FinalVolumeL, 1e-8)
	assert.InDelta(t, 11.0, d.FinalBrix, 1e-12)
	assert.False(t, d.NoOp)
	assert.False(t, d.GravityOff)
	assert.Equal(t, "Pure", d.Target.Name)
}

func TestCalculateDilution_NeverNegative(t *testing.T) {
	tests := []struct {
		name string
		brix float64
	}{
		{"at target", 11},
		{"below target", 9.5},
		{"zero brix", 0},
		{"negative brix", -0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := CalculateDilution(20, tt.brix, 1.0, Pure)
			require.NoError(t, err)
			assert.Equal(t, 0.0, d.WaterToAddL)
			assert.True(t, d.NoOp)
			assert.Equal(t, 20.0, d.FinalVolumeL)
		})
	}
}

func TestCalculateDilution_GravityCheck(t *testing.T) {
	// Mixer wants 0.995 but water only raises or lowers toward 1.000.
	d, err := CalculateDilution(10, 18, 0.980, Mixer)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d.WaterToAddL, 1e-12)
	assert.InDelta(t, (0.980*10+1.0*5)/15, d.EstimatedSG, 1e-12)
	assert.True(t, d.GravityOff)

	strict, err := NewEvaluator(DefaultLimits(), WithGravityTolerance(0.01))
	require.NoError(t, err)
	d, err = strict.CalculateDilution(10, 18, 0.980, Mixer)
	require.NoError(t, err)
	assert.False(t, d.GravityOff)
}

func TestCalculateDilution_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		volume float64
		sg     float64
		target DilutionTarget
		field  string
	}{
		{"zero volume", 0, 1.0, Pure, "current_volume_l"},
		{"negative volume", -3, 1.0, Pure, "current_volume_l"},
		{"zero gravity", 10, 0, Pure, "current_sg"},
		{"target without brix", 10, 1.0, DilutionTarget{Name: "Broken", SG: 1.0}, "target_brix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateDilution(tt.volume, 15, tt.sg, tt.target)
			var ie *InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestLookupTarget(t *testing.T) {
	got, err := LookupTarget("mixer")
	require.NoError(t, err)
	assert.Equal(t, Mixer, got)

	got, err = LookupTarget(" PURE ")
	require.NoError(t, err)
	assert.Equal(t, Pure, got)

	_, err = LookupTarget("Nigori")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pure, Mixer")

	custom := DilutionTarget{Name: "Nigori", Brix: 14, SG: 1.01}
	got, err = LookupTarget("nigori", custom)
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.68, Round(2.675, 2))
	assert.Equal(t, -1.6, RoundMetric(-1.5855558885227765))
	assert.Equal(t, 1.0512, RoundGravity(1.05117453))
	assert.Equal(t, 0.5, RoundMetric(0.45))
}
