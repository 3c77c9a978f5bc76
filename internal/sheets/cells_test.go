package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

func TestParseFloat(t *testing.T) {
	v, err := ParseFloat(" 1250.5 ")
	require.NoError(t, err)
	assert.Equal(t, 1250.5, *v)

	for _, cell := range []string{"1,005", "0,998", "1,250.5"} {
		v, err = ParseFloat(cell)
		assert.Error(t, err, cell)
		assert.Nil(t, v, cell)
	}

	v, err = ParseFloat("   ")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseFloat("n/a")
	assert.Error(t, err)
}

func TestParseInt(t *testing.T) {
	v, err := ParseInt("7.0")
	require.NoError(t, err)
	assert.Equal(t, 7, *v)

	_, err = ParseInt("7.5")
	assert.Error(t, err)

	v, err = ParseInt("")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParseBool(t *testing.T) {
	for _, cell := range []string{"TRUE", "yes", "1", "x", "Checked"} {
		assert.True(t, ParseBool(cell), cell)
	}
	for _, cell := range []string{"", "FALSE", "no", "0"} {
		assert.False(t, ParseBool(cell), cell)
	}
}

func TestFormatCells(t *testing.T) {
	d := brew.NewDate(2024, 5, 1)
	assert.Equal(t, "1.0512", FormatFloat(brew.Float(1.0512)))
	assert.Equal(t, "", FormatFloat(nil))
	assert.Equal(t, "12", FormatInt(brew.Int(12)))
	assert.Equal(t, "TRUE", FormatBool(true))
	assert.Equal(t, "2024-05-01", FormatDate(&d))
	assert.Equal(t, "", FormatDate(nil))
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "finalmeasuredbrix", normalizeHeader("final_measured_Brix_%"))
	assert.Equal(t, "finalmeasuredbrix", normalizeHeader("Final Measured Brix"))
	assert.Equal(t, "abv", normalizeHeader("ABV_%"))
}

func TestSheetRange(t *testing.T) {
	assert.Equal(t, "'Recipe'!A:ZZ", sheetRange("Recipe", "A:ZZ"))
	assert.Equal(t, "'Bob''s Brews'", sheetRange("Bob's Brews", ""))
}
