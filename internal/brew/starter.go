package brew

import (
	"fmt"
	"strconv"
	"strings"
)

// Default "Shubo" starter created when a recipe names no starter.
const (
	ShuboKojiG       = 250.0
	ShuboWaterML     = 250.0
	ShuboLacticAcidG = 0.4
	ShuboTempC       = 6.0
)

// FormatStarterCode renders a starter code as "s<n>": "64" -> "s64",
// "s100" stays "s100". Blank input renders as "s??".
func FormatStarterCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "s??"
	}
	if strings.HasPrefix(strings.ToLower(code), "s") {
		return code
	}
	if n, err := strconv.Atoi(code); err == nil {
		return fmt.Sprintf("s%d", n)
	}
	return "s" + code
}

// StarterNumber returns the numeric part of a starter code ("s64" -> 64).
func StarterNumber(code string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimLeft(strings.TrimSpace(code), "sS"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextStarterCode returns the code after the highest numbered code in
// existing, compared numerically so "s100" follows "s99". Returns "s1" when
// no code is numbered.
func NextStarterCode(existing []string) string {
	highest := 0
	for _, code := range existing {
		if n, ok := StarterNumber(code); ok && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("s%d", highest+1)
}

// NewShuboStarter returns the default starter for batchID.
func NewShuboStarter(code, batchID string, date Date, kake, koji, yeast, water *string) Starter {
	return Starter{
		Batch:       code,
		Date:        &date,
		BatchID:     String(batchID),
		AmtKojiG:    Float(ShuboKojiG),
		AmtWaterML:  Float(ShuboWaterML),
		WaterType:   water,
		Kake:        kake,
		Koji:        koji,
		Yeast:       yeast,
		LacticAcidG: Float(ShuboLacticAcidG),
		TempC:       Float(ShuboTempC),
	}
}
