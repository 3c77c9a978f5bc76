package brew

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Style is the sake style of a batch.
type Style string

const (
	StylePure               Style = "pure"
	StyleRustic             Style = "rustic"
	StyleRusticExperimental Style = "rustic_experimental"
)

// Styles lists the known styles in display order.
var Styles = []Style{StylePure, StyleRustic, StyleRusticExperimental}

var styleAliases = map[string]Style{
	"pure":                StylePure,
	"rustic":              StyleRustic,
	"rustic_experimental": StyleRusticExperimental,
	"rusticexperimental":  StyleRusticExperimental,
}

// NormalizeStyle maps human-readable names ("Rustic Experimental",
// "rustic-experimental", "RUSTIC") to a known Style. It returns "" when the
// name is blank or not a known style.
func NormalizeStyle(name string) Style {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return ""
	}
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return styleAliases[key]
}

var titleCaser = cases.Title(language.English)

// DisplayStyle renders a stored style for people: "rustic_experimental"
// becomes "Rustic Experimental". Custom styles are returned unchanged.
func DisplayStyle(style string) string {
	known := NormalizeStyle(style)
	if known == "" || string(known) != style {
		return style
	}
	return titleCaser.String(strings.ReplaceAll(style, "_", " "))
}
