package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// ParseFloat reads a numeric cell. Blank cells are nil. Commas are
// rejected: "1,005" could be a decimal-comma gravity or a grouped 1005.
func ParseFloat(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", cell)
	}
	return &v, nil
}

// ParseInt reads an integer cell, accepting a whole float such as "7.0".
func ParseInt(cell string) (*int, error) {
	f, err := ParseFloat(cell)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	if float64(n) != *f {
		return nil, fmt.Errorf("not a whole number: %q", cell)
	}
	return &n, nil
}

// ParseBool reads a checkbox cell: true, yes, 1, x and checked (any case)
// are true; anything else, including blank, is false.
func ParseBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "yes", "1", "x", "checked":
		return true
	}
	return false
}

// ParseDate reads a date cell in any layout brew.ParseDate accepts.
func ParseDate(cell string) (*brew.Date, error) {
	return brew.ParseOptionalDate(cell)
}

// FormatFloat writes a number the way a person would type it.
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatInt writes an integer cell.
func FormatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// FormatBool writes TRUE or FALSE.
func FormatBool(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// FormatDate writes YYYY-MM-DD.
func FormatDate(d *brew.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// normalizeHeader folds a header for matching: "final_measured_Brix_%" and
// "Final Measured Brix" both become "finalmeasuredbrix".
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
