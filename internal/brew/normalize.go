package brew

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKey trims s and applies Unicode NFC so identifiers typed on
// different machines compare equal.
func NormalizeKey(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// OptionalText returns nil for blank input, otherwise the trimmed text.
func OptionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = norm.NFC.String(s)
	return &s
}

// Text dereferences s, returning "" for nil.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var digitRun = regexp.MustCompile(`\d+`)

// BatchNumberFromID extracts the last run of digits in a batch ID, e.g.
// "BATCH-007" -> 7 and "2024-03" -> 3. ok is false when there are none.
func BatchNumberFromID(batchID string) (n int, ok bool) {
	runs := digitRun.FindAllString(batchID, -1)
	if len(runs) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(runs[len(runs)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}
