package sheets

import (
	"fmt"
	"strings"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// column maps one sheet column onto a field of T.
type column[T any] struct {
	header  string
	aliases []string
	format  func(*T) string
	parse   func(*T, string) error
}

func (c column[T]) matches(header string) bool {
	n := normalizeHeader(header)
	if n == normalizeHeader(c.header) {
		return true
	}
	for _, a := range c.aliases {
		if n == normalizeHeader(a) {
			return true
		}
	}
	return false
}

// table describes how records of type T are laid out in a sheet. The first
// column is the key.
type table[T any] struct {
	name    string
	columns []column[T]
}

// Headers returns the header row written to an empty sheet.
func (t table[T]) Headers() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.header
	}
	return out
}

func (t table[T]) key(rec *T) string {
	return brew.NormalizeKey(t.columns[0].format(rec))
}

// Encode renders records as rows, without the header.
func (t table[T]) Encode(records []T) [][]string {
	rows := make([][]string, 0, len(records))
	for i := range records {
		row := make([]string, len(t.columns))
		for j, c := range t.columns {
			row[j] = c.format(&records[i])
		}
		rows = append(rows, row)
	}
	return rows
}

// RowError describes a sheet row that could not be decoded.
type RowError struct {
	Row    int    `json:"row" yaml:"row"` // 1-based sheet row
	Reason string `json:"reason" yaml:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Decode reads records from sheet values whose first row is the header.
// Blank rows are ignored; rows with a blank key or an unparseable cell are
// skipped and reported. Unknown headers are ignored.
func (t table[T]) Decode(values [][]string) ([]T, []RowError, error) {
	if len(values) == 0 {
		return []T{}, nil, nil
	}
	index := make([]int, len(t.columns))
	for i, c := range t.columns {
		index[i] = -1
		for j, h := range values[0] {
			if c.matches(h) {
				index[i] = j
				break
			}
		}
	}
	if index[0] < 0 {
		return nil, nil, fmt.Errorf("sheet %s: no %q column in header", t.name, t.columns[0].header)
	}

	records := []T{}
	var skipped []RowError
rows:
	for r, row := range values[1:] {
		if blankRow(row) {
			continue
		}
		var rec T
		for i, c := range t.columns {
			cell := ""
			if index[i] >= 0 && index[i] < len(row) {
				cell = row[index[i]]
			}
			if err := c.parse(&rec, cell); err != nil {
				skipped = append(skipped, RowError{Row: r + 2, Reason: fmt.Sprintf("%s: %v", c.header, err)})
				continue rows
			}
		}
		if t.key(&rec) == "" {
			skipped = append(skipped, RowError{Row: r + 2, Reason: "blank " + t.columns[0].header})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// KeyIndex returns the position of the key column in header, or -1.
func (t table[T]) KeyIndex(header []string) int {
	for i, h := range header {
		if t.columns[0].matches(h) {
			return i
		}
	}
	return -1
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Column constructors. Each takes an accessor returning a pointer to the
// field so one definition serves both directions.

func keyCol[T any](header string, aliases []string, field func(*T) *string) column[T] {
	return column[T]{
		header:  header,
		aliases: aliases,
		format:  func(r *T) string { return *field(r) },
		parse: func(r *T, cell string) error {
			*field(r) = brew.NormalizeKey(cell)
			return nil
		},
	}
}

func textCol[T any](header string, aliases []string, field func(*T) **string) column[T] {
	return column[T]{
		header:  header,
		aliases: aliases,
		format:  func(r *T) string { return brew.Text(*field(r)) },
		parse: func(r *T, cell string) error {
			*field(r) = brew.OptionalText(cell)
			return nil
		},
	}
}

func floatCol[T any](header string, aliases []string, field func(*T) **float64) column[T] {
	return column[T]{
		header:  header,
		aliases: aliases,
		format:  func(r *T) string { return FormatFloat(*field(r)) },
		parse: func(r *T, cell string) (err error) {
			*field(r), err = ParseFloat(cell)
			return err
		},
	}
}

func intCol[T any](header string, aliases []string, field func(*T) **int) column[T] {
	return column[T]{
		header:  header,
		aliases: aliases,
		format:  func(r *T) string { return FormatInt(*field(r)) },
		parse: func(r *T, cell string) (err error) {
			*field(r), err = ParseInt(cell)
			return err
		},
	}
}

func dateCol[T any](header string, aliases []string, field func(*T) **brew.Date) column[T] {
	return column[T]{
		header:  header,
		aliases: aliases,
		format:  func(r *T) string { return FormatDate(*field(r)) },
		parse: func(r *T, cell string) (err error) {
			*field(r), err = ParseDate(cell)
			return err
		},
	}
}

func boolCol[T any](header string, aliases []string, field func(*T) *bool) column[T] {
	return column[T]{
		header:  header,
		aliases: aliases,
		format:  func(r *T) string { return FormatBool(*field(r)) },
		parse: func(r *T, cell string) error {
			*field(r) = ParseBool(cell)
			return nil
		},
	}
}
