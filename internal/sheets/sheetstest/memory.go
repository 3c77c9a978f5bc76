// Package sheetstest provides an in-memory spreadsheet for tests of code
// that syncs through sheets.Client.
package sheetstest

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Client is an in-memory spreadsheet keyed by sheet name. Only writes at A1
// are supported.
type Client struct {
	mu sync.Mutex

	Title  string
	Sheets map[string][][]string

	// FailOn makes every call touching a sheet fail with the given error.
	// The key "*" fails Verify.
	FailOn map[string]error

	// Appends counts AppendRows calls.
	Appends int
}

// New returns an empty spreadsheet titled "Brew Log".
func New() *Client {
	return &Client{Title: "Brew Log", Sheets: map[string][][]string{}, FailOn: map[string]error{}}
}

// SheetOf extracts the sheet name from a quoted A1 range.
func SheetOf(rng string) string {
	name := rng
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		name = rng[:i]
	}
	name = strings.TrimPrefix(strings.TrimSuffix(name, "'"), "'")
	return strings.ReplaceAll(name, "''", "'")
}

func (c *Client) Verify(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.FailOn["*"]; err != nil {
		return "", err
	}
	return c.Title, nil
}

func (c *Client) ReadRange(ctx context.Context, rng string) ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read(SheetOf(rng))
}

func (c *Client) read(sheet string) ([][]string, error) {
	if err := c.FailOn[sheet]; err != nil {
		return nil, err
	}
	rows := c.Sheets[sheet]
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (c *Client) WriteRange(ctx context.Context, rng string, rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.FailOn[SheetOf(rng)]; err != nil {
		return err
	}
	if !strings.HasSuffix(rng, "!A1") {
		return errors.New("sheetstest: only writes at A1 are supported")
	}
	c.Sheets[SheetOf(rng)] = rows
	return nil
}

func (c *Client) AppendRows(ctx context.Context, rng string, rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := SheetOf(rng)
	if err := c.FailOn[name]; err != nil {
		return err
	}
	c.Appends++
	c.Sheets[name] = append(c.Sheets[name], rows...)
	return nil
}

func (c *Client) ClearRange(ctx context.Context, rng string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := SheetOf(rng)
	if err := c.FailOn[name]; err != nil {
		return err
	}
	delete(c.Sheets, name)
	return nil
}

func (c *Client) RowCount(ctx context.Context, sheet string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.read(sheet)
	return len(rows), err
}
