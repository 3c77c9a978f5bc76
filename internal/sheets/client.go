package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client is the spreadsheet access the syncer needs. Ranges use A1
// notation, e.g. "'Recipe'!A:ZZ".
type Client interface {
	// Verify checks access and returns the spreadsheet title.
	Verify(ctx context.Context) (string, error)
	ReadRange(ctx context.Context, rng string) ([][]string, error)
	WriteRange(ctx context.Context, rng string, rows [][]string) error
	AppendRows(ctx context.Context, rng string, rows [][]string) error
	ClearRange(ctx context.Context, rng string) error
	// RowCount returns the number of non-empty rows in a sheet, header
	// included.
	RowCount(ctx context.Context, sheet string) (int, error)
}

// sheetRange quotes a sheet name and appends an optional cell range.
func sheetRange(sheet, cells string) string {
	rng := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if cells != "" {
		rng += "!" + cells
	}
	return rng
}

// GoogleClient talks to the Sheets v4 API with a service account.
type GoogleClient struct {
	svc           *gsheets.Service
	spreadsheetID string
	accountEmail  string
}

// NewGoogleClient authenticates with the service account file at credsPath
// (see ResolveCredentials) for spreadsheetID.
func NewGoogleClient(ctx context.Context, spreadsheetID, credsPath string) (*GoogleClient, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("spreadsheet ID is required")
	}
	path, err := ResolveCredentials(credsPath)
	if err != nil {
		return nil, err
	}
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(path),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleClient{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		accountEmail:  ServiceAccountEmail(path),
	}, nil
}

// Verify implements Client.
func (c *GoogleClient) Verify(ctx context.Context) (string, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("properties.title").Context(ctx).Do()
	if err != nil {
		return "", explainAPIError(err, c.spreadsheetID, c.accountEmail)
	}
	if ss.Properties == nil {
		return "Unknown", nil
	}
	return ss.Properties.Title, nil
}

// ReadRange implements Client. Cells are rendered as displayed strings.
func (c *GoogleClient) ReadRange(ctx context.Context, rng string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, explainAPIError(err, c.spreadsheetID, c.accountEmail))
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	return rows, nil
}

// WriteRange implements Client.
func (c *GoogleClient) WriteRange(ctx context.Context, rng string, rows [][]string) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, valueRange(rows)).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", rng, explainAPIError(err, c.spreadsheetID, c.accountEmail))
	}
	return nil
}

// AppendRows implements Client.
func (c *GoogleClient) AppendRows(ctx context.Context, rng string, rows [][]string) error {
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, valueRange(rows)).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, explainAPIError(err, c.spreadsheetID, c.accountEmail))
	}
	return nil
}

// ClearRange implements Client.
func (c *GoogleClient) ClearRange(ctx context.Context, rng string) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, explainAPIError(err, c.spreadsheetID, c.accountEmail))
	}
	return nil
}

// RowCount implements Client.
func (c *GoogleClient) RowCount(ctx context.Context, sheet string) (int, error) {
	rows, err := c.ReadRange(ctx, sheetRange(sheet, "A:A"))
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func valueRange(rows [][]string) *gsheets.ValueRange {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return &gsheets.ValueRange{Values: values}
}

// AccessError is a Sheets API failure with a hint on how to fix it.
type AccessError struct {
	Status int
	Hint   string
	Err    error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("sheets API %d: %s", e.Status, e.Hint)
}

func (e *AccessError) Unwrap() error { return e.Err }

// explainAPIError turns 400/403/404 responses into actionable errors.
func explainAPIError(err error, spreadsheetID, accountEmail string) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch {
	case gerr.Code == 404:
		return &AccessError{Status: 404, Err: err, Hint: fmt.Sprintf(
			"spreadsheet %s not found; use the string between /d/ and /edit in the sheet URL", spreadsheetID)}
	case gerr.Code == 403:
		return &AccessError{Status: 403, Err: err, Hint: fmt.Sprintf(
			"permission denied; share the spreadsheet with %s as Editor", accountEmail)}
	case gerr.Code == 400 && strings.Contains(strings.ToLower(gerr.Message), "not supported for this document"):
		return &AccessError{Status: 400, Err: err, Hint: fmt.Sprintf(
			"%s is not a Google Sheet; open it in a browser and check it is not a Doc, Slide or folder", spreadsheetID)}
	}
	return err
}
