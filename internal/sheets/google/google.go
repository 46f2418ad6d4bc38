package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	ports "donatrack/internal/sheets"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	// Cells hold record text verbatim; nothing written is parsed as a
	// formula.
	valueInputOption = "RAW"
	insertDataOption = "INSERT_ROWS"
	lastColumn       = "I"
)

// Client appends activity rows to a single sheet of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ActivityWriter = (*Client)(nil)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
}

// New creates a Sheets client authenticated with service account JSON.
// Extra options are applied after the credentials, which lets tests point
// the client at a fake endpoint.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Activity"
	}

	var all []goption.ClientOption
	if creds := strings.TrimSpace(cfg.CredentialsJSON); creds != "" {
		hc, err := newAuthorizedClient(ctx, []byte(creds))
		if err != nil {
			return nil, err
		}
		all = append(all, goption.WithHTTPClient(hc))
	} else if len(opts) == 0 {
		return nil, errors.New("missing GOOGLE_CREDENTIALS_JSON")
	}
	all = append(all, opts...)

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", spreadsheetID, "sheet", sheetName)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// newAuthorizedClient returns a pooled HTTP client that signs requests with
// tokens for the service account in credsJSON. Token exchanges go through
// the same pool.
func newAuthorizedClient(ctx context.Context, credsJSON []byte) (*http.Client, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, NewHTTPClientWithPooling())

	creds, err := goauth.CredentialsFromJSON(ctx, credsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}

// NewHTTPClientWithPooling returns an HTTP client tuned for the Sheets API.
func NewHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) columns(from, to string) string {
	return fmt.Sprintf("%s!%s:%s", c.sheetName, from, to)
}

// EnsureHeader writes the column labels into row 1 when it is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := c.columns("A1", lastColumn+"1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{ports.ActivityHeader()}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Activity sheet header written", "sheet", c.sheetName)
	return nil
}

// AppendActivity appends row below the last used row and returns the
// range the API reports as updated.
func (c *Client) AppendActivity(ctx context.Context, row ports.ActivityRow) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if row.Kind == "" || row.ID == "" {
		return "", errors.New("activity row needs a kind and an id")
	}

	vr := &gsheet.ValueRange{Values: [][]any{row.Values()}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.columns("A", lastColumn), vr).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append activity to %s: %w", c.sheetName, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return c.columns("A", lastColumn), nil
}
