// Package google exports expense and chat rows to a Google spreadsheet with a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintech/internal/core"
	"fintech/internal/sheets"
)

type Config struct {
	SpreadsheetID   string
	ExpensesSheet   string
	ChatSheet       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	chatSheet     string
}

var _ sheets.Exporter = (*Client)(nil)

// New creates a client authenticated with the configured service account.
// Extra options are passed to the Sheets service.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if len(opts) == 0 {
		credentialsJSON, err := credentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		expensesSheet: orDefault(cfg.ExpensesSheet, "Expenses"),
		chatSheet:     orDefault(cfg.ChatSheet, "Chat"),
	}, nil
}

// credentials prefers inline JSON over the file path.
func credentials(ctx context.Context, cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read service account credentials", "path", cfg.CredentialsFile, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) AppendExpense(ctx context.Context, action string, e core.Expense, at time.Time) (string, error) {
	return c.append(ctx, c.expensesSheet, sheets.ExpenseHeader, sheets.ExpenseValues(action, e, at))
}

func (c *Client) AppendChat(ctx context.Context, row sheets.ChatRow) (string, error) {
	return c.append(ctx, c.chatSheet, sheets.ChatHeader, sheets.ChatValues(row))
}

// EnsureHeaders writes the header row of each sheet that is still empty.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	for sheet, header := range map[string][]any{c.expensesSheet: sheets.ExpenseHeader, c.chatSheet: sheets.ChatHeader} {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A1:A1").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read %s header: %w", sheet, err)
		}
		if len(resp.Values) > 0 {
			continue
		}
		vr := &gsheet.ValueRange{Values: [][]any{header}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
		slog.InfoContext(ctx, "Wrote sheet header", "sheet", sheet)
	}
	return nil
}

func (c *Client) append(ctx context.Context, sheet string, header, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:%c", sheet, 'A'+len(header)-1)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
