package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"homeboard/internal/cache"
	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/ports"
	"homeboard/internal/sources"
)

// valueReader reads a range of cell values. It is satisfied by the Sheets
// API in production and by fakes in tests.
type valueReader interface {
	Values(ctx context.Context, rng string) ([][]interface{}, error)
}

type sheetsReader struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (r sheetsReader) Values(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

type Config struct {
	SpreadsheetID string
	Sheet         string
	CacheTTL      time.Duration
	// Service account credentials: inline JSON wins over the file path.
	CredentialsJSON string
	CredentialsFile string
	// OAuth, when it names a token file, replaces the service account.
	OAuth    OAuth
	Location *time.Location
}

// Client lists transactions from a spreadsheet tab with the columns
// ID, User, Date, Type, Amount. Parsed rows are cached per range.
type Client struct {
	values valueReader
	sheet  string
	loc    *time.Location
	rows   *cache.LRU[[]userTx]
	logger *log.Logger
}

var _ sources.TransactionReader = (*Client)(nil)

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(sheetsReader{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg, logger), nil
}

func newClient(values valueReader, cfg Config, logger *log.Logger) *Client {
	sheet := strings.TrimSpace(cfg.Sheet)
	if sheet == "" {
		sheet = "Transactions"
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		values: values,
		sheet:  sheet,
		loc:    loc,
		rows:   cache.NewLRU[[]userTx](8, ttl),
		logger: logger.WithComponent(log.ComponentSheets),
	}
}

// newSheetsService builds a read-only Sheets service from an OAuth token or
// service account credentials, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	if cfg.OAuth.enabled() {
		opt, err := cfg.OAuth.clientOption(ctx)
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "creating sheets service", "auth", "oauth", "token_file", cfg.OAuth.TokenFile)
		return gsheet.NewService(ctx, opt)
	}

	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	logger.InfoContext(ctx, "creating sheets service", "credentials_size", len(credentialsJSON))

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

func (c *Client) rangeName() string {
	return fmt.Sprintf("%s!A:E", c.sheet)
}

// ListTransactions returns the user's transactions matching q.
func (c *Client) ListTransactions(ctx context.Context, userID string, q ports.TransactionQuery) ([]core.Transaction, error) {
	rows, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		if r.user == userID {
			mine = append(mine, r.tx)
		}
	}
	return sources.FilterTransactions(mine, q), nil
}

func (c *Client) load(ctx context.Context) ([]userTx, error) {
	rng := c.rangeName()
	if rows, ok := c.rows.Get(rng); ok {
		return rows, nil
	}

	values, err := c.values.Values(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	rows, skipped := parseTransactions(values, c.loc)
	if skipped > 0 {
		c.logger.WarnContext(ctx, "skipped unparsable transaction rows", "range", rng, "count", skipped)
	}
	c.rows.Set(rng, rows)
	return rows, nil
}

// Ping checks the sheet is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.values.Values(ctx, fmt.Sprintf("%s!A1:A1", c.sheet)); err != nil {
		return fmt.Errorf("ping sheet %s: %w", c.sheet, err)
	}
	return nil
}

// Cache exposes the row cache so a cache.Manager can sweep it.
func (c *Client) Cache() cache.Cleaner {
	return c.rows
}
