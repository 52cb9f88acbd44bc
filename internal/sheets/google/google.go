package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"budgetdash/internal/core"
	"budgetdash/internal/log"
	ports "budgetdash/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultRange is read when no range is configured.
const DefaultRange = "Sheet1"

// Config selects the spreadsheet and the credentials used to read it.
// Exactly one of APIKey, ServiceAccountJSON or ServiceAccountFile is needed;
// they are tried in that order.
type Config struct {
	SpreadsheetID      string
	Range              string
	APIKey             string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Client reads ledger rows from one range of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.RowSource = (*Client)(nil)

// New creates a read-only Sheets client.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.Range, logger), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, readRange string, logger *log.Logger) *Client {
	if strings.TrimSpace(readRange) == "" {
		readRange = DefaultRange
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		readRange:     readRange,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

// clientOptions picks the credentials. An API key is enough for sheets
// shared by link; private sheets need a service account.
func clientOptions(cfg Config) ([]goption.ClientOption, error) {
	switch {
	case strings.TrimSpace(cfg.APIKey) != "":
		return []goption.ClientOption{goption.WithAPIKey(strings.TrimSpace(cfg.APIKey))}, nil
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return serviceAccount([]byte(cfg.ServiceAccountJSON)), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return serviceAccount(b), nil
	default:
		return nil, errors.New("missing credentials (set GOOGLE_API_KEY, GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func serviceAccount(credentialsJSON []byte) []goption.ClientOption {
	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
	}
}

// Name identifies the source.
func (c *Client) Name() string {
	return "sheets:" + c.spreadsheetID + "!" + c.readRange
}

// FetchRows reads the range. The first row is the header.
func (c *Client) FetchRows(ctx context.Context) ([]core.RawRow, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).Context(ctx).Do()
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to read sheet range",
			log.FieldOperation, log.OpFetch,
			log.FieldSource, c.Name(),
			log.FieldError, err)
		return nil, fmt.Errorf("sheets get %s: %w", c.readRange, err)
	}

	matrix := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		matrix = append(matrix, toStrings(r))
	}
	rows := ports.RowsFromMatrix(matrix)
	c.logger.DebugContext(ctx, "Fetched sheet rows",
		log.FieldOperation, log.OpFetch,
		log.FieldSource, c.Name(),
		log.FieldRows, len(rows))
	return rows, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}
