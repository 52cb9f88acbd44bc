package sheets

import (
	"context"
	"strings"

	"budgetdash/internal/core"
)

// Ports for inbound ledger data.
type (
	// RowSource fetches raw ledger rows keyed by header name. It returns
	// every row or an error, never a partial result.
	RowSource interface {
		// Name identifies the source in logs and cache keys.
		Name() string
		FetchRows(ctx context.Context) ([]core.RawRow, error)
	}

	// RowImporter stores raw rows for later fetching.
	RowImporter interface {
		ImportRows(ctx context.Context, rows []core.RawRow) (int, error)
	}
)

// RowsFromMatrix turns a header row plus data rows into keyed rows. Header
// names are trimmed; cells missing at the end of a short row read as "".
// Cells beyond the header are ignored.
func RowsFromMatrix(values [][]string) []core.RawRow {
	if len(values) == 0 {
		return []core.RawRow{}
	}
	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(h)
	}
	out := make([]core.RawRow, 0, len(values)-1)
	for _, rec := range values[1:] {
		row := make(core.RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			row[h] = safeGet(rec, i)
		}
		out = append(out, row)
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
