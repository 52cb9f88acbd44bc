package backend

import (
	"context"
	"fmt"

	"budgetdash/internal/ledger"
	"budgetdash/internal/log"
	"budgetdash/internal/sheets"
)

// Loader fetches raw rows and normalizes them into transactions.
type Loader struct {
	src        sheets.RowSource
	normalizer *ledger.Normalizer
	logger     *log.Logger
}

// NewLoader returns a loader over src.
func NewLoader(src sheets.RowSource, normalizer *ledger.Normalizer, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	if normalizer == nil {
		normalizer = ledger.New(ledger.WithLogger(logger))
	}
	return &Loader{src: src, normalizer: normalizer, logger: logger.WithComponent(log.ComponentBackend)}
}

// Load fetches and normalizes. On a fetch error nothing is returned but
// the error.
func (l *Loader) Load(ctx context.Context) (ledger.Batch, error) {
	rows, err := l.src.FetchRows(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to fetch ledger rows",
			log.FieldOperation, log.OpFetch,
			log.FieldSource, l.src.Name(),
			log.FieldError, err)
		return ledger.Batch{}, fmt.Errorf("fetch rows from %s: %w", l.src.Name(), err)
	}
	return l.normalizer.Normalize(rows), nil
}

// Source returns the underlying row source.
func (l *Loader) Source() sheets.RowSource {
	return l.src
}
