// Package ledger turns raw ledger rows into canonical transactions.
//
// Rows with no date become fixed (recurring) expenses. Rows with a date that
// cannot be read are kept as fixed expenses too, so their amount still counts
// toward monthly totals. Rows that are blank, have no category or have no
// positive amount are dropped.
package ledger

import (
	"errors"
	"time"

	"budgetdash/internal/core"
	"budgetdash/internal/log"
)

// Normalizer converts raw rows. The zero value is not usable; call New.
type Normalizer struct {
	refYear int
	logger  *log.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithReferenceYear sets the year used for "May N" dates.
func WithReferenceYear(year int) Option {
	return func(n *Normalizer) {
		if year > 0 {
			n.refYear = year
		}
	}
}

// WithLogger sets the logger used for reclassification warnings.
func WithLogger(l *log.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

// New returns a Normalizer whose reference year defaults to the current year.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		refYear: time.Now().Year(),
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ReferenceYear returns the year used for "May N" dates.
func (n *Normalizer) ReferenceYear() int {
	return n.refYear
}

// Stats counts what happened to each row of a batch.
type Stats struct {
	Rows            int `json:"rows"`
	Kept            int `json:"kept"`
	Fixed           int `json:"fixed"`
	Reclassified    int `json:"reclassified"`
	DroppedBlank    int `json:"droppedBlank"`
	DroppedCategory int `json:"droppedCategory"`
	DroppedAmount   int `json:"droppedAmount"`
}

// Dropped is the total number of rows that produced no transaction.
func (s Stats) Dropped() int {
	return s.DroppedBlank + s.DroppedCategory + s.DroppedAmount
}

// Batch is the result of normalizing a list of rows.
type Batch struct {
	Transactions []core.Transaction
	Stats        Stats
}

// Row normalizes one row. A non-nil error means the row is dropped and is one
// of core.ErrBlankRow, core.ErrEmptyCategory or core.ErrInvalidAmount.
// reclassified is true when a non-blank date could not be parsed and the row
// was kept as a fixed expense.
func (n *Normalizer) Row(row core.RawRow) (tx core.Transaction, reclassified bool, err error) {
	if row.IsBlank() {
		return core.Transaction{}, false, core.ErrBlankRow
	}

	category := row.Get(core.FieldCategory)
	if category == "" {
		return core.Transaction{}, false, core.ErrEmptyCategory
	}

	amount, err := core.ParseAmount(row.Get(core.FieldAmount))
	if err != nil {
		return core.Transaction{}, false, err
	}

	description := row.Get(core.FieldDescription)
	if description == "" {
		description = core.DefaultDescription
	}

	tx = core.Transaction{
		Category:    category,
		Amount:      amount,
		Description: description,
	}

	rawDate := row.Get(core.FieldDate)
	if rawDate == "" {
		tx.IsFixedExpense = true
		return tx, false, nil
	}

	d, err := ParseDate(rawDate, n.refYear)
	if err != nil {
		tx.IsFixedExpense = true
		return tx, true, nil
	}
	tx.Date = d
	return tx, false, nil
}

// Normalize converts every row, skipping the ones that must be dropped.
// Input rows are not modified.
func (n *Normalizer) Normalize(rows []core.RawRow) Batch {
	batch := Batch{Transactions: make([]core.Transaction, 0, len(rows))}
	batch.Stats.Rows = len(rows)

	for i, row := range rows {
		tx, reclassified, err := n.Row(row)
		switch {
		case errors.Is(err, core.ErrBlankRow):
			batch.Stats.DroppedBlank++
			continue
		case errors.Is(err, core.ErrEmptyCategory):
			batch.Stats.DroppedCategory++
			continue
		case err != nil:
			batch.Stats.DroppedAmount++
			continue
		}

		if reclassified {
			batch.Stats.Reclassified++
			n.logger.Warn("Unparseable date, treating row as fixed expense",
				log.FieldOperation, log.OpNormalize,
				log.FieldRow, i+1,
				log.FieldRawDate, row.Get(core.FieldDate),
				log.FieldCategory, tx.Category)
		}
		if tx.IsFixedExpense {
			batch.Stats.Fixed++
		}
		batch.Transactions = append(batch.Transactions, tx)
	}
	batch.Stats.Kept = len(batch.Transactions)

	n.logger.Debug("Normalized ledger rows",
		log.FieldRows, batch.Stats.Rows,
		log.FieldKept, batch.Stats.Kept,
		log.FieldDropped, batch.Stats.Dropped(),
		log.FieldReclassed, batch.Stats.Reclassified)

	return batch
}
