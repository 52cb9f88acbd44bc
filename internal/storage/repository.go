package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"budgetdash/internal/core"
	"budgetdash/internal/log"
	ports "budgetdash/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps raw ledger rows in SQLite. Rows are stored as
// imported; normalization happens when they are read back.
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

var (
	_ ports.RowSource   = (*SQLiteRepository)(nil)
	_ ports.RowImporter = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Debug("SQLite ledger ready", log.FieldOperation, log.OpMigrate, "path", dbPath)

	return &SQLiteRepository{db: db, path: dbPath, logger: logger}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Name identifies the source.
func (r *SQLiteRepository) Name() string {
	return "sqlite:" + r.path
}

// Ping checks the connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FetchRows implements sheets.RowSource, returning rows in import order.
func (r *SQLiteRepository) FetchRows(ctx context.Context) ([]core.RawRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT raw_date, category, amount, description FROM ledger_rows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query ledger rows: %w", err)
	}
	defer rows.Close()

	out := make([]core.RawRow, 0)
	for rows.Next() {
		var date, category, amount, description string
		if err := rows.Scan(&date, &category, &amount, &description); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		out = append(out, core.RawRow{
			core.FieldDate:        date,
			core.FieldCategory:    category,
			core.FieldAmount:      amount,
			core.FieldDescription: description,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return out, nil
}

// ImportRows implements sheets.RowImporter. Blank rows are skipped; the
// rest are inserted in one transaction.
func (r *SQLiteRepository) ImportRows(ctx context.Context, in []core.RawRow) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_rows (raw_date, category, amount, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, row := range in {
		if row.IsBlank() {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			row.Get(core.FieldDate),
			row.Get(core.FieldCategory),
			row.Get(core.FieldAmount),
			row.Get(core.FieldDescription)); err != nil {
			return 0, fmt.Errorf("insert ledger row: %w", err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	r.logger.InfoContext(ctx, "Imported ledger rows",
		log.FieldOperation, log.OpImport,
		log.FieldRows, len(in),
		log.FieldKept, n)
	return n, nil
}

// Count returns the number of stored rows.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_rows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger rows: %w", err)
	}
	return n, nil
}
