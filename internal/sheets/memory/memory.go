package memory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"budgetdash/internal/core"
	ports "budgetdash/internal/sheets"
)

// Store keeps raw rows in memory.
type Store struct {
	mu   sync.Mutex
	rows []core.RawRow
}

var (
	_ ports.RowSource   = (*Store)(nil)
	_ ports.RowImporter = (*Store)(nil)
	_ ports.RowSource   = (*File)(nil)
)

// New returns a store holding a copy of rows.
func New(rows ...core.RawRow) *Store {
	s := &Store{}
	s.rows = cloneRows(rows)
	return s
}

// Name identifies the source.
func (s *Store) Name() string { return "memory" }

// FetchRows returns a copy of the stored rows.
func (s *Store) FetchRows(_ context.Context) ([]core.RawRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.rows), nil
}

// ImportRows appends rows and reports how many were added.
func (s *Store) ImportRows(_ context.Context, rows []core.RawRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, cloneRows(rows)...)
	return len(rows), nil
}

// File reads a CSV ledger from disk on every fetch, so edits to the file
// show up on the next refresh.
type File struct {
	path string
}

// NewFile returns a CSV file source.
func NewFile(path string) *File {
	return &File{path: path}
}

// Name identifies the source.
func (f *File) Name() string { return "csv:" + f.path }

// FetchRows opens and parses the file.
func (f *File) FetchRows(_ context.Context) ([]core.RawRow, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer fh.Close()
	rows, err := ParseCSV(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return rows, nil
}

// ParseCSV reads a header row followed by data rows. Fields are trimmed and
// rows may have fewer fields than the header.
func ParseCSV(r io.Reader) ([]core.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	for _, rec := range records {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return ports.RowsFromMatrix(records), nil
}

func cloneRows(in []core.RawRow) []core.RawRow {
	out := make([]core.RawRow, 0, len(in))
	for _, r := range in {
		cp := make(core.RawRow, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}
