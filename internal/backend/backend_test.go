package backend

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetdash/internal/config"
	"budgetdash/internal/core"
	"budgetdash/internal/ledger"
	"budgetdash/internal/log"
	"budgetdash/internal/sheets"
	"budgetdash/internal/sheets/memory"
)

type countingSource struct {
	calls atomic.Int32
	rows  []core.RawRow
	err   error
	delay time.Duration
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) FetchRows(context.Context) ([]core.RawRow, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func TestBackendType(t *testing.T) {
	assert.True(t, MemoryBackend.IsValid())
	assert.True(t, SheetsBackend.IsValid())
	assert.True(t, SQLiteBackend.IsValid())
	assert.False(t, BackendType("postgres").IsValid())
	assert.Equal(t, "sqlite", SQLiteBackend.String())
	assert.Len(t, GetBackendTypes(), 3)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "memory without file", cfg: Config{Type: MemoryBackend}},
		{name: "sqlite", cfg: Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}},
		{name: "sqlite without path", cfg: Config{Type: SQLiteBackend}, wantErr: "SQLite database path"},
		{name: "sheets without id", cfg: Config{Type: SheetsBackend}, wantErr: "Spreadsheet ID"},
		{name: "sheets without credentials", cfg: func() Config {
			c := Config{Type: SheetsBackend}
			c.Sheets.SpreadsheetID = "abc"
			return c
		}(), wantErr: "API key or service account"},
		{name: "unknown", cfg: Config{Type: "redis"}, wantErr: "invalid backend type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "mongo"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "sheets",
		GoogleSpreadsheetID: "sheet-id",
		GoogleSheetRange:    "Ledger!A:D",
		GoogleAPIKey:        "key",
	})
	require.NoError(t, err)
	assert.Equal(t, SheetsBackend, cfg.Type)
	assert.Equal(t, "sheet-id", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "Ledger!A:D", cfg.Sheets.Range)
	assert.Equal(t, "key", cfg.Sheets.APIKey)
}

func TestFactoryMemoryBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	require.NoError(t, err)
	require.NotNil(t, res.Importer, "empty memory ledger accepts imports")
	assert.Equal(t, "memory", res.Source.Name())
	assert.NoError(t, res.Close())

	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Category,Amount\n05/01/2025,Food,10\n"), 0o600))

	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend, DataFile: path})
	require.NoError(t, err)
	assert.Nil(t, res.Importer, "CSV files are read-only")
	rows, err := res.Source.FetchRows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend, DataFile: filepath.Join(t.TempDir(), "missing.csv")})
	require.NoError(t, err)
	assert.Equal(t, "memory", res.Source.Name(), "missing file falls back to an empty ledger")
}

func TestFactorySQLiteBackend(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "data", "ledger.db")

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })

	require.NotNil(t, res.Importer)
	require.NotNil(t, res.Ping)
	assert.NoError(t, res.Ping(ctx))

	n, err := res.Importer.ImportRows(ctx, []core.RawRow{{"Date": "05/01/2025", "Category": "Food", "Amount": "10"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := res.Source.FetchRows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFactoryRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SheetsBackend})
	assert.Error(t, err)
}

// gatedSource blocks every fetch until release is closed and fails with the
// fetch context's error if that context has ended by then.
type gatedSource struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	rows    []core.RawRow
}

func newGatedSource(rows ...core.RawRow) *gatedSource {
	return &gatedSource{entered: make(chan struct{}, 8), release: make(chan struct{}), rows: rows}
}

func (s *gatedSource) Name() string { return "gated" }

func (s *gatedSource) FetchRows(ctx context.Context) ([]core.RawRow, error) {
	s.calls.Add(1)
	s.entered <- struct{}{}
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.rows, nil
}

func newCachedLedger(src sheets.RowSource) *CachedLedger {
	return NewCachedLedger(NewLoader(src, ledger.New(ledger.WithReferenceYear(2025)), nil), time.Minute, nil)
}

func TestCachedLedgerCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{rows: []core.RawRow{{"Date": "05/01/2025", "Category": "Food", "Amount": "10"}}}
	c := newCachedLedger(src)

	batch, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, batch.Transactions, 1)
	batch.Transactions[0].Category = "mutated"

	batch, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Food", batch.Transactions[0].Category, "callers get independent copies")
	assert.Equal(t, 1, batch.Stats.Kept)
	assert.Equal(t, int32(1), src.calls.Load())

	c.Invalidate()
	_, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, "counting", c.Name())
}

func TestCachedLedgerNormalizesOncePerFetch(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(log.Config{Handler: slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})})
	src := &countingSource{rows: []core.RawRow{{"Date": "garbage", "Category": "Gifts", "Amount": "50"}}}
	c := NewCachedLedger(NewLoader(src, ledger.New(ledger.WithReferenceYear(2025), ledger.WithLogger(logger)), nil), time.Minute, nil)

	for i := 0; i < 3; i++ {
		batch, err := c.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, batch.Stats.Reclassified)
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "raw_date=garbage"), logs.String())
}

func TestCachedLedgerDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{err: errors.New("sheet unavailable")}
	c := newCachedLedger(src)

	_, err := c.Load(ctx)
	require.Error(t, err)
	_, err = c.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, 0, c.Cache().Size())
}

func TestCachedLedgerSharesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{rows: []core.RawRow{{"Category": "Food", "Amount": "10"}}, delay: 50 * time.Millisecond}
	c := newCachedLedger(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := c.Load(ctx)
			assert.NoError(t, err)
			assert.Len(t, batch.Transactions, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCachedLedgerSharedFetchOutlivesCancelledCaller(t *testing.T) {
	src := newGatedSource(core.RawRow{"Category": "Food", "Amount": "10"})
	c := newCachedLedger(src)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx)
		errc <- err
	}()
	<-src.entered
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(src.release)
	batch, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch.Transactions, 1)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCachedLedgerInvalidateDiscardsInFlightFetch(t *testing.T) {
	src := newGatedSource(core.RawRow{"Category": "Food", "Amount": "10"})
	c := newCachedLedger(src)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Load(context.Background())
		assert.NoError(t, err)
	}()
	<-src.entered
	c.Invalidate()
	close(src.release)
	<-done

	assert.Equal(t, 0, c.Cache().Size(), "rows fetched before the invalidation are not cached")
	_, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestLoaderNormalizes(t *testing.T) {
	src := memory.New(
		core.RawRow{"Date": "05/01/2025", "Category": "Food", "Amount": "10"},
		core.RawRow{"Category": "Rent", "Amount": "3000"},
		core.RawRow{"Category": "", "Amount": "5"},
	)
	l := NewLoader(src, ledger.New(ledger.WithReferenceYear(2025)), nil)

	batch, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch.Transactions, 2)
	assert.Equal(t, 3, batch.Stats.Rows)
	assert.Equal(t, 1, batch.Stats.Fixed)
	assert.Equal(t, 1, batch.Stats.DroppedCategory)
	assert.Equal(t, src, l.Source())
}

func TestLoaderWrapsFetchError(t *testing.T) {
	boom := errors.New("boom")
	l := NewLoader(&countingSource{err: boom}, nil, nil)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "counting")
}
