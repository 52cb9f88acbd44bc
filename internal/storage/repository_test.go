package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetdash/internal/core"
)

func newRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	repo, err := NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestImportAndFetch(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	n, err := repo.ImportRows(ctx, []core.RawRow{
		{"Date": " 05/01/2025 ", "Category": "Groceries", "Amount": "₹1,200.50", "Description": "Weekly shop"},
		{"Date": "", "Category": "", "Amount": "", "Description": ""},
		{"Category": "Rent & Utilities", "Amount": "3000"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rows, err := repo.FetchRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.RawRow{
		{"Date": "05/01/2025", "Category": "Groceries", "Amount": "₹1,200.50", "Description": "Weekly shop"},
		{"Date": "", "Category": "Rent & Utilities", "Amount": "3000", "Description": ""},
	}, rows)
	assert.NoError(t, repo.Ping(ctx))
}

func TestFetchEmpty(t *testing.T) {
	repo, path := newRepo(t)
	rows, err := repo.FetchRows(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, "sqlite:"+path, repo.Name())
}

func TestMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t)
	_, err := repo.ImportRows(ctx, []core.RawRow{{"Category": "Misc", "Amount": "5"}})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
