package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

const ledgerCSV = `Date,Category,Amount,Description
05/20/2025,Groceries,200,Veg market
05/19/2025,Eating Out,450,Dinner with friends
,Rent & Utilities,"3,000",Rent
04/10/2025,Travel,900,Weekend trip
`

// setupEnv points every setting at a temp dir and returns the CSV path.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "transactions.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(ledgerCSV), 0o600))

	t.Setenv("PORT", "8081")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DATA_FILE", csvPath)
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "db", "ledger.db"))
	t.Setenv("BUDGET_CONFIG_FILE", "")
	t.Setenv("REFERENCE_YEAR", "2025")
	t.Setenv("LOG_LEVEL", "error")
	return csvPath
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(WithClock(func() time.Time { return testNow }))
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type summaryJSON struct {
	MonthLabel string  `json:"monthLabel"`
	MonthTotal float64 `json:"monthTotal"`
	Today      float64 `json:"today"`
	Streak     int     `json:"streak"`
	Selection  struct {
		Month       string   `json:"month"`
		Granularity string   `json:"granularity"`
		Categories  []string `json:"categories"`
		Search      string   `json:"search"`
	} `json:"selection"`
	Transactions []struct {
		Category    string `json:"category"`
		Description string `json:"description"`
	} `json:"transactions"`
}

func TestSummaryJSON(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "summary", "--json")
	require.NoError(t, err)

	var v summaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "May 2025", v.MonthLabel)
	assert.Equal(t, "2025-5", v.Selection.Month)
	assert.InDelta(t, 3650, v.MonthTotal, 1e-9)
	assert.InDelta(t, 3200, v.Today, 1e-9)
	assert.Len(t, v.Transactions, 3)
}

func TestSummaryWithSelection(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "summary", "--json",
		"--month", "2025-04",
		"--granularity", "week",
		"--category", "Travel",
		"--category", "Rent & Utilities",
		"--search", "trip")
	require.NoError(t, err)

	var v summaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "2025-4", v.Selection.Month)
	assert.Equal(t, "week", v.Selection.Granularity)
	assert.Equal(t, []string{"Travel", "Rent & Utilities"}, v.Selection.Categories)
	assert.InDelta(t, 3900, v.MonthTotal, 1e-9, "filters only narrow the table")
	require.Len(t, v.Transactions, 1)
	assert.Equal(t, "Weekend trip", v.Transactions[0].Description)
}

func TestSummaryText(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "summary")
	require.NoError(t, err)

	for _, want := range []string{"May 2025", "₹3,650", "Groceries", "Veg market", "Rent & Utilities", "N/A"} {
		assert.Contains(t, out, want)
	}
}

func TestSummaryRejectsBadFlags(t *testing.T) {
	setupEnv(t)

	_, _, err := run(t, "summary", "--month", "May")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid month")

	_, _, err = run(t, "summary", "--granularity", "year")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid time granularity")
}

func TestSummaryReportsDroppedRows(t *testing.T) {
	csvPath := setupEnv(t)
	require.NoError(t, os.WriteFile(csvPath, []byte(ledgerCSV+"05/02/2025,,10,No category\n13/45/2025,Gifts,50,Odd date\n"), 0o600))

	_, stderr, err := run(t, "summary", "--json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 rows dropped, 1 rows with unreadable dates")
}

func TestMonths(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "months")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12)
	assert.True(t, strings.HasPrefix(lines[0], "* 2025-5"), lines[0])
	assert.Contains(t, lines[0], "May 2025")
	assert.Contains(t, lines[11], "June 2024")
}

func TestImportThenSummaryFromSQLite(t *testing.T) {
	csvPath := setupEnv(t)

	out, _, err := run(t, "import", "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 4 rows")
	assert.Contains(t, out, "4 usable")

	t.Setenv("DATA_BACKEND", "sqlite")
	out, _, err = run(t, "summary", "--json")
	require.NoError(t, err)

	var v summaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.InDelta(t, 3650, v.MonthTotal, 1e-9)
}

func TestImportRequiresCSV(t *testing.T) {
	setupEnv(t)

	_, _, err := run(t, "import")
	assert.Error(t, err)

	_, _, err = run(t, "import", "--csv", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestInvalidConfiguration(t *testing.T) {
	setupEnv(t)
	t.Setenv("DATA_BACKEND", "postgres")

	_, _, err := run(t, "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestBudgetConfigFlag(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "budget.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monthly_target: 1000\ncurrency: usd\n"), 0o600))

	out, _, err := run(t, "summary", "--budget-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "$3,650")
}
