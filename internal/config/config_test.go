package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetdash/internal/core"
)

func validConfig() Config {
	return Config{
		Port:             "8081",
		DataBackend:      "memory",
		GoogleSheetRange: "Sheet1",
		CacheTTL:         5 * time.Minute,
		LogLevel:         "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{name: "valid memory backend config", mutate: func(*Config) {}},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "postgres" },
			errorString: "invalid data backend 'postgres': must be one of [memory sheets sqlite]",
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "sheets backend missing spreadsheet id",
			mutate:      func(c *Config) { c.DataBackend = "sheets"; c.GoogleAPIKey = "k" },
			errorString: "Google Spreadsheet ID is required when using sheets backend",
		},
		{
			name:        "sheets backend missing credentials",
			mutate:      func(c *Config) { c.DataBackend = "sheets"; c.GoogleSpreadsheetID = "id" },
			errorString: "one of GOOGLE_API_KEY, GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided",
		},
		{
			name: "sheets backend missing service account file",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "id"
				c.GoogleServiceAccountFile = "/nonexistent/sa.json"
			},
			errorString: "Google service account file does not exist: /nonexistent/sa.json",
		},
		{
			name:        "missing budget file",
			mutate:      func(c *Config) { c.BudgetConfigFile = "/nonexistent/budget.yaml" },
			errorString: "budget config file does not exist",
		},
		{
			name:        "negative cache ttl",
			mutate:      func(c *Config) { c.CacheTTL = -time.Second },
			errorString: "invalid cache TTL -1s: must not be negative",
		},
		{
			name:        "reference year out of range",
			mutate:      func(c *Config) { c.ReferenceYear = 25 },
			errorString: "invalid reference year 25",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			errorString: "invalid log level 'verbose'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := Config{Port: "x", DataBackend: "nope", LogLevel: "loud", CacheTTL: 48 * time.Hour}
	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "configuration validation failed:")
	assert.Contains(t, msg, "invalid port 'x'")
	assert.Contains(t, msg, "invalid data backend 'nope'")
	assert.Contains(t, msg, "invalid log level 'loud'")
	assert.Contains(t, msg, "must be at most 24 hours")
}

func TestConfig_ValidateCreatesSQLiteDir(t *testing.T) {
	cfg := validConfig()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "sub", "ledger.db")
	require.NoError(t, cfg.Validate())
	_, err := os.Stat(filepath.Dir(cfg.SQLiteDBPath))
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REFERENCE_YEAR", "2025")
	t.Setenv("GOOGLE_SHEET_RANGE", "")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DataBackend)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2025, cfg.ReferenceYear)
	assert.Equal(t, "Sheet1", cfg.GoogleSheetRange)
	assert.Equal(t, "./data/ledger.db", cfg.SQLiteDBPath)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("REFERENCE_YEAR", "last")
	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Zero(t, cfg.ReferenceYear)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBudgetDefaults(t *testing.T) {
	cfg, err := LoadBudget("")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultBudgetConfig(), cfg)
}

func TestLoadBudgetYAML(t *testing.T) {
	path := writeFile(t, "budget.yaml", `
monthly_target: 40000
fixed_cost_category: Housing
currency: inr
categories:
  - name: Housing
    budget: 20000
    kind: need
  - name: Eating Out
    budget: 3000
    kind: Want
  - name: Groceries
    budget: 6000
    kind: NEED
`)
	cfg, err := LoadBudget(path)
	require.NoError(t, err)
	assert.Equal(t, 40000.0, cfg.MonthlyTarget)
	assert.Equal(t, "Housing", cfg.FixedCostCategory)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, core.BudgetMap{"Housing": 20000, "Eating Out": 3000, "Groceries": 6000}, cfg.Budgets)
	assert.Equal(t, core.NeedsWantsMap{"Housing": core.Need, "Eating Out": core.Want, "Groceries": core.Need}, cfg.NeedsWants)
}

func TestLoadBudgetTOMLKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeFile(t, "budget.toml", "monthly_target = 12345\n")
	cfg, err := LoadBudget(path)
	require.NoError(t, err)
	assert.Equal(t, 12345.0, cfg.MonthlyTarget)
	assert.Equal(t, core.DefaultBudgetConfig().Budgets, cfg.Budgets)
	assert.Equal(t, "Rent & Utilities", cfg.FixedCostCategory)
}

func TestLoadBudgetEnvOverride(t *testing.T) {
	t.Setenv("BUDGETDASH_MONTHLY_TARGET", "60000")
	t.Setenv("BUDGETDASH_CURRENCY", "USD")
	cfg, err := LoadBudget("")
	require.NoError(t, err)
	assert.Equal(t, 60000.0, cfg.MonthlyTarget)
	assert.Equal(t, "USD", cfg.Currency)
}

func TestLoadBudgetValidation(t *testing.T) {
	path := writeFile(t, "budget.yaml", `
monthly_target: -1
currency: XYZ
categories:
  - name: Food
    budget: -5
  - name: Food
    budget: 5
  - name: ""
    budget: 1
  - name: Fun
    budget: 1
    kind: luxury
`)
	_, err := LoadBudget(path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "category 'Food': budget must not be negative")
	assert.Contains(t, msg, "category 'Food': listed more than once")
	assert.Contains(t, msg, "category 3: name is required")
	assert.Contains(t, msg, `invalid classification "luxury"`)
	assert.Contains(t, msg, "invalid monthly target -1")
	assert.Contains(t, msg, "unknown currency 'XYZ'")
}

func TestLoadBudgetMissingFile(t *testing.T) {
	_, err := LoadBudget(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read budget config")
}
