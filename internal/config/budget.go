package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"budgetdash/internal/core"
)

// EnvPrefix prefixes environment overrides of budget settings, e.g.
// BUDGETDASH_MONTHLY_TARGET.
const EnvPrefix = "BUDGETDASH"

// categoryEntry is one budgeted category. Categories are a list rather than
// a map so names keep their case.
type categoryEntry struct {
	Name   string  `mapstructure:"name"`
	Budget float64 `mapstructure:"budget"`
	Kind   string  `mapstructure:"kind"`
}

type budgetFile struct {
	MonthlyTarget     float64         `mapstructure:"monthly_target"`
	FixedCostCategory string          `mapstructure:"fixed_cost_category"`
	Currency          string          `mapstructure:"currency"`
	Categories        []categoryEntry `mapstructure:"categories"`
}

// LoadBudget reads the budget configuration. An empty path yields the
// built-in defaults; scalar settings can still be overridden from the
// environment. The file type follows its extension (yaml, toml, json).
func LoadBudget(path string) (core.BudgetConfig, error) {
	def := core.DefaultBudgetConfig()

	v := viper.New()
	v.SetDefault("monthly_target", def.MonthlyTarget)
	v.SetDefault("fixed_cost_category", def.FixedCostCategory)
	v.SetDefault("currency", def.Currency)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return core.BudgetConfig{}, fmt.Errorf("read budget config: %w", err)
		}
	}

	var f budgetFile
	if err := v.Unmarshal(&f); err != nil {
		return core.BudgetConfig{}, fmt.Errorf("unmarshal budget config: %w", err)
	}
	return f.toBudgetConfig(def)
}

func (f budgetFile) toBudgetConfig(def core.BudgetConfig) (core.BudgetConfig, error) {
	var errors []string

	cfg := core.BudgetConfig{
		Budgets:           def.Budgets,
		NeedsWants:        def.NeedsWants,
		MonthlyTarget:     f.MonthlyTarget,
		FixedCostCategory: strings.TrimSpace(f.FixedCostCategory),
		Currency:          strings.ToUpper(strings.TrimSpace(f.Currency)),
	}

	if len(f.Categories) > 0 {
		cfg.Budgets = core.BudgetMap{}
		cfg.NeedsWants = core.NeedsWantsMap{}
		for i, c := range f.Categories {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				errors = append(errors, fmt.Sprintf("category %d: name is required", i+1))
				continue
			}
			if _, dup := cfg.Budgets[name]; dup {
				errors = append(errors, fmt.Sprintf("category '%s': listed more than once", name))
				continue
			}
			if c.Budget < 0 {
				errors = append(errors, fmt.Sprintf("category '%s': budget must not be negative", name))
			}
			kind, err := core.ParseClassification(c.Kind)
			if err != nil {
				errors = append(errors, fmt.Sprintf("category '%s': %v", name, err))
			}
			cfg.Budgets[name] = c.Budget
			cfg.NeedsWants[name] = kind
		}
	}

	if cfg.MonthlyTarget < 0 {
		errors = append(errors, fmt.Sprintf("invalid monthly target %v: must not be negative", cfg.MonthlyTarget))
	}
	if cfg.Currency == "" {
		cfg.Currency = core.DefaultCurrency
	} else if core.NewFormatter(cfg.Currency).Currency != cfg.Currency {
		errors = append(errors, fmt.Sprintf("unknown currency '%s'", cfg.Currency))
	}

	if len(errors) > 0 {
		return core.BudgetConfig{}, fmt.Errorf("budget configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return cfg, nil
}
