package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"category"`
	Amount float64 `json:"amount"`
}

// BudgetConfig is the static reference data every aggregation reads.
// It is passed explicitly so alternate configurations can be swapped in.
type BudgetConfig struct {
	Budgets           BudgetMap
	NeedsWants        NeedsWantsMap
	MonthlyTarget     float64 // tentative overall monthly budget for daily-rate math
	FixedCostCategory string  // category treated as fixed housing/utility cost
	Currency          string
}

// DefaultBudgetConfig returns the built-in sample configuration.
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		Budgets: BudgetMap{
			"Rent & Utilities": 3000,
			"Subscriptions":    1500,
			"Eating Out":       1000,
			"Groceries":        500,
			"Transit":          300,
			"Travel":           1000,
			"Gifts":            200,
			"Misc":             500,
		},
		NeedsWants: NeedsWantsMap{
			"Rent & Utilities": Need,
			"Groceries":        Need,
			"Transit":          Need,
			"Subscriptions":    Want,
			"Eating Out":       Want,
			"Travel":           Want,
			"Gifts":            Want,
			"Misc":             Want,
		},
		MonthlyTarget:     50000,
		FixedCostCategory: "Rent & Utilities",
		Currency:          DefaultCurrency,
	}
}

// Formatter returns the currency formatter for this configuration.
func (c BudgetConfig) Formatter() Formatter {
	return NewFormatter(c.Currency)
}
