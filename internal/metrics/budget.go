package metrics

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"budgetdash/internal/aggregate"
	"budgetdash/internal/core"
)

const (
	// MaxStreakMonths bounds how far back the compliance streak looks.
	MaxStreakMonths = 12

	// MaxSuggestionDistance is the largest edit distance accepted when
	// suggesting a configured category for an unbudgeted one.
	MaxSuggestionDistance = 3
)

// CategoryBudget compares one category's spend with its monthly budget and
// with the budget pro-rated to the elapsed part of the month.
type CategoryBudget struct {
	Category                string  `json:"category"`
	Amount                  float64 `json:"amount"`
	Budget                  float64 `json:"budget"`
	ProRatedBudget          float64 `json:"proRatedBudget"`
	PercentOfBudget         float64 `json:"percentOfBudget"`
	PercentOfProRatedBudget float64 `json:"percentOfProRatedBudget"`
	OverBudget              bool    `json:"overBudget"`
	OverProRatedBudget      bool    `json:"overProRatedBudget"`
}

// MonthProgress is the elapsed fraction of the month containing now,
// counting today as elapsed.
func MonthProgress(now time.Time) float64 {
	ym := core.YearMonthOf(now)
	return ratio(float64(now.Day()), float64(ym.Days()))
}

// ProRatedBudget scales budget by the month progress.
func ProRatedBudget(budget, progress float64) float64 {
	return finite(budget * progress)
}

// BudgetAdherence builds one row per spending category, largest spend first.
// Categories without a budget get a zero budget, so any spend flags both
// over-budget checks.
func BudgetAdherence(totals []core.CategoryAmount, budgets core.BudgetMap, progress float64) []CategoryBudget {
	out := make([]CategoryBudget, 0, len(totals))
	for _, c := range totals {
		budget := budgets[c.Name]
		pro := ProRatedBudget(budget, progress)
		out = append(out, CategoryBudget{
			Category:                c.Name,
			Amount:                  c.Amount,
			Budget:                  budget,
			ProRatedBudget:          pro,
			PercentOfBudget:         ratio(c.Amount, budget) * 100,
			PercentOfProRatedBudget: ratio(c.Amount, pro) * 100,
			OverBudget:              c.Amount > budget,
			OverProRatedBudget:      c.Amount > pro,
		})
	}
	slices.SortStableFunc(out, func(a, b CategoryBudget) int {
		switch {
		case a.Amount > b.Amount:
			return -1
		case a.Amount < b.Amount:
			return 1
		default:
			return 0
		}
	})
	return out
}

// ConsecutiveMonthsUnderBudget counts months, walking back from the given
// one, whose spend stays within the total budget. It stops at the first
// month over budget or after MaxStreakMonths months. Fixed expenses count
// toward every month.
func ConsecutiveMonthsUnderBudget(txs []core.Transaction, budgets core.BudgetMap, from core.YearMonth) int {
	limit := budgets.Total()
	streak := 0
	for i := 0; i < MaxStreakMonths; i++ {
		spent := aggregate.Total(FilterByMonth(txs, from.AddMonths(-i)))
		if spent > limit {
			break
		}
		streak++
	}
	return streak
}

// BudgetProgress is spend as a percentage of the monthly target, capped at
// 100. It is zero when the target is not positive.
func BudgetProgress(spend, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return min(ratio(spend, target)*100, 100)
}

// FixedCostSplit separates the spend of the fixed-cost category from the
// rest of the month's spend.
func FixedCostSplit(totals []core.CategoryAmount, fixedCategory string) (fixedCosts, rest float64) {
	var spend float64
	for _, c := range totals {
		spend += c.Amount
		if c.Name == fixedCategory {
			fixedCosts += c.Amount
		}
	}
	return fixedCosts, spend - fixedCosts
}

// Unbudgeted is a spending category with no configured budget.
type Unbudgeted struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// UnbudgetedCategories lists categories missing from budgets, each with the
// closest configured name when one is within MaxSuggestionDistance edits
// (compared case-insensitively). Matching against budgets stays exact.
func UnbudgetedCategories(totals []core.CategoryAmount, budgets core.BudgetMap) []Unbudgeted {
	names := budgets.Categories()
	sort.Strings(names)

	out := make([]Unbudgeted, 0)
	for _, c := range totals {
		if _, ok := budgets[c.Name]; ok {
			continue
		}
		out = append(out, Unbudgeted{
			Category:   c.Name,
			Amount:     c.Amount,
			Suggestion: closest(c.Name, names),
		})
	}
	return out
}

func closest(name string, candidates []string) string {
	best, bestDist := "", MaxSuggestionDistance+1
	lower := strings.ToLower(name)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
