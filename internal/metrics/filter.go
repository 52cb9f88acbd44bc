// Package metrics derives budgeting figures from normalized transactions:
// date filters, surplus/deficit, pro-rated adherence, streaks and daily
// spending rates. Functions never modify their inputs and never return NaN
// or infinite values.
package metrics

import (
	"math"
	"time"

	"budgetdash/internal/core"
)

// MonthStart is midnight UTC of the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return core.YearMonthOf(t).Start()
}

// MonthEnd is the last instant of the month containing t.
func MonthEnd(t time.Time) time.Time {
	return core.YearMonthOf(t).End()
}

// FilterByDateRange keeps transactions dated within [start, end]. Fixed
// expenses pass every range.
func FilterByDateRange(txs []core.Transaction, start, end time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.IsFixedExpense {
			out = append(out, t)
			continue
		}
		if t.Date.IsEmpty() {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterByMonth is FilterByDateRange over a whole calendar month.
func FilterByMonth(txs []core.Transaction, ym core.YearMonth) []core.Transaction {
	return FilterByDateRange(txs, ym.Start(), ym.End())
}

// FilterByDay keeps transactions dated on day. Fixed expenses are kept only
// when day is the calendar day of now, so "today" carries recurring costs
// and every other day does not.
func FilterByDay(txs []core.Transaction, day core.Date, now time.Time) []core.Transaction {
	today := day.SameDay(core.DateOf(now))
	out := make([]core.Transaction, 0)
	for _, t := range txs {
		if t.IsFixedExpense {
			if today {
				out = append(out, t)
			}
			continue
		}
		if t.Date.SameDay(day) {
			out = append(out, t)
		}
	}
	return out
}

// SurplusDeficit is the total configured budget minus spend. Positive means
// surplus.
func SurplusDeficit(budgets core.BudgetMap, spend float64) float64 {
	return budgets.Total() - spend
}

// finite coerces NaN and ±Inf to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ratio returns num/den, or zero when den is zero or the result is not finite.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finite(num / den)
}
