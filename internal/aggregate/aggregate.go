// Package aggregate groups transactions by category, by needs/wants and by
// time bucket. Every function is pure: inputs are never modified and equal
// inputs give equal outputs.
package aggregate

import (
	"budgetdash/internal/core"
)

// NeedsWants is the spend split between essential and discretionary categories.
type NeedsWants struct {
	Needs float64 `json:"needs"`
	Wants float64 `json:"wants"`
}

// Total returns needs plus wants.
func (nw NeedsWants) Total() float64 {
	return nw.Needs + nw.Wants
}

// Total sums the amount of every transaction.
func Total(txs []core.Transaction) float64 {
	var total float64
	for _, t := range txs {
		total += t.Amount
	}
	return total
}

// GroupByCategory sums amounts per category.
func GroupByCategory(txs []core.Transaction) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range txs {
		out[t.Category] += t.Amount
	}
	return out
}

// CategoryTotals is GroupByCategory as a slice in first-seen order.
func CategoryTotals(txs []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAmount{Name: t.Category})
		}
		out[i].Amount += t.Amount
	}
	return out
}

// NeedsVsWants partitions spend using the classification map; categories
// missing from the map count as wants.
func NeedsVsWants(txs []core.Transaction, nw core.NeedsWantsMap) NeedsWants {
	var out NeedsWants
	for _, t := range txs {
		if nw.Classify(t.Category) == core.Need {
			out.Needs += t.Amount
		} else {
			out.Wants += t.Amount
		}
	}
	return out
}

// UniqueCategories lists distinct categories in first-seen order.
func UniqueCategories(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, t := range txs {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	return out
}

// NoCategory is returned by HighestCategory when there is nothing to rank.
var NoCategory = core.CategoryAmount{Name: "None", Amount: 0}

// HighestCategory returns the category with the largest total. Ties go to the
// first one in the slice.
func HighestCategory(totals []core.CategoryAmount) core.CategoryAmount {
	if len(totals) == 0 {
		return NoCategory
	}
	best := totals[0]
	for _, c := range totals[1:] {
		if c.Amount > best.Amount {
			best = c
		}
	}
	return best
}
