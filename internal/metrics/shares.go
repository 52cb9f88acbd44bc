package metrics

import (
	"budgetdash/internal/aggregate"
	"budgetdash/internal/core"
)

// WantsWarnPercent is the wants share above which spending is flagged.
const WantsWarnPercent = 30

// NeedsWantsShare expresses the needs/wants split as percentages.
type NeedsWantsShare struct {
	NeedsPercent float64 `json:"needsPercent"`
	WantsPercent float64 `json:"wantsPercent"`
	WantsHigh    bool    `json:"wantsHigh"`
}

// Shares returns the percentages of nw, both zero when there is no spend.
func Shares(nw aggregate.NeedsWants) NeedsWantsShare {
	total := nw.Total()
	s := NeedsWantsShare{
		NeedsPercent: ratio(nw.Needs, total) * 100,
		WantsPercent: ratio(nw.Wants, total) * 100,
	}
	s.WantsHigh = s.WantsPercent > WantsWarnPercent
	return s
}

// CategoryShare is one slice of the category breakdown.
type CategoryShare struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
}

// CategoryShares returns each category's percentage of the combined total,
// in the order given.
func CategoryShares(totals []core.CategoryAmount) []CategoryShare {
	var total float64
	for _, c := range totals {
		total += c.Amount
	}
	out := make([]CategoryShare, 0, len(totals))
	for _, c := range totals {
		out = append(out, CategoryShare{Category: c.Name, Amount: c.Amount, Percent: ratio(c.Amount, total) * 100})
	}
	return out
}

// MonthOption is one entry of a month picker.
type MonthOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MonthOptionCount is how many months MonthOptions lists.
const MonthOptionCount = 12

// MonthOptions lists MonthOptionCount months ending at from, newest first.
func MonthOptions(from core.YearMonth) []MonthOption {
	out := make([]MonthOption, 0, MonthOptionCount)
	for i := 0; i < MonthOptionCount; i++ {
		ym := from.AddMonths(-i)
		out = append(out, MonthOption{Value: ym.String(), Label: ym.Label()})
	}
	return out
}
