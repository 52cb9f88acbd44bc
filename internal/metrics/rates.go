package metrics

import (
	"time"

	"budgetdash/internal/core"
)

// DayCount describes where a month stands relative to today.
type DayCount struct {
	InMonth int `json:"daysInMonth"`
	Elapsed int `json:"daysElapsed"`
	Left    int `json:"daysLeft"`
}

// DayCounts returns the day counts of the selected month. For the current
// month today counts as elapsed; any other month counts as fully elapsed.
func DayCounts(selected core.YearMonth, now time.Time) DayCount {
	days := selected.Days()
	elapsed := days
	if core.YearMonthOf(now) == selected {
		elapsed = now.Day()
	}
	return DayCount{InMonth: days, Elapsed: elapsed, Left: days - elapsed}
}

// DailyRates is the pace of spending against a monthly target.
type DailyRates struct {
	Days                   DayCount `json:"days"`
	SpendSoFar             float64  `json:"spendSoFar"`
	FixedCosts             float64  `json:"fixedCosts"`
	MonthlyTarget          float64  `json:"monthlyTarget"`
	AvgSpendPerDay         float64  `json:"avgSpendPerDay"`
	TargetSpendPerDay      float64  `json:"targetSpendPerDay"`
	PercentOverUnderTarget float64  `json:"percentOverUnderTarget"`
	SpendPerDayAllowed     float64  `json:"spendPerDayAllowed"`
}

// Rates computes the daily figures. Fixed costs are spread over the whole
// month while the remaining spend is averaged over the elapsed days.
// Positive PercentOverUnderTarget means spending below target.
// SpendPerDayAllowed is clamped to zero when the month is over or the target
// is already exceeded.
func Rates(spend, fixedCosts, target float64, days DayCount) DailyRates {
	r := DailyRates{
		Days:          days,
		SpendSoFar:    spend,
		FixedCosts:    fixedCosts,
		MonthlyTarget: target,
	}
	if days.InMonth > 0 && days.Elapsed > 0 {
		r.AvgSpendPerDay = finite(fixedCosts/float64(days.InMonth) + (spend-fixedCosts)/float64(days.Elapsed))
	}
	r.TargetSpendPerDay = ratio(target, float64(days.InMonth))
	r.PercentOverUnderTarget = ratio(r.TargetSpendPerDay-r.AvgSpendPerDay, r.TargetSpendPerDay) * 100
	r.SpendPerDayAllowed = max(ratio(target-spend, float64(days.Left)), 0)
	return r
}
