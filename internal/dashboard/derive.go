// Package dashboard holds the dashboard selection state and derives every
// view of it from (transactions, selection, configuration).
package dashboard

import (
	"fmt"
	"slices"
	"time"

	"budgetdash/internal/aggregate"
	"budgetdash/internal/core"
	"budgetdash/internal/metrics"
)

// Selection is the user-controlled part of the dashboard state.
type Selection struct {
	Month       core.YearMonth       `json:"month"`
	Granularity core.TimeGranularity `json:"granularity"`
	Categories  []string             `json:"categories"`
	Search      string               `json:"search"`
}

// DefaultSelection selects the month of now, day granularity and no filters.
func DefaultSelection(now time.Time) Selection {
	return Selection{
		Month:       core.YearMonthOf(now),
		Granularity: core.Day,
		Categories:  []string{},
	}
}

// Clone returns a copy that shares no memory with s.
func (s Selection) Clone() Selection {
	s.Categories = slices.Clone(s.Categories)
	if s.Categories == nil {
		s.Categories = []string{}
	}
	return s
}

// Display holds the headline figures as currency strings.
type Display struct {
	MonthTotal      string `json:"monthTotal"`
	Today           string `json:"today"`
	Yesterday       string `json:"yesterday"`
	TotalBudget     string `json:"totalBudget"`
	SurplusDeficit  string `json:"surplusDeficit"`
	HighestCategory string `json:"highestCategory"`
	Needs           string `json:"needs"`
	Wants           string `json:"wants"`
	FixedCosts      string `json:"fixedCosts"`
	TheRest         string `json:"theRest"`
	MonthlyTarget   string `json:"monthlyTarget"`
}

// View is everything the dashboard shows for one selection.
type View struct {
	Selection  Selection `json:"selection"`
	MonthLabel string    `json:"monthLabel"`

	MonthTotal      float64             `json:"monthTotal"`
	Today           float64             `json:"today"`
	Yesterday       float64             `json:"yesterday"`
	TotalBudget     float64             `json:"totalBudget"`
	SurplusDeficit  float64             `json:"surplusDeficit"`
	HighestCategory core.CategoryAmount `json:"highestCategory"`
	Streak          int                 `json:"streak"`

	Categories      []string                 `json:"categories"`
	SpendByCategory []core.CategoryAmount    `json:"spendByCategory"`
	CategoryShares  []metrics.CategoryShare  `json:"categoryShares"`
	NeedsWants      aggregate.NeedsWants     `json:"needsWants"`
	NeedsWantsShare metrics.NeedsWantsShare  `json:"needsWantsShare"`
	TimeSeries      map[string]float64       `json:"timeSeries"`
	Series          []aggregate.Point        `json:"series"`
	SeriesFixed     float64                  `json:"seriesFixed"`
	MonthProgress   float64                  `json:"monthProgress"`
	Budgets         []metrics.CategoryBudget `json:"budgets"`
	Unbudgeted      []metrics.Unbudgeted     `json:"unbudgeted"`
	BudgetProgress  float64                  `json:"budgetProgress"`
	FixedCosts      float64                  `json:"fixedCosts"`
	TheRest         float64                  `json:"theRest"`
	Rates           metrics.DailyRates       `json:"rates"`
	Months          []metrics.MonthOption    `json:"months"`

	Transactions []TableRow `json:"transactions"`
	Display      Display    `json:"display"`
}

// Derive computes the full view. It never modifies its inputs, and equal
// inputs give equal views. The only error is an invalid granularity.
func Derive(txs []core.Transaction, sel Selection, cfg core.BudgetConfig, now time.Time) (View, error) {
	if !sel.Granularity.IsValid() {
		return View{}, fmt.Errorf("%w: %q", core.ErrInvalidGranularity, sel.Granularity)
	}
	sel = sel.Clone()
	if sel.Month.IsZero() {
		sel.Month = core.YearMonthOf(now)
	}

	inMonth := metrics.FilterByMonth(txs, sel.Month)
	today := core.DateOf(now)
	yesterday := core.DateOf(now.AddDate(0, 0, -1))

	buckets, err := aggregate.GroupByTime(inMonth, sel.Granularity, sel.Month.Start())
	if err != nil {
		return View{}, err
	}
	seriesFixed, series := aggregate.SplitSeries(buckets)

	totals := aggregate.CategoryTotals(inMonth)
	if totals == nil {
		totals = []core.CategoryAmount{}
	}
	monthTotal := aggregate.Total(inMonth)
	totalBudget := cfg.Budgets.Total()
	needsWants := aggregate.NeedsVsWants(inMonth, cfg.NeedsWants)
	progress := metrics.MonthProgress(now)
	fixedCosts, rest := metrics.FixedCostSplit(totals, cfg.FixedCostCategory)
	f := cfg.Formatter()

	v := View{
		Selection:  sel,
		MonthLabel: sel.Month.Label(),

		MonthTotal:      monthTotal,
		Today:           aggregate.Total(metrics.FilterByDay(txs, today, now)),
		Yesterday:       aggregate.Total(metrics.FilterByDay(txs, yesterday, now)),
		TotalBudget:     totalBudget,
		SurplusDeficit:  metrics.SurplusDeficit(cfg.Budgets, monthTotal),
		HighestCategory: aggregate.HighestCategory(totals),
		Streak:          metrics.ConsecutiveMonthsUnderBudget(txs, cfg.Budgets, sel.Month),

		Categories:      aggregate.UniqueCategories(txs),
		SpendByCategory: totals,
		CategoryShares:  metrics.CategoryShares(totals),
		NeedsWants:      needsWants,
		NeedsWantsShare: metrics.Shares(needsWants),
		TimeSeries:      buckets,
		Series:          series,
		SeriesFixed:     seriesFixed,
		MonthProgress:   progress,
		Budgets:         metrics.BudgetAdherence(totals, cfg.Budgets, progress),
		Unbudgeted:      metrics.UnbudgetedCategories(totals, cfg.Budgets),
		BudgetProgress:  metrics.BudgetProgress(monthTotal, cfg.MonthlyTarget),
		FixedCosts:      fixedCosts,
		TheRest:         rest,
		Rates:           metrics.Rates(monthTotal, fixedCosts, cfg.MonthlyTarget, metrics.DayCounts(sel.Month, now)),
		Months:          metrics.MonthOptions(core.YearMonthOf(now)),
	}

	table := SortTable(FilterTable(inMonth, sel.Categories, sel.Search))
	v.Transactions = Rows(table, f)

	v.Display = Display{
		MonthTotal:      f.Format(v.MonthTotal),
		Today:           f.Format(v.Today),
		Yesterday:       f.Format(v.Yesterday),
		TotalBudget:     f.Format(v.TotalBudget),
		SurplusDeficit:  f.Format(v.SurplusDeficit),
		HighestCategory: f.Format(v.HighestCategory.Amount),
		Needs:           f.Format(needsWants.Needs),
		Wants:           f.Format(needsWants.Wants),
		FixedCosts:      f.Format(fixedCosts),
		TheRest:         f.Format(rest),
		MonthlyTarget:   f.Format(cfg.MonthlyTarget),
	}
	return v, nil
}

// InitialMonth is the month of the first dated transaction, or the month of
// now when there is none.
func InitialMonth(txs []core.Transaction, now time.Time) core.YearMonth {
	for _, t := range txs {
		if !t.IsFixedExpense && !t.Date.IsEmpty() {
			return core.YearMonthOf(t.Date.Time)
		}
	}
	return core.YearMonthOf(now)
}
