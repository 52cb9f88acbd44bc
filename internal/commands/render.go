package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"budgetdash/internal/dashboard"
)

type summaryStyles struct {
	title lipgloss.Style
	label lipgloss.Style
	over  lipgloss.Style
	under lipgloss.Style
	muted lipgloss.Style
}

func newSummaryStyles(r *lipgloss.Renderer) summaryStyles {
	return summaryStyles{
		title: r.NewStyle().Bold(true).Underline(true),
		label: r.NewStyle().Width(22),
		over:  r.NewStyle().Foreground(lipgloss.Color("#ff5f5f")),
		under: r.NewStyle().Foreground(lipgloss.Color("#5fd75f")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#8a8a8a")),
	}
}

// renderSummary writes the headline figures, the budget table and the
// filtered transaction table. Colors are only emitted when w is a terminal.
func renderSummary(w io.Writer, v dashboard.View) error {
	r := lipgloss.NewRenderer(w)
	st := newSummaryStyles(r)
	d := v.Display

	var b strings.Builder
	b.WriteString(st.title.Render(v.MonthLabel) + "\n\n")

	line := func(label, value string) {
		b.WriteString(st.label.Render(label) + value + "\n")
	}
	surplus := st.under.Render(d.SurplusDeficit)
	if v.SurplusDeficit < 0 {
		surplus = st.over.Render(d.SurplusDeficit)
	}
	line("Spent this month", d.MonthTotal)
	line("Today", d.Today)
	line("Yesterday", d.Yesterday)
	line("Total budget", d.TotalBudget)
	line("Surplus / deficit", surplus)
	if v.HighestCategory.Name != "" {
		line("Top category", fmt.Sprintf("%s (%s)", v.HighestCategory.Name, d.HighestCategory))
	}
	line("Needs / wants", fmt.Sprintf("%s / %s (%.0f%% / %.0f%%)",
		d.Needs, d.Wants, v.NeedsWantsShare.NeedsPercent, v.NeedsWantsShare.WantsPercent))
	line("Under budget streak", fmt.Sprintf("%d months", v.Streak))
	line("Avg per day", fmt.Sprintf("%.0f (target %.0f, allowed %.0f)",
		v.Rates.AvgSpendPerDay, v.Rates.TargetSpendPerDay, v.Rates.SpendPerDayAllowed))
	line("Month progress", fmt.Sprintf("%.0f%%", v.MonthProgress*100))

	budgets := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Category", "Spent", "Budget", "Pro-rated", "Used")
	for _, cb := range v.Budgets {
		used := fmt.Sprintf("%.0f%%", cb.PercentOfBudget)
		if cb.OverBudget {
			used = st.over.Render(used)
		}
		budgets.Row(cb.Category, fmt.Sprintf("%.0f", cb.Amount), fmt.Sprintf("%.0f", cb.Budget),
			fmt.Sprintf("%.0f", cb.ProRatedBudget), used)
	}
	b.WriteString("\n" + budgets.Render() + "\n")

	for _, u := range v.Unbudgeted {
		note := fmt.Sprintf("%q has no budget", u.Category)
		if u.Suggestion != "" {
			note += fmt.Sprintf(", did you mean %q?", u.Suggestion)
		}
		b.WriteString(st.muted.Render(note) + "\n")
	}

	txs := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Category", "Description", "Amount")
	for _, row := range v.Transactions {
		txs.Row(row.DisplayDate, row.Category, row.Description, row.DisplayAmount)
	}
	b.WriteString("\n" + txs.Render() + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
