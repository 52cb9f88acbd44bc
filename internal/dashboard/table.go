package dashboard

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"budgetdash/internal/core"
)

// NoDate is shown in place of a date for fixed expenses.
const NoDate = "N/A"

// DisplayDateLayout is the layout of TableRow.DisplayDate.
const DisplayDateLayout = "Jan 2, 2006"

// TableRow is a transaction ready for a table, with display strings.
type TableRow struct {
	core.Transaction
	DisplayDate   string `json:"displayDate"`
	DisplayAmount string `json:"displayAmount"`
}

// FilterTable applies the category set, then the search text. An empty
// category set keeps every category. The search is a case-insensitive
// substring match on description or category.
func FilterTable(txs []core.Transaction, categories []string, search string) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(search))
	for _, t := range txs {
		if len(categories) > 0 && !slices.Contains(categories, t.Category) {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(t.Description), needle) &&
			!strings.Contains(fold.String(t.Category), needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTable returns a sorted copy: fixed expenses first by category then
// description, then dated transactions newest first. Equal rows keep their
// input order.
func SortTable(txs []core.Transaction) []core.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, compareRows)
	return out
}

func compareRows(a, b core.Transaction) int {
	switch {
	case a.IsFixedExpense && !b.IsFixedExpense:
		return -1
	case !a.IsFixedExpense && b.IsFixedExpense:
		return 1
	case a.IsFixedExpense:
		if c := strings.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return strings.Compare(a.Description, b.Description)
	default:
		return b.Date.Compare(a.Date.Time)
	}
}

// Rows formats transactions for display.
func Rows(txs []core.Transaction, f core.Formatter) []TableRow {
	out := make([]TableRow, 0, len(txs))
	for _, t := range txs {
		date := NoDate
		if !t.Date.IsEmpty() {
			date = t.Date.Format(DisplayDateLayout)
		}
		out = append(out, TableRow{Transaction: t, DisplayDate: date, DisplayAmount: f.Format(t.Amount)})
	}
	return out
}
