package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgetdash/internal/core"
	"budgetdash/internal/dashboard"
)

type summaryFlags struct {
	month       string
	granularity string
	categories  []string
	search      string
	asJSON      bool
}

func newSummaryCommand(s *settings) *cobra.Command {
	var f summaryFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard for one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.newApp(cmd)
			if err != nil {
				return err
			}
			v, err := a.summary(cmd, f)
			if err != nil {
				return err
			}
			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			return renderSummary(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().StringVar(&f.month, "month", "", "month as YYYY-M (default: month of the first dated transaction)")
	cmd.Flags().StringVar(&f.granularity, "granularity", string(core.Day), "time series bucket: day, week or month")
	cmd.Flags().StringArrayVar(&f.categories, "category", nil, "only show this category in the table (repeatable)")
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive text search over description and category")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the full view as JSON")

	return cmd
}

// summary parses the flags first so bad input fails before any fetch.
func (a *app) summary(cmd *cobra.Command, f summaryFlags) (dashboard.View, error) {
	var month core.YearMonth
	if strings.TrimSpace(f.month) != "" {
		ym, err := core.ParseYearMonth(f.month)
		if err != nil {
			return dashboard.View{}, err
		}
		month = ym
	}
	g, err := core.ParseGranularity(f.granularity)
	if err != nil {
		return dashboard.View{}, err
	}

	batch, err := a.loadLedger(cmd.Context())
	if err != nil {
		return dashboard.View{}, err
	}

	c := dashboard.NewController(a.budget, dashboard.WithClock(a.now), dashboard.WithLogger(a.logger))
	c.Load(batch.Transactions)
	if !month.IsZero() {
		if err := c.SetMonth(month); err != nil {
			return dashboard.View{}, err
		}
	}
	if err := c.SetGranularity(g); err != nil {
		return dashboard.View{}, err
	}
	if len(f.categories) > 0 {
		c.SetCategoryFilter(f.categories)
	}
	if f.search != "" {
		c.SetSearch(f.search)
	}

	if batch.Stats.Dropped() > 0 || batch.Stats.Reclassified > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: %d rows dropped, %d rows with unreadable dates counted as fixed\n",
			batch.Stats.Dropped(), batch.Stats.Reclassified)
	}
	return c.View(), nil
}
