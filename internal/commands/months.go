package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetdash/internal/core"
	"budgetdash/internal/dashboard"
	"budgetdash/internal/metrics"
)

func newMonthsCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "months",
		Short: "List the selectable months, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.newApp(cmd)
			if err != nil {
				return err
			}
			batch, err := a.loadLedger(cmd.Context())
			if err != nil {
				return err
			}

			now := a.now()
			initial := dashboard.InitialMonth(batch.Transactions, now)
			for _, m := range metrics.MonthOptions(core.YearMonthOf(now)) {
				marker := " "
				if m.Value == initial.String() {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-8s %s\n", marker, m.Value, m.Label)
			}
			return nil
		},
	}
}
