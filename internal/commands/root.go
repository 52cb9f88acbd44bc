// Package commands implements the budgetdash command line.
package commands

import (
	"time"

	"github.com/spf13/cobra"
)

type settings struct {
	now        func() time.Time
	logLevel   string
	budgetFile string
}

// Option configures the root command.
type Option func(*settings)

// WithClock replaces time.Now for every subcommand.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(opts ...Option) *cobra.Command {
	s := &settings{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	rootCmd := &cobra.Command{
		Use:   "budgetdash",
		Short: "Personal finance dashboard over a spreadsheet ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&s.budgetFile, "budget-config", "", "budget configuration file (overrides BUDGET_CONFIG_FILE)")

	rootCmd.AddCommand(
		newServeCommand(s),
		newSummaryCommand(s),
		newMonthsCommand(s),
		newImportCommand(s),
	)

	return rootCmd
}
