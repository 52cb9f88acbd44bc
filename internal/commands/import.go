package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budgetdash/internal/sheets/memory"
	"budgetdash/internal/storage"
)

func newImportCommand(s *settings) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV ledger export into the SQLite ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.newApp(cmd)
			if err != nil {
				return err
			}
			return a.importCSV(cmd, csvPath)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with a Date,Category,Amount,Description header (required)")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

// importCSV stores rows as they are; normalization runs again on every read.
func (a *app) importCSV(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, err := memory.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	repo, err := storage.NewSQLiteRepository(a.cfg.SQLiteDBPath, a.logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	n, err := repo.ImportRows(cmd.Context(), rows)
	if err != nil {
		return err
	}

	stats := a.normalizer().Normalize(rows).Stats
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s (%d usable, %d will be skipped, %d with unreadable dates)\n",
		n, a.cfg.SQLiteDBPath, stats.Kept, stats.Dropped(), stats.Reclassified)
	return nil
}
