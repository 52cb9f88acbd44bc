package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"budgetdash/internal/backend"
	"budgetdash/internal/config"
	"budgetdash/internal/core"
	"budgetdash/internal/ledger"
	"budgetdash/internal/log"
)

// app is what every subcommand needs: validated config, the budget
// configuration and a logger.
type app struct {
	cfg    *config.Config
	budget core.BudgetConfig
	logger *log.Logger
	now    func() time.Time
}

// newApp loads configuration from the environment and flags. Logs go to
// stderr so command output stays clean.
func (s *settings) newApp(cmd *cobra.Command) (*app, error) {
	cfg := config.Load()
	if s.logLevel != "" {
		cfg.LogLevel = s.logLevel
	}
	if s.budgetFile != "" {
		cfg.BudgetConfigFile = s.budgetFile
	}

	logger := log.New(log.Config{
		Handler: slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: log.ParseLevel(cfg.LogLevel)}),
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	budget, err := config.LoadBudget(cfg.BudgetConfigFile)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, budget: budget, logger: logger, now: s.now}, nil
}

func (a *app) openBackend(ctx context.Context) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(a.logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

func (a *app) normalizer() *ledger.Normalizer {
	year := a.cfg.ReferenceYear
	if year == 0 {
		year = a.now().Year()
	}
	return ledger.New(ledger.WithReferenceYear(year), ledger.WithLogger(a.logger))
}

// loadLedger opens the configured backend once and normalizes its rows.
func (a *app) loadLedger(ctx context.Context) (ledger.Batch, error) {
	res, err := a.openBackend(ctx)
	if err != nil {
		return ledger.Batch{}, err
	}
	defer func() {
		if err := res.Close(); err != nil {
			a.logger.Warn("Failed to close backend", log.FieldError, err)
		}
	}()
	return backend.NewLoader(res.Source, a.normalizer(), a.logger).Load(ctx)
}
