package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budgetdash/internal/backend"
	"budgetdash/internal/cache"
	apphttp "budgetdash/internal/http"
	"budgetdash/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.newApp(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger.WithComponent(log.ComponentApp)

	res, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Failed to close backend", log.FieldError, err)
		}
	}()

	cached := backend.NewCachedLedger(backend.NewLoader(res.Source, a.normalizer(), a.logger), a.cfg.CacheTTL, a.logger)
	caches := cache.NewManager(a.logger)
	caches.Register(cached.Cache())

	srv := apphttp.NewServer(a.cfg.Addr(), apphttp.Options{
		Ledger:    cached,
		Refresher: cached,
		Ready:     res.Ping,
		Budget:    a.budget,
		Now:       a.now,
		Logger:    a.logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		caches.Run(gctx, max(a.cfg.CacheTTL, time.Minute))
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting budgetdash server",
			log.FieldOperation, log.OpStartup,
			"addr", srv.Addr,
			"backend", a.cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
