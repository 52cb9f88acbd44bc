// Package http serves the derived dashboard as a read-only JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetdash/internal/core"
	"budgetdash/internal/ledger"
	"budgetdash/internal/log"
	"budgetdash/internal/middleware/ratelimit"
	"budgetdash/internal/middleware/security"
	"budgetdash/internal/middleware/trace"
)

// DefaultFetchTimeout bounds one ledger load.
const DefaultFetchTimeout = 10 * time.Second

// Ledger loads the normalized transactions.
type Ledger interface {
	Load(ctx context.Context) (ledger.Batch, error)
}

// Refresher drops cached ledger rows.
type Refresher interface {
	Invalidate()
}

// Options wires the server's collaborators.
type Options struct {
	Ledger Ledger
	// Refresher is optional; without it refresh only reloads.
	Refresher Refresher
	// Ready is optional; without it the server is always ready.
	Ready        func(ctx context.Context) error
	Budget       core.BudgetConfig
	Now          func() time.Time
	Logger       *log.Logger
	RateLimit    ratelimit.Config
	FetchTimeout time.Duration
}

// Server is an http.Server with the dashboard routes mounted.
type Server struct {
	http.Server

	ledger       Ledger
	refresher    Refresher
	ready        func(ctx context.Context) error
	budget       core.BudgetConfig
	now          func() time.Time
	logger       *log.Logger
	limiter      *ratelimit.Limiter
	fetchTimeout time.Duration

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	s := &Server{
		ledger:       opts.Ledger,
		refresher:    opts.Refresher,
		ready:        opts.Ready,
		budget:       opts.Budget,
		now:          opts.Now,
		logger:       opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(opts.RateLimit),
		fetchTimeout: opts.FetchTimeout,
	}

	ips := security.NewClientIPResolver()
	limited := s.limiter.Middleware(ips.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, ips.ClientIP(r),
			log.FieldPath, r.URL.Path)
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/months", s.handleMonths)
	mux.Handle("POST /api/refresh", limited(http.HandlerFunc(s.handleRefresh)))

	var handler http.Handler = mux
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = trace.NewMiddleware(opts.Logger, ips.ClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.FetchTimeout + 5*time.Second,
		IdleTimeout:       time.Minute,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// load fetches the ledger under the fetch timeout.
func (s *Server) load(ctx context.Context) (ledger.Batch, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	return s.ledger.Load(ctx)
}
