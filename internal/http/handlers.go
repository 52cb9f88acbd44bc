package http

import (
	"context"
	"encoding/json"
	"net/http"

	"budgetdash/internal/core"
	"budgetdash/internal/dashboard"
	"budgetdash/internal/ledger"
	"budgetdash/internal/log"
	"budgetdash/internal/metrics"
	"budgetdash/internal/middleware/trace"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type transactionsResponse struct {
	Month        core.YearMonth       `json:"month"`
	Count        int                  `json:"count"`
	Transactions []dashboard.TableRow `json:"transactions"`
}

type monthsResponse struct {
	Initial core.YearMonth        `json:"initial"`
	Months  []metrics.MonthOption `json:"months"`
}

type refreshResponse struct {
	Stats ledger.Stats `json:"stats"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.fetchTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeError(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v, ok := s.deriveView(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	v, ok := s.deriveView(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, transactionsResponse{
		Month:        v.Selection.Month,
		Count:        len(v.Transactions),
		Transactions: v.Transactions,
	})
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.loadOrFail(w, r)
	if !ok {
		return
	}
	now := s.now()
	writeJSON(w, r, http.StatusOK, monthsResponse{
		Initial: dashboard.InitialMonth(batch.Transactions, now),
		Months:  metrics.MonthOptions(core.YearMonthOf(now)),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher != nil {
		s.refresher.Invalidate()
	}
	batch, ok := s.loadOrFail(w, r)
	if !ok {
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger refreshed",
		log.FieldOperation, log.OpRefresh,
		log.FieldKept, batch.Stats.Kept,
		log.FieldDropped, batch.Stats.Dropped(),
		log.FieldReclassed, batch.Stats.Reclassified)
	writeJSON(w, r, http.StatusOK, refreshResponse{Stats: batch.Stats})
}

// deriveView parses the selection, loads the ledger and derives the view.
// On failure the error response has been written and ok is false.
func (s *Server) deriveView(w http.ResponseWriter, r *http.Request) (v dashboard.View, ok bool) {
	q, err := ParseDashboardQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return dashboard.View{}, false
	}

	batch, ok := s.loadOrFail(w, r)
	if !ok {
		return dashboard.View{}, false
	}

	now := s.now()
	sel := dashboard.DefaultSelection(now)
	sel.Month = q.Month
	if sel.Month.IsZero() {
		sel.Month = dashboard.InitialMonth(batch.Transactions, now)
	}
	sel.Granularity = q.Granularity
	sel.Categories = q.Categories
	sel.Search = q.Search

	v, err = dashboard.Derive(batch.Transactions, sel, s.budget, now)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return dashboard.View{}, false
	}
	return v, true
}

func (s *Server) loadOrFail(w http.ResponseWriter, r *http.Request) (ledger.Batch, bool) {
	batch, err := s.load(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Ledger load failed",
			log.FieldOperation, log.OpFetch,
			log.FieldError, err)
		writeError(w, r, http.StatusBadGateway, "ledger source unavailable")
		return ledger.Batch{}, false
	}
	return batch, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg, RequestID: trace.RequestID(r.Context())})
}
