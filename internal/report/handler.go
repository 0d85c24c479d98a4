// internal/report/handler.go
//
// Manager dashboards: daily summary and open check-ins.
//
// Both routes sit behind auth.RequireRole("manager"); date-range
// validation mirrors the history endpoint (both bounds required, not
// inverted, not in the future) and fails before any store access.
package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fieldtrak/fieldtrak/internal/api"
	"github.com/fieldtrak/fieldtrak/internal/timeutil"
)

// Handler serves the report routes.
type Handler struct {
	db *sqlx.DB
}

// NewHandler wraps an open pool.
func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

// Routes returns the router mounted at /api/reports.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/summary", h.handleSummary)
	r.Get("/open", h.handleOpen)
	return r
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startRaw, endRaw := q.Get("start_date"), q.Get("end_date")
	if startRaw == "" || endRaw == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "start_date and end_date are required")
		return
	}
	start, err := timeutil.ParseDate(startRaw)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := timeutil.ParseDate(endRaw)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "end_date must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "end_date precedes start_date")
		return
	}
	now := timeutil.Now()
	if start.After(now) || end.After(now) {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "date range may not be in the future")
		return
	}

	sum, err := DailySummary(r.Context(), h.db, start, end.Add(24*time.Hour))
	if err != nil {
		zap.S().Errorw("summary report failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "storage_unavailable", "storage temporarily unavailable")
		return
	}
	api.Success(w, http.StatusOK, sum)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	rows, err := OpenCheckins(r.Context(), h.db)
	if err != nil {
		zap.S().Errorw("open-checkins report failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "storage_unavailable", "storage temporarily unavailable")
		return
	}
	api.Success(w, http.StatusOK, rows)
}
