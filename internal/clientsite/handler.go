// internal/clientsite/handler.go
//
// GET /api/sites – active client sites for the site picker.
package clientsite

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fieldtrak/fieldtrak/internal/api"
)

// Handler serves the read-only site listing.
type Handler struct {
	db *sqlx.DB
}

// NewHandler wraps an open pool.
func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

// HandleList returns every active site.  Zero sites is an empty array,
// not an error.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	rows, err := AllActive(r.Context(), h.db)
	if err != nil {
		zap.S().Errorw("site listing failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "storage_unavailable", "storage temporarily unavailable")
		return
	}
	api.Success(w, http.StatusOK, rows)
}
