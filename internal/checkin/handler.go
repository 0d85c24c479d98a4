// internal/checkin/handler.go
//
// HTTP surface of the check-in lifecycle.
//
// Contract
// --------
//	POST /            – open a check-in       → 201, 400, 401, 409, 500
//	PUT  /checkout    – close the open record → 200, 401, 409, 500
//	GET  /active      – current open record or explicit none (never 404)
//	GET  /history     – records, optional ?start_date&end_date (400 on a
//	                    lone, inverted, or future-dated bound)
//
// The employee identity always comes from the request context placed
// there by the auth middleware; this layer never reads credentials and
// never trusts an id in the body.
package checkin

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldtrak/fieldtrak/internal/api"
	"github.com/fieldtrak/fieldtrak/internal/auth"
	"github.com/fieldtrak/fieldtrak/internal/requestinfo"
	"github.com/fieldtrak/fieldtrak/internal/timeutil"
)

// Handler adapts the lifecycle service to chi.
type Handler struct {
	svc *Service
}

// NewHandler wraps a service.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes returns the router mounted at /api/checkin.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleStart)
	r.Put("/checkout", h.handleCheckout)
	r.Get("/active", h.handleActive)
	r.Get("/history", h.handleHistory)
	return r
}

// startRequest is the POST body.  Coordinates are pointers so a missing
// field is distinguishable from a literal zero.
type startRequest struct {
	ClientID         string   `json:"client_id"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	DistanceFromSite *float64 `json:"distance_from_client"`
	Notes            string   `json:"notes"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, KindUnauthenticated.String(), "authentication required")
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, KindInvalidInput.String(), "malformed JSON body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		api.Fail(w, http.StatusBadRequest, KindInvalidInput.String(), "latitude and longitude are required")
		return
	}
	siteID, err := uuid.Parse(req.ClientID)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, KindInvalidInput.String(), "client_id must be a valid id")
		return
	}

	rec, err := h.svc.StartCheckin(r.Context(), ident.EmployeeID, StartInput{
		ClientSiteID:     siteID,
		Latitude:         *req.Latitude,
		Longitude:        *req.Longitude,
		DistanceFromSite: req.DistanceFromSite,
		Notes:            req.Notes,
	})
	if err != nil {
		failKind(w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, rec)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, KindUnauthenticated.String(), "authentication required")
		return
	}

	rec, err := h.svc.CompleteCheckout(r.Context(), ident.EmployeeID)
	if err != nil {
		failKind(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, rec)
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, KindUnauthenticated.String(), "authentication required")
		return
	}

	rec, err := h.svc.ActiveCheckin(r.Context(), ident.EmployeeID)
	if err != nil {
		failKind(w, r, err)
		return
	}
	// Absence is a normal state: 200 with an explicit null, never 404.
	api.Success(w, http.StatusOK, map[string]any{"active": rec})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, KindUnauthenticated.String(), "authentication required")
		return
	}

	q := r.URL.Query()
	var start, end *time.Time
	if v := q.Get("start_date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, KindInvalidInput.String(), "start_date must be YYYY-MM-DD")
			return
		}
		start = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, KindInvalidInput.String(), "end_date must be YYYY-MM-DD")
			return
		}
		end = &t
	}

	rows, err := h.svc.History(r.Context(), ident.EmployeeID, start, end)
	if err != nil {
		failKind(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, rows)
}

// failKind maps the error taxonomy onto HTTP statuses in one place and
// logs server-side faults with request audit fields.
func failKind(w http.ResponseWriter, r *http.Request, err error) {
	kind := KindOf(err)

	var status int
	switch kind {
	case KindInvalidInput:
		status = http.StatusBadRequest
	case KindAlreadyCheckedIn, KindNoActiveCheckin:
		status = http.StatusConflict
	case KindUnauthenticated:
		status = http.StatusUnauthorized
	default:
		kind = KindStorageUnavailable
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		fields := []any{"err", err, "path", r.URL.Path}
		if info := requestinfo.FromContext(r.Context()); info != nil {
			fields = append(fields,
				"ip", info.Geo.IP, "device", info.UA.Device)
		}
		zap.S().Errorw("checkin storage fault", fields...)
	}

	msg := "request failed"
	var e *Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	api.Fail(w, status, kind.String(), msg)
}
