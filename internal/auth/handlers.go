// internal/auth/handlers.go
//
// Account endpoints: credential check plus token issuance, and the
// authenticated profile lookup.
//
// POST /api/auth/login  body {email, password}
//   → 200 {token, employee} on success
//   → 400 on a malformed body, 401 on unknown email or wrong password.
// GET  /api/me
//   → 200 {employee} for the bearer's own account
//   → 401 when the token's account no longer exists.
//
// Unknown email and wrong password produce byte-identical responses and
// both pay a bcrypt comparison, so neither the body nor the latency
// reveals which addresses hold accounts.
package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldtrak/fieldtrak/internal/api"
	"github.com/fieldtrak/fieldtrak/internal/employee"
	"github.com/fieldtrak/fieldtrak/internal/metrics"
)

// Handler issues tokens against the employee table.
type Handler struct {
	db     *sqlx.DB
	secret string
	ttl    time.Duration
}

// NewHandler wires the login endpoint.
func NewHandler(db *sqlx.DB, secret string, ttl time.Duration) *Handler {
	return &Handler{db: db, secret: secret, ttl: ttl}
}

// dummyHash is a valid bcrypt digest of a value no client can guess; it
// exists only so the unknown-email path still pays the comparison cost.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string           `json:"token"`
	Employee *employee.Record `json:"employee"`
}

// HandleLogin verifies credentials and returns a signed access token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "email and password are required")
		return
	}

	acct, err := employee.ByEmail(r.Context(), h.db, req.Email)
	if err != nil {
		zap.S().Errorw("login account lookup failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "storage_unavailable", "storage temporarily unavailable")
		return
	}
	// Always run the bcrypt comparison, against a throwaway hash when no
	// account matched, so an unknown email costs the same as a wrong
	// password.
	hash := dummyHash
	if acct != nil {
		hash = acct.PasswordHash
	}
	match := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) == nil
	if acct == nil || !match {
		metrics.LoginFailureTotal.Inc()
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "incorrect email or password")
		return
	}

	token, err := GenerateToken(Identity{EmployeeID: acct.ID, Role: acct.Role}, h.secret, h.ttl)
	if err != nil {
		zap.S().Errorw("token issuance failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal", "could not issue token")
		return
	}

	api.Success(w, http.StatusOK, loginResponse{Token: token, Employee: acct})
}

// HandleMe returns the bearer's own account record.  Tokens outlive
// account deletion, so a valid token with no backing row is a 401, not a
// 404.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := FromContext(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	acct, err := employee.ByID(r.Context(), h.db, ident.EmployeeID)
	if err != nil {
		zap.S().Errorw("profile lookup failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "storage_unavailable", "storage temporarily unavailable")
		return
	}
	if acct == nil {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "account no longer exists")
		return
	}
	api.Success(w, http.StatusOK, acct)
}
