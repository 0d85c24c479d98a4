// internal/checkin/handler_test.go
//
// HTTP contract tests.  The service sits on the in-memory store from
// service_test.go, so these exercise the full decode → service → respond
// path without a database.
//
// Run: go test ./internal/checkin -run TestHandle -v

package checkin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldtrak/fieldtrak/internal/auth"
)

func newTestRouter(store *memStore) http.Handler {
	return NewHandler(NewService(store, allSites{})).Routes()
}

func authed(r *http.Request, employeeID uuid.UUID) *http.Request {
	ctx := auth.WithIdentity(r.Context(), auth.Identity{
		EmployeeID: employeeID,
		Role:       auth.RoleEmployee,
	})
	return r.WithContext(ctx)
}

func startBody(siteID uuid.UUID) string {
	return fmt.Sprintf(`{"client_id":%q,"latitude":41.8781,"longitude":-87.6298}`, siteID)
}

func TestHandleStartCreates(t *testing.T) {
	router := newTestRouter(newMemStore())
	emp := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(startBody(uuid.New())))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authed(req, emp))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Data Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, emp, resp.Data.EmployeeID)
	assert.Equal(t, StatusOpen, resp.Data.Status)
	assert.Nil(t, resp.Data.CheckoutTime)
}

func TestHandleStartSecondOpenConflicts(t *testing.T) {
	router := newTestRouter(newMemStore())
	emp := uuid.New()

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(startBody(uuid.New())))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authed(req, emp))
		require.Equal(t, want, rr.Code, "attempt %d: %s", i+1, rr.Body.String())
	}
}

func TestHandleStartRejectsBadBodies(t *testing.T) {
	router := newTestRouter(newMemStore())
	emp := uuid.New()

	cases := []struct {
		name, body string
	}{
		{"malformed json", `{"client_id":`},
		{"missing coordinates", fmt.Sprintf(`{"client_id":%q}`, uuid.New())},
		{"bad site id", `{"client_id":"not-a-uuid","latitude":1,"longitude":1}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(c.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, authed(req, emp))
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestHandleStartRequiresIdentity(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(startBody(uuid.New())))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleCheckoutWithoutOpenRecord(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodPut, "/checkout", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authed(req, uuid.New()))

	require.Equal(t, http.StatusConflict, rr.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, KindNoActiveCheckin.String(), resp.Error.Code)
}

func TestHandleActiveNoneIsExplicitNull(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/active", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authed(req, uuid.New()))

	require.Equal(t, http.StatusOK, rr.Code, "absence is a state, not an error")

	var resp struct {
		Data struct {
			Active *Record `json:"active"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Nil(t, resp.Data.Active)
}

func TestHandleActiveAfterStart(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)
	emp := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(startBody(uuid.New())))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authed(req, emp))
	require.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/active", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, authed(req, emp))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data struct {
			Active *Record `json:"active"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Active)
	assert.Equal(t, emp, resp.Data.Active.EmployeeID)
}

func TestHandleHistoryDateValidation(t *testing.T) {
	router := newTestRouter(newMemStore())
	emp := uuid.New()

	cases := []struct {
		name, query string
	}{
		{"unparsable start", "?start_date=15-01-2026&end_date=2026-01-20"},
		{"unparsable end", "?start_date=2026-01-15&end_date=Jan+20"},
		{"lone start", "?start_date=2026-01-15"},
		{"inverted range", "?start_date=2026-01-20&end_date=2026-01-10"},
		{"future range", "?start_date=2031-01-01&end_date=2031-01-02"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/history"+c.query, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, authed(req, emp))
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestHandleHistoryUnbounded(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)
	emp := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(startBody(uuid.New())))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authed(req, emp))
	require.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/history", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, authed(req, emp))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}
