// internal/checkin/service_test.go
//
// Lifecycle tests against an in-memory store that enforces the same
// uniqueness semantics as the real table, so the concurrency properties
// can be exercised without a database.
//
// Run: go test ./internal/checkin -race -v

package checkin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore mimics the checkin table: a mutex plays the role of the
// storage engine's statement-level atomicity, and the open-row check
// inside Insert plays the role of the UNIQUE constraint.
type memStore struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*Record
	queries int // HistoryByEmployee call count, for fail-fast assertions
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uuid.UUID]*Record)}
}

func (m *memStore) Insert(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.EmployeeID == rec.EmployeeID && r.Status == StatusOpen {
			return ErrOpenExists
		}
	}
	cp := *rec
	m.rows[rec.ID] = &cp
	return nil
}

func (m *memStore) CloseOpen(_ context.Context, employeeID uuid.UUID, at time.Time) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && r.Status == StatusOpen {
			r.Status = StatusClosed
			t := at
			r.CheckoutTime = &t
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNoOpenRecord
}

func (m *memStore) ActiveByEmployee(_ context.Context, employeeID uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && r.Status == StatusOpen {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) HistoryByEmployee(_ context.Context, employeeID uuid.UUID, from, to *time.Time) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	out := make([]Record, 0, len(m.rows))
	for _, r := range m.rows {
		if r.EmployeeID != employeeID {
			continue
		}
		if from != nil && r.CheckinTime.Before(*from) {
			continue
		}
		if to != nil && !r.CheckinTime.Before(*to) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *memStore) openCount(employeeID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && r.Status == StatusOpen {
			n++
		}
	}
	return n
}

// allSites accepts every site id, anchored at a fixed point.
type allSites struct{}

func (allSites) Locate(context.Context, uuid.UUID) (float64, float64, bool, error) {
	return 41.8781, -87.6298, true, nil
}

func validInput() StartInput {
	return StartInput{
		ClientSiteID: uuid.New(),
		Latitude:     41.8781,
		Longitude:    -87.6298,
	}
}

// N concurrent check-ins with no prior open record: exactly one wins, the
// rest fail AlreadyCheckedIn, and exactly one open row exists afterward.
func TestConcurrentStartCheckinSingleWinner(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, allSites{})
	emp := uuid.New()

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.StartCheckin(context.Background(), emp, validInput())
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case KindOf(err) == KindAlreadyCheckedIn:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one start must win")
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, store.openCount(emp))
}

// Two concurrent checkouts against one open record: one success, one
// NoActiveCheckin, one closed row with one checkout_time.
func TestConcurrentCheckoutIdempotent(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, allSites{})
	emp := uuid.New()

	_, err := svc.StartCheckin(context.Background(), emp, validInput())
	require.NoError(t, err)

	results := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CompleteCheckout(context.Background(), emp)
		}(i)
	}
	wg.Wait()

	var successes, noActive int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case KindOf(err) == KindNoActiveCheckin:
			noActive++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, noActive)
	assert.Equal(t, 0, store.openCount(emp))
}

func TestLifecycleRoundTrip(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 1, 15, 9, 15, 0, 0, time.UTC)
	svc := NewService(store, allSites{}).WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})
	emp := uuid.New()

	opened, err := svc.StartCheckin(context.Background(), emp, validInput())
	require.NoError(t, err)
	require.Equal(t, StatusOpen, opened.Status)

	closed, err := svc.CompleteCheckout(context.Background(), emp)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, closed.Status)
	require.NotNil(t, closed.CheckoutTime)
	assert.True(t, closed.CheckoutTime.After(closed.CheckinTime),
		"checkout_time must follow checkin_time")

	active, err := svc.ActiveCheckin(context.Background(), emp)
	require.NoError(t, err)
	assert.Nil(t, active, "round trip must end with no active check-in")
}

// A missing distance is derived from the site's coordinates; a supplied
// one is stored verbatim.
func TestStartCheckinDistance(t *testing.T) {
	svc := NewService(newMemStore(), allSites{})

	rec, err := svc.StartCheckin(context.Background(), uuid.New(), validInput())
	require.NoError(t, err)
	require.NotNil(t, rec.DistanceFromSite)
	assert.InDelta(t, 0, *rec.DistanceFromSite, 0.5,
		"checking in at the site itself should measure ~0 m")

	in := validInput()
	measured := 12.5
	in.DistanceFromSite = &measured
	rec, err = svc.StartCheckin(context.Background(), uuid.New(), in)
	require.NoError(t, err)
	require.NotNil(t, rec.DistanceFromSite)
	assert.Equal(t, measured, *rec.DistanceFromSite)
}

func TestStartCheckinValidation(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, allSites{})
	emp := uuid.New()

	cases := []struct {
		name string
		in   StartInput
	}{
		{"missing site", StartInput{Latitude: 1, Longitude: 1}},
		{"latitude out of range", StartInput{ClientSiteID: uuid.New(), Latitude: 91, Longitude: 0}},
		{"longitude out of range", StartInput{ClientSiteID: uuid.New(), Latitude: 0, Longitude: -181}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.StartCheckin(context.Background(), emp, c.in)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
	assert.Equal(t, 0, store.openCount(emp), "failed validation must not mutate")
}

func TestStartCheckinUnknownSite(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, noSites{})
	_, err := svc.StartCheckin(context.Background(), uuid.New(), validInput())
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

type noSites struct{}

func (noSites) Locate(context.Context, uuid.UUID) (float64, float64, bool, error) {
	return 0, 0, false, nil
}

// Invalid ranges must fail before any store access.
func TestHistoryRangeValidation(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, allSites{})
	emp := uuid.New()

	day := func(s string) *time.Time {
		t2, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		require.NoError(t, err)
		return &t2
	}
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)

	cases := []struct {
		name       string
		start, end *time.Time
	}{
		{"end before start", day("2026-01-20"), day("2026-01-10")},
		{"future range", &tomorrow, &tomorrow},
		{"lone start", day("2026-01-10"), nil},
		{"lone end", nil, day("2026-01-20")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.History(context.Background(), emp, c.start, c.end)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
	assert.Equal(t, 0, store.queries, "validation failures must not touch the store")
}

func TestHistoryUnboundedAndOrdering(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, allSites{})
	emp := uuid.New()

	_, err := svc.StartCheckin(context.Background(), emp, validInput())
	require.NoError(t, err)
	_, err = svc.CompleteCheckout(context.Background(), emp)
	require.NoError(t, err)

	rows, err := svc.History(context.Background(), emp, nil, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
