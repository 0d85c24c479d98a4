// internal/checkin/service.go
//
// Check-in lifecycle manager.
//
// Context
// -------
// This service owns the invariant "an employee has at most one open
// check-in at any time" and the transitions none → open → closed.  It is
// invoked per-request, holds no in-memory record state, and re-derives
// every decision from the store at call time; the only shared mutable
// resource is the checkin table.
//
// The conflict policy for StartCheckin is belt and braces: an advisory
// pre-check gives fast, friendly rejections, and the store's uniqueness
// constraint is the backstop that makes the check-then-insert sequence
// atomic with respect to concurrent callers for the same employee.  Both
// detection paths surface the identical AlreadyCheckedIn error, so callers
// cannot tell (and must not care) which one fired.
//
// Cross-employee operations are fully independent; no ordering is needed
// or provided between different employee ids.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package checkin

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldtrak/fieldtrak/internal/geo"
	"github.com/fieldtrak/fieldtrak/internal/metrics"
	"github.com/fieldtrak/fieldtrak/internal/timeutil"
)

// Store is the persistence surface the lifecycle manager needs.  Satisfied
// by *Repository; tests substitute an in-memory fake that enforces the
// same uniqueness semantics.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	CloseOpen(ctx context.Context, employeeID uuid.UUID, at time.Time) (*Record, error)
	ActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (*Record, error)
	HistoryByEmployee(ctx context.Context, employeeID uuid.UUID, from, to *time.Time) ([]Record, error)
}

// SiteDirectory resolves a client site to its coordinates.  ok is false
// for an unknown or archived site.  Satisfied by clientsite.Directory.
type SiteDirectory interface {
	Locate(ctx context.Context, id uuid.UUID) (lat, lng float64, ok bool, err error)
}

// StartInput carries the client-supplied fields of a check-in request.
// Coordinates are stored verbatim; the service validates the envelope,
// never the geometry.
type StartInput struct {
	ClientSiteID     uuid.UUID
	Latitude         float64  `validate:"latitude"`
	Longitude        float64  `validate:"longitude"`
	DistanceFromSite *float64 `validate:"omitempty,gte=0"`
	Notes            string   `validate:"max=1024"`
}

var inputValidator = validator.New()

// Service is the check-in lifecycle manager.
type Service struct {
	store Store
	sites SiteDirectory
	now   func() time.Time
}

// NewService wires the manager.  now defaults to timeutil.Now (UTC,
// second resolution) and exists as a knob for tests only.
func NewService(store Store, sites SiteDirectory) *Service {
	return &Service{store: store, sites: sites, now: timeutil.Now}
}

// WithClock overrides the time source.  Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// StartCheckin creates exactly one new open record iff the employee holds
// none.  On conflict nothing is mutated and AlreadyCheckedIn is returned,
// whether the conflict was seen by the advisory pre-check or by the
// constraint at insert time.
func (s *Service) StartCheckin(ctx context.Context, employeeID uuid.UUID, in StartInput) (*Record, error) {
	if employeeID == uuid.Nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "missing employee identity"}
	}
	if in.ClientSiteID == uuid.Nil {
		return nil, invalidf("client site id is required")
	}
	if err := inputValidator.Struct(in); err != nil {
		return nil, invalidf("invalid check-in fields: %v", err)
	}

	siteLat, siteLng, ok, err := s.sites.Locate(ctx, in.ClientSiteID)
	if err != nil {
		return nil, storage(err)
	}
	if !ok {
		return nil, invalidf("unknown client site %s", in.ClientSiteID)
	}

	// Clients that already measured their distance send it; otherwise
	// derive it from the site's coordinates.
	dist := in.DistanceFromSite
	if dist == nil {
		d := geo.DistanceMeters(in.Latitude, in.Longitude, siteLat, siteLng)
		dist = &d
	}

	// Advisory pre-check.  Races are fine; the constraint below is the
	// authority.
	open, err := s.store.ActiveByEmployee(ctx, employeeID)
	if err != nil {
		return nil, storage(err)
	}
	if open != nil {
		metrics.CheckinConflictTotal.Inc()
		return nil, conflict("employee already has an open check-in")
	}

	rec := &Record{
		ID:               uuid.New(),
		EmployeeID:       employeeID,
		ClientSiteID:     in.ClientSiteID,
		Status:           StatusOpen,
		CheckinTime:      s.now(),
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		DistanceFromSite: dist,
		Notes:            in.Notes,
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrOpenExists) {
			metrics.CheckinConflictTotal.Inc()
			return nil, conflict("employee already has an open check-in")
		}
		return nil, storage(err)
	}

	metrics.CheckinTotal.Inc()
	metrics.OpenCheckins.Inc()
	zap.S().Infow("check-in opened",
		"employee", employeeID, "site", in.ClientSiteID, "record", rec.ID)
	return rec, nil
}

// CompleteCheckout closes the employee's open record.  Zero matched rows
// means already closed or never opened; that is a NoActiveCheckin result,
// not a fatal error.
func (s *Service) CompleteCheckout(ctx context.Context, employeeID uuid.UUID) (*Record, error) {
	if employeeID == uuid.Nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "missing employee identity"}
	}

	rec, err := s.store.CloseOpen(ctx, employeeID, s.now())
	if err != nil {
		if errors.Is(err, ErrNoOpenRecord) {
			metrics.CheckoutNoopTotal.Inc()
			return nil, noActive("no active check-in to close")
		}
		return nil, storage(err)
	}

	metrics.CheckoutTotal.Inc()
	metrics.OpenCheckins.Dec()
	zap.S().Infow("check-in closed",
		"employee", employeeID, "record", rec.ID)
	return rec, nil
}

// ActiveCheckin returns the current open record, or (nil, nil) when the
// employee is not checked in.  Never an error for the "none" case.
func (s *Service) ActiveCheckin(ctx context.Context, employeeID uuid.UUID) (*Record, error) {
	if employeeID == uuid.Nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "missing employee identity"}
	}
	rec, err := s.store.ActiveByEmployee(ctx, employeeID)
	if err != nil {
		return nil, storage(err)
	}
	return rec, nil
}

// History returns the employee's records newest-first.  Date bounds are
// optional but mutually required; an inverted or future-dated range fails
// before any store access.  The end date is widened to the following
// midnight so the whole day is included.
func (s *Service) History(ctx context.Context, employeeID uuid.UUID, start, end *time.Time) ([]Record, error) {
	if employeeID == uuid.Nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "missing employee identity"}
	}
	if (start == nil) != (end == nil) {
		return nil, invalidf("start_date and end_date must be supplied together")
	}

	var from, to *time.Time
	if start != nil {
		now := s.now()
		if end.Before(*start) {
			return nil, invalidf("end_date precedes start_date")
		}
		if start.After(now) || end.After(now) {
			return nil, invalidf("date range may not be in the future")
		}
		f := *start
		t := end.AddDate(0, 0, 1) // exclusive upper bound
		from, to = &f, &t
	}

	rows, err := s.store.HistoryByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return nil, storage(err)
	}
	return rows, nil
}
