// internal/checkin/repository_test.go
//
// Unit-tests for the sqlx repository using sqlmock.
//
// Run: go test ./internal/checkin -v

package checkin

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db := sqlx.NewDb(raw, "mysql")
	return NewRepository(db), mock, func() { db.Close() }
}

func TestInsertOpenRecord(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	rec := &Record{
		ID:           uuid.New(),
		EmployeeID:   uuid.New(),
		ClientSiteID: uuid.New(),
		Status:       StatusOpen,
		CheckinTime:  time.Date(2026, 1, 15, 9, 15, 0, 0, time.UTC),
		Latitude:     41.8781,
		Longitude:    -87.6298,
	}

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO checkin (id, employee_id, client_site_id, status, checkin_time, latitude, longitude, distance_from_site, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)).
		WithArgs(rec.ID, rec.EmployeeID, rec.ClientSiteID, rec.Status,
			rec.CheckinTime, rec.Latitude, rec.Longitude, nil, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

// A duplicate-key violation on the open-row constraint must surface as
// ErrOpenExists, not as a generic storage error.
func TestInsertDuplicateOpenMapsToErrOpenExists(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO checkin").
		WillReturnError(errors.New(
			`Error 1062 (23000): Duplicate entry 'abc' for key 'uq_checkin_open_employee'`))

	rec := &Record{ID: uuid.New(), EmployeeID: uuid.New(),
		ClientSiteID: uuid.New(), Status: StatusOpen, CheckinTime: time.Now().UTC()}
	err := repo.Insert(context.Background(), rec)
	if !errors.Is(err, ErrOpenExists) {
		t.Fatalf("expected ErrOpenExists, got %v", err)
	}
}

func TestCloseOpenZeroRowsMeansNoOpenRecord(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	empID := uuid.New()
	at := time.Date(2026, 1, 15, 17, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE checkin SET status = 'closed', checkout_time = ? WHERE employee_id = ? AND status = 'open'`,
	)).
		WithArgs(at, empID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.CloseOpen(context.Background(), empID, at)
	if !errors.Is(err, ErrNoOpenRecord) {
		t.Fatalf("expected ErrNoOpenRecord, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCloseOpenReturnsClosedRecord(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	empID := uuid.New()
	siteID := uuid.New()
	recID := uuid.New()
	in := time.Date(2026, 1, 15, 9, 15, 0, 0, time.UTC)
	at := time.Date(2026, 1, 15, 17, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE checkin").
		WithArgs(at, empID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cols := []string{"id", "employee_id", "client_site_id", "status",
		"checkin_time", "checkout_time", "latitude", "longitude",
		"distance_from_site", "notes"}
	mock.ExpectQuery("SELECT .+ FROM checkin").
		WithArgs(empID, at).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(recID.String(), empID.String(), siteID.String(),
				"closed", in, at, 41.0, -87.0, nil, ""))

	rec, err := repo.CloseOpen(context.Background(), empID, at)
	if err != nil {
		t.Fatalf("CloseOpen error: %v", err)
	}
	if rec.Status != StatusClosed || rec.CheckoutTime == nil {
		t.Fatalf("record not closed: %+v", rec)
	}
	if !rec.CheckoutTime.After(rec.CheckinTime) {
		t.Fatalf("checkout_time %v not after checkin_time %v",
			rec.CheckoutTime, rec.CheckinTime)
	}
}

// Absence of an open record is ordinary: (nil, nil), never an error.
func TestActiveByEmployeeNone(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	empID := uuid.New()
	mock.ExpectQuery("SELECT .+ FROM checkin").
		WithArgs(empID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, err := repo.ActiveByEmployee(context.Background(), empID)
	if err != nil {
		t.Fatalf("ActiveByEmployee error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

// Date bounds must travel as bound parameters, never interpolated.
func TestHistoryBoundsAreBoundParameters(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	empID := uuid.New()
	from := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "employee_id", "client_site_id", "status",
		"checkin_time", "checkout_time", "latitude", "longitude",
		"distance_from_site", "notes"}
	mock.ExpectQuery(regexp.QuoteMeta(
		`AND checkin_time >= ? AND checkin_time < ? ORDER BY checkin_time DESC`,
	)).
		WithArgs(empID, from, to).
		WillReturnRows(sqlmock.NewRows(cols))

	rows, err := repo.HistoryByEmployee(context.Background(), empID, &from, &to)
	if err != nil {
		t.Fatalf("HistoryByEmployee error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(rows))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
