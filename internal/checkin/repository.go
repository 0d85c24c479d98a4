// internal/checkin/repository.go
//
// sqlx persistence for check-in records.
//
// Context
// -------
// Every mutation here is a single atomic statement, so a request that dies
// mid-operation leaves the table in one of its two valid states (no open
// row, or exactly one open row) and a retry is always safe.  The two
// correctness signals are:
//
//  1. Insert – the UNIQUE key over the open-row generated column rejects a
//     second open row per employee with a duplicate-key error, surfaced as
//     ErrOpenExists.  This holds regardless of timing, even if a caller
//     skips the pre-check.
//  2. CloseOpen – the UPDATE is keyed by employee_id AND status = 'open';
//     its affected-row count, not a prior read, decides whether there was
//     anything to close.  A concurrent duplicate checkout affects zero
//     rows, surfaced as ErrNoOpenRecord.
//
// All filter values travel as bound parameters; nothing here interpolates
// user input into SQL.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package checkin

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repo-level signals; the service maps them onto the error taxonomy.
var (
	// ErrOpenExists reports that the employee already holds an open row.
	ErrOpenExists = errors.New("open check-in already exists")
	// ErrNoOpenRecord reports that a checkout matched zero open rows.
	ErrNoOpenRecord = errors.New("no open check-in record")
)

const recordColumns = `id, employee_id, client_site_id, status,
           checkin_time, checkout_time,
           latitude, longitude, distance_from_site, notes`

// Repository is the sqlx-backed store for check-in rows.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open pool.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert persists a new open record.  Returns ErrOpenExists when the
// uniqueness constraint rejects a second open row for the employee.
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	const q = `
        INSERT INTO checkin
            (id, employee_id, client_site_id, status,
             checkin_time, latitude, longitude, distance_from_site, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.EmployeeID, rec.ClientSiteID, rec.Status,
		rec.CheckinTime, rec.Latitude, rec.Longitude,
		rec.DistanceFromSite, rec.Notes)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrOpenExists
		}
		return err
	}
	return nil
}

// CloseOpen closes the employee's open record, stamping checkout_time = at.
// The update is keyed by employee AND open status, so concurrent duplicate
// calls race on the affected-row count: exactly one wins.  Returns the
// closed record, or ErrNoOpenRecord when zero rows matched.
func (r *Repository) CloseOpen(ctx context.Context, employeeID uuid.UUID, at time.Time) (*Record, error) {
	const upd = `
        UPDATE checkin
           SET status = 'closed', checkout_time = ?
         WHERE employee_id = ? AND status = 'open'`

	res, err := r.db.ExecContext(ctx, upd, at, employeeID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoOpenRecord
	}

	const sel = `
        SELECT ` + recordColumns + `
          FROM checkin
         WHERE employee_id = ? AND status = 'closed' AND checkout_time = ?
         ORDER BY checkin_time DESC
         LIMIT 1`

	var rec Record
	if err := r.db.GetContext(ctx, &rec, sel, employeeID, at); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ActiveByEmployee returns the single open record, or (nil, nil) when the
// employee has none.  Absence is ordinary, not exceptional.
func (r *Repository) ActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (*Record, error) {
	const q = `
        SELECT ` + recordColumns + `
          FROM checkin
         WHERE employee_id = ? AND status = 'open'
         LIMIT 1`

	var rec Record
	err := r.db.GetContext(ctx, &rec, q, employeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// HistoryByEmployee returns open and closed records newest-first.  Bounds
// are optional; when present they are passed as bound parameters and the
// end bound is exclusive of the following midnight.
func (r *Repository) HistoryByEmployee(ctx context.Context, employeeID uuid.UUID, from, to *time.Time) ([]Record, error) {
	q := `
        SELECT ` + recordColumns + `
          FROM checkin
         WHERE employee_id = ?`
	args := []any{employeeID}

	if from != nil {
		q += ` AND checkin_time >= ?`
		args = append(args, *from)
	}
	if to != nil {
		q += ` AND checkin_time < ?`
		args = append(args, *to)
	}
	q += ` ORDER BY checkin_time DESC`

	rows := make([]Record, 0, 16)
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountOpen reports how many rows are currently open across all employees.
// Used to seed the open-checkins gauge at boot.
func (r *Repository) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM checkin WHERE status = 'open'`)
	return n, err
}

// isDuplicateKey recognises MySQL/MariaDB duplicate-key violations (error
// 1062) without importing driver-specific types.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") || strings.Contains(msg, "Duplicate entry")
}
