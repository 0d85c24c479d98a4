// internal/employee/repository.go
//
// Query helpers for employee accounts.  Thin, parameterised sqlx lookups;
// callers supply a context so lookups respect request deadlines.
package employee

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const columns = `id, email, full_name, role, password_hash, created_at, updated_at`

// ByEmail fetches a single account by login email.  Returns (nil, nil)
// when no account matches, so callers can treat an unknown email and a
// wrong password identically.
func ByEmail(ctx context.Context, db *sqlx.DB, email string) (*Record, error) {
	const q = `
        SELECT ` + columns + `
          FROM employee
         WHERE email = ?
         LIMIT 1`

	var rec Record
	err := db.GetContext(ctx, &rec, q, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ByID fetches a single account by primary key.
func ByID(ctx context.Context, db *sqlx.DB, id uuid.UUID) (*Record, error) {
	const q = `
        SELECT ` + columns + `
          FROM employee
         WHERE id = ?
         LIMIT 1`

	var rec Record
	err := db.GetContext(ctx, &rec, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
