// internal/clientsite/repository.go
//
// Query helpers for client sites.  Thin, parameterised sqlx lookups; the
// Directory cache sits in front of ByID for the hot check-in path.
package clientsite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const columns = `id, name, address, latitude, longitude,
           archived_at, created_at, updated_at`

// AllActive returns every site that is not archived, name-ordered, for
// the client's site picker.
func AllActive(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	const q = `
        SELECT ` + columns + `
          FROM client_site
         WHERE archived_at IS NULL
         ORDER BY name`

	rows := make([]Record, 0, 32)
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// ByID fetches a single site that is not archived.  Returns (nil, nil)
// when no such site exists.
func ByID(ctx context.Context, db *sqlx.DB, id uuid.UUID) (*Record, error) {
	const q = `
        SELECT ` + columns + `
          FROM client_site
         WHERE id = ?
           AND archived_at IS NULL
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
