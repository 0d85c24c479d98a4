// internal/clientsite/model.go
//
// Client-site model.
package clientsite

import (
	"time"

	"github.com/google/uuid"
)

// Record mirrors one row in the persistent `client_site` table.  A
// non-NULL ArchivedAt removes the site from pickers and blocks new
// check-ins against it; history rows referencing it stay intact.
type Record struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Address    string     `db:"address" json:"address"`
	Latitude   float64    `db:"latitude" json:"latitude"`
	Longitude  float64    `db:"longitude" json:"longitude"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
