// internal/checkin/model.go
//
// Check-in record model.
//
// A Record mirrors one row in the `checkin` table.  Status moves
// `open → closed` exactly once; a new check-in always creates a new row,
// never reopens a closed one.  Timestamps are naive UTC per the stored
// convention (see internal/timeutil); the DSN's parseTime=true&loc=UTC
// pins the scanned time.Time values to UTC.
package checkin

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates the two record states.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Record mirrors one row in the persistent `checkin` table.
type Record struct {
	ID           uuid.UUID `db:"id" json:"id"`
	EmployeeID   uuid.UUID `db:"employee_id" json:"employee_id"`
	ClientSiteID uuid.UUID `db:"client_site_id" json:"client_site_id"`
	Status       Status    `db:"status" json:"status"`

	CheckinTime  time.Time  `db:"checkin_time" json:"checkin_time"`
	CheckoutTime *time.Time `db:"checkout_time" json:"checkout_time"`

	// Location is stored verbatim and never mutated; DistanceFromSite is a
	// precomputed audit scalar, not a lifecycle input.
	Latitude         float64  `db:"latitude" json:"latitude"`
	Longitude        float64  `db:"longitude" json:"longitude"`
	DistanceFromSite *float64 `db:"distance_from_site" json:"distance_from_site"`

	Notes string `db:"notes" json:"notes"`
}
