// internal/employee/model.go
//
// Employee account model.
package employee

import (
	"time"

	"github.com/google/uuid"
)

// Record mirrors one row in the persistent `employee` table.  The password
// hash is bcrypt and never serialises to JSON.
type Record struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         string    `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
