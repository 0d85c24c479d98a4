// internal/database/schema.go
//
// Idempotent schema bootstrap.
//
// Context
// -------
// Each statement is CREATE TABLE IF NOT EXISTS, so Migrate may run on every
// boot.  The checkin table carries the single load-bearing constraint of the
// whole system: MySQL has no predicate (partial) indexes, so the "at most
// one open check-in per employee" rule is enforced through a stored
// generated column that materialises employee_id only while status = 'open'
// and is NULL otherwise.  NULLs never collide under a UNIQUE key, which
// leaves closed history unbounded while capping open rows at one.  A second
// concurrent insert for the same employee therefore fails at the storage
// layer with a duplicate-key error regardless of request timing.
//
// checkin_time and checkout_time are naive DATETIME values written from,
// and interpreted as, UTC (see internal/timeutil).
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS employee (
	    id             CHAR(36)     NOT NULL,
	    email          VARCHAR(255) NOT NULL,
	    full_name      VARCHAR(255) NOT NULL,
	    role           VARCHAR(32)  NOT NULL DEFAULT 'employee',
	    password_hash  VARCHAR(100) NOT NULL,
	    created_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    updated_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
	                   ON UPDATE CURRENT_TIMESTAMP,
	    PRIMARY KEY (id),
	    UNIQUE KEY uq_employee_email (email)
	)`,

	`CREATE TABLE IF NOT EXISTS client_site (
	    id           CHAR(36)     NOT NULL,
	    name         VARCHAR(255) NOT NULL,
	    address      VARCHAR(512) NOT NULL DEFAULT '',
	    latitude     DOUBLE       NOT NULL,
	    longitude    DOUBLE       NOT NULL,
	    archived_at  TIMESTAMP    NULL,
	    created_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    updated_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
	                 ON UPDATE CURRENT_TIMESTAMP,
	    PRIMARY KEY (id)
	)`,

	`CREATE TABLE IF NOT EXISTS checkin (
	    id                  CHAR(36)      NOT NULL,
	    employee_id         CHAR(36)      NOT NULL,
	    client_site_id      CHAR(36)      NOT NULL,
	    status              ENUM('open','closed') NOT NULL DEFAULT 'open',
	    checkin_time        DATETIME      NOT NULL,
	    checkout_time       DATETIME      NULL,
	    latitude            DOUBLE        NOT NULL,
	    longitude           DOUBLE        NOT NULL,
	    distance_from_site  DOUBLE        NULL,
	    notes               VARCHAR(1024) NOT NULL DEFAULT '',
	    open_employee_id    CHAR(36) GENERATED ALWAYS AS
	        (CASE WHEN status = 'open' THEN employee_id END) STORED,
	    PRIMARY KEY (id),
	    UNIQUE KEY uq_checkin_open_employee (open_employee_id),
	    KEY idx_checkin_employee_time (employee_id, checkin_time)
	)`,
}

// Migrate applies every bootstrap statement in order.  Safe to call on
// every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
