// internal/report/repository.go
//
// Aggregate queries behind the manager dashboards.
//
// Context
// -------
// These are read-only rollups over the checkin table; they make no
// lifecycle decisions and hold no state.  Averages are computed only over
// closed records, since an open record has no duration yet.  A range with
// zero matching rows yields an empty Days slice plus zero-valued Totals,
// never a missing field or a null-shaped payload.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DaySummary is one calendar day of activity.
type DaySummary struct {
	Day          string  `db:"day" json:"day"`
	Total        int     `db:"total" json:"total"`
	Completed    int     `db:"completed" json:"completed"`
	StillOpen    int     `db:"still_open" json:"still_open"`
	AvgOnSiteMin float64 `db:"avg_on_site_min" json:"avg_on_site_min"`
}

// Totals aggregates a whole range.  Always present, zero-valued when the
// range is empty.
type Totals struct {
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	StillOpen    int     `json:"still_open"`
	AvgOnSiteMin float64 `json:"avg_on_site_min"`
}

// Summary is the report payload.
type Summary struct {
	Days   []DaySummary `json:"days"`
	Totals Totals       `json:"totals"`
}

// OpenRow is one currently open check-in, joined with names for display.
type OpenRow struct {
	RecordID     uuid.UUID `db:"record_id" json:"record_id"`
	EmployeeID   uuid.UUID `db:"employee_id" json:"employee_id"`
	EmployeeName string    `db:"employee_name" json:"employee_name"`
	SiteID       uuid.UUID `db:"site_id" json:"site_id"`
	SiteName     string    `db:"site_name" json:"site_name"`
	CheckinTime  time.Time `db:"checkin_time" json:"checkin_time"`
}

// DailySummary rolls the half-open range [from, to) up per day.  Bounds
// arrive as bound parameters; the caller has already validated them.
func DailySummary(ctx context.Context, db *sqlx.DB, from, to time.Time) (*Summary, error) {
	const q = `
        SELECT DATE_FORMAT(checkin_time, '%Y-%m-%d') AS day,
               COUNT(*)                              AS total,
               COALESCE(SUM(status = 'closed'), 0)   AS completed,
               COALESCE(SUM(status = 'open'), 0)     AS still_open,
               COALESCE(AVG(CASE WHEN checkout_time IS NOT NULL
                   THEN TIMESTAMPDIFF(MINUTE, checkin_time, checkout_time)
               END), 0)                              AS avg_on_site_min
          FROM checkin
         WHERE checkin_time >= ? AND checkin_time < ?
         GROUP BY DATE_FORMAT(checkin_time, '%Y-%m-%d')
         ORDER BY day`

	days := make([]DaySummary, 0, 8)
	if err := db.SelectContext(ctx, &days, q, from, to); err != nil {
		return nil, err
	}

	sum := &Summary{Days: days}
	var weightedMin float64
	for _, d := range days {
		sum.Totals.Total += d.Total
		sum.Totals.Completed += d.Completed
		sum.Totals.StillOpen += d.StillOpen
		weightedMin += d.AvgOnSiteMin * float64(d.Completed)
	}
	if sum.Totals.Completed > 0 {
		sum.Totals.AvgOnSiteMin = weightedMin / float64(sum.Totals.Completed)
	}
	return sum, nil
}

// OpenCheckins lists every open record across employees, oldest first, so
// a manager can spot someone who forgot to check out.
func OpenCheckins(ctx context.Context, db *sqlx.DB) ([]OpenRow, error) {
	const q = `
        SELECT c.id           AS record_id,
               c.employee_id  AS employee_id,
               e.full_name    AS employee_name,
               c.client_site_id AS site_id,
               s.name         AS site_name,
               c.checkin_time AS checkin_time
          FROM checkin c
          JOIN employee    e ON e.id = c.employee_id
          JOIN client_site s ON s.id = c.client_site_id
         WHERE c.status = 'open'
         ORDER BY c.checkin_time`

	rows := make([]OpenRow, 0, 16)
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}
