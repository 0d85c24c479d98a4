// internal/timeutil/timeutil.go
//
// Stored-timestamp convention helpers.
//
// Context
// -------
// Check-in timestamps are persisted as naive DATETIME values with no
// offset marker, and are always written from, and interpreted as, UTC.
// Consumers must attach the UTC marker explicitly before converting to
// a viewer's local time; rendering a stored value as if it were local
// is the classic bug these helpers exist to prevent.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package timeutil

import "time"

// StoredLayout is the naive DATETIME layout used by the checkin table.
const StoredLayout = "2006-01-02 15:04:05"

// DateLayout is the layout accepted for date-range query parameters.
const DateLayout = "2006-01-02"

// ParseStored interprets a stored naive timestamp as UTC.
func ParseStored(s string) (time.Time, error) {
	return time.ParseInLocation(StoredLayout, s, time.UTC)
}

// FormatStored renders t in the stored naive layout, normalised to UTC.
func FormatStored(t time.Time) string {
	return t.UTC().Format(StoredLayout)
}

// ParseDate parses a YYYY-MM-DD query parameter as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// RenderLocal converts a stored naive timestamp into the viewer's zone
// and formats it with the given layout.
func RenderLocal(stored string, loc *time.Location, layout string) (string, error) {
	t, err := ParseStored(stored)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(layout), nil
}

// Now returns the current server time truncated to whole seconds in UTC,
// matching the resolution of the stored layout.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
