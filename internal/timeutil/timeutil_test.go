// internal/timeutil/timeutil_test.go
//
// Run: go test ./internal/timeutil -v

package timeutil

import (
	"testing"
	"time"
)

func TestParseStoredIsUTC(t *testing.T) {
	got, err := ParseStored("2026-01-15 09:15:00")
	if err != nil {
		t.Fatalf("ParseStored: %v", err)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
	if got.Hour() != 9 || got.Minute() != 15 {
		t.Fatalf("unexpected wall clock: %v", got)
	}
}

// A stored 09:15 must render as 14:45 for a viewer at UTC+5:30, never as
// the raw wall-clock value.
func TestRenderLocalAppliesUTCConvention(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	got, err := RenderLocal("2026-01-15 09:15:00", ist, "15:04")
	if err != nil {
		t.Fatalf("RenderLocal: %v", err)
	}
	if got != "14:45" {
		t.Fatalf("expected 14:45, got %s", got)
	}
}

func TestFormatStoredRoundTrip(t *testing.T) {
	orig := time.Date(2026, 3, 2, 22, 5, 9, 0, time.FixedZone("X", -7*3600))
	s := FormatStored(orig)
	back, err := ParseStored(s)
	if err != nil {
		t.Fatalf("ParseStored: %v", err)
	}
	if !back.Equal(orig.Truncate(time.Second)) {
		t.Fatalf("round trip mismatch: %v vs %v", back, orig)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("20-01-2026"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
