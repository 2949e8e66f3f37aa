// Package units provides the formatting and timezone helpers shared by
// query answers and the HTTP surface. All stored times are UTC unix
// seconds; conversion happens only at presentation.
package units

import (
	"fmt"
	"time"
)

// FormatMeters renders a distance for a query answer, e.g. "0.30 m".
func FormatMeters(m float64) string {
	return fmt.Sprintf("%.2f m", m)
}

// FormatMinutes renders a second count as minutes to one decimal,
// e.g. 150s -> "2.5".
func FormatMinutes(seconds int64) string {
	return fmt.Sprintf("%.1f", Minutes(seconds))
}

// Minutes converts seconds to minutes rounded to one decimal place.
func Minutes(seconds int64) float64 {
	m := float64(seconds) / 60.0
	return float64(int64(m*10+0.5)) / 10.0
}

// FormatUnix renders a unix-second instant as RFC 3339 in the given
// location; nil means UTC.
func FormatUnix(t int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(t, 0).In(loc).Format(time.RFC3339)
}

// IsTimezoneValid reports whether tz names a location in the system tz
// database.
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// LoadLocation resolves a timezone name, falling back to UTC on the
// empty string. Unknown names are an error so a caretaker's typo is
// surfaced instead of silently answering in UTC.
func LoadLocation(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return loc, nil
}
