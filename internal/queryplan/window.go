package queryplan

import (
	"time"

	"github.com/guidelight-data/navwatch/internal/nav"
)

// TimeWindow is the resolved query range. Start and End are UTC-anchored
// instants; TZ is carried through to the response for presentation and
// never shifts the bounds.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	TZ    string    `json:"tz"`
}

// ParseTimeWindow resolves the relative and absolute forms caretakers
// send. End: empty or "now" means now, "today" means today 23:59:59,
// anything else is ISO-8601. Start: empty means now minus seven days,
// "today" means today midnight (pulling an unspecified end to the end of
// today), "yesterday" covers that whole day and overrides end,
// "last_7d"/"last_week" mean now minus seven days, anything else is
// ISO-8601.
func ParseTimeWindow(start, end, tz string, now time.Time) (TimeWindow, error) {
	now = now.UTC()

	var endT time.Time
	switch end {
	case "", "now":
		endT = now
	case "today":
		endT = endOfDay(now)
	default:
		t, ok := parseInstant(end)
		if !ok {
			return TimeWindow{}, &nav.ValidationError{Fields: map[string]string{"time_end": "not a recognized instant"}}
		}
		endT = t
	}

	var startT time.Time
	switch start {
	case "":
		startT = now.AddDate(0, 0, -7)
	case "today":
		startT = startOfDay(now)
		if end == "" || end == "now" {
			endT = endOfDay(now)
		}
	case "yesterday":
		y := now.AddDate(0, 0, -1)
		startT = startOfDay(y)
		endT = endOfDay(y)
	case "last_7d", "last_week":
		startT = now.AddDate(0, 0, -7)
	default:
		t, ok := parseInstant(start)
		if !ok {
			return TimeWindow{}, &nav.ValidationError{Fields: map[string]string{"time_start": "not a recognized instant"}}
		}
		startT = t
	}

	if tz == "" {
		tz = "UTC"
	}
	return TimeWindow{Start: startT, End: endT, TZ: tz}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// parseInstant accepts RFC 3339 plus the offset-less forms handsets and
// humans type; naive instants are read as UTC.
func parseInstant(s string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
