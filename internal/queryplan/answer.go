package queryplan

import (
	"fmt"

	"github.com/guidelight-data/navwatch/internal/units"
)

// renderAnswer builds the one-sentence natural-language answer from the
// computed result. The wording is deterministic per metric so tests and
// caretakers see the same phrasing for the same data.
func renderAnswer(result any) string {
	switch r := result.(type) {
	case CountResult:
		return fmt.Sprintf("%d near-miss event%s in the specified time window.", r.Count, pluralS(r.Count))

	case MinutesResult:
		return fmt.Sprintf("%.1f minutes stationary in the specified time window.", r.Minutes)

	case IntervalsResult:
		n := len(r.Intervals)
		return fmt.Sprintf("%d stuck interval%s found.", n, pluralS(n))

	case AccidentResult:
		if !r.Detected {
			return "No accident detected in the specified time window."
		}
		return fmt.Sprintf("Accident detected at %s. %s", units.FormatUnix(*r.FirstT, nil), r.Rationale)

	case EventCountsResult:
		total := 0
		for _, c := range r.ByEvent {
			total += c
		}
		return fmt.Sprintf("%d total events logged in the specified time window.", total)
	}
	return ""
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
