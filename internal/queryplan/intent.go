// Package queryplan answers caretaker questions about a client's
// telemetry: classify the question into a fixed metric, acquire the
// client's index, compute the metric deterministically and render a
// one-sentence answer. Everything is read-only apart from
// rebuild-on-miss index builds.
package queryplan

import "strings"

// Intent is the metric a question resolves to.
type Intent string

const (
	IntentAlmostCrash    Intent = "almost_crash"
	IntentStuckMinutes   Intent = "stuck_minutes"
	IntentStuckIntervals Intent = "stuck_intervals"
	IntentAccident       Intent = "accident"
	IntentEventCounts    Intent = "event_counts"
)

var (
	almostCrashTokens = []string{"almost crash", "near miss", "collision warning", "close call"}
	stuckTokens       = []string{"stuck", "not moving", "stationary"}
	// Phrasings that ask for the list of occurrences rather than a total.
	stuckListTokens = []string{"interval", "when", "show"}
	accidentTokens  = []string{"accident", "fell", "fall", "collision", "crashed", "impact"}
)

// Classify maps a question to its metric. Matching is case-insensitive
// substring search in fixed priority order; anything unmatched falls
// back to event counts.
func Classify(q string) Intent {
	s := strings.ToLower(q)
	has := func(tokens []string) bool {
		for _, tok := range tokens {
			if strings.Contains(s, tok) {
				return true
			}
		}
		return false
	}

	switch {
	case has(almostCrashTokens):
		return IntentAlmostCrash
	case has(stuckTokens) && has(stuckListTokens):
		return IntentStuckIntervals
	case has(stuckTokens):
		return IntentStuckMinutes
	case has(accidentTokens):
		return IntentAccident
	default:
		return IntentEventCounts
	}
}
