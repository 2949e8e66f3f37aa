package queryplan

import (
	"sort"

	"github.com/guidelight-data/navwatch/internal/navindex"
	"github.com/guidelight-data/navwatch/internal/units"
)

const maxSamples = 3

// Per-metric result shapes. These are the `result` object of the
// response envelope; the answer renderer switches on them too.

// CountResult is the almost_crash payload.
type CountResult struct {
	Count int `json:"count"`
}

// MinutesResult is the stuck_minutes payload.
type MinutesResult struct {
	Minutes float64 `json:"minutes"`
}

// IntervalsResult is the stuck_intervals payload; each entry is
// [start_iso, end_iso, duration_s].
type IntervalsResult struct {
	Intervals [][]any `json:"intervals"`
}

// AccidentResult is the accident payload. FirstT is nil when nothing
// was detected.
type AccidentResult struct {
	Detected  bool   `json:"detected"`
	FirstT    *int64 `json:"first_t"`
	Rationale string `json:"rationale"`
}

// EventCountsResult is the event_counts payload.
type EventCountsResult struct {
	ByEvent map[string]int `json:"by_event"`
	ByClass map[string]int `json:"by_class"`
}

type nearMissSample struct {
	T          string   `json:"t"`
	FreeAheadM *float64 `json:"free_ahead_m"`
	Confidence float64  `json:"confidence"`
	Events     []string `json:"events"`
	Classes    []string `json:"classes"`
}

type intervalSample struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	DurationS int64  `json:"duration_s"`
}

type accidentSample struct {
	T          string   `json:"t"`
	Events     []string `json:"events,omitempty"`
	FreeAheadM *float64 `json:"free_ahead_m,omitempty"`
	Confidence float64  `json:"confidence"`
}

type eventCount struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// computeMetric evaluates the intent purely from the index. The stored
// hazard lists are filtered by the effective params, never recomputed,
// so two queries over the same index always agree.
func (p *Planner) computeMetric(ix *navindex.UserIndex, intent Intent, ep EffectiveParams) (any, []any) {
	samples := make([]any, 0, maxSamples)

	switch intent {
	case IntentAlmostCrash:
		count := 0
		for _, m := range ix.AlmostCrashes {
			if m.Confidence < ep.ConfMin {
				continue
			}
			if m.FreeAheadM != nil && *m.FreeAheadM > ep.CrashNearM {
				continue
			}
			count++
			if len(samples) < maxSamples {
				samples = append(samples, nearMissSample{
					T:          units.FormatUnix(m.T, nil),
					FreeAheadM: m.FreeAheadM,
					Confidence: m.Confidence,
					Events:     m.Events,
					Classes:    m.Classes,
				})
			}
		}
		return CountResult{Count: count}, samples

	case IntentStuckMinutes:
		var total int64
		for _, iv := range ix.StuckIntervals {
			if iv.DurationS < ep.StuckMinS {
				continue
			}
			total += iv.DurationS
			if len(samples) < maxSamples {
				samples = append(samples, intervalSample{
					Start:     units.FormatUnix(iv.Start, nil),
					End:       units.FormatUnix(iv.End, nil),
					DurationS: iv.DurationS,
				})
			}
		}
		return MinutesResult{Minutes: units.Minutes(total)}, samples

	case IntentStuckIntervals:
		out := make([][]any, 0, len(ix.StuckIntervals))
		for _, iv := range ix.StuckIntervals {
			if iv.DurationS < ep.StuckMinS {
				continue
			}
			start := units.FormatUnix(iv.Start, nil)
			end := units.FormatUnix(iv.End, nil)
			out = append(out, []any{start, end, iv.DurationS})
			if len(samples) < maxSamples {
				samples = append(samples, intervalSample{Start: start, End: end, DurationS: iv.DurationS})
			}
		}
		return IntervalsResult{Intervals: out}, samples

	case IntentAccident:
		hit := navindex.FindAccident(ix.RecordsAscending(), p.Thresholds)
		if hit == nil {
			return AccidentResult{Detected: false, Rationale: "No accident patterns found"}, samples
		}
		t := hit.T
		samples = append(samples, accidentSample{
			T:          units.FormatUnix(hit.T, nil),
			Events:     hit.Events,
			FreeAheadM: hit.FreeAheadM,
			Confidence: hit.Confidence,
		})
		return AccidentResult{Detected: true, FirstT: &t, Rationale: hit.Rationale}, samples

	default: // IntentEventCounts
		top := make([]eventCount, 0, len(ix.Counters))
		for e, c := range ix.Counters {
			top = append(top, eventCount{Event: e, Count: c})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].Count != top[j].Count {
				return top[i].Count > top[j].Count
			}
			return top[i].Event < top[j].Event
		})
		for i, tc := range top {
			if i == maxSamples {
				break
			}
			samples = append(samples, tc)
		}
		return EventCountsResult{ByEvent: ix.Counters, ByClass: ix.ByClass}, samples
	}
}
