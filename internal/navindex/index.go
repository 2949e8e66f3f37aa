// Package navindex builds per-client aggregations of navigation telemetry.
// An index is a pure function of its record set: the time-ordered record
// map, the per-event timestamp lists and counters, class counts, and the
// derived hazards (near-miss moments and stuck intervals) the query
// planner answers from.
package navindex

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/guidelight-data/navwatch/internal/nav"
)

// NearMiss is one merged almost-crash moment, reported by the group
// member with the smallest clearance. FreeAheadM is nil when the
// representative had no depth reading; MergedCount says how many raw
// candidates collapsed into it.
type NearMiss struct {
	T           int64    `json:"t"`
	FreeAheadM  *float64 `json:"free_ahead_m"`
	Events      []string `json:"events"`
	Classes     []string `json:"classes"`
	Confidence  float64  `json:"confidence"`
	MergedCount int      `json:"merged_count"`
}

// StuckInterval is a span of record time with no forward progress.
type StuckInterval struct {
	Start     int64 `json:"start_t"`
	End       int64 `json:"end_t"`
	DurationS int64 `json:"duration_s"`
}

// UserIndex aggregates one client's records, optionally narrowed to a
// session. ByTime keeps the last record seen for each t; ByEvent and
// Counters still see every accepted occurrence, duplicates included.
type UserIndex struct {
	Key            string               `json:"key"`
	ClientID       string               `json:"client_id"`
	SessionID      string               `json:"session_id,omitempty"`
	ByTime         map[int64]nav.Record `json:"by_time"`
	ByEvent        map[string][]int64   `json:"by_event"`
	Counters       map[string]int       `json:"counters"`
	ByClass        map[string]int       `json:"by_class"`
	AlmostCrashes  []NearMiss           `json:"almost_crash_moments"`
	StuckIntervals []StuckInterval      `json:"stuck_intervals"`
	TimeStart      int64                `json:"time_start"`
	TimeEnd        int64                `json:"time_end"`
	RecordCount    int                  `json:"record_count"`
	DroppedCount   int                  `json:"dropped_records"`
	BuiltAt        time.Time            `json:"built_at"`
	Stats          *IndexStats          `json:"stats,omitempty"`
}

// IndexKey returns the storage key for a client index, with the session
// segment only when a session is given.
func IndexKey(clientID, sessionID string) string {
	if sessionID == "" {
		return fmt.Sprintf("index:%s", clientID)
	}
	return fmt.Sprintf("index:%s:%s", clientID, sessionID)
}

// ParseIndexKey splits an index key back into client and session.
func ParseIndexKey(key string) (clientID, sessionID string, err error) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 || parts[0] != "index" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed index key %q", key)
	}
	clientID = parts[1]
	if len(parts) == 3 {
		sessionID = parts[2]
	}
	return clientID, sessionID, nil
}

// RecordsAscending returns the indexed records ordered by t.
func (ix *UserIndex) RecordsAscending() []nav.Record {
	times := make([]int64, 0, len(ix.ByTime))
	for t := range ix.ByTime {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	out := make([]nav.Record, 0, len(times))
	for _, t := range times {
		out = append(out, ix.ByTime[t])
	}
	return out
}

// BuildIndex folds records into a UserIndex. It is deterministic: the
// same records in the same order produce the same index, no external
// state consulted. Records must already be validated; invalid ones are
// the caller's drop count.
func BuildIndex(clientID, sessionID string, records []nav.Record, dropped int, th nav.Thresholds) *UserIndex {
	ix := &UserIndex{
		Key:          IndexKey(clientID, sessionID),
		ClientID:     clientID,
		SessionID:    sessionID,
		ByTime:       make(map[int64]nav.Record),
		ByEvent:      make(map[string][]int64),
		Counters:     make(map[string]int),
		ByClass:      make(map[string]int),
		RecordCount:  len(records),
		DroppedCount: dropped,
	}

	first := true
	for _, rec := range records {
		// Last record wins the slot, but ByEvent and the counters see
		// every occurrence.
		ix.ByTime[rec.T] = rec
		for _, e := range rec.Events {
			ix.ByEvent[e] = append(ix.ByEvent[e], rec.T)
			ix.Counters[e]++
		}
		for _, cls := range rec.Classes {
			ix.ByClass[cls]++
		}
		if first || rec.T < ix.TimeStart {
			ix.TimeStart = rec.T
		}
		if first || rec.T > ix.TimeEnd {
			ix.TimeEnd = rec.T
		}
		first = false
	}

	ordered := ix.RecordsAscending()
	ix.AlmostCrashes = AlmostCrashes(ordered, th.CrashNearM, th.ConfMin, th.MergeWindowS)
	ix.StuckIntervals = StuckIntervals(ordered, th.StuckMinS, th.StuckVarianceM, th.StuckGapS)
	ix.Stats = ComputeStats(ordered)
	return ix
}
