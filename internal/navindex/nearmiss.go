package navindex

import (
	"math"

	"github.com/guidelight-data/navwatch/internal/nav"
)

// nearMissCandidate is a single record that qualified as an almost-crash
// before merging. depth is nil when the record had no free_ahead_m.
type nearMissCandidate struct {
	t          int64
	depth      *float64
	events     []string
	classes    []string
	confidence float64
}

// AlmostCrashes derives merged near-miss moments from records ordered by
// ascending t. A record qualifies when it carries an obstacle event at
// confidence >= confMin and its forward clearance is either unknown or
// at most crashNearM: a missing depth reading near an obstacle is
// treated as dangerously close, not safe.
//
// Qualifying candidates chain-merge: a candidate joins the open group when
// it is within mergeWindowS of the group's newest member, so bursts like
// t=100,102,105 collapse into one reported moment. Each group is reported
// by its closest member.
func AlmostCrashes(records []nav.Record, crashNearM, confMin float64, mergeWindowS int64) []NearMiss {
	var candidates []nearMissCandidate
	for i := range records {
		rec := &records[i]
		if !nav.HasObstacleEvent(rec.Events) {
			continue
		}
		if rec.Confidence < confMin {
			continue
		}
		if rec.FreeAheadM != nil && *rec.FreeAheadM > crashNearM {
			continue
		}
		candidates = append(candidates, nearMissCandidate{
			t:          rec.T,
			depth:      rec.FreeAheadM,
			events:     nav.ObstacleEventNames(rec.Events),
			classes:    rec.Classes,
			confidence: rec.Confidence,
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	var out []NearMiss
	group := []nearMissCandidate{candidates[0]}
	for _, c := range candidates[1:] {
		if c.t-group[len(group)-1].t <= mergeWindowS {
			group = append(group, c)
			continue
		}
		out = append(out, representative(group))
		group = []nearMissCandidate{c}
	}
	out = append(out, representative(group))
	return out
}

// representative picks the group member with the smallest depth; a missing
// depth sorts last. Ties keep the earliest member.
func representative(group []nearMissCandidate) NearMiss {
	best := 0
	for i := 1; i < len(group); i++ {
		if sortDepth(group[i].depth) < sortDepth(group[best].depth) {
			best = i
		}
	}
	c := group[best]
	return NearMiss{
		T:           c.t,
		FreeAheadM:  c.depth,
		Events:      c.events,
		Classes:     c.classes,
		Confidence:  c.confidence,
		MergedCount: len(group),
	}
}

func sortDepth(d *float64) float64 {
	if d == nil {
		return math.Inf(1)
	}
	return *d
}
