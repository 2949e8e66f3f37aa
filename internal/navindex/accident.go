package navindex

import (
	"fmt"
	"strings"

	"github.com/guidelight-data/navwatch/internal/nav"
)

// AccidentHit is the first suspected accident found by the offline scan.
type AccidentHit struct {
	T          int64    `json:"t"`
	Pattern    string   `json:"pattern"`
	Rationale  string   `json:"rationale"`
	Events     []string `json:"events,omitempty"`
	FreeAheadM *float64 `json:"free_ahead_m,omitempty"`
	Confidence float64  `json:"confidence"`
	SilenceS   int64    `json:"silence_s,omitempty"`
}

// FindAccident scans records (ascending t) for the earliest accident
// evidence and stops at the first hit. Direct accident events are the
// stronger signal, so the whole window is checked for them before the
// circumstantial obstacle-stop-silence pattern gets a turn. Returns nil
// when neither pattern matches.
func FindAccident(records []nav.Record, th nav.Thresholds) *AccidentHit {
	for i := range records {
		rec := &records[i]
		matched := nav.AccidentEventNames(rec.Events)
		if len(matched) == 0 {
			continue
		}
		return &AccidentHit{
			T:          rec.T,
			Pattern:    nav.PatternDirectEvent,
			Rationale:  fmt.Sprintf("Direct accident event: %s", strings.Join(matched, ", ")),
			Events:     rec.Events,
			Confidence: rec.Confidence,
		}
	}
	for i := range records {
		if hit, ok := obstacleStopSilence(records, i, th); ok {
			return hit
		}
	}
	return nil
}

func obstacleStopSilence(records []nav.Record, i int, th nav.Thresholds) (*AccidentHit, bool) {
	anchor := &records[i]
	depth, ok := nav.CollisionAnchorDepth(anchor, th)
	if !ok {
		return nil, false
	}

	scanLimit := th.AccidentPatternWindowS + th.AccidentNoProceedS
	stopFound := false
	var silence int64
	for j := i + 1; j < len(records); j++ {
		fut := &records[j]
		if fut.T-anchor.T > scanLimit {
			break
		}
		if nav.HasStopEvent(fut.Events) {
			stopFound = true
		}
		if !stopFound {
			continue
		}
		// Movement after the stop clears the suspicion for this anchor.
		if nav.HasDirectionalEvent(fut.Events) {
			break
		}
		silence = fut.T - anchor.T
	}
	if !stopFound || silence < th.AccidentNoProceedS {
		return nil, false
	}
	d := depth
	return &AccidentHit{
		T:          anchor.T,
		Pattern:    nav.PatternObstacleStopSilence,
		Rationale:  fmt.Sprintf("Obstacle at %gm, then stop with no movement for %ds", depth, silence),
		Events:     anchor.Events,
		FreeAheadM: &d,
		Confidence: anchor.Confidence,
		SilenceS:   silence,
	}, true
}
