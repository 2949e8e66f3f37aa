package watchdog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/guidelight-data/navwatch/internal/monitoring"
	"github.com/guidelight-data/navwatch/internal/nav"
)

// checkAccident tries the three accident patterns in order and stops at
// the first match. A match always goes through sendAccident, which owns
// the wall-clock debounce, so a suppressed match still ends the search.
func (w *Watchdog) checkAccident(ctx context.Context, st *clientState, rec *nav.Record) *nav.Alert {
	if nav.HasAccidentEvent(rec.Events) {
		msg := fmt.Sprintf("accident signal from device: %s", strings.Join(rec.Events, ","))
		return w.sendAccident(ctx, st, rec.T, nav.PatternDirectEvent, msg, map[string]any{
			"events": rec.Events,
		})
	}

	if len(st.window) < 3 {
		return nil
	}
	if alert, matched := w.obstacleStopSilence(ctx, st); matched {
		return alert
	}
	return w.veerSurge(ctx, st, rec)
}

// obstacleStopSilence looks for a close, confident obstacle sighting
// followed by a stop and then silence. Anchors are scanned newest to
// oldest across the latest ten window entries; the floor of that range
// never anchors. The bool reports whether the pattern matched at all,
// emitted or debounced.
func (w *Watchdog) obstacleStopSilence(ctx context.Context, st *clientState) (*nav.Alert, bool) {
	win := st.window
	n := len(win)
	lo := n - 10
	if lo < 0 {
		lo = 0
	}
	scanLimit := w.th.AccidentPatternWindowS + w.th.AccidentNoProceedS

	for i := n - 1; i > lo; i-- {
		anchor := &win[i]
		depth, ok := nav.CollisionAnchorDepth(anchor, w.th)
		if !ok {
			continue
		}

		stopFound := false
		cleared := false
		var silence int64
		for j := i + 1; j < n; j++ {
			fut := &win[j]
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
				cleared = true
				break
			}
			silence = fut.T - anchor.T
		}
		if cleared || !stopFound || silence < w.th.AccidentNoProceedS {
			continue
		}

		msg := fmt.Sprintf("obstacle at %.2fm, then stop and %ds of silence", depth, silence)
		alert := w.sendAccident(ctx, st, anchor.T, nav.PatternObstacleStopSilence, msg, map[string]any{
			"anchor_depth_m": depth,
			"silence_s":      silence,
		})
		return alert, true
	}
	return nil, false
}

// veerSurge fires when the client has been issued repeated veer
// corrections, just stopped, and has not moved for a stuck-length span.
// Unresolved "veer" events count toward the surge; resolved directional
// guidance in the tail resets the no-movement span.
func (w *Watchdog) veerSurge(ctx context.Context, st *clientState, rec *nav.Record) *nav.Alert {
	win := st.window
	n := len(win)

	lo := n - 5
	if lo < 0 {
		lo = 0
	}
	veers := 0
	for i := lo; i < n; i++ {
		for _, e := range win[i].Events {
			if nav.IsVeerEvent(e) {
				veers++
			}
		}
	}
	if veers < 3 || !nav.HasStopEvent(rec.Events) {
		return nil
	}

	lo = n - 10
	if lo < 0 {
		lo = 0
	}
	var sinceMove int64
	for i := n - 1; i >= lo; i-- {
		if nav.HasDirectionalEvent(win[i].Events) {
			break
		}
		sinceMove = rec.T - win[i].T
	}
	if sinceMove < w.th.StuckMinS {
		return nil
	}

	msg := fmt.Sprintf("%d veer corrections then stop; no movement for %ds", veers, sinceMove)
	return w.sendAccident(ctx, st, rec.T, nav.PatternVeerStop, msg, map[string]any{
		"veer_events":  veers,
		"since_move_s": sinceMove,
	})
}

// sendAccident applies the accident debounce at send time and emits the
// alert when it passes. The debounce clock only advances on alerts that
// were actually sent.
func (w *Watchdog) sendAccident(ctx context.Context, st *clientState, t int64, pattern, msg string, meta map[string]any) *nav.Alert {
	now := w.clock.Now()
	if !st.lastAccidentAlert.IsZero() && now.Sub(st.lastAccidentAlert) < w.th.AccidentDebounce {
		monitoring.Logf("accident alert (%s) for %s suppressed by debounce", pattern, st.clientID)
		return nil
	}

	if meta == nil {
		meta = map[string]any{}
	}
	meta["pattern"] = pattern
	alert := &nav.Alert{
		AlertID:    uuid.NewString(),
		ClientID:   st.clientID,
		Kind:       nav.AlertAccident,
		Severity:   nav.SeverityCritical,
		Rationale:  fmt.Sprintf("possible accident for client %s: %s", st.clientID, msg),
		T:          t,
		DetectedAt: now,
		Meta:       meta,
	}
	st.lastAccidentAlert = now
	w.dispatch(ctx, alert)
	return alert
}
