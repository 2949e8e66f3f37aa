package watchdog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/guidelight-data/navwatch/internal/nav"
)

// checkStuck walks the window newest to oldest, extending the stationary
// run as far back as it stays contiguous, and alerts when the run has
// lasted StuckAlertS against the wall clock. The depth window fills
// during the walk with the same push-drop rule the indexer uses going
// forward.
func (w *Watchdog) checkStuck(ctx context.Context, st *clientState) *nav.Alert {
	if len(st.window) < 2 {
		return nil
	}

	dw := nav.NewDepthWindow(nav.DepthWindowSize)
	var start int64
	run := 0
	for i := len(st.window) - 1; i >= 0; i-- {
		rec := &st.window[i]
		dw.Observe(rec)
		if !nav.Stationary(rec, dw, w.th.StuckVarianceM) {
			break
		}
		start = rec.T
		run++
	}
	if run == 0 {
		return nil
	}

	now := w.clock.Now()
	stuckFor := now.Unix() - start
	if stuckFor < w.th.StuckAlertS {
		return nil
	}
	if !st.lastStuckAlert.IsZero() && now.Sub(st.lastStuckAlert) < w.th.StuckDebounce {
		return nil
	}

	since := start
	alert := &nav.Alert{
		AlertID:    uuid.NewString(),
		ClientID:   st.clientID,
		Kind:       nav.AlertStuck,
		Severity:   nav.SeverityWarning,
		Rationale:  fmt.Sprintf("client %s has shown no movement for %ds", st.clientID, stuckFor),
		Since:      &since,
		T:          st.window[len(st.window)-1].T,
		DetectedAt: now,
		Meta: map[string]any{
			"stationary_since": start,
			"stationary_s":     stuckFor,
			"records_in_run":   run,
		},
	}
	st.lastStuckAlert = now
	w.dispatch(ctx, alert)
	return alert
}
