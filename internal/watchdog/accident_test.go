package watchdog

import (
	"testing"
	"time"

	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/timeutil"
)

func anchorRec(clientID string, t int64, conf, depth float64) *nav.Record {
	return &nav.Record{T: t, ClientID: clientID,
		Events: []string{"obstacle_close"}, Confidence: conf, FreeAheadM: &depth}
}

func TestDirectAccidentEvent(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	sink := &fakeSink{}
	w := New(nav.DefaultThresholds(), clock, sink)

	alerts := process(t, w, &nav.Record{T: 50, ClientID: "c1", Events: []string{"fall"}, Confidence: 0.9})
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	a := alerts[0]
	if a.Kind != nav.AlertAccident || a.Severity != nav.SeverityCritical {
		t.Errorf("alert = %s/%s, want accident/critical", a.Kind, a.Severity)
	}
	if a.Meta["pattern"] != nav.PatternDirectEvent {
		t.Errorf("pattern = %v, want %s", a.Meta["pattern"], nav.PatternDirectEvent)
	}
	if a.T != 50 {
		t.Errorf("alert T = %d, want the record timestamp", a.T)
	}
	if a.Rationale == "" {
		t.Error("accident alerts carry a rationale")
	}
}

func TestDirectAccidentEventIsExact(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	w := New(nav.DefaultThresholds(), clock, nil)

	// Suffixed variants are not in the accident enum.
	if alerts := process(t, w, &nav.Record{T: 50, ClientID: "c1", Events: []string{"fall_detected"}, Confidence: 0.9}); len(alerts) != 0 {
		t.Fatalf("fall_detected must not alert, got %+v", alerts)
	}
	for _, e := range []string{"impact", "collision", "device_drop"} {
		w.ClearClient("c1")
		if alerts := process(t, w, &nav.Record{T: 50, ClientID: "c1", Events: []string{e}, Confidence: 0.9}); len(alerts) != 1 {
			t.Fatalf("%q must alert, got %+v", e, alerts)
		}
	}
}

func TestAccidentDebounceSharedAcrossPatterns(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	w := New(nav.DefaultThresholds(), clock, nil)

	if alerts := process(t, w, &nav.Record{T: 50, ClientID: "c1", Events: []string{"impact"}, Confidence: 0.9}); len(alerts) != 1 {
		t.Fatalf("expected first accident alert, got %+v", alerts)
	}

	// A second direct event an hour later is still inside the 7200s
	// debounce and stays quiet.
	clock.Advance(time.Hour)
	if alerts := process(t, w, &nav.Record{T: 3650, ClientID: "c1", Events: []string{"collision"}, Confidence: 0.9}); len(alerts) != 0 {
		t.Fatalf("debounced accident still alerted: %+v", alerts)
	}

	clock.Advance(2 * time.Hour)
	if alerts := process(t, w, &nav.Record{T: 10850, ClientID: "c1", Events: []string{"collision"}, Confidence: 0.9}); len(alerts) != 1 {
		t.Fatalf("expected re-armed accident alert, got %+v", alerts)
	}
}

func TestObstacleStopSilenceStreaming(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(36, 0))
	w := New(nav.DefaultThresholds(), clock, nil)

	// A filler record keeps the collision anchor off the edge of the
	// scanned range.
	process(t, w, &nav.Record{T: 0, ClientID: "c1", Events: []string{"proceed"}, Confidence: 0.9})
	process(t, w, anchorRec("c1", 1, 0.9, 0.3))
	if alerts := process(t, w, stopRec("c1", 4)); len(alerts) != 0 {
		t.Fatalf("silence not yet long enough, got %+v", alerts)
	}

	alerts := process(t, w, stopRec("c1", 36))
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	a := alerts[0]
	if a.Meta["pattern"] != nav.PatternObstacleStopSilence {
		t.Errorf("pattern = %v, want %s", a.Meta["pattern"], nav.PatternObstacleStopSilence)
	}
	if a.T != 1 {
		t.Errorf("alert T = %d, want the anchor timestamp", a.T)
	}
	if a.Meta["anchor_depth_m"] != 0.3 {
		t.Errorf("anchor_depth_m = %v, want 0.3", a.Meta["anchor_depth_m"])
	}
	if a.Meta["silence_s"] != int64(35) {
		t.Errorf("silence_s = %v, want 35", a.Meta["silence_s"])
	}
}

func TestObstacleStopSilenceOldestRecordNeverAnchors(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(36, 0))
	w := New(nav.DefaultThresholds(), clock, nil)

	// Same shape as the streaming case minus the filler: the collision
	// sits at the oldest scanned slot, which the scan skips. The offline
	// index pass is the layer that catches these.
	process(t, w, anchorRec("c1", 0, 0.9, 0.3))
	process(t, w, stopRec("c1", 3))
	if alerts := process(t, w, stopRec("c1", 35)); len(alerts) != 0 {
		t.Fatalf("anchor at the scan floor must not fire, got %+v", alerts)
	}
}

func TestObstacleStopSilenceClearedByMovement(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	w := New(nav.DefaultThresholds(), clock, nil)

	process(t, w, &nav.Record{T: 0, ClientID: "c1", Events: []string{"proceed"}, Confidence: 0.9})
	process(t, w, anchorRec("c1", 1, 0.9, 0.3))
	process(t, w, stopRec("c1", 4))
	process(t, w, &nav.Record{T: 10, ClientID: "c1", Events: []string{"veer_left"}, Confidence: 0.9})
	if alerts := process(t, w, stopRec("c1", 36)); len(alerts) != 0 {
		t.Fatalf("movement after the stop must clear the pattern, got %+v", alerts)
	}
}

func TestObstacleStopSilenceAnchorRequirements(t *testing.T) {
	noDepth := &nav.Record{T: 1, ClientID: "c1", Events: []string{"obstacle_close"}, Confidence: 0.9}
	cases := []struct {
		name   string
		anchor *nav.Record
	}{
		{"low confidence", anchorRec("c1", 1, 0.5, 0.3)},
		{"too far", anchorRec("c1", 1, 0.9, 1.5)},
		{"depth unknown", noDepth},
		{"no obstacle event", &nav.Record{T: 1, ClientID: "c1", Events: []string{"proceed"}, Confidence: 0.9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := timeutil.NewMockClock(time.Unix(36, 0))
			w := New(nav.DefaultThresholds(), clock, nil)
			process(t, w, &nav.Record{T: 0, ClientID: "c1", Events: []string{"proceed"}, Confidence: 0.9})
			process(t, w, tc.anchor)
			process(t, w, stopRec("c1", 4))
			if alerts := process(t, w, stopRec("c1", 36)); len(alerts) != 0 {
				t.Fatalf("non-qualifying anchor fired: %+v", alerts)
			}
		})
	}
}

func TestVeerSurgeThenStop(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(150, 0))
	w := New(nav.DefaultThresholds(), clock, nil)

	process(t, w, &nav.Record{T: 0, ClientID: "c1", Events: []string{"veer"}, Confidence: 0.9})
	process(t, w, &nav.Record{T: 10, ClientID: "c1", Events: []string{"veer"}, Confidence: 0.9})
	process(t, w, &nav.Record{T: 20, ClientID: "c1", Events: []string{"veer"}, Confidence: 0.9})
	alerts := process(t, w, stopRec("c1", 140))
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want a veer surge alert", len(alerts))
	}
	a := alerts[0]
	if a.Meta["pattern"] != nav.PatternVeerStop {
		t.Errorf("pattern = %v, want %s", a.Meta["pattern"], nav.PatternVeerStop)
	}
	if a.Meta["veer_events"] != 3 {
		t.Errorf("veer_events = %v, want 3", a.Meta["veer_events"])
	}
	if a.Meta["since_move_s"] != int64(140) {
		t.Errorf("since_move_s = %v, want 140", a.Meta["since_move_s"])
	}
}

func TestVeerSurgeNeedsIdleTail(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(150, 0))
	w := New(nav.DefaultThresholds(), clock, nil)

	// veer_left is a navigation instruction, so the walk back from the
	// stop ends there and the idle span comes up short.
	process(t, w, &nav.Record{T: 0, ClientID: "c1", Events: []string{"veer"}, Confidence: 0.9})
	process(t, w, &nav.Record{T: 10, ClientID: "c1", Events: []string{"veer"}, Confidence: 0.9})
	process(t, w, &nav.Record{T: 120, ClientID: "c1", Events: []string{"veer_left"}, Confidence: 0.9})
	if alerts := process(t, w, stopRec("c1", 140)); len(alerts) != 0 {
		t.Fatalf("directional event in the tail must veto the surge, got %+v", alerts)
	}
}

func TestVeerSurgeNeedsThreeVeers(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(150, 0))
	w := New(nav.DefaultThresholds(), clock, nil)

	process(t, w, &nav.Record{T: 0, ClientID: "c1", Events: []string{"veer"}, Confidence: 0.9})
	process(t, w, &nav.Record{T: 10, ClientID: "c1", Events: []string{"veer"}, Confidence: 0.9})
	process(t, w, &nav.Record{T: 20, ClientID: "c1", Events: []string{"proceed"}, Confidence: 0.9})
	if alerts := process(t, w, stopRec("c1", 140)); len(alerts) != 0 {
		t.Fatalf("two veers must not trip the surge, got %+v", alerts)
	}
}
