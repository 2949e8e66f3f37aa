package nav

import "testing"

func depth(v float64) *float64 {
	return &v
}

func TestDepthWindowDropsFrontBeyondCapacity(t *testing.T) {
	w := NewDepthWindow(3)
	for _, d := range []float64{1, 2, 3, 4} {
		w.Push(d)
	}
	if w.Len() != 3 {
		t.Fatalf("len = %d, want 3", w.Len())
	}
	// 1 was dropped; spread is max-min over {2,3,4}.
	if w.Steady(2.0) {
		t.Error("spread 2.0 is not below variance 2.0")
	}
	if !w.Steady(2.1) {
		t.Error("spread 2.0 must be steady under variance 2.1")
	}
}

func TestSteadyNeedsThreeDepths(t *testing.T) {
	w := NewDepthWindow(10)
	w.Push(1.0)
	w.Push(1.0)
	if w.Steady(0.05) {
		t.Error("two identical depths must not be steady")
	}
	w.Push(1.0)
	if !w.Steady(0.05) {
		t.Error("three identical depths must be steady")
	}
}

func TestStationaryPredicate(t *testing.T) {
	varianceM := 0.05

	w := NewDepthWindow(10)
	stopped := &Record{T: 1, ClientID: "c", Events: []string{"stop"}}
	if !Stationary(stopped, w, varianceM) {
		t.Error("an explicit stop is stationary even with an empty depth window")
	}

	// Directional guidance vetoes stationariness even alongside a stop.
	both := &Record{T: 2, ClientID: "c", Events: []string{"stop", "proceed_slow"}}
	if Stationary(both, w, varianceM) {
		t.Error("directional guidance must veto a stop")
	}

	// Depth-only stationariness needs a steady window.
	quiet := &Record{T: 3, ClientID: "c", FreeAheadM: depth(2.0)}
	w2 := NewDepthWindow(10)
	w2.Observe(quiet)
	if Stationary(quiet, w2, varianceM) {
		t.Error("one depth is not enough evidence")
	}
	w2.Push(2.01)
	w2.Push(2.02)
	if !Stationary(quiet, w2, varianceM) {
		t.Error("steady depths with no guidance must be stationary")
	}
	w2.Push(3.0)
	if Stationary(quiet, w2, varianceM) {
		t.Error("a large depth change must break stationariness")
	}
}

func TestObserveSkipsMissingDepth(t *testing.T) {
	w := NewDepthWindow(10)
	w.Observe(&Record{T: 1, ClientID: "c"})
	w.Observe(&Record{T: 2, ClientID: "c", Events: []string{"stop"}})
	if w.Len() != 0 {
		t.Fatalf("missing depths must not be observed, len = %d", w.Len())
	}
}
