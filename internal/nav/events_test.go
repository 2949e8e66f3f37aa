package nav

import "testing"

func TestObstacleEventsMatchExactly(t *testing.T) {
	for _, e := range []string{"obstacle_center", "obstacle_close", "collision_warning"} {
		if !IsObstacleEvent(e) {
			t.Errorf("%q must be an obstacle event", e)
		}
	}
	// Suffixed hazard names are NOT obstacle events; the hazard enum is closed.
	if IsObstacleEvent("obstacle_center_far") {
		t.Error("obstacle_center_far must not match: obstacle events are exact")
	}
	if IsObstacleEvent("obstacle") {
		t.Error("bare obstacle must not match")
	}
}

func TestDirectionalEventsMatchBySubstring(t *testing.T) {
	for _, e := range []string{"veer_left", "veer_left_hard", "proceed", "proceed_slow", "now_proceed"} {
		if !IsDirectionalEvent(e) {
			t.Errorf("%q must be directional", e)
		}
	}
	// "veering" is a veer but not directional: it contains neither
	// veer_left, veer_right nor proceed.
	for _, e := range []string{"stop", "obstacle_center", "veering"} {
		if IsDirectionalEvent(e) {
			t.Errorf("%q must not be directional", e)
		}
	}
}

func TestVeerMatchesEitherDirection(t *testing.T) {
	for _, e := range []string{"veer_left", "veer_right", "veer_right_hard", "veering"} {
		if !IsVeerEvent(e) {
			t.Errorf("%q must count as a veer", e)
		}
	}
	if IsVeerEvent("proceed") {
		t.Error("proceed is not a veer")
	}
}

func TestStopAndAccidentAreExact(t *testing.T) {
	if !IsStopEvent("stop") || IsStopEvent("stop_now") {
		t.Error("stop matches exactly")
	}
	for _, e := range []string{"fall", "impact", "collision", "device_drop"} {
		if !IsAccidentEvent(e) {
			t.Errorf("%q must be an accident event", e)
		}
	}
	if IsAccidentEvent("fall_detected") || IsAccidentEvent("fell") {
		t.Error("accident events match exactly")
	}
}

func TestSliceHelpers(t *testing.T) {
	events := []string{"obstacle_close", "veer_left_hard", "stop"}
	if !HasObstacleEvent(events) || !HasDirectionalEvent(events) || !HasStopEvent(events) {
		t.Error("slice helpers must find each category")
	}
	if HasAccidentEvent(events) {
		t.Error("no accident event present")
	}
	got := ObstacleEventNames(events)
	if len(got) != 1 || got[0] != "obstacle_close" {
		t.Errorf("ObstacleEventNames = %v", got)
	}
}
