package nav

import "strings"

// Event categories. Obstacle, accident and stop events match by exact
// name; directional guidance matches by substring so suffixed variants
// such as "veer_left_hard" or "proceed_slow" still count as movement.
// The asymmetry is deliberate: guidance strings are composed on-device
// with free-form suffixes, while hazard events come from a fixed enum.
var (
	obstacleEvents = map[string]bool{
		"obstacle_center":   true,
		"obstacle_close":    true,
		"collision_warning": true,
	}
	accidentEvents = map[string]bool{
		"fall":        true,
		"impact":      true,
		"collision":   true,
		"device_drop": true,
	}
	stopEvents = map[string]bool{
		"stop": true,
	}
	directionalMarkers = []string{"veer_left", "veer_right", "proceed"}
)

// IsObstacleEvent reports whether e names an obstacle hazard (exact match).
func IsObstacleEvent(e string) bool { return obstacleEvents[e] }

// IsAccidentEvent reports whether e names a direct accident signal (exact match).
func IsAccidentEvent(e string) bool { return accidentEvents[e] }

// IsStopEvent reports whether e is the stop instruction (exact match).
func IsStopEvent(e string) bool { return stopEvents[e] }

// IsDirectionalEvent reports whether e carries movement guidance
// (substring match on veer_left, veer_right, proceed).
func IsDirectionalEvent(e string) bool {
	for _, m := range directionalMarkers {
		if strings.Contains(e, m) {
			return true
		}
	}
	return false
}

// IsVeerEvent reports whether e is a veer instruction of either direction.
func IsVeerEvent(e string) bool { return strings.Contains(e, "veer") }

// HasObstacleEvent reports whether any event in the list is an obstacle event.
func HasObstacleEvent(events []string) bool {
	for _, e := range events {
		if IsObstacleEvent(e) {
			return true
		}
	}
	return false
}

// HasAccidentEvent reports whether any event in the list is an accident event.
func HasAccidentEvent(events []string) bool {
	for _, e := range events {
		if IsAccidentEvent(e) {
			return true
		}
	}
	return false
}

// HasStopEvent reports whether any event in the list is a stop event.
func HasStopEvent(events []string) bool {
	for _, e := range events {
		if IsStopEvent(e) {
			return true
		}
	}
	return false
}

// HasDirectionalEvent reports whether any event in the list carries
// movement guidance.
func HasDirectionalEvent(events []string) bool {
	for _, e := range events {
		if IsDirectionalEvent(e) {
			return true
		}
	}
	return false
}

// ObstacleEventNames returns the obstacle events present in the list,
// in their original order.
func ObstacleEventNames(events []string) []string {
	var out []string
	for _, e := range events {
		if IsObstacleEvent(e) {
			out = append(out, e)
		}
	}
	return out
}

// AccidentEventNames returns the accident events present in the list,
// in their original order.
func AccidentEventNames(events []string) []string {
	var out []string
	for _, e := range events {
		if IsAccidentEvent(e) {
			out = append(out, e)
		}
	}
	return out
}
