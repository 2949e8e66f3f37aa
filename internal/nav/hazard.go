package nav

// Accident pattern names, shared between the watchdog's streaming
// detector and the indexer's offline scan so stored alerts and query
// answers agree on vocabulary.
const (
	PatternDirectEvent         = "direct_event"
	PatternObstacleStopSilence = "obstacle_stop_silence"
	PatternVeerStop            = "veer_stop"
)

// CollisionAnchorDepth reports whether rec can anchor the
// obstacle-stop-silence pattern: an obstacle event at confidence
// >= AccidentConf with a known clearance of at most AccidentDepthM.
// A record without a depth reading never anchors; the collision
// suspicion needs the concrete distance.
func CollisionAnchorDepth(rec *Record, th Thresholds) (float64, bool) {
	if !HasObstacleEvent(rec.Events) {
		return 0, false
	}
	if rec.Confidence < th.AccidentConf {
		return 0, false
	}
	depth, ok := rec.Depth()
	if !ok || depth > th.AccidentDepthM {
		return 0, false
	}
	return depth, true
}
