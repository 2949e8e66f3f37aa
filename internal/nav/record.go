// Package nav defines the shared telemetry model for the assistive
// navigation service: device log records, event category semantics, the
// stationary predicate, and the detection thresholds that the watchdog,
// the indexer, and the query planner all agree on.
package nav

// Record is one telemetry log line from a handset. The device emits one
// record per guidance tick; t is the device wall clock in unix seconds.
// Confidence grades the whole perception frame, FreeAheadM is the
// forward clearance when the depth head produced one, and Classes are
// the perception labels seen in the frame.
type Record struct {
	RecordID   string   `json:"record_id,omitempty"`
	T          int64    `json:"t"`
	ClientID   string   `json:"client_id"`
	SessionID  string   `json:"session_id,omitempty"`
	Events     []string `json:"events"`
	Classes    []string `json:"classes,omitempty"`
	FreeAheadM *float64 `json:"free_ahead_m,omitempty"`
	Confidence float64  `json:"confidence"`
	App        string   `json:"app,omitempty"`
}

// Depth returns the forward clearance when the record carries one.
// A missing depth is never treated as zero.
func (r *Record) Depth() (float64, bool) {
	if r.FreeAheadM == nil {
		return 0, false
	}
	return *r.FreeAheadM, true
}
