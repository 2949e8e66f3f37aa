package nav

import "time"

// Default detection thresholds. Distances are meters, spans are seconds
// of record time, debounces are wall-clock durations. The values were
// tuned against field recordings from the pilot cohort; override them
// through the service config file, not here.
const (
	DefaultCrashNearM             = 0.6
	DefaultConfMin                = 0.6
	DefaultMergeWindowS           = 3
	DefaultStuckMinS              = 120
	DefaultStuckAlertS            = 300
	DefaultStuckVarianceM         = 0.05
	DefaultStuckGapS              = 10
	DefaultAccidentPatternWindowS = 5
	DefaultAccidentNoProceedS     = 30
	DefaultAccidentDepthM         = 0.4
	DefaultAccidentConf           = 0.7
	DefaultWindowSize             = 100

	DefaultStuckDebounce    = 900 * time.Second
	DefaultAccidentDebounce = 7200 * time.Second
)

// Thresholds carries every tunable the detectors share. The watchdog,
// the indexer and the query planner must all read the same values or
// their hazard counts drift apart.
type Thresholds struct {
	// CrashNearM is the free-path distance below which an obstacle
	// sighting counts as a near miss.
	CrashNearM float64
	// ConfMin is the minimum detection confidence the indexer trusts.
	ConfMin float64
	// MergeWindowS chains near-miss candidates within this many seconds
	// into one reported moment.
	MergeWindowS int64
	// StuckMinS is the minimum stationary span the indexer reports.
	StuckMinS int64
	// StuckAlertS is the stationary span after which the watchdog alerts.
	StuckAlertS int64
	// StuckVarianceM is the max depth spread still considered "no movement".
	StuckVarianceM float64
	// StuckGapS merges stuck intervals separated by gaps this short.
	StuckGapS int64
	// AccidentPatternWindowS bounds the obstacle-to-stop scan.
	AccidentPatternWindowS int64
	// AccidentNoProceedS is the post-stop silence that suggests an accident.
	AccidentNoProceedS int64
	// AccidentDepthM is the obstacle distance that makes a collision plausible.
	AccidentDepthM float64
	// AccidentConf is the detection confidence required of a collision anchor.
	AccidentConf float64
	// WindowSize caps the watchdog's per-client record window.
	WindowSize int

	StuckDebounce    time.Duration
	AccidentDebounce time.Duration
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CrashNearM:             DefaultCrashNearM,
		ConfMin:                DefaultConfMin,
		MergeWindowS:           DefaultMergeWindowS,
		StuckMinS:              DefaultStuckMinS,
		StuckAlertS:            DefaultStuckAlertS,
		StuckVarianceM:         DefaultStuckVarianceM,
		StuckGapS:              DefaultStuckGapS,
		AccidentPatternWindowS: DefaultAccidentPatternWindowS,
		AccidentNoProceedS:     DefaultAccidentNoProceedS,
		AccidentDepthM:         DefaultAccidentDepthM,
		AccidentConf:           DefaultAccidentConf,
		WindowSize:             DefaultWindowSize,
		StuckDebounce:          DefaultStuckDebounce,
		AccidentDebounce:       DefaultAccidentDebounce,
	}
}
