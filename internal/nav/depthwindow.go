package nav

// DepthWindow is the rolling window of recent free-space depths used by
// the stationary predicate. Both the indexer (walking records forward)
// and the watchdog (walking its window backward) feed it one record at a
// time; pushing beyond capacity drops the front, whichever end of the
// scan that happens to be.
type DepthWindow struct {
	depths []float64
	cap    int
}

// DepthWindowSize is the number of recent depths the stationary predicate
// considers.
const DepthWindowSize = 10

// NewDepthWindow returns a window holding at most capacity depths.
// A capacity of 0 or less falls back to DepthWindowSize.
func NewDepthWindow(capacity int) *DepthWindow {
	if capacity <= 0 {
		capacity = DepthWindowSize
	}
	return &DepthWindow{cap: capacity}
}

// Push records a depth, dropping the front entry beyond capacity.
func (w *DepthWindow) Push(d float64) {
	w.depths = append(w.depths, d)
	if len(w.depths) > w.cap {
		w.depths = w.depths[1:]
	}
}

// Observe pushes the record's free-space depth when it has one.
func (w *DepthWindow) Observe(r *Record) {
	if d, ok := r.Depth(); ok {
		w.Push(d)
	}
}

// Reset drops all accumulated depths.
func (w *DepthWindow) Reset() { w.depths = nil }

// Len returns the number of depths currently held.
func (w *DepthWindow) Len() int { return len(w.depths) }

// Steady reports whether the window shows no meaningful depth change:
// at least three depths with max-min spread below varianceM. Fewer than
// three depths is never steady, so a depth-only stationary call needs a
// few ticks of evidence while an explicit stop event does not.
func (w *DepthWindow) Steady(varianceM float64) bool {
	if len(w.depths) < 3 {
		return false
	}
	min, max := w.depths[0], w.depths[0]
	for _, d := range w.depths[1:] {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return max-min < varianceM
}

// Stationary is the shared no-forward-progress predicate: an explicit stop
// event or a steady depth window counts, but any directional guidance in
// the record vetoes it. Callers must Observe the record before asking.
func Stationary(r *Record, w *DepthWindow, varianceM float64) bool {
	if HasDirectionalEvent(r.Events) {
		return false
	}
	if HasStopEvent(r.Events) {
		return true
	}
	return w.Steady(varianceM)
}
