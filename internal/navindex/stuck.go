package navindex

import "github.com/guidelight-data/navwatch/internal/nav"

// StuckIntervals derives no-progress spans from records ordered by
// ascending t. Each record first feeds the rolling depth window, then the
// shared stationary predicate decides whether it extends the open
// interval. Closing a long-enough interval emits it and resets the depth
// window so depths from before the movement do not leak into the next
// span. Emitted intervals separated by gaps of at most gapS merge.
func StuckIntervals(records []nav.Record, stuckMinS int64, varianceM float64, gapS int64) []StuckInterval {
	dw := nav.NewDepthWindow(nav.DepthWindowSize)
	var out []StuckInterval
	var start, end int64
	open := false

	emit := func() {
		if end-start >= stuckMinS {
			out = append(out, StuckInterval{Start: start, End: end, DurationS: end - start})
		}
	}

	for i := range records {
		rec := &records[i]
		dw.Observe(rec)
		if nav.Stationary(rec, dw, varianceM) {
			if !open {
				open = true
				start = rec.T
			}
			end = rec.T
			continue
		}
		if open {
			emit()
			open = false
			dw.Reset()
		}
	}
	if open {
		emit()
	}
	return mergeIntervals(out, gapS)
}

// mergeIntervals joins consecutive intervals whose gap is at most gapS.
// The merged duration spans the gap. One pass suffices: survivors are
// separated by more than gapS by construction.
func mergeIntervals(in []StuckInterval, gapS int64) []StuckInterval {
	if len(in) == 0 {
		return nil
	}
	out := []StuckInterval{in[0]}
	for _, iv := range in[1:] {
		last := &out[len(out)-1]
		if iv.Start-last.End <= gapS {
			last.End = iv.End
			last.DurationS = last.End - last.Start
			continue
		}
		out = append(out, iv)
	}
	return out
}
