package navindex

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/guidelight-data/navwatch/internal/nav"
)

// IndexStats summarizes the sensor quality of an index: free-space depth
// quantiles and confidence moments. Caretaker dashboards use the depth
// percentiles to spot a client walking through consistently tight
// spaces; the confidence moments flag a degrading camera.
type IndexStats struct {
	DepthCount int     `json:"depth_count"`
	DepthP10   float64 `json:"depth_p10,omitempty"`
	DepthP50   float64 `json:"depth_p50,omitempty"`
	DepthP90   float64 `json:"depth_p90,omitempty"`

	ConfMean   float64 `json:"conf_mean,omitempty"`
	ConfStddev float64 `json:"conf_stddev,omitempty"`
}

// ComputeStats folds records into an IndexStats. Returns nil when there
// are no records at all.
func ComputeStats(records []nav.Record) *IndexStats {
	if len(records) == 0 {
		return nil
	}
	s := &IndexStats{}

	var depths []float64
	confs := make([]float64, 0, len(records))
	for i := range records {
		rec := &records[i]
		if d, ok := rec.Depth(); ok {
			depths = append(depths, d)
		}
		confs = append(confs, rec.Confidence)
	}

	s.DepthCount = len(depths)
	if len(depths) > 0 {
		sort.Float64s(depths)
		s.DepthP10 = stat.Quantile(0.10, stat.Empirical, depths, nil)
		s.DepthP50 = stat.Quantile(0.50, stat.Empirical, depths, nil)
		s.DepthP90 = stat.Quantile(0.90, stat.Empirical, depths, nil)
	}

	s.ConfMean = stat.Mean(confs, nil)
	if len(confs) > 1 {
		s.ConfStddev = stat.StdDev(confs, nil)
	}
	return s
}
