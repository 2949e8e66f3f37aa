package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/guidelight-data/navwatch/internal/httputil"
	"github.com/guidelight-data/navwatch/internal/units"
)

// hazardsChart renders an HTML timeline of a client's stored hazards
// using go-echarts. Debugging-only endpoint (no auth) for eyeballing
// detector output without the mobile app.
// Query params:
//   - client_id (required)
func (s *Server) hazardsChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		httputil.BadRequest(w, "client_id parameter is required")
		return
	}

	ix, err := s.loadClientIndex(r, clientID)
	if err != nil {
		writeDomainError(w, fmt.Errorf("no index for client %s (build one first): %w", clientID, err))
		return
	}

	nearMissData := make([]opts.ScatterData, 0, len(ix.AlmostCrashes))
	for _, nm := range ix.AlmostCrashes {
		depth := 0.0
		if nm.FreeAheadM != nil {
			depth = *nm.FreeAheadM
		}
		nearMissData = append(nearMissData, opts.ScatterData{
			Value: []interface{}{nm.T, depth, nm.MergedCount},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Navwatch Hazards", Theme: "dark", Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Almost-crash moments",
			Subtitle: fmt.Sprintf("client=%s records=%d built=%s", clientID, ix.RecordCount, ix.BuiltAt.Format("2006-01-02 15:04:05")),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (unix s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "free space ahead (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("near misses", nearMissData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	stuckX := make([]string, 0, len(ix.StuckIntervals))
	stuckY := make([]opts.BarData, 0, len(ix.StuckIntervals))
	for _, iv := range ix.StuckIntervals {
		stuckX = append(stuckX, units.FormatUnix(iv.Start, nil))
		stuckY = append(stuckY, opts.BarData{Value: iv.DurationS})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Stuck intervals",
			Subtitle: fmt.Sprintf("count=%d", len(ix.StuckIntervals)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "duration (s)", NameLocation: "middle", NameGap: 35}),
	)
	bar.SetXAxis(stuckX).
		AddSeries("stuck", stuckY,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(scatter, bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
