// Package api is the HTTP surface of the telemetry service: ingest,
// index builds, caretaker queries, watchdog inspection and the alert
// audit trail. Handlers translate domain errors to status codes;
// everything else is delegated.
package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/guidelight-data/navwatch/internal/httputil"
	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/queryplan"
	"github.com/guidelight-data/navwatch/internal/store"
	"github.com/guidelight-data/navwatch/internal/timeutil"
	"github.com/guidelight-data/navwatch/internal/watchdog"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxBodyBytes caps request bodies; handsets send small payloads and a
// batch tops out well under this.
const maxBodyBytes = 4 << 20

type Server struct {
	records  store.RecordStore
	indexes  store.IndexStore
	alerts   store.AlertStore
	contacts store.ContactStore
	watchdog *watchdog.Watchdog
	builder  queryplan.IndexBuilder
	planner  *queryplan.Planner
	clock    timeutil.Clock
}

func NewServer(records store.RecordStore, indexes store.IndexStore, alerts store.AlertStore,
	contacts store.ContactStore, wd *watchdog.Watchdog, builder queryplan.IndexBuilder,
	planner *queryplan.Planner, clock timeutil.Clock) *Server {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Server{
		records:  records,
		indexes:  indexes,
		alerts:   alerts,
		contacts: contacts,
		watchdog: wd,
		builder:  builder,
		planner:  planner,
		clock:    clock,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.health)
	mux.HandleFunc("/api/logs/ingest", s.ingestRecord)
	mux.HandleFunc("/api/logs/batch", s.ingestBatch)
	mux.HandleFunc("/api/index/build", s.buildIndex)
	mux.HandleFunc("/api/query", s.query)
	mux.HandleFunc("/api/watchdog/status/", s.watchdogStatus)
	mux.HandleFunc("/api/watchdog/clear/", s.watchdogClear)
	mux.HandleFunc("/api/contacts/authorize", s.authorizeContact)
	mux.HandleFunc("/api/alerts/", s.listAlerts)
	mux.HandleFunc("/api/stats", s.showStats)
	mux.HandleFunc("/debug/charts/hazards", s.hazardsChart)
	mux.HandleFunc("/", s.notFound)
	return mux
}

// writeDomainError maps domain errors onto status codes. Validation
// failures carry their per-field reasons so handset developers can see
// which field the firmware mangled.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *nav.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid request",
			"fields": verr.Fields,
		})
	case errors.Is(err, nav.ErrUnauthorized):
		httputil.WriteJSONError(w, http.StatusForbidden, "requester is not authorized for this client")
	case errors.Is(err, store.ErrNotFound):
		httputil.NotFound(w, "not found")
	default:
		httputil.InternalServerError(w, err.Error())
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, map[string]any{
		"error": "unknown endpoint",
		"endpoints": []string{
			"GET /health",
			"POST /api/logs/ingest",
			"POST /api/logs/batch",
			"POST /api/index/build",
			"POST /api/query",
			"GET /api/watchdog/status/<client_id>",
			"POST /api/watchdog/clear/<client_id>",
			"POST /api/contacts/authorize",
			"GET /api/alerts/<client_id>",
			"GET /api/stats",
			"GET /debug/charts/hazards",
		},
	})
}
