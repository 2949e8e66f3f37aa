package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guidelight-data/navwatch/internal/httputil"
	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/navindex"
	"github.com/guidelight-data/navwatch/internal/queryplan"
	"github.com/guidelight-data/navwatch/internal/version"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"status":  "ok",
		"service": "navwatch",
		"version": version.Version,
		"time":    s.clock.Now().UTC().Format(time.RFC3339),
	})
}

// ingestResponse is the reply for a single accepted record.
type ingestResponse struct {
	OK       bool         `json:"ok"`
	RecordID string       `json:"record_id"`
	Alerts   []*nav.Alert `json:"alerts,omitempty"`
}

func (s *Server) ingestRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.BadRequest(w, "failed to read request body")
		return
	}

	resp, err := s.ingestOne(r, body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSONOK(w, resp)
}

// ingestOne runs the single-record pipeline: parse, assign an id, store,
// then hand to the watchdog. Used by both the single and batch routes.
func (s *Server) ingestOne(r *http.Request, payload []byte) (*ingestResponse, error) {
	rec, err := nav.ParseRecord(payload)
	if err != nil {
		return nil, err
	}
	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	if err := s.records.InsertRecord(r.Context(), rec); err != nil {
		return nil, fmt.Errorf("store record: %w", err)
	}
	alerts, err := s.watchdog.Process(r.Context(), rec)
	if err != nil {
		return nil, err
	}
	return &ingestResponse{OK: true, RecordID: rec.RecordID, Alerts: alerts}, nil
}

const maxBatchErrors = 10

type batchRequest struct {
	Records []json.RawMessage `json:"records"`
}

type batchError struct {
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields,omitempty"`
	Error  string            `json:"error"`
}

type batchResponse struct {
	Ingested int          `json:"ingested"`
	Failed   int          `json:"failed"`
	Errors   []batchError `json:"errors,omitempty"`
	Alerts   []*nav.Alert `json:"alerts,omitempty"`
}

func (s *Server) ingestBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httputil.BadRequest(w, "body must be a JSON object with a records list")
		return
	}
	if len(req.Records) == 0 {
		httputil.BadRequest(w, "records list is empty")
		return
	}

	var resp batchResponse
	for i, raw := range req.Records {
		one, err := s.ingestOne(r, raw)
		if err != nil {
			resp.Failed++
			if len(resp.Errors) < maxBatchErrors {
				be := batchError{Index: i, Error: err.Error()}
				var verr *nav.ValidationError
				if errors.As(err, &verr) {
					be.Fields = verr.Fields
				}
				resp.Errors = append(resp.Errors, be)
			}
			continue
		}
		resp.Ingested++
		resp.Alerts = append(resp.Alerts, one.Alerts...)
	}
	httputil.WriteJSONOK(w, resp)
}

type buildIndexRequest struct {
	ClientID  string `json:"client_id"`
	SessionID string `json:"session_id,omitempty"`
	From      *int64 `json:"from,omitempty"`
	To        *int64 `json:"to,omitempty"`
}

// buildReport summarises a build without the record map; an index over a
// long session would make the full payload unreasonable.
type buildReport struct {
	IndexKey     string         `json:"index_key"`
	ClientID     string         `json:"client_id"`
	SessionID    string         `json:"session_id,omitempty"`
	RecordCount  int            `json:"record_count"`
	DroppedCount int            `json:"dropped_count"`
	TimeStart    int64          `json:"time_start"`
	TimeEnd      int64          `json:"time_end"`
	Counters     map[string]int `json:"counters"`
	AlmostCrash  int            `json:"almost_crashes"`
	StuckCount   int            `json:"stuck_intervals"`
	BuiltAt      time.Time      `json:"built_at"`
}

func (s *Server) buildIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req buildIndexRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httputil.BadRequest(w, "malformed JSON body")
		return
	}

	ix, err := s.builder.Build(r.Context(), req.ClientID, req.SessionID, req.From, req.To)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSONOK(w, buildReport{
		IndexKey:     ix.Key,
		ClientID:     ix.ClientID,
		SessionID:    ix.SessionID,
		RecordCount:  ix.RecordCount,
		DroppedCount: ix.DroppedCount,
		TimeStart:    ix.TimeStart,
		TimeEnd:      ix.TimeEnd,
		Counters:     ix.Counters,
		AlmostCrash:  len(ix.AlmostCrashes),
		StuckCount:   len(ix.StuckIntervals),
		BuiltAt:      ix.BuiltAt,
	})
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req queryplan.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httputil.BadRequest(w, "malformed JSON body")
		return
	}

	answer, resp, err := s.planner.Handle(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"status":   "success",
		"answer":   answer,
		"response": resp,
	})
}

func (s *Server) watchdogStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	clientID := strings.TrimPrefix(r.URL.Path, "/api/watchdog/status/")
	if clientID == "" || strings.Contains(clientID, "/") {
		httputil.BadRequest(w, "client id missing from path")
		return
	}
	status, ok := s.watchdog.Status(clientID)
	if !ok {
		httputil.NotFound(w, "unknown client")
		return
	}
	httputil.WriteJSONOK(w, status)
}

func (s *Server) watchdogClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	clientID := strings.TrimPrefix(r.URL.Path, "/api/watchdog/clear/")
	if clientID == "" || strings.Contains(clientID, "/") {
		httputil.BadRequest(w, "client id missing from path")
		return
	}
	cleared := s.watchdog.ClearClient(clientID)
	httputil.WriteJSONOK(w, map[string]bool{"cleared": cleared})
}

type authorizeRequest struct {
	ClientID    string `json:"client_id"`
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Authorized  *bool  `json:"authorized,omitempty"`
}

func (s *Server) authorizeContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req authorizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httputil.BadRequest(w, "malformed JSON body")
		return
	}
	fields := map[string]string{}
	if req.ClientID == "" {
		fields["client_id"] = "required non-empty string"
	}
	if req.ContactID == "" {
		fields["contact_id"] = "required non-empty string"
	}
	if len(fields) > 0 {
		writeDomainError(w, &nav.ValidationError{Fields: fields})
		return
	}

	authorized := true
	if req.Authorized != nil {
		authorized = *req.Authorized
	}
	contact := nav.Contact{
		ClientID:   req.ClientID,
		ContactID:  req.ContactID,
		Name:       req.ContactName,
		Channel:    req.Channel,
		Authorized: authorized,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := s.contacts.UpsertContact(r.Context(), contact); err != nil {
		writeDomainError(w, fmt.Errorf("store contact: %w", err))
		return
	}
	httputil.WriteJSONOK(w, contact)
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	clientID := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	if clientID == "" || strings.Contains(clientID, "/") {
		httputil.BadRequest(w, "client id missing from path")
		return
	}
	requesterID := r.URL.Query().Get("requester_id")
	if requesterID == "" {
		writeDomainError(w, &nav.ValidationError{Fields: map[string]string{"requester_id": "required non-empty string"}})
		return
	}

	// Same gate as /api/query: alerts reveal location history.
	ok, err := s.contacts.IsAuthorized(r.Context(), requesterID, clientID)
	if err != nil {
		writeDomainError(w, fmt.Errorf("authorization check: %w", err))
		return
	}
	if !ok {
		writeDomainError(w, nav.ErrUnauthorized)
		return
	}

	var kind nav.AlertKind
	switch k := r.URL.Query().Get("kind"); k {
	case "", string(nav.AlertStuck), string(nav.AlertAccident):
		kind = nav.AlertKind(k)
	default:
		httputil.BadRequest(w, "kind must be stuck or accident")
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	alerts, err := s.alerts.RecentAlerts(r.Context(), clientID, kind, limit)
	if err != nil {
		writeDomainError(w, fmt.Errorf("list alerts: %w", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"client_id": clientID,
		"alerts":    alerts,
	})
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	ctx := r.Context()
	clients, err := s.records.Clients(ctx)
	if err != nil {
		writeDomainError(w, fmt.Errorf("count clients: %w", err))
		return
	}
	recordCount, err := s.records.CountRecords(ctx)
	if err != nil {
		writeDomainError(w, fmt.Errorf("count records: %w", err))
		return
	}
	indexCount, err := s.indexes.CountIndexes(ctx)
	if err != nil {
		writeDomainError(w, fmt.Errorf("count indexes: %w", err))
		return
	}
	alertCount, err := s.alerts.CountAlerts(ctx)
	if err != nil {
		writeDomainError(w, fmt.Errorf("count alerts: %w", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"clients":                 len(clients),
		"log_records":             recordCount,
		"indices":                 indexCount,
		"alerts":                  alertCount,
		"watchdog_active_clients": len(s.watchdog.ActiveClients()),
	})
}

// loadClientIndex fetches the stored client-wide index for debug views.
func (s *Server) loadClientIndex(r *http.Request, clientID string) (*navindex.UserIndex, error) {
	return s.indexes.GetIndex(r.Context(), navindex.IndexKey(clientID, ""))
}
