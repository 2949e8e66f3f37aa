// Package watchdog watches live telemetry for pedestrians in trouble.
// It keeps a bounded per-client window of recent records and emits stuck
// and accident alerts with wall-clock debouncing so a client standing at
// a crossing does not page their contacts every tick.
package watchdog

import (
	"context"
	"sync"
	"time"

	"github.com/guidelight-data/navwatch/internal/monitoring"
	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/timeutil"
)

// AlertSink receives emitted alerts for persistence and contact
// notification. Dispatch runs inside the client's processing section, so
// alert order matches record order for a client.
type AlertSink interface {
	Dispatch(ctx context.Context, alert *nav.Alert) error
}

// Watchdog is the streaming detector. Records for one client are
// processed strictly in arrival order; distinct clients proceed in
// parallel.
type Watchdog struct {
	mu      sync.RWMutex
	clients map[string]*clientState

	th    nav.Thresholds
	clock timeutil.Clock
	sink  AlertSink
}

// clientState is everything the watchdog remembers about one client.
// The window holds arrival order, not record-time order: handsets can
// replay buffered records after a connectivity gap.
type clientState struct {
	mu                sync.Mutex
	clientID          string
	window            []nav.Record
	lastStuckAlert    time.Time
	lastAccidentAlert time.Time
}

// New returns a watchdog using the given thresholds and clock. A nil
// sink means alerts are logged but not delivered anywhere.
func New(th nav.Thresholds, clock timeutil.Clock, sink AlertSink) *Watchdog {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if th.WindowSize <= 0 {
		th.WindowSize = nav.DefaultWindowSize
	}
	return &Watchdog{
		clients: make(map[string]*clientState),
		th:      th,
		clock:   clock,
		sink:    sink,
	}
}

// Process validates one record, appends it to the client's window and
// runs the stuck and accident checks. It returns the alerts emitted for
// this record (at most one of each kind). Invalid records never touch
// the window.
func (w *Watchdog) Process(ctx context.Context, rec *nav.Record) ([]*nav.Alert, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	st := w.stateFor(rec.ClientID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.window = append(st.window, *rec)
	if len(st.window) > w.th.WindowSize {
		st.window = st.window[len(st.window)-w.th.WindowSize:]
	}

	var alerts []*nav.Alert
	if a := w.checkStuck(ctx, st); a != nil {
		alerts = append(alerts, a)
	}
	if a := w.checkAccident(ctx, st, rec); a != nil {
		alerts = append(alerts, a)
	}
	return alerts, nil
}

func (w *Watchdog) stateFor(clientID string) *clientState {
	w.mu.RLock()
	st, ok := w.clients[clientID]
	w.mu.RUnlock()
	if ok {
		return st
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if st, ok := w.clients[clientID]; ok {
		return st
	}
	st = &clientState{clientID: clientID}
	w.clients[clientID] = st
	return st
}

// ClearClient drops the client's window and debounce state, typically at
// session end. Reports whether the client was known.
func (w *Watchdog) ClearClient(clientID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.clients[clientID]; !ok {
		return false
	}
	delete(w.clients, clientID)
	return true
}

// ClientStatus is a snapshot of one client's watchdog state.
type ClientStatus struct {
	ClientID          string     `json:"client_id"`
	RecordsInWindow   int        `json:"records_in_window"`
	LastRecordT       int64      `json:"last_record_t"`
	LastStuckAlert    *time.Time `json:"last_stuck_alert,omitempty"`
	LastAccidentAlert *time.Time `json:"last_accident_alert,omitempty"`
	StuckDebounceS    int64      `json:"stuck_debounce_s"`
	AccidentDebounceS int64      `json:"accident_debounce_s"`
}

// Status reports the client's window fill and alert history. The second
// return is false when the watchdog has never seen the client.
func (w *Watchdog) Status(clientID string) (*ClientStatus, bool) {
	w.mu.RLock()
	st, ok := w.clients[clientID]
	w.mu.RUnlock()
	if !ok {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	cs := &ClientStatus{
		ClientID:          clientID,
		RecordsInWindow:   len(st.window),
		StuckDebounceS:    int64(w.th.StuckDebounce / time.Second),
		AccidentDebounceS: int64(w.th.AccidentDebounce / time.Second),
	}
	if len(st.window) > 0 {
		cs.LastRecordT = st.window[len(st.window)-1].T
	}
	if !st.lastStuckAlert.IsZero() {
		t := st.lastStuckAlert
		cs.LastStuckAlert = &t
	}
	if !st.lastAccidentAlert.IsZero() {
		t := st.lastAccidentAlert
		cs.LastAccidentAlert = &t
	}
	return cs, true
}

// ActiveClients returns the ids the watchdog currently holds state for.
func (w *Watchdog) ActiveClients() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.clients))
	for id := range w.clients {
		out = append(out, id)
	}
	return out
}

// dispatch hands an alert to the sink. Sink failures are logged, never
// propagated: the alert already exists as far as the detector is
// concerned, and record processing must not stall on delivery.
func (w *Watchdog) dispatch(ctx context.Context, alert *nav.Alert) {
	monitoring.Logf("alert %s/%s client=%s t=%d: %s",
		alert.Kind, alert.Severity, alert.ClientID, alert.T, alert.Rationale)
	if w.sink == nil {
		return
	}
	if err := w.sink.Dispatch(ctx, alert); err != nil {
		monitoring.Logf("alert dispatch for %s failed: %v", alert.ClientID, err)
	}
}
