package nav

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports why a record was rejected, keyed by field name.
// Handset firmware in the field emits a long tail of malformed payloads,
// so the reasons are kept structured for the ingest response rather than
// flattened to one string.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid record"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = reason
}

func (e *ValidationError) orNil() *ValidationError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ParseRecord decodes and validates a raw device payload. Unknown
// top-level keys are ignored; a missing or null free_ahead_m and a
// negative t are both fine. Booleans are not accepted where numbers are
// required, matching the handset wire contract.
//
// The returned error is a *ValidationError for malformed payloads so the
// ingest surface can report per-field reasons.
func ParseRecord(payload []byte) (*Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"payload": "not a JSON object"}}
	}
	return recordFromMap(raw)
}

func recordFromMap(raw map[string]any) (*Record, error) {
	verr := &ValidationError{}
	rec := &Record{}

	if t, ok := asNumber(raw["t"]); !ok {
		verr.add("t", "required unix-seconds number")
	} else {
		rec.T = int64(t)
	}

	if cid, ok := raw["client_id"].(string); !ok || cid == "" {
		verr.add("client_id", "required non-empty string")
	} else {
		rec.ClientID = cid
	}

	if sid, ok := raw["session_id"].(string); ok {
		rec.SessionID = sid
	}
	if app, ok := raw["app"].(string); ok {
		rec.App = app
	}
	if rid, ok := raw["record_id"].(string); ok {
		rec.RecordID = rid
	}

	if c, ok := asNumber(raw["confidence"]); !ok {
		verr.add("confidence", "required number in [0,1]")
	} else if c < 0 || c > 1 {
		verr.add("confidence", "must be in [0,1]")
	} else {
		rec.Confidence = c
	}

	if v, present := raw["free_ahead_m"]; present && v != nil {
		if n, ok := asNumber(v); ok {
			rec.FreeAheadM = &n
		} else {
			verr.add("free_ahead_m", "must be a number")
		}
	}

	if v, present := raw["events"]; !present || v == nil {
		verr.add("events", "required list of strings")
	} else if list, ok := v.([]any); !ok {
		verr.add("events", "required list of strings")
	} else {
		for i, entry := range list {
			e, ok := entry.(string)
			if !ok {
				verr.add(fmt.Sprintf("events[%d]", i), "must be a string")
				continue
			}
			rec.Events = append(rec.Events, e)
		}
	}

	if v, present := raw["classes"]; present && v != nil {
		list, ok := v.([]any)
		if !ok {
			verr.add("classes", "must be a list of strings")
		} else {
			for i, entry := range list {
				c, ok := entry.(string)
				if !ok {
					verr.add(fmt.Sprintf("classes[%d]", i), "must be a string")
					continue
				}
				rec.Classes = append(rec.Classes, c)
			}
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return rec, nil
}

// asNumber accepts JSON numbers only. encoding/json decodes every number
// to float64; bool must be rejected explicitly because the handsets have
// shipped firmware that sent t:true on clock failure.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Validate checks an already-decoded record, used on the live ingest path
// where the payload was parsed into the typed form upstream.
func (r *Record) Validate() error {
	verr := &ValidationError{}
	if r.ClientID == "" {
		verr.add("client_id", "required non-empty string")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		verr.add("confidence", "must be in [0,1]")
	}
	if err := verr.orNil(); err != nil {
		return err
	}
	return nil
}
