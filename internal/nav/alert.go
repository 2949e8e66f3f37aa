package nav

import "time"

// AlertKind distinguishes the two watchdog alert families.
type AlertKind string

const (
	AlertStuck    AlertKind = "stuck"
	AlertAccident AlertKind = "accident"
)

// Severity grades an alert for the notification channel.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is an emitted watchdog finding. T is the trigger record's device
// time; DetectedAt is the service wall clock when the pattern matched.
// Rationale is the human-readable evidence; Since carries the start of
// the stationary run for stuck alerts. Meta keeps the structured
// evidence (pattern name, anchor depth) for the audit trail.
type Alert struct {
	AlertID    string         `json:"alert_id"`
	ClientID   string         `json:"client_id"`
	Kind       AlertKind      `json:"kind"`
	Severity   Severity       `json:"severity"`
	Rationale  string         `json:"rationale"`
	Since      *int64         `json:"since,omitempty"`
	T          int64          `json:"t"`
	DetectedAt time.Time      `json:"detected_at"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Contact is an emergency contact registered for a client. Channel is a
// delivery hint such as "sms:+15550100" or "webhook:https://..."; the
// notifier decides what to do with it.
type Contact struct {
	ClientID   string    `json:"client_id"`
	ContactID  string    `json:"contact_id"`
	Name       string    `json:"contact_name,omitempty"`
	Channel    string    `json:"channel,omitempty"`
	Authorized bool      `json:"authorized"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
