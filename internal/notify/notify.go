// Package notify delivers watchdog alerts to emergency contacts. The
// core treats delivery as best-effort: a failed send is logged and the
// alert stays in the store either way.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/guidelight-data/navwatch/internal/httputil"
	"github.com/guidelight-data/navwatch/internal/monitoring"
	"github.com/guidelight-data/navwatch/internal/nav"
)

// Notifier sends one alert to one contact.
type Notifier interface {
	Notify(ctx context.Context, contact nav.Contact, alert *nav.Alert) error
}

// NotifyError wraps a delivery failure so callers can distinguish it
// from store errors.
type NotifyError struct {
	ContactID string
	Err       error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.ContactID, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

// LogNotifier writes the alert to the service log. It is the default
// when no webhook is configured, and what dev deployments run with.
type LogNotifier struct{}

// Notify logs the alert.
func (LogNotifier) Notify(_ context.Context, contact nav.Contact, alert *nav.Alert) error {
	monitoring.Logf("NOTIFY contact=%s channel=%s client=%s kind=%s severity=%s: %s",
		contact.ContactID, contact.Channel, alert.ClientID, alert.Kind, alert.Severity, alert.Rationale)
	return nil
}

// WebhookNotifier POSTs the alert payload to a configured URL. The
// receiving gateway owns the SMS/push fan-out; this service only speaks
// JSON over HTTP.
type WebhookNotifier struct {
	URL     string
	Client  httputil.HTTPClient
	Timeout time.Duration
}

// NewWebhookNotifier returns a notifier posting to url. A nil client
// falls back to the default HTTP client.
func NewWebhookNotifier(url string, client httputil.HTTPClient) *WebhookNotifier {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &WebhookNotifier{URL: url, Client: client, Timeout: 5 * time.Second}
}

// webhookPayload is the wire form sent to the gateway.
type webhookPayload struct {
	Type      string         `json:"type"`
	Severity  string         `json:"severity"`
	ClientID  string         `json:"client_id"`
	ContactID string         `json:"contact_id"`
	Channel   string         `json:"channel,omitempty"`
	T         int64          `json:"t"`
	Since     *int64         `json:"since,omitempty"`
	Rationale string         `json:"rationale"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Notify posts the alert. Any transport error or non-2xx response is a
// NotifyError.
func (n *WebhookNotifier) Notify(ctx context.Context, contact nav.Contact, alert *nav.Alert) error {
	body, err := json.Marshal(webhookPayload{
		Type:      string(alert.Kind),
		Severity:  string(alert.Severity),
		ClientID:  alert.ClientID,
		ContactID: contact.ContactID,
		Channel:   contact.Channel,
		T:         alert.T,
		Since:     alert.Since,
		Rationale: alert.Rationale,
		Meta:      alert.Meta,
	})
	if err != nil {
		return &NotifyError{ContactID: contact.ContactID, Err: err}
	}

	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return &NotifyError{ContactID: contact.ContactID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return &NotifyError{ContactID: contact.ContactID, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NotifyError{
			ContactID: contact.ContactID,
			Err:       fmt.Errorf("webhook returned %d", resp.StatusCode),
		}
	}
	return nil
}
