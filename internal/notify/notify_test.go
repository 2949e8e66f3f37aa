package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/guidelight-data/navwatch/internal/httputil"
	"github.com/guidelight-data/navwatch/internal/nav"
)

func testAlert() *nav.Alert {
	since := int64(600)
	return &nav.Alert{
		AlertID:    "a-1",
		ClientID:   "alice",
		Kind:       nav.AlertStuck,
		Severity:   nav.SeverityWarning,
		Rationale:  "client alice has shown no movement for 400s",
		Since:      &since,
		T:          1000,
		DetectedAt: time.Unix(2000, 0).UTC(),
		Meta:       map[string]any{"stationary_s": int64(400)},
	}
}

func TestWebhookNotifierPostsPayload(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, `{"ok":true}`)

	n := NewWebhookNotifier("https://gateway.example/hooks/alerts", client)
	contact := nav.Contact{ClientID: "alice", ContactID: "carol", Channel: "sms:+15550100"}

	if err := n.Notify(context.Background(), contact, testAlert()); err != nil {
		t.Fatalf("notify: %v", err)
	}

	req := client.GetRequest(0)
	if req == nil {
		t.Fatal("no request recorded")
	}
	if req.URL.String() != "https://gateway.example/hooks/alerts" {
		t.Errorf("url = %s", req.URL)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s", ct)
	}

	body, _ := io.ReadAll(req.Body)
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["type"] != "stuck" || payload["client_id"] != "alice" || payload["contact_id"] != "carol" {
		t.Errorf("payload = %v", payload)
	}
	if payload["rationale"] != "client alice has shown no movement for 400s" {
		t.Errorf("rationale = %v", payload["rationale"])
	}
	if payload["since"] != float64(600) {
		t.Errorf("since = %v", payload["since"])
	}
}

func TestWebhookNotifierNon2xx(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(503, "unavailable")

	n := NewWebhookNotifier("https://gateway.example/hooks/alerts", client)
	err := n.Notify(context.Background(), nav.Contact{ContactID: "carol"}, testAlert())

	var nerr *NotifyError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want NotifyError", err)
	}
	if nerr.ContactID != "carol" {
		t.Errorf("contact = %s", nerr.ContactID)
	}
}

type fakeContacts struct {
	contacts []nav.Contact
	err      error
}

func (f *fakeContacts) ListAuthorized(ctx context.Context, clientID string) ([]nav.Contact, error) {
	return f.contacts, f.err
}

type fakeAlerts struct {
	rows []string // contact ids alerts were stored for
	err  error
}

func (f *fakeAlerts) InsertAlert(ctx context.Context, alert *nav.Alert, contactID string) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, contactID)
	return nil
}

type countingNotifier struct {
	sent []string
	err  error
}

func (c *countingNotifier) Notify(ctx context.Context, contact nav.Contact, alert *nav.Alert) error {
	c.sent = append(c.sent, contact.ContactID)
	return c.err
}

func TestDispatcherFansOutPerContact(t *testing.T) {
	contacts := &fakeContacts{contacts: []nav.Contact{
		{ContactID: "carol"}, {ContactID: "dan"},
	}}
	alerts := &fakeAlerts{}
	notifier := &countingNotifier{}
	d := &Dispatcher{Contacts: contacts, Alerts: alerts, Notifier: notifier}

	if err := d.Dispatch(context.Background(), testAlert()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(alerts.rows) != 2 {
		t.Errorf("stored %d rows, want 2", len(alerts.rows))
	}
	if len(notifier.sent) != 2 {
		t.Errorf("notified %d contacts, want 2", len(notifier.sent))
	}
}

func TestDispatcherNoContactsStillAudits(t *testing.T) {
	alerts := &fakeAlerts{}
	d := &Dispatcher{Contacts: &fakeContacts{}, Alerts: alerts, Notifier: &countingNotifier{}}

	if err := d.Dispatch(context.Background(), testAlert()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(alerts.rows) != 1 || alerts.rows[0] != "" {
		t.Errorf("rows = %v, want one empty-contact audit row", alerts.rows)
	}
}

func TestDispatcherNotifyFailureDoesNotAbort(t *testing.T) {
	contacts := &fakeContacts{contacts: []nav.Contact{
		{ContactID: "carol"}, {ContactID: "dan"},
	}}
	alerts := &fakeAlerts{}
	notifier := &countingNotifier{err: errors.New("gateway down")}
	d := &Dispatcher{Contacts: contacts, Alerts: alerts, Notifier: notifier}

	if err := d.Dispatch(context.Background(), testAlert()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	// Both rows stored and both sends attempted despite failures.
	if len(alerts.rows) != 2 || len(notifier.sent) != 2 {
		t.Errorf("rows=%d sent=%d, want 2 and 2", len(alerts.rows), len(notifier.sent))
	}
}
