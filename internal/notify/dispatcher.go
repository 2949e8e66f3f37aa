package notify

import (
	"context"
	"fmt"

	"github.com/guidelight-data/navwatch/internal/monitoring"
	"github.com/guidelight-data/navwatch/internal/nav"
)

// ContactSource lists the authorized contacts for a client.
type ContactSource interface {
	ListAuthorized(ctx context.Context, clientID string) ([]nav.Contact, error)
}

// AlertWriter appends alert rows to the audit trail.
type AlertWriter interface {
	InsertAlert(ctx context.Context, alert *nav.Alert, contactID string) error
}

// Dispatcher fans an alert out to the client's authorized contacts: one
// alert row per contact, then one notification per contact. It is the
// watchdog's AlertSink.
type Dispatcher struct {
	Contacts ContactSource
	Alerts   AlertWriter
	Notifier Notifier
}

// NewDispatcher wires a dispatcher. A nil notifier falls back to the
// log notifier.
func NewDispatcher(contacts ContactSource, alerts AlertWriter, notifier Notifier) *Dispatcher {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Dispatcher{Contacts: contacts, Alerts: alerts, Notifier: notifier}
}

// Dispatch persists and delivers one alert. A client with no contacts
// still gets one stored row (empty contact) so the event is auditable.
// Notification failures are logged and never abort the remaining
// contacts or undo the store writes; store failures do propagate so the
// watchdog can log the loss.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *nav.Alert) error {
	contacts, err := d.Contacts.ListAuthorized(ctx, alert.ClientID)
	if err != nil {
		return fmt.Errorf("list contacts for alert %s: %w", alert.AlertID, err)
	}

	if len(contacts) == 0 {
		if err := d.Alerts.InsertAlert(ctx, alert, ""); err != nil {
			return fmt.Errorf("store alert %s: %w", alert.AlertID, err)
		}
		monitoring.Logf("alert %s for %s has no contacts to notify", alert.AlertID, alert.ClientID)
		return nil
	}

	var firstErr error
	for _, c := range contacts {
		if err := d.Alerts.InsertAlert(ctx, alert, c.ContactID); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("store alert %s for %s: %w", alert.AlertID, c.ContactID, err)
			}
			continue
		}
		if err := d.Notifier.Notify(ctx, c, alert); err != nil {
			monitoring.Logf("notify %s about alert %s failed: %v", c.ContactID, alert.AlertID, err)
		}
	}
	return firstErr
}
