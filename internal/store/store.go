// Package store defines the persistence interfaces the analytics engine
// consumes: raw telemetry records, built indexes, emitted alerts, and the
// emergency-contact register. The sqlite subpackage is the only
// implementation; tests substitute in-memory fakes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/navindex"
)

// ErrNotFound is returned when a keyed lookup has no row. Callers that
// treat absence as a normal state check with errors.Is.
var ErrNotFound = errors.New("not found")

// RecordStore persists raw device payloads. Records are append-only:
// nothing here updates or deletes them.
type RecordStore interface {
	// InsertRecord stores one validated record under its record_id.
	InsertRecord(ctx context.Context, rec *nav.Record) error

	// ListRecords returns stored payloads for the client ordered by t
	// ascending, narrowed to a session when sessionID is non-empty and
	// to the half-open range [from, to) when the bounds are non-nil.
	ListRecords(ctx context.Context, clientID, sessionID string, from, to *int64) ([][]byte, error)

	// CountRecords returns the number of stored records across all clients.
	CountRecords(ctx context.Context) (int64, error)

	// Clients returns the distinct client ids with stored records.
	Clients(ctx context.Context) ([]string, error)
}

// IndexStore persists built indexes keyed by navindex.IndexKey. Puts are
// last-writer-wins upserts; an index is a pure function of its record
// set, so the losing writer's content is equivalent anyway.
type IndexStore interface {
	PutIndex(ctx context.Context, ix *navindex.UserIndex) error

	// GetIndex returns the stored index for key, or ErrNotFound.
	GetIndex(ctx context.Context, key string) (*navindex.UserIndex, error)

	// StaleIndexClients lists clients whose client-wide index predates
	// their newest stored record.
	StaleIndexClients(ctx context.Context) ([]string, error)

	// CountIndexes returns the number of stored indexes.
	CountIndexes(ctx context.Context) (int64, error)
}

// StoredAlert is an alert row joined with the contact it was addressed
// to. ContactID is empty for the audit row written when a client has no
// authorized contacts.
type StoredAlert struct {
	Alert     nav.Alert `json:"alert"`
	ContactID string    `json:"contact_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertStore is the append-only alert audit trail.
type AlertStore interface {
	// InsertAlert stores one alert row addressed to contactID (may be
	// empty when the client has no contacts).
	InsertAlert(ctx context.Context, alert *nav.Alert, contactID string) error

	// RecentAlerts returns the newest alerts for a client, newest first,
	// optionally narrowed to one kind.
	RecentAlerts(ctx context.Context, clientID string, kind nav.AlertKind, limit int) ([]StoredAlert, error)

	// CountAlerts returns the number of stored alert rows.
	CountAlerts(ctx context.Context) (int64, error)
}

// ContactStore is the emergency-contact register and the authorization
// oracle for caretaker queries.
type ContactStore interface {
	// UpsertContact adds or updates a contact registration.
	UpsertContact(ctx context.Context, c nav.Contact) error

	// IsAuthorized reports whether requesterID may read clientID's
	// telemetry. Self-access is always allowed.
	IsAuthorized(ctx context.Context, requesterID, clientID string) (bool, error)

	// ListAuthorized returns the client's authorized contacts.
	ListAuthorized(ctx context.Context, clientID string) ([]nav.Contact, error)
}
