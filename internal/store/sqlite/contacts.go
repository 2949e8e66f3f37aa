package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/guidelight-data/navwatch/internal/nav"
)

// UpsertContact adds or updates a contact registration. Revoking sets
// authorized to 0; the row stays for the audit trail.
func (db *DB) UpsertContact(ctx context.Context, c nav.Contact) error {
	if c.ClientID == "" || c.ContactID == "" {
		return fmt.Errorf("upsert contact: client_id and contact_id are required")
	}
	authorized := 0
	if c.Authorized {
		authorized = 1
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO emergency_contacts (client_id, contact_id, contact_name, channel, authorized)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (client_id, contact_id) DO UPDATE SET
			contact_name = excluded.contact_name,
			channel = excluded.channel,
			authorized = excluded.authorized`,
		c.ClientID, c.ContactID, c.Name, c.Channel, authorized)
	if err != nil {
		return fmt.Errorf("upsert contact %s/%s: %w", c.ClientID, c.ContactID, err)
	}
	return nil
}

// IsAuthorized reports whether requesterID may read clientID's data.
// Clients always see their own telemetry.
func (db *DB) IsAuthorized(ctx context.Context, requesterID, clientID string) (bool, error) {
	if requesterID != "" && requesterID == clientID {
		return true, nil
	}
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM emergency_contacts
		 WHERE client_id = ? AND contact_id = ? AND authorized = 1`,
		clientID, requesterID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check authorization %s->%s: %w", requesterID, clientID, err)
	}
	return n > 0, nil
}

// ListAuthorized returns the client's currently authorized contacts.
func (db *DB) ListAuthorized(ctx context.Context, clientID string) ([]nav.Contact, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT client_id, contact_id, COALESCE(contact_name, ''), COALESCE(channel, ''), created_at
		 FROM emergency_contacts
		 WHERE client_id = ? AND authorized = 1
		 ORDER BY contact_id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list contacts for %s: %w", clientID, err)
	}
	defer rows.Close()

	var out []nav.Contact
	for rows.Next() {
		var c nav.Contact
		var createdAt int64
		if err := rows.Scan(&c.ClientID, &c.ContactID, &c.Name, &c.Channel, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.Authorized = true
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}
