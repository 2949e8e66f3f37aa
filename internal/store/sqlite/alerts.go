package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/store"
)

// InsertAlert appends one alert row addressed to contactID. The same
// alert_id appears once per contact; the empty contact row is the audit
// entry for clients with nobody registered.
func (db *DB) InsertAlert(ctx context.Context, alert *nav.Alert, contactID string) error {
	var meta any
	if len(alert.Meta) > 0 {
		b, err := json.Marshal(alert.Meta)
		if err != nil {
			return fmt.Errorf("marshal alert meta %s: %w", alert.AlertID, err)
		}
		meta = string(b)
	}
	var since any
	if alert.Since != nil {
		since = *alert.Since
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO alerts (alert_id, client_id, contact_id, kind, severity, rationale, since_t, t, detected_at, meta)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.AlertID, alert.ClientID, nullString(contactID), string(alert.Kind),
		string(alert.Severity), alert.Rationale, since, alert.T, alert.DetectedAt.Unix(), meta)
	if err != nil {
		return fmt.Errorf("insert alert %s: %w", alert.AlertID, err)
	}
	return nil
}

// RecentAlerts returns the newest alert rows for a client, optionally
// narrowed to one kind. limit <= 0 defaults to 20.
func (db *DB) RecentAlerts(ctx context.Context, clientID string, kind nav.AlertKind, limit int) ([]store.StoredAlert, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT alert_id, client_id, COALESCE(contact_id, ''), kind, severity, rationale, since_t, t, detected_at, COALESCE(meta, ''), created_at
	      FROM alerts WHERE client_id = ?`
	args := []any{clientID}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, string(kind))
	}
	q += ` ORDER BY created_at DESC, t DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts for %s: %w", clientID, err)
	}
	defer rows.Close()

	var out []store.StoredAlert
	for rows.Next() {
		var sa store.StoredAlert
		var kindStr, sevStr, metaStr string
		var since sql.NullInt64
		var detectedAt, createdAt int64
		if err := rows.Scan(&sa.Alert.AlertID, &sa.Alert.ClientID, &sa.ContactID,
			&kindStr, &sevStr, &sa.Alert.Rationale, &since, &sa.Alert.T,
			&detectedAt, &metaStr, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		sa.Alert.Kind = nav.AlertKind(kindStr)
		sa.Alert.Severity = nav.Severity(sevStr)
		if since.Valid {
			v := since.Int64
			sa.Alert.Since = &v
		}
		sa.Alert.DetectedAt = time.Unix(detectedAt, 0).UTC()
		sa.CreatedAt = time.Unix(createdAt, 0).UTC()
		if metaStr != "" {
			if err := json.Unmarshal([]byte(metaStr), &sa.Alert.Meta); err != nil {
				return nil, fmt.Errorf("decode alert meta %s: %w", sa.Alert.AlertID, err)
			}
		}
		out = append(out, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return out, nil
}

// CountAlerts returns the number of stored alert rows.
func (db *DB) CountAlerts(ctx context.Context) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return n, nil
}
