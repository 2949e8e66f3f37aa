package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/guidelight-data/navwatch/internal/nav"
)

// InsertRecord stores one validated record. The full payload is kept as
// JSON: the indexer re-parses it on every build, so adding fields to the
// record model never needs a schema change.
func (db *DB) InsertRecord(ctx context.Context, rec *nav.Record) error {
	if rec.RecordID == "" {
		return fmt.Errorf("insert record: missing record_id")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.RecordID, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO log_records (record_id, client_id, session_id, t, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.RecordID, rec.ClientID, nullString(rec.SessionID), rec.T, string(payload))
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.RecordID, err)
	}
	return nil
}

// ListRecords returns payloads for the client ordered by t ascending,
// narrowed by session and the half-open [from, to) range when given.
func (db *DB) ListRecords(ctx context.Context, clientID, sessionID string, from, to *int64) ([][]byte, error) {
	q := `SELECT payload FROM log_records WHERE client_id = ?`
	args := []any{clientID}
	if sessionID != "" {
		q += ` AND session_id = ?`
		args = append(args, sessionID)
	}
	if from != nil {
		q += ` AND t >= ?`
		args = append(args, *from)
	}
	if to != nil {
		q += ` AND t < ?`
		args = append(args, *to)
	}
	q += ` ORDER BY t ASC, created_at ASC`

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", clientID, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record payload: %w", err)
		}
		out = append(out, []byte(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// CountRecords returns the total number of stored records.
func (db *DB) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_records`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Clients returns the distinct client ids with stored records.
func (db *DB) Clients(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT client_id FROM log_records ORDER BY client_id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan client id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}

// nullString maps "" to NULL so optional columns stay queryable with IS
// NULL instead of sentinel strings.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
