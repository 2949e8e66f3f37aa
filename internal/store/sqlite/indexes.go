package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guidelight-data/navwatch/internal/navindex"
	"github.com/guidelight-data/navwatch/internal/store"
)

// PutIndex upserts a built index under its key. Last writer wins: index
// content is a pure function of the record set, so racing builds of the
// same key converge anyway.
func (db *DB) PutIndex(ctx context.Context, ix *navindex.UserIndex) error {
	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("marshal index %s: %w", ix.Key, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO user_indices (
			index_key, client_id, session_id, time_start, time_end,
			record_count, dropped_count, index_data, built_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, unixepoch())
		 ON CONFLICT (index_key) DO UPDATE SET
			time_start = excluded.time_start,
			time_end = excluded.time_end,
			record_count = excluded.record_count,
			dropped_count = excluded.dropped_count,
			index_data = excluded.index_data,
			built_at = excluded.built_at,
			updated_at = unixepoch()`,
		ix.Key, ix.ClientID, nullString(ix.SessionID), ix.TimeStart, ix.TimeEnd,
		ix.RecordCount, ix.DroppedCount, string(data), ix.BuiltAt.Unix())
	if err != nil {
		return fmt.Errorf("put index %s: %w", ix.Key, err)
	}
	return nil
}

// GetIndex loads the stored index for key, or store.ErrNotFound.
func (db *DB) GetIndex(ctx context.Context, key string) (*navindex.UserIndex, error) {
	var data string
	err := db.QueryRowContext(ctx,
		`SELECT index_data FROM user_indices WHERE index_key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index %s: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get index %s: %w", key, err)
	}
	var ix navindex.UserIndex
	if err := json.Unmarshal([]byte(data), &ix); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", key, err)
	}
	return &ix, nil
}

// StaleIndexClients lists clients whose client-wide index predates their
// newest stored record. Session-scoped indexes refresh only on demand.
func (db *DB) StaleIndexClients(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT ui.client_id FROM user_indices ui
		 WHERE ui.session_id IS NULL
		   AND EXISTS (
			SELECT 1 FROM log_records lr
			WHERE lr.client_id = ui.client_id AND lr.created_at > ui.built_at
		   )
		 ORDER BY ui.client_id`)
	if err != nil {
		return nil, fmt.Errorf("list stale indexes: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale client: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale clients: %w", err)
	}
	return out, nil
}

// CountIndexes returns the number of stored indexes.
func (db *DB) CountIndexes(ctx context.Context) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_indices`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count indexes: %w", err)
	}
	return n, nil
}
