package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/navindex"
	"github.com/guidelight-data/navwatch/internal/store"
)

func builtIndex(clientID, sessionID string, ts ...int64) *navindex.UserIndex {
	records := make([]nav.Record, 0, len(ts))
	for _, t := range ts {
		records = append(records, nav.Record{ClientID: clientID, T: t, Events: []string{"proceed"}})
	}
	ix := navindex.BuildIndex(clientID, sessionID, records, 0, nav.DefaultThresholds())
	ix.BuiltAt = time.Unix(1000, 0).UTC()
	return ix
}

func TestPutGetIndexRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	ix := builtIndex("alice", "walk-1", 100, 200, 300)
	if err := db.PutIndex(ctx, ix); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := db.GetIndex(ctx, ix.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(ix, got); diff != "" {
		t.Errorf("index round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPutIndexUpsert(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	if err := db.PutIndex(ctx, builtIndex("alice", "", 100)); err != nil {
		t.Fatalf("put: %v", err)
	}
	ix2 := builtIndex("alice", "", 100, 200)
	if err := db.PutIndex(ctx, ix2); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, err := db.GetIndex(ctx, ix2.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RecordCount != 2 {
		t.Errorf("record_count = %d, want 2 (last writer wins)", got.RecordCount)
	}
	n, err := db.CountIndexes(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("index rows = %d, want 1", n)
	}
}

func TestGetIndexNotFound(t *testing.T) {
	db := NewTestDB(t)
	_, err := db.GetIndex(context.Background(), "index:nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want store.ErrNotFound", err)
	}
}

func TestStaleIndexClients(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	// Index built in the past, then a fresh record arrives.
	ix := builtIndex("alice", "", 100)
	if err := db.PutIndex(ctx, ix); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := db.InsertRecord(ctx, testRecord(t, "alice", "", 200)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// A client with records but no index is not reported: first builds
	// are explicit.
	if err := db.InsertRecord(ctx, testRecord(t, "bob", "", 200)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	stale, err := db.StaleIndexClients(ctx)
	if err != nil {
		t.Fatalf("stale: %v", err)
	}
	if len(stale) != 1 || stale[0] != "alice" {
		t.Errorf("stale = %v, want [alice]", stale)
	}
}
