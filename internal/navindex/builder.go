package navindex

import (
	"context"
	"fmt"

	"github.com/guidelight-data/navwatch/internal/monitoring"
	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/timeutil"
)

// RecordSource lists stored raw payloads for a client, optionally
// narrowed to a session and a half-open [from, to) range of t.
type RecordSource interface {
	ListRecords(ctx context.Context, clientID, sessionID string, from, to *int64) ([][]byte, error)
}

// IndexSink persists built indexes; last writer wins per key.
type IndexSink interface {
	PutIndex(ctx context.Context, ix *UserIndex) error
}

// Builder loads a client's raw records, validates them, folds them into a
// UserIndex and persists the result. Builds are stateless: nothing
// survives between calls, so concurrent builds of the same key simply
// race to be the last write.
type Builder struct {
	Records    RecordSource
	Indexes    IndexSink
	Thresholds nav.Thresholds
	Clock      timeutil.Clock
}

// NewBuilder wires a builder with the given collaborators.
func NewBuilder(records RecordSource, indexes IndexSink, th nav.Thresholds, clock timeutil.Clock) *Builder {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Builder{Records: records, Indexes: indexes, Thresholds: th, Clock: clock}
}

// Build loads, validates and aggregates records for the client (and
// session, when given), persists the index and returns it. Invalid stored
// payloads are dropped and counted, never fatal.
func (b *Builder) Build(ctx context.Context, clientID, sessionID string, from, to *int64) (*UserIndex, error) {
	if clientID == "" {
		return nil, &nav.ValidationError{Fields: map[string]string{"client_id": "required non-empty string"}}
	}

	payloads, err := b.Records.ListRecords(ctx, clientID, sessionID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", clientID, err)
	}

	records := make([]nav.Record, 0, len(payloads))
	dropped := 0
	for _, p := range payloads {
		rec, err := nav.ParseRecord(p)
		if err != nil {
			dropped++
			continue
		}
		if rec.ClientID != clientID {
			// Stored under the client but claiming another: drop, the
			// aggregation must never mix subjects.
			dropped++
			continue
		}
		records = append(records, *rec)
	}

	ix := BuildIndex(clientID, sessionID, records, dropped, b.Thresholds)
	ix.BuiltAt = b.Clock.Now().UTC()

	if b.Indexes != nil {
		if err := b.Indexes.PutIndex(ctx, ix); err != nil {
			return nil, fmt.Errorf("persist index %s: %w", ix.Key, err)
		}
	}
	if dropped > 0 {
		monitoring.Logf("index %s built: %d records, %d dropped", ix.Key, ix.RecordCount, dropped)
	}
	return ix, nil
}
