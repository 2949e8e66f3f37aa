package navindex

import (
	"context"
	"errors"
	"testing"

	"github.com/guidelight-data/navwatch/internal/nav"
)

type fakeStaleSource struct {
	clients []string
	err     error
}

func (f *fakeStaleSource) StaleIndexClients(ctx context.Context) ([]string, error) {
	return f.clients, f.err
}

func TestSchedulerRebuildsEveryStaleClient(t *testing.T) {
	src := &fakeRecordSource{payloads: [][]byte{payload(t, rec(1, []string{"stop"}))}}
	sink := &fakeIndexSink{}
	builder := NewBuilder(src, sink, nav.DefaultThresholds(), nil)

	s := NewScheduler(&fakeStaleSource{clients: []string{"c1", "c2"}}, builder, 0, nil)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.put) != 2 {
		t.Fatalf("puts = %d, want 2 rebuilt indexes", len(sink.put))
	}
	if src.calls != 2 {
		t.Errorf("record source calls = %d, want 2", src.calls)
	}
}

func TestSchedulerKeepsSweepingPastFailures(t *testing.T) {
	// The first client's build fails at the sink; the second must still run.
	src := &fakeRecordSource{payloads: [][]byte{payload(t, rec(1, []string{"stop"}))}}
	sink := &fakeIndexSink{err: errors.New("readonly")}
	builder := NewBuilder(src, sink, nav.DefaultThresholds(), nil)

	s := NewScheduler(&fakeStaleSource{clients: []string{"c1", "c2"}}, builder, 0, nil)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("per-client failures must not fail the sweep: %v", err)
	}
	if src.calls != 2 {
		t.Errorf("record source calls = %d, want 2", src.calls)
	}
}

func TestSchedulerSurfacesSourceError(t *testing.T) {
	s := NewScheduler(&fakeStaleSource{err: errors.New("locked")}, nil, 0, nil)
	if err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected the stale listing error to propagate")
	}
}
