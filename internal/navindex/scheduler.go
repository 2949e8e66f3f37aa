package navindex

import (
	"context"
	"time"

	"github.com/guidelight-data/navwatch/internal/monitoring"
	"github.com/guidelight-data/navwatch/internal/timeutil"
)

// StaleSource reports clients whose stored records are newer than their
// client-wide index.
type StaleSource interface {
	StaleIndexClients(ctx context.Context) ([]string, error)
}

// Scheduler periodically refreshes client-wide indexes that have fallen
// behind the record stream. It only refreshes indexes that already exist;
// the first build of a client is an explicit request.
type Scheduler struct {
	Source   StaleSource
	Builder  *Builder
	Interval time.Duration
	Clock    timeutil.Clock
	StopChan chan struct{}
}

// NewScheduler returns a scheduler ticking at interval.
func NewScheduler(source StaleSource, builder *Builder, interval time.Duration, clock timeutil.Clock) *Scheduler {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Scheduler{
		Source:   source,
		Builder:  builder,
		Interval: interval,
		Clock:    clock,
		StopChan: make(chan struct{}),
	}
}

// Start runs the periodic refresh loop in a goroutine.
func (s *Scheduler) Start() {
	go func() {
		ticker := s.Clock.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if err := s.RunOnce(context.Background()); err != nil {
					monitoring.Logf("index refresh error: %v", err)
				}
			case <-s.StopChan:
				return
			}
		}
	}()
}

// Stop requests the scheduler to stop.
func (s *Scheduler) Stop() {
	close(s.StopChan)
}

// RunOnce rebuilds every stale client-wide index. Per-client failures are
// logged and do not stop the sweep.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	clients, err := s.Source.StaleIndexClients(ctx)
	if err != nil {
		return err
	}
	for _, clientID := range clients {
		if _, err := s.Builder.Build(ctx, clientID, "", nil, nil); err != nil {
			monitoring.Logf("index refresh for %s failed: %v", clientID, err)
		}
	}
	return nil
}
