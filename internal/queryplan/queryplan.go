package queryplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/guidelight-data/navwatch/internal/nav"
	"github.com/guidelight-data/navwatch/internal/navindex"
	"github.com/guidelight-data/navwatch/internal/store"
	"github.com/guidelight-data/navwatch/internal/timeutil"
	"github.com/guidelight-data/navwatch/internal/units"
)

// DefaultIndexTTL is how old a cached index may be before a query
// triggers a rebuild.
const DefaultIndexTTL = 15 * time.Minute

// Authorizer is the caretaker gate. It must be consulted before any
// record or index access.
type Authorizer interface {
	IsAuthorized(ctx context.Context, requesterID, clientID string) (bool, error)
}

// IndexSource reads cached indexes.
type IndexSource interface {
	GetIndex(ctx context.Context, key string) (*navindex.UserIndex, error)
}

// IndexBuilder rebuilds an index on cache miss.
type IndexBuilder interface {
	Build(ctx context.Context, clientID, sessionID string, from, to *int64) (*navindex.UserIndex, error)
}

// Params are per-request threshold overrides. Nil fields fall back to
// the planner's configured thresholds.
type Params struct {
	CrashNearM *float64 `json:"crash_near_m,omitempty"`
	StuckMinS  *int64   `json:"stuck_min_s,omitempty"`
	ConfMin    *float64 `json:"conf_min,omitempty"`
}

// EffectiveParams echoes the thresholds a response was computed with.
type EffectiveParams struct {
	CrashNearM float64 `json:"crash_near_m"`
	StuckMinS  int64   `json:"stuck_min_s"`
	ConfMin    float64 `json:"conf_min"`
}

// Request is one caretaker question. TimeStart and TimeEnd take ISO-8601
// instants or the relative forms ParseTimeWindow documents; empty means
// the default window.
type Request struct {
	RequesterID string  `json:"requester_id"`
	ClientID    string  `json:"client_id"`
	Question    string  `json:"question"`
	SessionID   string  `json:"session_id,omitempty"`
	TimeStart   string  `json:"time_start,omitempty"`
	TimeEnd     string  `json:"time_end,omitempty"`
	TZ          string  `json:"tz,omitempty"`
	Params      *Params `json:"params,omitempty"`
}

// Response is the structured envelope paired with the one-sentence
// answer. Result's shape depends on the metric; Samples carries at most
// three supporting records.
type Response struct {
	ClientID   string          `json:"client_id"`
	TimeWindow TimeWindow      `json:"time_window"`
	Metric     Intent          `json:"metric"`
	Params     EffectiveParams `json:"params"`
	Result     any             `json:"result"`
	Samples    []any           `json:"samples"`
}

// Planner evaluates questions against client indexes. It holds no
// per-query state; any number of queries may run concurrently.
type Planner struct {
	Auth       Authorizer
	Indexes    IndexSource
	Builder    IndexBuilder
	Thresholds nav.Thresholds
	Clock      timeutil.Clock
	IndexTTL   time.Duration

	rebuilds singleflight.Group
}

// New returns a planner with the given collaborators.
func New(auth Authorizer, indexes IndexSource, builder IndexBuilder, th nav.Thresholds, clock timeutil.Clock) *Planner {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Planner{
		Auth:       auth,
		Indexes:    indexes,
		Builder:    builder,
		Thresholds: th,
		Clock:      clock,
		IndexTTL:   DefaultIndexTTL,
	}
}

// Handle answers one question, returning the natural-language answer and
// the structured envelope. The authorization gate runs before any index
// or record access; an unauthorized requester learns nothing, not even
// whether the client exists.
func (p *Planner) Handle(ctx context.Context, req *Request) (string, *Response, error) {
	if err := validateRequest(req); err != nil {
		return "", nil, err
	}

	ok, err := p.Auth.IsAuthorized(ctx, req.RequesterID, req.ClientID)
	if err != nil {
		return "", nil, fmt.Errorf("authorization check: %w", err)
	}
	if !ok {
		return "", nil, nav.ErrUnauthorized
	}

	window, err := ParseTimeWindow(req.TimeStart, req.TimeEnd, req.TZ, p.Clock.Now())
	if err != nil {
		return "", nil, err
	}

	intent := Classify(req.Question)
	params := p.effectiveParams(req.Params)

	ix, err := p.acquireIndex(ctx, req.ClientID, req.SessionID, window)
	if err != nil {
		return "", nil, err
	}

	result, samples := p.computeMetric(ix, intent, params)
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}

	resp := &Response{
		ClientID:   req.ClientID,
		TimeWindow: window,
		Metric:     intent,
		Params:     params,
		Result:     result,
		Samples:    samples,
	}
	return renderAnswer(result), resp, nil
}

func validateRequest(req *Request) error {
	verr := map[string]string{}
	if req.Question == "" {
		verr["question"] = "required non-empty string"
	}
	if req.ClientID == "" {
		verr["client_id"] = "required non-empty string"
	}
	if req.RequesterID == "" {
		verr["requester_id"] = "required non-empty string"
	}
	if req.TZ != "" && !units.IsTimezoneValid(req.TZ) {
		verr["tz"] = "unknown timezone"
	}
	if len(verr) > 0 {
		return &nav.ValidationError{Fields: verr}
	}
	return nil
}

func (p *Planner) effectiveParams(overrides *Params) EffectiveParams {
	ep := EffectiveParams{
		CrashNearM: p.Thresholds.CrashNearM,
		StuckMinS:  p.Thresholds.StuckMinS,
		ConfMin:    p.Thresholds.ConfMin,
	}
	if overrides == nil {
		return ep
	}
	if overrides.CrashNearM != nil {
		ep.CrashNearM = *overrides.CrashNearM
	}
	if overrides.StuckMinS != nil {
		ep.StuckMinS = *overrides.StuckMinS
	}
	if overrides.ConfMin != nil {
		ep.ConfMin = *overrides.ConfMin
	}
	return ep
}

// acquireIndex serves the cached index when it is fresh enough,
// otherwise rebuilds over the window. Concurrent rebuilds of the same
// key collapse into one build; duplicate builds would be correct anyway
// (an index is a pure function of the records), this just avoids the
// wasted work.
func (p *Planner) acquireIndex(ctx context.Context, clientID, sessionID string, w TimeWindow) (*navindex.UserIndex, error) {
	key := navindex.IndexKey(clientID, sessionID)

	if p.Indexes != nil {
		ix, err := p.Indexes.GetIndex(ctx, key)
		switch {
		case err == nil:
			ttl := p.IndexTTL
			if ttl <= 0 {
				ttl = DefaultIndexTTL
			}
			if p.Clock.Now().Sub(ix.BuiltAt) <= ttl {
				return ix, nil
			}
		case errors.Is(err, store.ErrNotFound):
			// fall through to rebuild
		default:
			return nil, fmt.Errorf("load index %s: %w", key, err)
		}
	}

	from, to := w.Start.Unix(), w.End.Unix()
	v, err, _ := p.rebuilds.Do(key, func() (any, error) {
		return p.Builder.Build(ctx, clientID, sessionID, &from, &to)
	})
	if err != nil {
		return nil, fmt.Errorf("rebuild index %s: %w", key, err)
	}
	return v.(*navindex.UserIndex), nil
}
