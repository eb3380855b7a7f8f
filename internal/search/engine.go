// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search turns one search request into one page of job postings:
// fan-out to the sources, merge, normalize, filter and paginate.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/job-aggregator/internal/logging"
	"github.com/pdiddy/job-aggregator/internal/metrics"
	"github.com/pdiddy/job-aggregator/internal/snapshot"
	"github.com/pdiddy/job-aggregator/internal/source"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

// ErrInvalidRequest marks a request the engine refuses to run: a bad
// window, an unknown enum value or an unknown platform.
var ErrInvalidRequest = errors.New("invalid search request")

// Defaults applied when the engine is built without explicit limits.
const (
	DefaultLimit         = 10
	DefaultMaxLimit      = 50
	DefaultPrefetchDepth = 50
	DefaultSnapshotTTL   = 10 * time.Minute
)

// Page is one window of results.
type Page struct {
	Jobs    []types.JobPosting `json:"jobs"`
	Start   int                `json:"start"`
	Limit   int                `json:"limit"`
	HasMore bool               `json:"has_more"`

	// NextStart is the start of the following page, 0 when HasMore is false.
	NextStart int `json:"next_start,omitempty"`
}

// Engine is the search facade: validate, aggregate, normalize, filter,
// paginate. With a snapshot store it also keeps the ordered list of each
// search between pages.
type Engine struct {
	Aggregator *Aggregator

	// Snapshots is optional. Nil means every page re-runs the fan-out.
	Snapshots   snapshot.Store
	SnapshotTTL time.Duration

	DefaultLimit  int
	MaxLimit      int
	PrefetchDepth int

	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// NewEngine builds an engine from the search and snapshot settings.
func NewEngine(reg *source.Registry, store snapshot.Store, cfg types.SearchConfig, snapCfg types.SnapshotConfig, logger *zap.Logger, rec *metrics.Recorder) *Engine {
	return &Engine{
		Aggregator: &Aggregator{
			Registry: reg,
			Timeout:  cfg.FanOutTimeout,
			Logger:   logger,
			Metrics:  rec,
		},
		Snapshots:     store,
		SnapshotTTL:   snapCfg.TTL,
		DefaultLimit:  cfg.DefaultLimit,
		MaxLimit:      cfg.MaxLimit,
		PrefetchDepth: cfg.PrefetchDepth,
		Logger:        logger,
		Metrics:       rec,
	}
}

// Search runs one search request and returns the requested window. A zero
// start or limit takes the default. A blank query yields an empty page
// without contacting any source. When every source fails the page is
// empty and no error is returned.
func (e *Engine) Search(ctx context.Context, req types.SearchRequest) (Page, error) {
	logger := logging.OrNop(e.Logger)
	req = e.withDefaults(req)

	if err := e.validate(req); err != nil {
		e.Metrics.Search(metrics.OutcomeInvalid)
		return Page{}, err
	}

	w := req.Window()
	if req.IsBlank() {
		e.Metrics.Search(metrics.OutcomeBlankQuery)
		return Page{Jobs: []types.JobPosting{}, Start: w.Start, Limit: w.Limit}, nil
	}

	began := time.Now()
	crit := Criteria{ExperienceLevels: req.ExperienceLevels, CompanySizes: req.CompanySizes}

	var (
		jobs      []types.JobPosting
		allFailed bool
		err       error
	)
	if e.Snapshots != nil {
		jobs, allFailed, err = e.searchWithSnapshot(ctx, req, w, crit)
	} else {
		jobs, allFailed, err = e.searchStateless(ctx, req, w.End(), crit)
	}
	if err != nil {
		if errors.Is(err, source.ErrUnknownPlatform) {
			e.Metrics.Search(metrics.OutcomeInvalid)
			return Page{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return Page{}, err
	}

	page := Paginate(jobs, w)
	p := Page{Jobs: page, Start: w.Start, Limit: w.Limit, HasMore: HasMore(page, w)}
	if p.HasMore {
		p.NextStart = w.Start + w.Limit
	}

	outcome := metrics.OutcomeResults
	switch {
	case len(page) > 0:
	case allFailed:
		outcome = metrics.OutcomeAllSourcesFailed
	default:
		outcome = metrics.OutcomeNoResults
	}
	e.Metrics.Search(outcome)

	logger.Debug("search completed",
		zap.String("query", req.Query),
		zap.Int("start", w.Start),
		zap.Int("limit", w.Limit),
		zap.Int("results", len(page)),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(began)))
	return p, nil
}

// searchStateless runs the full pipeline with every adapter asked for
// positions 1..depth.
func (e *Engine) searchStateless(ctx context.Context, req types.SearchRequest, depth int, crit Criteria) ([]types.JobPosting, bool, error) {
	out, err := e.Aggregator.Aggregate(ctx, req, types.Window{Start: 1, Limit: depth})
	if err != nil {
		return nil, false, err
	}
	return Filter(Normalize(out.Postings), crit), out.AllFailed, nil
}

// searchWithSnapshot serves w from the cached list when it is deep enough.
// Otherwise it aggregates deeper and appends only postings not already
// cached, so positions handed out on earlier pages never move. Any store
// failure falls back to the stateless path.
func (e *Engine) searchWithSnapshot(ctx context.Context, req types.SearchRequest, w types.Window, crit Criteria) ([]types.JobPosting, bool, error) {
	logger := logging.OrNop(e.Logger)
	key := snapshot.Key(req.Signature())

	cached, err := e.Snapshots.Load(ctx, key)
	switch {
	case err == nil && cached.Depth >= w.End():
		e.Metrics.SnapshotLookup(metrics.SnapshotHit)
		return cached.Jobs, false, nil
	case err == nil || errors.Is(err, snapshot.ErrMiss):
		e.Metrics.SnapshotLookup(metrics.SnapshotMiss)
	default:
		e.Metrics.SnapshotLookup(metrics.SnapshotError)
		logger.Warn("snapshot load failed, searching without it", zap.Error(err))
		return e.searchStateless(ctx, req, w.End(), crit)
	}

	depth := max(w.End(), e.prefetchDepth())
	out, err := e.Aggregator.Aggregate(ctx, req, types.Window{Start: 1, Limit: depth})
	if err != nil {
		return nil, false, err
	}
	fresh := Filter(Normalize(out.Postings), crit)
	jobs := Normalize(append(slices.Clone(cached.Jobs), fresh...))

	// A failed fan-out is not cached, so the next page retries the sources.
	if out.AllFailed {
		return jobs, len(jobs) == 0, nil
	}
	if err := e.Snapshots.Save(ctx, key, snapshot.Snapshot{Jobs: jobs, Depth: depth}, e.snapshotTTL()); err != nil {
		logger.Warn("snapshot save failed", zap.Error(err))
	}
	return jobs, false, nil
}

func (e *Engine) withDefaults(req types.SearchRequest) types.SearchRequest {
	if req.Start == 0 {
		req.Start = 1
	}
	if req.Limit == 0 {
		req.Limit = e.defaultLimit()
	}
	return req
}

// validate rejects bad windows, unknown enum values and unknown platforms.
func (e *Engine) validate(req types.SearchRequest) error {
	if req.Start < 1 {
		return fmt.Errorf("%w: start must be at least 1, got %d", ErrInvalidRequest, req.Start)
	}
	if req.Limit < 1 || req.Limit > e.maxLimit() {
		return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidRequest, e.maxLimit(), req.Limit)
	}
	for _, l := range req.ExperienceLevels {
		if !l.Valid() {
			return fmt.Errorf("%w: unknown experience level %q", ErrInvalidRequest, l)
		}
	}
	for _, s := range req.CompanySizes {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown company size %q", ErrInvalidRequest, s)
		}
	}
	for _, p := range req.Platforms {
		if strings.EqualFold(strings.TrimSpace(p), types.PlatformAll) {
			continue
		}
		if _, err := types.ParsePlatform(p); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	return nil
}

func (e *Engine) defaultLimit() int {
	if e.DefaultLimit > 0 {
		return e.DefaultLimit
	}
	return DefaultLimit
}

func (e *Engine) maxLimit() int {
	if e.MaxLimit > 0 {
		return e.MaxLimit
	}
	return DefaultMaxLimit
}

func (e *Engine) prefetchDepth() int {
	if e.PrefetchDepth > 0 {
		return e.PrefetchDepth
	}
	return DefaultPrefetchDepth
}

func (e *Engine) snapshotTTL() time.Duration {
	if e.SnapshotTTL > 0 {
		return e.SnapshotTTL
	}
	return DefaultSnapshotTTL
}
