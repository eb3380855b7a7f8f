// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/job-aggregator/internal/logging"
	"github.com/pdiddy/job-aggregator/internal/metrics"
	"github.com/pdiddy/job-aggregator/internal/source"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

// DefaultFanOutTimeout bounds one fan-out when the Aggregator has none set.
const DefaultFanOutTimeout = 5 * time.Second

// Aggregator fans a query out to the active adapters and merges what comes
// back before the deadline.
type Aggregator struct {
	Registry *source.Registry
	Timeout  time.Duration
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
}

// Output holds the merged postings and one Result per active adapter, in
// registration order.
type Output struct {
	Postings []types.JobPosting
	Results  []source.Result

	// Unavailable lists requested platforms that are known but not
	// registered in this deployment.
	Unavailable []types.Platform

	// AllFailed is set when no adapter produced a usable result. The
	// postings are then empty, which callers present as "no jobs".
	AllFailed bool
}

// Aggregate runs every adapter selected by req.Platforms concurrently, each
// asked for window w, and waits until all have reported or the fan-out
// deadline passes. Adapters that have not reported by then are recorded as
// timed out and whatever they send later is dropped. Postings are merged in
// registration order, each adapter's own order kept.
//
// The only error is an unknown platform name.
func (a *Aggregator) Aggregate(ctx context.Context, req types.SearchRequest, w types.Window) (Output, error) {
	logger := logging.OrNop(a.Logger)

	active, unavailable, err := a.Registry.Resolve(req.Platforms)
	if err != nil {
		return Output{}, err
	}
	for _, p := range unavailable {
		logger.Info("requested platform not configured", zap.String("platform", string(p)))
	}

	q := source.Query{
		Text:             req.Query,
		Location:         req.Location,
		ExperienceLevels: req.ExperienceLevels,
		CompanySizes:     req.CompanySizes,
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultFanOutTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type report struct {
		index   int
		result  source.Result
		elapsed time.Duration
	}

	// Buffered so a goroutine finishing after the deadline never blocks.
	ch := make(chan report, len(active))
	began := time.Now()
	for i, ad := range active {
		go func() {
			t0 := time.Now()
			res := invoke(ctx, ad, q, w)
			ch <- report{index: i, result: res, elapsed: time.Since(t0)}
		}()
	}

	results := make([]source.Result, len(active))
	reported := make([]bool, len(active))
	accept := func(r report) {
		results[r.index] = r.result
		reported[r.index] = true
		a.Metrics.AdapterResult(string(r.result.Platform), string(r.result.Status), r.elapsed, r.result.Skipped)
	}

	pending := len(active)
wait:
	for pending > 0 {
		select {
		case r := <-ch:
			accept(r)
			pending--
		case <-ctx.Done():
			break wait
		}
	}
	// Take anything that landed in the same instant as the deadline.
drain:
	for pending > 0 {
		select {
		case r := <-ch:
			accept(r)
			pending--
		default:
			break drain
		}
	}
	a.Metrics.FanOut(time.Since(began))

	out := Output{Results: results, Unavailable: unavailable}
	succeeded := 0
	for i, r := range results {
		if !reported[i] {
			r = source.Failure(active[i].Platform(), ctx.Err())
			results[i] = r
			a.Metrics.AdapterResult(string(r.Platform), string(r.Status), timeout, 0)
		}
		if r.Status.Failed() {
			logger.Warn("source failed",
				zap.String("platform", string(r.Platform)),
				zap.String("status", string(r.Status)),
				zap.Error(r.Err))
			continue
		}
		succeeded++
		out.Postings = append(out.Postings, r.Postings...)
	}

	if succeeded == 0 {
		out.AllFailed = true
		out.Postings = nil
		logger.Warn("all sources failed",
			zap.Int("active", len(active)),
			zap.Int("unavailable", len(unavailable)))
	}
	return out, nil
}

// invoke calls one adapter and turns a panic into an error result so one
// broken adapter cannot take the search down.
func invoke(ctx context.Context, ad source.Adapter, q source.Query, w types.Window) (res source.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = source.Result{
				Platform: ad.Platform(),
				Status:   source.StatusError,
				Err:      fmt.Errorf("adapter panic: %v", r),
			}
		}
	}()

	res = ad.Fetch(ctx, q, w)
	res.Platform = ad.Platform()
	if res.Status == "" {
		res.Status = source.StatusOK
		if len(res.Postings) == 0 {
			res.Status = source.StatusEmpty
		}
	}
	if res.Status.Failed() {
		res.Postings = nil
	}
	return res
}
