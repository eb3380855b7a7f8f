// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/pdiddy/job-aggregator/internal/logging"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

// Breaker wraps an Adapter in a circuit breaker. After enough timeouts or
// errors the breaker opens and Fetch fails immediately, without touching
// the network, until the open timeout elapses.
type Breaker struct {
	next Adapter
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker decorates next with a breaker configured by cfg. A zero
// MinRequests or FailureRatio falls back to 3 and 0.6.
func NewBreaker(next Adapter, cfg types.BreakerConfig, logger *zap.Logger) *Breaker {
	logger = logging.OrNop(logger)
	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 3
	}
	ratio := cfg.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(next.Platform()),
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= ratio
		},
		IsSuccessful: func(err error) bool {
			// A caller that gave up says nothing about the upstream.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("platform", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Breaker{next: next, cb: cb}
}

// Platform returns the wrapped adapter's platform.
func (b *Breaker) Platform() types.Platform { return b.next.Platform() }

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// Fetch runs the wrapped adapter through the breaker. Timeouts and errors
// count as failures; empty results count as success.
func (b *Breaker) Fetch(ctx context.Context, q Query, w types.Window) Result {
	var res Result
	_, err := b.cb.Execute(func() (interface{}, error) {
		res = b.next.Fetch(ctx, q, w)
		if res.Status.Failed() {
			if res.Err != nil {
				return nil, res.Err
			}
			return nil, fmt.Errorf("%s: %s", res.Platform, res.Status)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Result{
			Platform: b.next.Platform(),
			Status:   StatusError,
			Err:      fmt.Errorf("%s unavailable: %w", b.next.Platform(), err),
		}
	}
	return res
}
