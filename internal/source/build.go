// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/pdiddy/job-aggregator/internal/logging"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

// ErrNoSources is returned by FromConfig when no adapter could be built.
var ErrNoSources = errors.New("no sources configured: set API keys in .secrets/ or enable sources.demo_enabled")

// DefaultOrder is the registration order used when configuration names none.
var DefaultOrder = []types.Platform{
	types.PlatformLinkedIn,
	types.PlatformIndeed,
	types.PlatformGlassdoor,
	types.PlatformNaukri,
	types.PlatformAdzuna,
	types.PlatformGoogle,
}

// Options carries everything FromConfig needs.
type Options struct {
	Sources types.SourcesConfig
	HTTP    types.HTTPConfig
	Breaker types.BreakerConfig

	// Client is shared by every network adapter. Nil builds one with
	// HTTP.Timeout.
	Client *http.Client
	Logger *zap.Logger
}

// FromConfig builds the registry. Platforms whose credentials are missing
// are skipped with an INFO log; the Demo catalog is appended when enabled
// and not already listed.
func FromConfig(opts Options) (*Registry, error) {
	logger := logging.OrNop(opts.Logger)
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.HTTP.Timeout}
	}

	order := opts.Sources.Order
	if len(order) == 0 {
		order = DefaultOrder
	}
	if opts.Sources.DemoEnabled && !slices.Contains(order, types.PlatformDemo) {
		order = append(slices.Clone(order), types.PlatformDemo)
	}

	var adapters []Adapter
	for _, p := range order {
		a, err := buildAdapter(p, client, opts, logger)
		if err != nil {
			return nil, err
		}
		if a == nil {
			logger.Info("source not configured, skipping", zap.String("platform", string(p)))
			continue
		}
		if opts.Breaker.Enabled {
			a = NewBreaker(a, opts.Breaker, logger)
		}
		adapters = append(adapters, a)
	}

	if len(adapters) == 0 {
		return nil, ErrNoSources
	}
	return NewRegistry(adapters...)
}

// buildAdapter returns nil, nil when p is known but not configured.
func buildAdapter(p types.Platform, client *http.Client, opts Options, logger *zap.Logger) (Adapter, error) {
	switch p {
	case types.PlatformLinkedIn, types.PlatformIndeed, types.PlatformGlassdoor, types.PlatformNaukri:
		if !opts.Sources.Google.Configured() {
			return nil, nil
		}
		return NewSiteSearch(p, client, opts.Sources.Google, opts.HTTP, logger)
	case types.PlatformGoogle:
		if !opts.Sources.Google.Configured() {
			return nil, nil
		}
		return NewCustomSearch(client, opts.Sources.Google, opts.HTTP, logger), nil
	case types.PlatformAdzuna:
		if !opts.Sources.Adzuna.Configured() {
			return nil, nil
		}
		return NewAdzuna(client, opts.Sources.Adzuna, opts.HTTP, logger), nil
	case types.PlatformDemo:
		if !opts.Sources.DemoEnabled {
			return nil, nil
		}
		return NewCatalog()
	default:
		return nil, fmt.Errorf("%w: %q in sources.order", ErrUnknownPlatform, p)
	}
}
