// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/job-aggregator/internal/secrets"
	"github.com/pdiddy/job-aggregator/internal/source"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("search.timeout", 5*time.Second)
	v.SetDefault("search.http_timeout", 10*time.Second)
	v.SetDefault("search.default_limit", 10)
	v.SetDefault("search.max_limit", 50)
	v.SetDefault("search.prefetch_depth", 50)
	v.SetDefault("search.user_agent", "jobsearch/"+version)
	v.SetDefault("search.max_retries", 2)

	order := make([]string, len(source.DefaultOrder))
	for i, p := range source.DefaultOrder {
		order[i] = string(p)
	}
	v.SetDefault("sources.order", order)
	v.SetDefault("sources.adzuna.country", "gb")
	v.SetDefault("sources.demo_enabled", false)

	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.failure_ratio", 0.6)
	v.SetDefault("breaker.min_requests", 3)
	v.SetDefault("breaker.open_timeout", 30*time.Second)

	v.SetDefault("snapshot.backend", string(types.SnapshotNone))
	v.SetDefault("snapshot.ttl", 10*time.Minute)
	v.SetDefault("snapshot.redis_url", "redis://localhost:6379/0")
	v.SetDefault("snapshot.sqlite_path", "jobsearch-cache.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// loadConfig reads every setting from v and fills missing credentials from
// the secrets directory.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	order, err := parseOrder(v.GetStringSlice("sources.order"))
	if err != nil {
		return types.Config{}, err
	}

	cfg := types.Config{
		Server: types.ServerConfig{
			Addr:        v.GetString("server.addr"),
			CORSOrigins: v.GetStringSlice("server.cors_origins"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    v.GetDuration("search.http_timeout"),
				UserAgent:  v.GetString("search.user_agent"),
				MaxRetries: v.GetInt("search.max_retries"),
			},
			FanOutTimeout: v.GetDuration("search.timeout"),
			DefaultLimit:  v.GetInt("search.default_limit"),
			MaxLimit:      v.GetInt("search.max_limit"),
			PrefetchDepth: v.GetInt("search.prefetch_depth"),
		},
		Sources: types.SourcesConfig{
			Order: order,
			Google: types.CustomSearchConfig{
				APIKey:   v.GetString("sources.google.api_key"),
				EngineID: v.GetString("sources.google.engine_id"),
			},
			Adzuna: types.AdzunaConfig{
				AppID:   v.GetString("sources.adzuna.app_id"),
				AppKey:  v.GetString("sources.adzuna.app_key"),
				Country: v.GetString("sources.adzuna.country"),
			},
			DemoEnabled: v.GetBool("sources.demo_enabled"),
		},
		Breaker: types.BreakerConfig{
			Enabled:      v.GetBool("breaker.enabled"),
			FailureRatio: v.GetFloat64("breaker.failure_ratio"),
			MinRequests:  v.GetUint32("breaker.min_requests"),
			OpenTimeout:  v.GetDuration("breaker.open_timeout"),
		},
		Snapshot: types.SnapshotConfig{
			Backend:    types.SnapshotBackend(strings.ToLower(v.GetString("snapshot.backend"))),
			TTL:        v.GetDuration("snapshot.ttl"),
			RedisURL:   v.GetString("snapshot.redis_url"),
			SQLitePath: v.GetString("snapshot.sqlite_path"),
		},
		Log: types.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.Search.MaxLimit > 0 && cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		return types.Config{}, fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}

	s.ApplyTo(&cfg.Sources)
	return cfg, nil
}

// parseOrder resolves platform names. A single comma-separated string, as
// set through the environment, is split first.
func parseOrder(names []string) ([]types.Platform, error) {
	if len(names) == 1 && strings.Contains(names[0], ",") {
		names = strings.Split(names[0], ",")
	}
	out := make([]types.Platform, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		p, err := types.ParsePlatform(n)
		if err != nil {
			return nil, fmt.Errorf("sources.order: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}
