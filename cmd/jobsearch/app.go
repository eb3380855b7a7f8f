// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pdiddy/job-aggregator/internal/logging"
	"github.com/pdiddy/job-aggregator/internal/metrics"
	"github.com/pdiddy/job-aggregator/internal/search"
	"github.com/pdiddy/job-aggregator/internal/snapshot"
	"github.com/pdiddy/job-aggregator/internal/source"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

// app is the wired engine plus the resources it owns.
type app struct {
	cfg      types.Config
	logger   *zap.Logger
	registry *source.Registry
	store    snapshot.Store
	prom     *prometheus.Registry
	engine   *search.Engine
}

// newApp builds the logger, adapters, snapshot store and engine from cfg.
func newApp(ctx context.Context, cfg types.Config) (*app, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	reg, err := source.FromConfig(source.Options{
		Sources: cfg.Sources,
		HTTP:    cfg.Search.HTTPConfig,
		Breaker: cfg.Breaker,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	store, err := snapshot.Open(ctx, cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}

	prom := prometheus.NewRegistry()
	prom.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewRecorder(prom)

	logger.Info("engine ready",
		zap.Any("platforms", reg.Platforms()),
		zap.String("snapshot_backend", string(cfg.Snapshot.Backend)))

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		store:    store,
		prom:     prom,
		engine:   search.NewEngine(reg, store, cfg.Search, cfg.Snapshot, logger, rec),
	}, nil
}

// Close releases the snapshot store and flushes the logger.
func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
