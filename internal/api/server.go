// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the search engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/job-aggregator/internal/logging"
	"github.com/pdiddy/job-aggregator/internal/search"
	"github.com/pdiddy/job-aggregator/internal/suggest"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

// Response headers carrying the paging hints of POST /search.
const (
	HeaderHasMore   = "X-Has-More"
	HeaderNextStart = "X-Next-Start"
)

const shutdownTimeout = 15 * time.Second

// Server holds the handler dependencies.
type Server struct {
	Engine    *search.Engine
	Suggester *suggest.Suggester

	// Gatherer backs GET /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	CORSOrigins []string
	Logger      *zap.Logger
}

// Router builds the gin engine with every route registered.
// A validator registration failure is logged, not returned.
func (s *Server) Router() *gin.Engine {
	if err := registerValidators(); err != nil {
		logging.OrNop(s.Logger).Error("search validation unavailable", zap.Error(err))
	}

	r := gin.New()
	r.Use(s.recovery())
	r.Use(s.requestLogger())
	r.Use(cors.New(corsConfig(s.CORSOrigins)))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Job Aggregator API is running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/search", s.handleSearch)
	r.GET("/platforms", s.handlePlatforms)
	r.GET("/suggestions", s.handleSuggestions)
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := logging.OrNop(s.Logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func (s *Server) handleSearch(c *gin.Context) {
	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}

	page, err := s.Engine.Search(c.Request.Context(), body.request())
	if err != nil {
		if errors.Is(err, search.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logging.OrNop(s.Logger).Error("search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.Header(HeaderHasMore, strconv.FormatBool(page.HasMore))
	if page.HasMore {
		c.Header(HeaderNextStart, strconv.Itoa(page.NextStart))
	}
	c.JSON(http.StatusOK, page.Jobs)
}

func (s *Server) handlePlatforms(c *gin.Context) {
	platforms := []types.Platform{}
	if s.Engine != nil && s.Engine.Aggregator != nil && s.Engine.Aggregator.Registry != nil {
		platforms = s.Engine.Aggregator.Registry.Platforms()
	}
	c.JSON(http.StatusOK, platforms)
}

func (s *Server) handleSuggestions(c *gin.Context) {
	kind := suggest.Kind(c.Query("type"))
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}
	if s.Suggester == nil {
		c.JSON(http.StatusOK, []string{})
		return
	}
	c.JSON(http.StatusOK, s.Suggester.Lookup(kind, c.Query("query")))
}

func (s *Server) requestLogger() gin.HandlerFunc {
	logger := logging.OrNop(s.Logger)
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	logger := logging.OrNop(s.Logger)
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("handler panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.ExposeHeaders = []string{HeaderHasMore, HeaderNextStart}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
