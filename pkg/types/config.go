package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP client timeout. The fan-out deadline
	// usually fires first.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent upstream (e.g. "jobsearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429/503.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the search core.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// FanOutTimeout bounds every adapter call within one search (default 5s).
	FanOutTimeout time.Duration `json:"fan_out_timeout" yaml:"fan_out_timeout"`

	// DefaultLimit is the page size used when a request omits limit (default 10).
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`

	// MaxLimit caps the page size a request may ask for (default 50).
	MaxLimit int `json:"max_limit" yaml:"max_limit"`

	// PrefetchDepth is how deep each adapter is asked to go when snapshots
	// are enabled, so several pages come from one fan-out (default 50).
	PrefetchDepth int `json:"prefetch_depth" yaml:"prefetch_depth"`
}

// CustomSearchConfig holds Google Custom Search credentials. The same
// engine serves the generic adapter and the site-restricted ones.
type CustomSearchConfig struct {
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	EngineID string `json:"engine_id,omitempty" yaml:"engine_id,omitempty"`
}

// Configured reports whether both credentials are present.
func (c CustomSearchConfig) Configured() bool {
	return c.APIKey != "" && c.EngineID != ""
}

// AdzunaConfig holds Adzuna API credentials.
type AdzunaConfig struct {
	AppID   string `json:"app_id,omitempty" yaml:"app_id,omitempty"`
	AppKey  string `json:"app_key,omitempty" yaml:"app_key,omitempty"`
	Country string `json:"country" yaml:"country"`
}

// Configured reports whether both credentials are present.
func (c AdzunaConfig) Configured() bool {
	return c.AppID != "" && c.AppKey != ""
}

// SourcesConfig selects and configures the source adapters.
type SourcesConfig struct {
	// Order is the registration order, which is also the merge order.
	Order []Platform `json:"order" yaml:"order"`

	Google CustomSearchConfig `json:"google" yaml:"google"`
	Adzuna AdzunaConfig       `json:"adzuna" yaml:"adzuna"`

	// DemoEnabled registers the offline catalog adapter.
	DemoEnabled bool `json:"demo_enabled" yaml:"demo_enabled"`
}

// BreakerConfig controls the per-adapter circuit breakers.
type BreakerConfig struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	FailureRatio float64       `json:"failure_ratio" yaml:"failure_ratio"`
	MinRequests  uint32        `json:"min_requests" yaml:"min_requests"`
	OpenTimeout  time.Duration `json:"open_timeout" yaml:"open_timeout"`
}

// SnapshotBackend selects where paging snapshots are kept.
type SnapshotBackend string

const (
	SnapshotNone   SnapshotBackend = "none"
	SnapshotRedis  SnapshotBackend = "redis"
	SnapshotSQLite SnapshotBackend = "sqlite"
)

// SnapshotConfig controls the optional per-signature result cache.
type SnapshotConfig struct {
	Backend    SnapshotBackend `json:"backend" yaml:"backend"`
	TTL        time.Duration   `json:"ttl" yaml:"ttl"`
	RedisURL   string          `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	SQLitePath string          `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// LogConfig selects log level and encoding ("json" or "console").
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Config groups all settings for the jobsearch binary.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	Sources  SourcesConfig  `json:"sources" yaml:"sources"`
	Breaker  BreakerConfig  `json:"breaker" yaml:"breaker"`
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`
	Log      LogConfig      `json:"log" yaml:"log"`
}
