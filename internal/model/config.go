package model

import "time"

// Config holds all runtime configuration
type Config struct {
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Database     DatabaseConfig    `yaml:"database" mapstructure:"database"`
	Evidence     EvidenceConfig    `yaml:"evidence" mapstructure:"evidence"`
	Scoring      ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Fetch        FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// DatabaseConfig selects the claim store backend
type DatabaseConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // postgres or sqlite
	DSN         string `yaml:"dsn" mapstructure:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

// EvidenceConfig selects and tunes the evidence gateway
type EvidenceConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // service or wikipedia
	ServiceURL        string        `yaml:"service_url" mapstructure:"service_url"`
	WikipediaAPIURL   string        `yaml:"wikipedia_api_url" mapstructure:"wikipedia_api_url"`
	WikipediaRESTURL  string        `yaml:"wikipedia_rest_url" mapstructure:"wikipedia_rest_url"`
	WikipediaPageURL  string        `yaml:"wikipedia_page_url" mapstructure:"wikipedia_page_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	KeywordLimit      int           `yaml:"keyword_limit" mapstructure:"keyword_limit"`
	ResultsPerKeyword int           `yaml:"results_per_keyword" mapstructure:"results_per_keyword"`
	TopK              int           `yaml:"top_k" mapstructure:"top_k"`
}

// ScoringConfig selects the similarity strategy
type ScoringConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"` // tfidf or jaccard
}

// CacheConfig configures evidence lookup caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"` // empty disables the shared layer
	RedisPass string        `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// RateLimitConfig limits outbound requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`               // batch verification workers
	LookupWorkers int `yaml:"lookup_workers" mapstructure:"lookup_workers"` // concurrent keyword lookups per claim
}

// FetchConfig configures page retrieval for url claims
type FetchConfig struct {
	ResolveURLs   bool          `yaml:"resolve_urls" mapstructure:"resolve_urls"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8002",
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  2 * time.Minute,
		},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "claimcheck.db",
			AutoMigrate: true,
		},
		Evidence: EvidenceConfig{
			Provider:          "service",
			ServiceURL:        "http://localhost:8001",
			WikipediaAPIURL:   "https://en.wikipedia.org/w/api.php",
			WikipediaRESTURL:  "https://en.wikipedia.org/api/rest_v1",
			WikipediaPageURL:  "https://en.wikipedia.org/wiki/",
			Timeout:           30 * time.Second,
			KeywordLimit:      3,
			ResultsPerKeyword: 3,
			TopK:              5,
		},
		Scoring: ScoringConfig{
			Strategy: "tfidf",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers:       4,
			LookupWorkers: 3,
		},
		Fetch: FetchConfig{
			ResolveURLs:   false,
			Timeout:       15 * time.Second,
			UserAgent:     "ClaimCheck/0.1 (+https://github.com/Lirov/claim-checker)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
