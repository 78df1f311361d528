package config

import (
	"fmt"
	"time"
)

// ServerConfig represents the frontend configuration
type ServerConfig struct {
	Frontend        string
	ListenAddress   string
	ShutdownTimeout time.Duration
}

// StoreConfig represents the persistence configuration
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// CacheConfig represents the verdict cache configuration
type CacheConfig struct {
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
}

// RateLimitConfig represents the request limiter configuration
type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
}

// ModelsConfig represents the simulated model backends
type ModelsConfig struct {
	TransformersLatency time.Duration
	CustomLatency       time.Duration
}

// LimitsConfig represents text and paging limits
type LimitsConfig struct {
	HistoryTextChars  int
	FeedbackTextChars int
	InsightWindow     int
	HistoryPageSize   int
}

// TrainingConfig represents the training data exporter
type TrainingConfig struct {
	ExportEnabled   bool
	ExportSchedule  string
	ExportDir       string
	ExportBatchSize int
}

// GetServer returns the server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		Frontend:        c.GetString("server.frontend"),
		ListenAddress:   c.GetString("server.listen_address"),
		ShutdownTimeout: timeout,
	}, nil
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
	}, nil
}

// GetRateLimit returns the rate limit configuration
func (c *Config) GetRateLimit() (RateLimitConfig, error) {
	window, err := c.GetDuration("ratelimit.window")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if window <= 0 {
		return RateLimitConfig{}, fmt.Errorf("ratelimit.window must be positive, got %s", window)
	}
	if n := c.GetInt("ratelimit.max_requests"); n <= 0 {
		return RateLimitConfig{}, fmt.Errorf("ratelimit.max_requests must be positive, got %d", n)
	}
	return RateLimitConfig{
		Enabled:     c.GetBool("ratelimit.enabled"),
		MaxRequests: c.GetInt("ratelimit.max_requests"),
		Window:      window,
	}, nil
}

// GetModels returns the simulated model configuration
func (c *Config) GetModels() (ModelsConfig, error) {
	transformers, err := c.GetDuration("models.transformers_latency")
	if err != nil {
		return ModelsConfig{}, err
	}
	custom, err := c.GetDuration("models.custom_latency")
	if err != nil {
		return ModelsConfig{}, err
	}
	return ModelsConfig{
		TransformersLatency: transformers,
		CustomLatency:       custom,
	}, nil
}

// GetLimits returns the text and paging limits
func (c *Config) GetLimits() LimitsConfig {
	return LimitsConfig{
		HistoryTextChars:  c.GetInt("limits.history_text_chars"),
		FeedbackTextChars: c.GetInt("limits.feedback_text_chars"),
		InsightWindow:     c.GetInt("limits.insight_window"),
		HistoryPageSize:   c.GetInt("limits.history_page_size"),
	}
}

// GetTraining returns the training export configuration
func (c *Config) GetTraining() TrainingConfig {
	return TrainingConfig{
		ExportEnabled:   c.GetBool("training.export_enabled"),
		ExportSchedule:  c.GetString("training.export_schedule"),
		ExportDir:       c.GetString("training.export_dir"),
		ExportBatchSize: c.GetInt("training.export_batch_size"),
	}
}
