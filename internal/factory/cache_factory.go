package factory

import (
	"fmt"

	"github.com/mikey/news-credibility/internal/adapters/cache"
	"github.com/mikey/news-credibility/internal/config"
	"github.com/mikey/news-credibility/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates the verdict cache based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultCache creates the verdict cache. The cleanup task only runs
// when caching is enabled.
func (f *CacheFactory) CreateResultCache() (core.ResultCache, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}

	cleanupFreq := cacheCfg.CleanupFrequency
	if !cacheCfg.Enabled {
		cleanupFreq = 0
	}
	return cache.NewMemoryCache(f.logger, cleanupFreq), nil
}

// ServiceOptions returns the credibility service options from the cache and
// limits configuration
func (f *CacheFactory) ServiceOptions() (core.ServiceOptions, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return core.ServiceOptions{}, fmt.Errorf("invalid cache configuration: %w", err)
	}
	limits := f.cfg.GetLimits()

	return core.ServiceOptions{
		CacheEnabled:      cacheCfg.Enabled,
		CacheTTL:          cacheCfg.TTL,
		HistoryTextChars:  limits.HistoryTextChars,
		FeedbackTextChars: limits.FeedbackTextChars,
		InsightWindow:     limits.InsightWindow,
		HistoryPageSize:   limits.HistoryPageSize,
	}, nil
}
