package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/config"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/factory"
	"github.com/mikey/news-credibility/internal/logging"
	"github.com/mikey/news-credibility/internal/ports"
	"github.com/mikey/news-credibility/internal/training"
	"github.com/mikey/news-credibility/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// Register rate limiter
	if err := container.Provide(factory.CreateLimiter); err != nil {
		return nil, err
	}

	// Register training exporter
	if err := container.Provide(factory.CreateExporter); err != nil {
		return nil, err
	}

	if err := provideFrontend(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideService registers the analysis engine, storage and the credibility
// service. Config and logger must already be provided.
func provideService(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewAnalyzerFactory); err != nil {
		return err
	}

	// Register analysis engine
	if err := container.Provide(func() *analysis.Engine {
		return analysis.NewEngine()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register repository
	if err := container.Provide(func(f *factory.StoreFactory) (core.Repository, error) {
		return f.CreateRepository()
	}); err != nil {
		return err
	}

	// Register verdict cache and service options
	if err := container.Provide(func(f *factory.CacheFactory) (core.ResultCache, error) {
		return f.CreateResultCache()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.ServiceOptions, error) {
		return f.ServiceOptions()
	}); err != nil {
		return err
	}

	// Register analyzer provider
	if err := container.Provide(func(f *factory.AnalyzerFactory) core.AnalyzerProvider {
		return f
	}); err != nil {
		return err
	}

	// Register credibility service
	return container.Provide(core.NewCredibilityService)
}

// provideFrontend registers the article frontend. The rate limiter must
// already be provided.
func provideFrontend(container *dig.Container) error {
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return err
	}

	return container.Provide(func(f *factory.FrontendFactory) (ports.ArticleFrontend, error) {
		return f.CreateArticleFrontend()
	})
}

// Components groups what the server needs at shutdown
type Components struct {
	dig.In

	Logger   *zap.Logger
	Frontend ports.ArticleFrontend
	Cache    core.ResultCache
	Repo     core.Repository
	Exporter *training.Exporter
}
