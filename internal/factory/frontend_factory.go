package factory

import (
	"fmt"
	"os"

	"github.com/mikey/news-credibility/internal/adapters/frontend"
	"github.com/mikey/news-credibility/internal/config"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/ports"
	"github.com/mikey/news-credibility/internal/ratelimit"
	"go.uber.org/zap"
)

// FrontendFactory creates article frontends based on configuration
type FrontendFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.CredibilityService
	limiter *ratelimit.Limiter
}

// NewFrontendFactory creates a new frontend factory. limiter may be nil.
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, service *core.CredibilityService, limiter *ratelimit.Limiter) *FrontendFactory {
	return &FrontendFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		limiter: limiter,
	}
}

// CreateArticleFrontend creates an article frontend based on the configuration
func (f *FrontendFactory) CreateArticleFrontend() (ports.ArticleFrontend, error) {
	server, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	switch server.Frontend {
	case "http":
		return frontend.NewHTTPFrontend(
			f.service,
			f.limiter,
			f.logger,
			server.ListenAddress,
			server.ShutdownTimeout,
		), nil
	case "cli":
		return frontend.NewCliFrontend(
			f.service,
			f.logger,
			os.Stdout,
			f.cfg.GetBool("cli.verbose"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", server.Frontend)
	}
}

// CreateLimiter creates the request rate limiter, or nil when rate limiting is disabled
func CreateLimiter(cfg *config.Config, logger *zap.Logger) (*ratelimit.Limiter, error) {
	rl, err := cfg.GetRateLimit()
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit configuration: %w", err)
	}
	if !rl.Enabled {
		logger.Info("Rate limiting disabled")
		return nil, nil
	}
	return ratelimit.NewLimiter(rl.MaxRequests, rl.Window, logger), nil
}
