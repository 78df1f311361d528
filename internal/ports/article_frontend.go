package ports

import (
	"context"

	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
)

// ArticleFrontend defines the interface for article analysis frontends
type ArticleFrontend interface {
	// ProcessArticle analyzes an article on behalf of a user
	ProcessArticle(ctx context.Context, userID string, article *analysis.ArticleInput) (*core.AnalysisOutcome, error)

	// Start starts the frontend
	Start() error

	// Stop stops the frontend
	Stop() error
}
