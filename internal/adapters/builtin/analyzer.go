package builtin

import (
	"context"

	"github.com/mikey/news-credibility/internal/analysis"
)

// Analyzer serves the built-in rule-based model from the local engine
type Analyzer struct {
	engine *analysis.Engine
}

// NewAnalyzer wraps an engine
func NewAnalyzer(engine *analysis.Engine) *Analyzer {
	return &Analyzer{engine: engine}
}

// Analyze scores the article locally; ctx is only checked before starting
func (a *Analyzer) Analyze(ctx context.Context, article *analysis.ArticleInput) (*analysis.VerdictResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.engine.Analyze(*article)
}
