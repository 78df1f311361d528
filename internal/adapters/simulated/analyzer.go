package simulated

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
	"go.uber.org/zap"
)

// Analyzer stands in for a remote model. It returns a fixed verdict after a
// configured latency and never inspects the article.
type Analyzer struct {
	model   core.ModelInfo
	latency time.Duration
	verdict func(core.ModelInfo) analysis.VerdictResult
	logger  *zap.Logger
}

// emptySection is a detail section with no findings
func emptySection() analysis.DetailSection {
	return analysis.DetailSection{Flags: []string{}, Metrics: map[string]float64{}}
}

// NewTransformersAnalyzer simulates an in-process transformer classifier
func NewTransformersAnalyzer(model core.ModelInfo, latency time.Duration, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		model:   model,
		latency: latency,
		logger:  logger,
		verdict: func(m core.ModelInfo) analysis.VerdictResult {
			return analysis.VerdictResult{
				Prediction:  analysis.PredictionFake,
				Confidence:  81,
				Explanation: fmt.Sprintf("Transformer.js Model (%s) predicts this is LIKELY FAKE.", m.Name),
				KeyFactors:  []string{"Model: " + m.Name, "Transformer.js used"},
				DetailedAnalysis: analysis.DetailedAnalysis{
					ContentLanguage: analysis.DetailSection{
						Flags:   []string{"Transformer detected clickbait"},
						Metrics: map[string]float64{"score": 58},
					},
					Structural:  emptySection(),
					Credibility: emptySection(),
					Linguistic:  emptySection(),
				},
			}
		},
	}
}

// NewCustomAPIAnalyzer simulates a user-supplied HTTP endpoint
func NewCustomAPIAnalyzer(model core.ModelInfo, latency time.Duration, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		model:   model,
		latency: latency,
		logger:  logger,
		verdict: func(core.ModelInfo) analysis.VerdictResult {
			return analysis.VerdictResult{
				Prediction:  analysis.PredictionReal,
				Confidence:  90,
				Explanation: "Custom API Model predicts this is REAL.",
				KeyFactors:  []string{"Used custom API endpoint", "Checked with user-supplied logic"},
				DetailedAnalysis: analysis.DetailedAnalysis{
					ContentLanguage: analysis.DetailSection{
						Flags:   []string{"API flagged balanced content"},
						Metrics: map[string]float64{"score": 75},
					},
					Structural:  emptySection(),
					Credibility: emptySection(),
					Linguistic:  emptySection(),
				},
			}
		},
	}
}

// Analyze waits out the simulated latency and returns the fixed verdict
func (a *Analyzer) Analyze(ctx context.Context, article *analysis.ArticleInput) (*analysis.VerdictResult, error) {
	if err := analysis.ValidateArticle(*article); err != nil {
		return nil, err
	}

	a.logger.Debug("Simulating remote model call",
		zap.String("model_type", string(a.model.Type)),
		zap.String("model_id", a.model.ModelID),
		zap.Duration("latency", a.latency))

	if a.latency > 0 {
		timer := time.NewTimer(a.latency)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%s model call cancelled: %w", a.model.Type, ctx.Err())
		}
	}

	verdict := a.verdict(a.model)
	return &verdict, nil
}
