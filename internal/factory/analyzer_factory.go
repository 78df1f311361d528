package factory

import (
	"fmt"

	"github.com/mikey/news-credibility/internal/adapters/builtin"
	"github.com/mikey/news-credibility/internal/adapters/simulated"
	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/config"
	"github.com/mikey/news-credibility/internal/core"
	"go.uber.org/zap"
)

// AnalyzerFactory creates analyzers for the model a user has selected
type AnalyzerFactory struct {
	models  config.ModelsConfig
	logger  *zap.Logger
	builtin *builtin.Analyzer
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config, logger *zap.Logger, engine *analysis.Engine) (*AnalyzerFactory, error) {
	models, err := cfg.GetModels()
	if err != nil {
		return nil, fmt.Errorf("invalid models configuration: %w", err)
	}

	return &AnalyzerFactory{
		models:  models,
		logger:  logger,
		builtin: builtin.NewAnalyzer(engine),
	}, nil
}

// AnalyzerFor returns the analyzer backing the given model
func (f *AnalyzerFactory) AnalyzerFor(model core.ModelInfo) (core.Analyzer, error) {
	switch model.Type {
	case core.ModelBuiltIn:
		return f.builtin, nil
	case core.ModelTransformers:
		if model.ModelID == "" {
			return nil, fmt.Errorf("transformers model requires a model name")
		}
		return simulated.NewTransformersAnalyzer(model, f.models.TransformersLatency, f.logger), nil
	case core.ModelCustom:
		if model.ModelID == "" {
			return nil, fmt.Errorf("custom model requires an endpoint")
		}
		return simulated.NewCustomAPIAnalyzer(model, f.models.CustomLatency, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported model type: %s", model.Type)
	}
}
