package factory

import (
	"github.com/mikey/news-credibility/internal/config"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/training"
	"go.uber.org/zap"
)

// CreateExporter creates the training data exporter, or nil when export is disabled
func CreateExporter(cfg *config.Config, logger *zap.Logger, service *core.CredibilityService) (*training.Exporter, error) {
	t := cfg.GetTraining()
	if !t.ExportEnabled {
		return nil, nil
	}
	return training.NewExporter(service, t.ExportDir, t.ExportBatchSize, t.ExportSchedule, logger)
}
