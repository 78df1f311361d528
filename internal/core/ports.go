package core

import (
	"context"

	"github.com/mikey/news-credibility/internal/analysis"
)

// Analyzer produces a verdict for an article
type Analyzer interface {
	// Analyze scores an article
	Analyze(ctx context.Context, article *analysis.ArticleInput) (*analysis.VerdictResult, error)
}

// AnalyzerProvider returns the analyzer backing a resolved model
type AnalyzerProvider interface {
	AnalyzerFor(model ModelInfo) (Analyzer, error)
}

// HistoryRepository stores analysis history
type HistoryRepository interface {
	// SaveAnalysis inserts an entry, assigning CreatedAt when zero
	SaveAnalysis(ctx context.Context, entry *AnalysisEntry) error

	// ListAnalyses returns a page of a user's history, newest first
	ListAnalyses(ctx context.Context, query HistoryQuery) (*HistoryPage, error)

	// DeleteAnalyses removes the given entries owned by userID and reports how many went
	DeleteAnalyses(ctx context.Context, userID string, ids []string) (int, error)
}

// FeedbackRepository stores raw feedback rows
type FeedbackRepository interface {
	SaveFeedback(ctx context.Context, entry *FeedbackEntry) error

	// RecentFeedback returns up to limit of a user's feedback rows, newest first
	RecentFeedback(ctx context.Context, userID string, limit int) ([]FeedbackEntry, error)
}

// TrainingRepository stores derived training records
type TrainingRepository interface {
	SaveTrainingRecord(ctx context.Context, record *analysis.TrainingRecord) error

	// RecentTrainingRecords returns up to limit records across all users, newest first
	RecentTrainingRecords(ctx context.Context, limit int) ([]analysis.TrainingRecord, error)

	// PendingTrainingRecords returns unprocessed records by weight descending, then newest first
	PendingTrainingRecords(ctx context.Context, limit int) ([]analysis.TrainingRecord, error)

	// MarkProcessed flags a record as consumed by training; ErrNotFound if absent
	MarkProcessed(ctx context.Context, id string) error
}

// SettingsRepository stores per-user analyzer settings
type SettingsRepository interface {
	// GetSettings returns ErrNotFound when the user has no settings
	GetSettings(ctx context.Context, userID string) (*UserSettings, error)

	// SaveSettings inserts or replaces the user's settings
	SaveSettings(ctx context.Context, settings *UserSettings) error
}

// Repository is the full persistence surface
type Repository interface {
	HistoryRepository
	FeedbackRepository
	TrainingRepository
	SettingsRepository

	Close() error
}

// ResultCache caches verdicts keyed by user, model and article digest
type ResultCache interface {
	// Get returns ErrNotFound for missing or expired entries
	Get(ctx context.Context, key string) (*CacheEntry, error)

	Set(ctx context.Context, entry *CacheEntry) error

	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
