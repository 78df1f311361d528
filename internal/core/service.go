package core

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/utils"
	"go.uber.org/zap"
)

// ErrMissingUser is returned when a request carries no user id
var ErrMissingUser = errors.New("user id is required")

// statsWindow bounds how many feedback rows FeedbackStats averages
const statsWindow = 100

// ServiceOptions tunes the credibility service
type ServiceOptions struct {
	CacheEnabled      bool
	CacheTTL          time.Duration
	HistoryTextChars  int
	FeedbackTextChars int
	InsightWindow     int
	HistoryPageSize   int
}

// MaxHistoryPageSize caps the limit a history request may ask for
const MaxHistoryPageSize = 100

// CredibilityService is the core service for article credibility analysis
type CredibilityService struct {
	engine    *analysis.Engine
	analyzers AnalyzerProvider
	repo      Repository
	cache     ResultCache
	text      *utils.TextProcessor
	logger    *zap.Logger
	opts      ServiceOptions
	now       func() time.Time
}

// NewCredibilityService creates a new credibility service
func NewCredibilityService(
	engine *analysis.Engine,
	analyzers AnalyzerProvider,
	repo Repository,
	cache ResultCache,
	text *utils.TextProcessor,
	logger *zap.Logger,
	opts ServiceOptions,
) *CredibilityService {
	if opts.InsightWindow <= 0 || opts.InsightWindow > analysis.InsightWindow {
		opts.InsightWindow = analysis.InsightWindow
	}
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = 20
	}
	return &CredibilityService{
		engine:    engine,
		analyzers: analyzers,
		repo:      repo,
		cache:     cache,
		text:      text,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// cacheKey identifies a verdict by user, model and article content
func cacheKey(userID string, model ModelInfo, article *analysis.ArticleInput) string {
	digest := sha256.New()
	digest.Write([]byte(article.Title))
	digest.Write([]byte{0})
	digest.Write([]byte(article.Text))
	return fmt.Sprintf("%s:%s:%s:%x", userID, model.Type, model.ModelID, digest.Sum(nil))
}

// ResolveModel returns the analyzer model configured for a user, falling back
// to the built-in model when settings are missing or unreadable
func (s *CredibilityService) ResolveModel(ctx context.Context, userID string) ModelInfo {
	settings, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Failed to load user settings, using built-in model",
				zap.String("user_id", userID),
				zap.Error(err))
		}
		return BuiltInModel()
	}
	return ResolveModel(settings)
}

// analyzerFor returns the analyzer for a model, or the built-in one when the
// model has no usable backend
func (s *CredibilityService) analyzerFor(model ModelInfo) (Analyzer, ModelInfo, error) {
	analyzer, err := s.analyzers.AnalyzerFor(model)
	if err == nil {
		return analyzer, model, nil
	}
	if model.Type == ModelBuiltIn {
		return nil, model, fmt.Errorf("failed to create built-in analyzer: %w", err)
	}

	s.logger.Warn("Analyzer unavailable, falling back to built-in model",
		zap.String("model_type", string(model.Type)),
		zap.String("model_name", model.Name),
		zap.Error(err))

	fallback := BuiltInModel()
	analyzer, err = s.analyzers.AnalyzerFor(fallback)
	if err != nil {
		return nil, fallback, fmt.Errorf("failed to create built-in analyzer: %w", err)
	}
	return analyzer, fallback, nil
}

// Analyze scores an article with the user's analyzer and records it in the
// user's history
func (s *CredibilityService) Analyze(ctx context.Context, userID string, article *analysis.ArticleInput) (*AnalysisOutcome, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if article == nil {
		article = &analysis.ArticleInput{}
	}
	if err := analysis.ValidateArticle(*article); err != nil {
		return nil, err
	}

	model := s.ResolveModel(ctx, userID)
	key := cacheKey(userID, model, article)

	var outcome *AnalysisOutcome
	if s.opts.CacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for article",
				zap.String("user_id", userID),
				zap.String("model_type", string(entry.Model.Type)))
			outcome = &AnalysisOutcome{
				Verdict:    entry.Verdict,
				Model:      entry.Model,
				AnalyzedAt: s.now(),
				Cached:     true,
			}
		}
	}

	if outcome == nil {
		analyzer, used, err := s.analyzerFor(model)
		if err != nil {
			return nil, err
		}

		verdict, err := analyzer.Analyze(ctx, article)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze article with %s model: %w", used.Type, err)
		}

		outcome = &AnalysisOutcome{
			Verdict:    *verdict,
			Model:      used,
			AnalyzedAt: s.now(),
		}

		if s.opts.CacheEnabled {
			entry := &CacheEntry{
				Key:       key,
				Verdict:   *verdict,
				Model:     used,
				StoredAt:  outcome.AnalyzedAt,
				ExpiresAt: outcome.AnalyzedAt.Add(s.opts.CacheTTL),
			}
			if err := s.cache.Set(ctx, entry); err != nil {
				s.logger.Error("Failed to update cache", zap.Error(err))
			}
		}
	}

	outcome.HistoryID = s.saveHistory(ctx, userID, article, &outcome.Verdict, outcome.AnalyzedAt)

	s.logger.Info("Article analyzed",
		zap.String("user_id", userID),
		zap.String("model_type", string(outcome.Model.Type)),
		zap.String("prediction", string(outcome.Verdict.Prediction)),
		zap.Int("confidence", outcome.Verdict.Confidence),
		zap.Bool("cached", outcome.Cached))

	return outcome, nil
}

// saveHistory stores the analysis and returns its id, or "" when the write failed
func (s *CredibilityService) saveHistory(ctx context.Context, userID string, article *analysis.ArticleInput, verdict *analysis.VerdictResult, at time.Time) string {
	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = DefaultTitle
	}

	entry := &AnalysisEntry{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           title,
		ArticleText:     s.text.ProcessText(article.Text, s.opts.HistoryTextChars),
		Prediction:      string(verdict.Prediction),
		ConfidenceScore: round2(float64(verdict.Confidence)),
		Explanation:     verdict.Explanation,
		KeyFactors:      verdict.KeyFactors,
		CreatedAt:       at,
	}
	if err := s.repo.SaveAnalysis(ctx, entry); err != nil {
		s.logger.Error("Failed to save analysis to history",
			zap.String("user_id", userID),
			zap.Error(err))
		return ""
	}
	return entry.ID
}

// SubmitFeedback stores a user's rating of a verdict and derives the training
// record for it. Only the feedback row is required to succeed.
func (s *CredibilityService) SubmitFeedback(ctx context.Context, userID string, in analysis.FeedbackInput) (*FeedbackOutcome, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if err := analysis.ValidateFeedback(in); err != nil {
		return nil, err
	}

	in.ArticleText = s.text.ProcessText(in.ArticleText, s.opts.FeedbackTextChars)

	entry := &FeedbackEntry{
		ID:              uuid.NewString(),
		UserID:          userID,
		ArticleText:     in.ArticleText,
		ModelPrediction: in.ModelPrediction,
		ConfidenceScore: analysis.NormalizeConfidence(in.ConfidenceScore),
		UserRating:      in.UserRating,
		UserFeedback:    in.UserFeedback,
		CreatedAt:       s.now(),
	}
	if err := s.repo.SaveFeedback(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	outcome := &FeedbackOutcome{FeedbackID: entry.ID}

	record, err := s.engine.SubmitFeedback(in)
	if err != nil {
		s.logger.Error("Failed to build training record",
			zap.String("feedback_id", entry.ID),
			zap.Error(err))
		return outcome, nil
	}
	record.ID = uuid.NewString()
	record.UserID = userID
	record.FeedbackID = entry.ID
	record.ModelType = string(s.ResolveModel(ctx, userID).Type)

	if err := s.repo.SaveTrainingRecord(ctx, record); err != nil {
		s.logger.Error("Failed to store training record",
			zap.String("feedback_id", entry.ID),
			zap.Error(err))
		return outcome, nil
	}

	s.logger.Info("Feedback processed for training",
		zap.String("user_id", userID),
		zap.String("feedback_id", entry.ID),
		zap.Float64("training_weight", record.TrainingWeight),
		zap.String("pattern_type", string(record.Insight.PatternType)),
		zap.String("training_priority", string(record.Insight.TrainingPriority)))

	outcome.TrainingRecord = record
	return outcome, nil
}

// TrainingInsights aggregates the most recent training records across users
func (s *CredibilityService) TrainingInsights(ctx context.Context) (*analysis.Insights, error) {
	records, err := s.repo.RecentTrainingRecords(ctx, s.opts.InsightWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load training records: %w", err)
	}
	insights := s.engine.ComputeInsights(records)
	return &insights, nil
}

// FeedbackStats averages a user's recent feedback
func (s *CredibilityService) FeedbackStats(ctx context.Context, userID string) (*FeedbackStats, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	rows, err := s.repo.RecentFeedback(ctx, userID, statsWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	if len(rows) == 0 {
		return &FeedbackStats{}, nil
	}

	var ratingSum, confidenceSum float64
	for _, r := range rows {
		ratingSum += float64(r.UserRating)
		confidenceSum += r.ConfidenceScore
	}
	n := float64(len(rows))
	return &FeedbackStats{
		TotalFeedback: len(rows),
		AvgRating:     ratingSum / n,
		AvgConfidence: confidenceSum / n,
	}, nil
}

// History returns a page of the user's analyses, newest first. Search matches
// title or text case-insensitively.
func (s *CredibilityService) History(ctx context.Context, userID string, page, limit int, search string) (*HistoryPage, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = s.opts.HistoryPageSize
	}
	limit = min(limit, MaxHistoryPageSize)

	query := HistoryQuery{
		UserID: userID,
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(search),
	}
	if _, ok := query.Offset(); !ok {
		return nil, &analysis.InvalidInputError{Field: "page", Reason: "page is out of range"}
	}

	result, err := s.repo.ListAnalyses(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis history: %w", err)
	}
	return result, nil
}

// DeleteAnalyses removes the given analyses owned by the user
func (s *CredibilityService) DeleteAnalyses(ctx context.Context, userID string, ids []string) (int, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteAnalyses(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete analyses: %w", err)
	}

	s.logger.Info("Analyses deleted",
		zap.String("user_id", userID),
		zap.Int("requested", len(ids)),
		zap.Int("deleted", deleted))
	return deleted, nil
}

// Settings returns the user's settings, or built-in defaults when none are stored
func (s *CredibilityService) Settings(ctx context.Context, userID string) (*UserSettings, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	settings, err := s.repo.GetSettings(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &UserSettings{UserID: userID, AIModelType: ModelBuiltIn}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings validates and stores the user's settings. Fields that do not
// apply to the chosen model type are cleared.
func (s *CredibilityService) SaveSettings(ctx context.Context, settings *UserSettings) error {
	if settings == nil || settings.UserID == "" {
		return ErrMissingUser
	}

	switch settings.AIModelType {
	case "":
		settings.AIModelType = ModelBuiltIn
	case ModelBuiltIn, ModelTransformers, ModelCustom:
	default:
		return &analysis.InvalidInputError{Field: "ai_model_type", Reason: "unknown model type"}
	}
	if settings.AIModelType != ModelTransformers {
		settings.TransformerModel = ""
	}
	if settings.AIModelType != ModelCustom {
		settings.CustomEndpoint = ""
		settings.APIKey = ""
	}

	now := s.now()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("User settings saved",
		zap.String("user_id", settings.UserID),
		zap.String("model_type", string(settings.AIModelType)))
	return nil
}

// PendingTrainingData returns unprocessed training records, heaviest first
func (s *CredibilityService) PendingTrainingData(ctx context.Context, limit int) ([]analysis.TrainingRecord, error) {
	records, err := s.repo.PendingTrainingRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending training data: %w", err)
	}
	return records, nil
}

// MarkProcessed flags a training record as consumed
func (s *CredibilityService) MarkProcessed(ctx context.Context, id string) error {
	if err := s.repo.MarkProcessed(ctx, id); err != nil {
		return fmt.Errorf("failed to mark training record %s processed: %w", id, err)
	}
	return nil
}
