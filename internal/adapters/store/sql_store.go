package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/utils"
	"go.uber.org/zap"
)

// timeLayout sorts lexically in time order
const timeLayout = "2006-01-02 15:04:05.000000"

// dialect carries the statements that differ between SQL engines
type dialect struct {
	name           string
	schema         []string
	upsertSettings string
}

// sqlStore implements core.Repository over database/sql
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect, logger *zap.Logger) (*sqlStore, error) {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
		}
	}
	return &sqlStore{
		db:      db,
		dialect: d,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// stamp returns t, or the current time when t is zero
func (s *sqlStore) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

// likePattern builds a case-insensitive substring pattern escaped with '!'
func likePattern(search string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(utils.Fold(search)) + "%"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// SaveAnalysis inserts a history entry
func (s *sqlStore) SaveAnalysis(ctx context.Context, entry *core.AnalysisEntry) error {
	factors, err := json.Marshal(entry.KeyFactors)
	if err != nil {
		return fmt.Errorf("failed to encode key factors: %w", err)
	}
	entry.CreatedAt = s.stamp(entry.CreatedAt)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_history (id, user_id, title, article_text, prediction, confidence_score, explanation, key_factors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.Title, entry.ArticleText, entry.Prediction, entry.ConfidenceScore,
		entry.Explanation, string(factors), formatTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns a page of a user's history, newest first
func (s *sqlStore) ListAnalyses(ctx context.Context, query core.HistoryQuery) (*core.HistoryPage, error) {
	where := "user_id = ?"
	args := []any{query.UserID}
	if query.Search != "" {
		where += " AND (LOWER(title) LIKE ? ESCAPE '!' OR LOWER(article_text) LIKE ? ESCAPE '!')"
		pattern := likePattern(query.Search)
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analysis_history WHERE "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	offset, ok := query.Offset()
	if !ok || offset >= total {
		return &core.HistoryPage{Data: []core.AnalysisEntry{}, TotalCount: total}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, article_text, prediction, confidence_score, explanation, key_factors, created_at
		FROM analysis_history
		WHERE `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, append(args, query.Limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	page := &core.HistoryPage{Data: []core.AnalysisEntry{}, TotalCount: total}
	for rows.Next() {
		var entry core.AnalysisEntry
		var factors, createdAt string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Title, &entry.ArticleText, &entry.Prediction,
			&entry.ConfidenceScore, &entry.Explanation, &factors, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(factors), &entry.KeyFactors); err != nil {
			return nil, fmt.Errorf("failed to decode key factors: %w", err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		page.Data = append(page.Data, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analyses: %w", err)
	}

	page.HasMore = total-offset > query.Limit
	return page, nil
}

// DeleteAnalyses removes the given entries owned by userID
func (s *sqlStore) DeleteAnalyses(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM analysis_history WHERE user_id = ? AND id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete analyses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted analyses: %w", err)
	}
	return int(n), nil
}

// SaveFeedback inserts a feedback row
func (s *sqlStore) SaveFeedback(ctx context.Context, entry *core.FeedbackEntry) error {
	entry.CreatedAt = s.stamp(entry.CreatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, user_id, article_text, model_prediction, confidence_score, user_rating, user_feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.ArticleText, entry.ModelPrediction, entry.ConfidenceScore,
		entry.UserRating, entry.UserFeedback, formatTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// RecentFeedback returns up to limit of a user's feedback rows, newest first
func (s *sqlStore) RecentFeedback(ctx context.Context, userID string, limit int) ([]core.FeedbackEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, article_text, model_prediction, confidence_score, user_rating, user_feedback, created_at
		FROM feedback
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var entries []core.FeedbackEntry
	for rows.Next() {
		var entry core.FeedbackEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.ArticleText, &entry.ModelPrediction,
			&entry.ConfidenceScore, &entry.UserRating, &entry.UserFeedback, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}
	return entries, nil
}

const trainingColumns = `id, user_id, feedback_id, article_text, model_prediction, user_rating, user_feedback,
	confidence_score, training_weight, text_features, prediction_accuracy, confidence_vs_rating,
	processed_for_training, model_type, insight, created_at`

// SaveTrainingRecord inserts a training record
func (s *sqlStore) SaveTrainingRecord(ctx context.Context, record *analysis.TrainingRecord) error {
	features, err := json.Marshal(record.TextFeatures)
	if err != nil {
		return fmt.Errorf("failed to encode text features: %w", err)
	}
	insight, err := json.Marshal(record.Insight)
	if err != nil {
		return fmt.Errorf("failed to encode insight: %w", err)
	}
	record.CreatedAt = s.stamp(record.CreatedAt)
	createdAt := formatTime(record.CreatedAt)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feedback_training (`+trainingColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.UserID, record.FeedbackID, record.ArticleText, record.ModelPrediction,
		record.UserRating, record.UserFeedback, record.ConfidenceScore, record.TrainingWeight,
		string(features), record.PredictionAccuracy, record.ConfidenceVsRating,
		record.ProcessedForTraining, record.ModelType, string(insight), createdAt, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert training record: %w", err)
	}
	return nil
}

func (s *sqlStore) queryTrainingRecords(ctx context.Context, query string, args ...any) ([]analysis.TrainingRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query training records: %w", err)
	}
	defer rows.Close()

	var records []analysis.TrainingRecord
	for rows.Next() {
		var r analysis.TrainingRecord
		var features, insight, createdAt string
		if err := rows.Scan(&r.ID, &r.UserID, &r.FeedbackID, &r.ArticleText, &r.ModelPrediction,
			&r.UserRating, &r.UserFeedback, &r.ConfidenceScore, &r.TrainingWeight, &features,
			&r.PredictionAccuracy, &r.ConfidenceVsRating, &r.ProcessedForTraining, &r.ModelType,
			&insight, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan training record: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &r.TextFeatures); err != nil {
			return nil, fmt.Errorf("failed to decode text features: %w", err)
		}
		if err := json.Unmarshal([]byte(insight), &r.Insight); err != nil {
			return nil, fmt.Errorf("failed to decode insight: %w", err)
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read training records: %w", err)
	}
	return records, nil
}

// RecentTrainingRecords returns up to limit records, newest first
func (s *sqlStore) RecentTrainingRecords(ctx context.Context, limit int) ([]analysis.TrainingRecord, error) {
	return s.queryTrainingRecords(ctx, `
		SELECT `+trainingColumns+`
		FROM feedback_training
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
}

// PendingTrainingRecords returns unprocessed records, heaviest then newest first.
// A non-positive limit returns all of them.
func (s *sqlStore) PendingTrainingRecords(ctx context.Context, limit int) ([]analysis.TrainingRecord, error) {
	query := `
		SELECT ` + trainingColumns + `
		FROM feedback_training
		WHERE processed_for_training = 0
		ORDER BY training_weight DESC, created_at DESC, id DESC`
	if limit <= 0 {
		return s.queryTrainingRecords(ctx, query)
	}
	return s.queryTrainingRecords(ctx, query+" LIMIT ?", limit)
}

// MarkProcessed flags a record as consumed by training
func (s *sqlStore) MarkProcessed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE feedback_training
		SET processed_for_training = 1, updated_at = ?
		WHERE id = ?
	`, formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("failed to mark training record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check marked training record: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetSettings returns core.ErrNotFound when the user has no settings
func (s *sqlStore) GetSettings(ctx context.Context, userID string) (*core.UserSettings, error) {
	var settings core.UserSettings
	var modelType, createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, ai_model_type, custom_endpoint, api_key, transformer_model, created_at, updated_at
		FROM user_settings
		WHERE user_id = ?
	`, userID).Scan(&settings.UserID, &modelType, &settings.CustomEndpoint, &settings.APIKey,
		&settings.TransformerModel, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	settings.AIModelType = core.ModelType(modelType)
	if settings.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if settings.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings inserts or replaces the user's settings
func (s *sqlStore) SaveSettings(ctx context.Context, settings *core.UserSettings) error {
	settings.CreatedAt = s.stamp(settings.CreatedAt)
	settings.UpdatedAt = s.stamp(settings.UpdatedAt)

	_, err := s.db.ExecContext(ctx, s.dialect.upsertSettings,
		settings.UserID, string(settings.AIModelType), settings.CustomEndpoint, settings.APIKey,
		settings.TransformerModel, formatTime(settings.CreatedAt), formatTime(settings.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s database: %w", s.dialect.name, err)
	}
	return nil
}
