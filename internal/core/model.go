package core

import (
	"errors"
	"math"
	"time"

	"github.com/mikey/news-credibility/internal/analysis"
)

// ErrNotFound is returned by repositories and caches for missing rows
var ErrNotFound = errors.New("not found")

// DefaultTitle is stored for analyses submitted without a title
const DefaultTitle = "Untitled Article"

// ModelType identifies which analyzer serves a user
type ModelType string

const (
	ModelBuiltIn      ModelType = "built-in"
	ModelTransformers ModelType = "transformers"
	ModelCustom       ModelType = "custom"
)

// Display names for the models that are not named by the user
const (
	BuiltInModelName = "Built-in Rule-based Model"
	CustomModelName  = "Custom API Model"
)

// ModelInfo describes the analyzer resolved for a request
type ModelInfo struct {
	Type    ModelType `json:"type"`
	Name    string    `json:"name"`
	ModelID string    `json:"model_id,omitempty"`
}

// BuiltInModel is the fallback analyzer
func BuiltInModel() ModelInfo {
	return ModelInfo{Type: ModelBuiltIn, Name: BuiltInModelName}
}

// UserSettings holds a user's analyzer preference
type UserSettings struct {
	UserID           string    `json:"user_id"`
	AIModelType      ModelType `json:"ai_model_type"`
	CustomEndpoint   string    `json:"custom_endpoint,omitempty"`
	APIKey           string    `json:"api_key,omitempty"`
	TransformerModel string    `json:"transformer_model,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ResolveModel picks the analyzer for the given settings. Nil or incomplete
// settings resolve to the built-in model.
func ResolveModel(settings *UserSettings) ModelInfo {
	if settings == nil {
		return BuiltInModel()
	}
	switch {
	case settings.AIModelType == ModelTransformers && settings.TransformerModel != "":
		return ModelInfo{Type: ModelTransformers, Name: settings.TransformerModel, ModelID: settings.TransformerModel}
	case settings.AIModelType == ModelCustom && settings.CustomEndpoint != "":
		return ModelInfo{Type: ModelCustom, Name: CustomModelName, ModelID: settings.CustomEndpoint}
	default:
		return BuiltInModel()
	}
}

// AnalysisEntry is one row of a user's analysis history
type AnalysisEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	ArticleText     string    `json:"article_text"`
	Prediction      string    `json:"prediction"`
	ConfidenceScore float64   `json:"confidence_score"`
	Explanation     string    `json:"explanation"`
	KeyFactors      []string  `json:"key_factors"`
	CreatedAt       time.Time `json:"created_at"`
}

// FeedbackEntry is a stored user rating of a verdict
type FeedbackEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ArticleText     string    `json:"article_text"`
	ModelPrediction string    `json:"model_prediction"`
	ConfidenceScore float64   `json:"confidence_score"`
	UserRating      int       `json:"user_rating"`
	UserFeedback    string    `json:"user_feedback,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// HistoryQuery selects a page of a user's analysis history. Page is zero based.
type HistoryQuery struct {
	UserID string
	Page   int
	Limit  int
	Search string
}

// Offset returns the number of rows before the page. ok is false when the
// page cannot exist, either because an argument is negative or the offset
// does not fit in an int.
func (q HistoryQuery) Offset() (offset int, ok bool) {
	if q.Page < 0 || q.Limit <= 0 {
		return 0, false
	}
	if q.Page > (math.MaxInt-q.Limit)/q.Limit {
		return 0, false
	}
	return q.Page * q.Limit, true
}

// HistoryPage is a page of analysis history, newest first
type HistoryPage struct {
	Data       []AnalysisEntry `json:"data"`
	TotalCount int             `json:"total_count"`
	HasMore    bool            `json:"has_more"`
}

// FeedbackStats summarizes a user's recent feedback
type FeedbackStats struct {
	TotalFeedback int     `json:"total_feedback"`
	AvgRating     float64 `json:"avg_rating"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// AnalysisOutcome is the result of an analysis request
type AnalysisOutcome struct {
	Verdict    analysis.VerdictResult `json:"verdict"`
	Model      ModelInfo              `json:"model"`
	HistoryID  string                 `json:"history_id,omitempty"`
	AnalyzedAt time.Time              `json:"analyzed_at"`
	Cached     bool                   `json:"cached"`
}

// FeedbackOutcome is the result of a feedback submission
type FeedbackOutcome struct {
	FeedbackID     string                   `json:"feedback_id"`
	TrainingRecord *analysis.TrainingRecord `json:"training_record,omitempty"`
}

// CacheEntry is a cached verdict
type CacheEntry struct {
	Key       string
	Verdict   analysis.VerdictResult
	Model     ModelInfo
	StoredAt  time.Time
	ExpiresAt time.Time
}
