package analysis

import (
	"time"
)

// Prediction is the credibility verdict for an article
type Prediction string

const (
	PredictionReal Prediction = "real"
	PredictionFake Prediction = "fake"
)

// ArticleInput is the text submitted for analysis
type ArticleInput struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// FeatureSet is the analysis profile extracted from an article.
// Percentages are on a 0-100 scale, UppercaseRatio stays in [0,1].
type FeatureSet struct {
	WordCount               int     `json:"word_count"`
	SentenceCount           int     `json:"sentence_count"`
	HasExclamation          bool    `json:"has_exclamation"`
	HasQuestion             bool    `json:"has_question"`
	HasQuotes               bool    `json:"has_quotes"`
	UppercaseRatio          float64 `json:"uppercase_ratio"`
	EmotionalWordCount      int     `json:"emotional_words"`
	SensationalPhraseCount  int     `json:"sensational_phrases"`
	AverageWordsPerSentence float64 `json:"avg_sentence_length"`
	ComplexWordCount        int     `json:"complex_word_count"`
	VocabularyComplexity    float64 `json:"vocabulary_complexity"`
	GrammarIssueCount       int     `json:"grammar_issue_count"`
	GrammarQuality          float64 `json:"grammar_quality"`
	ExclamationCount        int     `json:"exclamation_count"`
	HasDateReference        bool    `json:"has_date_reference"`
	HasAuthorReference      bool    `json:"has_author_reference"`
	HasSourceReference      bool    `json:"has_source_reference"`
	HasTitle                bool    `json:"has_title"`
	TitleExclamationCount   int     `json:"title_exclamation_count"`
}

// TextFeatures is the training profile: the analysis profile plus extra statistics.
// ReadabilityScore goes negative for very long sentences.
type TextFeatures struct {
	FeatureSet
	AvgWordLength    float64 `json:"avg_word_length"`
	QuestionCount    int     `json:"question_count"`
	NumericCount     int     `json:"numeric_count"`
	ReadabilityScore float64 `json:"readability_score"`
	ComplexityScore  float64 `json:"complexity_score"`
}

// DetailSection is one category of the detailed analysis
type DetailSection struct {
	Flags   []string           `json:"flags"`
	Metrics map[string]float64 `json:"metrics"`
}

// DetailedAnalysis groups the four detail sections
type DetailedAnalysis struct {
	ContentLanguage DetailSection `json:"contentLanguage"`
	Structural      DetailSection `json:"structural"`
	Credibility     DetailSection `json:"credibility"`
	Linguistic      DetailSection `json:"linguistic"`
}

// VerdictResult is the outcome of classifying an article
type VerdictResult struct {
	Prediction       Prediction       `json:"prediction"`
	Confidence       int              `json:"confidence"`
	Explanation      string           `json:"explanation"`
	KeyFactors       []string         `json:"keyFactors"`
	DetailedAnalysis DetailedAnalysis `json:"detailedAnalysis"`
}

// FeedbackRecord is a user's rating of a previous verdict
type FeedbackRecord struct {
	ArticleText     string    `json:"article_text"`
	ModelPrediction string    `json:"model_prediction"`
	ConfidenceScore float64   `json:"confidence_score"`
	UserRating      int       `json:"user_rating"`
	UserFeedback    string    `json:"user_feedback,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// PatternType classifies a feedback event for training-data curation
type PatternType string

const (
	PositiveExample PatternType = "positive_example"
	NegativeExample PatternType = "negative_example"
)

// TrainingPriority is the curation tier of a feedback event
type TrainingPriority string

const (
	PriorityHigh   TrainingPriority = "high"
	PriorityMedium TrainingPriority = "medium"
)

// TrainingInsight summarizes what a feedback event teaches
type TrainingInsight struct {
	PatternType        PatternType      `json:"pattern_type"`
	ConfidenceAccuracy float64          `json:"confidence_accuracy"`
	TextComplexity     float64          `json:"text_complexity"`
	EmotionalIntensity int              `json:"emotional_intensity"`
	StructuralQuality  bool             `json:"structural_quality"`
	TrainingPriority   TrainingPriority `json:"training_priority"`
}

// Prediction accuracy labels stored with training records
const (
	AccuracyGood             = "good"
	AccuracyNeedsImprovement = "needs_improvement"
)

// TrainingRecord is the persistable unit produced for each feedback event
type TrainingRecord struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"user_id"`
	FeedbackID           string          `json:"feedback_id"`
	ArticleText          string          `json:"article_text"`
	ModelPrediction      string          `json:"model_prediction"`
	UserRating           int             `json:"user_rating"`
	UserFeedback         string          `json:"user_feedback,omitempty"`
	ConfidenceScore      float64         `json:"confidence_score"`
	TrainingWeight       float64         `json:"training_weight"`
	TextFeatures         TextFeatures    `json:"text_features"`
	PredictionAccuracy   string          `json:"prediction_accuracy"`
	ConfidenceVsRating   float64         `json:"confidence_vs_rating"`
	ProcessedForTraining bool            `json:"processed_for_training"`
	ModelType            string          `json:"model_type"`
	Insight              TrainingInsight `json:"insight"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Insights aggregates recent training records
type Insights struct {
	TotalFeedback          int     `json:"total_feedback"`
	AvgRating              float64 `json:"avg_rating"`
	AccuracyTrends         float64 `json:"accuracy_trends"`
	HighConfidenceAccuracy float64 `json:"high_confidence_accuracy"`
}
