package analysis

import (
	"strings"
	"time"
)

// FeedbackInput is a rating submitted against a previous verdict
type FeedbackInput struct {
	ArticleText     string  `json:"articleText"`
	ModelPrediction string  `json:"modelPrediction"`
	ConfidenceScore float64 `json:"confidenceScore"`
	UserRating      int     `json:"userRating"`
	UserFeedback    string  `json:"userFeedback,omitempty"`
}

// Engine is the heuristic credibility engine. It performs no I/O; callers
// persist its outputs.
type Engine struct {
	scoring    *Extractor
	training   *Extractor
	classifier *Classifier
	now        func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithRandomSource replaces the confidence jitter source
func WithRandomSource(random RandomSource) Option {
	return func(e *Engine) {
		e.classifier = NewClassifier(random)
	}
}

// WithLexicons replaces the scoring and training lexicon profiles
func WithLexicons(scoring, training Lexicon) Option {
	return func(e *Engine) {
		e.scoring = NewExtractor(scoring)
		e.training = NewExtractor(training)
	}
}

// WithClock replaces the clock used to timestamp training records
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine with the default lexicons and random source
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scoring:    NewExtractor(AnalysisLexicon()),
		training:   NewExtractor(TrainingLexicon()),
		classifier: NewClassifier(nil),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract computes the analysis profile
func (e *Engine) Extract(text, title string) FeatureSet {
	return e.scoring.Extract(text, title)
}

// ExtractTextFeatures computes the training profile
func (e *Engine) ExtractTextFeatures(text string) TextFeatures {
	return e.training.ExtractTextFeatures(text)
}

// Classify scores an extracted feature set
func (e *Engine) Classify(fs FeatureSet) VerdictResult {
	return e.classifier.Classify(fs)
}

// Analyze extracts and classifies an article
func (e *Engine) Analyze(article ArticleInput) (*VerdictResult, error) {
	if err := ValidateArticle(article); err != nil {
		return nil, err
	}
	verdict := e.Classify(e.Extract(article.Text, article.Title))
	return &verdict, nil
}

// ValidateArticle rejects articles without text
func ValidateArticle(article ArticleInput) error {
	if strings.TrimSpace(article.Text) == "" {
		return invalid("text", "article text is empty")
	}
	return nil
}

// ValidateFeedback checks a feedback submission without computing anything
func ValidateFeedback(in FeedbackInput) error {
	if strings.TrimSpace(in.ArticleText) == "" {
		return invalid("articleText", "article text is empty")
	}
	if in.UserRating < 1 || in.UserRating > 5 {
		return invalid("userRating", "rating must be between 1 and 5")
	}
	switch Prediction(in.ModelPrediction) {
	case PredictionReal, PredictionFake:
	default:
		return invalid("modelPrediction", "prediction must be real or fake")
	}
	return nil
}

// SubmitFeedback builds the training record for a feedback event. Identity fields
// (ID, UserID, FeedbackID, ModelType) are left for the caller to fill.
func (e *Engine) SubmitFeedback(in FeedbackInput) (*TrainingRecord, error) {
	if err := ValidateFeedback(in); err != nil {
		return nil, err
	}

	fb := FeedbackRecord{
		ArticleText:     in.ArticleText,
		ModelPrediction: in.ModelPrediction,
		ConfidenceScore: NormalizeConfidence(in.ConfidenceScore),
		UserRating:      in.UserRating,
		UserFeedback:    in.UserFeedback,
		Timestamp:       e.now(),
	}

	features := e.ExtractTextFeatures(fb.ArticleText)

	accuracy := AccuracyNeedsImprovement
	if fb.UserRating >= goodRatingThreshold {
		accuracy = AccuracyGood
	}

	return &TrainingRecord{
		ArticleText:        fb.ArticleText,
		ModelPrediction:    fb.ModelPrediction,
		UserRating:         fb.UserRating,
		UserFeedback:       fb.UserFeedback,
		ConfidenceScore:    fb.ConfidenceScore,
		TrainingWeight:     round2(ComputeWeight(fb)),
		TextFeatures:       features,
		PredictionAccuracy: accuracy,
		ConfidenceVsRating: round2(fb.ConfidenceScore/20 - float64(fb.UserRating)),
		Insight:            ClassifyPattern(fb, features),
		CreatedAt:          fb.Timestamp,
	}, nil
}

// ComputeInsights aggregates recent training records
func (e *Engine) ComputeInsights(history []TrainingRecord) Insights {
	return ComputeInsights(history)
}
