package analysis

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_AnalyzeNeutralArticle(t *testing.T) {
	e := NewEngine()

	for i := 0; i < 20; i++ {
		v, err := e.Analyze(ArticleInput{Text: neutralArticle})
		require.NoError(t, err)
		assert.Equal(t, PredictionReal, v.Prediction)
		assert.GreaterOrEqual(t, v.Confidence, 70)
		assert.LessOrEqual(t, v.Confidence, 80)
		assert.Len(t, v.KeyFactors, 6)
	}
}

func TestEngine_AnalyzeSensationalArticle(t *testing.T) {
	e := NewEngine(WithRandomSource(fixedRandom(0)))

	v, err := e.Analyze(ArticleInput{
		Title: "YOU WON'T BELIEVE THIS!!!",
		Text:  "SHOCKING! Unbelievable and terrible news! Experts hate this amazing trick!!!",
	})
	require.NoError(t, err)
	assert.Equal(t, PredictionFake, v.Prediction)
	assert.GreaterOrEqual(t, v.Confidence, 85)
	assert.Contains(t, v.DetailedAnalysis.ContentLanguage.Flags, "High emotional language detected")
	assert.Contains(t, v.DetailedAnalysis.Structural.Flags, "Unusually short article")
}

func TestEngine_AnalyzeBlankText(t *testing.T) {
	_, err := NewEngine().Analyze(ArticleInput{Text: " \n\t"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var invalidErr *InvalidInputError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, "text", invalidErr.Field)
}

func TestValidateFeedback(t *testing.T) {
	valid := FeedbackInput{ArticleText: "Some text.", ModelPrediction: "real", ConfidenceScore: 70, UserRating: 4}
	require.NoError(t, ValidateFeedback(valid))

	tests := []struct {
		name  string
		edit  func(*FeedbackInput)
		field string
	}{
		{"blank text", func(in *FeedbackInput) { in.ArticleText = "  " }, "articleText"},
		{"rating too low", func(in *FeedbackInput) { in.UserRating = 0 }, "userRating"},
		{"rating too high", func(in *FeedbackInput) { in.UserRating = 6 }, "userRating"},
		{"unknown prediction", func(in *FeedbackInput) { in.ModelPrediction = "maybe" }, "modelPrediction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			err := ValidateFeedback(in)
			require.ErrorIs(t, err, ErrInvalidInput)

			var invalidErr *InvalidInputError
			require.ErrorAs(t, err, &invalidErr)
			assert.Equal(t, tt.field, invalidErr.Field)
		})
	}
}

func TestEngine_SubmitFeedback(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(WithClock(func() time.Time { return fixed }))

	rec, err := e.SubmitFeedback(FeedbackInput{
		ArticleText:     neutralArticle,
		ModelPrediction: "real",
		ConfidenceScore: 90,
		UserRating:      5,
		UserFeedback:    "Accurate call, the quotes check out.",
	})
	require.NoError(t, err)

	assert.Equal(t, neutralArticle, rec.ArticleText)
	assert.Equal(t, "real", rec.ModelPrediction)
	assert.Equal(t, 5, rec.UserRating)
	assert.Equal(t, AccuracyGood, rec.PredictionAccuracy)
	// 90/20 - 5
	assert.InDelta(t, -0.5, rec.ConfidenceVsRating, 1e-9)
	// |0.9 - 1.0| => 1.9, plus both bonuses, capped at 3
	assert.InDelta(t, 2.7, rec.TrainingWeight, 1e-9)
	assert.Equal(t, PositiveExample, rec.Insight.PatternType)
	assert.Equal(t, PriorityHigh, rec.Insight.TrainingPriority)
	assert.Equal(t, 50, rec.TextFeatures.WordCount)
	assert.Equal(t, fixed, rec.CreatedAt)
	assert.False(t, rec.ProcessedForTraining)
	assert.Empty(t, rec.ID)
	assert.Empty(t, rec.UserID)
}

func TestEngine_SubmitFeedbackNormalizesConfidence(t *testing.T) {
	e := NewEngine()

	rec, err := e.SubmitFeedback(FeedbackInput{
		ArticleText:     "Short piece.",
		ModelPrediction: "fake",
		ConfidenceScore: 150,
		UserRating:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, rec.ConfidenceScore)
	assert.Equal(t, AccuracyNeedsImprovement, rec.PredictionAccuracy)
	assert.InDelta(t, 3.0, rec.ConfidenceVsRating, 1e-9)
	assert.Equal(t, NegativeExample, rec.Insight.PatternType)
	assert.Equal(t, PriorityMedium, rec.Insight.TrainingPriority)
}

func TestEngine_SubmitFeedbackRejectsInvalid(t *testing.T) {
	rec, err := NewEngine().SubmitFeedback(FeedbackInput{ArticleText: "text", ModelPrediction: "real", UserRating: 9})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEngine_CustomLexicons(t *testing.T) {
	scoring := AnalysisLexicon()
	scoring.EmotionalWords = append(scoring.EmotionalWords, "outrageous", "scandalous", "explosive")

	e := NewEngine(WithLexicons(scoring, TrainingLexicon()), WithRandomSource(fixedRandom(0)))
	fs := e.Extract("An outrageous, scandalous and explosive "+strings.Repeat("claim ", 60), "")
	assert.Equal(t, 3, fs.EmotionalWordCount)
	assert.Equal(t, 1, FakeIndicatorTally(fs))
}
