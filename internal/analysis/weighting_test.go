package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeWeight(t *testing.T) {
	tests := []struct {
		name     string
		feedback FeedbackRecord
		want     float64
	}{
		{
			name:     "confidence matches rating",
			feedback: FeedbackRecord{UserRating: 3, ConfidenceScore: 60},
			want:     2.0,
		},
		{
			name:     "extreme rating with detailed feedback",
			feedback: FeedbackRecord{UserRating: 1, ConfidenceScore: 100, UserFeedback: strings.Repeat("x", 25)},
			want:     2.0,
		},
		{
			name:     "agreeing extreme rating with detailed feedback",
			feedback: FeedbackRecord{UserRating: 5, ConfidenceScore: 100, UserFeedback: strings.Repeat("x", 21)},
			want:     2.8,
		},
		{
			name:     "feedback of exactly twenty characters earns no bonus",
			feedback: FeedbackRecord{UserRating: 3, ConfidenceScore: 60, UserFeedback: strings.Repeat("x", 20)},
			want:     2.0,
		},
		{
			name:     "out of range confidence is clamped",
			feedback: FeedbackRecord{UserRating: 4, ConfidenceScore: 250},
			want:     1.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeWeight(tt.feedback)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.1)
			assert.LessOrEqual(t, got, 3.0)
		})
	}
}

func TestComputeWeight_RangeHolds(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		for _, confidence := range []float64{0, 12.345, 55, 80, 95, 100} {
			for _, comment := range []string{"", strings.Repeat("detail ", 10)} {
				w := ComputeWeight(FeedbackRecord{UserRating: rating, ConfidenceScore: confidence, UserFeedback: comment})
				assert.GreaterOrEqual(t, w, 0.1)
				assert.LessOrEqual(t, w, 3.0)
			}
		}
	}
}

func TestClassifyPattern(t *testing.T) {
	tf := TextFeatures{
		FeatureSet: FeatureSet{
			EmotionalWordCount:      2,
			SensationalPhraseCount:  1,
			AverageWordsPerSentence: 18,
		},
		ComplexityScore: 12.5,
	}

	insight := ClassifyPattern(FeedbackRecord{UserRating: 5, ConfidenceScore: 90}, tf)
	assert.Equal(t, PositiveExample, insight.PatternType)
	assert.InDelta(t, 0.5, insight.ConfidenceAccuracy, 1e-9)
	assert.Equal(t, 12.5, insight.TextComplexity)
	assert.Equal(t, 3, insight.EmotionalIntensity)
	assert.True(t, insight.StructuralQuality)
	assert.Equal(t, PriorityHigh, insight.TrainingPriority)

	insight = ClassifyPattern(FeedbackRecord{UserRating: 3, ConfidenceScore: 75}, tf)
	assert.Equal(t, NegativeExample, insight.PatternType)
	assert.InDelta(t, 0.75, insight.ConfidenceAccuracy, 1e-9)
	assert.Equal(t, PriorityMedium, insight.TrainingPriority)
}

func TestClassifyPattern_StructuralQualityBounds(t *testing.T) {
	for _, tc := range []struct {
		avg  float64
		want bool
	}{
		{10, false},
		{10.01, true},
		{24.99, true},
		{25, false},
	} {
		tf := TextFeatures{FeatureSet: FeatureSet{AverageWordsPerSentence: tc.avg}}
		assert.Equal(t, tc.want, ClassifyPattern(FeedbackRecord{UserRating: 4}, tf).StructuralQuality, tc.avg)
	}
}

func TestComputeInsights_Empty(t *testing.T) {
	assert.Equal(t, Insights{}, ComputeInsights(nil))
	assert.Equal(t, Insights{}, ComputeInsights([]TrainingRecord{}))
}

func TestComputeInsights(t *testing.T) {
	history := []TrainingRecord{
		{UserRating: 5, ConfidenceScore: 90, PredictionAccuracy: AccuracyGood},
		{UserRating: 4, ConfidenceScore: 80, PredictionAccuracy: AccuracyGood},
		{UserRating: 2, ConfidenceScore: 95, PredictionAccuracy: AccuracyNeedsImprovement},
		{UserRating: 1, ConfidenceScore: 60, PredictionAccuracy: AccuracyNeedsImprovement},
	}

	got := ComputeInsights(history)
	assert.Equal(t, 4, got.TotalFeedback)
	assert.InDelta(t, 3.0, got.AvgRating, 1e-9)
	assert.InDelta(t, 50.0, got.AccuracyTrends, 1e-9)
	// Only the first record has confidence above 80 and a good rating.
	assert.InDelta(t, 25.0, got.HighConfidenceAccuracy, 1e-9)
}

func TestComputeInsights_WindowBounded(t *testing.T) {
	history := make([]TrainingRecord, 0, InsightWindow+50)
	for i := 0; i < InsightWindow; i++ {
		history = append(history, TrainingRecord{UserRating: 5, PredictionAccuracy: AccuracyGood})
	}
	for i := 0; i < 50; i++ {
		history = append(history, TrainingRecord{UserRating: 1, PredictionAccuracy: AccuracyNeedsImprovement})
	}

	got := ComputeInsights(history)
	assert.Equal(t, InsightWindow, got.TotalFeedback)
	assert.InDelta(t, 5.0, got.AvgRating, 1e-9)
	assert.InDelta(t, 100.0, got.AccuracyTrends, 1e-9)
}
