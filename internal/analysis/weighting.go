package analysis

import (
	"math"
	"unicode/utf8"
)

const (
	minTrainingWeight = 0.1
	maxTrainingWeight = 3.0

	detailedFeedbackChars = 20
	detailedFeedbackBonus = 0.5
	extremeRatingBonus    = 0.3

	// InsightWindow bounds how many recent records ComputeInsights aggregates
	InsightWindow = 100

	highConfidenceThreshold = 80
	goodRatingThreshold     = 4
)

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeConfidence clamps to [0,100] and rounds to 2 decimals so float drift
// cannot move a value across a weighting threshold
func NormalizeConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return round2(min(100, max(0, c)))
}

func isExtremeRating(rating int) bool {
	return rating == 1 || rating == 5
}

// ComputeWeight returns the training weight for a feedback event, in [0.1, 3.0].
// Ratings the model's confidence agreed with weigh more; detailed comments and
// extreme ratings add a bonus.
func ComputeWeight(fb FeedbackRecord) float64 {
	ratingScore := float64(fb.UserRating) / 5
	confidenceScore := NormalizeConfidence(fb.ConfidenceScore) / 100

	confidenceAccuracy := math.Abs(confidenceScore - ratingScore)
	baseWeight := max(minTrainingWeight, 2-confidenceAccuracy)

	bonus := 0.0
	if utf8.RuneCountInString(fb.UserFeedback) > detailedFeedbackChars {
		bonus += detailedFeedbackBonus
	}
	if isExtremeRating(fb.UserRating) {
		bonus += extremeRatingBonus
	}

	return min(maxTrainingWeight, baseWeight+bonus)
}

// ClassifyPattern derives the training insight for a feedback event.
// Confidence is divided by 20 so it lands on the same 0-5 axis as the rating.
func ClassifyPattern(fb FeedbackRecord, tf TextFeatures) TrainingInsight {
	pattern := NegativeExample
	if fb.UserRating >= goodRatingThreshold {
		pattern = PositiveExample
	}
	priority := PriorityMedium
	if isExtremeRating(fb.UserRating) {
		priority = PriorityHigh
	}

	return TrainingInsight{
		PatternType:        pattern,
		ConfidenceAccuracy: math.Abs(NormalizeConfidence(fb.ConfidenceScore)/20 - float64(fb.UserRating)),
		TextComplexity:     tf.ComplexityScore,
		EmotionalIntensity: tf.EmotionalWordCount + tf.SensationalPhraseCount,
		StructuralQuality:  tf.AverageWordsPerSentence > 10 && tf.AverageWordsPerSentence < 25,
		TrainingPriority:   priority,
	}
}

// ComputeInsights aggregates the newest InsightWindow records of history, which
// must be ordered newest first. An empty history yields a zero result.
func ComputeInsights(history []TrainingRecord) Insights {
	if len(history) > InsightWindow {
		history = history[:InsightWindow]
	}
	if len(history) == 0 {
		return Insights{}
	}

	var ratingSum, good, highConfidence int
	for _, r := range history {
		ratingSum += r.UserRating
		if r.PredictionAccuracy == AccuracyGood {
			good++
		}
		if r.ConfidenceScore > highConfidenceThreshold && r.UserRating >= goodRatingThreshold {
			highConfidence++
		}
	}

	n := float64(len(history))
	return Insights{
		TotalFeedback:          len(history),
		AvgRating:              float64(ratingSum) / n,
		AccuracyTrends:         float64(good) / n * 100,
		HighConfidenceAccuracy: float64(highConfidence) / n * 100,
	}
}
