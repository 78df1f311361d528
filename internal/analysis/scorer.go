package analysis

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	// fakeThreshold is the tally at which an article is classified fake
	fakeThreshold = 3
	// indicatorCount is the number of fake indicators evaluated
	indicatorCount = 6

	baseConfidence      = 70
	confidencePerFlag   = 5
	confidenceJitter    = 10
	minConfidence       = 55
	maxConfidence       = 95
	minExclamationMarks = 3
)

// RandomSource returns a value in [0,1). It drives the confidence jitter.
type RandomSource func() float64

// DefaultRandomSource uses the process-local generator
func DefaultRandomSource() RandomSource {
	return rand.Float64
}

// Classifier scores extracted features and produces a verdict
type Classifier struct {
	random RandomSource
}

// NewClassifier creates a classifier. A nil source falls back to DefaultRandomSource.
func NewClassifier(random RandomSource) *Classifier {
	if random == nil {
		random = DefaultRandomSource()
	}
	return &Classifier{random: random}
}

// FakeIndicatorTally counts the fake indicators that fire for fs, 0 to 6
func FakeIndicatorTally(fs FeatureSet) int {
	indicators := []bool{
		fs.EmotionalWordCount > 2,
		fs.SensationalPhraseCount > 0,
		fs.UppercaseRatio > 0.1,
		hasExclamationRun(fs),
		fs.WordCount < 50,
		fs.GrammarQuality < 70,
	}

	tally := 0
	for _, fired := range indicators {
		if fired {
			tally++
		}
	}
	return tally
}

// ConfidenceFor maps a tally and a jitter draw in [0,1) to a confidence in [55,95]
func ConfidenceFor(tally int, jitter float64) int {
	raw := float64(baseConfidence+tally*confidencePerFlag) + jitter*confidenceJitter
	return int(math.Round(min(maxConfidence, max(minConfidence, raw))))
}

// Classify produces the verdict for fs. Confidence includes random jitter, so two
// calls with the same features may differ by up to 10 points.
func (c *Classifier) Classify(fs FeatureSet) VerdictResult {
	tally := FakeIndicatorTally(fs)
	prediction := PredictionReal
	if tally >= fakeThreshold {
		prediction = PredictionFake
	}

	detail := DetailedAnalysis{
		ContentLanguage: contentSection(fs),
		Structural:      structuralSection(fs),
		Credibility:     credibilitySection(fs),
		Linguistic:      linguisticSection(fs),
	}

	structuralIssues := structuralFlags(fs)
	credibilityConcerns := credibilityFlags(fs)

	integrity := "Good"
	if len(structuralIssues) > 0 {
		integrity = "Issues detected"
	}
	sourcing := "Adequate"
	if len(credibilityConcerns) > 0 {
		sourcing = "Concerns"
	}

	return VerdictResult{
		Prediction:  prediction,
		Confidence:  ConfidenceFor(tally, c.random()),
		Explanation: explain(prediction, tally),
		KeyFactors: []string{
			fmt.Sprintf("Word count: %d", fs.WordCount),
			fmt.Sprintf("Emotional indicators: %d", fs.EmotionalWordCount),
			fmt.Sprintf("Grammar quality: %.1f%%", fs.GrammarQuality),
			fmt.Sprintf("Vocabulary complexity: %.1f%%", fs.VocabularyComplexity),
			fmt.Sprintf("Structural integrity: %s", integrity),
			fmt.Sprintf("Source credibility: %s", sourcing),
		},
		DetailedAnalysis: detail,
	}
}

func explain(prediction Prediction, tally int) string {
	if prediction == PredictionFake {
		return fmt.Sprintf("This article shows %d indicators commonly associated with misinformation, "+
			"including emotional language patterns, structural irregularities, and credibility concerns. "+
			"The analysis suggests caution when interpreting this content.", tally)
	}
	return fmt.Sprintf("This article demonstrates %d positive credibility indicators, including balanced "+
		"language, proper structure, and journalistic standards. The content appears to follow established "+
		"news reporting practices.", indicatorCount-tally)
}

func hasExclamationRun(fs FeatureSet) bool {
	return fs.HasExclamation && fs.ExclamationCount >= minExclamationMarks
}

func withPlaceholder(flags []string, placeholder string) []string {
	if len(flags) == 0 {
		return []string{placeholder}
	}
	return flags
}

func boolScore(cond bool, yes, no float64) float64 {
	if cond {
		return yes
	}
	return no
}

func contentSection(fs FeatureSet) DetailSection {
	var flags []string
	if fs.EmotionalWordCount > 2 {
		flags = append(flags, "High emotional language detected")
	}
	if fs.SensationalPhraseCount > 0 {
		flags = append(flags, "Sensational phrases found")
	}
	if fs.UppercaseRatio > 0.05 {
		flags = append(flags, "Excessive capitalization")
	}

	emotional := float64(fs.EmotionalWordCount)
	sensational := float64(fs.SensationalPhraseCount)
	return DetailSection{
		Flags: withPlaceholder(flags, "No significant content issues detected"),
		Metrics: map[string]float64{
			"emotionalLanguage": emotional * 10,
			"sensationalWords":  sensational * 20,
			"biasIndicators":    min(100, fs.UppercaseRatio*500),
			"factualClaims":     max(0, 100-emotional*15),
			"sourcesMentioned":  boolScore(fs.HasQuotes, 70, 20),
			"clickbaitScore":    (emotional + sensational) * 15,
		},
	}
}

func structuralFlags(fs FeatureSet) []string {
	var flags []string
	if hasExclamationRun(fs) {
		flags = append(flags, "Multiple exclamation marks")
	}
	if fs.WordCount < 100 {
		flags = append(flags, "Unusually short article")
	}
	return flags
}

func structuralSection(fs FeatureSet) DetailSection {
	headline := 80.0
	if fs.HasTitle {
		headline = max(0, 100-float64(fs.TitleExclamationCount)*20)
	}
	return DetailSection{
		Flags: withPlaceholder(structuralFlags(fs), "Proper article structure maintained"),
		Metrics: map[string]float64{
			"headlineCredibility": headline,
			"paragraphStructure":  boolScore(fs.WordCount > 200, 85, 60),
			"quotationUsage":      boolScore(fs.HasQuotes, 80, 40),
			"dateReferences":      boolScore(fs.HasDateReference, 70, 50),
		},
	}
}

func credibilityFlags(fs FeatureSet) []string {
	if !fs.HasQuotes {
		return []string{"No quoted sources"}
	}
	return nil
}

func credibilitySection(fs FeatureSet) DetailSection {
	return DetailSection{
		Flags: withPlaceholder(credibilityFlags(fs), "Standard credibility markers present"),
		Metrics: map[string]float64{
			"authorCredibility":      boolScore(fs.HasAuthorReference, 75, 45),
			"publicationCredibility": 65,
			"factCheckability":       boolScore(fs.HasQuotes, 75, 50),
			"crossReferences":        boolScore(fs.HasSourceReference, 70, 40),
		},
	}
}

func linguisticSection(fs FeatureSet) DetailSection {
	var flags []string
	if fs.GrammarQuality < 80 {
		flags = append(flags, "Grammar issues detected")
	}
	if fs.VocabularyComplexity < 15 {
		flags = append(flags, "Simple vocabulary usage")
	}
	if fs.AverageWordsPerSentence < 10 {
		flags = append(flags, "Very short sentences")
	}

	emotional := float64(fs.EmotionalWordCount)
	sensational := float64(fs.SensationalPhraseCount)
	return DetailSection{
		Flags: withPlaceholder(flags, "Linguistic patterns within normal range"),
		Metrics: map[string]float64{
			"grammarQuality":       fs.GrammarQuality,
			"vocabularyComplexity": fs.VocabularyComplexity,
			"sentimentConsistency": max(50, 100-emotional*10),
			"writingStyle":         boolScore(fs.AverageWordsPerSentence > 8, 80, 60),
			"persuasionTechniques": (emotional + sensational) * 12,
			"logicalCoherence":     boolScore(fs.SentenceCount > 5, 75, 55),
		},
	}
}
