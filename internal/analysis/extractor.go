package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// complexWordLength is the rune length above which a word counts as complex
const complexWordLength = 8

var sentenceSplitter = regexp.MustCompile(`[.!?]+`)

// Extractor turns raw text into numeric features using one lexicon profile.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	lexicon Lexicon
}

// NewExtractor creates an extractor for the given lexicon profile
func NewExtractor(lexicon Lexicon) *Extractor {
	return &Extractor{lexicon: lexicon}
}

// Extract computes the analysis profile for an article. The caller is expected to
// reject blank text first; blank text still yields a zero-valued, finite result.
func (e *Extractor) Extract(text, title string) FeatureSet {
	words := strings.Fields(text)
	lower := foldCase(text)

	fs := FeatureSet{
		WordCount:        len(words),
		SentenceCount:    countSentences(text),
		HasExclamation:   strings.Contains(text, "!"),
		HasQuestion:      strings.Contains(text, "?"),
		HasQuotes:        strings.ContainsAny(text, `"'`),
		UppercaseRatio:   safeDiv(float64(countUppercase(text)), float64(utf8.RuneCountInString(text))),
		ExclamationCount: strings.Count(text, "!"),

		EmotionalWordCount:     countMatches(lower, e.lexicon.EmotionalWords),
		SensationalPhraseCount: countMatches(lower, e.lexicon.SensationalPhrases),
		HasDateReference:       countMatches(lower, e.lexicon.DateWords) > 0,
		HasAuthorReference:     countMatches(lower, e.lexicon.AuthorWords) > 0,
		HasSourceReference:     countMatches(lower, e.lexicon.SourceWords) > 0,

		HasTitle:              title != "",
		TitleExclamationCount: strings.Count(title, "!"),
	}

	fs.AverageWordsPerSentence = safeDiv(float64(fs.WordCount), float64(fs.SentenceCount))
	fs.ComplexWordCount = countComplexWords(words)
	fs.VocabularyComplexity = safeDiv(float64(fs.ComplexWordCount), float64(fs.WordCount)) * 100
	fs.GrammarIssueCount = e.countGrammarIssues(words)
	fs.GrammarQuality = max(0, 100-safeDiv(float64(fs.GrammarIssueCount), float64(fs.WordCount))*100)

	return fs
}

// ExtractTextFeatures computes the training profile for a feedback event
func (e *Extractor) ExtractTextFeatures(text string) TextFeatures {
	fs := e.Extract(text, "")
	words := strings.Fields(text)

	totalLength := 0
	for _, w := range words {
		totalLength += utf8.RuneCountInString(w)
	}

	tf := TextFeatures{
		FeatureSet:      fs,
		AvgWordLength:   safeDiv(float64(totalLength), float64(len(words))),
		QuestionCount:   strings.Count(text, "?"),
		NumericCount:    countDigits(text),
		ComplexityScore: fs.VocabularyComplexity,
	}

	// Not clamped: sentences longer than 65 words push this below zero.
	tf.ReadabilityScore = 100 - (fs.AverageWordsPerSentence-15)*2
	if fs.SentenceCount == 0 {
		tf.ReadabilityScore = 0
	}

	return tf
}

// countGrammarIssues flags tokens containing any grammar token substring or the shout marker.
// This matches ordinary words containing "u" as well; kept for compatibility with stored results.
func (e *Extractor) countGrammarIssues(words []string) int {
	caser := cases.Lower(language.Und)
	issues := 0
	for _, w := range words {
		lw := caser.String(w)
		hit := e.lexicon.ShoutMarker != "" && strings.Contains(w, e.lexicon.ShoutMarker)
		for _, tok := range e.lexicon.GrammarTokens {
			if hit {
				break
			}
			hit = strings.Contains(lw, tok)
		}
		if hit {
			issues++
		}
	}
	return issues
}

func foldCase(s string) string {
	return cases.Lower(language.Und).String(s)
}

// countMatches counts distinct terms present as substrings; no word-boundary anchoring
func countMatches(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

func countSentences(text string) int {
	n := 0
	for _, s := range sentenceSplitter.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

func countUppercase(text string) int {
	n := 0
	for i := 0; i < len(text); i++ {
		if text[i] >= 'A' && text[i] <= 'Z' {
			n++
		}
	}
	return n
}

func countDigits(text string) int {
	n := 0
	for i := 0; i < len(text); i++ {
		if text[i] >= '0' && text[i] <= '9' {
			n++
		}
	}
	return n
}

func countComplexWords(words []string) int {
	n := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) > complexWordLength {
			n++
		}
	}
	return n
}
