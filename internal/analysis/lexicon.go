package analysis

// Lexicon holds the fixed term lists the extractor matches against.
// Matching is a case-insensitive substring test and each entry counts at most once.
type Lexicon struct {
	EmotionalWords     []string
	SensationalPhrases []string
	// GrammarTokens are substrings that mark a token as a grammar issue.
	GrammarTokens []string
	// ShoutMarker marks a token as a grammar issue when it appears verbatim.
	ShoutMarker string
	DateWords   []string
	AuthorWords []string
	SourceWords []string
}

// AnalysisLexicon is the profile used when scoring an article.
func AnalysisLexicon() Lexicon {
	return Lexicon{
		EmotionalWords:     []string{"shocking", "unbelievable", "amazing", "terrible", "incredible"},
		SensationalPhrases: []string{"you won't believe", "shocking truth", "experts hate", "secret revealed"},
		GrammarTokens:      []string{"ur", "u"},
		ShoutMarker:        "!!!!",
		DateWords:          []string{"today", "yesterday"},
		AuthorWords:        []string{"author", "reporter"},
		SourceWords:        []string{"according to", "source"},
	}
}

// TrainingLexicon is the richer profile used when turning feedback into training data.
func TrainingLexicon() Lexicon {
	lex := AnalysisLexicon()
	lex.EmotionalWords = append(lex.EmotionalWords,
		"devastating", "outrageous", "fantastic", "horrible", "wonderful",
		"disgusting", "brilliant", "awful", "spectacular", "dreadful",
	)
	lex.SensationalPhrases = append(lex.SensationalPhrases,
		"doctors don't want", "this will change", "never seen before", "mind-blowing",
	)
	return lex
}
