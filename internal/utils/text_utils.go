package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TruncationSuffix is appended to text cut by TruncateText
const TruncationSuffix = "..."

// TextProcessor prepares article text for storage
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText keeps the first maxChars characters and appends TruncationSuffix
// when anything was cut. A non-positive maxChars disables truncation.
func (tp *TextProcessor) TruncateText(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	cut := 0
	for i := range text {
		if cut == maxChars {
			text = text[:i]
			break
		}
		cut++
	}

	tp.logger.Debug("Text truncated",
		zap.Int("max_chars", maxChars),
		zap.Int("truncated_size", len(text)))

	return text + TruncationSuffix
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// ProcessText sanitizes and then truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxChars int) string {
	return tp.TruncateText(tp.SanitizeUTF8(text), maxChars)
}

// Fold lower-cases text for case-insensitive search
func Fold(text string) string {
	return cases.Lower(language.Und).String(text)
}

// ContainsFold reports whether substr occurs in text ignoring case. An empty
// substr always matches.
func ContainsFold(text, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(Fold(text), Fold(substr))
}
