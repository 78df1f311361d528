package frontend

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
	"go.uber.org/zap"
)

const previewChars = 500

// CliFrontend prints verdicts for articles given on the command line
type CliFrontend struct {
	service *core.CredibilityService
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewCliFrontend creates a new CLI frontend writing to out
func NewCliFrontend(service *core.CredibilityService, logger *zap.Logger, out io.Writer, verbose bool) *CliFrontend {
	return &CliFrontend{
		service: service,
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// ProcessArticle analyzes an article and displays the results
func (f *CliFrontend) ProcessArticle(ctx context.Context, userID string, article *analysis.ArticleInput) (*core.AnalysisOutcome, error) {
	f.logger.Debug("Processing article", zap.String("user_id", userID))

	fmt.Fprintf(f.out, "\n=== Article Summary ===\n")
	if article.Title != "" {
		fmt.Fprintf(f.out, "Title: %s\n", article.Title)
	}
	fmt.Fprintf(f.out, "Length: %d characters, %d words\n",
		utf8.RuneCountInString(article.Text), len(strings.Fields(article.Text)))

	if f.verbose {
		preview := article.Text
		if utf8.RuneCountInString(preview) > previewChars {
			preview = string([]rune(preview)[:previewChars]) + "..."
		}
		fmt.Fprintf(f.out, "\nText preview:\n%s\n", preview)
	}

	fmt.Fprintf(f.out, "\n=== Analysis ===\n")
	startTime := time.Now()
	outcome, err := f.service.Analyze(ctx, userID, article)
	if err != nil {
		f.logger.Error("Failed to analyze article", zap.Error(err))
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	v := outcome.Verdict
	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Prediction: %s\n", strings.ToUpper(string(v.Prediction)))
	fmt.Fprintf(f.out, "Confidence: %d%%\n", v.Confidence)
	fmt.Fprintf(f.out, "Explanation: %s\n", v.Explanation)
	fmt.Fprintf(f.out, "Model used: %s\n", outcome.Model.Name)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	fmt.Fprintf(f.out, "\nKey factors:\n")
	for _, factor := range v.KeyFactors {
		fmt.Fprintf(f.out, "  - %s\n", factor)
	}

	if f.verbose {
		printSection(f.out, "Content & language", v.DetailedAnalysis.ContentLanguage)
		printSection(f.out, "Structure", v.DetailedAnalysis.Structural)
		printSection(f.out, "Credibility", v.DetailedAnalysis.Credibility)
		printSection(f.out, "Linguistics", v.DetailedAnalysis.Linguistic)
	}

	return outcome, nil
}

func printSection(out io.Writer, name string, section analysis.DetailSection) {
	fmt.Fprintf(out, "\n%s:\n", name)
	for _, flag := range section.Flags {
		fmt.Fprintf(out, "  ! %s\n", flag)
	}
	for _, key := range slices.Sorted(maps.Keys(section.Metrics)) {
		fmt.Fprintf(out, "  %s: %.1f\n", key, section.Metrics[key])
	}
}

// Start is a no-op for the CLI frontend
func (f *CliFrontend) Start() error {
	return nil
}

// Stop is a no-op for the CLI frontend
func (f *CliFrontend) Stop() error {
	return nil
}
