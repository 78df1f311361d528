package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/di"
	"github.com/mikey/news-credibility/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	frontend ports.ArticleFrontend,
	service *core.CredibilityService,
	repo core.Repository,
) error {
	defer logger.Sync()
	defer repo.Close()

	ctx := context.Background()

	// Read article from file or stdin
	var reader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Error("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
			return err
		}
		defer file.Close()
		reader = file
		logger.Debug("Reading article from file", zap.String("file", flags.InputFile))
	} else {
		reader = os.Stdin
		logger.Debug("Reading article from stdin")
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		logger.Error("Failed to read article", zap.Error(err))
		return err
	}

	// Without a model flag the user's stored selection is used as is
	if flags.ModelSet {
		if err := service.SaveSettings(ctx, flags.Settings()); err != nil {
			logger.Error("Invalid model selection", zap.Error(err))
			return err
		}
	}

	_, err = frontend.ProcessArticle(ctx, flags.UserID, &analysis.ArticleInput{
		Title: flags.Title,
		Text:  string(text),
	})
	return err
}
