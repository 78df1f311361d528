package di

import (
	"flag"
	"os"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/news-credibility/internal/config"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/logging"
	"github.com/mikey/news-credibility/internal/ratelimit"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Article flags
	InputFile string
	Title     string
	UserID    string

	// Model flags
	ModelType        string
	TransformerModel string
	CustomEndpoint   string
	Latency          time.Duration
	// ModelSet reports whether any of the model selection flags was given
	ModelSet bool

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	return ParseFlagSet(flag.CommandLine, nil)
}

// ParseFlagSet registers the CLI flags on fs and parses args. A nil args
// slice parses the process arguments.
func ParseFlagSet(fs *flag.FlagSet, args []string) *CLIFlags {
	flags := &CLIFlags{}

	// Article flags
	fs.StringVar(&flags.InputFile, "file", "", "Input article file (use stdin if not specified)")
	fs.StringVar(&flags.Title, "title", "", "Article title")
	fs.StringVar(&flags.UserID, "user", "cli", "User id the analysis is recorded under")

	// Model flags
	fs.StringVar(&flags.ModelType, "model", string(core.ModelBuiltIn), "Model type (built-in, transformers, custom)")
	fs.StringVar(&flags.TransformerModel, "transformer-model", "Xenova/distilbert-base-uncased-finetuned-sst-2-english", "Transformer model name")
	fs.StringVar(&flags.CustomEndpoint, "endpoint", "", "Custom model API endpoint")
	fs.DurationVar(&flags.Latency, "latency", 0, "Simulated latency for transformers and custom models")

	// Output flags
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if args == nil {
		args = os.Args[1:]
	}
	fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model", "transformer-model", "endpoint":
			flags.ModelSet = true
		}
	})
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			cfg.GetViper().Set("server.frontend", "cli")
			cfg.GetViper().Set("cli.verbose", flags.Verbose)
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// No rate limiting for the CLI
	if err := container.Provide(func() *ratelimit.Limiter { return nil }); err != nil {
		return nil, err
	}

	if err := provideFrontend(container); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.frontend", "cli")
	v.Set("cli.verbose", flags.Verbose)

	// A single run needs neither persistence nor caching
	v.Set("store.type", "memory")
	v.Set("cache.enabled", false)
	v.Set("ratelimit.enabled", false)

	if flags.Latency > 0 {
		v.Set("models.transformers_latency", flags.Latency.String())
		v.Set("models.custom_latency", flags.Latency.String())
	}

	return config.NewFromViper(v)
}

// Settings returns the user settings selected by the model flags
func (f *CLIFlags) Settings() *core.UserSettings {
	return &core.UserSettings{
		UserID:           f.UserID,
		AIModelType:      core.ModelType(f.ModelType),
		TransformerModel: f.TransformerModel,
		CustomEndpoint:   f.CustomEndpoint,
	}
}
