package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/ollamakit/config"
	"github.com/randalmurphal/ollamakit/generate"
	"github.com/randalmurphal/ollamakit/jsonl"
)

// app carries state shared by all subcommands.
type app struct {
	configPath   string
	envFile      string
	host         string
	logLevel     string
	otlpEndpoint string
	timeout      time.Duration

	settings config.Settings
	logger   *slog.Logger
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ollamakit",
		Short: "Send prompts to a local text-generation server",
		Long: `ollamakit sends a prompt to a local text-generation server (Ollama's
/api/generate) and prints the generated text, either buffered, as a single
non-streamed response, or token by token as it arrives.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (.toml, .yaml or .yml)")
	flags.StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "env file to load if present")
	flags.StringVar(&a.host, "host", "", "generation server address (default http://localhost:11434)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.otlpEndpoint, "otlp-endpoint", "", "export traces to this OTLP/HTTP endpoint")
	flags.DurationVar(&a.timeout, "timeout", 0, "bound each generation (0 means none)")

	root.AddCommand(
		newBufferedCmd(a),
		newSingleCmd(a),
		newStreamCmd(a),
		newCompleteCmd(a),
		newTailCmd(a),
	)
	return root
}

// setup resolves settings, then installs logging and tracing.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		settings.Host = a.host
	}
	if flags.Changed("log-level") {
		settings.LogLevel = a.logLevel
	}
	if flags.Changed("otlp-endpoint") {
		settings.OTLPEndpoint = a.otlpEndpoint
	}
	if flags.Changed("timeout") {
		settings.Timeout = a.timeout
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	a.settings = settings

	level, _ := settings.Level()
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(a.logger)

	if settings.OTLPEndpoint != "" {
		shutdown, err := setupTracing(cmd.Context(), settings.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("set up tracing: %w", err)
		}
		a.shutdown = shutdown
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	if a.shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("trace export shutdown failed", slog.Any("error", err))
	}
	return nil
}

// newClient builds a generation client. When record (or the configured
// transcript) names a file, decoded chunks are appended to it and the
// returned close function must be called.
func (a *app) newClient(record string) (*generate.Client, func() error, error) {
	cfg := a.settings.ClientConfig()
	cfg.Logger = a.logger

	if record == "" {
		record = a.settings.Transcript
	}
	if record == "" {
		return generate.NewClientWithConfig(cfg), func() error { return nil }, nil
	}

	w, err := jsonl.Create(record)
	if err != nil {
		return nil, nil, err
	}
	cfg.Recorder = w
	a.logger.Debug("recording transcript", slog.String("path", w.Path()))
	return generate.NewClientWithConfig(cfg), w.Close, nil
}
