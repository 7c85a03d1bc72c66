// Command grocery runs the grocery assistant as an interactive chat or as an HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"groceryagent"
	"groceryagent/app"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	backend string
	debug   bool
	otel    bool
	turnLog bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:          "grocery",
		Short:        "A grocery list and pantry assistant",
		Long:         "grocery keeps a grocery list and a pantry in step from plain-language requests.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "model backend: mock, ollama, bedrock, gemini or none (overrides MODEL_BACKEND)")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "dump every resolved intent")
	root.PersistentFlags().BoolVar(&flags.otel, "otel", false, "export traces and metrics over OTLP")
	root.PersistentFlags().BoolVar(&flags.turnLog, "turn-log", false, "write a JSON log of every turn to ./logs")

	root.AddCommand(newChatCmd(&flags))
	root.AddCommand(newServeCmd(&flags))
	return root
}

// setup builds the assistant from the environment. The returned cleanup flushes the turn log,
// closes the app and shuts down OpenTelemetry.
func setup(ctx context.Context, flags *rootFlags) (*app.App, func() error, error) {
	var modelConfig groceryagent.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		return nil, nil, fmt.Errorf("failed to decode model config: %w", err)
	}
	var assistantConfig groceryagent.AssistantConfig
	if err := envdecode.Decode(&assistantConfig); err != nil {
		return nil, nil, fmt.Errorf("failed to decode assistant config: %w", err)
	}
	if flags.backend != "" {
		modelConfig.Backend = flags.backend
	}

	var cleanups []func() error
	cleanup := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}

	if flags.otel {
		_, _, otelShutdown, err := groceryagent.InitOtel(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
		cleanups = append(cleanups, func() error { return otelShutdown(context.Background()) })
	}

	var logger groceryagent.TurnLogger = groceryagent.NewNoOpTurnLogger()
	if flags.turnLog {
		fl, flush, err := newTurnLogger(modelConfig.Backend + "-" + modelConfig.ModelID)
		if err != nil {
			return nil, nil, errors.Join(err, cleanup())
		}
		logger = fl
		cleanups = append(cleanups, flush)
	}

	a, err := app.New(ctx, app.Opts{
		Model:     modelConfig,
		Assistant: assistantConfig,
		Logger:    logger,
		Debug:     flags.debug,
	})
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to build assistant: %w", err), cleanup())
	}
	cleanups = append(cleanups, a.Close)

	slog.Info("SETUP: Configuration loaded", "backend", modelConfig.Backend, "model_id", modelConfig.ModelID)
	return a, cleanup, nil
}

func newTurnLogger(model string) (groceryagent.TurnLogger, func() error, error) {
	logFilePath := groceryagent.NewTurnLogFilePath(model)
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := groceryagent.NewFileTurnLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
