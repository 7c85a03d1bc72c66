package main

import (
	"context"
	"log"
	"log/slog"

	"groceryagent"
	"groceryagent/app"
	"groceryagent/assistant"
	"groceryagent/reconcile"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joeshaw/envdecode"
)

type Params struct {
	Message string `json:"message"`
}

// handler keeps one assistant per Lambda container, so lists survive warm invocations.
type handler struct {
	assistant *assistant.Assistant
}

func (h *handler) handle(ctx context.Context, params Params) (reconcile.Outcome, error) {
	out, err := h.assistant.HandleUtterance(ctx, params.Message)
	if err != nil {
		slog.Error("RESULT: Error handling message", "error", err)
		return reconcile.Outcome{}, err
	}
	return out, nil
}

func main() {
	ctx := context.Background()

	var modelConfig groceryagent.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var assistantConfig groceryagent.AssistantConfig
	if err := envdecode.Decode(&assistantConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	// InitOtel registers the global providers the resolver and assistant pick up.
	_, _, otelShutdown, err := groceryagent.InitOtel(ctx)
	if err != nil {
		log.Fatalf("SETUP: Failed to initialize OpenTelemetry: %s", err)
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	a, err := app.New(ctx, app.Opts{
		Model:     modelConfig,
		Assistant: assistantConfig,
		Logger:    groceryagent.NewStdoutTurnLogger(),
	})
	if err != nil {
		log.Fatalf("SETUP: Failed to build assistant: %s", err)
	}
	defer a.Close()

	h := &handler{assistant: a.Assistant}
	lambda.Start(h.handle)
}
