// Package assistant is the entry point for a single chat turn: it resolves the utterance,
// applies the intent and records what happened.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"groceryagent"
	"groceryagent/reconcile"
	"groceryagent/resolver"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrEmptyUtterance = errors.New("empty message")

type intentResolver interface {
	Resolve(ctx context.Context, text string) resolver.Resolution
}

type Opts struct {
	Resolver *resolver.Resolver
	Engine   *reconcile.Engine
	Logger   groceryagent.TurnLogger
	Tracer   trace.Tracer
	// Debug dumps every resolution to stdout.
	Debug bool
}

type Assistant struct {
	resolver intentResolver
	engine   *reconcile.Engine
	logger   groceryagent.TurnLogger
	tracer   trace.Tracer
	debug    bool

	mu   sync.Mutex
	turn int
}

func New(opts Opts) *Assistant {
	if opts.Logger == nil {
		opts.Logger = groceryagent.NewNoOpTurnLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(groceryagent.TracerName)
	}
	if opts.Resolver == nil {
		opts.Resolver = resolver.New(resolver.Opts{})
	}
	if opts.Engine == nil {
		opts.Engine = reconcile.New(reconcile.Opts{})
	}
	return &Assistant{
		resolver: opts.Resolver,
		engine:   opts.Engine,
		logger:   opts.Logger,
		tracer:   opts.Tracer,
		debug:    opts.Debug,
	}
}

// HandleUtterance resolves text to an intent and applies it. The only error is
// ErrEmptyUtterance; everything else is reported through the outcome text.
func (a *Assistant) HandleUtterance(ctx context.Context, text string) (reconcile.Outcome, error) {
	ctx, span := a.tracer.Start(ctx, "Assistant.HandleUtterance")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		span.SetStatus(codes.Error, ErrEmptyUtterance.Error())
		return reconcile.Outcome{}, ErrEmptyUtterance
	}

	res := a.resolver.Resolve(ctx, text)
	if a.debug {
		groceryagent.Dump(res)
	}

	out := a.engine.Apply(ctx, res.Intent)

	span.SetAttributes(
		attribute.String("intent", string(out.Intent)),
		attribute.String("source", string(res.Source)),
		attribute.Bool("done", out.Done),
	)
	slog.Info("ASSISTANT: Handled utterance", "intent", out.Intent, "source", res.Source, "text_len", len(text))

	a.logTurn(groceryagent.TurnLog{
		Timestamp:   time.Now(),
		Utterance:   text,
		LLMOutput:   res.Reply,
		Source:      string(res.Source),
		Intent:      string(out.Intent),
		Fallback:    res.Reason,
		Response:    out.Text,
		GroceryList: len(a.engine.GroceryList()),
		Pantry:      len(a.engine.Pantry()),
	})
	return out, nil
}

// Engine exposes the underlying engine for read-only views and direct list edits.
func (a *Assistant) Engine() *reconcile.Engine { return a.engine }

func (a *Assistant) logTurn(turn groceryagent.TurnLog) {
	a.mu.Lock()
	a.turn++
	turn.Turn = a.turn
	a.mu.Unlock()

	if err := a.logger.LogTurn(turn); err != nil {
		slog.Error("ASSISTANT: Failed to log turn", "error", err, "turn", turn.Turn)
	}
}
