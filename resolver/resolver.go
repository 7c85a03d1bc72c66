package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"groceryagent"
	"groceryagent/intent"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient sends one utterance to a language model and returns its raw reply.
type LLMClient interface {
	Complete(ctx context.Context, text string) (string, error)
}

type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Reasons recorded when the deterministic extractor is used instead of the model.
const (
	ReasonNoModel         = "no_model"
	ReasonModelError      = "model_error"
	ReasonTimeout         = "timeout"
	ReasonNoJSON          = "no_json"
	ReasonBadJSON         = "bad_json"
	ReasonInvalidEntities = "invalid_entities"
)

// Resolution is the intent chosen for an utterance and how it was obtained.
type Resolution struct {
	Intent intent.Intent
	Source Source
	// Reason is set when Source is SourceFallback.
	Reason string
	// Reply is the raw model output, if any.
	Reply string
}

type Opts struct {
	LLM LLMClient
	// Timeout bounds a single model call; zero means no extra bound.
	Timeout time.Duration
	Tracer  trace.Tracer
	Meter   metric.Meter
}

// Resolver turns free text into an Intent, asking the model first and falling back to the
// pattern extractor whenever the model is missing, fails, or replies with something unusable.
type Resolver struct {
	llm       LLMClient
	extractor *intent.Extractor
	timeout   time.Duration
	tracer    trace.Tracer

	resolutions metric.Int64Counter
	fallbacks   metric.Int64Counter
	llmLatency  metric.Float64Histogram
}

func New(opts Opts) *Resolver {
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(groceryagent.TracerName)
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter(groceryagent.MeterName)
	}

	resolutions, _ := opts.Meter.Int64Counter("intent_resolutions_total",
		metric.WithDescription("Total number of resolved utterances by source and intent"))
	fallbacks, _ := opts.Meter.Int64Counter("intent_fallbacks_total",
		metric.WithDescription("Total number of times the pattern extractor replaced the model"))
	llmLatency, _ := opts.Meter.Float64Histogram("llm_response_time_seconds",
		metric.WithDescription("Time taken to receive response from LLM in seconds"))

	return &Resolver{
		llm:         opts.LLM,
		extractor:   intent.NewExtractor(),
		timeout:     opts.Timeout,
		tracer:      opts.Tracer,
		resolutions: resolutions,
		fallbacks:   fallbacks,
		llmLatency:  llmLatency,
	}
}

// Resolve never fails: any problem with the model is logged and answered by the extractor.
func (r *Resolver) Resolve(ctx context.Context, text string) Resolution {
	ctx, span := r.tracer.Start(ctx, "Resolver.Resolve")
	defer span.End()

	res := r.resolve(ctx, text)

	attrs := []attribute.KeyValue{
		attribute.String("source", string(res.Source)),
		attribute.String("intent", string(res.Intent.Kind())),
	}
	r.resolutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	if res.Source == SourceFallback {
		r.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", res.Reason)))
		attrs = append(attrs, attribute.String("fallback_reason", res.Reason))
	}
	span.SetAttributes(attrs...)

	slog.Info("RESOLVER: Resolved", "source", res.Source, "intent", res.Intent.Kind(), "reason", res.Reason)
	return res
}

func (r *Resolver) resolve(ctx context.Context, text string) Resolution {
	if r.llm == nil {
		return r.fallback(text, ReasonNoModel, "")
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := r.llm.Complete(callCtx, text)
	r.llmLatency.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		reason := ReasonModelError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		trace.SpanFromContext(ctx).SetStatus(codes.Error, "LLM call failed")
		trace.SpanFromContext(ctx).RecordError(err)
		slog.Warn("RESOLVER: Model call failed, using pattern extractor", "error", err, "reason", reason)
		return r.fallback(text, reason, "")
	}

	fields, err := ParseReply(reply)
	if err != nil {
		reason := ReasonBadJSON
		if errors.Is(err, ErrNoJSON) {
			reason = ReasonNoJSON
		}
		slog.Warn("RESOLVER: Could not parse model reply, using pattern extractor", "error", err, "reply_len", len(reply))
		return r.fallback(text, reason, reply)
	}

	in, err := intent.FromFields(fields)
	if err != nil {
		slog.Warn("RESOLVER: Model entities rejected, using pattern extractor", "error", err)
		return r.fallback(text, ReasonInvalidEntities, reply)
	}

	return Resolution{Intent: in, Source: SourceLLM, Reply: reply}
}

func (r *Resolver) fallback(text, reason, reply string) Resolution {
	return Resolution{
		Intent: r.extractor.Extract(text),
		Source: SourceFallback,
		Reason: reason,
		Reply:  reply,
	}
}
