package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"groceryagent/intent"
)

// LLMClient is a deterministic stand-in for a model, useful for demos and for watching the
// resolver's fallback path without network access. Utterances the pattern extractor
// recognises are answered the way a well-behaved model would, with the entities nested
// under "entities". Anything else gets a chatty prose reply with no JSON in it, which is
// what real models sometimes do.
type LLMClient struct {
	extractor *intent.Extractor
}

func NewLLMClient() *LLMClient {
	return &LLMClient{extractor: intent.NewExtractor()}
}

func (m *LLMClient) Complete(ctx context.Context, text string) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "backend", "mock", "text_len", len(text))

	if err := ctx.Err(); err != nil {
		return "", err
	}

	in := m.extractor.Extract(text)
	if in.Kind() == intent.KindUnknown {
		slog.Info("LLM_CLIENT: Returning prose reply")
		return fmt.Sprintf("I'm not sure how to help with %q, could you rephrase?", text), nil
	}

	b, err := json.Marshal(map[string]any{
		"intent":   in.Kind(),
		"entities": in,
	})
	if err != nil {
		return "", err
	}

	slog.Info("LLM_CLIENT: Returning intent", "intent", in.Kind())
	return string(b), nil
}
