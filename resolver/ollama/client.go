package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"groceryagent"
	"groceryagent/intent"
	"groceryagent/resolver"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const defaultModelID = "llama3.2"

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

// Client resolves intents with a local Ollama model through /api/chat.
type Client struct {
	endpoint   string
	model      string
	httpClient groceryagent.HTTPClient
	format     *jsonschema.Schema
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   groceryagent.HTTPClient
	Temperature  float32
	TopP         float32
	MaxTokens    int32
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.BaseEndpoint == "" {
		return nil, fmt.Errorf("missing Ollama endpoint")
	}
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		format:     intent.Schema(),
		options: options{
			Temperature:   float64(opts.Temperature),
			TopP:          float64(opts.TopP),
			RepeatPenalty: 1.05,
			NumCtx:        4096,
			NumPredict:    int(opts.MaxTokens),
		},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model    string             `json:"model"`
	Messages []message          `json:"messages"`
	Format   *jsonschema.Schema `json:"format,omitempty"`
	Stream   bool               `json:"stream"`
	Options  options            `json:"options,omitempty"`
}

type wireResponse struct {
	Message message `json:"message"`
	// other metadata omitted but available
}

// Complete sends the utterance with the intent instructions and returns the model's content
// verbatim. The reply is constrained to the intent JSON schema via Ollama's format field.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	prompt := resolver.NewPrompt(text)
	slog.Info("LLM_CLIENT: Invoked", "backend", "ollama", "model", c.model, "text_len", len(text))

	reqBytes, err := json.Marshal(wireRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Format:  c.format,
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		slog.Warn("LLM_CLIENT: decode failed, returning raw", "err", err, "body", string(body))
		return string(body), nil
	}

	return wr.Message.Content, nil
}
