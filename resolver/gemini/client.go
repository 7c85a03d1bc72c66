package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"groceryagent/resolver"

	"google.golang.org/genai"
)

const defaultModelID = "gemini-2.5-flash"

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type ClientOpts struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Client resolves intents with the Gemini API.
type Client struct {
	models generator
	model  string
	config *genai.GenerateContentConfig
}

// NewClient creates a Gemini API client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey string, opts ClientOpts) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newClient(gc.Models, opts), nil
}

func newClient(models generator, opts ClientOpts) *Client {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(resolver.Instructions, genai.RoleUser),
		ResponseMIMEType:  "text/plain",
		MaxOutputTokens:   opts.MaxTokens,
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.TopP > 0 {
		config.TopP = genai.Ptr(opts.TopP)
	}

	return &Client{models: models, model: opts.ModelID, config: config}
}

func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	prompt := resolver.NewPrompt(text)
	slog.Info("LLM_CLIENT: Invoked", "backend", "gemini", "model", c.model, "text_len", len(text))

	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromText(prompt.User, genai.RoleUser),
	}, c.config)
	if err != nil {
		slog.Error("LLM_CLIENT: Gemini generate failed", "error", err)
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	out := resp.Text()
	slog.Info("LLM_CLIENT: Gemini generate succeeded", "text_len", len(out))
	return out, nil
}
