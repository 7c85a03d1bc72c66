package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"groceryagent/intent"
	"groceryagent/resolver"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	// defaultModelID is the default model ID for Bedrock Claude.
	// It's an inference profile ID or ARN, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-5-haiku-20241022-v1:0"

	// An intent object is small; 256 tokens leaves room for a short preamble.
	defaultMaxTokens = 256

	// Low temperature keeps outputs deterministic, which is what structured extraction wants.
	defaultTemperature = 0.1

	defaultTopP = 0.9

	// toolName is the single tool the model is forced to call with the extracted intent.
	toolName = "record_intent"
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type LLMOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// LLMClient resolves intents with a Bedrock Converse model. The model is forced to call the
// record_intent tool whose input schema is the intent schema, so its tool input is the reply.
type LLMClient struct {
	brc  bedrockRuntimeClient
	opts LLMOptions
	tool types.Tool
}

func NewLLMClient(brc bedrockRuntimeClient, opts LLMOptions) (*LLMClient, error) {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}

	spec, err := buildToolSpec(toolName, "Record the grocery intent and entities extracted from the user input.", intent.Schema())
	if err != nil {
		return nil, err
	}

	return &LLMClient{
		brc:  brc,
		opts: opts,
		tool: &types.ToolMemberToolSpec{Value: spec},
	}, nil
}

func (c *LLMClient) Complete(ctx context.Context, text string) (string, error) {
	prompt := resolver.NewPrompt(text)
	slog.Info("LLM_CLIENT: Invoked", "backend", "bedrock", "model", c.opts.ModelID, "text_len", len(text))

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.opts.ModelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: prompt.System},
		},
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt.User}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
		ToolConfig: &types.ToolConfiguration{
			Tools: []types.Tool{c.tool},
			ToolChoice: &types.ToolChoiceMemberTool{
				Value: types.SpecificToolChoice{Name: aws.String(toolName)},
			},
		},
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock invoke failed", "error", err)
		return "", err
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Metrics != nil {
		attrs = append(attrs, "latency_ms", aws.ToInt64(out.Metrics.LatencyMs))
	}
	if out.Usage != nil {
		attrs = append(attrs, "input_tokens", aws.ToInt32(out.Usage.InputTokens), "output_tokens", aws.ToInt32(out.Usage.OutputTokens))
	}
	slog.Info("LLM_CLIENT: Bedrock invoke succeeded", attrs...)

	switch out.StopReason {
	case "max_tokens":
		return "", errors.New("model hit MaxTokens limit")
	case "guardrail_intervened", "content_filtered":
		return "", errors.New("model response blocked by Bedrock safety filters")
	}

	if input, ok, err := toolInputFromOutput(out); err != nil {
		return "", fmt.Errorf("failed to read %s input: %w", toolName, err)
	} else if ok {
		return input, nil
	}

	// The model answered in prose; hand the text to the resolver as is.
	return textFromOutput(out), nil
}

// buildToolSpec constructs a ToolSpecification for a tool.
func buildToolSpec(name, description string, schema *jsonschema.Schema) (types.ToolSpecification, error) {
	// Pre-marshal the schema to JSON to ensure it uses the custom MarshalJSON method
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return types.ToolSpecification{}, fmt.Errorf("failed to marshal tool schema for %s: %w", name, err)
	}

	// Parse it back to a map for the document system
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return types.ToolSpecification{}, fmt.Errorf("failed to unmarshal tool schema for %s: %w", name, err)
	}

	return types.ToolSpecification{
		Name:        aws.String(name),
		Description: aws.String(description),
		InputSchema: &types.ToolInputSchemaMemberJson{
			Value: document.NewLazyDocument(schemaMap),
		},
	}, nil
}

// toolInputFromOutput returns the JSON input of the first record_intent tool use.
func toolInputFromOutput(out *bedrockruntime.ConverseOutput) (string, bool, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return "", false, nil
	}

	for _, cb := range msg.Value.Content {
		tu, ok := cb.(*types.ContentBlockMemberToolUse)
		if !ok || tu == nil || aws.ToString(tu.Value.Name) != toolName || tu.Value.Input == nil {
			continue
		}

		var input map[string]any
		if err := tu.Value.Input.UnmarshalSmithyDocument(&input); err != nil {
			return "", false, err
		}
		b, err := json.Marshal(input)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}
	return "", false, nil
}

// textFromOutput joins the assistant's text blocks with '\n'.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	return strings.Join(texts, "\n")
}
