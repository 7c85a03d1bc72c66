// Package app composes the assistant from configuration: the model backend, recipe sources,
// list sinks and turn logging.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"groceryagent"
	"groceryagent/assistant"
	"groceryagent/reconcile"
	"groceryagent/recipes"
	"groceryagent/resolver"
	"groceryagent/resolver/bedrock"
	"groceryagent/resolver/gemini"
	"groceryagent/resolver/mock"
	"groceryagent/resolver/ollama"
	"groceryagent/slack"
	"groceryagent/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	BackendMock    = "mock"
	BackendOllama  = "ollama"
	BackendBedrock = "bedrock"
	BackendGemini  = "gemini"
	// BackendNone resolves every utterance with the pattern extractor.
	BackendNone = "none"
)

type Opts struct {
	Model     groceryagent.ModelConfig
	Assistant groceryagent.AssistantConfig
	Logger    groceryagent.TurnLogger
	Debug     bool

	// HTTPClient is used for Ollama, Spoonacular and Slack. Defaults to http.DefaultClient.
	HTTPClient groceryagent.HTTPClient
	// LoadAWSConfig is called at most once, only when a component needs AWS.
	LoadAWSConfig func(ctx context.Context) (aws.Config, error)
}

// App owns an assistant and the resources opened to build it.
type App struct {
	Assistant *assistant.Assistant
	// Book is the local recipe book, nil when none is configured.
	Book *recipes.Book
	// SavedLists is the SQLite sink, nil unless "sqlite" is a save backend.
	SavedLists *storage.SQLiteListSink
	ListenAddr string
	closers    []func() error
}

func New(ctx context.Context, opts Opts) (*App, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.LoadAWSConfig == nil {
		opts.LoadAWSConfig = func(ctx context.Context) (aws.Config, error) {
			return config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		}
	}

	b := &builder{opts: opts}
	a, err := b.build(ctx)
	if err != nil {
		return nil, errors.Join(err, b.close())
	}
	return a, nil
}

// Close releases resources such as the SQLite handle.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

type builder struct {
	opts    Opts
	aws     *aws.Config
	book    *recipes.Book
	saved   *storage.SQLiteListSink
	closers []func() error
}

func (b *builder) build(ctx context.Context) (*App, error) {
	llm, err := b.llm(ctx)
	if err != nil {
		return nil, err
	}

	var images reconcile.ImageLookup
	var spoon *recipes.Spoonacular
	if key := b.opts.Assistant.SpoonacularAPIKey; key != "" {
		spoon = recipes.NewSpoonacular(recipes.SpoonacularOpts{
			BaseURL:    b.opts.Assistant.SpoonacularBaseURL,
			APIKey:     key,
			HTTPClient: b.opts.HTTPClient,
		})
		images = spoon
	}

	finder, err := b.recipes(ctx, spoon)
	if err != nil {
		return nil, err
	}

	sink, err := b.sink(ctx)
	if err != nil {
		return nil, err
	}

	engine := reconcile.New(reconcile.Opts{
		Recipes:  finder,
		Images:   images,
		Sink:     sink,
		SaveName: b.opts.Assistant.SaveName,
	})
	res := resolver.New(resolver.Opts{
		LLM:     llm,
		Timeout: b.opts.Model.Timeout,
	})

	slog.Info("SETUP: Assistant ready", "backend", b.opts.Model.Backend, "save_backends", b.opts.Assistant.SaveBackends)
	return &App{
		Assistant: assistant.New(assistant.Opts{
			Resolver: res,
			Engine:   engine,
			Logger:   b.opts.Logger,
			Debug:    b.opts.Debug,
		}),
		Book:       b.book,
		SavedLists: b.saved,
		ListenAddr: b.opts.Assistant.ListenAddr,
		closers:    b.closers,
	}, nil
}

func (b *builder) close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (b *builder) awsConfig(ctx context.Context) (aws.Config, error) {
	if b.aws != nil {
		return *b.aws, nil
	}
	cfg, err := b.opts.LoadAWSConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	b.aws = &cfg
	return cfg, nil
}

func (b *builder) llm(ctx context.Context) (resolver.LLMClient, error) {
	m := b.opts.Model
	switch strings.ToLower(strings.TrimSpace(m.Backend)) {
	case BackendMock, "":
		return mock.NewLLMClient(), nil
	case BackendNone:
		return nil, nil
	case BackendOllama:
		return ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: b.opts.Assistant.BaseOllamaEndpoint,
			ModelID:      m.ModelID,
			HTTPClient:   b.opts.HTTPClient,
			Temperature:  m.Temperature,
			TopP:         m.TopP,
			MaxTokens:    m.MaxTokens,
		})
	case BackendBedrock:
		cfg, err := b.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return bedrock.NewLLMClient(bedrockruntime.NewFromConfig(cfg), bedrock.LLMOptions{
			ModelID:     m.ModelID,
			MaxTokens:   m.MaxTokens,
			Temperature: m.Temperature,
			TopP:        m.TopP,
		})
	case BackendGemini:
		return gemini.NewClient(ctx, b.opts.Assistant.GeminiAPIKey, gemini.ClientOpts{
			ModelID:     m.ModelID,
			MaxTokens:   m.MaxTokens,
			Temperature: m.Temperature,
			TopP:        m.TopP,
		})
	default:
		return nil, fmt.Errorf("unknown model backend %q", m.Backend)
	}
}

func (b *builder) recipes(ctx context.Context, spoon *recipes.Spoonacular) (reconcile.RecipeLookup, error) {
	cfg := b.opts.Assistant

	var chain recipes.Chain
	if spoon != nil {
		chain = append(chain, spoon)
	}

	switch {
	case cfg.RecipesS3Key != "":
		if cfg.S3Bucket == "" {
			return nil, errors.New("RECIPES_S3_KEY requires S3_BUCKET")
		}
		client, err := b.s3(ctx)
		if err != nil {
			return nil, err
		}
		b.book = recipes.NewBook(storage.NewS3RecipeState(client, cfg.S3Bucket, cfg.RecipesS3Key))
	case cfg.RecipesPath != "":
		b.book = recipes.NewBook(storage.NewFileRecipeState(cfg.RecipesPath))
	}
	if b.book != nil {
		chain = append(chain, b.book)
	}

	if len(chain) == 0 {
		return nil, nil
	}
	return chain, nil
}

func (b *builder) s3(ctx context.Context) (*s3.Client, error) {
	cfg, err := b.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func (b *builder) sink(ctx context.Context) (storage.ListSink, error) {
	cfg := b.opts.Assistant

	var sinks storage.Fanout
	for _, name := range strings.Split(cfg.SaveBackends, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case "file":
			sinks = append(sinks, storage.NewFileListSink(cfg.SaveDir))
		case "s3":
			if cfg.S3Bucket == "" {
				return nil, errors.New("s3 save backend requires S3_BUCKET")
			}
			client, err := b.s3(ctx)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, storage.NewS3ListSink(client, cfg.S3Bucket, cfg.S3Prefix))
		case "sqlite":
			s, err := storage.NewSQLiteListSink(cfg.SQLitePath)
			if err != nil {
				return nil, err
			}
			b.closers = append(b.closers, s.Close)
			b.saved = s
			sinks = append(sinks, s)
		case "slack":
			if cfg.SlackWebhook == "" {
				return nil, errors.New("slack save backend requires SLACK_WEBHOOK_URL")
			}
			sinks = append(sinks, slack.NewListSink(slack.NewClient(cfg.SlackWebhook, b.opts.HTTPClient), cfg.SlackChannel))
		default:
			return nil, fmt.Errorf("unknown save backend %q", name)
		}
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	}
	return sinks, nil
}
