package groceryagent

import "time"

// ModelConfig selects and tunes the language model used for intent resolution.
type ModelConfig struct {
	Backend     string        `env:"MODEL_BACKEND,default=mock"`
	ModelID     string        `env:"MODEL_ID"`
	MaxTokens   int32         `env:"MAX_TOKENS,default=256"`
	Temperature float32       `env:"TEMPERATURE,default=0.1"`
	TopP        float32       `env:"TOP_P,default=0.9"`
	Timeout     time.Duration `env:"LLM_TIMEOUT,default=15s"`
}

type AssistantConfig struct {
	BaseOllamaEndpoint string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`

	SpoonacularAPIKey  string `env:"SPOONACULAR_API_KEY"`
	SpoonacularBaseURL string `env:"SPOONACULAR_BASE_URL,default=https://api.spoonacular.com"`
	RecipesPath        string `env:"ARTIFACTS_RECIPES_PATH,default=artifacts/recipes.json"`
	RecipesS3Key       string `env:"RECIPES_S3_KEY"`

	// SaveBackends is a comma separated list of file, s3, sqlite and slack.
	SaveBackends string `env:"SAVE_BACKENDS,default=file"`
	SaveName     string `env:"SAVE_NAME,default=grocery_list.txt"`
	SaveDir      string `env:"SAVE_DIR,default=."`
	S3Bucket     string `env:"S3_BUCKET"`
	S3Prefix     string `env:"S3_PREFIX"`
	SQLitePath   string `env:"SQLITE_PATH,default=grocery.db"`
	SlackWebhook string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel string `env:"SLACK_CHANNEL,default=#groceries"`

	ListenAddr string `env:"LISTEN_ADDR,default=:5000"`
}
