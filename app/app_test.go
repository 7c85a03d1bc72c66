package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"groceryagent"
	"groceryagent/intent"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipeBook = `[
	{"title": "Tomato Soup", "servings": 2, "ingredients": [
		{"name": "tomato", "amount": 4, "unit": "unit"},
		{"name": "cream", "amount": 100, "unit": "ml"}
	]}
]`

func testOpts(t *testing.T) Opts {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(recipeBook), 0o644))

	return Opts{
		Model: groceryagent.ModelConfig{Backend: BackendMock},
		Assistant: groceryagent.AssistantConfig{
			RecipesPath:  path,
			SaveBackends: "file,sqlite",
			SaveName:     "grocery_list.txt",
			SaveDir:      filepath.Join(dir, "lists"),
			SQLitePath:   filepath.Join(dir, "grocery.db"),
		},
		LoadAWSConfig: func(ctx context.Context) (aws.Config, error) {
			return aws.Config{Region: "us-east-1"}, nil
		},
	}
}

func TestNew_Conversation(t *testing.T) {
	opts := testOpts(t)
	a, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	ctx := context.Background()
	out, err := a.Assistant.HandleUtterance(ctx, "make tomato soup for 4 people")
	require.NoError(t, err)
	assert.Equal(t, intent.KindAddRecipe, out.Intent)
	assert.Contains(t, out.Text, "Found recipe: Tomato Soup")
	assert.Contains(t, out.Text, "8.00 unit of tomato")

	out, err = a.Assistant.HandleUtterance(ctx, "save list")
	require.NoError(t, err)
	assert.Equal(t, "Grocery list saved to grocery_list.txt", out.Text)

	saved, err := os.ReadFile(filepath.Join(opts.Assistant.SaveDir, "grocery_list.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Tomato: 8.00 unit")

	require.NotNil(t, a.SavedLists)
	row, err := a.SavedLists.Latest(ctx, "grocery_list.txt")
	require.NoError(t, err)
	assert.Equal(t, string(saved), row.Body)

	require.NotNil(t, a.Book)
	all, err := a.Book.ByMealType(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNew_NoModel(t *testing.T) {
	opts := testOpts(t)
	opts.Model.Backend = BackendNone
	opts.Assistant.SaveBackends = ""

	a, err := New(context.Background(), opts)
	require.NoError(t, err)

	out, err := a.Assistant.HandleUtterance(context.Background(), "buy 2 lb of apples")
	require.NoError(t, err)
	assert.Equal(t, intent.KindAddItem, out.Intent)

	out, err = a.Assistant.HandleUtterance(context.Background(), "save list")
	require.NoError(t, err)
	assert.Equal(t, "Saving is not configured.", out.Text)
}

func TestNew_Backends(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Opts)
		wantErr string
	}{
		{
			name:   "ollama",
			modify: func(o *Opts) { o.Model.Backend = BackendOllama; o.Assistant.BaseOllamaEndpoint = "http://localhost:11434" },
		},
		{
			name:   "bedrock",
			modify: func(o *Opts) { o.Model.Backend = "Bedrock" },
		},
		{
			name:   "s3 recipes and sink",
			modify: func(o *Opts) { o.Assistant.RecipesS3Key = "recipes.json"; o.Assistant.S3Bucket = "artifacts"; o.Assistant.SaveBackends = "s3" },
		},
		{
			name:   "slack sink",
			modify: func(o *Opts) { o.Assistant.SaveBackends = "slack"; o.Assistant.SlackWebhook = "http://example.com/hook" },
		},
		{
			name:    "ollama without endpoint",
			modify:  func(o *Opts) { o.Model.Backend = BackendOllama; o.Assistant.BaseOllamaEndpoint = "" },
			wantErr: "missing Ollama endpoint",
		},
		{
			name:    "gemini without key",
			modify:  func(o *Opts) { o.Model.Backend = BackendGemini },
			wantErr: "missing Gemini API key",
		},
		{
			name:    "unknown backend",
			modify:  func(o *Opts) { o.Model.Backend = "gpt" },
			wantErr: `unknown model backend "gpt"`,
		},
		{
			name:    "unknown save backend",
			modify:  func(o *Opts) { o.Assistant.SaveBackends = "file,ftp" },
			wantErr: `unknown save backend "ftp"`,
		},
		{
			name:    "s3 sink without bucket",
			modify:  func(o *Opts) { o.Assistant.SaveBackends = "s3" },
			wantErr: "requires S3_BUCKET",
		},
		{
			name:    "s3 recipes without bucket",
			modify:  func(o *Opts) { o.Assistant.RecipesS3Key = "recipes.json" },
			wantErr: "requires S3_BUCKET",
		},
		{
			name:    "slack without webhook",
			modify:  func(o *Opts) { o.Assistant.SaveBackends = "slack" },
			wantErr: "requires SLACK_WEBHOOK_URL",
		},
		{
			name: "aws config failure",
			modify: func(o *Opts) {
				o.Model.Backend = BackendBedrock
				o.LoadAWSConfig = func(ctx context.Context) (aws.Config, error) {
					return aws.Config{}, errors.New("no credentials")
				}
			},
			wantErr: "failed to load AWS config: no credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOpts(t)
			tt.modify(&opts)

			a, err := New(context.Background(), opts)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, a.Assistant)
			assert.NoError(t, a.Close())
		})
	}
}

func TestNew_AWSConfigLoadedOnce(t *testing.T) {
	opts := testOpts(t)
	opts.Model.Backend = BackendBedrock
	opts.Assistant.S3Bucket = "artifacts"
	opts.Assistant.RecipesS3Key = "recipes.json"
	opts.Assistant.SaveBackends = "s3"

	calls := 0
	opts.LoadAWSConfig = func(ctx context.Context) (aws.Config, error) {
		calls++
		return aws.Config{Region: "us-west-2"}, nil
	}

	a, err := New(context.Background(), opts)
	require.NoError(t, err)
	assert.NoError(t, a.Close())
	assert.Equal(t, 1, calls)
}

func TestNew_Spoonacular(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/recipes/complexSearch":
			if r.URL.Query().Get("query") != "guacamole" {
				w.Write([]byte(`{"results": []}`))
				return
			}
			w.Write([]byte(`{"results": [{"id": 7, "title": "Guacamole", "image": "guac.jpg"}]}`))
		case "/recipes/7/information":
			w.Write([]byte(`{"title": "Guacamole", "servings": 2, "extendedIngredients": [{"name": "avocado", "amount": 2, "unit": ""}]}`))
		case "/food/ingredients/search":
			w.Write([]byte(`{"results": [{"image": "lime.jpg"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	opts := testOpts(t)
	opts.Assistant.SaveBackends = ""
	opts.Assistant.SpoonacularAPIKey = "test-key"
	opts.Assistant.SpoonacularBaseURL = srv.URL
	opts.HTTPClient = srv.Client()

	a, err := New(context.Background(), opts)
	require.NoError(t, err)

	out, err := a.Assistant.HandleUtterance(context.Background(), "make guacamole for 4 people")
	require.NoError(t, err)
	assert.Equal(t, "Guacamole", out.RecipeTitle)
	assert.Contains(t, out.Text, "4.00  of avocado")

	out, err = a.Assistant.HandleUtterance(context.Background(), "buy 3 lb of lime")
	require.NoError(t, err)
	require.Len(t, out.Products, 1)
	assert.Equal(t, "https://spoonacular.com/cdn/ingredients_100x100/lime.jpg", out.Products[0].Image)

	// The local book still answers what spoonacular cannot.
	out, err = a.Assistant.HandleUtterance(context.Background(), "make tomato soup")
	require.NoError(t, err)
	assert.Equal(t, "Tomato Soup", out.RecipeTitle)
}
