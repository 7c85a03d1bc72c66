package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"groceryagent"
)

const (
	DefaultSpoonacularURL = "https://api.spoonacular.com"
	// DefaultImageBaseURL is where spoonacular serves ingredient thumbnails by file name.
	DefaultImageBaseURL = "https://spoonacular.com/cdn/ingredients_100x100/"
)

// Spoonacular looks up recipes and ingredient images through the spoonacular.com API.
type Spoonacular struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   groceryagent.HTTPClient
}

type SpoonacularOpts struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	HTTPClient   groceryagent.HTTPClient
}

func NewSpoonacular(opts SpoonacularOpts) *Spoonacular {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultSpoonacularURL
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = DefaultImageBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Spoonacular{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		imageBaseURL: opts.ImageBaseURL,
		apiKey:       opts.APIKey,
		httpClient:   opts.HTTPClient,
	}
}

type searchResponse struct {
	Results []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
		Image string `json:"image"`
	} `json:"results"`
}

type informationResponse struct {
	Title               string `json:"title"`
	Servings            int    `json:"servings"`
	ExtendedIngredients []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
		Image  string  `json:"image"`
	} `json:"extendedIngredients"`
}

// Lookup finds the best matching recipe for food and scales it to servings.
func (s *Spoonacular) Lookup(ctx context.Context, food string, servings int) (Recipe, error) {
	var search searchResponse
	err := s.get(ctx, "/recipes/complexSearch", url.Values{
		"query":  {food},
		"number": {"1"},
	}, &search)
	if err != nil {
		return Recipe{}, err
	}
	if len(search.Results) == 0 {
		return Recipe{}, fmt.Errorf("%q: %w", food, ErrNotFound)
	}
	hit := search.Results[0]

	var info informationResponse
	if err := s.get(ctx, "/recipes/"+strconv.Itoa(hit.ID)+"/information", nil, &info); err != nil {
		return Recipe{}, err
	}
	if info.Servings <= 0 {
		return Recipe{}, fmt.Errorf("%q has no servings: %w", info.Title, ErrNotFound)
	}

	r := Recipe{
		Title:       info.Title,
		Image:       hit.Image,
		Servings:    info.Servings,
		Ingredients: make([]Ingredient, 0, len(info.ExtendedIngredients)),
	}
	for _, ing := range info.ExtendedIngredients {
		r.Ingredients = append(r.Ingredients, Ingredient{
			Name:   ing.Name,
			Amount: ing.Amount,
			Unit:   ing.Unit,
			Image:  s.imageURL(ing.Image),
		})
	}

	slog.Info("RECIPES: Spoonacular recipe found", "query", food, "title", r.Title, "ingredients", len(r.Ingredients))
	return Scale(r, servings), nil
}

// IngredientImage returns a thumbnail URL for name, or "" when spoonacular knows none.
func (s *Spoonacular) IngredientImage(ctx context.Context, name string) (string, error) {
	var search struct {
		Results []struct {
			Image string `json:"image"`
		} `json:"results"`
	}
	err := s.get(ctx, "/food/ingredients/search", url.Values{
		"query":  {name},
		"number": {"1"},
	}, &search)
	if err != nil {
		return "", err
	}
	if len(search.Results) == 0 {
		return "", nil
	}
	return s.imageURL(search.Results[0].Image), nil
}

func (s *Spoonacular) imageURL(file string) string {
	if file == "" {
		return ""
	}
	return s.imageBaseURL + file
}

func (s *Spoonacular) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("spoonacular %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spoonacular %s: %s", path, resp.Status)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("spoonacular %s: decode: %w", path, err)
	}
	return nil
}
