package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"groceryagent/storage"
)

// Book finds recipes in a JSON recipe collection loaded from a storage.RecipeState
// (a local file or an S3 object). The collection is re-read on every lookup so edits show up
// without a restart.
type Book struct{ state storage.RecipeState }

func NewBook(state storage.RecipeState) *Book { return &Book{state: state} }

// Lookup returns the first recipe whose title contains food, scaled to servings.
// An exact title match wins over a partial one.
func (b *Book) Lookup(ctx context.Context, food string, servings int) (Recipe, error) {
	all, err := b.load(ctx)
	if err != nil {
		return Recipe{}, err
	}

	want := strings.ToLower(strings.TrimSpace(food))
	if want == "" {
		return Recipe{}, ErrNotFound
	}

	var partial *Recipe
	for i := range all {
		title := strings.ToLower(all[i].Title)
		if title == want {
			return Scale(all[i], servings), nil
		}
		if partial == nil && strings.Contains(title, want) {
			partial = &all[i]
		}
	}
	if partial == nil {
		return Recipe{}, fmt.Errorf("%q: %w", food, ErrNotFound)
	}
	return Scale(*partial, servings), nil
}

// ByMealType returns the recipes tagged with any of the given meal types, or all of them
// when none are given.
func (b *Book) ByMealType(ctx context.Context, mealTypes ...string) ([]Recipe, error) {
	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(mealTypes) == 0 {
		return all, nil
	}

	want := map[string]bool{}
	for _, m := range mealTypes {
		if m != "" {
			want[m] = true
		}
	}

	out := make([]Recipe, 0)
	for _, r := range all {
		for _, m := range r.MealTypes {
			if want[m] {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (b *Book) load(ctx context.Context) ([]Recipe, error) {
	data, err := b.state.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("read recipes: %w", err)
	}
	var recipes []Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}
	return recipes, nil
}
