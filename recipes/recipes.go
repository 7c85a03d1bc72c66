package recipes

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no recipe matches the requested dish.
var ErrNotFound = errors.New("recipe not found")

type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Image  string  `json:"image,omitempty"`
}

type Recipe struct {
	Title       string       `json:"title"`
	Image       string       `json:"image,omitempty"`
	Servings    int          `json:"servings"`
	MealTypes   []string     `json:"meal_types,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Finder looks up a recipe scaled to the requested number of servings.
type Finder interface {
	Lookup(ctx context.Context, food string, servings int) (Recipe, error)
}

// Scale returns a copy of r with ingredient amounts scaled proportionally from r.Servings to
// servings. Amounts stay real-valued; nothing is rounded.
func Scale(r Recipe, servings int) Recipe {
	out := r
	out.Ingredients = make([]Ingredient, len(r.Ingredients))
	copy(out.Ingredients, r.Ingredients)
	if r.Servings <= 0 || servings <= 0 {
		return out
	}

	factor := float64(servings) / float64(r.Servings)
	for i := range out.Ingredients {
		out.Ingredients[i].Amount = r.Ingredients[i].Amount * factor
	}
	out.Servings = servings
	return out
}

// Chain tries each finder in order and returns the first recipe found. Errors other than
// ErrNotFound are remembered and returned only if nothing is found.
type Chain []Finder

func (c Chain) Lookup(ctx context.Context, food string, servings int) (Recipe, error) {
	var errs []error
	for _, f := range c {
		r, err := f.Lookup(ctx, food, servings)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Recipe{}, errors.Join(errs...)
	}
	return Recipe{}, ErrNotFound
}
