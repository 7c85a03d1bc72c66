package intent

import "github.com/modelcontextprotocol/go-sdk/jsonschema"

// Schema describes the flat JSON object a language model is asked to produce. Backends that
// support structured output pass it along; the resolver still treats the reply as untrusted.
func Schema() *jsonschema.Schema {
	minAmount := 0.0
	minServings := 1.0

	kinds := make([]any, 0, len(Kinds))
	for _, k := range Kinds {
		kinds = append(kinds, string(k))
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"intent": {
				Type:        "string",
				Description: "What the user wants to do.",
				Enum:        kinds,
			},
			"food_item": {
				Type:        "string",
				Description: "Dish to find a recipe for (add_recipe).",
			},
			"servings": {
				Type:        "integer",
				Description: "Number of people the recipe should serve (add_recipe).",
				Minimum:     &minServings,
			},
			"item": {
				Type:        "string",
				Description: "Grocery or pantry item (add_item, add_pantry, remove_item).",
			},
			"amount": {
				Type:        "number",
				Description: "Quantity of the item.",
				Minimum:     &minAmount,
			},
			"unit": {
				Type:        "string",
				Description: `Unit of the amount, or "unit" for countable items.`,
			},
		},
		Required: []string{"intent"},
	}
}
