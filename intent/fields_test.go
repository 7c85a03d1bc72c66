package intent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFields(t *testing.T) {
	half := 0.5

	tests := []struct {
		name   string
		fields map[string]any
		want   Intent
	}{
		{
			name:   "recipe",
			fields: map[string]any{"intent": "add_recipe", "food_item": "pasta", "servings": 4.0},
			want:   AddRecipe{FoodItem: "pasta", Servings: 4},
		},
		{
			name:   "recipe without servings",
			fields: map[string]any{"intent": "add_recipe", "food_item": "pasta"},
			want:   AddRecipe{FoodItem: "pasta", Servings: DefaultServings},
		},
		{
			name:   "recipe with zero servings",
			fields: map[string]any{"intent": "add_recipe", "food_item": "pasta", "servings": 0.0},
			want:   AddRecipe{FoodItem: "pasta", Servings: DefaultServings},
		},
		{
			name:   "add item",
			fields: map[string]any{"intent": "add_item", "item": "flour", "amount": 2.0, "unit": "cups"},
			want:   AddItem{Item: "flour", Amount: 2, Unit: "cups"},
		},
		{
			name:   "add item with numeric string",
			fields: map[string]any{"intent": "add_item", "item": "flour", "amount": "2.5", "unit": "cups"},
			want:   AddItem{Item: "flour", Amount: 2.5, Unit: "cups"},
		},
		{
			name:   "add item defaults",
			fields: map[string]any{"intent": "add_item", "item": " eggs "},
			want:   AddItem{Item: "eggs", Amount: DefaultAmount, Unit: DefaultUnit},
		},
		{
			name:   "add pantry with json number",
			fields: map[string]any{"intent": "ADD_PANTRY", "item": "onions", "amount": json.Number("3"), "unit": "unit"},
			want:   AddPantry{Item: "onions", Amount: 3, Unit: "unit"},
		},
		{
			name:   "remove all",
			fields: map[string]any{"intent": "remove_item", "item": "milk"},
			want:   RemoveItem{Item: "milk"},
		},
		{
			name:   "remove some",
			fields: map[string]any{"intent": "remove_item", "item": "milk", "amount": 0.5},
			want:   RemoveItem{Item: "milk", Amount: &half},
		},
		{name: "show list", fields: map[string]any{"intent": "show_list"}, want: ShowList{}},
		{name: "show pantry", fields: map[string]any{"intent": "show_pantry"}, want: ShowPantry{}},
		{name: "save list", fields: map[string]any{"intent": "save_list"}, want: SaveList{}},
		{name: "exit", fields: map[string]any{"intent": "exit"}, want: Exit{}},
		{name: "explicit unknown", fields: map[string]any{"intent": "unknown"}, want: Unknown{}},
		{name: "unrecognised intent", fields: map[string]any{"intent": "order_pizza"}, want: Unknown{}},
		{name: "missing intent", fields: map[string]any{"item": "milk"}, want: Unknown{}},
		{name: "non-string intent", fields: map[string]any{"intent": 42.0}, want: Unknown{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromFields(tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromFields_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		wantErr error
	}{
		{
			name:    "non-numeric amount",
			fields:  map[string]any{"intent": "add_item", "item": "flour", "amount": "a couple"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			fields:  map[string]any{"intent": "add_pantry", "item": "flour", "amount": -1.0},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "object amount",
			fields:  map[string]any{"intent": "remove_item", "item": "flour", "amount": map[string]any{"value": 1}},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "non-numeric servings",
			fields:  map[string]any{"intent": "add_recipe", "food_item": "chili", "servings": "lots"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "missing item",
			fields:  map[string]any{"intent": "add_item", "amount": 2.0},
			wantErr: ErrMissingItem,
		},
		{
			name:    "missing food",
			fields:  map[string]any{"intent": "add_recipe"},
			wantErr: ErrMissingItem,
		},
		{
			name:    "remove without item",
			fields:  map[string]any{"intent": "remove_item"},
			wantErr: ErrMissingItem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFields(tt.fields)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSchema(t *testing.T) {
	s := Schema()
	require.NotNil(t, s)
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"intent"}, s.Required)

	for _, key := range []string{"intent", "food_item", "servings", "item", "amount", "unit"} {
		assert.Contains(t, s.Properties, key)
	}
	assert.Len(t, s.Properties["intent"].Enum, len(Kinds))
	assert.Contains(t, s.Properties["intent"].Enum, "add_pantry")

	_, err := json.Marshal(s)
	require.NoError(t, err)
}
