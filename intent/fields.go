package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingItem   = errors.New("missing item")
)

// FromFields coerces a loosely typed, flattened model response into an Intent.
// Unrecognised intent names become Unknown. Entities that cannot be trusted (an empty item,
// a negative or non-numeric amount) are reported as errors so the caller can fall back to
// the deterministic extractor instead of passing bad numbers on.
func FromFields(fields map[string]any) (Intent, error) {
	name, _ := fields["intent"].(string)
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))

	switch kind {
	case KindAddRecipe:
		food := stringField(fields, "food_item")
		if food == "" {
			return nil, fmt.Errorf("add_recipe: %w", ErrMissingItem)
		}
		servings := DefaultServings
		if v, ok, err := numberField(fields, "servings"); err != nil {
			return nil, fmt.Errorf("add_recipe servings: %w", err)
		} else if ok && v >= 1 {
			servings = int(v)
		}
		return AddRecipe{FoodItem: food, Servings: servings}, nil

	case KindAddItem, KindAddPantry:
		item := stringField(fields, "item")
		if item == "" {
			return nil, fmt.Errorf("%s: %w", kind, ErrMissingItem)
		}
		amount := DefaultAmount
		if v, ok, err := numberField(fields, "amount"); err != nil {
			return nil, fmt.Errorf("%s amount: %w", kind, err)
		} else if ok {
			amount = v
		}
		unit := stringField(fields, "unit")
		if unit == "" {
			unit = DefaultUnit
		}
		if kind == KindAddPantry {
			return AddPantry{Item: item, Amount: amount, Unit: unit}, nil
		}
		return AddItem{Item: item, Amount: amount, Unit: unit}, nil

	case KindRemoveItem:
		item := stringField(fields, "item")
		if item == "" {
			return nil, fmt.Errorf("remove_item: %w", ErrMissingItem)
		}
		out := RemoveItem{Item: item}
		if v, ok, err := numberField(fields, "amount"); err != nil {
			return nil, fmt.Errorf("remove_item amount: %w", err)
		} else if ok {
			out.Amount = &v
		}
		return out, nil

	case KindShowList:
		return ShowList{}, nil
	case KindShowPantry:
		return ShowPantry{}, nil
	case KindSaveList:
		return SaveList{}, nil
	case KindExit:
		return Exit{}, nil
	default:
		return Unknown{}, nil
	}
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// numberField reports whether key holds a usable number. Absent and null values are not errors.
func numberField(fields map[string]any, key string) (float64, bool, error) {
	var f float64
	switch v := fields[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("%q: %w", v, ErrInvalidAmount)
		}
		f = n
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%q: %w", v, ErrInvalidAmount)
		}
		f = n
	default:
		return 0, false, fmt.Errorf("%v: %w", v, ErrInvalidAmount)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false, fmt.Errorf("%v: %w", f, ErrInvalidAmount)
	}
	return f, true, nil
}
