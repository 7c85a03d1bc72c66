package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"groceryagent/inventory"
)

const (
	EmptyGroceryList = "Your grocery list is empty."
	EmptyPantry      = "Your pantry is empty."
)

// Product is an inventory line item for programmatic consumers.
type Product struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Image  string  `json:"image,omitempty"`
}

// GroceryList renders the grocery list for display.
func GroceryList(items []inventory.Item) string {
	return listing("Grocery List:", EmptyGroceryList, items)
}

// Pantry renders the pantry for display.
func Pantry(items []inventory.Item) string {
	return listing("Pantry Items:", EmptyPantry, items)
}

func listing(header, empty string, items []inventory.Item) string {
	if len(items) == 0 {
		return empty
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(header)
	for _, it := range items {
		fmt.Fprintf(&b, "\n- %s: %.2f %s", Capitalize(it.Name), it.Amount, it.Unit)
	}
	return b.String()
}

func Products(items []inventory.Item) []Product {
	out := make([]Product, 0, len(items))
	for _, it := range items {
		out = append(out, Product{Name: it.Name, Amount: it.Amount, Unit: it.Unit, Image: it.Image})
	}
	return out
}

// SavedList renders the grocery list as the plain-text document handed to a list sink.
func SavedList(items []inventory.Item, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grocery List - %s\n", at.Format("2006-01-02 15:04"))
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s: %.2f %s\n", Capitalize(it.Name), it.Amount, it.Unit)
	}
	return b.String()
}

// Quantity formats an amount without trailing zeros, e.g. 2, 1.5.
func Quantity(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// Capitalize upper-cases the first letter and lower-cases the rest: "olive OIL" -> "Olive oil".
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
