// Package reconcile applies resolved intents to the pantry and the grocery list. It owns the
// cross-inventory policy: what is already in the pantry is never put on the grocery list, and
// adding to the pantry reduces what still has to be bought.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"groceryagent/intent"
	"groceryagent/inventory"
	"groceryagent/recipes"
	"groceryagent/render"
	"groceryagent/storage"
)

const (
	GroceryListTitle = "Your Grocery List"
	DefaultSaveName  = "grocery_list.txt"

	goodbye       = "Thank you for using the Grocery AI Chatbot! Goodbye!"
	clarification = "I'm not sure what you want to do. Try asking me to add a recipe, add items to your list or pantry, or view your lists."
)

// RecipeLookup finds a recipe with its ingredients scaled to servings.
// It returns an error wrapping recipes.ErrNotFound when nothing matches.
type RecipeLookup interface {
	Lookup(ctx context.Context, food string, servings int) (recipes.Recipe, error)
}

// ImageLookup finds a picture for an ingredient. It is best effort: errors and empty
// results both mean "no image".
type ImageLookup interface {
	IngredientImage(ctx context.Context, name string) (string, error)
}

// Outcome is the result of applying one intent, shaped for chat clients.
type Outcome struct {
	Intent        intent.Kind      `json:"intent"`
	Text          string           `json:"text"`
	Products      []render.Product `json:"products"`
	ProductsTitle string           `json:"productsTitle"`
	RecipeTitle   string           `json:"recipe_title,omitempty"`
	RecipeImage   string           `json:"recipe_image,omitempty"`
	Ingredients   []render.Product `json:"ingredients"`
	// Done is set when the user ended the session.
	Done bool `json:"-"`
}

type Opts struct {
	Pantry   *inventory.Store
	Grocery  *inventory.Store
	Recipes  RecipeLookup
	Images   ImageLookup
	Sink     storage.ListSink
	SaveName string
}

// Engine serialises every transition so a change touching both stores is applied as a unit.
// The lock is held for the whole of Apply, including recipe and image lookups and the list
// sink save, so a slow collaborator delays every other caller of the engine.
type Engine struct {
	mu       sync.Mutex
	pantry   *inventory.Store
	grocery  *inventory.Store
	recipes  RecipeLookup
	images   ImageLookup
	sink     storage.ListSink
	saveName string
	now      func() time.Time
}

// New returns an engine over the given stores. Missing stores are created empty.
func New(opts Opts) *Engine {
	if opts.Pantry == nil {
		opts.Pantry = inventory.NewStore()
	}
	if opts.Grocery == nil {
		opts.Grocery = inventory.NewStore()
	}
	if opts.SaveName == "" {
		opts.SaveName = DefaultSaveName
	}
	return &Engine{
		pantry:   opts.Pantry,
		grocery:  opts.Grocery,
		recipes:  opts.Recipes,
		images:   opts.Images,
		sink:     opts.Sink,
		saveName: opts.SaveName,
		now:      time.Now,
	}
}

// Apply carries out in and describes the result. It never fails: missing recipes, absent
// items and sink errors all become messages.
func (e *Engine) Apply(ctx context.Context, in intent.Intent) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in == nil {
		in = intent.Unknown{}
	}
	out := Outcome{
		Intent:      in.Kind(),
		Products:    []render.Product{},
		Ingredients: []render.Product{},
	}

	switch v := in.(type) {
	case intent.AddRecipe:
		e.addRecipe(ctx, v, &out)
	case intent.AddItem:
		e.addItem(ctx, v, &out)
	case intent.AddPantry:
		e.addPantry(v, &out)
	case intent.RemoveItem:
		e.removeItem(v, &out)
	case intent.ShowList:
		items := e.grocery.Snapshot()
		out.Text = render.GroceryList(items)
		out.Products = render.Products(items)
		out.ProductsTitle = GroceryListTitle
	case intent.ShowPantry:
		out.Text = render.Pantry(e.pantry.Snapshot())
	case intent.SaveList:
		e.saveList(ctx, &out)
	case intent.Exit:
		out.Text = goodbye
		out.Done = true
	default:
		out.Text = clarification
	}

	slog.Info("ENGINE: Applied intent", "intent", out.Intent, "grocery_len", e.grocery.Len(), "pantry_len", e.pantry.Len())
	return out
}

func (e *Engine) addRecipe(ctx context.Context, v intent.AddRecipe, out *Outcome) {
	notFound := fmt.Sprintf("Could not find a recipe for %s.", v.FoodItem)
	if e.recipes == nil {
		out.Text = notFound
		return
	}

	r, err := e.recipes.Lookup(ctx, v.FoodItem, v.Servings)
	if err != nil || len(r.Ingredients) == 0 {
		if err != nil && !errors.Is(err, recipes.ErrNotFound) {
			slog.Warn("ENGINE: Recipe lookup failed", "food_item", v.FoodItem, "error", err)
		}
		out.Text = notFound
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found recipe: %s\nIngredients required for %d servings:", r.Title, v.Servings)
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "\n- %.2f %s of %s", ing.Amount, ing.Unit, ing.Name)
		out.Ingredients = append(out.Ingredients, render.Product{
			Name:   ing.Name,
			Amount: ing.Amount,
			Unit:   ing.Unit,
			Image:  ing.Image,
		})
	}

	added := e.offsetAgainstPantry(r.Ingredients)
	if len(added) > 0 {
		b.WriteString("\n\nAdded to grocery list:")
		for _, line := range added {
			b.WriteString("\n- " + line)
		}
	} else {
		b.WriteString("\n\nAll ingredients were already in your pantry. Nothing added to grocery list.")
	}

	out.Text = b.String()
	out.RecipeTitle = r.Title
	out.RecipeImage = r.Image
}

// offsetAgainstPantry takes each ingredient from the pantry first and puts only the shortfall
// on the grocery list. It returns a line per grocery addition.
func (e *Engine) offsetAgainstPantry(ingredients []recipes.Ingredient) []string {
	var added []string
	for _, ing := range ingredients {
		need := ing.Amount
		if have, ok := e.pantry.Get(ing.Name); ok {
			if need-have.Amount <= inventory.Epsilon {
				e.pantry.Decrement(ing.Name, need)
				continue
			}
			e.pantry.Remove(ing.Name)
			need -= have.Amount
		}
		if need <= inventory.Epsilon {
			continue
		}
		e.grocery.Upsert(ing.Name, need, ing.Unit, ing.Image)
		added = append(added, fmt.Sprintf("%.2f %s of %s", need, ing.Unit, ing.Name))
	}
	return added
}

func (e *Engine) addItem(ctx context.Context, v intent.AddItem, out *Outcome) {
	if v.Amount <= 0 {
		out.Text = nothingToAdd(v.Item)
		return
	}

	image := e.lookupImage(ctx, v.Item)
	_, existed := e.grocery.Get(v.Item)
	e.grocery.Upsert(v.Item, v.Amount, v.Unit, image)

	if existed {
		out.Text = fmt.Sprintf("Added more %s to your grocery list.", v.Item)
	} else {
		out.Text = fmt.Sprintf("Added %s %s of %s to your grocery list.", render.Quantity(v.Amount), v.Unit, v.Item)
	}
	out.Products = append(out.Products, render.Product{Name: v.Item, Amount: v.Amount, Unit: v.Unit, Image: image})
}

func (e *Engine) addPantry(v intent.AddPantry, out *Outcome) {
	if v.Amount <= 0 {
		out.Text = nothingToAdd(v.Item)
		return
	}

	e.pantry.Upsert(v.Item, v.Amount, v.Unit, "")
	text := fmt.Sprintf("Added %s %s of %s to your pantry.", render.Quantity(v.Amount), v.Unit, v.Item)

	// Entries in different units are left side by side; there is no conversion.
	if need, ok := e.grocery.Get(v.Item); ok && need.Unit == v.Unit {
		if need.Amount-v.Amount <= inventory.Epsilon {
			e.grocery.Remove(v.Item)
			text += fmt.Sprintf("\nRemoved %s from your grocery list since you now have it in your pantry.", v.Item)
		} else {
			e.grocery.Decrement(v.Item, v.Amount)
			text += fmt.Sprintf("\nUpdated grocery list: now you need %.2f %s of %s.", need.Amount-v.Amount, v.Unit, v.Item)
		}
	}
	out.Text = text
}

func (e *Engine) removeItem(v intent.RemoveItem, out *Outcome) {
	current, ok := e.grocery.Get(v.Item)
	if !ok {
		out.Text = fmt.Sprintf("%s is not in your grocery list.", v.Item)
		return
	}
	if v.Amount == nil || current.Amount-*v.Amount <= inventory.Epsilon {
		e.grocery.Remove(v.Item)
		out.Text = fmt.Sprintf("Removed %s from your grocery list.", v.Item)
		return
	}
	unit, _ := e.grocery.Decrement(v.Item, *v.Amount)
	out.Text = fmt.Sprintf("Reduced %s by %s %s.", v.Item, render.Quantity(*v.Amount), unit)
}

func (e *Engine) saveList(ctx context.Context, out *Outcome) {
	if e.sink == nil {
		out.Text = "Saving is not configured."
		return
	}
	data := render.SavedList(e.grocery.Snapshot(), e.now())
	if err := e.sink.Save(ctx, e.saveName, []byte(data)); err != nil {
		slog.Error("ENGINE: Failed to save grocery list", "target", e.saveName, "error", err)
		out.Text = fmt.Sprintf("Could not save your grocery list: %v", err)
		return
	}
	out.Text = fmt.Sprintf("Grocery list saved to %s", e.saveName)
}

func (e *Engine) lookupImage(ctx context.Context, name string) string {
	if e.images == nil {
		return ""
	}
	url, err := e.images.IngredientImage(ctx, name)
	if err != nil {
		slog.Warn("ENGINE: Ingredient image lookup failed", "item", name, "error", err)
		return ""
	}
	return url
}

func nothingToAdd(item string) string {
	return fmt.Sprintf("Nothing to add: the amount of %s must be greater than zero.", item)
}

// AddToCart puts amount of item on the grocery list without consulting the pantry.
// It reports false if amount is not positive.
func (e *Engine) AddToCart(item string, amount float64, unit string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 {
		return false
	}
	_, ok := e.grocery.Upsert(item, amount, unit, "")
	return ok
}

// ClearList empties the grocery list.
func (e *Engine) ClearList() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grocery.Clear()
}

func (e *Engine) GroceryList() []inventory.Item { return e.grocery.Snapshot() }

func (e *Engine) Pantry() []inventory.Item { return e.pantry.Snapshot() }
