package intent

// Kind is the wire name of an intent, as produced by the language model and the fallback parser.
type Kind string

const (
	KindAddRecipe  Kind = "add_recipe"
	KindAddItem    Kind = "add_item"
	KindAddPantry  Kind = "add_pantry"
	KindRemoveItem Kind = "remove_item"
	KindShowList   Kind = "show_list"
	KindShowPantry Kind = "show_pantry"
	KindSaveList   Kind = "save_list"
	KindExit       Kind = "exit"
	KindUnknown    Kind = "unknown"
)

// Kinds lists every intent name in the order they are presented to the model.
var Kinds = []Kind{
	KindAddRecipe, KindAddItem, KindAddPantry, KindRemoveItem,
	KindShowList, KindShowPantry, KindSaveList, KindExit, KindUnknown,
}

const (
	// DefaultServings is used when a recipe request does not say how many people it is for.
	DefaultServings = 2
	// DefaultAmount and DefaultUnit are used when an item is named without a quantity.
	DefaultAmount = 1.0
	DefaultUnit   = "unit"
)

// Intent is one resolved user utterance. The set of implementations is closed.
type Intent interface {
	Kind() Kind
	isIntent()
}

type AddRecipe struct {
	FoodItem string `json:"food_item"`
	Servings int    `json:"servings"`
}

type AddItem struct {
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type AddPantry struct {
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// RemoveItem drops an item from the grocery list. A nil Amount removes the entry entirely.
type RemoveItem struct {
	Item   string   `json:"item"`
	Amount *float64 `json:"amount,omitempty"`
}

type ShowList struct{}
type ShowPantry struct{}
type SaveList struct{}
type Exit struct{}
type Unknown struct{}

func (AddRecipe) Kind() Kind  { return KindAddRecipe }
func (AddItem) Kind() Kind    { return KindAddItem }
func (AddPantry) Kind() Kind  { return KindAddPantry }
func (RemoveItem) Kind() Kind { return KindRemoveItem }
func (ShowList) Kind() Kind   { return KindShowList }
func (ShowPantry) Kind() Kind { return KindShowPantry }
func (SaveList) Kind() Kind   { return KindSaveList }
func (Exit) Kind() Kind       { return KindExit }
func (Unknown) Kind() Kind    { return KindUnknown }

func (AddRecipe) isIntent()  {}
func (AddItem) isIntent()    {}
func (AddPantry) isIntent()  {}
func (RemoveItem) isIntent() {}
func (ShowList) isIntent()   {}
func (ShowPantry) isIntent() {}
func (SaveList) isIntent()   {}
func (Exit) isIntent()       {}
func (Unknown) isIntent()    {}
