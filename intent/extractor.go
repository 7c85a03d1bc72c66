package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Matcher tries to recognise a single intent in lower-cased text.
type Matcher interface {
	Match(text string) (Intent, bool)
}

// Extractor is the deterministic, pattern-based parser used whenever the language model is
// unavailable or returns something unusable. Matchers are evaluated in order and the first
// match wins.
type Extractor struct {
	matchers []Matcher
}

// NewExtractor returns an extractor with the built-in pattern families, in priority order:
// recipes, add to list, add to pantry, remove, then keyword phrases.
func NewExtractor() *Extractor {
	var m []Matcher
	m = append(m, recipeMatchers...)
	m = append(m, addItemMatchers...)
	m = append(m, addPantryMatchers...)
	m = append(m, removeMatchers...)
	m = append(m, phraseMatchers...)
	return &Extractor{matchers: m}
}

// Extract maps free text to an intent. Text nothing recognises yields Unknown.
func (e *Extractor) Extract(text string) Intent {
	text = strings.ToLower(text)
	for _, m := range e.matchers {
		if in, ok := m.Match(text); ok {
			return in
		}
	}
	return Unknown{}
}

// regexMatcher runs a pattern and hands its submatches to build.
type regexMatcher struct {
	re    *regexp.Regexp
	build func(groups []string) Intent
}

func (m regexMatcher) Match(text string) (Intent, bool) {
	groups := m.re.FindStringSubmatch(text)
	if groups == nil {
		return nil, false
	}
	return m.build(groups), true
}

// phraseMatcher matches when any phrase is contained in the text.
type phraseMatcher struct {
	phrases []string
	intent  Intent
}

func (m phraseMatcher) Match(text string) (Intent, bool) {
	for _, p := range m.phrases {
		if strings.Contains(text, p) {
			return m.intent, true
		}
	}
	return nil, false
}

var quantityPattern = regexp.MustCompile(`(\d+\.?\d*)\s*(oz|lb|kg|g|cups?|tbsp|tsp|ml|l) of (.*)`)

// parseQuantity splits "2 cups of flour" into its parts. Anything else is one unit of the phrase.
func parseQuantity(phrase string) (item string, amount float64, unit string) {
	phrase = strings.TrimSpace(phrase)
	if q := quantityPattern.FindStringSubmatch(phrase); q != nil {
		if n, err := strconv.ParseFloat(q[1], 64); err == nil {
			return strings.TrimSpace(q[3]), n, q[2]
		}
	}
	return phrase, DefaultAmount, DefaultUnit
}

func recipe(pattern string) Matcher {
	return regexMatcher{
		re: regexp.MustCompile(pattern),
		build: func(g []string) Intent {
			servings := DefaultServings
			if g[3] != "" {
				if n, err := strconv.Atoi(g[3]); err == nil && n > 0 {
					servings = n
				}
			}
			return AddRecipe{FoodItem: strings.TrimSpace(g[2]), Servings: servings}
		},
	}
}

func addItem(pattern string) Matcher {
	return regexMatcher{
		re: regexp.MustCompile(pattern),
		build: func(g []string) Intent {
			item, amount, unit := parseQuantity(g[1])
			return AddItem{Item: item, Amount: amount, Unit: unit}
		},
	}
}

func addPantry(pattern string) Matcher {
	return regexMatcher{
		re: regexp.MustCompile(pattern),
		build: func(g []string) Intent {
			item, amount, unit := parseQuantity(g[1])
			return AddPantry{Item: item, Amount: amount, Unit: unit}
		},
	}
}

func remove(pattern string) Matcher {
	return regexMatcher{
		re: regexp.MustCompile(pattern),
		build: func(g []string) Intent {
			return RemoveItem{Item: strings.TrimSpace(g[1])}
		},
	}
}

var recipeMatchers = []Matcher{
	recipe(`(make|cook|prepare|add recipe for|recipe for) (.*?)(?: for (\d+) people)?$`),
	recipe(`i want to (make|cook|prepare) (.*?)(?: for (\d+) people)?$`),
	recipe(`how do i (make|cook|prepare) (.*?)(?: for (\d+) people)?$`),
}

var addItemMatchers = []Matcher{
	addItem(`add (.*?) to (grocery list|list)`),
	addItem(`i need (.*)`),
	addItem(`buy (.*)`),
	addItem(`get (.*) from (store|shop|market)`),
}

var addPantryMatchers = []Matcher{
	addPantry(`i have (.*)`),
	addPantry(`add (.*) to pantry`),
	addPantry(`already have (.*)`),
}

var removeMatchers = []Matcher{
	remove(`remove (.*) from (grocery list|list)`),
	remove(`delete (.*) from (grocery list|list)`),
	remove(`don't need (.*)`),
}

var phraseMatchers = []Matcher{
	phraseMatcher{
		phrases: []string{"show list", "view list", "what's on my list", "what is on my list", "grocery list"},
		intent:  ShowList{},
	},
	phraseMatcher{
		phrases: []string{"show pantry", "view pantry", "what's in my pantry", "what do i have"},
		intent:  ShowPantry{},
	},
	phraseMatcher{
		phrases: []string{"save list", "export list", "download list"},
		intent:  SaveList{},
	},
	phraseMatcher{
		phrases: []string{"exit", "quit", "goodbye", "bye", "thank you", "thanks"},
		intent:  Exit{},
	},
}
