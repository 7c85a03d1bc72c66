package resolver

import "fmt"

// Instructions is the system prompt shared by every model backend.
const Instructions = `You are a grocery assistant AI. Parse the user input and extract the following information:
1. Intent: One of [add_recipe, add_item, add_pantry, remove_item, show_list, show_pantry, save_list, exit, unknown]
2. Entities: Depending on the intent, extract relevant entities like food_item, servings, item, amount, unit

Return ONE JSON object only (no markdown, no code fences) with the format:
{"intent": "intent_type", "entities": {...}}

Rules:
- "amount" and "servings" are plain numbers, never strings with units.
- Use "unit" when the user gives no unit.
- Use "unknown" when the input is not about groceries.

Examples:
Input: "I want to make pasta for 4 people"
Output: {"intent": "add_recipe", "food_item": "pasta", "servings": 4}

Input: "I need 2 cups of flour"
Output: {"intent": "add_item", "item": "flour", "amount": 2, "unit": "cups"}

Input: "I have 3 onions in my pantry"
Output: {"intent": "add_pantry", "item": "onions", "amount": 3, "unit": "unit"}

Input: "I don't need milk anymore"
Output: {"intent": "remove_item", "item": "milk"}

Input: "what's on my list?"
Output: {"intent": "show_list"}`

// Prompt is the system and user text sent to a model for one utterance.
type Prompt struct {
	System string
	User   string
}

func NewPrompt(text string) Prompt {
	return Prompt{
		System: Instructions,
		User:   fmt.Sprintf("User input: %s", text),
	}
}
