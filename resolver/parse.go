package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrNoJSON  = errors.New("no JSON object in model reply")
	ErrBadJSON = errors.New("malformed JSON object in model reply")
)

// ParseReply extracts the JSON object spanning the first '{' to the last '}' of a model reply
// and flattens it into a single field map. Top-level keys are kept, keys of a nested
// "entities" object override them, and a missing intent becomes "unknown". An "entities" value
// that is not an object makes the whole reply malformed.
func ParseReply(reply string) (map[string]any, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}

	dec := json.NewDecoder(strings.NewReader(reply[start : end+1]))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrBadJSON)
	}

	fields := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == "intent" || k == "entities" {
			continue
		}
		fields[k] = v
	}
	if raw, present := obj["entities"]; present {
		entities, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entities is %T, not an object", ErrBadJSON, raw)
		}
		for k, v := range entities {
			if k == "intent" {
				continue
			}
			fields[k] = v
		}
	}

	fields["intent"] = "unknown"
	if name, ok := obj["intent"].(string); ok && strings.TrimSpace(name) != "" {
		fields["intent"] = name
	}
	return fields, nil
}
