package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/nutri-hub/internal/ai"
	"github.com/fdg312/nutri-hub/internal/nutrition"
)

var mealFields = []string{"name", "calories", "protein", "carbs", "fat"}

// ParseMealDraft validates a response against the five-field meal shape.
// Unknown fields are ignored; a missing or mistyped field fails the whole draft.
func ParseMealDraft(text string) (nutrition.MealDraft, error) {
	body := ai.StripCodeFence(text)
	if body == "" {
		return nutrition.MealDraft{}, errors.New("response is empty")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nutrition.MealDraft{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	for _, f := range mealFields {
		v, ok := raw[f]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nutrition.MealDraft{}, fmt.Errorf("field %q is missing", f)
		}
	}

	var draft nutrition.MealDraft
	if err := json.Unmarshal(raw["name"], &draft.Name); err != nil {
		return nutrition.MealDraft{}, fmt.Errorf("field \"name\" must be a string")
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"calories", &draft.Calories},
		{"protein", &draft.Protein},
		{"carbs", &draft.Carbs},
		{"fat", &draft.Fat},
	} {
		if err := json.Unmarshal(raw[f.key], f.dst); err != nil {
			return nutrition.MealDraft{}, fmt.Errorf("field %q must be a number", f.key)
		}
	}

	draft.Name = strings.TrimSpace(draft.Name)
	if err := draft.Validate(); err != nil {
		return nutrition.MealDraft{}, err
	}
	return draft, nil
}
