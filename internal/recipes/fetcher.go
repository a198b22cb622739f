// Package recipes asks the inference service for recipe suggestions that fit
// the user's diet, goal and health conditions.
package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/ai"
	"github.com/fdg312/nutri-hub/internal/metrics"
	"github.com/fdg312/nutri-hub/internal/nutrition"
)

const DefaultCount = 4

var recipeFields = []string{
	"id", "title", "description", "ingredients", "steps",
	"calories", "protein", "carbs", "fat", "time",
}

// RecipeSchema is the per-item response shape.
var RecipeSchema = &ai.Schema{
	Type: ai.TypeObject,
	Properties: map[string]*ai.Schema{
		"id":          {Type: ai.TypeString},
		"title":       {Type: ai.TypeString},
		"description": {Type: ai.TypeString},
		"ingredients": {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
		"steps":       {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
		"calories":    {Type: ai.TypeNumber},
		"protein":     {Type: ai.TypeNumber},
		"carbs":       {Type: ai.TypeNumber},
		"fat":         {Type: ai.TypeNumber},
		"time":        {Type: ai.TypeString},
	},
	Required: recipeFields,
}

// ListSchema is the full response shape: an array of recipes.
var ListSchema = &ai.Schema{Type: ai.TypeArray, Items: RecipeSchema}

// Fetcher never fails outward: any error is logged and yields an empty list.
type Fetcher struct {
	provider ai.Provider
	logger   *zap.Logger
	metrics  *metrics.Metrics
	count    int
	timeout  time.Duration
}

type FetcherOption func(*Fetcher)

func WithLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) FetcherOption {
	return func(f *Fetcher) { f.metrics = m }
}

// WithCount sets how many recipes to ask for.
func WithCount(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.count = n
		}
	}
}

func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.timeout = d }
}

func NewFetcher(provider ai.Provider, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider: provider,
		logger:   zap.NewNop(),
		count:    DefaultCount,
		timeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Prompt builds the request text for a profile.
func Prompt(p nutrition.UserProfile, count int) string {
	return fmt.Sprintf("Generate %d short recipes for: Diet %s, Goal %s, Health: %s. JSON ARRAY.",
		count, p.DietType, p.Goal, strings.Join(p.HealthConditions, ", "))
}

// Fetch returns suggestions for p, or an empty list on any failure.
func (f *Fetcher) Fetch(ctx context.Context, p nutrition.UserProfile) []nutrition.Recipe {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	text, err := f.provider.Generate(ctx, ai.Request{
		Purpose: ai.PurposeRecipes,
		Parts:   []ai.Part{ai.TextPart(Prompt(p, f.count))},
		Schema:  ListSchema,
	})
	if err != nil {
		f.metrics.RecipeFetchFinished("inference_failed")
		f.logger.Warn("recipes: inference failed", zap.String("provider", f.provider.Name()), zap.Error(err))
		return []nutrition.Recipe{}
	}

	list, err := ParseRecipes(text)
	if err != nil {
		f.metrics.RecipeFetchFinished("invalid_response")
		f.logger.Warn("recipes: invalid response", zap.String("provider", f.provider.Name()), zap.Error(err))
		return []nutrition.Recipe{}
	}

	outcome := "ok"
	if len(list) == 0 {
		outcome = "empty"
	}
	f.metrics.RecipeFetchFinished(outcome)
	f.logger.Info("recipes: fetched", zap.Int("count", len(list)))
	return list
}

// ParseRecipes validates a JSON array of recipes. One bad item rejects the
// whole batch.
func ParseRecipes(text string) ([]nutrition.Recipe, error) {
	body := ai.StripCodeFence(text)
	if body == "" {
		return nil, errors.New("response is empty")
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("response is not a JSON array of objects: %w", err)
	}
	for i, item := range items {
		for _, field := range recipeFields {
			v, ok := item[field]
			if !ok || string(v) == "null" {
				return nil, fmt.Errorf("recipe %d: field %q is missing", i, field)
			}
		}
	}

	out := make([]nutrition.Recipe, 0, len(items))
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("recipe has a mistyped field: %w", err)
	}
	for i, r := range out {
		if err := validateRecipe(r); err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i, err)
		}
	}
	return out, nil
}

func validateRecipe(r nutrition.Recipe) error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("id is empty")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is empty")
	}
	for _, v := range []float64{r.Calories, r.Protein, r.Carbs, r.Fat} {
		if v < 0 {
			return errors.New("macros must not be negative")
		}
	}
	return nil
}
