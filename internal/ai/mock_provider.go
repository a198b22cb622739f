package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockProvider answers without any network call. Meal estimates come from a
// small keyword table so the same input always yields the same draft.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string {
	return "mock"
}

type mockFood struct {
	keyword  string
	name     string
	calories float64
	protein  float64
	carbs    float64
	fat      float64
}

var mockFoods = []mockFood{
	{"salad", "Garden salad", 180, 5, 14, 11},
	{"chicken", "Grilled chicken breast", 280, 52, 0, 6},
	{"rice", "Steamed rice", 260, 5, 57, 1},
	{"egg", "Scrambled eggs", 200, 13, 2, 15},
	{"oat", "Oatmeal", 300, 10, 54, 6},
	{"pizza", "Pizza slice", 285, 12, 36, 10},
	{"apple", "Apple", 95, 0, 25, 0},
	{"banana", "Banana", 105, 1, 27, 0},
	{"pasta", "Pasta", 400, 14, 75, 5},
	{"salmon", "Baked salmon", 367, 40, 0, 22},
}

var mockDefaultMeal = mockFood{name: "Mixed meal", calories: 450, protein: 20, carbs: 50, fat: 18}

func (p *MockProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch req.Purpose {
	case PurposeMeal:
		return mockMeal(req.Parts)
	case PurposeRecipes:
		return mockRecipes(req.Parts)
	default:
		return "", fmt.Errorf("mock provider: unknown purpose %q", req.Purpose)
	}
}

func mockMeal(parts []Part) (string, error) {
	var text strings.Builder
	for _, part := range parts {
		if !part.IsBlob() {
			text.WriteString(strings.ToLower(part.Text))
			text.WriteByte(' ')
		}
	}
	lower := text.String()

	food := mockDefaultMeal
	for _, f := range mockFoods {
		if strings.Contains(lower, f.keyword) {
			food = f
			break
		}
	}

	b, err := json.Marshal(map[string]any{
		"name":     food.name,
		"calories": food.calories,
		"protein":  food.protein,
		"carbs":    food.carbs,
		"fat":      food.fat,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type mockRecipe struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	Time        string   `json:"time"`
}

var mockRecipeBook = []mockRecipe{
	{
		ID: "mock-1", Title: "Greek yogurt bowl", Description: "Yogurt with berries and oats.",
		Ingredients: []string{"200 g greek yogurt", "80 g berries", "30 g oats"},
		Steps:       []string{"Spoon yogurt into a bowl.", "Top with berries and oats."},
		Calories:    320, Protein: 24, Carbs: 38, Fat: 7, Time: "5 min",
	},
	{
		ID: "mock-2", Title: "Chicken quinoa salad", Description: "Warm quinoa with grilled chicken.",
		Ingredients: []string{"120 g chicken breast", "60 g quinoa", "cucumber", "lemon"},
		Steps:       []string{"Cook quinoa.", "Grill chicken and slice.", "Toss with cucumber and lemon."},
		Calories:    480, Protein: 42, Carbs: 44, Fat: 12, Time: "25 min",
	},
	{
		ID: "mock-3", Title: "Lentil soup", Description: "Red lentils simmered with vegetables.",
		Ingredients: []string{"100 g red lentils", "carrot", "onion", "vegetable stock"},
		Steps:       []string{"Saute onion and carrot.", "Add lentils and stock.", "Simmer 20 minutes."},
		Calories:    390, Protein: 24, Carbs: 60, Fat: 5, Time: "30 min",
	},
	{
		ID: "mock-4", Title: "Salmon with greens", Description: "Oven salmon with steamed greens.",
		Ingredients: []string{"150 g salmon", "broccoli", "spinach", "olive oil"},
		Steps:       []string{"Bake salmon at 200C for 12 minutes.", "Steam greens.", "Drizzle with oil."},
		Calories:    520, Protein: 38, Carbs: 10, Fat: 34, Time: "20 min",
	},
	{
		ID: "mock-5", Title: "Tofu stir fry", Description: "Crispy tofu with vegetables.",
		Ingredients: []string{"150 g firm tofu", "bell pepper", "soy sauce", "rice"},
		Steps:       []string{"Press and cube tofu.", "Fry until golden.", "Add vegetables and sauce."},
		Calories:    450, Protein: 26, Carbs: 48, Fat: 16, Time: "20 min",
	},
}

func mockRecipes(parts []Part) (string, error) {
	n := len(mockRecipeBook)
	for _, part := range parts {
		var requested int
		if _, err := fmt.Sscanf(part.Text, "Generate %d", &requested); err == nil && requested > 0 {
			n = requested
			break
		}
	}

	out := make([]mockRecipe, 0, n)
	for i := 0; i < n; i++ {
		r := mockRecipeBook[i%len(mockRecipeBook)]
		r.ID = fmt.Sprintf("mock-%d", i+1)
		out = append(out, r)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
