package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

func meal(id string, kcal float64) nutrition.Meal {
	return nutrition.Meal{ID: id, Name: "meal " + id, Calories: kcal, Protein: 10, Carbs: 20, Fat: 5, Timestamp: 1700000000000}
}

func TestAddMealCreatesLogAndLeavesOtherDates(t *testing.T) {
	s := AddMeal(Default(), "2024-01-01", meal("a", 100))
	s2 := AddMeal(s, "2024-01-02", meal("b", 200))

	require.Len(t, s2.Logs, 2)
	assert.Equal(t, "2024-01-02", s2.Logs["2024-01-02"].Date)
	assert.Equal(t, []nutrition.Meal{meal("a", 100)}, s2.Logs["2024-01-01"].Meals)

	s3 := AddMeal(s2, "2024-01-01", meal("c", 50))
	ids := []string{}
	for _, m := range s3.Logs["2024-01-01"].Meals {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	// Inputs are never mutated.
	assert.Len(t, s.Logs, 1)
	assert.Len(t, s2.Logs["2024-01-01"].Meals, 1)
}

func TestAddThenRemoveLeavesEmptyDay(t *testing.T) {
	s := AddMeal(Default(), "2024-01-01", meal("a", 100))
	s = RemoveMeal(s, "2024-01-01", "a")

	l, ok := s.Logs["2024-01-01"]
	require.True(t, ok)
	assert.Empty(t, l.Meals)
	assert.Equal(t, nutrition.Totals{}, nutrition.SumMeals(l.Meals))
}

func TestUpdateMealKeepsIdentity(t *testing.T) {
	s := AddMeal(Default(), "2024-01-01", meal("a", 100))
	s = UpdateMeal(s, "2024-01-01", "a", nutrition.MealDraft{Name: "Oats", Calories: 350, Protein: 12, Carbs: 60, Fat: 6})

	got := s.Logs["2024-01-01"].Meals[0]
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, int64(1700000000000), got.Timestamp)
	assert.Equal(t, "Oats", got.Name)
	assert.Equal(t, 350.0, got.Calories)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	s := AddMeal(Default(), "2024-01-01", meal("a", 100))

	assert.Equal(t, s, UpdateMeal(s, "2024-01-01", "zzz", nutrition.MealDraft{Name: "x"}))
	assert.Equal(t, s, UpdateMeal(s, "2030-01-01", "a", nutrition.MealDraft{Name: "x"}))
	assert.Equal(t, s, RemoveMeal(s, "2024-01-01", "zzz"))
	assert.Equal(t, s, RemoveMeal(s, "2030-01-01", "a"))
}

func TestProfileTransitions(t *testing.T) {
	p, err := nutrition.NewUserProfile(nutrition.ProfileInput{Gender: "FEMALE", Age: 28, Height: 165, Weight: 58, ActivityLevel: "LIGHT", Goal: "LOSE"})
	require.NoError(t, err)

	s := Reduce(Default(), SetProfileAction{Profile: p})
	got, ok := s.Profile.Get()
	require.True(t, ok)
	assert.Equal(t, p.Calories, got.Calories)

	s = AddMeal(s, "2024-01-01", meal("a", 100))
	s = Reduce(s, ClearProfileAction{})
	assert.False(t, s.Profile.IsPresent())
	assert.Len(t, s.Logs, 1)
}

func TestSetRecipesAction(t *testing.T) {
	p1, _ := nutrition.NewUserProfile(nutrition.ProfileInput{Gender: "MALE", Age: 30, Height: 180, Weight: 80, ActivityLevel: "ACTIVE", Goal: "GAIN"})
	p2 := p1
	p2.DietType = "Keto"

	recipes := []nutrition.Recipe{{ID: "r1", Title: "Bowl"}}
	s := SetProfile(Default(), p1)

	stale := Reduce(SetProfile(s, p2), SetRecipesAction{Recipes: recipes, ForProfile: &p1})
	assert.Empty(t, stale.RecommendedRecipes)

	fresh := Reduce(s, SetRecipesAction{Recipes: recipes, ForProfile: &p1})
	assert.Equal(t, recipes, fresh.RecommendedRecipes)

	forced := Reduce(Default(), SetRecipesAction{Recipes: recipes})
	assert.Equal(t, recipes, forced.RecommendedRecipes)

	assert.Equal(t, Default(), Reduce(fresh, ResetAction{}))
}
