package state

import (
	"reflect"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

// Action is a discrete state transition. Apply must be pure: it reads only
// its receiver and the given state and returns the next state.
type Action interface {
	Apply(s AppState) AppState
}

// Reduce applies a to a private copy of s.
func Reduce(s AppState, a Action) AppState {
	return a.Apply(s.Clone())
}

// AddMeal appends meal to the log of date, creating the log if absent.
// The meal must already carry its id and timestamp.
func AddMeal(s AppState, date string, meal nutrition.Meal) AppState {
	next := s.Clone()
	l, ok := next.Logs[date]
	if !ok {
		l = nutrition.DailyLog{Date: date, Meals: []nutrition.Meal{}}
	}
	l.Meals = append(l.Meals, meal)
	next.Logs[date] = l
	return next
}

// UpdateMeal replaces the nutritional fields of one meal. The id and
// timestamp are kept. An unknown date or id leaves the state unchanged.
func UpdateMeal(s AppState, date, mealID string, draft nutrition.MealDraft) AppState {
	l, ok := s.Logs[date]
	if !ok || indexOf(l.Meals, mealID) < 0 {
		return s
	}
	next := s.Clone()
	l = next.Logs[date]
	i := indexOf(l.Meals, mealID)
	m := l.Meals[i]
	m.Name = draft.Name
	m.Calories = draft.Calories
	m.Protein = draft.Protein
	m.Carbs = draft.Carbs
	m.Fat = draft.Fat
	l.Meals[i] = m
	next.Logs[date] = l
	return next
}

// RemoveMeal drops one meal. The day log stays, possibly empty. An unknown
// date or id leaves the state unchanged.
func RemoveMeal(s AppState, date, mealID string) AppState {
	l, ok := s.Logs[date]
	if !ok || indexOf(l.Meals, mealID) < 0 {
		return s
	}
	next := s.Clone()
	l = next.Logs[date]
	meals := make([]nutrition.Meal, 0, len(l.Meals)-1)
	for _, m := range l.Meals {
		if m.ID != mealID {
			meals = append(meals, m)
		}
	}
	l.Meals = meals
	next.Logs[date] = l
	return next
}

// SetProfile replaces the profile wholesale.
func SetProfile(s AppState, p nutrition.UserProfile) AppState {
	next := s.Clone()
	next.Profile = Present(p)
	return next
}

// ClearProfile sends the user back to onboarding. Logs and recipes are kept.
func ClearProfile(s AppState) AppState {
	next := s.Clone()
	next.Profile = Pending()
	return next
}

// SetRecipes replaces the recommendation list wholesale.
func SetRecipes(s AppState, recipes []nutrition.Recipe) AppState {
	next := s.Clone()
	next.RecommendedRecipes = make([]nutrition.Recipe, len(recipes))
	copy(next.RecommendedRecipes, recipes)
	return next
}

func indexOf(meals []nutrition.Meal, id string) int {
	for i, m := range meals {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// AddMealAction appends a fully identified meal.
type AddMealAction struct {
	Date string
	Meal nutrition.Meal
}

func (a AddMealAction) Apply(s AppState) AppState { return AddMeal(s, a.Date, a.Meal) }

// UpdateMealAction edits a meal in place.
type UpdateMealAction struct {
	Date   string
	MealID string
	Draft  nutrition.MealDraft
}

func (a UpdateMealAction) Apply(s AppState) AppState {
	return UpdateMeal(s, a.Date, a.MealID, a.Draft)
}

// RemoveMealAction deletes a meal by id.
type RemoveMealAction struct {
	Date   string
	MealID string
}

func (a RemoveMealAction) Apply(s AppState) AppState { return RemoveMeal(s, a.Date, a.MealID) }

// SetProfileAction completes or redoes onboarding.
type SetProfileAction struct {
	Profile nutrition.UserProfile
}

func (a SetProfileAction) Apply(s AppState) AppState { return SetProfile(s, a.Profile) }

// ClearProfileAction returns to onboarding.
type ClearProfileAction struct{}

func (ClearProfileAction) Apply(s AppState) AppState { return ClearProfile(s) }

// SetRecipesAction replaces recommendations. When ForProfile is set the
// recipes are dropped unless the current profile still equals it, so a slow
// fetch can never overwrite recipes computed for a newer profile.
type SetRecipesAction struct {
	Recipes    []nutrition.Recipe
	ForProfile *nutrition.UserProfile
}

func (a SetRecipesAction) Apply(s AppState) AppState {
	if a.ForProfile != nil {
		cur, ok := s.Profile.Get()
		if !ok || !SameProfile(cur, *a.ForProfile) {
			return s
		}
	}
	return SetRecipes(s, a.Recipes)
}

// ResetAction discards everything.
type ResetAction struct{}

func (ResetAction) Apply(AppState) AppState { return Default() }

// SameProfile reports whether two profiles are field-for-field equal.
func SameProfile(a, b nutrition.UserProfile) bool {
	if len(a.HealthConditions) == 0 && len(b.HealthConditions) == 0 {
		a.HealthConditions, b.HealthConditions = nil, nil
	}
	return reflect.DeepEqual(a, b)
}
