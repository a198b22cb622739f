package nutrition

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLevelJSON(t *testing.T) {
	var p struct {
		Level ActivityLevel `json:"activityLevel"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"activityLevel":1.725}`), &p))
	assert.Equal(t, ActivityActive, p.Level)

	require.NoError(t, json.Unmarshal([]byte(`{"activityLevel":"very_active"}`), &p))
	assert.Equal(t, ActivityVeryActive, p.Level)

	assert.Error(t, json.Unmarshal([]byte(`{"activityLevel":1.3}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"activityLevel":"couch"}`), &p))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"activityLevel":"VERY_ACTIVE"}`, string(out))
}

func TestParseActivityLevel(t *testing.T) {
	lvl, err := ParseActivityLevel("1.55")
	require.NoError(t, err)
	assert.Equal(t, ActivityModerate, lvl)
	assert.InDelta(t, 1.55, lvl.Multiplier(), 1e-9)

	lvl, err = ParseActivityLevel("very-active")
	require.NoError(t, err)
	assert.Equal(t, ActivityVeryActive, lvl)

	assert.Zero(t, ActivityLevel("NAP").Multiplier())
}

func TestNewUserProfile(t *testing.T) {
	p, err := NewUserProfile(ProfileInput{
		Gender:           "male",
		Age:              30,
		Height:           175,
		Weight:           70,
		ActivityLevel:    "MODERATE",
		Goal:             "maintain",
		HealthConditions: []string{"Tree nut allergy", NoneOfTheAbove},
	})
	require.NoError(t, err)
	assert.Equal(t, DietNone, p.DietType)
	assert.Equal(t, []string{NoneOfTheAbove}, p.HealthConditions)
	assert.Equal(t, 2556, p.Calories)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.EqualValues(t, 2556, raw["targetCalories"])
	assert.Equal(t, "MODERATE", raw["activityLevel"])

	_, err = NewUserProfile(ProfileInput{Gender: "other", ActivityLevel: "LIGHT", Goal: "GAIN"})
	assert.Error(t, err)

	_, err = NewUserProfile(ProfileInput{Gender: "FEMALE", Age: -1, ActivityLevel: "LIGHT", Goal: "GAIN"})
	assert.Error(t, err)
}

func TestNewUserProfileZeroMeasurementsKeepsZeroTargets(t *testing.T) {
	p, err := NewUserProfile(ProfileInput{Gender: "FEMALE", ActivityLevel: "LIGHT", Goal: "LOSE"})
	require.NoError(t, err)
	assert.True(t, p.Targets.IsZero())
}

func TestMealDraftValidate(t *testing.T) {
	assert.NoError(t, MealDraft{Name: "Salad", Calories: 0}.Validate())
	assert.Error(t, MealDraft{Name: "  "}.Validate())
	assert.Error(t, MealDraft{Name: "Soup", Fat: -1}.Validate())
	assert.Error(t, MealDraft{Name: "Soup", Carbs: math.NaN()}.Validate())
}

func TestSumMeals(t *testing.T) {
	assert.Equal(t, Totals{}, SumMeals(nil))

	got := SumMeals([]Meal{
		{Calories: 300, Protein: 20, Carbs: 30, Fat: 10},
		{Calories: 450.5, Protein: 25, Carbs: 40, Fat: 15},
	})
	assert.Equal(t, Totals{Calories: 750.5, Protein: 45, Carbs: 70, Fat: 25}, got)

	rem := got.Remaining(Targets{Calories: 2000, Protein: 40, Carbs: 100, Fat: 60})
	assert.Equal(t, Totals{Calories: 1249.5, Protein: 0, Carbs: 30, Fat: 35}, rem)
}

func TestDateKeys(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2024, 3, 9, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-09", DateKey(late))
	assert.Equal(t, "2024-03-10", DateKey(late.UTC()))

	prev, err := ShiftDateKey("2024-03-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", prev)

	_, err = ParseDateKey("09/03/2024", loc)
	assert.Error(t, err)
}
