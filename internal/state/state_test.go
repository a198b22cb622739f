package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

func TestDefaultEncoding(t *testing.T) {
	data, err := Encode(Default())
	require.NoError(t, err)
	assert.JSONEq(t, `{"profile":null,"logs":{},"streak":0,"recommendedRecipes":[]}`, string(data))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p, err := nutrition.NewUserProfile(nutrition.ProfileInput{
		Gender: "MALE", Age: 30, Height: 175, Weight: 70, ActivityLevel: "MODERATE", Goal: "MAINTAIN",
		DietType: "Keto", HealthConditions: []string{"Tree nut allergy"},
	})
	require.NoError(t, err)

	s := SetProfile(Default(), p)
	s = AddMeal(s, "2024-05-01", meal("a", 500))
	s = SetRecipes(s, []nutrition.Recipe{{ID: "r", Title: "Soup", Ingredients: []string{"water"}, Steps: []string{"boil"}}})
	s.Streak = 1

	data, err := Encode(s)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecodeLegacyNumericActivity(t *testing.T) {
	raw := `{"profile":{"gender":"FEMALE","age":30,"height":160,"weight":55,"activityLevel":1.375,"goal":"LOSE",
		"dietType":"Vegana","healthConditions":[],"targetCalories":1200,"targetProtein":110,"targetCarbs":133,"targetFat":33},
		"logs":{"2024-01-01":{"date":"2024-01-01","meals":[{"id":"x","name":"Tostada","calories":250,"protein":8,"carbs":30,"fat":9,"timestamp":1704100000000}]}},
		"streak":2,"recommendedRecipes":[]}`

	s, err := Decode([]byte(raw))
	require.NoError(t, err)
	p, ok := s.Profile.Get()
	require.True(t, ok)
	assert.Equal(t, nutrition.ActivityLight, p.ActivityLevel)
	assert.Equal(t, 1200, p.Calories)
	assert.Len(t, s.Logs["2024-01-01"].Meals, 1)
}

func TestDecodeRejectsCorruption(t *testing.T) {
	bad := []string{
		`not json`,
		`[]`,
		`{"logs":{"yesterday":{"date":"yesterday","meals":[]}}}`,
		`{"logs":{"2024-01-01":{"date":"2024-01-02","meals":[]}}}`,
		`{"logs":{"2024-01-01":{"date":"2024-01-01","meals":[{"name":"no id"}]}}}`,
		`{"streak":-1}`,
		`{"profile":{"activityLevel":"COUCH"}}`,
	}
	for _, raw := range bad {
		_, err := Decode([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestDecodeFillsMissingCollections(t *testing.T) {
	s, err := Decode([]byte(`{"profile":null}`))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestProfileOptionJSON(t *testing.T) {
	var holder struct {
		Profile Profile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"profile":null}`), &holder))
	assert.False(t, holder.Profile.IsPresent())

	require.NoError(t, json.Unmarshal([]byte(`{"profile":{"gender":"MALE","activityLevel":"LIGHT","goal":"GAIN"}}`), &holder))
	assert.True(t, holder.Profile.IsPresent())
}

func TestLogsBetween(t *testing.T) {
	s := Default()
	for _, d := range []string{"2024-01-03", "2024-01-01", "2024-01-02", "2024-01-05"} {
		s = AddMeal(s, d, meal(d, 10))
	}

	got := s.LogsBetween("2024-01-02", "2024-01-04")
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", got[0].Date)
	assert.Equal(t, "2024-01-03", got[1].Date)
	assert.Len(t, s.LogsBetween("", ""), 4)
}
