package reports

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

func stateWithDays(t *testing.T, days int, kcal func(i int) float64) state.AppState {
	t.Helper()
	p, err := nutrition.NewUserProfile(nutrition.ProfileInput{
		Gender: "MALE", Age: 30, Height: 175, Weight: 70, ActivityLevel: "MODERATE", Goal: "MAINTAIN",
	})
	require.NoError(t, err)

	s := state.SetProfile(state.Default(), p)
	for i := 0; i < days; i++ {
		date := fmt.Sprintf("2024-05-%02d", i+1)
		s = state.AddMeal(s, date, nutrition.Meal{ID: fmt.Sprintf("m%d", i), Name: "Meal", Calories: kcal(i)})
	}
	return s
}

func TestSummaryWindows(t *testing.T) {
	s := stateWithDays(t, 12, func(i int) float64 { return float64(2000 + i*100) })
	sum := Summary(s)

	assert.Equal(t, 2556, sum.TargetCalories)
	assert.Equal(t, "MAINTAIN", sum.Goal)

	require.Len(t, sum.Chart, 7)
	assert.Equal(t, "2024-05-06", sum.Chart[0].Date)
	assert.Equal(t, "2024-05-12", sum.Chart[6].Date)
	assert.Equal(t, "Mon", sum.Chart[0].Label)
	assert.False(t, sum.Chart[0].Over)
	assert.True(t, sum.Chart[6].Over)

	require.Len(t, sum.Recent, 10)
	assert.Equal(t, "2024-05-12", sum.Recent[0].Date)
	assert.Equal(t, "2024-05-03", sum.Recent[9].Date)
	assert.True(t, sum.Recent[9].OnTarget)
	assert.False(t, sum.Recent[0].OnTarget)
}

func TestSummaryEmpty(t *testing.T) {
	sum := Summary(state.Default())
	assert.Zero(t, sum.TargetCalories)
	assert.NotNil(t, sum.Chart)
	assert.NotNil(t, sum.Recent)
	assert.Empty(t, sum.Recent)
}

func TestRowsRange(t *testing.T) {
	s := stateWithDays(t, 5, func(int) float64 { return 500 })
	rows := Rows(s, "2024-05-02", "2024-05-04")
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-05-02", rows[0].Date)
	assert.Equal(t, 1, rows[0].Meals)
}
