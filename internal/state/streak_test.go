package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

func stateWithTarget(target int) AppState {
	s := Default()
	s.Profile = Present(nutrition.UserProfile{Targets: nutrition.Targets{Calories: target}})
	return s
}

func TestComputeStreak(t *testing.T) {
	s := stateWithTarget(2000)
	s = AddMeal(s, "2024-03-01", meal("a", 1800))
	s = AddMeal(s, "2024-03-02", meal("b", 1900))
	s = AddMeal(s, "2024-03-03", meal("c", 1500))

	assert.Equal(t, 3, ComputeStreak(s, "2024-03-03"))

	// Today not logged yet: yesterday's run still counts.
	assert.Equal(t, 3, ComputeStreak(s, "2024-03-04"))

	// A gap of a full day resets.
	assert.Equal(t, 0, ComputeStreak(s, "2024-03-05"))
}

func TestComputeStreakOverTargetBreaks(t *testing.T) {
	s := stateWithTarget(2000)
	s = AddMeal(s, "2024-03-01", meal("a", 1800))
	s = AddMeal(s, "2024-03-02", meal("b", 2500))
	s = AddMeal(s, "2024-03-03", meal("c", 1500))

	assert.Equal(t, 1, ComputeStreak(s, "2024-03-03"))

	// An empty logged day does not count either.
	s = AddMeal(s, "2024-03-04", meal("d", 100))
	s = RemoveMeal(s, "2024-03-04", "d")
	assert.Equal(t, 1, ComputeStreak(s, "2024-03-04"))
}

func TestComputeStreakWithoutProfile(t *testing.T) {
	s := AddMeal(Default(), "2024-03-01", meal("a", 1800))
	assert.Equal(t, 0, ComputeStreak(s, "2024-03-01"))
	assert.Equal(t, 0, ComputeStreak(stateWithTarget(0), "2024-03-01"))
}

func TestComputeStreakAcrossMonthBoundary(t *testing.T) {
	s := stateWithTarget(2000)
	s = AddMeal(s, "2024-02-29", meal("a", 1000))
	s = AddMeal(s, "2024-03-01", meal("b", 1000))
	assert.Equal(t, 2, ComputeStreak(s, "2024-03-01"))
}
