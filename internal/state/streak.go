package state

import "github.com/fdg312/nutri-hub/internal/nutrition"

// OnTarget reports whether a day's calories count towards the streak:
// something was logged and the calorie target was not exceeded.
func OnTarget(calories float64, target int) bool {
	return target > 0 && calories > 0 && calories <= float64(target)
}

// ComputeStreak counts consecutive on-target days ending today. A day that
// is not on target yet does not break the streak until it is over, so when
// today does not qualify the count starts from yesterday.
func ComputeStreak(s AppState, today string) int {
	target := s.Targets().Calories
	if target <= 0 {
		return 0
	}

	qualifies := func(date string) bool {
		l, ok := s.Logs[date]
		if !ok {
			return false
		}
		return OnTarget(nutrition.SumMeals(l.Meals).Calories, target)
	}

	day := today
	if !qualifies(day) {
		prev, err := nutrition.ShiftDateKey(day, -1)
		if err != nil {
			return 0
		}
		day = prev
	}

	streak := 0
	for qualifies(day) {
		streak++
		prev, err := nutrition.ShiftDateKey(day, -1)
		if err != nil {
			break
		}
		day = prev
	}
	return streak
}

// WithStreak returns s with the streak recomputed for today.
func WithStreak(s AppState, today string) AppState {
	s.Streak = ComputeStreak(s, today)
	return s
}
