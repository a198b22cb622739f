package nutrition

import "math"

const (
	// MinCalories is the floor applied to any computed calorie target.
	MinCalories = 1200

	loseDeficit = 500
	gainSurplus = 300
)

// TargetsInput is everything the goal calculator looks at.
type TargetsInput struct {
	Gender        Gender
	Age           int
	Height        float64 // cm
	Weight        float64 // kg
	ActivityLevel ActivityLevel
	Goal          Goal
}

// BMR returns the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(g Gender, age int, height, weight float64) float64 {
	bmr := 10*weight + 6.25*height - 5*float64(age)
	if g == GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// ComputeTargets derives daily calorie and macro targets.
//
// Non-positive age, height or weight yields all-zero targets instead of an
// error. Otherwise calories never drop below MinCalories, protein is 1.8 g/kg
// when maintaining and 2.0 g/kg otherwise, fat covers 25% of calories and
// carbs take the remainder.
func ComputeTargets(in TargetsInput) Targets {
	if in.Age <= 0 || in.Height <= 0 || in.Weight <= 0 {
		return Targets{}
	}

	tdee := BMR(in.Gender, in.Age, in.Height, in.Weight) * in.ActivityLevel.Multiplier()

	calories := tdee
	switch in.Goal {
	case GoalLose:
		calories -= loseDeficit
	case GoalGain:
		calories += gainSurplus
	}
	cal := max(MinCalories, round(calories))

	ratio := 2.0
	if in.Goal == GoalMaintain {
		ratio = 1.8
	}
	protein := round(in.Weight * ratio)
	fat := round(float64(cal) * 0.25 / 9)
	carbs := max(0, round(float64(cal-protein*4-fat*9)/4))

	return Targets{
		Calories: cal,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
	}
}

// round rounds half up, matching how the targets were always displayed.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
