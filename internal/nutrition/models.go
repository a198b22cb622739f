package nutrition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Gender is the sex used by the BMR formula.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// ParseGender accepts MALE/FEMALE in any case.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("unknown gender %q", s)
	}
}

// ActivityLevel is a named TDEE multiplier.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "SEDENTARY"
	ActivityLight      ActivityLevel = "LIGHT"
	ActivityModerate   ActivityLevel = "MODERATE"
	ActivityActive     ActivityLevel = "ACTIVE"
	ActivityVeryActive ActivityLevel = "VERY_ACTIVE"
)

// activityMultipliers is the single source of truth for valid activity levels.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// ActivityLevels lists the levels from least to most active.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLight,
	ActivityModerate,
	ActivityActive,
	ActivityVeryActive,
}

// Multiplier returns the TDEE factor, or 0 for an unknown level.
func (a ActivityLevel) Multiplier() float64 {
	return activityMultipliers[a]
}

// ParseActivityLevel accepts a level name ("moderate", "VERY_ACTIVE")
// or its multiplier written as a number ("1.55").
func ParseActivityLevel(s string) (ActivityLevel, error) {
	s = strings.TrimSpace(s)
	name := ActivityLevel(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	if _, ok := activityMultipliers[name]; ok {
		return name, nil
	}
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err == nil {
		if lvl, ok := activityFromMultiplier(f); ok {
			return lvl, nil
		}
	}
	return "", fmt.Errorf("unknown activity level %q", s)
}

func activityFromMultiplier(f float64) (ActivityLevel, bool) {
	for lvl, m := range activityMultipliers {
		if math.Abs(m-f) < 1e-9 {
			return lvl, true
		}
	}
	return "", false
}

// UnmarshalJSON accepts both the level name and the bare multiplier,
// so snapshots that stored the numeric form still load.
func (a *ActivityLevel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		lvl, err := ParseActivityLevel(s)
		if err != nil {
			return err
		}
		*a = lvl
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("activity level: %w", err)
	}
	lvl, ok := activityFromMultiplier(f)
	if !ok {
		return fmt.Errorf("unknown activity multiplier %v", f)
	}
	*a = lvl
	return nil
}

// Goal is the weight direction the user is aiming for.
type Goal string

const (
	GoalLose     Goal = "LOSE"
	GoalMaintain Goal = "MAINTAIN"
	GoalGain     Goal = "GAIN"
)

// ParseGoal accepts LOSE/MAINTAIN/GAIN in any case.
func ParseGoal(s string) (Goal, error) {
	switch Goal(strings.ToUpper(strings.TrimSpace(s))) {
	case GoalLose:
		return GoalLose, nil
	case GoalMaintain:
		return GoalMaintain, nil
	case GoalGain:
		return GoalGain, nil
	default:
		return "", fmt.Errorf("unknown goal %q", s)
	}
}

// Targets are the daily calorie and macro goals.
type Targets struct {
	Calories int `json:"targetCalories"`
	Protein  int `json:"targetProtein"`
	Carbs    int `json:"targetCarbs"`
	Fat      int `json:"targetFat"`
}

// IsZero reports whether no targets could be computed.
func (t Targets) IsZero() bool {
	return t == Targets{}
}

// UserProfile is the onboarding result. Targets are always derived from the
// anthropometric fields; use NewUserProfile to build one.
type UserProfile struct {
	Gender           Gender        `json:"gender"`
	Age              int           `json:"age"`
	Height           float64       `json:"height"`
	Weight           float64       `json:"weight"`
	ActivityLevel    ActivityLevel `json:"activityLevel"`
	Goal             Goal          `json:"goal"`
	DietType         string        `json:"dietType"`
	HealthConditions []string      `json:"healthConditions"`
	Targets
}

// ProfileInput is the onboarding form payload.
type ProfileInput struct {
	Gender           string   `json:"gender"`
	Age              int      `json:"age"`
	Height           float64  `json:"height"`
	Weight           float64  `json:"weight"`
	ActivityLevel    string   `json:"activityLevel"`
	Goal             string   `json:"goal"`
	DietType         string   `json:"dietType"`
	HealthConditions []string `json:"healthConditions"`
}

// TargetsInput parses the enum fields of the form into calculator input.
func (in ProfileInput) TargetsInput() (TargetsInput, error) {
	gender, err := ParseGender(in.Gender)
	if err != nil {
		return TargetsInput{}, err
	}
	activity, err := ParseActivityLevel(in.ActivityLevel)
	if err != nil {
		return TargetsInput{}, err
	}
	goal, err := ParseGoal(in.Goal)
	if err != nil {
		return TargetsInput{}, err
	}
	return TargetsInput{
		Gender:        gender,
		Age:           in.Age,
		Height:        in.Height,
		Weight:        in.Weight,
		ActivityLevel: activity,
		Goal:          goal,
	}, nil
}

// NewUserProfile validates the form and builds a profile with computed targets.
func NewUserProfile(in ProfileInput) (UserProfile, error) {
	ti, err := in.TargetsInput()
	if err != nil {
		return UserProfile{}, err
	}
	if in.Age < 0 || in.Height < 0 || in.Weight < 0 {
		return UserProfile{}, errors.New("age, height and weight must not be negative")
	}

	diet := strings.TrimSpace(in.DietType)
	if diet == "" {
		diet = DietNone
	}

	return UserProfile{
		Gender:           ti.Gender,
		Age:              ti.Age,
		Height:           ti.Height,
		Weight:           ti.Weight,
		ActivityLevel:    ti.ActivityLevel,
		Goal:             ti.Goal,
		DietType:         diet,
		HealthConditions: NormalizeConditions(in.HealthConditions),
		Targets:          ComputeTargets(ti),
	}, nil
}

// Clone returns a deep copy.
func (p UserProfile) Clone() UserProfile {
	p.HealthConditions = append(make([]string, 0, len(p.HealthConditions)), p.HealthConditions...)
	return p
}

// MealDraft is a meal without identity, as produced by manual entry or ingestion.
type MealDraft struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Validate checks the name is non-empty and every amount is non-negative.
func (d MealDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("name is required")
	}
	for _, f := range []struct {
		field string
		v     float64
	}{
		{"calories", d.Calories},
		{"protein", d.Protein},
		{"carbs", d.Carbs},
		{"fat", d.Fat},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be a non-negative number", f.field)
		}
	}
	return nil
}

// Meal is a logged meal. ID and Timestamp never change after creation.
type Meal struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
}

// Draft returns the editable part of the meal.
func (m Meal) Draft() MealDraft {
	return MealDraft{Name: m.Name, Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat}
}

// DailyLog holds the meals of one date key in insertion order.
type DailyLog struct {
	Date  string `json:"date"`
	Meals []Meal `json:"meals"`
}

// Clone returns a copy that shares nothing with l.
func (l DailyLog) Clone() DailyLog {
	meals := make([]Meal, len(l.Meals))
	copy(meals, l.Meals)
	return DailyLog{Date: l.Date, Meals: meals}
}

// Totals is the field-wise sum over a set of meals.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// SumMeals folds meals into totals. An empty list sums to zero.
func SumMeals(meals []Meal) Totals {
	var t Totals
	for _, m := range meals {
		t.Calories += m.Calories
		t.Protein += m.Protein
		t.Carbs += m.Carbs
		t.Fat += m.Fat
	}
	return t
}

// Remaining returns target minus consumed, clamped at zero per field.
func (t Totals) Remaining(targets Targets) Totals {
	clamp := func(v float64) float64 { return math.Max(0, v) }
	return Totals{
		Calories: clamp(float64(targets.Calories) - t.Calories),
		Protein:  clamp(float64(targets.Protein) - t.Protein),
		Carbs:    clamp(float64(targets.Carbs) - t.Carbs),
		Fat:      clamp(float64(targets.Fat) - t.Fat),
	}
}

// Recipe is an AI-suggested recipe. Recipes are replaced as a batch.
type Recipe struct {
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
