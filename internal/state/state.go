// Package state holds the single source of truth of the application: the
// AppState value, the pure transitions over it and the Store that serializes
// them.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

// Profile is an optional UserProfile. The zero value is pending (onboarding
// not finished). It encodes as JSON null when pending.
type Profile struct {
	p *nutrition.UserProfile
}

// Present wraps a completed profile.
func Present(p nutrition.UserProfile) Profile {
	c := p.Clone()
	return Profile{p: &c}
}

// Pending is the profile of a user who has not finished onboarding.
func Pending() Profile {
	return Profile{}
}

// Get returns the profile and whether it is present.
func (o Profile) Get() (nutrition.UserProfile, bool) {
	if o.p == nil {
		return nutrition.UserProfile{}, false
	}
	return o.p.Clone(), true
}

// IsPresent reports whether onboarding is complete.
func (o Profile) IsPresent() bool {
	return o.p != nil
}

func (o Profile) MarshalJSON() ([]byte, error) {
	if o.p == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.p)
}

func (o *Profile) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.p = nil
		return nil
	}
	var p nutrition.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	o.p = &p
	return nil
}

// AppState is the whole persisted application state.
type AppState struct {
	Profile            Profile                       `json:"profile"`
	Logs               map[string]nutrition.DailyLog `json:"logs"`
	Streak             int                           `json:"streak"`
	RecommendedRecipes []nutrition.Recipe            `json:"recommendedRecipes"`
}

// Default returns the canonical empty state.
func Default() AppState {
	return AppState{
		Profile:            Pending(),
		Logs:               map[string]nutrition.DailyLog{},
		Streak:             0,
		RecommendedRecipes: []nutrition.Recipe{},
	}
}

// Clone returns a deep copy so callers can never alias store internals.
func (s AppState) Clone() AppState {
	out := AppState{
		Streak:             s.Streak,
		Logs:               make(map[string]nutrition.DailyLog, len(s.Logs)),
		RecommendedRecipes: make([]nutrition.Recipe, len(s.RecommendedRecipes)),
	}
	if p, ok := s.Profile.Get(); ok {
		out.Profile = Present(p)
	}
	for k, l := range s.Logs {
		out.Logs[k] = l.Clone()
	}
	for i, r := range s.RecommendedRecipes {
		r.Ingredients = append([]string(nil), r.Ingredients...)
		r.Steps = append([]string(nil), r.Steps...)
		out.RecommendedRecipes[i] = r
	}
	return out
}

// Targets returns the profile targets, or zero targets while onboarding is pending.
func (s AppState) Targets() nutrition.Targets {
	if p, ok := s.Profile.Get(); ok {
		return p.Targets
	}
	return nutrition.Targets{}
}

// Log returns the log for a date key. Missing days yield an empty log.
func (s AppState) Log(date string) (nutrition.DailyLog, bool) {
	l, ok := s.Logs[date]
	if !ok {
		return nutrition.DailyLog{Date: date, Meals: []nutrition.Meal{}}, false
	}
	return l.Clone(), true
}

// LogsBetween returns logs with from <= date <= to sorted by date.
// Empty bounds are open.
func (s AppState) LogsBetween(from, to string) []nutrition.DailyLog {
	out := make([]nutrition.DailyLog, 0, len(s.Logs))
	for k, l := range s.Logs {
		if from != "" && k < from {
			continue
		}
		if to != "" && k > to {
			continue
		}
		out = append(out, l.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Decode parses a persisted snapshot. Anything that is not a well-formed
// AppState is reported as an error; callers treat that as corruption.
func Decode(data []byte) (AppState, error) {
	var s AppState
	if err := json.Unmarshal(data, &s); err != nil {
		return AppState{}, err
	}
	if s.Logs == nil {
		s.Logs = map[string]nutrition.DailyLog{}
	}
	if s.RecommendedRecipes == nil {
		s.RecommendedRecipes = []nutrition.Recipe{}
	}
	if err := s.validate(); err != nil {
		return AppState{}, err
	}
	return s, nil
}

// Encode serializes the full snapshot.
func Encode(s AppState) ([]byte, error) {
	if s.Logs == nil {
		s.Logs = map[string]nutrition.DailyLog{}
	}
	if s.RecommendedRecipes == nil {
		s.RecommendedRecipes = []nutrition.Recipe{}
	}
	return json.Marshal(s)
}

func (s AppState) validate() error {
	if s.Streak < 0 {
		return fmt.Errorf("negative streak %d", s.Streak)
	}
	for key, l := range s.Logs {
		if _, err := nutrition.ParseDateKey(key, nil); err != nil {
			return err
		}
		if l.Date != key {
			return fmt.Errorf("log %q has date %q", key, l.Date)
		}
		for _, m := range l.Meals {
			if m.ID == "" {
				return fmt.Errorf("log %q has a meal without id", key)
			}
		}
	}
	return nil
}
