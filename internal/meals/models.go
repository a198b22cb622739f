package meals

import (
	"github.com/fdg312/nutri-hub/internal/ingest"
	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

// DayResponse is one day's log with its aggregates.
type DayResponse struct {
	Date      string            `json:"date"`
	Meals     []nutrition.Meal  `json:"meals"`
	Totals    nutrition.Totals  `json:"totals"`
	Targets   nutrition.Targets `json:"targets"`
	Remaining nutrition.Totals  `json:"remaining"`
	Streak    int               `json:"streak"`
	Onboarded bool              `json:"onboarded"`
}

// LogsResponse is returned by GET /v1/logs.
type LogsResponse struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Days []DayResponse `json:"days"`
}

// MealRequest is the body of POST /v1/meals and PATCH /v1/meals/{id}.
type MealRequest struct {
	nutrition.MealDraft
	// Date defaults to today.
	Date string `json:"date,omitempty"`
}

// IngestRequest is the body of POST /v1/meals/ingest.
type IngestRequest struct {
	ingest.Input
	Commit bool `json:"commit,omitempty"`
}

// IngestResponse carries the draft, and the stored meal when committed.
type IngestResponse struct {
	Draft nutrition.MealDraft `json:"draft"`
	Meal  *nutrition.Meal     `json:"meal,omitempty"`
}

func dayResponse(s state.AppState, date string) DayResponse {
	l, _ := s.Log(date)
	totals := nutrition.SumMeals(l.Meals)
	targets := s.Targets()
	meals := l.Meals
	if meals == nil {
		meals = []nutrition.Meal{}
	}
	return DayResponse{
		Date:      date,
		Meals:     meals,
		Totals:    totals,
		Targets:   targets,
		Remaining: totals.Remaining(targets),
		Streak:    s.Streak,
		Onboarded: s.Profile.IsPresent(),
	}
}
