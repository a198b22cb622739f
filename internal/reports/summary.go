package reports

import (
	"sort"
	"time"

	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

const (
	chartDays  = 7
	recentDays = 10
)

// Summary builds the history view: the last seven logged days for the chart
// (oldest first) and the last ten for the list (newest first).
func Summary(s state.AppState) HistorySummary {
	targets := s.Targets()
	out := HistorySummary{
		TargetCalories: targets.Calories,
		Streak:         s.Streak,
		Chart:          []ChartPoint{},
		Recent:         []DayRow{},
	}
	if p, ok := s.Profile.Get(); ok {
		out.Goal = string(p.Goal)
	}

	dates := make([]string, 0, len(s.Logs))
	for d := range s.Logs {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	chartFrom := max(0, len(dates)-chartDays)
	for _, d := range dates[chartFrom:] {
		kcal := nutrition.SumMeals(s.Logs[d].Meals).Calories
		out.Chart = append(out.Chart, ChartPoint{
			Date:     d,
			Label:    weekdayLabel(d),
			Calories: kcal,
			Over:     kcal > float64(targets.Calories),
		})
	}

	for i := len(dates) - 1; i >= 0 && len(out.Recent) < recentDays; i-- {
		out.Recent = append(out.Recent, dayRow(s.Logs[dates[i]], targets))
	}
	return out
}

// Rows returns one row per logged day in [from, to], oldest first.
func Rows(s state.AppState, from, to string) []DayRow {
	targets := s.Targets()
	logs := s.LogsBetween(from, to)
	rows := make([]DayRow, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, dayRow(l, targets))
	}
	return rows
}

func dayRow(l nutrition.DailyLog, targets nutrition.Targets) DayRow {
	t := nutrition.SumMeals(l.Meals)
	return DayRow{
		Date:     l.Date,
		Meals:    len(l.Meals),
		Calories: t.Calories,
		Protein:  t.Protein,
		Carbs:    t.Carbs,
		Fat:      t.Fat,
		OnTarget: state.OnTarget(t.Calories, targets.Calories),
	}
}

func weekdayLabel(date string) string {
	t, err := time.Parse(nutrition.DateKeyLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Mon")
}
