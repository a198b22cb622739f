package nutrition

import (
	"fmt"
	"time"
)

// DateKeyLayout is the layout of day keys in the log map.
const DateKeyLayout = "2006-01-02"

// DateKey formats t as a day key in t's own location.
// Callers pass local time; the key is never derived from UTC.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: expected YYYY-MM-DD", key)
	}
	return t, nil
}

// ShiftDateKey moves a valid key by days calendar days.
func ShiftDateKey(key string, days int) (string, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: expected YYYY-MM-DD", key)
	}
	return t.AddDate(0, 0, days).Format(DateKeyLayout), nil
}
