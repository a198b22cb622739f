package nutrition

import "strings"

// DietNone is the diet label used when the user follows no particular diet.
const DietNone = "None"

// NoneOfTheAbove is the health-condition sentinel. It never coexists with
// other conditions.
const NoneOfTheAbove = "None of the above"

// DietSuggestions are the diet labels offered during onboarding.
// DietType stays free-form; these are only suggestions.
var DietSuggestions = []string{
	DietNone,
	"Vegan",
	"Vegetarian",
	"Keto",
	"Paleo",
	"Mediterranean",
	"Gluten Free",
}

// HealthConditionSuggestions are the condition labels offered during onboarding.
var HealthConditionSuggestions = []string{
	NoneOfTheAbove,
	"Celiac disease (gluten free)",
	"Lactose intolerance",
	"Diabetes (sugar control)",
	"Hypertension (low sodium)",
	"Kidney failure (protein/potassium control)",
	"Hyperuricemia / gout (no purines)",
	"Gastritis / reflux (no irritants)",
	"Tree nut allergy",
	"Fatty liver (low saturated fat)",
}

// ToggleCondition applies one tap on a condition chip.
// Selecting the sentinel clears everything else; selecting anything else
// drops the sentinel and flips that label.
func ToggleCondition(current []string, label string) []string {
	label = strings.TrimSpace(label)
	if label == "" {
		return append([]string(nil), current...)
	}
	if isNone(label) {
		return []string{NoneOfTheAbove}
	}

	out := make([]string, 0, len(current)+1)
	found := false
	for _, c := range current {
		if isNone(c) {
			continue
		}
		if strings.EqualFold(c, label) {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		out = append(out, label)
	}
	return out
}

// NormalizeConditions trims, drops empties and case-insensitive duplicates,
// and enforces sentinel exclusivity. When the sentinel is mixed with other
// labels the last entry decides, the same outcome as tapping the labels in order.
func NormalizeConditions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	lastIsNone := false
	hasOther := false

	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if isNone(c) {
			lastIsNone = true
			continue
		}
		lastIsNone = false
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		hasOther = true
		out = append(out, c)
	}

	if lastIsNone || (!hasOther && containsNone(in)) {
		return []string{NoneOfTheAbove}
	}
	return out
}

func isNone(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), NoneOfTheAbove)
}

func containsNone(in []string) bool {
	for _, c := range in {
		if isNone(c) {
			return true
		}
	}
	return false
}
