package nutrition

import (
	"encoding/json"
	"net/http"
)

// Handler serves the stateless calculator endpoints.
type Handler struct{}

// NewHandler creates a new nutrition handler.
func NewHandler() *Handler {
	return &Handler{}
}

// PreviewResponse is returned by POST /v1/targets/preview.
type PreviewResponse struct {
	Targets Targets `json:"targets"`
	BMR     int     `json:"bmr"`
	TDEE    int     `json:"tdee"`
}

// OptionsResponse is returned by GET /v1/targets/options.
type OptionsResponse struct {
	Diets            []string        `json:"diets"`
	HealthConditions []string        `json:"healthConditions"`
	NoneOfTheAbove   string          `json:"noneOfTheAbove"`
	ActivityLevels   []ActivityLevel `json:"activityLevels"`
	Goals            []Goal          `json:"goals"`
}

// HandlePreviewTargets handles POST /v1/targets/preview
// It runs the calculator on the onboarding form without storing anything.
func (h *Handler) HandlePreviewTargets(w http.ResponseWriter, r *http.Request) {
	var req ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	in, err := req.TargetsInput()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, Preview(in))
}

// Preview runs the calculator and reports the intermediate BMR and TDEE.
// Both stay zero when the input yields no targets.
func Preview(in TargetsInput) PreviewResponse {
	resp := PreviewResponse{Targets: ComputeTargets(in)}
	if !resp.Targets.IsZero() {
		bmr := BMR(in.Gender, in.Age, in.Height, in.Weight)
		resp.BMR = round(bmr)
		resp.TDEE = round(bmr * in.ActivityLevel.Multiplier())
	}
	return resp
}

// HandleOptions handles GET /v1/targets/options
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, OptionsResponse{
		Diets:            DietSuggestions,
		HealthConditions: HealthConditionSuggestions,
		NoneOfTheAbove:   NoneOfTheAbove,
		ActivityLevels:   ActivityLevels,
		Goals:            []Goal{GoalLose, GoalMaintain, GoalGain},
	})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes an error response in the standard format.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
