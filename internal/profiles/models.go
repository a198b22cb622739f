package profiles

import "github.com/fdg312/nutri-hub/internal/nutrition"

// ProfileResponse — ответ для GET/PUT /v1/profile
type ProfileResponse struct {
	Profile nutrition.UserProfile `json:"profile"`
}

// ToggleConditionRequest — запрос для POST /v1/profile/conditions/toggle
type ToggleConditionRequest struct {
	Label string `json:"label"`
}

// ErrorResponse — формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
