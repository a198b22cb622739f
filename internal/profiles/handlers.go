package profiles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

// Handler содержит HTTP обработчики для профиля
type Handler struct {
	service *Service
}

// NewHandler создаёт новый handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet обрабатывает GET /v1/profile
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get()
	if err != nil {
		h.sendError(w, http.StatusNotFound, "onboarding_pending", "Profile is not set up yet")
		return
	}
	h.sendJSON(w, http.StatusOK, ProfileResponse{Profile: p})
}

// HandlePut обрабатывает PUT /v1/profile
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req nutrition.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	p, err := h.service.Put(r.Context(), req)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_profile", err.Error())
		return
	}
	h.sendJSON(w, http.StatusOK, ProfileResponse{Profile: p})
}

// HandleToggleCondition обрабатывает POST /v1/profile/conditions/toggle
func (h *Handler) HandleToggleCondition(w http.ResponseWriter, r *http.Request) {
	var req ToggleConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	p, err := h.service.ToggleCondition(r.Context(), req.Label)
	if err != nil {
		if errors.Is(err, ErrOnboardingPending) {
			h.sendError(w, http.StatusNotFound, "onboarding_pending", "Profile is not set up yet")
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to update profile")
		return
	}
	h.sendJSON(w, http.StatusOK, ProfileResponse{Profile: p})
}

// HandleDelete обрабатывает DELETE /v1/profile
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.service.Delete(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError отправляет ошибку в формате ErrorResponse
func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
