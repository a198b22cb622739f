package recipes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

// Handler serves the recommendation endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListResponse is returned by both endpoints.
type ListResponse struct {
	Recipes []nutrition.Recipe `json:"recipes"`
	Applied *bool              `json:"applied,omitempty"`
}

// HandleList handles GET /v1/recipes
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, ListResponse{Recipes: h.service.Current()})
}

// HandleRefresh handles POST /v1/recipes/refresh
// Fetch failures still return 200 with an empty list.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	list, applied, err := h.service.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoProfile) {
			h.sendError(w, http.StatusConflict, "onboarding_pending", "Complete your profile first")
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to refresh recipes")
		return
	}
	h.sendJSON(w, http.StatusOK, ListResponse{Recipes: list, Applied: &applied})
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.sendJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
