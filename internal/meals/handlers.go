// Package meals serves the daily log: manual entry, edits, removal,
// ingestion and per-day views.
package meals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/ingest"
	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

const maxRangeDays = 366

// Ingester turns capture input into a meal draft.
type Ingester interface {
	Ingest(ctx context.Context, in ingest.Input) (nutrition.MealDraft, error)
}

// Handler содержит HTTP обработчики для журнала питания
type Handler struct {
	store        *state.Store
	ingester     Ingester
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewHandler создаёт новый handler. maxBodyBytes bounds ingestion payloads.
func NewHandler(store *state.Store, ingester Ingester, logger *zap.Logger, maxBodyBytes int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, ingester: ingester, logger: logger, maxBodyBytes: maxBodyBytes}
}

// HandleToday обрабатывает GET /v1/today
func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, dayResponse(h.store.Snapshot(), h.store.Today()))
}

// HandleDay обрабатывает GET /v1/logs/{date}
func (h *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := nutrition.ParseDateKey(date, h.store.Location()); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_date", "Date must be YYYY-MM-DD")
		return
	}
	h.sendJSON(w, http.StatusOK, dayResponse(h.store.Snapshot(), date))
}

// HandleRange обрабатывает GET /v1/logs?from=&to=
// Both bounds default to today; only days with a log are returned.
func (h *Handler) HandleRange(w http.ResponseWriter, r *http.Request) {
	today := h.store.Today()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = today
	}
	if to == "" {
		to = today
	}

	loc := h.store.Location()
	fromT, err := nutrition.ParseDateKey(from, loc)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_from", "from must be YYYY-MM-DD")
		return
	}
	toT, err := nutrition.ParseDateKey(to, loc)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_to", "to must be YYYY-MM-DD")
		return
	}
	if toT.Before(fromT) {
		h.sendError(w, http.StatusBadRequest, "invalid_range", "from must not be after to")
		return
	}
	if toT.Sub(fromT).Hours()/24 > maxRangeDays {
		h.sendError(w, http.StatusBadRequest, "range_too_large", "Range must not exceed "+strconv.Itoa(maxRangeDays)+" days")
		return
	}

	snap := h.store.Snapshot()
	logs := snap.LogsBetween(from, to)
	days := make([]DayResponse, 0, len(logs))
	for _, l := range logs {
		days = append(days, dayResponse(snap, l.Date))
	}
	h.sendJSON(w, http.StatusOK, LogsResponse{From: from, To: to, Days: days})
}

// HandleAdd обрабатывает POST /v1/meals
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req MealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	meal, err := h.store.AddMeal(r.Context(), req.Date, req.MealDraft)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_meal", err.Error())
		return
	}
	h.sendJSON(w, http.StatusCreated, meal)
}

// HandleUpdate обрабатывает PATCH /v1/meals/{id}
// Only nutritional fields change; id and timestamp are kept.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req MealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	meal, err := h.store.UpdateMeal(r.Context(), req.Date, id, req.MealDraft)
	if err != nil {
		if errors.Is(err, state.ErrMealNotFound) {
			h.sendError(w, http.StatusNotFound, "meal_not_found", "Meal not found")
			return
		}
		h.sendError(w, http.StatusBadRequest, "invalid_meal", err.Error())
		return
	}
	h.sendJSON(w, http.StatusOK, meal)
}

// HandleDelete обрабатывает DELETE /v1/meals/{id}?date=
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.store.RemoveMeal(r.Context(), r.URL.Query().Get("date"), id) {
		h.sendError(w, http.StatusNotFound, "meal_not_found", "Meal not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleIngest обрабатывает POST /v1/meals/ingest
// The draft is returned for review; with commit it is also added to today's
// log, computed against the state current when the inference call returns.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Upload is too large")
			return
		}
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}
	if c := r.URL.Query().Get("commit"); c != "" {
		req.Commit, _ = strconv.ParseBool(c)
	}

	// A committed ingestion outlives the request: the user may close the form
	// while inference runs. The pipeline timeout still bounds the call.
	ctx := r.Context()
	if req.Commit {
		ctx = context.WithoutCancel(ctx)
	}

	draft, err := h.ingester.Ingest(ctx, req.Input)
	if err != nil {
		if errors.Is(err, ingest.ErrNoInput) {
			h.sendError(w, http.StatusBadRequest, "no_input", "Provide a description, a photo or a voice note")
			return
		}
		h.sendError(w, http.StatusUnprocessableEntity, "ingestion_failed", "Could not process the meal, please try again")
		return
	}

	resp := IngestResponse{Draft: draft}
	if req.Commit {
		meal, err := h.store.AddMeal(ctx, "", draft)
		if err != nil {
			h.logger.Error("meals: commit ingested draft failed", zap.Error(err))
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to save the meal")
			return
		}
		resp.Meal = &meal
	}
	h.sendJSON(w, http.StatusOK, resp)
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
