package meals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/nutri-hub/internal/ingest"
	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

type fakeIngester struct {
	draft nutrition.MealDraft
	err   error
	calls int
}

func (f *fakeIngester) Ingest(ctx context.Context, in ingest.Input) (nutrition.MealDraft, error) {
	f.calls++
	if in.IsEmpty() {
		return nutrition.MealDraft{}, &ingest.Error{Reason: ingest.ReasonNoInput, Err: ingest.ErrNoInput}
	}
	return f.draft, f.err
}

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestHandler(ing Ingester) (*Handler, *state.Store) {
	ids := 0
	store := state.NewStore(state.Default(),
		state.WithClock(func() time.Time { return fixedNow }),
		state.WithLocation(time.UTC),
		state.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("meal-%d", ids)
		}),
	)
	return NewHandler(store, ing, nil, 1<<20), store
}

func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/today", h.HandleToday)
	mux.HandleFunc("GET /v1/logs", h.HandleRange)
	mux.HandleFunc("GET /v1/logs/{date}", h.HandleDay)
	mux.HandleFunc("POST /v1/meals", h.HandleAdd)
	mux.HandleFunc("PATCH /v1/meals/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /v1/meals/{id}", h.HandleDelete)
	mux.HandleFunc("POST /v1/meals/ingest", h.HandleIngest)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestAddUpdateRemoveRoundTrip(t *testing.T) {
	h, store := newTestHandler(&fakeIngester{})
	mux := newMux(h)

	w := do(t, mux, http.MethodPost, "/v1/meals", `{"name":"Oats","calories":300,"protein":10,"carbs":50,"fat":6}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var meal nutrition.Meal
	if err := json.NewDecoder(w.Body).Decode(&meal); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if meal.ID != "meal-1" || meal.Timestamp != fixedNow.UnixMilli() {
		t.Fatalf("unexpected meal %+v", meal)
	}

	w = do(t, mux, http.MethodPatch, "/v1/meals/meal-1", `{"name":"Big oats","calories":450,"protein":15,"carbs":75,"fat":9}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var updated nutrition.Meal
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.ID != meal.ID || updated.Timestamp != meal.Timestamp || updated.Calories != 450 {
		t.Fatalf("update must keep identity, got %+v", updated)
	}

	w = do(t, mux, http.MethodDelete, "/v1/meals/meal-1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	l, _ := store.Snapshot().Log("2024-05-10")
	if len(l.Meals) != 0 {
		t.Fatalf("expected empty log, got %d meals", len(l.Meals))
	}
}

func TestUnknownMealIsNotFoundAndStateUnchanged(t *testing.T) {
	h, store := newTestHandler(&fakeIngester{})
	mux := newMux(h)
	do(t, mux, http.MethodPost, "/v1/meals", `{"name":"Oats","calories":300,"protein":10,"carbs":50,"fat":6}`)
	before := store.Snapshot()

	if w := do(t, mux, http.MethodPatch, "/v1/meals/nope", `{"name":"X","calories":1,"protein":1,"carbs":1,"fat":1}`); w.Code != http.StatusNotFound {
		t.Errorf("PATCH: expected 404, got %d", w.Code)
	}
	if w := do(t, mux, http.MethodDelete, "/v1/meals/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("DELETE: expected 404, got %d", w.Code)
	}

	after := store.Snapshot()
	if len(after.Logs["2024-05-10"].Meals) != len(before.Logs["2024-05-10"].Meals) {
		t.Error("state changed on unknown id")
	}
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	h, _ := newTestHandler(&fakeIngester{})
	w := do(t, newMux(h), http.MethodPost, "/v1/meals", `{"name":"","calories":-5}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTodayTotals(t *testing.T) {
	h, _ := newTestHandler(&fakeIngester{})
	mux := newMux(h)
	do(t, mux, http.MethodPost, "/v1/meals", `{"name":"A","calories":300,"protein":10,"carbs":50,"fat":6}`)
	do(t, mux, http.MethodPost, "/v1/meals", `{"name":"B","calories":200,"protein":5,"carbs":20,"fat":4}`)

	w := do(t, mux, http.MethodGet, "/v1/today", "")
	var resp DayResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Date != "2024-05-10" || len(resp.Meals) != 2 {
		t.Fatalf("unexpected day %+v", resp)
	}
	if resp.Totals != (nutrition.Totals{Calories: 500, Protein: 15, Carbs: 70, Fat: 10}) {
		t.Errorf("unexpected totals %+v", resp.Totals)
	}
	if resp.Onboarded {
		t.Error("no profile was set")
	}
}

func TestEmptyDayAggregatesToZero(t *testing.T) {
	h, _ := newTestHandler(&fakeIngester{})
	w := do(t, newMux(h), http.MethodGet, "/v1/logs/2024-01-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp DayResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Meals == nil || len(resp.Meals) != 0 || resp.Totals != (nutrition.Totals{}) {
		t.Errorf("expected empty day, got %+v", resp)
	}
}

func TestRangeValidation(t *testing.T) {
	h, _ := newTestHandler(&fakeIngester{})
	mux := newMux(h)

	cases := map[string]int{
		"/v1/logs/2024-13-01":                    http.StatusBadRequest,
		"/v1/logs?from=bad":                      http.StatusBadRequest,
		"/v1/logs?from=2024-05-10&to=2024-05-01": http.StatusBadRequest,
		"/v1/logs?from=2020-01-01&to=2024-05-01": http.StatusBadRequest,
		"/v1/logs?from=2024-05-01&to=2024-05-10": http.StatusOK,
	}
	for target, want := range cases {
		if w := do(t, mux, http.MethodGet, target, ""); w.Code != want {
			t.Errorf("%s: expected %d, got %d", target, want, w.Code)
		}
	}
}

func TestIngestReturnsDraftWithoutCommit(t *testing.T) {
	ing := &fakeIngester{draft: nutrition.MealDraft{Name: "Soup", Calories: 200, Protein: 8, Carbs: 20, Fat: 6}}
	h, store := newTestHandler(ing)

	w := do(t, newMux(h), http.MethodPost, "/v1/meals/ingest", `{"text":"soup"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp IngestResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Draft.Name != "Soup" || resp.Meal != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(store.Snapshot().Logs) != 0 {
		t.Error("draft must not be stored without commit")
	}
}

func TestIngestCommit(t *testing.T) {
	ing := &fakeIngester{draft: nutrition.MealDraft{Name: "Soup", Calories: 200, Protein: 8, Carbs: 20, Fat: 6}}
	h, store := newTestHandler(ing)

	w := do(t, newMux(h), http.MethodPost, "/v1/meals/ingest?commit=true", `{"text":"soup"}`)
	var resp IngestResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Meal == nil || resp.Meal.Name != "Soup" {
		t.Fatalf("expected committed meal, got %+v", resp)
	}
	if l, _ := store.Snapshot().Log("2024-05-10"); len(l.Meals) != 1 {
		t.Errorf("expected 1 stored meal, got %d", len(l.Meals))
	}
}

// slowIngester blocks until released or until its context is cancelled.
type slowIngester struct {
	draft   nutrition.MealDraft
	started chan struct{}
	release chan struct{}
}

func (s *slowIngester) Ingest(ctx context.Context, in ingest.Input) (nutrition.MealDraft, error) {
	close(s.started)
	select {
	case <-s.release:
		return s.draft, nil
	case <-ctx.Done():
		return nutrition.MealDraft{}, &ingest.Error{Reason: ingest.ReasonInferenceFailed, Err: ctx.Err()}
	}
}

func TestIngestCommitSurvivesClientDisconnect(t *testing.T) {
	ing := &slowIngester{
		draft:   nutrition.MealDraft{Name: "Curry", Calories: 540, Protein: 22, Carbs: 60, Fat: 20},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h, store := newTestHandler(ing)
	mux := newMux(h)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/v1/meals/ingest?commit=true", strings.NewReader(`{"text":"curry"}`)).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		mux.ServeHTTP(w, req)
		close(done)
	}()

	<-ing.started
	cancel()
	close(ing.release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return")
	}

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	l, _ := store.Snapshot().Log("2024-05-10")
	if len(l.Meals) != 1 || l.Meals[0].Name != "Curry" {
		t.Fatalf("expected the draft to be committed after disconnect, got %+v", l.Meals)
	}
}

func TestIngestErrors(t *testing.T) {
	h, _ := newTestHandler(&fakeIngester{err: &ingest.Error{Reason: ingest.ReasonInvalidResponse, Err: errors.New("bad json")}})
	mux := newMux(h)

	if w := do(t, mux, http.MethodPost, "/v1/meals/ingest", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty input: expected 400, got %d", w.Code)
	}
	w := do(t, mux, http.MethodPost, "/v1/meals/ingest", `{"text":"soup"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("failed ingestion: expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ingestion_failed") {
		t.Errorf("expected ingestion_failed code, got %s", w.Body.String())
	}
}

func TestIngestBodyTooLarge(t *testing.T) {
	ing := &fakeIngester{}
	store := state.NewStore(state.Default())
	h := NewHandler(store, ing, nil, 32)

	body := `{"imageBase64":"` + strings.Repeat("A", 128) + `"}`
	w := do(t, newMux(h), http.MethodPost, "/v1/meals/ingest", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if ing.calls != 0 {
		t.Error("ingester must not be called")
	}
}
