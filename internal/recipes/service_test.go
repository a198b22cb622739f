package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

func TestRefreshRequiresProfile(t *testing.T) {
	store := state.NewStore(state.Default())
	svc := NewService(store, NewFetcher(&stubProvider{out: twoRecipes}), nil)

	_, _, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestRefreshStoresRecipes(t *testing.T) {
	store := state.NewStore(state.Default())
	store.SetProfile(context.Background(), testProfile())
	svc := NewService(store, NewFetcher(&stubProvider{out: twoRecipes}), nil)

	list, applied, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, list, 2)
	assert.Len(t, svc.Current(), 2)
}

func TestRefreshDropsResultForChangedProfile(t *testing.T) {
	store := state.NewStore(state.Default())
	store.SetProfile(context.Background(), testProfile())

	p := &stubProvider{out: twoRecipes}
	p.hook = func() {
		changed := testProfile()
		changed.DietType = "Vegan"
		store.SetProfile(context.Background(), changed)
	}
	svc := NewService(store, NewFetcher(p), nil)

	_, applied, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, svc.Current())
}

func TestRefreshAsync(t *testing.T) {
	store := state.NewStore(state.Default())
	profile := testProfile()
	store.SetProfile(context.Background(), profile)
	svc := NewService(store, NewFetcher(&stubProvider{out: twoRecipes}), nil)

	svc.RefreshAsync(profile)
	svc.Wait()
	assert.Len(t, svc.Current(), 2)
}

func TestFailedRefreshClearsPreviousList(t *testing.T) {
	store := state.NewStore(state.Default())
	store.SetProfile(context.Background(), testProfile())
	store.SetRecipes(context.Background(), []nutrition.Recipe{{ID: "old", Title: "Old"}}, nil)

	svc := NewService(store, NewFetcher(&stubProvider{out: "garbage"}), nil)
	list, applied, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Empty(t, list)
	assert.Empty(t, svc.Current())
}

func TestHandleRefreshOnboardingPending(t *testing.T) {
	store := state.NewStore(state.Default())
	h := NewHandler(NewService(store, NewFetcher(&stubProvider{out: twoRecipes}), nil))

	w := httptest.NewRecorder()
	h.HandleRefresh(w, httptest.NewRequest(http.MethodPost, "/v1/recipes/refresh", bytes.NewReader(nil)))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestHandleRefreshAndList(t *testing.T) {
	store := state.NewStore(state.Default())
	store.SetProfile(context.Background(), testProfile())
	h := NewHandler(NewService(store, NewFetcher(&stubProvider{out: twoRecipes}), nil))

	w := httptest.NewRecorder()
	h.HandleRefresh(w, httptest.NewRequest(http.MethodPost, "/v1/recipes/refresh", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var refreshed ListResponse
	if err := json.NewDecoder(w.Body).Decode(&refreshed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if refreshed.Applied == nil || !*refreshed.Applied {
		t.Fatalf("expected applied=true")
	}

	w = httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/v1/recipes", nil))
	var listed ListResponse
	if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listed.Recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(listed.Recipes))
	}
}
