package nutrition

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlePreviewTargets(t *testing.T) {
	h := NewHandler()

	body := []byte(`{"gender":"MALE","age":30,"height":175,"weight":70,"activityLevel":"MODERATE","goal":"MAINTAIN"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/targets/preview", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.HandlePreviewTargets(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp PreviewResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Targets.Calories != 2556 || resp.Targets.Protein != 126 || resp.Targets.Fat != 71 || resp.Targets.Carbs != 353 {
		t.Fatalf("unexpected targets: %+v", resp.Targets)
	}
	if resp.BMR != 1649 || resp.TDEE != 2556 {
		t.Fatalf("unexpected bmr/tdee: %d/%d", resp.BMR, resp.TDEE)
	}
}

func TestHandlePreviewTargetsInvalid(t *testing.T) {
	h := NewHandler()

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed", `{`, "invalid_payload"},
		{"unknown goal", `{"gender":"MALE","activityLevel":"LIGHT","goal":"BULK"}`, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/targets/preview", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			h.HandlePreviewTargets(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Error.Code != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleOptions(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler().HandleOptions(rr, httptest.NewRequest(http.MethodGet, "/v1/targets/options", nil))

	var resp OptionsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Diets) != len(DietSuggestions) || resp.HealthConditions[0] != NoneOfTheAbove {
		t.Fatalf("unexpected options: %+v", resp)
	}
}
