package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("writes status code and body", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteJSON(rr, http.StatusCreated, map[string]string{"code": "abc1234"})

		if rr.Code != http.StatusCreated {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusCreated)
		}

		if got := rr.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}

		var body map[string]string
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["code"] != "abc1234" {
			t.Errorf("body[code] = %q, want %q", body["code"], "abc1234")
		}
	})

	t.Run("encodes nil value as JSON null", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteJSON(rr, http.StatusOK, nil)

		if got := rr.Body.String(); got != "null\n" {
			t.Errorf("body = %q, want %q", got, "null\n")
		}
	})
}

func TestWriteError(t *testing.T) {
	t.Run("writes structured error response", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteError(rr, http.StatusConflict, "conflict", "code already in use", nil)

		if rr.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusConflict)
		}

		var resp ErrorResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if resp.Error != "conflict" {
			t.Errorf("Error = %q, want %q", resp.Error, "conflict")
		}
		if resp.Message != "code already in use" {
			t.Errorf("Message = %q, want %q", resp.Message, "code already in use")
		}
	})

	t.Run("omits empty message and details", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteError(rr, http.StatusBadRequest, "invalid_input", "", nil)

		var raw map[string]any
		if err := json.NewDecoder(rr.Body).Decode(&raw); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if _, ok := raw["message"]; ok {
			t.Error("expected message to be omitted")
		}
		if _, ok := raw["details"]; ok {
			t.Error("expected details to be omitted")
		}
	})
}
