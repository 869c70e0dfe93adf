package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/smart-assistant/internal/api/handler"
	"github.com/Rrens/smart-assistant/internal/llm"
	"github.com/Rrens/smart-assistant/internal/notify"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

func TestListResponders(t *testing.T) {
	router := llm.NewRouter("simulated")
	router.Register(llm.NewSimulatedResponder(0))

	rec := httptest.NewRecorder()
	handler.ListResponders(router)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/responders", nil))

	var response struct {
		Data struct {
			Responders []string `json:"responders"`
			Default    string   `json:"default_responder"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Data.Default != "simulated" {
		t.Errorf("expected default 'simulated', got %q", response.Data.Default)
	}
	if len(response.Data.Responders) != 1 {
		t.Errorf("expected 1 responder, got %d", len(response.Data.Responders))
	}
}

func TestNotifications_Drains(t *testing.T) {
	buffer := notify.NewBuffer(5)
	buffer.Notify(notify.Success("Login successful", "Welcome back, Ann!"))

	first := httptest.NewRecorder()
	handler.Notifications(buffer)(first, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))

	var response struct {
		Data []notify.Notification `json:"data"`
	}
	if err := json.NewDecoder(first.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Data) != 1 || response.Data[0].Title != "Login successful" {
		t.Errorf("unexpected notifications: %+v", response.Data)
	}

	if len(buffer.Recent()) != 0 {
		t.Error("expected buffer to be drained")
	}
}
