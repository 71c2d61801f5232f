package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealthHandler_Health(t *testing.T) {
	app := fiber.New()
	handler := NewHealthHandler(nil, testLogger())
	app.Get("/health", handler.Health)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result HealthResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if result.Status != "ok" {
		t.Errorf("Status = %s, want ok", result.Status)
	}

	if result.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		handler    *HealthHandler
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{
			name:       "database up",
			handler:    NewHealthHandler(stubPinger{}, testLogger()),
			wantCode:   200,
			wantStatus: "ready",
			wantDB:     "up",
		},
		{
			name:       "database down",
			handler:    NewHealthHandler(stubPinger{err: errors.New("connection refused")}, testLogger()),
			wantCode:   503,
			wantStatus: "unavailable",
			wantDB:     "down",
		},
		{
			name:       "no database configured",
			handler:    NewHealthHandler(nil, testLogger()),
			wantCode:   200,
			wantStatus: "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/ready", tt.handler.Ready)

			resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
			if err != nil {
				t.Fatalf("Failed to test: %v", err)
			}

			if resp.StatusCode != tt.wantCode {
				t.Errorf("Status = %d, want %d", resp.StatusCode, tt.wantCode)
			}

			body, _ := io.ReadAll(resp.Body)
			var result HealthResponse
			if err := json.Unmarshal(body, &result); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}

			if result.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.Database != tt.wantDB {
				t.Errorf("Database = %s, want %s", result.Database, tt.wantDB)
			}
		})
	}
}
