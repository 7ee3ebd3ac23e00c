package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	apiwebsocket "github.com/portalmtg/portal/internal/api/websocket"
	"github.com/portalmtg/portal/internal/events"
)

func TestNewServer(t *testing.T) {
	cfg := DefaultConfig()

	server := NewServer(cfg, &Services{})

	if server == nil {
		t.Fatal("NewServer returned nil")
	}

	if server.port != cfg.Port {
		t.Errorf("Expected port %d, got %d", cfg.Port, server.port)
	}

	if server.wsHub == nil {
		t.Error("Expected wsHub to be initialized")
	}
}

func TestNewServer_NilConfig(t *testing.T) {
	server := NewServer(nil, &Services{})

	if server == nil {
		t.Fatal("NewServer returned nil with nil config")
	}

	// Should use default port
	if server.port != 8080 {
		t.Errorf("Expected default port 8080, got %d", server.port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
}

func TestServer_Port(t *testing.T) {
	server := NewServer(&Config{Port: 9999}, &Services{})

	if server.Port() != 9999 {
		t.Errorf("Expected port 9999, got %d", server.Port())
	}
}

func TestServer_WebSocketHub(t *testing.T) {
	server := NewServer(nil, &Services{})

	if server.WebSocketHub() == nil {
		t.Error("Expected WebSocketHub to return non-nil hub")
	}
}

func TestServer_Shutdown_NotStarted(t *testing.T) {
	server := NewServer(nil, &Services{})

	// Shutdown on a server that hasn't started should not error
	if err := server.Shutdown(nil); err != nil {
		t.Errorf("Expected no error on shutdown of non-started server, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := NewServer(nil, &Services{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %q", body["status"])
	}
	if body["service"] != "portal-api" {
		t.Errorf("Expected service 'portal-api', got %q", body["service"])
	}
}

func TestJSONContentTypeMiddleware(t *testing.T) {
	server := NewServer(nil, &Services{})

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
	}{
		{"post with wrong type", http.MethodPost, "text/plain", `{"name":"x"}`, http.StatusUnsupportedMediaType},
		{"post without type", http.MethodPost, "", `{"name":"x"}`, http.StatusUnsupportedMediaType},
		{"get is exempt", http.MethodGet, "text/plain", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/nonexistent", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			server.Router().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestServer_NewEventObserver_ForwardsToHub(t *testing.T) {
	server := NewServer(nil, &Services{})

	// Start the hub so it can process broadcasts
	go server.wsHub.Run()
	defer server.wsHub.Stop()

	httpServer := httptest.NewServer(http.HandlerFunc(server.wsHub.ServeWs))
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give time for client registration
	time.Sleep(50 * time.Millisecond)

	observer := server.NewEventObserver()
	err = observer.OnEvent(events.Event{
		Type: events.TypePriceUpdated,
		Data: events.PriceUpdated{Name: "Shock", Set: "m21", Price: 1.5},
	})
	if err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message from WebSocket: %v", err)
	}

	var received apiwebsocket.Event
	if err := json.Unmarshal(message, &received); err != nil {
		t.Fatalf("Failed to unmarshal received message: %v", err)
	}

	if received.Type != events.TypePriceUpdated {
		t.Errorf("Expected event type %q, got %q", events.TypePriceUpdated, received.Type)
	}
}
