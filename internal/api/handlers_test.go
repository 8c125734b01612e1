package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ifwatch/agent/internal/config"
)

func testRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(cfg)
	SetupRoutes(router, handler, nil)
	return router
}

func TestGetStatusReturnsInterfaceCount(t *testing.T) {
	cfg := config.Default()
	router := testRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.InterfaceCount != len(cfg.Agent.Interfaces) {
		t.Errorf("interface_count = %d, want %d", resp.InterfaceCount, len(cfg.Agent.Interfaces))
	}
}

func TestGetInterfacesListsConfiguredInterfaces(t *testing.T) {
	cfg := config.Default()
	router := testRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interfaces", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp []InterfaceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != len(cfg.Agent.Interfaces) {
		t.Fatalf("got %d interfaces, want %d", len(resp), len(cfg.Agent.Interfaces))
	}
	for i, name := range cfg.Agent.Interfaces {
		if resp[i].Name != name {
			t.Errorf("interfaces[%d].name = %q, want %q", i, resp[i].Name, name)
		}
	}
}

func TestGetInterfaceUnknownReturnsNotFound(t *testing.T) {
	cfg := config.Default()
	router := testRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interfaces/ppp9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	cfg := config.Default()
	router := testRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
