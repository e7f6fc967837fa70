package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphling"
	"github.com/soundprediction/graphling/pkg/partition"
)

func healthRouter(t *testing.T, client graphling.Graphling) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHealthHandler(client)
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadinessCheck)
	router.GET("/live", handler.LivenessCheck)
	router.GET("/health/detailed", handler.DetailedHealthCheck)
	return router
}

func newHealthTestClient(t *testing.T) *graphling.Client {
	t.Helper()
	client, err := graphling.NewClient(&graphling.Config{Engine: partition.NewLabelPropagation()})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestHealthCheck(t *testing.T) {
	router := healthRouter(t, newHealthTestClient(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", response["status"])
	}
	if response["service"] != "graphling" {
		t.Errorf("expected service graphling, got %v", response["service"])
	}
	if _, ok := response["timestamp"]; !ok {
		t.Error("expected timestamp in response")
	}
	if _, ok := response["version"]; !ok {
		t.Error("expected version in response")
	}
}

func TestLivenessCheck(t *testing.T) {
	router := healthRouter(t, newHealthTestClient(t))

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "alive" {
		t.Errorf("expected status alive, got %v", response["status"])
	}
}

func TestReadinessCheckWithNilClient(t *testing.T) {
	router := healthRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestReadinessCheckReportsSnapshotCounts(t *testing.T) {
	router := healthRouter(t, newHealthTestClient(t))

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Status   string `json:"status"`
		Snapshot struct {
			Entities int `json:"entities"`
		} `json:"snapshot"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "ready" {
		t.Errorf("expected status ready, got %v", response.Status)
	}
	if response.Snapshot.Entities != 0 {
		t.Errorf("expected empty snapshot, got %d entities", response.Snapshot.Entities)
	}
}
