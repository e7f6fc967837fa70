// Package handlers implements the HTTP API on top of the graphling
// client facade.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphling"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client graphling.Graphling
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client graphling.Graphling) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "graphling",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready. The service is ready once the
// client is initialized; an empty snapshot is still ready, it just
// answers every query with empty results.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  "graphling client not initialized",
		})
		return
	}

	snapshot := h.client.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   "graphling",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"snapshot": gin.H{
			"entities":      snapshot.EntityCount(),
			"relationships": snapshot.RelationshipCount(),
			"passages":      snapshot.PassageCount(),
		},
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "graphling",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := gin.H{
		"status":  "healthy",
		"service": "graphling",
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"heap_objects": m.HeapObjects,
			"gc_cycles":    m.NumGC,
		},
	}

	if h.client != nil {
		snapshot := h.client.Snapshot()
		response["snapshot"] = gin.H{
			"entities":      snapshot.EntityCount(),
			"relationships": snapshot.RelationshipCount(),
			"passages":      snapshot.PassageCount(),
		}
	}

	c.JSON(http.StatusOK, response)
}
