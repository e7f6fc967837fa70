package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphling"
	"github.com/soundprediction/graphling/pkg/server/dto"
	"github.com/soundprediction/graphling/pkg/source"
)

// IngestHandler handles data ingestion requests
type IngestHandler struct {
	client graphling.Graphling
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(client graphling.Graphling) *IngestHandler {
	return &IngestHandler{client: client}
}

// IngestGraph handles POST /ingest/graph. The payload replaces the
// current snapshot wholesale.
func (h *IngestHandler) IngestGraph(c *gin.Context) {
	var req dto.IngestGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	ds := &source.Dataset{
		Entities:      req.Entities,
		Relationships: req.Relationships,
		Passages:      req.Passages,
	}
	if err := h.client.IngestGraph(c.Request.Context(), ds); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "ingest_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Snapshot rebuilt from %d entities", len(req.Entities)),
	})
}

// IngestDocuments handles POST /ingest/documents. Documents run through
// the configured extractor and merge into the current graph.
func (h *IngestHandler) IngestDocuments(c *gin.Context) {
	var req dto.IngestDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if len(req.Documents) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "documents array cannot be empty"})
		return
	}

	result, err := h.client.IngestDocuments(c.Request.Context(), req.Documents)
	if err != nil {
		if errors.Is(err, graphling.ErrNoExtractor) {
			c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: "no_extractor", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "ingest_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Ingested %d documents", len(req.Documents)),
		Result:  result,
	})
}
