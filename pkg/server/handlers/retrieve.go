package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphling"
	"github.com/soundprediction/graphling/pkg/server/dto"
	"github.com/soundprediction/graphling/pkg/types"
)

// RetrieveHandler handles retrieval requests
type RetrieveHandler struct {
	client graphling.Graphling
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(client graphling.Graphling) *RetrieveHandler {
	return &RetrieveHandler{client: client}
}

// Search handles POST /search
func (h *RetrieveHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	passages, err := h.client.Search(c.Request.Context(), graphling.Query{
		RecognizedEntities: req.RecognizedEntities,
		VectorResults:      req.VectorResults,
		Depth:              req.Depth,
		Limit:              req.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "search_failed", Message: err.Error()})
		return
	}
	if passages == nil {
		passages = []*types.Passage{}
	}

	c.JSON(http.StatusOK, dto.SearchResponse{Passages: passages, Count: len(passages)})
}

// FindEntities handles GET /entities?name=...&fuzzy=true
func (h *RetrieveHandler) FindEntities(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "name query parameter is required"})
		return
	}
	fuzzy, _ := strconv.ParseBool(c.DefaultQuery("fuzzy", "false"))

	entities, err := h.client.FindEntities(c.Request.Context(), name, fuzzy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "lookup_failed", Message: err.Error()})
		return
	}
	if entities == nil {
		entities = []*types.Entity{}
	}

	c.JSON(http.StatusOK, dto.EntityResponse{Entities: entities, Count: len(entities)})
}
