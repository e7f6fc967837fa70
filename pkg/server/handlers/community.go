package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphling"
	"github.com/soundprediction/graphling/pkg/graph"
	"github.com/soundprediction/graphling/pkg/server/dto"
	"github.com/soundprediction/graphling/pkg/types"
)

// CommunityHandler handles community detection and listing requests
type CommunityHandler struct {
	client graphling.Graphling
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(client graphling.Graphling) *CommunityHandler {
	return &CommunityHandler{client: client}
}

// Detect handles POST /communities/detect. Detection runs synchronously
// and the resulting hierarchy is published before the response returns.
func (h *CommunityHandler) Detect(c *gin.Context) {
	result, err := h.client.DetectCommunities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "detection_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.DetectResponse{
		RunID:       result.RunID,
		Levels:      result.Levels,
		Communities: len(result.Communities),
	})
}

// List handles GET /communities?level=...&member=...
func (h *CommunityHandler) List(c *gin.Context) {
	var filter graph.CommunityFilter

	if levelStr := c.Query("level"); levelStr != "" {
		level, err := strconv.Atoi(levelStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "level must be an integer"})
			return
		}
		filter.Level = &level
	}
	filter.MemberID = c.Query("member")

	communities := h.client.Communities(filter)
	if communities == nil {
		communities = []*types.Community{}
	}

	c.JSON(http.StatusOK, dto.CommunityListResponse{Communities: communities, Count: len(communities)})
}
