// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"github.com/soundprediction/graphling/pkg/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SearchRequest represents a retrieval request
type SearchRequest struct {
	// RecognizedEntities are entity names recognized in the caller's
	// query.
	RecognizedEntities []string `json:"recognized_entities" binding:"required"`

	// VectorResults is an optional ranked passage list from the
	// caller's vector store, fused with the graph results.
	VectorResults []*types.Passage `json:"vector_results,omitempty"`

	Depth int `json:"depth"`
	Limit int `json:"limit"`
}

// SearchResponse carries ranked passages
type SearchResponse struct {
	Passages []*types.Passage `json:"passages"`
	Count    int              `json:"count"`
}

// EntityResponse carries entity lookup results
type EntityResponse struct {
	Entities []*types.Entity `json:"entities"`
	Count    int             `json:"count"`
}

// CommunityListResponse carries community listing results
type CommunityListResponse struct {
	Communities []*types.Community `json:"communities"`
	Count       int                `json:"count"`
}

// DetectResponse reports a finished community-detection run
type DetectResponse struct {
	RunID       string `json:"run_id"`
	Levels      int    `json:"levels"`
	Communities int    `json:"communities"`
}
