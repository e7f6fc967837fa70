package dto

import (
	"github.com/soundprediction/graphling"
	"github.com/soundprediction/graphling/pkg/types"
)

// IngestGraphRequest carries a complete dataset replacing the current
// snapshot.
type IngestGraphRequest struct {
	Entities      []*types.Entity       `json:"entities" binding:"required"`
	Relationships []*types.Relationship `json:"relationships"`
	Passages      []*types.Passage      `json:"passages"`
}

// IngestDocumentsRequest carries raw documents for extraction-driven
// ingestion.
type IngestDocumentsRequest struct {
	Documents []graphling.Document `json:"documents" binding:"required"`
}

// IngestResponse reports the outcome of an ingestion request
type IngestResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Result  *graphling.IngestResult `json:"result,omitempty"`
}
