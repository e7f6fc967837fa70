package graphling

import (
	"context"

	"github.com/soundprediction/graphling/pkg/community"
	"github.com/soundprediction/graphling/pkg/graph"
	"github.com/soundprediction/graphling/pkg/source"
	"github.com/soundprediction/graphling/pkg/types"
	"github.com/soundprediction/graphling/pkg/utils"
)

// This file defines focused interfaces composed into the Graphling
// interface. Consumers should depend on the smallest interface that
// meets their needs.

// Ingestor provides operations that replace the current snapshot.
// Callers must serialize ingestion; reads stay lock-free.
type Ingestor interface {
	// IngestGraph builds a fresh snapshot from a complete dataset and
	// atomically replaces the current one. Communities are not carried
	// over; run DetectCommunities afterwards.
	IngestGraph(ctx context.Context, ds *source.Dataset) error

	// IngestDocuments extracts entities and relationships from raw
	// documents, merges them into the current graph, and publishes a new
	// snapshot. Each document becomes a passage linked to the entities
	// extracted from it.
	IngestDocuments(ctx context.Context, docs []Document) (*IngestResult, error)
}

// Retriever provides read-only retrieval over the current snapshot.
type Retriever interface {
	// Search runs graph retrieval for the recognized entities and fuses
	// it with the query's vector results.
	Search(ctx context.Context, query Query) ([]*types.Passage, error)

	// GraphSearch returns the passages reachable from the recognized
	// entities within the given traversal depth, without fusion.
	GraphSearch(ctx context.Context, recognizedEntities []string, depth int) ([]*types.Passage, error)

	// FindEntities looks up entities by name, optionally fuzzily.
	FindEntities(ctx context.Context, name string, fuzzy bool) ([]*types.Entity, error)

	// FindSimilar returns the entities most similar to the query
	// embedding, scored by cosine similarity.
	FindSimilar(ctx context.Context, embedding []float32, topK int, minSimilarity float64) ([]utils.ScoredItem[*types.Entity], error)
}

// CommunityDetector provides hierarchical community operations.
type CommunityDetector interface {
	// DetectCommunities partitions the current entity graph into a
	// community hierarchy and publishes it on the next snapshot.
	DetectCommunities(ctx context.Context) (*community.DetectionResult, error)

	// Communities lists communities on the current snapshot, optionally
	// filtered by level and membership.
	Communities(filter graph.CommunityFilter) []*types.Community
}

// Graphling is the full client surface.
type Graphling interface {
	Ingestor
	Retriever
	CommunityDetector

	// Snapshot returns the current immutable snapshot.
	Snapshot() *graph.Snapshot

	// Close releases backend resources.
	Close() error
}

var _ Graphling = (*Client)(nil)
