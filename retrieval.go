package graphling

import (
	"context"

	"github.com/soundprediction/graphling/pkg/search"
	"github.com/soundprediction/graphling/pkg/types"
	"github.com/soundprediction/graphling/pkg/utils"
)

// Query describes one retrieval call.
type Query struct {
	// RecognizedEntities are entity names recognized in the caller's
	// query, matched case-insensitively against the snapshot.
	RecognizedEntities []string `json:"recognized_entities"`

	// VectorResults is an optional caller-supplied ranked passage list
	// from vector similarity, fused with the graph results.
	VectorResults []*types.Passage `json:"-"`

	// Depth bounds graph traversal from the matched entities. Zero
	// keeps only the matched entities' own passages.
	Depth int `json:"depth"`

	// Limit truncates the fused result. Zero means unlimited.
	Limit int `json:"limit"`
}

// Search runs graph retrieval for the query's recognized entities and
// fuses it with the query's vector results.
func (c *Client) Search(ctx context.Context, query Query) ([]*types.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return search.Search(c.Snapshot(), query.RecognizedEntities, query.VectorResults, query.Depth, query.Limit), nil
}

// GraphSearch returns the passages reachable from the recognized
// entities within depth hops, without fusion.
func (c *Client) GraphSearch(ctx context.Context, recognizedEntities []string, depth int) ([]*types.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return search.GraphSearch(c.Snapshot(), recognizedEntities, depth), nil
}

// FindEntities looks up entities by name.
func (c *Client) FindEntities(ctx context.Context, name string, fuzzy bool) ([]*types.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Snapshot().FindByName(name, fuzzy), nil
}

// FindSimilar returns the topK entities most similar to the query
// embedding, scored by cosine similarity.
func (c *Client) FindSimilar(ctx context.Context, embedding []float32, topK int, minSimilarity float64) ([]utils.ScoredItem[*types.Entity], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Snapshot().FindByEmbedding(embedding, topK, minSimilarity), nil
}
