// Package extract defines the entity/relationship extractor contract
// and two backends: a prompted LLM extractor and a local GLiNER
// span-model extractor.
package extract

import (
	"context"
	"fmt"

	"github.com/soundprediction/graphling/pkg/types"
)

// Result is the outcome of extracting one text.
type Result struct {
	Entities      []types.ExtractedEntity       `json:"entities"`
	Relationships []types.ExtractedRelationship `json:"relationships"`
}

// Options tunes an extraction call.
type Options struct {
	// EntityTypes restricts extraction to the given type labels.
	// Empty means the full fixed enumeration.
	EntityTypes []string
	// IncludeRelationships asks the backend for relationships too;
	// backends without relationship support ignore it.
	IncludeRelationships bool
}

// Extractor turns raw text into proposed entities and relationships.
// Backend failures propagate verbatim; retry policy belongs to the
// caller.
type Extractor interface {
	Extract(ctx context.Context, text string, opts Options) (*Result, error)
	ExtractBatch(ctx context.Context, texts []string, opts Options) ([]*Result, error)
}

// SequentialBatch implements ExtractBatch for backends without a native
// batch path by calling Extract per text. The first failure aborts the
// batch and reports the failing index.
func SequentialBatch(ctx context.Context, e Extractor, texts []string, opts Options) ([]*Result, error) {
	results := make([]*Result, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := e.Extract(ctx, text, opts)
		if err != nil {
			return nil, fmt.Errorf("batch extraction failed at item %d: %w", i, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// typeLabels returns the requested entity type labels, defaulting to
// the full fixed enumeration.
func typeLabels(opts Options) []string {
	if len(opts.EntityTypes) > 0 {
		return opts.EntityTypes
	}
	labels := make([]string, len(types.EntityTypes))
	for i, t := range types.EntityTypes {
		labels[i] = string(t)
	}
	return labels
}
