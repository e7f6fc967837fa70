package graphling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/soundprediction/graphling/pkg/extract"
	"github.com/soundprediction/graphling/pkg/graph"
	"github.com/soundprediction/graphling/pkg/source"
	"github.com/soundprediction/graphling/pkg/types"
)

// ErrNoExtractor is returned by IngestDocuments when the client was
// built without an extractor backend.
var ErrNoExtractor = errors.New("graphling: no extractor configured")

// Document is a raw text unit for extraction-driven ingestion.
type Document struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

// IngestResult reports what document ingestion added to the graph.
type IngestResult struct {
	EntitiesAdded      int `json:"entities_added"`
	EntitiesMatched    int `json:"entities_matched"`
	RelationshipsAdded int `json:"relationships_added"`
	PassagesAdded      int `json:"passages_added"`
}

// IngestGraph builds a fresh snapshot from a complete dataset and
// atomically replaces the current one.
func (c *Client) IngestGraph(ctx context.Context, ds *source.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ds == nil {
		return errors.New("graphling: nil dataset")
	}

	c.publish(graph.Build(ds.Entities, ds.Relationships, ds.Passages, nil))
	return nil
}

// IngestDocuments extracts entities and relationships from the given
// documents, merges them into the current graph, and publishes a new
// snapshot. Extracted entities are matched to existing ones by
// case-insensitive name; unmatched ones get fresh ids. Each document
// becomes a passage whose membership is the entities extracted from it.
// Communities containing a touched entity are marked stale.
func (c *Client) IngestDocuments(ctx context.Context, docs []Document) (*IngestResult, error) {
	if c.extractor == nil {
		return nil, ErrNoExtractor
	}

	current := c.Snapshot()

	entities := append([]*types.Entity(nil), current.Entities()...)
	relationships := append([]*types.Relationship(nil), current.Relationships()...)
	passages := append([]*types.Passage(nil), current.Passages()...)
	communities := current.Communities(graph.CommunityFilter{})

	idByName := make(map[string]string, len(entities))
	for _, e := range entities {
		idByName[strings.ToLower(e.Name)] = e.ID
	}

	result := &IngestResult{}
	var touched []string

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		extracted, err := c.extractor.Extract(ctx, doc.Content, extract.Options{IncludeRelationships: true})
		if err != nil {
			return nil, fmt.Errorf("extraction failed for document %q: %w", doc.ID, err)
		}

		var memberIDs []string
		seen := make(map[string]struct{})
		for _, ee := range extracted.Entities {
			name := strings.TrimSpace(ee.Name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			id, ok := idByName[key]
			if !ok {
				id = uuid.New().String()
				idByName[key] = id
				entities = append(entities, &types.Entity{
					ID:          id,
					Name:        name,
					Type:        types.ParseEntityType(ee.Type),
					Description: ee.Description,
				})
				result.EntitiesAdded++
			} else {
				result.EntitiesMatched++
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			memberIDs = append(memberIDs, id)
			touched = append(touched, id)
		}

		for _, er := range extracted.Relationships {
			sourceID, ok := idByName[strings.ToLower(er.Source)]
			if !ok {
				continue
			}
			targetID, ok := idByName[strings.ToLower(er.Target)]
			if !ok {
				continue
			}
			relationships = append(relationships, &types.Relationship{
				SourceID:    sourceID,
				TargetID:    targetID,
				Type:        er.Type,
				Description: er.Description,
				Strength:    er.Strength,
			})
			result.RelationshipsAdded++
		}

		passageID := doc.ID
		if passageID == "" {
			passageID = uuid.New().String()
		}
		passages = append(passages, &types.Passage{
			ID:        passageID,
			EntityIDs: memberIDs,
			Content:   doc.Content,
		})
		result.PassagesAdded++
	}

	stale := types.MarkStale(communities, touched)
	if stale > 0 {
		c.logger.Info("communities marked stale", "count", stale)
	}

	c.publish(graph.Build(entities, relationships, passages, communities))
	return result, nil
}
