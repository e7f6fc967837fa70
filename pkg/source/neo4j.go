// Package source loads snapshot inputs (entities, relationships,
// passages) from external systems: a Neo4j database or a YAML/JSON
// dataset file.
package source

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/graphling/pkg/types"
)

// Neo4jLoader pulls a graph out of a Neo4j database. Expected schema:
// (:Entity {id, name, type, description, embedding}) nodes,
// [:RELATES_TO {type, description, strength}] relationships, and
// (:Passage {id, content})-[:MENTIONS]->(:Entity) membership.
type Neo4jLoader struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jLoader creates a loader connected to the given instance.
func NewNeo4jLoader(uri, username, password, database string) (*Neo4jLoader, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jLoader{client: driver, database: database}, nil
}

// Close releases the underlying driver.
func (l *Neo4jLoader) Close(ctx context.Context) error {
	return l.client.Close(ctx)
}

// Load reads the complete graph into a Dataset.
func (l *Neo4jLoader) Load(ctx context.Context) (*Dataset, error) {
	session := l.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		ds := &Dataset{}

		if err := l.loadEntities(ctx, tx, ds); err != nil {
			return nil, err
		}
		if err := l.loadRelationships(ctx, tx, ds); err != nil {
			return nil, err
		}
		if err := l.loadPassages(ctx, tx, ds); err != nil {
			return nil, err
		}
		return ds, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load graph from neo4j: %w", err)
	}

	return result.(*Dataset), nil
}

func (l *Neo4jLoader) loadEntities(ctx context.Context, tx neo4j.ManagedTransaction, ds *Dataset) error {
	res, err := tx.Run(ctx, `
		MATCH (e:Entity)
		RETURN e.id AS id, e.name AS name, e.type AS type,
		       e.description AS description, e.embedding AS embedding
		ORDER BY e.id
	`, nil)
	if err != nil {
		return err
	}

	for res.Next(ctx) {
		record := res.Record()
		e := &types.Entity{
			ID:          stringValue(record, "id"),
			Name:        stringValue(record, "name"),
			Type:        types.ParseEntityType(stringValue(record, "type")),
			Description: stringValue(record, "description"),
			Embedding:   floatSliceValue(record, "embedding"),
		}
		if e.ID == "" {
			continue
		}
		ds.Entities = append(ds.Entities, e)
	}
	return res.Err()
}

func (l *Neo4jLoader) loadRelationships(ctx context.Context, tx neo4j.ManagedTransaction, ds *Dataset) error {
	res, err := tx.Run(ctx, `
		MATCH (a:Entity)-[r:RELATES_TO]->(b:Entity)
		RETURN a.id AS source_id, b.id AS target_id, r.type AS type,
		       r.description AS description, r.strength AS strength
	`, nil)
	if err != nil {
		return err
	}

	for res.Next(ctx) {
		record := res.Record()
		ds.Relationships = append(ds.Relationships, &types.Relationship{
			SourceID:    stringValue(record, "source_id"),
			TargetID:    stringValue(record, "target_id"),
			Type:        stringValue(record, "type"),
			Description: stringValue(record, "description"),
			Strength:    intValue(record, "strength"),
		})
	}
	return res.Err()
}

func (l *Neo4jLoader) loadPassages(ctx context.Context, tx neo4j.ManagedTransaction, ds *Dataset) error {
	res, err := tx.Run(ctx, `
		MATCH (p:Passage)
		OPTIONAL MATCH (p)-[:MENTIONS]->(e:Entity)
		RETURN p.id AS id, p.content AS content, collect(e.id) AS entity_ids
		ORDER BY p.id
	`, nil)
	if err != nil {
		return err
	}

	for res.Next(ctx) {
		record := res.Record()
		p := &types.Passage{
			ID:      stringValue(record, "id"),
			Content: stringValue(record, "content"),
		}
		if ids, ok := record.Get("entity_ids"); ok {
			if list, ok := ids.([]any); ok {
				for _, v := range list {
					if s, ok := v.(string); ok && s != "" {
						p.EntityIDs = append(p.EntityIDs, s)
					}
				}
			}
		}
		if p.ID == "" {
			continue
		}
		ds.Passages = append(ds.Passages, p)
	}
	return res.Err()
}

func stringValue(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intValue(record *neo4j.Record, key string) int {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func floatSliceValue(record *neo4j.Record, key string) []float32 {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(list))
	for _, item := range list {
		if f, ok := item.(float64); ok {
			out = append(out, float32(f))
		}
	}
	return out
}
