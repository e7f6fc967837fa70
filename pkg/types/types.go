package types

import (
	"errors"
	"strings"
)

// Validation errors
var (
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrEmptyContent = errors.New("content cannot be empty")
	ErrInvalidLimit = errors.New("limit must be positive")
)

// EntityType classifies an entity into one of a fixed set of categories.
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeLocation     EntityType = "location"
	EntityTypeEvent        EntityType = "event"
	EntityTypeConcept      EntityType = "concept"
	EntityTypeTechnology   EntityType = "technology"
	EntityTypeRole         EntityType = "role"
	EntityTypePublication  EntityType = "publication"
	EntityTypeMedia        EntityType = "media"
	EntityTypeAward        EntityType = "award"
	EntityTypeStandard     EntityType = "standard"
	EntityTypeLanguage     EntityType = "language"
	EntityTypeOther        EntityType = "other"
)

// EntityTypes lists every valid entity type, in the order extractors
// should present them.
var EntityTypes = []EntityType{
	EntityTypePerson, EntityTypeOrganization, EntityTypeLocation,
	EntityTypeEvent, EntityTypeConcept, EntityTypeTechnology,
	EntityTypeRole, EntityTypePublication, EntityTypeMedia,
	EntityTypeAward, EntityTypeStandard, EntityTypeLanguage,
	EntityTypeOther,
}

// ParseEntityType normalizes a free-form type label to one of the fixed
// entity types. Unknown labels map to EntityTypeOther rather than failing,
// since extractor backends are not always disciplined about the taxonomy.
func ParseEntityType(s string) EntityType {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range EntityTypes {
		if t == known {
			return known
		}
	}
	return EntityTypeOther
}

// Entity is a node in the knowledge graph. Entities are immutable once a
// snapshot is built; changing inputs means rebuilding the snapshot.
type Entity struct {
	ID          string                 `json:"id" yaml:"id" mapstructure:"id"`
	Name        string                 `json:"name" yaml:"name" mapstructure:"name"`
	Type        EntityType             `json:"type" yaml:"type" mapstructure:"type"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Embedding   []float32              `json:"embedding,omitempty" yaml:"embedding,omitempty" mapstructure:"embedding"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty" mapstructure:"metadata"`
}

// Validate checks if the Entity has all required fields set.
func (e *Entity) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Relationship is an edge between two entities. Adjacency and traversal
// treat relationships as undirected; source/target identity is retained
// for display only.
type Relationship struct {
	SourceID    string `json:"source_id" yaml:"source_id" mapstructure:"source_id"`
	TargetID    string `json:"target_id" yaml:"target_id" mapstructure:"target_id"`
	Type        string `json:"type" yaml:"type" mapstructure:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Strength    int    `json:"strength,omitempty" yaml:"strength,omitempty" mapstructure:"strength"`
}

// Weight returns the relationship strength coerced to a positive value.
// Absent or non-positive strengths count as 1.
func (r *Relationship) Weight() int {
	if r.Strength <= 0 {
		return 1
	}
	return r.Strength
}

// Passage is a retrievable unit of content, e.g. a document chunk. A
// passage may mention zero or more entities.
type Passage struct {
	ID        string   `json:"id" yaml:"id" mapstructure:"id"`
	EntityIDs []string `json:"entity_ids,omitempty" yaml:"entity_ids,omitempty" mapstructure:"entity_ids"`
	Content   string   `json:"content" yaml:"content" mapstructure:"content"`
}

// Validate checks if the Passage has all required fields set.
func (p *Passage) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// Community is a group of related entities detected at a hierarchy level.
// Level 0 is the finest partition; higher levels are coarser aggregations.
// EntityIDs always hold original entity ids, never node indices.
type Community struct {
	ID          string   `json:"id" yaml:"id"`
	Level       int      `json:"level" yaml:"level"`
	EntityIDs   []string `json:"entity_ids" yaml:"entity_ids"`
	Summary     string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Dirty       bool     `json:"dirty,omitempty" yaml:"dirty,omitempty"`
	ChangeCount int      `json:"change_count,omitempty" yaml:"change_count,omitempty"`
}

// Contains reports whether the community lists the given entity.
func (c *Community) Contains(entityID string) bool {
	for _, id := range c.EntityIDs {
		if id == entityID {
			return true
		}
	}
	return false
}

// Touch flags the community as stale for incremental-recompute policies.
// The recompute policy itself belongs to the caller.
func (c *Community) Touch() {
	c.Dirty = true
	c.ChangeCount++
}

// MarkStale touches every community containing one of the changed entities
// and returns the number of communities affected.
func MarkStale(communities []*Community, changedEntityIDs []string) int {
	changed := make(map[string]struct{}, len(changedEntityIDs))
	for _, id := range changedEntityIDs {
		changed[id] = struct{}{}
	}

	affected := 0
	for _, c := range communities {
		for _, id := range c.EntityIDs {
			if _, ok := changed[id]; ok {
				c.Touch()
				affected++
				break
			}
		}
	}
	return affected
}

// ExtractedEntity is an entity proposed by an extractor backend before it
// is assigned a stable id and folded into a snapshot.
type ExtractedEntity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ExtractedRelationship is a relationship proposed by an extractor
// backend, expressed in entity names rather than ids.
type ExtractedRelationship struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Strength    int    `json:"strength,omitempty"`
}

// ContextKey is the type for request-scoped context values used by the
// telemetry handler.
type ContextKey string

const (
	ContextKeyUserID        ContextKey = "user_id"
	ContextKeySessionID     ContextKey = "session_id"
	ContextKeyRequestSource ContextKey = "request_source"
)
