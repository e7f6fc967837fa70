// Package graph holds the immutable in-memory index over entities,
// relationships, passages, and communities, plus bounded traversal
// over the entity adjacency.
//
// A Snapshot is built once from flat input lists and never mutated;
// callers that need fresh data build a new snapshot and swap pointers.
// That keeps every query lock-free.
package graph

import (
	"log/slog"

	"github.com/soundprediction/graphling/pkg/types"
)

// Snapshot is an immutable index over one consistent view of the graph.
// All lookup maps are fully populated at build time.
type Snapshot struct {
	entities    map[string]*types.Entity
	entityOrder []string

	// adjacency is symmetric: a relationship between A and B lists B
	// under A and A under B regardless of source/target direction.
	adjacency map[string]map[string]struct{}

	relationships []*types.Relationship

	passages     map[string]*types.Passage
	passageOrder []string

	// passagesByEntity maps an entity id to the ids of passages that
	// mention it, in passage input order.
	passagesByEntity map[string][]string

	communities []*types.Community
}

// Build constructs a snapshot from flat input lists. Inconsistent input
// is repaired rather than rejected: duplicate entity ids keep the first
// occurrence, relationships with an unknown endpoint are dropped, and
// unknown entity ids are stripped from passage and community
// membership. Each repair is logged at warn level.
func Build(entities []*types.Entity, relationships []*types.Relationship, passages []*types.Passage, communities []*types.Community) *Snapshot {
	s := &Snapshot{
		entities:         make(map[string]*types.Entity, len(entities)),
		entityOrder:      make([]string, 0, len(entities)),
		adjacency:        make(map[string]map[string]struct{}, len(entities)),
		passages:         make(map[string]*types.Passage, len(passages)),
		passageOrder:     make([]string, 0, len(passages)),
		passagesByEntity: make(map[string][]string),
	}

	for _, e := range entities {
		if e == nil || e.ID == "" {
			continue
		}
		if _, exists := s.entities[e.ID]; exists {
			slog.Warn("duplicate entity id in snapshot input, keeping first", "entity_id", e.ID)
			continue
		}
		s.entities[e.ID] = e
		s.entityOrder = append(s.entityOrder, e.ID)
		s.adjacency[e.ID] = make(map[string]struct{})
	}

	for _, r := range relationships {
		if r == nil {
			continue
		}
		_, srcOK := s.entities[r.SourceID]
		_, tgtOK := s.entities[r.TargetID]
		if !srcOK || !tgtOK {
			slog.Warn("dropping relationship with unknown endpoint",
				"source_id", r.SourceID, "target_id", r.TargetID, "type", r.Type)
			continue
		}
		s.relationships = append(s.relationships, r)
		s.adjacency[r.SourceID][r.TargetID] = struct{}{}
		s.adjacency[r.TargetID][r.SourceID] = struct{}{}
	}

	for _, p := range passages {
		if p == nil || p.ID == "" {
			continue
		}
		if _, exists := s.passages[p.ID]; exists {
			slog.Warn("duplicate passage id in snapshot input, keeping first", "passage_id", p.ID)
			continue
		}
		s.passages[p.ID] = p
		s.passageOrder = append(s.passageOrder, p.ID)
		for _, entityID := range p.EntityIDs {
			if _, ok := s.entities[entityID]; !ok {
				slog.Warn("dropping passage membership for unknown entity",
					"passage_id", p.ID, "entity_id", entityID)
				continue
			}
			s.passagesByEntity[entityID] = append(s.passagesByEntity[entityID], p.ID)
		}
	}

	for _, c := range communities {
		if c == nil {
			continue
		}
		kept := make([]string, 0, len(c.EntityIDs))
		for _, entityID := range c.EntityIDs {
			if _, ok := s.entities[entityID]; !ok {
				slog.Warn("dropping community membership for unknown entity",
					"community_id", c.ID, "entity_id", entityID)
				continue
			}
			kept = append(kept, entityID)
		}
		if len(kept) != len(c.EntityIDs) {
			// Repair a copy; the caller's record stays untouched.
			repaired := *c
			repaired.EntityIDs = kept
			c = &repaired
		}
		s.communities = append(s.communities, c)
	}

	return s
}

// EntityCount returns the number of indexed entities.
func (s *Snapshot) EntityCount() int { return len(s.entities) }

// RelationshipCount returns the number of retained relationships.
func (s *Snapshot) RelationshipCount() int { return len(s.relationships) }

// PassageCount returns the number of indexed passages.
func (s *Snapshot) PassageCount() int { return len(s.passages) }

// Entity looks up an entity by id.
func (s *Snapshot) Entity(id string) (*types.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Entities returns all entities in input order.
func (s *Snapshot) Entities() []*types.Entity {
	out := make([]*types.Entity, 0, len(s.entityOrder))
	for _, id := range s.entityOrder {
		out = append(out, s.entities[id])
	}
	return out
}

// Relationships returns the retained relationships in input order.
func (s *Snapshot) Relationships() []*types.Relationship {
	out := make([]*types.Relationship, len(s.relationships))
	copy(out, s.relationships)
	return out
}

// Passage looks up a passage by id.
func (s *Snapshot) Passage(id string) (*types.Passage, bool) {
	p, ok := s.passages[id]
	return p, ok
}

// Passages returns all passages in input order.
func (s *Snapshot) Passages() []*types.Passage {
	out := make([]*types.Passage, 0, len(s.passageOrder))
	for _, id := range s.passageOrder {
		out = append(out, s.passages[id])
	}
	return out
}
