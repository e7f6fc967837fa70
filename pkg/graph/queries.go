package graph

import (
	"sort"
	"strings"

	"github.com/soundprediction/graphling/pkg/types"
	"github.com/soundprediction/graphling/pkg/utils"
)

// FindByName returns entities whose name matches the query,
// case-insensitively. With fuzzy set, a substring match in either
// direction counts. Results come back in entity input order.
func (s *Snapshot) FindByName(name string, fuzzy bool) []*types.Entity {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil
	}

	var matches []*types.Entity
	for _, id := range s.entityOrder {
		e := s.entities[id]
		candidate := strings.ToLower(e.Name)
		if candidate == query {
			matches = append(matches, e)
			continue
		}
		if fuzzy && (strings.Contains(candidate, query) || strings.Contains(query, candidate)) {
			matches = append(matches, e)
		}
	}
	return matches
}

// FindByEmbedding scores every entity that carries an embedding against
// the query vector by cosine similarity and returns the top K at or
// above minSimilarity, highest first. Entities without an embedding are
// skipped; a zero-norm vector on either side scores 0.
func (s *Snapshot) FindByEmbedding(query []float32, topK int, minSimilarity float64) []utils.ScoredItem[*types.Entity] {
	if topK <= 0 || len(query) == 0 {
		return nil
	}

	scored := make([]utils.ScoredItem[*types.Entity], 0, len(s.entityOrder))
	for _, id := range s.entityOrder {
		e := s.entities[id]
		if len(e.Embedding) == 0 {
			continue
		}
		sim := utils.CosineSimilarity(query, e.Embedding)
		if sim < minSimilarity {
			continue
		}
		scored = append(scored, utils.ScoredItem[*types.Entity]{Item: e, Score: sim})
	}

	return utils.TopKByScore(scored, topK)
}

// Neighbors returns the ids adjacent to the given entity, sorted
// lexicographically. Unknown ids yield nil.
func (s *Snapshot) Neighbors(entityID string) []string {
	adj, ok := s.adjacency[entityID]
	if !ok || len(adj) == 0 {
		return nil
	}
	out := make([]string, 0, len(adj))
	for id := range adj {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PassagesForEntities returns the union of passages mentioning any of
// the given entities, deduplicated, in passage input order. Unknown
// entity ids contribute nothing.
func (s *Snapshot) PassagesForEntities(entityIDs []string) []*types.Passage {
	if len(entityIDs) == 0 {
		return nil
	}

	wanted := make(map[string]struct{})
	for _, entityID := range entityIDs {
		for _, passageID := range s.passagesByEntity[entityID] {
			wanted[passageID] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	out := make([]*types.Passage, 0, len(wanted))
	for _, id := range s.passageOrder {
		if _, ok := wanted[id]; ok {
			out = append(out, s.passages[id])
		}
	}
	return out
}

// CommunityFilter narrows a community listing. A nil Level matches all
// levels; an empty MemberID matches all communities. Both conditions
// must hold when set.
type CommunityFilter struct {
	Level    *int
	MemberID string
}

// Communities returns the communities matching the filter, in the order
// they were supplied at build time.
func (s *Snapshot) Communities(filter CommunityFilter) []*types.Community {
	var out []*types.Community
	for _, c := range s.communities {
		if filter.Level != nil && c.Level != *filter.Level {
			continue
		}
		if filter.MemberID != "" && !c.Contains(filter.MemberID) {
			continue
		}
		out = append(out, c)
	}
	return out
}
