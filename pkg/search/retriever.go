package search

import (
	"github.com/soundprediction/graphling/pkg/graph"
	"github.com/soundprediction/graphling/pkg/types"
)

// GraphSearch resolves recognized entity names against the snapshot by
// exact (case-insensitive) name match and returns the passages linked
// to the matched entities, plus, when depth > 0, passages linked to
// entities reachable within depth hops. Direct-entity passages rank
// before traversal-derived ones; the combined list is deduplicated by
// passage id. Unmatched names are skipped, and no matches at all yields
// an empty result.
func GraphSearch(snapshot *graph.Snapshot, recognizedEntities []string, depth int) []*types.Passage {
	var matchedIDs []string
	seen := make(map[string]struct{})
	for _, name := range recognizedEntities {
		for _, e := range snapshot.FindByName(name, false) {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			matchedIDs = append(matchedIDs, e.ID)
		}
	}
	if len(matchedIDs) == 0 {
		return nil
	}

	passages := snapshot.PassagesForEntities(matchedIDs)

	if depth > 0 {
		reached := snapshot.NeighborhoodMany(matchedIDs, depth)
		have := make(map[string]struct{}, len(passages))
		for _, p := range passages {
			have[p.ID] = struct{}{}
		}
		for _, p := range snapshot.PassagesForEntities(reached) {
			if _, dup := have[p.ID]; dup {
				continue
			}
			have[p.ID] = struct{}{}
			passages = append(passages, p)
		}
	}

	return passages
}

// Search fuses graph-derived passages with a caller-supplied
// vector-similarity passage list. The graph list (see GraphSearch) and
// the vector list each enter rank fusion as one ranked list; the fused
// result is truncated to limit when limit > 0.
func Search(snapshot *graph.Snapshot, recognizedEntities []string, vectorResults []*types.Passage, depth, limit int) []*types.Passage {
	graphResults := GraphSearch(snapshot, recognizedEntities, depth)

	fused := ReciprocalRankFusion(
		[][]*types.Passage{graphResults, vectorResults},
		func(p *types.Passage) string { return p.ID },
		DefaultRankConstant,
	)

	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}
