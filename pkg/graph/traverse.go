package graph

import "sort"

// Neighborhood performs a breadth-first traversal from the given entity
// and returns every entity reachable within maxDepth hops, in discovery
// order. The start entity itself is excluded. A maxDepth of 0, an
// unknown start id, or an isolated start all yield an empty result.
//
// Frontiers are expanded one hop at a time with lexicographically
// sorted candidates, so the output is deterministic for a given
// snapshot.
func (s *Snapshot) Neighborhood(startID string, maxDepth int) []string {
	if maxDepth <= 0 {
		return nil
	}
	if _, ok := s.entities[startID]; !ok {
		return nil
	}

	visited := map[string]struct{}{startID: {}}
	frontier := []string{startID}
	var reached []string

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		next := make(map[string]struct{})
		for _, id := range frontier {
			for neighbor := range s.adjacency[id] {
				if _, seen := visited[neighbor]; seen {
					continue
				}
				next[neighbor] = struct{}{}
			}
		}

		frontier = frontier[:0]
		for id := range next {
			frontier = append(frontier, id)
		}
		sort.Strings(frontier)

		for _, id := range frontier {
			visited[id] = struct{}{}
			reached = append(reached, id)
		}
	}

	return reached
}

// NeighborhoodMany unions Neighborhood over several start entities,
// deduplicating while preserving first-discovery order across starts.
// Start entities never appear in the result, even when one start is
// reachable from another.
func (s *Snapshot) NeighborhoodMany(startIDs []string, maxDepth int) []string {
	starts := make(map[string]struct{}, len(startIDs))
	for _, id := range startIDs {
		starts[id] = struct{}{}
	}

	seen := make(map[string]struct{})
	var reached []string
	for _, startID := range startIDs {
		for _, id := range s.Neighborhood(startID, maxDepth) {
			if _, isStart := starts[id]; isStart {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			reached = append(reached, id)
		}
	}
	return reached
}
