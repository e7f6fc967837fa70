// Package search merges independently ranked result lists with
// reciprocal rank fusion and composes graph lookups into a
// passage-level retriever.
package search

import "sort"

// DefaultRankConstant is the RRF smoothing constant. Higher values
// flatten the difference between top and bottom ranks.
const DefaultRankConstant = 60

// ReciprocalRankFusion merges any number of ranked lists into one.
// Every occurrence of an item contributes 1/(k + rank) to its score,
// with rank counted 1-based within its list; items missing from a list
// contribute nothing for it. Duplicates are collapsed by key, keeping
// the first-seen record as the payload while later occurrences still
// add to the score.
//
// Output is sorted by descending score. Ties break on the item's best
// (lowest) rank in any single list, then on first-seen order, so the
// result is deterministic.
func ReciprocalRankFusion[T any](lists [][]T, key func(T) string, k int) []T {
	if k <= 0 {
		k = DefaultRankConstant
	}

	type fused struct {
		item      T
		score     float64
		bestRank  int
		firstSeen int
	}

	index := make(map[string]*fused)
	var order []*fused

	for _, list := range lists {
		for i, item := range list {
			rank := i + 1
			id := key(item)
			f, ok := index[id]
			if !ok {
				f = &fused{item: item, bestRank: rank, firstSeen: len(order)}
				index[id] = f
				order = append(order, f)
			}
			f.score += 1.0 / float64(k+rank)
			if rank < f.bestRank {
				f.bestRank = rank
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].score != order[j].score {
			return order[i].score > order[j].score
		}
		if order[i].bestRank != order[j].bestRank {
			return order[i].bestRank < order[j].bestRank
		}
		return order[i].firstSeen < order[j].firstSeen
	})

	out := make([]T, 0, len(order))
	for _, f := range order {
		out = append(out, f.item)
	}
	return out
}
