// Package utils provides common utility functions for the graphling project.
package utils

import (
	"container/heap"
	"math"
	"sort"
)

// CosineSimilarity calculates the cosine similarity between two float32 vectors.
// Returns 0 if vectors have different lengths, are empty, or either has zero magnitude.
// The result is in the range [-1, 1], where 1 means identical direction,
// 0 means orthogonal, and -1 means opposite direction.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Magnitude calculates the Euclidean magnitude (L2 norm) of a float32 vector.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// ScoredItem represents an item with a score for top-K selection.
type ScoredItem[T any] struct {
	Item  T
	Score float64
}

// minHeap implements a min-heap for ScoredItem. The smallest score sits
// at the root, so deciding whether a new item belongs in the top K is a
// single comparison.
type minHeap[T any] []ScoredItem[T]

func (h minHeap[T]) Len() int           { return len(h) }
func (h minHeap[T]) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h minHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap[T]) Push(x any) {
	*h = append(*h, x.(ScoredItem[T]))
}

func (h *minHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopKByScore returns the K items with the highest scores, sorted in
// descending order. O(n log k), which beats a full sort when k << n.
// Items with equal scores keep their input order.
func TopKByScore[T any](items []ScoredItem[T], k int) []ScoredItem[T] {
	if k <= 0 || len(items) == 0 {
		return nil
	}

	if k >= len(items) {
		result := make([]ScoredItem[T], len(items))
		copy(result, items)
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Score > result[j].Score
		})
		return result
	}

	// Track input positions so ties resolve to input order.
	type indexed struct {
		item ScoredItem[T]
		pos  int
	}

	h := make(minHeap[indexed], 0, k)
	heap.Init(&h)

	for pos, item := range items {
		switch {
		case h.Len() < k:
			heap.Push(&h, ScoredItem[indexed]{Item: indexed{item, pos}, Score: item.Score})
		case item.Score > h[0].Score:
			heap.Pop(&h)
			heap.Push(&h, ScoredItem[indexed]{Item: indexed{item, pos}, Score: item.Score})
		}
	}

	selected := make([]indexed, 0, h.Len())
	for h.Len() > 0 {
		selected = append(selected, heap.Pop(&h).(ScoredItem[indexed]).Item)
	}
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].item.Score != selected[j].item.Score {
			return selected[i].item.Score > selected[j].item.Score
		}
		return selected[i].pos < selected[j].pos
	})

	result := make([]ScoredItem[T], len(selected))
	for i, s := range selected {
		result[i] = s.item
	}
	return result
}
