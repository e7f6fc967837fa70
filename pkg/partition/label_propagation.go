package partition

import (
	"context"
	"math/rand"
	"sort"
)

const defaultMaxIterations = 100

// LabelPropagation is the native partitioning backend: asynchronous
// weighted label propagation with a seeded visit order. Each node
// adopts the label with the highest total edge weight among its
// neighbors, smallest label winning ties, until no label changes or the
// iteration bound is hit.
//
// Params.Resolution has no effect here (the algorithm carries no
// resolution knob); Params.Seed fixes the visit order so runs are
// reproducible, and Params.Iterations overrides the default bound when
// positive.
type LabelPropagation struct{}

// NewLabelPropagation returns the native label propagation engine.
func NewLabelPropagation() *LabelPropagation {
	return &LabelPropagation{}
}

// Partition implements Engine.
func (lp *LabelPropagation) Partition(ctx context.Context, edges []WeightedEdge, nodeCount int, params Params) ([]int, error) {
	if err := validateInput(edges, nodeCount); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Weighted adjacency in index space; parallel edges sum.
	adjacency := make([]map[int]float64, nodeCount)
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		if adjacency[e.Source] == nil {
			adjacency[e.Source] = make(map[int]float64)
		}
		if adjacency[e.Target] == nil {
			adjacency[e.Target] = make(map[int]float64)
		}
		adjacency[e.Source][e.Target] += w
		adjacency[e.Target][e.Source] += w
	}

	labels := make([]int, nodeCount)
	for i := range labels {
		labels[i] = i
	}

	maxIterations := defaultMaxIterations
	if params.Iterations > 0 {
		maxIterations = params.Iterations
	}

	rng := rand.New(rand.NewSource(params.Seed))
	order := rng.Perm(nodeCount)

	for iteration := 0; iteration < maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for _, node := range order {
			if len(adjacency[node]) == 0 {
				continue
			}

			weightByLabel := make(map[int]float64)
			for neighbor, weight := range adjacency[node] {
				weightByLabel[labels[neighbor]] += weight
			}

			best := labels[node]
			bestWeight := weightByLabel[best]
			for label, weight := range weightByLabel {
				if weight > bestWeight || (weight == bestWeight && label < best) {
					best = label
					bestWeight = weight
				}
			}

			if best != labels[node] {
				labels[node] = best
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return NormalizeLabels(labels), nil
}

// NormalizeLabels renumbers arbitrary labels to dense 0..k-1, assigned
// in first-appearance order. Callers that need labels to double as node
// indices (e.g. graph coarsening) run memberships through this first.
func NormalizeLabels(labels []int) []int {
	remap := make(map[int]int)
	out := make([]int, len(labels))
	for i, label := range labels {
		dense, ok := remap[label]
		if !ok {
			dense = len(remap)
			remap[label] = dense
		}
		out[i] = dense
	}
	return out
}

// CommunityCount returns the number of distinct labels in a membership.
func CommunityCount(membership []int) int {
	seen := make(map[int]struct{}, len(membership))
	for _, label := range membership {
		seen[label] = struct{}{}
	}
	return len(seen)
}

// Group inverts a membership into label -> member indices, labels in
// ascending order and members in ascending index order.
func Group(membership []int) [][]int {
	byLabel := make(map[int][]int)
	for node, label := range membership {
		byLabel[label] = append(byLabel[label], node)
	}

	labels := make([]int, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	groups := make([][]int, 0, len(labels))
	for _, label := range labels {
		members := byLabel[label]
		sort.Ints(members)
		groups = append(groups, members)
	}
	return groups
}
