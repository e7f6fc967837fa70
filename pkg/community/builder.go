// Package community builds a hierarchical community forest over the
// entity graph around a pluggable partitioning engine, and fills
// community summaries through a summarizer contract.
package community

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/soundprediction/graphling/pkg/partition"
	"github.com/soundprediction/graphling/pkg/types"
)

// DefaultMinSize is the smallest community emitted when the caller
// does not override it. Set MinSize to 2 to exclude singletons.
const DefaultMinSize = 1

// DefaultMaxLevels bounds hierarchy depth when the caller does not
// override it.
const DefaultMaxLevels = 10

// Options configures a Builder.
type Options struct {
	// Engine partitions each level. Required.
	Engine partition.Engine
	// Params are forwarded to the engine and recorded on the result.
	Params partition.Params
	// MinSize drops communities with fewer members from the output.
	// Filtering applies to emitted records only; the hierarchy always
	// coarsens over the full partition. Zero means DefaultMinSize.
	MinSize int
	// MaxLevels caps hierarchy depth. Zero means DefaultMaxLevels.
	MaxLevels int
}

// Builder runs hierarchical community detection. Detection is
// all-or-nothing: an engine failure at any level aborts the whole run
// with no partial result.
type Builder struct {
	engine    partition.Engine
	params    partition.Params
	minSize   int
	maxLevels int
}

// NewBuilder creates a Builder from options, applying defaults.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("community: %w", partition.ErrEngineUnavailable)
	}
	b := &Builder{
		engine:    opts.Engine,
		params:    opts.Params,
		minSize:   opts.MinSize,
		maxLevels: opts.MaxLevels,
	}
	if b.minSize <= 0 {
		b.minSize = DefaultMinSize
	}
	if b.maxLevels <= 0 {
		b.maxLevels = DefaultMaxLevels
	}
	if b.params == (partition.Params{}) {
		b.params = partition.DefaultParams()
	}
	return b, nil
}

// DetectionResult is the outcome of one hierarchical detection run.
// Params echoes the engine parameters so a rerun can be configured
// identically.
type DetectionResult struct {
	RunID       string             `json:"run_id"`
	Communities []*types.Community `json:"communities"`
	Params      partition.Params   `json:"params"`
	Levels      int                `json:"levels"`
}

// CommunitiesAtLevel filters the result to a single hierarchy level.
func (r *DetectionResult) CommunitiesAtLevel(level int) []*types.Community {
	var out []*types.Community
	for _, c := range r.Communities {
		if c.Level == level {
			out = append(out, c)
		}
	}
	return out
}

// Detect runs hierarchical detection over the given entities and
// relationships. Level 0 partitions the original graph; each further
// level partitions a coarsened graph whose nodes are the previous
// level's communities, with cross-community weights summed and
// intra-community edges dropped. Context is checked between levels so
// long hierarchies cancel promptly.
//
// Relationships whose endpoints are not in the entity list are ignored.
// An empty entity list yields an empty result, not an error.
func (b *Builder) Detect(ctx context.Context, entities []*types.Entity, relationships []*types.Relationship) (*DetectionResult, error) {
	result := &DetectionResult{
		RunID:  uuid.New().String(),
		Params: b.params,
	}
	if len(entities) == 0 {
		return result, nil
	}

	indexOf := make(map[string]int, len(entities))
	groups := make([][]string, 0, len(entities))
	for _, e := range entities {
		if e == nil || e.ID == "" {
			continue
		}
		if _, dup := indexOf[e.ID]; dup {
			continue
		}
		indexOf[e.ID] = len(groups)
		groups = append(groups, []string{e.ID})
	}
	if len(groups) == 0 {
		return result, nil
	}

	edges := prepareEdges(indexOf, relationships)
	nodeCount := len(groups)

	for level := 0; level < b.maxLevels; level++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("community detection cancelled before level %d: %w", level, err)
		}
		if level > 0 && len(edges) == 0 {
			break
		}

		membership, err := b.engine.Partition(ctx, edges, nodeCount, b.params)
		if err != nil {
			return nil, fmt.Errorf("partitioning failed at level %d: %w", level, err)
		}
		if len(membership) != nodeCount {
			return nil, fmt.Errorf("level %d: %w: got %d, want %d",
				level, partition.ErrShortMembership, len(membership), nodeCount)
		}
		// Engine labels are opaque; renumber them densely so they double
		// as node indices for the coarsened graph.
		membership = partition.NormalizeLabels(membership)

		clusters := partition.Group(membership)
		if level > 0 && len(clusters) <= 1 {
			// Everything merged into one aggregate node; no further
			// structure to report.
			break
		}

		nextGroups := make([][]string, 0, len(clusters))
		for _, members := range clusters {
			var entityIDs []string
			for _, node := range members {
				entityIDs = append(entityIDs, groups[node]...)
			}
			nextGroups = append(nextGroups, entityIDs)

			if len(entityIDs) < b.minSize {
				continue
			}
			result.Communities = append(result.Communities, &types.Community{
				ID:        uuid.New().String(),
				Level:     level,
				EntityIDs: entityIDs,
			})
		}
		result.Levels = level + 1

		slog.Debug("community level complete",
			"run_id", result.RunID, "level", level,
			"communities", len(clusters), "nodes", nodeCount, "edges", len(edges))

		if len(clusters) <= 1 || len(clusters) == nodeCount {
			// Collapsed to one community, or no coarsening progress;
			// another pass would repeat itself.
			break
		}

		edges = coarsen(edges, membership)
		groups = nextGroups
		nodeCount = len(clusters)
	}

	return result, nil
}

// prepareEdges projects relationships into dense index space, one edge
// per relationship. Parallel edges are not merged here; engines and the
// coarsening step sum weights where it matters. Relationships with an
// unknown endpoint are dropped.
func prepareEdges(indexOf map[string]int, relationships []*types.Relationship) []partition.WeightedEdge {
	edges := make([]partition.WeightedEdge, 0, len(relationships))
	for _, r := range relationships {
		if r == nil {
			continue
		}
		src, ok := indexOf[r.SourceID]
		if !ok {
			continue
		}
		tgt, ok := indexOf[r.TargetID]
		if !ok {
			continue
		}
		edges = append(edges, partition.WeightedEdge{Source: src, Target: tgt, Weight: float64(r.Weight())})
	}
	return edges
}

// coarsen rewrites edges into community-index space, summing weights of
// edges that land on the same community pair and dropping edges that
// collapse into a single community.
func coarsen(edges []partition.WeightedEdge, membership []int) []partition.WeightedEdge {
	type pair struct{ a, b int }
	weights := make(map[pair]float64)
	var order []pair

	for _, e := range edges {
		a := membership[e.Source]
		b := membership[e.Target]
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		p := pair{a, b}
		if _, seen := weights[p]; !seen {
			order = append(order, p)
		}
		weights[p] += e.Weight
	}

	out := make([]partition.WeightedEdge, 0, len(order))
	for _, p := range order {
		out = append(out, partition.WeightedEdge{Source: p.a, Target: p.b, Weight: weights[p]})
	}
	return out
}
