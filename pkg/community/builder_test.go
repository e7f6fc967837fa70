package community

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/soundprediction/graphling/pkg/partition"
	"github.com/soundprediction/graphling/pkg/types"
)

// recordingEngine wraps a sequence of canned memberships and records
// the edges it was handed at each level.
type recordingEngine struct {
	memberships [][]int
	calls       [][]partition.WeightedEdge
	err         error
}

func (e *recordingEngine) Partition(ctx context.Context, edges []partition.WeightedEdge, nodeCount int, params partition.Params) ([]int, error) {
	e.calls = append(e.calls, append([]partition.WeightedEdge(nil), edges...))
	if e.err != nil {
		return nil, e.err
	}
	call := len(e.calls) - 1
	if call >= len(e.memberships) {
		// Identity partition terminates the hierarchy.
		out := make([]int, nodeCount)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	return e.memberships[call], nil
}

func entityList(ids ...string) []*types.Entity {
	out := make([]*types.Entity, len(ids))
	for i, id := range ids {
		out[i] = &types.Entity{ID: id, Name: id}
	}
	return out
}

func rel(src, tgt string, strength int) *types.Relationship {
	return &types.Relationship{SourceID: src, TargetID: tgt, Type: "related_to", Strength: strength}
}

func TestDetectEmptyEntities(t *testing.T) {
	b, err := NewBuilder(Options{Engine: partition.NewLabelPropagation()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := b.Detect(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Communities) != 0 || result.Levels != 0 {
		t.Errorf("expected empty result, got %d communities, %d levels", len(result.Communities), result.Levels)
	}
	if result.RunID == "" {
		t.Error("expected run id even on empty input")
	}
}

func TestDetectZeroEdgesYieldsSingletons(t *testing.T) {
	b, err := NewBuilder(Options{Engine: partition.NewLabelPropagation()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := b.Detect(context.Background(), entityList("a", "b", "c"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Default min size is 1, so every entity gets its own level-0
	// singleton community.
	level0 := result.CommunitiesAtLevel(0)
	if len(level0) != 3 {
		t.Fatalf("expected 3 singleton communities, got %d", len(level0))
	}
	for _, c := range level0 {
		if len(c.EntityIDs) != 1 {
			t.Errorf("expected singleton, got %v", c.EntityIDs)
		}
	}
}

func TestDetectMinSizeTwoExcludesSingletons(t *testing.T) {
	b, err := NewBuilder(Options{Engine: partition.NewLabelPropagation(), MinSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := b.Detect(context.Background(), entityList("a", "b", "c"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Communities) != 0 {
		t.Errorf("expected singletons filtered at min size 2, got %d", len(result.Communities))
	}
}

func TestDetectEngineFailureAbortsRun(t *testing.T) {
	engineErr := errors.New("backend exploded")
	b, err := NewBuilder(Options{Engine: &recordingEngine{err: engineErr}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := b.Detect(context.Background(), entityList("a", "b"), []*types.Relationship{rel("a", "b", 1)})
	if err == nil {
		t.Fatal("expected error from failing engine")
	}
	if !errors.Is(err, engineErr) {
		t.Errorf("expected wrapped engine error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no partial result, got %+v", result)
	}
}

func TestDetectTwoTriangleHierarchy(t *testing.T) {
	entities := entityList("a", "b", "c", "d", "e", "f")
	relationships := []*types.Relationship{
		rel("a", "b", 5), rel("b", "c", 5), rel("a", "c", 5),
		rel("d", "e", 5), rel("e", "f", 5), rel("d", "f", 5),
		rel("c", "d", 1),
	}

	b, err := NewBuilder(Options{Engine: partition.NewLabelPropagation()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := b.Detect(context.Background(), entities, relationships)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	level0 := result.CommunitiesAtLevel(0)
	if len(level0) != 2 {
		t.Fatalf("expected 2 level-0 communities, got %d", len(level0))
	}

	// No entity may appear in two sibling communities.
	seen := make(map[string]string)
	for _, c := range level0 {
		for _, id := range c.EntityIDs {
			if other, dup := seen[id]; dup {
				t.Errorf("entity %s in both %s and %s", id, other, c.ID)
			}
			seen[id] = c.ID
		}
	}

	// Level 0 covers every entity exactly once.
	var all []string
	for id := range seen {
		all = append(all, id)
	}
	sort.Strings(all)
	if len(all) != 6 {
		t.Errorf("expected all 6 entities covered at level 0, got %v", all)
	}
}

func TestDetectMinSizeFiltersOutputOnly(t *testing.T) {
	// Partition {a,b,c} into {a,b} and {c}: the singleton is filtered
	// from the output but still feeds the next level's coarsening.
	engine := &recordingEngine{memberships: [][]int{{0, 0, 1}}}
	b, err := NewBuilder(Options{Engine: engine, MinSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relationships := []*types.Relationship{rel("a", "b", 2), rel("b", "c", 3)}
	result, err := b.Detect(context.Background(), entityList("a", "b", "c"), relationships)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	level0 := result.CommunitiesAtLevel(0)
	if len(level0) != 1 {
		t.Fatalf("expected 1 community above min size, got %d", len(level0))
	}
	if !level0[0].Contains("a") || !level0[0].Contains("b") {
		t.Errorf("expected {a,b}, got %v", level0[0].EntityIDs)
	}

	// The second engine call sees the coarsened graph over both
	// communities, filtered or not: one cross edge with weight 3.
	if len(engine.calls) < 2 {
		t.Fatalf("expected a second level partition call, got %d calls", len(engine.calls))
	}
	coarse := engine.calls[1]
	if len(coarse) != 1 {
		t.Fatalf("expected 1 coarsened edge, got %v", coarse)
	}
	if coarse[0].Weight != 3 {
		t.Errorf("expected coarsened weight 3 (b-c edge only), got %f", coarse[0].Weight)
	}
}

func TestDetectCoarseningSumsWeightsAndDropsSelfLoops(t *testing.T) {
	// Level 0: {a,b} vs {c,d}. Edges a-c (2) and b-d (3) must merge
	// into one cross-community edge of weight 5; a-b and c-d collapse
	// into self-loops and disappear.
	engine := &recordingEngine{memberships: [][]int{{0, 0, 1, 1}}}
	b, err := NewBuilder(Options{Engine: engine})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relationships := []*types.Relationship{
		rel("a", "b", 9), rel("c", "d", 9),
		rel("a", "c", 2), rel("b", "d", 3),
	}
	if _, err := b.Detect(context.Background(), entityList("a", "b", "c", "d"), relationships); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(engine.calls) < 2 {
		t.Fatalf("expected a second level call, got %d", len(engine.calls))
	}
	coarse := engine.calls[1]
	if len(coarse) != 1 {
		t.Fatalf("expected exactly 1 coarsened edge, got %v", coarse)
	}
	if coarse[0].Source != 0 || coarse[0].Target != 1 || coarse[0].Weight != 5 {
		t.Errorf("expected edge (0,1,5), got %+v", coarse[0])
	}
}

func TestDetectEdgePreparationKeepsParallelEdges(t *testing.T) {
	engine := &recordingEngine{}
	b, err := NewBuilder(Options{Engine: engine})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relationships := []*types.Relationship{
		rel("a", "b", 2),
		rel("b", "a", 3), // reverse direction, kept as its own edge
		rel("a", "ghost", 1),
		rel("ghost", "b", 1),
	}
	if _, err := b.Detect(context.Background(), entityList("a", "b"), relationships); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(engine.calls) == 0 {
		t.Fatal("engine never called")
	}
	level0 := engine.calls[0]
	if len(level0) != 2 {
		t.Fatalf("expected 2 prepared edges with dangling ones dropped, got %v", level0)
	}
	if level0[0].Weight != 2 || level0[1].Weight != 3 {
		t.Errorf("expected per-relationship weights [2 3], got %+v", level0)
	}
}

func TestDetectDefaultStrengthIsOne(t *testing.T) {
	engine := &recordingEngine{}
	b, err := NewBuilder(Options{Engine: engine})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One relationship without a strength, one with a non-positive one;
	// both must count as weight 1.
	relationships := []*types.Relationship{
		{SourceID: "a", TargetID: "b", Type: "related_to"},
		{SourceID: "a", TargetID: "b", Type: "rated", Strength: -4},
	}
	if _, err := b.Detect(context.Background(), entityList("a", "b"), relationships); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, e := range engine.calls[0] {
		if e.Weight != 1 {
			t.Errorf("expected coerced weight 1, got %f", e.Weight)
		}
	}
}

func TestDetectAcceptsNonDenseEngineLabels(t *testing.T) {
	// Engines may hand back any labels as long as equal labels mean the
	// same community. {10,10,20,20} over a 4-node chain must coarsen to
	// a 2-node graph, not be taken as node indices.
	engine := &recordingEngine{memberships: [][]int{{10, 10, 20, 20}}}
	b, err := NewBuilder(Options{Engine: engine})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relationships := []*types.Relationship{
		rel("a", "b", 1), rel("b", "c", 2), rel("c", "d", 1),
	}
	result, err := b.Detect(context.Background(), entityList("a", "b", "c", "d"), relationships)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	level0 := result.CommunitiesAtLevel(0)
	if len(level0) != 2 {
		t.Fatalf("expected 2 level-0 communities, got %d", len(level0))
	}
	if !level0[0].Contains("a") || !level0[0].Contains("b") {
		t.Errorf("expected first community {a,b}, got %v", level0[0].EntityIDs)
	}
	if !level0[1].Contains("c") || !level0[1].Contains("d") {
		t.Errorf("expected second community {c,d}, got %v", level0[1].EntityIDs)
	}

	if len(engine.calls) < 2 {
		t.Fatalf("expected a second level call, got %d", len(engine.calls))
	}
	coarse := engine.calls[1]
	if len(coarse) != 1 {
		t.Fatalf("expected 1 coarsened edge, got %v", coarse)
	}
	if coarse[0].Source != 0 || coarse[0].Target != 1 || coarse[0].Weight != 2 {
		t.Errorf("expected edge (0,1,2) in coarse index space, got %+v", coarse[0])
	}
}

func TestDetectCancellationBetweenLevels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	engine := &recordingEngine{memberships: [][]int{{0, 0, 1, 1}}}
	// Cancel after the first partition call by wrapping the engine.
	wrapped := partition.EngineFunc(func(ctx context.Context, edges []partition.WeightedEdge, nodeCount int, params partition.Params) ([]int, error) {
		membership, err := engine.Partition(ctx, edges, nodeCount, params)
		cancel()
		return membership, err
	})

	b, err := NewBuilder(Options{Engine: wrapped})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relationships := []*types.Relationship{
		rel("a", "b", 1), rel("c", "d", 1), rel("b", "c", 1),
	}
	_, err = b.Detect(ctx, entityList("a", "b", "c", "d"), relationships)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(engine.calls) != 1 {
		t.Errorf("expected exactly 1 partition call before cancellation, got %d", len(engine.calls))
	}
}

func TestDetectRecordsParams(t *testing.T) {
	params := partition.Params{Resolution: 1.5, Objective: "modularity", Iterations: 3, Seed: 99}
	b, err := NewBuilder(Options{Engine: partition.NewLabelPropagation(), Params: params})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := b.Detect(context.Background(), entityList("a", "b"), []*types.Relationship{rel("a", "b", 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Params != params {
		t.Errorf("expected params echoed on result, got %+v", result.Params)
	}
}
