package graphling

import (
	"context"
	"testing"

	"github.com/soundprediction/graphling/pkg/checkpoint"
	"github.com/soundprediction/graphling/pkg/extract"
	"github.com/soundprediction/graphling/pkg/graph"
	"github.com/soundprediction/graphling/pkg/partition"
	"github.com/soundprediction/graphling/pkg/source"
	"github.com/soundprediction/graphling/pkg/types"
)

func testDataset() *source.Dataset {
	return &source.Dataset{
		Entities: []*types.Entity{
			{ID: "A", Name: "OpenAI", Type: types.EntityTypeOrganization},
			{ID: "B", Name: "Sam Altman", Type: types.EntityTypePerson},
			{ID: "C", Name: "GPT-4", Type: types.EntityTypeTechnology},
		},
		Relationships: []*types.Relationship{
			{SourceID: "B", TargetID: "A", Type: "LEADS", Strength: 5},
			{SourceID: "A", TargetID: "C", Type: "DEVELOPS", Strength: 5},
		},
		Passages: []*types.Passage{
			{ID: "p1", EntityIDs: []string{"A", "B"}, Content: "Sam Altman leads OpenAI."},
			{ID: "p2", EntityIDs: []string{"A", "C"}, Content: "OpenAI develops GPT-4."},
		},
	}
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Engine == nil {
		cfg.Engine = partition.NewLabelPropagation()
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestIngestGraphPublishesSnapshot(t *testing.T) {
	client := newTestClient(t, nil)
	ctx := context.Background()

	if client.Snapshot().EntityCount() != 0 {
		t.Fatal("expected empty initial snapshot")
	}

	if err := client.IngestGraph(ctx, testDataset()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	s := client.Snapshot()
	if s.EntityCount() != 3 || s.RelationshipCount() != 2 || s.PassageCount() != 2 {
		t.Errorf("unexpected snapshot counts: %d entities, %d relationships, %d passages",
			s.EntityCount(), s.RelationshipCount(), s.PassageCount())
	}
}

func TestGraphSearchDepthTwoReachesIndirectPassages(t *testing.T) {
	client := newTestClient(t, nil)
	ctx := context.Background()
	if err := client.IngestGraph(ctx, testDataset()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	passages, err := client.GraphSearch(ctx, []string{"Sam Altman"}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(passages) != 2 || passages[0].ID != "p1" || passages[1].ID != "p2" {
		t.Errorf("expected [p1 p2], got %v", passageIDs(passages))
	}
}

func TestGraphSearchDepthZeroKeepsDirectPassagesOnly(t *testing.T) {
	client := newTestClient(t, nil)
	ctx := context.Background()
	if err := client.IngestGraph(ctx, testDataset()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	passages, err := client.GraphSearch(ctx, []string{"Sam Altman"}, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(passages) != 1 || passages[0].ID != "p1" {
		t.Errorf("expected [p1], got %v", passageIDs(passages))
	}
}

func TestSearchFusesVectorResults(t *testing.T) {
	client := newTestClient(t, nil)
	ctx := context.Background()
	if err := client.IngestGraph(ctx, testDataset()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	vector := []*types.Passage{
		{ID: "p2", Content: "OpenAI develops GPT-4."},
	}
	passages, err := client.Search(ctx, Query{
		RecognizedEntities: []string{"Sam Altman"},
		VectorResults:      vector,
		Depth:              2,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	// p2 appears in both lists, so fusion ranks it first.
	if len(passages) != 2 || passages[0].ID != "p2" {
		t.Errorf("expected p2 boosted to the top, got %v", passageIDs(passages))
	}
}

func TestDetectCommunitiesPublishesHierarchy(t *testing.T) {
	manager, err := checkpoint.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create checkpoint manager: %v", err)
	}
	client := newTestClient(t, &Config{Checkpoints: manager})
	ctx := context.Background()
	if err := client.IngestGraph(ctx, testDataset()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	result, err := client.DetectCommunities(ctx)
	if err != nil {
		t.Fatalf("detection failed: %v", err)
	}
	if len(result.Communities) == 0 {
		t.Fatal("expected communities")
	}

	level := 0
	published := client.Communities(graph.CommunityFilter{Level: &level})
	if len(published) != len(result.CommunitiesAtLevel(0)) {
		t.Errorf("expected level-0 communities on the snapshot, got %d", len(published))
	}

	cp, err := manager.Load(ctx, result.RunID)
	if err != nil {
		t.Fatalf("checkpoint load failed: %v", err)
	}
	if cp == nil || cp.Step != checkpoint.StepCompleted {
		t.Errorf("expected completed checkpoint, got %+v", cp)
	}
}

type stubExtractor struct {
	result *extract.Result
}

func (s *stubExtractor) Extract(ctx context.Context, text string, opts extract.Options) (*extract.Result, error) {
	return s.result, nil
}

func (s *stubExtractor) ExtractBatch(ctx context.Context, texts []string, opts extract.Options) ([]*extract.Result, error) {
	return extract.SequentialBatch(ctx, s, texts, opts)
}

func TestIngestDocumentsMergesByName(t *testing.T) {
	extractor := &stubExtractor{result: &extract.Result{
		Entities: []types.ExtractedEntity{
			{Name: "OpenAI", Type: "organization"},
			{Name: "Greg Brockman", Type: "person"},
		},
		Relationships: []types.ExtractedRelationship{
			{Source: "Greg Brockman", Target: "OpenAI", Type: "CO_FOUNDED", Strength: 4},
		},
	}}
	client := newTestClient(t, &Config{Extractor: extractor})
	ctx := context.Background()
	if err := client.IngestGraph(ctx, testDataset()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	result, err := client.IngestDocuments(ctx, []Document{
		{ID: "p3", Content: "Greg Brockman co-founded OpenAI."},
	})
	if err != nil {
		t.Fatalf("document ingestion failed: %v", err)
	}
	if result.EntitiesAdded != 1 || result.EntitiesMatched != 1 {
		t.Errorf("expected 1 added and 1 matched entity, got %+v", result)
	}
	if result.RelationshipsAdded != 1 || result.PassagesAdded != 1 {
		t.Errorf("expected 1 relationship and 1 passage, got %+v", result)
	}

	s := client.Snapshot()
	if s.EntityCount() != 4 || s.PassageCount() != 3 {
		t.Errorf("unexpected snapshot counts: %d entities, %d passages", s.EntityCount(), s.PassageCount())
	}

	// The existing OpenAI entity was matched, not duplicated, so the new
	// passage is reachable from it.
	p, ok := s.Passage("p3")
	if !ok {
		t.Fatal("expected passage p3 on the snapshot")
	}
	for _, id := range p.EntityIDs {
		if id == "A" {
			return
		}
	}
	t.Errorf("expected p3 linked to existing entity A, got %v", p.EntityIDs)
}

func TestIngestDocumentsWithoutExtractor(t *testing.T) {
	client := newTestClient(t, nil)

	_, err := client.IngestDocuments(context.Background(), []Document{{Content: "text"}})
	if err != ErrNoExtractor {
		t.Errorf("expected ErrNoExtractor, got %v", err)
	}
}

func TestIngestDocumentsMarksCommunitiesStale(t *testing.T) {
	extractor := &stubExtractor{result: &extract.Result{
		Entities: []types.ExtractedEntity{{Name: "OpenAI", Type: "organization"}},
	}}
	client := newTestClient(t, &Config{Extractor: extractor})
	ctx := context.Background()
	if err := client.IngestGraph(ctx, testDataset()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if _, err := client.DetectCommunities(ctx); err != nil {
		t.Fatalf("detection failed: %v", err)
	}

	if _, err := client.IngestDocuments(ctx, []Document{{ID: "p3", Content: "More about OpenAI."}}); err != nil {
		t.Fatalf("document ingestion failed: %v", err)
	}

	stale := 0
	for _, c := range client.Communities(graph.CommunityFilter{MemberID: "A"}) {
		if c.Dirty {
			stale++
		}
	}
	if stale == 0 {
		t.Error("expected communities containing the touched entity to be marked stale")
	}
}

func passageIDs(passages []*types.Passage) []string {
	ids := make([]string, len(passages))
	for i, p := range passages {
		ids[i] = p.ID
	}
	return ids
}
