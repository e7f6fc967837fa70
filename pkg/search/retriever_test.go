package search

import (
	"testing"

	"github.com/soundprediction/graphling/pkg/graph"
	"github.com/soundprediction/graphling/pkg/types"
)

// openAISnapshot builds the OpenAI / Sam Altman / GPT-4 scenario:
// Sam Altman -LEADS-> OpenAI -DEVELOPS-> GPT-4, passage p1 mentioning
// OpenAI+Altman and p2 mentioning OpenAI+GPT-4.
func openAISnapshot() *graph.Snapshot {
	entities := []*types.Entity{
		{ID: "A", Name: "OpenAI", Type: types.EntityTypeOrganization},
		{ID: "B", Name: "Sam Altman", Type: types.EntityTypePerson},
		{ID: "C", Name: "GPT-4", Type: types.EntityTypeTechnology},
	}
	relationships := []*types.Relationship{
		{SourceID: "B", TargetID: "A", Type: "LEADS"},
		{SourceID: "A", TargetID: "C", Type: "DEVELOPS"},
	}
	passages := []*types.Passage{
		{ID: "p1", EntityIDs: []string{"A", "B"}, Content: "Sam Altman leads OpenAI."},
		{ID: "p2", EntityIDs: []string{"A", "C"}, Content: "OpenAI develops GPT-4."},
	}
	return graph.Build(entities, relationships, passages, nil)
}

func passageIDs(passages []*types.Passage) []string {
	out := make([]string, len(passages))
	for i, p := range passages {
		out[i] = p.ID
	}
	return out
}

func TestGraphSearchDepthTwoReachesIndirectPassages(t *testing.T) {
	s := openAISnapshot()

	got := GraphSearch(s, []string{"Sam Altman"}, 2)
	if len(got) != 2 {
		t.Fatalf("expected p1 and p2, got %v", passageIDs(got))
	}
	// Direct passages rank before traversal-derived ones.
	if got[0].ID != "p1" || got[1].ID != "p2" {
		t.Errorf("expected [p1 p2], got %v", passageIDs(got))
	}
}

func TestGraphSearchDepthZeroIsDirectOnly(t *testing.T) {
	s := openAISnapshot()

	got := GraphSearch(s, []string{"Sam Altman"}, 0)
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("expected only p1 at depth 0, got %v", passageIDs(got))
	}
}

func TestGraphSearchSkipsUnmatchedNames(t *testing.T) {
	s := openAISnapshot()

	got := GraphSearch(s, []string{"Nobody", "sam altman"}, 0)
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("expected unmatched name skipped and case-insensitive match, got %v", passageIDs(got))
	}

	if got := GraphSearch(s, []string{"Nobody"}, 3); len(got) != 0 {
		t.Errorf("expected empty result with no matches, got %v", passageIDs(got))
	}
}

func TestGraphSearchNoDuplicatePassages(t *testing.T) {
	s := openAISnapshot()

	// Both names resolve; p1 is linked to both A and B but must appear once.
	got := GraphSearch(s, []string{"OpenAI", "Sam Altman"}, 2)
	seen := make(map[string]int)
	for _, p := range got {
		seen[p.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("passage %s appeared %d times", id, n)
		}
	}
}

func TestSearchFusesVectorResults(t *testing.T) {
	s := openAISnapshot()

	vector := []*types.Passage{
		{ID: "p9", Content: "vector-only passage"},
		{ID: "p1", Content: "Sam Altman leads OpenAI."},
	}

	got := Search(s, []string{"Sam Altman"}, vector, 2, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 fused passages, got %v", passageIDs(got))
	}
	// p1 leads both lists, so it must come out on top.
	if got[0].ID != "p1" {
		t.Errorf("expected p1 first after fusion, got %v", passageIDs(got))
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	s := openAISnapshot()

	vector := []*types.Passage{{ID: "p9", Content: "vector-only"}}
	got := Search(s, []string{"Sam Altman"}, vector, 2, 2)
	if len(got) != 2 {
		t.Errorf("expected limit truncation to 2, got %v", passageIDs(got))
	}

	// Zero limit means unlimited.
	got = Search(s, []string{"Sam Altman"}, vector, 2, 0)
	if len(got) != 3 {
		t.Errorf("expected all 3 without limit, got %v", passageIDs(got))
	}
}
