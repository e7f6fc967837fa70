package community

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/soundprediction/graphling/pkg/graph"
	"github.com/soundprediction/graphling/pkg/nlp"
	"github.com/soundprediction/graphling/pkg/types"
)

// MaxSummarizeConcurrency limits concurrent community summarization calls.
const MaxSummarizeConcurrency = 10

// Summarizer produces a short description of a community from its
// member entities and the relationships among them.
type Summarizer interface {
	Summarize(ctx context.Context, entities []*types.Entity, relationships []*types.Relationship) (string, error)
}

// SummarizerFunc adapts a plain function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, entities []*types.Entity, relationships []*types.Relationship) (string, error)

// Summarize implements Summarizer.
func (f SummarizerFunc) Summarize(ctx context.Context, entities []*types.Entity, relationships []*types.Relationship) (string, error) {
	return f(ctx, entities, relationships)
}

// Summarize fills Community.Summary for every given community using the
// snapshot for entity and relationship context, running up to
// MaxSummarizeConcurrency calls in parallel. Failures are collected
// and reported together; communities whose summarization failed keep
// an empty summary.
func Summarize(ctx context.Context, summarizer Summarizer, snapshot *graph.Snapshot, communities []*types.Community) error {
	if summarizer == nil {
		return fmt.Errorf("community: nil summarizer")
	}

	semaphore := make(chan struct{}, MaxSummarizeConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var summarizeErrors []error

	for _, c := range communities {
		wg.Add(1)
		go func(c *types.Community) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			entities, relationships := communityContext(snapshot, c)
			summary, err := summarizer.Summarize(ctx, entities, relationships)
			if err != nil {
				mu.Lock()
				summarizeErrors = append(summarizeErrors, fmt.Errorf("community %s: %w", c.ID, err))
				mu.Unlock()
				return
			}

			mu.Lock()
			c.Summary = summary
			mu.Unlock()
		}(c)
	}

	wg.Wait()

	if len(summarizeErrors) > 0 {
		return fmt.Errorf("some errors arose during community summarization: %v", summarizeErrors)
	}
	return nil
}

// communityContext gathers a community's member entities and the
// relationships whose endpoints are both members.
func communityContext(snapshot *graph.Snapshot, c *types.Community) ([]*types.Entity, []*types.Relationship) {
	members := make(map[string]struct{}, len(c.EntityIDs))
	var entities []*types.Entity
	for _, id := range c.EntityIDs {
		if e, ok := snapshot.Entity(id); ok {
			entities = append(entities, e)
			members[id] = struct{}{}
		}
	}

	var relationships []*types.Relationship
	for _, r := range snapshot.Relationships() {
		if _, ok := members[r.SourceID]; !ok {
			continue
		}
		if _, ok := members[r.TargetID]; !ok {
			continue
		}
		relationships = append(relationships, r)
	}
	return entities, relationships
}

// LLMSummarizer implements Summarizer on an LLM client.
type LLMSummarizer struct {
	client nlp.Client
}

// NewLLMSummarizer creates a summarizer backed by the given client.
func NewLLMSummarizer(client nlp.Client) *LLMSummarizer {
	return &LLMSummarizer{client: client}
}

// Summarize implements Summarizer.
func (s *LLMSummarizer) Summarize(ctx context.Context, entities []*types.Entity, relationships []*types.Relationship) (string, error) {
	var sb strings.Builder
	sb.WriteString("Entities:\n")
	for _, e := range entities {
		fmt.Fprintf(&sb, "- %s (%s)", e.Name, e.Type)
		if e.Description != "" {
			fmt.Fprintf(&sb, ": %s", e.Description)
		}
		sb.WriteString("\n")
	}
	if len(relationships) > 0 {
		sb.WriteString("\nRelationships:\n")
		for _, r := range relationships {
			fmt.Fprintf(&sb, "- %s %s %s", r.SourceID, r.Type, r.TargetID)
			if r.Description != "" {
				fmt.Fprintf(&sb, ": %s", r.Description)
			}
			sb.WriteString("\n")
		}
	}

	messages := []nlp.Message{
		{
			Role:    nlp.RoleSystem,
			Content: `You are an expert at synthesizing information. Given the entities and relationships of a community in a knowledge graph, write a single comprehensive summary of what ties them together. The summary should be concise (under 250 words) and maintain the most important details.`,
		},
		{
			Role: nlp.RoleUser,
			Content: fmt.Sprintf(`Please summarize this community of related entities:

%s
Provide a single summary that captures what this group has in common:`, sb.String()),
		},
	}

	response, err := s.client.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to get LLM response for community summarization: %w", err)
	}

	return strings.TrimSpace(response.Content), nil
}
