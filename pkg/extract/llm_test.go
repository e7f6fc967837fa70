package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/soundprediction/graphling/pkg/nlp"
)

// cannedClient returns a fixed response for every chat call.
type cannedClient struct {
	content string
	err     error
	calls   int
}

func (c *cannedClient) Chat(ctx context.Context, messages []nlp.Message) (*nlp.Response, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &nlp.Response{Content: c.content}, nil
}

func (c *cannedClient) Close() error { return nil }

func TestLLMExtractorParsesWrappedJSON(t *testing.T) {
	client := &cannedClient{content: `{"entities": [{"name": "OpenAI", "type": "organization"}], "relationships": [{"source": "Sam Altman", "target": "OpenAI", "type": "LEADS"}]}`}
	e := NewLLMExtractor(client)

	result, err := e.Extract(context.Background(), "Sam Altman leads OpenAI.", Options{IncludeRelationships: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entities) != 1 || result.Entities[0].Name != "OpenAI" {
		t.Errorf("expected OpenAI entity, got %+v", result.Entities)
	}
	if len(result.Relationships) != 1 || result.Relationships[0].Type != "LEADS" {
		t.Errorf("expected LEADS relationship, got %+v", result.Relationships)
	}
}

func TestLLMExtractorRepairsAlmostJSON(t *testing.T) {
	// Trailing comma and single quotes: jsonrepair territory.
	client := &cannedClient{content: `{'entities': [{'name': 'GPT-4', 'type': 'technology'},]}`}
	e := NewLLMExtractor(client)

	result, err := e.Extract(context.Background(), "GPT-4 shipped.", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entities) != 1 || result.Entities[0].Name != "GPT-4" {
		t.Errorf("expected repaired GPT-4 entity, got %+v", result.Entities)
	}
}

func TestLLMExtractorNormalizesUnknownTypes(t *testing.T) {
	client := &cannedClient{content: `{"entities": [{"name": "Widget", "type": "gadget"}]}`}
	e := NewLLMExtractor(client)

	result, err := e.Extract(context.Background(), "A widget.", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entities[0].Type != "other" {
		t.Errorf("expected unknown type mapped to other, got %q", result.Entities[0].Type)
	}
}

func TestLLMExtractorPropagatesBackendFailure(t *testing.T) {
	backendErr := errors.New("model offline")
	client := &cannedClient{err: backendErr}
	e := NewLLMExtractor(client)

	_, err := e.Extract(context.Background(), "text", Options{})
	if !errors.Is(err, backendErr) {
		t.Errorf("expected backend error propagated, got %v", err)
	}
}

func TestExtractBatchSequentialFallback(t *testing.T) {
	client := &cannedClient{content: `{"entities": [{"name": "X", "type": "concept"}]}`}
	e := NewLLMExtractor(client)

	results, err := e.ExtractBatch(context.Background(), []string{"one", "two", "three"}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if client.calls != 3 {
		t.Errorf("expected 3 sequential calls, got %d", client.calls)
	}
}

func TestExtractBatchAbortsOnFailure(t *testing.T) {
	backendErr := errors.New("model offline")
	client := &cannedClient{err: backendErr}
	e := NewLLMExtractor(client)

	_, err := e.ExtractBatch(context.Background(), []string{"one", "two"}, Options{})
	if err == nil {
		t.Fatal("expected batch failure")
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("expected backend error wrapped, got %v", err)
	}
	if client.calls != 1 {
		t.Errorf("expected batch to stop at first failure, got %d calls", client.calls)
	}
}
