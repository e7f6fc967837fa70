package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/soundprediction/graphling/pkg/nlp"
	"github.com/soundprediction/graphling/pkg/types"
)

// LLMExtractor implements Extractor with a prompted chat model. The
// model is asked for strict JSON; responses are passed through
// jsonrepair before decoding because models routinely emit almost-JSON.
type LLMExtractor struct {
	client nlp.Client
}

// NewLLMExtractor creates an extractor backed by the given client.
func NewLLMExtractor(client nlp.Client) *LLMExtractor {
	return &LLMExtractor{client: client}
}

// llmExtraction mirrors the JSON shape the prompt asks for.
type llmExtraction struct {
	Entities      []types.ExtractedEntity       `json:"entities"`
	Relationships []types.ExtractedRelationship `json:"relationships"`
}

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, text string, opts Options) (*Result, error) {
	messages := []nlp.Message{
		nlp.NewSystemMessage(e.systemPrompt(opts)),
		nlp.NewUserMessage(fmt.Sprintf("Extract from the following text:\n\n%s", text)),
	}

	response, err := e.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("llm extraction failed: %w", err)
	}

	result, err := parseExtractionResponse(response.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	// Constrain types to the fixed enumeration.
	for i := range result.Entities {
		result.Entities[i].Type = string(types.ParseEntityType(result.Entities[i].Type))
	}
	return result, nil
}

// ExtractBatch implements Extractor. The chat contract has no native
// batch path, so this falls back to sequential calls.
func (e *LLMExtractor) ExtractBatch(ctx context.Context, texts []string, opts Options) ([]*Result, error) {
	return SequentialBatch(ctx, e, texts, opts)
}

func (e *LLMExtractor) systemPrompt(opts Options) string {
	var sb strings.Builder
	sb.WriteString("You are an expert at extracting entity nodes from text for a knowledge graph. ")
	sb.WriteString("Identify the entities mentioned in the text")
	if opts.IncludeRelationships {
		sb.WriteString(" and the relationships between them")
	}
	sb.WriteString(".\n\nAllowed entity types: ")
	sb.WriteString(strings.Join(typeLabels(opts), ", "))
	sb.WriteString(".\n\nRespond with valid JSON only, in this shape:\n")
	sb.WriteString(`{"entities": [{"name": "...", "type": "...", "description": "..."}]`)
	if opts.IncludeRelationships {
		sb.WriteString(`, "relationships": [{"source": "...", "target": "...", "type": "...", "description": "...", "strength": 1}]`)
	}
	sb.WriteString("}")
	return sb.String()
}

// parseExtractionResponse decodes an LLM extraction reply, repairing
// malformed JSON and tolerating both the wrapped object shape and a
// bare entity array.
func parseExtractionResponse(content string) (*Result, error) {
	repaired, err := jsonrepair.JSONRepair(content)
	if err == nil {
		content = repaired
	}

	var wrapped llmExtraction
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil {
		if len(wrapped.Entities) > 0 || len(wrapped.Relationships) > 0 {
			return &Result{Entities: wrapped.Entities, Relationships: wrapped.Relationships}, nil
		}
	}

	var bare []types.ExtractedEntity
	if err := json.Unmarshal([]byte(content), &bare); err == nil {
		return &Result{Entities: bare}, nil
	}

	// Last resort: pull the outermost JSON value out of surrounding prose.
	start := strings.IndexAny(content, "[{")
	end := strings.LastIndexAny(content, "]}")
	if start >= 0 && end > start {
		return parseExtractionSlice(content[start : end+1])
	}

	return nil, fmt.Errorf("no decodable JSON in response")
}

func parseExtractionSlice(content string) (*Result, error) {
	var wrapped llmExtraction
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil {
		return &Result{Entities: wrapped.Entities, Relationships: wrapped.Relationships}, nil
	}
	var bare []types.ExtractedEntity
	if err := json.Unmarshal([]byte(content), &bare); err == nil {
		return &Result{Entities: bare}, nil
	}
	return nil, fmt.Errorf("no decodable JSON in response")
}
