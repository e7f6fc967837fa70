package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/soundprediction/go-gline-rs/pkg/gline"

	"github.com/soundprediction/graphling/pkg/types"
)

// GLiNERExtractor implements Extractor with a local GLiNER span model.
// It is entity-only; relationship requests are ignored. The underlying
// model is not safe for concurrent prediction, so calls serialize on a
// mutex.
type GLiNERExtractor struct {
	model *gline.Model
	mu    sync.Mutex
}

// NewGLiNERExtractor loads a span model from a local directory
// (expects model.onnx and tokenizer.json) or a Hugging Face model id.
func NewGLiNERExtractor(modelID string) (*GLiNERExtractor, error) {
	if err := gline.Init(); err != nil {
		return nil, fmt.Errorf("failed to init gline: %w", err)
	}

	if _, err := os.Stat(modelID); err == nil {
		modelPath := filepath.Join(modelID, "model.onnx")
		tokPath := filepath.Join(modelID, "tokenizer.json")
		m, err := gline.NewSpanModel(modelPath, tokPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load span model from %s: %w", modelID, err)
		}
		return &GLiNERExtractor{model: m}, nil
	}

	m, err := gline.NewSpanModelFromHF(modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load span model %s: %w", modelID, err)
	}
	return &GLiNERExtractor{model: m}, nil
}

// Extract implements Extractor.
func (e *GLiNERExtractor) Extract(ctx context.Context, text string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model == nil {
		return nil, fmt.Errorf("span model not loaded")
	}

	predictions, err := e.model.Predict([]string{text}, typeLabels(opts))
	if err != nil {
		return nil, fmt.Errorf("gliner prediction failed: %w", err)
	}

	result := &Result{}
	if len(predictions) == 0 {
		return result, nil
	}

	seen := make(map[string]struct{})
	for _, span := range predictions[0] {
		key := span.Text + "\x00" + span.Label
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result.Entities = append(result.Entities, types.ExtractedEntity{
			Name: span.Text,
			Type: string(types.ParseEntityType(span.Label)),
		})
	}
	return result, nil
}

// ExtractBatch implements Extractor sequentially; the model predicts
// one text at a time.
func (e *GLiNERExtractor) ExtractBatch(ctx context.Context, texts []string, opts Options) ([]*Result, error) {
	return SequentialBatch(ctx, e, texts, opts)
}

// Close releases the model.
func (e *GLiNERExtractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		e.model.Close()
		e.model = nil
	}
}
