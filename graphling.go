package graphling

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/soundprediction/graphling/pkg/checkpoint"
	"github.com/soundprediction/graphling/pkg/community"
	"github.com/soundprediction/graphling/pkg/extract"
	"github.com/soundprediction/graphling/pkg/graph"
	"github.com/soundprediction/graphling/pkg/partition"
	"github.com/soundprediction/graphling/pkg/types"
)

// Config configures a Client.
type Config struct {
	// Engine partitions the entity graph during community detection.
	// Required.
	Engine partition.Engine

	// Params are forwarded to the engine. Zero value means
	// partition.DefaultParams.
	Params partition.Params

	// MinSize drops communities with fewer members from detection
	// output. Zero means community.DefaultMinSize.
	MinSize int

	// MaxLevels caps hierarchy depth. Zero means
	// community.DefaultMaxLevels.
	MaxLevels int

	// Extractor backs IngestDocuments. Optional; document ingestion
	// fails without it.
	Extractor extract.Extractor

	// Summarizer fills community summaries after detection. Optional.
	Summarizer community.Summarizer

	// Checkpoints records detection-run progress on disk. Optional.
	Checkpoints *checkpoint.Manager

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Client is the default Graphling implementation. The current snapshot
// is held behind an atomic pointer: reads are lock-free and always see
// a complete snapshot, while ingestion builds a replacement off to the
// side and swaps it in.
type Client struct {
	snapshot atomic.Pointer[graph.Snapshot]

	builder     *community.Builder
	extractor   extract.Extractor
	summarizer  community.Summarizer
	checkpoints *checkpoint.Manager
	logger      *slog.Logger
}

// NewClient creates a client with an empty initial snapshot.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("graphling: nil config")
	}

	builder, err := community.NewBuilder(community.Options{
		Engine:    cfg.Engine,
		Params:    cfg.Params,
		MinSize:   cfg.MinSize,
		MaxLevels: cfg.MaxLevels,
	})
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		builder:     builder,
		extractor:   cfg.Extractor,
		summarizer:  cfg.Summarizer,
		checkpoints: cfg.Checkpoints,
		logger:      logger,
	}
	c.snapshot.Store(graph.Build(nil, nil, nil, nil))
	return c, nil
}

// Snapshot returns the current immutable snapshot.
func (c *Client) Snapshot() *graph.Snapshot {
	return c.snapshot.Load()
}

// publish swaps in a new snapshot. In-flight readers keep the old one.
func (c *Client) publish(s *graph.Snapshot) {
	c.snapshot.Store(s)
	c.logger.Info("snapshot published",
		"entities", s.EntityCount(),
		"relationships", s.RelationshipCount(),
		"passages", s.PassageCount())
}

// Communities lists communities on the current snapshot.
func (c *Client) Communities(filter graph.CommunityFilter) []*types.Community {
	return c.Snapshot().Communities(filter)
}

// Close releases backend resources held by the extractor, if any.
func (c *Client) Close() error {
	switch closer := c.extractor.(type) {
	case interface{ Close() error }:
		return closer.Close()
	case interface{ Close() }:
		closer.Close()
	}
	return nil
}
