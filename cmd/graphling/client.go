package graphling

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/soundprediction/graphling"
	"github.com/soundprediction/graphling/pkg/checkpoint"
	"github.com/soundprediction/graphling/pkg/community"
	"github.com/soundprediction/graphling/pkg/config"
	"github.com/soundprediction/graphling/pkg/extract"
	"github.com/soundprediction/graphling/pkg/nlp"
	"github.com/soundprediction/graphling/pkg/partition"
	"github.com/soundprediction/graphling/pkg/telemetry"
)

// initializeClient wires a graphling client from configuration: the
// partitioning engine, the optional LLM-backed extractor and
// summarizer, checkpointing, and telemetry-enabled logging.
func initializeClient(cfg *config.Config) (*graphling.Client, error) {
	engine, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}

	params := partition.DefaultParams()
	if cfg.Partition.Resolution > 0 {
		params.Resolution = cfg.Partition.Resolution
	}
	if cfg.Partition.Iterations != 0 {
		params.Iterations = cfg.Partition.Iterations
	}
	if cfg.Partition.Seed != 0 {
		params.Seed = cfg.Partition.Seed
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	clientCfg := &graphling.Config{
		Engine:    engine,
		Params:    params,
		MinSize:   cfg.Partition.MinSize,
		MaxLevels: cfg.Partition.MaxLevels,
		Logger:    logger,
	}

	if cfg.NLP.APIKey != "" {
		llmClient, err := buildLLMClient(cfg)
		if err != nil {
			return nil, err
		}
		clientCfg.Extractor = extract.NewLLMExtractor(llmClient)
		clientCfg.Summarizer = community.NewLLMSummarizer(llmClient)
		fmt.Printf("NLP provider: %s, model: %s\n", cfg.NLP.Provider, cfg.NLP.Model)
	}

	manager, err := checkpoint.NewManager(cfg.Checkpoint.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	clientCfg.Checkpoints = manager

	return graphling.NewClient(clientCfg)
}

func buildEngine(cfg *config.Config) (partition.Engine, error) {
	switch cfg.Partition.Engine {
	case "", "label_propagation":
		return partition.NewLabelPropagation(), nil
	case "leiden":
		if len(cfg.Partition.LeidenCommand) == 0 {
			return nil, fmt.Errorf("partition engine leiden requires partition.leiden_command")
		}
		return partition.NewLeiden(cfg.Partition.LeidenCommand...), nil
	default:
		return nil, fmt.Errorf("unsupported partition engine: %s", cfg.Partition.Engine)
	}
}

func buildLLMClient(cfg *config.Config) (nlp.Client, error) {
	if cfg.NLP.Provider != "openai" {
		return nil, fmt.Errorf("unsupported NLP provider: %s", cfg.NLP.Provider)
	}

	temperature := cfg.NLP.Temperature
	maxTokens := cfg.NLP.MaxTokens
	base, err := nlp.NewOpenAIClient(cfg.NLP.APIKey, nlp.Config{
		Model:       cfg.NLP.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		BaseURL:     cfg.NLP.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create NLP client: %w", err)
	}

	var client nlp.Client = nlp.NewRetryClient(base, nlp.DefaultRetryConfig())

	if cfg.CircuitBreaker.Enabled {
		client = nlp.NewCircuitBreakerClient(client, nlp.CircuitBreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, "nlp")
	}

	return client, nil
}

// buildLogger creates the process logger, chaining the Parquet error
// sink in front of a text handler when a telemetry path is configured.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize error tracking: %v\n", err)
		} else {
			handler = parquetHandler
			fmt.Println("Error tracking enabled")
		}
	}

	return slog.New(handler), nil
}
