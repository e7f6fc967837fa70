package graphling

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/graphling/pkg/config"
	"github.com/soundprediction/graphling/pkg/server"
	"github.com/soundprediction/graphling/pkg/source"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the graphling HTTP server",
	Long: `Start the graphling HTTP server providing REST API access to the
retrieval core.

The server provides endpoints for:
- Ingesting graph datasets and raw documents
- Searching for passages by recognized entities
- Running and listing hierarchical community detection
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Source flags
	serverCmd.Flags().String("source-driver", "", "Snapshot source (file, neo4j)")
	serverCmd.Flags().String("source-path", "", "Dataset file for the file source")
	serverCmd.Flags().String("source-uri", "", "Neo4j URI")
	serverCmd.Flags().String("source-username", "", "Neo4j username")
	serverCmd.Flags().String("source-password", "", "Neo4j password")
	serverCmd.Flags().String("source-database", "", "Neo4j database name")

	// NLP flags
	serverCmd.Flags().String("nlp-model", "", "NLP model")
	serverCmd.Flags().String("nlp-api-key", "", "NLP API key")
	serverCmd.Flags().String("nlp-base-url", "", "NLP base URL")

	// Partition flags
	serverCmd.Flags().String("partition-engine", "", "Partition engine (label_propagation, leiden)")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrideConfigWithFlags(cmd, cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	fmt.Println("Initializing graphling...")
	client, err := initializeClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize graphling: %w", err)
	}
	defer client.Close()

	// Load the initial snapshot when a source is configured; the server
	// also accepts datasets over the ingest endpoint.
	if err := loadInitialSnapshot(cmd.Context(), cfg, client); err != nil {
		return err
	}

	srv := server.New(cfg, client)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func loadInitialSnapshot(ctx context.Context, cfg *config.Config, client ingestClient) error {
	switch cfg.Source.Driver {
	case "file":
		if cfg.Source.Path == "" {
			return nil
		}
		ds, err := source.LoadFile(cfg.Source.Path)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %w", err)
		}
		if err := client.IngestGraph(ctx, ds); err != nil {
			return fmt.Errorf("failed to build initial snapshot: %w", err)
		}
		fmt.Printf("Loaded dataset from %s\n", cfg.Source.Path)

	case "neo4j":
		loader, err := source.NewNeo4jLoader(cfg.Source.URI, cfg.Source.Username, cfg.Source.Password, cfg.Source.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to neo4j: %w", err)
		}
		defer loader.Close(ctx)

		ds, err := loader.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load graph from neo4j: %w", err)
		}
		if err := client.IngestGraph(ctx, ds); err != nil {
			return fmt.Errorf("failed to build initial snapshot: %w", err)
		}
		fmt.Printf("Loaded graph from %s\n", cfg.Source.URI)

	case "":
		// No source configured; start with an empty snapshot.
	default:
		return fmt.Errorf("unsupported source driver: %s", cfg.Source.Driver)
	}
	return nil
}

// ingestClient is the slice of the client that initial loading needs.
type ingestClient interface {
	IngestGraph(ctx context.Context, ds *source.Dataset) error
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	if cmd.Flags().Changed("source-driver") {
		cfg.Source.Driver, _ = cmd.Flags().GetString("source-driver")
	}
	if cmd.Flags().Changed("source-path") {
		cfg.Source.Path, _ = cmd.Flags().GetString("source-path")
	}
	if cmd.Flags().Changed("source-uri") {
		cfg.Source.URI, _ = cmd.Flags().GetString("source-uri")
	}
	if cmd.Flags().Changed("source-username") {
		cfg.Source.Username, _ = cmd.Flags().GetString("source-username")
	}
	if cmd.Flags().Changed("source-password") {
		cfg.Source.Password, _ = cmd.Flags().GetString("source-password")
	}
	if cmd.Flags().Changed("source-database") {
		cfg.Source.Database, _ = cmd.Flags().GetString("source-database")
	}

	if cmd.Flags().Changed("nlp-model") {
		cfg.NLP.Model, _ = cmd.Flags().GetString("nlp-model")
	}
	if cmd.Flags().Changed("nlp-api-key") {
		cfg.NLP.APIKey, _ = cmd.Flags().GetString("nlp-api-key")
	}
	if cmd.Flags().Changed("nlp-base-url") {
		cfg.NLP.BaseURL, _ = cmd.Flags().GetString("nlp-base-url")
	}

	if cmd.Flags().Changed("partition-engine") {
		cfg.Partition.Engine, _ = cmd.Flags().GetString("partition-engine")
	}

	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}
