package graphling

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/graphling/pkg/config"
	"github.com/soundprediction/graphling/pkg/source"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run hierarchical community detection over a dataset",
	Long: `Load a dataset file, run hierarchical community detection over its
entity graph, and print the resulting community hierarchy as JSON.`,
	RunE: runDetect,
}

var (
	detectDataset   string
	detectMinSize   int
	detectMaxLevels int
	detectEngine    string
)

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVar(&detectDataset, "dataset", "", "Dataset file (YAML or JSON)")
	detectCmd.Flags().IntVar(&detectMinSize, "min-size", 0, "Smallest community to emit (default 1)")
	detectCmd.Flags().IntVar(&detectMaxLevels, "max-levels", 0, "Hierarchy depth cap (default 10)")
	detectCmd.Flags().StringVar(&detectEngine, "engine", "", "Partition engine (label_propagation, leiden)")
	detectCmd.MarkFlagRequired("dataset")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if detectEngine != "" {
		cfg.Partition.Engine = detectEngine
	}
	if detectMinSize > 0 {
		cfg.Partition.MinSize = detectMinSize
	}
	if detectMaxLevels > 0 {
		cfg.Partition.MaxLevels = detectMaxLevels
	}

	client, err := initializeClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize graphling: %w", err)
	}
	defer client.Close()

	ds, err := source.LoadFile(detectDataset)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	ctx := cmd.Context()
	if err := client.IngestGraph(ctx, ds); err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	result, err := client.DetectCommunities(ctx)
	if err != nil {
		return fmt.Errorf("community detection failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
