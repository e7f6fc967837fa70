package graphling

import (
	"context"
	"fmt"

	"github.com/soundprediction/graphling/pkg/checkpoint"
	"github.com/soundprediction/graphling/pkg/community"
	"github.com/soundprediction/graphling/pkg/graph"
)

// DetectCommunities runs hierarchical community detection over the
// current snapshot's entity graph and publishes the resulting hierarchy
// on a new snapshot. When a summarizer is configured, communities are
// summarized before publication. When a checkpoint manager is
// configured, run progress is recorded so a failed run can be inspected
// and rerun with identical parameters.
func (c *Client) DetectCommunities(ctx context.Context) (*community.DetectionResult, error) {
	snapshot := c.Snapshot()

	result, err := c.builder.Detect(ctx, snapshot.Entities(), snapshot.Relationships())
	if err != nil {
		return nil, err
	}

	if err := c.saveCheckpoint(ctx, result, checkpoint.StepDetected); err != nil {
		return nil, err
	}

	if c.summarizer != nil && len(result.Communities) > 0 {
		if err := community.Summarize(ctx, c.summarizer, snapshot, result.Communities); err != nil {
			c.recordCheckpointError(ctx, result.RunID, err)
			return nil, err
		}
		if err := c.saveCheckpoint(ctx, result, checkpoint.StepSummarized); err != nil {
			return nil, err
		}
	}

	c.publish(graph.Build(snapshot.Entities(), snapshot.Relationships(), snapshot.Passages(), result.Communities))

	if err := c.saveCheckpoint(ctx, result, checkpoint.StepCompleted); err != nil {
		return nil, err
	}

	c.logger.Info("community detection complete",
		"run_id", result.RunID,
		"levels", result.Levels,
		"communities", len(result.Communities))
	return result, nil
}

func (c *Client) saveCheckpoint(ctx context.Context, result *community.DetectionResult, step checkpoint.Step) error {
	if c.checkpoints == nil {
		return nil
	}
	err := c.checkpoints.Save(ctx, &checkpoint.RunCheckpoint{
		RunID:           result.RunID,
		Step:            step,
		Params:          result.Params,
		LevelsCompleted: result.Levels,
		Communities:     result.Communities,
	})
	if err != nil {
		return fmt.Errorf("failed to checkpoint detection run %s: %w", result.RunID, err)
	}
	return nil
}

func (c *Client) recordCheckpointError(ctx context.Context, runID string, runErr error) {
	if c.checkpoints == nil {
		return
	}
	if err := c.checkpoints.RecordError(ctx, runID, runErr); err != nil {
		c.logger.Error("failed to record detection error", "run_id", runID, "error", err)
	}
}
