package partition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// Leiden runs community detection through an external leidenalg script
// speaking JSON over stdin/stdout. The script receives
//
//	{"edges": [[source, target, weight], ...], "resolution": r, "n_iterations": n}
//
// and replies with
//
//	{"communities": [{"level": 0, "entity_ids": [idx, ...]}, ...], "stats": {...}}
//
// or an {"error": "..."} object with a non-zero exit. Either failure
// shape aborts the partition.
//
// The script takes no seed, so Params.Seed is not forwarded; runs are
// only as reproducible as the script itself.
type Leiden struct {
	// Command is the argv of the script, e.g. []string{"uv", "run",
	// "leidenalg_detect.py"} or []string{"python3", "leiden.py"}.
	Command []string
}

// NewLeiden returns a subprocess engine running the given command.
func NewLeiden(command ...string) *Leiden {
	return &Leiden{Command: command}
}

type leidenRequest struct {
	Edges      [][3]float64 `json:"edges"`
	Resolution float64      `json:"resolution"`
	Iterations int          `json:"n_iterations"`
}

type leidenResponse struct {
	Communities []struct {
		Level     int   `json:"level"`
		EntityIDs []int `json:"entity_ids"`
	} `json:"communities"`
	Error string `json:"error,omitempty"`
}

// Partition implements Engine. Cancellation kills the subprocess via
// exec.CommandContext.
func (l *Leiden) Partition(ctx context.Context, edges []WeightedEdge, nodeCount int, params Params) ([]int, error) {
	if len(l.Command) == 0 {
		return nil, fmt.Errorf("%w: no leiden command configured", ErrEngineUnavailable)
	}
	if err := validateInput(edges, nodeCount); err != nil {
		return nil, err
	}

	req := leidenRequest{
		Edges:      make([][3]float64, 0, len(edges)),
		Resolution: params.Resolution,
		Iterations: params.Iterations,
	}
	for _, e := range edges {
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		req.Edges = append(req.Edges, [3]float64{float64(e.Source), float64(e.Target), w})
	}

	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode leiden request: %w", err)
	}

	cmd := exec.CommandContext(ctx, l.Command[0], l.Command[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Failure details arrive as {"error": ...} on stderr.
		var resp leidenResponse
		if jsonErr := json.Unmarshal(stderr.Bytes(), &resp); jsonErr == nil && resp.Error != "" {
			return nil, fmt.Errorf("leiden subprocess failed: %s", resp.Error)
		}
		return nil, fmt.Errorf("leiden subprocess failed: %w", err)
	}

	var resp leidenResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode leiden response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("leiden subprocess failed: %s", resp.Error)
	}

	// The script only sees edge-covered nodes; everything else stays a
	// singleton community.
	membership := make([]int, nodeCount)
	for i := range membership {
		membership[i] = -1
	}
	for label, community := range resp.Communities {
		for _, node := range community.EntityIDs {
			if node < 0 || node >= nodeCount {
				return nil, fmt.Errorf("leiden subprocess returned node %d outside range [0,%d)", node, nodeCount)
			}
			membership[node] = label
		}
	}
	next := len(resp.Communities)
	for i, label := range membership {
		if label == -1 {
			membership[i] = next
			next++
		}
	}

	return NormalizeLabels(membership), nil
}
