// Package partition defines the pluggable graph-partitioning contract
// used by hierarchical community detection, along with a native label
// propagation backend and an external Leiden subprocess backend.
//
// Engines work in node-index space: nodes are identified by dense
// integers 0..nodeCount-1 and edges carry summed weights. Mapping
// entity ids to indices (and back) is the caller's job.
package partition

import (
	"context"
	"errors"
	"fmt"
)

// Partitioning errors
var (
	ErrNoNodes           = errors.New("partition: node count must be positive")
	ErrEdgeOutOfRange    = errors.New("partition: edge endpoint outside node range")
	ErrShortMembership   = errors.New("partition: engine returned membership of wrong length")
	ErrEngineUnavailable = errors.New("partition: engine unavailable")
)

// WeightedEdge is an undirected edge between two node indices.
type WeightedEdge struct {
	Source int
	Target int
	Weight float64
}

// Params tunes a partitioning run. Not every backend consumes every
// field; unrecognized fields are recorded with the result so reruns can
// be parameter-identical.
type Params struct {
	// Resolution controls community granularity for backends that
	// support it; higher values yield smaller communities.
	Resolution float64
	// Objective names the quality function, e.g. "modularity".
	Objective string
	// Iterations bounds the optimization; <=0 means run to convergence.
	Iterations int
	// Seed makes stochastic backends reproducible.
	Seed int64
}

// DefaultParams are the parameters used when the caller supplies none.
func DefaultParams() Params {
	return Params{Resolution: 1.0, Objective: "modularity", Iterations: -1, Seed: 1}
}

// Engine partitions a weighted undirected graph into communities.
// The returned slice has one entry per node index: membership[i] is the
// community label of node i. Labels are opaque; only equality matters.
type Engine interface {
	Partition(ctx context.Context, edges []WeightedEdge, nodeCount int, params Params) ([]int, error)
}

// EngineFunc adapts a plain function to the Engine interface.
type EngineFunc func(ctx context.Context, edges []WeightedEdge, nodeCount int, params Params) ([]int, error)

// Partition implements Engine.
func (f EngineFunc) Partition(ctx context.Context, edges []WeightedEdge, nodeCount int, params Params) ([]int, error) {
	return f(ctx, edges, nodeCount, params)
}

// validateInput rejects inputs no backend can work with.
func validateInput(edges []WeightedEdge, nodeCount int) error {
	if nodeCount <= 0 {
		return ErrNoNodes
	}
	for _, e := range edges {
		if e.Source < 0 || e.Source >= nodeCount || e.Target < 0 || e.Target >= nodeCount {
			return fmt.Errorf("%w: (%d,%d) with %d nodes", ErrEdgeOutOfRange, e.Source, e.Target, nodeCount)
		}
	}
	return nil
}
