// Package packer implements the packing engines: an exact branch-and-bound
// solver and a greedy weight-only fallback.
package packer

import (
	"fmt"

	"github.com/packmate/mission-packing-optimizer/internal/interfaces"
)

// Strategy is an enumeration of the available packing engines.
type Strategy int

const (
	// BranchAndBoundStrategy is the exact combinatorial search.
	BranchAndBoundStrategy Strategy = iota
	// GreedyStrategy is the weight-only first-fit fallback.
	GreedyStrategy
)

// NewPacker is a factory that creates a packing engine for the strategy.
func NewPacker(strategy Strategy) (interfaces.PackingEngine, error) {
	switch strategy {
	case BranchAndBoundStrategy:
		return &branchAndBound{}, nil
	case GreedyStrategy:
		return &greedy{}, nil
	default:
		return nil, fmt.Errorf("unsupported packer strategy: %v", strategy)
	}
}

// capacityEpsilon absorbs floating-point noise in capacity comparisons.
// Weights are grams, so a nanogram of slack is semantically zero.
const capacityEpsilon = 1e-9
