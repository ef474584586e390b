package packer

import (
	"context"
	"math"

	"github.com/packmate/mission-packing-optimizer/internal/interfaces"
	"github.com/packmate/mission-packing-optimizer/pkg/core"
)

// greedy is the weight-only fallback packer: it walks candidates in
// canonical order and packs each unit into the first container type with
// remaining pooled capacity. Category minimums and required tags are
// ignored; only capacity constraints are respected.
type greedy struct{}

func (g *greedy) Pack(ctx context.Context, inst *core.Instance, limits interfaces.SearchLimits) (*interfaces.PackReport, error) {
	sol := core.NewSolution(len(inst.Items), len(inst.Containers))

	remaining := make([]float64, len(inst.Containers))
	for c, ct := range inst.Containers {
		remaining[c] = ct.PooledCapacity()
	}
	remainingGlobal := math.Inf(1)
	if inst.Constraints.HasGlobalWeightCap() {
		remainingGlobal = inst.Constraints.GlobalWeightCapGrams
	}

	for i, it := range inst.Items {
		for u := 0; u < it.AvailableQuantity; u++ {
			if it.WeightGrams > remainingGlobal+capacityEpsilon {
				break
			}
			placed := false
			for c := range inst.Containers {
				if it.WeightGrams > inst.Containers[c].CapacityGrams {
					continue
				}
				if it.WeightGrams <= remaining[c]+capacityEpsilon {
					sol.Quantities[i][c]++
					remaining[c] -= it.WeightGrams
					remainingGlobal -= it.WeightGrams
					sol.Objective += it.UtilityScore
					placed = true
					break
				}
			}
			if !placed {
				break
			}
		}
	}

	return &interfaces.PackReport{
		Solution: sol,
		Outcome:  interfaces.OutcomeHeuristic,
	}, nil
}
