// Package assembler projects a solve outcome into the externally reported
// result: assignments, utilization statistics, relaxation notes, and
// per-candidate rejection reasons. No search logic lives here; the
// projection is deterministic and side-effect free.
package assembler

import (
	"gonum.org/v1/gonum/floats"

	apiv1 "github.com/packmate/mission-packing-optimizer/api/v1"
	"github.com/packmate/mission-packing-optimizer/internal/relaxation"
	"github.com/packmate/mission-packing-optimizer/pkg/core"
)

// Assemble builds the reportable result from the canonical instance the
// request was normalized into and the outcome of the relaxation-controlled
// solve. The instance must carry the original (unrelaxed) constraints.
func Assemble(inst *core.Instance, out *relaxation.Outcome) *apiv1.SolveResult {
	res := &apiv1.SolveResult{
		Status:             apiv1.SolveStatus(out.Status),
		Assignments:        []apiv1.PackingAssignment{},
		RelaxedConstraints: []string{},
		RejectedItems:      []apiv1.RejectedItem{},
		NodesExpanded:      out.NodesExpanded,
	}
	for _, tier := range out.RelaxedTiers {
		res.RelaxedConstraints = append(res.RelaxedConstraints, tier.ConstraintName())
	}

	sol := out.Solution
	if sol == nil {
		sol = core.NewSolution(len(inst.Items), len(inst.Containers))
	}

	for i, it := range inst.Items {
		for c, ct := range inst.Containers {
			if q := sol.Quantities[i][c]; q > 0 {
				res.Assignments = append(res.Assignments, apiv1.PackingAssignment{
					ItemID:          it.ID,
					ContainerTypeID: ct.ID,
					Quantity:        q,
				})
			}
		}
	}
	res.ObjectiveValue = sol.Objective

	res.WeightUtilization, res.AggregateUtilization = utilization(inst, sol)
	res.RejectedItems = rejections(inst, sol, out)
	return res
}

// utilization computes packed weight over pooled capacity per container
// type, and in aggregate.
func utilization(inst *core.Instance, sol *core.Solution) ([]apiv1.ContainerUtilization, float64) {
	packed := make([]float64, len(inst.Containers))
	capacities := make([]float64, len(inst.Containers))
	util := make([]apiv1.ContainerUtilization, 0, len(inst.Containers))

	for c, ct := range inst.Containers {
		packed[c] = sol.ContainerWeight(inst, c)
		capacities[c] = ct.PooledCapacity()
		util = append(util, apiv1.ContainerUtilization{
			ContainerTypeID:   ct.ID,
			PackedWeightGrams: packed[c],
			CapacityGrams:     capacities[c],
			WeightUtilization: packed[c] / capacities[c],
		})
	}

	totalCapacity := floats.Sum(capacities)
	if totalCapacity == 0 {
		return util, 0
	}
	return util, floats.Sum(packed) / totalCapacity
}

// rejections tags every fully excluded candidate with a reason. Relaxation
// reasons win over capacity reasons: an item whose constraint tier was
// dropped was excluded by the relaxation, not by the packing itself. A
// lowering tier only covers the categories it actually lowered.
func rejections(inst *core.Instance, sol *core.Solution, out *relaxation.Outcome) []apiv1.RejectedItem {
	tagsDropped := false
	minimumsLowered := false
	minimumsRemoved := false
	for _, t := range out.RelaxedTiers {
		switch t {
		case relaxation.TierRequiredTags:
			tagsDropped = true
		case relaxation.TierCategoryMinimumsLowered:
			minimumsLowered = true
		case relaxation.TierCategoryMinimumsRemoved:
			minimumsRemoved = true
		}
	}

	distinct := sol.DistinctByCategory(inst)

	rejected := []apiv1.RejectedItem{}
	for i, it := range inst.Items {
		if sol.ItemTotal(i) > 0 {
			continue
		}

		reason := apiv1.ReasonOverCapacity
		switch {
		case tagsDropped && it.HasAnyTag(inst.Constraints.RequiredTags):
			reason = apiv1.ReasonRelaxationTierDropped(int(relaxation.TierRequiredTags))
		case minimumsRemoved && hasMinimum(inst, it.Category):
			reason = apiv1.ReasonRelaxationTierDropped(int(relaxation.TierCategoryMinimumsRemoved))
		case minimumsLowered && out.LoweredCategories.Has(it.Category):
			reason = apiv1.ReasonRelaxationTierDropped(int(relaxation.TierCategoryMinimumsLowered))
		case hasMinimum(inst, it.Category) && distinct[it.Category] >= inst.Constraints.CategoryMinimums[it.Category]:
			reason = apiv1.ReasonRedundantCategorySatisfied
		}
		rejected = append(rejected, apiv1.RejectedItem{ItemID: it.ID, Reason: reason})
	}
	return rejected
}

func hasMinimum(inst *core.Instance, category string) bool {
	_, ok := inst.Constraints.CategoryMinimums[category]
	return ok
}
