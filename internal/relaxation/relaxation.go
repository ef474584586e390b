// Package relaxation implements the recovery loop around the exact packer:
// when an instance comes back infeasible, constraints are loosened in a
// fixed priority order and the solver re-invoked, with every applied tier
// recorded for the result.
package relaxation

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/packmate/mission-packing-optimizer/internal/interfaces"
	"github.com/packmate/mission-packing-optimizer/internal/logging"
	"github.com/packmate/mission-packing-optimizer/pkg/core"
)

// Tier is one step in the fixed relaxation priority order,
// lowest-priority-dropped-first.
type Tier int

const (
	// TierRequiredTags drops required-tag coverage entirely.
	TierRequiredTags Tier = iota + 1
	// TierCategoryMinimumsLowered lowers each category minimum to the count
	// achievable with the candidates that can physically fit.
	TierCategoryMinimumsLowered
	// TierCategoryMinimumsRemoved drops category minimums entirely.
	TierCategoryMinimumsRemoved
	// TierGlobalWeightCap removes the combined weight ceiling, falling back
	// to per-container capacities only.
	TierGlobalWeightCap
)

// ConstraintName is the stable identifier reported in relaxed_constraints.
func (t Tier) ConstraintName() string {
	switch t {
	case TierRequiredTags:
		return "required_tags"
	case TierCategoryMinimumsLowered:
		return "category_minimums_lowered"
	case TierCategoryMinimumsRemoved:
		return "category_minimums_removed"
	case TierGlobalWeightCap:
		return "global_weight_cap"
	default:
		return fmt.Sprintf("tier_%d", int(t))
	}
}

// Outcome is the final state of one solve, after any relaxation retries.
type Outcome struct {
	Status core.Status

	// Solution is aligned with the canonical instance. Non-nil except for
	// StatusInfeasible.
	Solution *core.Solution

	// RelaxedTiers lists the tiers applied, in application order.
	RelaxedTiers []Tier

	// LoweredCategories names the categories whose minimums
	// TierCategoryMinimumsLowered actually lowered. Empty unless that tier
	// was applied.
	LoweredCategories sets.Set[string]

	// NodesExpanded is the total across all solver invocations.
	NodesExpanded int
}

// Controller drives the exact engine through the relaxation tiers and falls
// back to the greedy packer when the budget runs out or every tier fails.
type Controller struct {
	exact    interfaces.PackingEngine
	fallback interfaces.PackingEngine
}

// NewController creates a relaxation controller around the two engines.
func NewController(exact, fallback interfaces.PackingEngine) (*Controller, error) {
	if exact == nil || fallback == nil {
		return nil, fmt.Errorf("relaxation controller requires both an exact and a fallback engine")
	}
	return &Controller{exact: exact, fallback: fallback}, nil
}

// Solve runs the exact engine on the instance, loosening constraints tier by
// tier on infeasibility. The node budget in limits is shared across all
// retries. Only a structurally impossible instance (no container instance
// can hold one unit of any candidate) yields StatusInfeasible.
func (r *Controller) Solve(ctx context.Context, inst *core.Instance, limits interfaces.SearchLimits) (*Outcome, error) {
	logger := ctrl.LoggerFrom(ctx)

	current := inst
	var applied []Tier
	lowered := sets.New[string]()
	var totalNodes int

	for {
		remaining := limits
		remaining.NodeExpansionCeiling = limits.NodeExpansionCeiling - totalNodes
		if remaining.NodeExpansionCeiling <= 0 {
			return r.degrade(ctx, current, applied, lowered, totalNodes, nil)
		}

		report, err := r.exact.Pack(ctx, current, remaining)
		if err != nil {
			return nil, err
		}
		totalNodes += report.NodesExpanded

		switch report.Outcome {
		case interfaces.OutcomeOptimal:
			// An empty optimum on an instance where no unit fits is still a
			// constraint failure (a too-tight global cap reads as "feasible,
			// pack nothing"); keep relaxing before calling it terminal.
			if report.Solution.TotalUnits() == 0 && !current.AnyUnitFits() {
				if tier, relaxed, ok := nextTier(current, applied); ok {
					logger.V(logging.DEBUG).Info("empty optimum with no fitting unit, relaxing constraints",
						"tier", tier.ConstraintName())
					if tier == TierCategoryMinimumsLowered {
						lowered = loweredCategories(current, relaxed)
					}
					applied = append(applied, tier)
					current = relaxed
					continue
				}
			}
			return r.finish(current, report.Solution, applied, lowered, totalNodes), nil

		case interfaces.OutcomeBudgetExhausted:
			logger.V(logging.DEBUG).Info("search budget exhausted",
				"nodesExpanded", totalNodes, "hasIncumbent", report.Solution != nil)
			return r.degrade(ctx, current, applied, lowered, totalNodes, report.Solution)

		case interfaces.OutcomeInfeasible:
			tier, relaxed, ok := nextTier(current, applied)
			if !ok {
				// Every soft constraint is gone and the instance is still
				// infeasible; only pure weight-fit remains.
				return r.degrade(ctx, current, applied, lowered, totalNodes, nil)
			}
			logger.V(logging.DEBUG).Info("instance infeasible, relaxing constraints",
				"tier", tier.ConstraintName())
			if tier == TierCategoryMinimumsLowered {
				lowered = loweredCategories(current, relaxed)
			}
			applied = append(applied, tier)
			current = relaxed

		default:
			return nil, fmt.Errorf("unexpected pack outcome %v from exact engine", report.Outcome)
		}
	}
}

// finish classifies an exact solution. An optimal-but-empty assignment on a
// structurally impossible instance is the Infeasible terminal state.
func (r *Controller) finish(solved *core.Instance, sol *core.Solution, applied []Tier, lowered sets.Set[string], nodes int) *Outcome {
	if sol.TotalUnits() == 0 && !solved.AnyUnitFits() {
		return &Outcome{
			Status:            core.StatusInfeasible,
			RelaxedTiers:      applied,
			LoweredCategories: lowered,
			NodesExpanded:     nodes,
		}
	}
	status := core.StatusOptimal
	if len(applied) > 0 {
		status = core.StatusFeasibleRelaxed
	}
	return &Outcome{
		Status:            status,
		Solution:          sol,
		RelaxedTiers:      applied,
		LoweredCategories: lowered,
		NodesExpanded:     nodes,
	}
}

// degrade routes to the greedy weight-only packer, reusing the exact
// engine's incumbent when one exists.
func (r *Controller) degrade(ctx context.Context, current *core.Instance, applied []Tier, lowered sets.Set[string], nodes int, incumbent *core.Solution) (*Outcome, error) {
	if incumbent != nil && incumbent.TotalUnits() > 0 {
		return &Outcome{
			Status:            core.StatusDegradedGreedy,
			Solution:          incumbent,
			RelaxedTiers:      applied,
			LoweredCategories: lowered,
			NodesExpanded:     nodes,
		}, nil
	}

	report, err := r.fallback.Pack(ctx, current, interfaces.SearchLimits{})
	if err != nil {
		return nil, err
	}
	status := core.StatusDegradedGreedy
	sol := report.Solution
	if sol.TotalUnits() == 0 {
		status = core.StatusInfeasible
		sol = nil
	}
	return &Outcome{
		Status:            status,
		Solution:          sol,
		RelaxedTiers:      applied,
		LoweredCategories: lowered,
		NodesExpanded:     nodes,
	}, nil
}

// loweredCategories reports which category minimums differ between the
// instance before and after a lowering tier.
func loweredCategories(before, after *core.Instance) sets.Set[string] {
	out := sets.New[string]()
	for cat, min := range before.Constraints.CategoryMinimums {
		if after.Constraints.CategoryMinimums[cat] != min {
			out.Insert(cat)
		}
	}
	return out
}

// nextTier returns the next tier that actually changes the instance, with
// the relaxed instance to retry. Tiers that would be no-ops (no required
// tags, minimums already achievable, no global cap) are skipped and never
// reported.
func nextTier(inst *core.Instance, applied []Tier) (Tier, *core.Instance, bool) {
	last := Tier(0)
	if len(applied) > 0 {
		last = applied[len(applied)-1]
	}
	for tier := last + 1; tier <= TierGlobalWeightCap; tier++ {
		if relaxed, changed := applyTier(inst, tier); changed {
			return tier, relaxed, true
		}
	}
	return 0, nil, false
}

// applyTier produces the instance with one tier applied, reporting whether
// the tier changed anything.
func applyTier(inst *core.Instance, tier Tier) (*core.Instance, bool) {
	c := inst.Constraints.Clone()
	switch tier {
	case TierRequiredTags:
		if c.RequiredTags.Len() == 0 {
			return inst, false
		}
		c.RequiredTags = nil

	case TierCategoryMinimumsLowered:
		changed := false
		for cat, min := range c.CategoryMinimums {
			achievable := achievableDistinct(inst, cat)
			if achievable < min {
				c.CategoryMinimums[cat] = achievable
				changed = true
			}
		}
		if !changed {
			return inst, false
		}

	case TierCategoryMinimumsRemoved:
		if len(c.CategoryMinimums) == 0 {
			return inst, false
		}
		c.CategoryMinimums = nil

	case TierGlobalWeightCap:
		if !c.HasGlobalWeightCap() {
			return inst, false
		}
		c.GlobalWeightCapGrams = 0

	default:
		return inst, false
	}
	return inst.WithConstraints(c), true
}

// achievableDistinct counts distinct candidates of the category that can
// individually fit into a single container instance (and under the global
// cap, while one is still in force).
func achievableDistinct(inst *core.Instance, category string) int {
	var count int
	for _, it := range inst.Items {
		if it.Category != category {
			continue
		}
		if !inst.UnitFits(it) {
			continue
		}
		if inst.Constraints.HasGlobalWeightCap() && it.WeightGrams > inst.Constraints.GlobalWeightCapGrams {
			continue
		}
		count++
	}
	return count
}
