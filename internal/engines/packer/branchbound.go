package packer

import (
	"context"
	"math"
	"sort"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/packmate/mission-packing-optimizer/internal/interfaces"
	"github.com/packmate/mission-packing-optimizer/pkg/core"
)

// branchAndBound is the exact engine. It searches over partial assignments
// where each branch decision assigns k more units of item i to container
// type c, k explored in descending order so that dense, high-utility
// incumbents are found early and prune aggressively.
//
// The upper bound at each node is the classic fractional-knapsack bound over
// the remaining items and the pooled remaining capacity. Branches that can
// no longer satisfy a category minimum or cover a required tag with the
// items still undecided are pruned structurally.
type branchAndBound struct{}

// deadlineCheckInterval is how many node expansions pass between wall-clock
// reads; time.Now on every node would dominate small solves.
const deadlineCheckInterval = 256

func (b *branchAndBound) Pack(ctx context.Context, inst *core.Instance, limits interfaces.SearchLimits) (*interfaces.PackReport, error) {
	s := newSearchState(inst, limits)
	s.branchItem(0)

	report := &interfaces.PackReport{NodesExpanded: s.nodes}
	switch {
	case s.exhausted:
		report.Outcome = interfaces.OutcomeBudgetExhausted
		report.Solution = s.best
	case s.best != nil:
		report.Outcome = interfaces.OutcomeOptimal
		report.Solution = s.best
	default:
		report.Outcome = interfaces.OutcomeInfeasible
	}
	return report, nil
}

type searchState struct {
	inst   *core.Instance
	limits interfaces.SearchLimits

	// Mutable search frontier.
	remaining       []float64 // pooled capacity left per container type
	remainingGlobal float64   // +Inf when no global cap
	qty             [][]int
	utility         float64
	catDistinct     map[string]int   // distinct packed items per constrained category
	covered         sets.Set[string] // required tags covered so far

	// Precomputed pruning structures.
	catSuffix []map[string]int // catSuffix[i][cat]: items with index >= i in cat
	tagSuffix []map[string]int // tagSuffix[i][tag]: items with index >= i carrying tag
	byDensity []int            // item indices by utility density descending

	best          *core.Solution
	bestObjective float64

	nodes     int
	exhausted bool
}

func newSearchState(inst *core.Instance, limits interfaces.SearchLimits) *searchState {
	n := len(inst.Items)
	m := len(inst.Containers)

	s := &searchState{
		inst:            inst,
		limits:          limits,
		remaining:       make([]float64, m),
		remainingGlobal: math.Inf(1),
		qty:             make([][]int, n),
		catDistinct:     make(map[string]int),
		covered:         sets.New[string](),
	}
	for c, ct := range inst.Containers {
		s.remaining[c] = ct.PooledCapacity()
	}
	if inst.Constraints.HasGlobalWeightCap() {
		s.remainingGlobal = inst.Constraints.GlobalWeightCapGrams
	}
	for i := range s.qty {
		s.qty[i] = make([]int, m)
	}

	// Suffix counts for structural pruning: how many items at or after
	// index i can still contribute to each category minimum or tag.
	s.catSuffix = make([]map[string]int, n+1)
	s.tagSuffix = make([]map[string]int, n+1)
	s.catSuffix[n] = map[string]int{}
	s.tagSuffix[n] = map[string]int{}
	for i := n - 1; i >= 0; i-- {
		s.catSuffix[i] = copyCounts(s.catSuffix[i+1])
		s.tagSuffix[i] = copyCounts(s.tagSuffix[i+1])
		it := inst.Items[i]
		if _, constrained := inst.Constraints.CategoryMinimums[it.Category]; constrained {
			s.catSuffix[i][it.Category]++
		}
		for tag := range inst.Constraints.RequiredTags {
			if it.Tags.Has(tag) {
				s.tagSuffix[i][tag]++
			}
		}
	}

	s.byDensity = make([]int, n)
	for i := range s.byDensity {
		s.byDensity[i] = i
	}
	sort.SliceStable(s.byDensity, func(a, b int) bool {
		ia, ib := inst.Items[s.byDensity[a]], inst.Items[s.byDensity[b]]
		da := ia.UtilityScore / ia.WeightGrams
		db := ib.UtilityScore / ib.WeightGrams
		if da != db {
			return da > db
		}
		return s.byDensity[a] < s.byDensity[b]
	})

	return s
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// branchItem decides the full distribution of item i across container types,
// then recurses to item i+1.
func (s *searchState) branchItem(i int) {
	if s.exhausted {
		return
	}
	if i == len(s.inst.Items) {
		s.recordLeaf()
		return
	}
	if s.pruneStructural(i) || s.pruneBound(i) {
		return
	}
	s.branchContainer(i, 0, s.inst.Items[i].AvailableQuantity)
}

// pruneStructural cuts subtrees in which a category minimum or required tag
// can no longer be satisfied even if every remaining item is packed.
func (s *searchState) pruneStructural(i int) bool {
	for cat, min := range s.inst.Constraints.CategoryMinimums {
		if s.catDistinct[cat]+s.catSuffix[i][cat] < min {
			return true
		}
	}
	for tag := range s.inst.Constraints.RequiredTags {
		if !s.covered.Has(tag) && s.tagSuffix[i][tag] == 0 {
			return true
		}
	}
	return false
}

// pruneBound cuts subtrees whose fractional-relaxation upper bound cannot
// beat the incumbent. Equal bounds are pruned too: the first incumbent found
// in canonical order is kept, which makes ties deterministic.
func (s *searchState) pruneBound(i int) bool {
	if s.best == nil {
		return false
	}
	return s.utility+s.fractionalBound(i) <= s.bestObjective
}

// fractionalBound fills the pooled remaining capacity with the undecided
// items in utility-density order, allowing fractional units. Pooling the
// per-type capacities relaxes the container separation, so the bound is
// admissible.
func (s *searchState) fractionalBound(firstUndecided int) float64 {
	capLeft := s.remainingGlobal
	var pooled float64
	for _, r := range s.remaining {
		pooled += r
	}
	if pooled < capLeft {
		capLeft = pooled
	}

	var bound float64
	for _, j := range s.byDensity {
		if j < firstUndecided {
			continue
		}
		if capLeft <= capacityEpsilon {
			break
		}
		it := s.inst.Items[j]
		full := float64(it.AvailableQuantity) * it.WeightGrams
		if full <= capLeft {
			bound += float64(it.AvailableQuantity) * it.UtilityScore
			capLeft -= full
		} else {
			bound += it.UtilityScore * (capLeft / it.WeightGrams)
			break
		}
	}
	return bound
}

// branchContainer enumerates quantities of item i for container type c and
// onward. Once every container type has been decided for the item, the
// category/tag bookkeeping is applied and the search moves to the next item.
func (s *searchState) branchContainer(i, c, remQty int) {
	if s.exhausted {
		return
	}
	inst := s.inst
	if c == len(inst.Containers) {
		s.completeItem(i, remQty)
		return
	}

	it := inst.Items[i]
	maxK := remQty
	// Pooled capacity caps the total per type, but every single unit must
	// still fit one physical instance.
	if it.WeightGrams > inst.Containers[c].CapacityGrams {
		maxK = 0
	}
	if byCap := int(math.Floor((s.remaining[c] + capacityEpsilon) / it.WeightGrams)); byCap < maxK {
		maxK = byCap
	}
	if !math.IsInf(s.remainingGlobal, 1) {
		if byGlobal := int(math.Floor((s.remainingGlobal + capacityEpsilon) / it.WeightGrams)); byGlobal < maxK {
			maxK = byGlobal
		}
	}

	for k := maxK; k >= 0; k-- {
		if !s.expandNode() {
			return
		}
		w := float64(k) * it.WeightGrams
		s.qty[i][c] = k
		s.remaining[c] -= w
		s.remainingGlobal -= w
		s.utility += float64(k) * it.UtilityScore

		s.branchContainer(i, c+1, remQty-k)

		s.utility -= float64(k) * it.UtilityScore
		s.remainingGlobal += w
		s.remaining[c] += w
		s.qty[i][c] = 0

		if s.exhausted {
			return
		}
	}
}

// completeItem applies distinctness and tag-coverage bookkeeping for a fully
// distributed item, recurses to the next item, then undoes the bookkeeping.
func (s *searchState) completeItem(i, remQty int) {
	it := s.inst.Items[i]
	packed := it.AvailableQuantity - remQty

	var catBumped bool
	var newlyCovered []string
	if packed > 0 {
		if _, constrained := s.inst.Constraints.CategoryMinimums[it.Category]; constrained {
			s.catDistinct[it.Category]++
			catBumped = true
		}
		for tag := range s.inst.Constraints.RequiredTags {
			if it.Tags.Has(tag) && !s.covered.Has(tag) {
				s.covered.Insert(tag)
				newlyCovered = append(newlyCovered, tag)
			}
		}
	}

	s.branchItem(i + 1)

	if catBumped {
		s.catDistinct[it.Category]--
	}
	for _, tag := range newlyCovered {
		s.covered.Delete(tag)
	}
}

// recordLeaf keeps the assignment as the incumbent when it is feasible and
// strictly better than the current best.
func (s *searchState) recordLeaf() {
	for cat, min := range s.inst.Constraints.CategoryMinimums {
		if s.catDistinct[cat] < min {
			return
		}
	}
	if s.covered.Len() < s.inst.Constraints.RequiredTags.Len() {
		return
	}
	if s.best != nil && s.utility <= s.bestObjective {
		return
	}

	sol := core.NewSolution(len(s.qty), 0)
	for i, row := range s.qty {
		sol.Quantities[i] = append([]int(nil), row...)
	}
	sol.Objective = s.utility
	s.best = sol
	s.bestObjective = s.utility
}

// expandNode counts one branch decision against the search budget. Returns
// false when the ceiling or deadline has been reached.
func (s *searchState) expandNode() bool {
	s.nodes++
	if s.limits.NodeExpansionCeiling > 0 && s.nodes >= s.limits.NodeExpansionCeiling {
		s.exhausted = true
		return false
	}
	if s.nodes%deadlineCheckInterval == 0 && s.limits.Expired(time.Now()) {
		s.exhausted = true
		return false
	}
	return true
}
