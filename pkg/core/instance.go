package core

import (
	"sort"
)

// Instance is a validated, canonically ordered problem instance. It is
// immutable once handed to the solver; relaxation produces shallow copies
// with modified constraints, never in-place edits.
type Instance struct {
	// Items in canonical order: utility score descending, then weight
	// ascending, then ID ascending. This ordering seeds both the exact
	// search and the greedy fallback.
	Items []CandidateItem

	// Containers sorted by ID ascending.
	Containers []ContainerType

	// Constraints are the mission's soft constraints.
	Constraints MissionConstraints
}

// Canonicalize sorts items and containers into the deterministic order
// required for reproducible solves.
func (in *Instance) Canonicalize() {
	sort.SliceStable(in.Items, func(i, j int) bool {
		a, b := in.Items[i], in.Items[j]
		if a.UtilityScore != b.UtilityScore {
			return a.UtilityScore > b.UtilityScore
		}
		if a.WeightGrams != b.WeightGrams {
			return a.WeightGrams < b.WeightGrams
		}
		return a.ID < b.ID
	})
	sort.SliceStable(in.Containers, func(i, j int) bool {
		return in.Containers[i].ID < in.Containers[j].ID
	})
}

// WithConstraints returns a copy of the instance carrying the given
// constraints. Item and container slices are shared; they are read-only for
// the lifetime of a solve.
func (in *Instance) WithConstraints(c MissionConstraints) *Instance {
	return &Instance{
		Items:       in.Items,
		Containers:  in.Containers,
		Constraints: c,
	}
}

// TotalPooledCapacity is the sum of pooled capacities over all container
// types, ignoring any global weight cap.
func (in *Instance) TotalPooledCapacity() float64 {
	var total float64
	for _, c := range in.Containers {
		total += c.PooledCapacity()
	}
	return total
}

// EffectiveCapacity is the total weight the instance can possibly carry:
// the pooled container capacity, further limited by the global weight cap
// when one is set.
func (in *Instance) EffectiveCapacity() float64 {
	total := in.TotalPooledCapacity()
	if in.Constraints.HasGlobalWeightCap() && in.Constraints.GlobalWeightCapGrams < total {
		return in.Constraints.GlobalWeightCapGrams
	}
	return total
}

// UnitFits reports whether one unit of the item fits a single container
// instance of some type, ignoring the global cap.
func (in *Instance) UnitFits(it CandidateItem) bool {
	for _, c := range in.Containers {
		if it.WeightGrams <= c.CapacityGrams {
			return true
		}
	}
	return false
}

// AnyUnitFits reports whether at least one single unit of some candidate
// fits into a single container instance (and under the global cap, if set).
// When false the instance is structurally impossible and the final status is
// Infeasible.
func (in *Instance) AnyUnitFits() bool {
	for _, it := range in.Items {
		if in.Constraints.HasGlobalWeightCap() && it.WeightGrams > in.Constraints.GlobalWeightCapGrams {
			continue
		}
		if in.UnitFits(it) {
			return true
		}
	}
	return false
}
