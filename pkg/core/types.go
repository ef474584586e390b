package core

import (
	"errors"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ErrInvalidInput marks a malformed or contradictory problem instance.
// It is a caller error, surfaced before any search begins; callers should
// test for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Status is the terminal state of one optimization run.
type Status string

const (
	// StatusOptimal means the exhaustive search completed and the returned
	// assignment is a global optimum within the stated constraint set.
	StatusOptimal Status = "Optimal"

	// StatusFeasibleRelaxed means a feasible assignment was found only after
	// one or more constraint tiers were relaxed.
	StatusFeasibleRelaxed Status = "FeasibleRelaxed"

	// StatusDegradedGreedy means the search budget was exhausted (node
	// ceiling or deadline) and the result came from the incumbent or the
	// greedy weight-only packer.
	StatusDegradedGreedy Status = "DegradedGreedy"

	// StatusInfeasible means no container instance can hold even one unit of
	// any candidate. "No solution exists" is an expected outcome, not an
	// error.
	StatusInfeasible Status = "Infeasible"
)

// CandidateItem is a pre-scored, pre-ranked inventory item eligible for
// packing. Items are owned by the external candidate-set builder and are
// borrowed read-only for the duration of one optimization run.
type CandidateItem struct {
	// ID uniquely identifies the item within one request.
	ID string

	// UtilityScore is the externally computed relevance score in [0,1],
	// used as the packing objective weight.
	UtilityScore float64

	// WeightGrams is the unit weight. Always > 0 after validation.
	WeightGrams float64

	// Category groups items for diversity minimums. May be empty.
	Category string

	// Tags carried by the item, matched against required-tag coverage.
	Tags sets.Set[string]

	// AvailableQuantity is the number of units that may be packed. >= 1.
	AvailableQuantity int
}

// HasAnyTag reports whether the item carries at least one tag from the set.
func (it CandidateItem) HasAnyTag(tags sets.Set[string]) bool {
	if tags.Len() == 0 || it.Tags.Len() == 0 {
		return false
	}
	return it.Tags.Intersection(tags).Len() > 0
}

// ContainerType is a class of identical transport containers. Instances of
// one type are interchangeable; the solver never distinguishes which physical
// unit an item lands in, so capacity is pooled across the type.
type ContainerType struct {
	// ID uniquely identifies the container type within one request.
	ID string

	// CapacityGrams is the usable capacity of a single instance
	// (max weight minus tare weight). Always > 0 after validation.
	CapacityGrams float64

	// UnitCount is the number of identical physical instances. >= 1.
	UnitCount int
}

// PooledCapacity returns the combined capacity of all instances of the type.
func (c ContainerType) PooledCapacity() float64 {
	return c.CapacityGrams * float64(c.UnitCount)
}

// MissionConstraints are the soft constraints of one mission, on top of the
// hard per-container capacities.
type MissionConstraints struct {
	// CategoryMinimums maps category -> minimum number of distinct packed
	// items of that category. Quantity does not count toward distinctness:
	// two units of the same item count once.
	CategoryMinimums map[string]int

	// RequiredTags must each be covered by at least one packed unit of some
	// item carrying that tag.
	RequiredTags sets.Set[string]

	// GlobalWeightCapGrams, when > 0, is an additional ceiling across all
	// containers combined. Zero means absent.
	GlobalWeightCapGrams float64
}

// HasGlobalWeightCap reports whether a combined weight ceiling is set.
func (m MissionConstraints) HasGlobalWeightCap() bool {
	return m.GlobalWeightCapGrams > 0
}

// Empty reports whether no soft constraint is present at all.
func (m MissionConstraints) Empty() bool {
	return len(m.CategoryMinimums) == 0 && m.RequiredTags.Len() == 0 && !m.HasGlobalWeightCap()
}

// Clone returns a deep copy. Relaxation tiers mutate copies, never the
// original request constraints.
func (m MissionConstraints) Clone() MissionConstraints {
	out := MissionConstraints{GlobalWeightCapGrams: m.GlobalWeightCapGrams}
	if m.CategoryMinimums != nil {
		out.CategoryMinimums = make(map[string]int, len(m.CategoryMinimums))
		for k, v := range m.CategoryMinimums {
			out.CategoryMinimums[k] = v
		}
	}
	if m.RequiredTags != nil {
		out.RequiredTags = m.RequiredTags.Clone()
	}
	return out
}
