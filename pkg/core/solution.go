package core

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// Solution holds per-(item, container-type) packed quantities for one
// instance. Indices are aligned with the canonical order of the instance the
// solution was produced for.
type Solution struct {
	// Quantities[i][c] is the number of units of item i packed into
	// container type c.
	Quantities [][]int

	// Objective is the realized utility: sum of utility score times packed
	// quantity over all items.
	Objective float64
}

// NewSolution returns an all-zero solution sized for the instance.
func NewSolution(numItems, numContainers int) *Solution {
	q := make([][]int, numItems)
	for i := range q {
		q[i] = make([]int, numContainers)
	}
	return &Solution{Quantities: q}
}

// Clone returns a deep copy.
func (s *Solution) Clone() *Solution {
	out := NewSolution(len(s.Quantities), 0)
	for i, row := range s.Quantities {
		out.Quantities[i] = append([]int(nil), row...)
	}
	out.Objective = s.Objective
	return out
}

// ItemTotal returns the total units of item i packed across all container
// types.
func (s *Solution) ItemTotal(i int) int {
	var total int
	for _, q := range s.Quantities[i] {
		total += q
	}
	return total
}

// TotalUnits returns the total units packed over all items.
func (s *Solution) TotalUnits() int {
	var total int
	for i := range s.Quantities {
		total += s.ItemTotal(i)
	}
	return total
}

// ContainerWeight returns the packed weight in container type c.
func (s *Solution) ContainerWeight(inst *Instance, c int) float64 {
	var w float64
	for i := range s.Quantities {
		w += float64(s.Quantities[i][c]) * inst.Items[i].WeightGrams
	}
	return w
}

// PackedWeight returns the total packed weight across all container types.
func (s *Solution) PackedWeight(inst *Instance) float64 {
	var w float64
	for c := range inst.Containers {
		w += s.ContainerWeight(inst, c)
	}
	return w
}

// DistinctByCategory counts distinct packed items per category. Two units of
// the same item count once.
func (s *Solution) DistinctByCategory(inst *Instance) map[string]int {
	counts := make(map[string]int)
	for i, it := range inst.Items {
		if it.Category == "" {
			continue
		}
		if s.ItemTotal(i) > 0 {
			counts[it.Category]++
		}
	}
	return counts
}

// CoveredTags returns the union of tags over all packed items.
func (s *Solution) CoveredTags(inst *Instance) sets.Set[string] {
	covered := sets.New[string]()
	for i, it := range inst.Items {
		if s.ItemTotal(i) > 0 {
			covered = covered.Union(it.Tags)
		}
	}
	return covered
}
