// Package model implements the constraint model: it validates a raw solve
// request and normalizes it into a canonical problem instance before any
// search begins.
package model

import (
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
	ctrl "sigs.k8s.io/controller-runtime"

	apiv1 "github.com/packmate/mission-packing-optimizer/api/v1"
	"github.com/packmate/mission-packing-optimizer/internal/logging"
	"github.com/packmate/mission-packing-optimizer/pkg/core"
)

// BuildInstance validates the request and produces the canonical instance.
// Validation failures wrap core.ErrInvalidInput and are surfaced before any
// search begins; no partial state leaks.
//
// Required tags absent from every candidate are NOT a validation failure:
// they flow through the solve, come back infeasible, and resolve at
// relaxation tier 1 with the dropped tags reported. Category minimums
// referencing a category absent from every candidate are rejected, since no
// relaxation tier can manufacture items of a missing category.
func BuildInstance(req *apiv1.SolveRequest) (*core.Instance, error) {
	if len(req.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate items", core.ErrInvalidInput)
	}
	if len(req.Containers) == 0 {
		return nil, fmt.Errorf("%w: no containers", core.ErrInvalidInput)
	}

	items, err := buildItems(req.Candidates)
	if err != nil {
		return nil, err
	}
	containers, err := buildContainers(req.Containers)
	if err != nil {
		return nil, err
	}
	constraints, err := buildConstraints(req.Constraints, items)
	if err != nil {
		return nil, err
	}

	inst := &core.Instance{
		Items:       items,
		Containers:  containers,
		Constraints: constraints,
	}
	inst.Canonicalize()
	return inst, nil
}

func buildItems(candidates []apiv1.CandidateItem) ([]core.CandidateItem, error) {
	seen := sets.New[string]()
	items := make([]core.CandidateItem, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: candidate with empty id", core.ErrInvalidInput)
		}
		if seen.Has(c.ID) {
			return nil, fmt.Errorf("%w: duplicate candidate id %q", core.ErrInvalidInput, c.ID)
		}
		seen.Insert(c.ID)
		if c.WeightGrams <= 0 {
			return nil, fmt.Errorf("%w: candidate %q has non-positive weight %.1fg", core.ErrInvalidInput, c.ID, c.WeightGrams)
		}
		if c.UtilityScore < 0 || c.UtilityScore > 1 {
			return nil, fmt.Errorf("%w: candidate %q utility score %.3f outside [0,1]", core.ErrInvalidInput, c.ID, c.UtilityScore)
		}
		if c.AvailableQuantity < 1 {
			return nil, fmt.Errorf("%w: candidate %q has available quantity %d < 1", core.ErrInvalidInput, c.ID, c.AvailableQuantity)
		}
		items = append(items, core.CandidateItem{
			ID:                c.ID,
			UtilityScore:      c.UtilityScore,
			WeightGrams:       c.WeightGrams,
			Category:          c.Category,
			Tags:              sets.New(c.Tags...),
			AvailableQuantity: c.AvailableQuantity,
		})
	}
	return items, nil
}

func buildContainers(containers []apiv1.Container) ([]core.ContainerType, error) {
	seen := sets.New[string]()
	out := make([]core.ContainerType, 0, len(containers))
	for _, c := range containers {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: container with empty id", core.ErrInvalidInput)
		}
		if seen.Has(c.ID) {
			return nil, fmt.Errorf("%w: duplicate container id %q", core.ErrInvalidInput, c.ID)
		}
		seen.Insert(c.ID)
		if c.CatalogRef != "" && c.MaxWeightGrams == 0 {
			return nil, fmt.Errorf("%w: container %q has unresolved catalog reference %q", core.ErrInvalidInput, c.ID, c.CatalogRef)
		}
		if c.TareWeightGrams < 0 {
			return nil, fmt.Errorf("%w: container %q has negative tare weight", core.ErrInvalidInput, c.ID)
		}
		capacity := c.MaxWeightGrams - c.TareWeightGrams
		if capacity <= 0 {
			return nil, fmt.Errorf("%w: container %q has non-positive capacity %.1fg (max %.1fg, tare %.1fg)",
				core.ErrInvalidInput, c.ID, capacity, c.MaxWeightGrams, c.TareWeightGrams)
		}
		if c.UnitCount < 1 {
			return nil, fmt.Errorf("%w: container %q has unit count %d < 1", core.ErrInvalidInput, c.ID, c.UnitCount)
		}
		out = append(out, core.ContainerType{
			ID:            c.ID,
			CapacityGrams: capacity,
			UnitCount:     c.UnitCount,
		})
	}
	return out, nil
}

func buildConstraints(c apiv1.MissionConstraints, items []core.CandidateItem) (core.MissionConstraints, error) {
	if c.GlobalWeightCapGrams < 0 {
		return core.MissionConstraints{}, fmt.Errorf("%w: negative global weight cap", core.ErrInvalidInput)
	}

	categories := sets.New[string]()
	tags := sets.New[string]()
	for _, it := range items {
		if it.Category != "" {
			categories.Insert(it.Category)
		}
		tags = tags.Union(it.Tags)
	}

	minimums := make(map[string]int)
	var missing []string
	for cat, min := range c.CategoryMinimums {
		if min < 0 {
			return core.MissionConstraints{}, fmt.Errorf("%w: negative minimum %d for category %q", core.ErrInvalidInput, min, cat)
		}
		if min == 0 {
			continue
		}
		if !categories.Has(cat) {
			missing = append(missing, cat)
			continue
		}
		minimums[cat] = min
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return core.MissionConstraints{}, fmt.Errorf("%w: category minimums reference categories absent from every candidate: %s",
			core.ErrInvalidInput, strings.Join(missing, ", "))
	}

	required := sets.New(c.RequiredTags...)
	if unknown := required.Difference(tags); unknown.Len() > 0 {
		// Unsatisfiable as-is, but Scenario-B semantics: keep the tags so
		// the relaxation controller can drop and report them.
		ctrl.Log.V(logging.DEBUG).Info("required tags carried by no candidate, coverage will need relaxation",
			"tags", sets.List(unknown))
	}

	return core.MissionConstraints{
		CategoryMinimums:     minimums,
		RequiredTags:         required,
		GlobalWeightCapGrams: c.GlobalWeightCapGrams,
	}, nil
}
