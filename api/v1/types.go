// Package v1 defines the stable request/response contract of the mission
// packing optimizer. The core is invoked as a function/service call, not a
// network protocol, but the serialized shapes here are what downstream
// consumers (mission-plan summarizer, persistence, UI) read.
package v1

import "fmt"

// DefaultNodeExpansionCeiling bounds the exact search when the request does
// not set its own ceiling. The search self-terminates into the degraded path
// once the ceiling is reached, so a solve can never hang.
const DefaultNodeExpansionCeiling = 200_000

// CandidateItem is one pre-scored candidate produced by the external
// semantic-search collaborator.
type CandidateItem struct {
	// ID uniquely identifies the item within one request.
	ID string `json:"id"`

	// UtilityScore is the externally computed relevance score in [0,1].
	UtilityScore float64 `json:"utility_score"`

	// WeightGrams is the unit weight. Must be > 0.
	WeightGrams float64 `json:"weight_grams"`

	// Category groups items for diversity minimums. Optional.
	Category string `json:"category,omitempty"`

	// Tags carried by the item. Optional.
	Tags []string `json:"tags,omitempty"`

	// AvailableQuantity is the number of units available. Defaults to 1.
	AvailableQuantity int `json:"available_quantity,omitempty"`
}

// Container describes one container type. Usable capacity is derived as
// max_weight_grams minus tare_weight_grams and must come out positive.
type Container struct {
	// ID uniquely identifies the container type within one request.
	ID string `json:"id"`

	// MaxWeightGrams is the loaded weight limit of a single instance.
	MaxWeightGrams float64 `json:"max_weight_grams"`

	// TareWeightGrams is the empty weight of a single instance. Optional.
	TareWeightGrams float64 `json:"tare_weight_grams,omitempty"`

	// UnitCount is the number of identical physical instances available.
	// Defaults to 1.
	UnitCount int `json:"unit_count,omitempty"`

	// CatalogRef, when set, names a container-catalog entry the caller wants
	// this container resolved from. Resolution happens before the solve; the
	// optimizer core only ever sees fully specified containers.
	CatalogRef string `json:"catalog_ref,omitempty"`
}

// MissionConstraints are the soft constraints of one mission.
type MissionConstraints struct {
	// CategoryMinimums maps category -> minimum distinct-item count.
	CategoryMinimums map[string]int `json:"category_minimums,omitempty"`

	// RequiredTags must each be covered by at least one packed item.
	RequiredTags []string `json:"required_tags,omitempty"`

	// GlobalWeightCapGrams, when > 0, caps total packed weight across all
	// containers combined.
	GlobalWeightCapGrams float64 `json:"global_weight_cap_grams,omitempty"`
}

// Empty reports whether no constraint is set at all.
func (m MissionConstraints) Empty() bool {
	return len(m.CategoryMinimums) == 0 && len(m.RequiredTags) == 0 && m.GlobalWeightCapGrams == 0
}

// SolveRequest is the full input of one optimization run.
type SolveRequest struct {
	Candidates  []CandidateItem    `json:"candidates"`
	Containers  []Container        `json:"containers"`
	Constraints MissionConstraints `json:"constraints,omitempty"`

	// NodeExpansionCeiling bounds the exact search. Zero means the
	// configured default.
	NodeExpansionCeiling int `json:"node_expansion_ceiling,omitempty"`

	// Deadline is an optional wall-clock budget as a Go duration string
	// (e.g. "250ms"). On expiry the solve degrades to the incumbent or the
	// greedy packer instead of failing.
	Deadline string `json:"deadline,omitempty"`
}

// Default fills zero-valued optional fields in place: available quantities
// and unit counts default to 1. A zero node ceiling is left for the
// optimizer to fill from its configuration.
func (r *SolveRequest) Default() {
	for i := range r.Candidates {
		if r.Candidates[i].AvailableQuantity == 0 {
			r.Candidates[i].AvailableQuantity = 1
		}
	}
	for i := range r.Containers {
		if r.Containers[i].UnitCount == 0 {
			r.Containers[i].UnitCount = 1
		}
	}
}

// SolveStatus is the terminal status of a solve.
type SolveStatus string

const (
	StatusOptimal         SolveStatus = "Optimal"
	StatusFeasibleRelaxed SolveStatus = "FeasibleRelaxed"
	StatusDegradedGreedy  SolveStatus = "DegradedGreedy"
	StatusInfeasible      SolveStatus = "Infeasible"
)

// PackingAssignment reports how many units of one item went into one
// container type.
type PackingAssignment struct {
	ItemID          string `json:"item_id"`
	ContainerTypeID string `json:"container_type_id"`
	Quantity        int    `json:"quantity"`
}

// RejectionReason explains why a candidate was excluded from the packing.
type RejectionReason string

const (
	// ReasonOverCapacity means the item (or its remaining units) did not fit
	// within container capacity.
	ReasonOverCapacity RejectionReason = "over_capacity"

	// ReasonRedundantCategorySatisfied means the item's category minimum was
	// already met by higher-utility items.
	ReasonRedundantCategorySatisfied RejectionReason = "redundant_category_satisfied"
)

// ReasonRelaxationTierDropped names the rejection reason for items excluded
// because relaxation tier n dropped the constraint that referenced them.
func ReasonRelaxationTierDropped(tier int) RejectionReason {
	return RejectionReason(fmt.Sprintf("relaxation_tier_%d_dropped", tier))
}

// RejectedItem is one excluded candidate with its reason.
type RejectedItem struct {
	ItemID string          `json:"item_id"`
	Reason RejectionReason `json:"reason"`
}

// ContainerUtilization reports packed weight against pooled capacity for one
// container type.
type ContainerUtilization struct {
	ContainerTypeID   string  `json:"container_type_id"`
	PackedWeightGrams float64 `json:"packed_weight_grams"`
	CapacityGrams     float64 `json:"capacity_grams"`
	WeightUtilization float64 `json:"weight_utilization"`
}

// SolveResult is the full output of one optimization run.
type SolveResult struct {
	Status SolveStatus `json:"status"`

	Assignments    []PackingAssignment `json:"assignments"`
	ObjectiveValue float64             `json:"objective_value"`

	// RelaxedConstraints lists, in application order, the constraint tiers
	// that were dropped or loosened to recover feasibility.
	RelaxedConstraints []string `json:"relaxed_constraints"`

	RejectedItems []RejectedItem `json:"rejected_items"`

	// WeightUtilization is reported per container type, in container order.
	WeightUtilization []ContainerUtilization `json:"weight_utilization"`

	// AggregateUtilization is total packed weight over total pooled
	// capacity.
	AggregateUtilization float64 `json:"aggregate_utilization"`

	// Solve diagnostics.
	NodesExpanded   int   `json:"nodes_expanded"`
	SolveTimeMillis int64 `json:"solve_time_ms"`
}
