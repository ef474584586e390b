/*
Copyright 2025 The Packmate Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package interfaces holds the contracts shared between the solve pipeline
// components, so that engines, relaxation, and orchestration do not import
// each other.
package interfaces

import (
	"context"
	"time"

	"github.com/packmate/mission-packing-optimizer/pkg/core"
)

// SearchLimits bounds one engine invocation. The node-expansion ceiling is
// the primary cancellation mechanism; the deadline is additionally checked
// between node expansions when set.
type SearchLimits struct {
	// NodeExpansionCeiling is the maximum number of branch decisions the
	// engine may expand. Must be > 0 for the exact engine.
	NodeExpansionCeiling int

	// Deadline is the wall-clock cutoff. Zero means no deadline.
	Deadline time.Time
}

// Expired reports whether the deadline, if any, has passed.
func (l SearchLimits) Expired(now time.Time) bool {
	return !l.Deadline.IsZero() && now.After(l.Deadline)
}

// PackOutcome classifies how an engine invocation ended.
type PackOutcome int

const (
	// OutcomeOptimal: the search completed exhaustively and Solution is a
	// global optimum for the instance's constraint set.
	OutcomeOptimal PackOutcome = iota

	// OutcomeInfeasible: the search completed exhaustively and no assignment
	// satisfies the constraints.
	OutcomeInfeasible

	// OutcomeBudgetExhausted: the node ceiling or deadline was hit; Solution
	// holds the incumbent, which may be nil.
	OutcomeBudgetExhausted

	// OutcomeHeuristic: the engine is a heuristic and makes no optimality
	// claim about Solution.
	OutcomeHeuristic
)

// PackReport is the result of one engine invocation.
type PackReport struct {
	// Solution is the best assignment found, aligned with the instance's
	// canonical order. Nil when no feasible assignment was found.
	Solution *core.Solution

	Outcome PackOutcome

	// NodesExpanded counts branch decisions expanded during the search.
	NodesExpanded int
}

// PackingEngine assigns quantities of items to container types under the
// instance's constraints. Implementations must be deterministic: identical
// instances and limits yield identical reports.
type PackingEngine interface {
	Pack(ctx context.Context, inst *core.Instance, limits SearchLimits) (*PackReport, error)
}
