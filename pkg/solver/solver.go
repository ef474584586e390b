package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	ctrl "sigs.k8s.io/controller-runtime"

	apiv1 "github.com/packmate/mission-packing-optimizer/api/v1"
	"github.com/packmate/mission-packing-optimizer/internal/assembler"
	"github.com/packmate/mission-packing-optimizer/internal/engines/packer"
	"github.com/packmate/mission-packing-optimizer/internal/interfaces"
	"github.com/packmate/mission-packing-optimizer/internal/metrics"
	"github.com/packmate/mission-packing-optimizer/internal/model"
	"github.com/packmate/mission-packing-optimizer/internal/relaxation"
	"github.com/packmate/mission-packing-optimizer/pkg/config"
	"github.com/packmate/mission-packing-optimizer/pkg/core"
)

// Optimizer runs the full solve pipeline for one request at a time.
// Instances are safe for concurrent use: every solve operates on freshly
// constructed state.
type Optimizer struct {
	cfg        *config.Config
	controller *relaxation.Controller
}

// NewOptimizer wires the pipeline with the exact branch-and-bound engine
// and the greedy fallback.
func NewOptimizer(cfg *config.Config) (*Optimizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exact, err := packer.NewPacker(packer.BranchAndBoundStrategy)
	if err != nil {
		return nil, err
	}
	fallback, err := packer.NewPacker(packer.GreedyStrategy)
	if err != nil {
		return nil, err
	}
	controller, err := relaxation.NewController(exact, fallback)
	if err != nil {
		return nil, err
	}
	return &Optimizer{cfg: cfg, controller: controller}, nil
}

// Optimize validates and solves one request. The only error condition is a
// malformed instance (wrapping core.ErrInvalidInput); everything else,
// including infeasibility and budget exhaustion, is expressed through the
// result status.
func (o *Optimizer) Optimize(ctx context.Context, req *apiv1.SolveRequest) (*apiv1.SolveResult, error) {
	logger := ctrl.LoggerFrom(ctx)
	start := time.Now()

	req.Default()
	inst, err := model.BuildInstance(req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			metrics.RecordInvalidInput()
		}
		return nil, err
	}

	limits, err := o.searchLimits(req, start)
	if err != nil {
		metrics.RecordInvalidInput()
		return nil, err
	}

	out, err := o.controller.Solve(ctx, inst, limits)
	if err != nil {
		return nil, err
	}

	res := assembler.Assemble(inst, out)
	elapsed := time.Since(start)
	res.SolveTimeMillis = elapsed.Milliseconds()
	metrics.RecordSolve(string(res.Status), res.NodesExpanded, elapsed.Seconds())

	logger.Info("packing solve complete",
		"status", res.Status,
		"objective", res.ObjectiveValue,
		"assignments", len(res.Assignments),
		"relaxed", res.RelaxedConstraints,
		"nodesExpanded", res.NodesExpanded)
	return res, nil
}

// searchLimits derives the per-solve budget: request values win over the
// configured defaults.
func (o *Optimizer) searchLimits(req *apiv1.SolveRequest, start time.Time) (interfaces.SearchLimits, error) {
	limits := interfaces.SearchLimits{NodeExpansionCeiling: req.NodeExpansionCeiling}
	if limits.NodeExpansionCeiling <= 0 {
		limits.NodeExpansionCeiling = o.cfg.NodeExpansionCeiling
	}

	timeout := o.cfg.SolveTimeout
	if req.Deadline != "" {
		d, err := time.ParseDuration(req.Deadline)
		if err != nil || d <= 0 {
			return limits, fmt.Errorf("%w: invalid deadline %q", core.ErrInvalidInput, req.Deadline)
		}
		timeout = d
	}
	if timeout > 0 {
		limits.Deadline = start.Add(timeout)
	}
	return limits, nil
}
