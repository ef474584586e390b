// Package solver implements the mission packing optimization pipeline.
//
// The solver package orchestrates the components that turn a scored
// candidate set and a set of transport constraints into a packing manifest.
//
// Architecture:
//
// The optimizer follows a pipeline pattern:
//
//	Constraint Model → Packing Solver → Relaxation Controller → Result Assembler
//	     (model)           (packer)         (relaxation)           (assembler)
//
// The Optimizer sits on top, orchestrating these components.
//
// Example usage:
//
//	opt, err := solver.NewOptimizer(cfg)
//	if err != nil {
//	    return err
//	}
//
//	result, err := opt.Optimize(ctx, req)
//	if errors.Is(err, core.ErrInvalidInput) {
//	    // caller error: malformed problem instance
//	    return err
//	}
//
//	for _, a := range result.Assignments {
//	    log.Info("packing assignment",
//	        "item", a.ItemID,
//	        "container", a.ContainerTypeID,
//	        "quantity", a.Quantity)
//	}
//
// The solver is designed to be:
//   - Deterministic: same inputs produce same outputs
//   - Bounded: the node-expansion ceiling guarantees a solve never hangs
//   - Isolated: no cross-request state; concurrent solves need no locking
//
// Infeasibility is a status, not an error: "no container combination
// suffices" is a legitimate outcome the caller must handle.
package solver
