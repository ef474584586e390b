// Package core provides the domain model for the mission packing optimizer.
//
// This package contains the entities and relationships the solve pipeline
// operates on:
//
//   - CandidateItem: a pre-scored inventory item eligible for packing
//   - ContainerType: a class of identical transport containers
//   - MissionConstraints: diversity minimums, tag coverage, weight caps
//   - Instance: a validated, canonically ordered problem instance
//   - Solution: per-(item, container-type) packed quantities
//
// All entities are constructed fresh per optimization request and discarded
// once a result has been assembled; nothing in this package holds cross-call
// state.
//
// The core package is designed to be:
//   - Immutable where possible (value types)
//   - Deterministic: canonical ordering makes solves reproducible
//   - Independent of the wire contract (pure domain logic)
package core
