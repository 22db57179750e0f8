// Package inference implements a constraint-propagation engine that deduces
// which cells of a hidden boolean grid are unsafe ("mines") and which are
// safe, from a stream of local observations.
//
// # Overview
//
// The engine consumes observations of the form "cell (r,c) was revealed and
// has N unsafe neighbors". Each observation is translated into a Constraint -
// a logical statement that exactly N of a given cell set are unsafe. The
// engine keeps a knowledge base of such constraints, simplifies them whenever
// a cell becomes known safe or unsafe, combines overlapping constraints via
// the subset-difference rule, and propagates every conclusion to a fixpoint
// before returning control to the caller.
//
// # Core Concepts
//
// Cells are plain (row, col) value pairs. Constraints hold a deduplicated
// cell set and a count; a constraint whose count equals its size proves every
// cell unsafe, and a constraint with count zero proves every cell safe.
//
// The Engine owns three monotonically growing cell sets - moves made, proven
// safe, proven unsafe - plus the active constraint base. After every call to
// Observe the base is fully normalized: no constraint mentions a decided
// cell, and no further automatic deduction is pending.
//
// # Usage Example
//
//	eng, err := inference.New(8, 8)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// The observation source reports 1 unsafe cell around (0,0).
//	if err := eng.Observe(inference.Cell{Row: 0, Col: 0}, 1); err != nil {
//		log.Fatal(err)
//	}
//
//	if move, ok := eng.SafeMove(); ok {
//		// move is proven safe and not yet played
//	} else if move, ok := eng.GuessMove(); ok {
//		// move is the least risky candidate available
//	}
//
// # Design Principles
//
// - Determinism: all deduction is deterministic; only GuessMove draws from a
// caller-injectable random source
// - Monotonicity: decided cells are never un-decided
// - Synchronous: single-threaded, no locking, no suspension points
// - Fail fast: observations that violate the source contract are rejected,
// never clamped
package inference
