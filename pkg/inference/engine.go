package inference

import (
	"fmt"
	"math/rand"
	"time"
)

// InvalidObservationError reports an observation that violates the
// observation-source contract: a cell outside the grid, or a neighbor count
// outside [0, number of in-bounds neighbors]. Neighbors is -1 when the cell
// itself was out of bounds.
type InvalidObservationError struct {
	Cell      Cell
	Count     int
	Neighbors int
}

func (e *InvalidObservationError) Error() string {
	if e.Neighbors < 0 {
		return fmt.Sprintf("invalid observation: cell %s is outside the grid", e.Cell)
	}
	return fmt.Sprintf("invalid observation: count %d for cell %s is outside [0, %d]",
		e.Count, e.Cell, e.Neighbors)
}

// Engine accumulates knowledge about a hidden height x width grid and
// derives which cells are provably safe or unsafe.
//
// The engine is exclusively owned by its caller: all methods are synchronous
// in-memory mutations and none are safe for concurrent use.
type Engine struct {
	height int
	width  int

	// Decided cells. All three sets grow monotonically; safe and unsafe
	// are always disjoint, and movesMade is a subset of safe.
	movesMade map[Cell]struct{}
	safe      map[Cell]struct{}
	unsafe    map[Cell]struct{}

	// Active constraints. Every constraint here mentions only undecided
	// cells and satisfies 0 <= count <= len(cells).
	knowledge []*Constraint

	rng *rand.Rand
}

// New creates an engine for a grid with the given dimensions. The random
// source used by GuessMove is seeded from the clock; use NewWithSource for
// deterministic behavior.
func New(height, width int) (*Engine, error) {
	return NewWithSource(height, width, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource is New with an explicit random source for GuessMove.
func NewWithSource(height, width int, src rand.Source) (*Engine, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", height, width)
	}
	return &Engine{
		height:    height,
		width:     width,
		movesMade: make(map[Cell]struct{}),
		safe:      make(map[Cell]struct{}),
		unsafe:    make(map[Cell]struct{}),
		rng:       rand.New(src),
	}, nil
}

// Dimensions returns the grid height and width the engine was built for.
func (e *Engine) Dimensions() (height, width int) {
	return e.height, e.width
}

// InBounds reports whether cell lies on the grid.
func (e *Engine) InBounds(cell Cell) bool {
	return cell.Row >= 0 && cell.Row < e.height && cell.Col >= 0 && cell.Col < e.width
}

// Observe ingests one observation from the observation source: cell was
// revealed and exactly count of its in-bounds neighbors are unsafe.
//
// The observed cell is recorded as a move and marked safe, the observation
// becomes a normalized constraint, the constraint is combined with the
// existing base via subset-difference synthesis, and everything is
// propagated to a fixpoint. On return no further automatic deduction is
// pending.
//
// Returns an InvalidObservationError if cell is out of bounds or count
// exceeds the cell's neighbor total; the engine state is unchanged in that
// case.
func (e *Engine) Observe(cell Cell, count int) error {
	if !e.InBounds(cell) {
		return &InvalidObservationError{Cell: cell, Count: count, Neighbors: -1}
	}
	neighbors := e.neighbors(cell)
	if count < 0 || count > len(neighbors) {
		return &InvalidObservationError{Cell: cell, Count: count, Neighbors: len(neighbors)}
	}

	e.movesMade[cell] = struct{}{}
	e.MarkSafe(cell)

	current := e.normalize(NewConstraint(neighbors, count))
	current.assertValid()

	if current.Count() == 0 {
		// Nothing around the cell is unsafe; no constraint worth keeping.
		for _, c := range current.Cells() {
			e.MarkSafe(c)
		}
	} else if !e.hasConstraint(current) {
		// Synthesize against the base as it stood before insertion.
		derived := e.synthesize(current)
		e.knowledge = append(e.knowledge, current)
		for _, d := range derived {
			if !e.hasConstraint(d) {
				e.knowledge = append(e.knowledge, d)
			}
		}
	}

	e.rebuildAllKnowledge()
	return nil
}

// MarkSafe records that cell is proven safe and folds the fact into every
// active constraint. Idempotent.
func (e *Engine) MarkSafe(cell Cell) {
	if _, ok := e.safe[cell]; ok {
		return
	}
	e.safe[cell] = struct{}{}
	for _, kn := range e.knowledge {
		kn.MarkSafe(cell)
	}
}

// MarkUnsafe records that cell is proven unsafe and folds the fact into
// every active constraint. Idempotent.
func (e *Engine) MarkUnsafe(cell Cell) {
	if _, ok := e.unsafe[cell]; ok {
		return
	}
	e.unsafe[cell] = struct{}{}
	for _, kn := range e.knowledge {
		kn.MarkUnsafe(cell)
	}
}

// SafeMove returns a cell proven safe that has not been played yet. The
// second result is false when no such cell exists; callers must not assume
// any particular choice among multiple candidates.
func (e *Engine) SafeMove() (Cell, bool) {
	for _, cell := range e.Safe() {
		if _, played := e.movesMade[cell]; !played {
			return cell, true
		}
	}
	return Cell{}, false
}

// GuessMove returns the least risky unplayed, not-proven-unsafe cell.
//
// Candidates mentioned by no active constraint are preferred - nothing known
// ties them to a mine. Failing that, the pick is uniform over the cells of
// the constraint with the smallest count. With no knowledge at all the pick
// is uniform over every candidate. The second result is false when no
// candidate remains, which is the terminal condition.
func (e *Engine) GuessMove() (Cell, bool) {
	var candidates []Cell
	for row := 0; row < e.height; row++ {
		for col := 0; col < e.width; col++ {
			cell := Cell{Row: row, Col: col}
			if _, ok := e.unsafe[cell]; ok {
				continue
			}
			if _, ok := e.movesMade[cell]; ok {
				continue
			}
			candidates = append(candidates, cell)
		}
	}
	if len(candidates) == 0 {
		return Cell{}, false
	}

	if len(e.knowledge) == 0 {
		return candidates[e.rng.Intn(len(candidates))], true
	}

	constrained := make(map[Cell]struct{})
	for _, kn := range e.knowledge {
		for _, cell := range kn.Cells() {
			constrained[cell] = struct{}{}
		}
	}
	for _, cell := range candidates {
		if _, ok := constrained[cell]; !ok {
			return cell, true
		}
	}

	// Every candidate carries some risk; draw from the constraint that
	// promises the fewest mines.
	best := e.knowledge[0]
	for _, kn := range e.knowledge[1:] {
		if kn.Count() < best.Count() {
			best = kn
		}
	}
	cells := best.Cells()
	return cells[e.rng.Intn(len(cells))], true
}

// Safe returns the cells proven safe so far, sorted row-major.
func (e *Engine) Safe() []Cell {
	return sortedSet(e.safe)
}

// Unsafe returns the cells proven unsafe so far, sorted row-major.
func (e *Engine) Unsafe() []Cell {
	return sortedSet(e.unsafe)
}

// MovesMade returns the cells already observed, sorted row-major.
func (e *Engine) MovesMade() []Cell {
	return sortedSet(e.movesMade)
}

// IsSafe reports whether cell has been proven safe.
func (e *Engine) IsSafe(cell Cell) bool {
	_, ok := e.safe[cell]
	return ok
}

// IsUnsafe reports whether cell has been proven unsafe.
func (e *Engine) IsUnsafe(cell Cell) bool {
	_, ok := e.unsafe[cell]
	return ok
}

// KnowledgeSize returns the number of active constraints.
func (e *Engine) KnowledgeSize() int {
	return len(e.knowledge)
}

// Knowledge returns copies of the active constraints, for inspection only.
func (e *Engine) Knowledge() []*Constraint {
	out := make([]*Constraint, 0, len(e.knowledge))
	for _, kn := range e.knowledge {
		out = append(out, NewConstraint(kn.Cells(), kn.Count()))
	}
	return out
}

// neighbors enumerates the up-to-8 in-bounds cells adjacent to cell,
// excluding the cell itself.
func (e *Engine) neighbors(cell Cell) []Cell {
	out := make([]Cell, 0, 8)
	for row := cell.Row - 1; row <= cell.Row+1; row++ {
		for col := cell.Col - 1; col <= cell.Col+1; col++ {
			n := Cell{Row: row, Col: col}
			if n == cell || !e.InBounds(n) {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// normalize applies every already-decided cell to a fresh constraint so the
// base invariants hold the moment it is inserted.
func (e *Engine) normalize(c *Constraint) *Constraint {
	for cell := range e.unsafe {
		c.MarkUnsafe(cell)
	}
	for cell := range e.safe {
		c.MarkSafe(cell)
	}
	return c
}

// hasConstraint reports whether the base already holds a structurally equal
// constraint.
func (e *Engine) hasConstraint(c *Constraint) bool {
	for _, kn := range e.knowledge {
		if kn.Equal(c) {
			return true
		}
	}
	return false
}

// synthesize applies the subset-difference rule between current and every
// existing constraint: when one cell set contains the other, the cells only
// the superset mentions must hold exactly the count difference of the two.
// The difference is always taken from the superset side, whichever side that
// is. Returned constraints are not yet inserted into the base.
func (e *Engine) synthesize(current *Constraint) []*Constraint {
	var derived []*Constraint
	for _, kn := range e.knowledge {
		if kn.disjointFrom(current) {
			continue
		}
		var super, sub *Constraint
		switch {
		case kn.subsetOf(current):
			super, sub = current, kn
		case current.subsetOf(kn):
			super, sub = kn, current
		default:
			continue
		}
		diff := super.minus(sub)
		if len(diff) == 0 {
			continue
		}
		count := super.Count() - sub.Count()
		if count < 0 {
			count = -count
		}
		derived = append(derived, NewConstraint(diff, count))
	}
	return derived
}

// rebuildAllKnowledge propagates to a fixpoint: any constraint that fully
// resolves has its cells marked and is dropped, and since marking mutates
// the remaining constraints, the scan repeats until a full pass drops
// nothing. Each productive pass strictly shrinks the base, so this
// terminates in at most len(knowledge) passes.
func (e *Engine) rebuildAllKnowledge() {
	for {
		seen := make(map[string]struct{}, len(e.knowledge))
		remaining := e.knowledge[:0:0]
		dropped := false

		for _, kn := range e.knowledge {
			kn.assertValid()
			if cells := kn.KnownUnsafe(); len(cells) > 0 {
				for _, cell := range cells {
					e.MarkUnsafe(cell)
				}
				dropped = true
				continue
			}
			if cells := kn.KnownSafe(); len(cells) > 0 {
				for _, cell := range cells {
					e.MarkSafe(cell)
				}
				dropped = true
				continue
			}
			if kn.Len() == 0 {
				// Fully resolved with nothing left to say.
				dropped = true
				continue
			}
			if _, dup := seen[kn.Key()]; dup {
				dropped = true
				continue
			}
			seen[kn.Key()] = struct{}{}
			remaining = append(remaining, kn)
		}

		e.knowledge = remaining
		if !dropped {
			return
		}
	}
}

// sortedSet copies a cell set into a row-major sorted slice.
func sortedSet(set map[Cell]struct{}) []Cell {
	out := make([]Cell, 0, len(set))
	for cell := range set {
		out = append(out, cell)
	}
	return sortCells(out)
}
