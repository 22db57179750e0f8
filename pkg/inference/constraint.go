package inference

import (
	"fmt"
	"strings"
)

// Constraint is a logical statement about the hidden grid: exactly Count of
// the cells in its set are unsafe. Constraints are created from observations
// or synthesized from pairs of overlapping constraints, and are mutated in
// place as the cells they mention become known safe or unsafe.
//
// Invariant: 0 <= count <= number of cells. A violation means the knowledge
// base became inconsistent, which is a defect, not a recoverable state.
type Constraint struct {
	cells map[Cell]struct{}
	count int
}

// NewConstraint builds a constraint over the given cells (duplicates
// collapse) stating that exactly count of them are unsafe.
func NewConstraint(cells []Cell, count int) *Constraint {
	set := make(map[Cell]struct{}, len(cells))
	for _, c := range cells {
		set[c] = struct{}{}
	}
	return &Constraint{cells: set, count: count}
}

// Count returns how many of the constraint's cells are unsafe.
func (c *Constraint) Count() int {
	return c.count
}

// Len returns the number of cells the constraint still mentions.
func (c *Constraint) Len() int {
	return len(c.cells)
}

// Contains reports whether the constraint mentions the given cell.
func (c *Constraint) Contains(cell Cell) bool {
	_, ok := c.cells[cell]
	return ok
}

// Cells returns the constraint's cells as a sorted copy. Mutating the
// returned slice does not affect the constraint.
func (c *Constraint) Cells() []Cell {
	out := make([]Cell, 0, len(c.cells))
	for cell := range c.cells {
		out = append(out, cell)
	}
	return sortCells(out)
}

// KnownUnsafe returns every cell of the constraint if the count equals the
// cell total - then each one must be unsafe - and nil otherwise.
func (c *Constraint) KnownUnsafe() []Cell {
	if len(c.cells) == 0 || c.count != len(c.cells) {
		return nil
	}
	return c.Cells()
}

// KnownSafe returns every cell of the constraint if the count is zero - then
// none of them can be unsafe - and nil otherwise.
func (c *Constraint) KnownSafe() []Cell {
	if len(c.cells) == 0 || c.count != 0 {
		return nil
	}
	return c.Cells()
}

// MarkUnsafe records that cell is known unsafe: it is removed from the set
// and the count drops by one, since the cell no longer contributes
// uncertainty. No-op when the cell is not a member.
func (c *Constraint) MarkUnsafe(cell Cell) {
	if _, ok := c.cells[cell]; !ok {
		return
	}
	delete(c.cells, cell)
	c.count--
}

// MarkSafe records that cell is known safe: it is removed from the set with
// the count unchanged, since a safe cell contributes zero to it. No-op when
// the cell is not a member.
func (c *Constraint) MarkSafe(cell Cell) {
	delete(c.cells, cell)
}

// Equal reports structural equality: same cell set and same count.
func (c *Constraint) Equal(other *Constraint) bool {
	if c.count != other.count || len(c.cells) != len(other.cells) {
		return false
	}
	for cell := range c.cells {
		if _, ok := other.cells[cell]; !ok {
			return false
		}
	}
	return true
}

// Key returns a canonical order-independent representation of the
// constraint, suitable for structural deduplication.
func (c *Constraint) Key() string {
	var b strings.Builder
	for _, cell := range c.Cells() {
		b.WriteString(cell.String())
	}
	fmt.Fprintf(&b, "=%d", c.count)
	return b.String()
}

// String renders the constraint as "{(r,c) ...} = count".
func (c *Constraint) String() string {
	parts := make([]string, 0, len(c.cells))
	for _, cell := range c.Cells() {
		parts = append(parts, cell.String())
	}
	return fmt.Sprintf("{%s} = %d", strings.Join(parts, " "), c.count)
}

// subsetOf reports whether every cell of c is also a cell of other.
func (c *Constraint) subsetOf(other *Constraint) bool {
	if len(c.cells) > len(other.cells) {
		return false
	}
	for cell := range c.cells {
		if _, ok := other.cells[cell]; !ok {
			return false
		}
	}
	return true
}

// disjointFrom reports whether c and other share no cells.
func (c *Constraint) disjointFrom(other *Constraint) bool {
	small, large := c, other
	if len(large.cells) < len(small.cells) {
		small, large = large, small
	}
	for cell := range small.cells {
		if _, ok := large.cells[cell]; ok {
			return false
		}
	}
	return true
}

// minus returns the cells of c that other does not mention.
func (c *Constraint) minus(other *Constraint) []Cell {
	var out []Cell
	for cell := range c.cells {
		if _, ok := other.cells[cell]; !ok {
			out = append(out, cell)
		}
	}
	return sortCells(out)
}

// assertValid panics if the count has left [0, len(cells)]. Correct inputs
// can never trigger this; it guards against logic defects in propagation.
func (c *Constraint) assertValid() {
	if c.count < 0 || c.count > len(c.cells) {
		panic(fmt.Sprintf("inference: inconsistent constraint %s", c))
	}
}
