package inference

import (
	"fmt"
	"sort"
)

// Cell identifies a single grid position by row and column.
// Cells are compared by value and are always copied, never shared.
type Cell struct {
	Row int
	Col int
}

// String returns the cell in "(row,col)" form.
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// sortCells orders cells row-major, in place, and returns the slice.
// Used to canonicalize cell sets for keys, display and deterministic
// iteration.
func sortCells(cells []Cell) []Cell {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}
