// Package board holds the hidden ground truth a game is played against: the
// mine layout, plus which cells have been revealed or flagged so far.
//
// The board is the engine's observation source - AdjacentMines answers "how
// many unsafe cells surround this one" deterministically for a fixed layout.
package board

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/sweeplab/sweeper/pkg/inference"
)

// Board is a height x width minefield with reveal/flag state. Not safe for
// concurrent use; callers that share a board must serialize access.
type Board struct {
	height int
	width  int

	mines    map[inference.Cell]struct{}
	revealed map[inference.Cell]struct{}
	flagged  map[inference.Cell]struct{}

	exploded bool
}

// Tile is the externally visible state of one cell. Mine and Adjacent
// describe the hidden truth; callers building player-facing views must only
// expose them for revealed tiles (or once the game is over).
type Tile struct {
	Revealed bool
	Flagged  bool
	Mine     bool
	Adjacent int
}

// Snapshot is the serializable form of a board, used to persist games.
type Snapshot struct {
	Height   int              `json:"height"`
	Width    int              `json:"width"`
	Mines    []inference.Cell `json:"mines"`
	Revealed []inference.Cell `json:"revealed"`
	Flagged  []inference.Cell `json:"flagged"`
	Exploded bool             `json:"exploded"`
}

// New creates a board with mineCount mines placed uniformly at random,
// seeded from the clock. Use NewWithSource for reproducible layouts.
func New(height, width, mineCount int) (*Board, error) {
	return NewWithSource(height, width, mineCount, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource creates a board with mineCount mines placed uniformly at
// random using the given source.
func NewWithSource(height, width, mineCount int, src rand.Source) (*Board, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("board dimensions must be positive, got %dx%d", height, width)
	}
	if mineCount < 0 || mineCount > height*width {
		return nil, fmt.Errorf("mine count %d outside [0, %d]", mineCount, height*width)
	}

	b := &Board{
		height:   height,
		width:    width,
		mines:    make(map[inference.Cell]struct{}, mineCount),
		revealed: make(map[inference.Cell]struct{}),
		flagged:  make(map[inference.Cell]struct{}),
	}

	rng := rand.New(src)
	for len(b.mines) < mineCount {
		cell := inference.Cell{Row: rng.Intn(height), Col: rng.Intn(width)}
		b.mines[cell] = struct{}{}
	}
	return b, nil
}

// NewFromMines creates a board with an explicit mine layout. Out-of-bounds
// mines are rejected.
func NewFromMines(height, width int, mines []inference.Cell) (*Board, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("board dimensions must be positive, got %dx%d", height, width)
	}
	b := &Board{
		height:   height,
		width:    width,
		mines:    make(map[inference.Cell]struct{}, len(mines)),
		revealed: make(map[inference.Cell]struct{}),
		flagged:  make(map[inference.Cell]struct{}),
	}
	for _, m := range mines {
		if !b.InBounds(m) {
			return nil, fmt.Errorf("mine %s outside %dx%d board", m, height, width)
		}
		b.mines[m] = struct{}{}
	}
	return b, nil
}

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// MineCount returns the number of mines on the board.
func (b *Board) MineCount() int { return len(b.mines) }

// InBounds reports whether cell lies on the board.
func (b *Board) InBounds(cell inference.Cell) bool {
	return cell.Row >= 0 && cell.Row < b.height && cell.Col >= 0 && cell.Col < b.width
}

// IsMine reports whether cell hides a mine.
func (b *Board) IsMine(cell inference.Cell) bool {
	_, ok := b.mines[cell]
	return ok
}

// Mines returns the mine layout, sorted row-major. Callers must not expose
// it to players before the game is over.
func (b *Board) Mines() []inference.Cell {
	return sortedCells(b.mines)
}

// AdjacentMines returns the number of mines among the up-to-8 in-bounds
// neighbors of cell, excluding the cell itself. This is the observation
// source contract the inference engine consumes.
func (b *Board) AdjacentMines(cell inference.Cell) int {
	count := 0
	for row := cell.Row - 1; row <= cell.Row+1; row++ {
		for col := cell.Col - 1; col <= cell.Col+1; col++ {
			n := inference.Cell{Row: row, Col: col}
			if n == cell || !b.InBounds(n) {
				continue
			}
			if _, mine := b.mines[n]; mine {
				count++
			}
		}
	}
	return count
}

// Reveal opens a cell. Revealing a mine explodes the board; revealing a
// zero-adjacency cell flood-fills its neighborhood. Revealing an already
// revealed or flagged cell is a no-op. Returns whether a mine was hit.
func (b *Board) Reveal(cell inference.Cell) (hitMine bool, err error) {
	if !b.InBounds(cell) {
		return false, fmt.Errorf("cell %s outside %dx%d board", cell, b.height, b.width)
	}
	if _, open := b.revealed[cell]; open {
		return false, nil
	}
	if _, flag := b.flagged[cell]; flag {
		return false, nil
	}

	b.revealed[cell] = struct{}{}
	if b.IsMine(cell) {
		b.exploded = true
		return true, nil
	}

	// Flood fill: a zero-adjacency cell opens its whole neighborhood.
	// Iterative so deep cascades cannot blow the stack.
	if b.AdjacentMines(cell) == 0 {
		stack := []inference.Cell{cell}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for row := cur.Row - 1; row <= cur.Row+1; row++ {
				for col := cur.Col - 1; col <= cur.Col+1; col++ {
					n := inference.Cell{Row: row, Col: col}
					if n == cur || !b.InBounds(n) {
						continue
					}
					if _, open := b.revealed[n]; open {
						continue
					}
					if _, flag := b.flagged[n]; flag {
						continue
					}
					b.revealed[n] = struct{}{}
					if b.AdjacentMines(n) == 0 {
						stack = append(stack, n)
					}
				}
			}
		}
	}
	return false, nil
}

// ToggleFlag flips the flag on an unrevealed cell. Flagging a revealed cell
// is a no-op.
func (b *Board) ToggleFlag(cell inference.Cell) error {
	if !b.InBounds(cell) {
		return fmt.Errorf("cell %s outside %dx%d board", cell, b.height, b.width)
	}
	if _, open := b.revealed[cell]; open {
		return nil
	}
	if _, flag := b.flagged[cell]; flag {
		delete(b.flagged, cell)
	} else {
		b.flagged[cell] = struct{}{}
	}
	return nil
}

// IsRevealed reports whether cell has been opened.
func (b *Board) IsRevealed(cell inference.Cell) bool {
	_, ok := b.revealed[cell]
	return ok
}

// IsFlagged reports whether cell carries a flag.
func (b *Board) IsFlagged(cell inference.Cell) bool {
	_, ok := b.flagged[cell]
	return ok
}

// Exploded reports whether a mine has been revealed.
func (b *Board) Exploded() bool { return b.exploded }

// Cleared reports whether every non-mine cell has been revealed without an
// explosion - the winning condition for reveal-driven play.
func (b *Board) Cleared() bool {
	return !b.exploded && len(b.revealed) == b.height*b.width-len(b.mines)
}

// AllMinesFlagged reports whether the flag set exactly matches the mine set,
// the winning condition for flag-driven play.
func (b *Board) AllMinesFlagged() bool {
	if len(b.flagged) != len(b.mines) {
		return false
	}
	for cell := range b.flagged {
		if _, mine := b.mines[cell]; !mine {
			return false
		}
	}
	return true
}

// TileAt returns the full state of one cell, including hidden truth. Callers
// building player-facing views must filter it.
func (b *Board) TileAt(cell inference.Cell) Tile {
	return Tile{
		Revealed: b.IsRevealed(cell),
		Flagged:  b.IsFlagged(cell),
		Mine:     b.IsMine(cell),
		Adjacent: b.AdjacentMines(cell),
	}
}

// Snapshot captures the board for persistence.
func (b *Board) Snapshot() *Snapshot {
	return &Snapshot{
		Height:   b.height,
		Width:    b.width,
		Mines:    sortedCells(b.mines),
		Revealed: sortedCells(b.revealed),
		Flagged:  sortedCells(b.flagged),
		Exploded: b.exploded,
	}
}

// FromSnapshot reconstructs a board persisted with Snapshot.
func FromSnapshot(s *Snapshot) (*Board, error) {
	b, err := NewFromMines(s.Height, s.Width, s.Mines)
	if err != nil {
		return nil, err
	}
	for _, cell := range s.Revealed {
		if !b.InBounds(cell) {
			return nil, fmt.Errorf("revealed cell %s outside %dx%d board", cell, s.Height, s.Width)
		}
		b.revealed[cell] = struct{}{}
	}
	for _, cell := range s.Flagged {
		if !b.InBounds(cell) {
			return nil, fmt.Errorf("flagged cell %s outside %dx%d board", cell, s.Height, s.Width)
		}
		b.flagged[cell] = struct{}{}
	}
	b.exploded = s.Exploded
	return b, nil
}

func sortedCells(set map[inference.Cell]struct{}) []inference.Cell {
	out := make([]inference.Cell, 0, len(set))
	for cell := range set {
		out = append(out, cell)
	}
	// Row-major order keeps snapshots and views deterministic.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
