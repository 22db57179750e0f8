package inference

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine creates an engine with a fixed random source so guess
// behavior is reproducible.
func newTestEngine(t *testing.T, height, width int) *Engine {
	t.Helper()
	eng, err := NewWithSource(height, width, rand.NewSource(1))
	require.NoError(t, err)
	return eng
}

// adjacentCounter returns an observation source over a fixed mine layout:
// for a cell it yields the number of mines among its in-bounds neighbors.
func adjacentCounter(height, width int, mines []Cell) func(Cell) int {
	mineSet := make(map[Cell]struct{}, len(mines))
	for _, m := range mines {
		mineSet[m] = struct{}{}
	}
	return func(cell Cell) int {
		count := 0
		for row := cell.Row - 1; row <= cell.Row+1; row++ {
			for col := cell.Col - 1; col <= cell.Col+1; col++ {
				n := Cell{Row: row, Col: col}
				if n == cell || row < 0 || row >= height || col < 0 || col >= width {
					continue
				}
				if _, ok := mineSet[n]; ok {
					count++
				}
			}
		}
		return count
	}
}

func TestNew(t *testing.T) {
	t.Run("creates engine for valid dimensions", func(t *testing.T) {
		eng, err := New(8, 8)
		require.NoError(t, err)

		height, width := eng.Dimensions()
		assert.Equal(t, 8, height)
		assert.Equal(t, 8, width)
		assert.Empty(t, eng.Safe())
		assert.Empty(t, eng.Unsafe())
		assert.Empty(t, eng.MovesMade())
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		_, err := New(0, 8)
		assert.Error(t, err)

		_, err = New(8, -1)
		assert.Error(t, err)
	})
}

func TestObserveValidation(t *testing.T) {
	eng := newTestEngine(t, 3, 3)

	t.Run("rejects out-of-bounds cell", func(t *testing.T) {
		err := eng.Observe(Cell{Row: 3, Col: 0}, 0)
		require.Error(t, err)

		var invalid *InvalidObservationError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, Cell{Row: 3, Col: 0}, invalid.Cell)
	})

	t.Run("rejects count above neighbor total", func(t *testing.T) {
		// A corner cell has exactly 3 neighbors.
		err := eng.Observe(Cell{Row: 0, Col: 0}, 4)
		require.Error(t, err)

		var invalid *InvalidObservationError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, 3, invalid.Neighbors)
	})

	t.Run("rejects negative count", func(t *testing.T) {
		err := eng.Observe(Cell{Row: 1, Col: 1}, -1)
		assert.Error(t, err)
	})

	t.Run("rejected observations leave the engine untouched", func(t *testing.T) {
		assert.Empty(t, eng.MovesMade())
		assert.Empty(t, eng.Safe())
		assert.Equal(t, 0, eng.KnowledgeSize())
	})
}

func TestObserveZeroCount(t *testing.T) {
	// Corner observation with count 0 on a 3x3 grid: all three neighbors
	// are immediately safe and no constraint is retained.
	eng := newTestEngine(t, 3, 3)

	require.NoError(t, eng.Observe(Cell{Row: 0, Col: 0}, 0))

	assert.Equal(t, []Cell{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, eng.Safe())
	assert.Equal(t, 0, eng.KnowledgeSize())
	assert.Empty(t, eng.Unsafe())
}

func TestObserveFullCountResolvesUnsafe(t *testing.T) {
	t.Run("single remaining cell with count 1", func(t *testing.T) {
		// On a 1x3 grid, (0,0) has the single neighbor (0,1); observing
		// count 1 must resolve (0,1) unsafe on the propagation pass.
		eng := newTestEngine(t, 1, 3)

		require.NoError(t, eng.Observe(Cell{Row: 0, Col: 0}, 1))

		assert.Equal(t, []Cell{{0, 1}}, eng.Unsafe())
		assert.Equal(t, 0, eng.KnowledgeSize())
	})

	t.Run("count equal to neighbor total marks all neighbors", func(t *testing.T) {
		eng := newTestEngine(t, 2, 2)

		require.NoError(t, eng.Observe(Cell{Row: 0, Col: 0}, 3))

		assert.Equal(t, []Cell{{0, 1}, {1, 0}, {1, 1}}, eng.Unsafe())
		assert.Equal(t, []Cell{{0, 0}}, eng.Safe())
	})
}

func TestMarkIdempotence(t *testing.T) {
	eng := newTestEngine(t, 3, 3)

	eng.MarkSafe(Cell{Row: 1, Col: 1})
	eng.MarkSafe(Cell{Row: 1, Col: 1})
	eng.MarkUnsafe(Cell{Row: 2, Col: 2})
	eng.MarkUnsafe(Cell{Row: 2, Col: 2})

	assert.Equal(t, []Cell{{1, 1}}, eng.Safe())
	assert.Equal(t, []Cell{{2, 2}}, eng.Unsafe())
}

func TestSynthesizeSubsetDifference(t *testing.T) {
	t.Run("existing subset of new", func(t *testing.T) {
		// K={a,b,c}=1 and C={a,b,c,d,e}=2 must yield {d,e}=1.
		eng := newTestEngine(t, 5, 5)
		eng.knowledge = append(eng.knowledge,
			NewConstraint([]Cell{{0, 0}, {0, 1}, {0, 2}}, 1))

		current := NewConstraint([]Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}, 2)
		derived := eng.synthesize(current)

		require.Len(t, derived, 1)
		assert.Equal(t, []Cell{{0, 3}, {0, 4}}, derived[0].Cells())
		assert.Equal(t, 1, derived[0].Count())
	})

	t.Run("new subset of existing takes the difference from the superset", func(t *testing.T) {
		eng := newTestEngine(t, 5, 5)
		eng.knowledge = append(eng.knowledge,
			NewConstraint([]Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}, 2))

		current := NewConstraint([]Cell{{0, 0}, {0, 1}, {0, 2}}, 1)
		derived := eng.synthesize(current)

		require.Len(t, derived, 1)
		assert.Equal(t, []Cell{{0, 3}, {0, 4}}, derived[0].Cells())
		assert.Equal(t, 1, derived[0].Count())
	})

	t.Run("disjoint constraints yield nothing", func(t *testing.T) {
		eng := newTestEngine(t, 5, 5)
		eng.knowledge = append(eng.knowledge,
			NewConstraint([]Cell{{0, 0}, {0, 1}}, 1))

		derived := eng.synthesize(NewConstraint([]Cell{{4, 4}, {4, 3}}, 1))
		assert.Empty(t, derived)
	})

	t.Run("overlapping but incomparable sets yield nothing", func(t *testing.T) {
		eng := newTestEngine(t, 5, 5)
		eng.knowledge = append(eng.knowledge,
			NewConstraint([]Cell{{0, 0}, {0, 1}}, 1))

		derived := eng.synthesize(NewConstraint([]Cell{{0, 1}, {0, 2}}, 1))
		assert.Empty(t, derived)
	})
}

func TestSafeMove(t *testing.T) {
	t.Run("returns an unplayed proven-safe cell", func(t *testing.T) {
		eng := newTestEngine(t, 3, 3)
		require.NoError(t, eng.Observe(Cell{Row: 0, Col: 0}, 0))

		move, ok := eng.SafeMove()
		require.True(t, ok)
		assert.True(t, eng.IsSafe(move))
		assert.NotEqual(t, Cell{Row: 0, Col: 0}, move, "already played")
	})

	t.Run("reports none when every safe cell is played", func(t *testing.T) {
		eng := newTestEngine(t, 1, 1)
		require.NoError(t, eng.Observe(Cell{Row: 0, Col: 0}, 0))

		_, ok := eng.SafeMove()
		assert.False(t, ok)
	})
}

func TestGuessMove(t *testing.T) {
	t.Run("prefers a cell mentioned by no constraint", func(t *testing.T) {
		eng := newTestEngine(t, 3, 3)
		require.NoError(t, eng.Observe(Cell{Row: 0, Col: 0}, 1))
		require.Equal(t, 1, eng.KnowledgeSize())

		move, ok := eng.GuessMove()
		require.True(t, ok)

		for _, kn := range eng.Knowledge() {
			assert.False(t, kn.Contains(move), "guess %s is constrained", move)
		}
	})

	t.Run("falls back to the smallest-count constraint", func(t *testing.T) {
		// On a 1x3 grid, observing (0,1)=1 leaves {(0,0),(0,2)}=1 and no
		// unconstrained candidate; the guess must come from that pair.
		eng := newTestEngine(t, 1, 3)
		require.NoError(t, eng.Observe(Cell{Row: 0, Col: 1}, 1))

		for i := 0; i < 20; i++ {
			move, ok := eng.GuessMove()
			require.True(t, ok)
			assert.Contains(t, []Cell{{0, 0}, {0, 2}}, move)
		}
	})

	t.Run("picks among all candidates with empty knowledge", func(t *testing.T) {
		eng := newTestEngine(t, 2, 2)

		move, ok := eng.GuessMove()
		require.True(t, ok)
		assert.True(t, eng.InBounds(move))
	})

	t.Run("reports terminal when no candidate remains", func(t *testing.T) {
		eng := newTestEngine(t, 1, 1)
		require.NoError(t, eng.Observe(Cell{Row: 0, Col: 0}, 0))

		_, ok := eng.GuessMove()
		assert.False(t, ok)
	})
}

func TestReobservationIsTolerated(t *testing.T) {
	eng := newTestEngine(t, 3, 3)

	require.NoError(t, eng.Observe(Cell{Row: 1, Col: 1}, 2))
	safe, unsafeCells, size := eng.Safe(), eng.Unsafe(), eng.KnowledgeSize()

	require.NoError(t, eng.Observe(Cell{Row: 1, Col: 1}, 2))
	assert.Equal(t, safe, eng.Safe())
	assert.Equal(t, unsafeCells, eng.Unsafe())
	assert.Equal(t, size, eng.KnowledgeSize())
}

func TestKnowledgeBaseInvariants(t *testing.T) {
	// Feed a real layout observation by observation and check, after every
	// step, that decided sets only grow, stay disjoint, and that active
	// constraints are valid and mention no decided cell.
	mines := []Cell{{0, 3}, {2, 1}, {3, 3}}
	counter := adjacentCounter(4, 4, mines)
	mineSet := map[Cell]struct{}{{0, 3}: {}, {2, 1}: {}, {3, 3}: {}}

	eng := newTestEngine(t, 4, 4)
	var prevSafe, prevUnsafe, prevMoves int

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			cell := Cell{Row: row, Col: col}
			if _, mine := mineSet[cell]; mine {
				continue
			}
			require.NoError(t, eng.Observe(cell, counter(cell)))

			assert.GreaterOrEqual(t, len(eng.Safe()), prevSafe, "safe set shrank")
			assert.GreaterOrEqual(t, len(eng.Unsafe()), prevUnsafe, "unsafe set shrank")
			assert.GreaterOrEqual(t, len(eng.MovesMade()), prevMoves, "moves shrank")
			prevSafe, prevUnsafe, prevMoves = len(eng.Safe()), len(eng.Unsafe()), len(eng.MovesMade())

			for _, s := range eng.Safe() {
				assert.False(t, eng.IsUnsafe(s), "cell %s both safe and unsafe", s)
			}
			for _, kn := range eng.knowledge {
				assert.GreaterOrEqual(t, kn.Count(), 0)
				assert.LessOrEqual(t, kn.Count(), kn.Len())
				for _, c := range kn.Cells() {
					assert.False(t, eng.IsSafe(c), "constraint mentions safe cell %s", c)
					assert.False(t, eng.IsUnsafe(c), "constraint mentions unsafe cell %s", c)
				}
			}
		}
	}
}

func TestFullSweepIdentifiesAllMines(t *testing.T) {
	// Observing every non-mine cell of a fixed layout must leave the engine
	// with exactly the mine set proven unsafe and everything else safe.
	layouts := []struct {
		name          string
		height, width int
		mines         []Cell
	}{
		{"corner mine", 3, 3, []Cell{{2, 2}}},
		{"scattered", 4, 4, []Cell{{0, 3}, {2, 1}, {3, 3}}},
		{"row strip", 2, 5, []Cell{{1, 0}, {1, 4}}},
	}

	for _, layout := range layouts {
		t.Run(layout.name, func(t *testing.T) {
			counter := adjacentCounter(layout.height, layout.width, layout.mines)
			mineSet := make(map[Cell]struct{}, len(layout.mines))
			for _, m := range layout.mines {
				mineSet[m] = struct{}{}
			}

			eng := newTestEngine(t, layout.height, layout.width)
			for row := 0; row < layout.height; row++ {
				for col := 0; col < layout.width; col++ {
					cell := Cell{Row: row, Col: col}
					if _, mine := mineSet[cell]; mine {
						continue
					}
					require.NoError(t, eng.Observe(cell, counter(cell)))
				}
			}

			assert.Equal(t, sortCells(append([]Cell(nil), layout.mines...)), eng.Unsafe())
			assert.Len(t, eng.Safe(), layout.height*layout.width-len(layout.mines))
		})
	}
}
