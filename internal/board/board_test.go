package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeplab/sweeper/pkg/inference"
)

func TestNewWithSource(t *testing.T) {
	t.Run("places exactly the requested mines", func(t *testing.T) {
		b, err := NewWithSource(8, 8, 10, rand.NewSource(1))
		require.NoError(t, err)

		assert.Equal(t, 10, b.MineCount())
		assert.Len(t, b.Mines(), 10)
		for _, m := range b.Mines() {
			assert.True(t, b.InBounds(m))
		}
	})

	t.Run("same seed gives same layout", func(t *testing.T) {
		a, err := NewWithSource(8, 8, 10, rand.NewSource(42))
		require.NoError(t, err)
		b, err := NewWithSource(8, 8, 10, rand.NewSource(42))
		require.NoError(t, err)

		assert.Equal(t, a.Mines(), b.Mines())
	})

	t.Run("rejects bad dimensions", func(t *testing.T) {
		_, err := NewWithSource(0, 8, 1, rand.NewSource(1))
		assert.Error(t, err)
	})

	t.Run("rejects mine count above capacity", func(t *testing.T) {
		_, err := NewWithSource(2, 2, 5, rand.NewSource(1))
		assert.Error(t, err)
	})
}

func TestNewFromMines(t *testing.T) {
	t.Run("accepts an explicit layout", func(t *testing.T) {
		b, err := NewFromMines(3, 3, []inference.Cell{{Row: 2, Col: 2}})
		require.NoError(t, err)
		assert.True(t, b.IsMine(inference.Cell{Row: 2, Col: 2}))
		assert.False(t, b.IsMine(inference.Cell{Row: 0, Col: 0}))
	})

	t.Run("rejects out-of-bounds mines", func(t *testing.T) {
		_, err := NewFromMines(3, 3, []inference.Cell{{Row: 3, Col: 0}})
		assert.Error(t, err)
	})
}

func TestAdjacentMines(t *testing.T) {
	b, err := NewFromMines(3, 3, []inference.Cell{{Row: 0, Col: 1}, {Row: 1, Col: 1}})
	require.NoError(t, err)

	assert.Equal(t, 2, b.AdjacentMines(inference.Cell{Row: 0, Col: 0}))
	assert.Equal(t, 2, b.AdjacentMines(inference.Cell{Row: 0, Col: 2}))
	assert.Equal(t, 1, b.AdjacentMines(inference.Cell{Row: 2, Col: 0}))
	assert.Equal(t, 1, b.AdjacentMines(inference.Cell{Row: 2, Col: 2}))
	// A mine's own cell is excluded from its count.
	assert.Equal(t, 1, b.AdjacentMines(inference.Cell{Row: 0, Col: 1}))
}

func TestReveal(t *testing.T) {
	t.Run("revealing a mine explodes", func(t *testing.T) {
		b, err := NewFromMines(3, 3, []inference.Cell{{Row: 1, Col: 1}})
		require.NoError(t, err)

		hit, err := b.Reveal(inference.Cell{Row: 1, Col: 1})
		require.NoError(t, err)
		assert.True(t, hit)
		assert.True(t, b.Exploded())
	})

	t.Run("zero-adjacency reveal flood fills", func(t *testing.T) {
		// Single mine in a corner: revealing the far corner must cascade
		// across every zero cell and stop at the numbered ring.
		b, err := NewFromMines(4, 4, []inference.Cell{{Row: 0, Col: 0}})
		require.NoError(t, err)

		hit, err := b.Reveal(inference.Cell{Row: 3, Col: 3})
		require.NoError(t, err)
		require.False(t, hit)

		assert.True(t, b.Cleared(), "everything but the mine should be open")
		assert.False(t, b.IsRevealed(inference.Cell{Row: 0, Col: 0}))
	})

	t.Run("flagged cells resist reveal", func(t *testing.T) {
		b, err := NewFromMines(3, 3, []inference.Cell{{Row: 1, Col: 1}})
		require.NoError(t, err)

		require.NoError(t, b.ToggleFlag(inference.Cell{Row: 1, Col: 1}))
		hit, err := b.Reveal(inference.Cell{Row: 1, Col: 1})
		require.NoError(t, err)
		assert.False(t, hit)
		assert.False(t, b.IsRevealed(inference.Cell{Row: 1, Col: 1}))
	})

	t.Run("rejects out-of-bounds cells", func(t *testing.T) {
		b, err := NewFromMines(3, 3, nil)
		require.NoError(t, err)

		_, err = b.Reveal(inference.Cell{Row: -1, Col: 0})
		assert.Error(t, err)
	})
}

func TestToggleFlag(t *testing.T) {
	b, err := NewFromMines(3, 3, []inference.Cell{{Row: 0, Col: 0}})
	require.NoError(t, err)

	cell := inference.Cell{Row: 0, Col: 0}
	require.NoError(t, b.ToggleFlag(cell))
	assert.True(t, b.IsFlagged(cell))

	require.NoError(t, b.ToggleFlag(cell))
	assert.False(t, b.IsFlagged(cell))

	// Revealed cells cannot be flagged.
	open := inference.Cell{Row: 2, Col: 2}
	_, err = b.Reveal(open)
	require.NoError(t, err)
	require.NoError(t, b.ToggleFlag(open))
	assert.False(t, b.IsFlagged(open))
}

func TestWinConditions(t *testing.T) {
	t.Run("cleared when every non-mine cell is open", func(t *testing.T) {
		b, err := NewFromMines(2, 2, []inference.Cell{{Row: 0, Col: 0}})
		require.NoError(t, err)

		for _, cell := range []inference.Cell{{Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}} {
			_, err := b.Reveal(cell)
			require.NoError(t, err)
		}
		assert.True(t, b.Cleared())
	})

	t.Run("all mines flagged", func(t *testing.T) {
		b, err := NewFromMines(2, 2, []inference.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 1}})
		require.NoError(t, err)

		require.NoError(t, b.ToggleFlag(inference.Cell{Row: 0, Col: 0}))
		assert.False(t, b.AllMinesFlagged())

		require.NoError(t, b.ToggleFlag(inference.Cell{Row: 1, Col: 1}))
		assert.True(t, b.AllMinesFlagged())

		// A stray flag on a safe cell breaks the condition.
		require.NoError(t, b.ToggleFlag(inference.Cell{Row: 0, Col: 1}))
		assert.False(t, b.AllMinesFlagged())
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	b, err := NewFromMines(3, 3, []inference.Cell{{Row: 2, Col: 0}})
	require.NoError(t, err)
	_, err = b.Reveal(inference.Cell{Row: 0, Col: 2})
	require.NoError(t, err)
	require.NoError(t, b.ToggleFlag(inference.Cell{Row: 2, Col: 0}))

	restored, err := FromSnapshot(b.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, b.Mines(), restored.Mines())
	assert.Equal(t, b.Snapshot(), restored.Snapshot())
	assert.True(t, restored.IsFlagged(inference.Cell{Row: 2, Col: 0}))
	assert.True(t, restored.IsRevealed(inference.Cell{Row: 0, Col: 2}))
}

func TestSnapshotRejectsCorruptData(t *testing.T) {
	_, err := FromSnapshot(&Snapshot{Height: 2, Width: 2, Revealed: []inference.Cell{{Row: 9, Col: 9}}})
	assert.Error(t, err)
}
