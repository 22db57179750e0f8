package printer

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeplab/sweeper/internal/board"
	"github.com/sweeplab/sweeper/pkg/inference"
)

func TestError(t *testing.T) {
	t.Run("returns error with title only", func(t *testing.T) {
		err := Error("Something failed", "A longer explanation", []string{"Try this"})
		require.Error(t, err)
		assert.Equal(t, "Something failed", err.Error())
	})

	t.Run("handles empty suggestions", func(t *testing.T) {
		err := Error("Bad input", "The value was out of range", nil)
		require.Error(t, err)
		assert.Equal(t, "Bad input", err.Error())
	})
}

func TestErrorWithContext(t *testing.T) {
	t.Run("returns error with title only", func(t *testing.T) {
		err := ErrorWithContext("Connection failed", "Could not reach Redis",
			map[string]string{"address": "localhost:6379"},
			[]string{"Check that Redis is running"})
		require.Error(t, err)
		assert.Equal(t, "Connection failed", err.Error())
	})
}

func TestBoard(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	t.Run("renders hidden grid", func(t *testing.T) {
		b, err := board.NewFromMines(2, 3, []inference.Cell{{Row: 0, Col: 0}})
		require.NoError(t, err)

		assert.Equal(t, "- - -\n- - -\n", Board(b, false))
	})

	t.Run("renders revealed counts and flags", func(t *testing.T) {
		b, err := board.NewFromMines(2, 3, []inference.Cell{{Row: 0, Col: 0}})
		require.NoError(t, err)

		_, err = b.Reveal(inference.Cell{Row: 0, Col: 2})
		require.NoError(t, err)
		require.NoError(t, b.ToggleFlag(inference.Cell{Row: 0, Col: 0}))

		// Revealing the zero-adjacency corner flood fills its neighborhood
		// but stops at tiles that border the mine.
		assert.Equal(t, "F 1 .\n- 1 .\n", Board(b, false))
	})

	t.Run("reveals mines when requested", func(t *testing.T) {
		b, err := board.NewFromMines(1, 2, []inference.Cell{{Row: 0, Col: 1}})
		require.NoError(t, err)

		assert.Equal(t, "- -\n", Board(b, false))
		assert.Equal(t, "- *\n", Board(b, true))
	})

	t.Run("shows exploded mine", func(t *testing.T) {
		b, err := board.NewFromMines(1, 2, []inference.Cell{{Row: 0, Col: 1}})
		require.NoError(t, err)

		hit, err := b.Reveal(inference.Cell{Row: 0, Col: 1})
		require.NoError(t, err)
		require.True(t, hit)

		assert.Equal(t, "- *\n", Board(b, false))
	})
}
