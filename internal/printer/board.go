package printer

import (
	"strings"

	"github.com/sweeplab/sweeper/internal/board"
	"github.com/sweeplab/sweeper/pkg/inference"
)

// Board renders the player-visible state of a board as a grid, one row per
// line. Hidden tiles show as "-", flags as "F", revealed mines as "*", and
// revealed tiles as their adjacent mine count ("." for zero). When revealMines
// is true, unrevealed mines are also shown (used after a game ends).
func Board(b *board.Board, revealMines bool) string {
	var sb strings.Builder
	for row := 0; row < b.Height(); row++ {
		for col := 0; col < b.Width(); col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			tile := b.TileAt(inference.Cell{Row: row, Col: col})
			sb.WriteString(tileGlyph(tile, revealMines))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func tileGlyph(tile board.Tile, revealMines bool) string {
	switch {
	case tile.Revealed && tile.Mine:
		return red.Sprint("*")
	case tile.Flagged:
		return yellow.Sprint("F")
	case !tile.Revealed && tile.Mine && revealMines:
		return red.Sprint("*")
	case !tile.Revealed:
		return "-"
	case tile.Adjacent == 0:
		return "."
	default:
		return cyan.Sprintf("%d", tile.Adjacent)
	}
}
