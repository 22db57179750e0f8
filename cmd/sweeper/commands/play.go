package commands

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeplab/sweeper/internal/autoplay"
	"github.com/sweeplab/sweeper/internal/board"
	"github.com/sweeplab/sweeper/internal/printer"
)

var (
	playBoard boardFlags
	playSeed  int64
	playQuiet bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play one engine-driven game in the terminal",
	Long: `Play a single game of minesweeper, with the inference engine choosing
every move. Each move is printed along with the board state; proven-safe moves
are distinguished from guesses.

The board comes from --preset or --height/--width/--mines, falling back to the
config file and then to the beginner preset. Pass --seed for a reproducible
game.`,
	RunE: runPlay,
}

func init() {
	playBoard.register(playCmd)
	playCmd.Flags().Int64Var(&playSeed, "seed", 0, "Random seed (0 uses the current time)")
	playCmd.Flags().BoolVarP(&playQuiet, "quiet", "q", false, "Only print the final board and outcome")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := playBoard.load()
	if err != nil {
		return printer.Error("Invalid board configuration", err.Error(), []string{
			"Use --preset beginner|intermediate|expert, or --height/--width/--mines together",
		})
	}
	height, width, mines := cfg.Board.Resolve()

	seed := playSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	b, err := board.NewWithSource(height, width, mines, rand.NewSource(rng.Int63()))
	if err != nil {
		return printer.Error("Could not create board", err.Error(), nil)
	}
	runner, err := autoplay.NewRunner(b, rand.NewSource(rng.Int63()))
	if err != nil {
		return printer.Error("Could not create engine", err.Error(), nil)
	}

	printer.Info("Playing %dx%d board with %d mines (seed %d)\n\n", height, width, mines, seed)

	for {
		move, done, err := runner.Step()
		if err != nil {
			return printer.Error("Game aborted", err.Error(), nil)
		}
		if !playQuiet && move.Strategy != "" {
			printMove(move)
			printer.Printf("%s\n", printer.Board(b, false))
		}
		if done {
			break
		}
	}

	result := runner.Result()
	switch result.Outcome {
	case autoplay.OutcomeWon:
		printer.Success("Won in %d moves (%d guesses), %d mines identified\n",
			len(result.Moves), result.Guesses, result.MinesIdentified)
	case autoplay.OutcomeLost:
		printer.Warning("Lost after %d moves (%d guesses)\n", len(result.Moves), result.Guesses)
	default:
		printer.Warning("No moves remain (%d played)\n", len(result.Moves))
	}
	printer.Printf("\n%s", printer.Board(b, true))
	return nil
}

func printMove(move autoplay.Move) {
	switch {
	case move.HitMine:
		printer.Step("%s at %s hit a mine\n", move.Strategy, move.Cell)
	case move.Strategy == autoplay.StrategyGuess:
		printer.Step("guess %s reveals %d\n", move.Cell, move.Count)
	default:
		printer.Step("safe %s reveals %d\n", move.Cell, move.Count)
	}
}
