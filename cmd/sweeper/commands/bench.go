package commands

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeplab/sweeper/internal/autoplay"
	"github.com/sweeplab/sweeper/internal/printer"
)

var (
	benchBoard boardFlags
	benchGames int
	benchSeed  int64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure the engine's win rate over many games",
	Long: `Play many games back to back and report aggregate results: wins,
losses, total moves, and how often the engine had to guess.

Boards are freshly generated per game. Pass --seed for a reproducible run.`,
	RunE: runBench,
}

func init() {
	benchBoard.register(benchCmd)
	benchCmd.Flags().IntVarP(&benchGames, "games", "n", 100, "Number of games to play")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 0, "Random seed (0 uses the current time)")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := benchBoard.load()
	if err != nil {
		return printer.Error("Invalid board configuration", err.Error(), []string{
			"Use --preset beginner|intermediate|expert, or --height/--width/--mines together",
		})
	}
	height, width, mines := cfg.Board.Resolve()

	seed := benchSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	printer.Info("Benchmarking %d games on %dx%d boards with %d mines (seed %d)\n",
		benchGames, height, width, mines, seed)

	start := time.Now()
	stats, err := autoplay.Simulate(benchGames, height, width, mines, rand.NewSource(seed))
	if err != nil {
		return printer.Error("Benchmark failed", err.Error(), nil)
	}
	elapsed := time.Since(start)

	printer.Success("Won %d of %d games (%.1f%%)\n", stats.Wins, stats.Games, stats.WinRate()*100)
	printer.Printf("  losses:  %d\n", stats.Losses)
	if stats.Stalls > 0 {
		printer.Printf("  stalls:  %d\n", stats.Stalls)
	}
	printer.Printf("  moves:   %d (%.1f per game)\n", stats.Moves, float64(stats.Moves)/float64(stats.Games))
	printer.Printf("  guesses: %d (%.1f per game)\n", stats.Guesses, float64(stats.Guesses)/float64(stats.Games))
	printer.Printf("  elapsed: %s\n", elapsed.Round(time.Millisecond))
	return nil
}
