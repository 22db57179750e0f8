package autoplay

import (
	"fmt"
	"math/rand"

	"github.com/sweeplab/sweeper/internal/board"
)

// Stats aggregates results across many games.
type Stats struct {
	Games   int
	Wins    int
	Losses  int
	Stalls  int
	Moves   int
	Guesses int
}

// Record folds one finished game into the totals.
func (s *Stats) Record(r *Result) {
	s.Games++
	s.Moves += len(r.Moves)
	s.Guesses += r.Guesses
	switch r.Outcome {
	case OutcomeWon:
		s.Wins++
	case OutcomeLost:
		s.Losses++
	default:
		s.Stalls++
	}
}

// WinRate returns the fraction of games won, 0 when none were played.
func (s *Stats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// Simulate plays the given number of games on fresh random boards and
// returns the aggregate. The source seeds both mine placement and guess
// selection, so a fixed seed reproduces the whole run.
func Simulate(games, height, width, mines int, src rand.Source) (*Stats, error) {
	if games <= 0 {
		return nil, fmt.Errorf("game count must be positive, got %d", games)
	}

	rng := rand.New(src)
	stats := &Stats{}
	for i := 0; i < games; i++ {
		b, err := board.NewWithSource(height, width, mines, rand.NewSource(rng.Int63()))
		if err != nil {
			return nil, err
		}
		runner, err := NewRunner(b, rand.NewSource(rng.Int63()))
		if err != nil {
			return nil, err
		}
		result, err := runner.Play()
		if err != nil {
			return nil, err
		}
		stats.Record(result)
	}
	return stats, nil
}
