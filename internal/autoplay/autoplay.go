// Package autoplay drives the inference engine against a hidden board: pick
// a move, ask the board how many mines surround it, feed the answer back,
// repeat until the game resolves.
package autoplay

import (
	"fmt"
	"math/rand"

	"github.com/sweeplab/sweeper/internal/board"
	"github.com/sweeplab/sweeper/pkg/inference"
)

// Strategy labels how a move was chosen.
type Strategy string

const (
	// StrategySafe means the engine proved the cell safe before playing it.
	StrategySafe Strategy = "safe"

	// StrategyGuess means no proven-safe cell existed and the engine picked
	// the least risky candidate.
	StrategyGuess Strategy = "guess"
)

// Outcome is the terminal state of a game.
type Outcome string

const (
	// OutcomeWon means every mine was identified or every safe cell opened.
	OutcomeWon Outcome = "won"

	// OutcomeLost means a guess hit a mine.
	OutcomeLost Outcome = "lost"

	// OutcomeStalled means no move remained before the mines were pinned
	// down. Unreachable with a truthful board; kept as a defensive state.
	OutcomeStalled Outcome = "stalled"
)

// Move records one step of a game.
type Move struct {
	Cell     inference.Cell
	Strategy Strategy
	Count    int // adjacent mines reported by the board; meaningless when HitMine
	HitMine  bool
}

// Result summarizes a finished game.
type Result struct {
	Outcome Outcome
	Moves   []Move
	Guesses int

	// MinesIdentified is how many mines the engine proved, win or lose.
	MinesIdentified int
}

// Runner plays a single game of engine-driven moves over one board.
type Runner struct {
	board  *board.Board
	engine *inference.Engine

	result Result
	done   bool
}

// NewRunner builds a runner over the given board. The source seeds the
// engine's guess selection.
func NewRunner(b *board.Board, src rand.Source) (*Runner, error) {
	eng, err := inference.NewWithSource(b.Height(), b.Width(), src)
	if err != nil {
		return nil, err
	}
	return &Runner{board: b, engine: eng}, nil
}

// Board returns the board the runner plays against.
func (r *Runner) Board() *board.Board { return r.board }

// Engine returns the engine making the moves.
func (r *Runner) Engine() *inference.Engine { return r.engine }

// Result returns the game summary; the Outcome is empty until done.
func (r *Runner) Result() *Result { return &r.result }

// Step makes one move. It returns the move taken and whether the game is
// over; when the game ends without a move (no candidates remain), the zero
// Move is returned with done set.
func (r *Runner) Step() (Move, bool, error) {
	if r.done {
		return Move{}, true, nil
	}

	move := Move{Strategy: StrategySafe}
	cell, ok := r.engine.SafeMove()
	if !ok {
		cell, ok = r.engine.GuessMove()
		move.Strategy = StrategyGuess
	}
	if !ok {
		r.finish(r.noMoveOutcome())
		return Move{}, true, nil
	}
	move.Cell = cell

	if r.board.IsMine(cell) {
		// Reveal anyway so renderers show the explosion.
		if _, err := r.board.Reveal(cell); err != nil {
			return Move{}, true, err
		}
		move.HitMine = true
		r.record(move)
		r.finish(OutcomeLost)
		return move, true, nil
	}

	if _, err := r.board.Reveal(cell); err != nil {
		return Move{}, true, err
	}
	move.Count = r.board.AdjacentMines(cell)
	if err := r.engine.Observe(cell, move.Count); err != nil {
		return Move{}, true, fmt.Errorf("observation rejected: %w", err)
	}
	r.record(move)

	if r.won() {
		r.flagProvenMines()
		r.finish(OutcomeWon)
		return move, true, nil
	}
	return move, false, nil
}

// Play runs Step until the game is over and returns the result.
func (r *Runner) Play() (*Result, error) {
	for {
		_, done, err := r.Step()
		if err != nil {
			return nil, err
		}
		if done {
			return &r.result, nil
		}
	}
}

func (r *Runner) record(move Move) {
	r.result.Moves = append(r.result.Moves, move)
	if move.Strategy == StrategyGuess {
		r.result.Guesses++
	}
}

func (r *Runner) finish(outcome Outcome) {
	r.result.Outcome = outcome
	r.result.MinesIdentified = len(r.engine.Unsafe())
	r.done = true
}

func (r *Runner) won() bool {
	return r.board.Cleared() || len(r.engine.Unsafe()) == r.board.MineCount()
}

// noMoveOutcome classifies "no candidate remains": if every mine is proven
// by then, the game is won.
func (r *Runner) noMoveOutcome() Outcome {
	if len(r.engine.Unsafe()) == r.board.MineCount() {
		return OutcomeWon
	}
	return OutcomeStalled
}

// flagProvenMines plants flags on every proven mine so the final board
// render shows what the engine concluded.
func (r *Runner) flagProvenMines() {
	for _, cell := range r.engine.Unsafe() {
		if !r.board.IsFlagged(cell) {
			_ = r.board.ToggleFlag(cell)
		}
	}
}
