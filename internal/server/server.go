// Package server exposes game sessions over a JSON HTTP API.
//
// Games live in the session store; every request loads the board, applies
// one action and saves it back, so the server itself is stateless and can be
// restarted freely. The hidden mine layout is never included in a response
// until the game is over.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/sweeplab/sweeper/internal/board"
	"github.com/sweeplab/sweeper/internal/config"
	"github.com/sweeplab/sweeper/internal/session"
	"github.com/sweeplab/sweeper/pkg/inference"
)

// Game statuses reported to clients.
const (
	StatusPlaying = "playing"
	StatusWon     = "won"
	StatusLost    = "lost"
)

// Server handles the game API. Safe for concurrent use; all game state
// lives in the session store.
type Server struct {
	store        *session.Store
	defaultBoard config.BoardConfig
	mux          *http.ServeMux
}

// New builds a server over the given store. defaultBoard is used when a
// create request does not specify a board.
func New(store *session.Store, defaultBoard config.BoardConfig) *Server {
	s := &Server{store: store, defaultBoard: defaultBoard, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /games", s.handleCreate)
	s.mux.HandleFunc("GET /games", s.handleList)
	s.mux.HandleFunc("GET /games/{id}", s.handleGet)
	s.mux.HandleFunc("DELETE /games/{id}", s.handleDelete)
	s.mux.HandleFunc("POST /games/{id}/reveal", s.handleReveal)
	s.mux.HandleFunc("POST /games/{id}/flag", s.handleFlag)
	s.mux.HandleFunc("GET /games/{id}/hint", s.handleHint)

	return s
}

// Handler returns the routing handler, ready for http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// TileView is the client-visible state of one cell. Adjacent is only set
// for revealed tiles; Mine only once the game is over.
type TileView struct {
	State    string `json:"state"` // "hidden", "flagged" or "revealed"
	Adjacent int    `json:"adjacent,omitempty"`
	Mine     bool   `json:"mine,omitempty"`
}

// GameView is the full client-visible state of a game.
type GameView struct {
	ID     string       `json:"id"`
	Height int          `json:"height"`
	Width  int          `json:"width"`
	Mines  int          `json:"mines"`
	Status string       `json:"status"`
	Tiles  [][]TileView `json:"tiles"`
}

// HintView is the engine's best move for a game in progress.
type HintView struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Strategy string `json:"strategy"` // "safe" or "guess"
}

type createRequest struct {
	Preset string `json:"preset,omitempty"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
	Mines  int    `json:"mines,omitempty"`
}

type cellRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	// An empty body means "use the configured default board".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	boardCfg := config.BoardConfig(req)
	if boardCfg == (config.BoardConfig{}) {
		boardCfg = s.defaultBoard
	}
	if err := boardCfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	height, width, mines := boardCfg.Resolve()
	b, err := board.New(height, width, mines)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.store.Create(r.Context(), b)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[Server] Created game %s (%dx%d, %d mines)", sess.ID, height, width, mines)
	writeJSON(w, http.StatusCreated, gameView(sess.ID, b))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"games": ids})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, b, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, gameView(sess.ID, b))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess, b, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	if status(b) != StatusPlaying {
		writeError(w, http.StatusConflict, "game is already over")
		return
	}

	cell, ok := decodeCell(w, r, b)
	if !ok {
		return
	}

	hit, err := b.Reveal(cell)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if hit {
		log.Printf("[Server] Game %s lost: revealed mine at %s", sess.ID, cell)
	}

	sess.Board = b.Snapshot()
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, gameView(sess.ID, b))
}

func (s *Server) handleFlag(w http.ResponseWriter, r *http.Request) {
	sess, b, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	if status(b) != StatusPlaying {
		writeError(w, http.StatusConflict, "game is already over")
		return
	}

	cell, ok := decodeCell(w, r, b)
	if !ok {
		return
	}

	if err := b.ToggleFlag(cell); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess.Board = b.Snapshot()
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, gameView(sess.ID, b))
}

// handleHint replays the revealed board into a fresh inference engine and
// returns the move it would make.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	sess, b, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	if status(b) != StatusPlaying {
		writeError(w, http.StatusConflict, "game is already over")
		return
	}

	eng, err := inference.New(b.Height(), b.Width())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for row := 0; row < b.Height(); row++ {
		for col := 0; col < b.Width(); col++ {
			cell := inference.Cell{Row: row, Col: col}
			if !b.IsRevealed(cell) {
				continue
			}
			if err := eng.Observe(cell, b.AdjacentMines(cell)); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
	}

	if cell, ok := eng.SafeMove(); ok {
		log.Printf("[Server] Hint for game %s: safe move %s", sess.ID, cell)
		writeJSON(w, http.StatusOK, HintView{Row: cell.Row, Col: cell.Col, Strategy: "safe"})
		return
	}
	if cell, ok := eng.GuessMove(); ok {
		log.Printf("[Server] Hint for game %s: guess %s", sess.ID, cell)
		writeJSON(w, http.StatusOK, HintView{Row: cell.Row, Col: cell.Col, Strategy: "guess"})
		return
	}
	writeError(w, http.StatusNotFound, "no move available")
}

// loadGame fetches the session and reconstructs its board, writing the
// error response itself on failure.
func (s *Server) loadGame(w http.ResponseWriter, r *http.Request) (*session.Session, *board.Board, bool) {
	sess, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return nil, nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}

	b, err := board.FromSnapshot(sess.Board)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("corrupt session: %v", err))
		return nil, nil, false
	}
	return sess, b, true
}

func decodeCell(w http.ResponseWriter, r *http.Request, b *board.Board) (inference.Cell, bool) {
	var req cellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return inference.Cell{}, false
	}
	cell := inference.Cell{Row: req.Row, Col: req.Col}
	if !b.InBounds(cell) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("cell %s outside %dx%d board", cell, b.Height(), b.Width()))
		return inference.Cell{}, false
	}
	return cell, true
}

func status(b *board.Board) string {
	switch {
	case b.Exploded():
		return StatusLost
	case b.Cleared():
		return StatusWon
	default:
		return StatusPlaying
	}
}

// gameView builds the client-visible state, hiding mines until the game is
// over.
func gameView(id string, b *board.Board) GameView {
	gameStatus := status(b)
	over := gameStatus != StatusPlaying

	tiles := make([][]TileView, b.Height())
	for row := 0; row < b.Height(); row++ {
		tiles[row] = make([]TileView, b.Width())
		for col := 0; col < b.Width(); col++ {
			tile := b.TileAt(inference.Cell{Row: row, Col: col})
			view := TileView{State: "hidden"}
			switch {
			case tile.Revealed:
				view.State = "revealed"
				if !tile.Mine {
					view.Adjacent = tile.Adjacent
				}
			case tile.Flagged:
				view.State = "flagged"
			}
			if over && tile.Mine {
				view.Mine = true
			}
			tiles[row][col] = view
		}
	}

	return GameView{
		ID:     id,
		Height: b.Height(),
		Width:  b.Width(),
		Mines:  b.MineCount(),
		Status: gameStatus,
		Tiles:  tiles,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
