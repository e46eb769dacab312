package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/book"
	"github.com/damzee/damzee/movegen"
	"github.com/damzee/damzee/search"
)

// Handler serves the engine over HTTP. Each request runs on its own
// Solver instance: solver state (transposition table, killers, history) is
// mutated in place during a search and must never be shared between
// concurrent invocations.
type Handler struct {
	topo     *board.Topology
	settings search.Settings
	book     book.Probe
}

// NewHandler creates the API handler. probe may be nil for no opening
// book.
func NewHandler(topo *board.Topology, settings search.Settings, probe book.Probe) (*Handler, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if probe == nil {
		probe = book.None{}
	}
	return &Handler{topo: topo, settings: settings, book: probe}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/move":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleMove(w, r)
	case "/api/legal":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleLegal(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("req-id", uuid.NewString()).Logger()
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	pos, color, limit, err := decodeRequest(req.Board, req.Player, req.TimeLimitMs)
	if err != nil {
		logger.Warn().Err(err).Msg("rejected-move-request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if entry, ok := h.book.Probe(pos, color); ok {
		logger.Debug().Str("move", entry.Move.Notation()).Msg("book-hit")
		writeJSON(w, MoveResponse{
			Status:          "ok",
			Notation:        entry.Move.Notation(),
			From:            entry.Move.From(),
			To:              entry.Move.To(),
			CapturedSquares: entry.Move.CapturedSquares(),
			Score:           entry.Score,
			FromBook:        true,
		})
		return
	}

	solver, err := search.NewSolver(h.topo, h.settings)
	if err != nil {
		logger.Error().Err(err).Msg("solver-construction")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	result, err := solver.Solve(r.Context(), pos, color, limit)
	if errors.Is(err, search.ErrNoLegalMoves) {
		// Terminal position, not a failure: the caller interprets this as
		// game over for the side to move.
		writeJSON(w, MoveResponse{Status: "game_over"})
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("search-failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	logger.Info().
		Str("move", result.Move.Notation()).
		Int("depth", result.Depth).
		Int64("nodes", result.Nodes).
		Msg("move-served")
	writeJSON(w, MoveResponse{
		Status:          "ok",
		Notation:        result.Move.Notation(),
		From:            result.Move.From(),
		To:              result.Move.To(),
		CapturedSquares: result.Move.CapturedSquares(),
		Score:           result.Score,
		DepthReached:    result.Depth,
		NodesEvaluated:  result.Nodes,
		ElapsedMs:       result.Elapsed.Milliseconds(),
	})
}

func (h *Handler) handleLegal(w http.ResponseWriter, r *http.Request) {
	var req LegalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	pos, color, _, err := decodeRequest(req.Board, req.Player, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	gen := movegen.NewGenerator(h.topo)
	legal := gen.GenerateLegal(pos, color)
	status := "ok"
	if len(legal) == 0 {
		status = "game_over"
	}
	writeJSON(w, LegalResponse{Status: status, Moves: movesToDTO(legal)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding-response")
	}
}
