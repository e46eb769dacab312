// Package api is the thin request-handling layer over the engine: it
// validates externally supplied positions, consults the opening book, and
// translates engine outcomes into JSON responses.
package api

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/move"
)

// MoveRequest asks the engine for the strongest move in a position. Board
// uses the flat external encoding: index 0 unused, indices 1..50 with
// codes 0=empty, 1=white man, 2=black man, 3=white king, 4=black king.
type MoveRequest struct {
	Board       []int  `json:"board"`
	Player      string `json:"player"`
	TimeLimitMs int64  `json:"time_limit_ms,omitempty"`
}

// MoveResponse carries the chosen move and search diagnostics. Status is
// "ok" when a move was found, "game_over" when the side to move has no
// legal moves.
type MoveResponse struct {
	Status          string `json:"status"`
	Notation        string `json:"notation,omitempty"`
	From            int    `json:"from,omitempty"`
	To              int    `json:"to,omitempty"`
	CapturedSquares []int  `json:"captured_squares,omitempty"`
	Score           int    `json:"score"`
	DepthReached    int    `json:"depth_reached"`
	NodesEvaluated  int64  `json:"nodes_evaluated"`
	ElapsedMs       int64  `json:"elapsed_ms"`
	FromBook        bool   `json:"from_book,omitempty"`
}

// LegalRequest asks for the legal move set of a position.
type LegalRequest struct {
	Board  []int  `json:"board"`
	Player string `json:"player"`
}

// MoveDTO is one legal move.
type MoveDTO struct {
	Notation        string `json:"notation"`
	From            int    `json:"from"`
	To              int    `json:"to"`
	CapturedSquares []int  `json:"captured_squares,omitempty"`
}

type LegalResponse struct {
	Status string    `json:"status"`
	Moves  []MoveDTO `json:"moves"`
}

func moveToDTO(m move.Move) MoveDTO {
	return MoveDTO{
		Notation:        m.Notation(),
		From:            m.From(),
		To:              m.To(),
		CapturedSquares: m.CapturedSquares(),
	}
}

func movesToDTO(ms []move.Move) []MoveDTO {
	return lo.Map(ms, func(m move.Move, _ int) MoveDTO {
		return moveToDTO(m)
	})
}

// decodeRequest validates the external inputs before any search begins: a
// long-enough board array, a recognizable player token, and at least one
// piece for the requested side.
func decodeRequest(boardArr []int, player string, timeLimitMs int64) (board.Position, board.Color, time.Duration, error) {
	pos, err := board.FromExternalArray(boardArr)
	if err != nil {
		return board.Position{}, board.White, 0, err
	}
	color, err := board.ParseColor(player)
	if err != nil {
		return board.Position{}, board.White, 0, err
	}
	if pos.CountPieces(color).Total == 0 {
		return board.Position{}, board.White, 0, fmt.Errorf("no %s pieces on the board", color)
	}
	if timeLimitMs < 0 {
		return board.Position{}, board.White, 0, fmt.Errorf("negative time limit %d ms", timeLimitMs)
	}
	return pos, color, time.Duration(timeLimitMs) * time.Millisecond, nil
}
