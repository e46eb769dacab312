// Package zobrist hashes draughts positions.
// https://en.wikipedia.org/wiki/Zobrist_hashing
package zobrist

import (
	"lukechampine.com/frand"

	"github.com/damzee/damzee/board"
)

const bignum = 1<<63 - 2

// numCodes covers the four piece codes (1..4); index 0 is unused.
const numCodes = 5

// Zobrist generates 64-bit hashes for (position, side-to-move) pairs. Two
// structurally identical pairs always hash identically for the lifetime of
// one Zobrist instance; distinct pairs collide only with ordinary
// birthday-bound probability, and the transposition table resolves those
// with an exact identity check.
type Zobrist struct {
	posTable  [board.NumSquares + 1][numCodes]uint64
	blackTurn uint64
}

// Initialize seeds the random tables. Must be called once before Hash.
func (z *Zobrist) Initialize() {
	for sq := 1; sq <= board.NumSquares; sq++ {
		for code := 1; code < numCodes; code++ {
			z.posTable[sq][code] = frand.Uint64n(bignum) + 1
		}
	}
	z.blackTurn = frand.Uint64n(bignum) + 1
}

// Hash computes the full hash of a position with the given side to move.
// Positions are small enough (50 squares) that recomputing from scratch at
// every node is cheaper than keeping incremental bookkeeping correct
// across multi-jump capture chains.
func (z *Zobrist) Hash(p board.Position, sideToMove board.Color) uint64 {
	key := uint64(0)
	for sq := 1; sq <= board.NumSquares; sq++ {
		pc, ok := p.Get(sq)
		if !ok {
			continue
		}
		key ^= z.posTable[sq][codeOf(pc)]
	}
	if sideToMove == board.Black {
		key ^= z.blackTurn
	}
	return key
}

func codeOf(pc board.Piece) int {
	switch {
	case pc.Color == board.White && pc.Type == board.Man:
		return board.CodeWhiteMan
	case pc.Color == board.Black && pc.Type == board.Man:
		return board.CodeBlackMan
	case pc.Color == board.White && pc.Type == board.King:
		return board.CodeWhiteKing
	default:
		return board.CodeBlackKing
	}
}
