// Package book defines the opening-book / tablebase probe boundary. A
// probe runs before tree search; a definite hit skips the search entirely.
package book

import (
	"github.com/cespare/xxhash"

	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/move"
)

// Entry is a definite move (and score) for a known position.
type Entry struct {
	Move  move.Move
	Score int
}

// Probe is the lookup contract. Implementations must be safe for
// concurrent use.
type Probe interface {
	Probe(p board.Position, sideToMove board.Color) (Entry, bool)
}

// None is the no-op probe.
type None struct{}

func (None) Probe(board.Position, board.Color) (Entry, bool) {
	return Entry{}, false
}

// Static is a fixed in-memory book keyed by a hash of the external board
// encoding plus the side to move. Populated once at startup, read-only
// afterwards.
type Static struct {
	entries map[uint64]Entry
}

func NewStatic() *Static {
	return &Static{entries: make(map[uint64]Entry)}
}

// Add registers a book move for a position.
func (s *Static) Add(p board.Position, sideToMove board.Color, e Entry) {
	s.entries[key(p, sideToMove)] = e
}

// Len reports the number of book positions.
func (s *Static) Len() int { return len(s.entries) }

func (s *Static) Probe(p board.Position, sideToMove board.Color) (Entry, bool) {
	e, ok := s.entries[key(p, sideToMove)]
	return e, ok
}

func key(p board.Position, sideToMove board.Color) uint64 {
	enc := p.ToExternalArray()
	buf := make([]byte, len(enc)+1)
	for i, v := range enc {
		buf[i] = byte(v)
	}
	buf[len(enc)] = byte(sideToMove)
	return xxhash.Sum64(buf)
}
