package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/damzee/damzee/board"
)

func TestHashIsPure(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	p := board.Initial()
	h1 := z.Hash(p, board.White)
	h2 := z.Hash(p, board.White)
	is.Equal(h1, h2)
}

func TestSideToMoveChangesHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	p := board.Initial()
	is.True(z.Hash(p, board.White) != z.Hash(p, board.Black))
}

func TestPositionChangesHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	p := board.Initial()
	q, err := p.Set(28, &board.Piece{Color: board.White, Type: board.Man})
	is.NoErr(err)
	is.True(z.Hash(p, board.White) != z.Hash(q, board.White))
}

func TestPieceTypeChangesHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	man, err := board.Empty().Set(28, &board.Piece{Color: board.White, Type: board.Man})
	is.NoErr(err)
	king, err := board.Empty().Set(28, &board.Piece{Color: board.White, Type: board.King})
	is.NoErr(err)
	is.True(z.Hash(man, board.White) != z.Hash(king, board.White))
	is.True(z.Hash(man, board.White) != 0)
}

func TestHashOrderIndependent(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	// Building the same arrangement along two different paths hashes
	// identically; the hash depends only on the final position.
	a, _ := board.Empty().Set(28, &board.Piece{Color: board.White, Type: board.Man})
	a, _ = a.Set(23, &board.Piece{Color: board.Black, Type: board.King})
	b, _ := board.Empty().Set(23, &board.Piece{Color: board.Black, Type: board.King})
	b, _ = b.Set(28, &board.Piece{Color: board.White, Type: board.Man})
	is.Equal(z.Hash(a, board.Black), z.Hash(b, board.Black))
}
