package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/damzee/damzee/move"
)

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

// ParseColor parses a case-insensitive player token.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unrecognized player token %q", s)
}

// PieceType distinguishes men from kings.
type PieceType uint8

const (
	Man PieceType = iota
	King
)

// Piece is a colored man or king. The zero value is a white man; use the
// ok flag from Position.Get to distinguish occupancy.
type Piece struct {
	Color Color
	Type  PieceType
}

// Square content codes as used by the external flat-array encoding.
const (
	CodeEmpty     = 0
	CodeWhiteMan  = 1
	CodeBlackMan  = 2
	CodeWhiteKing = 3
	CodeBlackKing = 4
)

func (p Piece) code() uint8 {
	switch {
	case p.Color == White && p.Type == Man:
		return CodeWhiteMan
	case p.Color == Black && p.Type == Man:
		return CodeBlackMan
	case p.Color == White && p.Type == King:
		return CodeWhiteKing
	default:
		return CodeBlackKing
	}
}

func pieceFromCode(code uint8) (Piece, bool) {
	switch code {
	case CodeWhiteMan:
		return Piece{White, Man}, true
	case CodeBlackMan:
		return Piece{Black, Man}, true
	case CodeWhiteKing:
		return Piece{White, King}, true
	case CodeBlackKing:
		return Piece{Black, King}, true
	}
	return Piece{}, false
}

// Position is an immutable snapshot of the board. Every mutator returns a
// fresh Position; the value is cheap to copy (51 bytes) and safe to share.
type Position struct {
	squares [NumSquares + 1]uint8 // index 0 unused; content codes
}

var (
	ErrBadSquare       = errors.New("square outside 1..50")
	ErrOriginEmpty     = errors.New("no piece on the origin square")
	ErrDestinationFull = errors.New("destination square is occupied")
	ErrNothingCaptured = errors.New("captured square holds no enemy piece")
)

// Empty returns a position with no pieces.
func Empty() Position { return Position{} }

// Initial returns the FMJD starting layout: 20 black men on squares 1-20,
// 20 white men on squares 31-50.
func Initial() Position {
	var p Position
	for sq := 1; sq <= 20; sq++ {
		p.squares[sq] = CodeBlackMan
	}
	for sq := 31; sq <= 50; sq++ {
		p.squares[sq] = CodeWhiteMan
	}
	return p
}

// FromExternalArray decodes a flat array in the external encoding: index 0
// unused, indices 1..50 holding content codes. Unrecognized codes decode
// to empty squares. The array must have at least 51 entries.
func FromExternalArray(values []int) (Position, error) {
	if len(values) < NumSquares+1 {
		return Position{}, fmt.Errorf("board array too short: got %d entries, need %d", len(values), NumSquares+1)
	}
	var p Position
	for sq := 1; sq <= NumSquares; sq++ {
		v := values[sq]
		if v >= CodeWhiteMan && v <= CodeBlackKing {
			p.squares[sq] = uint8(v)
		}
	}
	return p, nil
}

// ToExternalArray encodes the position back into the flat-array form.
func (p Position) ToExternalArray() []int {
	out := make([]int, NumSquares+1)
	for sq := 1; sq <= NumSquares; sq++ {
		out[sq] = int(p.squares[sq])
	}
	return out
}

// Get returns the piece on sq, if any.
func (p Position) Get(sq int) (Piece, bool) {
	if sq < 1 || sq > NumSquares {
		return Piece{}, false
	}
	return pieceFromCode(p.squares[sq])
}

// IsEmpty reports whether sq holds no piece.
func (p Position) IsEmpty(sq int) bool {
	return sq >= 1 && sq <= NumSquares && p.squares[sq] == CodeEmpty
}

// IsEnemy reports whether sq holds a piece of the color opposing c.
func (p Position) IsEnemy(sq int, c Color) bool {
	pc, ok := p.Get(sq)
	return ok && pc.Color != c
}

// Set returns a copy of the position with sq set to pc, or cleared when
// pc is nil.
func (p Position) Set(sq int, pc *Piece) (Position, error) {
	if sq < 1 || sq > NumSquares {
		return Position{}, fmt.Errorf("%w: %d", ErrBadSquare, sq)
	}
	q := p
	if pc == nil {
		q.squares[sq] = CodeEmpty
	} else {
		q.squares[sq] = pc.code()
	}
	return q, nil
}

// PieceCount summarizes one side's material.
type PieceCount struct {
	Men   int
	Kings int
	Total int
}

// CountPieces tallies c's men and kings.
func (p Position) CountPieces(c Color) PieceCount {
	var pcnt PieceCount
	for sq := 1; sq <= NumSquares; sq++ {
		pc, ok := pieceFromCode(p.squares[sq])
		if !ok || pc.Color != c {
			continue
		}
		if pc.Type == King {
			pcnt.Kings++
		} else {
			pcnt.Men++
		}
		pcnt.Total++
	}
	return pcnt
}

// ApplyMove returns the position after m. For a quiet move the origin is
// cleared and the piece placed on the destination; for a capture chain the
// origin and every captured square are cleared and the piece lands only on
// the final destination. A man promotes only when the *final* square of
// the move is its promotion row; an intermediate landing square on the
// back row never promotes (FMJD rule).
//
// ApplyMove validates structural integrity (origin occupied, destination
// free, every captured square enemy-occupied) and fails with a descriptive
// error rather than silently mutating anything. Full legality is the move
// generator's contract.
func (p Position) ApplyMove(m move.Move) (Position, error) {
	pc, ok := p.Get(m.From())
	if !ok {
		return Position{}, fmt.Errorf("%w: %d", ErrOriginEmpty, m.From())
	}
	q := p
	q.squares[m.From()] = CodeEmpty
	for _, sq := range m.CapturedSquares() {
		if sq < 1 || sq > NumSquares {
			return Position{}, fmt.Errorf("%w: captured %d", ErrBadSquare, sq)
		}
		victim, occupied := q.Get(sq)
		if !occupied || victim.Color == pc.Color {
			return Position{}, fmt.Errorf("%w: square %d", ErrNothingCaptured, sq)
		}
		q.squares[sq] = CodeEmpty
	}
	to := m.To()
	if to < 1 || to > NumSquares {
		return Position{}, fmt.Errorf("%w: %d", ErrBadSquare, to)
	}
	if !q.IsEmpty(to) {
		return Position{}, fmt.Errorf("%w: %d", ErrDestinationFull, to)
	}
	if pc.Type == Man && IsPromotionSquare(to, pc.Color) {
		pc.Type = King
	}
	q.squares[to] = pc.code()
	return q, nil
}

// DisplayText renders the position for shell output. Dark squares show
// their occupant (w/b for men, W/B for kings); light squares are blank.
func (p Position) DisplayText() string {
	var sb strings.Builder
	sb.WriteString("   +---------------------+\n")
	for row := 0; row < 10; row++ {
		fmt.Fprintf(&sb, "%2d |", row+1)
		for col := 0; col < 10; col++ {
			sq := SquareAt(row, col)
			if sq == 0 {
				sb.WriteString("  ")
				continue
			}
			switch p.squares[sq] {
			case CodeWhiteMan:
				sb.WriteString(" w")
			case CodeBlackMan:
				sb.WriteString(" b")
			case CodeWhiteKing:
				sb.WriteString(" W")
			case CodeBlackKing:
				sb.WriteString(" B")
			default:
				sb.WriteString(" .")
			}
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString("   +---------------------+\n")
	return sb.String()
}
