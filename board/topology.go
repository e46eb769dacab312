// Package board models the 10×10 international draughts board: the 50
// playable dark squares, their diagonal geometry, and immutable position
// snapshots.
package board

// Direction is one of the four diagonal directions. North is toward row 0,
// which is White's direction of play.
type Direction uint8

const (
	NorthEast Direction = iota
	NorthWest
	SouthEast
	SouthWest
	NumDirections
)

func (d Direction) String() string {
	switch d {
	case NorthEast:
		return "NE"
	case NorthWest:
		return "NW"
	case SouthEast:
		return "SE"
	case SouthWest:
		return "SW"
	}
	return "??"
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case NorthEast:
		return SouthWest
	case NorthWest:
		return SouthEast
	case SouthEast:
		return NorthWest
	default:
		return NorthEast
	}
}

// NumSquares is the number of playable squares.
const NumSquares = 50

// Topology holds the precomputed diagonal geometry of the board. It is
// built once at startup and shared read-only between every engine
// instance; nothing mutates it after New returns.
type Topology struct {
	neighbors [NumSquares + 1][NumDirections]int8
	rays      [NumSquares + 1][NumDirections][]int8

	center      uint64 // bitmask over squares 1..50
	innerCenter uint64
	backRow     [2]uint64 // indexed by Color
}

// RowCol converts a square 1..50 to its (row, col) on the 10×10 grid.
// Row 0 is the top (Black's back row); dark squares sit on odd columns in
// even rows and even columns in odd rows.
func RowCol(sq int) (row, col int) {
	row = (sq - 1) / 5
	i := (sq - 1) % 5
	col = 2*i + 1 - row%2
	return row, col
}

// SquareAt converts (row, col) back to a square number, or 0 if the
// coordinates are off-board or on a light square. RowCol and SquareAt are
// mutual inverses over the 50 valid squares.
func SquareAt(row, col int) int {
	if row < 0 || row > 9 || col < 0 || col > 9 {
		return 0
	}
	if (row+col)%2 == 0 {
		// light square
		return 0
	}
	return row*5 + col/2 + 1
}

// New builds the board topology.
func New() *Topology {
	t := &Topology{}
	deltas := [NumDirections][2]int{
		NorthEast: {-1, 1},
		NorthWest: {-1, -1},
		SouthEast: {1, 1},
		SouthWest: {1, -1},
	}
	for sq := 1; sq <= NumSquares; sq++ {
		row, col := RowCol(sq)
		for d := Direction(0); d < NumDirections; d++ {
			dr, dc := deltas[d][0], deltas[d][1]
			t.neighbors[sq][d] = int8(SquareAt(row+dr, col+dc))
			var ray []int8
			r, c := row+dr, col+dc
			for {
				next := SquareAt(r, c)
				if next == 0 {
					break
				}
				ray = append(ray, int8(next))
				r += dr
				c += dc
			}
			t.rays[sq][d] = ray
		}
	}

	// Positional sets used by the evaluator. The center is the 4×4 block of
	// dark squares in the middle of the board; the inner center the 2×2
	// block inside it.
	for sq := 1; sq <= NumSquares; sq++ {
		row, col := RowCol(sq)
		if row >= 3 && row <= 6 && col >= 3 && col <= 6 {
			t.center |= 1 << uint(sq)
		}
		if row >= 4 && row <= 5 && col >= 4 && col <= 5 {
			t.innerCenter |= 1 << uint(sq)
		}
	}
	for sq := 46; sq <= 50; sq++ {
		t.backRow[White] |= 1 << uint(sq)
	}
	for sq := 1; sq <= 5; sq++ {
		t.backRow[Black] |= 1 << uint(sq)
	}
	return t
}

// Neighbor returns the adjacent square in the given direction, or 0 if the
// edge of the board is reached.
func (t *Topology) Neighbor(sq int, d Direction) int {
	return int(t.neighbors[sq][d])
}

// Ray returns the ordered squares along a diagonal from sq (exclusive) to
// the board edge. The returned slice is shared; callers must not mutate it.
func (t *Topology) Ray(sq int, d Direction) []int8 {
	return t.rays[sq][d]
}

// IsCenter reports whether sq belongs to the central block.
func (t *Topology) IsCenter(sq int) bool {
	return t.center&(1<<uint(sq)) != 0
}

// IsInnerCenter reports whether sq belongs to the inner central block.
func (t *Topology) IsInnerCenter(sq int) bool {
	return t.innerCenter&(1<<uint(sq)) != 0
}

// IsBackRow reports whether sq is on c's own back row.
func (t *Topology) IsBackRow(sq int, c Color) bool {
	return t.backRow[c]&(1<<uint(sq)) != 0
}

// IsPromotionSquare reports whether a man of color c promotes upon ending
// its move on sq. White promotes on row 0 (squares 1-5), Black on row 9
// (squares 46-50).
func IsPromotionSquare(sq int, c Color) bool {
	if c == White {
		return sq >= 1 && sq <= 5
	}
	return sq >= 46 && sq <= 50
}

// ForwardDirections returns the two diagonal directions a man of color c
// may slide in.
func ForwardDirections(c Color) [2]Direction {
	if c == White {
		return [2]Direction{NorthEast, NorthWest}
	}
	return [2]Direction{SouthEast, SouthWest}
}

// Advancement returns the number of rows a man of color c on sq has moved
// from its own back row toward promotion (0..9).
func Advancement(sq int, c Color) int {
	row, _ := RowCol(sq)
	if c == White {
		return 9 - row
	}
	return row
}

// CenterDistance returns the Chebyshev distance of sq from the geometric
// board center, in half-row units. Range is 1 (the four innermost squares)
// to 9 (corners and edges).
func CenterDistance(sq int) int {
	row, col := RowCol(sq)
	dr := 2*row - 9
	if dr < 0 {
		dr = -dr
	}
	dc := 2*col - 9
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}
