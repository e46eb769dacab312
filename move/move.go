// Package move defines the canonical move representation for the engine:
// a quiet slide or a capture chain, plus the numeric notation used by the
// FMJD community ("32-28", "28x19x10").
package move

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MoveType is the kind of move; a quiet slide or a capture chain.
type MoveType uint8

const (
	MoveTypeQuiet MoveType = iota
	MoveTypeCapture
)

// A CaptureStep is a single jump within a capture chain.
type CaptureStep struct {
	From     int
	To       int
	Captured int
}

// Move is either a quiet move from one square to another, or a non-empty
// ordered chain of capture steps. The zero value is not a valid move.
type Move struct {
	action MoveType
	from   uint8
	to     uint8
	steps  []CaptureStep
}

var (
	ErrEmptyCapture    = errors.New("capture move needs at least one step")
	ErrRepeatedCapture = errors.New("capture chain jumps the same square twice")
	ErrBrokenChain     = errors.New("capture steps do not form a connected chain")
)

// NewQuiet creates a quiet move.
func NewQuiet(from, to int) Move {
	return Move{action: MoveTypeQuiet, from: uint8(from), to: uint8(to)}
}

// NewCapture creates a capture move from an ordered chain of steps. The
// chain must be connected and may not jump the same square twice.
func NewCapture(steps []CaptureStep) (Move, error) {
	if len(steps) == 0 {
		return Move{}, ErrEmptyCapture
	}
	var seen uint64
	for i, st := range steps {
		if i > 0 && steps[i-1].To != st.From {
			return Move{}, ErrBrokenChain
		}
		bit := uint64(1) << uint(st.Captured)
		if seen&bit != 0 {
			return Move{}, ErrRepeatedCapture
		}
		seen |= bit
	}
	own := make([]CaptureStep, len(steps))
	copy(own, steps)
	return Move{
		action: MoveTypeCapture,
		from:   uint8(steps[0].From),
		to:     uint8(steps[len(steps)-1].To),
		steps:  own,
	}, nil
}

// Type returns the move type.
func (m Move) Type() MoveType { return m.action }

// IsCapture is true for capture chains.
func (m Move) IsCapture() bool { return m.action == MoveTypeCapture }

// From is the origin square.
func (m Move) From() int { return int(m.from) }

// To is the final destination square. For a capture chain this is the last
// landing square, not an intermediate one.
func (m Move) To() int { return int(m.to) }

// Steps returns the capture chain, or nil for a quiet move. Callers must
// not mutate the returned slice.
func (m Move) Steps() []CaptureStep { return m.steps }

// CapturedSquares lists the squares whose pieces this move removes, in
// jump order. Nil for a quiet move.
func (m Move) CapturedSquares() []int {
	if m.action != MoveTypeCapture {
		return nil
	}
	out := make([]int, len(m.steps))
	for i, st := range m.steps {
		out[i] = st.Captured
	}
	return out
}

// Equals compares two moves structurally.
func (m Move) Equals(o Move) bool {
	if m.action != o.action || m.from != o.from || m.to != o.to {
		return false
	}
	if len(m.steps) != len(o.steps) {
		return false
	}
	for i := range m.steps {
		if m.steps[i] != o.steps[i] {
			return false
		}
	}
	return true
}

// Notation renders the move in numeric notation: "32-28" for a quiet move,
// "28x19x10" for a capture chain (origin, then every landing square).
func (m Move) Notation() string {
	if m.action == MoveTypeQuiet {
		return fmt.Sprintf("%d-%d", m.from, m.to)
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(m.from)))
	for _, st := range m.steps {
		sb.WriteByte('x')
		sb.WriteString(strconv.Itoa(st.To))
	}
	return sb.String()
}

// String provides a string just for debugging purposes.
func (m Move) String() string {
	if m.action == MoveTypeQuiet {
		return fmt.Sprintf("<quiet %s>", m.Notation())
	}
	return fmt.Sprintf("<capture %s takes %v>", m.Notation(), m.CapturedSquares())
}

// ShortDescription provides a short description, useful for logging or
// user display.
func (m Move) ShortDescription() string { return m.Notation() }

// ParseNotation parses numeric notation produced by Notation. Capture
// chains come back without captured-square information; the caller must
// match the parsed skeleton against the generated legal moves to recover
// it.
func ParseNotation(s string) (Move, error) {
	if strings.Contains(s, "x") {
		parts := strings.Split(s, "x")
		if len(parts) < 2 {
			return Move{}, fmt.Errorf("malformed capture notation %q", s)
		}
		steps := make([]CaptureStep, 0, len(parts)-1)
		prev, err := parseSquare(parts[0])
		if err != nil {
			return Move{}, fmt.Errorf("malformed capture notation %q: %w", s, err)
		}
		for _, p := range parts[1:] {
			to, err := parseSquare(p)
			if err != nil {
				return Move{}, fmt.Errorf("malformed capture notation %q: %w", s, err)
			}
			steps = append(steps, CaptureStep{From: prev, To: to, Captured: 0})
			prev = to
		}
		m := Move{action: MoveTypeCapture, from: uint8(steps[0].From), to: uint8(prev), steps: steps}
		return m, nil
	}
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Move{}, fmt.Errorf("malformed move notation %q", s)
	}
	from, err := parseSquare(parts[0])
	if err != nil {
		return Move{}, fmt.Errorf("malformed move notation %q: %w", s, err)
	}
	to, err := parseSquare(parts[1])
	if err != nil {
		return Move{}, fmt.Errorf("malformed move notation %q: %w", s, err)
	}
	return NewQuiet(from, to), nil
}

// SameSkeleton reports whether o follows the same origin and landing
// squares as m, ignoring captured squares. Used to match parsed notation
// against generated legal moves.
func (m Move) SameSkeleton(o Move) bool {
	if m.action != o.action || m.from != o.from || m.to != o.to {
		return false
	}
	if m.action == MoveTypeQuiet {
		return true
	}
	if len(m.steps) != len(o.steps) {
		return false
	}
	for i := range m.steps {
		if m.steps[i].From != o.steps[i].From || m.steps[i].To != o.steps[i].To {
			return false
		}
	}
	return true
}

func parseSquare(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 50 {
		return 0, fmt.Errorf("square %d out of range 1..50", n)
	}
	return n, nil
}
