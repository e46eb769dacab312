// Package movegen generates the legal move set for a position under FMJD
// rules: mandatory capture, the maximum-capture rule, four-direction man
// captures, and flying kings.
package movegen

import (
	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/move"
)

// Generator produces legal moves. It holds only the shared read-only
// topology, so a single Generator is safe to use from concurrent searches.
type Generator struct {
	topo *board.Topology
}

// NewGenerator creates a move generator over the given topology.
func NewGenerator(t *board.Topology) *Generator {
	return &Generator{topo: t}
}

// GenerateLegal returns every legal move for player in p. If any capture
// exists, quiet moves are discarded and only the capture chains of maximal
// length are kept. Ties for the longest chain are all retained; ordering
// among them is unspecified but deterministic for a given position.
func (g *Generator) GenerateLegal(p board.Position, player board.Color) []move.Move {
	captures := g.generateCaptures(p, player)
	if len(captures) > 0 {
		return longestOnly(captures)
	}
	return g.generateQuiet(p, player)
}

// HasCapture reports whether player has at least one capture available.
func (g *Generator) HasCapture(p board.Position, player board.Color) bool {
	return len(g.generateCaptures(p, player)) > 0
}

func longestOnly(captures []move.Move) []move.Move {
	maxLen := 0
	for _, m := range captures {
		if n := len(m.Steps()); n > maxLen {
			maxLen = n
		}
	}
	out := captures[:0]
	for _, m := range captures {
		if len(m.Steps()) == maxLen {
			out = append(out, m)
		}
	}
	return out
}

func (g *Generator) generateQuiet(p board.Position, player board.Color) []move.Move {
	var out []move.Move
	for sq := 1; sq <= board.NumSquares; sq++ {
		pc, ok := p.Get(sq)
		if !ok || pc.Color != player {
			continue
		}
		if pc.Type == board.Man {
			for _, d := range board.ForwardDirections(player) {
				if n := g.topo.Neighbor(sq, d); n != 0 && p.IsEmpty(n) {
					out = append(out, move.NewQuiet(sq, n))
				}
			}
			continue
		}
		// Flying king: slide along each ray until the first occupied square.
		for d := board.Direction(0); d < board.NumDirections; d++ {
			for _, n8 := range g.topo.Ray(sq, d) {
				n := int(n8)
				if !p.IsEmpty(n) {
					break
				}
				out = append(out, move.NewQuiet(sq, n))
			}
		}
	}
	return out
}

func (g *Generator) generateCaptures(p board.Position, player board.Color) []move.Move {
	var out []move.Move
	for sq := 1; sq <= board.NumSquares; sq++ {
		pc, ok := p.Get(sq)
		if !ok || pc.Color != player {
			continue
		}
		// The moving piece leaves its origin square for the whole sequence;
		// jumped pieces stay on the board until the move is applied.
		lifted := p
		lifted, _ = lifted.Set(sq, nil)
		if pc.Type == board.Man {
			g.manCaptures(lifted, player, sq, 0, nil, &out)
		} else {
			g.kingCaptures(lifted, player, sq, 0, nil, &out)
		}
	}
	return out
}

// manCaptures extends a capture sequence from cur. jumped is a bitmask of
// squares already jumped in this sequence, passed by value so sibling
// branches never alias. A man captures in all four directions.
func (g *Generator) manCaptures(p board.Position, player board.Color, cur int, jumped uint64, steps []move.CaptureStep, out *[]move.Move) {
	extended := false
	for d := board.Direction(0); d < board.NumDirections; d++ {
		over := g.topo.Neighbor(cur, d)
		if over == 0 || jumped&(1<<uint(over)) != 0 || !p.IsEnemy(over, player) {
			continue
		}
		landing := g.topo.Neighbor(over, d)
		if landing == 0 || !p.IsEmpty(landing) {
			continue
		}
		extended = true
		g.manCaptures(p, player, landing,
			jumped|1<<uint(over),
			appendStep(steps, move.CaptureStep{From: cur, To: landing, Captured: over}),
			out)
	}
	if !extended && len(steps) > 0 {
		g.record(steps, out)
	}
}

// kingCaptures extends a king capture sequence from cur. Along each ray,
// empty squares are skipped; exactly one not-yet-jumped enemy piece may be
// jumped, and every empty square beyond it is a landing candidate. A
// second piece in a row, a friendly piece, or an already-jumped piece
// blocks the ray.
func (g *Generator) kingCaptures(p board.Position, player board.Color, cur int, jumped uint64, steps []move.CaptureStep, out *[]move.Move) {
	extended := false
	for d := board.Direction(0); d < board.NumDirections; d++ {
		ray := g.topo.Ray(cur, d)
		victim := 0
		for _, n8 := range ray {
			n := int(n8)
			if victim == 0 {
				if p.IsEmpty(n) {
					continue
				}
				if jumped&(1<<uint(n)) != 0 || !p.IsEnemy(n, player) {
					break
				}
				victim = n
				continue
			}
			if !p.IsEmpty(n) {
				break
			}
			extended = true
			g.kingCaptures(p, player, n,
				jumped|1<<uint(victim),
				appendStep(steps, move.CaptureStep{From: cur, To: n, Captured: victim}),
				out)
		}
	}
	if !extended && len(steps) > 0 {
		g.record(steps, out)
	}
}

func (g *Generator) record(steps []move.CaptureStep, out *[]move.Move) {
	m, err := move.NewCapture(steps)
	if err != nil {
		// Only reachable if the recursion itself produced a malformed
		// chain, which would be a generator bug.
		panic(err)
	}
	*out = append(*out, m)
}

// appendStep appends without sharing backing storage between sibling
// recursion branches.
func appendStep(steps []move.CaptureStep, st move.CaptureStep) []move.CaptureStep {
	out := make([]move.CaptureStep, len(steps)+1)
	copy(out, steps)
	out[len(steps)] = st
	return out
}
