// Package eval scores draughts positions from one side's perspective.
package eval

import (
	"github.com/damzee/damzee/board"
)

// Score bounds. WinScore/LossScore are returned for decided positions;
// scores beyond NearMateThreshold indicate a proven forced result and stop
// iterative deepening early.
const (
	WinScore          = 1_000_000
	LossScore         = -WinScore
	NearMateThreshold = WinScore - 10_000
)

// Evaluator statically scores positions. It is cheap to construct and
// holds no per-search state except the optional noise counter, so each
// search engine instance owns one.
type Evaluator struct {
	topo *board.Topology
	w    Weights

	// noiseAmplitude dampens the evaluation periodically when a
	// difficulty-degradation policy is configured. Zero (the expert
	// setting) keeps evaluation a pure function of the position.
	noiseAmplitude int
	calls          uint64
}

// New creates an evaluator with the given weight table.
func New(t *board.Topology, w Weights) *Evaluator {
	return &Evaluator{topo: t, w: w}
}

// SetNoiseAmplitude enables difficulty degradation. The noise is a
// deterministic periodic dampening, never wall-clock randomness, so two
// identical searches still produce identical results.
func (e *Evaluator) SetNoiseAmplitude(amp int) {
	e.noiseAmplitude = amp
}

// Weights returns the active weight table.
func (e *Evaluator) Weights() Weights { return e.w }

// Evaluate scores p from player's perspective. Terminal cases first: an
// opponent with no pieces is a won position, a player with no pieces a
// lost one. Otherwise material plus positional terms, added for player's
// pieces and subtracted for the opponent's.
func (e *Evaluator) Evaluate(p board.Position, player board.Color) int {
	opp := player.Other()
	ours := p.CountPieces(player)
	theirs := p.CountPieces(opp)
	if theirs.Total == 0 {
		return WinScore
	}
	if ours.Total == 0 {
		return LossScore
	}

	score := e.material(ours) - e.material(theirs)
	if ours.Kings > 0 && theirs.Kings == 0 {
		score += e.w.LoneKingBonus
	} else if theirs.Kings > 0 && ours.Kings == 0 {
		score -= e.w.LoneKingBonus
	}

	for sq := 1; sq <= board.NumSquares; sq++ {
		pc, ok := p.Get(sq)
		if !ok {
			continue
		}
		term := e.positional(sq, pc)
		if pc.Color == player {
			score += term
		} else {
			score -= term
		}
	}

	if e.noiseAmplitude > 0 {
		e.calls++
		score -= int(e.calls % uint64(e.noiseAmplitude+1))
	}
	return score
}

// Quick scores material only. Used for move ordering, where running the
// full evaluation once per candidate move is too costly.
func (e *Evaluator) Quick(p board.Position, player board.Color) int {
	ours := p.CountPieces(player)
	theirs := p.CountPieces(player.Other())
	if theirs.Total == 0 {
		return WinScore
	}
	if ours.Total == 0 {
		return LossScore
	}
	return e.material(ours) - e.material(theirs)
}

func (e *Evaluator) material(c board.PieceCount) int {
	return c.Men*e.w.Man + c.Kings*e.w.King
}

func (e *Evaluator) positional(sq int, pc board.Piece) int {
	term := 0
	if e.topo.IsCenter(sq) {
		term += e.w.Center
		if e.topo.IsInnerCenter(sq) {
			term += e.w.InnerCenter
		}
	}
	if pc.Type == board.Man {
		term += e.w.AdvancementStep * board.Advancement(sq, pc.Color)
	} else {
		term += e.w.KingCentral * (9 - board.CenterDistance(sq))
	}
	return term
}
