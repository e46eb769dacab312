package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damzee/damzee/board"
)

var topo = board.New()

func placed(t *testing.T, pieces map[int]board.Piece) board.Position {
	t.Helper()
	p := board.Empty()
	for sq, pc := range pieces {
		var err error
		pc := pc
		p, err = p.Set(sq, &pc)
		require.NoError(t, err)
	}
	return p
}

func TestTerminalScores(t *testing.T) {
	e := New(topo, DefaultWeights())
	p := placed(t, map[int]board.Piece{28: {Color: board.White, Type: board.Man}})
	assert.Equal(t, WinScore, e.Evaluate(p, board.White))
	assert.Equal(t, LossScore, e.Evaluate(p, board.Black))
}

func TestInitialPositionIsBalanced(t *testing.T) {
	e := New(topo, DefaultWeights())
	p := board.Initial()
	assert.Equal(t, 0, e.Evaluate(p, board.White))
	assert.Equal(t, 0, e.Evaluate(p, board.Black))
}

func TestEvaluationIsAntisymmetric(t *testing.T) {
	e := New(topo, DefaultWeights())
	p := placed(t, map[int]board.Piece{
		28: {Color: board.White, Type: board.Man},
		19: {Color: board.White, Type: board.Man},
		23: {Color: board.Black, Type: board.King},
	})
	assert.Equal(t, -e.Evaluate(p, board.Black), e.Evaluate(p, board.White))
}

func TestLoneKingBonus(t *testing.T) {
	e := New(topo, DefaultWeights())
	// A corner king has no positional terms, and a black man on its own
	// back row none either, so the score is pure material plus the bonus.
	p := placed(t, map[int]board.Piece{
		46: {Color: board.White, Type: board.King},
		4:  {Color: board.Black, Type: board.Man},
	})
	w := DefaultWeights()
	want := (w.King - w.Man) + w.LoneKingBonus
	assert.Equal(t, want, e.Evaluate(p, board.White))
	assert.Equal(t, -want, e.Evaluate(p, board.Black))
}

func TestManAdvancementAndCenter(t *testing.T) {
	e := New(topo, DefaultWeights())
	w := DefaultWeights()
	opp := board.Piece{Color: board.Black, Type: board.Man}

	back := placed(t, map[int]board.Piece{
		48: {Color: board.White, Type: board.Man}, // own back row, no terms
		4:  opp,
	})
	assert.Equal(t, 0, e.Evaluate(back, board.White))

	central := placed(t, map[int]board.Piece{
		28: {Color: board.White, Type: board.Man}, // inner center, 4 rows advanced
		4:  opp,
	})
	want := w.Center + w.InnerCenter + 4*w.AdvancementStep
	assert.Equal(t, want, e.Evaluate(central, board.White))
}

func TestKingPrefersCenter(t *testing.T) {
	e := New(topo, DefaultWeights())
	opp := board.Piece{Color: board.Black, Type: board.Man}
	corner := placed(t, map[int]board.Piece{46: {Color: board.White, Type: board.King}, 4: opp})
	center := placed(t, map[int]board.Piece{28: {Color: board.White, Type: board.King}, 4: opp})
	assert.Greater(t, e.Evaluate(center, board.White), e.Evaluate(corner, board.White))
}

func TestQuickIsMaterialOnly(t *testing.T) {
	e := New(topo, DefaultWeights())
	p := placed(t, map[int]board.Piece{
		28: {Color: board.White, Type: board.Man}, // positionally strong
		4:  {Color: board.Black, Type: board.Man},
	})
	assert.Equal(t, 0, e.Quick(p, board.White))
	assert.NotEqual(t, 0, e.Evaluate(p, board.White))
}

func TestNoiseIsDeterministic(t *testing.T) {
	p := board.Initial()
	run := func() []int {
		e := New(topo, DefaultWeights())
		e.SetNoiseAmplitude(3)
		out := make([]int, 8)
		for i := range out {
			out[i] = e.Evaluate(p, board.White)
		}
		return out
	}
	first := run()
	assert.Equal(t, first, run(), "noise must replay identically")

	// The dampening stays within the configured amplitude.
	for _, s := range first {
		assert.LessOrEqual(t, s, 0)
		assert.GreaterOrEqual(t, s, -3)
	}

	// Amplitude zero keeps the evaluation a pure function.
	e := New(topo, DefaultWeights())
	assert.Equal(t, e.Evaluate(p, board.White), e.Evaluate(p, board.White))
}
