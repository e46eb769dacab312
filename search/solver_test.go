package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/eval"
)

var topo = board.New()

func testSettings() Settings {
	s := DefaultSettings()
	s.MaxDepth = 4
	s.TimeLimit = 5 * time.Second
	s.TTSizeMB = 1
	return s
}

func place(t *testing.T, p board.Position, sq int, pc board.Piece) board.Position {
	t.Helper()
	q, err := p.Set(sq, &pc)
	if err != nil {
		t.Fatalf("placing %v on %d: %v", pc, sq, err)
	}
	return q
}

func TestSolveReturnsLegalMove(t *testing.T) {
	is := is.New(t)
	s, err := NewSolver(topo, testSettings())
	is.NoErr(err)
	p := board.Initial()
	res, err := s.Solve(context.Background(), p, board.White, 0)
	is.NoErr(err)

	legal := s.Generator().GenerateLegal(p, board.White)
	found := false
	for _, m := range legal {
		if m.Equals(res.Move) {
			found = true
		}
	}
	is.True(found)
	pc, ok := p.Get(res.Move.From())
	is.True(ok)
	is.Equal(pc, board.Piece{Color: board.White, Type: board.Man})
	is.True(res.Depth > 1)
	is.True(res.Nodes > 0)
}

func TestSolveIsDeterministic(t *testing.T) {
	is := is.New(t)
	s, err := NewSolver(topo, testSettings())
	is.NoErr(err)
	p := board.Initial()
	first, err := s.Solve(context.Background(), p, board.White, 0)
	is.NoErr(err)
	second, err := s.Solve(context.Background(), p, board.White, 0)
	is.NoErr(err)
	is.True(first.Move.Equals(second.Move))
	is.Equal(first.Score, second.Score)
	is.Equal(first.Depth, second.Depth)
	is.Equal(first.Nodes, second.Nodes)
}

func TestForcedMoveShortCircuits(t *testing.T) {
	is := is.New(t)
	s, err := NewSolver(topo, testSettings())
	is.NoErr(err)
	p := place(t, board.Empty(), 28, board.Piece{Color: board.White, Type: board.Man})
	p = place(t, p, 23, board.Piece{Color: board.Black, Type: board.Man})
	res, err := s.Solve(context.Background(), p, board.White, 0)
	is.NoErr(err)
	is.Equal(res.Move.Notation(), "28x19")
	is.Equal(res.Nodes, int64(0)) // no search needed for a forced move
	is.Equal(res.Depth, 0)
}

func TestSolveNoLegalMoves(t *testing.T) {
	is := is.New(t)
	s, err := NewSolver(topo, testSettings())
	is.NoErr(err)
	// A white man on its promotion row with nothing to capture is stuck.
	p := place(t, board.Empty(), 3, board.Piece{Color: board.White, Type: board.Man})
	p = place(t, p, 50, board.Piece{Color: board.Black, Type: board.Man})
	_, err = s.Solve(context.Background(), p, board.White, 0)
	is.True(errors.Is(err, ErrNoLegalMoves))
}

func TestSolveFindsWinningCapture(t *testing.T) {
	is := is.New(t)
	s, err := NewSolver(topo, testSettings())
	is.NoErr(err)
	// Two ways to capture Black's last piece; either one wins on the spot,
	// and the proven result stops deepening after the first iteration.
	p := place(t, board.Empty(), 32, board.Piece{Color: board.White, Type: board.Man})
	p = place(t, p, 33, board.Piece{Color: board.White, Type: board.Man})
	p = place(t, p, 28, board.Piece{Color: board.Black, Type: board.Man})
	res, err := s.Solve(context.Background(), p, board.White, 0)
	is.NoErr(err)
	is.True(res.Move.IsCapture())
	is.True(res.Score >= eval.NearMateThreshold)
	is.Equal(res.Depth, 1)
}

func TestSolveHonorsTimeLimit(t *testing.T) {
	is := is.New(t)
	settings := testSettings()
	settings.MaxDepth = MaxSearchDepth
	s, err := NewSolver(topo, settings)
	is.NoErr(err)
	p := board.Initial()
	start := time.Now()
	res, err := s.Solve(context.Background(), p, board.White, 50*time.Millisecond)
	is.NoErr(err) // a timeout is absorbed, not surfaced
	is.True(time.Since(start) < 5*time.Second)

	legal := s.Generator().GenerateLegal(p, board.White)
	found := false
	for _, m := range legal {
		if m.Equals(res.Move) {
			found = true
		}
	}
	is.True(found)
}

// Principal-variation search and aspiration windows re-search on failure,
// so they must not change the score of a fixed-depth search.
func TestSearchVariantsAgree(t *testing.T) {
	is := is.New(t)
	p := board.Initial()

	plain := testSettings()
	plain.MaxDepth = 3
	plain.EnablePVS = false
	plain.EnableLMR = false
	plain.EnableAspirationWindows = false

	tuned := plain
	tuned.EnablePVS = true
	tuned.EnableAspirationWindows = true

	sPlain, err := NewSolver(topo, plain)
	is.NoErr(err)
	sTuned, err := NewSolver(topo, tuned)
	is.NoErr(err)

	resPlain, err := sPlain.Solve(context.Background(), p, board.White, 0)
	is.NoErr(err)
	resTuned, err := sTuned.Solve(context.Background(), p, board.White, 0)
	is.NoErr(err)
	is.Equal(resPlain.Score, resTuned.Score)
	is.Equal(resPlain.Depth, resTuned.Depth)
}

type settingsTestStruct struct {
	name   string
	mutate func(*Settings)
}

func TestSettingsValidate(t *testing.T) {
	cases := []settingsTestStruct{
		{"zero max depth", func(s *Settings) { s.MaxDepth = 0 }},
		{"excessive max depth", func(s *Settings) { s.MaxDepth = MaxSearchDepth + 1 }},
		{"zero time limit", func(s *Settings) { s.TimeLimit = 0 }},
		{"zero table size", func(s *Settings) { s.TTSizeMB = 0 }},
		{"zero aspiration window", func(s *Settings) { s.AspirationWindowHalfWidth = 0 }},
		{"lmr min depth too low", func(s *Settings) { s.LMRMinDepth = 1 }},
		{"negative noise", func(s *Settings) { s.NoiseAmplitude = -1 }},
		{"bad weights", func(s *Settings) { s.Weights.Man = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
			if _, err := NewSolver(topo, s); err == nil {
				t.Errorf("expected solver construction to fail")
			}
		})
	}
}
