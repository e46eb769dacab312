// Package search implements the iterative-deepening alpha-beta engine:
// principal-variation search, late-move reductions, aspiration windows, a
// transposition table, and killer/history move ordering, under a
// cooperative wall-clock deadline.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/eval"
	"github.com/damzee/damzee/move"
	"github.com/damzee/damzee/movegen"
	"github.com/damzee/damzee/zobrist"
)

const valueInfinity = eval.WinScore + 1

// Move-ordering offsets: hash move > captures ranked by capture count >
// killers > history > quick eval of the child position.
const (
	hashMoveOffset   = 1 << 26
	captureOffset    = 1 << 24
	captureStepBonus = 1 << 16
	killer0Offset    = 1 << 21
	killer1Offset    = killer0Offset - (1 << 16)
	historyCap       = 1 << 20
)

// timeCheckInterval is how many nodes pass between deadline samples.
const timeCheckInterval = 4096

var (
	// ErrNoLegalMoves is a normal terminal outcome: the side to move is
	// lost or blocked, not an engine failure.
	ErrNoLegalMoves = errors.New("no legal moves for the side to move")

	errTimeout = errors.New("search deadline exceeded")
)

// Settings is the engine's configuration surface, validated once at
// construction.
type Settings struct {
	MaxDepth                  int
	TimeLimit                 time.Duration
	TTSizeMB                  int
	EnablePVS                 bool
	EnableLMR                 bool
	EnableAspirationWindows   bool
	AspirationWindowHalfWidth int
	LMRMinDepth               int
	LMRMinMoveIndex           int
	Weights                   eval.Weights
	// NoiseAmplitude enables the difficulty-degradation policy; zero is
	// the expert (undegraded, deterministic) configuration.
	NoiseAmplitude int
}

// DefaultSettings returns the expert configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxDepth:                  20,
		TimeLimit:                 5 * time.Second,
		TTSizeMB:                  64,
		EnablePVS:                 true,
		EnableLMR:                 true,
		EnableAspirationWindows:   true,
		AspirationWindowHalfWidth: 60,
		LMRMinDepth:               3,
		LMRMinMoveIndex:           3,
		Weights:                   eval.DefaultWeights(),
	}
}

// Validate checks the settings once, at solver construction.
func (s Settings) Validate() error {
	if s.MaxDepth < 1 || s.MaxDepth > MaxSearchDepth {
		return fmt.Errorf("max depth %d outside 1..%d", s.MaxDepth, MaxSearchDepth)
	}
	if s.TimeLimit <= 0 {
		return fmt.Errorf("time limit must be positive, got %v", s.TimeLimit)
	}
	if s.TTSizeMB < 1 {
		return fmt.Errorf("transposition table size must be at least 1 MB, got %d", s.TTSizeMB)
	}
	if s.EnableAspirationWindows && s.AspirationWindowHalfWidth < 1 {
		return fmt.Errorf("aspiration window half-width must be positive, got %d", s.AspirationWindowHalfWidth)
	}
	if s.EnableLMR && (s.LMRMinDepth < 2 || s.LMRMinMoveIndex < 1) {
		return fmt.Errorf("lmr thresholds out of range: minDepth %d, minMoveIndex %d", s.LMRMinDepth, s.LMRMinMoveIndex)
	}
	if s.NoiseAmplitude < 0 {
		return fmt.Errorf("noise amplitude must be non-negative, got %d", s.NoiseAmplitude)
	}
	return s.Weights.Validate()
}

// Result is what one top-level search invocation produces.
type Result struct {
	Move    move.Move
	Score   int
	Depth   int
	Nodes   int64
	Elapsed time.Duration
}

// Solver runs time-boxed searches. A Solver is stateful during a search
// (transposition table, killers, history, node counter) and therefore not
// safe for concurrent use; run concurrent searches on separate Solver
// instances.
type Solver struct {
	settings  Settings
	topo      *board.Topology
	gen       *movegen.Generator
	evaluator *eval.Evaluator
	zobrist   *zobrist.Zobrist
	ttable    *TranspositionTable

	killers  killerTable
	history  historyTable
	nodes    atomic.Int64
	deadline time.Time
}

// NewSolver validates settings and allocates all per-engine state,
// including the fixed transposition table storage.
func NewSolver(t *board.Topology, settings Settings) (*Solver, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search settings: %w", err)
	}
	ev := eval.New(t, settings.Weights)
	if settings.NoiseAmplitude > 0 {
		ev.SetNoiseAmplitude(settings.NoiseAmplitude)
	}
	z := &zobrist.Zobrist{}
	z.Initialize()
	tt := &TranspositionTable{}
	tt.Reset(settings.TTSizeMB)
	return &Solver{
		settings:  settings,
		topo:      t,
		gen:       movegen.NewGenerator(t),
		evaluator: ev,
		zobrist:   z,
		ttable:    tt,
	}, nil
}

// Settings returns the solver's configuration.
func (s *Solver) Settings() Settings { return s.settings }

// Generator exposes the solver's move generator, for callers that need the
// legal move set (validation, UI hints).
func (s *Solver) Generator() *movegen.Generator { return s.gen }

// Solve finds the strongest move for player in p within the time budget.
// timeLimit overrides the configured limit when positive. A timeout is not
// an error: the result carries the best move from the deepest fully
// completed iteration. ErrNoLegalMoves signals a terminal position.
func (s *Solver) Solve(ctx context.Context, p board.Position, player board.Color, timeLimit time.Duration) (Result, error) {
	tstart := time.Now()
	legal := s.gen.GenerateLegal(p, player)
	if len(legal) == 0 {
		return Result{}, ErrNoLegalMoves
	}
	if len(legal) == 1 {
		// Forced move; searching cannot change the choice.
		return Result{
			Move:    legal[0],
			Score:   s.evaluator.Quick(p, player),
			Elapsed: time.Since(tstart),
		}, nil
	}

	if timeLimit <= 0 {
		timeLimit = s.settings.TimeLimit
	}
	s.deadline = tstart.Add(timeLimit)
	if d, ok := ctx.Deadline(); ok && d.Before(s.deadline) {
		s.deadline = d
	}
	s.nodes.Store(0)
	s.killers.clear()
	s.history.clear()
	s.ttable.Clear()
	rootHash := s.zobrist.Hash(p, player)
	log.Debug().
		Uint64("root-hash", rootHash).
		Str("player", player.String()).
		Dur("time-limit", timeLimit).
		Int("root-moves", len(legal)).
		Msg("solve-config")

	// Depth-0 fallback, used only if depth 1 itself cannot complete.
	best := Result{Move: legal[0], Score: s.evaluator.Quick(p, player)}

	g := &errgroup.Group{}
	done := make(chan bool)
	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes int64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Int64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		prevScore := 0
		for depth := 1; depth <= s.settings.MaxDepth; depth++ {
			score, idx, err := s.searchRootAspired(ctx, p, player, legal, rootHash, depth, prevScore)
			if err != nil {
				// Timeout mid-depth: this depth produced no trustworthy
				// result, keep the previous iteration's.
				log.Debug().Int("depth", depth).Msg("search-aborted")
				break
			}
			best = Result{Move: legal[idx], Score: score, Depth: depth}
			s.ttable.store(rootHash, score, depth, ttExact, uint8(idx))
			log.Debug().
				Int("depth", depth).
				Int("score", score).
				Str("best", legal[idx].Notation()).
				Msg("deepening-iteratively")
			prevScore = score
			if score >= eval.NearMateThreshold || score <= -eval.NearMateThreshold {
				// A proven forced result; deeper search cannot improve it.
				break
			}
		}
		done <- true
		return nil
	})
	g.Wait()

	best.Nodes = s.nodes.Load()
	best.Elapsed = time.Since(tstart)
	log.Info().
		Str("best", best.Move.Notation()).
		Int("score", best.Score).
		Int("depth", best.Depth).
		Int64("nodes", best.Nodes).
		Uint64("ttable-created", s.ttable.created.Load()).
		Uint64("ttable-lookups", s.ttable.lookups.Load()).
		Uint64("ttable-hits", s.ttable.hits.Load()).
		Uint64("ttable-t2collisions", s.ttable.t2collisions.Load()).
		Float64("time-elapsed-sec", best.Elapsed.Seconds()).
		Msg("solve-returning")
	return best, nil
}

// searchRootAspired wraps the root search in an aspiration window centered
// on the previous iteration's score, re-searching with an unbounded window
// when the result falls outside it.
func (s *Solver) searchRootAspired(ctx context.Context, p board.Position, player board.Color,
	legal []move.Move, rootHash uint64, depth, prevScore int) (int, int, error) {

	if s.settings.EnableAspirationWindows && depth > 1 &&
		prevScore > -eval.NearMateThreshold && prevScore < eval.NearMateThreshold {
		w := s.settings.AspirationWindowHalfWidth
		alpha := maxInt(-valueInfinity, prevScore-w)
		beta := minInt(valueInfinity, prevScore+w)
		score, idx, err := s.searchRoot(ctx, p, player, legal, rootHash, depth, alpha, beta)
		if err != nil {
			return 0, 0, err
		}
		if score > alpha && score < beta {
			return score, idx, nil
		}
		log.Debug().Int("depth", depth).Int("score", score).Msg("aspiration-re-search")
	}
	return s.searchRoot(ctx, p, player, legal, rootHash, depth, -valueInfinity, valueInfinity)
}

// searchRoot runs one full-width iteration at the given depth and returns
// the best score and the index of the best move in legal. The root has no
// beta cutoff with an unbounded window; a finite beta only occurs inside
// an aspiration window, where failing high ends the iteration so the
// caller can re-search.
func (s *Solver) searchRoot(ctx context.Context, p board.Position, player board.Color,
	legal []move.Move, rootHash uint64, depth, alpha, beta int) (int, int, error) {

	ttBest := -1
	if entry, ok := s.ttable.probe(rootHash); ok && int(entry.bestMoveIdx) < len(legal) {
		ttBest = int(entry.bestMoveIdx)
	}
	order := s.orderMoves(p, player, legal, 0, ttBest)
	opp := player.Other()
	bestScore := -valueInfinity
	bestIdx := order[0]
	for i, idx := range order {
		m := legal[idx]
		child, err := p.ApplyMove(m)
		if err != nil {
			return 0, 0, fmt.Errorf("applying generated move %s: %w", m.Notation(), err)
		}
		childHash := s.zobrist.Hash(child, opp)
		var score int
		if i == 0 || !s.settings.EnablePVS {
			v, verr := s.negamax(ctx, child, opp, childHash, depth-1, 1, -beta, -alpha, true)
			if verr != nil {
				return 0, 0, verr
			}
			score = -v
		} else {
			v, verr := s.negamax(ctx, child, opp, childHash, depth-1, 1, -(alpha + 1), -alpha, false)
			if verr != nil {
				return 0, 0, verr
			}
			score = -v
			if score > alpha && score < beta {
				v, verr = s.negamax(ctx, child, opp, childHash, depth-1, 1, -beta, -alpha, true)
				if verr != nil {
					return 0, 0, verr
				}
				score = -v
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = idx
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return bestScore, bestIdx, nil
}

func (s *Solver) negamax(ctx context.Context, p board.Position, stm board.Color, hash uint64,
	depth, ply, alpha, beta int, isPV bool) (int, error) {

	if s.nodes.Add(1)%timeCheckInterval == 0 {
		if time.Now().After(s.deadline) || ctx.Err() != nil {
			return 0, errTimeout
		}
	}

	alphaOrig := alpha
	ttBest := -1
	if entry, ok := s.ttable.probe(hash); ok {
		ttBest = int(entry.bestMoveIdx)
		if entry.depth() >= depth {
			score := int(entry.score)
			switch entry.flag() {
			case ttExact:
				return score, nil
			case ttLower:
				if score > alpha {
					alpha = score
				}
			case ttUpper:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score, nil
			}
		}
	}

	if depth <= 0 || ply >= MaxSearchDepth {
		return s.evaluator.Evaluate(p, stm), nil
	}

	moves := s.gen.GenerateLegal(p, stm)
	if len(moves) == 0 {
		// Mated (or blocked). Bias by ply so the engine prefers being
		// mated later and mating sooner.
		return eval.LossScore + ply, nil
	}
	if ttBest >= len(moves) {
		ttBest = -1
	}
	order := s.orderMoves(p, stm, moves, ply, ttBest)
	opp := stm.Other()
	bestScore := -valueInfinity
	bestIdx := order[0]
	for i, idx := range order {
		m := moves[idx]
		child, err := p.ApplyMove(m)
		if err != nil {
			return 0, fmt.Errorf("applying generated move %s: %w", m.Notation(), err)
		}
		childHash := s.zobrist.Hash(child, opp)
		newDepth := depth - 1
		var score int
		if i == 0 {
			v, verr := s.negamax(ctx, child, opp, childHash, newDepth, ply+1, -beta, -alpha, isPV)
			if verr != nil {
				return 0, verr
			}
			score = -v
		} else {
			reduction := 0
			if s.settings.EnableLMR && !isPV && !m.IsCapture() &&
				depth >= s.settings.LMRMinDepth && i >= s.settings.LMRMinMoveIndex {
				reduction = 1
				if i >= 2*s.settings.LMRMinMoveIndex {
					reduction = 2
				}
				if reduction > newDepth {
					reduction = newDepth
				}
			}
			searchBeta := beta
			if s.settings.EnablePVS {
				searchBeta = alpha + 1
			}
			v, verr := s.negamax(ctx, child, opp, childHash, newDepth-reduction, ply+1, -searchBeta, -alpha, false)
			if verr != nil {
				return 0, verr
			}
			score = -v
			if reduction > 0 && score > alpha {
				// The reduced search unexpectedly raised alpha; verify at
				// full depth before trusting it.
				v, verr = s.negamax(ctx, child, opp, childHash, newDepth, ply+1, -searchBeta, -alpha, false)
				if verr != nil {
					return 0, verr
				}
				score = -v
			}
			if s.settings.EnablePVS && score > alpha && score < beta {
				v, verr = s.negamax(ctx, child, opp, childHash, newDepth, ply+1, -beta, -alpha, true)
				if verr != nil {
					return 0, verr
				}
				score = -v
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = idx
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			s.killers.store(ply, m)
			if !m.IsCapture() {
				s.history.update(m, depth)
			}
			break // beta cut-off
		}
	}

	flag := uint8(ttExact)
	if bestScore <= alphaOrig {
		flag = ttUpper
	} else if bestScore >= beta {
		flag = ttLower
	}
	s.ttable.store(hash, bestScore, depth, flag, uint8(bestIdx))
	return bestScore, nil
}

// orderMoves returns the indices of moves in search order. The move slice
// itself is never permuted: transposition table entries refer to indices
// in generation order, which is deterministic per position.
func (s *Solver) orderMoves(p board.Position, stm board.Color, moves []move.Move, ply, ttBest int) []int {
	ests := make([]int, len(moves))
	for idx, m := range moves {
		est := 0
		if idx == ttBest {
			est += hashMoveOffset
		}
		if m.IsCapture() {
			est += captureOffset + captureStepBonus*len(m.Steps())
		} else {
			switch s.killers.slot(ply, m) {
			case 0:
				est += killer0Offset
			case 1:
				est += killer1Offset
			}
			hist := int(s.history.score(m))
			if hist > historyCap {
				hist = historyCap
			}
			est += hist
			if child, err := p.ApplyMove(m); err == nil {
				est += s.evaluator.Quick(child, stm)
			}
		}
		ests[idx] = est
	}
	order := make([]int, len(moves))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ests[order[a]] > ests[order[b]]
	})
	return order
}

func maxInt(x, y int) int {
	if x < y {
		return y
	}
	return x
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}
