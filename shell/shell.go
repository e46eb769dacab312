// Package shell is an interactive readline loop for setting up positions
// and running timed searches against them.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/move"
	"github.com/damzee/damzee/search"
)

type ShellController struct {
	l      *readline.Instance
	solver *search.Solver

	pos    board.Position
	onTurn board.Color
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func usage(w io.Writer) {
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "new - reset to the starting position\n")
	io.WriteString(w, "show - display the board\n")
	io.WriteString(w, "set <square> <code> - place a piece (0 empty, 1 wm, 2 bm, 3 wk, 4 bk)\n")
	io.WriteString(w, "side <white|black> - set the side to move\n")
	io.WriteString(w, "moves - list legal moves\n")
	io.WriteString(w, "play <notation> - play a legal move (e.g. 32-28 or 28x19)\n")
	io.WriteString(w, "solve [ms] - search the current position, optionally time-boxed\n")
	io.WriteString(w, "exit - leave the shell\n")
}

func NewShellController(solver *search.Solver) (*ShellController, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mdamzee>\033[0m ",
		HistoryFile:     "/tmp/damzee_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	return &ShellController{
		l:      l,
		solver: solver,
		pos:    board.Initial(),
		onTurn: board.White,
	}, nil
}

func (sc *ShellController) Loop() {
	defer sc.l.Close()
	out := sc.l.Stderr()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			break
		}
		if err := sc.execute(fields, out); err != nil {
			showMessage("error: "+err.Error(), out)
		}
	}
	log.Debug().Msg("leaving shell loop")
}

func (sc *ShellController) execute(fields []string, out io.Writer) error {
	switch fields[0] {
	case "help":
		usage(out)
	case "new":
		sc.pos = board.Initial()
		sc.onTurn = board.White
		showMessage(sc.pos.DisplayText(), out)
	case "show":
		showMessage(sc.pos.DisplayText(), out)
		showMessage(sc.onTurn.String()+" to move", out)
	case "set":
		return sc.setSquare(fields[1:], out)
	case "side":
		if len(fields) != 2 {
			return errors.New("side needs a player token")
		}
		c, err := board.ParseColor(fields[1])
		if err != nil {
			return err
		}
		sc.onTurn = c
	case "moves":
		legal := sc.solver.Generator().GenerateLegal(sc.pos, sc.onTurn)
		if len(legal) == 0 {
			showMessage("no legal moves; game over for "+sc.onTurn.String(), out)
			return nil
		}
		for i, m := range legal {
			showMessage(fmt.Sprintf("%2d: %s", i+1, m.Notation()), out)
		}
	case "play":
		return sc.play(fields[1:], out)
	case "solve":
		return sc.solve(fields[1:], out)
	default:
		return fmt.Errorf("unknown command %q; try help", fields[0])
	}
	return nil
}

func (sc *ShellController) setSquare(args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("set needs a square and a content code")
	}
	sq, err := strconv.Atoi(args[0])
	if err != nil || sq < 1 || sq > board.NumSquares {
		return fmt.Errorf("bad square %q", args[0])
	}
	code, err := strconv.Atoi(args[1])
	if err != nil || code < 0 || code > board.CodeBlackKing {
		return fmt.Errorf("bad content code %q", args[1])
	}
	arr := sc.pos.ToExternalArray()
	arr[sq] = code
	pos, err := board.FromExternalArray(arr)
	if err != nil {
		return err
	}
	sc.pos = pos
	showMessage(sc.pos.DisplayText(), out)
	return nil
}

func (sc *ShellController) play(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("play needs a move in numeric notation")
	}
	parsed, err := move.ParseNotation(args[0])
	if err != nil {
		return err
	}
	legal := sc.solver.Generator().GenerateLegal(sc.pos, sc.onTurn)
	for _, m := range legal {
		if !parsed.SameSkeleton(m) {
			continue
		}
		next, err := sc.pos.ApplyMove(m)
		if err != nil {
			return err
		}
		sc.pos = next
		sc.onTurn = sc.onTurn.Other()
		showMessage(sc.pos.DisplayText(), out)
		return nil
	}
	return fmt.Errorf("%s is not a legal move here", args[0])
}

func (sc *ShellController) solve(args []string, out io.Writer) error {
	var limit time.Duration
	if len(args) > 0 {
		ms, err := strconv.Atoi(args[0])
		if err != nil || ms <= 0 {
			return fmt.Errorf("bad time limit %q", args[0])
		}
		limit = time.Duration(ms) * time.Millisecond
	}
	result, err := sc.solver.Solve(context.Background(), sc.pos, sc.onTurn, limit)
	if err != nil {
		return err
	}
	showMessage(fmt.Sprintf("best %s score %d depth %d nodes %d in %v",
		result.Move.Notation(), result.Score, result.Depth, result.Nodes, result.Elapsed), out)
	return nil
}
