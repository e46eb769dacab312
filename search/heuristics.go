package search

import (
	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/move"
)

const (
	// MaxSearchDepth bounds the ply index for the killer table and the
	// 6-bit depth field in transposition table entries.
	MaxSearchDepth = 60
	maxKillers     = 2
)

// killerTable remembers, per ply, the last non-capturing moves that caused
// a beta cutoff. Mutated in place during a search; not safe to share.
type killerTable struct {
	moves [MaxSearchDepth + 1][maxKillers]move.Move
	used  [MaxSearchDepth + 1][maxKillers]bool
}

func (k *killerTable) store(ply int, m move.Move) {
	if ply > MaxSearchDepth || m.IsCapture() {
		return
	}
	if k.used[ply][0] && k.moves[ply][0].Equals(m) {
		return
	}
	k.moves[ply][1], k.used[ply][1] = k.moves[ply][0], k.used[ply][0]
	k.moves[ply][0], k.used[ply][0] = m, true
}

// slot returns which killer slot m occupies at ply, or -1.
func (k *killerTable) slot(ply int, m move.Move) int {
	if ply > MaxSearchDepth {
		return -1
	}
	for i := 0; i < maxKillers; i++ {
		if k.used[ply][i] && k.moves[ply][i].Equals(m) {
			return i
		}
	}
	return -1
}

func (k *killerTable) clear() {
	*k = killerTable{}
}

// historyTable scores (origin, destination) pairs by how often they have
// improved alpha, rewarded by depth² at each cutoff.
type historyTable [board.NumSquares + 1][board.NumSquares + 1]int32

func (h *historyTable) update(m move.Move, depth int) {
	h[m.From()][m.To()] += int32(depth * depth)
}

func (h *historyTable) score(m move.Move) int32 {
	return h[m.From()][m.To()]
}

func (h *historyTable) clear() {
	*h = historyTable{}
}
